package main

import (
	"log"

	"github.com/captaindev404/gentil-gamification/internal/model"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Catalog seeding is insert-if-missing, keyed by name, so operators can tune
// descriptions or bonus points directly in the database without the next
// restart clobbering them.

func seedBadgeCatalog(db *gorm.DB) error {
	catalog := []model.BadgeDefinition{
		{Name: "Feedback Rookie", Description: "Submit 5 pieces of feedback", Category: model.CategoryFeedback, Tier: model.TierBronze, Threshold: 5, BonusPoints: 25},
		{Name: "Feedback Regular", Description: "Submit 25 pieces of feedback", Category: model.CategoryFeedback, Tier: model.TierSilver, Threshold: 25, BonusPoints: 100},
		{Name: "Feedback Expert", Description: "Submit 100 pieces of feedback", Category: model.CategoryFeedback, Tier: model.TierGold, Threshold: 100, BonusPoints: 400},
		{Name: "Feedback Legend", Description: "Submit 500 pieces of feedback", Category: model.CategoryFeedback, Tier: model.TierPlatinum, Threshold: 500, BonusPoints: 1500},

		{Name: "First Votes", Description: "Vote on 10 items", Category: model.CategoryVoting, Tier: model.TierBronze, Threshold: 10, BonusPoints: 25},
		{Name: "Active Voter", Description: "Vote on 50 items", Category: model.CategoryVoting, Tier: model.TierSilver, Threshold: 50, BonusPoints: 100},
		{Name: "Voting Champion", Description: "Vote on 250 items", Category: model.CategoryVoting, Tier: model.TierGold, Threshold: 250, BonusPoints: 400},
		{Name: "Voice of the People", Description: "Vote on 1000 items", Category: model.CategoryVoting, Tier: model.TierPlatinum, Threshold: 1000, BonusPoints: 1500},

		{Name: "Panel Newcomer", Description: "Join 3 research panels", Category: model.CategoryResearch, Tier: model.TierBronze, Threshold: 3, BonusPoints: 50},
		{Name: "Panel Contributor", Description: "Participate in 10 research activities", Category: model.CategoryResearch, Tier: model.TierSilver, Threshold: 10, BonusPoints: 150},
		{Name: "Research Partner", Description: "Participate in 40 research activities", Category: model.CategoryResearch, Tier: model.TierGold, Threshold: 40, BonusPoints: 500},
		{Name: "Research Fellow", Description: "Participate in 150 research activities", Category: model.CategoryResearch, Tier: model.TierPlatinum, Threshold: 150, BonusPoints: 2000},

		{Name: "Quality Spark", Description: "Earn 5 quality recognitions", Category: model.CategoryQuality, Tier: model.TierBronze, Threshold: 5, BonusPoints: 50},
		{Name: "Quality Contributor", Description: "Earn 20 quality recognitions", Category: model.CategoryQuality, Tier: model.TierSilver, Threshold: 20, BonusPoints: 150},
		{Name: "Quality Advocate", Description: "Earn 75 quality recognitions", Category: model.CategoryQuality, Tier: model.TierGold, Threshold: 75, BonusPoints: 500},
		{Name: "Quality Guardian", Description: "Earn 250 quality recognitions", Category: model.CategoryQuality, Tier: model.TierPlatinum, Threshold: 250, BonusPoints: 2000},
	}

	for _, badge := range catalog {
		var count int64
		if err := db.Model(&model.BadgeDefinition{}).
			Where("name = ?", badge.Name).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			if err := db.Create(&badge).Error; err != nil {
				return err
			}
		}
	}

	return nil
}

func seedAchievementCatalog(db *gorm.DB) error {
	catalog := []model.AchievementDefinition{
		{Name: "Getting Warmed Up", Description: "Stay active 3 days in a row", Category: model.AchievementStreak, Requirement: model.RequireStreakDays, Threshold: 3, BonusPoints: 30},
		{Name: "One Week Strong", Description: "Stay active 7 days in a row", Category: model.AchievementStreak, Requirement: model.RequireStreakDays, Threshold: 7, BonusPoints: 100},
		{Name: "Unstoppable", Description: "Stay active 30 days in a row", Category: model.AchievementStreak, Requirement: model.RequireStreakDays, Threshold: 30, BonusPoints: 500},

		{Name: "Level 5 Reached", Description: "Reach level 5", Category: model.AchievementMilestone, Requirement: model.RequireLevel, Threshold: 5, BonusPoints: 200},
		{Name: "Level 10 Reached", Description: "Reach the maximum level", Category: model.AchievementMilestone, Requirement: model.RequireLevel, Threshold: 10, BonusPoints: 1000},
		{Name: "Point Collector", Description: "Accumulate 1000 points", Category: model.AchievementMilestone, Requirement: model.RequirePoints, Threshold: 1000, BonusPoints: 150},
		{Name: "Point Hoarder", Description: "Accumulate 10000 points", Category: model.AchievementMilestone, Requirement: model.RequirePoints, Threshold: 10000, BonusPoints: 750},

		{Name: "First Steps", Description: "Submit your first feedback", Category: model.AchievementSpecial, Requirement: model.RequireAction, Threshold: 1, RequiredAction: "feedback_created", BonusPoints: 10},
		{Name: "Early Adopter", Description: "Join a beta research panel", Category: model.AchievementSpecial, Requirement: model.RequireAction, Threshold: 1, RequiredAction: "beta_panel_joined", Secret: true, BonusPoints: 250},
		{Name: "Bug Hunter", Description: "Report a confirmed bug", Category: model.AchievementSpecial, Requirement: model.RequireAction, Threshold: 1, RequiredAction: "bug_confirmed", Secret: true, BonusPoints: 300},
	}

	for _, achievement := range catalog {
		var count int64
		if err := db.Model(&model.AchievementDefinition{}).
			Where("name = ?", achievement.Name).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			if err := db.Create(&achievement).Error; err != nil {
				return err
			}
		}
	}

	return nil
}

func seedAdminUser(db *gorm.DB) error {
	var adminRole model.Role
	if err := db.Where("name = ?", "admin").First(&adminRole).Error; err != nil {
		return err
	}

	var count int64
	if err := db.Model(&model.User{}).
		Where("email = ?", "admin@gentil.local").
		Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Println("Admin user already exists, skipping seed")
		return nil
	}

	password := "admin123"
	hashedPasswordBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	adminUser := model.User{
		Username:     "admin",
		Email:        "admin@gentil.local",
		PasswordHash: string(hashedPasswordBytes),
		RoleID:       &adminRole.ID,
	}

	if err := db.Create(&adminUser).Error; err != nil {
		return err
	}

	log.Println("Admin user seeded")
	log.Println("   Email: admin@gentil.local")
	log.Println("   Password: admin123")

	return nil
}
