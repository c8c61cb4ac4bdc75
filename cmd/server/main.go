package main

import (
	"context"
	"log"

	"github.com/captaindev404/gentil-gamification/internal/config"
	"github.com/captaindev404/gentil-gamification/internal/jobs"
	"github.com/captaindev404/gentil-gamification/internal/model"
	"github.com/captaindev404/gentil-gamification/internal/server"
	"github.com/captaindev404/gentil-gamification/pkg/database"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db := database.Connect()
	if err := migrate(db); err != nil {
		log.Fatalf("migration failed: %v", err)
	}
	if err := seedRoles(db); err != nil {
		log.Fatalf("failed to seed roles: %v", err)
	}
	if err := seedBadgeCatalog(db); err != nil {
		log.Fatalf("failed to seed badge catalog: %v", err)
	}
	if err := seedAchievementCatalog(db); err != nil {
		log.Fatalf("failed to seed achievement catalog: %v", err)
	}

	if cfg.AppEnv == "development" {
		if err := seedAdminUser(db); err != nil {
			log.Fatalf("failed to seed admin user: %v", err)
		}
	}

	redisClient := database.NewRedisClient(cfg.RedisURL)

	srv := server.NewServer(db, redisClient, cfg)

	scheduler := jobs.NewScheduler(srv.PointsService, srv.LeaderboardService, cfg)
	if err := scheduler.Start(context.Background()); err != nil {
		log.Fatalf("failed to start job scheduler: %v", err)
	}
	defer scheduler.Stop()

	if err := srv.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server exited with error: %v", err)
	}
}

func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Role{},
		&model.User{},
		&model.PointAccount{},
		&model.PointTransaction{},
		&model.BadgeDefinition{},
		&model.UserBadgeProgress{},
		&model.AchievementDefinition{},
		&model.UserAchievementProgress{},
		&model.LeaderboardSnapshot{},
		&model.LeaderboardEntry{},
		&model.Notification{},
	)
}

func seedRoles(db *gorm.DB) error {
	defaultRoles := []model.Role{
		{Name: "admin", Description: "Super administrator"},
		{Name: "member", Description: "Regular member"},
	}

	for _, role := range defaultRoles {
		var count int64
		if err := db.Model(&model.Role{}).
			Where("name = ?", role.Name).
			Count(&count).Error; err != nil {
			return err
		}

		if count == 0 {
			if err := db.Create(&role).Error; err != nil {
				return err
			}
		}
	}

	return nil
}
