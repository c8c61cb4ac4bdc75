package http

import (
	"log"
	"net/http"
	"strconv"

	"github.com/captaindev404/gentil-gamification/internal/model"
	achievementService "github.com/captaindev404/gentil-gamification/internal/modules/achievement/service"
	badgeService "github.com/captaindev404/gentil-gamification/internal/modules/badge/service"
	pointsDto "github.com/captaindev404/gentil-gamification/internal/modules/points/dto"
	pointsService "github.com/captaindev404/gentil-gamification/internal/modules/points/service"
	"github.com/captaindev404/gentil-gamification/pkg/response"
	"github.com/captaindev404/gentil-gamification/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type PointsHandler struct {
	pointsService      pointsService.PointsService
	badgeService       badgeService.BadgeService
	achievementService achievementService.AchievementService
}

func NewPointsHandler(points pointsService.PointsService, badges badgeService.BadgeService, achievements achievementService.AchievementService) *PointsHandler {
	return &PointsHandler{
		pointsService:      points,
		badgeService:       badges,
		achievementService: achievements,
	}
}

// AwardPoints records a contribution and then runs the badge and achievement
// evaluators for its category. Evaluation failures are logged, never allowed
// to fail an award that already committed.
func (h *PointsHandler) AwardPoints(c *gin.Context) {
	var req pointsDto.AwardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user ID"})
		return
	}
	category := model.Category(req.Category)

	txn, created, err := h.pointsService.AwardPoints(c.Request.Context(), userID, req.Action, category, req.Amount, req.ResourceRef)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	newBadges := []model.BadgeDefinition{}
	if badges, err := h.badgeService.EvaluateBadges(c.Request.Context(), userID, category); err != nil {
		log.Printf("Badge evaluation failed for user %s: %v", userID, err)
	} else {
		newBadges = badges
	}

	newAchievements := []model.AchievementDefinition{}
	if achievements, err := h.achievementService.EvaluateAchievements(c.Request.Context(), userID, category); err != nil {
		log.Printf("Achievement evaluation failed for user %s: %v", userID, err)
	} else {
		newAchievements = achievements
	}

	response.ResponseCreated(c, created, gin.H{
		"transaction":      txn,
		"new_badges":       newBadges,
		"new_achievements": newAchievements,
	})
}

func (h *PointsHandler) GetMyPoints(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	account, err := h.pointsService.GetUserPoints(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	summary := pointsDto.PointsSummary{
		UserID:         account.UserID.String(),
		FeedbackPoints: account.FeedbackPoints,
		VotingPoints:   account.VotingPoints,
		ResearchPoints: account.ResearchPoints,
		QualityPoints:  account.QualityPoints,
		WeeklyPoints:   account.WeeklyPoints,
		MonthlyPoints:  account.MonthlyPoints,
		AllTimePoints:  account.AllTimePoints,
		LevelStatus:    h.pointsService.GetLevelStatus(account.AllTimePoints),
		LastUpdatedAt:  account.LastUpdatedAt,
	}

	c.JSON(http.StatusOK, gin.H{"data": summary})
}

func (h *PointsHandler) GetMyHistory(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))

	txns, total, err := h.pointsService.GetHistory(c.Request.Context(), userID, page, size)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  txns,
		"total": total,
		"page":  page,
		"size":  size,
	})
}

// ResetPeriodicPoints is the admin/cron entry point for the weekly and
// monthly rolling resets.
func (h *PointsHandler) ResetPeriodicPoints(c *gin.Context) {
	var req pointsDto.ResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	affected, err := h.pointsService.ResetPeriodicPoints(c.Request.Context(), model.Period(req.Period))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "reset complete", "accounts": affected})
}
