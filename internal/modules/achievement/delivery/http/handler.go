package http

import (
	"net/http"

	achievementService "github.com/captaindev404/gentil-gamification/internal/modules/achievement/service"
	"github.com/captaindev404/gentil-gamification/pkg/response"
	"github.com/gin-gonic/gin"
)

type AchievementHandler struct {
	service achievementService.AchievementService
}

func NewAchievementHandler(service achievementService.AchievementService) *AchievementHandler {
	return &AchievementHandler{service: service}
}

// GetAllAchievements lists the catalog with the caller's progress. Secret
// achievements are omitted until earned.
func (h *AchievementHandler) GetAllAchievements(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	achievements, err := h.service.ListAchievements(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": achievements})
}

func (h *AchievementHandler) GetMyAchievements(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	collection, err := h.service.GetUserAchievements(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": collection})
}
