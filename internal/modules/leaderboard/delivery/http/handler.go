package http

import (
	"net/http"
	"strconv"

	"github.com/captaindev404/gentil-gamification/internal/model"
	leaderboardDto "github.com/captaindev404/gentil-gamification/internal/modules/leaderboard/dto"
	leaderboardService "github.com/captaindev404/gentil-gamification/internal/modules/leaderboard/service"
	"github.com/captaindev404/gentil-gamification/pkg/response"
	"github.com/captaindev404/gentil-gamification/pkg/validator"
	"github.com/gin-gonic/gin"
)

type LeaderboardHandler struct {
	leaderboardService leaderboardService.LeaderboardService
}

func NewLeaderboardHandler(service leaderboardService.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{leaderboardService: service}
}

func scopeFromQuery(c *gin.Context) (model.Period, model.Category) {
	period := model.Period(c.DefaultQuery("period", string(model.PeriodAllTime)))
	category := model.Category(c.DefaultQuery("category", string(model.CategoryOverall)))
	return period, category
}

func (h *LeaderboardHandler) GetLeaderboard(c *gin.Context) {
	period, category := scopeFromQuery(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	board, err := h.leaderboardService.GetLeaderboard(c.Request.Context(), period, category, limit)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": board})
}

func (h *LeaderboardHandler) GetMyPosition(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	period, category := scopeFromQuery(c)

	position, err := h.leaderboardService.GetUserPosition(c.Request.Context(), userID, period, category)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": position})
}

// RebuildLeaderboard regenerates one scope, or every scope when the request
// body names none.
func (h *LeaderboardHandler) RebuildLeaderboard(c *gin.Context) {
	var req leaderboardDto.RebuildRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	if req.Period == "" {
		h.leaderboardService.RefreshAll(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"message": "all leaderboards rebuilt"})
		return
	}

	category := model.Category(req.Category)
	if category == "" {
		category = model.CategoryOverall
	}
	snapshot, err := h.leaderboardService.GenerateSnapshot(c.Request.Context(), model.Period(req.Period), category)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "leaderboard rebuilt",
		"period":       snapshot.Period,
		"category":     snapshot.Category,
		"generated_at": snapshot.GeneratedAt,
		"entries":      len(snapshot.Entries),
	})
}
