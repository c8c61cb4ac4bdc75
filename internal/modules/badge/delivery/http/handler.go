package http

import (
	"net/http"

	badgeService "github.com/captaindev404/gentil-gamification/internal/modules/badge/service"
	"github.com/captaindev404/gentil-gamification/pkg/response"
	"github.com/gin-gonic/gin"
)

type BadgeHandler struct {
	service badgeService.BadgeService
}

func NewBadgeHandler(service badgeService.BadgeService) *BadgeHandler {
	return &BadgeHandler{service: service}
}

// GetAllBadges lists the catalog annotated with the caller's progress.
func (h *BadgeHandler) GetAllBadges(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	badges, err := h.service.ListBadges(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": badges})
}

// GetMyBadges lists only badges the caller has started or earned.
func (h *BadgeHandler) GetMyBadges(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	collection, err := h.service.GetUserBadges(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": collection})
}
