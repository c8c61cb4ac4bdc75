package dto

import (
	"time"

	"github.com/captaindev404/gentil-gamification/internal/modules/points/service"
)

// AwardRequest is the internal award entry point used by the feedback,
// voting and research action handlers after they commit their own effect.
// ResourceRef should be the domain resource's identifier; awards that carry
// one are idempotent per (user, action, resource_ref).
type AwardRequest struct {
	UserID      string  `json:"user_id" binding:"required,uuid"`
	Action      string  `json:"action" binding:"required,max=50"`
	Category    string  `json:"category" binding:"required,oneof=feedback voting research quality"`
	Amount      int     `json:"amount" binding:"required,gt=0"`
	ResourceRef *string `json:"resource_ref" binding:"omitempty,min=1,max=64"`
}

// PointsSummary is the read model for a user's point account.
type PointsSummary struct {
	UserID         string              `json:"user_id"`
	FeedbackPoints int                 `json:"feedback_points"`
	VotingPoints   int                 `json:"voting_points"`
	ResearchPoints int                 `json:"research_points"`
	QualityPoints  int                 `json:"quality_points"`
	WeeklyPoints   int                 `json:"weekly_points"`
	MonthlyPoints  int                 `json:"monthly_points"`
	AllTimePoints  int                 `json:"all_time_points"`
	LevelStatus    service.LevelStatus `json:"level_status"`
	LastUpdatedAt  time.Time           `json:"last_updated_at"`
}

// ResetRequest selects which rolling total the admin reset endpoint zeroes.
type ResetRequest struct {
	Period string `json:"period" binding:"required,oneof=weekly monthly"`
}
