package dto

import (
	"time"

	"github.com/captaindev404/gentil-gamification/internal/model"
)

// AchievementStatus pairs a catalog achievement with the user's progress.
type AchievementStatus struct {
	Achievement model.AchievementDefinition `json:"achievement"`
	Progress    int                         `json:"progress"`
	EarnedAt    *time.Time                  `json:"earned_at,omitempty"`
}

// AchievementCollection splits tracked achievements for the "mine" view.
type AchievementCollection struct {
	Earned     []AchievementStatus `json:"earned"`
	InProgress []AchievementStatus `json:"in_progress"`
}
