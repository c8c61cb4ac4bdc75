package dto

import (
	"time"

	"github.com/captaindev404/gentil-gamification/internal/model"
)

// BadgeStatus pairs a catalog badge with the user's progress toward it.
type BadgeStatus struct {
	Badge    model.BadgeDefinition `json:"badge"`
	Progress int                   `json:"progress"`
	EarnedAt *time.Time            `json:"earned_at,omitempty"`
}

// BadgeCollection splits a user's tracked badges for the "my badges" view.
type BadgeCollection struct {
	Earned     []BadgeStatus `json:"earned"`
	InProgress []BadgeStatus `json:"in_progress"`
}
