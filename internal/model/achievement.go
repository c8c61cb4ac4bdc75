package model

import (
	"time"

	"github.com/google/uuid"
)

// AchievementCategory groups achievements by the kind of goal they track.
type AchievementCategory string

const (
	AchievementStreak    AchievementCategory = "streak"
	AchievementMilestone AchievementCategory = "milestone"
	AchievementSpecial   AchievementCategory = "special"
)

// RequirementType selects how an achievement's progress is computed.
type RequirementType string

const (
	RequireStreakDays RequirementType = "streak_days" // N consecutive active days
	RequireLevel      RequirementType = "level"       // reach level N
	RequirePoints     RequirementType = "points"      // accumulate N all-time points
	RequireAction     RequirementType = "action"      // perform a given action once
)

// AchievementDefinition is a static catalog entry. Secret achievements are
// evaluated like any other but hidden from listings until earned.
type AchievementDefinition struct {
	ID          uint                `gorm:"primaryKey" json:"id"`
	Name        string              `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Description string              `gorm:"type:text" json:"description"`
	Category    AchievementCategory `gorm:"size:20;not null;index" json:"category"`
	Requirement RequirementType     `gorm:"size:20;not null" json:"requirement"`
	Threshold   int                 `gorm:"not null" json:"threshold"`
	// RequiredAction is only set for Requirement == RequireAction.
	RequiredAction string    `gorm:"size:50" json:"required_action,omitempty"`
	Secret         bool      `gorm:"not null;default:false" json:"secret"`
	BonusPoints    int       `gorm:"not null;default:0" json:"bonus_points"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// UserAchievementProgress mirrors UserBadgeProgress: monotonic progress,
// immutable once earned. Progress holds whatever number the requirement
// tracks (streak length, level, point total, 0/1 for one-time actions).
type UserAchievementProgress struct {
	UserID        uuid.UUID             `gorm:"type:uuid;primaryKey" json:"user_id"`
	AchievementID uint                  `gorm:"primaryKey" json:"achievement_id"`
	Achievement   AchievementDefinition `gorm:"foreignKey:AchievementID" json:"achievement,omitempty"`
	Progress      int                   `gorm:"not null;default:0" json:"progress"`
	EarnedAt      *time.Time            `json:"earned_at,omitempty"`
	CreatedAt     time.Time             `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time             `gorm:"autoUpdateTime" json:"updated_at"`
}
