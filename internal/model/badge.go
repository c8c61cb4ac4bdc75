package model

import (
	"time"

	"github.com/google/uuid"
)

// Tier is an ordered badge rank within a category.
type Tier string

const (
	TierBronze   Tier = "bronze"
	TierSilver   Tier = "silver"
	TierGold     Tier = "gold"
	TierPlatinum Tier = "platinum"
)

var tierOrder = map[Tier]int{
	TierBronze:   1,
	TierSilver:   2,
	TierGold:     3,
	TierPlatinum: 4,
}

// Order returns the tier's position (bronze < silver < gold < platinum).
func (t Tier) Order() int {
	return tierOrder[t]
}

// BadgeDefinition is a static catalog entry, seeded at startup and read-only
// to the evaluators.
type BadgeDefinition struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Category    Category  `gorm:"size:20;not null;index" json:"category"`
	Tier        Tier      `gorm:"size:20;not null" json:"tier"`
	Threshold   int       `gorm:"not null" json:"threshold"`
	BonusPoints int       `gorm:"not null;default:0" json:"bonus_points"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// UserBadgeProgress tracks a user's progress toward one badge. Progress is
// monotonically non-decreasing; once EarnedAt is set the row is immutable.
type UserBadgeProgress struct {
	UserID    uuid.UUID       `gorm:"type:uuid;primaryKey" json:"user_id"`
	BadgeID   uint            `gorm:"primaryKey" json:"badge_id"`
	Badge     BadgeDefinition `gorm:"foreignKey:BadgeID" json:"badge,omitempty"`
	Progress  int             `gorm:"not null;default:0" json:"progress"`
	EarnedAt  *time.Time      `json:"earned_at,omitempty"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}
