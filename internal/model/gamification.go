package model

import (
	"time"

	"github.com/google/uuid"
)

// Category partitions point totals, badges and contribution counts.
type Category string

const (
	CategoryFeedback Category = "feedback"
	CategoryVoting   Category = "voting"
	CategoryResearch Category = "research"
	CategoryQuality  Category = "quality"

	// CategoryOverall is only valid for leaderboards, never for awards.
	CategoryOverall Category = "overall"
)

var awardCategories = map[Category]bool{
	CategoryFeedback: true,
	CategoryVoting:   true,
	CategoryResearch: true,
	CategoryQuality:  true,
}

// ValidAwardCategory reports whether c can be used when awarding points.
func ValidAwardCategory(c Category) bool {
	return awardCategories[c]
}

// Bonus award actions recorded by the evaluators. They are excluded from
// contribution counts so a badge bonus can't feed the next badge.
const (
	ActionBadgeBonus       = "badge_bonus"
	ActionAchievementBonus = "achievement_bonus"
)

// BonusActions lists the evaluator-generated actions.
var BonusActions = []string{ActionBadgeBonus, ActionAchievementBonus}

// Period is a time window for point aggregation and leaderboards.
type Period string

const (
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
	PeriodAllTime Period = "all_time"
)

func ValidPeriod(p Period) bool {
	return p == PeriodWeekly || p == PeriodMonthly || p == PeriodAllTime
}

// PointAccount holds the per-user aggregate totals derived from the
// transaction ledger. AllTimePoints is never reset; the weekly and monthly
// fields are rolling totals zeroed by the periodic reset jobs.
type PointAccount struct {
	UserID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	User           User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	FeedbackPoints int       `gorm:"not null;default:0" json:"feedback_points"`
	VotingPoints   int       `gorm:"not null;default:0" json:"voting_points"`
	ResearchPoints int       `gorm:"not null;default:0" json:"research_points"`
	QualityPoints  int       `gorm:"not null;default:0" json:"quality_points"`
	WeeklyPoints   int       `gorm:"not null;default:0" json:"weekly_points"`
	MonthlyPoints  int       `gorm:"not null;default:0" json:"monthly_points"`
	AllTimePoints  int       `gorm:"not null;default:0" json:"all_time_points"`
	Level          int       `gorm:"not null;default:1" json:"level"`
	LastUpdatedAt  time.Time `gorm:"autoUpdateTime" json:"last_updated_at"`
}

// CategoryPoints returns the total for a single award category.
func (a *PointAccount) CategoryPoints(c Category) int {
	switch c {
	case CategoryFeedback:
		return a.FeedbackPoints
	case CategoryVoting:
		return a.VotingPoints
	case CategoryResearch:
		return a.ResearchPoints
	case CategoryQuality:
		return a.QualityPoints
	}
	return 0
}

// PointTransaction is the append-only audit trail of point awards.
// The unique index over (user_id, action, resource_ref) is the storage-level
// idempotence guard: retried awards for the same resource insert nothing.
// Rows without a resource ref are never deduplicated (NULLs don't conflict).
type PointTransaction struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index:idx_tx_user_date,priority:1;uniqueIndex:idx_tx_dedup,priority:1" json:"user_id"`
	User        User      `gorm:"foreignKey:UserID" json:"-"`
	Category    Category  `gorm:"size:20;not null" json:"category"`
	Action      string    `gorm:"size:50;not null;uniqueIndex:idx_tx_dedup,priority:2" json:"action"`
	Points      int       `gorm:"not null" json:"points"`
	ResourceRef *string   `gorm:"size:64;uniqueIndex:idx_tx_dedup,priority:3" json:"resource_ref,omitempty"`
	CreatedAt   time.Time `gorm:"index:idx_tx_user_date,priority:2" json:"created_at"`
}
