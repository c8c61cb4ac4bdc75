package model

import (
	"time"

	"github.com/google/uuid"
)

// LeaderboardSnapshot is a materialized ranking for one (period, category)
// pair. It is entirely derivable from PointAccount and safe to regenerate at
// any time; replacement happens in a single transaction so readers never see
// a partially written snapshot.
type LeaderboardSnapshot struct {
	ID          uint               `gorm:"primaryKey" json:"id"`
	Period      Period             `gorm:"size:20;not null;index:idx_snapshot_scope,priority:1" json:"period"`
	Category    Category           `gorm:"size:20;not null;index:idx_snapshot_scope,priority:2" json:"category"`
	GeneratedAt time.Time          `gorm:"not null" json:"generated_at"`
	Entries     []LeaderboardEntry `gorm:"foreignKey:SnapshotID;constraint:OnDelete:CASCADE" json:"entries,omitempty"`
}

// LeaderboardEntry is one ranked row. Ties share a rank; the next distinct
// score continues at its 1-based position (competition ranking).
type LeaderboardEntry struct {
	ID         uint      `gorm:"primaryKey" json:"-"`
	SnapshotID uint      `gorm:"not null;index" json:"-"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User       User      `gorm:"foreignKey:UserID" json:"-"`
	Rank       int       `gorm:"not null" json:"rank"`
	Points     int       `gorm:"not null" json:"points"`
	Level      int       `gorm:"not null" json:"level"`
}
