package repository

import (
	"context"
	"time"

	"github.com/captaindev404/gentil-gamification/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BadgeRepository interface {
	ListAll(ctx context.Context) ([]model.BadgeDefinition, error)
	// ListByCategory returns the category's badges in ascending tier order
	// (thresholds grow with tier).
	ListByCategory(ctx context.Context, category model.Category) ([]model.BadgeDefinition, error)
	ListProgress(ctx context.Context, userID uuid.UUID) ([]model.UserBadgeProgress, error)
	UpsertProgress(ctx context.Context, userID uuid.UUID, badgeID uint, progress int) error
	MarkEarned(ctx context.Context, userID uuid.UUID, badgeID uint, threshold int, earnedAt time.Time) (bool, error)
}

type badgeRepository struct {
	db *gorm.DB
}

func NewBadgeRepository(db *gorm.DB) BadgeRepository {
	return &badgeRepository{db: db}
}

func (r *badgeRepository) ListAll(ctx context.Context) ([]model.BadgeDefinition, error) {
	var defs []model.BadgeDefinition
	err := r.db.WithContext(ctx).Order("category, threshold asc").Find(&defs).Error
	return defs, err
}

func (r *badgeRepository) ListByCategory(ctx context.Context, category model.Category) ([]model.BadgeDefinition, error) {
	var defs []model.BadgeDefinition
	err := r.db.WithContext(ctx).
		Where("category = ?", category).
		Order("threshold asc").
		Find(&defs).Error
	return defs, err
}

func (r *badgeRepository) ListProgress(ctx context.Context, userID uuid.UUID) ([]model.UserBadgeProgress, error) {
	var progress []model.UserBadgeProgress
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Preload("Badge").
		Find(&progress).Error
	return progress, err
}

// UpsertProgress creates the tracking row lazily and keeps progress
// monotonically non-decreasing. Rows with earned_at set are never updated.
func (r *badgeRepository) UpsertProgress(ctx context.Context, userID uuid.UUID, badgeID uint, progress int) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "badge_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"progress":   gorm.Expr("GREATEST(user_badge_progresses.progress, EXCLUDED.progress)"),
			"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
		}),
		Where: clause.Where{
			Exprs: []clause.Expression{clause.Expr{SQL: "user_badge_progresses.earned_at IS NULL"}},
		},
	}).Create(&model.UserBadgeProgress{
		UserID:   userID,
		BadgeID:  badgeID,
		Progress: progress,
	}).Error
}

// MarkEarned sets earned_at exactly once; the conditional update reports
// whether this call was the one that earned the badge.
func (r *badgeRepository) MarkEarned(ctx context.Context, userID uuid.UUID, badgeID uint, threshold int, earnedAt time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.UserBadgeProgress{}).
		Where("user_id = ? AND badge_id = ? AND earned_at IS NULL", userID, badgeID).
		Updates(map[string]interface{}{
			"earned_at": earnedAt,
			"progress":  gorm.Expr("GREATEST(progress, ?)", threshold),
		})
	return res.RowsAffected > 0, res.Error
}
