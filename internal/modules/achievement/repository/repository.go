package repository

import (
	"context"
	"time"

	"github.com/captaindev404/gentil-gamification/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AchievementRepository interface {
	ListAll(ctx context.Context) ([]model.AchievementDefinition, error)
	ListProgress(ctx context.Context, userID uuid.UUID) ([]model.UserAchievementProgress, error)
	UpsertProgress(ctx context.Context, userID uuid.UUID, achievementID uint, progress int) error
	MarkEarned(ctx context.Context, userID uuid.UUID, achievementID uint, threshold int, earnedAt time.Time) (bool, error)
}

type achievementRepository struct {
	db *gorm.DB
}

func NewAchievementRepository(db *gorm.DB) AchievementRepository {
	return &achievementRepository{db: db}
}

func (r *achievementRepository) ListAll(ctx context.Context) ([]model.AchievementDefinition, error) {
	var defs []model.AchievementDefinition
	err := r.db.WithContext(ctx).Order("category, threshold asc").Find(&defs).Error
	return defs, err
}

func (r *achievementRepository) ListProgress(ctx context.Context, userID uuid.UUID) ([]model.UserAchievementProgress, error) {
	var progress []model.UserAchievementProgress
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Preload("Achievement").
		Find(&progress).Error
	return progress, err
}

// UpsertProgress mirrors the badge progress rules: lazy creation, monotonic
// progress, immutable once earned.
func (r *achievementRepository) UpsertProgress(ctx context.Context, userID uuid.UUID, achievementID uint, progress int) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "achievement_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"progress":   gorm.Expr("GREATEST(user_achievement_progresses.progress, EXCLUDED.progress)"),
			"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
		}),
		Where: clause.Where{
			Exprs: []clause.Expression{clause.Expr{SQL: "user_achievement_progresses.earned_at IS NULL"}},
		},
	}).Create(&model.UserAchievementProgress{
		UserID:        userID,
		AchievementID: achievementID,
		Progress:      progress,
	}).Error
}

func (r *achievementRepository) MarkEarned(ctx context.Context, userID uuid.UUID, achievementID uint, threshold int, earnedAt time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.UserAchievementProgress{}).
		Where("user_id = ? AND achievement_id = ? AND earned_at IS NULL", userID, achievementID).
		Updates(map[string]interface{}{
			"earned_at": earnedAt,
			"progress":  gorm.Expr("GREATEST(progress, ?)", threshold),
		})
	return res.RowsAffected > 0, res.Error
}
