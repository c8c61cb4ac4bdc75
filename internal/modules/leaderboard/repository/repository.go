package repository

import (
	"context"
	"errors"

	"github.com/captaindev404/gentil-gamification/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LeaderboardRepository interface {
	ListAccounts(ctx context.Context) ([]model.PointAccount, error)
	ReplaceSnapshot(ctx context.Context, snapshot *model.LeaderboardSnapshot) error
	GetLatest(ctx context.Context, period model.Period, category model.Category) (*model.LeaderboardSnapshot, error)
	GetEntries(ctx context.Context, snapshotID uint, limit int) ([]model.LeaderboardEntry, error)
	GetUserEntry(ctx context.Context, snapshotID uint, userID uuid.UUID) (*model.LeaderboardEntry, error)
	GetEntriesByRankRange(ctx context.Context, snapshotID uint, minRank, maxRank int) ([]model.LeaderboardEntry, error)
	CountEntries(ctx context.Context, snapshotID uint) (int64, error)
}

type leaderboardRepository struct {
	db *gorm.DB
}

func NewLeaderboardRepository(db *gorm.DB) LeaderboardRepository {
	return &leaderboardRepository{db: db}
}

func (r *leaderboardRepository) ListAccounts(ctx context.Context) ([]model.PointAccount, error) {
	var accounts []model.PointAccount
	if err := r.db.WithContext(ctx).Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}

// ReplaceSnapshot swaps the snapshot for its (period, category) pair in one
// transaction so readers never observe a half-written ranking. Old entries go
// with their snapshot via the cascade constraint.
func (r *leaderboardRepository) ReplaceSnapshot(ctx context.Context, snapshot *model.LeaderboardSnapshot) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("period = ? AND category = ?", snapshot.Period, snapshot.Category).
			Delete(&model.LeaderboardSnapshot{}).Error; err != nil {
			return err
		}
		return tx.Create(snapshot).Error
	})
}

func (r *leaderboardRepository) GetLatest(ctx context.Context, period model.Period, category model.Category) (*model.LeaderboardSnapshot, error) {
	var snapshot model.LeaderboardSnapshot
	err := r.db.WithContext(ctx).
		Where("period = ? AND category = ?", period, category).
		Order("generated_at DESC").
		First(&snapshot).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &snapshot, nil
}

func (r *leaderboardRepository) GetEntries(ctx context.Context, snapshotID uint, limit int) ([]model.LeaderboardEntry, error) {
	var entries []model.LeaderboardEntry
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("snapshot_id = ?", snapshotID).
		Order("rank ASC, id ASC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *leaderboardRepository) GetUserEntry(ctx context.Context, snapshotID uint, userID uuid.UUID) (*model.LeaderboardEntry, error) {
	var entry model.LeaderboardEntry
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("snapshot_id = ? AND user_id = ?", snapshotID, userID).
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

func (r *leaderboardRepository) GetEntriesByRankRange(ctx context.Context, snapshotID uint, minRank, maxRank int) ([]model.LeaderboardEntry, error) {
	var entries []model.LeaderboardEntry
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("snapshot_id = ? AND rank BETWEEN ? AND ?", snapshotID, minRank, maxRank).
		Order("rank ASC, id ASC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *leaderboardRepository) CountEntries(ctx context.Context, snapshotID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.LeaderboardEntry{}).
		Where("snapshot_id = ?", snapshotID).
		Count(&count).Error
	return count, err
}
