package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/captaindev404/gentil-gamification/internal/model"
	"github.com/captaindev404/gentil-gamification/pkg/apperror"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const maxConflictRetries = 3

// AwardResult reports what a single award attempt did. Created is false when
// the (user, action, resource_ref) tuple already had a committed transaction;
// in that case Account is left nil and totals were not touched.
type AwardResult struct {
	Created bool
	Account *model.PointAccount
}

type PointsRepository interface {
	Award(ctx context.Context, txn *model.PointTransaction, levelFor func(total int) int) (*AwardResult, error)
	GetAccount(ctx context.Context, userID uuid.UUID) (*model.PointAccount, error)
	ListTransactions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.PointTransaction, int64, error)
	FindTransaction(ctx context.Context, userID uuid.UUID, action, resourceRef string) (*model.PointTransaction, error)
	ResetPeriodic(ctx context.Context, period model.Period) (int64, error)

	// Ledger-backed collaborator queries consumed by the evaluators.
	CountContributions(ctx context.Context, userID uuid.UUID, category model.Category) (int64, error)
	ActiveDays(ctx context.Context, userID uuid.UUID, since time.Time) ([]time.Time, error)
	HasAction(ctx context.Context, userID uuid.UUID, action string) (bool, error)
}

type pointsRepository struct {
	db *gorm.DB
}

func NewPointsRepository(db *gorm.DB) PointsRepository {
	return &pointsRepository{db: db}
}

// Award inserts the transaction and applies the matching account increments
// in one database transaction. The insert uses ON CONFLICT DO NOTHING against
// the (user_id, action, resource_ref) unique index, so replays of the same
// logical event are detected here, under the storage engine's own locking,
// not by a check-then-insert in application code.
func (r *pointsRepository) Award(ctx context.Context, txn *model.PointTransaction, levelFor func(total int) int) (*AwardResult, error) {
	var result AwardResult

	err := r.withRetry(func() error {
		result = AwardResult{}
		return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			insert := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{
					{Name: "user_id"}, {Name: "action"}, {Name: "resource_ref"},
				},
				DoNothing: true,
			}).Create(txn)
			if insert.Error != nil {
				return insert.Error
			}

			if insert.RowsAffected == 0 {
				// Duplicate logical event: no-op success, totals untouched.
				return nil
			}
			result.Created = true

			column := categoryColumn(txn.Category)
			increments := map[string]interface{}{
				column:            gorm.Expr("point_accounts."+column+" + ?", txn.Points),
				"weekly_points":   gorm.Expr("point_accounts.weekly_points + ?", txn.Points),
				"monthly_points":  gorm.Expr("point_accounts.monthly_points + ?", txn.Points),
				"all_time_points": gorm.Expr("point_accounts.all_time_points + ?", txn.Points),
				"last_updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
			}

			account := &model.PointAccount{
				UserID:        txn.UserID,
				WeeklyPoints:  txn.Points,
				MonthlyPoints: txn.Points,
				AllTimePoints: txn.Points,
				Level:         levelFor(txn.Points),
			}
			setCategoryPoints(account, txn.Category, txn.Points)

			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "user_id"}},
				DoUpdates: clause.Assignments(increments),
			}).Create(account).Error; err != nil {
				return err
			}

			// Recompute the level from the committed total, not from values
			// read before the increment.
			var fresh model.PointAccount
			if err := tx.Where("user_id = ?", txn.UserID).First(&fresh).Error; err != nil {
				return err
			}
			if level := levelFor(fresh.AllTimePoints); level != fresh.Level {
				if err := tx.Model(&model.PointAccount{}).
					Where("user_id = ?", txn.UserID).
					Update("level", level).Error; err != nil {
					return err
				}
				fresh.Level = level
			}

			result.Account = &fresh
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *pointsRepository) GetAccount(ctx context.Context, userID uuid.UUID) (*model.PointAccount, error) {
	var account model.PointAccount
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// No awards yet: a zero account, level 1.
			return &model.PointAccount{UserID: userID, Level: 1}, nil
		}
		return nil, err
	}
	return &account, nil
}

func (r *pointsRepository) ListTransactions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.PointTransaction, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.PointTransaction{}).
		Where("user_id = ?", userID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var txns []model.PointTransaction
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&txns).Error
	return txns, total, err
}

func (r *pointsRepository) FindTransaction(ctx context.Context, userID uuid.UUID, action, resourceRef string) (*model.PointTransaction, error) {
	var txn model.PointTransaction
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND action = ? AND resource_ref = ?", userID, action, resourceRef).
		First(&txn).Error
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

// ResetPeriodic zeroes one rolling field across all accounts. The all-time
// total and the transaction history are never touched. UpdateColumn skips
// the autoUpdateTime hook: last_updated_at is the leaderboard tie-break and
// must only move when the user actually earns points.
func (r *pointsRepository) ResetPeriodic(ctx context.Context, period model.Period) (int64, error) {
	var column string
	switch period {
	case model.PeriodWeekly:
		column = "weekly_points"
	case model.PeriodMonthly:
		column = "monthly_points"
	default:
		return 0, fmt.Errorf("%w: period %q cannot be reset", apperror.ErrInvalidInput, period)
	}

	res := r.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Model(&model.PointAccount{}).
		UpdateColumn(column, 0)
	return res.RowsAffected, res.Error
}

// CountContributions is the ledger-backed default for the external
// contribution-count collaborator: one transaction per domain action,
// bonus awards excluded.
func (r *pointsRepository) CountContributions(ctx context.Context, userID uuid.UUID, category model.Category) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.PointTransaction{}).
		Where("user_id = ? AND category = ? AND action NOT IN ?", userID, category, model.BonusActions).
		Count(&count).Error
	return count, err
}

// ActiveDays returns the distinct UTC calendar days with at least one
// transaction since the given time, newest first.
func (r *pointsRepository) ActiveDays(ctx context.Context, userID uuid.UUID, since time.Time) ([]time.Time, error) {
	var days []time.Time
	err := r.db.WithContext(ctx).Raw(
		`SELECT DISTINCT DATE(created_at AT TIME ZONE 'UTC') AS day
		 FROM point_transactions
		 WHERE user_id = ? AND created_at >= ?
		 ORDER BY day DESC`,
		userID, since,
	).Scan(&days).Error
	return days, err
}

func (r *pointsRepository) HasAction(ctx context.Context, userID uuid.UUID, action string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.PointTransaction{}).
		Where("user_id = ? AND action = ?", userID, action).
		Limit(1).
		Count(&count).Error
	return count > 0, err
}

// withRetry reruns fn on serialization failures and deadlocks, the only
// error class expected to self-heal.
func (r *pointsRepository) withRetry(fn func() error) error {
	var err error
	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		err = fn()
		if err == nil || !isRetryableConflict(err) {
			return err
		}
		time.Sleep(time.Duration(attempt+1) * 10 * time.Millisecond)
	}
	return fmt.Errorf("%w: %v", apperror.ErrConflict, err)
}

func isRetryableConflict(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// 40001 serialization_failure, 40P01 deadlock_detected
		return pgErr.Code == "40001" || pgErr.Code == "40P01"
	}
	return false
}

func categoryColumn(c model.Category) string {
	switch c {
	case model.CategoryFeedback:
		return "feedback_points"
	case model.CategoryVoting:
		return "voting_points"
	case model.CategoryResearch:
		return "research_points"
	default:
		return "quality_points"
	}
}

func setCategoryPoints(account *model.PointAccount, c model.Category, points int) {
	switch c {
	case model.CategoryFeedback:
		account.FeedbackPoints = points
	case model.CategoryVoting:
		account.VotingPoints = points
	case model.CategoryResearch:
		account.ResearchPoints = points
	default:
		account.QualityPoints = points
	}
}
