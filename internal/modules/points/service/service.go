package service

import (
	"context"
	"fmt"
	"log"

	"github.com/captaindev404/gentil-gamification/internal/model"
	notifService "github.com/captaindev404/gentil-gamification/internal/modules/notification/service"
	"github.com/captaindev404/gentil-gamification/internal/modules/points/repository"
	userRepo "github.com/captaindev404/gentil-gamification/internal/modules/user/repository"
	"github.com/captaindev404/gentil-gamification/pkg/apperror"
	"github.com/google/uuid"
)

// PointsService is the ledger entry point. It only accepts positive awards;
// corrections would be a separate, explicitly labeled operation.
type PointsService interface {
	AwardPoints(ctx context.Context, userID uuid.UUID, action string, category model.Category, amount int, resourceRef *string) (*model.PointTransaction, bool, error)
	GetUserPoints(ctx context.Context, userID uuid.UUID) (*model.PointAccount, error)
	GetLevelStatus(points int) LevelStatus
	GetHistory(ctx context.Context, userID uuid.UUID, page, size int) ([]model.PointTransaction, int64, error)
	ResetPeriodicPoints(ctx context.Context, period model.Period) (int64, error)
}

type pointsService struct {
	repo                repository.PointsRepository
	userRepo            userRepo.UserRepository
	notificationService notifService.NotificationService
	thresholds          []int
}

func NewPointsService(repo repository.PointsRepository, userRepo userRepo.UserRepository, notificationService notifService.NotificationService, thresholds []int) PointsService {
	return &pointsService{
		repo:                repo,
		userRepo:            userRepo,
		notificationService: notificationService,
		thresholds:          thresholds,
	}
}

// AwardPoints records one point-earning event. Calls with an already-used
// (userID, action, resourceRef) tuple are a no-op success: the original
// transaction is returned and the second return value is false.
func (s *pointsService) AwardPoints(ctx context.Context, userID uuid.UUID, action string, category model.Category, amount int, resourceRef *string) (*model.PointTransaction, bool, error) {
	if amount <= 0 {
		return nil, false, fmt.Errorf("%w: point amount must be a positive integer", apperror.ErrInvalidInput)
	}
	if action == "" {
		return nil, false, fmt.Errorf("%w: action is required", apperror.ErrInvalidInput)
	}
	if !model.ValidAwardCategory(category) {
		return nil, false, fmt.Errorf("%w: unknown category %q", apperror.ErrInvalidInput, category)
	}

	exists, err := s.userRepo.Exists(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	if !exists {
		return nil, false, fmt.Errorf("%w: user %s", apperror.ErrNotFound, userID)
	}

	// Level before the award, for the level-up notification.
	previous, err := s.repo.GetAccount(ctx, userID)
	if err != nil {
		return nil, false, err
	}

	txn := &model.PointTransaction{
		UserID:      userID,
		Category:    category,
		Action:      action,
		Points:      amount,
		ResourceRef: resourceRef,
	}

	result, err := s.repo.Award(ctx, txn, func(total int) int {
		return LevelForPoints(s.thresholds, total)
	})
	if err != nil {
		return nil, false, err
	}

	if !result.Created {
		if resourceRef == nil {
			// Unreachable: unrefs never conflict. Treat as no-op anyway.
			return txn, false, nil
		}
		existing, err := s.repo.FindTransaction(ctx, userID, action, *resourceRef)
		if err != nil {
			return nil, false, err
		}
		return existing, false, nil
	}

	if result.Account.Level > previous.Level {
		s.notifyLevelUp(ctx, userID, previous.Level, result.Account.Level, result.Account.AllTimePoints)
	}

	return txn, true, nil
}

func (s *pointsService) notifyLevelUp(ctx context.Context, userID uuid.UUID, previousLevel, newLevel, total int) {
	log.Printf("User %s leveled up: %d -> %d (%d points)", userID, previousLevel, newLevel, total)

	if s.notificationService == nil {
		return
	}

	notification := &model.Notification{
		UserID:  userID,
		Type:    "level_up",
		Message: fmt.Sprintf("You reached level %d with %d points!", newLevel, total),
	}
	if err := s.notificationService.CreateNotification(ctx, notification); err != nil {
		log.Printf("Failed to send level up notification to user %s: %v", userID, err)
	}
}

func (s *pointsService) GetUserPoints(ctx context.Context, userID uuid.UUID) (*model.PointAccount, error) {
	exists, err := s.userRepo.Exists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: user %s", apperror.ErrNotFound, userID)
	}
	return s.repo.GetAccount(ctx, userID)
}

func (s *pointsService) GetLevelStatus(points int) LevelStatus {
	return GetLevelStatus(s.thresholds, points)
}

func (s *pointsService) GetHistory(ctx context.Context, userID uuid.UUID, page, size int) ([]model.PointTransaction, int64, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}
	return s.repo.ListTransactions(ctx, userID, size, (page-1)*size)
}

// ResetPeriodicPoints zeroes the matching rolling field on every account.
// Intended to be invoked by the external scheduler; a single invocation is
// idempotent.
func (s *pointsService) ResetPeriodicPoints(ctx context.Context, period model.Period) (int64, error) {
	if period != model.PeriodWeekly && period != model.PeriodMonthly {
		return 0, fmt.Errorf("%w: period %q cannot be reset", apperror.ErrInvalidInput, period)
	}
	affected, err := s.repo.ResetPeriodic(ctx, period)
	if err != nil {
		return 0, err
	}
	log.Printf("Reset %s points on %d accounts", period, affected)
	return affected, nil
}
