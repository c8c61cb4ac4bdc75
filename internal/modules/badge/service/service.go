package service

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/captaindev404/gentil-gamification/internal/model"
	badgeDto "github.com/captaindev404/gentil-gamification/internal/modules/badge/dto"
	"github.com/captaindev404/gentil-gamification/internal/modules/badge/repository"
	notifService "github.com/captaindev404/gentil-gamification/internal/modules/notification/service"
	pointsService "github.com/captaindev404/gentil-gamification/internal/modules/points/service"
	"github.com/captaindev404/gentil-gamification/pkg/apperror"
	"github.com/google/uuid"
)

// ContributionCounter supplies "how many category-X contributions has this
// user made". The default implementation reads the point ledger; the host
// application can plug in counts from its own domain tables instead.
type ContributionCounter interface {
	CountContributions(ctx context.Context, userID uuid.UUID, category model.Category) (int64, error)
}

type BadgeService interface {
	EvaluateBadges(ctx context.Context, userID uuid.UUID, category model.Category) ([]model.BadgeDefinition, error)
	ListBadges(ctx context.Context, userID uuid.UUID) ([]badgeDto.BadgeStatus, error)
	GetUserBadges(ctx context.Context, userID uuid.UUID) (*badgeDto.BadgeCollection, error)
}

type badgeService struct {
	repo                repository.BadgeRepository
	counter             ContributionCounter
	pointsService       pointsService.PointsService
	notificationService notifService.NotificationService
}

func NewBadgeService(repo repository.BadgeRepository, counter ContributionCounter, points pointsService.PointsService, notifications notifService.NotificationService) BadgeService {
	return &badgeService{
		repo:                repo,
		counter:             counter,
		pointsService:       points,
		notificationService: notifications,
	}
}

// EvaluateBadges recomputes the user's progress for every badge in the
// category and returns the badges newly earned by this call. An empty result
// is the common steady-state outcome, not an error.
func (s *badgeService) EvaluateBadges(ctx context.Context, userID uuid.UUID, category model.Category) ([]model.BadgeDefinition, error) {
	if !model.ValidAwardCategory(category) {
		return nil, fmt.Errorf("%w: unknown badge category %q", apperror.ErrInvalidInput, category)
	}

	count, err := s.counter.CountContributions(ctx, userID, category)
	if err != nil {
		return nil, err
	}

	defs, err := s.repo.ListByCategory(ctx, category)
	if err != nil {
		return nil, err
	}
	// Bronze before silver before gold before platinum, regardless of how
	// the catalog rows were stored or what thresholds they carry.
	sort.Slice(defs, func(i, j int) bool {
		if defs[i].Tier.Order() != defs[j].Tier.Order() {
			return defs[i].Tier.Order() < defs[j].Tier.Order()
		}
		return defs[i].Threshold < defs[j].Threshold
	})

	progress, err := s.repo.ListProgress(ctx, userID)
	if err != nil {
		return nil, err
	}
	earned := make(map[uint]bool, len(progress))
	for _, p := range progress {
		if p.EarnedAt != nil {
			earned[p.BadgeID] = true
		}
	}

	newlyEarned := []model.BadgeDefinition{}
	for _, def := range defs {
		if earned[def.ID] {
			continue
		}

		// Progress tracking is continuous, not just on award.
		if err := s.repo.UpsertProgress(ctx, userID, def.ID, int(count)); err != nil {
			return newlyEarned, err
		}

		if count < int64(def.Threshold) {
			continue
		}

		// Award the bonus before flipping earned_at: the ledger's
		// (user, action, resource_ref) uniqueness makes the award
		// at-most-once even when evaluations race, and a failed bonus
		// leaves the badge unearned so the next evaluation retries.
		if def.BonusPoints > 0 {
			ref := fmt.Sprintf("badge:%d", def.ID)
			if _, _, err := s.pointsService.AwardPoints(ctx, userID, model.ActionBadgeBonus, def.Category, def.BonusPoints, &ref); err != nil {
				log.Printf("Badge bonus award failed for user %s badge %q: %v", userID, def.Name, err)
				continue
			}
		}

		earnedNow, err := s.repo.MarkEarned(ctx, userID, def.ID, def.Threshold, time.Now().UTC())
		if err != nil {
			return newlyEarned, err
		}
		if earnedNow {
			newlyEarned = append(newlyEarned, def)
			s.notifyBadgeEarned(ctx, userID, def)
		}
	}

	return newlyEarned, nil
}

func (s *badgeService) notifyBadgeEarned(ctx context.Context, userID uuid.UUID, def model.BadgeDefinition) {
	log.Printf("User %s earned badge %q (%s %s)", userID, def.Name, def.Tier, def.Category)

	if s.notificationService == nil {
		return
	}

	notification := &model.Notification{
		UserID:  userID,
		Type:    "badge_earned",
		Message: fmt.Sprintf("You earned the %s badge: %s!", def.Tier, def.Name),
	}
	if err := s.notificationService.CreateNotification(ctx, notification); err != nil {
		log.Printf("Failed to send badge notification to user %s: %v", userID, err)
	}
}

// ListBadges returns the full catalog annotated with the user's progress.
func (s *badgeService) ListBadges(ctx context.Context, userID uuid.UUID) ([]badgeDto.BadgeStatus, error) {
	defs, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	progress, err := s.repo.ListProgress(ctx, userID)
	if err != nil {
		return nil, err
	}
	byBadge := make(map[uint]model.UserBadgeProgress, len(progress))
	for _, p := range progress {
		byBadge[p.BadgeID] = p
	}

	statuses := make([]badgeDto.BadgeStatus, 0, len(defs))
	for _, def := range defs {
		status := badgeDto.BadgeStatus{Badge: def}
		if p, ok := byBadge[def.ID]; ok {
			status.Progress = p.Progress
			status.EarnedAt = p.EarnedAt
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}

// GetUserBadges returns only the badges the user has started or earned.
func (s *badgeService) GetUserBadges(ctx context.Context, userID uuid.UUID) (*badgeDto.BadgeCollection, error) {
	progress, err := s.repo.ListProgress(ctx, userID)
	if err != nil {
		return nil, err
	}

	collection := &badgeDto.BadgeCollection{
		Earned:     []badgeDto.BadgeStatus{},
		InProgress: []badgeDto.BadgeStatus{},
	}
	for _, p := range progress {
		status := badgeDto.BadgeStatus{
			Badge:    p.Badge,
			Progress: p.Progress,
			EarnedAt: p.EarnedAt,
		}
		if p.EarnedAt != nil {
			collection.Earned = append(collection.Earned, status)
		} else {
			collection.InProgress = append(collection.InProgress, status)
		}
	}
	return collection, nil
}
