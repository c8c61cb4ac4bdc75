package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/captaindev404/gentil-gamification/internal/model"
	achievementDto "github.com/captaindev404/gentil-gamification/internal/modules/achievement/dto"
	"github.com/captaindev404/gentil-gamification/internal/modules/achievement/repository"
	notifService "github.com/captaindev404/gentil-gamification/internal/modules/notification/service"
	pointsService "github.com/captaindev404/gentil-gamification/internal/modules/points/service"
	"github.com/google/uuid"
)

// ActivityProvider answers "was the user active on day D" style questions.
// The default implementation reads the point ledger; the host application can
// supply its own activity log instead.
type ActivityProvider interface {
	ActiveDays(ctx context.Context, userID uuid.UUID, since time.Time) ([]time.Time, error)
	HasAction(ctx context.Context, userID uuid.UUID, action string) (bool, error)
}

type AchievementService interface {
	EvaluateAchievements(ctx context.Context, userID uuid.UUID, trigger model.Category) ([]model.AchievementDefinition, error)
	ListAchievements(ctx context.Context, userID uuid.UUID) ([]achievementDto.AchievementStatus, error)
	GetUserAchievements(ctx context.Context, userID uuid.UUID) (*achievementDto.AchievementCollection, error)
}

type achievementService struct {
	repo                repository.AchievementRepository
	activity            ActivityProvider
	pointsService       pointsService.PointsService
	notificationService notifService.NotificationService
}

func NewAchievementService(repo repository.AchievementRepository, activity ActivityProvider, points pointsService.PointsService, notifications notifService.NotificationService) AchievementService {
	return &achievementService{
		repo:                repo,
		activity:            activity,
		pointsService:       points,
		notificationService: notifications,
	}
}

// EvaluateAchievements recomputes progress for every unearned achievement and
// returns the ones newly earned by this call. The trigger category is
// advisory: streaks and milestones advance on any action, so all definitions
// are re-checked. Secret achievements are evaluated like any other; the flag
// only affects listings.
func (s *achievementService) EvaluateAchievements(ctx context.Context, userID uuid.UUID, trigger model.Category) ([]model.AchievementDefinition, error) {
	defs, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	progress, err := s.repo.ListProgress(ctx, userID)
	if err != nil {
		return nil, err
	}
	earned := make(map[uint]bool, len(progress))
	for _, p := range progress {
		if p.EarnedAt != nil {
			earned[p.AchievementID] = true
		}
	}

	account, err := s.pointsService.GetUserPoints(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Compute the streak once if any unearned definition needs it.
	streak := -1
	maxStreakDays := 0
	for _, def := range defs {
		if !earned[def.ID] && def.Requirement == model.RequireStreakDays && def.Threshold > maxStreakDays {
			maxStreakDays = def.Threshold
		}
	}
	if maxStreakDays > 0 {
		since := time.Now().UTC().AddDate(0, 0, -(maxStreakDays + 1))
		days, err := s.activity.ActiveDays(ctx, userID, since)
		if err != nil {
			return nil, err
		}
		streak = CurrentStreak(days, time.Now())
	}

	newlyEarned := []model.AchievementDefinition{}
	for _, def := range defs {
		if earned[def.ID] {
			continue
		}

		value, err := s.progressValue(ctx, userID, def, account, streak)
		if err != nil {
			return newlyEarned, err
		}

		if err := s.repo.UpsertProgress(ctx, userID, def.ID, value); err != nil {
			return newlyEarned, err
		}

		if value < def.Threshold {
			continue
		}

		// Same at-most-once pattern as badges: bonus first, keyed by the
		// achievement id, then the conditional earned flip.
		if def.BonusPoints > 0 {
			ref := fmt.Sprintf("achievement:%d", def.ID)
			if _, _, err := s.pointsService.AwardPoints(ctx, userID, model.ActionAchievementBonus, model.CategoryQuality, def.BonusPoints, &ref); err != nil {
				log.Printf("Achievement bonus award failed for user %s achievement %q: %v", userID, def.Name, err)
				continue
			}
		}

		earnedNow, err := s.repo.MarkEarned(ctx, userID, def.ID, def.Threshold, time.Now().UTC())
		if err != nil {
			return newlyEarned, err
		}
		if earnedNow {
			newlyEarned = append(newlyEarned, def)
			s.notifyAchievementEarned(ctx, userID, def)
		}
	}

	return newlyEarned, nil
}

func (s *achievementService) progressValue(ctx context.Context, userID uuid.UUID, def model.AchievementDefinition, account *model.PointAccount, streak int) (int, error) {
	switch def.Requirement {
	case model.RequireStreakDays:
		return streak, nil
	case model.RequireLevel:
		return account.Level, nil
	case model.RequirePoints:
		return account.AllTimePoints, nil
	case model.RequireAction:
		done, err := s.activity.HasAction(ctx, userID, def.RequiredAction)
		if err != nil {
			return 0, err
		}
		if done {
			return def.Threshold, nil
		}
		return 0, nil
	default:
		log.Printf("Unknown achievement requirement %q on %q", def.Requirement, def.Name)
		return 0, nil
	}
}

func (s *achievementService) notifyAchievementEarned(ctx context.Context, userID uuid.UUID, def model.AchievementDefinition) {
	log.Printf("User %s earned achievement %q", userID, def.Name)

	if s.notificationService == nil {
		return
	}

	notification := &model.Notification{
		UserID:  userID,
		Type:    "achievement_earned",
		Message: fmt.Sprintf("Achievement unlocked: %s!", def.Name),
	}
	if err := s.notificationService.CreateNotification(ctx, notification); err != nil {
		log.Printf("Failed to send achievement notification to user %s: %v", userID, err)
	}
}

// ListAchievements returns the catalog annotated with the user's progress.
// Secret achievements stay hidden until the user has earned them.
func (s *achievementService) ListAchievements(ctx context.Context, userID uuid.UUID) ([]achievementDto.AchievementStatus, error) {
	defs, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	progress, err := s.repo.ListProgress(ctx, userID)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]model.UserAchievementProgress, len(progress))
	for _, p := range progress {
		byID[p.AchievementID] = p
	}

	statuses := make([]achievementDto.AchievementStatus, 0, len(defs))
	for _, def := range defs {
		p, tracked := byID[def.ID]
		if def.Secret && (!tracked || p.EarnedAt == nil) {
			continue
		}
		status := achievementDto.AchievementStatus{Achievement: def}
		if tracked {
			status.Progress = p.Progress
			status.EarnedAt = p.EarnedAt
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}

// GetUserAchievements returns only tracked achievements, split into earned
// and in-progress. Unearned secrets are excluded here too.
func (s *achievementService) GetUserAchievements(ctx context.Context, userID uuid.UUID) (*achievementDto.AchievementCollection, error) {
	progress, err := s.repo.ListProgress(ctx, userID)
	if err != nil {
		return nil, err
	}

	collection := &achievementDto.AchievementCollection{
		Earned:     []achievementDto.AchievementStatus{},
		InProgress: []achievementDto.AchievementStatus{},
	}
	for _, p := range progress {
		status := achievementDto.AchievementStatus{
			Achievement: p.Achievement,
			Progress:    p.Progress,
			EarnedAt:    p.EarnedAt,
		}
		if p.EarnedAt != nil {
			collection.Earned = append(collection.Earned, status)
		} else if !p.Achievement.Secret {
			collection.InProgress = append(collection.InProgress, status)
		}
	}
	return collection, nil
}
