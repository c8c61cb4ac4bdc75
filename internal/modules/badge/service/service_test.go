package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/captaindev404/gentil-gamification/internal/model"
	pointsService "github.com/captaindev404/gentil-gamification/internal/modules/points/service"
	"github.com/captaindev404/gentil-gamification/pkg/apperror"
	"github.com/google/uuid"
)

type progressKey struct {
	userID  uuid.UUID
	badgeID uint
}

type fakeBadgeRepo struct {
	defs     []model.BadgeDefinition
	progress map[progressKey]*model.UserBadgeProgress
}

func newFakeBadgeRepo(defs ...model.BadgeDefinition) *fakeBadgeRepo {
	return &fakeBadgeRepo{
		defs:     defs,
		progress: make(map[progressKey]*model.UserBadgeProgress),
	}
}

func (f *fakeBadgeRepo) ListAll(ctx context.Context) ([]model.BadgeDefinition, error) {
	return f.defs, nil
}

func (f *fakeBadgeRepo) ListByCategory(ctx context.Context, category model.Category) ([]model.BadgeDefinition, error) {
	var out []model.BadgeDefinition
	for _, def := range f.defs {
		if def.Category == category {
			out = append(out, def)
		}
	}
	return out, nil
}

func (f *fakeBadgeRepo) ListProgress(ctx context.Context, userID uuid.UUID) ([]model.UserBadgeProgress, error) {
	var out []model.UserBadgeProgress
	for key, p := range f.progress {
		if key.userID == userID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeBadgeRepo) UpsertProgress(ctx context.Context, userID uuid.UUID, badgeID uint, progress int) error {
	key := progressKey{userID, badgeID}
	existing, ok := f.progress[key]
	if !ok {
		f.progress[key] = &model.UserBadgeProgress{UserID: userID, BadgeID: badgeID, Progress: progress}
		return nil
	}
	if existing.EarnedAt != nil {
		return nil
	}
	if progress > existing.Progress {
		existing.Progress = progress
	}
	return nil
}

func (f *fakeBadgeRepo) MarkEarned(ctx context.Context, userID uuid.UUID, badgeID uint, threshold int, earnedAt time.Time) (bool, error) {
	existing, ok := f.progress[progressKey{userID, badgeID}]
	if !ok || existing.EarnedAt != nil {
		return false, nil
	}
	existing.EarnedAt = &earnedAt
	if threshold > existing.Progress {
		existing.Progress = threshold
	}
	return true, nil
}

type fakeCounter struct {
	counts map[model.Category]int64
}

func (f *fakeCounter) CountContributions(ctx context.Context, userID uuid.UUID, category model.Category) (int64, error) {
	return f.counts[category], nil
}

// fakePoints records bonus awards and replicates the ledger's per-ref
// idempotence, which is what makes the badge bonus at-most-once.
type fakePoints struct {
	awarded map[string]int
	fail    bool
}

func (f *fakePoints) AwardPoints(ctx context.Context, userID uuid.UUID, action string, category model.Category, amount int, resourceRef *string) (*model.PointTransaction, bool, error) {
	if f.fail {
		return nil, false, errors.New("ledger down")
	}
	if resourceRef != nil {
		if _, seen := f.awarded[*resourceRef]; seen {
			return &model.PointTransaction{}, false, nil
		}
		f.awarded[*resourceRef] = amount
	}
	return &model.PointTransaction{Points: amount}, true, nil
}

func (f *fakePoints) GetUserPoints(ctx context.Context, userID uuid.UUID) (*model.PointAccount, error) {
	return &model.PointAccount{UserID: userID, Level: 1}, nil
}

func (f *fakePoints) GetLevelStatus(points int) pointsService.LevelStatus {
	return pointsService.LevelStatus{}
}

func (f *fakePoints) GetHistory(ctx context.Context, userID uuid.UUID, page, size int) ([]model.PointTransaction, int64, error) {
	return nil, 0, nil
}

func (f *fakePoints) ResetPeriodicPoints(ctx context.Context, period model.Period) (int64, error) {
	return 0, nil
}

func feedbackTiers() []model.BadgeDefinition {
	return []model.BadgeDefinition{
		{ID: 1, Name: "Feedback Rookie", Category: model.CategoryFeedback, Tier: model.TierBronze, Threshold: 5, BonusPoints: 25},
		{ID: 2, Name: "Feedback Regular", Category: model.CategoryFeedback, Tier: model.TierSilver, Threshold: 25, BonusPoints: 100},
		{ID: 3, Name: "Feedback Expert", Category: model.CategoryFeedback, Tier: model.TierGold, Threshold: 100, BonusPoints: 400},
	}
}

func TestEvaluateBadgesRejectsUnknownCategory(t *testing.T) {
	svc := NewBadgeService(newFakeBadgeRepo(), &fakeCounter{}, &fakePoints{awarded: map[string]int{}}, nil)

	_, err := svc.EvaluateBadges(context.Background(), uuid.New(), model.Category("bogus"))
	if !errors.Is(err, apperror.ErrInvalidInput) {
		t.Errorf("got %v, want ErrInvalidInput", err)
	}
}

func TestEvaluateBadgesBelowThreshold(t *testing.T) {
	repo := newFakeBadgeRepo(feedbackTiers()...)
	counter := &fakeCounter{counts: map[model.Category]int64{model.CategoryFeedback: 3}}
	points := &fakePoints{awarded: map[string]int{}}
	svc := NewBadgeService(repo, counter, points, nil)
	userID := uuid.New()

	earned, err := svc.EvaluateBadges(context.Background(), userID, model.CategoryFeedback)
	if err != nil {
		t.Fatal(err)
	}
	if len(earned) != 0 {
		t.Fatalf("nothing should be earned at 3 contributions, got %v", earned)
	}

	// Progress still tracked for every tier.
	p := repo.progress[progressKey{userID, 1}]
	if p == nil || p.Progress != 3 {
		t.Errorf("bronze progress = %+v, want 3", p)
	}
	if len(points.awarded) != 0 {
		t.Errorf("no bonuses should be awarded: %v", points.awarded)
	}
}

func TestEvaluateBadgesEarnsTiersInOrder(t *testing.T) {
	repo := newFakeBadgeRepo(feedbackTiers()...)
	counter := &fakeCounter{counts: map[model.Category]int64{model.CategoryFeedback: 30}}
	points := &fakePoints{awarded: map[string]int{}}
	svc := NewBadgeService(repo, counter, points, nil)
	userID := uuid.New()

	earned, err := svc.EvaluateBadges(context.Background(), userID, model.CategoryFeedback)
	if err != nil {
		t.Fatal(err)
	}
	if len(earned) != 2 {
		t.Fatalf("30 contributions should earn bronze and silver, got %d", len(earned))
	}
	if earned[0].Tier != model.TierBronze || earned[1].Tier != model.TierSilver {
		t.Errorf("tiers out of order: %s, %s", earned[0].Tier, earned[1].Tier)
	}

	if points.awarded["badge:1"] != 25 || points.awarded["badge:2"] != 100 {
		t.Errorf("bonus awards wrong: %v", points.awarded)
	}
	if _, ok := points.awarded["badge:3"]; ok {
		t.Error("gold bonus awarded below its threshold")
	}
}

func TestEvaluateBadgesTierOrderIgnoresCatalogOrder(t *testing.T) {
	// Catalog stored out of order, with a gold threshold below bronze's.
	repo := newFakeBadgeRepo(
		model.BadgeDefinition{ID: 3, Name: "Gold First", Category: model.CategoryVoting, Tier: model.TierGold, Threshold: 2, BonusPoints: 400},
		model.BadgeDefinition{ID: 2, Name: "Silver", Category: model.CategoryVoting, Tier: model.TierSilver, Threshold: 8, BonusPoints: 100},
		model.BadgeDefinition{ID: 1, Name: "Bronze", Category: model.CategoryVoting, Tier: model.TierBronze, Threshold: 5, BonusPoints: 25},
	)
	counter := &fakeCounter{counts: map[model.Category]int64{model.CategoryVoting: 10}}
	points := &fakePoints{awarded: map[string]int{}}
	svc := NewBadgeService(repo, counter, points, nil)

	earned, err := svc.EvaluateBadges(context.Background(), uuid.New(), model.CategoryVoting)
	if err != nil {
		t.Fatal(err)
	}
	if len(earned) != 3 {
		t.Fatalf("earned = %d, want 3", len(earned))
	}

	wantTiers := []model.Tier{model.TierBronze, model.TierSilver, model.TierGold}
	for i, want := range wantTiers {
		if earned[i].Tier != want {
			t.Errorf("earned[%d].Tier = %s, want %s", i, earned[i].Tier, want)
		}
	}
}

func TestEvaluateBadgesAtMostOnce(t *testing.T) {
	repo := newFakeBadgeRepo(feedbackTiers()...)
	counter := &fakeCounter{counts: map[model.Category]int64{model.CategoryFeedback: 10}}
	points := &fakePoints{awarded: map[string]int{}}
	svc := NewBadgeService(repo, counter, points, nil)
	userID := uuid.New()

	first, err := svc.EvaluateBadges(context.Background(), userID, model.CategoryFeedback)
	if err != nil {
		t.Fatal(err)
	}
	if len(first) != 1 {
		t.Fatalf("want bronze earned, got %d", len(first))
	}

	second, err := svc.EvaluateBadges(context.Background(), userID, model.CategoryFeedback)
	if err != nil {
		t.Fatal(err)
	}
	if len(second) != 0 {
		t.Fatalf("repeat evaluation re-earned badges: %v", second)
	}
	if len(points.awarded) != 1 {
		t.Errorf("bonus awarded more than once: %v", points.awarded)
	}
}

func TestEvaluateBadgesBonusFailureLeavesUnearned(t *testing.T) {
	repo := newFakeBadgeRepo(feedbackTiers()...)
	counter := &fakeCounter{counts: map[model.Category]int64{model.CategoryFeedback: 10}}
	points := &fakePoints{awarded: map[string]int{}, fail: true}
	svc := NewBadgeService(repo, counter, points, nil)
	userID := uuid.New()

	earned, err := svc.EvaluateBadges(context.Background(), userID, model.CategoryFeedback)
	if err != nil {
		t.Fatal(err)
	}
	if len(earned) != 0 {
		t.Fatalf("badge should stay unearned when the bonus fails, got %v", earned)
	}

	// Ledger recovers: the next evaluation completes the award.
	points.fail = false
	earned, err = svc.EvaluateBadges(context.Background(), userID, model.CategoryFeedback)
	if err != nil {
		t.Fatal(err)
	}
	if len(earned) != 1 {
		t.Fatalf("retry should earn the badge, got %d", len(earned))
	}
}

func TestGetUserBadgesSplitsEarned(t *testing.T) {
	repo := newFakeBadgeRepo(feedbackTiers()...)
	counter := &fakeCounter{counts: map[model.Category]int64{model.CategoryFeedback: 10}}
	points := &fakePoints{awarded: map[string]int{}}
	svc := NewBadgeService(repo, counter, points, nil)
	userID := uuid.New()

	if _, err := svc.EvaluateBadges(context.Background(), userID, model.CategoryFeedback); err != nil {
		t.Fatal(err)
	}

	collection, err := svc.GetUserBadges(context.Background(), userID)
	if err != nil {
		t.Fatal(err)
	}
	if len(collection.Earned) != 1 {
		t.Errorf("earned = %d, want 1", len(collection.Earned))
	}
	if len(collection.InProgress) != 2 {
		t.Errorf("in progress = %d, want 2", len(collection.InProgress))
	}
}
