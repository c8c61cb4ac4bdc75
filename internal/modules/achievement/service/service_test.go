package service

import (
	"context"
	"testing"
	"time"

	"github.com/captaindev404/gentil-gamification/internal/model"
	pointsService "github.com/captaindev404/gentil-gamification/internal/modules/points/service"
	"github.com/google/uuid"
)

type progressKey struct {
	userID        uuid.UUID
	achievementID uint
}

type fakeAchievementRepo struct {
	defs     []model.AchievementDefinition
	progress map[progressKey]*model.UserAchievementProgress
}

func newFakeAchievementRepo(defs ...model.AchievementDefinition) *fakeAchievementRepo {
	return &fakeAchievementRepo{
		defs:     defs,
		progress: make(map[progressKey]*model.UserAchievementProgress),
	}
}

func (f *fakeAchievementRepo) ListAll(ctx context.Context) ([]model.AchievementDefinition, error) {
	return f.defs, nil
}

func (f *fakeAchievementRepo) ListProgress(ctx context.Context, userID uuid.UUID) ([]model.UserAchievementProgress, error) {
	var out []model.UserAchievementProgress
	for key, p := range f.progress {
		if key.userID == userID {
			copied := *p
			for _, def := range f.defs {
				if def.ID == key.achievementID {
					copied.Achievement = def
				}
			}
			out = append(out, copied)
		}
	}
	return out, nil
}

func (f *fakeAchievementRepo) UpsertProgress(ctx context.Context, userID uuid.UUID, achievementID uint, progress int) error {
	key := progressKey{userID, achievementID}
	existing, ok := f.progress[key]
	if !ok {
		f.progress[key] = &model.UserAchievementProgress{UserID: userID, AchievementID: achievementID, Progress: progress}
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

func (f *fakeAchievementRepo) MarkEarned(ctx context.Context, userID uuid.UUID, achievementID uint, threshold int, earnedAt time.Time) (bool, error) {
	existing, ok := f.progress[progressKey{userID, achievementID}]
	if !ok || existing.EarnedAt != nil {
		return false, nil
	}
	existing.EarnedAt = &earnedAt
	if threshold > existing.Progress {
		existing.Progress = threshold
	}
	return true, nil
}

type fakeActivity struct {
	days    []time.Time
	actions map[string]bool
}

func (f *fakeActivity) ActiveDays(ctx context.Context, userID uuid.UUID, since time.Time) ([]time.Time, error) {
	return f.days, nil
}

func (f *fakeActivity) HasAction(ctx context.Context, userID uuid.UUID, action string) (bool, error) {
	return f.actions[action], nil
}

type fakePoints struct {
	account *model.PointAccount
	awarded map[string]int
}

func (f *fakePoints) AwardPoints(ctx context.Context, userID uuid.UUID, action string, category model.Category, amount int, resourceRef *string) (*model.PointTransaction, bool, error) {
	if resourceRef != nil {
		if _, seen := f.awarded[*resourceRef]; seen {
			return &model.PointTransaction{}, false, nil
		}
		f.awarded[*resourceRef] = amount
	}
	return &model.PointTransaction{Points: amount}, true, nil
}

func (f *fakePoints) GetUserPoints(ctx context.Context, userID uuid.UUID) (*model.PointAccount, error) {
	return f.account, nil
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

func catalog() []model.AchievementDefinition {
	return []model.AchievementDefinition{
		{ID: 1, Name: "One Week Strong", Category: model.AchievementStreak, Requirement: model.RequireStreakDays, Threshold: 7, BonusPoints: 100},
		{ID: 2, Name: "Level 5 Reached", Category: model.AchievementMilestone, Requirement: model.RequireLevel, Threshold: 5, BonusPoints: 200},
		{ID: 3, Name: "Point Collector", Category: model.AchievementMilestone, Requirement: model.RequirePoints, Threshold: 1000, BonusPoints: 150},
		{ID: 4, Name: "First Steps", Category: model.AchievementSpecial, Requirement: model.RequireAction, Threshold: 1, RequiredAction: "feedback_created", BonusPoints: 10},
		{ID: 5, Name: "Bug Hunter", Category: model.AchievementSpecial, Requirement: model.RequireAction, Threshold: 1, RequiredAction: "bug_confirmed", Secret: true, BonusPoints: 300},
	}
}

func recentDays(n int) []time.Time {
	now := time.Now().UTC()
	days := make([]time.Time, 0, n)
	for i := 0; i < n; i++ {
		days = append(days, now.AddDate(0, 0, -i))
	}
	return days
}

func TestEvaluateAchievementsStreak(t *testing.T) {
	repo := newFakeAchievementRepo(catalog()...)
	activity := &fakeActivity{days: recentDays(7), actions: map[string]bool{}}
	points := &fakePoints{account: &model.PointAccount{Level: 1}, awarded: map[string]int{}}
	svc := NewAchievementService(repo, activity, points, nil)
	userID := uuid.New()

	earned, err := svc.EvaluateAchievements(context.Background(), userID, model.CategoryFeedback)
	if err != nil {
		t.Fatal(err)
	}
	if len(earned) != 1 || earned[0].ID != 1 {
		t.Fatalf("want the 7-day streak earned, got %v", earned)
	}
	if points.awarded["achievement:1"] != 100 {
		t.Errorf("streak bonus not awarded: %v", points.awarded)
	}
}

func TestEvaluateAchievementsStreakTooShort(t *testing.T) {
	repo := newFakeAchievementRepo(catalog()...)
	activity := &fakeActivity{days: recentDays(4), actions: map[string]bool{}}
	points := &fakePoints{account: &model.PointAccount{Level: 1}, awarded: map[string]int{}}
	svc := NewAchievementService(repo, activity, points, nil)
	userID := uuid.New()

	earned, err := svc.EvaluateAchievements(context.Background(), userID, model.CategoryFeedback)
	if err != nil {
		t.Fatal(err)
	}
	if len(earned) != 0 {
		t.Fatalf("4-day streak should earn nothing, got %v", earned)
	}
	if p := repo.progress[progressKey{userID, 1}]; p == nil || p.Progress != 4 {
		t.Errorf("streak progress = %+v, want 4", p)
	}
}

func TestEvaluateAchievementsMilestones(t *testing.T) {
	repo := newFakeAchievementRepo(catalog()...)
	activity := &fakeActivity{actions: map[string]bool{}}
	points := &fakePoints{account: &model.PointAccount{Level: 5, AllTimePoints: 1200}, awarded: map[string]int{}}
	svc := NewAchievementService(repo, activity, points, nil)
	userID := uuid.New()

	earned, err := svc.EvaluateAchievements(context.Background(), userID, model.CategoryQuality)
	if err != nil {
		t.Fatal(err)
	}

	got := make(map[uint]bool, len(earned))
	for _, def := range earned {
		got[def.ID] = true
	}
	if !got[2] || !got[3] {
		t.Errorf("level and points milestones should both be earned, got %v", earned)
	}
}

func TestEvaluateAchievementsOneTimeAction(t *testing.T) {
	repo := newFakeAchievementRepo(catalog()...)
	activity := &fakeActivity{actions: map[string]bool{"feedback_created": true}}
	points := &fakePoints{account: &model.PointAccount{Level: 1}, awarded: map[string]int{}}
	svc := NewAchievementService(repo, activity, points, nil)
	userID := uuid.New()

	earned, err := svc.EvaluateAchievements(context.Background(), userID, model.CategoryFeedback)
	if err != nil {
		t.Fatal(err)
	}
	if len(earned) != 1 || earned[0].ID != 4 {
		t.Fatalf("want First Steps earned, got %v", earned)
	}

	// Repeat evaluation earns nothing new.
	again, err := svc.EvaluateAchievements(context.Background(), userID, model.CategoryFeedback)
	if err != nil {
		t.Fatal(err)
	}
	if len(again) != 0 {
		t.Fatalf("re-evaluation re-earned: %v", again)
	}
	if len(points.awarded) != 1 {
		t.Errorf("bonus awarded more than once: %v", points.awarded)
	}
}

func TestSecretAchievementsHiddenUntilEarned(t *testing.T) {
	repo := newFakeAchievementRepo(catalog()...)
	activity := &fakeActivity{actions: map[string]bool{}}
	points := &fakePoints{account: &model.PointAccount{Level: 1}, awarded: map[string]int{}}
	svc := NewAchievementService(repo, activity, points, nil)
	userID := uuid.New()

	if _, err := svc.EvaluateAchievements(context.Background(), userID, model.CategoryFeedback); err != nil {
		t.Fatal(err)
	}

	statuses, err := svc.ListAchievements(context.Background(), userID)
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range statuses {
		if s.Achievement.Secret {
			t.Fatalf("unearned secret %q visible in listing", s.Achievement.Name)
		}
	}

	collection, err := svc.GetUserAchievements(context.Background(), userID)
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range collection.InProgress {
		if s.Achievement.Secret {
			t.Fatalf("unearned secret %q visible in progress list", s.Achievement.Name)
		}
	}

	// Earn it; now it shows up.
	activity.actions["bug_confirmed"] = true
	earned, err := svc.EvaluateAchievements(context.Background(), userID, model.CategoryQuality)
	if err != nil {
		t.Fatal(err)
	}
	if len(earned) != 1 || earned[0].ID != 5 {
		t.Fatalf("want Bug Hunter earned, got %v", earned)
	}

	statuses, err = svc.ListAchievements(context.Background(), userID)
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, s := range statuses {
		if s.Achievement.ID == 5 {
			found = true
			if s.EarnedAt == nil {
				t.Error("earned secret listed without earned_at")
			}
		}
	}
	if !found {
		t.Error("earned secret missing from listing")
	}
}
