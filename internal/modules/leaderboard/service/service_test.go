package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/captaindev404/gentil-gamification/internal/model"
	"github.com/captaindev404/gentil-gamification/pkg/apperror"
	"github.com/google/uuid"
)

type scopeKey struct {
	period   model.Period
	category model.Category
}

type fakeLeaderboardRepo struct {
	accounts  []model.PointAccount
	snapshots map[scopeKey]*model.LeaderboardSnapshot
	nextID    uint
	replaced  int
}

func newFakeLeaderboardRepo(accounts ...model.PointAccount) *fakeLeaderboardRepo {
	return &fakeLeaderboardRepo{
		accounts:  accounts,
		snapshots: make(map[scopeKey]*model.LeaderboardSnapshot),
	}
}

func (f *fakeLeaderboardRepo) ListAccounts(ctx context.Context) ([]model.PointAccount, error) {
	return f.accounts, nil
}

func (f *fakeLeaderboardRepo) ReplaceSnapshot(ctx context.Context, snapshot *model.LeaderboardSnapshot) error {
	f.nextID++
	snapshot.ID = f.nextID
	for i := range snapshot.Entries {
		snapshot.Entries[i].SnapshotID = snapshot.ID
	}
	f.snapshots[scopeKey{snapshot.Period, snapshot.Category}] = snapshot
	f.replaced++
	return nil
}

func (f *fakeLeaderboardRepo) GetLatest(ctx context.Context, period model.Period, category model.Category) (*model.LeaderboardSnapshot, error) {
	if snapshot, ok := f.snapshots[scopeKey{period, category}]; ok {
		return snapshot, nil
	}
	return nil, nil
}

func (f *fakeLeaderboardRepo) findSnapshot(snapshotID uint) *model.LeaderboardSnapshot {
	for _, snapshot := range f.snapshots {
		if snapshot.ID == snapshotID {
			return snapshot
		}
	}
	return nil
}

func (f *fakeLeaderboardRepo) GetEntries(ctx context.Context, snapshotID uint, limit int) ([]model.LeaderboardEntry, error) {
	snapshot := f.findSnapshot(snapshotID)
	if snapshot == nil {
		return nil, errors.New("snapshot not found")
	}
	entries := snapshot.Entries
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func (f *fakeLeaderboardRepo) GetUserEntry(ctx context.Context, snapshotID uint, userID uuid.UUID) (*model.LeaderboardEntry, error) {
	snapshot := f.findSnapshot(snapshotID)
	if snapshot == nil {
		return nil, errors.New("snapshot not found")
	}
	for i := range snapshot.Entries {
		if snapshot.Entries[i].UserID == userID {
			return &snapshot.Entries[i], nil
		}
	}
	return nil, nil
}

func (f *fakeLeaderboardRepo) GetEntriesByRankRange(ctx context.Context, snapshotID uint, minRank, maxRank int) ([]model.LeaderboardEntry, error) {
	snapshot := f.findSnapshot(snapshotID)
	if snapshot == nil {
		return nil, errors.New("snapshot not found")
	}
	var out []model.LeaderboardEntry
	for _, entry := range snapshot.Entries {
		if entry.Rank >= minRank && entry.Rank <= maxRank {
			out = append(out, entry)
		}
	}
	return out, nil
}

func (f *fakeLeaderboardRepo) CountEntries(ctx context.Context, snapshotID uint) (int64, error) {
	snapshot := f.findSnapshot(snapshotID)
	if snapshot == nil {
		return 0, errors.New("snapshot not found")
	}
	return int64(len(snapshot.Entries)), nil
}

func account(points int, reached time.Time) model.PointAccount {
	return model.PointAccount{
		UserID:        uuid.New(),
		AllTimePoints: points,
		WeeklyPoints:  points,
		Level:         1,
		LastUpdatedAt: reached,
	}
}

func TestGenerateSnapshotSkipsZeroPointAccounts(t *testing.T) {
	now := time.Now()
	repo := newFakeLeaderboardRepo(
		account(100, now),
		account(0, now),
		account(50, now),
	)
	svc := NewLeaderboardService(repo, nil, time.Hour)

	snapshot, err := svc.GenerateSnapshot(context.Background(), model.PeriodAllTime, model.CategoryOverall)
	if err != nil {
		t.Fatal(err)
	}
	if len(snapshot.Entries) != 2 {
		t.Fatalf("entries = %d, want 2 (zero-point account unranked)", len(snapshot.Entries))
	}
	if snapshot.Entries[0].Points != 100 || snapshot.Entries[0].Rank != 1 {
		t.Errorf("top entry wrong: %+v", snapshot.Entries[0])
	}
}

func TestGenerateSnapshotRejectsInvalidScope(t *testing.T) {
	svc := NewLeaderboardService(newFakeLeaderboardRepo(), nil, time.Hour)

	cases := []struct {
		period   model.Period
		category model.Category
	}{
		{model.PeriodWeekly, model.CategoryFeedback},
		{model.PeriodMonthly, model.CategoryQuality},
		{model.Period("yearly"), model.CategoryOverall},
		{model.PeriodAllTime, model.Category("bogus")},
	}
	for _, c := range cases {
		if _, err := svc.GenerateSnapshot(context.Background(), c.period, c.category); !errors.Is(err, apperror.ErrInvalidInput) {
			t.Errorf("%s/%s: got %v, want ErrInvalidInput", c.period, c.category, err)
		}
	}
}

func TestGetLeaderboardRegeneratesWhenStale(t *testing.T) {
	now := time.Now()
	repo := newFakeLeaderboardRepo(account(100, now))
	svc := NewLeaderboardService(repo, nil, time.Hour)
	ctx := context.Background()

	// Seed a stale snapshot.
	stale := &model.LeaderboardSnapshot{
		Period:      model.PeriodAllTime,
		Category:    model.CategoryOverall,
		GeneratedAt: now.Add(-2 * time.Hour),
	}
	if err := repo.ReplaceSnapshot(ctx, stale); err != nil {
		t.Fatal(err)
	}
	repo.replaced = 0

	board, err := svc.GetLeaderboard(ctx, model.PeriodAllTime, model.CategoryOverall, 10)
	if err != nil {
		t.Fatal(err)
	}
	if repo.replaced != 1 {
		t.Errorf("stale snapshot should be regenerated, replaced = %d", repo.replaced)
	}
	if len(board.Entries) != 1 {
		t.Errorf("entries = %d, want 1", len(board.Entries))
	}
}

func TestGetLeaderboardServesFreshSnapshot(t *testing.T) {
	now := time.Now()
	repo := newFakeLeaderboardRepo(account(100, now))
	svc := NewLeaderboardService(repo, nil, time.Hour)
	ctx := context.Background()

	if _, err := svc.GenerateSnapshot(ctx, model.PeriodAllTime, model.CategoryOverall); err != nil {
		t.Fatal(err)
	}
	repo.replaced = 0

	if _, err := svc.GetLeaderboard(ctx, model.PeriodAllTime, model.CategoryOverall, 10); err != nil {
		t.Fatal(err)
	}
	if repo.replaced != 0 {
		t.Errorf("fresh snapshot regenerated %d times", repo.replaced)
	}
}

func TestGetLeaderboardLimit(t *testing.T) {
	now := time.Now()
	repo := newFakeLeaderboardRepo(
		account(100, now), account(90, now), account(80, now), account(70, now),
	)
	svc := NewLeaderboardService(repo, nil, time.Hour)

	board, err := svc.GetLeaderboard(context.Background(), model.PeriodAllTime, model.CategoryOverall, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(board.Entries) != 2 {
		t.Errorf("entries = %d, want 2", len(board.Entries))
	}
}

func TestGetUserPositionRankedWithNeighbors(t *testing.T) {
	now := time.Now()
	accounts := []model.PointAccount{
		account(100, now), account(90, now), account(80, now),
		account(70, now), account(60, now), account(50, now),
	}
	repo := newFakeLeaderboardRepo(accounts...)
	svc := NewLeaderboardService(repo, nil, time.Hour)
	ctx := context.Background()

	// The 80-point account sits at rank 3.
	target := accounts[2].UserID
	position, err := svc.GetUserPosition(ctx, target, model.PeriodAllTime, model.CategoryOverall)
	if err != nil {
		t.Fatal(err)
	}
	if !position.Ranked {
		t.Fatal("account with points should be ranked")
	}
	if position.Entry.Rank != 3 {
		t.Errorf("rank = %d, want 3", position.Entry.Rank)
	}
	if position.TotalRanked != 6 {
		t.Errorf("total = %d, want 6", position.TotalRanked)
	}
	// Ranks 1 through 5.
	if len(position.Neighbors) != 5 {
		t.Errorf("neighbors = %d, want 5", len(position.Neighbors))
	}
}

func TestGetUserPositionUnranked(t *testing.T) {
	now := time.Now()
	repo := newFakeLeaderboardRepo(account(100, now))
	svc := NewLeaderboardService(repo, nil, time.Hour)

	position, err := svc.GetUserPosition(context.Background(), uuid.New(), model.PeriodAllTime, model.CategoryOverall)
	if err != nil {
		t.Fatal(err)
	}
	if position.Ranked {
		t.Error("unknown user should be unranked")
	}
	if position.Entry != nil {
		t.Errorf("unranked position carries an entry: %+v", position.Entry)
	}
	if position.TotalRanked != 1 {
		t.Errorf("total = %d, want 1", position.TotalRanked)
	}
}

func TestWeeklyBoardUsesRollingPoints(t *testing.T) {
	now := time.Now()
	busy := model.PointAccount{UserID: uuid.New(), AllTimePoints: 500, WeeklyPoints: 0, Level: 4, LastUpdatedAt: now}
	fresh := model.PointAccount{UserID: uuid.New(), AllTimePoints: 40, WeeklyPoints: 40, Level: 1, LastUpdatedAt: now}
	repo := newFakeLeaderboardRepo(busy, fresh)
	svc := NewLeaderboardService(repo, nil, time.Hour)

	snapshot, err := svc.GenerateSnapshot(context.Background(), model.PeriodWeekly, model.CategoryOverall)
	if err != nil {
		t.Fatal(err)
	}
	if len(snapshot.Entries) != 1 {
		t.Fatalf("entries = %d, want 1 (no weekly points, no rank)", len(snapshot.Entries))
	}
	if snapshot.Entries[0].UserID != fresh.UserID {
		t.Error("weekly board ranked the wrong account")
	}
}
