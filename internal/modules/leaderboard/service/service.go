package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/captaindev404/gentil-gamification/internal/model"
	"github.com/captaindev404/gentil-gamification/internal/modules/leaderboard/dto"
	"github.com/captaindev404/gentil-gamification/internal/modules/leaderboard/repository"
	"github.com/captaindev404/gentil-gamification/pkg/apperror"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// cachedEntries is how many rows get cached per scope; list requests are
// served by slicing this, so the handler caps limits at the same number.
const cachedEntries = 50

const neighborSpan = 2

type LeaderboardService interface {
	GenerateSnapshot(ctx context.Context, period model.Period, category model.Category) (*model.LeaderboardSnapshot, error)
	GetLeaderboard(ctx context.Context, period model.Period, category model.Category, limit int) (*dto.Leaderboard, error)
	GetUserPosition(ctx context.Context, userID uuid.UUID, period model.Period, category model.Category) (*dto.LeaderboardPosition, error)
	RefreshAll(ctx context.Context)
}

type leaderboardService struct {
	leaderboardRepo repository.LeaderboardRepository
	redisClient     *redis.Client
	freshness       time.Duration
}

func NewLeaderboardService(leaderboardRepo repository.LeaderboardRepository, redisClient *redis.Client, freshness time.Duration) LeaderboardService {
	return &leaderboardService{
		leaderboardRepo: leaderboardRepo,
		redisClient:     redisClient,
		freshness:       freshness,
	}
}

// scopes lists every (period, category) pair that gets a snapshot. Weekly and
// monthly boards only exist for overall points because the rolling totals are
// not tracked per category.
var scopes = []struct {
	Period   model.Period
	Category model.Category
}{
	{model.PeriodAllTime, model.CategoryOverall},
	{model.PeriodAllTime, model.CategoryFeedback},
	{model.PeriodAllTime, model.CategoryVoting},
	{model.PeriodAllTime, model.CategoryResearch},
	{model.PeriodAllTime, model.CategoryQuality},
	{model.PeriodWeekly, model.CategoryOverall},
	{model.PeriodMonthly, model.CategoryOverall},
}

func validScope(period model.Period, category model.Category) error {
	for _, s := range scopes {
		if s.Period == period && s.Category == category {
			return nil
		}
	}
	return fmt.Errorf("%w: no leaderboard for period %q and category %q", apperror.ErrInvalidInput, period, category)
}

func scopePoints(account *model.PointAccount, period model.Period, category model.Category) int {
	switch period {
	case model.PeriodWeekly:
		return account.WeeklyPoints
	case model.PeriodMonthly:
		return account.MonthlyPoints
	}
	if category == model.CategoryOverall {
		return account.AllTimePoints
	}
	return account.CategoryPoints(category)
}

func (s *leaderboardService) GenerateSnapshot(ctx context.Context, period model.Period, category model.Category) (*model.LeaderboardSnapshot, error) {
	if err := validScope(period, category); err != nil {
		return nil, err
	}

	accounts, err := s.leaderboardRepo.ListAccounts(ctx)
	if err != nil {
		return nil, err
	}

	candidates := make([]Candidate, 0, len(accounts))
	for i := range accounts {
		points := scopePoints(&accounts[i], period, category)
		if points <= 0 {
			continue
		}
		candidates = append(candidates, Candidate{
			UserID:    accounts[i].UserID,
			Points:    points,
			Level:     accounts[i].Level,
			ReachedAt: accounts[i].LastUpdatedAt,
		})
	}

	snapshot := &model.LeaderboardSnapshot{
		Period:      period,
		Category:    category,
		GeneratedAt: time.Now().UTC(),
		Entries:     RankCandidates(candidates),
	}
	if err := s.leaderboardRepo.ReplaceSnapshot(ctx, snapshot); err != nil {
		return nil, err
	}
	s.invalidateCache(ctx, period, category)
	return snapshot, nil
}

func (s *leaderboardService) GetLeaderboard(ctx context.Context, period model.Period, category model.Category, limit int) (*dto.Leaderboard, error) {
	if err := validScope(period, category); err != nil {
		return nil, err
	}
	if limit < 1 {
		limit = 10
	}
	if limit > cachedEntries {
		limit = cachedEntries
	}

	if cached := s.readCache(ctx, period, category); cached != nil {
		if len(cached.Entries) > limit {
			cached.Entries = cached.Entries[:limit]
		}
		return cached, nil
	}

	snapshot, err := s.currentSnapshot(ctx, period, category)
	if err != nil {
		return nil, err
	}
	rows, err := s.leaderboardRepo.GetEntries(ctx, snapshot.ID, cachedEntries)
	if err != nil {
		return nil, err
	}

	board := &dto.Leaderboard{
		Period:      string(period),
		Category:    string(category),
		GeneratedAt: snapshot.GeneratedAt,
		Entries:     toEntryDTOs(rows),
	}
	s.writeCache(ctx, period, category, board, snapshot.GeneratedAt)

	if len(board.Entries) > limit {
		board.Entries = board.Entries[:limit]
	}
	return board, nil
}

func (s *leaderboardService) GetUserPosition(ctx context.Context, userID uuid.UUID, period model.Period, category model.Category) (*dto.LeaderboardPosition, error) {
	if err := validScope(period, category); err != nil {
		return nil, err
	}

	snapshot, err := s.currentSnapshot(ctx, period, category)
	if err != nil {
		return nil, err
	}
	total, err := s.leaderboardRepo.CountEntries(ctx, snapshot.ID)
	if err != nil {
		return nil, err
	}

	entry, err := s.leaderboardRepo.GetUserEntry(ctx, snapshot.ID, userID)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return &dto.LeaderboardPosition{
			Ranked:      false,
			Neighbors:   []dto.LeaderboardEntry{},
			TotalRanked: total,
		}, nil
	}

	minRank := entry.Rank - neighborSpan
	if minRank < 1 {
		minRank = 1
	}
	rows, err := s.leaderboardRepo.GetEntriesByRankRange(ctx, snapshot.ID, minRank, entry.Rank+neighborSpan)
	if err != nil {
		return nil, err
	}

	entryDTO := toEntryDTO(entry)
	return &dto.LeaderboardPosition{
		Ranked:      true,
		Entry:       &entryDTO,
		Neighbors:   toEntryDTOs(rows),
		TotalRanked: total,
	}, nil
}

// RefreshAll regenerates every scope. Failures are logged and skipped so one
// bad scope doesn't block the rest of the cron run.
func (s *leaderboardService) RefreshAll(ctx context.Context) {
	for _, scope := range scopes {
		if _, err := s.GenerateSnapshot(ctx, scope.Period, scope.Category); err != nil {
			log.Printf("leaderboard refresh failed for %s/%s: %v", scope.Period, scope.Category, err)
		}
	}
}

// currentSnapshot returns the stored snapshot when it is inside the freshness
// window, otherwise regenerates it inline.
func (s *leaderboardService) currentSnapshot(ctx context.Context, period model.Period, category model.Category) (*model.LeaderboardSnapshot, error) {
	snapshot, err := s.leaderboardRepo.GetLatest(ctx, period, category)
	if err != nil {
		return nil, err
	}
	if snapshot != nil && time.Since(snapshot.GeneratedAt) < s.freshness {
		return snapshot, nil
	}
	return s.GenerateSnapshot(ctx, period, category)
}

func cacheKey(period model.Period, category model.Category) string {
	return fmt.Sprintf("leaderboard:%s:%s", period, category)
}

func (s *leaderboardService) readCache(ctx context.Context, period model.Period, category model.Category) *dto.Leaderboard {
	if s.redisClient == nil {
		return nil
	}
	raw, err := s.redisClient.Get(ctx, cacheKey(period, category)).Result()
	if err != nil {
		return nil
	}
	var board dto.Leaderboard
	if err := json.Unmarshal([]byte(raw), &board); err != nil {
		return nil
	}
	return &board
}

func (s *leaderboardService) writeCache(ctx context.Context, period model.Period, category model.Category, board *dto.Leaderboard, generatedAt time.Time) {
	if s.redisClient == nil {
		return
	}
	ttl := s.freshness - time.Since(generatedAt)
	if ttl <= 0 {
		return
	}
	raw, err := json.Marshal(board)
	if err != nil {
		return
	}
	if err := s.redisClient.Set(ctx, cacheKey(period, category), raw, ttl).Err(); err != nil {
		log.Printf("failed to cache leaderboard %s/%s: %v", period, category, err)
	}
}

func (s *leaderboardService) invalidateCache(ctx context.Context, period model.Period, category model.Category) {
	if s.redisClient == nil {
		return
	}
	if err := s.redisClient.Del(ctx, cacheKey(period, category)).Err(); err != nil {
		log.Printf("failed to invalidate leaderboard cache %s/%s: %v", period, category, err)
	}
}

func toEntryDTO(entry *model.LeaderboardEntry) dto.LeaderboardEntry {
	return dto.LeaderboardEntry{
		Rank:      entry.Rank,
		UserID:    entry.UserID.String(),
		Username:  entry.User.Username,
		AvatarURL: entry.User.AvatarURL,
		Points:    entry.Points,
		Level:     entry.Level,
	}
}

func toEntryDTOs(entries []model.LeaderboardEntry) []dto.LeaderboardEntry {
	out := make([]dto.LeaderboardEntry, 0, len(entries))
	for i := range entries {
		out = append(out, toEntryDTO(&entries[i]))
	}
	return out
}
