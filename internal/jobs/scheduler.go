// Package jobs owns the cron schedule: weekly and monthly point resets and
// periodic leaderboard snapshot regeneration. The entry points are the plain
// service methods; this package only decides when they run.
package jobs

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/captaindev404/gentil-gamification/internal/config"
	"github.com/captaindev404/gentil-gamification/internal/model"
	leaderboardService "github.com/captaindev404/gentil-gamification/internal/modules/leaderboard/service"
	pointsService "github.com/captaindev404/gentil-gamification/internal/modules/points/service"
)

type Scheduler struct {
	cron               *cron.Cron
	pointsService      pointsService.PointsService
	leaderboardService leaderboardService.LeaderboardService
	cfg                *config.Config
}

// NewScheduler builds the scheduler in UTC; the reset specs are calendar
// boundaries and must not drift with the host timezone.
func NewScheduler(points pointsService.PointsService, leaderboards leaderboardService.LeaderboardService, cfg *config.Config) *Scheduler {
	return &Scheduler{
		cron:               cron.New(cron.WithLocation(time.UTC)),
		pointsService:      points,
		leaderboardService: leaderboards,
		cfg:                cfg,
	}
}

func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.cfg.WeeklyResetSpec, func() {
		s.reset(ctx, model.PeriodWeekly)
	}); err != nil {
		return err
	}

	if _, err := s.cron.AddFunc(s.cfg.MonthlyResetSpec, func() {
		s.reset(ctx, model.PeriodMonthly)
	}); err != nil {
		return err
	}

	if _, err := s.cron.AddFunc(s.cfg.SnapshotRefreshSpec, func() {
		log.Println("[CRON] refreshing leaderboard snapshots")
		s.leaderboardService.RefreshAll(ctx)
	}); err != nil {
		return err
	}

	s.cron.Start()
	log.Println("Job scheduler started (UTC)")
	return nil
}

func (s *Scheduler) reset(ctx context.Context, period model.Period) {
	log.Printf("[CRON] running %s point reset", period)
	affected, err := s.pointsService.ResetPeriodicPoints(ctx, period)
	if err != nil {
		log.Printf("[CRON] %s reset failed: %v", period, err)
		return
	}
	log.Printf("[CRON] %s reset complete, %d accounts zeroed", period, affected)
}

// Stop halts the schedule and waits for in-flight jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("Job scheduler stopped")
}
