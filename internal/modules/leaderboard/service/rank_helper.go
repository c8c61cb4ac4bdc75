package service

import (
	"sort"
	"time"

	"github.com/captaindev404/gentil-gamification/internal/model"
	"github.com/google/uuid"
)

// Candidate is one account considered for a snapshot. ReachedAt breaks ties:
// whoever reached the score first ranks ahead.
type Candidate struct {
	UserID    uuid.UUID
	Points    int
	Level     int
	ReachedAt time.Time
}

// RankCandidates sorts candidates by points descending and assigns
// competition ranks: ties share a rank and the next distinct score continues
// at its 1-based position (1, 1, 3).
func RankCandidates(candidates []Candidate) []model.LeaderboardEntry {
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Points != candidates[j].Points {
			return candidates[i].Points > candidates[j].Points
		}
		if !candidates[i].ReachedAt.Equal(candidates[j].ReachedAt) {
			return candidates[i].ReachedAt.Before(candidates[j].ReachedAt)
		}
		return candidates[i].UserID.String() < candidates[j].UserID.String()
	})

	entries := make([]model.LeaderboardEntry, 0, len(candidates))
	rank := 0
	prevPoints := -1
	for i, c := range candidates {
		if c.Points != prevPoints {
			rank = i + 1
			prevPoints = c.Points
		}
		entries = append(entries, model.LeaderboardEntry{
			UserID: c.UserID,
			Rank:   rank,
			Points: c.Points,
			Level:  c.Level,
		})
	}
	return entries
}
