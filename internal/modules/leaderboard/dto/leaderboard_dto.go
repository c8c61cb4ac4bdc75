package dto

import "time"

type LeaderboardEntry struct {
	Rank      int     `json:"rank"`
	UserID    string  `json:"user_id"`
	Username  string  `json:"username"`
	AvatarURL *string `json:"avatar_url,omitempty"`
	Points    int     `json:"points"`
	Level     int     `json:"level"`
}

type Leaderboard struct {
	Period      string             `json:"period"`
	Category    string             `json:"category"`
	GeneratedAt time.Time          `json:"generated_at"`
	Entries     []LeaderboardEntry `json:"entries"`
}

// LeaderboardPosition locates one user on the board. Ranked is false when the
// user has no points in the scope; Entry and Neighbors are empty in that case.
type LeaderboardPosition struct {
	Ranked      bool               `json:"ranked"`
	Entry       *LeaderboardEntry  `json:"entry,omitempty"`
	Neighbors   []LeaderboardEntry `json:"neighbors"`
	TotalRanked int64              `json:"total_ranked"`
}

type RebuildRequest struct {
	Period   string `json:"period" binding:"omitempty,oneof=weekly monthly all_time"`
	Category string `json:"category" binding:"omitempty,oneof=overall feedback voting research quality"`
}
