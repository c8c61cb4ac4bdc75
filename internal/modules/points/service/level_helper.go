package service

import "math"

// LevelStatus describes where a user sits on the level curve.
// Level is derived from all-time points only and never decreases.
type LevelStatus struct {
	Level         int     `json:"level"`
	NextLevel     int     `json:"next_level"`     // equals Level at the cap
	CurrentPoints int     `json:"current_points"` // all-time total points
	TargetPoints  int     `json:"target_points"`  // points needed for the next level
	Progress      float64 `json:"progress"`       // progress percentage to next level (0-100)
}

// LevelForPoints maps an all-time total onto the threshold table.
// thresholds[i] is the total required to sit at level i+1; the table is
// strictly increasing, which makes the result monotonic in points.
func LevelForPoints(thresholds []int, points int) int {
	level := 1
	for i, t := range thresholds {
		if points >= t {
			level = i + 1
		}
	}
	return level
}

// GetLevelStatus computes the full level status for an all-time total.
func GetLevelStatus(thresholds []int, points int) LevelStatus {
	level := LevelForPoints(thresholds, points)

	status := LevelStatus{
		Level:         level,
		CurrentPoints: points,
	}

	if level >= len(thresholds) {
		// Max level
		status.NextLevel = level
		status.TargetPoints = thresholds[len(thresholds)-1]
		status.Progress = 100
		return status
	}

	status.NextLevel = level + 1
	status.TargetPoints = thresholds[level]
	status.Progress = (float64(points) / float64(status.TargetPoints)) * 100

	// Round progress to 2 decimal places
	status.Progress = math.Round(status.Progress*100) / 100

	return status
}
