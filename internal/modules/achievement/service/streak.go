package service

import "time"

const dayFormat = "2006-01-02"

// CurrentStreak counts consecutive UTC calendar days with activity, walking
// backwards from today. A streak survives "today has nothing yet" by starting
// the walk at yesterday instead; any older gap ends the count. Days may be
// passed in any order and any location; they are bucketed by UTC date.
func CurrentStreak(days []time.Time, now time.Time) int {
	if len(days) == 0 {
		return 0
	}

	active := make(map[string]bool, len(days))
	for _, d := range days {
		active[d.UTC().Format(dayFormat)] = true
	}

	cursor := now.UTC().Truncate(24 * time.Hour)
	if !active[cursor.Format(dayFormat)] {
		cursor = cursor.AddDate(0, 0, -1)
	}

	streak := 0
	for active[cursor.Format(dayFormat)] {
		streak++
		cursor = cursor.AddDate(0, 0, -1)
	}
	return streak
}
