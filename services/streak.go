package services

import (
	"hash/fnv"
	"sync"
	"time"

	"reading-progress-service/models"
	"reading-progress-service/utils"
)

// advanceStreak applies a reading day to the streak fields of state.
// Consecutive days extend the streak, the same day leaves it unchanged and
// any gap restarts it at 1. Days before the last reading day are ignored.
func advanceStreak(state *models.ProgressionState, day time.Time) {
	day = utils.Day(day, time.UTC)

	if state.LastReadingDate == nil {
		state.CurrentStreak = 1
		state.StreakStartDate = &day
	} else {
		switch gap := utils.DaysBetween(*state.LastReadingDate, day); {
		case gap <= 0:
			return
		case gap == 1:
			state.CurrentStreak++
			if state.StreakStartDate == nil {
				start := utils.Day(*state.LastReadingDate, time.UTC)
				state.StreakStartDate = &start
			}
		default:
			state.CurrentStreak = 1
			state.StreakStartDate = &day
		}
	}

	state.LastReadingDate = &day
	if state.CurrentStreak > state.LongestStreak {
		state.LongestStreak = state.CurrentStreak
	}
}

// userLocks serializes events of one reader inside this process.
type userLocks struct {
	stripes [64]sync.Mutex
}

func (l *userLocks) lock(userID string) func() {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	mu := &l.stripes[h.Sum32()%uint32(len(l.stripes))]
	mu.Lock()
	return mu.Unlock
}
