package countdown

import (
	"fmt"
	"sort"
	"time"
)

// SpeedBucket counts the contributions posted in one fixed-size window.
type SpeedBucket struct {
	// PeriodStart is the window's start, reported in the countdown's
	// timezone. Windows are anchored to absolute epoch time.
	PeriodStart time.Time
	Messages    int64
}

// Speed buckets a countdown's contributions into fixed windows of the
// given size in hours. A contribution at epoch second t falls in the
// window starting at floor(t / windowSeconds) * windowSeconds. Empty
// windows are omitted.
func (s *Service) Speed(countdownID int64, hours int) ([]SpeedBucket, error) {
	if hours <= 0 {
		return nil, fmt.Errorf("window size must be positive: %d", hours)
	}

	cd, msgs, err := s.history(countdownID)
	if err != nil {
		return nil, err
	}

	loc := location(cd.Timezone)
	window := int64(hours) * 3600
	counts := make(map[int64]int64)
	for _, m := range msgs {
		t := m.Timestamp.Unix()
		start := t - (t%window+window)%window // floor also for pre-epoch times
		counts[start]++
	}

	starts := make([]int64, 0, len(counts))
	for start := range counts {
		starts = append(starts, start)
	}
	sort.Slice(starts, func(i, j int) bool { return starts[i] < starts[j] })

	buckets := make([]SpeedBucket, len(starts))
	for i, start := range starts {
		buckets[i] = SpeedBucket{
			PeriodStart: time.Unix(start, 0).In(loc),
			Messages:    counts[start],
		}
	}
	return buckets, nil
}
