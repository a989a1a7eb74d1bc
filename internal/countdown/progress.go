package countdown

import (
	"time"

	"cdt-go/internal/model"
)

const secondsPerDay = 86400

// Break is a gap between consecutive contributions.
type Break struct {
	Start    time.Time
	Duration time.Duration
	End      time.Time
}

// ProgressPoint is one step of the progress series.
type ProgressPoint struct {
	Time     time.Time
	Progress int64
}

// ProgressStats summarizes a countdown's progress and pace.
type ProgressStats struct {
	Total      int64
	Current    int64
	Progress   int64
	Percentage float64

	// Rate is contributions per day. For an ended countdown it is the
	// finalized historical rate; otherwise it is measured against now.
	Rate float64

	// StartTime and EndTime are reported in the countdown's timezone.
	// EndTime is the actual end for an ended countdown, or the linear
	// extrapolation of the remaining work at the current pace.
	StartTime time.Time
	EndTime   time.Time

	// StartAge is now minus StartTime. EndAge is now minus EndTime and is
	// negative while the projected end is still in the future.
	StartAge time.Duration
	EndAge   time.Duration

	LongestBreak Break

	// History is the (time, progress) series for plotting.
	History []ProgressPoint
}

// Progress computes progress and rate statistics for a countdown.
func (s *Service) Progress(countdownID int64) (*ProgressStats, error) {
	cd, msgs, err := s.history(countdownID)
	if err != nil {
		return nil, err
	}

	total := msgs[0].Value
	if total == 0 {
		// A countdown that started at zero has no measurable progress.
		return nil, ErrNoData
	}

	loc := location(cd.Timezone)
	now := s.clock.Now()
	current := msgs[len(msgs)-1].Value
	progress := total - current
	start := msgs[0].Timestamp

	var rate float64
	var end time.Time
	switch {
	case current == 0:
		// Ended: the historical rate over the countdown's full lifetime.
		end = msgs[len(msgs)-1].Timestamp
		if elapsed := end.Sub(start).Seconds(); elapsed > 0 {
			rate = float64(progress) / elapsed
		}
	case progress == 0:
		// Only the first contribution so far; no projection possible.
		end = now
	default:
		elapsed := now.Sub(start).Seconds()
		if elapsed > 0 {
			rate = float64(progress) / elapsed
			end = now.Add(time.Duration(float64(current) / rate * float64(time.Second)))
		} else {
			end = now
		}
	}
	rate *= secondsPerDay

	history := make([]ProgressPoint, len(msgs))
	for i, m := range msgs {
		history[i] = ProgressPoint{Time: m.Timestamp.In(loc), Progress: total - m.Value}
	}

	return &ProgressStats{
		Total:        total,
		Current:      current,
		Progress:     progress,
		Percentage:   100 * float64(progress) / float64(total),
		Rate:         rate,
		StartTime:    start.In(loc),
		EndTime:      end.In(loc),
		StartAge:     now.Sub(start),
		EndAge:       now.Sub(end),
		LongestBreak: longestBreak(msgs, now, current != 0, loc),
		History:      history,
	}, nil
}

// longestBreak finds the maximal gap between consecutive contribution
// timestamps. While the countdown is unfinished the silence since the last
// contribution counts as a growing open gap, so the result keeps moving
// until someone counts again.
func longestBreak(msgs []*model.Contribution, now time.Time, open bool, loc *time.Location) Break {
	best := Break{Start: msgs[0].Timestamp}
	prev := msgs[0].Timestamp
	for _, m := range msgs[1:] {
		if gap := m.Timestamp.Sub(prev); gap > best.Duration {
			best = Break{Start: prev, Duration: gap}
		}
		prev = m.Timestamp
	}
	if open {
		if gap := now.Sub(prev); gap > best.Duration {
			best = Break{Start: prev, Duration: gap}
		}
	}
	best.Start = best.Start.In(loc)
	best.End = best.Start.Add(best.Duration)
	return best
}
