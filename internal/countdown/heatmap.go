package countdown

import (
	"sort"
	"time"
)

// HeatmapCell counts the contributions posted in one (weekday, hour) zone,
// measured in the countdown's timezone. Cells with zero contributions are
// omitted.
type HeatmapCell struct {
	Weekday  time.Weekday
	Hour     int
	Messages int64
}

// Heatmap buckets a countdown's contributions by day-of-week and
// hour-of-day. When authorID is non-zero only that author's contributions
// are counted. The result is sparse and ordered by (weekday, hour).
func (s *Service) Heatmap(countdownID, authorID int64) ([]HeatmapCell, error) {
	cd, msgs, err := s.history(countdownID)
	if err != nil {
		return nil, err
	}

	loc := location(cd.Timezone)
	counts := make(map[[2]int]int64)
	for _, m := range msgs {
		if authorID != 0 && m.AuthorID != authorID {
			continue
		}
		t := m.Timestamp.In(loc)
		counts[[2]int{int(t.Weekday()), t.Hour()}]++
	}

	cells := make([]HeatmapCell, 0, len(counts))
	for k, n := range counts {
		cells = append(cells, HeatmapCell{
			Weekday:  time.Weekday(k[0]),
			Hour:     k[1],
			Messages: n,
		})
	}
	sort.Slice(cells, func(i, j int) bool {
		if cells[i].Weekday != cells[j].Weekday {
			return cells[i].Weekday < cells[j].Weekday
		}
		return cells[i].Hour < cells[j].Hour
	})
	return cells, nil
}
