package countdown

import "time"

// ETAPoint is one completion estimate: the projection the countdown's pace
// implied at the moment the contribution was posted.
type ETAPoint struct {
	Timestamp time.Time
	ETA       time.Time
}

// ETA projects a completion estimate for every contribution except the
// first, by linear interpolation from the countdown's start:
//
//	eta = start + total * (t - start) / (total - value)
//
// The first contribution is excluded because its interpolation denominator
// would be zero. Times are reported in the countdown's timezone.
func (s *Service) ETA(countdownID int64) ([]ETAPoint, error) {
	cd, msgs, err := s.history(countdownID)
	if err != nil {
		return nil, err
	}

	loc := location(cd.Timezone)
	total := msgs[0].Value
	start := msgs[0].Timestamp

	points := make([]ETAPoint, 0, len(msgs)-1)
	for _, m := range msgs[1:] {
		elapsed := m.Timestamp.Sub(start)
		projected := time.Duration(float64(elapsed) * float64(total) / float64(total-m.Value))
		points = append(points, ETAPoint{
			Timestamp: m.Timestamp.In(loc),
			ETA:       start.Add(projected).In(loc),
		})
	}
	return points, nil
}
