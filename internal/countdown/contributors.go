package countdown

// ContributorStats is one row of the contributor ranking.
type ContributorStats struct {
	Rank          int
	AuthorID      int64
	Contributions int64
	// Percentage of the countdown's contributions so far.
	Percentage float64
}

// Contributors ranks a countdown's authors by contribution count,
// descending. Ties share a rank and the next distinct count gets the
// number of rows strictly above it plus one.
func (s *Service) Contributors(countdownID int64) ([]*ContributorStats, error) {
	_, msgs, err := s.history(countdownID)
	if err != nil {
		return nil, err
	}

	counts := make(map[int64]int64)
	for _, m := range msgs {
		counts[m.AuthorID]++
	}

	authors := sortedAuthors(msgs)
	sortDescStable(authors, func(a int64) int64 { return counts[a] })

	sorted := make([]int64, len(authors))
	for i, a := range authors {
		sorted[i] = counts[a]
	}
	ranks := rankByCount(sorted)

	stats := make([]*ContributorStats, len(authors))
	for i, a := range authors {
		stats[i] = &ContributorStats{
			Rank:          ranks[i],
			AuthorID:      a,
			Contributions: counts[a],
			Percentage:    100 * float64(counts[a]) / float64(len(msgs)),
		}
	}
	return stats, nil
}

// SharePoint is one author's cumulative contribution share at one point of
// the countdown.
type SharePoint struct {
	// Progress identifies the point: total minus the value posted there.
	Progress int64
	AuthorID int64
	// Percentage is the author's share of all contributions up to and
	// including this point.
	Percentage float64
}

// ContributorHistory computes, for each contribution in arrival order and
// for every author who ever contributed, that author's cumulative share of
// all contributions up to that point. The series is suitable for plotting
// contribution-share evolution.
func (s *Service) ContributorHistory(countdownID int64) ([]SharePoint, error) {
	_, msgs, err := s.history(countdownID)
	if err != nil {
		return nil, err
	}

	total := msgs[0].Value
	authors := sortedAuthors(msgs)
	running := make(map[int64]int64, len(authors))

	points := make([]SharePoint, 0, len(authors)*len(msgs))
	for i, m := range msgs {
		running[m.AuthorID]++
		elapsed := float64(i + 1)
		for _, a := range authors {
			points = append(points, SharePoint{
				Progress:   total - m.Value,
				AuthorID:   a,
				Percentage: 100 * float64(running[a]) / elapsed,
			})
		}
	}
	return points, nil
}
