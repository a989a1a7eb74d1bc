package countdown

// LeaderboardEntry is one author's row of the scored leaderboard.
type LeaderboardEntry struct {
	Rank     int
	AuthorID int64
	// Points is the sum of rule points across the author's contributions.
	Points        int64
	Contributions int64
	// Percentage of the countdown's contributions so far.
	Percentage float64
	// Breakdown counts the author's contributions per scoring category,
	// indexed by rule priority minus one.
	Breakdown [NumRules]int64
}

// Leaderboard scores every contribution with the rule classifier and ranks
// authors by summed points, descending. Ties share a rank.
func (s *Service) Leaderboard(countdownID int64) ([]*LeaderboardEntry, error) {
	_, msgs, err := s.history(countdownID)
	if err != nil {
		return nil, err
	}

	total := msgs[0].Value
	entries := make(map[int64]*LeaderboardEntry)
	for _, m := range msgs {
		e, ok := entries[m.AuthorID]
		if !ok {
			e = &LeaderboardEntry{AuthorID: m.AuthorID}
			entries[m.AuthorID] = e
		}
		rule := Classify(m.Value, total)
		e.Breakdown[rule.Priority-1]++
		e.Points += rule.Points
		e.Contributions++
	}

	authors := sortedAuthors(msgs)
	sortDescStable(authors, func(a int64) int64 { return entries[a].Points })

	sorted := make([]int64, len(authors))
	for i, a := range authors {
		sorted[i] = entries[a].Points
	}
	ranks := rankByCount(sorted)

	board := make([]*LeaderboardEntry, len(authors))
	for i, a := range authors {
		e := entries[a]
		e.Rank = ranks[i]
		e.Percentage = 100 * float64(e.Contributions) / float64(len(msgs))
		board[i] = e
	}
	return board, nil
}

// LeaderboardFor returns a single author's leaderboard row, with the rank
// they hold on the full board. Returns ErrNoData if the author hasn't
// contributed.
func (s *Service) LeaderboardFor(countdownID, authorID int64) (*LeaderboardEntry, error) {
	board, err := s.Leaderboard(countdownID)
	if err != nil {
		return nil, err
	}
	for _, e := range board {
		if e.AuthorID == authorID {
			return e, nil
		}
	}
	return nil, ErrNoData
}
