package countdown_test

import (
	"errors"
	"testing"
	"time"

	"cdt-go/internal/countdown"
	"cdt-go/internal/testutil"
)

func TestLeaderboard(t *testing.T) {
	svc := testutil.NewTestService(t, testutil.FixedClock())
	if err := svc.CreateCountdown(1, 10, nil); err != nil {
		t.Fatalf("CreateCountdown() error = %v", err)
	}

	// 2000 scores as First Number (0) despite being a 1000s value.
	// 1999 and 1997 are odd (12 each), 1998 is even (10).
	seq := []struct {
		author int64
		value  int64
	}{
		{1, 2000},
		{2, 1999},
		{1, 1998},
		{2, 1997},
	}
	for i, s := range seq {
		post(t, svc, 1, int64(100+i), s.author, s.value, baseTime.Add(time.Duration(i)*time.Minute))
	}

	board, err := svc.Leaderboard(1)
	if err != nil {
		t.Fatalf("Leaderboard() error = %v", err)
	}
	if len(board) != 2 {
		t.Fatalf("len(board) = %d, want 2", len(board))
	}

	// Author 2: 12 + 12 = 24 points. Author 1: 0 + 10 = 10 points.
	first, second := board[0], board[1]
	if first.AuthorID != 2 || first.Points != 24 || first.Rank != 1 {
		t.Errorf("board[0] = (author=%d points=%d rank=%d), want (2, 24, 1)",
			first.AuthorID, first.Points, first.Rank)
	}
	if second.AuthorID != 1 || second.Points != 10 || second.Rank != 2 {
		t.Errorf("board[1] = (author=%d points=%d rank=%d), want (1, 10, 2)",
			second.AuthorID, second.Points, second.Rank)
	}

	// Breakdown indexes follow rule priority: First=0, Odd=7, Even=8.
	if second.Breakdown[0] != 1 || second.Breakdown[8] != 1 {
		t.Errorf("author 1 breakdown = %v, want First=1 Even=1", second.Breakdown)
	}
	if first.Breakdown[7] != 2 {
		t.Errorf("author 2 breakdown = %v, want Odd=2", first.Breakdown)
	}
}

func TestLeaderboardFor(t *testing.T) {
	svc := testutil.NewTestService(t, testutil.FixedClock())
	if err := svc.CreateCountdown(1, 10, nil); err != nil {
		t.Fatalf("CreateCountdown() error = %v", err)
	}
	post(t, svc, 1, 100, 1, 10, baseTime)
	post(t, svc, 1, 101, 2, 9, baseTime)
	post(t, svc, 1, 102, 1, 8, baseTime)

	// Author 1: First (0) + even 8 (10). Author 2: odd 9 (12).
	entry, err := svc.LeaderboardFor(1, 1)
	if err != nil {
		t.Fatalf("LeaderboardFor() error = %v", err)
	}
	if entry.Rank != 2 || entry.Points != 10 || entry.Contributions != 2 {
		t.Errorf("entry = (rank=%d points=%d n=%d), want (2, 10, 2)",
			entry.Rank, entry.Points, entry.Contributions)
	}

	if _, err := svc.LeaderboardFor(1, 42); !errors.Is(err, countdown.ErrNoData) {
		t.Errorf("unknown author: error = %v, want ErrNoData", err)
	}
}
