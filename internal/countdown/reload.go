package countdown

import (
	"fmt"
	"time"
)

// InboundMessage is a raw message from the chat platform, as delivered for
// a replay of a countdown channel's history.
type InboundMessage struct {
	ID        int64
	AuthorID  int64
	Content   string
	Timestamp time.Time
}

// Reload clears a countdown's ledger and replays a message stream through
// the validator. Messages must be supplied in arrival order. Messages that
// don't start with a number are skipped; everything else goes through the
// normal validation rules. Returns the number of accepted contributions.
func (s *Service) Reload(countdownID int64, messages []InboundMessage) (int, error) {
	cd, err := s.database.FindCountdown(countdownID)
	if err != nil {
		return 0, fmt.Errorf("finding countdown: %w", err)
	}
	if cd == nil {
		return 0, ErrNotFound
	}

	if err := s.database.ClearContributions(countdownID); err != nil {
		return 0, fmt.Errorf("clearing countdown: %w", err)
	}

	accepted := 0
	for _, m := range messages {
		value, ok := ParseNumber(m.Content)
		if !ok {
			continue
		}
		result, err := s.ValidateAndAppend(countdownID, m.ID, m.AuthorID, value, m.Timestamp)
		if err != nil {
			return accepted, fmt.Errorf("replaying message %d: %w", m.ID, err)
		}
		if result.Outcome == OutcomeGood {
			accepted++
		}
	}

	s.logger.Info("countdown reloaded", "countdown", countdownID, "accepted", accepted)
	return accepted, nil
}
