package countdown

import (
	"fmt"
	"time"

	"cdt-go/internal/model"
)

// Outcome is the validation result for a candidate contribution.
// Outcomes are ordinary values, not errors: the caller uses them to decide
// moderation behavior (reactions, pins) for the inbound message.
type Outcome int

const (
	// OutcomeGood means the contribution was accepted and appended.
	OutcomeGood Outcome = iota
	// OutcomeBadNumber means the value doesn't decrement the previous one.
	OutcomeBadNumber
	// OutcomeBadUser means the author also posted the previous contribution.
	OutcomeBadUser
	// OutcomeBadCountdown means the countdown has ended or doesn't exist.
	OutcomeBadCountdown
)

func (o Outcome) String() string {
	switch o {
	case OutcomeGood:
		return "good"
	case OutcomeBadNumber:
		return "badNumber"
	case OutcomeBadUser:
		return "badUser"
	case OutcomeBadCountdown:
		return "badCountdown"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// CountResult is the outcome of validating a candidate contribution, plus
// the side-effect flags computed for accepted ones.
type CountResult struct {
	Outcome Outcome
	// Pin is true when the accepted value is a pin-worthy milestone.
	Pin bool
	// Reactions holds the custom reactions registered for the accepted value.
	Reactions []string
}

// ValidateAndAppend decides whether a candidate contribution is acceptable
// against the current ledger state and appends it on success.
//
// The decision order is: badCountdown (ended or unregistered), badNumber
// (value doesn't equal previous minus one), badUser (same author twice in
// a row), good. The read-decide-append sequence holds the countdown's lock
// so two concurrent candidates can't both be accepted against the same
// previous state.
func (s *Service) ValidateAndAppend(countdownID, messageID, authorID, value int64, timestamp time.Time) (*CountResult, error) {
	l := s.lockFor(countdownID)
	l.Lock()
	defer l.Unlock()

	cd, err := s.database.FindCountdown(countdownID)
	if err != nil {
		return nil, fmt.Errorf("finding countdown: %w", err)
	}
	if cd == nil {
		return &CountResult{Outcome: OutcomeBadCountdown}, nil
	}

	// Derive the current state from the ledger's latest entry; it is never
	// cached as a separate mutable field.
	last, err := s.database.LastContribution(countdownID)
	if err != nil {
		return nil, fmt.Errorf("reading last contribution: %w", err)
	}

	if last != nil && last.Value == 0 {
		return &CountResult{Outcome: OutcomeBadCountdown}, nil
	}
	if last != nil && value != last.Value-1 {
		return &CountResult{Outcome: OutcomeBadNumber}, nil
	}
	if last != nil && authorID == last.AuthorID {
		return &CountResult{Outcome: OutcomeBadUser}, nil
	}

	err = s.database.AppendContribution(&model.Contribution{
		ID:          messageID,
		CountdownID: countdownID,
		AuthorID:    authorID,
		Value:       value,
		Timestamp:   timestamp,
	})
	if err != nil {
		return nil, fmt.Errorf("appending contribution: %w", err)
	}

	// The first contribution defines the total.
	total := value
	if last != nil {
		first, err := s.database.FirstContribution(countdownID)
		if err != nil {
			return nil, fmt.Errorf("reading first contribution: %w", err)
		}
		total = first.Value
	}

	reactions, err := s.database.FindReactions(countdownID, value)
	if err != nil {
		return nil, fmt.Errorf("finding reactions: %w", err)
	}

	result := &CountResult{
		Outcome:   OutcomeGood,
		Pin:       pinWorthy(value, total),
		Reactions: reactions,
	}

	s.logger.Debug("contribution accepted",
		"countdown", countdownID, "author", authorID, "value", value)
	return result, nil
}

// pinWorthy reports whether an accepted value is a milestone worth pinning.
// Only countdowns of 500 or more get milestone pins; the total >= 500 guard
// also keeps the interval division away from zero.
func pinWorthy(value, total int64) bool {
	if total < 500 || value == 0 {
		return false
	}
	return value%(total/50) == 0
}
