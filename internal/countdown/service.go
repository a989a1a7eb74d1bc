package countdown

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"cdt-go/internal/model"
)

// Service is the countdown ledger and analytics engine. It validates
// candidate contributions against the ledger, appends accepted ones, and
// derives analytics from the accumulated history. All state lives in the
// Database; the service itself only holds per-countdown locks.
type Service struct {
	database  Database
	vault     Vault
	encryptor Encryptor
	logger    Logger
	clock     Clock

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

// NewService creates a new Service with the provided dependencies.
func NewService(database Database, vault Vault, encryptor Encryptor, logger Logger, clock Clock) *Service {
	return &Service{
		database:  database,
		vault:     vault,
		encryptor: encryptor,
		logger:    logger,
		clock:     clock,
		locks:     make(map[int64]*sync.Mutex),
	}
}

// lockFor returns the mutex serializing validate-and-append for one countdown.
// Contributions to different countdowns proceed in parallel.
func (s *Service) lockFor(countdownID int64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[countdownID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[countdownID] = l
	}
	return l
}

// CreateCountdown registers a channel as a countdown.
func (s *Service) CreateCountdown(id, serverID int64, prefixes []string) error {
	existing, err := s.database.FindCountdown(id)
	if err != nil {
		return fmt.Errorf("checking for existing countdown: %w", err)
	}
	if existing != nil {
		return fmt.Errorf("channel %d is already a countdown", id)
	}

	if _, err := s.database.CreateCountdown(id, serverID, prefixes); err != nil {
		return fmt.Errorf("creating countdown: %w", err)
	}

	s.logger.Info("countdown activated", "countdown", id, "server", serverID)
	return nil
}

// DeleteCountdown removes a countdown and all its contributions.
func (s *Service) DeleteCountdown(id int64) error {
	cd, err := s.database.FindCountdown(id)
	if err != nil {
		return fmt.Errorf("finding countdown: %w", err)
	}
	if cd == nil {
		return ErrNotFound
	}

	if err := s.database.DeleteCountdown(id); err != nil {
		return fmt.Errorf("deleting countdown: %w", err)
	}

	s.logger.Info("countdown deactivated", "countdown", id)
	return nil
}

// ListCountdowns returns all countdowns for a server, or all countdowns
// when serverID is 0.
func (s *Service) ListCountdowns(serverID int64) ([]*model.Countdown, error) {
	return s.database.ListCountdowns(serverID)
}

// CountdownSettings holds a countdown's configuration for display.
type CountdownSettings struct {
	Countdown *model.Countdown
	Prefixes  []string
	Reactions map[int64][]string
}

// Settings returns a countdown's registration and configuration.
func (s *Service) Settings(id int64) (*CountdownSettings, error) {
	cd, err := s.database.FindCountdown(id)
	if err != nil {
		return nil, fmt.Errorf("finding countdown: %w", err)
	}
	if cd == nil {
		return nil, ErrNotFound
	}

	prefixes, err := s.database.FindPrefixes(id)
	if err != nil {
		return nil, fmt.Errorf("finding prefixes: %w", err)
	}

	all, err := s.database.FindAllReactions(id)
	if err != nil {
		return nil, fmt.Errorf("finding reactions: %w", err)
	}
	reactions := make(map[int64][]string)
	for _, r := range all {
		reactions[r.Number] = append(reactions[r.Number], r.Value)
	}

	return &CountdownSettings{Countdown: cd, Prefixes: prefixes, Reactions: reactions}, nil
}

// SetTimezone updates a countdown's UTC offset in hours.
func (s *Service) SetTimezone(id int64, offset float64) error {
	cd, err := s.database.FindCountdown(id)
	if err != nil {
		return fmt.Errorf("finding countdown: %w", err)
	}
	if cd == nil {
		return ErrNotFound
	}
	if err := s.database.SetTimezone(id, offset); err != nil {
		return fmt.Errorf("setting timezone: %w", err)
	}
	s.logger.Info("timezone updated", "countdown", id, "offset", offset)
	return nil
}

// SetPrefixes replaces a countdown's command prefixes.
func (s *Service) SetPrefixes(id int64, values []string) error {
	if len(values) == 0 {
		return fmt.Errorf("at least one prefix is required")
	}
	cd, err := s.database.FindCountdown(id)
	if err != nil {
		return fmt.Errorf("finding countdown: %w", err)
	}
	if cd == nil {
		return ErrNotFound
	}
	if err := s.database.SetPrefixes(id, values); err != nil {
		return fmt.Errorf("setting prefixes: %w", err)
	}
	s.logger.Info("prefixes updated", "countdown", id)
	return nil
}

// SetReactions replaces the custom reactions for a number.
// Passing no values removes the reactions for that number.
func (s *Service) SetReactions(id int64, number int64, values []string) error {
	if number < 0 {
		return fmt.Errorf("number must not be negative")
	}
	cd, err := s.database.FindCountdown(id)
	if err != nil {
		return fmt.Errorf("finding countdown: %w", err)
	}
	if cd == nil {
		return ErrNotFound
	}
	if err := s.database.SetReactions(id, number, values); err != nil {
		return fmt.Errorf("setting reactions: %w", err)
	}
	s.logger.Info("reactions updated", "countdown", id, "number", number)
	return nil
}

// GetHistory returns the most recent application operations.
func (s *Service) GetHistory(limit int) ([]*model.Operation, error) {
	return s.database.ListOperations(limit)
}

// history loads a countdown's full contribution history, raising ErrNotFound
// for an unregistered countdown and ErrNoData for an empty one. Analytics
// compute from this single point-in-time copy, so concurrent appends never
// produce torn reads mid-computation.
func (s *Service) history(countdownID int64) (*model.Countdown, []*model.Contribution, error) {
	cd, err := s.database.FindCountdown(countdownID)
	if err != nil {
		return nil, nil, fmt.Errorf("finding countdown: %w", err)
	}
	if cd == nil {
		return nil, nil, ErrNotFound
	}

	msgs, err := s.database.AllContributions(countdownID)
	if err != nil {
		return nil, nil, fmt.Errorf("loading contributions: %w", err)
	}
	if len(msgs) == 0 {
		return nil, nil, ErrNoData
	}

	return cd, msgs, nil
}

// location returns the fixed-offset location for a countdown's UTC offset.
func location(offset float64) *time.Location {
	name := fmt.Sprintf("UTC%+g", offset)
	if offset == 0 {
		name = "UTC"
	}
	return time.FixedZone(name, int(offset*3600))
}

// sortedAuthors returns the distinct author IDs in a history, ordered by
// first appearance.
func sortedAuthors(msgs []*model.Contribution) []int64 {
	seen := make(map[int64]bool)
	var authors []int64
	for _, m := range msgs {
		if !seen[m.AuthorID] {
			seen[m.AuthorID] = true
			authors = append(authors, m.AuthorID)
		}
	}
	return authors
}

// rankByCount assigns competition ranks over values sorted descending:
// ties share a rank, and the next distinct value gets the count of rows
// strictly above it plus one.
func rankByCount(sorted []int64) []int {
	ranks := make([]int, len(sorted))
	for i := range sorted {
		if i > 0 && sorted[i] == sorted[i-1] {
			ranks[i] = ranks[i-1]
		} else {
			ranks[i] = i + 1
		}
	}
	return ranks
}

// sortDescStable sorts indexes by key descending, breaking ties by author
// ID ascending so results are deterministic.
func sortDescStable(authors []int64, key func(author int64) int64) {
	sort.SliceStable(authors, func(i, j int) bool {
		ki, kj := key(authors[i]), key(authors[j])
		if ki != kj {
			return ki > kj
		}
		return authors[i] < authors[j]
	})
}
