package model

import "time"

// Countdown represents a channel-scoped countdown registration.
type Countdown struct {
	ID        int64   // Channel ID (assigned by the chat platform)
	ServerID  int64   // Owning server ID
	Timezone  float64 // UTC offset in hours; applied when reporting analytics
	CreatedAt time.Time
}

// Prefix represents a command prefix registered for a countdown.
type Prefix struct {
	ID          string // UUID
	CountdownID int64  // Foreign key to Countdown
	Value       string
}

// Reaction represents a custom reaction attached to a specific number.
// A countdown may register several reactions for the same number.
type Reaction struct {
	ID          string // UUID
	CountdownID int64  // Foreign key to Countdown
	Number      int64  // The contribution value the reaction applies to
	Value       string // The reaction string (e.g. an emoji)
}

// Contribution is one accepted entry in a countdown's ledger.
// Contributions are immutable once appended; arrival order is message ID
// ascending, which is also chronological.
type Contribution struct {
	ID          int64 // Message ID, globally unique and monotonically increasing
	CountdownID int64 // Foreign key to Countdown
	AuthorID    int64
	Value       int64
	Timestamp   time.Time
}

// Operation is an audit record of a mutating application operation.
type Operation struct {
	ID         int64
	StartedAt  time.Time
	FinishedAt *time.Time
	Operation  string
	Parameters string
	Status     string
}
