package countdown

import "errors"

// ErrNotFound is returned when an operation references a countdown that
// isn't registered.
var ErrNotFound = errors.New("countdown not found")

// ErrNoData is returned when analytics are requested for a countdown with
// no contributions yet. Rate and percentage computations are undefined on
// an empty ledger, so this is surfaced explicitly instead of producing
// division-by-zero results.
var ErrNoData = errors.New("countdown has no contributions")
