package swr

import "time"

// Outcome classifies a cache lookup.
type Outcome string

const (
	// OutcomeHit is a read served from a result inside the dedup window.
	OutcomeHit Outcome = "hit"
	// OutcomeStale is a read served from an expired result while revalidating.
	OutcomeStale Outcome = "stale"
	// OutcomeMiss is a read of a key that has never been fetched.
	OutcomeMiss Outcome = "miss"
	// OutcomeDedup is a read joined to an in-flight fetch.
	OutcomeDedup Outcome = "dedup"
)

// Recorder receives cache activity. Implementations must be safe for
// concurrent use and must not block.
type Recorder interface {
	Lookup(outcome Outcome)
	Fetch(d time.Duration, err error)
	Retry()
	Unauthorized()
}

// Noop discards all measurements.
type Noop struct{}

func (Noop) Lookup(Outcome)             {}
func (Noop) Fetch(time.Duration, error) {}
func (Noop) Retry()                     {}
func (Noop) Unauthorized()              {}
