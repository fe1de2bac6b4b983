// Package hqerr defines the sentinel error taxonomy shared across HQTS's
// core packages (spec §7): ConfigInvalid, Lookup, Empty, and
// Inconsistency. Every package wraps one of these with fmt.Errorf("...:
// %w", ...) so callers can test the kind with errors.Is regardless of
// which component raised it. PolicyMissing is deliberately not part of
// this taxonomy — per spec it is a normal marked-drop outcome, never a
// returned error.
package hqerr

import "errors"

var (
	// ErrConfigInvalid marks a validation failure at construction time:
	// zero quantum, zero weight, duplicate id, thresholds out of range,
	// bad EWMA weight, self-parenting, missing parent.
	ErrConfigInvalid = errors.New("hqts: invalid configuration")

	// ErrLookup marks an enqueue that references an unknown
	// priority/queue/flow id.
	ErrLookup = errors.New("hqts: lookup failed")

	// ErrEmpty marks a dequeue attempted on an empty container.
	ErrEmpty = errors.New("hqts: empty")

	// ErrInconsistency marks a runtime invariant violation: an eligible
	// set empty while packets are pending, or a DRR/WRR scan exhausting
	// its retry budget without finding a servable queue.
	ErrInconsistency = errors.New("hqts: inconsistent state")
)
