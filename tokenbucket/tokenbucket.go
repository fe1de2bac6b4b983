// Package tokenbucket implements a lazily-refilled, byte-granular rate
// limiter. Unlike golang.org/x/time/rate.Limiter (which the teacher repo
// uses for link-level pacing, see pipeline.OutputPacer), this bucket does
// integer-only microsecond arithmetic so its refill math is exactly
// reproducible across runs, which the srTCM policer in package shaper
// depends on for deterministic conformance decisions.
package tokenbucket

import "time"

// Bucket is a single token bucket: capacity_bytes, tokens_bytes, rate_bps,
// last_refill from spec §3/§4.1.
type Bucket struct {
	capacityBytes uint64
	tokensBytes   uint64
	rateBps       uint64
	lastRefill    time.Time

	// now is overridable for tests; defaults to time.Now.
	now func() time.Time
}

// New returns a bucket initialized full, matching the original
// TokenBucket constructor (tokens_bytes_ starts at capacity_bytes_).
func New(rateBps, capacityBytes uint64) *Bucket {
	return &Bucket{
		capacityBytes: capacityBytes,
		tokensBytes:   capacityBytes,
		rateBps:       rateBps,
		lastRefill:    time.Now(),
		now:           time.Now,
	}
}

// newWithClock is used by tests to control elapsed time deterministically.
func newWithClock(rateBps, capacityBytes uint64, now func() time.Time) *Bucket {
	b := New(rateBps, capacityBytes)
	b.now = now
	b.lastRefill = now()
	return b
}

// refill computes elapsed microseconds since the last refill, adds
// floor(elapsed_us * rate_bps / (8 * 1e6)) tokens, clamps at capacity, and
// advances last_refill to now. All-integer, no floating point, per §4.1.
func (b *Bucket) refill() {
	now := b.now()
	elapsedUs := now.Sub(b.lastRefill).Microseconds()
	if elapsedUs > 0 {
		newTokens := (uint64(elapsedUs) * b.rateBps) / (8 * 1_000_000)
		if newTokens > 0 {
			b.tokensBytes += newTokens
			if b.tokensBytes > b.capacityBytes {
				b.tokensBytes = b.capacityBytes
			}
		}
	}
	b.lastRefill = now
}

// Consume refills, then subtracts n tokens if available. consume(0) always
// succeeds without changing tokens beyond the refill step.
func (b *Bucket) Consume(n uint64) bool {
	b.refill()
	if b.tokensBytes >= n {
		b.tokensBytes -= n
		return true
	}
	return false
}

// AvailableTokens refills and returns the current token count.
func (b *Bucket) AvailableTokens() uint64 {
	b.refill()
	return b.tokensBytes
}

// IsConforming refills and reports whether n tokens are available, without
// consuming them.
func (b *Bucket) IsConforming(n uint64) bool {
	b.refill()
	return b.tokensBytes >= n
}

// SetRate refills under the old rate first, then changes the rate.
func (b *Bucket) SetRate(rateBps uint64) {
	b.refill()
	b.rateBps = rateBps
}

// SetCapacity refills, changes capacity, and clamps tokens to the new
// capacity.
func (b *Bucket) SetCapacity(capacityBytes uint64) {
	b.refill()
	b.capacityBytes = capacityBytes
	if b.tokensBytes > b.capacityBytes {
		b.tokensBytes = b.capacityBytes
	}
}

// Rate returns the configured rate in bits per second.
func (b *Bucket) Rate() uint64 { return b.rateBps }

// Capacity returns the configured capacity in bytes.
func (b *Bucket) Capacity() uint64 { return b.capacityBytes }
