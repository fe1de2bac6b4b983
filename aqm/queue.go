// Package aqm implements a gentle-RED active-queue-managed packet queue:
// EWMA-tracked average size, probabilistic early drop, and a hard byte
// capacity. The probabilistic coin flip takes an injectable random source
// per the design note "Global RNG in AQM → injectable generator" — the
// same shape as MarcoPolo-simnet's fqCoDel, which holds its maphash.Hash
// on the struct and reuses it rather than seeding fresh state per call.
package aqm

import (
	"fmt"
	"math/rand/v2"

	"hqts/hqerr"
	"hqts/packet"
)

// Parameters configures a Queue. Constructed once and immutable
// thereafter, per spec §3.
type Parameters struct {
	MinThresholdBytes  uint32
	MaxThresholdBytes  uint32
	MaxProbability     float64
	EWMAWeight         float64
	QueueCapacityBytes uint32
}

// Validate checks the construction invariants from spec §3:
// 0 < min < max <= capacity, probability and weight in range.
func (p Parameters) Validate() error {
	if p.MinThresholdBytes == 0 {
		return fmt.Errorf("aqm: %w: min_threshold_bytes must be > 0", hqerr.ErrConfigInvalid)
	}
	if p.MaxThresholdBytes == 0 {
		return fmt.Errorf("aqm: %w: max_threshold_bytes must be > 0", hqerr.ErrConfigInvalid)
	}
	if p.QueueCapacityBytes == 0 {
		return fmt.Errorf("aqm: %w: queue_capacity_bytes must be > 0", hqerr.ErrConfigInvalid)
	}
	if p.MinThresholdBytes >= p.MaxThresholdBytes {
		return fmt.Errorf("aqm: %w: min_threshold_bytes must be < max_threshold_bytes", hqerr.ErrConfigInvalid)
	}
	if p.MaxThresholdBytes > p.QueueCapacityBytes {
		return fmt.Errorf("aqm: %w: max_threshold_bytes must be <= queue_capacity_bytes", hqerr.ErrConfigInvalid)
	}
	if p.MaxProbability <= 0.0 || p.MaxProbability > 1.0 {
		return fmt.Errorf("aqm: %w: max_probability must be in (0,1]", hqerr.ErrConfigInvalid)
	}
	if p.EWMAWeight <= 0.0 || p.EWMAWeight >= 1.0 {
		return fmt.Errorf("aqm: %w: ewma_weight must be in (0,1)", hqerr.ErrConfigInvalid)
	}
	return nil
}

// Queue is a FIFO packet buffer under gentle-RED active queue management.
type Queue struct {
	params Parameters
	buffer ringBuffer[packet.Descriptor]

	currentTotalBytes    uint32
	averageQueueSize     float64
	packetsSinceLastDrop int

	rng *rand.Rand
}

// New constructs a Queue, validating params per spec §3. rng may be nil, in
// which case a PCG source with the fixed seed (1, 2) is used; tests pass a
// seeded rand.Rand for deterministic drop sequences.
func New(params Parameters, rng *rand.Rand) (*Queue, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(1, 2))
	}
	return &Queue{params: params, rng: rng, buffer: newRingBuffer[packet.Descriptor](8)}, nil
}

// updateAverage recomputes the EWMA using the queue's current physical
// byte size as the sample, per spec §4.2 step 1: avg <- (1-w)*avg +
// w*current_total_bytes.
func (q *Queue) updateAverage() {
	q.averageQueueSize = (1-q.params.EWMAWeight)*q.averageQueueSize + q.params.EWMAWeight*float64(q.currentTotalBytes)
}

// baseDropProbability computes p_b from the current average per spec §4.2
// step 3.
func (q *Queue) baseDropProbability() float64 {
	avg := q.averageQueueSize
	switch {
	case avg < float64(q.params.MinThresholdBytes):
		return 0
	case avg >= float64(q.params.MaxThresholdBytes):
		return q.params.MaxProbability
	default:
		factor := (avg - float64(q.params.MinThresholdBytes)) / (float64(q.params.MaxThresholdBytes) - float64(q.params.MinThresholdBytes))
		return factor * q.params.MaxProbability
	}
}

// Enqueue attempts to admit pkt. Returns true if admitted, false if
// rejected (either by physical capacity or by RED's probabilistic drop),
// per spec §4.2.
func (q *Queue) Enqueue(pkt packet.Descriptor) bool {
	// Step 1: sample the average using pre-arrival state.
	q.updateAverage()

	// Step 2: physical capacity check bypasses RED accounting entirely.
	if uint64(q.currentTotalBytes)+uint64(pkt.LengthBytes) > uint64(q.params.QueueCapacityBytes) {
		return false
	}

	// Step 3: base probability from the average.
	pb := q.baseDropProbability()

	// Step 4: gentle adjustment.
	dropProb := 0.0
	if pb > 0 {
		denominator := 1.0 - float64(q.packetsSinceLastDrop)*pb
		if denominator <= 1e-9 {
			dropProb = 1.0
		} else {
			dropProb = pb / denominator
		}
		if dropProb > 1.0 {
			dropProb = 1.0
		}
	}

	// Step 5: probabilistic drop decision.
	if dropProb > 0 && q.rng.Float64() < dropProb {
		q.packetsSinceLastDrop = 0
		return false
	}

	q.packetsSinceLastDrop++
	q.currentTotalBytes += pkt.LengthBytes
	q.buffer.PushBack(pkt)
	return true
}

// Dequeue pops the head of the FIFO. Fails if empty.
func (q *Queue) Dequeue() (packet.Descriptor, error) {
	if q.buffer.Empty() {
		return packet.Descriptor{}, fmt.Errorf("aqm: %w: queue is empty", hqerr.ErrEmpty)
	}
	pkt := q.buffer.PopFront()
	q.currentTotalBytes -= pkt.LengthBytes

	// Re-run the EWMA update against the post-pop size so the average
	// stays fresh while the queue drains, per spec §4.2.
	q.updateAverage()

	return pkt, nil
}

// PeekFront returns the head packet without removing it. Grounded on the
// original RedAqmQueue::front() accessor — DRR's dequeue loop needs to see
// a packet's length before committing to a dequeue.
func (q *Queue) PeekFront() (packet.Descriptor, bool) {
	if q.buffer.Empty() {
		return packet.Descriptor{}, false
	}
	return q.buffer.Peek(), true
}

func (q *Queue) IsEmpty() bool { return q.buffer.Empty() }

func (q *Queue) PacketCount() int { return q.buffer.Len() }

func (q *Queue) ByteSize() uint32 { return q.currentTotalBytes }

func (q *Queue) AverageQueueSize() float64 { return q.averageQueueSize }

func (q *Queue) Parameters() Parameters { return q.params }
