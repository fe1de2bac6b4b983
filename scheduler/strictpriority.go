package scheduler

import (
	"fmt"

	"hqts/aqm"
	"hqts/hqerr"
	"hqts/packet"
)

// StrictPriority always serves the highest-priority non-empty queue.
// Numerically higher pkt.Priority values are served first, matching
// scheduler/strict_priority_scheduler.cpp.
type StrictPriority struct {
	queues       []*aqm.Queue
	totalPackets int
}

// NewStrictPriority builds a StrictPriority scheduler with one aqm.Queue
// per priority level in queueParams; queueParams[i] governs priority
// level i.
func NewStrictPriority(queueParams []aqm.Parameters) (*StrictPriority, error) {
	if len(queueParams) == 0 {
		return nil, fmt.Errorf("scheduler: %w: strict priority requires at least one queue", hqerr.ErrConfigInvalid)
	}
	queues := make([]*aqm.Queue, len(queueParams))
	for i, p := range queueParams {
		q, err := aqm.New(p, nil)
		if err != nil {
			return nil, fmt.Errorf("scheduler: strict priority level %d: %w", i, err)
		}
		queues[i] = q
	}
	return &StrictPriority{queues: queues}, nil
}

func (s *StrictPriority) Enqueue(pkt packet.Descriptor) (bool, error) {
	if int(pkt.Priority) >= len(s.queues) {
		return false, fmt.Errorf("scheduler: %w: priority %d exceeds %d configured levels", hqerr.ErrLookup, pkt.Priority, len(s.queues))
	}
	if s.queues[pkt.Priority].Enqueue(pkt) {
		s.totalPackets++
		return true, nil
	}
	return false, nil
}

func (s *StrictPriority) Dequeue() (packet.Descriptor, error) {
	if s.IsEmpty() {
		return packet.Descriptor{}, fmt.Errorf("scheduler: %w: strict priority has nothing to send", hqerr.ErrEmpty)
	}
	for i := len(s.queues) - 1; i >= 0; i-- {
		if !s.queues[i].IsEmpty() {
			pkt, err := s.queues[i].Dequeue()
			if err != nil {
				return packet.Descriptor{}, fmt.Errorf("scheduler: %w: level %d reported non-empty but dequeue failed", hqerr.ErrInconsistency, i)
			}
			s.totalPackets--
			return pkt, nil
		}
	}
	return packet.Descriptor{}, fmt.Errorf("scheduler: %w: total packet count positive but every level empty", hqerr.ErrInconsistency)
}

func (s *StrictPriority) IsEmpty() bool { return s.totalPackets == 0 }

// NumLevels reports the configured number of priority levels.
func (s *StrictPriority) NumLevels() int { return len(s.queues) }

// QueueSize reports the packet count at the given priority level.
func (s *StrictPriority) QueueSize(level uint8) (int, error) {
	if int(level) >= len(s.queues) {
		return 0, fmt.Errorf("scheduler: %w: priority %d exceeds %d configured levels", hqerr.ErrLookup, level, len(s.queues))
	}
	return s.queues[level].PacketCount(), nil
}
