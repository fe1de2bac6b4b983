package scheduler

import (
	"fmt"

	"hqts/aqm"
	"hqts/hqerr"
	"hqts/packet"
)

// wrrQueueState holds one WRR class's queue, configured weight, and
// running per-round deficit.
type wrrQueueState struct {
	queue        *aqm.Queue
	weight       int32
	currentDeficit int32
	externalID   packet.QueueID
}

// WRRQueueConfig configures one class of a WRR scheduler.
type WRRQueueConfig struct {
	ID        packet.QueueID
	Weight    uint32
	AQMParams aqm.Parameters
}

// WRR is a packet-based Weighted Round Robin scheduler: each class gets
// `weight` chances to send one packet per round before deficits are
// replenished, matching scheduler/wrr_scheduler.cpp.
type WRR struct {
	queues       []wrrQueueState
	idToIndex    map[packet.QueueID]int
	currentIndex int
	totalPackets int
}

// NewWRR builds a WRR scheduler from configs. Fails on an empty config
// list, a zero weight, or a duplicate queue id.
func NewWRR(configs []WRRQueueConfig) (*WRR, error) {
	if len(configs) == 0 {
		return nil, fmt.Errorf("scheduler: %w: wrr requires at least one queue", hqerr.ErrConfigInvalid)
	}
	w := &WRR{idToIndex: make(map[packet.QueueID]int, len(configs))}
	for i, c := range configs {
		if c.Weight == 0 {
			return nil, fmt.Errorf("scheduler: %w: wrr queue %d has zero weight", hqerr.ErrConfigInvalid, c.ID)
		}
		if _, dup := w.idToIndex[c.ID]; dup {
			return nil, fmt.Errorf("scheduler: %w: wrr duplicate queue id %d", hqerr.ErrConfigInvalid, c.ID)
		}
		q, err := aqm.New(c.AQMParams, nil)
		if err != nil {
			return nil, fmt.Errorf("scheduler: wrr queue %d: %w", c.ID, err)
		}
		w.queues = append(w.queues, wrrQueueState{
			queue:          q,
			weight:         int32(c.Weight),
			currentDeficit: int32(c.Weight),
			externalID:     c.ID,
		})
		w.idToIndex[c.ID] = i
	}
	return w, nil
}

func (w *WRR) Enqueue(pkt packet.Descriptor) (bool, error) {
	idx, ok := w.idToIndex[packet.QueueID(pkt.Priority)]
	if !ok {
		return false, fmt.Errorf("scheduler: %w: queue id %d (from priority) not configured", hqerr.ErrLookup, pkt.Priority)
	}
	if w.queues[idx].queue.Enqueue(pkt) {
		w.totalPackets++
		return true, nil
	}
	return false, nil
}

func (w *WRR) replenishAll() {
	for i := range w.queues {
		w.queues[i].currentDeficit += w.queues[i].weight
	}
}

func (w *WRR) Dequeue() (packet.Descriptor, error) {
	if w.IsEmpty() {
		return packet.Descriptor{}, fmt.Errorf("scheduler: %w: wrr has nothing to send", hqerr.ErrEmpty)
	}

	replenishCycles := 0
	for {
		n := len(w.queues)
		for i := 0; i < n; i++ {
			idx := (w.currentIndex + i) % n
			qs := &w.queues[idx]
			if !qs.queue.IsEmpty() && qs.currentDeficit > 0 {
				pkt, err := qs.queue.Dequeue()
				if err != nil {
					return packet.Descriptor{}, fmt.Errorf("scheduler: %w: wrr queue reported non-empty but dequeue failed", hqerr.ErrInconsistency)
				}
				qs.currentDeficit--
				w.totalPackets--
				w.currentIndex = (idx + 1) % n
				return pkt, nil
			}
		}
		if replenishCycles == 2 {
			return packet.Descriptor{}, fmt.Errorf("scheduler: %w: wrr deficits replenished twice but nothing dequeued", hqerr.ErrInconsistency)
		}
		w.replenishAll()
		replenishCycles++
	}
}

func (w *WRR) IsEmpty() bool { return w.totalPackets == 0 }

// QueueSize reports the packet count for the given queue id.
func (w *WRR) QueueSize(id packet.QueueID) (int, error) {
	idx, ok := w.idToIndex[id]
	if !ok {
		return 0, fmt.Errorf("scheduler: %w: queue id %d not configured", hqerr.ErrLookup, id)
	}
	return w.queues[idx].queue.PacketCount(), nil
}

// NumQueues reports the configured queue count.
func (w *WRR) NumQueues() int { return len(w.queues) }
