package scheduler

import (
	"fmt"

	"hqts/aqm"
	"hqts/hqerr"
	"hqts/packet"
)

type drrQueueState struct {
	queue          *aqm.Queue
	quantumBytes   uint32
	deficitCounter int64
	externalID     packet.QueueID
}

// DRRQueueConfig configures one class of a DRR scheduler.
type DRRQueueConfig struct {
	ID           packet.QueueID
	QuantumBytes uint32
	AQMParams    aqm.Parameters
}

// DRR is a Deficit Round Robin scheduler: every visit to a non-empty
// queue adds its quantum to its deficit, and the queue sends its head
// packet if the deficit covers it; unused deficit carries over. Each
// Dequeue call sends at most one packet and then moves to the next queue,
// so a queue does not keep sending while its deficit still covers the
// next head packet. Grounded on
// scheduler/drr_scheduler.cpp, including its bounded retry-scan (2x the
// queue count) that turns a stuck scan into ErrInconsistency instead of
// spinning forever.
type DRR struct {
	queues       []drrQueueState
	idToIndex    map[packet.QueueID]int
	currentIndex int
	totalPackets int
}

// NewDRR builds a DRR scheduler from configs. Fails on an empty config
// list, a zero quantum, or a duplicate queue id.
func NewDRR(configs []DRRQueueConfig) (*DRR, error) {
	if len(configs) == 0 {
		return nil, fmt.Errorf("scheduler: %w: drr requires at least one queue", hqerr.ErrConfigInvalid)
	}
	d := &DRR{idToIndex: make(map[packet.QueueID]int, len(configs))}
	for i, c := range configs {
		if c.QuantumBytes == 0 {
			return nil, fmt.Errorf("scheduler: %w: drr queue %d has zero quantum", hqerr.ErrConfigInvalid, c.ID)
		}
		if _, dup := d.idToIndex[c.ID]; dup {
			return nil, fmt.Errorf("scheduler: %w: drr duplicate queue id %d", hqerr.ErrConfigInvalid, c.ID)
		}
		q, err := aqm.New(c.AQMParams, nil)
		if err != nil {
			return nil, fmt.Errorf("scheduler: drr queue %d: %w", c.ID, err)
		}
		d.queues = append(d.queues, drrQueueState{
			queue:        q,
			quantumBytes: c.QuantumBytes,
			externalID:   c.ID,
		})
		d.idToIndex[c.ID] = i
	}
	return d, nil
}

func (d *DRR) Enqueue(pkt packet.Descriptor) (bool, error) {
	idx, ok := d.idToIndex[packet.QueueID(pkt.Priority)]
	if !ok {
		return false, fmt.Errorf("scheduler: %w: queue id %d (from priority) not configured", hqerr.ErrLookup, pkt.Priority)
	}
	if d.queues[idx].queue.Enqueue(pkt) {
		d.totalPackets++
		return true, nil
	}
	return false, nil
}

func (d *DRR) Dequeue() (packet.Descriptor, error) {
	if d.IsEmpty() {
		return packet.Descriptor{}, fmt.Errorf("scheduler: %w: drr has nothing to send", hqerr.ErrEmpty)
	}

	n := len(d.queues)
	for attempts := 0; attempts < n*2; attempts++ {
		qs := &d.queues[d.currentIndex]

		if !qs.queue.IsEmpty() {
			qs.deficitCounter += int64(qs.quantumBytes)

			if head, ok := qs.queue.PeekFront(); ok && qs.deficitCounter >= int64(head.LengthBytes) {
				pkt, err := qs.queue.Dequeue()
				if err != nil {
					return packet.Descriptor{}, fmt.Errorf("scheduler: %w: drr queue reported non-empty but dequeue failed", hqerr.ErrInconsistency)
				}
				qs.deficitCounter -= int64(pkt.LengthBytes)
				d.totalPackets--
				d.currentIndex = (d.currentIndex + 1) % n
				return pkt, nil
			}
		}
		d.currentIndex = (d.currentIndex + 1) % n
	}

	return packet.Descriptor{}, fmt.Errorf("scheduler: %w: drr exceeded retry budget with packets still pending", hqerr.ErrInconsistency)
}

func (d *DRR) IsEmpty() bool { return d.totalPackets == 0 }

// QueueSize reports the packet count for the given queue id.
func (d *DRR) QueueSize(id packet.QueueID) (int, error) {
	idx, ok := d.idToIndex[id]
	if !ok {
		return 0, fmt.Errorf("scheduler: %w: queue id %d not configured", hqerr.ErrLookup, id)
	}
	return d.queues[idx].queue.PacketCount(), nil
}

// NumQueues reports the configured queue count.
func (d *DRR) NumQueues() int { return len(d.queues) }
