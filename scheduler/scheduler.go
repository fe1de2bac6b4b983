// Package scheduler implements the four HQTS scheduling disciplines —
// strict priority, weighted round robin, deficit round robin, and
// hierarchical fair service curve — behind a common Scheduler interface.
// StrictPriority, WRR, and DRR queue packets in an aqm.Queue per class,
// so RED active queue management applies to them. HFSC keeps a plain
// FIFO per flow and applies no AQM: its Enqueue always admits. Grounded on
// scheduler/scheduler_interface.h.
package scheduler

import "hqts/packet"

// Scheduler is the common interface every discipline in this package
// implements.
type Scheduler interface {
	// Enqueue admits pkt into the scheduler's internal queues. Returns
	// false if the packet was dropped (by AQM or a full queue) rather
	// than admitted.
	Enqueue(pkt packet.Descriptor) (bool, error)

	// Dequeue selects and removes the next packet per the discipline's
	// service order. Returns hqerr.ErrEmpty if nothing is queued.
	Dequeue() (packet.Descriptor, error)

	IsEmpty() bool
}
