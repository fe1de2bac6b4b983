// Package policy implements C3 of the HQTS design: ShapingPolicy records
// and the multi-indexed Store that holds them. Grounded on the "cyclic /
// indexed containers" design note: the original uses Boost.MultiIndex
// (policy_tree.h); Go has no equivalent container in the standard library
// or in this pack's dependency surface, so Store is a hand-rolled arena
// (a primary map keyed by PolicyID) plus non-unique secondary indices
// (plain maps of slices), updated together on every mutating operation.
package policy

import (
	"time"

	"hqts/packet"
	"hqts/tokenbucket"
)

// ID identifies a ShapingPolicy. Zero (NoParentID) marks a root policy's
// parent.
type ID uint64

// NoParentID marks a root policy: parent_id == 0.
const NoParentID ID = 0

// Priority is a scheduling priority level, e.g. 0-7.
type Priority uint8

// Algorithm names the scheduling discipline a policy intends to use.
// Carried on the policy as scheduling intent (spec §3); the PolicyStore
// itself is discipline-agnostic. No scheduler in this repository reads
// this field; cmd/hqtsdemo picks its discipline from the config's
// scheduler setting.
type Algorithm int

const (
	WFQ Algorithm = iota
	WRR
	StrictPriority
	DRR
	HFSC
)

func (a Algorithm) String() string {
	switch a {
	case WFQ:
		return "wfq"
	case WRR:
		return "wrr"
	case StrictPriority:
		return "strict_priority"
	case DRR:
		return "drr"
	case HFSC:
		return "hfsc"
	default:
		return "unknown"
	}
}

// Statistics mirrors the original's PolicyStatistics field set exactly
// (shaping_policy.h): bytes/packets processed and dropped.
type Statistics struct {
	BytesProcessed   uint64
	PacketsProcessed uint64
	BytesDropped     uint64
	PacketsDropped   uint64
}

// ShapingPolicy is the per-flow-class shaping configuration and live
// token-bucket state (spec §3). ChildrenIDs is intentionally not a field
// here — it is derived, computed on demand via Store.ChildrenOf, so it can
// never drift out of sync with ParentID the way a denormalized slice
// could.
type ShapingPolicy struct {
	ID       ID
	ParentID ID
	Name     string

	CommittedRateBps    uint64
	PeakRateBps         uint64
	CommittedBurstBytes uint64
	ExcessBurstBytes    uint64

	Algorithm     Algorithm
	Weight        uint32
	PriorityLevel Priority

	DropOnRed             bool
	TargetPriorityGreen   uint8
	TargetPriorityYellow  uint8
	TargetPriorityRed     uint8
	TargetQueueIDGreen    packet.QueueID
	TargetQueueIDYellow   packet.QueueID
	TargetQueueIDRed      packet.QueueID

	CIRBucket *tokenbucket.Bucket
	PIRBucket *tokenbucket.Bucket

	Stats       Statistics
	LastUpdated time.Time
}

// New builds a ShapingPolicy with fresh CIR/PIR buckets sized from the
// configured rates/bursts, matching the original ShapingPolicy
// constructor's contract of owning live TokenBucket state per policy.
func New(id, parentID ID, name string, committedRateBps, peakRateBps, committedBurstBytes, excessBurstBytes uint64, algorithm Algorithm, weight uint32, priorityLevel Priority) *ShapingPolicy {
	return &ShapingPolicy{
		ID:                  id,
		ParentID:            parentID,
		Name:                name,
		CommittedRateBps:    committedRateBps,
		PeakRateBps:         peakRateBps,
		CommittedBurstBytes: committedBurstBytes,
		ExcessBurstBytes:    excessBurstBytes,
		Algorithm:           algorithm,
		Weight:              weight,
		PriorityLevel:       priorityLevel,
		CIRBucket:           tokenbucket.New(committedRateBps, committedBurstBytes),
		PIRBucket:           tokenbucket.New(peakRateBps, excessBurstBytes),
		LastUpdated:         time.Now(),
	}
}
