// Package flowtable holds per-flow runtime state: which policy governs a
// flow, which queue it feeds, and its running statistics. The SLAStatus
// field starts as Unknown and nothing in this repository updates it.
// Grounded on core/flow_context.h and dataplane/flow_table.h.
package flowtable

import (
	"fmt"
	"time"

	"hqts/hqerr"
	"hqts/packet"
	"hqts/policy"
)

// DropPolicy names the queue-overflow behavior a flow's assigned queue
// enforces. HQTS's own aqm.Queue always behaves like RED; DropPolicy is
// carried on Context as a label only, and no scheduler in this repository
// reads it.
type DropPolicy int

const (
	TailDrop DropPolicy = iota
	RED
	WRED
)

func (d DropPolicy) String() string {
	switch d {
	case TailDrop:
		return "tail_drop"
	case RED:
		return "red"
	case WRED:
		return "wred"
	default:
		return "unknown"
	}
}

// SLAStatus summarizes whether a flow is currently meeting its policy's
// committed rate.
type SLAStatus int

const (
	Unknown SLAStatus = iota
	Conforming
	NonConforming
)

func (s SLAStatus) String() string {
	switch s {
	case Conforming:
		return "conforming"
	case NonConforming:
		return "non_conforming"
	default:
		return "unknown"
	}
}

// Statistics accumulates per-flow counters, mirroring FlowStatistics in
// the original.
type Statistics struct {
	BytesProcessed    uint64
	PacketsProcessed  uint64
	BytesDropped      uint64
	PacketsDropped    uint64
	FirstPacketTime   time.Time
	LastPacketTime    time.Time
}

// Context is the live state HQTS keeps per classified flow.
type Context struct {
	FlowID   packet.FlowID
	PolicyID policy.ID

	CurrentRateBps            uint64
	AccumulatedBytesInPeriod  uint64

	QueueID                packet.QueueID
	CurrentQueueDepthBytes uint32
	DropPolicy             DropPolicy

	Stats     Statistics
	SLAStatus SLAStatus

	LastPacketProcessingTime time.Time
}

// New builds a Context for a newly classified flow, matching the
// original FlowContext constructor's argument set.
func New(flowID packet.FlowID, policyID policy.ID, queueID packet.QueueID, dropPolicy DropPolicy) *Context {
	return &Context{
		FlowID:     flowID,
		PolicyID:   policyID,
		QueueID:    queueID,
		DropPolicy: dropPolicy,
		SLAStatus:  Unknown,
	}
}

// RecordPacket updates statistics and rate accounting for a packet that
// was processed (not dropped) for this flow.
func (c *Context) RecordPacket(lengthBytes uint32, now time.Time) {
	if c.Stats.PacketsProcessed == 0 {
		c.Stats.FirstPacketTime = now
	}
	c.Stats.LastPacketTime = now
	c.Stats.BytesProcessed += uint64(lengthBytes)
	c.Stats.PacketsProcessed++
	c.AccumulatedBytesInPeriod += uint64(lengthBytes)
	c.LastPacketProcessingTime = now
}

// RecordDrop updates statistics for a packet dropped while belonging to
// this flow.
func (c *Context) RecordDrop(lengthBytes uint32) {
	c.Stats.BytesDropped += uint64(lengthBytes)
	c.Stats.PacketsDropped++
}

// Table maps a FlowID to its Context, matching the original's
// unordered_map<FlowId, FlowContext> alias exactly in shape, expressed as
// a Go map of pointers so callers can mutate in place.
type Table struct {
	flows map[packet.FlowID]*Context
}

// NewTable returns an empty flow table.
func NewTable() *Table {
	return &Table{flows: make(map[packet.FlowID]*Context)}
}

// Insert adds ctx to the table, keyed by its FlowID. Fails if the id is
// already present.
func (t *Table) Insert(ctx *Context) error {
	if _, exists := t.flows[ctx.FlowID]; exists {
		return fmt.Errorf("flowtable: %w: flow id %d already present", hqerr.ErrConfigInvalid, ctx.FlowID)
	}
	t.flows[ctx.FlowID] = ctx
	return nil
}

// Get returns the context for id, if present.
func (t *Table) Get(id packet.FlowID) (*Context, bool) {
	ctx, ok := t.flows[id]
	return ctx, ok
}

// Remove deletes the context for id.
func (t *Table) Remove(id packet.FlowID) {
	delete(t.flows, id)
}

// Len reports the number of tracked flows.
func (t *Table) Len() int { return len(t.flows) }
