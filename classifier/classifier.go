// Package classifier maps packet 5-tuples to flow ids, creating new flow
// state on first sight. Grounded on dataplane/flow_classifier.h/.cpp and
// on the addrMap[V] mutex-guarded map pattern in router.go — like
// addrMap, Classifier is shared across concurrent ingest paths and
// guards its lookup table with a plain sync.Mutex rather than sharding or
// using sync.Map, matching the teacher's choice for a map that is written
// on nearly every access.
package classifier

import (
	"sync"

	"hqts/flowtable"
	"hqts/packet"
	"hqts/policy"
)

// FiveTuple identifies a flow by its packet header fields, mirroring
// dataplane/flow_identifier.h's FiveTuple exactly.
type FiveTuple struct {
	SourceIP   uint32
	DestIP     uint32
	SourcePort uint16
	DestPort   uint16
	Protocol   uint8
}

// Classifier assigns a stable FlowID to each distinct FiveTuple it sees,
// creating a flowtable.Context under the configured default policy the
// first time a tuple is observed.
type Classifier struct {
	mu            sync.Mutex
	table         *flowtable.Table
	tupleToFlowID map[FiveTuple]packet.FlowID
	nextFlowID    packet.FlowID
	defaultPolicy policy.ID
	defaultQueue  packet.QueueID
}

// New builds a Classifier backed by table, assigning defaultPolicy and
// defaultQueue to every newly observed flow.
func New(table *flowtable.Table, defaultPolicy policy.ID, defaultQueue packet.QueueID) *Classifier {
	return &Classifier{
		table:         table,
		tupleToFlowID: make(map[FiveTuple]packet.FlowID),
		nextFlowID:    1,
		defaultPolicy: defaultPolicy,
		defaultQueue:  defaultQueue,
	}
}

// GetOrCreateFlow returns the FlowID for tuple, creating a new flow (and
// its flowtable.Context) if this is the first time the tuple has been
// seen. Safe for concurrent use by multiple ingest goroutines.
func (c *Classifier) GetOrCreateFlow(tuple FiveTuple) packet.FlowID {
	c.mu.Lock()
	defer c.mu.Unlock()

	if id, ok := c.tupleToFlowID[tuple]; ok {
		return id
	}

	id := c.nextFlowID
	c.nextFlowID++
	c.tupleToFlowID[tuple] = id

	ctx := flowtable.New(id, c.defaultPolicy, c.defaultQueue, flowtable.RED)
	// Insert cannot fail here: nextFlowID is monotonic and guarded by mu,
	// so id has never been inserted before.
	_ = c.table.Insert(ctx)

	return id
}

// FlowCount reports how many distinct flows have been classified.
func (c *Classifier) FlowCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.tupleToFlowID)
}
