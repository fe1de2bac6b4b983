// Package shaper implements the srTCM-style traffic shaper: it consumes
// tokens from a flow's policy, assigns the packet's conformance color and
// resulting priority, and applies the policy's drop-on-red rule. The
// policy's TargetQueueID fields are not applied.
// Grounded on core/traffic_shaper.h/.cpp.
package shaper

import (
	"fmt"
	"time"

	"hqts/flowtable"
	"hqts/hqerr"
	"hqts/packet"
	"hqts/policy"
)

// Shaper processes packets against the policies held in a Store,
// mutating each policy's token bucket state as packets are consumed.
type Shaper struct {
	store *policy.Store
}

// New builds a Shaper over store. The store's policies are mutated in
// place by ProcessPacket; per spec §5 the caller (the pipeline) owns the
// store single-threaded.
func New(store *policy.Store) *Shaper {
	return &Shaper{store: store}
}

// applyTokenBuckets consumes packet length from the policy's CIR bucket
// first; a CIR miss falls through to the PIR bucket for a Yellow verdict.
// Grounded exactly on TrafficShaper::apply_token_buckets: a Green packet
// also debits the PIR bucket, so PIR tracks the combined committed+excess
// traffic that has already cleared CIR.
func applyTokenBuckets(lengthBytes uint32, p *policy.ShapingPolicy) packet.Conformance {
	if p.CIRBucket.Consume(uint64(lengthBytes)) {
		p.PIRBucket.Consume(uint64(lengthBytes))
		return packet.Green
	}
	if p.PIRBucket.Consume(uint64(lengthBytes)) {
		return packet.Yellow
	}
	return packet.Red
}

// ProcessPacket applies pkt's flow policy: it determines conformance,
// stamps pkt.Conformance and pkt.Priority, updates policy statistics, and
// reports whether the caller should enqueue pkt (false means drop).
//
// A flow whose policy id is not found in the store is marked Red and
// dropped unconditionally — the "PolicyMissing" outcome is a normal
// drop path, not a returned error, matching the original's decision to
// return false rather than throw when the lookup misses.
func (s *Shaper) ProcessPacket(pkt *packet.Descriptor, flow *flowtable.Context) (enqueue bool, err error) {
	p, ok := s.store.Get(flow.PolicyID)
	if !ok {
		pkt.Conformance = packet.Red
		return false, nil
	}

	var conformance packet.Conformance
	var drop bool
	modifyErr := s.store.Modify(p.ID, func(mp *policy.ShapingPolicy) {
		conformance = applyTokenBuckets(pkt.LengthBytes, mp)
		pkt.Conformance = conformance

		if conformance == packet.Red && mp.DropOnRed {
			drop = true
			mp.Stats.BytesDropped += uint64(pkt.LengthBytes)
			mp.Stats.PacketsDropped++
			return
		}

		switch conformance {
		case packet.Green:
			pkt.Priority = mp.TargetPriorityGreen
		case packet.Yellow:
			pkt.Priority = mp.TargetPriorityYellow
		case packet.Red:
			pkt.Priority = mp.TargetPriorityRed
		}
		mp.Stats.BytesProcessed += uint64(pkt.LengthBytes)
		mp.Stats.PacketsProcessed++
	})
	if modifyErr != nil {
		return false, fmt.Errorf("shaper: %w: policy %d vanished mid-process", hqerr.ErrInconsistency, flow.PolicyID)
	}

	if drop {
		flow.RecordDrop(pkt.LengthBytes)
		return false, nil
	}
	flow.RecordPacket(pkt.LengthBytes, time.Now())
	return true, nil
}
