package scheduler

import (
	"container/heap"
	"fmt"
	"math"

	"hqts/hqerr"
	"hqts/packet"
)

// ServiceCurve is a single-segment linear service curve: a rate and an
// initial delay, matching scheduler/hfsc_scheduler.h's ServiceCurve. A
// zero RateBps means the curve is unset.
type ServiceCurve struct {
	RateBps uint64
	DelayUs uint64
}

// HFSCFlowConfig configures one class in the HFSC hierarchy. ParentID
// zero means "root" (no HFSC-internal parent); HFSC supports a two-level
// hierarchy, matching the original's documented scope.
type HFSCFlowConfig struct {
	ID           packet.FlowID
	ParentID     packet.FlowID
	RealTimeSC   ServiceCurve
	LinkShareSC  ServiceCurve
	UpperLimitSC ServiceCurve
}

type hfscFlowState struct {
	id       packet.FlowID
	parentID packet.FlowID
	queue    []packet.Descriptor

	realTimeSC   ServiceCurve
	linkShareSC  ServiceCurve
	upperLimitSC ServiceCurve

	virtualStartTime  uint64
	virtualFinishTime uint64
	virtualFinishTimeUL uint64
}

// HFSC implements Hierarchical Fair Service Curve scheduling: each class
// carries a real-time curve (latency/rate guarantee), a link-share curve
// (fair excess-bandwidth split), and an upper-limit curve (rate cap). The
// eligible set orders classes by virtual finish time using a min-heap,
// grounded on the same heap.Interface shape as packetHeap. Grounded on
// scheduler/hfsc_scheduler.cpp; the original's enqueue-time and
// dequeue-time rescheduling logic (duplicated in the source) is unified
// here into scheduleHead, called uniformly whenever a class transitions
// to servicing a new head-of-queue packet.
type HFSC struct {
	flows              map[packet.FlowID]*hfscFlowState
	totalLinkBandwidth uint64
	currentVirtualTime uint64
	totalPackets       int
	eligible           eligibleHeap
}

type eligibleEntry struct {
	virtualFinishTime uint64
	flowID            packet.FlowID
}

// eligibleHeap is a min-heap on virtualFinishTime, ties broken by flow
// id, mirroring EligibleFlow::operator> in the original (used there with
// std::greater to make a min-heap out of std::priority_queue).
type eligibleHeap []eligibleEntry

func (h eligibleHeap) Len() int { return len(h) }
func (h eligibleHeap) Less(i, j int) bool {
	if h[i].virtualFinishTime != h[j].virtualFinishTime {
		return h[i].virtualFinishTime < h[j].virtualFinishTime
	}
	return h[i].flowID < h[j].flowID
}
func (h eligibleHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *eligibleHeap) Push(x any)   { *h = append(*h, x.(eligibleEntry)) }
func (h *eligibleHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// NewHFSC builds an HFSC scheduler over the given flow hierarchy.
func NewHFSC(configs []HFSCFlowConfig, totalLinkBandwidthBps uint64) (*HFSC, error) {
	if len(configs) == 0 {
		return nil, fmt.Errorf("scheduler: %w: hfsc requires at least one flow", hqerr.ErrConfigInvalid)
	}
	h := &HFSC{
		flows:              make(map[packet.FlowID]*hfscFlowState, len(configs)),
		totalLinkBandwidth: totalLinkBandwidthBps,
	}
	for _, c := range configs {
		if _, dup := h.flows[c.ID]; dup {
			return nil, fmt.Errorf("scheduler: %w: hfsc duplicate flow id %d", hqerr.ErrConfigInvalid, c.ID)
		}
		if c.ID == c.ParentID && c.ID != 0 {
			return nil, fmt.Errorf("scheduler: %w: hfsc flow %d cannot be its own parent", hqerr.ErrConfigInvalid, c.ID)
		}
		h.flows[c.ID] = &hfscFlowState{
			id:           c.ID,
			parentID:     c.ParentID,
			realTimeSC:   c.RealTimeSC,
			linkShareSC:  c.LinkShareSC,
			upperLimitSC: c.UpperLimitSC,
		}
	}
	for _, c := range configs {
		if c.ParentID == 0 {
			continue
		}
		parent, ok := h.flows[c.ParentID]
		if !ok {
			return nil, fmt.Errorf("scheduler: %w: hfsc parent id %d not configured", hqerr.ErrConfigInvalid, c.ParentID)
		}
		if parent.parentID != 0 {
			return nil, fmt.Errorf("scheduler: %w: hfsc flow %d parent %d is itself non-root, hierarchies deeper than two levels are not supported", hqerr.ErrConfigInvalid, c.ID, c.ParentID)
		}
	}
	return h, nil
}

func serviceTimeUs(lengthBytes uint32, sc ServiceCurve) uint64 {
	if sc.RateBps == 0 {
		return math.MaxUint64
	}
	return (uint64(lengthBytes) * 8 * 1_000_000) / sc.RateBps
}

// curveEligibility picks whichever of rt/ls yields the earlier virtual
// finish time for a packet of the given length starting no earlier than
// base, matching the original's "vft_rt <= vft_ls" tie-break toward RT.
func curveEligibility(base uint64, rt, ls ServiceCurve, lengthBytes uint32) (eligible, vft uint64, ok bool) {
	rtValid := rt.RateBps > 0
	lsValid := ls.RateBps > 0
	if !rtValid && !lsValid {
		return 0, math.MaxUint64, false
	}

	eligibleRT := base + rt.DelayUs
	vftRT := eligibleRT + serviceTimeUs(lengthBytes, rt)
	eligibleLS := base + ls.DelayUs
	vftLS := eligibleLS + serviceTimeUs(lengthBytes, ls)

	switch {
	case rtValid && lsValid:
		if vftRT <= vftLS {
			return eligibleRT, vftRT, true
		}
		return eligibleLS, vftLS, true
	case rtValid:
		return eligibleRT, vftRT, true
	default:
		return eligibleLS, vftLS, true
	}
}

// applyUpperLimit clamps eligibility to respect the upper-limit curve's
// own timeline (vftUL), then recomputes the finish time using the
// service time RT/LS already established.
func applyUpperLimit(base, chosenEligible, chosenVFT uint64, valid bool, ul ServiceCurve, vftUL uint64, lengthBytes uint32) (finalEligible, finalVFT uint64) {
	if ul.RateBps == 0 {
		return chosenEligible, chosenVFT
	}
	ulCandidate := base
	if vftUL > ulCandidate {
		ulCandidate = vftUL
	}
	ulCandidate += ul.DelayUs

	finalEligible = chosenEligible
	if ulCandidate > finalEligible {
		finalEligible = ulCandidate
	}
	if !valid {
		return finalEligible, math.MaxUint64
	}
	serviceTime := chosenVFT - chosenEligible
	return finalEligible, finalEligible + serviceTime
}

// scheduleHead computes eligibility/VFT for the packet now at the head
// of flow's queue and pushes it onto the eligible set. applyParent
// mirrors the original's is_newly_active flag: only a flow transitioning
// from idle to active has its schedule constrained by its parent's own
// curves, matching update_flow_schedule's documented (if unusual)
// asymmetry with the in-line re-scheduling done after every dequeue.
func (h *HFSC) scheduleHead(flowID packet.FlowID, applyParent bool) {
	flow := h.flows[flowID]
	if len(flow.queue) == 0 {
		return
	}
	packetLen := flow.queue[0].LengthBytes

	base := h.currentVirtualTime
	if applyParent && flow.virtualFinishTime > base {
		base = flow.virtualFinishTime
	}

	selfEligible, selfVFT, selfValid := curveEligibility(base, flow.realTimeSC, flow.linkShareSC, packetLen)
	selfEligible, selfVFT = applyUpperLimit(base, selfEligible, selfVFT, selfValid, flow.upperLimitSC, flow.virtualFinishTimeUL, packetLen)

	finalEligible, finalVFT := selfEligible, selfVFT

	if applyParent && flow.parentID != 0 && selfValid {
		serviceTime := selfVFT - selfEligible

		parent := h.flows[flow.parentID]
		parentBase := h.currentVirtualTime
		if parent.virtualFinishTime > parentBase {
			parentBase = parent.virtualFinishTime
		}
		pEligible, pVFT, pValid := curveEligibility(parentBase, parent.realTimeSC, parent.linkShareSC, packetLen)
		pEligible, _ = applyUpperLimit(parentBase, pEligible, pVFT, pValid, parent.upperLimitSC, parent.virtualFinishTimeUL, packetLen)

		if pEligible > finalEligible {
			finalEligible = pEligible
		}
		finalVFT = finalEligible + serviceTime
	}

	if !selfValid || finalVFT == math.MaxUint64 {
		return
	}
	flow.virtualStartTime = finalEligible
	flow.virtualFinishTime = finalVFT
	if flow.upperLimitSC.RateBps > 0 {
		flow.virtualFinishTimeUL = finalEligible + serviceTimeUs(packetLen, flow.upperLimitSC)
	}
	heap.Push(&h.eligible, eligibleEntry{virtualFinishTime: finalVFT, flowID: flowID})
}

func (h *HFSC) Enqueue(pkt packet.Descriptor) (bool, error) {
	flow, ok := h.flows[packet.FlowID(pkt.Priority)]
	if !ok {
		return false, fmt.Errorf("scheduler: %w: flow id %d (from priority) not configured", hqerr.ErrLookup, pkt.Priority)
	}
	wasEmpty := len(flow.queue) == 0
	flow.queue = append(flow.queue, pkt)
	h.totalPackets++
	if wasEmpty {
		h.scheduleHead(flow.id, true)
	}
	return true, nil
}

func (h *HFSC) Dequeue() (packet.Descriptor, error) {
	if h.IsEmpty() {
		return packet.Descriptor{}, fmt.Errorf("scheduler: %w: hfsc has nothing to send", hqerr.ErrEmpty)
	}
	if h.eligible.Len() == 0 {
		return packet.Descriptor{}, fmt.Errorf("scheduler: %w: eligible set empty with packets pending", hqerr.ErrInconsistency)
	}

	next := heap.Pop(&h.eligible).(eligibleEntry)
	flow, ok := h.flows[next.flowID]
	if !ok || len(flow.queue) == 0 {
		return packet.Descriptor{}, fmt.Errorf("scheduler: %w: eligible flow %d has no queued packet", hqerr.ErrInconsistency, next.flowID)
	}

	pkt := flow.queue[0]
	flow.queue = flow.queue[1:]
	h.totalPackets--
	h.currentVirtualTime = next.virtualFinishTime

	if len(flow.queue) > 0 {
		h.scheduleHead(flow.id, false)
	}

	return pkt, nil
}

func (h *HFSC) IsEmpty() bool { return h.totalPackets == 0 }

// FlowQueueSize reports the packet count queued for the given flow id.
func (h *HFSC) FlowQueueSize(id packet.FlowID) (int, error) {
	flow, ok := h.flows[id]
	if !ok {
		return 0, fmt.Errorf("scheduler: %w: flow id %d not configured", hqerr.ErrLookup, id)
	}
	return len(flow.queue), nil
}

// NumFlows reports the configured flow count.
func (h *HFSC) NumFlows() int { return len(h.flows) }
