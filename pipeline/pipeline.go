// Package pipeline wires classification, shaping, and scheduling into a
// single ingress/egress path: handle_incoming_packet classifies and
// shapes a raw packet and enqueues it if the shaper admits it;
// NextPacketToTransmit dequeues whatever the scheduler picks next.
// Grounded on core/packet_pipeline.h/.cpp.
package pipeline

import (
	"hqts/classifier"
	"hqts/flowtable"
	"hqts/packet"
	"hqts/scheduler"
	"hqts/shaper"
)

// Pipeline glues a Classifier, Shaper, and Scheduler into the request
// path a packet takes from ingress to the transmit queue.
type Pipeline struct {
	classifier *classifier.Classifier
	flows      *flowtable.Table
	shaper     *shaper.Shaper
	scheduler  scheduler.Scheduler

	packetsDropped uint64
}

// New builds a Pipeline over the given components. flows is the same
// table the classifier was constructed with; the pipeline needs it to
// look up the flowtable.Context created (or found) for each packet.
func New(c *classifier.Classifier, flows *flowtable.Table, s *shaper.Shaper, sched scheduler.Scheduler) *Pipeline {
	return &Pipeline{classifier: c, flows: flows, shaper: s, scheduler: sched}
}

// HandleIncomingPacket classifies tuple to a flow, shapes lengthBytes
// against that flow's policy, and enqueues the packet if the shaper
// admits it. Mirrors PacketPipeline::handle_incoming_packet.
func (p *Pipeline) HandleIncomingPacket(tuple classifier.FiveTuple, lengthBytes uint32, payload []byte) error {
	flowID := p.classifier.GetOrCreateFlow(tuple)
	flow, ok := p.flows.Get(flowID)
	if !ok {
		// GetOrCreateFlow always inserts before returning; this branch is
		// unreachable in practice but is checked rather than assumed.
		return nil
	}

	pkt := packet.New(lengthBytes, payload)
	pkt.FlowID = flowID

	enqueue, err := p.shaper.ProcessPacket(&pkt, flow)
	if err != nil {
		return err
	}
	if !enqueue {
		p.packetsDropped++
		return nil
	}

	admitted, err := p.scheduler.Enqueue(pkt)
	if err != nil {
		return err
	}
	if !admitted {
		p.packetsDropped++
		flow.RecordDrop(pkt.LengthBytes)
	}
	return nil
}

// NextPacketToTransmit dequeues the scheduler's next packet. If the
// scheduler is empty, it returns the sentinel zero-length descriptor
// rather than an error, matching get_next_packet_to_transmit's
// default-constructed-packet convention.
func (p *Pipeline) NextPacketToTransmit() (packet.Descriptor, error) {
	if p.scheduler.IsEmpty() {
		return packet.Descriptor{}, nil
	}
	return p.scheduler.Dequeue()
}

// PacketsDropped reports the cumulative count of packets the pipeline
// has dropped, whether by the shaper or by a full/AQM-rejecting
// scheduler queue.
func (p *Pipeline) PacketsDropped() uint64 { return p.packetsDropped }
