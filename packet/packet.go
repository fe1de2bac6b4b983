// Package packet holds the leaf types shared across HQTS's dataplane
// packages: the flow identifier, the conformance verdict a policer
// assigns, and the packet descriptor that flows through classify → shape →
// enqueue → dequeue. Kept dependency-free so every other HQTS package can
// import it without risking a cycle, the same role router.Packet plays in
// the teacher repo (simnet.go / router.go both depend on it, it depends on
// neither).
package packet

// FlowID identifies a classified flow. Zero is reserved for "invalid/unset".
type FlowID uint64

// InvalidFlowID is the reserved zero value of FlowID.
const InvalidFlowID FlowID = 0

// QueueID identifies an internal scheduler queue/class. Shared between
// policy (marking targets) and the scheduler family (queue selection).
type QueueID uint32

// Conformance is the three-color verdict a policer assigns to a packet.
type Conformance int

const (
	Green Conformance = iota
	Yellow
	Red
)

func (c Conformance) String() string {
	switch c {
	case Green:
		return "green"
	case Yellow:
		return "yellow"
	case Red:
		return "red"
	default:
		return "unknown"
	}
}

// Descriptor is the packet record that travels through the pipeline. It is
// deliberately a value type (copied on enqueue/dequeue), matching the
// teacher's Packet struct which is likewise passed by value through
// channels and queues.
type Descriptor struct {
	FlowID       FlowID
	LengthBytes  uint32
	Priority     uint8
	Conformance  Conformance
	Payload      []byte
}

// New returns a descriptor with the defaults the spec requires: unset flow
// id and Green conformance. The shaper overwrites FlowID, Priority, and
// Conformance during processing.
func New(lengthBytes uint32, payload []byte) Descriptor {
	return Descriptor{
		FlowID:      InvalidFlowID,
		LengthBytes: lengthBytes,
		Conformance: Green,
		Payload:     payload,
	}
}

// IsSentinel reports whether this descriptor is the "no packet available"
// sentinel returned by a pipeline with nothing to transmit.
func (d Descriptor) IsSentinel() bool {
	return d.LengthBytes == 0
}
