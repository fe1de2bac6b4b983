package scheduler

import (
	"testing"

	"hqts/aqm"
	"hqts/internal/require"
	"hqts/packet"
)

func drrAQMParams() aqm.Parameters {
	return aqm.Parameters{MinThresholdBytes: 100000, MaxThresholdBytes: 200000, MaxProbability: 0.1, EWMAWeight: 0.5, QueueCapacityBytes: 1000000}
}

func TestDRRServesProportionallyToQuantum(t *testing.T) {
	d, err := NewDRR([]DRRQueueConfig{
		{ID: 1, QuantumBytes: 1000, AQMParams: drrAQMParams()},
		{ID: 2, QuantumBytes: 3000, AQMParams: drrAQMParams()},
	})
	require.NoError(t, err)

	for i := 0; i < 6; i++ {
		_, err := d.Enqueue(packet.Descriptor{LengthBytes: 1000, Priority: 1})
		require.NoError(t, err)
	}
	for i := 0; i < 6; i++ {
		_, err := d.Enqueue(packet.Descriptor{LengthBytes: 1000, Priority: 2})
		require.NoError(t, err)
	}

	q1Served, q2Served := 0, 0
	for i := 0; i < 8; i++ {
		pkt, err := d.Dequeue()
		require.NoError(t, err)
		if pkt.Priority == 1 {
			q1Served++
		} else {
			q2Served++
		}
	}
	// Over a full round-trip, queue 2 (quantum 3000) should be served at
	// least as often as queue 1 (quantum 1000) given equal packet sizes.
	require.True(t, q2Served >= q1Served)
}

func TestDRRSingleQueueFIFO(t *testing.T) {
	d, err := NewDRR([]DRRQueueConfig{{ID: 1, QuantumBytes: 1500, AQMParams: drrAQMParams()}})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := d.Enqueue(packet.Descriptor{LengthBytes: 500, Priority: 1, FlowID: packet.FlowID(i)})
		require.NoError(t, err)
	}
	for i := 0; i < 3; i++ {
		pkt, err := d.Dequeue()
		require.NoError(t, err)
		require.Equal(t, packet.FlowID(i), pkt.FlowID)
	}
	require.True(t, d.IsEmpty())
}

func TestDRRRejectsZeroQuantum(t *testing.T) {
	_, err := NewDRR([]DRRQueueConfig{{ID: 1, QuantumBytes: 0, AQMParams: drrAQMParams()}})
	require.Error(t, err)
}

func TestDRRRejectsUnknownQueueOnEnqueue(t *testing.T) {
	d, err := NewDRR([]DRRQueueConfig{{ID: 1, QuantumBytes: 1000, AQMParams: drrAQMParams()}})
	require.NoError(t, err)
	_, err = d.Enqueue(packet.Descriptor{LengthBytes: 100, Priority: 99})
	require.Error(t, err)
}
