package scheduler

import (
	"testing"

	"hqts/aqm"
	"hqts/internal/require"
	"hqts/packet"
)

func wrrAQMParams() aqm.Parameters {
	return aqm.Parameters{MinThresholdBytes: 100000, MaxThresholdBytes: 200000, MaxProbability: 0.1, EWMAWeight: 0.5, QueueCapacityBytes: 1000000}
}

func TestWRRServesByWeightPerRound(t *testing.T) {
	w, err := NewWRR([]WRRQueueConfig{
		{ID: 1, Weight: 1, AQMParams: wrrAQMParams()},
		{ID: 2, Weight: 3, AQMParams: wrrAQMParams()},
	})
	require.NoError(t, err)

	for i := 0; i < 4; i++ {
		_, err := w.Enqueue(packet.Descriptor{LengthBytes: 100, Priority: 1})
		require.NoError(t, err)
	}
	for i := 0; i < 4; i++ {
		_, err := w.Enqueue(packet.Descriptor{LengthBytes: 100, Priority: 2})
		require.NoError(t, err)
	}

	q2InFirstFour := 0
	for i := 0; i < 4; i++ {
		pkt, err := w.Dequeue()
		require.NoError(t, err)
		if pkt.Priority == 2 {
			q2InFirstFour++
		}
	}
	require.Equal(t, 3, q2InFirstFour)
}

func TestWRRRejectsZeroWeight(t *testing.T) {
	_, err := NewWRR([]WRRQueueConfig{{ID: 1, Weight: 0, AQMParams: wrrAQMParams()}})
	require.Error(t, err)
}

func TestWRRDequeueEmptyErrors(t *testing.T) {
	w, err := NewWRR([]WRRQueueConfig{{ID: 1, Weight: 1, AQMParams: wrrAQMParams()}})
	require.NoError(t, err)
	_, err = w.Dequeue()
	require.Error(t, err)
}
