package pipeline

import (
	"testing"

	"hqts/aqm"
	"hqts/classifier"
	"hqts/flowtable"
	"hqts/internal/require"
	"hqts/policy"
	"hqts/scheduler"
	"hqts/shaper"
)

func buildPipeline(t *testing.T) *Pipeline {
	t.Helper()
	store := policy.NewStore()
	p := policy.New(1, policy.NoParentID, "default", 8_000_000, 8_000_000, 100000, 100000, policy.StrictPriority, 1, 0)
	p.TargetPriorityGreen = 2
	p.TargetPriorityYellow = 1
	p.TargetPriorityRed = 0
	require.NoError(t, store.Insert(p))

	flows := flowtable.NewTable()
	c := classifier.New(flows, 1, 0)
	sh := shaper.New(store)

	params := aqm.Parameters{MinThresholdBytes: 100000, MaxThresholdBytes: 200000, MaxProbability: 0.1, EWMAWeight: 0.5, QueueCapacityBytes: 1000000}
	sched, err := scheduler.NewStrictPriority([]aqm.Parameters{params, params, params})
	require.NoError(t, err)

	return New(c, flows, sh, sched)
}

func TestHandleIncomingPacketEnqueuesConformingTraffic(t *testing.T) {
	pl := buildPipeline(t)
	tuple := classifier.FiveTuple{SourceIP: 1, DestIP: 2}

	err := pl.HandleIncomingPacket(tuple, 500, nil)
	require.NoError(t, err)

	pkt, err := pl.NextPacketToTransmit()
	require.NoError(t, err)
	require.Equal(t, uint32(500), pkt.LengthBytes)
	require.Equal(t, uint8(2), pkt.Priority)
}

func TestNextPacketToTransmitReturnsSentinelWhenEmpty(t *testing.T) {
	pl := buildPipeline(t)
	pkt, err := pl.NextPacketToTransmit()
	require.NoError(t, err)
	require.True(t, pkt.IsSentinel())
}

func TestHandleIncomingPacketSameTupleSharesFlow(t *testing.T) {
	pl := buildPipeline(t)
	tuple := classifier.FiveTuple{SourceIP: 9, DestIP: 9}

	require.NoError(t, pl.HandleIncomingPacket(tuple, 100, nil))
	require.NoError(t, pl.HandleIncomingPacket(tuple, 100, nil))

	first, err := pl.NextPacketToTransmit()
	require.NoError(t, err)
	second, err := pl.NextPacketToTransmit()
	require.NoError(t, err)
	require.Equal(t, first.FlowID, second.FlowID)
}
