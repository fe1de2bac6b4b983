package classifier

import (
	"sync"
	"testing"

	"hqts/flowtable"
	"hqts/internal/require"
)

func TestGetOrCreateFlowIsStablePerTuple(t *testing.T) {
	tbl := flowtable.NewTable()
	c := New(tbl, 7, 2)

	tuple := FiveTuple{SourceIP: 1, DestIP: 2, SourcePort: 80, DestPort: 443, Protocol: 6}
	id1 := c.GetOrCreateFlow(tuple)
	id2 := c.GetOrCreateFlow(tuple)
	require.Equal(t, id1, id2)
	require.Equal(t, 1, c.FlowCount())

	ctx, ok := tbl.Get(id1)
	require.True(t, ok)
	require.Equal(t, uint64(7), uint64(ctx.PolicyID))
}

func TestGetOrCreateFlowDistinctTuplesGetDistinctIDs(t *testing.T) {
	tbl := flowtable.NewTable()
	c := New(tbl, 1, 1)

	a := c.GetOrCreateFlow(FiveTuple{SourceIP: 1})
	b := c.GetOrCreateFlow(FiveTuple{SourceIP: 2})
	require.NotEqual(t, a, b)
	require.Equal(t, 2, c.FlowCount())
}

func TestGetOrCreateFlowConcurrentSameTuple(t *testing.T) {
	tbl := flowtable.NewTable()
	c := New(tbl, 1, 1)
	tuple := FiveTuple{SourceIP: 9, DestIP: 9}

	var wg sync.WaitGroup
	ids := make([]uint64, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			ids[idx] = uint64(c.GetOrCreateFlow(tuple))
		}(i)
	}
	wg.Wait()

	first := ids[0]
	for _, id := range ids {
		require.Equal(t, first, id)
	}
	require.Equal(t, 1, c.FlowCount())
}
