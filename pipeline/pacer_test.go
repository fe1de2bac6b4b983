package pipeline

import (
	"testing"
	"time"

	"hqts/internal/require"
)

func TestOutputPacerDelaysBeyondBurst(t *testing.T) {
	pacer := NewOutputPacer(8_000_000, 1000) // 1 MB/s, 1000-byte burst
	now := time.Now()

	d1 := pacer.Reserve(now, 500)
	require.Equal(t, time.Duration(0), d1)

	d2 := pacer.Reserve(now, 2000)
	require.True(t, d2 > 0)
}
