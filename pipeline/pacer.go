// OutputPacer paces packets leaving a Pipeline at a configured egress
// link rate, independent of whatever internal scheduling discipline
// picked them. Grounded on ratelink.go's RateLink: same
// bandwidth-in-bits-per-second-to-bytes-per-second conversion, same
// ReserveN/DelayFrom pattern for computing how long a caller should wait
// before actually transmitting.
package pipeline

import (
	"time"

	"golang.org/x/time/rate"
)

// OutputPacer wraps a token-bucket rate.Limiter configured in bytes per
// second, mirroring an egress link's physical bandwidth.
type OutputPacer struct {
	limiter *rate.Limiter
}

// NewOutputPacer builds a pacer for a link of bandwidthBps bits per
// second, with a burst allowance of burstBytes.
func NewOutputPacer(bandwidthBps int, burstBytes int) *OutputPacer {
	bytesPerSecond := rate.Limit(float64(bandwidthBps) / 8.0)
	return &OutputPacer{limiter: rate.NewLimiter(bytesPerSecond, burstBytes)}
}

// Reserve returns how long the caller should wait, starting from now,
// before transmitting a packet of packetSizeBytes without exceeding the
// configured link rate.
func (p *OutputPacer) Reserve(now time.Time, packetSizeBytes int) time.Duration {
	r := p.limiter.ReserveN(now, packetSizeBytes)
	return r.DelayFrom(now)
}
