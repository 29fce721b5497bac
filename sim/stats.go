package sim

import (
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"
)

// SourceStats summarises dispatch activity for one source.
type SourceStats struct {
	Source     string
	Priority   Priority
	Dispatches int
	// Deferred counts low-priority requests that had to wait for the
	// controller to return to base level.
	Deferred    int
	MeanLatency time.Duration
	P90Latency  time.Duration
}

// Stats returns per-source dispatch statistics in declaration order.
// Latency is measured from Trigger to handler entry.
func (c *Controller) Stats() []SourceStats {
	out := make([]SourceStats, 0, len(c.stats))
	for _, name := range c.lines.Names() {
		st := c.stats[name]
		s := SourceStats{
			Source:     name,
			Priority:   c.level[name],
			Dispatches: st.dispatches,
			Deferred:   st.deferred,
		}
		if len(st.latencies) > 0 {
			lat := append([]float64(nil), st.latencies...)
			sort.Float64s(lat)
			s.MeanLatency = secondsToDuration(stat.Mean(lat, nil))
			s.P90Latency = secondsToDuration(stat.Quantile(0.9, stat.Empirical, lat, nil))
		}
		out = append(out, s)
	}
	return out
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
