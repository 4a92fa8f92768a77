// Package evaluate compares two light configurations at one intersection and
// recommends whether the change is worth making.
package evaluate

import (
	"fmt"

	"github.com/theoremus-urban-solutions/streetflow/flow"
	"github.com/theoremus-urban-solutions/streetflow/network"
	"github.com/theoremus-urban-solutions/streetflow/signal"
)

// Recommendation is the verdict on a configuration change
type Recommendation string

const (
	HighlyRecommended Recommendation = "HIGHLY_RECOMMENDED"
	Recommended       Recommendation = "RECOMMENDED"
	Marginal          Recommendation = "MARGINAL"
	NotRecommended    Recommendation = "NOT_RECOMMENDED"
)

// Comparison is the before/after audit of one intersection
type Comparison struct {
	IntersectionID        string                  `json:"intersection_id"`
	DelayBefore           float64                 `json:"delay_before"`
	DelayAfter            float64                 `json:"delay_after"`
	ThroughputBefore      float64                 `json:"throughput_before"`
	ThroughputAfter       float64                 `json:"throughput_after"`
	DelayImprovement      float64                 `json:"delay_improvement_pct"`
	ThroughputImprovement float64                 `json:"throughput_improvement_pct"`
	LOSBefore             flow.LOS                `json:"los_before"`
	LOSAfter              flow.LOS                `json:"los_after"`
	Recommendation        Recommendation          `json:"recommendation"`
	Before                flow.IntersectionResult `json:"before"`
	After                 flow.IntersectionResult `json:"after"`
}

// Evaluate simulates ix under both configurations over the same streets.
// Delay is the intersection's average delay per vehicle and throughput its
// total throughput.
func Evaluate(sim *flow.Simulator, ix network.Intersection, streets []network.Street, before, after signal.Source) Comparison {
	idx := network.Index(streets)
	b := sim.SimulateIntersection(ix, idx, before)
	a := sim.SimulateIntersection(ix, idx, after)

	c := Comparison{
		IntersectionID:   ix.ID,
		DelayBefore:      b.AverageDelay,
		DelayAfter:       a.AverageDelay,
		ThroughputBefore: b.TotalThroughput,
		ThroughputAfter:  a.TotalThroughput,
		LOSBefore:        b.LOS,
		LOSAfter:         a.LOS,
		Before:           b,
		After:            a,
	}
	if c.DelayBefore != 0 {
		c.DelayImprovement = (c.DelayBefore - c.DelayAfter) / c.DelayBefore * 100
	}
	if c.ThroughputBefore != 0 {
		c.ThroughputImprovement = (c.ThroughputAfter - c.ThroughputBefore) / c.ThroughputBefore * 100
	}
	c.Recommendation = Recommend(c.DelayImprovement, c.ThroughputImprovement)
	return c
}

// Recommend applies the ordered thresholds, first match wins
func Recommend(delayImprovement, throughputImprovement float64) Recommendation {
	switch {
	case delayImprovement > 20 || throughputImprovement > 15:
		return HighlyRecommended
	case delayImprovement > 10 || throughputImprovement > 8:
		return Recommended
	case delayImprovement > 0:
		return Marginal
	default:
		return NotRecommended
	}
}

// Change is a proposed edit of one light
type Change struct {
	StreetID  string  `json:"street_id"`
	Remove    bool    `json:"remove"`
	CycleTime float64 `json:"cycle_time"`
	GreenTime float64 `json:"green_time"`
}

// EvaluateChange compares the current registry state against the same state
// with change applied at ix. The registry is not modified.
func EvaluateChange(sim *flow.Simulator, ix network.Intersection, streets []network.Street, reg *signal.Registry, change Change) (Comparison, error) {
	if !ix.Involves(change.StreetID) {
		return Comparison{}, fmt.Errorf("street %s is not part of %s", change.StreetID, ix.ID)
	}
	before := reg.Snapshot()
	after := before.Without(ix.ID, change.StreetID)
	if !change.Remove {
		var err error
		after, err = before.With(ix.ID, change.StreetID, change.CycleTime, change.GreenTime)
		if err != nil {
			return Comparison{}, err
		}
	}
	return Evaluate(sim, ix, streets, before, after), nil
}
