package flow

import (
	"golang.org/x/exp/slog"

	"github.com/theoremus-urban-solutions/streetflow/network"
	"github.com/theoremus-urban-solutions/streetflow/signal"
)

// Simulator runs the steady-state one-hour capacity model.
// It holds no mutable state and is safe for concurrent use.
type Simulator struct {
	params Params
	log    *slog.Logger
}

// NewSimulator creates a simulator with the given model constants
func NewSimulator(p Params) *Simulator {
	return &Simulator{params: p, log: slog.Default().With("component", "flow")}
}

// Params returns the model constants in use
func (sim *Simulator) Params() Params {
	return sim.params
}

// SimulateStreet evaluates one street under the given lights
func (sim *Simulator) SimulateStreet(s network.Street, lights map[string]signal.Config) StreetResult {
	return ModelFor(lights, s.ID).Evaluate(sim.params, s)
}

// SimulateIntersection evaluates both streets of ix. A street missing from
// streets contributes nothing.
func (sim *Simulator) SimulateIntersection(ix network.Intersection, streets map[string]network.Street, signals signal.Source) IntersectionResult {
	res := IntersectionResult{
		IntersectionID: ix.ID,
		Intersection:   ix,
		Streets:        []StreetResult{},
	}
	lights := signals.ForIntersection(ix.ID)
	for _, id := range ix.StreetIDs {
		s, ok := streets[id]
		if !ok {
			sim.log.Debug("street missing from network", "intersection", ix.ID, "street", id)
			continue
		}
		sr := sim.SimulateStreet(s, lights)
		res.Streets = append(res.Streets, sr)
		res.TotalDemand += sr.Demand
		res.TotalDelay += sr.TotalDelay
		res.TotalThroughput += sr.Throughput
	}
	res.AverageDelay = ratio(res.TotalDelay, res.TotalDemand)
	res.Efficiency = ratio(res.TotalThroughput, res.TotalDemand) * 100
	res.LOS = ClassifyLOS(res.AverageDelay)
	res.Condition = ClassifyCondition(res.AverageDelay)
	res.EfficiencyClass = ClassifyEfficiency(res.Efficiency)
	return res
}

// SimulateNetwork evaluates every intersection and aggregates the totals
func (sim *Simulator) SimulateNetwork(intersections []network.Intersection, streets []network.Street, signals signal.Source) NetworkResult {
	idx := network.Index(streets)
	out := NetworkResult{
		Intersections: make([]IntersectionResult, 0, len(intersections)),
		LOSCounts:     map[LOS]int{},
	}
	for _, ix := range intersections {
		r := sim.SimulateIntersection(ix, idx, signals)
		out.Intersections = append(out.Intersections, r)
		out.TotalDemand += r.TotalDemand
		out.TotalDelay += r.TotalDelay
		out.TotalThroughput += r.TotalThroughput
		out.LOSCounts[r.LOS]++
	}
	out.AverageDelay = ratio(out.TotalDelay, out.TotalDemand)
	out.Efficiency = ratio(out.TotalThroughput, out.TotalDemand) * 100
	out.LOS = ClassifyLOS(out.AverageDelay)
	sim.log.Debug("network simulated",
		"intersections", len(out.Intersections),
		"throughput", out.TotalThroughput,
		"average_delay", out.AverageDelay,
		"los", out.LOS)
	return out
}
