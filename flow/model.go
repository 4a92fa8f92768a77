package flow

import (
	"math"

	"github.com/theoremus-urban-solutions/streetflow/network"
	"github.com/theoremus-urban-solutions/streetflow/signal"
)

// Saturation breakpoints of the signalized delay curve
const (
	freeFlowSaturation     = 0.1
	stableFlowSaturation   = 0.8
	nearCapacitySaturation = 0.95
)

// Model computes the performance of one street at one intersection.
// It is either Unsignalized or Signalized.
type Model interface {
	Evaluate(p Params, s network.Street) StreetResult
}

// Unsignalized is continuous flow with no light
type Unsignalized struct{}

// Signalized is flow metered by a light
type Signalized struct {
	Light signal.Config
}

// ModelFor picks the model that applies to streetID given the lights at the intersection
func ModelFor(lights map[string]signal.Config, streetID string) Model {
	if c, ok := lights[streetID]; ok {
		return Signalized{Light: c}
	}
	return Unsignalized{}
}

// Evaluate applies the uncontrolled capacity model. Capacity shrinks for
// streets longer than the reference length.
func (Unsignalized) Evaluate(p Params, s network.Street) StreetResult {
	length := s.LengthKM()
	capacity := p.UnsignalizedLaneCapacity * float64(s.Lanes) * math.Min(1.0, p.ReferenceLengthKM/math.Max(length, p.MinLengthKM))
	demand := s.Demand
	throughput := math.Min(demand, capacity)
	delay := p.BaselineDelay + demand/p.DemandDelayDivisor

	return StreetResult{
		StreetID:           s.ID,
		StreetName:         s.DisplayName(),
		LengthKM:           length,
		Demand:             demand,
		Capacity:           capacity,
		Throughput:         throughput,
		DelayPerVehicle:    delay,
		TotalDelay:         delay * demand,
		CongestionPct:      congestion(demand, throughput),
		Saturation:         ratio(demand, capacity),
		FreeFlowTravelTime: travelTime(length, s.Speed),
	}
}

// Evaluate applies the signal-controlled capacity model and the piecewise
// Webster delay approximation
func (m Signalized) Evaluate(p Params, s network.Street) StreetResult {
	length := s.LengthKM()
	capacity := p.SignalizedLaneCapacity * float64(s.Lanes) * m.Light.GreenRatio * p.CycleEfficiency
	demand := s.Demand
	throughput := math.Min(demand, capacity)

	saturation := 1.0
	if capacity > 0 {
		saturation = demand / capacity
	}

	delay := signalizedDelay(p, saturation, m.Light.RedTime)

	return StreetResult{
		StreetID:           s.ID,
		StreetName:         s.DisplayName(),
		LengthKM:           length,
		Demand:             demand,
		Capacity:           capacity,
		Throughput:         throughput,
		DelayPerVehicle:    delay,
		TotalDelay:         delay * demand,
		CongestionPct:      congestion(demand, throughput),
		Saturation:         saturation,
		Signalized:         true,
		GreenRatio:         m.Light.GreenRatio,
		CycleTime:          m.Light.CycleTime,
		FreeFlowTravelTime: travelTime(length, s.Speed),
	}
}

// signalizedDelay is the per-vehicle delay in seconds for a given saturation
// and red time
func signalizedDelay(p Params, saturation, redTime float64) float64 {
	switch {
	case saturation <= freeFlowSaturation:
		return redTime/2 + p.FreeFlowDelay
	case saturation <= stableFlowSaturation:
		return redTime/2 + saturation*p.LowSaturationSlope
	case saturation <= nearCapacitySaturation:
		return redTime + (saturation-stableFlowSaturation)*p.NearCapacitySlope
	default:
		return math.Min(redTime*2+(saturation-nearCapacitySaturation)*p.OverCapacitySlope, p.MaxDelay)
	}
}

func congestion(demand, throughput float64) float64 {
	if demand <= 0 {
		return 0
	}
	return math.Max(0, (demand-throughput)/demand*100)
}

func ratio(num, den float64) float64 {
	if den <= 0 {
		return 0
	}
	return num / den
}

// travelTime is the free-flow traversal time in seconds
func travelTime(lengthKM, speedKMH float64) float64 {
	if speedKMH <= 0 {
		return 0
	}
	return lengthKM / speedKMH * 3600
}
