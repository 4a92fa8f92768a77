package transit

import (
	"math"

	"github.com/theoremus-urban-solutions/streetflow/geo"
	"github.com/theoremus-urban-solutions/streetflow/network"
)

// minDensityLengthKM floors the length used for density so a vehicle on a
// very short street does not produce an absurd flow
const minDensityLengthKM = 0.1

// Options controls how vehicles are snapped and weighted
type Options struct {
	SnapMeters float64 // maximum distance from a street
	PCE        float64 // passenger car equivalents per transit vehicle
}

// StreetLoad is the transit contribution to one street
type StreetLoad struct {
	StreetID    string  `json:"street_id"`
	Vehicles    int     `json:"vehicles"`
	MeanSpeed   float64 `json:"mean_speed"`   // km/h
	Flow        float64 `json:"flow"`         // transit veh/h
	AddedDemand float64 `json:"added_demand"` // PCE veh/h
}

// Overlay snaps vehicles to their nearest street and adds the implied transit
// flow to each street's demand. Flow is estimated from the snapshot with
// q = k·v: vehicles per km times mean speed. Vehicles without a reported
// speed travel at the street's average speed. The input slice is not modified.
func Overlay(streets []network.Street, vehicles []Vehicle, opts Options) ([]network.Street, []StreetLoad) {
	snapKM := opts.SnapMeters / 1000

	type acc struct {
		count    int
		speedSum float64
	}
	byStreet := map[int]*acc{}
	for _, v := range vehicles {
		best, bestDist := -1, math.Inf(1)
		for i, s := range streets {
			if d := geo.PolylineDistance(v.Position, s.Points); d < bestDist {
				best, bestDist = i, d
			}
		}
		if best < 0 || bestDist > snapKM {
			continue
		}
		a, ok := byStreet[best]
		if !ok {
			a = &acc{}
			byStreet[best] = a
		}
		a.count++
		speed := v.SpeedKMH
		if speed <= 0 {
			speed = streets[best].Speed
		}
		a.speedSum += speed
	}

	out := make([]network.Street, len(streets))
	copy(out, streets)
	loads := []StreetLoad{}
	for i := range out {
		a, ok := byStreet[i]
		if !ok {
			continue
		}
		meanSpeed := a.speedSum / float64(a.count)
		density := float64(a.count) / math.Max(out[i].LengthKM(), minDensityLengthKM)
		flow := density * meanSpeed
		added := flow * opts.PCE
		out[i].Demand += added
		loads = append(loads, StreetLoad{
			StreetID:    out[i].ID,
			Vehicles:    a.count,
			MeanSpeed:   meanSpeed,
			Flow:        flow,
			AddedDemand: added,
		})
	}
	return out, loads
}
