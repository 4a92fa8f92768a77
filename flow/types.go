package flow

import "github.com/theoremus-urban-solutions/streetflow/network"

// StreetResult is the one-hour performance of a street at an intersection
type StreetResult struct {
	StreetID           string  `json:"street_id"`
	StreetName         string  `json:"street_name"`
	LengthKM           float64 `json:"length_km"`
	Demand             float64 `json:"demand"`            // veh/h
	Capacity           float64 `json:"capacity"`          // veh/h
	Throughput         float64 `json:"throughput"`        // veh/h
	DelayPerVehicle    float64 `json:"delay_per_vehicle"` // s
	TotalDelay         float64 `json:"total_delay"`       // s
	CongestionPct      float64 `json:"congestion_pct"`    // %
	Saturation         float64 `json:"saturation"`        // demand / capacity
	Signalized         bool    `json:"signalized"`
	GreenRatio         float64 `json:"green_ratio,omitempty"`
	CycleTime          float64 `json:"cycle_time,omitempty"`  // s
	FreeFlowTravelTime float64 `json:"free_flow_travel_time"` // s
}

// IntersectionResult aggregates the street results of one intersection
type IntersectionResult struct {
	IntersectionID  string               `json:"intersection_id"`
	Intersection    network.Intersection `json:"intersection"`
	Streets         []StreetResult       `json:"streets"`
	TotalDemand     float64              `json:"total_demand"`
	TotalDelay      float64              `json:"total_delay"`
	TotalThroughput float64              `json:"total_throughput"`
	AverageDelay    float64              `json:"average_delay"`
	LOS             LOS                  `json:"level_of_service"`
	Efficiency      float64              `json:"efficiency"`
	Condition       Condition            `json:"traffic_condition"`
	EfficiencyClass EfficiencyClass      `json:"flow_efficiency"`
}

// Street returns the result for streetID
func (r IntersectionResult) Street(streetID string) (StreetResult, bool) {
	for _, s := range r.Streets {
		if s.StreetID == streetID {
			return s, true
		}
	}
	return StreetResult{}, false
}

// NetworkResult aggregates every intersection of a simulation pass
type NetworkResult struct {
	Intersections   []IntersectionResult `json:"intersections"`
	TotalDemand     float64              `json:"total_demand"`
	TotalDelay      float64              `json:"total_delay"`
	TotalThroughput float64              `json:"total_throughput"`
	AverageDelay    float64              `json:"average_delay"`
	LOS             LOS                  `json:"level_of_service"`
	Efficiency      float64              `json:"efficiency"`
	LOSCounts       map[LOS]int          `json:"los_counts"`
}
