package flow

// LOS is the Highway Capacity Manual level-of-service grade
type LOS string

const (
	LOSA LOS = "A"
	LOSB LOS = "B"
	LOSC LOS = "C"
	LOSD LOS = "D"
	LOSE LOS = "E"
	LOSF LOS = "F"
)

// ClassifyLOS grades an average delay in seconds per vehicle
func ClassifyLOS(delay float64) LOS {
	switch {
	case delay <= 10:
		return LOSA
	case delay <= 20:
		return LOSB
	case delay <= 35:
		return LOSC
	case delay <= 55:
		return LOSD
	case delay <= 80:
		return LOSE
	default:
		return LOSF
	}
}

// Condition is a coarse label for the waiting time at an intersection
type Condition string

const (
	ConditionFluid     Condition = "FLUID"
	ConditionModerate  Condition = "MODERATE"
	ConditionCongested Condition = "CONGESTED"
	ConditionStopped   Condition = "STOPPED"
)

// ClassifyCondition labels an average delay in seconds per vehicle
func ClassifyCondition(delay float64) Condition {
	switch {
	case delay <= 10:
		return ConditionFluid
	case delay <= 25:
		return ConditionModerate
	case delay <= 45:
		return ConditionCongested
	default:
		return ConditionStopped
	}
}

// EfficiencyClass buckets the share of demand that gets through
type EfficiencyClass string

const (
	EfficiencyHigh   EfficiencyClass = "HIGH"
	EfficiencyMedium EfficiencyClass = "MEDIUM"
	EfficiencyLow    EfficiencyClass = "LOW"
)

// ClassifyEfficiency labels an efficiency percentage
func ClassifyEfficiency(pct float64) EfficiencyClass {
	switch {
	case pct >= 80:
		return EfficiencyHigh
	case pct >= 60:
		return EfficiencyMedium
	default:
		return EfficiencyLow
	}
}
