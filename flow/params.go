package flow

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Params are the constants of the capacity and delay models
type Params struct {
	// Uncontrolled flow
	UnsignalizedLaneCapacity float64 `yaml:"unsignalizedLaneCapacity" validate:"gt=0"` // veh/h/lane
	BaselineDelay            float64 `yaml:"baselineDelay" validate:"gte=0"`           // s
	DemandDelayDivisor       float64 `yaml:"demandDelayDivisor" validate:"gt=0"`       // veh/h per extra second
	ReferenceLengthKM        float64 `yaml:"referenceLengthKM" validate:"gt=0"`
	MinLengthKM              float64 `yaml:"minLengthKM" validate:"gt=0"`

	// Signal control
	SignalizedLaneCapacity float64 `yaml:"signalizedLaneCapacity" validate:"gt=0"` // veh/h/lane
	CycleEfficiency        float64 `yaml:"cycleEfficiency" validate:"gt=0,lte=1"`
	FreeFlowDelay          float64 `yaml:"freeFlowDelay" validate:"gte=0"` // s, added at saturation <= 0.1
	LowSaturationSlope     float64 `yaml:"lowSaturationSlope" validate:"gte=0"`
	NearCapacitySlope      float64 `yaml:"nearCapacitySlope" validate:"gte=0"`
	OverCapacitySlope      float64 `yaml:"overCapacitySlope" validate:"gte=0"`
	MaxDelay               float64 `yaml:"maxDelay" validate:"gt=0"` // s
}

// DefaultParams returns the calibrated model constants
func DefaultParams() Params {
	return Params{
		UnsignalizedLaneCapacity: 2200,
		BaselineDelay:            2,
		DemandDelayDivisor:       1000,
		ReferenceLengthKM:        2,
		MinLengthKM:              0.1,

		SignalizedLaneCapacity: 1800,
		CycleEfficiency:        0.9,
		FreeFlowDelay:          1.25,
		LowSaturationSlope:     12.5,
		NearCapacitySlope:      110,
		OverCapacitySlope:      250,
		MaxDelay:               300,
	}
}

// Validate checks that every constant is in range
func (p Params) Validate() error {
	if err := validator.New().Struct(p); err != nil {
		return fmt.Errorf("invalid simulation parameters: %w", err)
	}
	return nil
}
