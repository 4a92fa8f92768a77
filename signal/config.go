package signal

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Config is the timing of one street's light at one intersection
type Config struct {
	IntersectionID string  `json:"intersection_id" validate:"required"`
	StreetID       string  `json:"street_id" validate:"required"`
	CycleTime      float64 `json:"cycle_time" validate:"gt=0"`
	GreenTime      float64 `json:"green_time" validate:"gt=0,ltfield=CycleTime"`
	GreenRatio     float64 `json:"green_ratio"`
	RedTime        float64 `json:"red_time"`
}

// ValidationError is returned when a light timing is rejected
type ValidationError struct {
	IntersectionID string
	StreetID       string
	Msg            string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid signal %s/%s: %s", e.IntersectionID, e.StreetID, e.Msg)
}

// NewConfig validates the timing and fills in the derived fields
func NewConfig(intersectionID, streetID string, cycleTime, greenTime float64) (Config, error) {
	c := Config{
		IntersectionID: intersectionID,
		StreetID:       streetID,
		CycleTime:      cycleTime,
		GreenTime:      greenTime,
	}
	if greenTime >= cycleTime {
		return Config{}, &ValidationError{
			IntersectionID: intersectionID,
			StreetID:       streetID,
			Msg:            fmt.Sprintf("green time %gs must be less than cycle time %gs", greenTime, cycleTime),
		}
	}
	if err := validate.Struct(c); err != nil {
		return Config{}, &ValidationError{IntersectionID: intersectionID, StreetID: streetID, Msg: err.Error()}
	}
	c.GreenRatio = greenTime / cycleTime
	c.RedTime = cycleTime - greenTime
	return c, nil
}
