package network

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"

	"github.com/theoremus-urban-solutions/streetflow/geo"
)

var validate = validator.New()

// Street is a polyline with the attributes the flow model needs
type Street struct {
	ID     string      `json:"id" validate:"required"`
	Name   string      `json:"name"`
	Points []geo.Point `json:"coordinates" validate:"min=2"`
	Lanes  int         `json:"lanes" validate:"gt=0"`
	Demand float64     `json:"vehicles_per_hour" validate:"gte=0"`
	Speed  float64     `json:"average_speed" validate:"gte=0"`
}

// LengthKM is the great-circle length of the street polyline
func (s Street) LengthKM() float64 {
	return geo.PolylineLength(s.Points)
}

// DisplayName falls back to a generated label when the street has no name
func (s Street) DisplayName() string {
	if s.Name != "" {
		return s.Name
	}
	return "Street " + s.ID
}

// Validate checks the struct constraints of a street
func (s Street) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("invalid street %q: %w", s.ID, err)
	}
	return nil
}

// Index keys streets by identifier. Later duplicates win.
func Index(streets []Street) map[string]Street {
	return lo.KeyBy(streets, func(s Street) string { return s.ID })
}
