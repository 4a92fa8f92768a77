package importer

import (
	"context"
	"errors"
	"math"

	"github.com/theoremus-urban-solutions/streetflow/config"
	"github.com/theoremus-urban-solutions/streetflow/geo"
	"github.com/theoremus-urban-solutions/streetflow/network"
)

// ErrNoMatch is returned when the geocoder finds no street for a name
var ErrNoMatch = errors.New("street not found")

// kmPerDegreeLat is the length of one degree of latitude
const kmPerDegreeLat = 111.32

// Searcher finds street-like places by name
type Searcher interface {
	SearchStreet(ctx context.Context, streetName string, loc config.Locality, limit int) ([]Place, error)
}

// Options carries the street attributes the geocoder cannot provide
type Options struct {
	Lanes     int
	Demand    float64
	Speed     float64
	SegmentKM float64
}

// OptionsFrom fills zero values in o from the configured defaults
func OptionsFrom(o Options, d config.StreetDefaults) Options {
	if o.Lanes <= 0 {
		o.Lanes = d.Lanes
	}
	if o.Demand <= 0 {
		o.Demand = d.Demand
	}
	if o.Speed <= 0 {
		o.Speed = d.Speed
	}
	if o.SegmentKM <= 0 {
		o.SegmentKM = d.SegmentKM
	}
	return o
}

// StreetImporter turns a street name into an approximate Street
type StreetImporter struct {
	searcher Searcher
}

// NewStreetImporter creates an importer backed by s
func NewStreetImporter(s Searcher) *StreetImporter {
	return &StreetImporter{searcher: s}
}

// Import geocodes streetName and synthesizes a short segment centred on the
// best match. The returned street has no ID; the store assigns one.
func (im *StreetImporter) Import(ctx context.Context, streetName string, loc config.Locality, opts Options) (network.Street, Place, error) {
	places, err := im.searcher.SearchStreet(ctx, streetName, loc, 1)
	if err != nil {
		return network.Street{}, Place{}, err
	}
	if len(places) == 0 {
		return network.Street{}, Place{}, ErrNoMatch
	}
	best := places[0]
	return network.Street{
		Name:   streetName + " (Real)",
		Points: Segment(geo.Point{Lat: best.Lat, Lon: best.Lon}, opts.SegmentKM),
		Lanes:  opts.Lanes,
		Demand: opts.Demand,
		Speed:  opts.Speed,
	}, best, nil
}

// Segment builds a two-point diagonal segment of roughly lengthKM around center
func Segment(center geo.Point, lengthKM float64) []geo.Point {
	latShift := lengthKM / kmPerDegreeLat * 0.3
	lonShift := lengthKM / (kmPerDegreeLat * math.Abs(math.Cos(center.Lat*math.Pi/180))) * 0.7
	return []geo.Point{
		{Lat: center.Lat - latShift/2, Lon: center.Lon - lonShift/2},
		{Lat: center.Lat + latShift/2, Lon: center.Lon + lonShift/2},
	}
}
