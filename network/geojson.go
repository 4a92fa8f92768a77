package network

import (
	"github.com/paulmach/orb/geojson"

	"github.com/theoremus-urban-solutions/streetflow/geo"
)

// FeatureCollection renders streets as LineStrings and intersections as
// Points so the network can be drawn on a map
func FeatureCollection(streets []Street, intersections []Intersection) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, s := range streets {
		f := geojson.NewFeature(geo.LineString(s.Points))
		f.ID = s.ID
		f.Properties["kind"] = "street"
		f.Properties["name"] = s.DisplayName()
		f.Properties["lanes"] = s.Lanes
		f.Properties["vehicles_per_hour"] = s.Demand
		f.Properties["average_speed"] = s.Speed
		f.Properties["length_km"] = s.LengthKM()
		fc.Append(f)
	}
	for _, ix := range intersections {
		f := geojson.NewFeature(ix.Point.ToOrb())
		f.Properties["kind"] = "intersection"
		f.Properties["intersection_id"] = ix.ID
		f.Properties["streets"] = ix.StreetIDs[:]
		f.Properties["street_names"] = ix.StreetNames[:]
		fc.Append(f)
	}
	return fc
}
