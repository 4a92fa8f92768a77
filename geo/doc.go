// Package geo provides the geometric primitives used by the intersection index
// and the transit overlay.
//
// It contains:
//   - Great-circle distance (haversine, spherical Earth of radius 6371 km)
//   - Polyline length
//   - 2-D segment intersection in (longitude, latitude) space
//   - Conversions to github.com/paulmach/orb geometries for GeoJSON output
//
// Points are always (latitude, longitude). Segment intersection treats
// longitude as x and latitude as y, which is only an approximation of true
// geodesic intersection and is intended for short street segments.
package geo
