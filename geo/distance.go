package geo

import (
	"math"

	"github.com/paulmach/orb"
)

// EarthRadiusKM is the mean Earth radius used by the haversine formula
const EarthRadiusKM = 6371.0

// parallelEpsilon is the determinant magnitude under which two segments are treated as parallel
const parallelEpsilon = 1e-10

// Point is a geographic coordinate in degrees
type Point struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lon float64 `json:"lon" yaml:"lon"`
}

// Distance returns the great-circle distance between a and b in kilometers
func Distance(a, b Point) float64 {
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180
	la1 := a.Lat * math.Pi / 180
	la2 := b.Lat * math.Pi / 180
	h := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(la1)*math.Cos(la2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return EarthRadiusKM * c
}

// PolylineLength sums the distance between consecutive points.
// Fewer than two points yield 0.
func PolylineLength(points []Point) float64 {
	if len(points) < 2 {
		return 0
	}
	total := 0.0
	for i := 1; i < len(points); i++ {
		total += Distance(points[i-1], points[i])
	}
	return total
}

// SegmentIntersection intersects segment p1-p2 with segment p3-p4.
// Parallel and collinear segments never intersect. The crossing must lie
// within both finite segments.
func SegmentIntersection(p1, p2, p3, p4 Point) (Point, bool) {
	x1, y1 := p1.Lon, p1.Lat
	x2, y2 := p2.Lon, p2.Lat
	x3, y3 := p3.Lon, p3.Lat
	x4, y4 := p4.Lon, p4.Lat

	denom := (x1-x2)*(y3-y4) - (y1-y2)*(x3-x4)
	if math.Abs(denom) < parallelEpsilon {
		return Point{}, false
	}

	t := ((x1-x3)*(y3-y4) - (y1-y3)*(x3-x4)) / denom
	u := -((x1-x2)*(y1-y3) - (y1-y2)*(x1-x3)) / denom
	if t < 0 || t > 1 || u < 0 || u > 1 {
		return Point{}, false
	}

	return Point{
		Lat: y1 + t*(y2-y1),
		Lon: x1 + t*(x2-x1),
	}, true
}

// PointSegmentDistance returns the distance in kilometers from p to the
// closest point of segment a-b, using an equirectangular projection centred on p.
func PointSegmentDistance(p, a, b Point) float64 {
	kx := math.Cos(p.Lat*math.Pi/180) * math.Pi / 180 * EarthRadiusKM
	ky := math.Pi / 180 * EarthRadiusKM

	ax, ay := (a.Lon-p.Lon)*kx, (a.Lat-p.Lat)*ky
	bx, by := (b.Lon-p.Lon)*kx, (b.Lat-p.Lat)*ky
	dx, dy := bx-ax, by-ay

	t := 0.0
	if l2 := dx*dx + dy*dy; l2 > 0 {
		t = -(ax*dx + ay*dy) / l2
		t = math.Max(0, math.Min(1, t))
	}
	cx, cy := ax+t*dx, ay+t*dy
	return math.Hypot(cx, cy)
}

// PolylineDistance returns the smallest PointSegmentDistance from p to any
// segment of the polyline. A single point polyline is measured directly.
func PolylineDistance(p Point, points []Point) float64 {
	switch len(points) {
	case 0:
		return math.Inf(1)
	case 1:
		return Distance(p, points[0])
	}
	best := math.Inf(1)
	for i := 1; i < len(points); i++ {
		if d := PointSegmentDistance(p, points[i-1], points[i]); d < best {
			best = d
		}
	}
	return best
}

// ToOrb converts p into an orb.Point, which is ordered [lon, lat]
func (p Point) ToOrb() orb.Point {
	return orb.Point{p.Lon, p.Lat}
}

// LineString converts a polyline into an orb.LineString
func LineString(points []Point) orb.LineString {
	ls := make(orb.LineString, 0, len(points))
	for _, p := range points {
		ls = append(ls, p.ToOrb())
	}
	return ls
}

// FromOrb converts an orb.Point back into a Point
func FromOrb(p orb.Point) Point {
	return Point{Lat: p.Lat(), Lon: p.Lon()}
}
