package network

import (
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/theoremus-urban-solutions/streetflow/geo"
)

// TypeIntersection tags every record produced by FindIntersections
const TypeIntersection = "INTERSECTION"

// Intersection is one geometric crossing between two streets
type Intersection struct {
	ID          string    `json:"id"`
	Point       geo.Point `json:"point"`
	StreetIDs   [2]string `json:"streets"`
	StreetNames [2]string `json:"street_names"`
	Type        string    `json:"type"`
}

// Involves reports whether streetID is one of the two crossing streets
func (ix Intersection) Involves(streetID string) bool {
	return ix.StreetIDs[0] == streetID || ix.StreetIDs[1] == streetID
}

// IntersectionID derives the identifier shared by every crossing of the same
// street pair. The order of a and b does not matter.
func IntersectionID(a, b string) string {
	ids := []string{a, b}
	sort.Strings(ids)
	return "intersection_" + strings.Join(ids, "-")
}

// FindIntersections tests every unordered pair of streets segment by segment.
// Each crossing yields its own record, so a street winding across another
// more than once produces several intersections with the same ID.
func FindIntersections(streets []Street) []Intersection {
	out := []Intersection{}
	for i := 0; i < len(streets); i++ {
		for j := i + 1; j < len(streets); j++ {
			out = append(out, crossings(streets[i], streets[j])...)
		}
	}
	return out
}

// FindIntersectionsFor returns only the crossings that involve streetID
func FindIntersectionsFor(streets []Street, streetID string) []Intersection {
	return lo.Filter(FindIntersections(streets), func(ix Intersection, _ int) bool {
		return ix.Involves(streetID)
	})
}

func crossings(s1, s2 Street) []Intersection {
	var out []Intersection
	id := IntersectionID(s1.ID, s2.ID)
	for a := 0; a+1 < len(s1.Points); a++ {
		for b := 0; b+1 < len(s2.Points); b++ {
			p, ok := geo.SegmentIntersection(s1.Points[a], s1.Points[a+1], s2.Points[b], s2.Points[b+1])
			if !ok {
				continue
			}
			out = append(out, Intersection{
				ID:          id,
				Point:       p,
				StreetIDs:   [2]string{s1.ID, s2.ID},
				StreetNames: [2]string{s1.DisplayName(), s2.DisplayName()},
				Type:        TypeIntersection,
			})
		}
	}
	return out
}
