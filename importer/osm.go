package importer

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmxml"
	"golang.org/x/exp/slog"

	"github.com/theoremus-urban-solutions/streetflow/geo"
	"github.com/theoremus-urban-solutions/streetflow/network"
)

const mphToKMH = 1.609344

// drivable highway values; *_link variants are matched by prefix
var drivable = map[string]bool{
	"motorway":      true,
	"trunk":         true,
	"primary":       true,
	"secondary":     true,
	"tertiary":      true,
	"unclassified":  true,
	"residential":   true,
	"living_street": true,
	"service":       true,
}

// ReadOSM reads drivable highway ways from an OSM XML document. The lanes and
// maxspeed tags override opts; demand always comes from opts. Ways that
// reference unknown nodes keep the nodes that are known and are dropped if
// fewer than two remain.
func ReadOSM(ctx context.Context, r io.Reader, opts Options) ([]network.Street, error) {
	scanner := osmxml.New(ctx, r)
	defer func() { _ = scanner.Close() }()

	nodes := map[osm.NodeID]geo.Point{}
	var ways []*osm.Way
	for scanner.Scan() {
		switch o := scanner.Object().(type) {
		case *osm.Node:
			nodes[o.ID] = geo.Point{Lat: o.Lat, Lon: o.Lon}
		case *osm.Way:
			if isDrivable(o.Tags.Find("highway")) {
				ways = append(ways, o)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read osm: %w", err)
	}

	streets := make([]network.Street, 0, len(ways))
	for _, w := range ways {
		pts := make([]geo.Point, 0, len(w.Nodes))
		for _, wn := range w.Nodes {
			if p, ok := nodes[wn.ID]; ok {
				pts = append(pts, p)
			}
		}
		if len(pts) < 2 {
			slog.Debug("skipping osm way with too few nodes", "way", int64(w.ID), "nodes", len(pts))
			continue
		}
		name := w.Tags.Find("name")
		if name == "" {
			name = w.Tags.Find("ref")
		}
		s := network.Street{
			ID:     "way/" + strconv.FormatInt(int64(w.ID), 10),
			Name:   name,
			Points: pts,
			Lanes:  opts.Lanes,
			Demand: opts.Demand,
			Speed:  opts.Speed,
		}
		if n, err := strconv.Atoi(strings.TrimSpace(w.Tags.Find("lanes"))); err == nil && n > 0 {
			s.Lanes = n
		}
		if v, ok := parseMaxSpeed(w.Tags.Find("maxspeed")); ok {
			s.Speed = v
		}
		streets = append(streets, s)
	}
	return streets, nil
}

func isDrivable(highway string) bool {
	return drivable[highway] || strings.HasSuffix(highway, "_link")
}

// parseMaxSpeed understands "50", "50 km/h" and "30 mph"
func parseMaxSpeed(v string) (float64, bool) {
	v = strings.TrimSpace(strings.ToLower(v))
	if v == "" {
		return 0, false
	}
	mph := strings.HasSuffix(v, "mph")
	v = strings.TrimSpace(strings.TrimSuffix(strings.TrimSuffix(v, "mph"), "km/h"))
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f <= 0 {
		return 0, false
	}
	if mph {
		f *= mphToKMH
	}
	return f, true
}
