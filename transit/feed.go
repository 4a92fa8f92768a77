package transit

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	gtfsrtpb "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"google.golang.org/protobuf/proto"

	"github.com/theoremus-urban-solutions/streetflow/geo"
)

// Vehicle is one transit vehicle position from a GTFS-Realtime feed
type Vehicle struct {
	ID       string
	RouteID  string
	Position geo.Point
	SpeedKMH float64 // 0 when the feed does not report speed
}

// Client fetches GTFS-Realtime feeds over HTTP
type Client struct {
	httpClient *http.Client
}

// NewClient creates a client with the given request timeout
func NewClient(timeout time.Duration) *Client {
	return &Client{httpClient: &http.Client{Timeout: timeout}}
}

// Fetch returns the raw protobuf bytes at url, which may also be a local
// file path. An empty url yields nil.
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	if url == "" {
		return nil, nil
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return os.ReadFile(url)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d from %s", resp.StatusCode, url)
	}
	return io.ReadAll(resp.Body)
}

// DecodeVehicles extracts positioned vehicles from a VehiclePositions feed.
// Entities without a position are skipped. A vehicle reported more than once
// keeps its last position.
func DecodeVehicles(data []byte) ([]Vehicle, error) {
	var fm gtfsrtpb.FeedMessage
	if err := proto.Unmarshal(data, &fm); err != nil {
		return nil, fmt.Errorf("failed to decode feed: %w", err)
	}

	seen := map[string]int{}
	var out []Vehicle
	for _, e := range fm.GetEntity() {
		vp := e.GetVehicle()
		if vp == nil || vp.GetPosition() == nil {
			continue
		}
		pos := vp.GetPosition()
		id := vp.GetVehicle().GetId()
		if id == "" {
			id = e.GetId()
		}
		v := Vehicle{
			ID:       id,
			RouteID:  vp.GetTrip().GetRouteId(),
			Position: geo.Point{Lat: float64(pos.GetLatitude()), Lon: float64(pos.GetLongitude())},
			SpeedKMH: float64(pos.GetSpeed()) * 3.6,
		}
		if i, ok := seen[id]; ok {
			out[i] = v
			continue
		}
		seen[id] = len(out)
		out = append(out, v)
	}
	return out, nil
}
