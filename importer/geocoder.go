package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/theoremus-urban-solutions/streetflow/config"
)

// Place is one street-like search result
type Place struct {
	DisplayName string  `json:"display_name"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	Type        string  `json:"type"`
	Class       string  `json:"class"`
	Importance  float64 `json:"importance"`
}

// nominatimResult is the subset of the Nominatim search response we read.
// lat and lon are returned as strings.
type nominatimResult struct {
	DisplayName string  `json:"display_name"`
	Lat         string  `json:"lat"`
	Lon         string  `json:"lon"`
	Type        string  `json:"type"`
	Class       string  `json:"class"`
	Importance  float64 `json:"importance"`
}

// Geocoder searches street names against a Nominatim endpoint
type Geocoder struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	limit      int
}

// NewGeocoder creates a geocoder from configuration
func NewGeocoder(cfg config.GeocoderConfig) *Geocoder {
	return &Geocoder{
		httpClient: &http.Client{Timeout: time.Duration(cfg.TimeoutMS) * time.Millisecond},
		baseURL:    cfg.URL,
		userAgent:  cfg.UserAgent,
		limit:      cfg.Limit,
	}
}

// SearchStreet looks up streetName within the locality and keeps only
// road-like results. limit <= 0 uses the configured limit.
func (g *Geocoder) SearchStreet(ctx context.Context, streetName string, loc config.Locality, limit int) ([]Place, error) {
	if limit <= 0 {
		limit = g.limit
	}
	parts := []string{streetName, loc.City}
	if loc.Country != "" {
		parts = append(parts, loc.Country)
	}
	q := url.Values{}
	q.Set("q", strings.Join(parts, ", "))
	q.Set("format", "json")
	q.Set("limit", strconv.Itoa(limit))
	q.Set("addressdetails", "1")
	if loc.CountryCodes != "" {
		q.Set("countrycodes", loc.CountryCodes)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", g.userAgent)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to search %q: %w", streetName, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d from geocoder", resp.StatusCode)
	}

	var raw []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode geocoder response: %w", err)
	}

	out := make([]Place, 0, len(raw))
	for _, r := range raw {
		if !isRoad(r.Type, r.Class) {
			continue
		}
		lat, err1 := strconv.ParseFloat(r.Lat, 64)
		lon, err2 := strconv.ParseFloat(r.Lon, 64)
		if err1 != nil || err2 != nil {
			continue
		}
		out = append(out, Place{
			DisplayName: r.DisplayName,
			Lat:         lat,
			Lon:         lon,
			Type:        r.Type,
			Class:       r.Class,
			Importance:  r.Importance,
		})
	}
	return out, nil
}

func isRoad(typ, class string) bool {
	for _, term := range []string{"road", "street", "residential"} {
		if strings.Contains(typ, term) {
			return true
		}
	}
	return strings.Contains(class, "highway") || strings.Contains(class, "road")
}
