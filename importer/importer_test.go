package importer

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theoremus-urban-solutions/streetflow/config"
	"github.com/theoremus-urban-solutions/streetflow/geo"
)

const nominatimBody = `[
  {"display_name": "Avenida Paulista, Bela Vista, São Paulo", "lat": "-23.5614", "lon": "-46.6559", "type": "primary", "class": "highway", "importance": 0.7},
  {"display_name": "Estação Paulista", "lat": "-23.5550", "lon": "-46.6620", "type": "station", "class": "railway", "importance": 0.5},
  {"display_name": "Rua Paulista", "lat": "-23.6000", "lon": "-46.7000", "type": "residential", "class": "place", "importance": 0.2}
]`

func newTestGeocoder(t *testing.T, handler http.HandlerFunc) *Geocoder {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	cfg := config.Default().Geocoder
	cfg.URL = srv.URL
	return NewGeocoder(cfg)
}

func TestGeocoder_SearchStreet(t *testing.T) {
	var gotQuery, gotAgent string
	g := newTestGeocoder(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		gotAgent = r.Header.Get("User-Agent")
		assert.Equal(t, "br", r.URL.Query().Get("countrycodes"))
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(nominatimBody))
	})

	loc := config.Locality{Name: "sp", City: "São Paulo", Country: "Brasil", CountryCodes: "br"}
	places, err := g.SearchStreet(context.Background(), "Avenida Paulista", loc, 0)
	require.NoError(t, err)

	assert.Equal(t, "Avenida Paulista, São Paulo, Brasil", gotQuery)
	assert.Equal(t, "StreetFlow/1.0", gotAgent)
	require.Len(t, places, 2, "railway station is filtered out")
	assert.InDelta(t, -23.5614, places[0].Lat, 1e-9)
	assert.InDelta(t, -46.6559, places[0].Lon, 1e-9)
	assert.Equal(t, "residential", places[1].Type)
}

func TestGeocoder_HTTPError(t *testing.T) {
	g := newTestGeocoder(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})
	_, err := g.SearchStreet(context.Background(), "x", config.Locality{City: "y"}, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestGeocoder_BadJSON(t *testing.T) {
	g := newTestGeocoder(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("{"))
	})
	_, err := g.SearchStreet(context.Background(), "x", config.Locality{City: "y"}, 1)
	assert.Error(t, err)
}

type stubSearcher struct {
	places []Place
	err    error
}

func (s stubSearcher) SearchStreet(context.Context, string, config.Locality, int) ([]Place, error) {
	return s.places, s.err
}

func TestStreetImporter_Import(t *testing.T) {
	im := NewStreetImporter(stubSearcher{places: []Place{{DisplayName: "Av", Lat: -23.5614, Lon: -46.6559}}})
	opts := OptionsFrom(Options{Lanes: 3}, config.Default().Defaults)

	st, place, err := im.Import(context.Background(), "Avenida Paulista", config.Locality{City: "São Paulo"}, opts)
	require.NoError(t, err)
	assert.Equal(t, "Av", place.DisplayName)
	assert.Equal(t, "Avenida Paulista (Real)", st.Name)
	assert.Empty(t, st.ID)
	assert.Equal(t, 3, st.Lanes)
	assert.Equal(t, 500.0, st.Demand)
	assert.Equal(t, 50.0, st.Speed)
	require.Len(t, st.Points, 2)

	mid := geo.Point{
		Lat: (st.Points[0].Lat + st.Points[1].Lat) / 2,
		Lon: (st.Points[0].Lon + st.Points[1].Lon) / 2,
	}
	assert.InDelta(t, -23.5614, mid.Lat, 1e-9)
	assert.InDelta(t, -46.6559, mid.Lon, 1e-9)
}

func TestStreetImporter_Errors(t *testing.T) {
	im := NewStreetImporter(stubSearcher{})
	_, _, err := im.Import(context.Background(), "nowhere", config.Locality{}, Options{})
	assert.True(t, errors.Is(err, ErrNoMatch))

	boom := errors.New("boom")
	im = NewStreetImporter(stubSearcher{err: boom})
	_, _, err = im.Import(context.Background(), "x", config.Locality{}, Options{})
	assert.True(t, errors.Is(err, boom))
}

func TestSegment(t *testing.T) {
	c := geo.Point{Lat: 0, Lon: 0}
	pts := Segment(c, 0.3)
	require.Len(t, pts, 2)
	assert.InDelta(t, 0.3*0.3/kmPerDegreeLat, pts[1].Lat-pts[0].Lat, 1e-12)
	assert.InDelta(t, 0.3*0.7/kmPerDegreeLat, pts[1].Lon-pts[0].Lon, 1e-12)
	assert.Greater(t, geo.PolylineLength(pts), 0.2)
	assert.Less(t, geo.PolylineLength(pts), 0.3)
}

const osmDoc = `<?xml version="1.0" encoding="UTF-8"?>
<osm version="0.6" generator="test">
  <node id="1" lat="-23.5600" lon="-46.6600"/>
  <node id="2" lat="-23.5600" lon="-46.6500"/>
  <node id="3" lat="-23.5650" lon="-46.6550"/>
  <node id="4" lat="-23.5550" lon="-46.6550"/>
  <way id="100">
    <nd ref="1"/>
    <nd ref="2"/>
    <tag k="highway" v="primary"/>
    <tag k="name" v="Avenida Paulista"/>
    <tag k="lanes" v="4"/>
    <tag k="maxspeed" v="30 mph"/>
  </way>
  <way id="200">
    <nd ref="3"/>
    <nd ref="4"/>
    <tag k="highway" v="residential"/>
    <tag k="ref" v="SP-01"/>
  </way>
  <way id="300">
    <nd ref="3"/>
    <nd ref="1"/>
    <tag k="highway" v="footway"/>
  </way>
  <way id="400">
    <nd ref="1"/>
    <nd ref="999"/>
    <tag k="highway" v="primary_link"/>
  </way>
</osm>`

func TestReadOSM(t *testing.T) {
	opts := Options{Lanes: 2, Demand: 700, Speed: 40}
	streets, err := ReadOSM(context.Background(), strings.NewReader(osmDoc), opts)
	require.NoError(t, err)
	require.Len(t, streets, 2, "footway and the broken link are dropped")

	paulista := streets[0]
	assert.Equal(t, "way/100", paulista.ID)
	assert.Equal(t, "Avenida Paulista", paulista.Name)
	assert.Equal(t, 4, paulista.Lanes)
	assert.InDelta(t, 30*mphToKMH, paulista.Speed, 1e-9)
	assert.Equal(t, 700.0, paulista.Demand)
	require.Len(t, paulista.Points, 2)
	assert.InDelta(t, -46.66, paulista.Points[0].Lon, 1e-9)

	other := streets[1]
	assert.Equal(t, "SP-01", other.Name)
	assert.Equal(t, 2, other.Lanes)
	assert.Equal(t, 40.0, other.Speed)
}

func TestParseMaxSpeed(t *testing.T) {
	tests := []struct {
		in       string
		expected float64
		ok       bool
	}{
		{"50", 50, true},
		{"60 km/h", 60, true},
		{"30 mph", 30 * mphToKMH, true},
		{"", 0, false},
		{"signals", 0, false},
		{"-5", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseMaxSpeed(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.InDelta(t, tt.expected, got, 1e-9, tt.in)
	}
}

func TestOptionsFrom(t *testing.T) {
	d := config.Default().Defaults
	o := OptionsFrom(Options{Demand: 900}, d)
	assert.Equal(t, d.Lanes, o.Lanes)
	assert.Equal(t, 900.0, o.Demand)
	assert.Equal(t, d.SegmentKM, o.SegmentKM)
}
