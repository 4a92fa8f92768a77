package streetflow

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	gtfsrtpb "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"

	"github.com/theoremus-urban-solutions/streetflow/config"
	"github.com/theoremus-urban-solutions/streetflow/geo"
	"github.com/theoremus-urban-solutions/streetflow/network"
	"github.com/theoremus-urban-solutions/streetflow/store"
)

func newTestEngine(t *testing.T, st *store.Store) *Engine {
	t.Helper()
	e, err := NewEngine(config.Default(), st)
	require.NoError(t, err)
	return e
}

func crossingStreets() []network.Street {
	return []network.Street{
		{ID: "a", Name: "A", Points: []geo.Point{{Lat: 0, Lon: -0.01}, {Lat: 0, Lon: 0.01}}, Lanes: 2, Demand: 600, Speed: 40},
		{ID: "b", Name: "B", Points: []geo.Point{{Lat: -0.01, Lon: 0}, {Lat: 0.01, Lon: 0}}, Lanes: 2, Demand: 400, Speed: 40},
	}
}

func TestEngine_PersistsAcrossRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "streetflow.gob")
	st, err := store.Open(path)
	require.NoError(t, err)

	e := newTestEngine(t, st)
	for _, s := range crossingStreets() {
		_, err := e.PutStreet(s)
		require.NoError(t, err)
	}
	_, err = e.AddSignal(crossingID, "a", 90, 45)
	require.NoError(t, err)

	reopened, err := store.Open(path)
	require.NoError(t, err)
	e2 := newTestEngine(t, reopened)
	assert.Len(t, e2.Store().Streets(), 2)
	assert.True(t, e2.Signals().Has(crossingID, "a"), "registry rebuilt from stored lights")

	require.NoError(t, e2.DeleteStreet("a"))
	assert.False(t, e2.Signals().Has(crossingID, "a"))
	assert.Empty(t, e2.Intersections())
}

func TestEngine_Intersection(t *testing.T) {
	e := newTestEngine(t, store.New())
	for _, s := range crossingStreets() {
		_, err := e.PutStreet(s)
		require.NoError(t, err)
	}

	ix, streets, err := e.Intersection(crossingID)
	require.NoError(t, err)
	assert.Equal(t, crossingID, ix.ID)
	assert.Len(t, streets, 2)

	_, _, err = e.Intersection("intersection_x-y")
	assert.ErrorIs(t, err, ErrUnknownIntersection)
}

func TestEngine_SimulateWithTransit(t *testing.T) {
	e := newTestEngine(t, store.New())
	for _, s := range crossingStreets() {
		_, err := e.PutStreet(s)
		require.NoError(t, err)
	}

	fm := &gtfsrtpb.FeedMessage{
		Header: &gtfsrtpb.FeedHeader{GtfsRealtimeVersion: proto.String("2.0")},
		Entity: []*gtfsrtpb.FeedEntity{{
			Id: proto.String("1"),
			Vehicle: &gtfsrtpb.VehiclePosition{
				Vehicle:  &gtfsrtpb.VehicleDescriptor{Id: proto.String("bus-1")},
				Position: &gtfsrtpb.Position{Latitude: proto.Float32(0.00005), Longitude: proto.Float32(0.005)},
			},
		}},
	}
	data, err := proto.Marshal(fm)
	require.NoError(t, err)
	feed := filepath.Join(t.TempDir(), "vp.pb")
	require.NoError(t, os.WriteFile(feed, data, 0644))

	base := e.Simulate(context.Background(), "")
	withBus := e.Simulate(context.Background(), feed)

	require.Len(t, withBus.Transit, 1)
	assert.Equal(t, "a", withBus.Transit[0].StreetID)
	assert.Greater(t, withBus.Network.TotalDemand, base.Network.TotalDemand)
	assert.InDelta(t, base.Network.TotalDemand+withBus.Transit[0].AddedDemand, withBus.Network.TotalDemand, 1e-6)

	stored, err := e.Store().GetStreet("a")
	require.NoError(t, err)
	assert.Equal(t, 600.0, stored.Street.Demand, "stored demand unchanged")

	missing := e.Simulate(context.Background(), filepath.Join(t.TempDir(), "nope.pb"))
	assert.Empty(t, missing.Transit)
	assert.Equal(t, base.Network.TotalDemand, missing.Network.TotalDemand)
}
