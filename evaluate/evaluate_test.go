package evaluate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theoremus-urban-solutions/streetflow/flow"
	"github.com/theoremus-urban-solutions/streetflow/geo"
	"github.com/theoremus-urban-solutions/streetflow/network"
	"github.com/theoremus-urban-solutions/streetflow/signal"
)

func fixture() (network.Intersection, []network.Street) {
	streets := []network.Street{
		{
			ID: "1", Name: "Avenida Paulista",
			Points: []geo.Point{{Lat: -23.561, Lon: -46.660}, {Lat: -23.561, Lon: -46.650}},
			Lanes:  2, Demand: 2000, Speed: 50,
		},
		{
			ID: "2", Name: "Rua Augusta",
			Points: []geo.Point{{Lat: -23.565, Lon: -46.655}, {Lat: -23.557, Lon: -46.655}},
			Lanes:  2, Demand: 800, Speed: 40,
		},
	}
	ixs := network.FindIntersections(streets)
	return ixs[0], streets
}

func TestEvaluate_IdenticalConfigurations(t *testing.T) {
	sim := flow.NewSimulator(flow.DefaultParams())
	ix, streets := fixture()
	reg := signal.NewRegistry()
	_, err := reg.Add(ix.ID, "1", 90, 45)
	require.NoError(t, err)

	snap := reg.Snapshot()
	c := Evaluate(sim, ix, streets, snap, snap)
	assert.Equal(t, 0.0, c.DelayImprovement)
	assert.Equal(t, 0.0, c.ThroughputImprovement)
	assert.Equal(t, NotRecommended, c.Recommendation)
	assert.Equal(t, c.LOSBefore, c.LOSAfter)
}

func TestEvaluate_LongerGreenRelievesSaturatedStreet(t *testing.T) {
	sim := flow.NewSimulator(flow.DefaultParams())
	ix, streets := fixture()
	reg := signal.NewRegistry()
	_, err := reg.Add(ix.ID, "1", 90, 45)
	require.NoError(t, err)

	before := reg.Snapshot()
	after, err := before.With(ix.ID, "1", 90, 80)
	require.NoError(t, err)

	c := Evaluate(sim, ix, streets, before, after)
	// 1620 veh/h capacity at 45s green grows past the 2000 veh/h demand
	assert.InDelta(t, 1620+800, c.ThroughputBefore, 1e-6)
	assert.InDelta(t, 2000+800, c.ThroughputAfter, 1e-6)
	assert.Greater(t, c.ThroughputImprovement, 15.0)
	assert.Greater(t, c.DelayImprovement, 0.0)
	assert.Equal(t, HighlyRecommended, c.Recommendation)
	assert.Equal(t, c.Before.LOS, c.LOSBefore)
	assert.Equal(t, c.After.LOS, c.LOSAfter)
}

func TestEvaluate_AddingLightToFreeFlowIsNotRecommended(t *testing.T) {
	sim := flow.NewSimulator(flow.DefaultParams())
	ix, streets := fixture()
	reg := signal.NewRegistry()

	c, err := EvaluateChange(sim, ix, streets, reg, Change{StreetID: "2", CycleTime: 90, GreenTime: 30})
	require.NoError(t, err)
	assert.Less(t, c.DelayImprovement, 0.0)
	assert.Equal(t, NotRecommended, c.Recommendation)
	assert.False(t, reg.Has(ix.ID, "2"), "registry is never modified")
}

func TestEvaluateChange_Remove(t *testing.T) {
	sim := flow.NewSimulator(flow.DefaultParams())
	ix, streets := fixture()
	reg := signal.NewRegistry()
	_, err := reg.Add(ix.ID, "2", 90, 30)
	require.NoError(t, err)

	c, err := EvaluateChange(sim, ix, streets, reg, Change{StreetID: "2", Remove: true})
	require.NoError(t, err)
	s, ok := c.After.Street("2")
	require.True(t, ok)
	assert.False(t, s.Signalized)
	assert.Greater(t, c.DelayImprovement, 20.0)
	assert.Equal(t, HighlyRecommended, c.Recommendation)
	assert.True(t, reg.Has(ix.ID, "2"))
}

func TestEvaluateChange_Errors(t *testing.T) {
	sim := flow.NewSimulator(flow.DefaultParams())
	ix, streets := fixture()
	reg := signal.NewRegistry()

	_, err := EvaluateChange(sim, ix, streets, reg, Change{StreetID: "99", CycleTime: 90, GreenTime: 30})
	assert.Error(t, err)

	_, err = EvaluateChange(sim, ix, streets, reg, Change{StreetID: "1", CycleTime: 60, GreenTime: 60})
	var ve *signal.ValidationError
	assert.True(t, errors.As(err, &ve))
}

func TestEvaluate_ZeroBaselineIsNeutral(t *testing.T) {
	sim := flow.NewSimulator(flow.DefaultParams())
	ix, _ := fixture()
	c := Evaluate(sim, ix, nil, signal.NewRegistry(), signal.NewRegistry())
	assert.Equal(t, 0.0, c.DelayImprovement)
	assert.Equal(t, 0.0, c.ThroughputImprovement)
	assert.Equal(t, NotRecommended, c.Recommendation)
}

func TestRecommend(t *testing.T) {
	tests := []struct {
		name              string
		delay, throughput float64
		expected          Recommendation
	}{
		{name: "big delay cut", delay: 20.1, throughput: 0, expected: HighlyRecommended},
		{name: "big throughput gain", delay: -50, throughput: 15.1, expected: HighlyRecommended},
		{name: "delay at 20 is not highly", delay: 20, throughput: 0, expected: Recommended},
		{name: "moderate throughput", delay: 0, throughput: 8.5, expected: Recommended},
		{name: "throughput at 8 only", delay: 0, throughput: 8, expected: NotRecommended},
		{name: "small delay cut", delay: 5, throughput: 0, expected: Marginal},
		{name: "delay at 10 is marginal", delay: 10, throughput: 0, expected: Marginal},
		{name: "worse", delay: -1, throughput: -1, expected: NotRecommended},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Recommend(tt.delay, tt.throughput))
		})
	}
}
