package streetflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/exp/slog"

	"github.com/theoremus-urban-solutions/streetflow/config"
	"github.com/theoremus-urban-solutions/streetflow/evaluate"
	"github.com/theoremus-urban-solutions/streetflow/flow"
	"github.com/theoremus-urban-solutions/streetflow/network"
	"github.com/theoremus-urban-solutions/streetflow/signal"
	"github.com/theoremus-urban-solutions/streetflow/store"
	"github.com/theoremus-urban-solutions/streetflow/transit"
)

// ErrUnknownIntersection is returned when no current crossing has the requested id
var ErrUnknownIntersection = errors.New("intersection not found")

// Engine ties the store, the live signal registry and the simulator together.
// The store is the durable copy of streets and lights; the registry mirrors
// the stored lights and is what the simulator reads.
type Engine struct {
	cfg     config.AppConfig
	store   *store.Store
	signals *signal.Registry
	sim     *flow.Simulator
	transit *transit.Client
	log     *slog.Logger
}

// SimulationReport is the result of one network simulation pass
type SimulationReport struct {
	GeneratedAt time.Time            `json:"generated_at"`
	Streets     int                  `json:"streets"`
	Network     flow.NetworkResult   `json:"network"`
	Transit     []transit.StreetLoad `json:"transit,omitempty"`
}

// NewEngine loads the stored lights into a fresh registry
func NewEngine(cfg config.AppConfig, st *store.Store) (*Engine, error) {
	if err := cfg.Simulation.Validate(); err != nil {
		return nil, err
	}
	reg := signal.NewRegistry()
	if err := reg.Load(st.Signals("")); err != nil {
		return nil, fmt.Errorf("failed to load signals: %w", err)
	}
	return &Engine{
		cfg:     cfg,
		store:   st,
		signals: reg,
		sim:     flow.NewSimulator(cfg.Simulation),
		transit: transit.NewClient(time.Duration(cfg.Transit.TimeoutMS) * time.Millisecond),
		log:     slog.Default().With("component", "engine"),
	}, nil
}

// Store returns the backing record store
func (e *Engine) Store() *store.Store { return e.store }

// Signals returns the live signal registry
func (e *Engine) Signals() *signal.Registry { return e.signals }

// Intersections detects every crossing among the stored streets
func (e *Engine) Intersections() []network.Intersection {
	return network.FindIntersections(e.store.StreetValues())
}

// Intersection finds the first crossing with the given id
func (e *Engine) Intersection(id string) (network.Intersection, []network.Street, error) {
	streets := e.store.StreetValues()
	for _, ix := range network.FindIntersections(streets) {
		if ix.ID == id {
			return ix, streets, nil
		}
	}
	return network.Intersection{}, nil, fmt.Errorf("%s: %w", id, ErrUnknownIntersection)
}

// AddSignal validates and stores a light, then publishes it to the registry
func (e *Engine) AddSignal(intersectionID, streetID string, cycleTime, greenTime float64) (signal.Config, error) {
	c, err := signal.NewConfig(intersectionID, streetID, cycleTime, greenTime)
	if err != nil {
		return signal.Config{}, err
	}
	if err := e.store.AddSignal(c); err != nil {
		return signal.Config{}, err
	}
	if _, err := e.signals.Add(intersectionID, streetID, cycleTime, greenTime); err != nil {
		return signal.Config{}, err
	}
	e.log.Info("signal added", "intersection", intersectionID, "street", streetID, "cycle", cycleTime, "green", greenTime)
	return c, e.store.Save()
}

// RemoveSignal deletes a light; missing lights are ignored
func (e *Engine) RemoveSignal(intersectionID, streetID string) error {
	e.store.DeleteSignal(intersectionID, streetID)
	e.signals.Remove(intersectionID, streetID)
	return e.store.Save()
}

// PutStreet stores a street and returns its record
func (e *Engine) PutStreet(st network.Street) (store.StreetRecord, error) {
	rec, err := e.store.PutStreet(st)
	if err != nil {
		return store.StreetRecord{}, err
	}
	return rec, e.store.Save()
}

// DeleteStreet removes a street along with every light on it
func (e *Engine) DeleteStreet(id string) error {
	if err := e.store.DeleteStreet(id); err != nil {
		return err
	}
	if n := e.signals.RemoveStreet(id); n > 0 {
		e.log.Info("removed signals of deleted street", "street", id, "count", n)
	}
	return e.store.Save()
}

// Simulate runs the flow model over every stored street. When
// vehiclePositions is set, transit vehicles from that feed are added to
// street demand first; a feed that cannot be read is logged and skipped.
func (e *Engine) Simulate(ctx context.Context, vehiclePositions string) SimulationReport {
	streets := e.store.StreetValues()
	var loads []transit.StreetLoad
	if vehiclePositions != "" {
		streets, loads = e.overlayTransit(ctx, streets, vehiclePositions)
	}
	ixs := network.FindIntersections(streets)
	res := e.sim.SimulateNetwork(ixs, streets, e.signals)
	e.log.Debug("simulation finished", "streets", len(streets), "intersections", len(ixs), "avg_delay", res.AverageDelay)
	return SimulationReport{
		GeneratedAt: time.Now().UTC(),
		Streets:     len(streets),
		Network:     res,
		Transit:     loads,
	}
}

func (e *Engine) overlayTransit(ctx context.Context, streets []network.Street, url string) ([]network.Street, []transit.StreetLoad) {
	data, err := e.transit.Fetch(ctx, url)
	if err != nil {
		e.log.Warn("vehicle positions unavailable", "url", url, "error", err)
		return streets, nil
	}
	vehicles, err := transit.DecodeVehicles(data)
	if err != nil {
		e.log.Warn("vehicle positions unreadable", "url", url, "error", err)
		return streets, nil
	}
	out, loads := transit.Overlay(streets, vehicles, transit.Options{
		SnapMeters: e.cfg.Transit.SnapMeters,
		PCE:        e.cfg.Transit.PCE,
	})
	e.log.Info("transit overlay applied", "vehicles", len(vehicles), "streets", len(loads))
	return out, loads
}

// Evaluate compares the current lights at intersectionID with change applied
func (e *Engine) Evaluate(intersectionID string, change evaluate.Change) (evaluate.Comparison, error) {
	ix, streets, err := e.Intersection(intersectionID)
	if err != nil {
		return evaluate.Comparison{}, err
	}
	if !change.Remove {
		if change.CycleTime <= 0 {
			change.CycleTime = e.cfg.Defaults.CycleTime
		}
		if change.GreenTime <= 0 {
			change.GreenTime = e.cfg.Defaults.GreenTime
		}
	}
	return evaluate.EvaluateChange(e.sim, ix, streets, e.signals, change)
}
