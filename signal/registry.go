package signal

import (
	"sort"
	"sync"
)

// Source is the read side of the light configuration, keyed by intersection
type Source interface {
	ForIntersection(intersectionID string) map[string]Config
}

// Registry holds the light configuration for the whole network.
// Writes are serialized; concurrent reads are allowed between writes.
type Registry struct {
	mu     sync.RWMutex
	lights map[string]map[string]Config // intersection_id -> street_id -> config
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{lights: map[string]map[string]Config{}}
}

// Add inserts or overwrites the light for streetID at intersectionID
func (r *Registry) Add(intersectionID, streetID string, cycleTime, greenTime float64) (Config, error) {
	c, err := NewConfig(intersectionID, streetID, cycleTime, greenTime)
	if err != nil {
		return Config{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	byStreet, ok := r.lights[intersectionID]
	if !ok {
		byStreet = map[string]Config{}
		r.lights[intersectionID] = byStreet
	}
	byStreet[streetID] = c
	return c, nil
}

// Remove deletes the light if present
func (r *Registry) Remove(intersectionID, streetID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	byStreet, ok := r.lights[intersectionID]
	if !ok {
		return
	}
	delete(byStreet, streetID)
	if len(byStreet) == 0 {
		delete(r.lights, intersectionID)
	}
}

// RemoveStreet deletes every light that belongs to streetID
func (r *Registry) RemoveStreet(streetID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for ixID, byStreet := range r.lights {
		if _, ok := byStreet[streetID]; ok {
			delete(byStreet, streetID)
			n++
		}
		if len(byStreet) == 0 {
			delete(r.lights, ixID)
		}
	}
	return n
}

// ForIntersection returns a copy of the lights at intersectionID.
// Unknown intersections yield an empty map.
func (r *Registry) ForIntersection(intersectionID string) map[string]Config {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return copyStreets(r.lights[intersectionID])
}

// Has reports whether streetID is signal-controlled at intersectionID
func (r *Registry) Has(intersectionID, streetID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.lights[intersectionID][streetID]
	return ok
}

// Get returns the light for streetID at intersectionID
func (r *Registry) Get(intersectionID, streetID string) (Config, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.lights[intersectionID][streetID]
	return c, ok
}

// All lists every configured light ordered by intersection then street
func (r *Registry) All() []Config {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return flatten(r.lights)
}

// Snapshot freezes the current configuration into an immutable Table
func (r *Registry) Snapshot() Table {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return Table{lights: copyAll(r.lights)}
}

// Load replaces the registry contents with configs, re-validating each one
func (r *Registry) Load(configs []Config) error {
	next := map[string]map[string]Config{}
	for _, in := range configs {
		c, err := NewConfig(in.IntersectionID, in.StreetID, in.CycleTime, in.GreenTime)
		if err != nil {
			return err
		}
		if next[c.IntersectionID] == nil {
			next[c.IntersectionID] = map[string]Config{}
		}
		next[c.IntersectionID][c.StreetID] = c
	}
	r.mu.Lock()
	r.lights = next
	r.mu.Unlock()
	return nil
}

// Table is a read-only copy of a light configuration. It is used to describe
// a "before" or "after" state without touching the live registry.
type Table struct {
	lights map[string]map[string]Config
}

// ForIntersection returns a copy of the lights at intersectionID
func (t Table) ForIntersection(intersectionID string) map[string]Config {
	return copyStreets(t.lights[intersectionID])
}

// Has reports whether streetID is signal-controlled at intersectionID
func (t Table) Has(intersectionID, streetID string) bool {
	_, ok := t.lights[intersectionID][streetID]
	return ok
}

// With returns a new table where streetID at intersectionID uses the given timing
func (t Table) With(intersectionID, streetID string, cycleTime, greenTime float64) (Table, error) {
	c, err := NewConfig(intersectionID, streetID, cycleTime, greenTime)
	if err != nil {
		return Table{}, err
	}
	next := copyAll(t.lights)
	if next[intersectionID] == nil {
		next[intersectionID] = map[string]Config{}
	}
	next[intersectionID][streetID] = c
	return Table{lights: next}, nil
}

// Without returns a new table where streetID at intersectionID is uncontrolled
func (t Table) Without(intersectionID, streetID string) Table {
	next := copyAll(t.lights)
	if byStreet, ok := next[intersectionID]; ok {
		delete(byStreet, streetID)
		if len(byStreet) == 0 {
			delete(next, intersectionID)
		}
	}
	return Table{lights: next}
}

// All lists every light in the table ordered by intersection then street
func (t Table) All() []Config {
	return flatten(t.lights)
}

func copyStreets(in map[string]Config) map[string]Config {
	out := make(map[string]Config, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func copyAll(in map[string]map[string]Config) map[string]map[string]Config {
	out := make(map[string]map[string]Config, len(in))
	for k, v := range in {
		out[k] = copyStreets(v)
	}
	return out
}

func flatten(in map[string]map[string]Config) []Config {
	out := []Config{}
	for _, byStreet := range in {
		for _, c := range byStreet {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].IntersectionID != out[j].IntersectionID {
			return out[i].IntersectionID < out[j].IntersectionID
		}
		return out[i].StreetID < out[j].StreetID
	})
	return out
}
