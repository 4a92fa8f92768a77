package store

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/theoremus-urban-solutions/streetflow/network"
	"github.com/theoremus-urban-solutions/streetflow/signal"
)

var (
	// ErrNotFound is returned when a keyed record does not exist
	ErrNotFound = errors.New("record not found")
	// ErrExists is returned when a signal is added twice for the same key
	ErrExists = errors.New("record already exists")
)

// StreetRecord is a persisted street with its bookkeeping fields
type StreetRecord struct {
	Street    network.Street `json:"street"`
	LengthKM  float64        `json:"length_km"`
	CreatedAt time.Time      `json:"created_at"`
}

// snapshot is the gob-encoded file layout
type snapshot struct {
	Streets map[string]StreetRecord
	Signals map[string]signal.Config // "intersection_id|street_id" -> config
}

// Store is an in-memory keyed store of streets and lights, optionally
// persisted to a gob file. Safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	saveMu  sync.Mutex
	path    string
	streets map[string]StreetRecord
	signals map[string]signal.Config
}

// New creates an empty store that is not backed by a file
func New() *Store {
	return &Store{
		streets: map[string]StreetRecord{},
		signals: map[string]signal.Config{},
	}
}

// Open loads the store at path. A missing file yields an empty store that
// will be written on the next Save.
func Open(path string) (*Store, error) {
	s := New()
	s.path = path
	if path == "" {
		return s, nil
	}
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	defer func() { _ = f.Close() }()
	if err := s.readFrom(f); err != nil {
		return nil, err
	}
	return s, nil
}

// Save writes the store to its file. Stores without a path are not persisted.
// Concurrent saves are serialized so each one renames a complete file.
func (s *Store) Save() error {
	if s.path == "" {
		return nil
	}
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	var buf bytes.Buffer
	if err := s.writeTo(&buf); err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write store: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to write store: %w", err)
	}
	return nil
}

func (s *Store) writeTo(w io.Writer) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := snapshot{Streets: s.streets, Signals: s.signals}
	if err := gob.NewEncoder(w).Encode(snap); err != nil {
		return fmt.Errorf("failed to encode store: %w", err)
	}
	return nil
}

func (s *Store) readFrom(r io.Reader) error {
	var snap snapshot
	if err := gob.NewDecoder(r).Decode(&snap); err != nil {
		return fmt.Errorf("failed to decode store: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if snap.Streets != nil {
		s.streets = snap.Streets
	}
	if snap.Signals != nil {
		s.signals = snap.Signals
	}
	return nil
}

// PutStreet validates and stores st, assigning a new identifier when st.ID is empty
func (s *Store) PutStreet(st network.Street) (StreetRecord, error) {
	if st.ID == "" {
		st.ID = uuid.NewString()
	}
	if err := st.Validate(); err != nil {
		return StreetRecord{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := StreetRecord{Street: st, LengthKM: st.LengthKM(), CreatedAt: time.Now().UTC()}
	if prev, ok := s.streets[st.ID]; ok {
		rec.CreatedAt = prev.CreatedAt
	}
	s.streets[st.ID] = rec
	return rec, nil
}

// GetStreet returns the street stored under id
func (s *Store) GetStreet(id string) (StreetRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.streets[id]
	if !ok {
		return StreetRecord{}, fmt.Errorf("street %s: %w", id, ErrNotFound)
	}
	return rec, nil
}

// DeleteStreet removes the street and every light attached to it
func (s *Store) DeleteStreet(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.streets[id]; !ok {
		return fmt.Errorf("street %s: %w", id, ErrNotFound)
	}
	delete(s.streets, id)
	for k, c := range s.signals {
		if c.StreetID == id {
			delete(s.signals, k)
		}
	}
	return nil
}

// Streets lists every street, newest first
func (s *Store) Streets() []StreetRecord {
	out := s.records()
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].Street.ID < out[j].Street.ID
	})
	return out
}

// StreetValues lists the bare street values in insertion order, oldest first
func (s *Store) StreetValues() []network.Street {
	recs := s.records()
	sort.Slice(recs, func(i, j int) bool {
		if !recs[i].CreatedAt.Equal(recs[j].CreatedAt) {
			return recs[i].CreatedAt.Before(recs[j].CreatedAt)
		}
		return recs[i].Street.ID < recs[j].Street.ID
	})
	out := make([]network.Street, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.Street)
	}
	return out
}

func (s *Store) records() []StreetRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]StreetRecord, 0, len(s.streets))
	for _, rec := range s.streets {
		out = append(out, rec)
	}
	return out
}

func signalKey(intersectionID, streetID string) string {
	return intersectionID + "|" + streetID
}

// AddSignal stores a new light. The street must exist and the key must be free.
func (s *Store) AddSignal(c signal.Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.streets[c.StreetID]; !ok {
		return fmt.Errorf("street %s: %w", c.StreetID, ErrNotFound)
	}
	k := signalKey(c.IntersectionID, c.StreetID)
	if _, ok := s.signals[k]; ok {
		return fmt.Errorf("signal %s/%s: %w", c.IntersectionID, c.StreetID, ErrExists)
	}
	s.signals[k] = c
	return nil
}

// DeleteSignal removes a light; missing lights are ignored
func (s *Store) DeleteSignal(intersectionID, streetID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.signals, signalKey(intersectionID, streetID))
}

// Signals lists stored lights, optionally restricted to one intersection
func (s *Store) Signals(intersectionID string) []signal.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []signal.Config{}
	for _, c := range s.signals {
		if intersectionID != "" && c.IntersectionID != intersectionID {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		return signalKey(out[i].IntersectionID, out[i].StreetID) < signalKey(out[j].IntersectionID, out[j].StreetID)
	})
	return out
}
