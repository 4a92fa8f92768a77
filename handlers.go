package streetflow

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"

	"github.com/theoremus-urban-solutions/streetflow/config"
	"github.com/theoremus-urban-solutions/streetflow/evaluate"
	"github.com/theoremus-urban-solutions/streetflow/geo"
	"github.com/theoremus-urban-solutions/streetflow/importer"
	"github.com/theoremus-urban-solutions/streetflow/network"
	"github.com/theoremus-urban-solutions/streetflow/signal"
	"github.com/theoremus-urban-solutions/streetflow/store"
)

type streetRequest struct {
	ID     string      `json:"id"`
	Name   string      `json:"name"`
	Points []geo.Point `json:"coordinates"`
	Lanes  *int        `json:"lanes"`
	Demand *float64    `json:"vehicles_per_hour"`
	Speed  *float64    `json:"average_speed"`
}

type streetView struct {
	network.Street
	LengthKM        float64 `json:"length_km"`
	HasTrafficLight bool    `json:"has_traffic_light"`
}

type streetCreated struct {
	ID       string  `json:"id"`
	Message  string  `json:"message"`
	LengthKM float64 `json:"length_km"`
}

type signalRequest struct {
	IntersectionID string   `json:"intersection_id"`
	StreetID       string   `json:"street_id"`
	CycleTime      *float64 `json:"cycle_time"`
	GreenTime      *float64 `json:"green_time"`
}

type signalView struct {
	signal.Config
	StreetName string `json:"street_name"`
}

type evaluateRequest struct {
	IntersectionID string `json:"intersection_id"`
	evaluate.Change
}

type searchRequest struct {
	StreetName string `json:"street_name"`
	City       string `json:"city"`
	Limit      int    `json:"limit"`
}

type searchResponse struct {
	Results []importer.Place `json:"results"`
	Count   int              `json:"count"`
}

type importRequest struct {
	StreetName string  `json:"street_name"`
	City       string  `json:"city"`
	Lanes      int     `json:"lanes"`
	Demand     float64 `json:"vehicles_per_hour"`
	Speed      float64 `json:"average_speed"`
}

type importResponse struct {
	Success       bool                   `json:"success"`
	Message       string                 `json:"message"`
	StreetID      string                 `json:"street_id"`
	Street        network.Street         `json:"street"`
	LengthKM      float64                `json:"length_km"`
	Place         importer.Place         `json:"place"`
	Intersections []network.Intersection `json:"intersections"`
}

func (s *Server) handleStreets(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		lit := lo.SliceToMap(s.engine.Signals().All(), func(c signal.Config) (string, bool) {
			return c.StreetID, true
		})
		out := lo.Map(s.engine.Store().Streets(), func(rec store.StreetRecord, _ int) streetView {
			return streetView{Street: rec.Street, LengthKM: rec.LengthKM, HasTrafficLight: lit[rec.Street.ID]}
		})
		writeJSON(w, http.StatusOK, out)

	case http.MethodPost:
		var req streetRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		d := s.cfg.Defaults
		rec, err := s.engine.PutStreet(network.Street{
			ID:     req.ID,
			Name:   req.Name,
			Points: req.Points,
			Lanes:  lo.FromPtrOr(req.Lanes, d.Lanes),
			Demand: lo.FromPtrOr(req.Demand, d.Demand),
			Speed:  lo.FromPtrOr(req.Speed, d.Speed),
		})
		if err != nil {
			s.writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, streetCreated{
			ID:       rec.Street.ID,
			Message:  "street created",
			LengthKM: rec.LengthKM,
		})

	case http.MethodDelete:
		id := r.URL.Query().Get("id")
		if id == "" {
			writeError(w, http.StatusBadRequest, "id is required")
			return
		}
		if err := s.engine.DeleteStreet(id); err != nil {
			s.writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, messageResponse{Success: true, Message: "street removed"})

	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPost, http.MethodDelete)
	}
}

func (s *Server) handleSignals(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		names := lo.SliceToMap(s.engine.Store().StreetValues(), func(st network.Street) (string, string) {
			return st.ID, st.DisplayName()
		})
		cfgs := s.engine.Store().Signals(r.URL.Query().Get("intersection_id"))
		out := lo.Map(cfgs, func(c signal.Config, _ int) signalView {
			return signalView{Config: c, StreetName: names[c.StreetID]}
		})
		writeJSON(w, http.StatusOK, out)

	case http.MethodPost:
		var req signalRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if req.IntersectionID == "" || req.StreetID == "" {
			writeError(w, http.StatusBadRequest, "intersection_id and street_id are required")
			return
		}
		c, err := s.engine.AddSignal(req.IntersectionID, req.StreetID,
			lo.FromPtrOr(req.CycleTime, s.cfg.Defaults.CycleTime),
			lo.FromPtrOr(req.GreenTime, s.cfg.Defaults.GreenTime))
		if err != nil {
			s.writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, c)

	case http.MethodDelete:
		q := r.URL.Query()
		ixID, streetID := q.Get("intersection_id"), q.Get("street_id")
		if ixID == "" || streetID == "" {
			writeError(w, http.StatusBadRequest, "intersection_id and street_id are required")
			return
		}
		if err := s.engine.RemoveSignal(ixID, streetID); err != nil {
			s.writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, messageResponse{Success: true, Message: "signal removed"})

	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPost, http.MethodDelete)
	}
}

func (s *Server) handleIntersections(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	if streetID := r.URL.Query().Get("street_id"); streetID != "" {
		writeJSON(w, http.StatusOK, network.FindIntersectionsFor(s.engine.Store().StreetValues(), streetID))
		return
	}
	writeJSON(w, http.StatusOK, s.engine.Intersections())
}

func (s *Server) handleIntersectionsGeoJSON(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	streets := s.engine.Store().StreetValues()
	fc := network.FeatureCollection(streets, network.FindIntersections(streets))
	buf, err := fc.MarshalJSON()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	_, _ = w.Write(buf)
}

func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodGet, http.MethodPost)
		return
	}
	writeJSON(w, http.StatusOK, s.engine.Simulate(r.Context(), s.cfg.Transit.VehiclePositionsURL))
}

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	var req evaluateRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.IntersectionID == "" || req.StreetID == "" {
		writeError(w, http.StatusBadRequest, "intersection_id and street_id are required")
		return
	}
	cmp, err := s.engine.Evaluate(req.IntersectionID, req.Change)
	if errors.Is(err, ErrUnknownIntersection) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, cmp)
}

func (s *Server) handleSearchStreet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	var req searchRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.StreetName) == "" {
		writeError(w, http.StatusBadRequest, "street_name is required")
		return
	}
	places, err := s.searcher.SearchStreet(r.Context(), req.StreetName, localityFor(req.City), req.Limit)
	if err != nil {
		s.log.Warn("street search failed", "street", req.StreetName, "error", err)
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	if places == nil {
		places = []importer.Place{}
	}
	writeJSON(w, http.StatusOK, searchResponse{Results: places, Count: len(places)})
}

func (s *Server) handleImportStreet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	var req importRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.StreetName) == "" {
		writeError(w, http.StatusBadRequest, "street_name is required")
		return
	}
	opts := importer.OptionsFrom(importer.Options{
		Lanes:  req.Lanes,
		Demand: req.Demand,
		Speed:  req.Speed,
	}, s.cfg.Defaults)

	st, place, err := s.importer.Import(r.Context(), req.StreetName, localityFor(req.City), opts)
	if errors.Is(err, importer.ErrNoMatch) {
		writeError(w, http.StatusNotFound, fmt.Sprintf("street %q not found", req.StreetName))
		return
	}
	if err != nil {
		s.log.Warn("street import failed", "street", req.StreetName, "error", err)
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	rec, err := s.engine.PutStreet(st)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	s.log.Info("street imported", "street", rec.Street.ID, "name", rec.Street.Name)
	writeJSON(w, http.StatusCreated, importResponse{
		Success:       true,
		Message:       fmt.Sprintf("imported %s", place.DisplayName),
		StreetID:      rec.Street.ID,
		Street:        rec.Street,
		LengthKM:      rec.LengthKM,
		Place:         place,
		Intersections: network.FindIntersectionsFor(s.engine.Store().StreetValues(), rec.Street.ID),
	})
}

// writeStoreError maps engine and store failures onto status codes
func (s *Server) writeStoreError(w http.ResponseWriter, err error) {
	var verr *signal.ValidationError
	var fieldErrs validator.ValidationErrors
	switch {
	case errors.As(err, &verr), errors.As(err, &fieldErrs):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrExists):
		writeError(w, http.StatusConflict, err.Error())
	default:
		s.log.Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// localityFor resolves a configured locality by name or city. An unknown
// city is searched as given.
func localityFor(city string) config.Locality {
	loc := config.SelectLocality(city)
	if city != "" && loc.Name != city && loc.City != city {
		return config.Locality{Name: city, City: city}
	}
	return loc
}
