package streetflow

import (
	"net/http"
)

type healthResponse struct {
	Status  string `json:"status"`
	Streets int    `json:"streets"`
	Signals int    `json:"signals"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:  "ok",
		Streets: len(s.engine.Store().Streets()),
		Signals: len(s.engine.Signals().All()),
	})
}
