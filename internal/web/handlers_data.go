package web

import (
	"encoding/json"
	"errors"
	"net/http"
)

// maxSQLBody caps the /execute-sql request body.
const maxSQLBody = 1 << 20

var errInvalidBody = errors.New("Invalid request body")

// handleAnalyze runs ?action= (and ?column=) against the current dataset.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	result, err := s.service.Analyze(r.Context(), q.Get("action"), q.Get("column"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, map[string]any{"result": result})
}

type sqlRequest struct {
	SQL string `json:"sql"`
}

// handleExecuteSQL runs {"sql": "..."} against the row store. SELECT
// statements answer with their rows, anything else with a success message.
func (s *Server) handleExecuteSQL(w http.ResponseWriter, r *http.Request) {
	var req sqlRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxSQLBody)).Decode(&req); err != nil {
		s.respondError(w, r, errInvalidBody)
		return
	}

	res, err := s.service.ExecuteSQL(r.Context(), req.SQL)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if res.IsQuery {
		writeJSON(w, res.Rows)
		return
	}
	writeJSON(w, map[string]string{"success": res.Message()})
}
