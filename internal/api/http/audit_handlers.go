package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/oralex/oralex/internal/audit"
)

// GET /evaluations/{evaluationID}/events
// The grading trail of one evaluation, oldest first.
func ListEvaluationEventsHandler(trail *audit.Log) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		events, err := trail.ByKey(r.Context(), chi.URLParam(r, "evaluationID"))
		if err != nil {
			writeError(w, err)
			return
		}
		if events == nil {
			events = []audit.Event{}
		}
		writeJSON(w, events)
	}
}
