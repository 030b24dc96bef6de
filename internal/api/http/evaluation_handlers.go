package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/oralex/oralex/internal/catalog"
	"github.com/oralex/oralex/internal/evaluation"
	"github.com/oralex/oralex/internal/grading"
)

type startEvaluationReq struct {
	UserID       string `json:"user_id"`
	CommissionID string `json:"commission_id"`
	GuidelineID  string `json:"guideline_id"`
}

type startEvaluationResp struct {
	Evaluation evaluation.Evaluation `json:"evaluation"`
	Criteria   []grading.Criterion   `json:"criteria"`
}

// POST /evaluations
func StartEvaluationHandler(svc *evaluation.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req startEvaluationReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if req.UserID == "" || req.CommissionID == "" || req.GuidelineID == "" {
			http.Error(w, "user_id, commission_id and guideline_id required", http.StatusBadRequest)
			return
		}
		ev, crits, err := svc.StartOrResume(r.Context(), req.UserID, req.CommissionID, req.GuidelineID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, startEvaluationResp{Evaluation: ev, Criteria: crits})
	}
}

// GET /evaluations/{evaluationID}
func GetEvaluationHandler(svc *evaluation.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "evaluationID")
		ev, err := svc.Get(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, ev)
	}
}

type saveProgressReq struct {
	Scores        map[string]string `json:"scores"`
	Observation   string            `json:"observation"`
	QuestionAsked *string           `json:"question_asked"`
}

// PUT /evaluations/{evaluationID}/progress
func SaveProgressHandler(svc *evaluation.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "evaluationID")
		var req saveProgressReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		ev, err := svc.SaveProgress(r.Context(), id, evaluation.ProgressInput{
			Scores:        req.Scores,
			Observation:   req.Observation,
			QuestionAsked: req.QuestionAsked,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, ev)
	}
}

// POST /evaluations/{evaluationID}/finalize
func FinalizeEvaluationHandler(svc *evaluation.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "evaluationID")
		ev, err := svc.Finalize(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, ev)
	}
}

type drawQuestionReq struct {
	ThemeID string `json:"theme_id"`
}

// POST /commissions/{commissionID}/draw-question
// The theme defaults to the commission's own theme when the body omits it.
func DrawQuestionHandler(svc *evaluation.Service, cat catalog.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		commissionID := chi.URLParam(r, "commissionID")
		com, err := cat.Commission(r.Context(), commissionID)
		if err != nil {
			writeError(w, err)
			return
		}
		var req drawQuestionReq
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&req) // empty body allowed
		}
		themeID := strings.TrimSpace(req.ThemeID)
		if themeID == "" {
			themeID = com.ThemeID
		}
		q, err := svc.DrawQuestion(r.Context(), themeID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, q)
	}
}

// GET /commissions/{commissionID}/evaluations
func ListCommissionEvaluationsHandler(svc *evaluation.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.Results(r.Context(), chi.URLParam(r, "commissionID"))
		if err != nil {
			writeError(w, err)
			return
		}
		if list == nil {
			list = []evaluation.Evaluation{}
		}
		writeJSON(w, list)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps engine errors onto status codes. Finalize rejections are
// 422 with the full reason list so the frontend can show every unmet rule.
func writeError(w http.ResponseWriter, err error) {
	var rej *evaluation.RejectedError
	if errors.As(err, &rej) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error":   "finalize rejected",
			"reasons": rej.Reasons,
		})
		return
	}
	var val *evaluation.ValidationError
	if errors.As(err, &val) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error":    "invalid input",
			"problems": val.Problems,
		})
		return
	}
	switch {
	case errors.Is(err, evaluation.ErrNotFound),
		errors.Is(err, evaluation.ErrNoQuestionForTheme),
		errors.Is(err, catalog.ErrGuidelineNotFound),
		errors.Is(err, catalog.ErrCommissionNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, evaluation.ErrAlreadyCompleted):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
