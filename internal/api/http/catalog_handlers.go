package http

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/oralex/oralex/internal/catalog"
	"github.com/oralex/oralex/internal/evaluation"
)

// GET /subjects
func ListSubjectsHandler(cat catalog.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		subjects, err := cat.Subjects(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		if subjects == nil {
			subjects = []catalog.Subject{}
		}
		writeJSON(w, subjects)
	}
}

// GET /subjects/{subjectID}/themes
func ListThemesHandler(cat catalog.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		themes, err := cat.Themes(r.Context(), chi.URLParam(r, "subjectID"))
		if err != nil {
			writeError(w, err)
			return
		}
		if themes == nil {
			themes = []catalog.Theme{}
		}
		writeJSON(w, themes)
	}
}

// GET /questions?theme_id=...
func ListQuestionsHandler(cat catalog.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		themeID := strings.TrimSpace(r.URL.Query().Get("theme_id"))
		var (
			questions []evaluation.Question
			err       error
		)
		if themeID == "" {
			questions, err = cat.Questions(r.Context())
		} else {
			questions, err = cat.QuestionsByTheme(r.Context(), themeID)
		}
		if err != nil {
			writeError(w, err)
			return
		}
		if questions == nil {
			questions = []evaluation.Question{}
		}
		writeJSON(w, questions)
	}
}

// GET /guidelines/{guidelineID}
func GetGuidelineHandler(cat catalog.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		g, err := cat.Guideline(r.Context(), chi.URLParam(r, "guidelineID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, g)
	}
}

// GET /guidelines/{guidelineID}/criteria
func GetGuidelineCriteriaHandler(cat catalog.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		crits, err := cat.CriteriaForGuideline(r.Context(), chi.URLParam(r, "guidelineID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, crits)
	}
}

// GET /commissions
func ListCommissionsHandler(cat catalog.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		coms, err := cat.Commissions(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		if coms == nil {
			coms = []catalog.Commission{}
		}
		writeJSON(w, coms)
	}
}

// GET /commissions/{commissionID}
func GetCommissionHandler(cat catalog.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := cat.Commission(r.Context(), chi.URLParam(r, "commissionID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, c)
	}
}
