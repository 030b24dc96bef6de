package catalog

import "github.com/oralex/oralex/internal/grading"

type Subject struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Theme is a topic within a subject; questions and guidelines hang off it.
type Theme struct {
	ID        string `json:"id"`
	SubjectID string `json:"subject_id"`
	Name      string `json:"name"`
}

// Guideline is a named rubric for a theme. Its criteria are immutable once
// evaluations have begun scoring against them; editing rubrics mid-exam is
// an administrative action outside this service.
type Guideline struct {
	ID       string              `json:"id"`
	ThemeID  string              `json:"theme_id"`
	Name     string              `json:"name"`
	Criteria []grading.Criterion `json:"criteria"`
}

// Commission is a scheduled oral-exam session: a theme, a guideline, a
// date/location, and the roster of assigned students.
type Commission struct {
	ID          string   `json:"id"`
	ThemeID     string   `json:"theme_id"`
	GuidelineID string   `json:"guideline_id"`
	Name        string   `json:"name"`
	Location    string   `json:"location,omitempty"`
	StartsAt    int64    `json:"starts_at"`
	StudentIDs  []string `json:"student_ids"`
}
