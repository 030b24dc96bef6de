package evaluation

import "github.com/oralex/oralex/internal/grading"

// Status is the lifecycle state of an Evaluation. It is stored explicitly
// and never inferred from the presence of a grade or question.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)

// Evaluation is one student being examined once in one commission, against
// one guideline. While pending it is mutated by repeated save-progress
// calls; completion is a one-way transition after which the record is
// read-only history.
type Evaluation struct {
	ID            string               `json:"id"`
	UserID        string               `json:"user_id"`
	CommissionID  string               `json:"commission_id"`
	GuidelineID   string               `json:"guideline_id"`
	Status        Status               `json:"status"`
	QuestionAsked *string              `json:"question_asked,omitempty"`
	Observation   string               `json:"observation,omitempty"`
	Grade         *float64             `json:"grade,omitempty"`
	Scores        []grading.ScoreEntry `json:"scores"`
	CreatedAt     int64                `json:"created_at"`
	CompletedAt   *int64               `json:"completed_at,omitempty"`
}

// Completed reports whether the evaluation has been finalized.
func (e Evaluation) Completed() bool { return e.Status == StatusCompleted }

// Question is one entry of the question bank, as seen by this engine. The
// bank is a read-only snapshot: drawing never mutates it.
type Question struct {
	ID      string `json:"id"`
	ThemeID string `json:"theme_id"`
	Text    string `json:"text"`
}
