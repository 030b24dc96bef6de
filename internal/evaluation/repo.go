package evaluation

import (
	"context"

	"github.com/oralex/oralex/internal/grading"
)

// RubricProvider supplies the criteria of a guideline. It must return the
// same criteria for the lifetime of an in-progress evaluation.
type RubricProvider interface {
	CriteriaForGuideline(ctx context.Context, guidelineID string) ([]grading.Criterion, error)
}

// QuestionBank supplies a snapshot of the question pool.
type QuestionBank interface {
	Questions(ctx context.Context) ([]Question, error)
}

// ProgressUpdate is the persisted payload of one save-progress call. Grade
// is the recomputed preview for the current score set, already rounded to
// two decimals; it is never an independently editable field.
type ProgressUpdate struct {
	Scores        []grading.ScoreEntry
	Observation   string
	QuestionAsked *string
	Grade         *float64
}

// FinalizeFunc decides whether the evaluation may complete, given its most
// recently persisted state, and returns the final grade. The store calls it
// while holding whatever serializes writers for this evaluation, so the
// guard never runs against a stale snapshot.
type FinalizeFunc func(cur Evaluation) (grade float64, err error)

// Store persists evaluations. Save-progress and finalize for the same id
// must be serialized by the implementation.
type Store interface {
	Create(ctx context.Context, userID, commissionID, guidelineID string) (Evaluation, error)
	Get(ctx context.Context, id string) (Evaluation, error)
	// FindByStudent returns the evaluation for a (student, commission)
	// pair regardless of status, or ErrNotFound.
	FindByStudent(ctx context.Context, userID, commissionID string) (Evaluation, error)
	SaveProgress(ctx context.Context, id string, upd ProgressUpdate) (Evaluation, error)
	// Finalize completes a pending evaluation. Finalizing an already
	// completed evaluation returns the stored record and no error.
	Finalize(ctx context.Context, id string, decide FinalizeFunc) (Evaluation, error)
	ListByCommission(ctx context.Context, commissionID string) ([]Evaluation, error)
}
