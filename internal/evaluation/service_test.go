package evaluation_test

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oralex/oralex/internal/evaluation"
	"github.com/oralex/oralex/internal/grading"
)

/* ---------- in-memory fakes satisfying RubricProvider & QuestionBank ---------- */

type fakeRubrics struct {
	criteria map[string][]grading.Criterion
}

func (f *fakeRubrics) CriteriaForGuideline(_ context.Context, guidelineID string) ([]grading.Criterion, error) {
	c, ok := f.criteria[guidelineID]
	if !ok {
		return nil, fmt.Errorf("guideline %q not found", guidelineID)
	}
	return c, nil
}

type fakeBank struct {
	questions []evaluation.Question
}

func (f *fakeBank) Questions(_ context.Context) ([]evaluation.Question, error) {
	return f.questions, nil
}

func newTestService(t *testing.T) *evaluation.Service {
	t.Helper()
	rubrics := &fakeRubrics{criteria: map[string][]grading.Criterion{
		"g1": {
			{ID: "c1", Description: "Dominio conceptual", MaxScore: 10},
			{ID: "c2", Description: "Argumentación", MaxScore: 20},
		},
	}}
	bank := &fakeBank{questions: []evaluation.Question{
		{ID: "q1", ThemeID: "t1", Text: "Elementos del acto jurídico"},
		{ID: "q2", ThemeID: "t1", Text: "Vicios del consentimiento"},
		{ID: "q3", ThemeID: "t2", Text: "Responsabilidad extracontractual"},
	}}
	svc := evaluation.NewService(evaluation.NewInMemoryStore(), rubrics, bank,
		evaluation.WithRand(rand.New(rand.NewSource(1))))
	return svc
}

func TestStartOrResume(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	ev, crits, err := svc.StartOrResume(ctx, "student-1", "com-1", "g1")
	require.NoError(t, err)
	assert.Equal(t, evaluation.StatusPending, ev.Status)
	assert.Len(t, crits, 2)
	assert.Nil(t, ev.Grade)
	assert.Nil(t, ev.QuestionAsked)

	// selecting the same student again resumes the same record
	again, _, err := svc.StartOrResume(ctx, "student-1", "com-1", "g1")
	require.NoError(t, err)
	assert.Equal(t, ev.ID, again.ID)

	// a different student gets a fresh record
	other, _, err := svc.StartOrResume(ctx, "student-2", "com-1", "g1")
	require.NoError(t, err)
	assert.NotEqual(t, ev.ID, other.ID)
}

func TestStartOrResumeUnknownGuideline(t *testing.T) {
	svc := newTestService(t)
	_, _, err := svc.StartOrResume(context.Background(), "student-1", "com-1", "missing")
	assert.Error(t, err)
}

func TestSaveProgressScenario(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	ev, _, err := svc.StartOrResume(ctx, "student-1", "com-1", "g1")
	require.NoError(t, err)

	saved, err := svc.SaveProgress(ctx, ev.ID, evaluation.ProgressInput{
		Scores: map[string]string{
			"c1": "6",
			"c2": "12,5", // comma decimal
		},
		Observation: "Responde con seguridad",
	})
	require.NoError(t, err)
	require.Len(t, saved.Scores, 2)
	assert.Equal(t, evaluation.StatusPending, saved.Status)

	// partial 18.5 of 30 -> ~0.6167 -> grade preview 4.65
	require.NotNil(t, saved.Grade)
	assert.InDelta(t, 4.65, *saved.Grade, 1e-9)
}

func TestSaveProgressRejectsMalformedInput(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	ev, _, err := svc.StartOrResume(ctx, "student-1", "com-1", "g1")
	require.NoError(t, err)

	_, err = svc.SaveProgress(ctx, ev.ID, evaluation.ProgressInput{
		Scores: map[string]string{"c1": "6.55", "c2": "abc"},
	})
	var verr *evaluation.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Problems, 2)

	// the rejected call must not have persisted anything
	cur, _, err := svc.StartOrResume(ctx, "student-1", "com-1", "g1")
	require.NoError(t, err)
	assert.Empty(t, cur.Scores)
}

func TestSaveProgressUnknownCriterion(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	ev, _, err := svc.StartOrResume(ctx, "student-1", "com-1", "g1")
	require.NoError(t, err)

	_, err = svc.SaveProgress(ctx, ev.ID, evaluation.ProgressInput{
		Scores: map[string]string{"nope": "5"},
	})
	var verr *evaluation.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestSaveProgressObservationTooLong(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	ev, _, err := svc.StartOrResume(ctx, "student-1", "com-1", "g1")
	require.NoError(t, err)

	long := strings.Repeat("a", grading.MaxObservationLen+1)
	_, err = svc.SaveProgress(ctx, ev.ID, evaluation.ProgressInput{Observation: long})
	var verr *evaluation.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func question(s string) *string { return &s }

func TestFinalizeGuards(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	ev, _, err := svc.StartOrResume(ctx, "student-1", "com-1", "g1")
	require.NoError(t, err)

	// nothing entered at all: both guards fail
	_, err = svc.Finalize(ctx, ev.ID)
	var rej *evaluation.RejectedError
	require.ErrorAs(t, err, &rej)
	assert.Contains(t, rej.Reasons, evaluation.ReasonNoQuestionDrawn)
	assert.Contains(t, rej.Reasons, evaluation.ReasonRubricIncomplete)

	// question drawn but one criterion still unscored
	_, err = svc.SaveProgress(ctx, ev.ID, evaluation.ProgressInput{
		Scores:        map[string]string{"c1": "6"},
		QuestionAsked: question("Elementos del acto jurídico"),
	})
	require.NoError(t, err)
	_, err = svc.Finalize(ctx, ev.ID)
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, []evaluation.Reason{evaluation.ReasonRubricIncomplete}, rej.Reasons)

	// observation of digits only is rejected even with a full rubric
	_, err = svc.SaveProgress(ctx, ev.ID, evaluation.ProgressInput{
		Scores:        map[string]string{"c1": "6", "c2": "12.5"},
		Observation:   "123456",
		QuestionAsked: question("Elementos del acto jurídico"),
	})
	require.NoError(t, err)
	_, err = svc.Finalize(ctx, ev.ID)
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, []evaluation.Reason{evaluation.ReasonInvalidObservation}, rej.Reasons)

	// valid state: finalize succeeds and snapshots the grade
	_, err = svc.SaveProgress(ctx, ev.ID, evaluation.ProgressInput{
		Scores:        map[string]string{"c1": "6", "c2": "12.5"},
		Observation:   "Buen desempeño",
		QuestionAsked: question("Elementos del acto jurídico"),
	})
	require.NoError(t, err)
	done, err := svc.Finalize(ctx, ev.ID)
	require.NoError(t, err)
	assert.Equal(t, evaluation.StatusCompleted, done.Status)
	require.NotNil(t, done.Grade)
	assert.InDelta(t, 4.65, *done.Grade, 1e-9)
	require.NotNil(t, done.CompletedAt)
}

func TestFinalizeDistinguishesZeroFromUnset(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	ev, _, err := svc.StartOrResume(ctx, "student-1", "com-1", "g1")
	require.NoError(t, err)

	// c2 scored an explicit zero: rubric is complete
	_, err = svc.SaveProgress(ctx, ev.ID, evaluation.ProgressInput{
		Scores:        map[string]string{"c1": "10", "c2": "0"},
		QuestionAsked: question("Vicios del consentimiento"),
	})
	require.NoError(t, err)
	done, err := svc.Finalize(ctx, ev.ID)
	require.NoError(t, err)
	assert.Equal(t, evaluation.StatusCompleted, done.Status)
}

func TestFinalizeIsIdempotent(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	ev, _, err := svc.StartOrResume(ctx, "student-1", "com-1", "g1")
	require.NoError(t, err)
	_, err = svc.SaveProgress(ctx, ev.ID, evaluation.ProgressInput{
		Scores:        map[string]string{"c1": "10", "c2": "20"},
		QuestionAsked: question("Elementos del acto jurídico"),
	})
	require.NoError(t, err)

	first, err := svc.Finalize(ctx, ev.ID)
	require.NoError(t, err)
	second, err := svc.Finalize(ctx, ev.ID)
	require.NoError(t, err)
	assert.Equal(t, *first.Grade, *second.Grade)
	assert.Equal(t, *first.CompletedAt, *second.CompletedAt)
}

func TestCompletedEvaluationIsImmutable(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	ev, _, err := svc.StartOrResume(ctx, "student-1", "com-1", "g1")
	require.NoError(t, err)
	_, err = svc.SaveProgress(ctx, ev.ID, evaluation.ProgressInput{
		Scores:        map[string]string{"c1": "10", "c2": "20"},
		QuestionAsked: question("Elementos del acto jurídico"),
	})
	require.NoError(t, err)
	_, err = svc.Finalize(ctx, ev.ID)
	require.NoError(t, err)

	_, err = svc.SaveProgress(ctx, ev.ID, evaluation.ProgressInput{
		Scores: map[string]string{"c1": "1"},
	})
	assert.ErrorIs(t, err, evaluation.ErrAlreadyCompleted)
}

func TestDrawQuestion(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	// drawn questions always belong to the requested theme
	for i := 0; i < 20; i++ {
		q, err := svc.DrawQuestion(ctx, "t1")
		require.NoError(t, err)
		assert.Equal(t, "t1", q.ThemeID)
	}

	q, err := svc.DrawQuestion(ctx, "t2")
	require.NoError(t, err)
	assert.Equal(t, "q3", q.ID)
}

func TestDrawQuestionEmptyTheme(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.DrawQuestion(context.Background(), "no-such-theme")
	assert.ErrorIs(t, err, evaluation.ErrNoQuestionForTheme)
}

func TestResultsHistory(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	for _, student := range []string{"s1", "s2", "s3"} {
		_, _, err := svc.StartOrResume(ctx, student, "com-1", "g1")
		require.NoError(t, err)
	}
	list, err := svc.Results(ctx, "com-1")
	require.NoError(t, err)
	assert.Len(t, list, 3)

	other, err := svc.Results(ctx, "com-2")
	require.NoError(t, err)
	assert.Empty(t, other)
}
