package evaluation

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/oralex/oralex/internal/audit"
	"github.com/oralex/oralex/internal/grading"
)

// Recorder receives audit events for grading actions. Appending is
// best-effort: a failed append never fails the grading operation.
type Recorder interface {
	Append(ctx context.Context, typ, key string, data any) error
}

// Service orchestrates one grading session: start-or-resume, repeated
// save-progress, question drawing, and the one-way finalize transition.
type Service struct {
	store   Store
	rubrics RubricProvider
	bank    QuestionBank
	mapper  grading.Mapper
	rec     Recorder

	mu  sync.Mutex
	rng *rand.Rand
}

type Option func(*Service)

// WithMapper overrides the grade mapper, e.g. for a non-default passing ratio.
func WithMapper(m grading.Mapper) Option { return func(s *Service) { s.mapper = m } }

// WithRand injects the randomness source used for question drawing.
func WithRand(r *rand.Rand) Option { return func(s *Service) { s.rng = r } }

// WithRecorder attaches an audit trail.
func WithRecorder(rec Recorder) Option { return func(s *Service) { s.rec = rec } }

func NewService(store Store, rubrics RubricProvider, bank QuestionBank, opts ...Option) *Service {
	s := &Service{
		store:   store,
		rubrics: rubrics,
		bank:    bank,
		mapper:  grading.NewMapper(grading.DefaultPassingRatio),
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// StartOrResume returns the evaluation for (student, commission), creating
// a fresh pending one only when no record exists yet. The guideline's
// criteria are returned alongside so the caller can render the rubric.
func (s *Service) StartOrResume(ctx context.Context, userID, commissionID, guidelineID string) (Evaluation, []grading.Criterion, error) {
	ev, err := s.store.FindByStudent(ctx, userID, commissionID)
	switch {
	case err == nil:
		// resume (or read-only history when already completed); the
		// record's own guideline wins over the requested one
		crits, cerr := s.rubrics.CriteriaForGuideline(ctx, ev.GuidelineID)
		if cerr != nil {
			return Evaluation{}, nil, cerr
		}
		return ev, crits, nil
	case errors.Is(err, ErrNotFound):
		// fall through to create
	default:
		return Evaluation{}, nil, err
	}

	crits, err := s.rubrics.CriteriaForGuideline(ctx, guidelineID)
	if err != nil {
		return Evaluation{}, nil, err
	}
	ev, err = s.store.Create(ctx, userID, commissionID, guidelineID)
	if err != nil {
		return Evaluation{}, nil, err
	}
	s.record(ctx, audit.TypeEvaluationStarted, ev.ID, map[string]string{
		"user_id":       userID,
		"commission_id": commissionID,
		"guideline_id":  guidelineID,
	})
	return ev, crits, nil
}

// Get returns one evaluation by id.
func (s *Service) Get(ctx context.Context, id string) (Evaluation, error) {
	return s.store.Get(ctx, id)
}

// ProgressInput carries one save-progress request. Scores map criterion ids
// to the raw grader input; an empty string clears a criterion back to
// unscored. QuestionAsked replaces the drawn question when non-nil.
type ProgressInput struct {
	Scores        map[string]string
	Observation   string
	QuestionAsked *string
}

// SaveProgress persists partial scores, observation and drawn question for
// a pending evaluation, along with the recomputed grade preview. It applies
// no finalize guards, but malformed input makes the whole call a no-op and
// returns a ValidationError listing every problem.
func (s *Service) SaveProgress(ctx context.Context, id string, in ProgressInput) (Evaluation, error) {
	ev, err := s.store.Get(ctx, id)
	if err != nil {
		return Evaluation{}, err
	}
	if ev.Completed() {
		return Evaluation{}, ErrAlreadyCompleted
	}

	crits, err := s.rubrics.CriteriaForGuideline(ctx, ev.GuidelineID)
	if err != nil {
		return Evaluation{}, err
	}
	acc, err := grading.NewAccumulator(crits)
	if err != nil {
		return Evaluation{}, err
	}
	acc.Load(ev.Scores)

	var problems []string
	for _, cid := range sortedKeys(in.Scores) {
		if err := acc.SetScoreByID(cid, in.Scores[cid]); err != nil {
			problems = append(problems, fmt.Sprintf("criterion %s: %v", cid, err))
		}
	}
	if !grading.ObservationFits(in.Observation) {
		problems = append(problems, fmt.Sprintf("observation exceeds %d characters", grading.MaxObservationLen))
	}
	if len(problems) > 0 {
		return Evaluation{}, &ValidationError{Problems: problems}
	}

	question := ev.QuestionAsked
	if in.QuestionAsked != nil {
		question = in.QuestionAsked
	}
	preview := grading.Round2(s.mapper.Map(acc.PartialTotal(), acc.MaxTotal()))

	saved, err := s.store.SaveProgress(ctx, id, ProgressUpdate{
		Scores:        acc.Entries(),
		Observation:   in.Observation,
		QuestionAsked: question,
		Grade:         &preview,
	})
	if err != nil {
		return Evaluation{}, err
	}
	s.record(ctx, audit.TypeProgressSaved, id, map[string]any{"grade_preview": preview})
	return saved, nil
}

// Finalize completes a pending evaluation. The guards run inside the
// store's write serialization, against the most recently persisted state:
// a question must have been drawn, every criterion must carry an explicit
// score, and a non-empty observation must contain at least one letter.
// Finalizing an already completed evaluation is a no-op success.
func (s *Service) Finalize(ctx context.Context, id string) (Evaluation, error) {
	ev, err := s.store.Finalize(ctx, id, func(cur Evaluation) (float64, error) {
		crits, err := s.rubrics.CriteriaForGuideline(ctx, cur.GuidelineID)
		if err != nil {
			return 0, err
		}
		acc, err := grading.NewAccumulator(crits)
		if err != nil {
			return 0, err
		}
		acc.Load(cur.Scores)

		var reasons []Reason
		if cur.QuestionAsked == nil || *cur.QuestionAsked == "" {
			reasons = append(reasons, ReasonNoQuestionDrawn)
		}
		if !acc.IsComplete() {
			reasons = append(reasons, ReasonRubricIncomplete)
		}
		if !grading.ValidObservation(cur.Observation) {
			reasons = append(reasons, ReasonInvalidObservation)
		}
		if len(reasons) > 0 {
			return 0, &RejectedError{Reasons: reasons}
		}
		return grading.Round2(s.mapper.Map(acc.PartialTotal(), acc.MaxTotal())), nil
	})
	if err != nil {
		return Evaluation{}, err
	}
	s.record(ctx, audit.TypeEvaluationCompleted, id, map[string]any{"grade": ev.Grade})
	return ev, nil
}

// DrawQuestion picks uniformly at random among the bank's questions for the
// given theme. An empty filtered set is ErrNoQuestionForTheme; the caller
// may retry with another theme. The pool itself is never mutated.
func (s *Service) DrawQuestion(ctx context.Context, themeID string) (Question, error) {
	pool, err := s.bank.Questions(ctx)
	if err != nil {
		return Question{}, err
	}
	matching := make([]Question, 0, len(pool))
	for _, q := range pool {
		if q.ThemeID == themeID {
			matching = append(matching, q)
		}
	}
	if len(matching) == 0 {
		return Question{}, fmt.Errorf("%w %s", ErrNoQuestionForTheme, themeID)
	}
	s.mu.Lock()
	q := matching[s.rng.Intn(len(matching))]
	s.mu.Unlock()
	s.record(ctx, audit.TypeQuestionDrawn, themeID, map[string]string{"question_id": q.ID})
	return q, nil
}

// Results returns all evaluations of a commission, for the history view.
func (s *Service) Results(ctx context.Context, commissionID string) ([]Evaluation, error) {
	return s.store.ListByCommission(ctx, commissionID)
}

func (s *Service) record(ctx context.Context, typ, key string, data any) {
	if s.rec == nil {
		return
	}
	_ = s.rec.Append(ctx, typ, key, data)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
