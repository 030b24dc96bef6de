package evaluation

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// memoryStore keeps evaluations in process memory. Used by tests and the
// offline demo mode; the mutex gives it the same writer serialization the
// SQL store gets from transactions.
type memoryStore struct {
	mu    sync.Mutex
	evals map[string]Evaluation
}

func NewInMemoryStore() Store {
	return &memoryStore{evals: map[string]Evaluation{}}
}

func (m *memoryStore) Create(_ context.Context, userID, commissionID, guidelineID string) (Evaluation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ev := Evaluation{
		ID:           uuid.NewString(),
		UserID:       userID,
		CommissionID: commissionID,
		GuidelineID:  guidelineID,
		Status:       StatusPending,
		CreatedAt:    time.Now().Unix(),
	}
	m.evals[ev.ID] = ev
	return ev, nil
}

func (m *memoryStore) Get(_ context.Context, id string) (Evaluation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ev, ok := m.evals[id]
	if !ok {
		return Evaluation{}, ErrNotFound
	}
	return ev, nil
}

func (m *memoryStore) FindByStudent(_ context.Context, userID, commissionID string) (Evaluation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ev := range m.evals {
		if ev.UserID == userID && ev.CommissionID == commissionID {
			return ev, nil
		}
	}
	return Evaluation{}, ErrNotFound
}

func (m *memoryStore) SaveProgress(_ context.Context, id string, upd ProgressUpdate) (Evaluation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ev, ok := m.evals[id]
	if !ok {
		return Evaluation{}, ErrNotFound
	}
	if ev.Completed() {
		return Evaluation{}, ErrAlreadyCompleted
	}
	ev.Scores = upd.Scores
	ev.Observation = upd.Observation
	ev.QuestionAsked = upd.QuestionAsked
	ev.Grade = upd.Grade
	m.evals[id] = ev
	return ev, nil
}

func (m *memoryStore) Finalize(_ context.Context, id string, decide FinalizeFunc) (Evaluation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ev, ok := m.evals[id]
	if !ok {
		return Evaluation{}, ErrNotFound
	}
	if ev.Completed() {
		return ev, nil
	}
	grade, err := decide(ev)
	if err != nil {
		return Evaluation{}, err
	}
	now := time.Now().Unix()
	ev.Status = StatusCompleted
	ev.Grade = &grade
	ev.CompletedAt = &now
	m.evals[id] = ev
	return ev, nil
}

func (m *memoryStore) ListByCommission(_ context.Context, commissionID string) ([]Evaluation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Evaluation
	for _, ev := range m.evals {
		if ev.CommissionID == commissionID {
			out = append(out, ev)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt < out[j].CreatedAt })
	return out, nil
}
