package catalog

import (
	"context"
	"sort"
	"sync"

	"github.com/oralex/oralex/internal/evaluation"
	"github.com/oralex/oralex/internal/grading"
)

// MemoryStore is the in-process catalog used by tests and offline demos.
type MemoryStore struct {
	mu          sync.RWMutex
	subjects    map[string]Subject
	themes      map[string]Theme
	questions   map[string]evaluation.Question
	guidelines  map[string]Guideline
	commissions map[string]Commission
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		subjects:    map[string]Subject{},
		themes:      map[string]Theme{},
		questions:   map[string]evaluation.Question{},
		guidelines:  map[string]Guideline{},
		commissions: map[string]Commission{},
	}
}

func (m *MemoryStore) PutSubject(_ context.Context, s Subject) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subjects[s.ID] = s
	return nil
}

func (m *MemoryStore) PutTheme(_ context.Context, t Theme) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.themes[t.ID] = t
	return nil
}

func (m *MemoryStore) PutQuestion(_ context.Context, q evaluation.Question) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.questions[q.ID] = q
	return nil
}

func (m *MemoryStore) PutGuideline(_ context.Context, g Guideline) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.guidelines[g.ID] = g
	return nil
}

func (m *MemoryStore) PutCommission(_ context.Context, c Commission) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.commissions[c.ID] = c
	return nil
}

func (m *MemoryStore) Subjects(_ context.Context) ([]Subject, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Subject, 0, len(m.subjects))
	for _, s := range m.subjects {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MemoryStore) Themes(_ context.Context, subjectID string) ([]Theme, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Theme
	for _, t := range m.themes {
		if t.SubjectID == subjectID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MemoryStore) Questions(_ context.Context) ([]evaluation.Question, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]evaluation.Question, 0, len(m.questions))
	for _, q := range m.questions {
		out = append(out, q)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryStore) QuestionsByTheme(_ context.Context, themeID string) ([]evaluation.Question, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []evaluation.Question
	for _, q := range m.questions {
		if q.ThemeID == themeID {
			out = append(out, q)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryStore) Guideline(_ context.Context, id string) (Guideline, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.guidelines[id]
	if !ok {
		return Guideline{}, ErrGuidelineNotFound
	}
	return g, nil
}

func (m *MemoryStore) CriteriaForGuideline(ctx context.Context, guidelineID string) ([]grading.Criterion, error) {
	g, err := m.Guideline(ctx, guidelineID)
	if err != nil {
		return nil, err
	}
	return g.Criteria, nil
}

func (m *MemoryStore) Commission(_ context.Context, id string) (Commission, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.commissions[id]
	if !ok {
		return Commission{}, ErrCommissionNotFound
	}
	return c, nil
}

func (m *MemoryStore) Commissions(_ context.Context) ([]Commission, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Commission, 0, len(m.commissions))
	for _, c := range m.commissions {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartsAt < out[j].StartsAt })
	return out, nil
}
