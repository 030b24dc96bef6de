package catalog

import (
	"context"

	"github.com/oralex/oralex/internal/evaluation"
	"github.com/oralex/oralex/internal/grading"
)

// Store is the catalog surface the gateway and the scoring engine consume.
// The write side exists for seeding and import tooling, not for an
// admin CRUD UI.
type Store interface {
	evaluation.RubricProvider
	evaluation.QuestionBank

	PutSubject(ctx context.Context, s Subject) error
	PutTheme(ctx context.Context, t Theme) error
	PutQuestion(ctx context.Context, q evaluation.Question) error
	PutGuideline(ctx context.Context, g Guideline) error
	PutCommission(ctx context.Context, c Commission) error

	Subjects(ctx context.Context) ([]Subject, error)
	Themes(ctx context.Context, subjectID string) ([]Theme, error)
	QuestionsByTheme(ctx context.Context, themeID string) ([]evaluation.Question, error)
	Guideline(ctx context.Context, id string) (Guideline, error)
	Commission(ctx context.Context, id string) (Commission, error)
	Commissions(ctx context.Context) ([]Commission, error)
}

// SeedDemo loads a small law-faculty data set so an offline gateway is
// usable out of the box.
func SeedDemo(ctx context.Context, store Store) error {
	subject := Subject{ID: "derecho-civil", Name: "Derecho Civil"}
	theme := Theme{ID: "acto-juridico", SubjectID: subject.ID, Name: "Teoría del Acto Jurídico"}
	questions := []evaluation.Question{
		{ID: "q-aj-1", ThemeID: theme.ID, Text: "Enumere y explique los elementos de existencia del acto jurídico."},
		{ID: "q-aj-2", ThemeID: theme.ID, Text: "Distinga nulidad absoluta y nulidad relativa."},
		{ID: "q-aj-3", ThemeID: theme.ID, Text: "Explique los vicios del consentimiento y sus efectos."},
	}
	guideline := Guideline{
		ID:      "pauta-aj",
		ThemeID: theme.ID,
		Name:    "Pauta examen oral — Acto Jurídico",
		Criteria: []grading.Criterion{
			{ID: "dominio", Description: "Dominio conceptual", MaxScore: 10},
			{ID: "argumentacion", Description: "Argumentación jurídica", MaxScore: 20},
			{ID: "expresion", Description: "Claridad de expresión", MaxScore: 10},
		},
	}
	commission := Commission{
		ID:          "com-demo",
		ThemeID:     theme.ID,
		GuidelineID: guideline.ID,
		Name:        "Comisión 1 — Acto Jurídico",
		Location:    "Sala 204",
		StartsAt:    1767186000, // 2025-12-31 13:00 UTC
		StudentIDs:  []string{"alumno-1", "alumno-2", "alumno-3"},
	}

	if err := store.PutSubject(ctx, subject); err != nil {
		return err
	}
	if err := store.PutTheme(ctx, theme); err != nil {
		return err
	}
	for _, q := range questions {
		if err := store.PutQuestion(ctx, q); err != nil {
			return err
		}
	}
	if err := store.PutGuideline(ctx, guideline); err != nil {
		return err
	}
	return store.PutCommission(ctx, commission)
}
