package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/oralex/oralex/internal/evaluation"
	"github.com/oralex/oralex/internal/grading"
)

var (
	ErrGuidelineNotFound  = errors.New("guideline not found")
	ErrCommissionNotFound = errors.New("commission not found")
)

// SQLStore serves the catalog: subjects, themes, questions, guidelines and
// commissions. It implements evaluation.RubricProvider and
// evaluation.QuestionBank for the scoring engine.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

func (s *SQLStore) PutSubject(ctx context.Context, sub Subject) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO subjects (id,name) VALUES ($1,$2)
		 ON CONFLICT (id) DO UPDATE SET name=EXCLUDED.name`,
		sub.ID, sub.Name)
	return err
}

func (s *SQLStore) PutTheme(ctx context.Context, t Theme) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO themes (id,subject_id,name) VALUES ($1,$2,$3)
		 ON CONFLICT (id) DO UPDATE SET subject_id=EXCLUDED.subject_id, name=EXCLUDED.name`,
		t.ID, t.SubjectID, t.Name)
	return err
}

func (s *SQLStore) PutQuestion(ctx context.Context, q evaluation.Question) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO questions (id,theme_id,text) VALUES ($1,$2,$3)
		 ON CONFLICT (id) DO UPDATE SET theme_id=EXCLUDED.theme_id, text=EXCLUDED.text`,
		q.ID, q.ThemeID, q.Text)
	return err
}

func (s *SQLStore) PutGuideline(ctx context.Context, g Guideline) error {
	cj, err := json.Marshal(g.Criteria)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO guidelines (id,theme_id,name,criteria_json) VALUES ($1,$2,$3,$4)
		 ON CONFLICT (id) DO UPDATE SET theme_id=EXCLUDED.theme_id, name=EXCLUDED.name, criteria_json=EXCLUDED.criteria_json`,
		g.ID, g.ThemeID, g.Name, string(cj))
	return err
}

func (s *SQLStore) PutCommission(ctx context.Context, c Commission) error {
	sj, err := json.Marshal(c.StudentIDs)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO commissions (id,theme_id,guideline_id,name,location,starts_at,students_json)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)
		 ON CONFLICT (id) DO UPDATE SET theme_id=EXCLUDED.theme_id, guideline_id=EXCLUDED.guideline_id,
		   name=EXCLUDED.name, location=EXCLUDED.location, starts_at=EXCLUDED.starts_at, students_json=EXCLUDED.students_json`,
		c.ID, c.ThemeID, c.GuidelineID, c.Name, c.Location, c.StartsAt, string(sj))
	return err
}

func (s *SQLStore) Subjects(ctx context.Context) ([]Subject, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id,name FROM subjects ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Subject
	for rows.Next() {
		var sub Subject
		if err := rows.Scan(&sub.ID, &sub.Name); err != nil {
			return nil, err
		}
		out = append(out, sub)
	}
	return out, rows.Err()
}

func (s *SQLStore) Themes(ctx context.Context, subjectID string) ([]Theme, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id,subject_id,name FROM themes WHERE subject_id=$1 ORDER BY name`, subjectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Theme
	for rows.Next() {
		var t Theme
		if err := rows.Scan(&t.ID, &t.SubjectID, &t.Name); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Questions returns the whole bank; it is the evaluation.QuestionBank
// snapshot the draw operation samples from.
func (s *SQLStore) Questions(ctx context.Context) ([]evaluation.Question, error) {
	return s.queryQuestions(ctx, `SELECT id,theme_id,text FROM questions ORDER BY id`)
}

func (s *SQLStore) QuestionsByTheme(ctx context.Context, themeID string) ([]evaluation.Question, error) {
	return s.queryQuestions(ctx, `SELECT id,theme_id,text FROM questions WHERE theme_id=$1 ORDER BY id`, themeID)
}

func (s *SQLStore) queryQuestions(ctx context.Context, query string, args ...any) ([]evaluation.Question, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []evaluation.Question
	for rows.Next() {
		var q evaluation.Question
		if err := rows.Scan(&q.ID, &q.ThemeID, &q.Text); err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (s *SQLStore) Guideline(ctx context.Context, id string) (Guideline, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id,theme_id,name,criteria_json FROM guidelines WHERE id=$1`, id)
	var g Guideline
	var cj string
	if err := row.Scan(&g.ID, &g.ThemeID, &g.Name, &cj); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Guideline{}, ErrGuidelineNotFound
		}
		return Guideline{}, err
	}
	if err := json.Unmarshal([]byte(cj), &g.Criteria); err != nil {
		return Guideline{}, err
	}
	return g, nil
}

// CriteriaForGuideline implements evaluation.RubricProvider.
func (s *SQLStore) CriteriaForGuideline(ctx context.Context, guidelineID string) ([]grading.Criterion, error) {
	g, err := s.Guideline(ctx, guidelineID)
	if err != nil {
		return nil, err
	}
	return g.Criteria, nil
}

func (s *SQLStore) Commission(ctx context.Context, id string) (Commission, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id,theme_id,guideline_id,name,location,starts_at,students_json FROM commissions WHERE id=$1`, id)
	return scanCommission(row)
}

func (s *SQLStore) Commissions(ctx context.Context) ([]Commission, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id,theme_id,guideline_id,name,location,starts_at,students_json FROM commissions ORDER BY starts_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Commission
	for rows.Next() {
		c, err := scanCommission(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func scanCommission(row interface{ Scan(...any) error }) (Commission, error) {
	var c Commission
	var sj string
	if err := row.Scan(&c.ID, &c.ThemeID, &c.GuidelineID, &c.Name, &c.Location, &c.StartsAt, &sj); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Commission{}, ErrCommissionNotFound
		}
		return Commission{}, err
	}
	if err := json.Unmarshal([]byte(sj), &c.StudentIDs); err != nil {
		c.StudentIDs = nil
	}
	return c, nil
}
