package evaluation

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/oralex/oralex/internal/grading"
)

// SQLStore persists evaluations in the evaluations table. Score entries are
// stored as a JSON column; everything the finalize guard reads lives in the
// row, so re-reading the row inside the finalize transaction is enough to
// evaluate the guard against the latest persisted state.
type SQLStore struct {
	db     *sql.DB
	driver string // "sqlite" or "postgres"
}

func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	return &SQLStore{db: db, driver: driver}
}

func (s *SQLStore) Create(ctx context.Context, userID, commissionID, guidelineID string) (Evaluation, error) {
	ev := Evaluation{
		ID:           uuid.NewString(),
		UserID:       userID,
		CommissionID: commissionID,
		GuidelineID:  guidelineID,
		Status:       StatusPending,
		Scores:       []grading.ScoreEntry{},
		CreatedAt:    time.Now().Unix(),
	}
	sj, _ := json.Marshal(ev.Scores)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO evaluations (id,user_id,commission_id,guideline_id,status,observation,scores_json,created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		ev.ID, ev.UserID, ev.CommissionID, ev.GuidelineID, string(ev.Status), "", string(sj), ev.CreatedAt)
	if err != nil {
		return Evaluation{}, err
	}
	return ev, nil
}

const evalColumns = `id,user_id,commission_id,guideline_id,status,question_asked,observation,grade,scores_json,created_at,completed_at`

func scanEvaluation(row interface{ Scan(...any) error }) (Evaluation, error) {
	var (
		ev       Evaluation
		status   string
		question sql.NullString
		grade    sql.NullFloat64
		sjson    string
		done     sql.NullInt64
	)
	err := row.Scan(&ev.ID, &ev.UserID, &ev.CommissionID, &ev.GuidelineID, &status,
		&question, &ev.Observation, &grade, &sjson, &ev.CreatedAt, &done)
	if err != nil {
		return Evaluation{}, err
	}
	ev.Status = Status(status)
	if question.Valid {
		ev.QuestionAsked = &question.String
	}
	if grade.Valid {
		ev.Grade = &grade.Float64
	}
	if done.Valid {
		ev.CompletedAt = &done.Int64
	}
	if err := json.Unmarshal([]byte(sjson), &ev.Scores); err != nil {
		ev.Scores = []grading.ScoreEntry{}
	}
	return ev, nil
}

func (s *SQLStore) Get(ctx context.Context, id string) (Evaluation, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+evalColumns+` FROM evaluations WHERE id=$1`, id)
	ev, err := scanEvaluation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Evaluation{}, ErrNotFound
	}
	return ev, err
}

func (s *SQLStore) FindByStudent(ctx context.Context, userID, commissionID string) (Evaluation, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+evalColumns+` FROM evaluations
		 WHERE user_id=$1 AND commission_id=$2
		 ORDER BY created_at DESC LIMIT 1`, userID, commissionID)
	ev, err := scanEvaluation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Evaluation{}, ErrNotFound
	}
	return ev, err
}

func (s *SQLStore) SaveProgress(ctx context.Context, id string, upd ProgressUpdate) (Evaluation, error) {
	cur, err := s.Get(ctx, id)
	if err != nil {
		return Evaluation{}, err
	}
	if cur.Completed() {
		return Evaluation{}, ErrAlreadyCompleted
	}
	sj, err := json.Marshal(upd.Scores)
	if err != nil {
		return Evaluation{}, err
	}
	var question sql.NullString
	if upd.QuestionAsked != nil {
		question = sql.NullString{String: *upd.QuestionAsked, Valid: true}
	}
	var grade sql.NullFloat64
	if upd.Grade != nil {
		grade = sql.NullFloat64{Float64: *upd.Grade, Valid: true}
	}
	// status guard in the WHERE clause: a concurrent finalize wins
	res, err := s.db.ExecContext(ctx,
		`UPDATE evaluations SET scores_json=$1, observation=$2, question_asked=$3, grade=$4
		 WHERE id=$5 AND status=$6`,
		string(sj), upd.Observation, question, grade, id, string(StatusPending))
	if err != nil {
		return Evaluation{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Evaluation{}, ErrAlreadyCompleted
	}
	return s.Get(ctx, id)
}

func (s *SQLStore) Finalize(ctx context.Context, id string, decide FinalizeFunc) (Evaluation, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Evaluation{}, err
	}
	defer tx.Rollback()

	q := `SELECT ` + evalColumns + ` FROM evaluations WHERE id=$1`
	if s.driver == "postgres" {
		q += ` FOR UPDATE`
	}
	ev, err := scanEvaluation(tx.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Evaluation{}, ErrNotFound
	}
	if err != nil {
		return Evaluation{}, err
	}
	if ev.Completed() {
		// idempotent: finalizing twice returns the stored grade
		return ev, nil
	}

	grade, err := decide(ev)
	if err != nil {
		return Evaluation{}, err
	}
	now := time.Now().Unix()
	// the status predicate makes the transition single-shot even without
	// row locking (sqlite)
	res, err := tx.ExecContext(ctx,
		`UPDATE evaluations SET status=$1, grade=$2, completed_at=$3
		 WHERE id=$4 AND status=$5`,
		string(StatusCompleted), grade, now, id, string(StatusPending))
	if err != nil {
		return Evaluation{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Evaluation{}, errors.New("evaluation changed underneath finalize")
	}
	if err := tx.Commit(); err != nil {
		return Evaluation{}, err
	}
	ev.Status = StatusCompleted
	ev.Grade = &grade
	ev.CompletedAt = &now
	return ev, nil
}

func (s *SQLStore) ListByCommission(ctx context.Context, commissionID string) ([]Evaluation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+evalColumns+` FROM evaluations WHERE commission_id=$1 ORDER BY created_at ASC`,
		commissionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Evaluation
	for rows.Next() {
		ev, err := scanEvaluation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}
