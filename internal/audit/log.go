package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"
)

// Event types recorded by the grading flow.
const (
	TypeEvaluationStarted   = "EvaluationStarted"
	TypeProgressSaved       = "ProgressSaved"
	TypeQuestionDrawn       = "QuestionDrawn"
	TypeEvaluationCompleted = "EvaluationCompleted"
)

type Event struct {
	Offset    int64  `json:"offset"`
	Type      string `json:"type"`
	Key       string `json:"key"` // natural key: evaluation id
	DataJSON  string `json:"data"`
	CreatedAt int64  `json:"created_at"`
}

// Log is an append-only trail of grading actions, backed by the event_log
// table. Completed evaluations are immutable; the trail is how corrections
// stay accountable.
type Log struct{ db *sql.DB }

func NewLog(db *sql.DB) *Log { return &Log{db: db} }

func (l *Log) Append(ctx context.Context, typ, key string, data any) error {
	buf, err := json.Marshal(data)
	if err != nil {
		return err
	}
	_, err = l.db.ExecContext(ctx,
		`INSERT INTO event_log (typ, key, data, created_at)
		 VALUES ($1,$2,$3,$4)`,
		typ, key, string(buf), time.Now().Unix())
	return err
}

// ByKey returns the recorded events for one evaluation, oldest first.
func (l *Log) ByKey(ctx context.Context, key string) ([]Event, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT "offset", typ, key, data, created_at FROM event_log
		 WHERE key=$1 ORDER BY "offset" ASC`, key)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.Offset, &e.Type, &e.Key, &e.DataJSON, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
