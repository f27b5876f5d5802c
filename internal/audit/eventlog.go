package audit

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Event is one append-only audit record. Staff submissions land here even
// though they are excluded from ledger scoring.
type Event struct {
	ID        string
	Type      string // e.g. SubmissionRecorded, SubmissionStaff
	UserID    string
	QotdNum   int
	DataJSON  string
	CreatedAt int64
}

type EventRepo struct{ db *sql.DB }

func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

func (r *EventRepo) Append(ctx context.Context, e Event) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO event_log (id, typ, user_id, qotd_num, data, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6)`,
		e.ID, e.Type, e.UserID, e.QotdNum, e.DataJSON, time.Now().Unix())
	return err
}

// ListByUser returns a user's events for one question, oldest first.
func (r *EventRepo) ListByUser(ctx context.Context, userID string, qotdNum int) ([]Event, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, typ, user_id, qotd_num, data, created_at
		 FROM event_log WHERE user_id=$1 AND qotd_num=$2 ORDER BY created_at`,
		userID, qotdNum)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.Type, &e.UserID, &e.QotdNum, &e.DataJSON, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
