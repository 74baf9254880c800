package events

import (
	"context"
	"database/sql"
	"encoding/json"
	"log"
	"time"
)

// Event types recorded by the portal.
const (
	TypeFileUploaded     = "FileUploaded"
	TypeTestCreated      = "TestCreated"
	TypeAttemptSubmitted = "AttemptSubmitted"
)

type Event struct {
	Seq       int64
	Type      string
	Key       string // natural key: upload key, test id, attempt id
	DataJSON  string
	CreatedAt int64
}

type Repo struct{ db *sql.DB }

func NewRepo(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) Append(ctx context.Context, typ, key string, data any) error {
	buf, err := json.Marshal(data)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO event_log (typ, key, data, created_at) VALUES ($1,$2,$3,$4)`,
		typ, key, string(buf), time.Now().Unix())
	return err
}

// Log appends best-effort: the audit trail never fails a request.
func (r *Repo) Log(ctx context.Context, typ, key string, data any) {
	if err := r.Append(ctx, typ, key, data); err != nil {
		log.Printf("event log append failed (%s %s): %v", typ, key, err)
	}
}
