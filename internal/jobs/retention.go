package jobs

import (
	"context"
	"database/sql"
	"log"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/examforge/mcq-portal/internal/storage"
)

var sweptUploads = promauto.NewCounter(prometheus.CounterOpts{
	Name: "mcqportal_retention_swept_uploads_total",
	Help: "Uploads removed by the retention sweeper.",
})

// RetentionSweeper periodically removes uploaded files older than the
// retention window, blob first and row after, so a crash between the two
// can only leave a row pointing at a missing blob, never an orphaned blob.
type RetentionSweeper struct {
	DB       *sql.DB
	Blobs    storage.BlobStore
	Window   time.Duration
	Interval time.Duration
}

// Run sweeps on every tick until ctx is done. A zero window disables the
// sweeper entirely.
func (s *RetentionSweeper) Run(ctx context.Context) {
	if s.Window <= 0 {
		return
	}
	interval := s.Interval
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n, err := s.SweepOnce(ctx); err != nil {
				log.Printf("retention sweep failed: %v", err)
			} else if n > 0 {
				log.Printf("retention sweep removed %d uploads", n)
			}
		}
	}
}

// SweepOnce removes every upload whose creation time is past the window and
// returns how many were removed.
func (s *RetentionSweeper) SweepOnce(ctx context.Context) (int, error) {
	cutoff := time.Now().Add(-s.Window).Unix()
	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, stored_key FROM uploads WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	type target struct{ id, key string }
	var targets []target
	for rows.Next() {
		var t target
		if err := rows.Scan(&t.id, &t.key); err != nil {
			rows.Close()
			return 0, err
		}
		targets = append(targets, t)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}

	removed := 0
	for _, t := range targets {
		if err := s.Blobs.Delete(t.key); err != nil {
			log.Printf("retention: blob delete %s: %v", t.key, err)
			continue
		}
		if _, err := s.DB.ExecContext(ctx, `DELETE FROM uploads WHERE id=$1`, t.id); err != nil {
			return removed, err
		}
		removed++
		sweptUploads.Inc()
	}
	return removed, nil
}
