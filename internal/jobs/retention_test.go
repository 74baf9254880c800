package jobs

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/examforge/mcq-portal/internal/db"
	"github.com/examforge/mcq-portal/internal/storage"
)

func TestSweepOnceRemovesOnlyExpiredUploads(t *testing.T) {
	ctx := context.Background()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	dbh, err := db.Open(ctx, db.DriverSQLite, dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer dbh.Close()

	blobs, err := storage.NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("fs store: %v", err)
	}

	put := func(id, key string, age time.Duration) {
		if _, err := blobs.Put(key, strings.NewReader("content")); err != nil {
			t.Fatalf("put %s: %v", key, err)
		}
		_, err := dbh.ExecContext(ctx,
			`INSERT INTO uploads (id,file_name,stored_key,mime_type,size_bytes,uploaded_by,created_at)
			 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			id, key+".pdf", key, "application/pdf", 7, "u1", time.Now().Add(-age).Unix())
		if err != nil {
			t.Fatalf("insert %s: %v", id, err)
		}
	}
	put("old", "old-key", 48*time.Hour)
	put("fresh", "fresh-key", time.Hour)

	s := &RetentionSweeper{DB: dbh, Blobs: blobs, Window: 24 * time.Hour}
	n, err := s.SweepOnce(ctx)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if n != 1 {
		t.Fatalf("swept %d uploads, want 1", n)
	}

	var count int
	if err := dbh.QueryRowContext(ctx, `SELECT COUNT(*) FROM uploads`).Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("%d rows remain, want 1", count)
	}
	if _, err := blobs.Get("old-key"); err == nil {
		t.Fatal("expired blob still readable")
	}
	if rc, err := blobs.Get("fresh-key"); err != nil {
		t.Fatalf("fresh blob gone: %v", err)
	} else {
		rc.Close()
	}
}

func TestRunDisabledWithoutWindow(t *testing.T) {
	s := &RetentionSweeper{Window: 0}
	done := make(chan struct{})
	go func() {
		s.Run(context.Background())
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not return with a zero window")
	}
}
