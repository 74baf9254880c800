package http

import (
	"bytes"
	"database/sql"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	authmw "github.com/examforge/mcq-portal/internal/auth/middleware"
	"github.com/examforge/mcq-portal/internal/events"
	"github.com/examforge/mcq-portal/internal/extract"
	"github.com/examforge/mcq-portal/internal/storage"
)

// POST /extract accepts a PDF, persists it like a plain upload, then runs the
// extraction pipeline and returns the decoded text plus parsed questions.
func ExtractHandler(dbh *sql.DB, bs storage.BlobStore, ev *events.Repo, pl *extract.Pipeline, maxBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, h, ok, msg := requirePDF(w, r, maxBytes)
		if !ok {
			errorJSON(w, http.StatusBadRequest, msg)
			return
		}
		defer f.Close()

		// The pipeline needs random access, so buffer the part first.
		buf, err := io.ReadAll(f)
		if err != nil {
			errorJSON(w, http.StatusBadRequest, "could not read uploaded file")
			return
		}

		key := storage.UploadKey(h.Filename)
		if _, err := bs.Put(key, bytes.NewReader(buf)); err != nil {
			log.Printf("blob put failed: %v", err)
			errorJSON(w, http.StatusInternalServerError, "file upload failed")
			return
		}
		row := uploadRow{
			ID:        uuid.NewString(),
			FileName:  h.Filename,
			StoredKey: key,
			MimeType:  h.Header.Get("Content-Type"),
			SizeBytes: int64(len(buf)),
			CreatedAt: time.Now().Unix(),
		}
		if err := insertUpload(r, dbh, row, authmw.SubjectFromContext(r.Context())); err != nil {
			log.Printf("upload row insert failed: %v", err)
			errorJSON(w, http.StatusInternalServerError, "file upload failed")
			return
		}
		ev.Log(r.Context(), events.TypeFileUploaded, key, row)

		res, err := pl.Run(r.Context(), bytes.NewReader(buf), int64(len(buf)))
		switch {
		case errors.Is(err, extract.ErrDecode):
			errorJSON(w, http.StatusBadRequest, "could not read PDF content")
			return
		case errors.Is(err, extract.ErrUpstream):
			errorJSON(w, http.StatusBadGateway, "question generation failed")
			return
		case err != nil:
			log.Printf("extraction failed: %v", err)
			errorJSON(w, http.StatusInternalServerError, "extraction failed")
			return
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"filename":  h.Filename,
			"key":       key,
			"text":      res.Text,
			"raw":       res.Raw,
			"questions": res.Questions,
			"parse":     res.Parse,
		})
	}
}
