package http

import (
	"database/sql"
	"errors"
	"log"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	authmw "github.com/examforge/mcq-portal/internal/auth/middleware"
	"github.com/examforge/mcq-portal/internal/events"
	"github.com/examforge/mcq-portal/internal/storage"
)

type uploadRow struct {
	ID        string `json:"id"`
	FileName  string `json:"file_name"`
	StoredKey string `json:"stored_key"`
	MimeType  string `json:"mime_type"`
	SizeBytes int64  `json:"size_bytes"`
	CreatedAt int64  `json:"created_at"`
}

// requirePDF validates the multipart file part. MIME is taken from the part
// header, a declared and spoofable signal; content sniffing is out of scope.
func requirePDF(w http.ResponseWriter, r *http.Request, maxBytes int64) (multipart.File, *multipart.FileHeader, bool, string) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	f, h, err := r.FormFile("file")
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return nil, nil, false, "file too large"
		}
		return nil, nil, false, "no file uploaded"
	}
	ct := h.Header.Get("Content-Type")
	if !strings.Contains(ct, "pdf") {
		f.Close()
		return nil, nil, false, "invalid file type, only PDF files are allowed"
	}
	return f, h, true, ""
}

// POST /upload
func UploadHandler(dbh *sql.DB, bs storage.BlobStore, ev *events.Repo, maxBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, h, ok, msg := requirePDF(w, r, maxBytes)
		if !ok {
			errorJSON(w, http.StatusBadRequest, msg)
			return
		}
		defer f.Close()

		key := storage.UploadKey(h.Filename)
		if _, err := bs.Put(key, f); err != nil {
			log.Printf("blob put failed: %v", err)
			errorJSON(w, http.StatusInternalServerError, "file upload failed")
			return
		}

		row := uploadRow{
			ID:        uuid.NewString(),
			FileName:  h.Filename,
			StoredKey: key,
			MimeType:  h.Header.Get("Content-Type"),
			SizeBytes: h.Size,
			CreatedAt: time.Now().Unix(),
		}
		uploader := authmw.SubjectFromContext(r.Context())
		if err := insertUpload(r, dbh, row, uploader); err != nil {
			log.Printf("upload row insert failed: %v", err)
			errorJSON(w, http.StatusInternalServerError, "file upload failed")
			return
		}
		ev.Log(r.Context(), events.TypeFileUploaded, key, row)

		writeJSON(w, http.StatusOK, map[string]string{"filename": row.FileName, "key": key})
	}
}

func insertUpload(r *http.Request, dbh *sql.DB, row uploadRow, uploader string) error {
	_, err := dbh.ExecContext(r.Context(),
		`INSERT INTO uploads (id,file_name,stored_key,mime_type,size_bytes,uploaded_by,created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		row.ID, row.FileName, row.StoredKey, row.MimeType, row.SizeBytes, uploader, row.CreatedAt)
	return err
}

// GET /uploads returns the caller's recent uploads, newest first.
func ListUploadsHandler(dbh *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uploader := authmw.SubjectFromContext(r.Context())
		rows, err := dbh.QueryContext(r.Context(),
			`SELECT id,file_name,stored_key,mime_type,size_bytes,created_at
			 FROM uploads WHERE uploaded_by=$1 ORDER BY created_at DESC LIMIT 50`, uploader)
		if err != nil {
			log.Printf("uploads list failed: %v", err)
			errorJSON(w, http.StatusInternalServerError, "could not list uploads")
			return
		}
		defer rows.Close()
		out := []uploadRow{}
		for rows.Next() {
			var u uploadRow
			if err := rows.Scan(&u.ID, &u.FileName, &u.StoredKey, &u.MimeType, &u.SizeBytes, &u.CreatedAt); err != nil {
				log.Printf("uploads scan failed: %v", err)
				errorJSON(w, http.StatusInternalServerError, "could not list uploads")
				return
			}
			out = append(out, u)
		}
		writeJSON(w, http.StatusOK, out)
	}
}
