package storage

import "io"

// BlobStore is the upload persistence surface. Handlers write through Put
// and the retention sweeper removes through Delete; Get serves re-reads of a
// stored bank, and SignedURL is reserved for handing out download links (the
// fs implementation returns a local "file://..." link for dev use).
type BlobStore interface {
	Put(key string, r io.Reader) (string, error) // returns canonical key
	Get(key string) (io.ReadCloser, error)
	Delete(key string) error
	SignedURL(key string) (string, error)
}
