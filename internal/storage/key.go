package storage

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	keyMu     sync.Mutex
	keyMilli  int64
	keyIssued map[string]bool
)

// UploadKey derives the stored name for an uploaded file:
// <unix-millis>-<sanitized original name>. The wall-clock prefix keeps keys
// sortable and collision-free in practice; every base issued within the
// current millisecond is remembered, and a repeat of any of them gets a
// short random suffix, so two stored paths are never equal.
func UploadKey(originalName string) string {
	name := SanitizeFilename(originalName)

	keyMu.Lock()
	defer keyMu.Unlock()
	now := time.Now().UnixMilli()
	if now != keyMilli {
		keyMilli = now
		keyIssued = map[string]bool{}
	}
	base := fmt.Sprintf("%d-%s", now, name)
	if keyIssued[base] {
		return fmt.Sprintf("%d-%s-%s", now, uuid.NewString()[:8], name)
	}
	keyIssued[base] = true
	return base
}

// SanitizeFilename strips any path components and characters that have no
// business in a stored key.
func SanitizeFilename(name string) string {
	name = filepath.Base(strings.TrimSpace(name))
	if name == "." || name == string(filepath.Separator) || name == "" {
		return "upload.pdf"
	}
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}
