package extract

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/ledongthuc/pdf"
)

// ErrDecode covers any failure to turn the uploaded bytes into text.
var ErrDecode = errors.New("pdf decode failed")

// DecodeText extracts the plain text of a PDF. The pdf library panics on
// some malformed files, so the recover is part of the contract here.
func DecodeText(r io.ReaderAt, size int64) (text string, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%w: %v", ErrDecode, p)
		}
	}()

	doc, err := pdf.NewReader(r, size)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecode, err)
	}
	plain, err := doc.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecode, err)
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return buf.String(), nil
}

// Truncate bounds the text sent upstream. A fixed prefix cut, not
// sentence-aware.
func Truncate(text string, maxChars int) string {
	if maxChars <= 0 || len(text) <= maxChars {
		return text
	}
	return text[:maxChars]
}
