package ingest

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ErrExtraction marks a failure to extract text from uploaded bytes.
var ErrExtraction = errors.New("text extraction failed")

// Extractor turns raw uploaded bytes into full text and a page count.
type Extractor interface {
	Extract(data []byte) (text string, pageCount int, err error)
}

// PlainTextExtractor extracts UTF-8 text documents. Pages are
// separated by form feeds; a document without form feeds is one page.
type PlainTextExtractor struct{}

// NewPlainTextExtractor creates a plain-text extractor.
func NewPlainTextExtractor() *PlainTextExtractor {
	return &PlainTextExtractor{}
}

// Extract validates and returns the document text with its page count.
func (e *PlainTextExtractor) Extract(data []byte) (string, int, error) {
	if len(data) == 0 {
		return "", 0, fmt.Errorf("%w: empty input", ErrExtraction)
	}
	if !utf8.Valid(data) {
		return "", 0, fmt.Errorf("%w: input is not valid UTF-8", ErrExtraction)
	}

	text := string(data)
	pages := strings.Count(text, "\f") + 1
	text = strings.TrimSpace(strings.ReplaceAll(text, "\f", "\n"))
	return text, pages, nil
}
