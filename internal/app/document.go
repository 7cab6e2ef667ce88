package app

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"studybuddy/internal/pkg/pdfextract"
)

// Document is a source text to index. When Pages is set each page is chunked
// on its own and Text is ignored.
type Document struct {
	ID    string
	Name  string
	Text  string
	Pages []string
}

// SupportedExtension reports whether LoadDocument can read a file with this name.
func SupportedExtension(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf", ".txt", ".md":
		return true
	}
	return false
}

// LoadDocument reads a PDF page by page or a UTF-8 text/markdown file.
func LoadDocument(name string, r io.Reader) (Document, error) {
	doc := Document{Name: filepath.Base(name)}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		pages, err := pdfextract.ExtractPages(r)
		if err != nil {
			return Document{}, fmt.Errorf("extract pdf text failed: %w", err)
		}
		doc.Pages = pages
	case ".txt", ".md":
		b, err := io.ReadAll(r)
		if err != nil {
			return Document{}, fmt.Errorf("read text file failed: %w", err)
		}
		if !utf8.Valid(b) {
			return Document{}, fmt.Errorf("%w: %s is not valid UTF-8", ErrInvalidInput, doc.Name)
		}
		doc.Text = string(b)
	default:
		return Document{}, ErrUnsupportedFile
	}
	return doc, nil
}

func (d Document) chunks(window int) []string {
	if len(d.Pages) == 0 {
		return ChunkText(d.Text, window)
	}
	var out []string
	for _, page := range d.Pages {
		out = append(out, ChunkText(page, window)...)
	}
	return out
}
