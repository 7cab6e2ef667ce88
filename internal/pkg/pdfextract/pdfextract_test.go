package pdfextract

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractPagesEmptyInput(t *testing.T) {
	pages, err := ExtractPages(bytes.NewReader(nil))
	require.NoError(t, err)
	assert.Empty(t, pages)
}

func TestExtractPagesRejectsNonPDF(t *testing.T) {
	_, err := ExtractPages(strings.NewReader("plain text, not a pdf"))
	assert.Error(t, err)
}
