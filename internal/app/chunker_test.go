package app

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func words(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("w%d", i)
	}
	return out
}

func TestChunkTextEmpty(t *testing.T) {
	assert.Empty(t, ChunkText("", 200))
	assert.Empty(t, ChunkText(" \n\t  ", 200))
}

func TestChunkTextCounts(t *testing.T) {
	cases := []struct {
		n, window, want int
	}{
		{1, 200, 1},
		{200, 200, 1},
		{201, 200, 2},
		{450, 200, 3},
		{10, 3, 4},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprintf("%d_words_window_%d", tc.n, tc.window), func(t *testing.T) {
			chunks := ChunkText(strings.Join(words(tc.n), " "), tc.window)
			require.Len(t, chunks, tc.want)
			for i, c := range chunks[:len(chunks)-1] {
				assert.Len(t, strings.Fields(c), tc.window, "chunk %d", i)
			}
			assert.LessOrEqual(t, len(strings.Fields(chunks[len(chunks)-1])), tc.window)
		})
	}
}

func TestChunkTextPreservesTokenSequence(t *testing.T) {
	text := "  The mitochondria\tis the\n\npowerhouse   of the cell.  "
	chunks := ChunkText(text, 2)

	assert.Equal(t, []string{"The mitochondria", "is the", "powerhouse of", "the cell."}, chunks)
	assert.Equal(t, strings.Fields(text), strings.Fields(strings.Join(chunks, " ")))
}

func TestChunkTextDefaultWindow(t *testing.T) {
	chunks := ChunkText(strings.Join(words(450), " "), 0)
	assert.Len(t, chunks, 3)
}
