package app

import "strings"

const DefaultChunkWords = 200

// ChunkText splits text on whitespace and regroups the words into chunks of
// at most window words joined by single spaces. Chunks do not overlap and
// keep the original word order; N words give ceil(N/window) chunks.
func ChunkText(text string, window int) []string {
	if window <= 0 {
		window = DefaultChunkWords
	}
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	chunks := make([]string, 0, (len(words)+window-1)/window)
	for start := 0; start < len(words); start += window {
		end := min(start+window, len(words))
		chunks = append(chunks, strings.Join(words[start:end], " "))
	}
	return chunks
}
