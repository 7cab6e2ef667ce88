package embedding

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

const (
	tokenCLS = "[CLS]"
	tokenSEP = "[SEP]"
	tokenUNK = "[UNK]"

	maxWordRunes = 100
)

// WordPiece is the uncased BERT tokenizer used by MiniLM sentence models.
type WordPiece struct {
	vocab map[string]int64
	cls   int64
	sep   int64
	unk   int64
}

// LoadVocab reads a vocab.txt file: one token per line, id = line number.
func LoadVocab(r io.Reader) (*WordPiece, error) {
	vocab := make(map[string]int64)
	sc := bufio.NewScanner(r)
	var id int64
	for sc.Scan() {
		tok := strings.TrimRight(sc.Text(), "\r")
		if _, dup := vocab[tok]; !dup {
			vocab[tok] = id
		}
		id++
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read vocab failed: %w", err)
	}

	wp := &WordPiece{vocab: vocab}
	for tok, dst := range map[string]*int64{tokenCLS: &wp.cls, tokenSEP: &wp.sep, tokenUNK: &wp.unk} {
		v, ok := vocab[tok]
		if !ok {
			return nil, fmt.Errorf("vocab has no %s token", tok)
		}
		*dst = v
	}
	return wp, nil
}

// Encode returns the token ids of text wrapped in [CLS] ... [SEP] and cut to
// at most maxTokens ids.
func (wp *WordPiece) Encode(text string, maxTokens int) []int64 {
	if maxTokens < 2 {
		maxTokens = 2
	}
	ids := []int64{wp.cls}
	for _, word := range basicTokenize(text) {
		for _, id := range wp.wordPieces(word) {
			if len(ids) == maxTokens-1 {
				return append(ids, wp.sep)
			}
			ids = append(ids, id)
		}
	}
	return append(ids, wp.sep)
}

func (wp *WordPiece) wordPieces(word string) []int64 {
	runes := []rune(word)
	if len(runes) > maxWordRunes {
		return []int64{wp.unk}
	}

	var out []int64
	for start := 0; start < len(runes); {
		end := len(runes)
		var id int64 = -1
		for ; end > start; end-- {
			piece := string(runes[start:end])
			if start > 0 {
				piece = "##" + piece
			}
			if v, ok := wp.vocab[piece]; ok {
				id = v
				break
			}
		}
		if id < 0 {
			return []int64{wp.unk}
		}
		out = append(out, id)
		start = end
	}
	return out
}

// basicTokenize lower-cases, strips accents, and splits on whitespace,
// punctuation and CJK characters.
func basicTokenize(text string) []string {
	var b strings.Builder
	for _, r := range norm.NFD.String(strings.ToLower(text)) {
		switch {
		case r == 0 || r == unicode.ReplacementChar:
			continue
		case unicode.Is(unicode.Mn, r):
			continue
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		case unicode.IsControl(r):
			continue
		case isPunct(r) || unicode.Is(unicode.Han, r):
			b.WriteRune(' ')
			b.WriteRune(r)
			b.WriteRune(' ')
		default:
			b.WriteRune(r)
		}
	}
	return strings.Fields(b.String())
}

func isPunct(r rune) bool {
	if (r >= 33 && r <= 47) || (r >= 58 && r <= 64) || (r >= 91 && r <= 96) || (r >= 123 && r <= 126) {
		return true
	}
	return unicode.IsPunct(r)
}
