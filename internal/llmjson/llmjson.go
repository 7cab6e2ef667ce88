// Package llmjson pulls structured data out of free-form LLM answers.
package llmjson

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

type Reason string

const (
	// ReasonNoJSON: nothing shaped like the expected JSON value was found.
	ReasonNoJSON Reason = "AI did not return valid JSON"
	// ReasonInvalidJSON: a candidate was found but did not decode.
	ReasonInvalidJSON Reason = "JSON parsing failed"
	// ReasonSchema: the JSON decoded but misses required fields.
	ReasonSchema Reason = "AI returned JSON with an unexpected shape"
)

const (
	TypeMCQ   = "mcq"
	TypeShort = "short"
)

var (
	arrayPattern  = regexp.MustCompile(`(?s)\[.*\]`)
	objectPattern = regexp.MustCompile(`(?s)\{.*\}`)
)

type ParseError struct {
	Reason Reason
	// Raw is the full model output.
	Raw string
	// Extracted is the candidate JSON text, empty for ReasonNoJSON.
	Extracted string
	Err       error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.Err)
	}
	return string(e.Reason)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

type QuizItem struct {
	Question string   `json:"question"`
	Type     string   `json:"type"`
	Choices  []string `json:"choices,omitempty"`
	Answer   string   `json:"answer"`
}

// rawQuizItem also accepts "options", which models often use for choices.
type rawQuizItem struct {
	Question string   `json:"question"`
	Type     string   `json:"type"`
	Choices  []string `json:"choices"`
	Options  []string `json:"options"`
	Answer   any      `json:"answer"`
}

// ParseQuiz extracts the outermost [...] span of raw and decodes it into quiz
// items. Item types are normalised to "mcq" or "short".
func ParseQuiz(raw string) ([]QuizItem, error) {
	extracted := arrayPattern.FindString(raw)
	if extracted == "" {
		return nil, &ParseError{Reason: ReasonNoJSON, Raw: raw}
	}

	var items []rawQuizItem
	if err := json.Unmarshal([]byte(extracted), &items); err != nil {
		return nil, &ParseError{Reason: ReasonInvalidJSON, Raw: raw, Extracted: extracted, Err: err}
	}
	if len(items) == 0 {
		return nil, &ParseError{Reason: ReasonSchema, Raw: raw, Extracted: extracted, Err: fmt.Errorf("quiz is empty")}
	}

	quiz := make([]QuizItem, 0, len(items))
	for i, it := range items {
		item := QuizItem{
			Question: strings.TrimSpace(it.Question),
			Type:     strings.ToLower(strings.TrimSpace(it.Type)),
			Choices:  it.Choices,
			Answer:   answerString(it.Answer),
		}
		if len(item.Choices) == 0 {
			item.Choices = it.Options
		}
		if item.Question == "" || item.Answer == "" {
			return nil, &ParseError{Reason: ReasonSchema, Raw: raw, Extracted: extracted,
				Err: fmt.Errorf("item %d needs a question and an answer", i)}
		}
		switch item.Type {
		case TypeMCQ, TypeShort:
		case "multiple_choice", "multiple-choice", "multiple choice":
			item.Type = TypeMCQ
		default:
			item.Type = TypeShort
			if len(item.Choices) > 0 {
				item.Type = TypeMCQ
			}
		}
		quiz = append(quiz, item)
	}
	return quiz, nil
}

func answerString(v any) string {
	switch a := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(a)
	default:
		return strings.TrimSpace(fmt.Sprint(a))
	}
}

type Evaluation struct {
	Score           float64  `json:"score"`
	Feedback        string   `json:"feedback"`
	Strengths       []string `json:"strengths"`
	Weaknesses      []string `json:"weaknesses"`
	CorrectedAnswer string   `json:"corrected_answer"`
}

// ParseEvaluation extracts the outermost {...} span of raw and decodes a
// grading result. The score must lie within 0..100.
func ParseEvaluation(raw string) (*Evaluation, error) {
	extracted := objectPattern.FindString(raw)
	if extracted == "" {
		return nil, &ParseError{Reason: ReasonNoJSON, Raw: raw}
	}

	var eval Evaluation
	if err := json.Unmarshal([]byte(extracted), &eval); err != nil {
		return nil, &ParseError{Reason: ReasonInvalidJSON, Raw: raw, Extracted: extracted, Err: err}
	}
	if eval.Score < 0 || eval.Score > 100 {
		return nil, &ParseError{Reason: ReasonSchema, Raw: raw, Extracted: extracted,
			Err: fmt.Errorf("score %v is outside 0..100", eval.Score)}
	}
	if eval.Strengths == nil {
		eval.Strengths = []string{}
	}
	if eval.Weaknesses == nil {
		eval.Weaknesses = []string{}
	}
	return &eval, nil
}
