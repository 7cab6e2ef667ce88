// Package prompt builds the chat messages sent to the LLM. The functions are
// pure: they only format their inputs.
package prompt

import (
	"fmt"
	"strings"

	"studybuddy/internal/ai"
	"studybuddy/internal/vectorstore"
)

const (
	TutorTemperature    = 0.2
	QuestionTemperature = 0.3
	EvalTemperature     = 0.0

	// NoContext replaces the context block when retrieval found nothing.
	NoContext = "No relevant context found."

	provenanceHeader  = "\n\n-- Sources (top hits) --\n"
	provenanceHits    = 4
	provenancePreview = 200
)

const tutorSystem = "You are a helpful, precise study tutor. Use the provided context to answer the student. " +
	"If the context does not contain the answer, say you don't know and offer next steps."

const questionSystem = "You are a quiz generator. Create a mix of MCQ and short-answer questions based on the context. " +
	"Output ONLY a valid JSON array. Each item: " +
	`{"question": "...", "type": "mcq"|"short", "choices": ["...","..."] (if mcq), "answer": "..."}`

const evalSystem = "You are an expert teacher. Grade the student's answer on a 0-100 scale, give concise feedback, " +
	"list strengths and weaknesses, and provide a corrected model answer. " +
	"Return ONLY a valid JSON object with keys: " +
	`{"score": number, "feedback": "...", "strengths": ["..."], "weaknesses": ["..."], "corrected_answer": "..."}`

// ContextTexts returns the non-empty hit texts in hit order.
func ContextTexts(hits []vectorstore.Hit) []string {
	texts := make([]string, 0, len(hits))
	for _, h := range hits {
		if h.Text != "" {
			texts = append(texts, h.Text)
		}
	}
	return texts
}

func Tutor(question string, hits []vectorstore.Hit) []ai.ChatMessage {
	context := strings.Join(ContextTexts(hits), "\n\n")
	if context == "" {
		context = NoContext
	}
	return []ai.ChatMessage{
		{Role: ai.RoleSystem, Content: tutorSystem},
		{Role: ai.RoleUser, Content: fmt.Sprintf("Question:\n%s\n\nContext:\n%s", question, context)},
	}
}

// Provenance renders a preview of up to four hit texts to append to a tutor
// answer, or "" when no hit has text.
func Provenance(hits []vectorstore.Hit) string {
	texts := ContextTexts(hits)
	if len(texts) == 0 {
		return ""
	}
	if len(texts) > provenanceHits {
		texts = texts[:provenanceHits]
	}

	var b strings.Builder
	b.WriteString(provenanceHeader)
	for i, text := range texts {
		clean := []rune(strings.ReplaceAll(text, "\n", " "))
		if len(clean) > provenancePreview {
			clean = clean[:provenancePreview]
		}
		fmt.Fprintf(&b, "[%d] %s...\n", i+1, string(clean))
	}
	return b.String()
}

// Question asks for count quiz items about topic. The topic itself stands in
// for the context when retrieval found nothing.
func Question(topic string, count int, hits []vectorstore.Hit) []ai.ChatMessage {
	context := strings.Join(ContextTexts(hits), "\n\n")
	if context == "" {
		context = topic
	}
	user := fmt.Sprintf("Generate %d quiz questions about: %s.\n"+
		"Use the context below.\nContext:\n%s\n\n"+
		"Remember: Output ONLY JSON (no explanation).", count, topic, context)
	return []ai.ChatMessage{
		{Role: ai.RoleSystem, Content: questionSystem},
		{Role: ai.RoleUser, Content: user},
	}
}

func Eval(question, reference, studentAnswer string) []ai.ChatMessage {
	user := fmt.Sprintf("Question: %s\n\nReference answer: %s\n\nStudent answer: %s\n\n"+
		"Return ONLY JSON; no extra text.", question, reference, studentAnswer)
	return []ai.ChatMessage{
		{Role: ai.RoleSystem, Content: evalSystem},
		{Role: ai.RoleUser, Content: user},
	}
}
