package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"studybuddy/internal/app"
	"studybuddy/internal/pkg/quizpdf"
	"studybuddy/internal/transport/http/response"
)

type StudyHandler struct {
	tutor *app.TutorService
	quiz  *app.QuizService
	eval  *app.EvalService
	study *app.StudyService
}

type ChatRequest struct {
	Question string `json:"question"`
}

type QuizRequest struct {
	Subject      string        `json:"subject"`
	NumQuestions questionCount `json:"num_questions"`
}

type EvaluateRequest struct {
	QuizID          string `json:"quiz_id"`
	QuestionIndex   int    `json:"question_index"`
	Question        string `json:"question"`
	ReferenceAnswer string `json:"reference_answer"`
	StudentAnswer   string `json:"student_answer"`
}

type StudyRequest struct {
	Question     string        `json:"question"`
	NumQuestions questionCount `json:"num_questions"`
}

// questionCount accepts a JSON number or a numeric string. Fractions are
// truncated.
type questionCount int

func (n *questionCount) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		v, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return fmt.Errorf("num_questions %q is not a number", s)
		}
		*n = questionCount(v)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("num_questions must be a number: %w", err)
	}
	*n = questionCount(int(f))
	return nil
}

func NewStudyHandler(tutor *app.TutorService, quiz *app.QuizService, eval *app.EvalService, study *app.StudyService) *StudyHandler {
	return &StudyHandler{tutor: tutor, quiz: quiz, eval: eval, study: study}
}

func (h *StudyHandler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Missing or invalid JSON body")
		return
	}
	if req.Question == "" {
		response.Error(c, http.StatusBadRequest, "question is required")
		return
	}

	answer, err := h.tutor.Answer(c.Request.Context(), req.Question)
	if err != nil {
		writeError(c, err)
		return
	}
	response.OK(c, gin.H{"answer": answer})
}

// Quiz requires a JSON object; missing fields fall back to the default
// subject and size.
func (h *StudyHandler) Quiz(c *gin.Context) {
	var req QuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Missing or invalid JSON body")
		return
	}

	quiz, err := h.quiz.Create(c.Request.Context(), req.Subject, int(req.NumQuestions))
	if err != nil {
		writeError(c, err)
		return
	}
	response.OK(c, gin.H{"quiz": quiz.Items, "quiz_id": quiz.ID})
}

func (h *StudyHandler) Evaluate(c *gin.Context) {
	var req EvaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Missing or invalid JSON body")
		return
	}

	result, err := h.eval.Grade(c.Request.Context(), app.GradeInput{
		QuizID:          req.QuizID,
		QuestionIndex:   req.QuestionIndex,
		Question:        req.Question,
		ReferenceAnswer: req.ReferenceAnswer,
		StudentAnswer:   req.StudentAnswer,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	response.OK(c, result)
}

func (h *StudyHandler) Study(c *gin.Context) {
	var req StudyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Missing or invalid JSON body")
		return
	}

	result, err := h.study.Run(c.Request.Context(), req.Question, int(req.NumQuestions))
	if err != nil {
		writeError(c, err)
		return
	}
	response.OK(c, gin.H{
		"tutor_answer": result.TutorAnswer,
		"quiz_id":      result.Quiz.ID,
		"quiz":         result.Quiz.Items,
	})
}

// QuizPDF streams a stored quiz as a worksheet; ?answers=true adds the key.
func (h *StudyHandler) QuizPDF(c *gin.Context) {
	quiz, err := h.quiz.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	withAnswers, _ := strconv.ParseBool(c.Query("answers"))
	doc, err := quizpdf.Render(quiz, quizpdf.Options{WithAnswers: withAnswers, FontPath: quizpdf.DefaultFontPath})
	if err != nil {
		writeError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="quiz-`+quiz.ID+`.pdf"`)
	c.Data(http.StatusOK, quizpdf.ContentType, doc)
}
