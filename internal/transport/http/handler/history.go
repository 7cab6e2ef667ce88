package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"studybuddy/internal/model"
	"studybuddy/internal/repository"
	"studybuddy/internal/transport/http/response"
)

const ledgerDisabled = "history requires mysql.enabled"

// HistoryHandler reads the MySQL ledger. Both repositories are nil when
// MySQL is disabled.
type HistoryHandler struct {
	documents   *repository.DocumentRepository
	evaluations *repository.EvaluationRepository
}

func NewHistoryHandler(documents *repository.DocumentRepository, evaluations *repository.EvaluationRepository) *HistoryHandler {
	return &HistoryHandler{documents: documents, evaluations: evaluations}
}

func (h *HistoryHandler) Documents(c *gin.Context) {
	if h.documents == nil {
		response.Error(c, http.StatusServiceUnavailable, ledgerDisabled)
		return
	}
	docs, err := h.documents.List(c.Request.Context(), queryLimit(c))
	if err != nil {
		writeError(c, err)
		return
	}
	response.OK(c, gin.H{"documents": docs})
}

// Evaluations lists recent gradings, or all gradings of ?quiz_id.
func (h *HistoryHandler) Evaluations(c *gin.Context) {
	if h.evaluations == nil {
		response.Error(c, http.StatusServiceUnavailable, ledgerDisabled)
		return
	}

	var (
		evals []model.Evaluation
		err   error
	)
	if quizID := c.Query("quiz_id"); quizID != "" {
		evals, err = h.evaluations.ListByQuizID(c.Request.Context(), quizID)
	} else {
		evals, err = h.evaluations.ListRecent(c.Request.Context(), queryLimit(c))
	}
	if err != nil {
		writeError(c, err)
		return
	}
	response.OK(c, gin.H{"evaluations": evals})
}
