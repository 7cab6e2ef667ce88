package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"studybuddy/internal/app"
	"studybuddy/internal/transport/http/response"
)

type UploadHandler struct {
	rag      *app.RAGService
	maxBytes int64
}

func NewUploadHandler(rag *app.RAGService, maxBytes int64) *UploadHandler {
	return &UploadHandler{rag: rag, maxBytes: maxBytes}
}

// Upload replaces the whole index with the uploaded file. Concurrent uploads
// are not serialised; the last writer's chunks may mix with another's.
func (h *UploadHandler) Upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "No file uploaded")
		return
	}
	if h.maxBytes > 0 && file.Size > h.maxBytes {
		response.Error(c, http.StatusBadRequest, fmt.Sprintf("File too large (max %d MB)", h.maxBytes>>20))
		return
	}
	if !app.SupportedExtension(file.Filename) {
		response.Error(c, http.StatusBadRequest, "Unsupported file type")
		return
	}

	f, err := file.Open()
	if err != nil {
		writeError(c, fmt.Errorf("open uploaded file failed: %w", err))
		return
	}
	defer f.Close()

	doc, err := app.LoadDocument(file.Filename, f)
	if err != nil {
		writeError(c, err)
		return
	}
	result, err := h.rag.ReplaceIndex(c.Request.Context(), doc)
	if err != nil {
		writeError(c, err)
		return
	}

	response.OK(c, gin.H{
		"status":      fmt.Sprintf("Reset index and uploaded %d chunks", result.ChunkCount),
		"document_id": result.DocumentIDs[0],
		"chunks":      result.ChunkCount,
	})
}
