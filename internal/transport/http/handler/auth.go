package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"studybuddy/internal/app"
	"studybuddy/internal/transport/http/response"
)

type AuthHandler struct {
	auth *app.AuthService
}

type TokenRequest struct {
	Password string `json:"password" binding:"required"`
}

func NewAuthHandler(auth *app.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

func (h *AuthHandler) Token(c *gin.Context) {
	var req TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "password is required")
		return
	}

	token, err := h.auth.IssueToken(req.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	response.OK(c, token)
}
