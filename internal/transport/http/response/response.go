package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"studybuddy/internal/llmjson"
)

// ErrorBody is the error shape of every endpoint.
type ErrorBody struct {
	Error string `json:"error"`
}

// ParseErrorBody is returned when the model answer could not be parsed. Raw
// is always present, even when the model said nothing.
type ParseErrorBody struct {
	Error string `json:"error"`
	Raw   string `json:"raw"`
	Fixed string `json:"fixed,omitempty"`
}

func OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

func Error(c *gin.Context, httpStatus int, message string) {
	c.AbortWithStatusJSON(httpStatus, ErrorBody{Error: message})
}

// ServerError answers 500, exposing the model output when err is a
// *llmjson.ParseError.
func ServerError(c *gin.Context, err error) {
	var pe *llmjson.ParseError
	if errors.As(err, &pe) {
		body := ParseErrorBody{Error: string(pe.Reason), Raw: pe.Raw}
		if pe.Reason != llmjson.ReasonNoJSON {
			body.Fixed = pe.Extracted
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, body)
		return
	}
	Error(c, http.StatusInternalServerError, err.Error())
}
