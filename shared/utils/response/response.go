package response

import (
	"github.com/gin-gonic/gin"

	"taskforge-backend/shared/utils/apperror"
)

// Envelope is the response format shared by every endpoint.
type Envelope struct {
	Success    bool        `json:"success"`
	StatusCode int         `json:"statusCode"`
	Message    string      `json:"message,omitempty"`
	Data       interface{} `json:"data,omitempty"`
	Error      interface{} `json:"error,omitempty"`
}

// Success writes a success envelope with the given status, message and payload.
func Success(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, Envelope{
		Success:    true,
		StatusCode: statusCode,
		Message:    message,
		Data:       data,
	})
}

// Error maps err through the error taxonomy and writes a failure envelope.
func Error(c *gin.Context, err error) {
	appErr := apperror.From(err)
	c.JSON(appErr.StatusCode, Envelope{
		Success:    false,
		StatusCode: appErr.StatusCode,
		Message:    appErr.Message,
		Error:      appErr.Details,
	})
}

// AbortError writes a failure envelope and aborts the middleware chain.
func AbortError(c *gin.Context, err error) {
	Error(c, err)
	c.Abort()
}
