package core

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kiosk404/scrivener/pkg/errorx"
	"github.com/kiosk404/scrivener/pkg/logger"
)

// RequestIDKey is the gin context key the request-id middleware populates.
const RequestIDKey = "requestID"

// ErrResponse is the failure envelope returned by every handler.
type ErrResponse struct {
	Success   bool      `json:"success"`
	Error     ErrDetail `json:"error"`
	Timestamp string    `json:"timestamp"`
	RequestID string    `json:"requestId"`
}

// ErrDetail carries the public error code and message.
type ErrDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// WriteResponse writes either an error envelope or the success payload.
// Errors are resolved through the errorx coder registry: the coder picks the
// HTTP status, the public code string and the user-safe message, while the
// wrapped detail is included for diagnosis.
func WriteResponse(c *gin.Context, err error, data interface{}) {
	if err != nil {
		coder := errorx.ParseCoder(err)
		if coder.HTTPStatus() >= http.StatusInternalServerError {
			logger.Error("[HTTP] %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		}
		c.JSON(coder.HTTPStatus(), ErrResponse{
			Success: false,
			Error: ErrDetail{
				Code:    coder.APICode(),
				Message: coder.String(),
				Details: err.Error(),
			},
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			RequestID: c.GetString(RequestIDKey),
		})
		return
	}

	c.JSON(http.StatusOK, data)
}
