package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/staffing-platform/referral-matcher/pkg/core/matcher"
	"github.com/staffing-platform/referral-matcher/pkg/db"
)

const requestIDHeader = "X-Request-ID"

// apiError is a client-facing error with a fixed status code
type apiError struct {
	Code    int
	Message string
	Err     error
}

func (e *apiError) Error() string {
	return e.Message
}

func (e *apiError) Unwrap() error {
	return e.Err
}

func badRequest(message string, err error) *apiError {
	return &apiError{Code: http.StatusBadRequest, Message: message, Err: err}
}

// statusFor maps an error from the services to a status code and a safe message
func statusFor(err error) (int, string) {
	var apiErr *apiError
	var langErr *matcher.UnknownLanguageRequirementError

	switch {
	case errors.As(err, &apiErr):
		return apiErr.Code, apiErr.Message
	case errors.Is(err, db.ErrNotFound):
		return http.StatusNotFound, "Request not found"
	case errors.As(err, &langErr):
		return http.StatusUnprocessableEntity, langErr.Error()
	default:
		return http.StatusInternalServerError, "An unexpected error occurred"
	}
}

// RequestID propagates the caller's X-Request-ID or assigns a new one
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// AccessLog logs one line per request
func AccessLog(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("http_request_id", c.GetString(requestIDKey)))
	}
}

// ErrorHandler renders the last error a handler attached to the context.
// Internal details are logged, never returned.
func ErrorHandler(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		code, message := statusFor(err)
		if code >= http.StatusInternalServerError {
			logger.Error("Request failed",
				zap.String("path", c.FullPath()),
				zap.String("http_request_id", c.GetString(requestIDKey)),
				zap.Error(err))
		}
		Error(c, code, message, nil)
	}
}
