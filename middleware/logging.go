package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/solarhub/solarhub-api/apperrors"
)

const (
	// RequestIDHeader carries the request id back to the client
	RequestIDHeader = "X-Request-ID"

	requestIDKey = "request_id"
	loggerKey    = "logger"
)

// RequestLogger tags every request with an id and logs its start and completion
func RequestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set(requestIDKey, requestID)
		c.Header(RequestIDHeader, requestID)

		requestLogger := log.With(zap.String("request_id", requestID))
		c.Set(loggerKey, requestLogger)

		start := time.Now()
		requestLogger.Debug("Request started",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("client_ip", c.ClientIP()),
		)

		c.Next()

		requestLogger.Info("Request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.Int("size", c.Writer.Size()),
		)
	}
}

// Logger returns the request-scoped logger, or fallback outside a logged request
func Logger(c *gin.Context, fallback *zap.Logger) *zap.Logger {
	if value, ok := c.Get(loggerKey); ok {
		if l, ok := value.(*zap.Logger); ok {
			return l
		}
	}
	if fallback == nil {
		return zap.NewNop()
	}
	return fallback
}

// Recovery turns a panic into a 500 response with the standard error body
func Recovery(log *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		Logger(c, log).Error("Panic recovered",
			zap.Any("error", recovered),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Stack("stack"),
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorBody(apperrors.Internal(nil)))
	})
}
