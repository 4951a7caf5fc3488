package middleware

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/solarhub/solarhub-api/apperrors"
)

// ErrorBody is the JSON shape of every failed response
func ErrorBody(e *apperrors.Error) gin.H {
	body := gin.H{"code": e.Code()}
	if e.Details() != "" {
		body["details"] = e.Details()
	}
	return gin.H{
		"success": false,
		"message": e.Message(),
		"error":   body,
	}
}

// AbortWithError classifies err, logs server faults and writes the error body.
// Causes of server faults never reach the client.
func AbortWithError(c *gin.Context, err error) {
	appErr := apperrors.From(err)
	status := appErr.HTTPCode()
	if status >= 500 {
		Logger(c, zap.L()).Error("Request failed",
			zap.String("code", appErr.Code()),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
	}
	c.AbortWithStatusJSON(status, ErrorBody(appErr))
}
