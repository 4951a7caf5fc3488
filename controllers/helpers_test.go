package controllers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/solarhub/solarhub-api/middleware"
	"github.com/solarhub/solarhub-api/models"
)

// mockAuthMiddleware stands in for token validation and attaches user to the request
func mockAuthMiddleware(user *models.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		if user != nil {
			middleware.SetCurrentUser(c, user)
		}
		c.Next()
	}
}

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

// performRequest sends body as JSON and decodes the JSON response
func performRequest(t *testing.T, router *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var response map[string]interface{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response), "body: %s", w.Body.String())
	}
	return w, response
}

func errorCode(t *testing.T, response map[string]interface{}) string {
	t.Helper()
	errBody, ok := response["error"].(map[string]interface{})
	require.True(t, ok, "response has no error body: %v", response)
	code, _ := errBody["code"].(string)
	return code
}
