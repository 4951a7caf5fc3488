package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/solarhub/solarhub-api/apperrors"
	"github.com/solarhub/solarhub-api/utils"
)

func TestRequestLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zap.InfoLevel)

	router := gin.New()
	router.Use(RequestLogger(zap.New(core)))
	router.GET("/ping", func(c *gin.Context) {
		Logger(c, nil).Info("handling")
		c.Status(http.StatusNoContent)
	})

	t.Run("generates a request id", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

		id := w.Header().Get(RequestIDHeader)
		assert.NotEmpty(t, id)
		handled := logs.FilterMessage("handling").All()
		require.Len(t, handled, 1)
		assert.Equal(t, id, handled[0].ContextMap()["request_id"])
	})

	t.Run("reuses the caller's request id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set(RequestIDHeader, "abc-123")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
		completed := logs.FilterMessage("Request completed").FilterField(zap.String("request_id", "abc-123")).All()
		require.Len(t, completed, 1)
		assert.EqualValues(t, http.StatusNoContent, completed[0].ContextMap()["status"])
	})
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zap.ErrorLevel)

	router := gin.New()
	router.Use(Recovery(zap.New(core)))
	router.GET("/boom", func(c *gin.Context) {
		panic("database exploded")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Server error", body["message"])
	assert.NotContains(t, w.Body.String(), "database exploded")
	assert.Equal(t, 1, logs.FilterMessage("Panic recovered").Len())
}

func TestAbortWithErrorHidesInternalCauses(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedCode   string
		expectedDetail interface{}
	}{
		{
			name:           "validation with details",
			err:            apperrors.Validation("Invalid request data").WithDetails("email is required"),
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "VALIDATION_ERROR",
			expectedDetail: "email is required",
		},
		{
			name:           "plain error becomes internal",
			err:            errors.New("pq: connection refused"),
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   "INTERNAL_ERROR",
		},
		{
			name:           "external service",
			err:            apperrors.ExternalService(errors.New("stripe: 503"), "Payment service unavailable"),
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   "EXTERNAL_SERVICE_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			AbortWithError(c, tt.err)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, c.IsAborted())
			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			errBody := body["error"].(map[string]interface{})
			assert.Equal(t, tt.expectedCode, errBody["code"])
			assert.Equal(t, tt.expectedDetail, errBody["details"])
			assert.NotContains(t, w.Body.String(), "connection refused")
			assert.NotContains(t, w.Body.String(), "503")
		})
	}
}

func TestMetrics(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Metrics())
	router.GET("/widgets/:id", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	matched := utils.RequestsTotal.WithLabelValues(http.MethodGet, "/widgets/:id", "200")
	unmatched := utils.RequestsTotal.WithLabelValues(http.MethodGet, "unmatched", "404")
	beforeMatched := promtest.ToFloat64(matched)
	beforeUnmatched := promtest.ToFloat64(unmatched)

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/widgets/1", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/widgets/2", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	assert.Equal(t, beforeMatched+2, promtest.ToFloat64(matched))
	assert.Equal(t, beforeUnmatched+1, promtest.ToFloat64(unmatched))
}
