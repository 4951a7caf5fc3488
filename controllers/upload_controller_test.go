package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/solarhub/solarhub-api/services"
	"github.com/solarhub/solarhub-api/testutil"
)

func uploadRequest(t *testing.T, path, field, filename string, content []byte) *http.Request {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if field != "" {
		part, err := writer.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestGetImage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := services.NewMockObjectStore()
	require.NoError(t, store.Put(context.Background(), "products/1_panel.png", "image/png", strings.NewReader("png")))

	router := gin.New()
	router.GET("/images/*key", NewImageController(services.NewImageService(store, zap.NewNop())).GetImage)

	t.Run("Redirects to a signed link", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/images/products/1_panel.png", nil))

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "private, max-age=300", w.Header().Get("Cache-Control"))
		assert.Contains(t, w.Header().Get("Location"), "products/1_panel.png")
	})

	t.Run("Rejects keys that are not images", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/images/products/notes.txt", nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestUploadProductImage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := testutil.NewTestDB(t)
	admin := testutil.CreateAdmin(t, db, "admin@example.com")
	product := testutil.CreateProduct(t, db, "Panel", "100.00", 5)
	store := services.NewMockObjectStore()
	controller := NewProductController(
		services.NewProductService(db, zap.NewNop()),
		services.NewImageService(store, zap.NewNop()),
	)

	router := gin.New()
	router.POST("/products/:id/images", mockAuthMiddleware(admin), controller.UploadImage)
	path := "/products/" + product.ID.String() + "/images"

	tests := []struct {
		name           string
		path           string
		field          string
		filename       string
		expectedStatus int
		checkResponse  func(t *testing.T, data map[string]interface{})
	}{
		{
			name:           "First upload becomes the main image",
			path:           path,
			field:          "image",
			filename:       "front.png",
			expectedStatus: http.StatusOK,
			checkResponse: func(t *testing.T, data map[string]interface{}) {
				url := data["imageUrl"].(string)
				assert.True(t, strings.HasPrefix(url, services.ImagePathPrefix+"products/"), url)
				assert.True(t, store.Exists(strings.TrimPrefix(url, services.ImagePathPrefix)))
			},
		},
		{
			name:           "Later uploads are additional images",
			path:           path,
			field:          "image",
			filename:       "side.jpg",
			expectedStatus: http.StatusOK,
			checkResponse: func(t *testing.T, data map[string]interface{}) {
				assert.Len(t, data["additionalImages"], 1)
			},
		},
		{
			name:           "Missing file",
			path:           path,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Unsupported format",
			path:           path,
			field:          "image",
			filename:       "notes.txt",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Unknown product",
			path:           "/products/" + uuid.New().String() + "/images",
			field:          "image",
			filename:       "front.png",
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, uploadRequest(t, tt.path, tt.field, tt.filename, []byte("image-bytes")))

			assert.Equal(t, tt.expectedStatus, w.Code, "body: %s", w.Body.String())
			if tt.checkResponse != nil {
				var response map[string]interface{}
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
				tt.checkResponse(t, response["data"].(map[string]interface{}))
			}
		})
	}

	t.Run("Storage failure", func(t *testing.T) {
		store.PutErr = errors.New("bucket unavailable")
		defer func() { store.PutErr = nil }()

		w := httptest.NewRecorder()
		router.ServeHTTP(w, uploadRequest(t, path, "image", "front.png", []byte("image-bytes")))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "bucket unavailable")
	})
}

func TestUploadWithoutStorage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := testutil.NewTestDB(t)
	product := testutil.CreateProduct(t, db, "Panel", "100.00", 5)
	controller := NewProductController(services.NewProductService(db, zap.NewNop()), nil)

	router := gin.New()
	router.POST("/products/:id/images", controller.UploadImage)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, uploadRequest(t, "/products/"+product.ID.String()+"/images", "image", "front.png", []byte("x")))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Image storage is not configured")
}
