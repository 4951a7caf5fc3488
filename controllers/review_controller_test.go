package controllers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/solarhub/solarhub-api/models"
	"github.com/solarhub/solarhub-api/services"
	"github.com/solarhub/solarhub-api/testutil"
)

func reviewRouter(db *gorm.DB, user *models.User) *gin.Engine {
	reviews := NewReviewController(services.NewReviewService(db, zap.NewNop()))
	products := NewProductController(services.NewProductService(db, zap.NewNop()), nil)

	router := newTestRouter()
	auth := mockAuthMiddleware(user)
	router.GET("/products/:id", products.GetProduct)
	router.GET("/reviews/product/:id", reviews.ListProductReviews)
	router.GET("/reviews/service/:id", reviews.ListServiceReviews)
	router.POST("/reviews", auth, reviews.CreateReview)
	router.GET("/reviews/myreviews", auth, reviews.ListMyReviews)
	router.PUT("/reviews/:id", auth, reviews.UpdateReview)
	router.DELETE("/reviews/:id", auth, reviews.DeleteReview)
	router.GET("/reviews", auth, reviews.ListReviews)
	router.PUT("/reviews/:id/approve", auth, reviews.ApproveReview)
	return router
}

func productRatings(t *testing.T, router *gin.Engine, productID uuid.UUID) map[string]interface{} {
	t.Helper()
	w, response := performRequest(t, router, http.MethodGet, "/products/"+productID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	return response["data"].(map[string]interface{})["ratings"].(map[string]interface{})
}

func TestCreateReview(t *testing.T) {
	db := testutil.NewTestDB(t)
	customer := testutil.CreateUser(t, db, "customer@example.com")
	product := testutil.CreateProduct(t, db, "Panel", "100.00", 5)
	service := testutil.CreateService(t, db, "Install", "500.00")
	router := reviewRouter(db, customer)

	tests := []struct {
		name           string
		requestBody    map[string]interface{}
		expectedStatus int
		expectedMsg    string
	}{
		{
			name:           "Review a product",
			requestBody:    map[string]interface{}{"productId": product.ID, "rating": 4, "comment": "Solid output"},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "Review a service",
			requestBody:    map[string]interface{}{"serviceId": service.ID, "rating": 5, "comment": "Tidy crew"},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "Second review of the same product",
			requestBody:    map[string]interface{}{"productId": product.ID, "rating": 2, "comment": "Changed my mind"},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "You have already reviewed this product",
		},
		{
			name:           "Both targets",
			requestBody:    map[string]interface{}{"productId": product.ID, "serviceId": service.ID, "rating": 4, "comment": "Both"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "No target",
			requestBody:    map[string]interface{}{"rating": 4, "comment": "Nothing"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Rating out of range",
			requestBody:    map[string]interface{}{"productId": uuid.New(), "rating": 6, "comment": "Great"},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "Rating must be between 1 and 5",
		},
		{
			name:           "Unknown product",
			requestBody:    map[string]interface{}{"productId": uuid.New(), "rating": 3, "comment": "Hmm"},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, response := performRequest(t, router, http.MethodPost, "/reviews", tt.requestBody)

			assert.Equal(t, tt.expectedStatus, w.Code, "body: %s", w.Body.String())
			if tt.expectedMsg != "" {
				assert.Equal(t, tt.expectedMsg, response["message"])
			}
		})
	}

	ratings := productRatings(t, router, product.ID)
	assert.Equal(t, float64(4), ratings["average"])
	assert.Equal(t, float64(1), ratings["count"])

	w, response := performRequest(t, router, http.MethodGet, "/reviews/service/"+service.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, response["data"], 1)
	review := response["data"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, service.ID.String(), review["serviceId"])
	assert.NotContains(t, review, "productId")

	w, response = performRequest(t, router, http.MethodGet, "/reviews/myreviews", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, response["data"], 2)
}

func TestReviewModeration(t *testing.T) {
	db := testutil.NewTestDB(t)
	customer := testutil.CreateUser(t, db, "customer@example.com")
	other := testutil.CreateUser(t, db, "other@example.com")
	admin := testutil.CreateAdmin(t, db, "admin@example.com")
	product := testutil.CreateProduct(t, db, "Panel", "100.00", 5)

	w, response := performRequest(t, reviewRouter(db, customer), http.MethodPost, "/reviews",
		map[string]interface{}{"productId": product.ID, "rating": 2, "comment": "Cracked glass"})
	require.Equal(t, http.StatusCreated, w.Code, "body: %s", w.Body.String())
	id := response["data"].(map[string]interface{})["id"].(string)

	w, _ = performRequest(t, reviewRouter(db, other), http.MethodPut, "/reviews/"+id, map[string]interface{}{"rating": 5})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, response = performRequest(t, reviewRouter(db, customer), http.MethodPut, "/reviews/"+id, map[string]interface{}{"rating": 3})
	require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())
	assert.Equal(t, float64(3), response["data"].(map[string]interface{})["rating"])
	assert.Equal(t, float64(3), productRatings(t, reviewRouter(db, nil), product.ID)["average"])

	w, _ = performRequest(t, reviewRouter(db, admin), http.MethodPut, "/reviews/"+id+"/approve", map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, response = performRequest(t, reviewRouter(db, admin), http.MethodPut, "/reviews/"+id+"/approve", map[string]interface{}{"isApproved": false})
	require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())
	assert.Equal(t, false, response["data"].(map[string]interface{})["isApproved"])

	ratings := productRatings(t, reviewRouter(db, nil), product.ID)
	assert.Equal(t, float64(0), ratings["count"])

	w, response = performRequest(t, reviewRouter(db, nil), http.MethodGet, "/reviews/product/"+product.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, response["data"])

	w, response = performRequest(t, reviewRouter(db, admin), http.MethodGet, "/reviews", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, response["data"], 1)

	w, _ = performRequest(t, reviewRouter(db, other), http.MethodDelete, "/reviews/"+id, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = performRequest(t, reviewRouter(db, customer), http.MethodDelete, "/reviews/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = performRequest(t, reviewRouter(db, customer), http.MethodDelete, "/reviews/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
