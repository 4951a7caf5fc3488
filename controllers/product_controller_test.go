package controllers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/solarhub/solarhub-api/services"
	"github.com/solarhub/solarhub-api/testutil"
)

func setupProductRouter(t *testing.T) *gin.Engine {
	db := testutil.NewTestDB(t)
	admin := testutil.CreateAdmin(t, db, "admin@example.com")
	controller := NewProductController(services.NewProductService(db, zap.NewNop()), nil)

	testutil.CreateProduct(t, db, "Budget Panel", "80.00", 10)
	testutil.CreateProduct(t, db, "Premium Panel", "300.00", 2)

	router := newTestRouter()
	auth := mockAuthMiddleware(admin)
	router.GET("/products", controller.ListProducts)
	router.GET("/products/categories", controller.ListCategories)
	router.GET("/products/brands", controller.ListBrands)
	router.GET("/products/:id", controller.GetProduct)
	router.POST("/products", auth, controller.CreateProduct)
	router.PUT("/products/:id", auth, controller.UpdateProduct)
	router.DELETE("/products/:id", auth, controller.DeleteProduct)
	router.PUT("/products/:id/stock", auth, controller.UpdateStock)
	return router
}

func TestListProducts(t *testing.T) {
	router := setupProductRouter(t)

	tests := []struct {
		name           string
		query          string
		expectedStatus int
		expectedNames  []string
	}{
		{name: "Cheapest first", query: "?sort=price_asc", expectedStatus: http.StatusOK, expectedNames: []string{"Budget Panel", "Premium Panel"}},
		{name: "Most expensive first", query: "?sort=price_desc", expectedStatus: http.StatusOK, expectedNames: []string{"Premium Panel", "Budget Panel"}},
		{name: "Price range", query: "?minPrice=100&maxPrice=500", expectedStatus: http.StatusOK, expectedNames: []string{"Premium Panel"}},
		{name: "Unknown brand", query: "?brand=Nobody", expectedStatus: http.StatusOK, expectedNames: []string{}},
		{name: "Invalid sort", query: "?sort=alphabetical", expectedStatus: http.StatusBadRequest},
		{name: "Invalid price", query: "?minPrice=cheap", expectedStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, response := performRequest(t, router, http.MethodGet, "/products"+tt.query, nil)

			assert.Equal(t, tt.expectedStatus, w.Code, "body: %s", w.Body.String())
			if tt.expectedNames == nil {
				return
			}
			names := []string{}
			for _, item := range response["data"].([]interface{}) {
				names = append(names, item.(map[string]interface{})["name"].(string))
			}
			assert.Equal(t, tt.expectedNames, names)
		})
	}

	w, response := performRequest(t, router, http.MethodGet, "/products/categories", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []interface{}{"panels"}, response["data"])

	w, response = performRequest(t, router, http.MethodGet, "/products/brands", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []interface{}{"SunCo"}, response["data"])
}

func TestProductAdministration(t *testing.T) {
	router := setupProductRouter(t)

	w, response := performRequest(t, router, http.MethodPost, "/products", map[string]interface{}{
		"name":        "Inverter",
		"category":    "inverters",
		"description": "5kW string inverter",
		"price":       1200.5,
		"stock":       3,
		"isActive":    false,
	})
	require.Equal(t, http.StatusCreated, w.Code, "body: %s", w.Body.String())
	created := response["data"].(map[string]interface{})
	assert.Equal(t, 1200.5, created["price"])
	assert.Equal(t, false, created["isActive"])
	id := created["id"].(string)

	w, _ = performRequest(t, router, http.MethodPost, "/products", map[string]interface{}{"name": "No category"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, response = performRequest(t, router, http.MethodPut, "/products/"+id, map[string]interface{}{"price": 0, "brand": "VoltCo"})
	require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())
	updated := response["data"].(map[string]interface{})
	assert.Equal(t, float64(0), updated["price"])
	assert.Equal(t, "VoltCo", updated["brand"])
	assert.Equal(t, "Inverter", updated["name"])

	w, response = performRequest(t, router, http.MethodGet, "/products/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "VoltCo", response["data"].(map[string]interface{})["brand"])

	w, response = performRequest(t, router, http.MethodPut, "/products/"+id+"/stock", map[string]interface{}{"stock": 42})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(42), response["data"].(map[string]interface{})["stock"])

	w, _ = performRequest(t, router, http.MethodPut, "/products/"+id+"/stock", map[string]interface{}{"stock": -1})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = performRequest(t, router, http.MethodPut, "/products/"+id+"/stock", map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = performRequest(t, router, http.MethodDelete, "/products/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = performRequest(t, router, http.MethodGet, "/products/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = performRequest(t, router, http.MethodDelete, "/products/"+uuid.New().String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
