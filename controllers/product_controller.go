package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/solarhub/solarhub-api/apperrors"
	"github.com/solarhub/solarhub-api/models"
	"github.com/solarhub/solarhub-api/services"
)

// StockRequest represents the request body for setting product stock
type StockRequest struct {
	Stock *int `json:"stock"`
}

// ProductController serves the product catalog
type ProductController struct {
	products *services.ProductService
	images   *services.ImageService
}

// NewProductController creates the product handlers. images may be nil when no storage is configured.
func NewProductController(products *services.ProductService, images *services.ImageService) *ProductController {
	return &ProductController{products: products, images: images}
}

// ListProducts handles GET /api/v1/products
func (pc *ProductController) ListProducts(c *gin.Context) {
	filter := services.ProductFilter{
		Category: c.Query("category"),
		Brand:    c.Query("brand"),
		Sort:     c.Query("sort"),
	}
	var err error
	if filter.MinPrice, err = queryMoney(c, "minPrice"); err != nil {
		respondError(c, err)
		return
	}
	if filter.MaxPrice, err = queryMoney(c, "maxPrice"); err != nil {
		respondError(c, err)
		return
	}
	switch filter.Sort {
	case "", services.SortNewest, services.SortPriceAsc, services.SortPriceDesc, services.SortRating:
	default:
		respondError(c, apperrors.Validation("Invalid sort: %s", filter.Sort))
		return
	}

	products, err := pc.products.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, products)
}

func queryMoney(c *gin.Context, name string) (*decimal.Decimal, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	amount, err := models.ParseMoney(raw)
	if err != nil {
		return nil, apperrors.Validation("Invalid %s", name)
	}
	return &amount, nil
}

// GetProduct handles GET /api/v1/products/:id
func (pc *ProductController) GetProduct(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	product, err := pc.products.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, product)
}

// ListCategories handles GET /api/v1/products/categories
func (pc *ProductController) ListCategories(c *gin.Context) {
	categories, err := pc.products.Categories(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, categories)
}

// ListBrands handles GET /api/v1/products/brands
func (pc *ProductController) ListBrands(c *gin.Context) {
	brands, err := pc.products.Brands(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, brands)
}

// CreateProduct handles POST /api/v1/products (admin only)
func (pc *ProductController) CreateProduct(c *gin.Context) {
	var patch services.ProductPatch
	if !bindJSON(c, &patch) {
		return
	}
	product, err := pc.products.Create(c.Request.Context(), patch)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, product)
}

// UpdateProduct handles PUT /api/v1/products/:id (admin only)
func (pc *ProductController) UpdateProduct(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var patch services.ProductPatch
	if !bindJSON(c, &patch) {
		return
	}
	product, err := pc.products.Update(c.Request.Context(), id, patch)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, product)
}

// DeleteProduct handles DELETE /api/v1/products/:id (admin only)
func (pc *ProductController) DeleteProduct(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := pc.products.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"message": "Product removed"})
}

// UpdateStock handles PUT /api/v1/products/:id/stock (admin only)
func (pc *ProductController) UpdateStock(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req StockRequest
	if !bindJSON(c, &req) {
		return
	}
	product, err := pc.products.SetStock(c.Request.Context(), id, req.Stock)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, product)
}

// UploadImage handles POST /api/v1/products/:id/images (admin only). The file is sent in the "image" form field.
func (pc *ProductController) UploadImage(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if pc.images == nil {
		respondError(c, apperrors.ExternalService(nil, "Image storage is not configured"))
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		respondError(c, apperrors.Validation("Image file is required"))
		return
	}

	// Reject unknown ids before storing anything
	if _, err := pc.products.Get(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	key, err := pc.images.Upload(c.Request.Context(), "products", fileHeader)
	if err != nil {
		respondError(c, err)
		return
	}
	product, err := pc.products.AddImage(c.Request.Context(), id, pc.images.URL(key))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, product)
}
