package services

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/solarhub/solarhub-api/apperrors"
	"github.com/solarhub/solarhub-api/models"
)

// Product sort orders
const (
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortNewest    = "newest"
	SortRating    = "rating"
)

// ProductFilter narrows a product listing
type ProductFilter struct {
	Category string
	Brand    string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	Sort     string
}

// ProductPatch carries product fields for create and partial update
type ProductPatch struct {
	Name              models.Optional[string]                 `json:"name"`
	Category          models.Optional[string]                 `json:"category"`
	SubCategory       models.Optional[string]                 `json:"subCategory"`
	Description       models.Optional[string]                 `json:"description"`
	Price             models.Optional[decimal.Decimal]        `json:"price"`
	ImageURL          models.Optional[string]                 `json:"imageUrl"`
	AdditionalImages  models.Optional[[]string]               `json:"additionalImages"`
	Specifications    models.Optional[map[string]interface{}] `json:"specifications"`
	Brand             models.Optional[string]                 `json:"brand"`
	Stock             models.Optional[int]                    `json:"stock"`
	InstallationGuide models.Optional[string]                 `json:"installationGuide"`
	IsActive          models.Optional[bool]                   `json:"isActive"`
}

// columns lists the product columns present in the patch
func (p ProductPatch) columns() []string {
	return presentColumns(map[string]bool{
		"name":               p.Name.Set,
		"category":           p.Category.Set,
		"sub_category":       p.SubCategory.Set,
		"description":        p.Description.Set,
		"price":              p.Price.Set,
		"image_url":          p.ImageURL.Set,
		"additional_images":  p.AdditionalImages.Set,
		"specifications":     p.Specifications.Set,
		"brand":              p.Brand.Set,
		"stock":              p.Stock.Set,
		"installation_guide": p.InstallationGuide.Set,
		"is_active":          p.IsActive.Set,
	})
}

func presentColumns(fields map[string]bool) []string {
	cols := make([]string, 0, len(fields))
	for col, set := range fields {
		if set {
			cols = append(cols, col)
		}
	}
	sort.Strings(cols)
	return cols
}

// ProductService is the product half of the catalog store
type ProductService struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewProductService creates a product store
func NewProductService(db *gorm.DB, logger *zap.Logger) *ProductService {
	return &ProductService{db: db, logger: logger}
}

// List returns products matching the filter
func (s *ProductService) List(ctx context.Context, f ProductFilter) ([]models.Product, error) {
	q := s.db.WithContext(ctx).Model(&models.Product{})
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.Brand != "" {
		q = q.Where("brand = ?", f.Brand)
	}
	if f.MinPrice != nil {
		q = q.Where("price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		q = q.Where("price <= ?", *f.MaxPrice)
	}

	switch f.Sort {
	case SortPriceAsc:
		q = q.Order("price ASC")
	case SortPriceDesc:
		q = q.Order("price DESC")
	case SortRating:
		q = q.Order("ratings_average DESC")
	default:
		q = q.Order("created_at DESC")
	}

	var products []models.Product
	if err := q.Find(&products).Error; err != nil {
		return nil, apperrors.Internal(errors.Wrap(err, "list products"))
	}
	return products, nil
}

// Get returns one product
func (s *ProductService) Get(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := s.db.WithContext(ctx).First(&product, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("Product not found")
	}
	if err != nil {
		return nil, apperrors.Internal(errors.Wrap(err, "load product"))
	}
	return &product, nil
}

// Categories returns the distinct product categories
func (s *ProductService) Categories(ctx context.Context) ([]string, error) {
	return s.distinct(ctx, "category")
}

// Brands returns the distinct product brands
func (s *ProductService) Brands(ctx context.Context) ([]string, error) {
	return s.distinct(ctx, "brand")
}

func (s *ProductService) distinct(ctx context.Context, column string) ([]string, error) {
	var values []string
	err := s.db.WithContext(ctx).
		Model(&models.Product{}).
		Where(column+" <> ''").
		Distinct().
		Order(column).
		Pluck(column, &values).Error
	if err != nil {
		return nil, apperrors.Internal(errors.Wrapf(err, "list distinct %s", column))
	}
	return values, nil
}

// Create stores a new product
func (s *ProductService) Create(ctx context.Context, patch ProductPatch) (*models.Product, error) {
	product := &models.Product{
		AdditionalImages: datatypes.JSONSlice[string]{},
		Specifications:   datatypes.JSONMap{},
		IsActive:         true,
	}
	applyProductPatch(product, patch)
	if err := validateProduct(product); err != nil {
		return nil, err
	}

	active := product.IsActive
	if err := s.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, apperrors.Internal(errors.Wrap(err, "create product"))
	}
	// is_active has a column default and Create skips a zero bool, so an explicit false is written separately
	if !active {
		if err := s.db.WithContext(ctx).Model(product).Update("is_active", false).Error; err != nil {
			return nil, apperrors.Internal(errors.Wrap(err, "create product"))
		}
		product.IsActive = false
	}
	s.logger.Info("Product created", zap.String("product_id", product.ID.String()))
	return product, nil
}

// Update applies a partial update. A zero price or empty string is a value, not an omission.
// Only columns present in the patch are written, so concurrent stock movements survive an edit.
func (s *ProductService) Update(ctx context.Context, id uuid.UUID, patch ProductPatch) (*models.Product, error) {
	product, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	applyProductPatch(product, patch)
	if err := validateProduct(product); err != nil {
		return nil, err
	}

	columns := patch.columns()
	if len(columns) == 0 {
		return product, nil
	}
	err = s.db.WithContext(ctx).Model(product).Select(columns).Updates(product).Error
	if err != nil {
		return nil, apperrors.Internal(errors.Wrap(err, "update product"))
	}
	return product, nil
}

func applyProductPatch(p *models.Product, patch ProductPatch) {
	patch.Name.Apply(&p.Name)
	patch.Category.Apply(&p.Category)
	patch.SubCategory.Apply(&p.SubCategory)
	patch.Description.Apply(&p.Description)
	patch.Price.Apply(&p.Price)
	patch.ImageURL.Apply(&p.ImageURL)
	patch.Brand.Apply(&p.Brand)
	patch.Stock.Apply(&p.Stock)
	patch.InstallationGuide.Apply(&p.InstallationGuide)
	patch.IsActive.Apply(&p.IsActive)
	if patch.AdditionalImages.Set {
		p.AdditionalImages = datatypes.JSONSlice[string](patch.AdditionalImages.Value)
		if p.AdditionalImages == nil {
			p.AdditionalImages = datatypes.JSONSlice[string]{}
		}
	}
	if patch.Specifications.Set {
		p.Specifications = datatypes.JSONMap(patch.Specifications.Value)
		if p.Specifications == nil {
			p.Specifications = datatypes.JSONMap{}
		}
	}
	// Explicit null clears optional text fields
	for field, opt := range map[*string]models.Optional[string]{
		&p.SubCategory:       patch.SubCategory,
		&p.ImageURL:          patch.ImageURL,
		&p.Brand:             patch.Brand,
		&p.InstallationGuide: patch.InstallationGuide,
	} {
		if opt.Null {
			*field = ""
		}
	}
}

func validateProduct(p *models.Product) error {
	if strings.TrimSpace(p.Name) == "" || strings.TrimSpace(p.Category) == "" || strings.TrimSpace(p.Description) == "" {
		return apperrors.Validation("Name, category and description are required")
	}
	if p.Price.IsNegative() {
		return apperrors.Validation("Price must not be negative")
	}
	if p.Stock < 0 {
		return apperrors.Validation("Stock must not be negative")
	}
	return nil
}

// SetStock overwrites the stock count
func (s *ProductService) SetStock(ctx context.Context, id uuid.UUID, stock *int) (*models.Product, error) {
	if stock == nil || *stock < 0 {
		return nil, apperrors.Validation("Please provide a valid stock quantity")
	}
	product, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(product).Update("stock", *stock).Error; err != nil {
		return nil, apperrors.Internal(errors.Wrap(err, "update stock"))
	}
	product.Stock = *stock
	return product, nil
}

// AddImage records an uploaded image as the main image, or as an additional one when a main image exists
func (s *ProductService) AddImage(ctx context.Context, id uuid.UUID, url string) (*models.Product, error) {
	product, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if product.ImageURL == "" {
		product.ImageURL = url
	} else {
		product.AdditionalImages = append(product.AdditionalImages, url)
	}
	err = s.db.WithContext(ctx).Model(product).Select("image_url", "additional_images").Updates(product).Error
	if err != nil {
		return nil, apperrors.Internal(errors.Wrap(err, "save product image"))
	}
	return product, nil
}

// Delete removes a product from the catalog. Orders keep their captured lines.
func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id)
	if res.Error != nil {
		return apperrors.Internal(errors.Wrap(res.Error, "delete product"))
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("Product not found")
	}
	s.logger.Info("Product removed", zap.String("product_id", id.String()))
	return nil
}

// ServiceFilter narrows a service listing
type ServiceFilter struct {
	Type        models.ServiceType
	PackageSize models.PackageSize
	Location    string
}

// ServicePatch carries service fields for create and partial update
type ServicePatch struct {
	Name               models.Optional[string]             `json:"name"`
	Type               models.Optional[models.ServiceType] `json:"type"`
	Description        models.Optional[string]             `json:"description"`
	Price              models.Optional[decimal.Decimal]    `json:"price"`
	ImageURL           models.Optional[string]             `json:"imageUrl"`
	Duration           models.Optional[string]             `json:"duration"`
	PackageSize        models.Optional[models.PackageSize] `json:"packageSize"`
	AvailableLocations models.Optional[[]string]           `json:"availableLocations"`
	IsActive           models.Optional[bool]               `json:"isActive"`
}

// columns lists the service columns present in the patch
func (p ServicePatch) columns() []string {
	return presentColumns(map[string]bool{
		"name":                p.Name.Set,
		"type":                p.Type.Set,
		"description":         p.Description.Set,
		"price":               p.Price.Set,
		"image_url":           p.ImageURL.Set,
		"duration":            p.Duration.Set,
		"package_size":        p.PackageSize.Set,
		"available_locations": p.AvailableLocations.Set,
		"is_active":           p.IsActive.Set,
	})
}

// ServiceCatalog is the bookable-service half of the catalog store
type ServiceCatalog struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewServiceCatalog creates a service store
func NewServiceCatalog(db *gorm.DB, logger *zap.Logger) *ServiceCatalog {
	return &ServiceCatalog{db: db, logger: logger}
}

// List returns active services matching the filter
func (s *ServiceCatalog) List(ctx context.Context, f ServiceFilter) ([]models.Service, error) {
	q := s.db.WithContext(ctx).Where("is_active = ?", true)
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	if f.PackageSize != "" {
		q = q.Where("package_size = ?", f.PackageSize)
	}

	var services []models.Service
	if err := q.Order("created_at DESC").Find(&services).Error; err != nil {
		return nil, apperrors.Internal(errors.Wrap(err, "list services"))
	}
	if f.Location == "" {
		return services, nil
	}

	filtered := services[:0]
	for _, svc := range services {
		if svc.OffersLocation(f.Location) {
			filtered = append(filtered, svc)
		}
	}
	return filtered, nil
}

// Get returns one service
func (s *ServiceCatalog) Get(ctx context.Context, id uuid.UUID) (*models.Service, error) {
	var service models.Service
	err := s.db.WithContext(ctx).First(&service, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("Service not found")
	}
	if err != nil {
		return nil, apperrors.Internal(errors.Wrap(err, "load service"))
	}
	return &service, nil
}

// Types returns the distinct service types in the catalog
func (s *ServiceCatalog) Types(ctx context.Context) ([]string, error) {
	return s.distinct(ctx, "type")
}

// PackageSizes returns the distinct package sizes in the catalog
func (s *ServiceCatalog) PackageSizes(ctx context.Context) ([]string, error) {
	return s.distinct(ctx, "package_size")
}

func (s *ServiceCatalog) distinct(ctx context.Context, column string) ([]string, error) {
	var values []string
	err := s.db.WithContext(ctx).
		Model(&models.Service{}).
		Where(column+" <> ''").
		Distinct().
		Order(column).
		Pluck(column, &values).Error
	if err != nil {
		return nil, apperrors.Internal(errors.Wrapf(err, "list distinct %s", column))
	}
	return values, nil
}

// Locations returns every location any service is offered in, sorted
func (s *ServiceCatalog) Locations(ctx context.Context) ([]string, error) {
	var lists []datatypes.JSONSlice[string]
	err := s.db.WithContext(ctx).Model(&models.Service{}).Pluck("available_locations", &lists).Error
	if err != nil {
		return nil, apperrors.Internal(errors.Wrap(err, "list service locations"))
	}

	seen := make(map[string]struct{})
	locations := []string{}
	for _, list := range lists {
		for _, loc := range list {
			if _, ok := seen[loc]; ok || loc == "" {
				continue
			}
			seen[loc] = struct{}{}
			locations = append(locations, loc)
		}
	}
	sort.Strings(locations)
	return locations, nil
}

// Create stores a new service
func (s *ServiceCatalog) Create(ctx context.Context, patch ServicePatch) (*models.Service, error) {
	service := &models.Service{
		AvailableLocations: datatypes.JSONSlice[string]{},
		IsActive:           true,
	}
	applyServicePatch(service, patch)
	if err := validateService(service); err != nil {
		return nil, err
	}
	active := service.IsActive
	if err := s.db.WithContext(ctx).Create(service).Error; err != nil {
		return nil, apperrors.Internal(errors.Wrap(err, "create service"))
	}
	if !active {
		if err := s.db.WithContext(ctx).Model(service).Update("is_active", false).Error; err != nil {
			return nil, apperrors.Internal(errors.Wrap(err, "create service"))
		}
		service.IsActive = false
	}
	s.logger.Info("Service created", zap.String("service_id", service.ID.String()))
	return service, nil
}

// Update applies a partial update
func (s *ServiceCatalog) Update(ctx context.Context, id uuid.UUID, patch ServicePatch) (*models.Service, error) {
	service, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	applyServicePatch(service, patch)
	if err := validateService(service); err != nil {
		return nil, err
	}
	columns := patch.columns()
	if len(columns) == 0 {
		return service, nil
	}
	err = s.db.WithContext(ctx).Model(service).Select(columns).Updates(service).Error
	if err != nil {
		return nil, apperrors.Internal(errors.Wrap(err, "update service"))
	}
	return service, nil
}

func applyServicePatch(svc *models.Service, patch ServicePatch) {
	patch.Name.Apply(&svc.Name)
	patch.Type.Apply(&svc.Type)
	patch.Description.Apply(&svc.Description)
	patch.Price.Apply(&svc.Price)
	patch.ImageURL.Apply(&svc.ImageURL)
	patch.Duration.Apply(&svc.Duration)
	patch.PackageSize.Apply(&svc.PackageSize)
	patch.IsActive.Apply(&svc.IsActive)
	if patch.PackageSize.Null {
		svc.PackageSize = ""
	}
	if patch.ImageURL.Null {
		svc.ImageURL = ""
	}
	if patch.AvailableLocations.Set {
		svc.AvailableLocations = datatypes.JSONSlice[string](patch.AvailableLocations.Value)
		if svc.AvailableLocations == nil {
			svc.AvailableLocations = datatypes.JSONSlice[string]{}
		}
	}
}

func validateService(svc *models.Service) error {
	if strings.TrimSpace(svc.Name) == "" || strings.TrimSpace(svc.Description) == "" || strings.TrimSpace(svc.Duration) == "" {
		return apperrors.Validation("Name, description and duration are required")
	}
	if !models.ValidServiceType(svc.Type) {
		return apperrors.Validation("Invalid service type: %s", svc.Type)
	}
	if svc.PackageSize != "" && !models.ValidPackageSize(svc.PackageSize) {
		return apperrors.Validation("Invalid package size: %s", svc.PackageSize)
	}
	if svc.Price.IsNegative() {
		return apperrors.Validation("Price must not be negative")
	}
	return nil
}

// Delete removes a service from the catalog
func (s *ServiceCatalog) Delete(ctx context.Context, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Delete(&models.Service{}, "id = ?", id)
	if res.Error != nil {
		return apperrors.Internal(errors.Wrap(res.Error, "delete service"))
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("Service not found")
	}
	s.logger.Info("Service removed", zap.String("service_id", id.String()))
	return nil
}
