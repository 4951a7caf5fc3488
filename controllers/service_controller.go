package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/solarhub/solarhub-api/models"
	"github.com/solarhub/solarhub-api/services"
)

// ServiceController serves the bookable service catalog
type ServiceController struct {
	catalog *services.ServiceCatalog
}

// NewServiceController creates the service catalog handlers
func NewServiceController(catalog *services.ServiceCatalog) *ServiceController {
	return &ServiceController{catalog: catalog}
}

// ListServices handles GET /api/v1/services
func (sc *ServiceController) ListServices(c *gin.Context) {
	list, err := sc.catalog.List(c.Request.Context(), services.ServiceFilter{
		Type:        models.ServiceType(c.Query("type")),
		PackageSize: models.PackageSize(c.Query("packageSize")),
		Location:    c.Query("location"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, list)
}

// GetService handles GET /api/v1/services/:id
func (sc *ServiceController) GetService(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	service, err := sc.catalog.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, service)
}

// ListTypes handles GET /api/v1/services/types
func (sc *ServiceController) ListTypes(c *gin.Context) {
	types, err := sc.catalog.Types(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, types)
}

// ListPackages handles GET /api/v1/services/packages
func (sc *ServiceController) ListPackages(c *gin.Context) {
	packages, err := sc.catalog.PackageSizes(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, packages)
}

// ListLocations handles GET /api/v1/services/locations
func (sc *ServiceController) ListLocations(c *gin.Context) {
	locations, err := sc.catalog.Locations(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, locations)
}

// CreateService handles POST /api/v1/services (admin only)
func (sc *ServiceController) CreateService(c *gin.Context) {
	var patch services.ServicePatch
	if !bindJSON(c, &patch) {
		return
	}
	service, err := sc.catalog.Create(c.Request.Context(), patch)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, service)
}

// UpdateService handles PUT /api/v1/services/:id (admin only)
func (sc *ServiceController) UpdateService(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var patch services.ServicePatch
	if !bindJSON(c, &patch) {
		return
	}
	service, err := sc.catalog.Update(c.Request.Context(), id, patch)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, service)
}

// DeleteService handles DELETE /api/v1/services/:id (admin only)
func (sc *ServiceController) DeleteService(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := sc.catalog.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"message": "Service removed"})
}
