package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/solarhub/solarhub-api/services"
)

// ImageController serves uploaded catalog images
type ImageController struct {
	images *services.ImageService
}

// NewImageController creates the image handlers
func NewImageController(images *services.ImageService) *ImageController {
	return &ImageController{images: images}
}

// GetImage handles GET /api/v1/images/*key by redirecting to a short-lived storage link
func (ic *ImageController) GetImage(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("key"), "/")

	url, err := ic.images.Resolve(c.Request.Context(), key)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Cache-Control", "private, max-age=300")
	c.Redirect(http.StatusFound, url)
}
