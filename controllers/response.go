package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/solarhub/solarhub-api/apperrors"
	"github.com/solarhub/solarhub-api/middleware"
	"github.com/solarhub/solarhub-api/models"
)

func respondSuccess(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}

func respondError(c *gin.Context, err error) {
	middleware.AbortWithError(c, err)
}

// pathID parses a uuid path parameter, writing a 400 when it is malformed
func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		respondError(c, apperrors.Validation("Invalid %s", name))
		return uuid.Nil, false
	}
	return id, true
}

// bindJSON decodes the request body, writing a 400 when it is malformed
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, apperrors.Validation("Invalid request data").WithDetails(err.Error()))
		return false
	}
	return true
}

// actor returns the authenticated user, writing a 401 when there is none
func actor(c *gin.Context) (*models.User, bool) {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return user, true
}

func respondCreated(c *gin.Context, data interface{}) {
	respondSuccess(c, http.StatusCreated, data)
}

func respondOK(c *gin.Context, data interface{}) {
	respondSuccess(c, http.StatusOK, data)
}
