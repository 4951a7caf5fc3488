package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/solarhub/solarhub-api/apperrors"
	"github.com/solarhub/solarhub-api/models"
	"github.com/solarhub/solarhub-api/services"
)

// CreateReviewRequest represents the request body for a new review. Exactly one of productId and serviceId is set.
type CreateReviewRequest struct {
	ProductID *uuid.UUID `json:"productId"`
	ServiceID *uuid.UUID `json:"serviceId"`
	OrderID   *uuid.UUID `json:"orderId"`
	Rating    int        `json:"rating"`
	Comment   string     `json:"comment"`
	Images    []string   `json:"images"`
}

// ApprovalRequest represents the request body for moderating a review
type ApprovalRequest struct {
	IsApproved *bool `json:"isApproved"`
}

// ReviewController serves reviews of products and services
type ReviewController struct {
	reviews *services.ReviewService
}

// NewReviewController creates the review handlers
func NewReviewController(reviews *services.ReviewService) *ReviewController {
	return &ReviewController{reviews: reviews}
}

// CreateReview handles POST /api/v1/reviews
func (rc *ReviewController) CreateReview(c *gin.Context) {
	user, ok := actor(c)
	if !ok {
		return
	}
	var req CreateReviewRequest
	if !bindJSON(c, &req) {
		return
	}
	target, err := models.NewReviewTarget(req.ProductID, req.ServiceID)
	if err != nil {
		respondError(c, apperrors.Validation("%s", err.Error()))
		return
	}

	review, err := rc.reviews.Create(c.Request.Context(), user, services.CreateReviewInput{
		Target:  target,
		OrderID: req.OrderID,
		Rating:  req.Rating,
		Comment: req.Comment,
		Images:  req.Images,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, review)
}

// ListProductReviews handles GET /api/v1/reviews/product/:id
func (rc *ReviewController) ListProductReviews(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	rc.listForTarget(c, models.ProductTarget(id))
}

// ListServiceReviews handles GET /api/v1/reviews/service/:id
func (rc *ReviewController) ListServiceReviews(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	rc.listForTarget(c, models.ServiceTarget(id))
}

func (rc *ReviewController) listForTarget(c *gin.Context, target models.ReviewTarget) {
	reviews, err := rc.reviews.ListForTarget(c.Request.Context(), target)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, reviews)
}

// ListMyReviews handles GET /api/v1/reviews/myreviews
func (rc *ReviewController) ListMyReviews(c *gin.Context) {
	user, ok := actor(c)
	if !ok {
		return
	}
	reviews, err := rc.reviews.ListMine(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, reviews)
}

// ListReviews handles GET /api/v1/reviews (admin only)
func (rc *ReviewController) ListReviews(c *gin.Context) {
	reviews, err := rc.reviews.ListAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, reviews)
}

// UpdateReview handles PUT /api/v1/reviews/:id
func (rc *ReviewController) UpdateReview(c *gin.Context) {
	user, ok := actor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var patch services.ReviewPatch
	if !bindJSON(c, &patch) {
		return
	}
	review, err := rc.reviews.Update(c.Request.Context(), id, user, patch)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, review)
}

// DeleteReview handles DELETE /api/v1/reviews/:id
func (rc *ReviewController) DeleteReview(c *gin.Context) {
	user, ok := actor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := rc.reviews.Delete(c.Request.Context(), id, user); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"message": "Review removed"})
}

// ApproveReview handles PUT /api/v1/reviews/:id/approve (admin only)
func (rc *ReviewController) ApproveReview(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req ApprovalRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.IsApproved == nil {
		respondError(c, apperrors.Validation("isApproved is required"))
		return
	}
	review, err := rc.reviews.SetApproval(c.Request.Context(), id, *req.IsApproved)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, review)
}
