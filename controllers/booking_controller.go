package controllers

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/solarhub/solarhub-api/apperrors"
	"github.com/solarhub/solarhub-api/models"
	"github.com/solarhub/solarhub-api/services"
)

// FeedbackRequest represents the request body for rating a completed booking
type FeedbackRequest struct {
	Rating  int    `json:"rating" binding:"required"`
	Comment string `json:"comment"`
}

// ConsultationRequest represents the request body for booking a consultation
type ConsultationRequest struct {
	Topic            string                  `json:"topic" binding:"required"`
	Description      string                  `json:"description" binding:"required"`
	PreferredDate    time.Time               `json:"preferredDate" binding:"required"`
	AlternateDate    *time.Time              `json:"alternateDate"`
	ConsultationType models.ConsultationType `json:"consultationType"`
}

// MaintenanceRequest represents the request body for booking a maintenance visit
type MaintenanceRequest struct {
	ServiceType   models.MaintenanceType `json:"serviceType" binding:"required"`
	Description   string                 `json:"description" binding:"required"`
	ScheduledDate time.Time              `json:"scheduledDate" binding:"required"`
	Address       models.Address         `json:"address"`
}

// decodeConsultation builds a consultation for owner from the request body
func decodeConsultation(c *gin.Context, owner *models.User) (*models.Consultation, error) {
	var req ConsultationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, apperrors.Validation("Invalid request data").WithDetails(err.Error())
	}
	if req.ConsultationType == "" {
		req.ConsultationType = models.ConsultationPhone
	}
	if !models.ValidConsultationType(req.ConsultationType) {
		return nil, apperrors.Validation("Invalid consultation type: %s", req.ConsultationType)
	}
	return &models.Consultation{
		UserID:           owner.ID,
		Topic:            strings.TrimSpace(req.Topic),
		Description:      strings.TrimSpace(req.Description),
		PreferredDate:    req.PreferredDate,
		AlternateDate:    req.AlternateDate,
		ConsultationType: req.ConsultationType,
	}, nil
}

// decodeMaintenance builds a maintenance request for owner from the request body
func decodeMaintenance(c *gin.Context, owner *models.User) (*models.Maintenance, error) {
	var req MaintenanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, apperrors.Validation("Invalid request data").WithDetails(err.Error())
	}
	if !models.ValidMaintenanceType(req.ServiceType) {
		return nil, apperrors.Validation("Invalid service type: %s", req.ServiceType)
	}
	if !req.Address.IsComplete() {
		return nil, apperrors.Validation("Street, city, state, zip code and country are required")
	}
	return &models.Maintenance{
		UserID:        owner.ID,
		ServiceType:   req.ServiceType,
		Description:   strings.TrimSpace(req.Description),
		ScheduledDate: req.ScheduledDate,
		Address:       req.Address,
	}, nil
}

// BookingController serves one booking entity. Consultations and maintenance requests share it.
type BookingController[T any, PT interface {
	*T
	models.Booking
}] struct {
	bookings *services.BookingService[T, PT]
	decode   func(c *gin.Context, owner *models.User) (PT, error)
}

// NewConsultationController creates the consultation handlers
func NewConsultationController(bookings *services.BookingService[models.Consultation, *models.Consultation]) *BookingController[models.Consultation, *models.Consultation] {
	return &BookingController[models.Consultation, *models.Consultation]{bookings: bookings, decode: decodeConsultation}
}

// NewMaintenanceController creates the maintenance handlers
func NewMaintenanceController(bookings *services.BookingService[models.Maintenance, *models.Maintenance]) *BookingController[models.Maintenance, *models.Maintenance] {
	return &BookingController[models.Maintenance, *models.Maintenance]{bookings: bookings, decode: decodeMaintenance}
}

// Create handles POST /api/v1/consultations and POST /api/v1/maintenance
func (bc *BookingController[T, PT]) Create(c *gin.Context) {
	user, ok := actor(c)
	if !ok {
		return
	}
	booking, err := bc.decode(c, user)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := bc.bookings.Create(c.Request.Context(), booking); err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, booking)
}

// ListMine handles GET /api/v1/consultations/myconsultations and GET /api/v1/maintenance/mymaintenance
func (bc *BookingController[T, PT]) ListMine(c *gin.Context) {
	user, ok := actor(c)
	if !ok {
		return
	}
	list, err := bc.bookings.ListMine(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, list)
}

// Get handles GET /:id
func (bc *BookingController[T, PT]) Get(c *gin.Context) {
	user, ok := actor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	booking, err := bc.bookings.Get(c.Request.Context(), id, user)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, booking)
}

// Feedback handles PUT /:id/feedback
func (bc *BookingController[T, PT]) Feedback(c *gin.Context) {
	user, ok := actor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req FeedbackRequest
	if !bindJSON(c, &req) {
		return
	}
	booking, err := bc.bookings.SubmitFeedback(c.Request.Context(), id, user, req.Rating, req.Comment)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, booking)
}

// Cancel handles PUT /:id/cancel
func (bc *BookingController[T, PT]) Cancel(c *gin.Context) {
	user, ok := actor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	booking, err := bc.bookings.Cancel(c.Request.Context(), id, user)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, booking)
}

// ListAll handles the administrator listing
func (bc *BookingController[T, PT]) ListAll(c *gin.Context) {
	list, err := bc.bookings.ListAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, list)
}

// UpdateStatus handles PUT /:id/status (admin only)
func (bc *BookingController[T, PT]) UpdateStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var patch services.BookingStatusPatch
	if !bindJSON(c, &patch) {
		return
	}
	booking, err := bc.bookings.UpdateStatus(c.Request.Context(), id, patch)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, booking)
}
