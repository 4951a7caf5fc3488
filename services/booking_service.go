package services

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/solarhub/solarhub-api/apperrors"
	"github.com/solarhub/solarhub-api/models"
)

// BookingPolicy describes one booking entity's lifecycle
type BookingPolicy struct {
	// Noun is used in error messages, e.g. "consultation"
	Noun string
	// Statuses is the status vocabulary administrators may assign
	Statuses []models.BookingStatus
	// NonCancellable lists the statuses from which a booking cannot be cancelled
	NonCancellable []models.BookingStatus
	// Assignee is the association holding the assigned staff member and AssigneeColumn its key
	Assignee       string
	AssigneeColumn string
}

// ConsultationPolicy is the consultation lifecycle
var ConsultationPolicy = BookingPolicy{
	Noun: "consultation",
	Statuses: []models.BookingStatus{
		models.BookingPending,
		models.BookingScheduled,
		models.BookingCompleted,
		models.BookingCancelled,
	},
	NonCancellable: []models.BookingStatus{models.BookingCompleted, models.BookingCancelled},
	Assignee:       "AssignedExpert",
	AssigneeColumn: "assigned_expert_id",
}

// MaintenancePolicy is the maintenance lifecycle. Work in progress cannot be cancelled.
var MaintenancePolicy = BookingPolicy{
	Noun: "maintenance request",
	Statuses: []models.BookingStatus{
		models.BookingPending,
		models.BookingScheduled,
		models.BookingInProgress,
		models.BookingCompleted,
		models.BookingCancelled,
	},
	NonCancellable: []models.BookingStatus{models.BookingCompleted, models.BookingCancelled, models.BookingInProgress},
	Assignee:       "AssignedTechnician",
	AssigneeColumn: "assigned_technician_id",
}

// ValidStatus reports whether status belongs to the vocabulary
func (p BookingPolicy) ValidStatus(status models.BookingStatus) bool {
	return slices.Contains(p.Statuses, status)
}

// CheckCancel returns the error for cancelling b as actor, or nil
func (p BookingPolicy) CheckCancel(b models.Booking, actor *models.User) error {
	if b.OwnerID() != actor.ID && !actor.IsAdmin {
		return apperrors.Forbidden("Not authorized to cancel this %s", p.Noun)
	}
	if slices.Contains(p.NonCancellable, b.CurrentStatus()) {
		return apperrors.InvalidState("Cannot cancel %s %s", strings.ReplaceAll(string(b.CurrentStatus()), "_", " "), p.Noun)
	}
	return nil
}

// CheckFeedback returns the error for actor leaving feedback on b, or nil
func (p BookingPolicy) CheckFeedback(b models.Booking, actor *models.User) error {
	if b.OwnerID() != actor.ID {
		return apperrors.Forbidden("Not authorized to update this %s", p.Noun)
	}
	if b.CurrentStatus() != models.BookingCompleted {
		return apperrors.InvalidState("Cannot provide feedback for incomplete %s", p.Noun)
	}
	return nil
}

// BookingStatusPatch is the administrator's overwrite of status, assignee and notes
type BookingStatusPatch struct {
	Status     models.Optional[models.BookingStatus] `json:"status"`
	AssigneeID models.Optional[uuid.UUID]            `json:"assigneeId"`
	Notes      models.Optional[string]               `json:"notes"`
}

// BookingService implements the shared booking lifecycle for any entity T whose pointer is a models.Booking
type BookingService[T any, PT interface {
	*T
	models.Booking
}] struct {
	db     *gorm.DB
	policy BookingPolicy
	logger *zap.Logger
	now    func() time.Time
}

// NewBookingService creates a lifecycle service governed by policy
func NewBookingService[T any, PT interface {
	*T
	models.Booking
}](db *gorm.DB, policy BookingPolicy, logger *zap.Logger) *BookingService[T, PT] {
	return &BookingService[T, PT]{db: db, policy: policy, logger: logger, now: time.Now}
}

// NewConsultationService creates the consultation lifecycle
func NewConsultationService(db *gorm.DB, logger *zap.Logger) *BookingService[models.Consultation, *models.Consultation] {
	return NewBookingService[models.Consultation](db, ConsultationPolicy, logger)
}

// NewMaintenanceService creates the maintenance lifecycle
func NewMaintenanceService(db *gorm.DB, logger *zap.Logger) *BookingService[models.Maintenance, *models.Maintenance] {
	return NewBookingService[models.Maintenance](db, MaintenancePolicy, logger)
}

// Create stores a new booking in pending state
func (s *BookingService[T, PT]) Create(ctx context.Context, booking PT) error {
	booking.SetStatus(models.BookingPending)
	if err := s.db.WithContext(ctx).Create(booking).Error; err != nil {
		return apperrors.Internal(errors.Wrapf(err, "create %s", s.policy.Noun))
	}
	s.logger.Info("Booking created",
		zap.String("kind", s.policy.Noun),
		zap.String("id", booking.GetID().String()),
		zap.String("user_id", booking.OwnerID().String()),
	)
	return nil
}

// Get returns a booking visible to actor
func (s *BookingService[T, PT]) Get(ctx context.Context, id uuid.UUID, actor *models.User) (PT, error) {
	booking, err := s.load(s.db.WithContext(ctx).Preload("User").Preload(s.policy.Assignee), id)
	if err != nil {
		return nil, err
	}
	if booking.OwnerID() != actor.ID && !actor.IsAdmin {
		return nil, apperrors.Forbidden("Not authorized to view this %s", s.policy.Noun)
	}
	return booking, nil
}

// ListMine returns the user's bookings, newest first
func (s *BookingService[T, PT]) ListMine(ctx context.Context, userID uuid.UUID) ([]T, error) {
	var out []T
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&out).Error
	if err != nil {
		return nil, apperrors.Internal(errors.Wrapf(err, "list %s", s.policy.Noun))
	}
	return out, nil
}

// ListAll returns every booking, newest first
func (s *BookingService[T, PT]) ListAll(ctx context.Context) ([]T, error) {
	var out []T
	err := s.db.WithContext(ctx).Preload("User").Preload(s.policy.Assignee).Order("created_at DESC").Find(&out).Error
	if err != nil {
		return nil, apperrors.Internal(errors.Wrapf(err, "list %s", s.policy.Noun))
	}
	return out, nil
}

// Cancel moves a booking to cancelled
func (s *BookingService[T, PT]) Cancel(ctx context.Context, id uuid.UUID, actor *models.User) (PT, error) {
	booking, err := s.load(s.db.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}
	if err := s.policy.CheckCancel(booking, actor); err != nil {
		return nil, err
	}

	from := booking.CurrentStatus()
	res := s.db.WithContext(ctx).Model(booking).
		Where("status = ?", from).
		Update("status", models.BookingCancelled)
	if res.Error != nil {
		return nil, apperrors.Internal(errors.Wrapf(res.Error, "cancel %s", s.policy.Noun))
	}
	if res.RowsAffected == 0 {
		return nil, apperrors.InvalidState("The %s changed status, try again", s.policy.Noun)
	}
	booking.SetStatus(models.BookingCancelled)
	return booking, nil
}

// SubmitFeedback records the owner's rating of a completed booking, replacing any earlier feedback
func (s *BookingService[T, PT]) SubmitFeedback(ctx context.Context, id uuid.UUID, actor *models.User, rating int, comment string) (PT, error) {
	if err := validateRating(rating); err != nil {
		return nil, err
	}

	booking, err := s.load(s.db.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}
	if err := s.policy.CheckFeedback(booking, actor); err != nil {
		return nil, err
	}

	submittedAt := s.now().UTC()
	feedback := models.Feedback{Rating: &rating, Comment: strings.TrimSpace(comment), SubmittedAt: &submittedAt}
	err = s.db.WithContext(ctx).Model(booking).Updates(map[string]interface{}{
		"feedback_rating":       feedback.Rating,
		"feedback_comment":      feedback.Comment,
		"feedback_submitted_at": feedback.SubmittedAt,
	}).Error
	if err != nil {
		return nil, apperrors.Internal(errors.Wrapf(err, "save %s feedback", s.policy.Noun))
	}
	booking.SetFeedback(feedback)
	return booking, nil
}

// UpdateStatus overwrites status, assignee and notes without enforcing a transition graph
func (s *BookingService[T, PT]) UpdateStatus(ctx context.Context, id uuid.UUID, patch BookingStatusPatch) (PT, error) {
	if patch.Status.HasValue() && !s.policy.ValidStatus(patch.Status.Value) {
		return nil, apperrors.Validation("Invalid %s status: %s", s.policy.Noun, patch.Status.Value)
	}
	if patch.Status.Set && patch.Status.Null {
		return nil, apperrors.Validation("Status cannot be null")
	}

	booking, err := s.load(s.db.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if patch.Status.HasValue() {
		updates["status"] = patch.Status.Value
		booking.SetStatus(patch.Status.Value)
	}
	if patch.AssigneeID.Set {
		var assignee *uuid.UUID
		patch.AssigneeID.ApplyNullable(&assignee)
		if assignee != nil {
			if err := s.staffExists(ctx, *assignee); err != nil {
				return nil, err
			}
		}
		updates[s.policy.AssigneeColumn] = assignee
		booking.SetAssignee(assignee)
	}
	if patch.Notes.Set {
		notes := ""
		if patch.Notes.HasValue() {
			notes = patch.Notes.Value
		}
		updates["notes"] = notes
		booking.SetNotes(notes)
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(booking).Updates(updates).Error; err != nil {
			return nil, apperrors.Internal(errors.Wrapf(err, "update %s", s.policy.Noun))
		}
	}

	s.logger.Info("Booking updated by administrator",
		zap.String("kind", s.policy.Noun),
		zap.String("id", id.String()),
		zap.String("status", string(booking.CurrentStatus())),
	)
	return booking, nil
}

func (s *BookingService[T, PT]) staffExists(ctx context.Context, id uuid.UUID) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return apperrors.Internal(errors.Wrap(err, "load assignee"))
	}
	if count == 0 {
		return apperrors.NotFound("Assigned staff member not found")
	}
	return nil
}

func (s *BookingService[T, PT]) load(db *gorm.DB, id uuid.UUID) (PT, error) {
	booking := PT(new(T))
	err := db.First(booking, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("%s not found", capitalize(s.policy.Noun))
	}
	if err != nil {
		return nil, apperrors.Internal(errors.Wrapf(err, "load %s", s.policy.Noun))
	}
	return booking, nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
