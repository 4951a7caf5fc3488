package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/solarhub/solarhub-api/apperrors"
	"github.com/solarhub/solarhub-api/models"
	"github.com/solarhub/solarhub-api/testutil"
)

func newConsultation(t *testing.T, svc *BookingService[models.Consultation, *models.Consultation], owner *models.User) *models.Consultation {
	t.Helper()
	c := &models.Consultation{
		UserID:           owner.ID,
		Topic:            "Sizing",
		Description:      "How many panels do I need?",
		PreferredDate:    time.Now().Add(48 * time.Hour).UTC(),
		ConsultationType: models.ConsultationVideo,
	}
	require.NoError(t, svc.Create(context.Background(), c))
	return c
}

func newMaintenance(t *testing.T, svc *BookingService[models.Maintenance, *models.Maintenance], owner *models.User) *models.Maintenance {
	t.Helper()
	m := &models.Maintenance{
		UserID:        owner.ID,
		ServiceType:   models.MaintenancePanelCleaning,
		Description:   "Dusty panels",
		ScheduledDate: time.Now().Add(72 * time.Hour).UTC(),
		Address:       models.Address{Street: "1 Sun St", City: "Phoenix", State: "AZ", ZipCode: "85001", Country: "US"},
	}
	require.NoError(t, svc.Create(context.Background(), m))
	return m
}

func setStatus(t *testing.T, db *gorm.DB, model interface{}, status models.BookingStatus) {
	t.Helper()
	require.NoError(t, db.Model(model).Update("status", status).Error)
}

func TestBookingPolicyCancel(t *testing.T) {
	owner := &models.User{ID: uuid.New()}
	stranger := &models.User{ID: uuid.New()}
	admin := &models.User{ID: uuid.New(), IsAdmin: true}

	tests := []struct {
		name     string
		policy   BookingPolicy
		status   models.BookingStatus
		actor    *models.User
		expected error
	}{
		{"consultation pending by owner", ConsultationPolicy, models.BookingPending, owner, nil},
		{"consultation scheduled by admin", ConsultationPolicy, models.BookingScheduled, admin, nil},
		{"consultation completed", ConsultationPolicy, models.BookingCompleted, owner, apperrors.ErrInvalidState},
		{"consultation already cancelled", ConsultationPolicy, models.BookingCancelled, owner, apperrors.ErrInvalidState},
		{"consultation by stranger", ConsultationPolicy, models.BookingPending, stranger, apperrors.ErrForbidden},
		{"maintenance scheduled by owner", MaintenancePolicy, models.BookingScheduled, owner, nil},
		{"maintenance in progress", MaintenancePolicy, models.BookingInProgress, owner, apperrors.ErrInvalidState},
		{"maintenance in progress by admin", MaintenancePolicy, models.BookingInProgress, admin, apperrors.ErrInvalidState},
		{"maintenance completed", MaintenancePolicy, models.BookingCompleted, owner, apperrors.ErrInvalidState},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			booking := &models.Maintenance{UserID: owner.ID, Status: tt.status}
			err := tt.policy.CheckCancel(booking, tt.actor)
			if tt.expected == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tt.expected), "got %v", err)
		})
	}
}

func TestBookingPolicyCancelMessage(t *testing.T) {
	owner := &models.User{ID: uuid.New()}
	err := MaintenancePolicy.CheckCancel(&models.Maintenance{UserID: owner.ID, Status: models.BookingInProgress}, owner)
	require.Error(t, err)
	assert.Equal(t, "Cannot cancel in progress maintenance request", apperrors.From(err).Message())
}

func TestConsultationLifecycle(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	svc := NewConsultationService(db, zap.NewNop())
	owner := testutil.CreateUser(t, db, "owner@example.com")
	stranger := testutil.CreateUser(t, db, "stranger@example.com")
	admin := testutil.CreateAdmin(t, db, "admin@example.com")

	c := newConsultation(t, svc, owner)
	assert.Equal(t, models.BookingPending, c.Status)

	// Feedback is only accepted once the consultation is completed
	_, err := svc.SubmitFeedback(ctx, c.ID, owner, 5, "Great")
	assert.True(t, errors.Is(err, apperrors.ErrInvalidState), "got %v", err)

	_, err = svc.Get(ctx, c.ID, stranger)
	assert.True(t, errors.Is(err, apperrors.ErrForbidden), "got %v", err)

	loaded, err := svc.Get(ctx, c.ID, admin)
	require.NoError(t, err)
	require.NotNil(t, loaded.User)
	assert.Equal(t, owner.ID, loaded.User.ID)

	updated, err := svc.UpdateStatus(ctx, c.ID, BookingStatusPatch{
		Status:     models.Some(models.BookingCompleted),
		AssigneeID: models.Some(admin.ID),
		Notes:      models.Some("Call at noon"),
	})
	require.NoError(t, err)
	assert.Equal(t, models.BookingCompleted, updated.Status)
	require.NotNil(t, updated.AssignedExpertID)
	assert.Equal(t, admin.ID, *updated.AssignedExpertID)
	assert.Equal(t, "Call at noon", updated.Notes)

	_, err = svc.SubmitFeedback(ctx, c.ID, owner, 6, "Too good")
	assert.True(t, errors.Is(err, apperrors.ErrValidation), "got %v", err)

	_, err = svc.SubmitFeedback(ctx, c.ID, stranger, 4, "Not mine")
	assert.True(t, errors.Is(err, apperrors.ErrForbidden), "got %v", err)

	rated, err := svc.SubmitFeedback(ctx, c.ID, owner, 4, "  Helpful  ")
	require.NoError(t, err)
	require.NotNil(t, rated.Feedback.Rating)
	assert.Equal(t, 4, *rated.Feedback.Rating)
	assert.Equal(t, "Helpful", rated.Feedback.Comment)
	assert.NotNil(t, rated.Feedback.SubmittedAt)

	_, err = svc.Cancel(ctx, c.ID, owner)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidState), "got %v", err)
}

func TestConsultationStatusPatch(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	svc := NewConsultationService(db, zap.NewNop())
	owner := testutil.CreateUser(t, db, "owner@example.com")
	admin := testutil.CreateAdmin(t, db, "admin@example.com")
	c := newConsultation(t, svc, owner)

	// in_progress belongs to the maintenance vocabulary only
	_, err := svc.UpdateStatus(ctx, c.ID, BookingStatusPatch{Status: models.Some(models.BookingInProgress)})
	assert.True(t, errors.Is(err, apperrors.ErrValidation), "got %v", err)

	_, err = svc.UpdateStatus(ctx, c.ID, BookingStatusPatch{Status: models.Null[models.BookingStatus]()})
	assert.True(t, errors.Is(err, apperrors.ErrValidation), "got %v", err)

	_, err = svc.UpdateStatus(ctx, c.ID, BookingStatusPatch{AssigneeID: models.Some(uuid.New())})
	assert.True(t, errors.Is(err, apperrors.ErrNotFound), "got %v", err)

	_, err = svc.UpdateStatus(ctx, uuid.New(), BookingStatusPatch{})
	assert.True(t, errors.Is(err, apperrors.ErrNotFound), "got %v", err)

	_, err = svc.UpdateStatus(ctx, c.ID, BookingStatusPatch{AssigneeID: models.Some(admin.ID)})
	require.NoError(t, err)

	// Explicit null clears the assignee and leaves the status alone
	cleared, err := svc.UpdateStatus(ctx, c.ID, BookingStatusPatch{AssigneeID: models.Null[uuid.UUID]()})
	require.NoError(t, err)
	assert.Nil(t, cleared.AssignedExpertID)
	assert.Equal(t, models.BookingPending, cleared.Status)

	var stored models.Consultation
	require.NoError(t, db.First(&stored, "id = ?", c.ID).Error)
	assert.Nil(t, stored.AssignedExpertID)
}

func TestMaintenanceCancel(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	svc := NewMaintenanceService(db, zap.NewNop())
	owner := testutil.CreateUser(t, db, "owner@example.com")
	stranger := testutil.CreateUser(t, db, "stranger@example.com")
	admin := testutil.CreateAdmin(t, db, "admin@example.com")

	t.Run("owner cancels a scheduled visit", func(t *testing.T) {
		m := newMaintenance(t, svc, owner)
		setStatus(t, db, m, models.BookingScheduled)

		cancelled, err := svc.Cancel(ctx, m.ID, owner)
		require.NoError(t, err)
		assert.Equal(t, models.BookingCancelled, cancelled.Status)
	})

	t.Run("work in progress cannot be cancelled", func(t *testing.T) {
		m := newMaintenance(t, svc, owner)
		setStatus(t, db, m, models.BookingInProgress)

		_, err := svc.Cancel(ctx, m.ID, admin)
		assert.True(t, errors.Is(err, apperrors.ErrInvalidState), "got %v", err)
	})

	t.Run("stranger cannot cancel", func(t *testing.T) {
		m := newMaintenance(t, svc, owner)

		_, err := svc.Cancel(ctx, m.ID, stranger)
		assert.True(t, errors.Is(err, apperrors.ErrForbidden), "got %v", err)
	})

	t.Run("cancelling twice", func(t *testing.T) {
		m := newMaintenance(t, svc, owner)
		_, err := svc.Cancel(ctx, m.ID, owner)
		require.NoError(t, err)

		_, err = svc.Cancel(ctx, m.ID, owner)
		assert.True(t, errors.Is(err, apperrors.ErrInvalidState), "got %v", err)
	})

	mine, err := svc.ListMine(ctx, owner.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 4)

	all, err := svc.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}
