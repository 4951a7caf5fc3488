package models

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReviewTarget(t *testing.T) {
	productID := uuid.New()
	serviceID := uuid.New()

	t.Run("product only", func(t *testing.T) {
		target, err := NewReviewTarget(&productID, nil)
		require.NoError(t, err)
		assert.Equal(t, TargetProduct, target.Kind())
		assert.Equal(t, productID, target.ID())
		id, ok := target.ProductID()
		assert.True(t, ok)
		assert.Equal(t, productID, id)
	})

	t.Run("service only", func(t *testing.T) {
		target, err := NewReviewTarget(nil, &serviceID)
		require.NoError(t, err)
		assert.Equal(t, TargetService, target.Kind())
		_, ok := target.ProductID()
		assert.False(t, ok)
	})

	t.Run("both", func(t *testing.T) {
		_, err := NewReviewTarget(&productID, &serviceID)
		assert.ErrorIs(t, err, ErrInvalidReviewTarget)
	})

	t.Run("neither", func(t *testing.T) {
		_, err := NewReviewTarget(nil, nil)
		assert.ErrorIs(t, err, ErrInvalidReviewTarget)
	})
}

func TestReviewTargetZeroValueIsInvalid(t *testing.T) {
	assert.False(t, ReviewTarget{}.IsValid())
	assert.True(t, ProductTarget(uuid.New()).IsValid())
}

func TestReviewMarshalJSONExposesOneTargetField(t *testing.T) {
	productID := uuid.New()
	review := Review{ID: uuid.New(), Rating: 4, Comment: "Great panels"}
	review.SetTarget(ProductTarget(productID))

	data, err := json.Marshal(review)
	require.NoError(t, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &body))
	assert.Equal(t, productID.String(), body["productId"])
	assert.NotContains(t, body, "serviceId")
	assert.NotContains(t, body, "TargetKind")
	assert.Equal(t, float64(4), body["rating"])
}

func TestBookingEntitiesShareLifecycle(t *testing.T) {
	owner := uuid.New()
	var bookings = []Booking{
		&Consultation{UserID: owner, Status: BookingPending},
		&Maintenance{UserID: owner, Status: BookingPending},
	}

	for _, b := range bookings {
		assert.Equal(t, owner, b.OwnerID())
		b.SetStatus(BookingCompleted)
		assert.Equal(t, BookingCompleted, b.CurrentStatus())
	}
}
