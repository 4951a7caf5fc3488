package models

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// TargetKind names the catalog entity a review is about
type TargetKind string

const (
	TargetProduct TargetKind = "product"
	TargetService TargetKind = "service"
)

// ErrInvalidReviewTarget is returned when a request names both or neither of productId and serviceId
var ErrInvalidReviewTarget = errors.New("review must reference exactly one of productId or serviceId")

// ReviewTarget references exactly one product or one service.
// The zero value is invalid; construct it with ProductTarget or ServiceTarget.
type ReviewTarget struct {
	kind TargetKind
	id   uuid.UUID
}

// ProductTarget references a product
func ProductTarget(id uuid.UUID) ReviewTarget {
	return ReviewTarget{kind: TargetProduct, id: id}
}

// ServiceTarget references a service
func ServiceTarget(id uuid.UUID) ReviewTarget {
	return ReviewTarget{kind: TargetService, id: id}
}

// NewReviewTarget builds a target from the two optional request fields
func NewReviewTarget(productID, serviceID *uuid.UUID) (ReviewTarget, error) {
	switch {
	case productID != nil && serviceID == nil:
		return ProductTarget(*productID), nil
	case serviceID != nil && productID == nil:
		return ServiceTarget(*serviceID), nil
	default:
		return ReviewTarget{}, ErrInvalidReviewTarget
	}
}

func (t ReviewTarget) Kind() TargetKind { return t.kind }
func (t ReviewTarget) ID() uuid.UUID    { return t.id }

// ProductID returns the product id when the target is a product
func (t ReviewTarget) ProductID() (uuid.UUID, bool) {
	return t.id, t.kind == TargetProduct
}

// IsValid reports whether the target was built by one of the constructors
func (t ReviewTarget) IsValid() bool {
	return (t.kind == TargetProduct || t.kind == TargetService) && t.id != uuid.Nil
}

// Review is a user's rating of a product or a service
type Review struct {
	ID         uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID                   `gorm:"type:uuid;not null;uniqueIndex:idx_review_user_target,priority:1" json:"userId"`
	User       *User                       `gorm:"foreignKey:UserID" json:"-"`
	TargetKind TargetKind                  `gorm:"not null;uniqueIndex:idx_review_user_target,priority:2;index:idx_review_target,priority:1" json:"-"`
	TargetID   uuid.UUID                   `gorm:"type:uuid;not null;uniqueIndex:idx_review_user_target,priority:3;index:idx_review_target,priority:2" json:"-"`
	OrderID    *uuid.UUID                  `gorm:"type:uuid" json:"orderId,omitempty"`
	Rating     int                         `gorm:"not null;check:rating BETWEEN 1 AND 5" json:"rating"`
	Comment    string                      `gorm:"type:text;not null" json:"comment"`
	Images     datatypes.JSONSlice[string] `json:"images"`
	IsApproved bool                        `gorm:"not null;default:true" json:"isApproved"`
	CreatedAt  time.Time                   `json:"createdAt"`
	UpdatedAt  time.Time                   `json:"updatedAt"`
}

// TableName specifies the table name for the Review model
func (Review) TableName() string {
	return "reviews"
}

// BeforeCreate assigns the primary key
func (r *Review) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// Target returns the reviewed entity
func (r *Review) Target() ReviewTarget {
	return ReviewTarget{kind: r.TargetKind, id: r.TargetID}
}

// SetTarget stores t in the target columns
func (r *Review) SetTarget(t ReviewTarget) {
	r.TargetKind = t.kind
	r.TargetID = t.id
}

// MarshalJSON renders the target as productId or serviceId
func (r Review) MarshalJSON() ([]byte, error) {
	type plain Review
	out := struct {
		plain
		ProductID *uuid.UUID   `json:"productId,omitempty"`
		ServiceID *uuid.UUID   `json:"serviceId,omitempty"`
		User      *UserSummary `json:"user,omitempty"`
	}{plain: plain(r), User: r.User.Summary()}
	id := r.TargetID
	switch r.TargetKind {
	case TargetProduct:
		out.ProductID = &id
	case TargetService:
		out.ServiceID = &id
	}
	return json.Marshal(out)
}
