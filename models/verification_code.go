package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VerificationCode is a one-time code mailed to a user to confirm their email
type VerificationCode struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email     string    `gorm:"uniqueIndex;not null"`
	Code      string    `gorm:"not null"`
	ExpiresAt time.Time `gorm:"not null;index"`
	CreatedAt time.Time
}

// TableName specifies the table name for the VerificationCode model
func (VerificationCode) TableName() string {
	return "verification_codes"
}

// BeforeCreate assigns the primary key
func (v *VerificationCode) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}

// Expired reports whether the code is no longer usable at now
func (v *VerificationCode) Expired(now time.Time) bool {
	return !now.Before(v.ExpiresAt)
}
