package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultProfilePicture is assigned to new accounts
const DefaultProfilePicture = "default.jpg"

// User represents a customer or administrator account
type User struct {
	ID                      uuid.UUID            `gorm:"type:uuid;primaryKey" json:"id"`
	FirstName               string               `gorm:"not null" json:"firstName"`
	LastName                string               `gorm:"not null" json:"lastName"`
	Email                   string               `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash            string               `gorm:"not null" json:"-"`
	MobileNo                string               `json:"mobileNo"`
	Address                 Address              `gorm:"embedded;embeddedPrefix:address_" json:"address"`
	ProfilePicture          string               `gorm:"not null;default:'default.jpg'" json:"profilePicture"`
	IsAdmin                 bool                 `gorm:"not null;default:false" json:"isAdmin"`
	IsVerified              bool                 `gorm:"not null;default:false" json:"isVerified"`
	PreferredConfigurations []SavedConfiguration `gorm:"foreignKey:UserID" json:"preferredConfigurations"`
	CreatedAt               time.Time            `json:"createdAt"`
	UpdatedAt               time.Time            `json:"updatedAt"`
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}

// BeforeCreate assigns the primary key and normalizes the email
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	u.Email = NormalizeEmail(u.Email)
	if u.ProfilePicture == "" {
		u.ProfilePicture = DefaultProfilePicture
	}
	return nil
}

// FullName joins the name parts
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// NormalizeEmail trims and lower-cases an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SavedConfiguration is a named system configuration a user keeps for later
type SavedConfiguration struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	Name        string    `gorm:"not null" json:"name"`
	Description string    `gorm:"type:text;not null" json:"description"`
	SavedAt     time.Time `gorm:"not null" json:"savedAt"`
}

// TableName specifies the table name for the SavedConfiguration model
func (SavedConfiguration) TableName() string {
	return "saved_configurations"
}

// BeforeCreate assigns the primary key
func (c *SavedConfiguration) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// UserSummary is the reduced user shape embedded in other resources
type UserSummary struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email,omitempty"`
}

// Summary returns the reduced user shape
func (u *User) Summary() *UserSummary {
	if u == nil {
		return nil
	}
	return &UserSummary{ID: u.ID, Name: u.FullName(), Email: u.Email}
}
