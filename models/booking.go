package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BookingStatus is the lifecycle state shared by consultations and maintenance requests
type BookingStatus string

const (
	BookingPending    BookingStatus = "pending"
	BookingScheduled  BookingStatus = "scheduled"
	BookingInProgress BookingStatus = "in_progress"
	BookingCompleted  BookingStatus = "completed"
	BookingCancelled  BookingStatus = "cancelled"
)

// Feedback is the customer's rating of a completed booking
type Feedback struct {
	Rating      *int       `json:"rating,omitempty"`
	Comment     string     `gorm:"type:text" json:"comment,omitempty"`
	SubmittedAt *time.Time `json:"submittedAt,omitempty"`
}

// Booking is implemented by every entity that follows the booking lifecycle
type Booking interface {
	GetID() uuid.UUID
	OwnerID() uuid.UUID
	CurrentStatus() BookingStatus
	SetStatus(status BookingStatus)
	SetFeedback(feedback Feedback)
	SetAssignee(staffID *uuid.UUID)
	SetNotes(notes string)
}

// ConsultationType enumerates how a consultation is held
type ConsultationType string

const (
	ConsultationPhone    ConsultationType = "phone"
	ConsultationVideo    ConsultationType = "video"
	ConsultationInPerson ConsultationType = "in_person"
)

// ValidConsultationType reports whether t is in the consultation type vocabulary
func ValidConsultationType(t ConsultationType) bool {
	switch t {
	case ConsultationPhone, ConsultationVideo, ConsultationInPerson:
		return true
	}
	return false
}

// Consultation is a customer request to talk to an expert
type Consultation struct {
	ID               uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	UserID           uuid.UUID        `gorm:"type:uuid;not null;index" json:"userId"`
	User             *User            `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Topic            string           `gorm:"not null" json:"topic"`
	Description      string           `gorm:"type:text;not null" json:"description"`
	PreferredDate    time.Time        `gorm:"not null" json:"preferredDate"`
	AlternateDate    *time.Time       `json:"alternateDate,omitempty"`
	Status           BookingStatus    `gorm:"not null;default:'pending';index" json:"status"`
	ConsultationType ConsultationType `gorm:"not null;default:'phone'" json:"consultationType"`
	AssignedExpertID *uuid.UUID       `gorm:"type:uuid" json:"assignedExpertId,omitempty"`
	AssignedExpert   *User            `gorm:"foreignKey:AssignedExpertID" json:"assignedExpert,omitempty"`
	Notes            string           `gorm:"type:text" json:"notes,omitempty"`
	Feedback         Feedback         `gorm:"embedded;embeddedPrefix:feedback_" json:"feedback"`
	CreatedAt        time.Time        `json:"createdAt"`
	UpdatedAt        time.Time        `json:"updatedAt"`
}

// TableName specifies the table name for the Consultation model
func (Consultation) TableName() string {
	return "consultations"
}

// BeforeCreate assigns the primary key
func (c *Consultation) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (c *Consultation) GetID() uuid.UUID               { return c.ID }
func (c *Consultation) OwnerID() uuid.UUID             { return c.UserID }
func (c *Consultation) CurrentStatus() BookingStatus   { return c.Status }
func (c *Consultation) SetStatus(status BookingStatus) { c.Status = status }
func (c *Consultation) SetFeedback(feedback Feedback)  { c.Feedback = feedback }
func (c *Consultation) SetAssignee(staffID *uuid.UUID) { c.AssignedExpertID = staffID }
func (c *Consultation) SetNotes(notes string)          { c.Notes = notes }

// MaintenanceType enumerates the kinds of maintenance visits
type MaintenanceType string

const (
	MaintenancePanelCleaning       MaintenanceType = "panel_cleaning"
	MaintenanceBatteryCheck        MaintenanceType = "battery_check"
	MaintenanceInverterMaintenance MaintenanceType = "inverter_maintenance"
	MaintenanceSystemInspection    MaintenanceType = "system_inspection"
	MaintenanceRepair              MaintenanceType = "repair"
)

// ValidMaintenanceType reports whether t is in the maintenance type vocabulary
func ValidMaintenanceType(t MaintenanceType) bool {
	switch t {
	case MaintenancePanelCleaning, MaintenanceBatteryCheck, MaintenanceInverterMaintenance,
		MaintenanceSystemInspection, MaintenanceRepair:
		return true
	}
	return false
}

// Maintenance is a customer request for an on-site maintenance visit
type Maintenance struct {
	ID                   uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	UserID               uuid.UUID       `gorm:"type:uuid;not null;index" json:"userId"`
	User                 *User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	ServiceType          MaintenanceType `gorm:"not null" json:"serviceType"`
	Description          string          `gorm:"type:text;not null" json:"description"`
	ScheduledDate        time.Time       `gorm:"not null" json:"scheduledDate"`
	Address              Address         `gorm:"embedded;embeddedPrefix:address_" json:"address"`
	Status               BookingStatus   `gorm:"not null;default:'pending';index" json:"status"`
	AssignedTechnicianID *uuid.UUID      `gorm:"type:uuid" json:"assignedTechnicianId,omitempty"`
	AssignedTechnician   *User           `gorm:"foreignKey:AssignedTechnicianID" json:"assignedTechnician,omitempty"`
	Notes                string          `gorm:"type:text" json:"notes,omitempty"`
	Feedback             Feedback        `gorm:"embedded;embeddedPrefix:feedback_" json:"feedback"`
	CreatedAt            time.Time       `json:"createdAt"`
	UpdatedAt            time.Time       `json:"updatedAt"`
}

// TableName specifies the table name for the Maintenance model
func (Maintenance) TableName() string {
	return "maintenance_requests"
}

// BeforeCreate assigns the primary key
func (m *Maintenance) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

func (m *Maintenance) GetID() uuid.UUID               { return m.ID }
func (m *Maintenance) OwnerID() uuid.UUID             { return m.UserID }
func (m *Maintenance) CurrentStatus() BookingStatus   { return m.Status }
func (m *Maintenance) SetStatus(status BookingStatus) { m.Status = status }
func (m *Maintenance) SetFeedback(feedback Feedback)  { m.Feedback = feedback }
func (m *Maintenance) SetAssignee(staffID *uuid.UUID) { m.AssignedTechnicianID = staffID }
func (m *Maintenance) SetNotes(notes string)          { m.Notes = notes }
