package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// RatingSummary is the {average, count} pair derived from approved reviews
type RatingSummary struct {
	Average float64 `gorm:"not null;default:0" json:"average"`
	Count   int     `gorm:"not null;default:0" json:"count"`
}

// Product is a sellable item with a stock count
type Product struct {
	ID                uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	Name              string                      `gorm:"not null" json:"name"`
	Category          string                      `gorm:"not null;index" json:"category"`
	SubCategory       string                      `json:"subCategory"`
	Description       string                      `gorm:"type:text;not null" json:"description"`
	Price             decimal.Decimal             `gorm:"type:decimal(12,2);not null" json:"price"`
	ImageURL          string                      `json:"imageUrl"`
	AdditionalImages  datatypes.JSONSlice[string] `json:"additionalImages"`
	Specifications    datatypes.JSONMap           `json:"specifications"`
	Brand             string                      `gorm:"index" json:"brand"`
	Stock             int                         `gorm:"not null;default:0;check:stock >= 0" json:"stock"`
	InstallationGuide string                      `json:"installationGuide"`
	IsActive          bool                        `gorm:"not null;default:true" json:"isActive"`
	Ratings           RatingSummary               `gorm:"embedded;embeddedPrefix:ratings_" json:"ratings"`
	CreatedAt         time.Time                   `json:"createdAt"`
	UpdatedAt         time.Time                   `json:"updatedAt"`
	DeletedAt         gorm.DeletedAt              `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Product model
func (Product) TableName() string {
	return "products"
}

// BeforeCreate assigns the primary key
func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// ServiceType enumerates bookable service kinds
type ServiceType string

const (
	ServiceTypeInstallation ServiceType = "installation"
	ServiceTypeMaintenance  ServiceType = "maintenance"
	ServiceTypeConsultation ServiceType = "consultation"
	ServiceTypeRepair       ServiceType = "repair"
)

// PackageSize enumerates service package tiers
type PackageSize string

const (
	PackageSmallResidential PackageSize = "small_residential"
	PackageLargeResidential PackageSize = "large_residential"
	PackageCommercial       PackageSize = "commercial"
	PackageIndustrial       PackageSize = "industrial"
)

// Service is a bookable installation, maintenance, consultation or repair offering
type Service struct {
	ID                 uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	Name               string                      `gorm:"not null" json:"name"`
	Type               ServiceType                 `gorm:"not null;index" json:"type"`
	Description        string                      `gorm:"type:text;not null" json:"description"`
	Price              decimal.Decimal             `gorm:"type:decimal(12,2);not null" json:"price"`
	ImageURL           string                      `json:"imageUrl"`
	Duration           string                      `gorm:"not null" json:"duration"`
	PackageSize        PackageSize                 `json:"packageSize,omitempty"`
	AvailableLocations datatypes.JSONSlice[string] `json:"availableLocations"`
	IsActive           bool                        `gorm:"not null;default:true" json:"isActive"`
	CreatedAt          time.Time                   `json:"createdAt"`
	UpdatedAt          time.Time                   `json:"updatedAt"`
	DeletedAt          gorm.DeletedAt              `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Service model
func (Service) TableName() string {
	return "services"
}

// BeforeCreate assigns the primary key
func (s *Service) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// OffersLocation reports whether the service is available at location
func (s *Service) OffersLocation(location string) bool {
	for _, l := range s.AvailableLocations {
		if l == location {
			return true
		}
	}
	return false
}

// ValidServiceType reports whether t is in the service type vocabulary
func ValidServiceType(t ServiceType) bool {
	switch t {
	case ServiceTypeInstallation, ServiceTypeMaintenance, ServiceTypeConsultation, ServiceTypeRepair:
		return true
	}
	return false
}

// ValidPackageSize reports whether p is in the package size vocabulary
func ValidPackageSize(p PackageSize) bool {
	switch p {
	case PackageSmallResidential, PackageLargeResidential, PackageCommercial, PackageIndustrial:
		return true
	}
	return false
}
