package models

import "gorm.io/gorm"

// All lists every persisted model in migration order
func All() []interface{} {
	return []interface{}{
		&User{},
		&SavedConfiguration{},
		&VerificationCode{},
		&Product{},
		&Service{},
		&Order{},
		&OrderProductLine{},
		&OrderServiceLine{},
		&Consultation{},
		&Maintenance{},
		&Review{},
	}
}

// AutoMigrate creates or updates the schema for every model
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(All()...)
}
