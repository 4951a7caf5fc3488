package testutil

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/solarhub/solarhub-api/models"
)

// TestPassword is the plain-text password of every fixture account
const TestPassword = "password123"

// CreateUser inserts a verified customer account
func CreateUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	return createAccount(t, db, email, false)
}

// CreateAdmin inserts a verified administrator account
func CreateAdmin(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	return createAccount(t, db, email, true)
}

func createAccount(t *testing.T, db *gorm.DB, email string, admin bool) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{
		FirstName:    "Test",
		LastName:     "User",
		Email:        email,
		PasswordHash: string(hash),
		IsAdmin:      admin,
		IsVerified:   true,
	}
	require.NoError(t, db.Create(user).Error, "create user %s", email)
	return user
}

// CreateProduct inserts an active product with the given price and stock
func CreateProduct(t *testing.T, db *gorm.DB, name, price string, stock int) *models.Product {
	t.Helper()

	product := &models.Product{
		Name:             name,
		Category:         "panels",
		Description:      name + " description",
		Price:            decimal.RequireFromString(price),
		Brand:            "SunCo",
		Stock:            stock,
		IsActive:         true,
		AdditionalImages: datatypes.JSONSlice[string]{},
		Specifications:   datatypes.JSONMap{},
	}
	require.NoError(t, db.Create(product).Error, "create product %s", name)
	return product
}

// CreateService inserts an active installation service available in the given locations
func CreateService(t *testing.T, db *gorm.DB, name, price string, locations ...string) *models.Service {
	t.Helper()

	service := &models.Service{
		Name:               name,
		Type:               models.ServiceTypeInstallation,
		Description:        name + " description",
		Price:              decimal.RequireFromString(price),
		Duration:           "1 day",
		PackageSize:        models.PackageSmallResidential,
		AvailableLocations: append(datatypes.JSONSlice[string]{}, locations...),
		IsActive:           true,
	}
	require.NoError(t, db.Create(service).Error, "create service %s", name)
	return service
}
