package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestUserTableName(t *testing.T) {
	user := User{}
	assert.Equal(t, "users", user.TableName(), "Table name should be 'users'")
}

func TestUserBeforeCreate(t *testing.T) {
	user := User{Email: "  Jane.Doe@Example.COM "}

	err := user.BeforeCreate(nil)

	assert.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, user.ID, "ID should be assigned")
	assert.Equal(t, "jane.doe@example.com", user.Email, "Email should be normalized")
	assert.Equal(t, DefaultProfilePicture, user.ProfilePicture, "Profile picture should default")
}

func TestUserBeforeCreateKeepsExistingID(t *testing.T) {
	id := uuid.New()
	user := User{ID: id, ProfilePicture: "me.png"}

	assert.NoError(t, user.BeforeCreate(nil))
	assert.Equal(t, id, user.ID)
	assert.Equal(t, "me.png", user.ProfilePicture)
}

func TestUserFullName(t *testing.T) {
	tests := []struct {
		name      string
		firstName string
		lastName  string
		expected  string
	}{
		{"both parts", "Jane", "Doe", "Jane Doe"},
		{"first only", "Jane", "", "Jane"},
		{"last only", "", "Doe", "Doe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := User{FirstName: tt.firstName, LastName: tt.lastName}
			assert.Equal(t, tt.expected, user.FullName())
		})
	}
}

func TestUserSummary(t *testing.T) {
	var nilUser *User
	assert.Nil(t, nilUser.Summary())

	user := &User{ID: uuid.New(), FirstName: "Jane", LastName: "Doe", Email: "jane@example.com"}
	summary := user.Summary()
	assert.Equal(t, user.ID, summary.ID)
	assert.Equal(t, "Jane Doe", summary.Name)
}

func TestAddressPatchApplyTo(t *testing.T) {
	addr := Address{Street: "1 Main St", City: "Austin", State: "TX", ZipCode: "78701", Country: "US"}

	patch := AddressPatch{City: Some("Dallas"), ZipCode: Some("")}
	patch.ApplyTo(&addr)

	assert.Equal(t, "1 Main St", addr.Street, "Absent fields should be untouched")
	assert.Equal(t, "Dallas", addr.City)
	assert.Equal(t, "", addr.ZipCode, "Empty string is a value, not absent")
	assert.False(t, addr.IsComplete())
}
