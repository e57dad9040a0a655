package models_test

import (
	"estatehub/backend/internal/models"
	"reflect"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

// TestUserBeforeCreate_GeneratesUUID verifies that the BeforeCreate hook generates a valid UUID.
func TestUserBeforeCreate_GeneratesUUID(t *testing.T) {
	// Arrange
	user := &models.User{
		Email: "anna@example.com",
		Name:  "Anna",
	}
	assert.Empty(t, user.ID, "User ID should be empty before BeforeCreate")

	// Act - GORM would call this automatically
	err := user.BeforeCreate(nil)

	// Assert
	assert.NoError(t, err)
	parsed, parseErr := uuid.Parse(user.ID)
	assert.NoError(t, parseErr, "User ID must be a valid UUID string")
	assert.NotEqual(t, uuid.Nil, parsed)
	assert.Equal(t, models.RoleUser, user.Role, "Role defaults to USER")
}

// TestUserBeforeCreate_PreservesExistingID verifies that the hook doesn't overwrite an existing ID or role.
func TestUserBeforeCreate_PreservesExistingID(t *testing.T) {
	existingID := uuid.New().String()
	user := &models.User{ID: existingID, Role: models.RoleAdmin}

	err := user.BeforeCreate(nil)

	assert.NoError(t, err)
	assert.Equal(t, existingID, user.ID)
	assert.True(t, user.IsAdmin())
}

// TestUserBeforeCreate_MultipleUsers verifies unique UUIDs are generated for multiple users.
func TestUserBeforeCreate_MultipleUsers(t *testing.T) {
	users := []*models.User{
		{Email: "a@example.com"},
		{Email: "b@example.com"},
		{Email: "c@example.com"},
	}

	generatedIDs := make(map[string]bool)
	for _, user := range users {
		assert.NoError(t, user.BeforeCreate(nil))
		assert.NotContains(t, generatedIDs, user.ID, "Each user should have a unique ID")
		generatedIDs[user.ID] = true
	}

	assert.Len(t, generatedIDs, len(users))
}

// TestUserStructTags catches accidental tag removal during refactoring.
func TestUserStructTags(t *testing.T) {
	userType := reflect.TypeOf(models.User{})

	idField, found := userType.FieldByName("ID")
	assert.True(t, found)
	assert.Contains(t, idField.Tag.Get("gorm"), "primaryKey")
	assert.Equal(t, "id", idField.Tag.Get("json"))

	emailField, found := userType.FieldByName("Email")
	assert.True(t, found)
	assert.Contains(t, emailField.Tag.Get("gorm"), "uniqueIndex")

	hashField, found := userType.FieldByName("PasswordHash")
	assert.True(t, found)
	assert.Equal(t, "-", hashField.Tag.Get("json"), "password hash must never be serialized")
}

func TestUserPublic(t *testing.T) {
	user := &models.User{ID: "u1", Name: "Ivan", Image: "https://cdn/x.png", Email: "secret@example.com"}

	pub := user.Public()

	assert.Equal(t, models.PublicUser{ID: "u1", Name: "Ivan", Image: "https://cdn/x.png"}, pub)
}

// BenchmarkUserBeforeCreate measures UUID generation performance.
func BenchmarkUserBeforeCreate(b *testing.B) {
	user := &models.User{Email: "bench@example.com"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		user.ID = ""
		_ = user.BeforeCreate(nil)
	}
}
