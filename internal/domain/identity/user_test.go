package identity

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	t.Run("creates active user with hashed password", func(t *testing.T) {
		user, err := NewUser(" Admin@Clinic.tn ", "secret123", "Amine", "Ben Ali", RoleAdmin)
		require.NoError(t, err)

		assert.NotEqual(t, uuid.Nil, user.ID)
		assert.Equal(t, "admin@clinic.tn", user.Email)
		assert.NotEqual(t, "secret123", user.PasswordHash)
		assert.True(t, user.VerifyPassword("secret123"))
		assert.False(t, user.VerifyPassword("wrong-pass"))
		assert.True(t, user.CanLogin())
		assert.True(t, user.IsAdmin())
		assert.Equal(t, "Amine Ben Ali", user.FullName())
	})

	t.Run("rejects invalid email", func(t *testing.T) {
		_, err := NewUser("not-an-email", "secret123", "A", "B", RoleEmployee)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "email")
	})

	t.Run("rejects unknown role", func(t *testing.T) {
		_, err := NewUser("a@b.tn", "secret123", "A", "B", Role("ROOT"))
		assert.Error(t, err)
	})

	t.Run("rejects short password", func(t *testing.T) {
		_, err := NewUser("a@b.tn", "short", "A", "B", RoleEmployee)
		assert.Error(t, err)
	})

	t.Run("requires names", func(t *testing.T) {
		_, err := NewUser("a@b.tn", "secret123", "", "B", RoleEmployee)
		assert.Error(t, err)
	})
}

func TestUser_Deactivate(t *testing.T) {
	user, err := NewUser("tech@clinic.tn", "secret123", "Sami", "Trabelsi", RoleEmployee)
	require.NoError(t, err)

	require.NoError(t, user.Deactivate())
	assert.False(t, user.CanLogin())
	assert.Equal(t, 2, user.Version)

	assert.Error(t, user.Deactivate())
	require.NoError(t, user.Activate())
	assert.True(t, user.CanLogin())
}

func TestUser_AssignStockLocation(t *testing.T) {
	user, err := NewUser("tech@clinic.tn", "secret123", "Sami", "Trabelsi", RoleEmployee)
	require.NoError(t, err)

	loc := uuid.New()
	user.AssignStockLocation(&loc)
	require.NotNil(t, user.StockLocationID)
	assert.Equal(t, loc, *user.StockLocationID)

	user.AssignStockLocation(nil)
	assert.Nil(t, user.StockLocationID)
}
