package identity

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/medrent/backend/internal/domain/identity"
	"github.com/medrent/backend/internal/domain/shared"
	"github.com/medrent/backend/internal/infrastructure/auth"
	"github.com/medrent/backend/internal/infrastructure/persistence"
	"github.com/medrent/backend/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewSQLiteDB(t)
	blacklist := auth.NewInMemoryTokenBlacklist()
	svc := NewUserService(persistence.NewGormUserRepository(db), blacklist, time.Hour, nil)
	admin := testutil.SeedUser(t, db, "admin@medrent.tn", identity.RoleAdmin)

	created, err := svc.Create(ctx, CreateUserRequest{
		Email:     "Tech@Medrent.tn",
		Password:  "password123",
		FirstName: "Sami",
		LastName:  "Gharbi",
		Role:      "EMPLOYEE",
	})
	require.NoError(t, err)
	assert.Equal(t, "tech@medrent.tn", created.Email)
	assert.True(t, created.IsActive)

	t.Run("duplicate email", func(t *testing.T) {
		_, err := svc.Create(ctx, CreateUserRequest{
			Email: "tech@medrent.tn", Password: "password123", FirstName: "A", LastName: "B", Role: "EMPLOYEE",
		})
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	})

	t.Run("list by role", func(t *testing.T) {
		items, total, err := svc.List(ctx, UserListFilter{Role: "EMPLOYEE"})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, items, 1)
		assert.Equal(t, created.ID, items[0].ID)
	})

	t.Run("update role and location", func(t *testing.T) {
		loc := testutil.SeedLocation(t, db, "Sfax")
		role := "MANAGER"
		updated, err := svc.Update(ctx, created.ID, UpdateUserRequest{Role: &role, StockLocationID: &loc.ID})
		require.NoError(t, err)
		assert.Equal(t, "MANAGER", updated.Role)
		assert.Equal(t, loc.ID, *updated.StockLocationID)
	})

	t.Run("deactivation revokes tokens", func(t *testing.T) {
		issued := time.Now().Add(-time.Minute)
		inactive := false
		updated, err := svc.Update(ctx, created.ID, UpdateUserRequest{IsActive: &inactive})
		require.NoError(t, err)
		assert.False(t, updated.IsActive)

		revoked, err := blacklist.IsUserRevoked(ctx, created.ID.String(), issued)
		require.NoError(t, err)
		assert.True(t, revoked)
	})

	t.Run("cannot delete self", func(t *testing.T) {
		err := svc.Delete(ctx, admin.ID, admin.ID)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "CANNOT_DELETE_SELF", domainErr.Code)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, svc.Delete(ctx, admin.ID, created.ID))
		_, err := svc.GetByID(ctx, created.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.ErrorIs(t, svc.Delete(ctx, admin.ID, uuid.New()), shared.ErrNotFound)
	})
}
