package identity

import (
	"context"

	"github.com/google/uuid"
	"github.com/medrent/backend/internal/domain/shared"
)

// UserRepository defines the interface for user persistence
type UserRepository interface {
	// FindByID finds a user by ID
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)

	// FindByEmail finds a user by (lower-cased) email
	FindByEmail(ctx context.Context, email string) (*User, error)

	// FindAll lists users; supports "role" and "is_active" filters
	FindAll(ctx context.Context, filter shared.Filter) ([]User, error)

	// FindByRole lists active users with the given role
	FindByRole(ctx context.Context, role Role) ([]User, error)

	// Count counts users matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// ExistsByEmail checks whether the email is already taken
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// Save creates or updates a user
	Save(ctx context.Context, user *User) error

	// Delete deletes a user by ID
	Delete(ctx context.Context, id uuid.UUID) error
}
