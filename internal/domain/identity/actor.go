package identity

import "github.com/google/uuid"

// Actor is the authenticated user on whose behalf a use case runs
type Actor struct {
	UserID          uuid.UUID
	Role            Role
	StockLocationID *uuid.UUID
}

// IsAdmin reports whether the actor holds the ADMIN role
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// CanSeeAll reports whether the actor sees every record rather than only
// the ones assigned to them
func (a Actor) CanSeeAll() bool {
	return a.Role == RoleAdmin || a.Role == RoleManager
}
