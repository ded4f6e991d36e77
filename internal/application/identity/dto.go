package identity

import (
	"time"

	"github.com/google/uuid"
	"github.com/medrent/backend/internal/domain/identity"
)

// LoginInput contains the input for user login
type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	IP       string `json:"-"`
}

// LoginResult contains the result of a successful login
type LoginResult struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
	TokenType             string    `json:"token_type"`
	User                  UserInfo  `json:"user"`
}

// UserInfo contains basic user information returned after login
type UserInfo struct {
	ID              uuid.UUID  `json:"id"`
	Email           string     `json:"email"`
	FirstName       string     `json:"first_name"`
	LastName        string     `json:"last_name"`
	FullName        string     `json:"full_name"`
	Role            string     `json:"role"`
	StockLocationID *uuid.UUID `json:"stock_location_id,omitempty"`
}

// RefreshTokenInput contains the input for token refresh
type RefreshTokenInput struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// RefreshTokenResult contains the result of a token refresh
type RefreshTokenResult struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
	TokenType             string    `json:"token_type"`
}

// LogoutInput identifies the access token to revoke
type LogoutInput struct {
	UserID   uuid.UUID
	TokenJTI string
	TokenTTL time.Duration
}

// ChangePasswordInput contains the input for a self-service password change
type ChangePasswordInput struct {
	UserID      uuid.UUID `json:"-"`
	OldPassword string    `json:"old_password" binding:"required"`
	NewPassword string    `json:"new_password" binding:"required,min=8,max=72"`
}

// CreateUserRequest represents a request to create a user
type CreateUserRequest struct {
	Email           string     `json:"email" binding:"required,email,max=200"`
	Password        string     `json:"password" binding:"required,min=8,max=72"`
	FirstName       string     `json:"first_name" binding:"required,max=100"`
	LastName        string     `json:"last_name" binding:"required,max=100"`
	Telephone       string     `json:"telephone" binding:"max=50"`
	Role            string     `json:"role" binding:"required,oneof=ADMIN MANAGER EMPLOYEE DOCTOR"`
	StockLocationID *uuid.UUID `json:"stock_location_id"`
}

// UpdateUserRequest represents a partial update of a user. Password resets
// the password without checking the old one.
type UpdateUserRequest struct {
	Email           *string    `json:"email" binding:"omitempty,email,max=200"`
	Password        *string    `json:"password" binding:"omitempty,min=8,max=72"`
	FirstName       *string    `json:"first_name" binding:"omitempty,max=100"`
	LastName        *string    `json:"last_name" binding:"omitempty,max=100"`
	Telephone       *string    `json:"telephone" binding:"omitempty,max=50"`
	Role            *string    `json:"role" binding:"omitempty,oneof=ADMIN MANAGER EMPLOYEE DOCTOR"`
	IsActive        *bool      `json:"is_active"`
	StockLocationID *uuid.UUID `json:"stock_location_id"`
}

// UserListFilter represents filter options for the user list
type UserListFilter struct {
	Search   string `form:"search"`
	Role     string `form:"role" binding:"omitempty,oneof=ADMIN MANAGER EMPLOYEE DOCTOR"`
	IsActive *bool  `form:"is_active"`
	Page     int    `form:"page" binding:"min=0"`
	PageSize int    `form:"page_size" binding:"min=0,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// UserResponse represents a user in API responses
type UserResponse struct {
	ID              uuid.UUID  `json:"id"`
	Email           string     `json:"email"`
	FirstName       string     `json:"first_name"`
	LastName        string     `json:"last_name"`
	FullName        string     `json:"full_name"`
	Telephone       string     `json:"telephone,omitempty"`
	Role            string     `json:"role"`
	IsActive        bool       `json:"is_active"`
	StockLocationID *uuid.UUID `json:"stock_location_id,omitempty"`
	LastLoginAt     *time.Time `json:"last_login_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// ToUserResponse converts a domain User to UserResponse
func ToUserResponse(u *identity.User) UserResponse {
	return UserResponse{
		ID:              u.ID,
		Email:           u.Email,
		FirstName:       u.FirstName,
		LastName:        u.LastName,
		FullName:        u.FullName(),
		Telephone:       u.Telephone,
		Role:            string(u.Role),
		IsActive:        u.IsActive,
		StockLocationID: u.StockLocationID,
		LastLoginAt:     u.LastLoginAt,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
}

// ToUserResponses converts a slice of users
func ToUserResponses(users []identity.User) []UserResponse {
	out := make([]UserResponse, len(users))
	for i := range users {
		out[i] = ToUserResponse(&users[i])
	}
	return out
}

func toUserInfo(u *identity.User) UserInfo {
	return UserInfo{
		ID:              u.ID,
		Email:           u.Email,
		FirstName:       u.FirstName,
		LastName:        u.LastName,
		FullName:        u.FullName(),
		Role:            string(u.Role),
		StockLocationID: u.StockLocationID,
	}
}
