package identity

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/medrent/backend/internal/domain/identity"
	"github.com/medrent/backend/internal/domain/shared"
	"github.com/medrent/backend/internal/infrastructure/auth"
	"go.uber.org/zap"
)

// UserService handles user administration
type UserService struct {
	userRepo  identity.UserRepository
	blacklist auth.TokenBlacklist
	revokeTTL time.Duration
	logger    *zap.Logger
}

// NewUserService creates a new UserService. revokeTTL bounds how long a
// deactivation or password reset keeps the user's older tokens rejected and
// should be the refresh token lifetime.
func NewUserService(userRepo identity.UserRepository, blacklist auth.TokenBlacklist, revokeTTL time.Duration, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{
		userRepo:  userRepo,
		blacklist: blacklist,
		revokeTTL: revokeTTL,
		logger:    logger,
	}
}

// Create creates a new user
func (s *UserService) Create(ctx context.Context, req CreateUserRequest) (*UserResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	exists, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "A user with this email already exists")
	}

	user, err := identity.NewUser(email, req.Password, req.FirstName, req.LastName, identity.Role(req.Role))
	if err != nil {
		return nil, err
	}
	user.Telephone = strings.TrimSpace(req.Telephone)
	if req.StockLocationID != nil {
		user.AssignStockLocation(req.StockLocationID)
	}

	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info("user created", zap.String("user_id", user.ID.String()), zap.String("role", string(user.Role)))

	response := ToUserResponse(user)
	return &response, nil
}

// GetByID retrieves a user by ID
func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToUserResponse(user)
	return &response, nil
}

// List retrieves users with filtering and pagination
func (s *UserService) List(ctx context.Context, filter UserListFilter) ([]UserResponse, int64, error) {
	domainFilter := shared.NewFilter(filter.Page, filter.PageSize, filter.OrderBy, filter.OrderDir, filter.Search).
		With("role", filter.Role)
	if filter.IsActive != nil {
		domainFilter = domainFilter.With("is_active", *filter.IsActive)
	}

	users, err := s.userRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.userRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToUserResponses(users), total, nil
}

// Update applies a partial update. Deactivating a user or resetting the
// password revokes the tokens issued to them so far.
func (s *UserService) Update(ctx context.Context, id uuid.UUID, req UpdateUserRequest) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if email != user.Email {
			exists, err := s.userRepo.ExistsByEmail(ctx, email)
			if err != nil {
				return nil, err
			}
			if exists {
				return nil, shared.NewDomainError("ALREADY_EXISTS", "A user with this email already exists")
			}
			if err := user.SetEmail(email); err != nil {
				return nil, err
			}
		}
	}
	if req.FirstName != nil || req.LastName != nil || req.Telephone != nil {
		if err := user.UpdateProfile(
			stringOr(req.FirstName, user.FirstName),
			stringOr(req.LastName, user.LastName),
			stringOr(req.Telephone, user.Telephone),
		); err != nil {
			return nil, err
		}
	}
	if req.Role != nil {
		if err := user.SetRole(identity.Role(*req.Role)); err != nil {
			return nil, err
		}
	}
	if req.StockLocationID != nil {
		user.AssignStockLocation(req.StockLocationID)
	}

	revoke := false
	if req.Password != nil {
		if err := user.SetPassword(*req.Password); err != nil {
			return nil, err
		}
		revoke = true
	}
	if req.IsActive != nil && *req.IsActive != user.IsActive {
		if *req.IsActive {
			err = user.Activate()
		} else {
			err = user.Deactivate()
			revoke = true
		}
		if err != nil {
			return nil, err
		}
	}

	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}
	if revoke {
		s.revokeTokens(ctx, user.ID)
	}

	response := ToUserResponse(user)
	return &response, nil
}

// Delete removes a user. Users cannot delete themselves.
func (s *UserService) Delete(ctx context.Context, actorID, id uuid.UUID) error {
	if actorID == id {
		return shared.NewDomainError("CANNOT_DELETE_SELF", "You cannot delete your own account")
	}
	if _, err := s.userRepo.FindByID(ctx, id); err != nil {
		return err
	}
	if err := s.userRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.revokeTokens(ctx, id)
	s.logger.Info("user deleted", zap.String("user_id", id.String()), zap.String("deleted_by", actorID.String()))
	return nil
}

func (s *UserService) revokeTokens(ctx context.Context, userID uuid.UUID) {
	if err := s.blacklist.RevokeUser(ctx, userID.String(), s.revokeTTL); err != nil {
		s.logger.Warn("Failed to revoke user tokens", zap.String("user_id", userID.String()), zap.Error(err))
	}
}

func stringOr(v *string, fallback string) string {
	if v == nil {
		return fallback
	}
	return strings.TrimSpace(*v)
}
