package identity

import (
	"context"
	"errors"

	"github.com/billing/backend/internal/domain/identity"
	"github.com/billing/backend/internal/domain/shared"
	"github.com/billing/backend/internal/infrastructure/auth"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	errInvalidCredentials = shared.NewDomainError("INVALID_CREDENTIALS", "Invalid email or password")
	errAccountDisabled    = shared.NewDomainError("ACCOUNT_DISABLED", "User account is disabled")
	errTokenInvalid       = shared.NewDomainError("TOKEN_INVALID", "Token is invalid or expired")
	errTokenRevoked       = shared.NewDomainError("TOKEN_REVOKED", "Token has been revoked")
)

// AuthService handles registration, login, token lifecycle and profiles
type AuthService struct {
	userRepo   identity.UserRepository
	jwtService *auth.JWTService
	blacklist  auth.TokenBlacklist
	logger     *zap.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(
	userRepo identity.UserRepository,
	jwtService *auth.JWTService,
	blacklist auth.TokenBlacklist,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtService: jwtService,
		blacklist:  blacklist,
		logger:     logger,
	}
}

// Register creates an account and signs it in. The admin role is only
// granted to the very first account.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	if input.Password != input.PasswordConfirm {
		return nil, shared.NewDomainError("INVALID_PASSWORD_CONFIRM", "Passwords do not match").
			WithDetail("password_confirm", "Passwords do not match")
	}

	role := identity.Role(input.Role)
	if role == identity.RoleAdmin {
		count, err := s.userRepo.Count(ctx)
		if err != nil {
			return nil, err
		}
		if count > 0 {
			s.logger.Warn("Admin self-registration rejected", zap.String("email", input.Email))
			return nil, shared.NewDomainError("FORBIDDEN", "Only an administrator can create admin accounts")
		}
	}

	user, err := identity.NewUser(input.Email, input.Password, role)
	if err != nil {
		return nil, err
	}
	if err := user.UpdateProfile(input.FullName, input.PhoneNumber); err != nil {
		return nil, err
	}

	exists, err := s.userRepo.ExistsByEmail(ctx, user.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "User with this email already exists").
			WithDetail("email", "User with this email already exists")
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("User registered",
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(user.Role)))

	return s.issue(user)
}

// Login authenticates a user and returns tokens
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	user, err := s.userRepo.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("Login for unknown email")
			return nil, errInvalidCredentials
		}
		return nil, err
	}

	if !user.VerifyPassword(input.Password) {
		s.logger.Warn("Login with wrong password", zap.String("user_id", user.ID.String()))
		return nil, errInvalidCredentials
	}
	if !user.IsActive {
		s.logger.Warn("Login for disabled account", zap.String("user_id", user.ID.String()))
		return nil, errAccountDisabled
	}
	if input.Role != "" && string(user.Role) != input.Role {
		s.logger.Warn("Login role mismatch",
			zap.String("user_id", user.ID.String()),
			zap.String("requested_role", input.Role))
		return nil, errInvalidCredentials
	}

	user.RecordLogin()
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("User logged in", zap.String("user_id", user.ID.String()))
	return s.issue(user)
}

// Refresh exchanges a refresh token for a new pair. The presented refresh
// token is revoked so it cannot be replayed.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	claims, err := s.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, tokenError(err)
	}
	if err := s.ensureNotRevoked(ctx, claims); err != nil {
		return nil, err
	}

	userID, err := claims.GetUserUUID()
	if err != nil {
		return nil, errTokenInvalid
	}
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, errTokenInvalid
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, errAccountDisabled
	}

	pair, err := s.jwtService.RotateTokenPair(claims, tokenInput(user))
	if err != nil {
		return nil, tokenError(err)
	}
	if err := s.blacklist.Revoke(ctx, claims.ID, claims.GetRemainingTTL()); err != nil {
		return nil, err
	}

	return &AuthResult{User: ToUserResponse(user), Tokens: pair}, nil
}

// Logout revokes the refresh token and the access token used for the call
func (s *AuthService) Logout(ctx context.Context, refreshToken string, access *auth.Claims) error {
	if refreshToken == "" {
		return shared.NewDomainError("INVALID_INPUT", "Refresh token is required").
			WithDetail("refresh_token", "This field is required")
	}

	claims, err := s.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		return tokenError(err)
	}
	if access != nil && access.UserID != claims.UserID {
		return errTokenInvalid
	}

	if err := s.blacklist.Revoke(ctx, claims.ID, claims.GetRemainingTTL()); err != nil {
		return err
	}
	if access != nil && access.ID != "" {
		if err := s.blacklist.Revoke(ctx, access.ID, access.GetRemainingTTL()); err != nil {
			return err
		}
	}

	s.logger.Info("User logged out", zap.String("user_id", claims.UserID))
	return nil
}

// GetProfile returns the current user
func (s *AuthService) GetProfile(ctx context.Context, userID uuid.UUID) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := ToUserResponse(user)
	return &resp, nil
}

// UpdateProfile changes full name and phone number
func (s *AuthService) UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	fullName, phone := user.FullName, user.PhoneNumber
	if input.FullName != nil {
		fullName = *input.FullName
	}
	if input.PhoneNumber != nil {
		phone = *input.PhoneNumber
	}
	if err := user.UpdateProfile(fullName, phone); err != nil {
		return nil, err
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	resp := ToUserResponse(user)
	return &resp, nil
}

// ChangePassword replaces the password, revokes every existing session of
// the user and returns a fresh token pair
func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, input ChangePasswordInput) (*AuthResult, error) {
	if input.NewPassword != input.NewPasswordConfirm {
		return nil, shared.NewDomainError("INVALID_PASSWORD_CONFIRM", "New passwords do not match").
			WithDetail("new_password_confirm", "New passwords do not match")
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := user.ChangePassword(input.OldPassword, input.NewPassword); err != nil {
		return nil, err
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	if err := s.blacklist.RevokeUser(ctx, user.ID.String(), s.jwtService.GetRefreshTokenExpiration()); err != nil {
		s.logger.Error("Failed to revoke sessions after password change",
			zap.String("user_id", user.ID.String()), zap.Error(err))
		return nil, err
	}

	s.logger.Info("Password changed", zap.String("user_id", user.ID.String()))
	return s.issue(user)
}

// ListUsers returns every user to admins and only the caller otherwise
func (s *AuthService) ListUsers(ctx context.Context, caller Caller, filter shared.Filter) (*shared.Paginated[UserResponse], error) {
	filter = filter.Normalize()

	if !caller.IsAdmin {
		user, err := s.userRepo.FindByID(ctx, caller.UserID)
		if err != nil {
			return nil, err
		}
		page := shared.NewPaginated([]UserResponse{ToUserResponse(user)}, 1, 1, filter.PageSize)
		return &page, nil
	}

	users, total, err := s.userRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	page := shared.NewPaginated(ToUserResponses(users), total, filter.Page, filter.PageSize)
	return &page, nil
}

// Authenticate validates an access token and checks revocation. Used by the
// HTTP middleware.
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (*auth.Claims, error) {
	claims, err := s.jwtService.ValidateAccessToken(accessToken)
	if err != nil {
		return nil, tokenError(err)
	}
	if err := s.ensureNotRevoked(ctx, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

func (s *AuthService) ensureNotRevoked(ctx context.Context, claims *auth.Claims) error {
	revoked, err := s.blacklist.IsRevoked(ctx, claims.ID)
	if err != nil {
		return err
	}
	if revoked {
		return errTokenRevoked
	}

	revoked, err = s.blacklist.IsUserRevoked(ctx, claims.UserID, claims.GetIssuedAtTime())
	if err != nil {
		return err
	}
	if revoked {
		return errTokenRevoked
	}
	return nil
}

func (s *AuthService) issue(user *identity.User) (*AuthResult, error) {
	pair, err := s.jwtService.GenerateTokenPair(tokenInput(user))
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: ToUserResponse(user), Tokens: pair}, nil
}

func tokenInput(user *identity.User) auth.GenerateTokenInput {
	return auth.GenerateTokenInput{
		UserID: user.ID,
		Email:  user.Email,
		Role:   string(user.Role),
	}
}

// tokenError maps JWT validation failures to domain errors
func tokenError(err error) error {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return shared.NewDomainError("TOKEN_EXPIRED", "Token has expired")
	case errors.Is(err, auth.ErrMaxRefreshExceeded):
		return shared.NewDomainError("TOKEN_REFRESH_LIMIT", "Session expired, please log in again")
	case errors.Is(err, auth.ErrTokenBlacklisted):
		return errTokenRevoked
	default:
		return errTokenInvalid
	}
}
