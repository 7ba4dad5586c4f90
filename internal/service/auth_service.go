package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/humayunejaz/travel-planning-app/internal/domain"
	"github.com/humayunejaz/travel-planning-app/internal/repository/ports"
	"github.com/humayunejaz/travel-planning-app/internal/util"
)

var ErrInvalidEmail = errors.New("invalid email address")

// InvitationAcceptor is the slice of the collaboration engine sign-up and
// sign-in need to redeem an invitation token.
type InvitationAcceptor interface {
	AcceptInvitation(ctx context.Context, token string) (bool, error)
}

type SignUpInput struct {
	Email           string
	Password        string
	FullName        *string
	Role            domain.UserRole
	InvitationToken string
}

type AuthResult struct {
	User               *domain.User `json:"user"`
	Token              string       `json:"token"`
	ExpiresAt          string       `json:"expires_at"`
	InvitationAccepted bool         `json:"invitation_accepted"`
}

type AuthService struct {
	users       ports.UserRepository
	sessions    ports.SessionRepository
	jwt         *util.JWTManager
	invitations InvitationAcceptor
	log         *zap.SugaredLogger
}

func NewAuthService(users ports.UserRepository, sessions ports.SessionRepository, jwtManager *util.JWTManager, invitations InvitationAcceptor, logger *zap.SugaredLogger) *AuthService {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &AuthService{
		users:       users,
		sessions:    sessions,
		jwt:         jwtManager,
		invitations: invitations,
		log:         logger,
	}
}

// SignUp creates a password account. The role is explicit: an empty role
// means traveler.
func (s *AuthService) SignUp(ctx context.Context, input SignUpInput) (*AuthResult, error) {
	email := util.NormalizeEmail(input.Email)
	if !util.IsEmailShape(email) {
		return nil, ErrInvalidEmail
	}
	if err := util.ValidatePassword(input.Password); err != nil {
		return nil, err
	}
	role := input.Role
	if role == "" {
		role = domain.UserRoleTraveler
	}
	if !role.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrRoleInvalid, role)
	}
	var fullName *string
	if input.FullName != nil {
		if trimmed := strings.TrimSpace(*input.FullName); trimmed != "" {
			fullName = &trimmed
		}
	}

	hash, salt, err := util.DerivePassword(input.Password)
	if err != nil {
		return nil, err
	}
	user, err := s.users.Create(ctx, email, fullName, role, hash, salt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return s.issue(ctx, user, input.InvitationToken)
}

func (s *AuthService) SignIn(ctx context.Context, email, password, invitationToken string) (*AuthResult, error) {
	user, err := s.users.FindByEmail(ctx, util.NormalizeEmail(email))
	if err != nil {
		if isNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !util.VerifyPassword(password, user.PasswordSalt, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return s.issue(ctx, user, invitationToken)
}

// issue mints the session token and redeems the invitation, if any. A
// failed redemption never blocks the sign-in.
func (s *AuthService) issue(ctx context.Context, user *domain.User, invitationToken string) (*AuthResult, error) {
	token, expiresAt, err := s.jwt.Generate(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, err
	}
	if _, err := s.sessions.CreateSession(ctx, user.ID, token, expiresAt); err != nil {
		return nil, err
	}

	result := &AuthResult{User: user, Token: token, ExpiresAt: expiresAt.UTC().Format("2006-01-02T15:04:05Z07:00")}
	if invitationToken = strings.TrimSpace(invitationToken); invitationToken != "" && s.invitations != nil {
		accepted, err := s.invitations.AcceptInvitation(ctx, invitationToken)
		if err != nil {
			s.log.Warnw("invitation accept failed", "user_id", user.ID, "error", err)
		}
		if !accepted {
			s.log.Infow("invitation token not redeemable", "user_id", user.ID)
		}
		result.InvitationAccepted = accepted
	}
	return result, nil
}

func (s *AuthService) SignOut(ctx context.Context, token string) error {
	return s.sessions.DeactivateSession(ctx, token)
}

// CurrentUser resolves a bearer token to its user. The JWT must verify and
// its session row must still be active.
func (s *AuthService) CurrentUser(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.jwt.Parse(token)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if _, err := s.sessions.FindActiveSession(ctx, token); err != nil {
		if isNotFound(err) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return user, nil
}

// GrantRole is the administrative path for changing a user's role.
func (s *AuthService) GrantRole(ctx context.Context, userID uuid.UUID, role domain.UserRole) (*domain.User, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrRoleInvalid, role)
	}
	user, err := s.users.UpdateRole(ctx, userID, role)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("user %s: %w", userID, ports.ErrRecordNotFound)
		}
		return nil, err
	}
	return user, nil
}
