package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/civicflow/civicflow/internal/auth"
	"github.com/civicflow/civicflow/internal/config"
	"github.com/civicflow/civicflow/internal/domain"
	"github.com/civicflow/civicflow/internal/events"
	"github.com/civicflow/civicflow/internal/repository"
	apperrors "github.com/civicflow/civicflow/pkg/util"
)

// AuthService coordinates registration, login, email verification and
// password reset flows. It is the only service publishing
// email-bearing events.
type AuthService struct {
	users           repository.UserRepository
	verifications   repository.EmailVerificationRepository
	resets          repository.PasswordResetRepository
	tokenMgr        *auth.TokenManager
	throttle        *auth.LoginThrottle
	dispatcher      events.Dispatcher
	bcryptCost      int
	verificationTTL time.Duration
	resetTTL        time.Duration
	baseURL         string
}

// AuthDependencies encapsulates repo requirements for auth service.
type AuthDependencies struct {
	UserRepo         repository.UserRepository
	VerificationRepo repository.EmailVerificationRepository
	ResetRepo        repository.PasswordResetRepository
	Throttle         *auth.LoginThrottle
	Dispatcher       events.Dispatcher
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		users:         deps.UserRepo,
		verifications: deps.VerificationRepo,
		resets:        deps.ResetRepo,
		tokenMgr: auth.NewTokenManager(
			cfg.Auth.JWTSecret,
			cfg.Auth.JWTIssuer,
			cfg.Auth.JWTAudience,
			cfg.Auth.AccessTokenTTLHours,
		),
		throttle:        deps.Throttle,
		dispatcher:      deps.Dispatcher,
		bcryptCost:      cfg.Auth.BcryptCost,
		verificationTTL: time.Duration(cfg.Auth.VerificationTTLMinutes) * time.Minute,
		resetTTL:        time.Duration(cfg.Auth.PasswordResetTTLMinutes) * time.Minute,
		baseURL:         cfg.App.BaseURL,
	}
}

// Register creates a citizen account and logs it in.
func (s *AuthService) Register(ctx context.Context, email, password string) (*domain.User, string, time.Time, error) {
	if !validEmail(email) {
		return nil, "", time.Time{}, apperrors.NewValidationError("invalid email format", nil)
	}
	if len(password) < auth.MinPasswordLength {
		return nil, "", time.Time{}, apperrors.NewValidationError(
			fmt.Sprintf("password must be at least %d characters", auth.MinPasswordLength), nil)
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, "", time.Time{}, apperrors.NewConflict("email already exists", nil)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}

	user := &domain.User{
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleCitizen,
	}
	if err := s.users.Create(ctx, user); err != nil {
		// Two registrations can race past the existence check; the
		// unique index settles it.
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, "", time.Time{}, apperrors.NewConflict("email already exists", nil)
		}
		return nil, "", time.Time{}, apperrors.MapError(err)
	}

	token, exp, err := s.tokenMgr.GenerateToken(user)
	if err != nil {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}

	s.publish(events.EventUserRegistered, events.UserRegisteredPayload{
		UserID: user.ID,
		Email:  user.Email,
	})
	return user, token, exp, nil
}

// Login authenticates a user. Unknown email and wrong password produce
// the same Unauthorized outcome so callers cannot enumerate accounts.
// Failed attempts are counted per email and caller IP.
func (s *AuthService) Login(ctx context.Context, email, password, ip string) (*domain.User, string, time.Time, error) {
	if !s.throttle.Allow(ctx, email, ip) {
		return nil, "", time.Time{}, apperrors.NewTooManyRequests("too many failed login attempts")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.throttle.RecordFailure(ctx, email, ip)
			return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid email or password")
		}
		return nil, "", time.Time{}, apperrors.MapError(err)
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		s.throttle.RecordFailure(ctx, email, ip)
		return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid email or password")
	}

	if err := s.users.StampLastLogin(ctx, user.ID); err != nil {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}
	s.throttle.Reset(ctx, email, ip)

	token, exp, err := s.tokenMgr.GenerateToken(user)
	if err != nil {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}
	return user, token, exp, nil
}

// SendVerification issues a fresh verification code for the email,
// invalidating any earlier unused codes, and hands the code to the
// notification path.
func (s *AuthService) SendVerification(ctx context.Context, email string) error {
	code, err := auth.GenerateVerificationCode()
	if err != nil {
		return apperrors.MapError(err)
	}
	if err := s.verifications.Issue(ctx, email, code, time.Now().Add(s.verificationTTL)); err != nil {
		return apperrors.MapError(err)
	}

	s.publish(events.EventVerificationRequested, events.VerificationRequestedPayload{
		Email: email,
		Code:  code,
	})
	return nil
}

// VerifyEmail consumes a verification code. A code verifies at most
// once; expired, used and unknown codes are indistinguishable.
func (s *AuthService) VerifyEmail(ctx context.Context, email, code string) error {
	ok, err := s.verifications.Consume(ctx, email, code)
	if err != nil {
		return apperrors.MapError(err)
	}
	if !ok {
		return apperrors.NewInvalidOrExpired("invalid or expired code")
	}
	return nil
}

// ForgotPassword issues a reset token for a known account. A new
// request invalidates earlier unused tokens for the same email.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	if _, err := s.users.GetByEmail(ctx, email); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("email", nil)
		}
		return apperrors.MapError(err)
	}

	token, err := auth.GenerateResetToken()
	if err != nil {
		return apperrors.MapError(err)
	}
	if err := s.resets.Issue(ctx, email, token, time.Now().Add(s.resetTTL)); err != nil {
		return apperrors.MapError(err)
	}

	s.publish(events.EventPasswordResetRequested, events.PasswordResetRequestedPayload{
		Email:     email,
		ResetLink: fmt.Sprintf("%s/reset-password?token=%s", s.baseURL, token),
	})
	return nil
}

// ResetPassword redeems a reset token and stores the new password
// hash. The consume is atomic; a token redeems at most once.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < auth.MinPasswordLength {
		return apperrors.NewValidationError(
			fmt.Sprintf("password must be at least %d characters", auth.MinPasswordLength), nil)
	}

	email, ok, err := s.resets.Consume(ctx, token)
	if err != nil {
		return apperrors.MapError(err)
	}
	if !ok {
		return apperrors.NewInvalidOrExpired("invalid or expired token")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("user", nil)
		}
		return apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return apperrors.MapError(err)
	}
	user.PasswordHash = hash
	if err := s.users.Update(ctx, user); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *AuthService) publish(eventType events.EventType, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	s.dispatcher.Publish(events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}

func validEmail(email string) bool {
	at := strings.Index(email, "@")
	if at < 1 {
		return false
	}
	return strings.Contains(email[at:], ".")
}
