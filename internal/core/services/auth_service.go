package services

import (
	"context"
	"errors"
	"log"
	"time"

	"plafondhub/internal/adapters/persistence/models"
	"plafondhub/internal/adapters/persistence/repositories"
	"plafondhub/internal/config"
	"plafondhub/internal/core/domain"
	"plafondhub/internal/pkg/jwt"
	"plafondhub/internal/pkg/metrics"
	"plafondhub/internal/pkg/password"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Auth errors
var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserInactive       = errors.New("user account is inactive")
	ErrInvalidResetToken  = errors.New("reset token is invalid or expired")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
)

// Mailer delivers password reset links. The default implementation just logs;
// swapping in SMTP is a deployment concern.
type Mailer interface {
	SendPasswordReset(email, resetLink string) error
}

// LogMailer logs reset links instead of sending mail
type LogMailer struct{}

func (LogMailer) SendPasswordReset(email, resetLink string) error {
	log.Printf("📧 Password reset link for %s: %s", email, resetLink)
	return nil
}

// AuthService handles authentication business logic
type AuthService struct {
	userRepo       repositories.UserRepository
	resetTokenRepo repositories.ResetTokenRepository
	mailer         Mailer
	metrics        *metrics.Collector
	cfg            *config.Config
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo repositories.UserRepository,
	resetTokenRepo repositories.ResetTokenRepository,
	mailer Mailer,
	collector *metrics.Collector,
	cfg *config.Config,
) *AuthService {
	return &AuthService{
		userRepo:       userRepo,
		resetTokenRepo: resetTokenRepo,
		mailer:         mailer,
		metrics:        collector,
		cfg:            cfg,
	}
}

// LoginInput represents login input
type LoginInput struct {
	Username string `json:"usernameOrEmail" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginOutput represents a successful authentication
type LoginOutput struct {
	User        *models.UserResponse `json:"user"`
	AccessToken string               `json:"accessToken"`
	TokenType   string               `json:"tokenType"`
	ExpiresIn   int                  `json:"expiresIn"`
	Redirect    string               `json:"redirect"`
}

// ForgotPasswordInput represents forgot password input
type ForgotPasswordInput struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordInput represents reset password input
type ResetPasswordInput struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=8"`
}

// Login authenticates by username or email and issues an access token whose
// claims carry the user's full role list.
func (s *AuthService) Login(ctx context.Context, input *LoginInput) (*LoginOutput, error) {
	user, err := s.userRepo.GetByUsernameOrEmail(ctx, input.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !password.Verify(input.Password, user.Password) {
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, ErrUserInactive
	}

	token, err := jwt.GenerateAccessToken(
		user.ID, user.Username, user.FullName, user.RoleNames(),
		s.cfg.JWT.Secret, s.cfg.JWT.AccessTokenMins,
	)
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordLogin()
	}
	log.Printf("✅ User logged in: %s (roles: %v)", user.Username, user.RoleNames())

	return &LoginOutput{
		User:        user.ToResponse(),
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   s.cfg.JWT.AccessTokenMins * 60,
		Redirect:    domain.RedirectFor(user.RoleSet()),
	}, nil
}

// ForgotPassword issues a single-use reset token. A missing email is not an
// error; the response never reveals whether an account exists.
func (s *AuthService) ForgotPassword(ctx context.Context, input *ForgotPasswordInput) error {
	user, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("⚠️ Password reset requested for unknown email: %s", input.Email)
			return nil
		}
		return err
	}

	rawToken := uuid.New().String()
	resetToken := &models.PasswordResetToken{
		UserID:    user.ID,
		TokenHash: password.HashToken(rawToken),
		ExpiresAt: time.Now().Add(time.Duration(s.cfg.Reset.TokenTTLMinutes) * time.Minute),
	}
	if err := s.resetTokenRepo.Create(ctx, resetToken); err != nil {
		return err
	}

	resetLink := s.cfg.GetAllowedOrigins() + "/reset-password?token=" + rawToken
	return s.mailer.SendPasswordReset(user.Email, resetLink)
}

// ValidateResetToken checks an incoming token without consuming it, so the
// reset form can fail fast before asking for a new password.
func (s *AuthService) ValidateResetToken(ctx context.Context, token string) error {
	stored, err := s.resetTokenRepo.GetByTokenHash(ctx, password.HashToken(token))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidResetToken
		}
		return err
	}
	if stored.IsUsed() || stored.IsExpired() {
		return ErrInvalidResetToken
	}
	return nil
}

// ResetPassword consumes a valid token and replaces the user's password
func (s *AuthService) ResetPassword(ctx context.Context, input *ResetPasswordInput) error {
	if !password.ValidatePassword(input.NewPassword) {
		return ErrWeakPassword
	}

	stored, err := s.resetTokenRepo.GetByTokenHash(ctx, password.HashToken(input.Token))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidResetToken
		}
		return err
	}
	if stored.IsUsed() || stored.IsExpired() {
		return ErrInvalidResetToken
	}

	user, err := s.userRepo.GetByID(ctx, stored.UserID)
	if err != nil {
		return err
	}

	hashed, err := password.Hash(input.NewPassword)
	if err != nil {
		return err
	}
	user.Password = hashed
	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}

	if err := s.resetTokenRepo.MarkUsed(ctx, stored.ID); err != nil {
		return err
	}

	log.Printf("✅ Password reset completed for user: %s", user.Username)
	return nil
}

// GetProfile returns the authenticated user's own profile
func (s *AuthService) GetProfile(ctx context.Context, userID uint) (*models.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return user.ToResponse(), nil
}
