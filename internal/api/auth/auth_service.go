package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/sisgestion/empresas/app/observability/metrics"
	"github.com/sisgestion/empresas/config"
	"github.com/sisgestion/empresas/internal/api"
)

const minPasswordLength = 6

var _ AuthService = (*AuthServiceImpl)(nil)

// AuthService orchestrates the credential store and the token issuer.
type AuthService interface {
	// Login validates credentials and issues an access token. Unknown email
	// and wrong password are indistinguishable to the caller: both return
	// api.ErrUnauthenticated.
	Login(ctx context.Context, email, password string) (*AuthResponse, error)

	// Register creates a new identity and issues a token for it (auto-login).
	// Invalid input returns a *ValidationError listing every failed check.
	Register(ctx context.Context, email, password, confirmPassword string) (*AuthResponse, error)
}

type AuthServiceImpl struct {
	logger *slog.Logger
	repo   AuthRepo
	jwtCfg config.JWTConfig
}

func NewAuthService(repo AuthRepo, jwtCfg config.JWTConfig, logger *slog.Logger) *AuthServiceImpl {
	return &AuthServiceImpl{
		logger: logger,
		repo:   repo,
		jwtCfg: jwtCfg,
	}
}

func (s *AuthServiceImpl) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	metrics.Get().LoginAttemptsTotal.Add(ctx, 1)

	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, api.ErrNotFound) {
			return nil, api.ErrUnauthenticated
		}
		return nil, fmt.Errorf("login: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, api.ErrUnauthenticated
	}

	return s.issueToken(user)
}

func (s *AuthServiceImpl) Register(ctx context.Context, email, password, confirmPassword string) (*AuthResponse, error) {
	metrics.Get().RegisterRequestsTotal.Add(ctx, 1)

	if errs := validateRegistration(email, password, confirmPassword); len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("register: failed to hash password: %w", err)
	}

	user, err := s.repo.CreateUser(ctx, email, string(hashedPassword))
	if err != nil {
		if errors.Is(err, api.ErrConflict) {
			return nil, &ValidationError{Errors: []string{fmt.Sprintf("Email '%s' is already taken.", email)}}
		}
		return nil, fmt.Errorf("register: %w", err)
	}

	return s.issueToken(user)
}

// issueToken signs a fresh HMAC-SHA256 access token for the user.
// Expiry is issuance time plus the configured lifetime.
func (s *AuthServiceImpl) issueToken(user *User) (*AuthResponse, error) {
	now := time.Now()
	expiration := now.Add(s.jwtCfg.TokenTTL())

	claims := Claims{
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			ID:        uuid.NewString(),
			Issuer:    s.jwtCfg.Issuer,
			Audience:  jwt.ClaimStrings{s.jwtCfg.Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiration),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.jwtCfg.SecretKey))
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	return &AuthResponse{
		Token:      signed,
		Expiration: expiration,
		Email:      user.Email,
	}, nil
}

func validateRegistration(email, password, confirmPassword string) []string {
	var errs []string
	if _, err := mail.ParseAddress(email); err != nil {
		errs = append(errs, "The Email field is not a valid e-mail address.")
	}
	if len(password) < minPasswordLength {
		errs = append(errs, fmt.Sprintf("Passwords must be at least %d characters.", minPasswordLength))
	}
	if password != confirmPassword {
		errs = append(errs, "The password and confirmation password do not match.")
	}
	return errs
}
