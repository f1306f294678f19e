package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Skotchmaster/konveksi/internal/domain"
	"github.com/Skotchmaster/konveksi/internal/hash"
	"github.com/Skotchmaster/konveksi/internal/models"
	"github.com/Skotchmaster/konveksi/internal/mykafka"
	"github.com/Skotchmaster/konveksi/internal/repo"
	"github.com/Skotchmaster/konveksi/internal/transport"
	"github.com/Skotchmaster/konveksi/pkg/logging"
	"github.com/Skotchmaster/konveksi/pkg/tokens"
)

const DefaultTokenTTL = 24 * time.Hour

type AuthService struct {
	Repo      *repo.GormRepo
	JWTSecret []byte
	TokenTTL  time.Duration
	Events    Publisher
	Now       func() time.Time
}

type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *models.User
}

func (s *AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) Register(ctx context.Context, req transport.RegisterRequest) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	req.Name = strings.TrimSpace(req.Name)
	req.Email = NormalizeEmail(req.Email)
	if err := transport.Validate(req); err != nil {
		return nil, err
	}

	pwHash, err := hash.HashPassword(req.Password)
	if err != nil {
		l.Error("register_error", "status", 500, "reason", "cannot hash the password", "error", err)
		return nil, err
	}

	user := &models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: pwHash,
		Phone:        req.Phone,
		Address:      req.Address,
		Role:         models.RoleCustomer,
	}
	if err := s.Repo.CreateUserIfNotExists(ctx, user); err != nil {
		return nil, err
	}

	l.Info("user_registered", "user_id", user.ID)
	publish(ctx, s.Events, mykafka.TopicUserEvents, idKey(user.ID), "user_registered", map[string]any{
		"user_id": user.ID,
		"email":   user.Email,
	})
	return user, nil
}

// Verify checks a password against the stored hash. An unknown email and a
// wrong password are indistinguishable to the caller.
func (s *AuthService) Verify(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.Repo.GetUserByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			hash.CheckPasswordOrDummy(nil, password)
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if !hash.CheckPasswordOrDummy(&user.PasswordHash, password) {
		return nil, domain.ErrInvalidCredentials
	}
	return user, nil
}

func (s *AuthService) IssueToken(u *models.User) (string, time.Time, error) {
	ttl := s.TokenTTL
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return tokens.NewAccessToken(s.JWTSecret, u.ID, u.Email, u.Role, s.now(), ttl)
}

// ValidateToken returns tokens.ErrTokenExpired or tokens.ErrTokenInvalid on failure.
func (s *AuthService) ValidateToken(token string) (*tokens.AccessClaims, error) {
	return tokens.AccessClaimsFromToken(token, s.JWTSecret)
}

// Resolve loads the user a token was issued to. The stored role, not the
// claim, is what authorization uses.
func (s *AuthService) Resolve(ctx context.Context, claims *tokens.AccessClaims) (*models.User, error) {
	id, err := claims.UserID()
	if err != nil {
		return nil, err
	}
	user, err := s.Repo.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: user no longer exists", domain.ErrUnauthenticated)
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, req transport.LoginRequest) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	if err := transport.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.Verify(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	token, exp, err := s.IssueToken(user)
	if err != nil {
		l.Error("login_error", "status", 500, "reason", "cannot sign token", "error", err)
		return nil, err
	}

	l.Info("user_logged_in", "user_id", user.ID)
	return &LoginResult{Token: token, ExpiresAt: exp, User: user}, nil
}

func (s *AuthService) Profile(ctx context.Context, userID uint) (*models.User, error) {
	return s.Repo.GetUserByID(ctx, userID)
}
