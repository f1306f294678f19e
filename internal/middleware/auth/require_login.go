package auth

import (
	"errors"
	"fmt"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/konveksi/internal/domain"
	"github.com/Skotchmaster/konveksi/internal/models"
	"github.com/Skotchmaster/konveksi/pkg/logging"
	"github.com/Skotchmaster/konveksi/pkg/tokens"
)

type Policy int

const (
	PolicyAuthenticated Policy = iota
	PolicyAdmin
)

func (p Policy) String() string {
	if p == PolicyAdmin {
		return "admin"
	}
	return "authenticated"
}

// Identity is the caller as stored, never as claimed by the token.
type Identity struct {
	UserID uint
	Role   string
}

// Decide applies policy to a resolved identity. A nil identity or a non-nil
// tokenErr is unauthenticated; a non-admin under PolicyAdmin is forbidden.
func Decide(policy Policy, id *Identity, tokenErr error) error {
	switch {
	case tokenErr == nil:
	case errors.Is(tokenErr, domain.ErrUnauthenticated):
		return tokenErr
	case errors.Is(tokenErr, tokens.ErrTokenExpired):
		return fmt.Errorf("%w: %w", domain.ErrUnauthenticated, tokens.ErrTokenExpired)
	default:
		return fmt.Errorf("%w: %w", domain.ErrUnauthenticated, tokens.ErrTokenInvalid)
	}
	if id == nil || id.UserID == 0 {
		return fmt.Errorf("%w: missing access token", domain.ErrUnauthenticated)
	}
	if policy == PolicyAdmin && id.Role != models.RoleAdmin {
		return fmt.Errorf("%w: admin access required", domain.ErrForbidden)
	}
	return nil
}

type Gate struct {
	Auth Resolver
}

func NewGate(r Resolver) *Gate {
	return &Gate{Auth: r}
}

// identify returns (nil, nil) when the request carries no token.
func (g *Gate) identify(c echo.Context) (*Identity, error) {
	raw := TokenFromRequest(c.Request())
	if raw == "" {
		return nil, nil
	}

	claims, err := g.Auth.ValidateToken(raw)
	if err != nil {
		return nil, err
	}

	user, err := g.Auth.Resolve(c.Request().Context(), claims)
	if err != nil {
		return nil, err
	}
	return &Identity{UserID: user.ID, Role: user.Role}, nil
}

func isTokenFailure(err error) bool {
	return errors.Is(err, domain.ErrUnauthenticated) ||
		errors.Is(err, tokens.ErrTokenInvalid) ||
		errors.Is(err, tokens.ErrTokenExpired)
}

func (g *Gate) require(policy Policy, next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := g.identify(c)
		if err != nil && !isTokenFailure(err) {
			logging.FromContext(c.Request().Context()).With("handler", "auth.gate").
				Error("auth_error", "status", 500, "reason", "cannot resolve user", "error", err)
			return err
		}
		if err := Decide(policy, id, err); err != nil {
			return err
		}

		setUserContext(c, id)
		return next(c)
	}
}

func (g *Gate) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return g.require(PolicyAuthenticated, next)
}

// Optional attaches the caller when a usable token is present and lets
// anonymous requests through.
func (g *Gate) Optional(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := g.identify(c)
		if err != nil && !isTokenFailure(err) {
			return err
		}
		if Decide(PolicyAuthenticated, id, err) == nil {
			setUserContext(c, id)
		}
		return next(c)
	}
}
