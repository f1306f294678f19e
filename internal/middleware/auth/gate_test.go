package auth_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/konveksi/internal/domain"
	"github.com/Skotchmaster/konveksi/internal/middleware/auth"
	"github.com/Skotchmaster/konveksi/internal/models"
	"github.com/Skotchmaster/konveksi/internal/service"
	"github.com/Skotchmaster/konveksi/internal/testutil"
	"github.com/Skotchmaster/konveksi/pkg/tokens"
)

var secret = []byte("gate-test-secret")

func TestDecide(t *testing.T) {
	t.Parallel()

	customer := &auth.Identity{UserID: 1, Role: models.RoleCustomer}
	admin := &auth.Identity{UserID: 2, Role: models.RoleAdmin}

	tests := []struct {
		name     string
		policy   auth.Policy
		id       *auth.Identity
		tokenErr error
		want     error
	}{
		{"no token", auth.PolicyAuthenticated, nil, nil, domain.ErrUnauthenticated},
		{"expired token", auth.PolicyAuthenticated, nil, tokens.ErrTokenExpired, domain.ErrUnauthenticated},
		{"invalid token on admin route", auth.PolicyAdmin, nil, tokens.ErrTokenInvalid, domain.ErrUnauthenticated},
		{"customer authenticated", auth.PolicyAuthenticated, customer, nil, nil},
		{"customer on admin route", auth.PolicyAdmin, customer, nil, domain.ErrForbidden},
		{"admin on admin route", auth.PolicyAdmin, admin, nil, nil},
		{"admin authenticated", auth.PolicyAuthenticated, admin, nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := auth.Decide(tt.policy, tt.id, tt.tokenErr)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

type gateFixture struct {
	gate     *auth.Gate
	svc      *service.AuthService
	customer *models.User
	admin    *models.User
}

func newGateFixture(t *testing.T) *gateFixture {
	t.Helper()

	r := testutil.NewRepo(t)
	db := r.DB
	svc := &service.AuthService{Repo: r, JWTSecret: secret}

	return &gateFixture{
		gate:     auth.NewGate(svc),
		svc:      svc,
		customer: testutil.CreateUser(t, db, "budi@example.com", "secret1", models.RoleCustomer),
		admin:    testutil.CreateUser(t, db, "admin@example.com", "secret1", models.RoleAdmin),
	}
}

func (f *gateFixture) token(t *testing.T, u *models.User) string {
	t.Helper()
	tok, _, err := f.svc.IssueToken(u)
	require.NoError(t, err)
	return tok
}

func serve(mw echo.MiddlewareFunc, req *http.Request) (echo.Context, bool, error) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	reached := false
	err := mw(func(echo.Context) error {
		reached = true
		return nil
	})(c)
	return c, reached, err
}

func bearer(tok string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+tok)
	return req
}

func TestGate_RequireAuth(t *testing.T) {
	t.Parallel()
	f := newGateFixture(t)

	t.Run("missing token", func(t *testing.T) {
		_, reached, err := serve(f.gate.RequireAuth, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.False(t, reached)
		assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, reached, err := serve(f.gate.RequireAuth, bearer("not-a-jwt"))
		assert.False(t, reached)
		assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	})

	t.Run("expired token", func(t *testing.T) {
		tok, _, err := tokens.NewAccessToken(secret, f.customer.ID, f.customer.Email, f.customer.Role,
			time.Now().Add(-2*time.Hour), time.Hour)
		require.NoError(t, err)

		_, reached, err := serve(f.gate.RequireAuth, bearer(tok))
		assert.False(t, reached)
		assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	})

	t.Run("bearer header", func(t *testing.T) {
		c, reached, err := serve(f.gate.RequireAuth, bearer(f.token(t, f.customer)))
		require.NoError(t, err)
		assert.True(t, reached)

		id, ok := auth.UserID(c)
		assert.True(t, ok)
		assert.Equal(t, f.customer.ID, id)
		assert.Equal(t, models.RoleCustomer, auth.Role(c))
	})

	t.Run("cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(auth.CreateCookie(f.token(t, f.customer), time.Now().Add(time.Hour), false))

		c, reached, err := serve(f.gate.RequireAuth, req)
		require.NoError(t, err)
		assert.True(t, reached)
		id, _ := auth.UserID(c)
		assert.Equal(t, f.customer.ID, id)
	})

	t.Run("non bearer scheme", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(echo.HeaderAuthorization, "Basic "+f.token(t, f.customer))
		_, reached, err := serve(f.gate.RequireAuth, req)
		assert.False(t, reached)
		assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	})
}

func TestGate_RequireAdmin(t *testing.T) {
	t.Parallel()
	f := newGateFixture(t)

	t.Run("admin passes", func(t *testing.T) {
		c, reached, err := serve(f.gate.RequireAdmin, bearer(f.token(t, f.admin)))
		require.NoError(t, err)
		assert.True(t, reached)
		assert.Equal(t, models.RoleAdmin, auth.Role(c))
	})

	t.Run("customer refused", func(t *testing.T) {
		_, reached, err := serve(f.gate.RequireAdmin, bearer(f.token(t, f.customer)))
		assert.False(t, reached)
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("customer with admin claim refused", func(t *testing.T) {
		forged, _, err := tokens.NewAccessToken(secret, f.customer.ID, f.customer.Email, models.RoleAdmin,
			time.Now(), time.Hour)
		require.NoError(t, err)

		_, reached, err := serve(f.gate.RequireAdmin, bearer(forged))
		assert.False(t, reached)
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("token for a deleted user", func(t *testing.T) {
		tok, _, err := tokens.NewAccessToken(secret, 9999, "ghost@example.com", models.RoleAdmin,
			time.Now(), time.Hour)
		require.NoError(t, err)

		_, reached, err := serve(f.gate.RequireAdmin, bearer(tok))
		assert.False(t, reached)
		assert.ErrorIs(t, err, domain.ErrUnauthenticated)
		assert.False(t, errors.Is(err, domain.ErrForbidden))
	})
}

func TestGate_Optional(t *testing.T) {
	t.Parallel()
	f := newGateFixture(t)

	c, reached, err := serve(f.gate.Optional, httptest.NewRequest(http.MethodPost, "/", nil))
	require.NoError(t, err)
	assert.True(t, reached)
	_, ok := auth.UserID(c)
	assert.False(t, ok)

	c, reached, err = serve(f.gate.Optional, bearer("expired-or-bad"))
	require.NoError(t, err)
	assert.True(t, reached)
	_, ok = auth.UserID(c)
	assert.False(t, ok)

	c, reached, err = serve(f.gate.Optional, bearer(f.token(t, f.customer)))
	require.NoError(t, err)
	assert.True(t, reached)
	id, ok := auth.UserID(c)
	assert.True(t, ok)
	assert.Equal(t, f.customer.ID, id)
}
