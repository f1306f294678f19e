package csrf

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/konveksi/internal/domain"
)

func run(t *testing.T, req *http.Request) (*httptest.ResponseRecorder, bool, error) {
	t.Helper()

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	reached := false
	err := Middleware(Config{TrustedOrigins: []string{"http://localhost:5173"}})(func(echo.Context) error {
		reached = true
		return nil
	})(c)
	return rec, reached, err
}

func TestMiddleware(t *testing.T) {
	t.Parallel()

	session := &http.Cookie{Name: "accessToken", Value: "jwt"}
	xsrf := &http.Cookie{Name: "XSRF-TOKEN", Value: "tok123"}

	tests := []struct {
		name    string
		build   func() *http.Request
		reached bool
		wantErr bool
	}{
		{
			name: "no session cookie is skipped",
			build: func() *http.Request {
				return httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
			},
			reached: true,
		},
		{
			name: "bearer requests are skipped",
			build: func() *http.Request {
				r := httptest.NewRequest(http.MethodPost, "/api/orders", nil)
				r.AddCookie(session)
				r.Header.Set(echo.HeaderAuthorization, "Bearer jwt")
				return r
			},
			reached: true,
		},
		{
			name: "safe method passes",
			build: func() *http.Request {
				r := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
				r.AddCookie(session)
				return r
			},
			reached: true,
		},
		{
			name: "missing header is refused",
			build: func() *http.Request {
				r := httptest.NewRequest(http.MethodPost, "/api/orders", nil)
				r.AddCookie(session)
				r.AddCookie(xsrf)
				return r
			},
			wantErr: true,
		},
		{
			name: "matching header passes",
			build: func() *http.Request {
				r := httptest.NewRequest(http.MethodPost, "/api/orders", nil)
				r.AddCookie(session)
				r.AddCookie(xsrf)
				r.Header.Set("X-CSRF-Token", "tok123")
				return r
			},
			reached: true,
		},
		{
			name: "trusted client origin passes",
			build: func() *http.Request {
				r := httptest.NewRequest(http.MethodPut, "/api/orders/1/status", nil)
				r.AddCookie(session)
				r.AddCookie(xsrf)
				r.Header.Set("X-CSRF-Token", "tok123")
				r.Header.Set(echo.HeaderOrigin, "http://localhost:5173")
				return r
			},
			reached: true,
		},
		{
			name: "foreign origin is refused",
			build: func() *http.Request {
				r := httptest.NewRequest(http.MethodDelete, "/api/designs/1", nil)
				r.AddCookie(session)
				r.AddCookie(xsrf)
				r.Header.Set("X-CSRF-Token", "tok123")
				r.Header.Set(echo.HeaderOrigin, "https://evil.example")
				return r
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, reached, err := run(t, tt.build())
			assert.Equal(t, tt.reached, reached)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, domain.ErrForbidden))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestMiddleware_IssuesTokenOnSafeRequest(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/api/designs", nil)
	req.AddCookie(&http.Cookie{Name: "accessToken", Value: "jwt"})

	rec, reached, err := run(t, req)
	require.NoError(t, err)
	assert.True(t, reached)

	tok := rec.Header().Get("X-CSRF-Token")
	assert.NotEmpty(t, tok)
	assert.Contains(t, rec.Header().Get("Set-Cookie"), "XSRF-TOKEN="+tok)
}
