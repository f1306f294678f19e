package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/konveksi/internal/domain"
	"github.com/Skotchmaster/konveksi/internal/models"
	"github.com/Skotchmaster/konveksi/internal/mykafka"
	"github.com/Skotchmaster/konveksi/internal/testutil"
	"github.com/Skotchmaster/konveksi/internal/transport"
	"github.com/Skotchmaster/konveksi/pkg/tokens"
)

func newTestAuthService(t *testing.T) (*AuthService, *testutil.RecordingPublisher) {
	t.Helper()

	events := &testutil.RecordingPublisher{}
	return &AuthService{
		Repo:      testutil.NewRepo(t),
		JWTSecret: []byte("test-jwt-secret"),
		TokenTTL:  time.Hour,
		Events:    events,
	}, events
}

func TestAuthService_Register(t *testing.T) {
	t.Parallel()

	svc, events := newTestAuthService(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, transport.RegisterRequest{Name: " Budi ", Email: " Budi@Example.COM ", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "budi@example.com", u.Email)
	assert.Equal(t, "Budi", u.Name)
	assert.Equal(t, models.RoleCustomer, u.Role)
	assert.NotEqual(t, "secret1", u.PasswordHash)

	_, err = svc.Register(ctx, transport.RegisterRequest{Name: "Budi", Email: "budi@example.com", Password: "secret2"})
	assert.ErrorIs(t, err, domain.ErrConflict)

	evs := events.Events()
	require.Len(t, evs, 1)
	assert.Equal(t, mykafka.TopicUserEvents, evs[0].Topic)
	assert.Equal(t, "user_registered", evs[0].Event.Type)
}

func TestAuthService_Register_Validation(t *testing.T) {
	t.Parallel()

	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  transport.RegisterRequest
	}{
		{name: "empty name", req: transport.RegisterRequest{Name: "  ", Email: "a@example.com", Password: "secret1"}},
		{name: "bad email", req: transport.RegisterRequest{Name: "A", Email: "not-an-email", Password: "secret1"}},
		{name: "short password", req: transport.RegisterRequest{Name: "A", Email: "a@example.com", Password: "123"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tt.req)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestAuthService_Verify_SameErrorForUnknownEmailAndWrongPassword(t *testing.T) {
	t.Parallel()

	svc, _ := newTestAuthService(t)
	ctx := context.Background()
	testutil.CreateUser(t, svc.Repo.DB, "budi@example.com", "secret1", models.RoleCustomer)

	_, errWrong := svc.Verify(ctx, "budi@example.com", "wrong-password")
	_, errUnknown := svc.Verify(ctx, "nobody@example.com", "secret1")

	require.ErrorIs(t, errWrong, domain.ErrInvalidCredentials)
	require.ErrorIs(t, errUnknown, domain.ErrInvalidCredentials)
	assert.Equal(t, errWrong.Error(), errUnknown.Error())

	u, err := svc.Verify(ctx, "BUDI@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "budi@example.com", u.Email)
}

func TestAuthService_TokenRoundTrip(t *testing.T) {
	t.Parallel()

	svc, _ := newTestAuthService(t)
	u := testutil.CreateUser(t, svc.Repo.DB, "budi@example.com", "secret1", models.RoleCustomer)

	token, exp, err := svc.IssueToken(u)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, u.ID, id)
	assert.Equal(t, models.RoleCustomer, claims.Role)

	_, err = svc.ValidateToken(token + "x")
	assert.ErrorIs(t, err, tokens.ErrTokenInvalid)
}

func TestAuthService_ValidateToken_ExpiredIsDistinct(t *testing.T) {
	t.Parallel()

	svc, _ := newTestAuthService(t)
	u := testutil.CreateUser(t, svc.Repo.DB, "budi@example.com", "secret1", models.RoleCustomer)

	svc.Now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, _, err := svc.IssueToken(u)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, tokens.ErrTokenExpired)
	assert.NotErrorIs(t, err, tokens.ErrTokenInvalid)
}

func TestAuthService_Resolve_UsesStoredRole(t *testing.T) {
	t.Parallel()

	svc, _ := newTestAuthService(t)
	ctx := context.Background()
	u := testutil.CreateUser(t, svc.Repo.DB, "budi@example.com", "secret1", models.RoleCustomer)

	// a token whose claim says admin, for a customer account
	forged, _, err := tokens.NewAccessToken(svc.JWTSecret, u.ID, u.Email, models.RoleAdmin, time.Now(), time.Hour)
	require.NoError(t, err)
	claims, err := svc.ValidateToken(forged)
	require.NoError(t, err)

	resolved, err := svc.Resolve(ctx, claims)
	require.NoError(t, err)
	assert.False(t, resolved.IsAdmin())

	require.NoError(t, svc.Repo.DB.Delete(&models.User{}, u.ID).Error)
	_, err = svc.Resolve(ctx, claims)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestAuthService_LoginAndProfile(t *testing.T) {
	t.Parallel()

	svc, _ := newTestAuthService(t)
	ctx := context.Background()
	u := testutil.CreateUser(t, svc.Repo.DB, "budi@example.com", "secret1", models.RoleAdmin)

	res, err := svc.Login(ctx, transport.LoginRequest{Email: "budi@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, u.ID, res.User.ID)

	_, err = svc.Login(ctx, transport.LoginRequest{Email: "budi@example.com", Password: "nope-nope"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = svc.Login(ctx, transport.LoginRequest{})
	assert.ErrorIs(t, err, domain.ErrValidation)

	profile, err := svc.Profile(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, profile.IsAdmin())
}
