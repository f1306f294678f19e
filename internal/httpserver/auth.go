package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/konveksi/internal/middleware/auth"
	"github.com/Skotchmaster/konveksi/internal/service"
	"github.com/Skotchmaster/konveksi/internal/transport"
	"github.com/Skotchmaster/konveksi/pkg/logging"
)

type AuthHTTP struct {
	Svc           *service.AuthService
	SecureCookies bool
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.register")

	var req transport.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "register_error", "invalid body", err)
	}

	user, err := h.Svc.Register(ctx, req)
	if err != nil {
		return fail(l, "register_error", err)
	}

	l.Info("register_success", "status", http.StatusCreated, "user_id", user.ID)
	return respond(c, http.StatusCreated, echo.Map{
		"message": "registration successful, please log in",
		"user_id": user.ID,
		"user":    user,
	})
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.login")

	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "login_error", "invalid body", err)
	}

	res, err := h.Svc.Login(ctx, req)
	if err != nil {
		return fail(l, "login_error", err)
	}

	c.SetCookie(auth.CreateCookie(res.Token, res.ExpiresAt, h.SecureCookies))
	return respond(c, http.StatusOK, echo.Map{
		"message":    "login successful",
		"token":      res.Token,
		"expires_at": res.ExpiresAt,
		"user":       res.User,
	})
}

func (h *AuthHTTP) Logout(c echo.Context) error {
	c.SetCookie(auth.DeleteCookie(h.SecureCookies))
	return respond(c, http.StatusOK, echo.Map{"message": "logged out"})
}

func (h *AuthHTTP) Profile(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.profile")

	who, err := caller(c)
	if err != nil {
		return fail(l, "profile_error", err)
	}

	user, err := h.Svc.Profile(ctx, who.UserID)
	if err != nil {
		return fail(l, "profile_error", err)
	}
	return respond(c, http.StatusOK, echo.Map{"user": user})
}
