package httpserver

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/konveksi/internal/domain"
	"github.com/Skotchmaster/konveksi/pkg/logging"
	"github.com/Skotchmaster/konveksi/pkg/tokens"
)

const internalMessage = "internal server error"

var kinds = []struct {
	err    error
	status int
}{
	{domain.ErrValidation, http.StatusBadRequest},
	{domain.ErrBusinessRule, http.StatusBadRequest},
	{domain.ErrInsufficientStock, http.StatusBadRequest},
	{domain.ErrInvalidCredentials, http.StatusUnauthorized},
	{domain.ErrUnauthenticated, http.StatusUnauthorized},
	{tokens.ErrTokenExpired, http.StatusUnauthorized},
	{tokens.ErrTokenInvalid, http.StatusUnauthorized},
	{domain.ErrForbidden, http.StatusForbidden},
	{domain.ErrNotFound, http.StatusNotFound},
	{domain.ErrConflict, http.StatusConflict},
}

// statusOf maps an error returned by a handler to its HTTP status.
func statusOf(err error) int {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.status
		}
	}
	return http.StatusInternalServerError
}

// publicMessage drops the "kind: " prefix the domain helpers add.
func publicMessage(err error) string {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if he.Code >= http.StatusInternalServerError {
			return internalMessage
		}
		return fmt.Sprint(he.Message)
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return strings.TrimPrefix(err.Error(), k.err.Error()+": ")
		}
	}
	return internalMessage
}

func errorBody(err error) echo.Map {
	body := echo.Map{"success": false, "message": publicMessage(err)}

	var ceiling *domain.QuantityCeilingError
	if errors.As(err, &ceiling) {
		body["require_mou"] = true
		body["max_quantity"] = ceiling.Ceiling
	}
	var stock *domain.InsufficientStockError
	if errors.As(err, &stock) {
		body["available_stock"] = stock.Available
	}
	return body
}

// ErrorHandler writes the failure envelope. Internal failures are logged
// with their detail and answered with a generic message.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		logging.FromContext(c.Request().Context()).Error("internal_error", "status", status, "error", err)
	}

	var werr error
	if c.Request().Method == http.MethodHead {
		werr = c.NoContent(status)
	} else {
		werr = c.JSON(status, errorBody(err))
	}
	if werr != nil {
		logging.FromContext(c.Request().Context()).Error("write_error_response", "error", werr)
	}
}

// fail logs an expected failure under the handler's event name and passes
// the error on to ErrorHandler.
func fail(l *slog.Logger, event string, err error) error {
	status := statusOf(err)
	if status < http.StatusInternalServerError {
		l.Warn(event, "status", status, "reason", publicMessage(err), "error", err)
	}
	return err
}

func badRequest(l *slog.Logger, event, reason string, err error) error {
	l.Warn(event, "status", http.StatusBadRequest, "reason", reason, "error", err)
	return domain.Validationf("%s", reason)
}
