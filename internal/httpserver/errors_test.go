package httpserver

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/konveksi/internal/domain"
	"github.com/Skotchmaster/konveksi/pkg/logging"
	"github.com/Skotchmaster/konveksi/pkg/tokens"
)

func TestStatusAndMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"validation", domain.Validationf("quantity must be at least 1"), 400, "quantity must be at least 1"},
		{"ceiling", &domain.QuantityCeilingError{Quantity: 30, Ceiling: 24}, 400, "orders above 24 pcs require an MoU, requested 30"},
		{"stock", &domain.InsufficientStockError{ProductID: 1, Requested: 11, Available: 7}, 400, "insufficient stock, available: 7"},
		{"credentials", domain.ErrInvalidCredentials, 401, "invalid email or password"},
		{"unauthenticated", fmt.Errorf("%w: missing access token", domain.ErrUnauthenticated), 401, "missing access token"},
		{"expired", fmt.Errorf("%w: %w", domain.ErrUnauthenticated, tokens.ErrTokenExpired), 401, "token expired"},
		{"forbidden", fmt.Errorf("%w: admin access required", domain.ErrForbidden), 403, "admin access required"},
		{"not found", domain.NotFoundf("product not found"), 404, "product not found"},
		{"conflict", domain.Conflictf("email already registered"), 409, "email already registered"},
		{"echo client error", echo.NewHTTPError(http.StatusRequestEntityTooLarge, "Request Entity Too Large"), 413, "Request Entity Too Large"},
		{"internal", errors.New("pq: connection refused"), 500, internalMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.status, statusOf(tt.err))
			assert.Equal(t, tt.message, publicMessage(tt.err))
		})
	}
}

func TestErrorHandler(t *testing.T) {
	t.Parallel()

	run := func(err error) (*httptest.ResponseRecorder, map[string]any, string) {
		var logs bytes.Buffer
		e := echo.New()
		req := httptest.NewRequest(http.MethodPost, "/api/orders", nil)
		req = req.WithContext(logging.IntoContext(req.Context(), logging.NewWithWriter(&logs, "debug")))
		rec := httptest.NewRecorder()

		ErrorHandler(err, e.NewContext(req, rec))

		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		return rec, body, logs.String()
	}

	t.Run("mou signal", func(t *testing.T) {
		t.Parallel()
		rec, body, _ := run(&domain.QuantityCeilingError{Quantity: 30, Ceiling: domain.MaxSelfServiceQuantity})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, false, body["success"])
		assert.Equal(t, true, body["require_mou"])
		assert.EqualValues(t, 24, body["max_quantity"])
	})

	t.Run("insufficient stock", func(t *testing.T) {
		t.Parallel()
		rec, body, _ := run(&domain.InsufficientStockError{Available: 7})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.EqualValues(t, 7, body["available_stock"])
		assert.NotContains(t, body, "require_mou")
	})

	t.Run("internal detail is logged not returned", func(t *testing.T) {
		t.Parallel()
		rec, body, logs := run(errors.New("pq: relation \"orders\" does not exist"))
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, internalMessage, body["message"])
		assert.Contains(t, logs, "relation")
	})
}
