package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/konveksi/internal/middleware/auth"
	"github.com/Skotchmaster/konveksi/internal/service"
	"github.com/Skotchmaster/konveksi/internal/transport"
	"github.com/Skotchmaster/konveksi/pkg/logging"
)

type MessageHTTP struct {
	Svc *service.MessageService
}

// CreateMessage accepts anonymous inquiries; a logged in sender is linked.
func (h *MessageHTTP) CreateMessage(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "message.create")

	var req transport.CreateMessageRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "create_message_error", "invalid body", err)
	}

	var userID *uint
	if id, ok := auth.UserID(c); ok {
		userID = &id
	}

	msg, err := h.Svc.Create(ctx, userID, req)
	if err != nil {
		return fail(l, "create_message_error", err)
	}
	return respond(c, http.StatusCreated, echo.Map{
		"message": "inquiry received, we will contact you soon",
		"inquiry": msg,
	})
}

func (h *MessageHTTP) ListMessages(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "message.list")

	page, size := pageParams(c)
	res, err := h.Svc.List(ctx, page, size)
	if err != nil {
		return fail(l, "list_messages_error", err)
	}
	return respond(c, http.StatusOK, echo.Map{
		"messages":   res.Items,
		"pagination": res.Meta,
	})
}
