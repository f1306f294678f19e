package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/konveksi/internal/service"
	"github.com/Skotchmaster/konveksi/internal/transport"
	"github.com/Skotchmaster/konveksi/pkg/logging"
)

type DesignHTTP struct {
	Svc *service.DesignService
}

func (h *DesignHTTP) SaveDesign(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "design.save")

	who, err := caller(c)
	if err != nil {
		return fail(l, "save_design_error", err)
	}

	var req transport.SaveDesignRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "save_design_error", "invalid body", err)
	}

	design, err := h.Svc.Save(ctx, who.UserID, req)
	if err != nil {
		return fail(l, "save_design_error", err)
	}
	return respond(c, http.StatusCreated, echo.Map{
		"message":   "design saved",
		"design_id": design.ID,
		"design":    design,
	})
}

func (h *DesignHTTP) ListDesigns(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "design.list")

	who, err := caller(c)
	if err != nil {
		return fail(l, "list_designs_error", err)
	}

	designs, err := h.Svc.List(ctx, who.UserID)
	if err != nil {
		return fail(l, "list_designs_error", err)
	}
	return respond(c, http.StatusOK, echo.Map{"designs": designs})
}

func (h *DesignHTTP) GetDesign(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "design.get")

	who, err := caller(c)
	if err != nil {
		return fail(l, "get_design_error", err)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return fail(l, "get_design_error", err)
	}

	design, err := h.Svc.Get(ctx, who.UserID, id)
	if err != nil {
		return fail(l, "get_design_error", err)
	}
	return respond(c, http.StatusOK, echo.Map{"design": design})
}

func (h *DesignHTTP) DeleteDesign(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "design.delete")

	who, err := caller(c)
	if err != nil {
		return fail(l, "delete_design_error", err)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return fail(l, "delete_design_error", err)
	}

	if err := h.Svc.Delete(ctx, who.UserID, id); err != nil {
		return fail(l, "delete_design_error", err)
	}
	return respond(c, http.StatusOK, echo.Map{"message": "design deleted"})
}
