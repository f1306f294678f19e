package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/konveksi/internal/service"
	"github.com/Skotchmaster/konveksi/internal/transport"
	"github.com/Skotchmaster/konveksi/pkg/logging"
)

type OrderHTTP struct {
	Svc *service.OrderService
}

func (h *OrderHTTP) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.create_order")

	who, err := caller(c)
	if err != nil {
		return fail(l, "create_order_error", err)
	}

	var req transport.CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "create_order_error", "invalid body", err)
	}

	order, err := h.Svc.CreateOrder(ctx, who.UserID, req)
	if err != nil {
		return fail(l, "create_order_error", err)
	}

	l.Info("create_order_success", "order_id", order.ID)
	return respond(c, http.StatusCreated, echo.Map{
		"message": "order placed",
		"order":   order,
	})
}

func (h *OrderHTTP) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.list_orders")

	who, err := caller(c)
	if err != nil {
		return fail(l, "list_orders_error", err)
	}

	orders, err := h.Svc.ListOrders(ctx, who, c.QueryParam("status"))
	if err != nil {
		return fail(l, "list_orders_error", err)
	}
	return respond(c, http.StatusOK, echo.Map{"orders": orders})
}

func (h *OrderHTTP) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get_order")

	who, err := caller(c)
	if err != nil {
		return fail(l, "get_order_error", err)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return fail(l, "get_order_error", err)
	}

	order, err := h.Svc.GetOrder(ctx, who, id)
	if err != nil {
		return fail(l, "get_order_error", err)
	}
	return respond(c, http.StatusOK, echo.Map{"order": order})
}

func (h *OrderHTTP) UpdateOrderStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.update_status")

	id, err := parseID(c, "id")
	if err != nil {
		return fail(l, "update_order_status_error", err)
	}

	var req transport.UpdateOrderStatusRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "update_order_status_error", "invalid body", err)
	}

	order, err := h.Svc.UpdateOrderStatus(ctx, id, req.Status)
	if err != nil {
		return fail(l, "update_order_status_error", err)
	}
	return respond(c, http.StatusOK, echo.Map{
		"message": "order status updated",
		"order":   order,
	})
}
