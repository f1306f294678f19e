package service

import (
	"context"
	"errors"

	"github.com/Skotchmaster/konveksi/internal/cache"
	"github.com/Skotchmaster/konveksi/internal/domain"
	"github.com/Skotchmaster/konveksi/internal/metrics"
	"github.com/Skotchmaster/konveksi/internal/models"
	"github.com/Skotchmaster/konveksi/internal/mykafka"
	"github.com/Skotchmaster/konveksi/internal/repo"
	"github.com/Skotchmaster/konveksi/internal/transport"
	"github.com/Skotchmaster/konveksi/pkg/logging"
)

type OrderService struct {
	Repo    *repo.GormRepo
	Cache   *cache.Cache
	Events  Publisher
	Metrics *metrics.Metrics
}

// Caller is the resolved identity an operation runs on behalf of.
type Caller struct {
	UserID uint
	Role   string
}

func (c Caller) IsAdmin() bool { return c.Role == models.RoleAdmin }

// CreateOrder places a self-service order. Quantities above the MoU ceiling
// are refused before stock is consulted; stock is then checked and
// decremented atomically with the insert.
func (s *OrderService) CreateOrder(ctx context.Context, userID uint, req transport.CreateOrderRequest) (*transport.OrderSummary, error) {
	l := logging.FromContext(ctx).With("svc", "order.create", "user_id", userID)

	if req.ProductID == 0 || req.Quantity < 1 {
		s.Metrics.ObserveOrder(metrics.OrderRejected, req.Quantity)
		return nil, domain.Validationf("product_id and a quantity of at least 1 are required")
	}
	if req.Quantity > domain.MaxSelfServiceQuantity {
		s.Metrics.ObserveOrder(metrics.OrderRequiresMoU, req.Quantity)
		l.Info("order_requires_mou", "product_id", req.ProductID, "quantity", req.Quantity)
		return nil, &domain.QuantityCeilingError{Quantity: req.Quantity, Ceiling: domain.MaxSelfServiceQuantity}
	}

	if req.DesignID != nil {
		if _, err := s.Repo.GetDesign(ctx, userID, *req.DesignID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				s.Metrics.ObserveOrder(metrics.OrderRejected, req.Quantity)
				return nil, domain.Validationf("design %d does not exist", *req.DesignID)
			}
			return nil, err
		}
	}

	order, product, err := s.Repo.PlaceOrder(ctx, repo.PlaceOrderParams{
		UserID:    userID,
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
		Notes:     req.Notes,
		DesignID:  req.DesignID,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInsufficientStock):
			s.Metrics.ObserveOrder(metrics.OrderInsufficientStock, req.Quantity)
			l.Info("order_insufficient_stock", "product_id", req.ProductID, "quantity", req.Quantity, "error", err)
		case errors.Is(err, domain.ErrNotFound):
			s.Metrics.ObserveOrder(metrics.OrderRejected, req.Quantity)
		default:
			s.Metrics.ObserveOrder(metrics.OrderFailed, req.Quantity)
			l.Error("order_error", "status", 500, "reason", "transaction failed", "error", err)
		}
		return nil, err
	}

	s.Metrics.ObserveOrder(metrics.OrderPlaced, order.Quantity)
	l.Info("order_created", "order_id", order.ID, "product_id", product.ID, "quantity", order.Quantity, "stock_left", product.Stock)

	if err := s.Cache.Del(ctx, cache.ProductKey(idKey(product.ID)), cache.ProductKey(product.Slug)); err != nil {
		l.Warn("cache_del_failed", "product_id", product.ID, "error", err)
	}
	publish(ctx, s.Events, mykafka.TopicOrderEvents, idKey(order.ID), "order_created", map[string]any{
		"order_id":    order.ID,
		"user_id":     userID,
		"product_id":  product.ID,
		"quantity":    order.Quantity,
		"total_price": order.TotalPrice,
		"stock_left":  product.Stock,
	})

	summary := transport.NewOrderSummary(order)
	return &summary, nil
}

// ListOrders shows customers their own orders and admins every order with
// the customer attached.
func (s *OrderService) ListOrders(ctx context.Context, caller Caller, status string) ([]transport.OrderView, error) {
	f := repo.OrderFilter{}
	if caller.IsAdmin() {
		f.WithCustomer = true
	} else {
		f.UserID = &caller.UserID
	}
	if status != "" {
		st, ok := models.ParseOrderStatus(status)
		if !ok {
			return nil, domain.Validationf("unknown order status %q", status)
		}
		f.Status = &st
	}

	orders, err := s.Repo.ListOrders(ctx, f)
	if err != nil {
		return nil, err
	}
	return transport.NewOrderViews(orders), nil
}

// GetOrder hides other customers' orders behind ErrNotFound.
func (s *OrderService) GetOrder(ctx context.Context, caller Caller, id uint) (*transport.OrderView, error) {
	var owner *uint
	if !caller.IsAdmin() {
		owner = &caller.UserID
	}

	order, err := s.Repo.GetOrder(ctx, id, owner)
	if err != nil {
		return nil, err
	}
	view := transport.NewOrderView(order)
	return &view, nil
}

func (s *OrderService) UpdateOrderStatus(ctx context.Context, id uint, status string) (*transport.OrderView, error) {
	l := logging.FromContext(ctx).With("svc", "order.update_status", "order_id", id)

	next, ok := models.ParseOrderStatus(status)
	if !ok {
		return nil, domain.Validationf("status must be one of pending, processing, completed, cancelled")
	}

	_, prev, err := s.Repo.UpdateOrderStatus(ctx, id, next)
	if err != nil {
		return nil, err
	}

	l.Info("order_status_changed", "from", prev, "to", next)
	publish(ctx, s.Events, mykafka.TopicOrderEvents, idKey(id), "order_status_changed", map[string]any{
		"order_id": id,
		"from":     prev,
		"to":       next,
	})

	order, err := s.Repo.GetOrder(ctx, id, nil)
	if err != nil {
		return nil, err
	}
	view := transport.NewOrderView(order)
	return &view, nil
}
