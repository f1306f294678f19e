package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/Skotchmaster/konveksi/internal/domain"
	"github.com/Skotchmaster/konveksi/internal/models"
)

type PlaceOrderParams struct {
	UserID    uint
	ProductID uint
	Quantity  int
	Notes     *string
	DesignID  *uint
}

type OrderFilter struct {
	// UserID scopes the listing to one customer; nil lists every order.
	UserID *uint
	Status *models.OrderStatus
	// WithCustomer preloads the ordering user.
	WithCustomer bool
}

// PlaceOrder decrements stock and inserts a pending order in one transaction.
// The decrement is conditional on stock >= quantity, so concurrent orders
// can never overdraw a product.
func (r *GormRepo) PlaceOrder(ctx context.Context, p PlaceOrderParams) (*models.Order, *models.Product, error) {
	var (
		order   models.Order
		product models.Product
	)

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Select("id", "name", "slug", "price", "stock", "image_url").First(&product, p.ProductID).Error; err != nil {
			return notFound(err, "product")
		}

		if product.Stock < p.Quantity {
			return &domain.InsufficientStockError{ProductID: product.ID, Requested: p.Quantity, Available: product.Stock}
		}

		res := tx.Model(&models.Product{}).
			Where("id = ? AND stock >= ?", product.ID, p.Quantity).
			UpdateColumn("stock", gorm.Expr("stock - ?", p.Quantity))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var stocks []int
			if err := tx.Model(&models.Product{}).Where("id = ?", product.ID).Pluck("stock", &stocks).Error; err != nil {
				return err
			}
			available := 0
			if len(stocks) > 0 {
				available = stocks[0]
			}
			return &domain.InsufficientStockError{ProductID: product.ID, Requested: p.Quantity, Available: available}
		}

		order = models.Order{
			UserID:     p.UserID,
			ProductID:  product.ID,
			Quantity:   p.Quantity,
			TotalPrice: product.Price * int64(p.Quantity),
			Status:     models.OrderStatusPending,
			Notes:      p.Notes,
			DesignID:   p.DesignID,
		}
		if err := tx.Omit("User", "Product", "Design").Create(&order).Error; err != nil {
			return err
		}

		product.Stock -= p.Quantity
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	order.Product = &product
	return &order, &product, nil
}

func preloadOrderRefs(db *gorm.DB, withCustomer bool) *gorm.DB {
	db = db.Preload("Product", func(db *gorm.DB) *gorm.DB {
		return db.Select("id", "name", "slug", "price", "image_url")
	})
	if withCustomer {
		db = db.Preload("User", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "name", "email", "phone")
		})
	}
	return db
}

func (r *GormRepo) ListOrders(ctx context.Context, f OrderFilter) ([]models.Order, error) {
	q := r.DB.WithContext(ctx).Model(&models.Order{})
	if f.UserID != nil {
		q = q.Where("user_id = ?", *f.UserID)
	}
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}

	orders := make([]models.Order, 0)
	if err := preloadOrderRefs(q, f.WithCustomer).
		Order("created_at DESC").
		Order("id DESC").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// GetOrder loads one order. A non-nil userID folds ownership into the lookup,
// so another customer's order is indistinguishable from a missing one.
func (r *GormRepo) GetOrder(ctx context.Context, id uint, userID *uint) (*models.Order, error) {
	q := r.DB.WithContext(ctx).Where("id = ?", id)
	if userID != nil {
		q = q.Where("user_id = ?", *userID)
	}

	var order models.Order
	if err := preloadOrderRefs(q, true).First(&order).Error; err != nil {
		return nil, notFound(err, "order")
	}
	return &order, nil
}

// UpdateOrderStatus moves an order along the status machine. The write is
// conditional on the status that was read, so racing admins cannot both win.
func (r *GormRepo) UpdateOrderStatus(ctx context.Context, id uint, next models.OrderStatus) (*models.Order, models.OrderStatus, error) {
	var (
		order models.Order
		prev  models.OrderStatus
	)

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&order, id).Error; err != nil {
			return notFound(err, "order")
		}
		prev = order.Status

		if !prev.CanTransition(next) {
			return domain.Conflictf("cannot change order status from %s to %s", prev, next)
		}

		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", id, prev).
			Update("status", next)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.Conflictf("order status changed concurrently")
		}

		order.Status = next
		return nil
	})
	if err != nil {
		return nil, "", err
	}
	return &order, prev, nil
}
