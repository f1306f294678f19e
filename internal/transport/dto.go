package transport

import (
	"time"

	"github.com/Skotchmaster/konveksi/internal/models"
)

type RegisterRequest struct {
	Name     string  `json:"name"     validate:"required,max=120"`
	Email    string  `json:"email"    validate:"required,email,max=254"`
	Password string  `json:"password" validate:"required,min=6,max=72"`
	Phone    *string `json:"phone"    validate:"omitempty,max=32"`
	Address  *string `json:"address"  validate:"omitempty,max=500"`
}

type LoginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

// CategoryRequest serves both create and partial update; nil fields are left alone.
type CategoryRequest struct {
	Name        *string `json:"name"        validate:"omitempty,min=1,max=120"`
	Slug        *string `json:"slug"        validate:"omitempty,slug"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
}

// ProductRequest serves both create and partial update. A category_id of 0
// detaches the product from its category.
type ProductRequest struct {
	Name           *string `json:"name"            validate:"omitempty,min=1,max=200"`
	Slug           *string `json:"slug"            validate:"omitempty,slug"`
	Description    *string `json:"description"     validate:"omitempty,max=5000"`
	Price          *int64  `json:"price"           validate:"omitempty,gt=0"`
	Stock          *int    `json:"stock"           validate:"omitempty,gte=0"`
	CategoryID     *uint   `json:"category_id"`
	IsCustomizable *bool   `json:"is_customizable"`
}

// CreateOrderRequest carries no price: totals are always computed server side.
type CreateOrderRequest struct {
	ProductID uint    `json:"product_id"`
	Quantity  int     `json:"quantity"`
	Notes     *string `json:"notes"`
	DesignID  *uint   `json:"design_id"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status"`
}

type SaveDesignRequest struct {
	ProductType  string            `json:"product_type"`
	DesignData   models.DesignData `json:"design_data"`
	PreviewImage *string           `json:"preview_image"`
}

type CreateMessageRequest struct {
	Name      string `json:"name"       validate:"required,max=120"`
	Email     string `json:"email"      validate:"required,email"`
	Subject   string `json:"subject"    validate:"required,max=200"`
	Message   string `json:"message"    validate:"required,max=5000"`
	ProductID *uint  `json:"product_id"`
	Quantity  *int   `json:"quantity"   validate:"omitempty,gt=0"`
}

type OrderSummary struct {
	ID          uint               `json:"id"`
	ProductName string             `json:"product_name"`
	Quantity    int                `json:"quantity"`
	TotalPrice  int64              `json:"total_price"`
	Status      models.OrderStatus `json:"status"`
}

func NewOrderSummary(o *models.Order) OrderSummary {
	s := OrderSummary{
		ID:         o.ID,
		Quantity:   o.Quantity,
		TotalPrice: o.TotalPrice,
		Status:     o.Status,
	}
	if o.Product != nil {
		s.ProductName = o.Product.Name
	}
	return s
}

type OrderView struct {
	ID            uint               `json:"id"`
	UserID        uint               `json:"user_id"`
	ProductID     uint               `json:"product_id"`
	ProductName   string             `json:"product_name"`
	ProductImage  *string            `json:"product_image"`
	UnitPrice     int64              `json:"unit_price"`
	Quantity      int                `json:"quantity"`
	TotalPrice    int64              `json:"total_price"`
	Status        models.OrderStatus `json:"status"`
	Notes         *string            `json:"notes,omitempty"`
	DesignID      *uint              `json:"design_id,omitempty"`
	CustomerName  string             `json:"customer_name,omitempty"`
	CustomerEmail string             `json:"customer_email,omitempty"`
	CustomerPhone *string            `json:"customer_phone,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

// NewOrderView flattens an order with its preloaded product and customer.
// UnitPrice is the price frozen into the order, not the current product price.
func NewOrderView(o *models.Order) OrderView {
	v := OrderView{
		ID:         o.ID,
		UserID:     o.UserID,
		ProductID:  o.ProductID,
		Quantity:   o.Quantity,
		TotalPrice: o.TotalPrice,
		Status:     o.Status,
		Notes:      o.Notes,
		DesignID:   o.DesignID,
		CreatedAt:  o.CreatedAt,
		UpdatedAt:  o.UpdatedAt,
	}
	if o.Quantity > 0 {
		v.UnitPrice = o.TotalPrice / int64(o.Quantity)
	}
	if o.Product != nil {
		v.ProductName = o.Product.Name
		v.ProductImage = o.Product.ImageURL
	}
	if o.User != nil {
		v.CustomerName = o.User.Name
		v.CustomerEmail = o.User.Email
		v.CustomerPhone = o.User.Phone
	}
	return v
}

func NewOrderViews(orders []models.Order) []OrderView {
	out := make([]OrderView, 0, len(orders))
	for i := range orders {
		out = append(out, NewOrderView(&orders[i]))
	}
	return out
}
