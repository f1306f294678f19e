package models

import (
	"time"
)

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"        json:"id"`
	Name         string    `gorm:"not null"                        json:"name"`
	Email        string    `gorm:"uniqueIndex;not null"            json:"email"`
	PasswordHash string    `gorm:"not null"                        json:"-"`
	Phone        *string   `                                       json:"phone,omitempty"`
	Address      *string   `                                       json:"address,omitempty"`
	Role         string    `gorm:"not null;default:customer"       json:"role"`
	CreatedAt    time.Time `                                       json:"created_at"`
	UpdatedAt    time.Time `                                       json:"updated_at"`
}

func (u *User) IsAdmin() bool { return u != nil && u.Role == RoleAdmin }

type Category struct {
	ID          uint      `gorm:"primaryKey;autoIncrement"  json:"id"`
	Name        string    `gorm:"not null"                  json:"name"`
	Slug        string    `gorm:"uniqueIndex;not null"      json:"slug"`
	Description *string   `                                 json:"description,omitempty"`
	Model3DURL  *string   `gorm:"column:model_3d_url"       json:"model_3d_url,omitempty"`
	CreatedAt   time.Time `                                 json:"created_at"`
	UpdatedAt   time.Time `                                 json:"updated_at"`
}

// Product prices are whole rupiah.
type Product struct {
	ID             uint      `gorm:"primaryKey;autoIncrement"                      json:"id"`
	Name           string    `gorm:"not null"                                      json:"name"`
	Slug           string    `gorm:"uniqueIndex;not null"                          json:"slug"`
	Description    string    `gorm:"not null;default:''"                           json:"description"`
	Price          int64     `gorm:"not null;check:chk_products_price,price > 0"  json:"price"`
	Stock          int       `gorm:"not null;default:0;check:chk_products_stock,stock >= 0" json:"stock"`
	CategoryID     *uint     `gorm:"index"                                         json:"category_id"`
	Category       *Category `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"category,omitempty"`
	ImageURL       *string   `                                                     json:"image_url"`
	Model3DURL     *string   `gorm:"column:model_3d_url"                           json:"model_3d_url"`
	IsCustomizable bool      `gorm:"not null;default:false"                        json:"is_customizable"`
	CreatedAt      time.Time `gorm:"index"                                         json:"created_at"`
	UpdatedAt      time.Time `                                                     json:"updated_at"`
}

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusCompleted, OrderStatusCancelled},
}

func ParseOrderStatus(s string) (OrderStatus, bool) {
	switch st := OrderStatus(s); st {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusCompleted, OrderStatusCancelled:
		return st, true
	}
	return "", false
}

// CanTransition reports whether an order in s may move to next.
// completed and cancelled are terminal.
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type Order struct {
	ID         uint        `gorm:"primaryKey;autoIncrement"                                  json:"id"`
	UserID     uint        `gorm:"index;not null"                                            json:"user_id"`
	User       *User       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"             json:"user,omitempty"`
	ProductID  uint        `gorm:"index;not null"                                            json:"product_id"`
	Product    *Product    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"             json:"product,omitempty"`
	Quantity   int         `gorm:"not null;check:chk_orders_quantity,quantity > 0"           json:"quantity"`
	TotalPrice int64       `gorm:"not null"                                                  json:"total_price"`
	Status     OrderStatus `gorm:"type:varchar(16);index;not null;default:pending"           json:"status"`
	Notes      *string     `                                                                 json:"notes,omitempty"`
	DesignID   *uint       `gorm:"index"                                                     json:"design_id,omitempty"`
	Design     *Design     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL"             json:"-"`
	CreatedAt  time.Time   `gorm:"index"                                                     json:"created_at"`
	UpdatedAt  time.Time   `                                                                 json:"updated_at"`
}

type Design struct {
	ID           uint       `gorm:"primaryKey;autoIncrement"                      json:"id"`
	UserID       uint       `gorm:"index;not null"                                json:"user_id"`
	User         *User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE"  json:"-"`
	ProductType  string     `gorm:"not null"                                      json:"product_type"`
	DesignData   DesignData `gorm:"not null"                                      json:"design_data"`
	PreviewImage *string    `                                                     json:"preview_image"`
	CreatedAt    time.Time  `gorm:"index"                                         json:"created_at"`
	UpdatedAt    time.Time  `                                                     json:"updated_at"`
}

// Message is an MoU or contact inquiry left through the storefront.
type Message struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    *uint     `gorm:"index"                    json:"user_id,omitempty"`
	ProductID *uint     `gorm:"index"                    json:"product_id,omitempty"`
	Quantity  *int      `                                json:"quantity,omitempty"`
	Name      string    `gorm:"not null"                 json:"name"`
	Email     string    `gorm:"not null"                 json:"email"`
	Subject   string    `gorm:"not null"                 json:"subject"`
	Message   string    `gorm:"type:text;not null"       json:"message"`
	CreatedAt time.Time `gorm:"index"                    json:"created_at"`
}

// All lists every model in migration order.
func All() []any {
	return []any{&User{}, &Category{}, &Product{}, &Design{}, &Order{}, &Message{}}
}
