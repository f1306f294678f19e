package transport

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Skotchmaster/konveksi/internal/models"
)

func TestNewOrderView_FlattensRefs(t *testing.T) {
	t.Parallel()

	phone := "0812"
	img := "/uploads/images/kaos.png"
	o := &models.Order{
		ID:         3,
		UserID:     9,
		ProductID:  1,
		Quantity:   3,
		TotalPrice: 135000,
		Status:     models.OrderStatusPending,
		Product:    &models.Product{Name: "Kaos Polos", Price: 50000, ImageURL: &img},
		User:       &models.User{Name: "Budi", Email: "budi@example.com", Phone: &phone},
	}

	v := NewOrderView(o)
	assert.Equal(t, "Kaos Polos", v.ProductName)
	assert.EqualValues(t, 45000, v.UnitPrice)
	assert.Equal(t, &img, v.ProductImage)
	assert.Equal(t, "budi@example.com", v.CustomerEmail)
	assert.Equal(t, &phone, v.CustomerPhone)

	s := NewOrderSummary(o)
	assert.Equal(t, OrderSummary{ID: 3, ProductName: "Kaos Polos", Quantity: 3, TotalPrice: 135000, Status: models.OrderStatusPending}, s)
}

func TestNewOrderView_WithoutCustomer(t *testing.T) {
	t.Parallel()

	v := NewOrderView(&models.Order{ID: 1, Quantity: 1, TotalPrice: 10})
	assert.Empty(t, v.CustomerEmail)
	assert.Empty(t, v.ProductName)
}
