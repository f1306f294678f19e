// Package domain holds the error taxonomy shared by the repositories,
// services and HTTP handlers.
package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation         = errors.New("validation")
	ErrNotFound           = errors.New("not found")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrForbidden          = errors.New("forbidden")
	ErrConflict           = errors.New("conflict")
	ErrBusinessRule       = errors.New("business rule")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// MaxSelfServiceQuantity is the largest order quantity accepted without an MoU.
const MaxSelfServiceQuantity = 24

// QuantityCeilingError routes an order above MaxSelfServiceQuantity to the MoU path.
type QuantityCeilingError struct {
	Quantity int
	Ceiling  int
}

func (e *QuantityCeilingError) Error() string {
	return fmt.Sprintf("orders above %d pcs require an MoU, requested %d", e.Ceiling, e.Quantity)
}

func (e *QuantityCeilingError) Unwrap() error { return ErrBusinessRule }

type InsufficientStockError struct {
	ProductID uint
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock, available: %d", e.Available)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func NotFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

func Conflictf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}
