package orders

import (
	"github.com/google/uuid"

	"github.com/phamdt203/zenmart-backend/pkg/enums"
)

// CreateOrderItemInput is one requested line of a new order.
type CreateOrderItemInput struct {
	ProductID uuid.UUID
	Quantity  int
	Color     string
	Size      string
}

// CreateOrderInput carries everything needed to place an order.
type CreateOrderInput struct {
	CustomerID      uuid.UUID
	ShippingAddress string
	PaymentMethod   enums.PaymentMethod
	Items           []CreateOrderItemInput
}

// UpdateStatusInput moves an order along its lifecycle.
type UpdateStatusInput struct {
	OrderID uuid.UUID
	Status  enums.OrderStatus
}

// CancelRequestInput lets a customer ask for cancellation of their own order.
type CancelRequestInput struct {
	OrderID    uuid.UUID
	CustomerID uuid.UUID
}
