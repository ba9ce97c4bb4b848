package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
	OrderStatusShipped   OrderStatus = "SHIPPED"
	OrderStatusDelivered OrderStatus = "DELIVERED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "PENDING"
	PaymentStatusPaid    PaymentStatus = "PAID"
)

// adminTransitions lists the status changes the administrative path may make.
// CONFIRMED is reachable only through a verified payment notification.
var adminTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:   {OrderStatusCancelled},
	OrderStatusConfirmed: {OrderStatusShipped},
	OrderStatusShipped:   {OrderStatusDelivered},
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range adminTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func ValidOrderStatus(s string) bool {
	switch OrderStatus(s) {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// Order is a financial record: rows are created by checkout, mutated only by
// the payment notification or the guarded administrative path, never deleted.
type Order struct {
	ID              int64
	UserID          int64
	OrderNumber     string
	Status          OrderStatus
	PaymentStatus   PaymentStatus
	TotalAmount     decimal.Decimal
	ShippingAddress string
	PaymentMethod   string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// OrderItem is immutable once persisted. LineTotal is always derived from
// UnitPrice and Quantity, never supplied by a client.
type OrderItem struct {
	ID          int64
	OrderID     int64
	ProductID   int64
	ProductName string
	Color       string
	Size        string
	Quantity    int
	UnitPrice   decimal.Decimal
	LineTotal   decimal.Decimal
	CreatedAt   time.Time
}

// OrderSummary pairs an order with the customer fields shown in listings.
type OrderSummary struct {
	Order
	CustomerName  string
	CustomerEmail string
}
