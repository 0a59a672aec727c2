// internal/models/order.go
package models

import "time"

// Order is a placed order with its line items. OrderTotal is computed at
// creation time from the product prices in effect.
type Order struct {
	ID         int         `json:"id"`
	CustomerID int         `json:"customerId"`
	OrderTotal float64     `json:"orderTotal"`
	Status     string      `json:"status"`
	CreatedAt  time.Time   `json:"createdAt"`
	Items      []OrderItem `json:"items,omitempty"`
}

// OrderItem snapshots the price at order time.
type OrderItem struct {
	ID        int     `json:"id"`
	OrderID   int     `json:"orderId"`
	ProductID int     `json:"productId"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

// Subtotal is the line total for this item.
func (i OrderItem) Subtotal() float64 {
	return float64(i.Quantity) * i.Price
}

// OrderItemInput is the request shape for creating an order line.
type OrderItemInput struct {
	ProductID int `json:"productId"`
	Quantity  int `json:"quantity"`
}
