package model

import (
	"time"

	"github.com/google/uuid"
)

// CartItem is a priced cart line.
type CartItem struct {
	ProductID string  `json:"productId"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
}

// LineTotal returns the line subtotal.
func (i CartItem) LineTotal() float64 {
	return float64(i.Quantity) * i.UnitPrice
}

// CandidateOrder is the resolver's view of an order being placed. It is an
// input to evaluation, never persisted by the discount engine.
type CandidateOrder struct {
	Items    []CartItem
	Subtotal float64
	// UserID is nil for guest checkout.
	UserID *string
	Code   string
}

// NewCandidateOrder builds a candidate order from priced cart lines.
func NewCandidateOrder(code string, userID *string, items []CartItem) *CandidateOrder {
	var subtotal float64
	for _, item := range items {
		subtotal += item.LineTotal()
	}
	return &CandidateOrder{
		Items:    items,
		Subtotal: subtotal,
		UserID:   userID,
		Code:     code,
	}
}

// Order represents a persisted customer order.
type Order struct {
	ID             uuid.UUID `json:"id" db:"id"`
	UserID         *string   `json:"userId,omitempty" db:"user_id"`
	DiscountCode   *string   `json:"discountCode,omitempty" db:"discount_code"`
	DiscountAmount float64   `json:"discountAmount" db:"discount_amount"`
	Subtotal       float64   `json:"subtotal" db:"subtotal"`
	Total          float64   `json:"total" db:"total"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time `json:"updatedAt" db:"updated_at"`
}

// OrderItem represents a line item in a persisted order.
type OrderItem struct {
	ID        uuid.UUID `json:"-" db:"id"`
	OrderID   uuid.UUID `json:"-" db:"order_id"`
	ProductID string    `json:"productId" db:"product_id"`
	Quantity  int       `json:"quantity" db:"quantity"`
	UnitPrice float64   `json:"unitPrice" db:"unit_price"`
}

// CartItemRequest represents a single unpriced cart line in a request.
// Lines are priced from the catalog server-side.
type CartItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// OrderRequest represents the request payload for placing an order.
type OrderRequest struct {
	UserID       *string           `json:"userId,omitempty"`
	DiscountCode *string           `json:"discountCode,omitempty"`
	Items        []CartItemRequest `json:"items"`
}

// OrderResponse represents the response payload for an order.
type OrderResponse struct {
	ID             uuid.UUID   `json:"id"`
	Items          []OrderItem `json:"items"`
	Subtotal       float64     `json:"subtotal"`
	DiscountCode   *string     `json:"discountCode,omitempty"`
	DiscountAmount float64     `json:"discountAmount"`
	Total          float64     `json:"total"`
	// DiscountNote is set when the discount was dropped at commit time
	// because the code's capacity ran out during checkout.
	DiscountNote string `json:"discountNote,omitempty"`
}
