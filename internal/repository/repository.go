package repository

import (
	"context"

	"discount-engine/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// DiscountRepository defines data access for discount codes and redemption
// counters. Reads never mutate any counter.
type DiscountRepository interface {
	// GetByCode retrieves a discount code. Returns nil when absent.
	GetByCode(ctx context.Context, code string) (*model.DiscountCode, error)

	// GetUserRedemptionCount returns how many times the user has redeemed
	// the code. Returns 0 when no redemption record exists.
	GetUserRedemptionCount(ctx context.Context, code, userID string) (int, error)

	// CreateCodes inserts discount codes, skipping codes that already
	// exist. Returns the number actually inserted.
	CreateCodes(ctx context.Context, codes []model.DiscountCode) (int, error)
}

// RedemptionLedger durably records discount redemptions. CommitRedemption is
// the only path that mutates usage counters.
type RedemptionLedger interface {
	// CommitRedemption atomically increments the code's global counter and,
	// when a per-user cap applies and a user is present, the user's
	// redemption record, re-validating usage limits at commit time. Returns
	// model.ErrRedemptionConflict when a concurrent commit exhausted the
	// code's capacity; counters are left unchanged on any failure.
	CommitRedemption(ctx context.Context, code string, userID *string) error
}

// ProductRepository defines the interface for product data access operations.
type ProductRepository interface {
	// GetAll retrieves all products with pagination support.
	GetAll(ctx context.Context, limit, offset int) ([]model.Product, error)

	// GetByID retrieves a single product by its ID.
	GetByID(ctx context.Context, id string) (*model.Product, error)

	// GetByIDs retrieves multiple products by their IDs.
	GetByIDs(ctx context.Context, ids []string) ([]model.Product, error)
}

// OrderRepository defines the interface for order data access operations.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// CreateOrder inserts a new order within the provided transaction.
	CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// CreateOrderItems inserts multiple order items within the provided transaction.
	CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error

	// GetByID retrieves an order by its ID along with its items.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, []model.OrderItem, error)

	// ClearDiscount re-prices an order without its discount after a
	// redemption conflict.
	ClearDiscount(ctx context.Context, id uuid.UUID) error
}
