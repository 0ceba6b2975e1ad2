package service

import (
	"context"

	"discount-engine/internal/model"

	"github.com/google/uuid"
)

// DiscountService defines the discount engine surface exposed to the rest of
// the application.
type DiscountService interface {
	// Evaluate performs a speculative, side-effect-free evaluation for a
	// cart preview. Rejections are reported in the response, not as errors.
	Evaluate(ctx context.Context, req *model.EvaluationRequest) (*model.EvaluationResponse, error)

	// EvaluateOrder evaluates a priced candidate order and returns the
	// discount amount. Rejections are returned as domain errors.
	EvaluateOrder(ctx context.Context, order *model.CandidateOrder) (float64, error)

	// CommitRedemption durably records one redemption after the order is
	// committed. Returns model.ErrRedemptionConflict when the code's
	// capacity ran out between evaluation and commit.
	CommitRedemption(ctx context.Context, code string, userID *string) error

	// Import bulk-creates discount codes from a gzipped code file.
	Import(ctx context.Context, req *model.ImportRequest) (*model.ImportResponse, error)
}

// OrderService defines operations for order placement.
type OrderService interface {
	// CreateOrder places an order, applying and redeeming the submitted
	// discount code when one is present.
	CreateOrder(ctx context.Context, req *model.OrderRequest) (*model.OrderResponse, error)

	// GetByID retrieves an order by its ID with all items.
	GetByID(ctx context.Context, id uuid.UUID) (*model.OrderResponse, error)
}

// ProductService defines operations for catalogue reads.
type ProductService interface {
	// GetAll retrieves all products with pagination.
	GetAll(ctx context.Context, limit, offset int) ([]model.Product, error)

	// GetByID retrieves a single product by ID.
	GetByID(ctx context.Context, id string) (*model.Product, error)

	// GetByIDs retrieves multiple products by their IDs.
	GetByIDs(ctx context.Context, ids []string) ([]model.Product, error)
}
