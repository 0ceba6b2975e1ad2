package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"discount-engine/internal/model"
	"discount-engine/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// orderService implements OrderService. It is the order-placement
// collaborator of the discount engine: it evaluates the submitted code before
// committing the order, and records the redemption only after the order is
// durably stored. A failed order therefore never consumes a redemption, and a
// redemption conflict after commit re-prices the order rather than losing it.
type orderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	discounts   DiscountService
	logger      zerolog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	discounts DiscountService,
	logger zerolog.Logger,
) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		discounts:   discounts,
		logger:      logger.With().Str("service", "order").Logger(),
	}
}

// CreateOrder places an order with optional discount code redemption.
func (s *orderService) CreateOrder(ctx context.Context, req *model.OrderRequest) (*model.OrderResponse, error) {
	if err := s.validateOrderRequest(req); err != nil {
		return nil, err
	}

	items, err := priceCart(ctx, s.productRepo, req.Items, s.logger)
	if err != nil {
		s.logger.Warn().Int("item_count", len(req.Items)).Err(err).Msg("cart pricing failed")
		return nil, err
	}

	var subtotal float64
	for _, item := range items {
		subtotal += item.LineTotal()
	}

	// Evaluate the discount before committing anything. A rejection here is
	// user-facing and aborts placement; nothing has been written yet.
	var discountAmount float64
	var discountCode *string
	hasDiscount := req.DiscountCode != nil && *req.DiscountCode != ""
	if hasDiscount {
		code := model.NormalizeCode(*req.DiscountCode)
		discountCode = &code

		candidate := model.NewCandidateOrder(code, req.UserID, items)
		discountAmount, err = s.discounts.EvaluateOrder(ctx, candidate)
		if err != nil {
			s.logger.Warn().
				Str("discount_code", code).
				Err(err).
				Msg("discount code rejected")
			return nil, err
		}
		s.logger.Debug().
			Str("discount_code", code).
			Float64("discount_amount", discountAmount).
			Msg("discount code applied to order")
	}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	now := time.Now()
	order := &model.Order{
		ID:             uuid.New(),
		UserID:         req.UserID,
		DiscountCode:   discountCode,
		DiscountAmount: discountAmount,
		Subtotal:       subtotal,
		Total:          subtotal - discountAmount,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err = s.orderRepo.CreateOrder(ctx, tx, order); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to create order")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	orderItems := make([]model.OrderItem, len(items))
	for i, item := range items {
		orderItems[i] = model.OrderItem{
			ID:        uuid.New(),
			OrderID:   order.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		}
	}

	if err = s.orderRepo.CreateOrderItems(ctx, tx, orderItems); err != nil {
		s.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Int("item_count", len(orderItems)).
			Msg("failed to create order items")
		return nil, fmt.Errorf("failed to create order items: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	committed = true

	resp := &model.OrderResponse{
		ID:             order.ID,
		Items:          orderItems,
		Subtotal:       order.Subtotal,
		DiscountCode:   order.DiscountCode,
		DiscountAmount: order.DiscountAmount,
		Total:          order.Total,
	}

	// The order is durable; now consume the redemption. A conflict means a
	// concurrent checkout took the last redemption between our evaluation
	// and this commit, so the order keeps its items but loses the discount.
	if hasDiscount {
		if commitErr := s.discounts.CommitRedemption(ctx, *discountCode, req.UserID); commitErr != nil {
			if errors.Is(commitErr, model.ErrRedemptionConflict) {
				s.logger.Warn().
					Str("order_id", order.ID.String()).
					Str("discount_code", *discountCode).
					Msg("redemption conflict, re-pricing order without discount")

				if err = s.orderRepo.ClearDiscount(ctx, order.ID); err != nil {
					s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to re-price order")
					return nil, fmt.Errorf("failed to re-price order: %w", err)
				}

				resp.DiscountAmount = 0
				resp.Total = resp.Subtotal
				resp.DiscountNote = model.ErrRedemptionConflict.Message
				return resp, nil
			}

			s.logger.Error().
				Err(commitErr).
				Str("order_id", order.ID.String()).
				Str("discount_code", *discountCode).
				Msg("failed to commit redemption")
			return nil, fmt.Errorf("failed to commit redemption: %w", commitErr)
		}
	}

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Int("item_count", len(orderItems)).
		Float64("total", order.Total).
		Msg("order created successfully")

	return resp, nil
}

// GetByID retrieves an order by its ID with all items.
func (s *orderService) GetByID(ctx context.Context, id uuid.UUID) (*model.OrderResponse, error) {
	order, items, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to get order")
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	if order == nil {
		s.logger.Debug().Str("order_id", id.String()).Msg("order not found")
		return nil, nil
	}

	return &model.OrderResponse{
		ID:             order.ID,
		Items:          items,
		Subtotal:       order.Subtotal,
		DiscountCode:   order.DiscountCode,
		DiscountAmount: order.DiscountAmount,
		Total:          order.Total,
	}, nil
}

// validateOrderRequest validates the order request.
func (s *orderService) validateOrderRequest(req *model.OrderRequest) error {
	if req == nil {
		return fmt.Errorf("order request is nil")
	}

	if len(req.Items) == 0 {
		return fmt.Errorf("order must contain at least one item")
	}

	for i, item := range req.Items {
		if item.ProductID == "" {
			return fmt.Errorf("item %d: product ID is required", i)
		}

		if item.Quantity <= 0 {
			s.logger.Warn().
				Int("item_index", i).
				Str("product_id", item.ProductID).
				Int("quantity", item.Quantity).
				Msg("invalid quantity")
			return model.ErrInvalidQuantity
		}
	}

	return nil
}
