package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"discount-engine/internal/discount"
	"discount-engine/internal/model"
	"discount-engine/internal/repository"

	"github.com/rs/zerolog"
)

// discountService implements DiscountService.
type discountService struct {
	discountRepo repository.DiscountRepository
	ledger       repository.RedemptionLedger
	productRepo  repository.ProductRepository
	resolver     *discount.Resolver
	importer     *discount.Importer
	logger       zerolog.Logger
	now          func() time.Time
}

// NewDiscountService creates a new discount service.
func NewDiscountService(
	discountRepo repository.DiscountRepository,
	ledger repository.RedemptionLedger,
	productRepo repository.ProductRepository,
	resolver *discount.Resolver,
	importer *discount.Importer,
	logger zerolog.Logger,
) DiscountService {
	return &discountService{
		discountRepo: discountRepo,
		ledger:       ledger,
		productRepo:  productRepo,
		resolver:     resolver,
		importer:     importer,
		logger:       logger.With().Str("service", "discount").Logger(),
		now:          time.Now,
	}
}

// Evaluate performs a speculative evaluation for a cart preview. The call is
// read-only: no counter moves, and repeated calls with unchanged state return
// the same outcome.
func (s *discountService) Evaluate(ctx context.Context, req *model.EvaluationRequest) (*model.EvaluationResponse, error) {
	if req == nil || req.Code == "" {
		return nil, fmt.Errorf("discount code is required")
	}
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("cart must contain at least one item")
	}

	items, err := priceCart(ctx, s.productRepo, req.Items, s.logger)
	if err != nil {
		return nil, err
	}

	order := model.NewCandidateOrder(model.NormalizeCode(req.Code), req.UserID, items)

	amount, err := s.EvaluateOrder(ctx, order)
	if err != nil {
		var domainErr *model.DomainError
		if errors.As(err, &domainErr) {
			// Rejections are legitimate preview outcomes.
			return &model.EvaluationResponse{
				Valid:   false,
				Reason:  domainErr.Code,
				Message: domainErr.Message,
			}, nil
		}
		return nil, err
	}

	return &model.EvaluationResponse{
		Valid:          true,
		DiscountAmount: amount,
	}, nil
}

// EvaluateOrder loads the code and its counters, then runs the resolver
// against the candidate order.
func (s *discountService) EvaluateOrder(ctx context.Context, order *model.CandidateOrder) (float64, error) {
	code, err := s.discountRepo.GetByCode(ctx, order.Code)
	if err != nil {
		return 0, fmt.Errorf("failed to load discount code: %w", err)
	}
	if code == nil {
		return 0, model.ErrDiscountNotFound
	}

	// The per-user counter is only consulted for capped codes with an
	// identified user; skip the read otherwise.
	userCount := 0
	if order.UserID != nil && code.LimitationType == model.LimitationUsageLimit && code.UsageLimitPerUser != nil {
		userCount, err = s.discountRepo.GetUserRedemptionCount(ctx, code.Code, *order.UserID)
		if err != nil {
			return 0, fmt.Errorf("failed to load redemption count: %w", err)
		}
	}

	return s.resolver.Evaluate(code, order, userCount, s.now())
}

// CommitRedemption records one redemption through the ledger.
func (s *discountService) CommitRedemption(ctx context.Context, code string, userID *string) error {
	return s.ledger.CommitRedemption(ctx, code, userID)
}

// Import bulk-creates discount codes from a gzipped code file.
func (s *discountService) Import(ctx context.Context, req *model.ImportRequest) (*model.ImportResponse, error) {
	if req == nil || req.Path == "" {
		return nil, fmt.Errorf("import path is required")
	}
	if err := validateTemplate(req.Template); err != nil {
		return nil, err
	}

	resp, err := s.importer.Import(ctx, req.Path, req.Template)
	if err != nil {
		s.logger.Error().Err(err).Str("path", req.Path).Msg("code import failed")
		return nil, fmt.Errorf("code import failed: %w", err)
	}

	s.logger.Info().
		Str("path", req.Path).
		Int("inserted", resp.Inserted).
		Int("skipped", resp.Skipped).
		Msg("code import completed")

	return resp, nil
}

// priceCart resolves unit prices from the catalogue and rejects unknown
// products. Shared by preview evaluation and order placement so both price a
// cart identically.
func priceCart(ctx context.Context, productRepo repository.ProductRepository, lines []model.CartItemRequest, logger zerolog.Logger) ([]model.CartItem, error) {
	ids := make([]string, len(lines))
	for i, line := range lines {
		if line.ProductID == "" {
			return nil, fmt.Errorf("item %d: product ID is required", i)
		}
		if line.Quantity <= 0 {
			return nil, model.ErrInvalidQuantity
		}
		ids[i] = line.ProductID
	}

	products, err := productRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to price cart: %w", err)
	}

	prices := make(map[string]float64, len(products))
	for _, p := range products {
		prices[p.ID] = p.Price
	}

	items := make([]model.CartItem, len(lines))
	for i, line := range lines {
		price, ok := prices[line.ProductID]
		if !ok {
			logger.Warn().Str("product_id", line.ProductID).Msg("unknown product in cart")
			return nil, model.ErrProductNotFound
		}
		items[i] = model.CartItem{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: price,
		}
	}

	return items, nil
}

// validateTemplate rejects templates that cannot produce a usable code.
func validateTemplate(tmpl model.CodeTemplate) error {
	switch tmpl.DiscountType {
	case model.DiscountPercentage, model.DiscountFixed:
	default:
		return fmt.Errorf("invalid discount type: %q", tmpl.DiscountType)
	}
	if tmpl.DiscountValue <= 0 {
		return fmt.Errorf("discount value must be positive")
	}
	switch tmpl.Scope {
	case model.ScopeCart:
	case model.ScopeProduct:
		if tmpl.ProductID == nil || *tmpl.ProductID == "" {
			return fmt.Errorf("product scope requires a linked product")
		}
	default:
		return fmt.Errorf("invalid scope: %q", tmpl.Scope)
	}
	switch tmpl.LimitationType {
	case model.LimitationDateRange, model.LimitationUsageLimit:
	default:
		return fmt.Errorf("invalid limitation type: %q", tmpl.LimitationType)
	}
	return nil
}
