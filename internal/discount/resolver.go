package discount

import (
	"math"
	"time"

	"discount-engine/internal/model"

	"github.com/rs/zerolog"
)

// Resolver decides whether a discount code may be applied to a candidate
// order and what it is worth. Evaluation is read-only and deterministic: all
// persisted state (the code row, the acting user's redemption count) arrives
// as arguments, so the same inputs always produce the same outcome and the
// resolver is safe to call speculatively for cart previews.
type Resolver struct {
	logger zerolog.Logger
}

// NewResolver creates a new discount resolver.
func NewResolver(logger zerolog.Logger) *Resolver {
	return &Resolver{
		logger: logger.With().Str("component", "discount-resolver").Logger(),
	}
}

// Evaluate runs the validation sequence against a candidate order and returns
// the discount amount on success. Rejections are returned as domain errors;
// the first failing check wins. Code lookup is the caller's concern, so a nil
// code is never passed here.
//
// userCount is the acting user's redemption count for this code; it is
// ignored for guest orders.
func (r *Resolver) Evaluate(code *model.DiscountCode, order *model.CandidateOrder, userCount int, now time.Time) (float64, error) {
	if !code.IsActive {
		r.logger.Debug().Str("code", code.Code).Msg("discount code inactive")
		return 0, model.ErrDiscountInactive
	}

	// Scope gate. For product scope the discount base is the matched line
	// total rather than the whole order.
	base := order.Subtotal
	if code.Scope == model.ScopeProduct {
		matched := matchedLineTotal(code, order)
		if matched == 0 {
			r.logger.Debug().
				Str("code", code.Code).
				Str("product_id", derefStr(code.ProductID)).
				Msg("linked product absent from cart")
			return 0, model.ErrScopeMismatch
		}
		base = matched
	}

	// Minimum purchase is always checked against the full order subtotal,
	// regardless of scope.
	if code.MinPurchaseAmount != nil && order.Subtotal < *code.MinPurchaseAmount {
		r.logger.Debug().
			Str("code", code.Code).
			Float64("subtotal", order.Subtotal).
			Float64("minimum", *code.MinPurchaseAmount).
			Msg("order below minimum purchase amount")
		return 0, model.ErrBelowMinimum
	}

	switch rule := RuleFor(code).(type) {
	case DateRangeRule:
		if !rule.Contains(now) {
			r.logger.Debug().
				Str("code", code.Code).
				Time("now", now).
				Msg("discount code outside validity window")
			return 0, model.ErrOutOfWindow
		}

	case UsageLimitRule:
		if rule.GlobalExhausted(code.TimesUsed) {
			r.logger.Debug().
				Str("code", code.Code).
				Int("times_used", code.TimesUsed).
				Msg("discount code global usage limit reached")
			return 0, model.ErrGlobalLimitExceeded
		}
		// Guest orders are exempt from the per-user cap.
		if order.UserID != nil && rule.PerUserExhausted(userCount) {
			r.logger.Debug().
				Str("code", code.Code).
				Str("user_id", *order.UserID).
				Int("user_count", userCount).
				Msg("discount code per-user usage limit reached")
			return 0, model.ErrPerUserLimitExceeded
		}
	}

	amount := discountAmount(code, base)

	r.logger.Debug().
		Str("code", code.Code).
		Float64("base", base).
		Float64("discount", amount).
		Msg("discount code applied")

	return amount, nil
}

// matchedLineTotal sums the cart lines for the code's linked product.
func matchedLineTotal(code *model.DiscountCode, order *model.CandidateOrder) float64 {
	if code.ProductID == nil {
		return 0
	}
	var total float64
	for _, item := range order.Items {
		if item.ProductID == *code.ProductID {
			total += item.LineTotal()
		}
	}
	return total
}

// discountAmount computes the monetary value of the discount against the
// scope base. A fixed discount never exceeds the base, so an order total can
// never go negative.
func discountAmount(code *model.DiscountCode, base float64) float64 {
	switch code.DiscountType {
	case model.DiscountPercentage:
		return round2(base * code.DiscountValue / 100)
	case model.DiscountFixed:
		return math.Min(code.DiscountValue, base)
	default:
		return 0
	}
}

// round2 rounds to two decimal places, half away from zero.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func derefStr(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
