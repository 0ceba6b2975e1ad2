package discount

import (
	"testing"
	"time"

	"discount-engine/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func f64Ptr(f float64) *float64 { return &f }

func testNow() time.Time { return time.Date(2026, 6, 15, 10, 0, 0, 0, time.UTC) }

func newTestResolver() *Resolver { return NewResolver(zerolog.Nop()) }

func cartOrder(code string, userID *string, items ...model.CartItem) *model.CandidateOrder {
	return model.NewCandidateOrder(code, userID, items)
}

func activeCode(code string) *model.DiscountCode {
	return &model.DiscountCode{
		Code:           code,
		DiscountType:   model.DiscountPercentage,
		DiscountValue:  10,
		Scope:          model.ScopeCart,
		LimitationType: model.LimitationDateRange,
		IsActive:       true,
	}
}

func TestResolver_Evaluate_Inactive(t *testing.T) {
	code := activeCode("SPRING10")
	code.IsActive = false

	order := cartOrder("SPRING10", nil, model.CartItem{ProductID: "P001", Quantity: 1, UnitPrice: 50})

	_, err := newTestResolver().Evaluate(code, order, 0, testNow())
	assert.Equal(t, model.ErrDiscountInactive, err)
}

func TestResolver_Evaluate_PercentageOnCart(t *testing.T) {
	code := activeCode("SPRING15")
	code.DiscountValue = 15

	// 2 x 30.00 + 1 x 40.00 = 100.00 subtotal
	order := cartOrder("SPRING15", nil,
		model.CartItem{ProductID: "P001", Quantity: 2, UnitPrice: 30},
		model.CartItem{ProductID: "P002", Quantity: 1, UnitPrice: 40},
	)

	amount, err := newTestResolver().Evaluate(code, order, 0, testNow())
	require.NoError(t, err)
	assert.Equal(t, 15.0, amount)
}

func TestResolver_Evaluate_FixedNeverExceedsBase(t *testing.T) {
	code := activeCode("FLAT50")
	code.DiscountType = model.DiscountFixed
	code.DiscountValue = 50

	order := cartOrder("FLAT50", nil, model.CartItem{ProductID: "P001", Quantity: 1, UnitPrice: 30})

	amount, err := newTestResolver().Evaluate(code, order, 0, testNow())
	require.NoError(t, err)
	assert.Equal(t, 30.0, amount)
}

func TestResolver_Evaluate_ProductScope(t *testing.T) {
	code := activeCode("COFFEE20")
	code.Scope = model.ScopeProduct
	code.ProductID = strPtr("P-COFFEE")
	code.DiscountValue = 20

	t.Run("linked product absent", func(t *testing.T) {
		order := cartOrder("COFFEE20", nil, model.CartItem{ProductID: "P-TEA", Quantity: 3, UnitPrice: 5})

		_, err := newTestResolver().Evaluate(code, order, 0, testNow())
		assert.Equal(t, model.ErrScopeMismatch, err)
	})

	t.Run("discount base is the matched line", func(t *testing.T) {
		order := cartOrder("COFFEE20", nil,
			model.CartItem{ProductID: "P-COFFEE", Quantity: 2, UnitPrice: 10},
			model.CartItem{ProductID: "P-TEA", Quantity: 10, UnitPrice: 100},
		)

		amount, err := newTestResolver().Evaluate(code, order, 0, testNow())
		require.NoError(t, err)
		// 20% of the 20.00 coffee line, not of the 1020.00 order
		assert.Equal(t, 4.0, amount)
	})
}

func TestResolver_Evaluate_BelowMinimum(t *testing.T) {
	code := activeCode("BIG10")
	code.MinPurchaseAmount = f64Ptr(100)

	order := cartOrder("BIG10", nil, model.CartItem{ProductID: "P001", Quantity: 1, UnitPrice: 99.99})

	_, err := newTestResolver().Evaluate(code, order, 0, testNow())
	assert.Equal(t, model.ErrBelowMinimum, err)

	order = cartOrder("BIG10", nil, model.CartItem{ProductID: "P001", Quantity: 1, UnitPrice: 100})
	_, err = newTestResolver().Evaluate(code, order, 0, testNow())
	assert.NoError(t, err)
}

func TestResolver_Evaluate_DateWindow(t *testing.T) {
	now := testNow()

	code := activeCode("LAUNCH")
	code.StartDate = timePtr(now.Add(time.Hour))

	order := cartOrder("LAUNCH", nil, model.CartItem{ProductID: "P001", Quantity: 1, UnitPrice: 10})

	// Before the window opens
	_, err := newTestResolver().Evaluate(code, order, 0, now)
	assert.Equal(t, model.ErrOutOfWindow, err)

	// Exactly at the opening instant: lower bound is inclusive
	_, err = newTestResolver().Evaluate(code, order, 0, now.Add(time.Hour))
	assert.NoError(t, err)
}

func TestResolver_Evaluate_UsageLimits(t *testing.T) {
	user := strPtr("user-1")

	newCapped := func() *model.DiscountCode {
		code := activeCode("CAPPED")
		code.LimitationType = model.LimitationUsageLimit
		code.UsageLimit = intPtr(10)
		code.UsageLimitPerUser = intPtr(2)
		return code
	}

	order := func(u *string) *model.CandidateOrder {
		return cartOrder("CAPPED", u, model.CartItem{ProductID: "P001", Quantity: 1, UnitPrice: 10})
	}

	t.Run("global limit reached", func(t *testing.T) {
		code := newCapped()
		code.TimesUsed = 10

		_, err := newTestResolver().Evaluate(code, order(user), 0, testNow())
		assert.Equal(t, model.ErrGlobalLimitExceeded, err)
	})

	t.Run("per-user limit reached", func(t *testing.T) {
		code := newCapped()
		code.TimesUsed = 5

		_, err := newTestResolver().Evaluate(code, order(user), 2, testNow())
		assert.Equal(t, model.ErrPerUserLimitExceeded, err)
	})

	t.Run("different user unaffected", func(t *testing.T) {
		code := newCapped()
		code.TimesUsed = 5

		_, err := newTestResolver().Evaluate(code, order(strPtr("user-2")), 0, testNow())
		assert.NoError(t, err)
	})

	t.Run("guest exempt from per-user cap", func(t *testing.T) {
		code := newCapped()
		code.TimesUsed = 5

		_, err := newTestResolver().Evaluate(code, order(nil), 99, testNow())
		assert.NoError(t, err)
	})

	t.Run("date window ignored under usage_limit", func(t *testing.T) {
		code := newCapped()
		// An expired window must not matter when the usage strategy governs.
		code.StartDate = timePtr(testNow().Add(time.Hour))
		code.EndDate = timePtr(testNow().Add(2 * time.Hour))

		_, err := newTestResolver().Evaluate(code, order(user), 0, testNow())
		assert.NoError(t, err)
	})
}

func TestResolver_Evaluate_Deterministic(t *testing.T) {
	code := activeCode("REPEAT")
	code.DiscountValue = 12.5

	order := cartOrder("REPEAT", nil, model.CartItem{ProductID: "P001", Quantity: 3, UnitPrice: 19.99})

	resolver := newTestResolver()
	first, err := resolver.Evaluate(code, order, 0, testNow())
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		again, err := resolver.Evaluate(code, order, 0, testNow())
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestResolver_Evaluate_RoundsToCents(t *testing.T) {
	code := activeCode("ODD")
	code.DiscountValue = 15

	// 15% of 10.03 = 1.5045, rounds to 1.50
	order := cartOrder("ODD", nil, model.CartItem{ProductID: "P001", Quantity: 1, UnitPrice: 10.03})

	amount, err := newTestResolver().Evaluate(code, order, 0, testNow())
	require.NoError(t, err)
	assert.Equal(t, 1.5, amount)
}
