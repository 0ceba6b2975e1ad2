package discount

import (
	"time"

	"discount-engine/internal/model"
)

// ValidityRule is the validity strategy of a discount code. A code carries
// exactly one rule, derived from its declared limitation type. Fields
// belonging to the other strategy are never consulted, even when the row
// happens to populate them.
type ValidityRule interface {
	isValidityRule()
}

// DateRangeRule restricts a code to a time window. A nil bound is unbounded
// on that side; both bounds are inclusive.
type DateRangeRule struct {
	Start *time.Time
	End   *time.Time
}

func (DateRangeRule) isValidityRule() {}

// Contains reports whether now falls within the window.
func (r DateRangeRule) Contains(now time.Time) bool {
	if r.Start != nil && now.Before(*r.Start) {
		return false
	}
	if r.End != nil && now.After(*r.End) {
		return false
	}
	return true
}

// UsageLimitRule restricts a code by redemption counts. A nil cap is
// unlimited on that axis.
type UsageLimitRule struct {
	Global  *int
	PerUser *int
}

func (UsageLimitRule) isValidityRule() {}

// GlobalExhausted reports whether timesUsed has reached the global cap.
func (r UsageLimitRule) GlobalExhausted(timesUsed int) bool {
	return r.Global != nil && timesUsed >= *r.Global
}

// PerUserExhausted reports whether userCount has reached the per-user cap.
func (r UsageLimitRule) PerUserExhausted(userCount int) bool {
	return r.PerUser != nil && userCount >= *r.PerUser
}

// RuleFor derives the single validity rule for a code from its declared
// limitation type.
func RuleFor(code *model.DiscountCode) ValidityRule {
	switch code.LimitationType {
	case model.LimitationDateRange:
		return DateRangeRule{Start: code.StartDate, End: code.EndDate}
	case model.LimitationUsageLimit:
		return UsageLimitRule{Global: code.UsageLimit, PerUser: code.UsageLimitPerUser}
	default:
		// Unknown limitation types behave as an unbounded date range so a
		// bad row cannot block checkout.
		return DateRangeRule{}
	}
}
