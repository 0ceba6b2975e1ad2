package model

import (
	"strings"
	"time"
)

// NormalizeCode canonicalizes a user-supplied discount code. Codes are stored
// upper-cased, so lookups must normalize the same way.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// DiscountType determines how the discount amount is computed.
type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed_amount"
)

// DiscountScope determines what the discount applies to.
type DiscountScope string

const (
	// ScopeCart applies the discount to the whole order.
	ScopeCart DiscountScope = "cart"
	// ScopeProduct applies the discount only when the linked product is in the cart.
	ScopeProduct DiscountScope = "product"
)

// LimitationType selects the validity strategy for a code. The two strategies
// are alternatives: whichever is declared gates which fields are consulted,
// the other branch's fields are ignored even when populated.
type LimitationType string

const (
	LimitationDateRange  LimitationType = "date_range"
	LimitationUsageLimit LimitationType = "usage_limit"
)

// DiscountCode represents a discount code row. Rows are owned by catalog/admin
// management; this engine only reads them and maintains TimesUsed.
type DiscountCode struct {
	Code              string         `json:"code" db:"code"`
	DiscountType      DiscountType   `json:"discountType" db:"discount_type"`
	DiscountValue     float64        `json:"discountValue" db:"discount_value"`
	MinPurchaseAmount *float64       `json:"minPurchaseAmount,omitempty" db:"min_purchase_amount"`
	Scope             DiscountScope  `json:"scope" db:"scope"`
	ProductID         *string        `json:"productId,omitempty" db:"product_id"`
	LimitationType    LimitationType `json:"limitationType" db:"limitation_type"`
	StartDate         *time.Time     `json:"startDate,omitempty" db:"start_date"`
	EndDate           *time.Time     `json:"endDate,omitempty" db:"end_date"`
	UsageLimit        *int           `json:"usageLimit,omitempty" db:"usage_limit"`
	UsageLimitPerUser *int           `json:"usageLimitPerUser,omitempty" db:"usage_limit_per_user"`
	TimesUsed         int            `json:"timesUsed" db:"times_used"`
	IsActive          bool           `json:"isActive" db:"is_active"`
	CreatedAt         time.Time      `json:"createdAt" db:"created_at"`
}

// RedemptionRecord tracks how many times a given user has redeemed a given
// code. Rows exist only for codes with a per-user cap, are created on the
// first successful redemption and never deleted.
type RedemptionRecord struct {
	Code           string    `json:"code" db:"code"`
	UserID         string    `json:"userId" db:"user_id"`
	TimesUsed      int       `json:"timesUsed" db:"times_used"`
	LastRedeemedAt time.Time `json:"lastRedeemedAt" db:"last_redeemed_at"`
}

// EvaluationRequest represents the request payload for speculative discount
// evaluation (live cart preview).
type EvaluationRequest struct {
	Code   string            `json:"code"`
	UserID *string           `json:"userId,omitempty"`
	Items  []CartItemRequest `json:"items"`
}

// EvaluationResponse represents the outcome of a speculative evaluation.
// Rejections are legitimate outcomes, not errors.
type EvaluationResponse struct {
	Valid          bool    `json:"valid"`
	DiscountAmount float64 `json:"discountAmount,omitempty"`
	Reason         string  `json:"reason,omitempty"`
	Message        string  `json:"message,omitempty"`
}

// ImportRequest represents the request payload for bulk code import.
type ImportRequest struct {
	// Path is the gzipped code file: a local path, or an object key when
	// the S3 source is configured.
	Path     string       `json:"path"`
	Template CodeTemplate `json:"template"`
}

// CodeTemplate carries the shared attributes applied to every imported code.
type CodeTemplate struct {
	DiscountType      DiscountType   `json:"discountType"`
	DiscountValue     float64        `json:"discountValue"`
	MinPurchaseAmount *float64       `json:"minPurchaseAmount,omitempty"`
	Scope             DiscountScope  `json:"scope"`
	ProductID         *string        `json:"productId,omitempty"`
	LimitationType    LimitationType `json:"limitationType"`
	StartDate         *time.Time     `json:"startDate,omitempty"`
	EndDate           *time.Time     `json:"endDate,omitempty"`
	UsageLimit        *int           `json:"usageLimit,omitempty"`
	UsageLimitPerUser *int           `json:"usageLimitPerUser,omitempty"`
}

// ImportResponse reports the outcome of a bulk import.
type ImportResponse struct {
	Inserted int `json:"inserted"`
	Skipped  int `json:"skipped"`
}
