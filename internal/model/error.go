package model

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON          = "INVALID_JSON"
	ErrCodeDiscountNotFound     = "DISCOUNT_NOT_FOUND"
	ErrCodeDiscountInactive     = "DISCOUNT_INACTIVE"
	ErrCodeScopeMismatch        = "SCOPE_MISMATCH"
	ErrCodeBelowMinimum         = "BELOW_MINIMUM"
	ErrCodeOutOfWindow          = "OUT_OF_WINDOW"
	ErrCodeGlobalLimitExceeded  = "GLOBAL_LIMIT_EXCEEDED"
	ErrCodePerUserLimitExceeded = "PER_USER_LIMIT_EXCEEDED"
	ErrCodeRedemptionConflict   = "REDEMPTION_CONFLICT"
	ErrCodeProductNotFound      = "PRODUCT_NOT_FOUND"
	ErrCodeOrderNotFound        = "ORDER_NOT_FOUND"
	ErrCodeInvalidQuantity      = "INVALID_QUANTITY"
	ErrCodeUnauthorised         = "UNAUTHORIZED"
	ErrCodeInternalError        = "INTERNAL_ERROR"
)

// DomainError is a recoverable, user-facing business error. Storage failures
// are never wrapped in a DomainError; they propagate as plain errors.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Discount evaluation rejections, in the order the resolver checks them.
// Every rejection is a definitive outcome returned to the caller for display.
var (
	ErrDiscountNotFound     = NewDomainError(ErrCodeDiscountNotFound, "Discount code does not exist")
	ErrDiscountInactive     = NewDomainError(ErrCodeDiscountInactive, "Discount code is no longer active")
	ErrScopeMismatch        = NewDomainError(ErrCodeScopeMismatch, "Discount code does not apply to any item in the cart")
	ErrBelowMinimum         = NewDomainError(ErrCodeBelowMinimum, "Order total is below the minimum purchase amount for this code")
	ErrOutOfWindow          = NewDomainError(ErrCodeOutOfWindow, "Discount code is not valid at this time")
	ErrGlobalLimitExceeded  = NewDomainError(ErrCodeGlobalLimitExceeded, "Discount code has reached its usage limit")
	ErrPerUserLimitExceeded = NewDomainError(ErrCodePerUserLimitExceeded, "You have already used this discount code the maximum number of times")
)

// Ledger and order placement errors
var (
	// ErrRedemptionConflict is returned when commit-time re-validation fails
	// because a concurrent checkout exhausted the code's capacity between
	// evaluation and commit.
	ErrRedemptionConflict = NewDomainError(ErrCodeRedemptionConflict, "Discount code just reached its limit")

	ErrProductNotFound = NewDomainError(ErrCodeProductNotFound, "One or more products not found")
	ErrOrderNotFound   = NewDomainError(ErrCodeOrderNotFound, "Order not found")
	ErrInvalidQuantity = NewDomainError(ErrCodeInvalidQuantity, "Quantity must be greater than zero")
)

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
