package services

import (
	"errors"
	"fmt"
)

// Expected, user-facing failures. Handlers map each to a status-code
// category; anything outside this set is treated as a server error.
var (
	ErrValidation = errors.New("invalid input")

	ErrAddressNotFound = errors.New("address not found")
	ErrOrderNotFound   = errors.New("order not found")
	ErrEntryNotFound   = errors.New("entry not found")
	ErrCouponNotFound  = errors.New("coupon not found")

	ErrDuplicateEntry     = errors.New("entry already exists")
	ErrAlreadyCancelled   = errors.New("order already cancelled")
	ErrRequestOpen        = errors.New("a request is already open for this order")
	ErrOTPAlreadyVerified = errors.New("delivery already confirmed")

	ErrProductUnavailable  = errors.New("product is not available")
	ErrVariationOutOfStock = errors.New("variation is out of stock")

	ErrAgentAssigned    = errors.New("a delivery agent is already assigned")
	ErrNotAssignedAgent = errors.New("caller is not the assigned delivery agent")
	ErrItemsNotEligible = errors.New("one or more items are not eligible")
	ErrInvalidOTP       = errors.New("invalid delivery code")
	ErrCancelNotAllowed = errors.New("order can no longer be cancelled")
	ErrStateNotAllowed  = errors.New("operation not allowed in current order state")
)

// EligibilityError reports why a coupon cannot be applied. The reason is
// user-facing and specific to the first failed check.
type EligibilityError struct {
	Reason string
}

func (e *EligibilityError) Error() string {
	return fmt.Sprintf("coupon not eligible: %s", e.Reason)
}

func eligibility(format string, args ...any) error {
	return &EligibilityError{Reason: fmt.Sprintf(format, args...)}
}
