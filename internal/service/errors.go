package service

import "errors"

// Order errors.
var (
	ErrOrderNotFound        = errors.New("order not found")
	ErrOrderItemsRequired   = errors.New("order items required")
	ErrOrderQuantityInvalid = errors.New("order item quantity invalid")
	ErrOrderUpdateFailed    = errors.New("order update failed")
	ErrOrderStatusInvalid   = errors.New("order status transition invalid")
	ErrProductNotFound      = errors.New("product not found")
	ErrProductInactive      = errors.New("product inactive")
	ErrBrandNotFound        = errors.New("brand not found")
	ErrBrandInactive        = errors.New("brand inactive")
	ErrCurrencyMismatch     = errors.New("order currency mismatch")
)

// Fee schedule errors.
var (
	ErrFeeScheduleMissing   = errors.New("fee schedule missing or ambiguous")
	ErrFeePercentInvalid    = errors.New("fee percent invalid")
	ErrSplitInputInvalid    = errors.New("split input invalid")
)

// Attribution errors.
var (
	ErrAffiliateRoleRequired = errors.New("affiliate role required")
	ErrAffiliateNotFound     = errors.New("affiliate not found")
)

// Gateway errors.
var (
	ErrGatewayChargeFailed = errors.New("gateway charge failed")
	ErrPaymentNotFound     = errors.New("payment not found")
	ErrPaymentNotSettled   = errors.New("payment not settled yet")
)

// Payout errors.
var (
	ErrRecipientClassInvalid = errors.New("recipient class invalid")
)
