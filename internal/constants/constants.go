package constants

// Order status constants.
const (
	OrderStatusPending    = "pending"
	OrderStatusFailed     = "failed"
	OrderStatusPaid       = "paid"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
)

// Payment status constants.
const (
	PaymentStatusPending   = "pending"
	PaymentStatusSucceeded = "succeeded"
	PaymentStatusFailed    = "failed"
)

// Payout recipient class constants. Also stored on payments as the
// payment_goes_to tag.
const (
	RecipientBrand     = "brand"
	RecipientDoctor    = "doctor"
	RecipientPharmacy  = "pharmacy"
	RecipientAffiliate = "affiliate"
)

// Role name constants.
const (
	RoleAffiliate = "affiliate"
	RoleDoctor    = "doctor"
)

// User account status constants.
const (
	UserStatusActive    = "active"
	UserStatusSuspended = "suspended"
)

// Queue constants.
const (
	QueueDefault        = "default"
	TaskPayoutAccessLog = "audit:access_log"
)

// Audit log constants.
const (
	AuditActionPayoutRead = "payout_read"
	AuditActionFeeRead    = "fee_read"
	AuditActionFeeUpdate  = "fee_update"

	AuditResourcePayout      = "payout"
	AuditResourceFeeSchedule = "fee_schedule"
)

// Currency constants.
const (
	SiteCurrencyDefault = "USD"
)

// Cache constants.
const (
	RedisPrefixDefault = "fh"
)
