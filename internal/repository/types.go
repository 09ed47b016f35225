package repository

import "time"

// OrderListFilter filters order list queries.
type OrderListFilter struct {
	Page        int
	PageSize    int
	UserID      uint
	BrandID     uint
	Status      string
	OrderNo     string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// PayoutFilter filters payout ledger queries. RecipientID narrows the
// ledger to one affiliate, doctor or brand; zero means every recipient
// of the class.
type PayoutFilter struct {
	Page        int
	PageSize    int
	RecipientID uint
	BrandID     uint
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// AccessAuditLogListFilter filters audit log list queries.
type AccessAuditLogListFilter struct {
	Page         int
	PageSize     int
	ActorUserID  uint
	Action       string
	ResourceType string
	CreatedFrom  *time.Time
	CreatedTo    *time.Time
}
