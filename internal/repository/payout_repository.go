package repository

import (
	"time"

	"github.com/Fuse-Health-Org/fuse-monorepo-sub008/internal/constants"
	"github.com/Fuse-Health-Org/fuse-monorepo-sub008/internal/models"

	"gorm.io/gorm"
)

// PayoutRepository aggregates historical orders and payments into
// per-recipient ledgers. Read-only; business rules stay in the service
// layer. Totals always come from an unpaginated aggregate over the full
// filtered set, never from summing the returned page.
type PayoutRepository interface {
	ListBrandPayouts(filter PayoutFilter, connectedAccount string) ([]BrandPayoutRow, PayoutTotalsRow, int64, error)
	ListDoctorPayouts(filter PayoutFilter) ([]DoctorPayoutRow, PayoutTotalsRow, int64, error)
	ListPharmacyPayouts(filter PayoutFilter) ([]PharmacyPayoutRow, PayoutTotalsRow, int64, error)
	ListAffiliatePayouts(filter PayoutFilter, commissionPercent models.Money) ([]AffiliatePayoutRow, PayoutTotalsRow, int64, error)
	ListOrderSplits(orderIDs []uint) ([]OrderSplitRow, error)
}

// PayoutTotalsRow is the unpaginated aggregate over a ledger query.
type PayoutTotalsRow struct {
	TotalAmount float64
	OrderCount  int64
}

// BrandPayoutRow is one settled payment owed to a brand.
type BrandPayoutRow struct {
	PaymentID          uint
	OrderID            uint
	OrderNo            string
	BrandID            uint
	Amount             float64
	Currency           string
	DestinationAccount string
	PaidAt             *time.Time
}

// DoctorPayoutRow is one order's consult fee owed to a doctor.
type DoctorPayoutRow struct {
	OrderID   uint
	OrderNo   string
	DoctorID  uint
	Amount    float64
	Currency  string
	PaidAt    *time.Time
	CreatedAt time.Time
}

// PharmacyPayoutRow is one order's wholesale cost owed to the pharmacy.
type PharmacyPayoutRow struct {
	OrderID   uint
	OrderNo   string
	Amount    float64
	Currency  string
	Status    string
	CreatedAt time.Time
}

// AffiliatePayoutRow is one order's commission owed to an affiliate.
// Amount is recomputed from the order total and the commission rate at
// query time; the persisted split amount is deliberately not used.
type AffiliatePayoutRow struct {
	OrderID     uint
	OrderNo     string
	AffiliateID uint
	OrderTotal  float64
	Amount      float64
	Currency    string
	CreatedAt   time.Time
}

// OrderSplitRow carries one order's persisted split columns for
// conservation checks.
type OrderSplitRow struct {
	OrderID            uint
	OrderNo            string
	TotalAmount        float64
	PlatformFeeAmount  float64
	ProcessorFeeAmount float64
	DoctorFeeAmount    float64
	PharmacyCostAmount float64
	BrandAmount        float64
	ShortfallAmount    float64
}

// GormPayoutRepository is the GORM implementation.
type GormPayoutRepository struct {
	db *gorm.DB
}

// NewPayoutRepository builds the payout repository.
func NewPayoutRepository(db *gorm.DB) *GormPayoutRepository {
	return &GormPayoutRepository{db: db}
}

// settledOrderStatuses are the statuses in which an order's money has
// actually moved and counts toward payouts.
func settledOrderStatuses() []string {
	return []string{
		constants.OrderStatusPaid,
		constants.OrderStatusProcessing,
		constants.OrderStatusShipped,
		constants.OrderStatusDelivered,
	}
}

// ListBrandPayouts lists payments tagged for the brand class. A payment
// belongs to the brand when its order's brand matches, or when the
// transfer destination matches the brand's connected account; the two
// join paths are reconciled by OR because not every payment carries
// both signals.
func (r *GormPayoutRepository) ListBrandPayouts(filter PayoutFilter, connectedAccount string) ([]BrandPayoutRow, PayoutTotalsRow, int64, error) {
	base := func() *gorm.DB {
		query := r.db.Model(&models.Payment{}).
			Joins("JOIN orders ON orders.id = payments.order_id").
			Where("payments.goes_to = ?", constants.RecipientBrand).
			Where("payments.status = ?", constants.PaymentStatusSucceeded)
		if filter.RecipientID != 0 {
			if connectedAccount != "" {
				query = query.Where("orders.brand_id = ? OR payments.destination_account = ?", filter.RecipientID, connectedAccount)
			} else {
				query = query.Where("orders.brand_id = ?", filter.RecipientID)
			}
		}
		if filter.CreatedFrom != nil {
			query = query.Where("payments.created_at >= ?", *filter.CreatedFrom)
		}
		if filter.CreatedTo != nil {
			query = query.Where("payments.created_at <= ?", *filter.CreatedTo)
		}
		return query
	}

	totals := PayoutTotalsRow{}
	if err := base().
		Select("COALESCE(SUM(payments.amount), 0) AS total_amount, COUNT(DISTINCT payments.order_id) AS order_count").
		Scan(&totals).Error; err != nil {
		return nil, totals, 0, err
	}

	var count int64
	if err := base().Count(&count).Error; err != nil {
		return nil, totals, 0, err
	}

	var rows []BrandPayoutRow
	query := base().Select(
		"payments.id AS payment_id, " +
			"payments.order_id AS order_id, " +
			"orders.order_no AS order_no, " +
			"orders.brand_id AS brand_id, " +
			"payments.amount AS amount, " +
			"payments.currency AS currency, " +
			"payments.destination_account AS destination_account, " +
			"payments.paid_at AS paid_at",
	).Order("payments.id desc")
	query = applyPagination(query, filter.Page, filter.PageSize)
	if err := query.Scan(&rows).Error; err != nil {
		return nil, totals, 0, err
	}
	return rows, totals, count, nil
}

// ListOrderSplits loads the persisted split columns for a set of
// orders.
func (r *GormPayoutRepository) ListOrderSplits(orderIDs []uint) ([]OrderSplitRow, error) {
	if len(orderIDs) == 0 {
		return nil, nil
	}
	var rows []OrderSplitRow
	if err := r.db.Model(&models.Order{}).
		Select("id AS order_id, "+
			"order_no AS order_no, "+
			"total_amount AS total_amount, "+
			"platform_fee_amount AS platform_fee_amount, "+
			"processor_fee_amount AS processor_fee_amount, "+
			"doctor_fee_amount AS doctor_fee_amount, "+
			"pharmacy_cost_amount AS pharmacy_cost_amount, "+
			"brand_amount AS brand_amount, "+
			"shortfall_amount AS shortfall_amount").
		Where("id IN ?", orderIDs).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListDoctorPayouts lists consult fees per doctor. The approving doctor
// wins; the assigned physician only counts when no approver is set.
func (r *GormPayoutRepository) ListDoctorPayouts(filter PayoutFilter) ([]DoctorPayoutRow, PayoutTotalsRow, int64, error) {
	base := func() *gorm.DB {
		query := r.db.Model(&models.Order{}).
			Where("status IN ?", settledOrderStatuses()).
			Where("approved_by_doctor_id IS NOT NULL OR physician_id IS NOT NULL")
		if filter.RecipientID != 0 {
			query = query.Where("COALESCE(approved_by_doctor_id, physician_id) = ?", filter.RecipientID)
		}
		if filter.BrandID != 0 {
			query = query.Where("brand_id = ?", filter.BrandID)
		}
		if filter.CreatedFrom != nil {
			query = query.Where("created_at >= ?", *filter.CreatedFrom)
		}
		if filter.CreatedTo != nil {
			query = query.Where("created_at <= ?", *filter.CreatedTo)
		}
		return query
	}

	totals := PayoutTotalsRow{}
	if err := base().
		Select("COALESCE(SUM(doctor_fee_amount), 0) AS total_amount, COUNT(id) AS order_count").
		Scan(&totals).Error; err != nil {
		return nil, totals, 0, err
	}

	var count int64
	if err := base().Count(&count).Error; err != nil {
		return nil, totals, 0, err
	}

	var rows []DoctorPayoutRow
	query := base().Select(
		"id AS order_id, " +
			"order_no AS order_no, " +
			"COALESCE(approved_by_doctor_id, physician_id) AS doctor_id, " +
			"doctor_fee_amount AS amount, " +
			"currency AS currency, " +
			"paid_at AS paid_at, " +
			"created_at AS created_at",
	).Order("id desc")
	query = applyPagination(query, filter.Page, filter.PageSize)
	if err := query.Scan(&rows).Error; err != nil {
		return nil, totals, 0, err
	}
	return rows, totals, count, nil
}

// ListPharmacyPayouts lists wholesale costs owed to the pharmacy. The
// pharmacy is a single bucket; no per-pharmacy identity is tracked on
// orders.
func (r *GormPayoutRepository) ListPharmacyPayouts(filter PayoutFilter) ([]PharmacyPayoutRow, PayoutTotalsRow, int64, error) {
	base := func() *gorm.DB {
		query := r.db.Model(&models.Order{}).
			Where("status IN ?", settledOrderStatuses())
		if filter.BrandID != 0 {
			query = query.Where("brand_id = ?", filter.BrandID)
		}
		if filter.CreatedFrom != nil {
			query = query.Where("created_at >= ?", *filter.CreatedFrom)
		}
		if filter.CreatedTo != nil {
			query = query.Where("created_at <= ?", *filter.CreatedTo)
		}
		return query
	}

	totals := PayoutTotalsRow{}
	if err := base().
		Select("COALESCE(SUM(pharmacy_cost_amount), 0) AS total_amount, COUNT(id) AS order_count").
		Scan(&totals).Error; err != nil {
		return nil, totals, 0, err
	}

	var count int64
	if err := base().Count(&count).Error; err != nil {
		return nil, totals, 0, err
	}

	var rows []PharmacyPayoutRow
	query := base().Select(
		"id AS order_id, " +
			"order_no AS order_no, " +
			"pharmacy_cost_amount AS amount, " +
			"currency AS currency, " +
			"status AS status, " +
			"created_at AS created_at",
	).Order("id desc")
	query = applyPagination(query, filter.Page, filter.PageSize)
	if err := query.Scan(&rows).Error; err != nil {
		return nil, totals, 0, err
	}
	return rows, totals, count, nil
}

// ListAffiliatePayouts lists commissions per affiliate. The commission
// is recomputed per order as ROUND(total * rate / 100, 2) against the
// rate passed in, then summed, so a rate change reprices the whole
// history.
func (r *GormPayoutRepository) ListAffiliatePayouts(filter PayoutFilter, commissionPercent models.Money) ([]AffiliatePayoutRow, PayoutTotalsRow, int64, error) {
	rate, _ := commissionPercent.Float64()

	base := func() *gorm.DB {
		query := r.db.Model(&models.Order{}).
			Where("status IN ?", settledOrderStatuses()).
			Where("affiliate_id IS NOT NULL")
		if filter.RecipientID != 0 {
			query = query.Where("affiliate_id = ?", filter.RecipientID)
		}
		if filter.BrandID != 0 {
			query = query.Where("brand_id = ?", filter.BrandID)
		}
		if filter.CreatedFrom != nil {
			query = query.Where("created_at >= ?", *filter.CreatedFrom)
		}
		if filter.CreatedTo != nil {
			query = query.Where("created_at <= ?", *filter.CreatedTo)
		}
		return query
	}

	totals := PayoutTotalsRow{}
	if err := base().
		Select("COALESCE(SUM(ROUND(total_amount * ? / 100.0, 2)), 0) AS total_amount, COUNT(id) AS order_count", rate).
		Scan(&totals).Error; err != nil {
		return nil, totals, 0, err
	}

	var count int64
	if err := base().Count(&count).Error; err != nil {
		return nil, totals, 0, err
	}

	var rows []AffiliatePayoutRow
	query := base().Select(
		"id AS order_id, "+
			"order_no AS order_no, "+
			"affiliate_id AS affiliate_id, "+
			"total_amount AS order_total, "+
			"ROUND(total_amount * ? / 100.0, 2) AS amount, "+
			"currency AS currency, "+
			"created_at AS created_at",
		rate,
	).Order("id desc")
	query = applyPagination(query, filter.Page, filter.PageSize)
	if err := query.Scan(&rows).Error; err != nil {
		return nil, totals, 0, err
	}
	return rows, totals, count, nil
}
