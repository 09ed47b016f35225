package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Fuse-Health-Org/fuse-monorepo-sub008/internal/constants"
	"github.com/Fuse-Health-Org/fuse-monorepo-sub008/internal/logger"
	"github.com/Fuse-Health-Org/fuse-monorepo-sub008/internal/models"
	"github.com/Fuse-Health-Org/fuse-monorepo-sub008/internal/repository"

	"github.com/shopspring/decimal"
)

// PayoutService builds per-recipient payout ledgers from settled
// orders and payments. Every read is audit logged.
type PayoutService struct {
	payoutRepo repository.PayoutRepository
	brandRepo  repository.BrandRepository
	feeService *FeeService
	audit      *AuditService
}

// NewPayoutService builds the payout service.
func NewPayoutService(payoutRepo repository.PayoutRepository, brandRepo repository.BrandRepository, feeService *FeeService, audit *AuditService) *PayoutService {
	return &PayoutService{
		payoutRepo: payoutRepo,
		brandRepo:  brandRepo,
		feeService: feeService,
		audit:      audit,
	}
}

// PayoutEntry is one ledger line, normalized across recipient classes.
type PayoutEntry struct {
	OrderID     uint         `json:"order_id"`
	OrderNo     string       `json:"order_no"`
	PaymentID   uint         `json:"payment_id,omitempty"`
	RecipientID uint         `json:"recipient_id,omitempty"`
	Amount      models.Money `json:"amount"`
	Currency    string       `json:"currency"`
	OrderStatus string       `json:"order_status,omitempty"`
	PaidAt      *time.Time   `json:"paid_at,omitempty"`
	CreatedAt   *time.Time   `json:"created_at,omitempty"`
}

// PayoutLedger is one page of a recipient class ledger. Totals cover
// the full filtered set, not just the returned page.
type PayoutLedger struct {
	RecipientClass string       `json:"recipient_class"`
	Entries        []PayoutEntry `json:"entries"`
	TotalAmount    models.Money `json:"total_amount"`
	OrderCount     int64        `json:"order_count"`
	Count          int64        `json:"count"`
}

// PayoutReadActor identifies who performed a ledger read, for the
// audit trail.
type PayoutReadActor struct {
	UserID    uint
	Email     string
	RequestID string
}

// ListPayouts returns one page of the named recipient class ledger.
func (s *PayoutService) ListPayouts(ctx context.Context, recipientClass string, filter repository.PayoutFilter, actor PayoutReadActor) (*PayoutLedger, error) {
	class := strings.ToLower(strings.TrimSpace(recipientClass))
	if !ValidRecipientClass(class) {
		return nil, ErrRecipientClassInvalid
	}

	var (
		ledger *PayoutLedger
		err    error
	)
	switch class {
	case constants.RecipientBrand:
		ledger, err = s.listBrandPayouts(filter)
	case constants.RecipientDoctor:
		ledger, err = s.listDoctorPayouts(filter)
	case constants.RecipientPharmacy:
		ledger, err = s.listPharmacyPayouts(filter)
	case constants.RecipientAffiliate:
		ledger, err = s.listAffiliatePayouts(ctx, filter)
	}
	if err != nil {
		return nil, err
	}
	s.checkSplitConservation(class, ledger.Entries)

	if s.audit != nil {
		s.audit.LogAccess(AccessEntry{
			ActorUserID:  actor.UserID,
			ActorEmail:   actor.Email,
			Action:       constants.AuditActionPayoutRead,
			ResourceType: constants.AuditResourcePayout,
			ResourceID:   class,
			RequestID:    actor.RequestID,
			Detail: map[string]interface{}{
				"recipient_id": filter.RecipientID,
				"brand_id":     filter.BrandID,
				"page":         filter.Page,
				"page_size":    filter.PageSize,
				"row_count":    len(ledger.Entries),
			},
		})
	}
	return ledger, nil
}

func (s *PayoutService) listBrandPayouts(filter repository.PayoutFilter) (*PayoutLedger, error) {
	connectedAccount := ""
	if filter.RecipientID != 0 {
		brand, err := s.brandRepo.GetByID(filter.RecipientID)
		if err != nil {
			return nil, err
		}
		if brand != nil {
			connectedAccount = brand.ConnectedAccountID
		}
	}

	rows, totals, count, err := s.payoutRepo.ListBrandPayouts(filter, connectedAccount)
	if err != nil {
		return nil, err
	}
	entries := make([]PayoutEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, PayoutEntry{
			OrderID:     row.OrderID,
			OrderNo:     row.OrderNo,
			PaymentID:   row.PaymentID,
			RecipientID: row.BrandID,
			Amount:      moneyFromFloat(row.Amount),
			Currency:    row.Currency,
			PaidAt:      row.PaidAt,
		})
	}
	return buildLedger(constants.RecipientBrand, entries, totals, count), nil
}

func (s *PayoutService) listDoctorPayouts(filter repository.PayoutFilter) (*PayoutLedger, error) {
	rows, totals, count, err := s.payoutRepo.ListDoctorPayouts(filter)
	if err != nil {
		return nil, err
	}
	entries := make([]PayoutEntry, 0, len(rows))
	for _, row := range rows {
		createdAt := row.CreatedAt
		entries = append(entries, PayoutEntry{
			OrderID:     row.OrderID,
			OrderNo:     row.OrderNo,
			RecipientID: row.DoctorID,
			Amount:      moneyFromFloat(row.Amount),
			Currency:    row.Currency,
			PaidAt:      row.PaidAt,
			CreatedAt:   &createdAt,
		})
	}
	return buildLedger(constants.RecipientDoctor, entries, totals, count), nil
}

func (s *PayoutService) listPharmacyPayouts(filter repository.PayoutFilter) (*PayoutLedger, error) {
	rows, totals, count, err := s.payoutRepo.ListPharmacyPayouts(filter)
	if err != nil {
		return nil, err
	}
	entries := make([]PayoutEntry, 0, len(rows))
	for _, row := range rows {
		createdAt := row.CreatedAt
		entries = append(entries, PayoutEntry{
			OrderID:     row.OrderID,
			OrderNo:     row.OrderNo,
			Amount:      moneyFromFloat(row.Amount),
			Currency:    row.Currency,
			OrderStatus: row.Status,
			CreatedAt:   &createdAt,
		})
	}
	return buildLedger(constants.RecipientPharmacy, entries, totals, count), nil
}

// listAffiliatePayouts injects the current commission rate so the
// ledger always reflects today's rate, not the rate at order time.
func (s *PayoutService) listAffiliatePayouts(ctx context.Context, filter repository.PayoutFilter) (*PayoutLedger, error) {
	fees, err := s.feeService.Resolve(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("resolve affiliate rate: %w", err)
	}

	rows, totals, count, err := s.payoutRepo.ListAffiliatePayouts(filter, fees.AffiliatePercent)
	if err != nil {
		return nil, err
	}
	entries := make([]PayoutEntry, 0, len(rows))
	for _, row := range rows {
		createdAt := row.CreatedAt
		entries = append(entries, PayoutEntry{
			OrderID:     row.OrderID,
			OrderNo:     row.OrderNo,
			RecipientID: row.AffiliateID,
			Amount:      moneyFromFloat(row.Amount),
			Currency:    row.Currency,
			CreatedAt:   &createdAt,
		})
	}
	return buildLedger(constants.RecipientAffiliate, entries, totals, count), nil
}

// checkSplitConservation verifies each listed order's persisted split
// still sums to its total, net of any recorded shortfall. Drift is
// logged as a reconciliation mismatch, never surfaced as an error;
// historical rows may predate a fee schedule change.
func (s *PayoutService) checkSplitConservation(class string, entries []PayoutEntry) {
	if len(entries) == 0 {
		return
	}
	seen := make(map[uint]bool, len(entries))
	ids := make([]uint, 0, len(entries))
	for _, entry := range entries {
		if entry.OrderID == 0 || seen[entry.OrderID] {
			continue
		}
		seen[entry.OrderID] = true
		ids = append(ids, entry.OrderID)
	}

	rows, err := s.payoutRepo.ListOrderSplits(ids)
	if err != nil {
		logger.Warnw("payout_reconciliation_check_failed", "recipient_class", class, "error", err)
		return
	}
	tolerance := decimal.NewFromFloat(0.01)
	for _, row := range rows {
		allocated := decimal.NewFromFloat(row.PlatformFeeAmount).
			Add(decimal.NewFromFloat(row.ProcessorFeeAmount)).
			Add(decimal.NewFromFloat(row.DoctorFeeAmount)).
			Add(decimal.NewFromFloat(row.PharmacyCostAmount)).
			Add(decimal.NewFromFloat(row.BrandAmount)).
			Sub(decimal.NewFromFloat(row.ShortfallAmount))
		drift := decimal.NewFromFloat(row.TotalAmount).Sub(allocated)
		if drift.Abs().GreaterThan(tolerance) {
			logger.Warnw("payout_reconciliation_mismatch",
				"recipient_class", class,
				"order_id", row.OrderID,
				"order_no", row.OrderNo,
				"total", decimal.NewFromFloat(row.TotalAmount).StringFixed(2),
				"allocated", allocated.StringFixed(2),
				"drift", drift.StringFixed(2),
			)
		}
	}
}

func buildLedger(class string, entries []PayoutEntry, totals repository.PayoutTotalsRow, count int64) *PayoutLedger {
	return &PayoutLedger{
		RecipientClass: class,
		Entries:        entries,
		TotalAmount:    moneyFromFloat(totals.TotalAmount),
		OrderCount:     totals.OrderCount,
		Count:          count,
	}
}

func moneyFromFloat(v float64) models.Money {
	return models.NewMoneyFromDecimal(decimal.NewFromFloat(v))
}
