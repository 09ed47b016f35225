package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Fuse-Health-Org/fuse-monorepo-sub008/internal/constants"
	"github.com/Fuse-Health-Org/fuse-monorepo-sub008/internal/logger"
	"github.com/Fuse-Health-Org/fuse-monorepo-sub008/internal/models"
	"github.com/Fuse-Health-Org/fuse-monorepo-sub008/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
)

func setupPayoutServiceTest(t *testing.T) (*PayoutService, *FeeService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:payout_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Brand{},
		&models.BrandTier{},
		&models.FeeSchedule{},
		&models.Order{},
		&models.Payment{},
		&models.AccessAuditLog{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db

	brandRepo := repository.NewBrandRepository(db)
	feeService := NewFeeService(repository.NewFeeScheduleRepository(db), brandRepo, 60)
	audit := NewAuditService(repository.NewAccessAuditLogRepository(db), nil)
	svc := NewPayoutService(repository.NewPayoutRepository(db), brandRepo, feeService, audit)
	return svc, feeService, db
}

type payoutOrderSpec struct {
	orderNo      string
	brandID      uint
	status       string
	total        float64
	platformFee  float64
	processorFee float64
	doctorFee    float64
	pharmacy     float64
	brandShare   float64
	shortfall    float64
	affiliateID  *uint
	approvedBy   *uint
	physicianID  *uint
}

func createPayoutOrder(t *testing.T, db *gorm.DB, spec payoutOrderSpec) *models.Order {
	t.Helper()
	now := time.Now()
	order := &models.Order{
		OrderNo:            spec.orderNo,
		UserID:             1,
		BrandID:            spec.brandID,
		AffiliateID:        spec.affiliateID,
		ApprovedByDoctorID: spec.approvedBy,
		PhysicianID:        spec.physicianID,
		Status:             spec.status,
		Currency:           constants.SiteCurrencyDefault,
		TotalAmount:        models.NewMoneyFromDecimal(decimal.NewFromFloat(spec.total)),
		PlatformFeeAmount:  models.NewMoneyFromDecimal(decimal.NewFromFloat(spec.platformFee)),
		ProcessorFeeAmount: models.NewMoneyFromDecimal(decimal.NewFromFloat(spec.processorFee)),
		DoctorFeeAmount:    models.NewMoneyFromDecimal(decimal.NewFromFloat(spec.doctorFee)),
		PharmacyCostAmount: models.NewMoneyFromDecimal(decimal.NewFromFloat(spec.pharmacy)),
		BrandAmount:        models.NewMoneyFromDecimal(decimal.NewFromFloat(spec.brandShare)),
		ShortfallAmount:    models.NewMoneyFromDecimal(decimal.NewFromFloat(spec.shortfall)),
		PaidAt:             &now,
	}
	if err := db.Create(order).Error; err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	return order
}

func createBrandPayment(t *testing.T, db *gorm.DB, orderID uint, amount float64, destination string) {
	t.Helper()
	now := time.Now()
	payment := &models.Payment{
		OrderID:            orderID,
		Amount:             models.NewMoneyFromDecimal(decimal.NewFromFloat(amount)),
		Currency:           constants.SiteCurrencyDefault,
		Status:             constants.PaymentStatusSucceeded,
		GoesTo:             constants.RecipientBrand,
		DestinationAccount: destination,
		PaidAt:             &now,
	}
	if err := db.Create(payment).Error; err != nil {
		t.Fatalf("create payment failed: %v", err)
	}
}

func uintPtr(v uint) *uint { return &v }

func TestListPayoutsRejectsUnknownClass(t *testing.T) {
	svc, _, _ := setupPayoutServiceTest(t)

	_, err := svc.ListPayouts(context.Background(), "landlord", repository.PayoutFilter{}, PayoutReadActor{UserID: 1})
	if !errors.Is(err, ErrRecipientClassInvalid) {
		t.Fatalf("expected ErrRecipientClassInvalid, got %v", err)
	}
}

func TestListBrandPayoutsMatchesBrandOrDestination(t *testing.T) {
	svc, _, db := setupPayoutServiceTest(t)
	createTestFeeSchedule(t, db)
	brand := createTestBrand(t, db, "limitless", nil)
	other := createTestBrand(t, db, "vitalpath", nil)

	mine := createPayoutOrder(t, db, payoutOrderSpec{orderNo: "FH1", brandID: brand.ID, status: constants.OrderStatusPaid, total: 100, brandShare: 60.10})
	// order booked under another brand, but transferred to ours
	routed := createPayoutOrder(t, db, payoutOrderSpec{orderNo: "FH2", brandID: other.ID, status: constants.OrderStatusPaid, total: 50, brandShare: 20})
	theirs := createPayoutOrder(t, db, payoutOrderSpec{orderNo: "FH3", brandID: other.ID, status: constants.OrderStatusPaid, total: 80, brandShare: 30})
	createBrandPayment(t, db, mine.ID, 60.10, brand.ConnectedAccountID)
	createBrandPayment(t, db, routed.ID, 20, brand.ConnectedAccountID)
	createBrandPayment(t, db, theirs.ID, 30, other.ConnectedAccountID)

	ledger, err := svc.ListPayouts(context.Background(), constants.RecipientBrand, repository.PayoutFilter{RecipientID: brand.ID}, PayoutReadActor{UserID: 1})
	if err != nil {
		t.Fatalf("list brand payouts failed: %v", err)
	}
	if len(ledger.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(ledger.Entries))
	}
	if got := ledger.TotalAmount.String(); got != "80.10" {
		t.Fatalf("expected total 80.10, got %s", got)
	}
	if ledger.OrderCount != 2 {
		t.Fatalf("expected order count 2, got %d", ledger.OrderCount)
	}
}

func TestListDoctorPayoutsApproverWins(t *testing.T) {
	svc, _, db := setupPayoutServiceTest(t)
	createTestFeeSchedule(t, db)
	brand := createTestBrand(t, db, "limitless", nil)

	// approver set: the physician never earns this one
	createPayoutOrder(t, db, payoutOrderSpec{orderNo: "FH1", brandID: brand.ID, status: constants.OrderStatusPaid, total: 100, doctorFee: 15, approvedBy: uintPtr(4), physicianID: uintPtr(5)})
	// no approver: falls back to the physician
	createPayoutOrder(t, db, payoutOrderSpec{orderNo: "FH2", brandID: brand.ID, status: constants.OrderStatusShipped, total: 100, doctorFee: 15, physicianID: uintPtr(5)})
	// unsettled orders never pay out
	createPayoutOrder(t, db, payoutOrderSpec{orderNo: "FH3", brandID: brand.ID, status: constants.OrderStatusFailed, total: 100, doctorFee: 15, approvedBy: uintPtr(4)})

	ledger, err := svc.ListPayouts(context.Background(), constants.RecipientDoctor, repository.PayoutFilter{RecipientID: 4}, PayoutReadActor{UserID: 1})
	if err != nil {
		t.Fatalf("list doctor payouts failed: %v", err)
	}
	if len(ledger.Entries) != 1 {
		t.Fatalf("expected 1 entry for the approver, got %d", len(ledger.Entries))
	}
	if got := ledger.TotalAmount.String(); got != "15.00" {
		t.Fatalf("expected total 15.00, got %s", got)
	}

	ledger, err = svc.ListPayouts(context.Background(), constants.RecipientDoctor, repository.PayoutFilter{RecipientID: 5}, PayoutReadActor{UserID: 1})
	if err != nil {
		t.Fatalf("list doctor payouts failed: %v", err)
	}
	if len(ledger.Entries) != 1 {
		t.Fatalf("expected 1 entry for the physician, got %d", len(ledger.Entries))
	}
	if ledger.Entries[0].OrderNo != "FH2" {
		t.Fatalf("expected order FH2, got %s", ledger.Entries[0].OrderNo)
	}
}

func TestListPharmacyPayoutsSettledOnly(t *testing.T) {
	svc, _, db := setupPayoutServiceTest(t)
	createTestFeeSchedule(t, db)
	brand := createTestBrand(t, db, "limitless", nil)

	createPayoutOrder(t, db, payoutOrderSpec{orderNo: "FH1", brandID: brand.ID, status: constants.OrderStatusPaid, total: 100, pharmacy: 20})
	createPayoutOrder(t, db, payoutOrderSpec{orderNo: "FH2", brandID: brand.ID, status: constants.OrderStatusDelivered, total: 100, pharmacy: 20})
	createPayoutOrder(t, db, payoutOrderSpec{orderNo: "FH3", brandID: brand.ID, status: constants.OrderStatusPending, total: 100, pharmacy: 20})
	createPayoutOrder(t, db, payoutOrderSpec{orderNo: "FH4", brandID: brand.ID, status: constants.OrderStatusFailed, total: 100, pharmacy: 20})

	ledger, err := svc.ListPayouts(context.Background(), constants.RecipientPharmacy, repository.PayoutFilter{}, PayoutReadActor{UserID: 1})
	if err != nil {
		t.Fatalf("list pharmacy payouts failed: %v", err)
	}
	if len(ledger.Entries) != 2 {
		t.Fatalf("expected 2 settled entries, got %d", len(ledger.Entries))
	}
	if got := ledger.TotalAmount.String(); got != "40.00" {
		t.Fatalf("expected total 40.00, got %s", got)
	}
}

func TestListAffiliatePayoutsRecomputesAtCurrentRate(t *testing.T) {
	svc, feeService, db := setupPayoutServiceTest(t)
	createTestFeeSchedule(t, db)
	brand := createTestBrand(t, db, "limitless", nil)

	createPayoutOrder(t, db, payoutOrderSpec{orderNo: "FH1", brandID: brand.ID, status: constants.OrderStatusPaid, total: 100, affiliateID: uintPtr(9)})
	createPayoutOrder(t, db, payoutOrderSpec{orderNo: "FH2", brandID: brand.ID, status: constants.OrderStatusPaid, total: 250, affiliateID: uintPtr(9)})

	ledger, err := svc.ListPayouts(context.Background(), constants.RecipientAffiliate, repository.PayoutFilter{RecipientID: 9}, PayoutReadActor{UserID: 1})
	if err != nil {
		t.Fatalf("list affiliate payouts failed: %v", err)
	}
	// 1% of 100 + 1% of 250
	if got := ledger.TotalAmount.String(); got != "3.50" {
		t.Fatalf("expected total 3.50, got %s", got)
	}
	// entries come back newest first
	if got := ledger.Entries[0].Amount.String(); got != "2.50" {
		t.Fatalf("expected first entry amount 2.50, got %s", got)
	}

	// raising the rate reprices the whole history
	newRate := models.NewMoneyFromDecimal(decimal.NewFromFloat(2))
	if _, err := feeService.Update(context.Background(), UpdateFeeScheduleInput{AffiliatePercent: &newRate}); err != nil {
		t.Fatalf("update rate failed: %v", err)
	}

	ledger, err = svc.ListPayouts(context.Background(), constants.RecipientAffiliate, repository.PayoutFilter{RecipientID: 9}, PayoutReadActor{UserID: 1})
	if err != nil {
		t.Fatalf("list affiliate payouts failed: %v", err)
	}
	if got := ledger.TotalAmount.String(); got != "7.00" {
		t.Fatalf("expected repriced total 7.00, got %s", got)
	}
}

func TestListPayoutsTotalsCoverAllPages(t *testing.T) {
	svc, _, db := setupPayoutServiceTest(t)
	createTestFeeSchedule(t, db)
	brand := createTestBrand(t, db, "limitless", nil)

	for i := 1; i <= 5; i++ {
		createPayoutOrder(t, db, payoutOrderSpec{orderNo: fmt.Sprintf("FH%d", i), brandID: brand.ID, status: constants.OrderStatusPaid, total: 100, pharmacy: 10})
	}

	ledger, err := svc.ListPayouts(context.Background(), constants.RecipientPharmacy, repository.PayoutFilter{Page: 1, PageSize: 2}, PayoutReadActor{UserID: 1})
	if err != nil {
		t.Fatalf("list pharmacy payouts failed: %v", err)
	}
	if len(ledger.Entries) != 2 {
		t.Fatalf("expected page of 2, got %d", len(ledger.Entries))
	}
	// totals ignore pagination
	if got := ledger.TotalAmount.String(); got != "50.00" {
		t.Fatalf("expected total 50.00, got %s", got)
	}
	if ledger.OrderCount != 5 {
		t.Fatalf("expected order count 5, got %d", ledger.OrderCount)
	}
	if ledger.Count != 5 {
		t.Fatalf("expected row count 5, got %d", ledger.Count)
	}
}

func TestListPayoutsWritesAuditEntry(t *testing.T) {
	svc, _, db := setupPayoutServiceTest(t)
	createTestFeeSchedule(t, db)
	brand := createTestBrand(t, db, "limitless", nil)
	createPayoutOrder(t, db, payoutOrderSpec{orderNo: "FH1", brandID: brand.ID, status: constants.OrderStatusPaid, total: 100, pharmacy: 20})

	actor := PayoutReadActor{UserID: 42, Email: "finance@example.com", RequestID: "req-1"}
	if _, err := svc.ListPayouts(context.Background(), constants.RecipientPharmacy, repository.PayoutFilter{}, actor); err != nil {
		t.Fatalf("list pharmacy payouts failed: %v", err)
	}

	var entries []models.AccessAuditLog
	if err := db.Find(&entries).Error; err != nil {
		t.Fatalf("load audit entries failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 audit entry, got %d", len(entries))
	}
	entry := entries[0]
	if entry.ActorUserID != 42 {
		t.Fatalf("expected actor 42, got %d", entry.ActorUserID)
	}
	if entry.Action != constants.AuditActionPayoutRead {
		t.Fatalf("expected action %s, got %s", constants.AuditActionPayoutRead, entry.Action)
	}
	if entry.ResourceID != constants.RecipientPharmacy {
		t.Fatalf("expected resource id pharmacy, got %s", entry.ResourceID)
	}
	if entry.RequestID != "req-1" {
		t.Fatalf("expected request id req-1, got %s", entry.RequestID)
	}
}

// A historical row whose persisted split no longer sums to its total
// is logged as a mismatch but never fails the read.
func TestListPayoutsLogsReconciliationMismatch(t *testing.T) {
	svc, _, db := setupPayoutServiceTest(t)
	createTestFeeSchedule(t, db)
	brand := createTestBrand(t, db, "limitless", nil)

	core, observed := observer.New(zapcore.WarnLevel)
	prev := logger.L
	logger.L = zap.New(core)
	defer func() { logger.L = prev }()

	// balanced split, shortfall-floored split, and a drifted row
	createPayoutOrder(t, db, payoutOrderSpec{orderNo: "FH1", brandID: brand.ID, status: constants.OrderStatusPaid, total: 100, platformFee: 1, processorFee: 3.9, doctorFee: 15, pharmacy: 20, brandShare: 60.10})
	createPayoutOrder(t, db, payoutOrderSpec{orderNo: "FH2", brandID: brand.ID, status: constants.OrderStatusPaid, total: 100, platformFee: 1, processorFee: 3.9, doctorFee: 15, pharmacy: 90, shortfall: 9.90})
	createPayoutOrder(t, db, payoutOrderSpec{orderNo: "FH3", brandID: brand.ID, status: constants.OrderStatusPaid, total: 100, platformFee: 1, processorFee: 3.9, doctorFee: 15, pharmacy: 20, brandShare: 45})

	ledger, err := svc.ListPayouts(context.Background(), constants.RecipientPharmacy, repository.PayoutFilter{BrandID: brand.ID}, PayoutReadActor{UserID: 1})
	if err != nil {
		t.Fatalf("list pharmacy payouts failed: %v", err)
	}
	if len(ledger.Entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(ledger.Entries))
	}

	logs := observed.FilterMessage("payout_reconciliation_mismatch").All()
	if len(logs) != 1 {
		t.Fatalf("expected 1 mismatch log, got %d", len(logs))
	}
	if got := logs[0].ContextMap()["order_no"]; got != "FH3" {
		t.Fatalf("expected the drifted order flagged, got %v", got)
	}
}
