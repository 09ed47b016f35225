package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Fuse-Health-Org/fuse-monorepo-sub008/internal/constants"
	"github.com/Fuse-Health-Org/fuse-monorepo-sub008/internal/models"
	"github.com/Fuse-Health-Org/fuse-monorepo-sub008/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// fakeGateway records the last charge request and returns a canned
// result or error. GetCharge reports succeeded unless a charge state
// is stubbed in.
type fakeGateway struct {
	lastRequest *ChargeRequest
	result      *ChargeResult
	err         error
	charge      *ChargeStatus
	chargeErr   error
}

func (f *fakeGateway) Name() string { return "fake" }

func (f *fakeGateway) CreateCharge(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	f.lastRequest = &req
	if f.err != nil {
		return nil, f.err
	}
	if f.result != nil {
		return f.result, nil
	}
	return &ChargeResult{ChargeID: "ch_test_1", ClientSecret: "secret_test_1"}, nil
}

func (f *fakeGateway) GetCharge(ctx context.Context, chargeID string) (*ChargeStatus, error) {
	if f.chargeErr != nil {
		return nil, f.chargeErr
	}
	if f.charge != nil {
		return f.charge, nil
	}
	return &ChargeStatus{ChargeID: chargeID, Status: ChargeStatusSucceeded}, nil
}

func setupOrderServiceTest(t *testing.T, gateway Gateway) (*OrderService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:order_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Brand{},
		&models.BrandTier{},
		&models.FeeSchedule{},
		&models.Product{},
		&models.Order{},
		&models.OrderLineItem{},
		&models.Payment{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db

	orderRepo := repository.NewOrderRepository(db)
	productRepo := repository.NewProductRepository(db)
	brandRepo := repository.NewBrandRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	feeService := NewFeeService(repository.NewFeeScheduleRepository(db), brandRepo, 60)
	attribution := NewAttributionService(repository.NewUserRepository(db), &fakeRoleChecker{affiliates: map[uint]bool{9: true}}, 4)
	return NewOrderService(orderRepo, productRepo, brandRepo, paymentRepo, feeService, attribution, gateway), db
}

func createTestProduct(t *testing.T, db *gorm.DB, brandID uint, slug string, price, wholesale float64) *models.Product {
	t.Helper()
	product := &models.Product{
		BrandID:       brandID,
		Slug:          slug,
		Name:          slug,
		PriceAmount:   models.NewMoneyFromDecimal(decimal.NewFromFloat(price)),
		WholesaleCost: models.NewMoneyFromDecimal(decimal.NewFromFloat(wholesale)),
		IsActive:      true,
	}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	return product
}

func TestCreateOrderChargeSucceeds(t *testing.T) {
	gateway := &fakeGateway{}
	svc, db := setupOrderServiceTest(t, gateway)
	createTestFeeSchedule(t, db)
	brand := createTestBrand(t, db, "limitless", nil)
	product := createTestProduct(t, db, brand.ID, "semaglutide-monthly", 100, 20)

	order, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		UserID:  1,
		BrandID: brand.ID,
		Items:   []CreateOrderItem{{ProductID: product.ID, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	// the charge is issued but not yet settled
	if order.Status != constants.OrderStatusPending {
		t.Fatalf("expected status pending, got %s", order.Status)
	}
	if got := order.TotalAmount.String(); got != "100.00" {
		t.Fatalf("expected total 100.00, got %s", got)
	}
	if got := order.PlatformFeeAmount.String(); got != "1.00" {
		t.Fatalf("expected platform fee 1.00, got %s", got)
	}
	if got := order.ProcessorFeeAmount.String(); got != "3.90" {
		t.Fatalf("expected processor fee 3.90, got %s", got)
	}
	if got := order.DoctorFeeAmount.String(); got != "15.00" {
		t.Fatalf("expected doctor fee 15.00, got %s", got)
	}
	if got := order.PharmacyCostAmount.String(); got != "20.00" {
		t.Fatalf("expected pharmacy cost 20.00, got %s", got)
	}
	if got := order.BrandAmount.String(); got != "60.10" {
		t.Fatalf("expected brand amount 60.10, got %s", got)
	}
	if !order.ShortfallAmount.IsZero() {
		t.Fatalf("expected zero shortfall, got %s", order.ShortfallAmount.String())
	}
	if order.PaidAt != nil {
		t.Fatalf("expected no paid_at before settlement, got %v", order.PaidAt)
	}
	if len(order.Items) != 1 {
		t.Fatalf("expected 1 line item, got %d", len(order.Items))
	}
	if got := order.Items[0].WholesaleCost.String(); got != "20.00" {
		t.Fatalf("expected wholesale snapshot 20.00, got %s", got)
	}

	if len(order.Payments) != 1 {
		t.Fatalf("expected 1 payment, got %d", len(order.Payments))
	}
	payment := order.Payments[0]
	if payment.Status != constants.PaymentStatusPending {
		t.Fatalf("expected payment pending, got %s", payment.Status)
	}
	if payment.PaidAt != nil {
		t.Fatalf("expected no payment paid_at before settlement")
	}
	if payment.GoesTo != constants.RecipientBrand {
		t.Fatalf("expected payment to go to brand, got %s", payment.GoesTo)
	}
	// the payment carries the brand share, not the full charge
	if got := payment.Amount.String(); got != "60.10" {
		t.Fatalf("expected payment amount 60.10, got %s", got)
	}
	if payment.DestinationAccount != brand.ConnectedAccountID {
		t.Fatalf("expected destination %s, got %s", brand.ConnectedAccountID, payment.DestinationAccount)
	}
	if payment.ProviderRef != "ch_test_1" {
		t.Fatalf("expected provider ref ch_test_1, got %s", payment.ProviderRef)
	}

	if gateway.lastRequest == nil {
		t.Fatalf("expected the gateway to be called")
	}
	if gateway.lastRequest.TransferTo != brand.ConnectedAccountID {
		t.Fatalf("expected transfer to %s, got %s", brand.ConnectedAccountID, gateway.lastRequest.TransferTo)
	}
	if got := gateway.lastRequest.TransferAmount.StringFixed(2); got != "60.10" {
		t.Fatalf("expected transfer amount 60.10, got %s", got)
	}
}

func TestConfirmPaymentSettlesOrder(t *testing.T) {
	gateway := &fakeGateway{}
	svc, db := setupOrderServiceTest(t, gateway)
	createTestFeeSchedule(t, db)
	brand := createTestBrand(t, db, "limitless", nil)
	product := createTestProduct(t, db, brand.ID, "semaglutide-monthly", 100, 20)

	created, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		UserID:  1,
		BrandID: brand.ID,
		Items:   []CreateOrderItem{{ProductID: product.ID, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	order, err := svc.ConfirmPayment(context.Background(), "ch_test_1")
	if err != nil {
		t.Fatalf("confirm payment failed: %v", err)
	}
	if order.ID != created.ID {
		t.Fatalf("expected order %d, got %d", created.ID, order.ID)
	}
	if order.Status != constants.OrderStatusPaid {
		t.Fatalf("expected status paid, got %s", order.Status)
	}
	if order.PaidAt == nil {
		t.Fatalf("expected paid_at to be set")
	}
	if len(order.Payments) != 1 {
		t.Fatalf("expected 1 payment, got %d", len(order.Payments))
	}
	payment := order.Payments[0]
	if payment.Status != constants.PaymentStatusSucceeded {
		t.Fatalf("expected payment succeeded, got %s", payment.Status)
	}
	if payment.PaidAt == nil {
		t.Fatalf("expected payment paid_at to be set")
	}

	// replaying a settled charge changes nothing
	replay, err := svc.ConfirmPayment(context.Background(), "ch_test_1")
	if err != nil {
		t.Fatalf("replay confirm failed: %v", err)
	}
	if len(replay.Payments) != 1 || replay.Payments[0].Status != constants.PaymentStatusSucceeded {
		t.Fatalf("expected replay to leave the payment untouched")
	}
}

func TestConfirmPaymentUnknownRef(t *testing.T) {
	svc, db := setupOrderServiceTest(t, &fakeGateway{})
	createTestFeeSchedule(t, db)

	_, err := svc.ConfirmPayment(context.Background(), "ch_missing")
	if !errors.Is(err, ErrPaymentNotFound) {
		t.Fatalf("expected ErrPaymentNotFound, got %v", err)
	}
}

func TestConfirmPaymentChargeInFlight(t *testing.T) {
	gateway := &fakeGateway{charge: &ChargeStatus{ChargeID: "ch_test_1", Status: "processing"}}
	svc, db := setupOrderServiceTest(t, gateway)
	createTestFeeSchedule(t, db)
	brand := createTestBrand(t, db, "limitless", nil)
	product := createTestProduct(t, db, brand.ID, "semaglutide-monthly", 100, 20)

	if _, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		UserID:  1,
		BrandID: brand.ID,
		Items:   []CreateOrderItem{{ProductID: product.ID, Quantity: 1}},
	}); err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	_, err := svc.ConfirmPayment(context.Background(), "ch_test_1")
	if !errors.Is(err, ErrPaymentNotSettled) {
		t.Fatalf("expected ErrPaymentNotSettled, got %v", err)
	}
	var payment models.Payment
	if err := db.First(&payment).Error; err != nil {
		t.Fatalf("load payment failed: %v", err)
	}
	if payment.Status != constants.PaymentStatusPending {
		t.Fatalf("expected payment still pending, got %s", payment.Status)
	}
}

func TestConfirmPaymentCanceledCharge(t *testing.T) {
	gateway := &fakeGateway{charge: &ChargeStatus{ChargeID: "ch_test_1", Status: ChargeStatusCanceled}}
	svc, db := setupOrderServiceTest(t, gateway)
	createTestFeeSchedule(t, db)
	brand := createTestBrand(t, db, "limitless", nil)
	product := createTestProduct(t, db, brand.ID, "semaglutide-monthly", 100, 20)

	if _, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		UserID:  1,
		BrandID: brand.ID,
		Items:   []CreateOrderItem{{ProductID: product.ID, Quantity: 1}},
	}); err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	order, err := svc.ConfirmPayment(context.Background(), "ch_test_1")
	if err != nil {
		t.Fatalf("confirm payment failed: %v", err)
	}
	if order.Status != constants.OrderStatusFailed {
		t.Fatalf("expected status failed, got %s", order.Status)
	}
	if len(order.Payments) != 1 || order.Payments[0].Status != constants.PaymentStatusFailed {
		t.Fatalf("expected the payment marked failed")
	}
	// the split snapshot survives the canceled charge
	if got := order.BrandAmount.String(); got != "60.10" {
		t.Fatalf("expected brand amount 60.10, got %s", got)
	}
}

// A settled order's brand ledger entry is the brand share, never the
// full customer charge.
func TestCreateOrderFlowsIntoBrandLedger(t *testing.T) {
	gateway := &fakeGateway{}
	svc, db := setupOrderServiceTest(t, gateway)
	createTestFeeSchedule(t, db)
	brand := createTestBrand(t, db, "limitless", nil)
	product := createTestProduct(t, db, brand.ID, "semaglutide-monthly", 100, 20)

	if _, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		UserID:  1,
		BrandID: brand.ID,
		Items:   []CreateOrderItem{{ProductID: product.ID, Quantity: 1}},
	}); err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	if _, err := svc.ConfirmPayment(context.Background(), "ch_test_1"); err != nil {
		t.Fatalf("confirm payment failed: %v", err)
	}

	brandRepo := repository.NewBrandRepository(db)
	feeService := NewFeeService(repository.NewFeeScheduleRepository(db), brandRepo, 60)
	payouts := NewPayoutService(repository.NewPayoutRepository(db), brandRepo, feeService, nil)

	ledger, err := payouts.ListPayouts(context.Background(), constants.RecipientBrand, repository.PayoutFilter{RecipientID: brand.ID}, PayoutReadActor{UserID: 1})
	if err != nil {
		t.Fatalf("list brand payouts failed: %v", err)
	}
	if len(ledger.Entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(ledger.Entries))
	}
	if got := ledger.Entries[0].Amount.String(); got != "60.10" {
		t.Fatalf("expected entry amount 60.10, got %s", got)
	}
	if got := ledger.TotalAmount.String(); got != "60.10" {
		t.Fatalf("expected ledger total 60.10, got %s", got)
	}
	if ledger.OrderCount != 1 {
		t.Fatalf("expected 1 order, got %d", ledger.OrderCount)
	}
}

func TestCreateOrderChargeFails(t *testing.T) {
	gateway := &fakeGateway{err: fmt.Errorf("card declined")}
	svc, db := setupOrderServiceTest(t, gateway)
	createTestFeeSchedule(t, db)
	brand := createTestBrand(t, db, "limitless", nil)
	product := createTestProduct(t, db, brand.ID, "semaglutide-monthly", 100, 20)

	_, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		UserID:  1,
		BrandID: brand.ID,
		Items:   []CreateOrderItem{{ProductID: product.ID, Quantity: 1}},
	})
	if !errors.Is(err, ErrGatewayChargeFailed) {
		t.Fatalf("expected ErrGatewayChargeFailed, got %v", err)
	}

	var order models.Order
	if err := db.Preload("Items").Preload("Payments").First(&order).Error; err != nil {
		t.Fatalf("load order failed: %v", err)
	}
	if order.Status != constants.OrderStatusFailed {
		t.Fatalf("expected status failed, got %s", order.Status)
	}
	// the split snapshot survives the declined charge
	if got := order.BrandAmount.String(); got != "60.10" {
		t.Fatalf("expected brand amount 60.10, got %s", got)
	}
	if len(order.Payments) != 1 {
		t.Fatalf("expected 1 payment, got %d", len(order.Payments))
	}
	if order.Payments[0].Status != constants.PaymentStatusFailed {
		t.Fatalf("expected payment failed, got %s", order.Payments[0].Status)
	}
	if order.Payments[0].FailureReason == "" {
		t.Fatalf("expected a failure reason")
	}
}

func TestCreateOrderShortfallFloorsBrand(t *testing.T) {
	gateway := &fakeGateway{}
	svc, db := setupOrderServiceTest(t, gateway)
	createTestFeeSchedule(t, db)
	brand := createTestBrand(t, db, "limitless", nil)
	product := createTestProduct(t, db, brand.ID, "tirzepatide-monthly", 100, 90)

	order, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		UserID:  1,
		BrandID: brand.ID,
		Items:   []CreateOrderItem{{ProductID: product.ID, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	if got := order.BrandAmount.String(); got != "0.00" {
		t.Fatalf("expected brand amount 0.00, got %s", got)
	}
	if got := order.ShortfallAmount.String(); got != "9.90" {
		t.Fatalf("expected shortfall 9.90, got %s", got)
	}
	// no transfer is requested when the brand share is zero
	if gateway.lastRequest.TransferTo != "" {
		t.Fatalf("expected no transfer destination, got %s", gateway.lastRequest.TransferTo)
	}
}

func TestCreateOrderAppliesTierOverride(t *testing.T) {
	gateway := &fakeGateway{}
	svc, db := setupOrderServiceTest(t, gateway)
	createTestFeeSchedule(t, db)

	override := models.NewMoneyFromDecimal(decimal.NewFromFloat(0.5))
	tier := &models.BrandTier{Name: "preferred", PlatformFeePercent: &override}
	if err := db.Create(tier).Error; err != nil {
		t.Fatalf("create tier failed: %v", err)
	}
	brand := createTestBrand(t, db, "limitless", &tier.ID)
	product := createTestProduct(t, db, brand.ID, "semaglutide-monthly", 100, 20)

	order, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		UserID:  1,
		BrandID: brand.ID,
		Items:   []CreateOrderItem{{ProductID: product.ID, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	if got := order.PlatformFeePercent.String(); got != "0.50" {
		t.Fatalf("expected platform percent 0.50, got %s", got)
	}
	if got := order.PlatformFeeAmount.String(); got != "0.50" {
		t.Fatalf("expected platform fee 0.50, got %s", got)
	}
	if got := order.BrandAmount.String(); got != "60.60" {
		t.Fatalf("expected brand amount 60.60, got %s", got)
	}
}

func TestCreateOrderAttributesAffiliate(t *testing.T) {
	gateway := &fakeGateway{}
	svc, db := setupOrderServiceTest(t, gateway)
	createTestFeeSchedule(t, db)
	brand := createTestBrand(t, db, "limitless", nil)
	product := createTestProduct(t, db, brand.ID, "semaglutide-monthly", 100, 20)
	createTestAffiliate(t, db, 9, "checktwo")

	order, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		UserID:       1,
		BrandID:      brand.ID,
		Items:        []CreateOrderItem{{ProductID: product.ID, Quantity: 1}},
		ReferralHost: "checktwo.limitless.fuse.example.com",
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	if order.AffiliateID == nil || *order.AffiliateID != 9 {
		t.Fatalf("expected affiliate 9, got %v", order.AffiliateID)
	}
	if order.ReferralHost != "checktwo.limitless.fuse.example.com" {
		t.Fatalf("unexpected referral host %q", order.ReferralHost)
	}
}

func TestCreateOrderMissingFeeSchedule(t *testing.T) {
	gateway := &fakeGateway{}
	svc, db := setupOrderServiceTest(t, gateway)
	brand := createTestBrand(t, db, "limitless", nil)
	product := createTestProduct(t, db, brand.ID, "semaglutide-monthly", 100, 20)

	_, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		UserID:  1,
		BrandID: brand.ID,
		Items:   []CreateOrderItem{{ProductID: product.ID, Quantity: 1}},
	})
	if !errors.Is(err, ErrFeeScheduleMissing) {
		t.Fatalf("expected ErrFeeScheduleMissing, got %v", err)
	}
	// no order row is written and the gateway is never reached
	var count int64
	if err := db.Model(&models.Order{}).Count(&count).Error; err != nil {
		t.Fatalf("count orders failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no orders, got %d", count)
	}
	if gateway.lastRequest != nil {
		t.Fatalf("expected the gateway to stay untouched")
	}
}

func TestCreateOrderRejectsForeignProduct(t *testing.T) {
	gateway := &fakeGateway{}
	svc, db := setupOrderServiceTest(t, gateway)
	createTestFeeSchedule(t, db)
	brand := createTestBrand(t, db, "limitless", nil)
	other := createTestBrand(t, db, "vitalpath", nil)
	product := createTestProduct(t, db, other.ID, "sildenafil-monthly", 45, 8)

	_, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		UserID:  1,
		BrandID: brand.ID,
		Items:   []CreateOrderItem{{ProductID: product.ID, Quantity: 1}},
	})
	if !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestCreateOrderRejectsInactiveBrand(t *testing.T) {
	gateway := &fakeGateway{}
	svc, db := setupOrderServiceTest(t, gateway)
	createTestFeeSchedule(t, db)
	brand := createTestBrand(t, db, "limitless", nil)
	product := createTestProduct(t, db, brand.ID, "semaglutide-monthly", 100, 20)
	if err := db.Model(&models.Brand{}).Where("id = ?", brand.ID).Update("is_active", false).Error; err != nil {
		t.Fatalf("deactivate brand failed: %v", err)
	}

	_, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		UserID:  1,
		BrandID: brand.ID,
		Items:   []CreateOrderItem{{ProductID: product.ID, Quantity: 1}},
	})
	if !errors.Is(err, ErrBrandInactive) {
		t.Fatalf("expected ErrBrandInactive, got %v", err)
	}
}

func TestCreateOrderRejectsForeignCurrency(t *testing.T) {
	gateway := &fakeGateway{}
	svc, db := setupOrderServiceTest(t, gateway)
	createTestFeeSchedule(t, db)
	brand := createTestBrand(t, db, "limitless", nil)
	product := createTestProduct(t, db, brand.ID, "semaglutide-monthly", 100, 20)

	_, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		UserID:   1,
		BrandID:  brand.ID,
		Items:    []CreateOrderItem{{ProductID: product.ID, Quantity: 1}},
		Currency: "EUR",
	})
	if !errors.Is(err, ErrCurrencyMismatch) {
		t.Fatalf("expected ErrCurrencyMismatch, got %v", err)
	}
}

func TestUpdateOrderStatusTransition(t *testing.T) {
	gateway := &fakeGateway{}
	svc, db := setupOrderServiceTest(t, gateway)
	createTestFeeSchedule(t, db)
	brand := createTestBrand(t, db, "limitless", nil)
	product := createTestProduct(t, db, brand.ID, "semaglutide-monthly", 100, 20)

	if _, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		UserID:  1,
		BrandID: brand.ID,
		Items:   []CreateOrderItem{{ProductID: product.ID, Quantity: 1}},
	}); err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	order, err := svc.ConfirmPayment(context.Background(), "ch_test_1")
	if err != nil {
		t.Fatalf("confirm payment failed: %v", err)
	}

	updated, err := svc.UpdateOrderStatus(order.ID, constants.OrderStatusProcessing)
	if err != nil {
		t.Fatalf("update status failed: %v", err)
	}
	if updated.Status != constants.OrderStatusProcessing {
		t.Fatalf("expected status processing, got %s", updated.Status)
	}

	_, err = svc.UpdateOrderStatus(order.ID, constants.OrderStatusPending)
	if !errors.Is(err, ErrOrderStatusInvalid) {
		t.Fatalf("expected ErrOrderStatusInvalid, got %v", err)
	}
}
