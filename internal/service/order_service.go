package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/Fuse-Health-Org/fuse-monorepo-sub008/internal/constants"
	"github.com/Fuse-Health-Org/fuse-monorepo-sub008/internal/logger"
	"github.com/Fuse-Health-Org/fuse-monorepo-sub008/internal/models"
	"github.com/Fuse-Health-Org/fuse-monorepo-sub008/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderService runs the order lifecycle: pricing, splitting, charging
// and status transitions.
type OrderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	brandRepo   repository.BrandRepository
	paymentRepo repository.PaymentRepository
	feeService  *FeeService
	attribution *AttributionService
	gateway     Gateway
}

// NewOrderService builds the order service.
func NewOrderService(orderRepo repository.OrderRepository, productRepo repository.ProductRepository, brandRepo repository.BrandRepository, paymentRepo repository.PaymentRepository, feeService *FeeService, attribution *AttributionService, gateway Gateway) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		brandRepo:   brandRepo,
		paymentRepo: paymentRepo,
		feeService:  feeService,
		attribution: attribution,
		gateway:     gateway,
	}
}

// CreateOrderItem is one requested line.
type CreateOrderItem struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required"`
}

// CreateOrderInput is the checkout request.
type CreateOrderInput struct {
	UserID             uint
	ProgramID          *uint
	BrandID            uint
	Items              []CreateOrderItem
	Currency           string
	AffiliateID        uint
	ReferralHost       string
	ApprovedByDoctorID *uint
	PhysicianID        *uint
	ClientIP           string
}

// CreateOrder prices the cart, splits the total, persists the order and
// then places the charge. The charge runs outside the persist
// transaction; a declined charge leaves the order in failed status with
// its split amounts intact. A placed charge is recorded as a pending
// payment until ConfirmPayment settles it.
func (s *OrderService) CreateOrder(ctx context.Context, input CreateOrderInput) (*models.Order, error) {
	currency := strings.ToUpper(strings.TrimSpace(input.Currency))
	if currency == "" {
		currency = constants.SiteCurrencyDefault
	}
	if currency != constants.SiteCurrencyDefault {
		return nil, ErrCurrencyMismatch
	}

	brand, err := s.brandRepo.GetByID(input.BrandID)
	if err != nil {
		return nil, err
	}
	if brand == nil {
		return nil, ErrBrandNotFound
	}
	if !brand.IsActive {
		return nil, ErrBrandInactive
	}

	lineItems, splitItems, total, err := s.buildLineItems(brand.ID, input.Items)
	if err != nil {
		return nil, err
	}

	fees, err := s.feeService.Resolve(ctx, brand.ID)
	if err != nil {
		return nil, err
	}
	split, err := ComputeSplit(total, *fees, splitItems)
	if err != nil {
		return nil, err
	}
	if !split.Balanced() {
		logger.Warnw("order_split_shortfall", "brand_id", brand.ID, "total", total.StringFixed(2), "shortfall", split.Shortfall.String())
	}

	attribution := s.attribution.ResolveAffiliate(input.AffiliateID, input.ReferralHost)

	order := &models.Order{
		OrderNo:            generateOrderNo(),
		UserID:             input.UserID,
		ProgramID:          input.ProgramID,
		BrandID:            brand.ID,
		ReferralHost:       attribution.ReferralHost,
		ApprovedByDoctorID: input.ApprovedByDoctorID,
		PhysicianID:        input.PhysicianID,
		Status:             constants.OrderStatusPending,
		Currency:           currency,
		TotalAmount:        models.NewMoneyFromDecimal(total),
		PlatformFeePercent: split.PlatformFeePercent,
		PlatformFeeAmount:  split.PlatformFee,
		ProcessorFeeAmount: split.ProcessorFee,
		DoctorFeeAmount:    split.DoctorFee,
		PharmacyCostAmount: split.PharmacyCost,
		BrandAmount:        split.BrandAmount,
		ShortfallAmount:    split.Shortfall,
		ClientIP:           input.ClientIP,
	}
	if attribution.AffiliateID != 0 {
		affiliateID := attribution.AffiliateID
		order.AffiliateID = &affiliateID
	}

	if err := models.DB.Transaction(func(tx *gorm.DB) error {
		return s.orderRepo.WithTx(tx).Create(order, lineItems)
	}); err != nil {
		return nil, err
	}

	chargeResult, chargeErr := s.placeCharge(ctx, order, brand, split)
	if chargeErr != nil {
		if err := s.markChargeFailed(order, chargeErr); err != nil {
			logger.Errorw("order_mark_failed_error", "order_no", order.OrderNo, "error", err)
		}
		return nil, fmt.Errorf("%w: %v", ErrGatewayChargeFailed, chargeErr)
	}

	if err := s.markChargeIssued(order, brand, chargeResult); err != nil {
		return nil, err
	}
	return s.orderRepo.GetByID(order.ID)
}

func (s *OrderService) buildLineItems(brandID uint, items []CreateOrderItem) ([]models.OrderLineItem, []SplitLineItem, decimal.Decimal, error) {
	if len(items) == 0 {
		return nil, nil, decimal.Zero, ErrOrderItemsRequired
	}

	ids := make([]uint, 0, len(items))
	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, nil, decimal.Zero, ErrOrderQuantityInvalid
		}
		ids = append(ids, item.ProductID)
	}
	products, err := s.productRepo.GetByIDs(ids)
	if err != nil {
		return nil, nil, decimal.Zero, err
	}
	productMap := make(map[uint]*models.Product, len(products))
	for i := range products {
		productMap[products[i].ID] = &products[i]
	}

	lineItems := make([]models.OrderLineItem, 0, len(items))
	splitItems := make([]SplitLineItem, 0, len(items))
	total := decimal.Zero
	for _, item := range items {
		product, ok := productMap[item.ProductID]
		if !ok {
			return nil, nil, decimal.Zero, ErrProductNotFound
		}
		if !product.IsActive {
			return nil, nil, decimal.Zero, ErrProductInactive
		}
		if product.BrandID != brandID {
			return nil, nil, decimal.Zero, ErrProductNotFound
		}
		quantity := decimal.NewFromInt(int64(item.Quantity))
		lineTotal := product.PriceAmount.Decimal.Mul(quantity).Round(2)
		lineItems = append(lineItems, models.OrderLineItem{
			ProductID:     product.ID,
			ProductName:   product.Name,
			Tags:          product.Tags,
			UnitPrice:     product.PriceAmount,
			WholesaleCost: product.WholesaleCost,
			Quantity:      item.Quantity,
			TotalPrice:    models.NewMoneyFromDecimal(lineTotal),
		})
		splitItems = append(splitItems, SplitLineItem{
			ProductID:     product.ID,
			Quantity:      item.Quantity,
			WholesaleCost: product.WholesaleCost.Decimal,
		})
		total = total.Add(lineTotal)
	}
	return lineItems, splitItems, total.Round(2), nil
}

func (s *OrderService) placeCharge(ctx context.Context, order *models.Order, brand *models.Brand, split SplitResult) (*ChargeResult, error) {
	req := ChargeRequest{
		OrderNo:     order.OrderNo,
		Amount:      order.TotalAmount.Decimal,
		Currency:    order.Currency,
		Description: fmt.Sprintf("order %s", order.OrderNo),
		Metadata: map[string]string{
			"order_no":             order.OrderNo,
			"platform_fee_amount":  split.PlatformFee.String(),
			"processor_fee_amount": split.ProcessorFee.String(),
			"doctor_fee_amount":    split.DoctorFee.String(),
			"pharmacy_cost_amount": split.PharmacyCost.String(),
			"brand_amount":         split.BrandAmount.String(),
		},
	}
	if brand.ConnectedAccountID != "" && split.BrandAmount.IsPositive() {
		req.TransferTo = brand.ConnectedAccountID
		req.TransferAmount = split.BrandAmount.Decimal
	}
	return s.gateway.CreateCharge(ctx, req)
}

// markChargeIssued records the pending payment for a placed charge.
// The payment carries the recipient share for its class, not the full
// charge, so the payout ledgers never double count. Settlement is
// confirmed later through the gateway notification.
func (s *OrderService) markChargeIssued(order *models.Order, brand *models.Brand, result *ChargeResult) error {
	return models.DB.Transaction(func(tx *gorm.DB) error {
		payment := &models.Payment{
			OrderID:            order.ID,
			Currency:           order.Currency,
			Status:             constants.PaymentStatusPending,
			DestinationAccount: brand.ConnectedAccountID,
			ProviderRef:        result.ChargeID,
			ClientSecret:       result.ClientSecret,
		}
		payment.GoesTo = ClassifyPaymentRecipient(payment, order)
		payment.Amount = RecipientShare(payment.GoesTo, order)
		if len(result.Raw) > 0 {
			payment.ProviderPayload = models.JSON(result.Raw)
		}
		return s.paymentRepo.WithTx(tx).Create(payment)
	})
}

// ConfirmPayment settles a pending payment once the gateway reports
// the charge outcome. Called from the gateway notification endpoint;
// replaying a settled charge is a no-op.
func (s *OrderService) ConfirmPayment(ctx context.Context, providerRef string) (*models.Order, error) {
	ref := strings.TrimSpace(providerRef)
	if ref == "" {
		return nil, ErrPaymentNotFound
	}
	payment, err := s.paymentRepo.GetLatestByProviderRef(ref)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, ErrPaymentNotFound
	}
	if payment.Status == constants.PaymentStatusSucceeded {
		return s.orderRepo.GetByID(payment.OrderID)
	}

	charge, err := s.gateway.GetCharge(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayChargeFailed, err)
	}
	switch charge.Status {
	case ChargeStatusSucceeded:
		now := time.Now()
		payment.Status = constants.PaymentStatusSucceeded
		payment.PaidAt = &now
		if err := models.DB.Transaction(func(tx *gorm.DB) error {
			if err := s.paymentRepo.WithTx(tx).Update(payment); err != nil {
				return err
			}
			return s.orderRepo.WithTx(tx).UpdateStatus(payment.OrderID, constants.OrderStatusPaid, map[string]interface{}{
				"paid_at": now,
			})
		}); err != nil {
			return nil, err
		}
		logger.Infow("payment_settled", "provider_ref", ref, "order_id", payment.OrderID)
	case ChargeStatusCanceled:
		payment.Status = constants.PaymentStatusFailed
		payment.FailureReason = "charge canceled"
		if err := models.DB.Transaction(func(tx *gorm.DB) error {
			if err := s.paymentRepo.WithTx(tx).Update(payment); err != nil {
				return err
			}
			return s.orderRepo.WithTx(tx).UpdateStatus(payment.OrderID, constants.OrderStatusFailed, nil)
		}); err != nil {
			return nil, err
		}
		logger.Warnw("payment_canceled", "provider_ref", ref, "order_id", payment.OrderID)
	default:
		return nil, ErrPaymentNotSettled
	}
	return s.orderRepo.GetByID(payment.OrderID)
}

func (s *OrderService) markChargeFailed(order *models.Order, chargeErr error) error {
	return models.DB.Transaction(func(tx *gorm.DB) error {
		payment := &models.Payment{
			OrderID:       order.ID,
			Amount:        order.TotalAmount,
			Currency:      order.Currency,
			Status:        constants.PaymentStatusFailed,
			FailureReason: chargeErr.Error(),
		}
		if err := s.paymentRepo.WithTx(tx).Create(payment); err != nil {
			return err
		}
		return s.orderRepo.WithTx(tx).UpdateStatus(order.ID, constants.OrderStatusFailed, nil)
	})
}

// GetOrder loads one order with its items and payments.
func (s *OrderService) GetOrder(orderID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// GetOrderByOrderNo loads one order by its order number.
func (s *OrderService) GetOrderByOrderNo(orderNo string) (*models.Order, error) {
	order, err := s.orderRepo.GetByOrderNo(strings.TrimSpace(orderNo))
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// ListOrders pages through orders.
func (s *OrderService) ListOrders(filter repository.OrderListFilter) ([]models.Order, int64, error) {
	return s.orderRepo.List(filter)
}

// UpdateOrderStatus applies one fulfillment transition.
func (s *OrderService) UpdateOrderStatus(orderID uint, targetStatus string) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if !CanTransitionOrderStatus(order.Status, targetStatus) {
		return nil, ErrOrderStatusInvalid
	}
	normalized := strings.ToLower(strings.TrimSpace(targetStatus))
	if err := s.orderRepo.UpdateStatus(order.ID, normalized, nil); err != nil {
		return nil, ErrOrderUpdateFailed
	}
	logger.Infow("order_status_updated", "order_no", order.OrderNo, "from", order.Status, "to", normalized)
	return s.orderRepo.GetByID(order.ID)
}

func generateOrderNo() string {
	now := time.Now().Format("20060102150405")
	return fmt.Sprintf("FH%s%s", now, randNumeric(6))
}

func randNumeric(length int) string {
	var b strings.Builder
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			b.WriteString("0")
			continue
		}
		b.WriteString(fmt.Sprintf("%d", n.Int64()))
	}
	return b.String()
}
