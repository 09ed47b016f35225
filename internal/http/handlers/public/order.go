package public

import (
	"strconv"
	"strings"

	handlershared "github.com/Fuse-Health-Org/fuse-monorepo-sub008/internal/http/handlers/shared"
	"github.com/Fuse-Health-Org/fuse-monorepo-sub008/internal/http/response"
	"github.com/Fuse-Health-Org/fuse-monorepo-sub008/internal/repository"
	"github.com/Fuse-Health-Org/fuse-monorepo-sub008/internal/service"

	"github.com/gin-gonic/gin"
)

// OrderItemRequest is one requested line.
type OrderItemRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required"`
}

// CreateOrderRequest is the checkout request body.
type CreateOrderRequest struct {
	BrandID            uint               `json:"brand_id" binding:"required"`
	ProgramID          *uint              `json:"program_id"`
	Items              []OrderItemRequest `json:"items" binding:"required"`
	Currency           string             `json:"currency"`
	AffiliateID        uint               `json:"affiliate_id"`
	ApprovedByDoctorID *uint              `json:"approved_by_doctor_id"`
	PhysicianID        *uint              `json:"physician_id"`
}

// CreateOrder prices, splits and charges a new order. The referral
// host for affiliate attribution comes from the request itself, not
// the body, so a forwarded vanity domain is honored.
func (h *Handler) CreateOrder(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	var items []service.CreateOrderItem
	for _, item := range req.Items {
		items = append(items, service.CreateOrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}

	order, err := h.OrderService.CreateOrder(c.Request.Context(), service.CreateOrderInput{
		UserID:             uid,
		ProgramID:          req.ProgramID,
		BrandID:            req.BrandID,
		Items:              items,
		Currency:           req.Currency,
		AffiliateID:        req.AffiliateID,
		ReferralHost:       requestHost(c),
		ApprovedByDoctorID: req.ApprovedByDoctorID,
		PhysicianID:        req.PhysicianID,
		ClientIP:           c.ClientIP(),
	})
	if err != nil {
		respondWithMappedError(c, err, orderCreateErrorRules, response.CodeInternal, "order create failed")
		return
	}

	response.Success(c, order)
}

// GetOrder fetches one order with items and payments.
func (h *Handler) GetOrder(c *gin.Context) {
	if _, ok := getUserID(c); !ok {
		return
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "order id invalid", nil)
		return
	}

	order, err := h.OrderService.GetOrder(uint(id))
	if err != nil {
		respondWithMappedError(c, err, orderReadErrorRules, response.CodeInternal, "order fetch failed")
		return
	}
	response.Success(c, order)
}

// GetOrderByOrderNo fetches one order by its order number.
func (h *Handler) GetOrderByOrderNo(c *gin.Context) {
	if _, ok := getUserID(c); !ok {
		return
	}
	orderNo := strings.TrimSpace(c.Param("order_no"))
	if orderNo == "" {
		respondError(c, response.CodeBadRequest, "order no required", nil)
		return
	}

	order, err := h.OrderService.GetOrderByOrderNo(orderNo)
	if err != nil {
		respondWithMappedError(c, err, orderReadErrorRules, response.CodeInternal, "order fetch failed")
		return
	}
	response.Success(c, order)
}

// PaymentNotifyRequest is the gateway settlement callback body.
type PaymentNotifyRequest struct {
	ProviderRef string `json:"provider_ref" binding:"required"`
}

// PaymentNotify settles a pending payment once the gateway reports the
// charge outcome. The charge state is re-queried from the gateway
// rather than trusted from the callback body.
func (h *Handler) PaymentNotify(c *gin.Context) {
	var req PaymentNotifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	order, err := h.OrderService.ConfirmPayment(c.Request.Context(), req.ProviderRef)
	if err != nil {
		respondWithMappedError(c, err, paymentNotifyErrorRules, response.CodeInternal, "payment confirm failed")
		return
	}
	response.Success(c, order)
}

// ListOrders pages through the caller's orders.
func (h *Handler) ListOrders(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = handlershared.NormalizePagination(page, pageSize)

	filter := repository.OrderListFilter{
		Page:     page,
		PageSize: pageSize,
		UserID:   uid,
		Status:   strings.TrimSpace(c.Query("status")),
		OrderNo:  strings.TrimSpace(c.Query("order_no")),
	}
	orders, total, err := h.OrderService.ListOrders(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "order list failed", err)
		return
	}

	response.SuccessWithPage(c, orders, response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: handlershared.TotalPages(total, pageSize),
	})
}

// requestHost strips any port from the request host header.
func requestHost(c *gin.Context) string {
	host := strings.TrimSpace(c.Request.Host)
	if idx := strings.LastIndex(host, ":"); idx > 0 && !strings.Contains(host[idx:], "]") {
		host = host[:idx]
	}
	return host
}
