package admin

import (
	"errors"
	"strconv"
	"strings"

	handlershared "github.com/Fuse-Health-Org/fuse-monorepo-sub008/internal/http/handlers/shared"
	"github.com/Fuse-Health-Org/fuse-monorepo-sub008/internal/http/response"
	"github.com/Fuse-Health-Org/fuse-monorepo-sub008/internal/repository"
	"github.com/Fuse-Health-Org/fuse-monorepo-sub008/internal/service"

	"github.com/gin-gonic/gin"
)

// UpdateOrderStatusRequest is the fulfillment transition body.
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateOrderStatus applies one fulfillment transition to an order.
func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	if _, ok := getUserID(c); !ok {
		return
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "order id invalid", nil)
		return
	}

	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	order, err := h.OrderService.UpdateOrderStatus(uint(id), req.Status)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			respondError(c, response.CodeNotFound, "order not found", nil)
		case errors.Is(err, service.ErrOrderStatusInvalid):
			respondError(c, response.CodeBadRequest, "status transition not allowed", nil)
		default:
			respondError(c, response.CodeInternal, "order status update failed", err)
		}
		return
	}

	response.Success(c, order)
}

// ListOrders pages through all orders for operations.
func (h *Handler) ListOrders(c *gin.Context) {
	if _, ok := getUserID(c); !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = handlershared.NormalizePagination(page, pageSize)

	filter := repository.OrderListFilter{
		Page:     page,
		PageSize: pageSize,
		Status:   strings.TrimSpace(c.Query("status")),
		OrderNo:  strings.TrimSpace(c.Query("order_no")),
	}
	if raw := strings.TrimSpace(c.Query("brand_id")); raw != "" {
		brandID, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			respondError(c, response.CodeBadRequest, "brand id invalid", nil)
			return
		}
		filter.BrandID = uint(brandID)
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
