package admin

import (
	"errors"
	"strconv"
	"strings"
	"time"

	handlershared "github.com/Fuse-Health-Org/fuse-monorepo-sub008/internal/http/handlers/shared"
	"github.com/Fuse-Health-Org/fuse-monorepo-sub008/internal/http/response"
	"github.com/Fuse-Health-Org/fuse-monorepo-sub008/internal/repository"
	"github.com/Fuse-Health-Org/fuse-monorepo-sub008/internal/service"

	"github.com/gin-gonic/gin"
)

// GetPayouts returns one page of a recipient class payout ledger.
// Totals always cover the full filtered set regardless of pagination.
func (h *Handler) GetPayouts(c *gin.Context) {
	if _, ok := getUserID(c); !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = handlershared.NormalizePagination(page, pageSize)

	filter := repository.PayoutFilter{
		Page:     page,
		PageSize: pageSize,
	}
	if raw := strings.TrimSpace(c.Query("recipient_id")); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			respondError(c, response.CodeBadRequest, "recipient id invalid", nil)
			return
		}
		filter.RecipientID = uint(id)
	}
	if raw := strings.TrimSpace(c.Query("brand_id")); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			respondError(c, response.CodeBadRequest, "brand id invalid", nil)
			return
		}
		filter.BrandID = uint(id)
	}
	if from, ok := parseTimeQuery(c, "created_from"); ok {
		filter.CreatedFrom = from
	} else if !ok && strings.TrimSpace(c.Query("created_from")) != "" {
		respondError(c, response.CodeBadRequest, "created_from invalid", nil)
		return
	}
	if to, ok := parseTimeQuery(c, "created_to"); ok {
		filter.CreatedTo = to
	} else if !ok && strings.TrimSpace(c.Query("created_to")) != "" {
		respondError(c, response.CodeBadRequest, "created_to invalid", nil)
		return
	}

	ledger, err := h.PayoutService.ListPayouts(c.Request.Context(), c.Param("recipient_class"), filter, actorFromContext(c))
	if err != nil {
		if errors.Is(err, service.ErrRecipientClassInvalid) {
			respondError(c, response.CodeBadRequest, "recipient class invalid", nil)
			return
		}
		if errors.Is(err, service.ErrFeeScheduleMissing) {
			respondError(c, response.CodeInternal, "fee schedule not configured", nil)
			return
		}
		respondError(c, response.CodeInternal, "payout list failed", err)
		return
	}

	response.SuccessWithPage(c, ledger, response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     ledger.Count,
		TotalPage: handlershared.TotalPages(ledger.Count, pageSize),
	})
}

func parseTimeQuery(c *gin.Context, key string) (*time.Time, bool) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, false
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return &parsed, true
		}
	}
	return nil, false
}
