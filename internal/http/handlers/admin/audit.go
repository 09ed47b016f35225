package admin

import (
	"strconv"
	"strings"

	handlershared "github.com/Fuse-Health-Org/fuse-monorepo-sub008/internal/http/handlers/shared"
	"github.com/Fuse-Health-Org/fuse-monorepo-sub008/internal/http/response"
	"github.com/Fuse-Health-Org/fuse-monorepo-sub008/internal/repository"

	"github.com/gin-gonic/gin"
)

// ListAccessLogs pages through the payout access audit trail.
func (h *Handler) ListAccessLogs(c *gin.Context) {
	if _, ok := getUserID(c); !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = handlershared.NormalizePagination(page, pageSize)

	filter := repository.AccessAuditLogListFilter{
		Page:         page,
		PageSize:     pageSize,
		Action:       strings.TrimSpace(c.Query("action")),
		ResourceType: strings.TrimSpace(c.Query("resource_type")),
	}
	if raw := strings.TrimSpace(c.Query("actor_user_id")); raw != "" {
		actorID, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			respondError(c, response.CodeBadRequest, "actor id invalid", nil)
			return
		}
		filter.ActorUserID = uint(actorID)
	}

	logs, total, err := h.AuditService.List(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "audit log list failed", err)
		return
	}

	response.SuccessWithPage(c, logs, response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: handlershared.TotalPages(total, pageSize),
	})
}
