package admin

import (
	"errors"

	"github.com/Fuse-Health-Org/fuse-monorepo-sub008/internal/constants"
	"github.com/Fuse-Health-Org/fuse-monorepo-sub008/internal/http/response"
	"github.com/Fuse-Health-Org/fuse-monorepo-sub008/internal/models"
	"github.com/Fuse-Health-Org/fuse-monorepo-sub008/internal/service"

	"github.com/gin-gonic/gin"
)

// UpdateFeeScheduleRequest edits the global fee schedule. Absent
// fields keep their current value.
type UpdateFeeScheduleRequest struct {
	AffiliatePercent    *models.Money `json:"affiliate_percent"`
	PlatformFeePercent  *models.Money `json:"platform_fee_percent"`
	ProcessorFeePercent *models.Money `json:"processor_fee_percent"`
	DoctorConsultFee    *models.Money `json:"doctor_consult_fee"`
	RefundDelayDays     *int          `json:"refund_delay_days"`
}

// GetFeeSchedule returns the global fee schedule row.
func (h *Handler) GetFeeSchedule(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	schedule, err := h.FeeService.Get()
	if err != nil {
		if errors.Is(err, service.ErrFeeScheduleMissing) {
			respondError(c, response.CodeInternal, "fee schedule not configured", nil)
			return
		}
		respondError(c, response.CodeInternal, "fee schedule fetch failed", err)
		return
	}

	h.logFeeAccess(c, uid, constants.AuditActionFeeRead)
	response.Success(c, schedule)
}

// UpdateFeeSchedule edits the global fee schedule row.
func (h *Handler) UpdateFeeSchedule(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	var req UpdateFeeScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	schedule, err := h.FeeService.Update(c.Request.Context(), service.UpdateFeeScheduleInput{
		AffiliatePercent:    req.AffiliatePercent,
		PlatformFeePercent:  req.PlatformFeePercent,
		ProcessorFeePercent: req.ProcessorFeePercent,
		DoctorConsultFee:    req.DoctorConsultFee,
		RefundDelayDays:     req.RefundDelayDays,
	})
	if err != nil {
		if errors.Is(err, service.ErrFeeScheduleMissing) {
			respondError(c, response.CodeInternal, "fee schedule not configured", nil)
			return
		}
		if errors.Is(err, service.ErrFeePercentInvalid) {
			respondError(c, response.CodeBadRequest, "fee value invalid", nil)
			return
		}
		respondError(c, response.CodeInternal, "fee schedule update failed", err)
		return
	}

	h.logFeeAccess(c, uid, constants.AuditActionFeeUpdate)
	response.Success(c, schedule)
}

func (h *Handler) logFeeAccess(c *gin.Context, uid uint, action string) {
	if h.AuditService == nil {
		return
	}
	actor := actorFromContext(c)
	h.AuditService.LogAccess(service.AccessEntry{
		ActorUserID:  uid,
		ActorEmail:   actor.Email,
		Action:       action,
		ResourceType: constants.AuditResourceFeeSchedule,
		RequestID:    actor.RequestID,
	})
}
