package service

import (
	"github.com/Fuse-Health-Org/fuse-monorepo-sub008/internal/logger"
	"github.com/Fuse-Health-Org/fuse-monorepo-sub008/internal/models"
	"github.com/Fuse-Health-Org/fuse-monorepo-sub008/internal/queue"
	"github.com/Fuse-Health-Org/fuse-monorepo-sub008/internal/repository"
)

// AuditService records who read which payout ledger. Entries go
// through the queue when it is up and fall back to a direct write so
// a read is never left unrecorded.
type AuditService struct {
	auditRepo   repository.AccessAuditLogRepository
	queueClient *queue.Client
}

// NewAuditService builds the audit service.
func NewAuditService(auditRepo repository.AccessAuditLogRepository, queueClient *queue.Client) *AuditService {
	return &AuditService{
		auditRepo:   auditRepo,
		queueClient: queueClient,
	}
}

// AccessEntry is one ledger access to record.
type AccessEntry struct {
	ActorUserID  uint
	ActorEmail   string
	Action       string
	ResourceType string
	ResourceID   string
	RequestID    string
	Detail       map[string]interface{}
}

// LogAccess records the entry. Failures are logged, never surfaced to
// the caller; the read they describe has already happened.
func (s *AuditService) LogAccess(entry AccessEntry) {
	if s.queueClient != nil && s.queueClient.Enabled() {
		payload := queue.AccessLogPayload{
			ActorUserID:  entry.ActorUserID,
			ActorEmail:   entry.ActorEmail,
			Action:       entry.Action,
			ResourceType: entry.ResourceType,
			ResourceID:   entry.ResourceID,
			RequestID:    entry.RequestID,
			Detail:       entry.Detail,
		}
		err := s.queueClient.EnqueueAccessLog(payload)
		if err == nil {
			return
		}
		logger.Warnw("audit_enqueue_failed_fallback_direct", "action", entry.Action, "error", err)
	}
	s.writeDirect(entry)
}

func (s *AuditService) writeDirect(entry AccessEntry) {
	if s.auditRepo == nil {
		return
	}
	record := &models.AccessAuditLog{
		ActorUserID:  entry.ActorUserID,
		ActorEmail:   entry.ActorEmail,
		Action:       entry.Action,
		ResourceType: entry.ResourceType,
		ResourceID:   entry.ResourceID,
		RequestID:    entry.RequestID,
	}
	if len(entry.Detail) > 0 {
		record.DetailJSON = models.JSON(entry.Detail)
	}
	if err := s.auditRepo.Create(record); err != nil {
		logger.Errorw("audit_write_failed", "action", entry.Action, "error", err)
	}
}

// List returns audit entries for review.
func (s *AuditService) List(filter repository.AccessAuditLogListFilter) ([]models.AccessAuditLog, int64, error) {
	return s.auditRepo.List(filter)
}
