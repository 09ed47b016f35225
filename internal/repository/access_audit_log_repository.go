package repository

import (
	"github.com/Fuse-Health-Org/fuse-monorepo-sub008/internal/models"

	"gorm.io/gorm"
)

// AccessAuditLogRepository is the audit log data access interface.
type AccessAuditLogRepository interface {
	Create(log *models.AccessAuditLog) error
	List(filter AccessAuditLogListFilter) ([]models.AccessAuditLog, int64, error)
}

// GormAccessAuditLogRepository is the GORM implementation.
type GormAccessAuditLogRepository struct {
	db *gorm.DB
}

// NewAccessAuditLogRepository builds the audit log repository.
func NewAccessAuditLogRepository(db *gorm.DB) *GormAccessAuditLogRepository {
	return &GormAccessAuditLogRepository{db: db}
}

// Create inserts an audit log row.
func (r *GormAccessAuditLogRepository) Create(log *models.AccessAuditLog) error {
	return r.db.Create(log).Error
}

// List queries audit logs with filters.
func (r *GormAccessAuditLogRepository) List(filter AccessAuditLogListFilter) ([]models.AccessAuditLog, int64, error) {
	var logs []models.AccessAuditLog
	query := r.db.Model(&models.AccessAuditLog{})

	if filter.ActorUserID != 0 {
		query = query.Where("actor_user_id = ?", filter.ActorUserID)
	}
	if filter.Action != "" {
		query = query.Where("action = ?", filter.Action)
	}
	if filter.ResourceType != "" {
		query = query.Where("resource_type = ?", filter.ResourceType)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	if err := query.Order("id desc").Find(&logs).Error; err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}
