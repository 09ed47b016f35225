package repository

import (
	"errors"

	"github.com/Fuse-Health-Org/fuse-monorepo-sub008/internal/models"

	"gorm.io/gorm"
)

// FeeScheduleRepository is the fee schedule data access interface.
// The table holds exactly one global row; Get returns nil when none or
// more than one exists so the caller can refuse to price orders.
type FeeScheduleRepository interface {
	Get() (*models.FeeSchedule, error)
	Count() (int64, error)
	Create(schedule *models.FeeSchedule) error
	Update(schedule *models.FeeSchedule) error
	WithTx(tx *gorm.DB) *GormFeeScheduleRepository
}

// GormFeeScheduleRepository is the GORM implementation.
type GormFeeScheduleRepository struct {
	db *gorm.DB
}

// NewFeeScheduleRepository builds the fee schedule repository.
func NewFeeScheduleRepository(db *gorm.DB) *GormFeeScheduleRepository {
	return &GormFeeScheduleRepository{db: db}
}

// WithTx binds a transaction.
func (r *GormFeeScheduleRepository) WithTx(tx *gorm.DB) *GormFeeScheduleRepository {
	if tx == nil {
		return r
	}
	return &GormFeeScheduleRepository{db: tx}
}

// Get fetches the global row, nil unless exactly one exists.
func (r *GormFeeScheduleRepository) Get() (*models.FeeSchedule, error) {
	count, err := r.Count()
	if err != nil {
		return nil, err
	}
	if count != 1 {
		return nil, nil
	}
	var schedule models.FeeSchedule
	if err := r.db.First(&schedule).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &schedule, nil
}

// Count returns the number of schedule rows.
func (r *GormFeeScheduleRepository) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&models.FeeSchedule{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Create inserts the schedule row.
func (r *GormFeeScheduleRepository) Create(schedule *models.FeeSchedule) error {
	return r.db.Create(schedule).Error
}

// Update saves the schedule row.
func (r *GormFeeScheduleRepository) Update(schedule *models.FeeSchedule) error {
	return r.db.Save(schedule).Error
}
