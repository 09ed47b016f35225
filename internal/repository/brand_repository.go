package repository

import (
	"errors"
	"strings"

	"github.com/Fuse-Health-Org/fuse-monorepo-sub008/internal/models"

	"gorm.io/gorm"
)

// BrandRepository is the brand data access interface.
type BrandRepository interface {
	Create(brand *models.Brand) error
	GetByID(id uint) (*models.Brand, error)
	GetBySlug(slug string) (*models.Brand, error)
	GetByConnectedAccount(account string) (*models.Brand, error)
	GetTierByID(id uint) (*models.BrandTier, error)
	WithTx(tx *gorm.DB) *GormBrandRepository
}

// GormBrandRepository is the GORM implementation.
type GormBrandRepository struct {
	db *gorm.DB
}

// NewBrandRepository builds the brand repository.
func NewBrandRepository(db *gorm.DB) *GormBrandRepository {
	return &GormBrandRepository{db: db}
}

// WithTx binds a transaction.
func (r *GormBrandRepository) WithTx(tx *gorm.DB) *GormBrandRepository {
	if tx == nil {
		return r
	}
	return &GormBrandRepository{db: tx}
}

// Create inserts a brand.
func (r *GormBrandRepository) Create(brand *models.Brand) error {
	return r.db.Create(brand).Error
}

// GetByID fetches a brand with its tier.
func (r *GormBrandRepository) GetByID(id uint) (*models.Brand, error) {
	var brand models.Brand
	if err := r.db.Preload("Tier").First(&brand, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &brand, nil
}

// GetBySlug fetches a brand by slug.
func (r *GormBrandRepository) GetBySlug(slug string) (*models.Brand, error) {
	normalized := strings.ToLower(strings.TrimSpace(slug))
	if normalized == "" {
		return nil, nil
	}
	var brand models.Brand
	if err := r.db.Preload("Tier").Where("slug = ?", normalized).First(&brand).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &brand, nil
}

// GetByConnectedAccount fetches a brand by gateway account.
func (r *GormBrandRepository) GetByConnectedAccount(account string) (*models.Brand, error) {
	trimmed := strings.TrimSpace(account)
	if trimmed == "" {
		return nil, nil
	}
	var brand models.Brand
	if err := r.db.Preload("Tier").Where("connected_account_id = ?", trimmed).First(&brand).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &brand, nil
}

// GetTierByID fetches a fee tier.
func (r *GormBrandRepository) GetTierByID(id uint) (*models.BrandTier, error) {
	var tier models.BrandTier
	if err := r.db.First(&tier, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &tier, nil
}
