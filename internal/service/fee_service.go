package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Fuse-Health-Org/fuse-monorepo-sub008/internal/cache"
	"github.com/Fuse-Health-Org/fuse-monorepo-sub008/internal/logger"
	"github.com/Fuse-Health-Org/fuse-monorepo-sub008/internal/models"
	"github.com/Fuse-Health-Org/fuse-monorepo-sub008/internal/repository"
)

const feeCacheKeyFmt = "fees:resolved:%d"

// FeeService resolves the effective fee schedule for an order. The
// global row is mandatory; there is no zero-fee default.
type FeeService struct {
	feeRepo   repository.FeeScheduleRepository
	brandRepo repository.BrandRepository
	cacheTTL  time.Duration
}

// NewFeeService builds the fee service.
func NewFeeService(feeRepo repository.FeeScheduleRepository, brandRepo repository.BrandRepository, cacheTTLSeconds int) *FeeService {
	ttl := time.Duration(cacheTTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &FeeService{
		feeRepo:   feeRepo,
		brandRepo: brandRepo,
		cacheTTL:  ttl,
	}
}

// Resolve returns the effective schedule for the brand. A brand tier
// with a configured percent overrides the platform fee only; every
// other field stays global. brandID zero resolves the global values
// verbatim.
func (s *FeeService) Resolve(ctx context.Context, brandID uint) (*ResolvedFeeSchedule, error) {
	cacheKey := fmt.Sprintf(feeCacheKeyFmt, brandID)
	var cached ResolvedFeeSchedule
	if hit, err := cache.GetJSON(ctx, cacheKey, &cached); err != nil {
		logger.Warnw("fee_cache_read_failed", "brand_id", brandID, "error", err)
	} else if hit {
		return &cached, nil
	}

	schedule, err := s.feeRepo.Get()
	if err != nil {
		return nil, err
	}
	if schedule == nil {
		return nil, ErrFeeScheduleMissing
	}

	resolved := &ResolvedFeeSchedule{
		PlatformFeePercent:  schedule.PlatformFeePercent,
		ProcessorFeePercent: schedule.ProcessorFeePercent,
		DoctorConsultFee:    schedule.DoctorConsultFee,
		AffiliatePercent:    schedule.AffiliatePercent,
		RefundDelayDays:     schedule.RefundDelayDays,
	}

	if brandID != 0 {
		brand, err := s.brandRepo.GetByID(brandID)
		if err != nil {
			return nil, err
		}
		if brand != nil && brand.Tier != nil && brand.Tier.PlatformFeePercent != nil {
			resolved.PlatformFeePercent = *brand.Tier.PlatformFeePercent
		}
	}

	if err := cache.SetJSON(ctx, cacheKey, resolved, s.cacheTTL); err != nil {
		logger.Warnw("fee_cache_write_failed", "brand_id", brandID, "error", err)
	}
	return resolved, nil
}

// Get returns the raw global schedule row.
func (s *FeeService) Get() (*models.FeeSchedule, error) {
	schedule, err := s.feeRepo.Get()
	if err != nil {
		return nil, err
	}
	if schedule == nil {
		return nil, ErrFeeScheduleMissing
	}
	return schedule, nil
}

// UpdateFeeScheduleInput updates the global schedule row.
type UpdateFeeScheduleInput struct {
	AffiliatePercent    *models.Money
	PlatformFeePercent  *models.Money
	ProcessorFeePercent *models.Money
	DoctorConsultFee    *models.Money
	RefundDelayDays     *int
}

// Update edits the global schedule row and drops the resolved cache
// for the global values. Brand-scoped cache entries age out on TTL.
func (s *FeeService) Update(ctx context.Context, input UpdateFeeScheduleInput) (*models.FeeSchedule, error) {
	schedule, err := s.feeRepo.Get()
	if err != nil {
		return nil, err
	}
	if schedule == nil {
		return nil, ErrFeeScheduleMissing
	}

	if input.AffiliatePercent != nil {
		if input.AffiliatePercent.IsNegative() {
			return nil, ErrFeePercentInvalid
		}
		schedule.AffiliatePercent = *input.AffiliatePercent
	}
	if input.PlatformFeePercent != nil {
		if input.PlatformFeePercent.IsNegative() {
			return nil, ErrFeePercentInvalid
		}
		schedule.PlatformFeePercent = *input.PlatformFeePercent
	}
	if input.ProcessorFeePercent != nil {
		if input.ProcessorFeePercent.IsNegative() {
			return nil, ErrFeePercentInvalid
		}
		schedule.ProcessorFeePercent = *input.ProcessorFeePercent
	}
	if input.DoctorConsultFee != nil {
		if input.DoctorConsultFee.IsNegative() {
			return nil, ErrFeePercentInvalid
		}
		schedule.DoctorConsultFee = *input.DoctorConsultFee
	}
	if input.RefundDelayDays != nil {
		schedule.RefundDelayDays = *input.RefundDelayDays
	}
	schedule.UpdatedAt = time.Now()

	if err := s.feeRepo.Update(schedule); err != nil {
		return nil, err
	}

	if err := cache.Del(ctx, fmt.Sprintf(feeCacheKeyFmt, 0)); err != nil {
		logger.Warnw("fee_cache_invalidate_failed", "error", err)
	}
	return schedule, nil
}
