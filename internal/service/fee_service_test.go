package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Fuse-Health-Org/fuse-monorepo-sub008/internal/models"
	"github.com/Fuse-Health-Org/fuse-monorepo-sub008/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupFeeServiceTest(t *testing.T) (*FeeService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:fee_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.FeeSchedule{},
		&models.Brand{},
		&models.BrandTier{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db
	feeRepo := repository.NewFeeScheduleRepository(db)
	brandRepo := repository.NewBrandRepository(db)
	return NewFeeService(feeRepo, brandRepo, 60), db
}

func createTestFeeSchedule(t *testing.T, db *gorm.DB) *models.FeeSchedule {
	t.Helper()
	schedule := &models.FeeSchedule{
		AffiliatePercent:    models.NewMoneyFromDecimal(decimal.NewFromFloat(1)),
		PlatformFeePercent:  models.NewMoneyFromDecimal(decimal.NewFromFloat(1)),
		ProcessorFeePercent: models.NewMoneyFromDecimal(decimal.NewFromFloat(3.9)),
		DoctorConsultFee:    models.NewMoneyFromDecimal(decimal.NewFromFloat(15)),
		RefundDelayDays:     7,
		CreatedAt:           time.Now(),
		UpdatedAt:           time.Now(),
	}
	if err := db.Create(schedule).Error; err != nil {
		t.Fatalf("create fee schedule failed: %v", err)
	}
	return schedule
}

func createTestBrand(t *testing.T, db *gorm.DB, slug string, tierID *uint) *models.Brand {
	t.Helper()
	brand := &models.Brand{
		Slug:               slug,
		Name:               slug,
		ConnectedAccountID: "acct_" + slug,
		TierID:             tierID,
		IsActive:           true,
		CreatedAt:          time.Now(),
		UpdatedAt:          time.Now(),
	}
	if err := db.Create(brand).Error; err != nil {
		t.Fatalf("create brand failed: %v", err)
	}
	return brand
}

func TestFeeServiceResolveGlobal(t *testing.T) {
	svc, db := setupFeeServiceTest(t)
	createTestFeeSchedule(t, db)

	resolved, err := svc.Resolve(context.Background(), 0)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if got := resolved.PlatformFeePercent.String(); got != "1.00" {
		t.Fatalf("expected platform percent 1.00, got %s", got)
	}
	if got := resolved.AffiliatePercent.String(); got != "1.00" {
		t.Fatalf("expected affiliate percent 1.00, got %s", got)
	}
	if resolved.RefundDelayDays != 7 {
		t.Fatalf("expected refund delay 7, got %d", resolved.RefundDelayDays)
	}
}

func TestFeeServiceResolveTierOverride(t *testing.T) {
	svc, db := setupFeeServiceTest(t)
	createTestFeeSchedule(t, db)

	override := models.NewMoneyFromDecimal(decimal.NewFromFloat(0.5))
	tier := &models.BrandTier{Name: "preferred", PlatformFeePercent: &override}
	if err := db.Create(tier).Error; err != nil {
		t.Fatalf("create tier failed: %v", err)
	}
	withTier := createTestBrand(t, db, "limitless", &tier.ID)
	withoutTier := createTestBrand(t, db, "vitalpath", nil)

	resolved, err := svc.Resolve(context.Background(), withTier.ID)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if got := resolved.PlatformFeePercent.String(); got != "0.50" {
		t.Fatalf("expected tier override 0.50, got %s", got)
	}
	// only the platform percent is overridden
	if got := resolved.ProcessorFeePercent.String(); got != "3.90" {
		t.Fatalf("expected processor percent 3.90, got %s", got)
	}

	resolved, err = svc.Resolve(context.Background(), withoutTier.ID)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if got := resolved.PlatformFeePercent.String(); got != "1.00" {
		t.Fatalf("expected global percent 1.00, got %s", got)
	}
}

func TestFeeServiceResolveMissingSchedule(t *testing.T) {
	svc, _ := setupFeeServiceTest(t)

	_, err := svc.Resolve(context.Background(), 0)
	if !errors.Is(err, ErrFeeScheduleMissing) {
		t.Fatalf("expected ErrFeeScheduleMissing, got %v", err)
	}
}

func TestFeeServiceUpdate(t *testing.T) {
	svc, db := setupFeeServiceTest(t)
	createTestFeeSchedule(t, db)

	newPercent := models.NewMoneyFromDecimal(decimal.NewFromFloat(2.5))
	updated, err := svc.Update(context.Background(), UpdateFeeScheduleInput{PlatformFeePercent: &newPercent})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if got := updated.PlatformFeePercent.String(); got != "2.50" {
		t.Fatalf("expected platform percent 2.50, got %s", got)
	}
	// untouched fields keep their values
	if got := updated.DoctorConsultFee.String(); got != "15.00" {
		t.Fatalf("expected doctor fee 15.00, got %s", got)
	}

	stored, err := svc.Get()
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got := stored.PlatformFeePercent.String(); got != "2.50" {
		t.Fatalf("expected stored percent 2.50, got %s", got)
	}
}

func TestFeeServiceUpdateRejectsNegative(t *testing.T) {
	svc, db := setupFeeServiceTest(t)
	createTestFeeSchedule(t, db)

	negative := models.NewMoneyFromDecimal(decimal.NewFromFloat(-1))
	_, err := svc.Update(context.Background(), UpdateFeeScheduleInput{AffiliatePercent: &negative})
	if !errors.Is(err, ErrFeePercentInvalid) {
		t.Fatalf("expected ErrFeePercentInvalid, got %v", err)
	}
}
