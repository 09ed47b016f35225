package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/Fuse-Health-Org/fuse-monorepo-sub008/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupBrandRepositoryTest(t *testing.T) (*GormBrandRepository, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:brand_repository_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Brand{}, &models.BrandTier{}); err != nil {
		t.Fatalf("migrate brand tables failed: %v", err)
	}
	return NewBrandRepository(db), db
}

func TestBrandRepositoryLookups(t *testing.T) {
	repo, db := setupBrandRepositoryTest(t)

	override := models.NewMoneyFromDecimal(decimal.NewFromFloat(0.5))
	tier := &models.BrandTier{Name: "preferred", PlatformFeePercent: &override}
	if err := db.Create(tier).Error; err != nil {
		t.Fatalf("create tier failed: %v", err)
	}
	brand := &models.Brand{Slug: "limitless", Name: "Limitless", ConnectedAccountID: "acct_limitless", TierID: &tier.ID, IsActive: true}
	if err := repo.Create(brand); err != nil {
		t.Fatalf("create brand failed: %v", err)
	}

	loaded, err := repo.GetByID(brand.ID)
	if err != nil {
		t.Fatalf("get by id failed: %v", err)
	}
	if loaded == nil || loaded.Tier == nil || loaded.Tier.PlatformFeePercent == nil {
		t.Fatalf("expected brand with tier preloaded, got %+v", loaded)
	}

	// slug matching is case-insensitive
	loaded, err = repo.GetBySlug(" Limitless ")
	if err != nil {
		t.Fatalf("get by slug failed: %v", err)
	}
	if loaded == nil || loaded.ID != brand.ID {
		t.Fatalf("expected brand by slug, got %+v", loaded)
	}

	loaded, err = repo.GetByConnectedAccount("acct_limitless")
	if err != nil {
		t.Fatalf("get by connected account failed: %v", err)
	}
	if loaded == nil || loaded.ID != brand.ID {
		t.Fatalf("expected brand by connected account, got %+v", loaded)
	}

	loadedTier, err := repo.GetTierByID(tier.ID)
	if err != nil {
		t.Fatalf("get tier failed: %v", err)
	}
	if loadedTier == nil || loadedTier.Name != "preferred" {
		t.Fatalf("expected preferred tier, got %+v", loadedTier)
	}

	missing, err := repo.GetBySlug("nope")
	if err != nil {
		t.Fatalf("get by slug failed: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for unknown slug")
	}
}
