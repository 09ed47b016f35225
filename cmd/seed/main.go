package main

import (
	"github.com/Fuse-Health-Org/fuse-monorepo-sub008/internal/authz"
	"github.com/Fuse-Health-Org/fuse-monorepo-sub008/internal/config"
	"github.com/Fuse-Health-Org/fuse-monorepo-sub008/internal/constants"
	"github.com/Fuse-Health-Org/fuse-monorepo-sub008/internal/logger"
	"github.com/Fuse-Health-Org/fuse-monorepo-sub008/internal/models"

	"github.com/shopspring/decimal"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	// Global fee schedule, exactly one row
	var feeCount int64
	if err := models.DB.Model(&models.FeeSchedule{}).Count(&feeCount).Error; err != nil {
		stdLog.Fatalf("Failed to count fee schedules: %v", err)
	}
	if feeCount == 0 {
		schedule := models.FeeSchedule{
			AffiliatePercent:    models.NewMoneyFromDecimal(decimal.NewFromFloat(1.0)),
			PlatformFeePercent:  models.NewMoneyFromDecimal(decimal.NewFromFloat(1.0)),
			ProcessorFeePercent: models.NewMoneyFromDecimal(decimal.NewFromFloat(3.9)),
			DoctorConsultFee:    models.NewMoneyFromDecimal(decimal.NewFromFloat(15.0)),
			RefundDelayDays:     7,
		}
		if err := models.DB.Create(&schedule).Error; err != nil {
			stdLog.Fatalf("Failed to create fee schedule: %v", err)
		}
		stdLog.Printf("Created global fee schedule")
	} else {
		stdLog.Printf("Fee schedule already exists")
	}

	// Brand tiers
	preferredPercent := models.NewMoneyFromDecimal(decimal.NewFromFloat(0.5))
	tiers := []models.BrandTier{
		{Name: "standard"},
		{Name: "preferred", PlatformFeePercent: &preferredPercent},
	}
	for _, tier := range tiers {
		var existing models.BrandTier
		if err := models.DB.Where("name = ?", tier.Name).First(&existing).Error; err != nil {
			if err := models.DB.Create(&tier).Error; err != nil {
				stdLog.Printf("Failed to create tier %s: %v", tier.Name, err)
			} else {
				stdLog.Printf("Created tier: %s", tier.Name)
			}
		} else {
			stdLog.Printf("Tier already exists: %s", tier.Name)
		}
	}

	var preferredTier models.BrandTier
	var preferredTierID *uint
	if err := models.DB.Where("name = ?", "preferred").First(&preferredTier).Error; err == nil {
		preferredTierID = &preferredTier.ID
	}

	// Brands
	brands := []models.Brand{
		{
			Slug:               "limitless",
			Name:               "Limitless Health",
			ConnectedAccountID: "acct_limitless_demo",
			TierID:             preferredTierID,
			IsActive:           true,
		},
		{
			Slug:               "vitalpath",
			Name:               "VitalPath Clinic",
			ConnectedAccountID: "acct_vitalpath_demo",
			IsActive:           true,
		},
	}
	for _, brand := range brands {
		var existing models.Brand
		if err := models.DB.Where("slug = ?", brand.Slug).First(&existing).Error; err != nil {
			if err := models.DB.Create(&brand).Error; err != nil {
				stdLog.Printf("Failed to create brand %s: %v", brand.Slug, err)
			} else {
				stdLog.Printf("Created brand: %s", brand.Slug)
			}
		} else {
			stdLog.Printf("Brand already exists: %s", brand.Slug)
		}
	}

	brandIDs := map[string]uint{}
	var brandList []models.Brand
	if err := models.DB.Where("slug IN ?", []string{"limitless", "vitalpath"}).Find(&brandList).Error; err != nil {
		stdLog.Printf("Failed to load brands: %v", err)
	}
	for _, brand := range brandList {
		brandIDs[brand.Slug] = brand.ID
	}

	// Products, with the wholesale cost the pharmacy charges per unit
	products := []models.Product{
		{
			BrandID:       brandIDs["limitless"],
			Slug:          "semaglutide-monthly",
			Name:          "Semaglutide Monthly Supply",
			PriceAmount:   models.NewMoneyFromDecimal(decimal.NewFromFloat(100.00)),
			WholesaleCost: models.NewMoneyFromDecimal(decimal.NewFromFloat(20.00)),
			Tags:          models.StringArray([]string{"glp-1", "weight-loss"}),
			IsActive:      true,
		},
		{
			BrandID:       brandIDs["limitless"],
			Slug:          "tirzepatide-monthly",
			Name:          "Tirzepatide Monthly Supply",
			PriceAmount:   models.NewMoneyFromDecimal(decimal.NewFromFloat(150.00)),
			WholesaleCost: models.NewMoneyFromDecimal(decimal.NewFromFloat(45.00)),
			Tags:          models.StringArray([]string{"glp-1", "weight-loss"}),
			IsActive:      true,
		},
		{
			BrandID:       brandIDs["vitalpath"],
			Slug:          "sildenafil-monthly",
			Name:          "Sildenafil Monthly Supply",
			PriceAmount:   models.NewMoneyFromDecimal(decimal.NewFromFloat(45.00)),
			WholesaleCost: models.NewMoneyFromDecimal(decimal.NewFromFloat(8.00)),
			Tags:          models.StringArray([]string{"mens-health"}),
			IsActive:      true,
		},
	}
	for _, product := range products {
		if product.BrandID == 0 {
			continue
		}
		var existing models.Product
		if err := models.DB.Where("slug = ?", product.Slug).First(&existing).Error; err != nil {
			if err := models.DB.Create(&product).Error; err != nil {
				stdLog.Printf("Failed to create product %s: %v", product.Slug, err)
			} else {
				stdLog.Printf("Created product: %s", product.Slug)
			}
		} else {
			stdLog.Printf("Product already exists: %s", product.Slug)
		}
	}

	// Users and their roles
	authzService, err := authz.NewService(models.DB)
	if err != nil {
		stdLog.Fatalf("Failed to init authz: %v", err)
	}
	if err := authz.Bootstrap(authzService); err != nil {
		stdLog.Fatalf("Failed to bootstrap roles: %v", err)
	}

	limitlessID := brandIDs["limitless"]
	seedUsers := []struct {
		user  models.User
		roles []string
	}{
		{
			user: models.User{
				Email:       "checktwo@example.com",
				DisplayName: "Checktwo Partners",
				Website:     "checktwo",
			},
			roles: []string{constants.RoleAffiliate},
		},
		{
			user: models.User{
				Email:       "dr.reed@example.com",
				DisplayName: "Dr. Morgan Reed",
			},
			roles: []string{constants.RoleDoctor},
		},
		{
			user: models.User{
				Email:       "finance@example.com",
				DisplayName: "Finance Desk",
			},
			roles: []string{"finance", "operations"},
		},
		{
			user: models.User{
				Email:       "staff@limitless.example.com",
				DisplayName: "Limitless Staff",
				BrandID:     &limitlessID,
			},
			roles: nil,
		},
	}
	for _, seed := range seedUsers {
		var existing models.User
		if err := models.DB.Where("email = ?", seed.user.Email).First(&existing).Error; err != nil {
			if err := models.DB.Create(&seed.user).Error; err != nil {
				stdLog.Printf("Failed to create user %s: %v", seed.user.Email, err)
				continue
			}
			existing = seed.user
			stdLog.Printf("Created user: %s", existing.Email)
		} else {
			stdLog.Printf("User already exists: %s", existing.Email)
		}
		if len(seed.roles) > 0 {
			if err := authzService.SetUserRoles(existing.ID, seed.roles); err != nil {
				stdLog.Printf("Failed to set roles for %s: %v", existing.Email, err)
			}
		}
	}

	stdLog.Printf("Seed complete")
}
