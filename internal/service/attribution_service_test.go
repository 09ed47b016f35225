package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/Fuse-Health-Org/fuse-monorepo-sub008/internal/constants"
	"github.com/Fuse-Health-Org/fuse-monorepo-sub008/internal/models"
	"github.com/Fuse-Health-Org/fuse-monorepo-sub008/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

// fakeRoleChecker grants the affiliate role to a fixed set of users.
type fakeRoleChecker struct {
	affiliates map[uint]bool
	err        error
}

func (f *fakeRoleChecker) HasRole(userID uint, role string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	if role != constants.RoleAffiliate {
		return false, nil
	}
	return f.affiliates[userID], nil
}

func setupAttributionServiceTest(t *testing.T, roles RoleChecker) (*AttributionService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:attribution_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db
	return NewAttributionService(repository.NewUserRepository(db), roles, 4), db
}

func createTestAffiliate(t *testing.T, db *gorm.DB, id uint, website string) {
	t.Helper()
	user := models.User{
		ID:      id,
		Email:   fmt.Sprintf("affiliate_%d@example.com", id),
		Website: website,
		Status:  "active",
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
}

func TestResolveAffiliateExplicitID(t *testing.T) {
	roles := &fakeRoleChecker{affiliates: map[uint]bool{7: true}}
	svc, db := setupAttributionServiceTest(t, roles)
	createTestAffiliate(t, db, 7, "checktwo")

	result := svc.ResolveAffiliate(7, "checktwo.limitless.fuse.example.com")
	if result.AffiliateID != 7 {
		t.Fatalf("expected affiliate 7, got %d", result.AffiliateID)
	}
}

func TestResolveAffiliateExplicitIDWithoutRole(t *testing.T) {
	roles := &fakeRoleChecker{affiliates: map[uint]bool{}}
	svc, db := setupAttributionServiceTest(t, roles)
	createTestAffiliate(t, db, 7, "checktwo")

	result := svc.ResolveAffiliate(7, "")
	if result.AffiliateID != 0 {
		t.Fatalf("expected no attribution, got %d", result.AffiliateID)
	}
}

func TestResolveAffiliateExplicitIDDeletedUser(t *testing.T) {
	// the role grant is stale: no user row backs it anymore
	roles := &fakeRoleChecker{affiliates: map[uint]bool{7: true}}
	svc, _ := setupAttributionServiceTest(t, roles)

	result := svc.ResolveAffiliate(7, "")
	if result.AffiliateID != 0 {
		t.Fatalf("expected no attribution for a deleted user, got %d", result.AffiliateID)
	}
}

func TestResolveAffiliateExplicitIDSuspendedUser(t *testing.T) {
	roles := &fakeRoleChecker{affiliates: map[uint]bool{7: true}}
	svc, db := setupAttributionServiceTest(t, roles)
	createTestAffiliate(t, db, 7, "checktwo")
	if err := db.Model(&models.User{}).Where("id = ?", 7).Update("status", constants.UserStatusSuspended).Error; err != nil {
		t.Fatalf("suspend user failed: %v", err)
	}

	result := svc.ResolveAffiliate(7, "")
	if result.AffiliateID != 0 {
		t.Fatalf("expected no attribution for a suspended user, got %d", result.AffiliateID)
	}
}

func TestResolveAffiliateSuspendedSlugUser(t *testing.T) {
	roles := &fakeRoleChecker{affiliates: map[uint]bool{7: true}}
	svc, db := setupAttributionServiceTest(t, roles)
	createTestAffiliate(t, db, 7, "checktwo")
	if err := db.Model(&models.User{}).Where("id = ?", 7).Update("status", constants.UserStatusSuspended).Error; err != nil {
		t.Fatalf("suspend user failed: %v", err)
	}

	result := svc.ResolveAffiliate(0, "checktwo.limitless.fuse.example.com")
	if result.AffiliateID != 0 {
		t.Fatalf("expected no attribution for a suspended user, got %d", result.AffiliateID)
	}
}

func TestResolveAffiliateFromHost(t *testing.T) {
	roles := &fakeRoleChecker{affiliates: map[uint]bool{7: true}}
	svc, db := setupAttributionServiceTest(t, roles)
	createTestAffiliate(t, db, 7, "checktwo")

	result := svc.ResolveAffiliate(0, "CheckTwo.Limitless.Fuse.Example.Com")
	if result.AffiliateID != 7 {
		t.Fatalf("expected affiliate 7, got %d", result.AffiliateID)
	}
	if result.ReferralHost != "checktwo.limitless.fuse.example.com" {
		t.Fatalf("unexpected referral host %q", result.ReferralHost)
	}
}

func TestResolveAffiliateHostTooShort(t *testing.T) {
	roles := &fakeRoleChecker{affiliates: map[uint]bool{7: true}}
	svc, db := setupAttributionServiceTest(t, roles)
	createTestAffiliate(t, db, 7, "checktwo")

	// three labels never carry a vanity slug
	result := svc.ResolveAffiliate(0, "checktwo.example.com")
	if result.AffiliateID != 0 {
		t.Fatalf("expected no attribution, got %d", result.AffiliateID)
	}
}

func TestResolveAffiliateSlugWithoutRole(t *testing.T) {
	roles := &fakeRoleChecker{affiliates: map[uint]bool{}}
	svc, db := setupAttributionServiceTest(t, roles)
	createTestAffiliate(t, db, 7, "checktwo")

	result := svc.ResolveAffiliate(0, "checktwo.limitless.fuse.example.com")
	if result.AffiliateID != 0 {
		t.Fatalf("expected no attribution, got %d", result.AffiliateID)
	}
}

func TestResolveAffiliateUnknownSlug(t *testing.T) {
	roles := &fakeRoleChecker{affiliates: map[uint]bool{7: true}}
	svc, _ := setupAttributionServiceTest(t, roles)

	result := svc.ResolveAffiliate(0, "nobody.limitless.fuse.example.com")
	if result.AffiliateID != 0 {
		t.Fatalf("expected no attribution, got %d", result.AffiliateID)
	}
}

func TestResolveAffiliateRoleCheckError(t *testing.T) {
	roles := &fakeRoleChecker{err: fmt.Errorf("enforcer unavailable")}
	svc, db := setupAttributionServiceTest(t, roles)
	createTestAffiliate(t, db, 7, "checktwo")

	result := svc.ResolveAffiliate(7, "")
	if result.AffiliateID != 0 {
		t.Fatalf("expected no attribution on role check error, got %d", result.AffiliateID)
	}
}
