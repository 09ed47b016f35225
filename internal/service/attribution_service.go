package service

import (
	"strings"

	"github.com/Fuse-Health-Org/fuse-monorepo-sub008/internal/constants"
	"github.com/Fuse-Health-Org/fuse-monorepo-sub008/internal/logger"
	"github.com/Fuse-Health-Org/fuse-monorepo-sub008/internal/models"
	"github.com/Fuse-Health-Org/fuse-monorepo-sub008/internal/repository"
)

// RoleChecker answers whether a user holds a role. Satisfied by the
// authz service.
type RoleChecker interface {
	HasRole(userID uint, role string) (bool, error)
}

// AttributionService resolves which affiliate, if any, earns credit
// for an order.
type AttributionService struct {
	userRepo      repository.UserRepository
	roles         RoleChecker
	minHostLabels int
}

// NewAttributionService builds the attribution service. minHostLabels
// is how many dot-separated labels a referral host needs before its
// first label is treated as an affiliate slug.
func NewAttributionService(userRepo repository.UserRepository, roles RoleChecker, minHostLabels int) *AttributionService {
	if minHostLabels <= 0 {
		minHostLabels = 4
	}
	return &AttributionService{
		userRepo:      userRepo,
		roles:         roles,
		minHostLabels: minHostLabels,
	}
}

// AttributionResult is the outcome of one resolution attempt.
type AttributionResult struct {
	AffiliateID  uint   // zero when no affiliate earned credit
	ReferralHost string // host that produced the match, if any
}

// ResolveAffiliate returns the affiliate credited for an order. An
// explicit id wins over the referral host; a host only counts when it
// carries enough labels for its first label to be a vanity slug. A
// candidate without the affiliate role is dropped rather than failing
// the order.
func (s *AttributionService) ResolveAffiliate(explicitID uint, referralHost string) AttributionResult {
	if explicitID != 0 {
		user, err := s.userRepo.GetByID(explicitID)
		if err != nil {
			logger.Warnw("attribution_user_lookup_failed", "affiliate_id", explicitID, "error", err)
			return AttributionResult{}
		}
		if user == nil || !userIsActive(user) {
			logger.Warnw("attribution_user_unavailable", "affiliate_id", explicitID)
			return AttributionResult{}
		}
		ok, err := s.hasAffiliateRole(user.ID)
		if err != nil {
			logger.Warnw("attribution_role_check_failed", "affiliate_id", explicitID, "error", err)
			return AttributionResult{}
		}
		if !ok {
			logger.Warnw("attribution_role_missing", "affiliate_id", explicitID)
			return AttributionResult{}
		}
		return AttributionResult{AffiliateID: user.ID}
	}

	host := strings.ToLower(strings.TrimSpace(referralHost))
	if host == "" {
		return AttributionResult{}
	}
	labels := strings.Split(host, ".")
	if len(labels) < s.minHostLabels {
		return AttributionResult{}
	}
	slug := labels[0]
	if slug == "" {
		return AttributionResult{}
	}

	user, err := s.userRepo.GetByWebsite(slug)
	if err != nil {
		logger.Warnw("attribution_slug_lookup_failed", "host", host, "error", err)
		return AttributionResult{}
	}
	if user == nil || !userIsActive(user) {
		return AttributionResult{}
	}

	ok, err := s.hasAffiliateRole(user.ID)
	if err != nil {
		logger.Warnw("attribution_role_check_failed", "affiliate_id", user.ID, "error", err)
		return AttributionResult{}
	}
	if !ok {
		return AttributionResult{}
	}
	return AttributionResult{AffiliateID: user.ID, ReferralHost: host}
}

func (s *AttributionService) hasAffiliateRole(userID uint) (bool, error) {
	if s.roles == nil {
		return false, nil
	}
	return s.roles.HasRole(userID, constants.RoleAffiliate)
}

// userIsActive guards attribution against stale role grants on
// suspended or deleted accounts.
func userIsActive(user *models.User) bool {
	return strings.EqualFold(strings.TrimSpace(user.Status), constants.UserStatusActive)
}
