package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yukikurage/family-chores-api/internal/constants"
	"github.com/yukikurage/family-chores-api/internal/logging"
	"github.com/yukikurage/family-chores-api/internal/models"
	"github.com/yukikurage/family-chores-api/internal/repository"
	"github.com/yukikurage/family-chores-api/internal/utils"
	"gorm.io/gorm"
)

var ErrInvalidPlan = utils.ValidationError{Field: "plan", Message: "plan must be monthly or yearly"}

// SubscriptionService tracks the ad-free premium period of a family.
// Receipt verification happens in the app stores, not here.
type SubscriptionService struct {
	familyRepo repository.FamilyRepository
	now        func() time.Time
	log        *logrus.Logger
}

// NewSubscriptionService creates a new SubscriptionService
func NewSubscriptionService(familyRepo repository.FamilyRepository, log *logrus.Logger) *SubscriptionService {
	if log == nil {
		log = logging.Discard()
	}
	return &SubscriptionService{
		familyRepo: familyRepo,
		now:        time.Now,
		log:        log,
	}
}

// Subscription is what the mobile wrapper needs to decide whether to show ads
type Subscription struct {
	Premium      bool
	PremiumUntil *time.Time
	ShowAds      bool
}

// PlanDays maps a plan name to the days it adds
func PlanDays(plan string) (int, error) {
	switch plan {
	case constants.PlanMonthly:
		return constants.MonthlyPlanDays, nil
	case constants.PlanYearly:
		return constants.YearlyPlanDays, nil
	default:
		return 0, ErrInvalidPlan
	}
}

// GetSubscription reports the caller's family premium state. Persons without
// a family are never premium.
func (s *SubscriptionService) GetSubscription(ctx context.Context, identity Identity) (*Subscription, error) {
	if identity.FamilyID == nil {
		return &Subscription{ShowAds: true}, nil
	}

	family, err := s.findFamily(ctx, *identity.FamilyID)
	if err != nil {
		return nil, err
	}
	return s.subscriptionOf(family), nil
}

// Activate extends the caller's family premium period by a plan
func (s *SubscriptionService) Activate(ctx context.Context, identity Identity, plan string) (*Subscription, error) {
	if err := identity.requireAdmin(); err != nil {
		return nil, err
	}
	familyID, err := identity.requireFamily()
	if err != nil {
		return nil, err
	}
	days, err := PlanDays(plan)
	if err != nil {
		return nil, err
	}

	return s.Extend(ctx, familyID, days)
}

// Extend adds days of premium starting from now or from the current end,
// whichever is later
func (s *SubscriptionService) Extend(ctx context.Context, familyID uint64, days int) (*Subscription, error) {
	if days <= 0 {
		return nil, utils.ValidationError{Field: "days", Message: "days must be positive"}
	}

	family, err := s.familyRepo.ExtendPremium(ctx, familyID, s.now().UTC(), days)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFamilyNotFound
		}
		return nil, fmt.Errorf("failed to update subscription: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"family_id":     familyID,
		"days":          days,
		"premium_until": *family.PremiumUntil,
	}).Info("subscription extended")

	return s.subscriptionOf(family), nil
}

func (s *SubscriptionService) subscriptionOf(family *models.Family) *Subscription {
	premium := family.IsPremium(s.now())
	return &Subscription{
		Premium:      premium,
		PremiumUntil: family.PremiumUntil,
		ShowAds:      !premium,
	}
}

func (s *SubscriptionService) findFamily(ctx context.Context, familyID uint64) (*models.Family, error) {
	family, err := s.familyRepo.FindByID(ctx, familyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFamilyNotFound
		}
		return nil, fmt.Errorf("failed to find family: %w", err)
	}
	return family, nil
}
