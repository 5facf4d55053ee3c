package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/family-chores-api/internal/models"
	"github.com/yukikurage/family-chores-api/internal/repository"
	"github.com/yukikurage/family-chores-api/internal/testutil"
)

func TestSubscription(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	service := NewSubscriptionService(repository.NewFamilyRepository(db), nil)
	now := time.Date(2026, 1, 10, 8, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return now }

	family, admin := testutil.CreateFamily(t, db, "Smith")
	parent := testutil.CreateMember(t, db, family, "smith-parent", models.RoleParent)
	loner := testutil.CreateMember(t, db, nil, "loner", models.RoleParent)

	sub, err := service.GetSubscription(ctx, IdentityOf(parent))
	require.NoError(t, err)
	assert.False(t, sub.Premium)
	assert.True(t, sub.ShowAds)

	sub, err = service.GetSubscription(ctx, IdentityOf(loner))
	require.NoError(t, err)
	assert.True(t, sub.ShowAds)

	_, err = service.Activate(ctx, IdentityOf(parent), "monthly")
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = service.Activate(ctx, IdentityOf(admin), "weekly")
	assert.ErrorIs(t, err, ErrInvalidPlan)

	sub, err = service.Activate(ctx, IdentityOf(admin), "monthly")
	require.NoError(t, err)
	assert.True(t, sub.Premium)
	assert.False(t, sub.ShowAds)
	assert.True(t, now.AddDate(0, 0, 30).Equal(*sub.PremiumUntil))

	// A renewal stacks on the remaining period
	sub, err = service.Activate(ctx, IdentityOf(admin), "yearly")
	require.NoError(t, err)
	assert.True(t, now.AddDate(0, 0, 30).AddDate(0, 0, 365).Equal(*sub.PremiumUntil))

	now = now.AddDate(2, 0, 0)
	sub, err = service.GetSubscription(ctx, IdentityOf(parent))
	require.NoError(t, err)
	assert.False(t, sub.Premium)
	assert.True(t, sub.ShowAds)
}

func TestSubscription_ConcurrentActivationsAddUp(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	service := NewSubscriptionService(repository.NewFamilyRepository(db), nil)
	now := time.Date(2026, 1, 10, 8, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return now }

	_, admin := testutil.CreateFamily(t, db, "Smith")

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := service.Activate(ctx, IdentityOf(admin), "monthly")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	sub, err := service.GetSubscription(ctx, IdentityOf(admin))
	require.NoError(t, err)
	require.NotNil(t, sub.PremiumUntil)
	assert.True(t, now.AddDate(0, 0, 120).Equal(*sub.PremiumUntil), "got %s", sub.PremiumUntil)
}

func TestSubscriptionExtend(t *testing.T) {
	db := testutil.NewDB(t)
	service := NewSubscriptionService(repository.NewFamilyRepository(db), nil)

	family, _ := testutil.CreateFamily(t, db, "Smith")

	_, err := service.Extend(context.Background(), family.ID, 0)
	assert.Error(t, err)

	_, err = service.Extend(context.Background(), 999, 10)
	assert.ErrorIs(t, err, ErrFamilyNotFound)

	sub, err := service.Extend(context.Background(), family.ID, 10)
	require.NoError(t, err)
	assert.True(t, sub.Premium)

	var stored models.Family
	require.NoError(t, db.First(&stored, family.ID).Error)
	require.NotNil(t, stored.PremiumUntil)
	assert.WithinDuration(t, time.Now().AddDate(0, 0, 10), *stored.PremiumUntil, time.Minute)
}

func TestPlanDays(t *testing.T) {
	days, err := PlanDays("yearly")
	require.NoError(t, err)
	assert.Equal(t, 365, days)

	_, err = PlanDays("")
	assert.ErrorIs(t, err, ErrInvalidPlan)
}
