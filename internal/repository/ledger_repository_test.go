package repository

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/family-chores-api/internal/models"
	"github.com/yukikurage/family-chores-api/internal/testutil"
)

func TestAdjustPoints_NeverBelowZero(t *testing.T) {
	db := testutil.NewDB(t)
	family, _ := testutil.CreateFamily(t, db, "Smith")
	child := testutil.CreateMember(t, db, family, "leo", models.RoleChild)
	testutil.SetPoints(t, db, child.ID, 10)

	require.NoError(t, adjustPoints(db, child.ID, -10))
	assert.Equal(t, 0, testutil.Points(t, db, child.ID))

	assert.ErrorIs(t, adjustPoints(db, child.ID, -1), ErrInsufficientPoints)
	assert.Equal(t, 0, testutil.Points(t, db, child.ID))

	assert.ErrorIs(t, adjustPoints(db, 999, 5), ErrInsufficientPoints)
	assert.NoError(t, adjustPoints(db, child.ID, 0))
}

func TestCreateRedemption_ConcurrentRequestsCannotOverdraw(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewLedgerRepository(db)
	family, _ := testutil.CreateFamily(t, db, "Smith")
	child := testutil.CreateMember(t, db, family, "leo", models.RoleChild)
	gift := testutil.CreateGift(t, db, family, "Sticker", 10)
	testutil.SetPoints(t, db, child.ID, 50)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.CreateRedemption(context.Background(), child.ID, gift); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			} else {
				assert.ErrorIs(t, err, ErrInsufficientPoints)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, succeeded)
	assert.Equal(t, 0, testutil.Points(t, db, child.ID))

	var rows int64
	db.Model(&models.UserGift{}).Count(&rows)
	assert.Equal(t, int64(5), rows)
}

func TestRecordCompletion_OncePerDay(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewLedgerRepository(db)
	ctx := context.Background()
	family, _ := testutil.CreateFamily(t, db, "Smith")
	child := testutil.CreateMember(t, db, family, "leo", models.RoleChild)
	task := testutil.CreateTask(t, db, family, "Dishes", 10)

	_, err := repo.RecordCompletion(ctx, child.ID, task, "2026-03-14")
	require.NoError(t, err)
	_, err = repo.RecordCompletion(ctx, child.ID, task, "2026-03-14")
	assert.ErrorIs(t, err, ErrAlreadyCompleted)
	_, err = repo.RecordCompletion(ctx, child.ID, task, "2026-03-15")
	require.NoError(t, err)

	assert.Equal(t, 20, testutil.Points(t, db, child.ID))
}

func TestTransitionRedemption_AppliesStatusAndBalanceTogether(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewLedgerRepository(db)
	ctx := context.Background()
	family, _ := testutil.CreateFamily(t, db, "Smith")
	child := testutil.CreateMember(t, db, family, "leo", models.RoleChild)
	gift := testutil.CreateGift(t, db, family, "Sticker", 10)
	testutil.SetPoints(t, db, child.ID, 10)

	redemption, err := repo.CreateRedemption(ctx, child.ID, gift)
	require.NoError(t, err)

	_, err = repo.TransitionRedemption(ctx, redemption.ID, func(current *models.UserGift) (models.RedemptionStatus, int, error) {
		assert.Equal(t, child.ID, current.User.ID)
		assert.Equal(t, "Sticker", current.Gift.Title)
		return models.RedemptionRejected, current.PointsSpent, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 10, testutil.Points(t, db, child.ID))

	// A failed balance change undoes the status write with it
	_, err = repo.TransitionRedemption(ctx, redemption.ID, func(current *models.UserGift) (models.RedemptionStatus, int, error) {
		return models.RedemptionRejected, -100, nil
	})
	assert.ErrorIs(t, err, ErrInsufficientPoints)
	assert.Equal(t, 10, testutil.Points(t, db, child.ID))

	var stored models.UserGift
	require.NoError(t, db.First(&stored, redemption.ID).Error)
	assert.Equal(t, models.RedemptionRejected, stored.Status)
}

func TestListCompletions_FilterAndOrder(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewLedgerRepository(db)
	ctx := context.Background()
	family, _ := testutil.CreateFamily(t, db, "Smith")
	other, _ := testutil.CreateFamily(t, db, "Jones")
	child := testutil.CreateMember(t, db, family, "leo", models.RoleChild)
	stranger := testutil.CreateMember(t, db, other, "tom", models.RoleChild)
	task := testutil.CreateTask(t, db, nil, "Shared", 5)

	for _, day := range []string{"2026-03-01", "2026-03-02", "2026-03-03"} {
		_, err := repo.RecordCompletion(ctx, child.ID, task, day)
		require.NoError(t, err)
	}
	_, err := repo.RecordCompletion(ctx, stranger.ID, task, "2026-03-01")
	require.NoError(t, err)

	rows, total, err := repo.ListCompletions(ctx, LedgerFilter{FamilyID: &family.ID, Page: 1, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, rows, 2)
	assert.Equal(t, "2026-03-03", *rows[0].CompletionDay)
	assert.Equal(t, "leo", rows[0].User.Name)
	assert.Equal(t, "Shared", rows[0].Task.Title)
}
