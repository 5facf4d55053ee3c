package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/family-chores-api/internal/models"
	"github.com/yukikurage/family-chores-api/internal/repository"
	"github.com/yukikurage/family-chores-api/internal/testutil"
)

func TestStats(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	service := NewStatsService(repository.NewLedgerRepository(db), repository.NewUserRepository(db))
	now := time.Now().UTC()
	service.now = func() time.Time { return now }

	family, admin := testutil.CreateFamily(t, db, "Smith")
	child := testutil.CreateMember(t, db, family, "smith-child", models.RoleChild)
	task := testutil.CreateTask(t, db, family, "Dishes", 10)
	gift := testutil.CreateGift(t, db, family, "Toy", 15)
	testutil.SetPoints(t, db, child.ID, 5)

	day := func(offset int) *string {
		d := now.AddDate(0, 0, offset).Format("2006-01-02")
		return &d
	}
	rows := []models.UserTask{
		{UserID: child.ID, TaskID: task.ID, Status: models.CompletionCompleted, CompletionDay: day(0), PointsAwarded: 10, CreatedAt: now.Add(-time.Hour)},
		{UserID: child.ID, TaskID: task.ID, Status: models.CompletionCompleted, CompletionDay: day(-3), PointsAwarded: 10, CreatedAt: now.AddDate(0, 0, -3)},
		{UserID: child.ID, TaskID: task.ID, Status: models.CompletionCompleted, CompletionDay: day(-20), PointsAwarded: 10, CreatedAt: now.AddDate(0, 0, -20)},
		{UserID: child.ID, TaskID: task.ID, Status: models.CompletionRejected, PointsAwarded: 10, CreatedAt: now.AddDate(0, 0, -1)},
	}
	require.NoError(t, db.Create(&rows).Error)
	redemptions := []models.UserGift{
		{UserID: child.ID, GiftID: gift.ID, Status: models.RedemptionRedeemed, PointsSpent: 15, CreatedAt: now.AddDate(0, 0, -2)},
		{UserID: child.ID, GiftID: gift.ID, Status: models.RedemptionRejected, PointsSpent: 15, CreatedAt: now.AddDate(0, 0, -2)},
	}
	require.NoError(t, db.Create(&redemptions).Error)

	week, err := service.Stats(ctx, IdentityOf(admin), "week")
	require.NoError(t, err)
	assert.Equal(t, "week", week.Window)
	require.Len(t, week.Members, 2)

	var childStats MemberStats
	for _, member := range week.Members {
		if member.UserID == child.ID {
			childStats = member
		}
	}
	assert.Equal(t, int64(2), childStats.TasksCompleted)
	assert.Equal(t, int64(20), childStats.PointsEarned)
	assert.Equal(t, int64(1), childStats.GiftsRedeemed)
	assert.Equal(t, int64(15), childStats.PointsSpent)
	assert.Equal(t, 5, childStats.Balance)
	assert.Equal(t, int64(2), week.Totals.TasksCompleted)

	month, err := service.Stats(ctx, IdentityOf(admin), "month")
	require.NoError(t, err)
	assert.Equal(t, int64(3), month.Totals.TasksCompleted)
	assert.Equal(t, int64(30), month.Totals.PointsEarned)

	_, err = service.Stats(ctx, IdentityOf(admin), "year")
	assert.ErrorIs(t, err, ErrInvalidWindow)

	_, err = service.Stats(ctx, IdentityOf(child), "week")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestStats_OnlyCountsOwnFamily(t *testing.T) {
	db := testutil.NewDB(t)
	service := NewStatsService(repository.NewLedgerRepository(db), repository.NewUserRepository(db))

	family, admin := testutil.CreateFamily(t, db, "Smith")
	other, _ := testutil.CreateFamily(t, db, "Jones")
	stranger := testutil.CreateMember(t, db, other, "jones-child", models.RoleChild)
	task := testutil.CreateTask(t, db, family, "Dishes", 10)
	day := time.Now().UTC().Format("2006-01-02")
	require.NoError(t, db.Create(&models.UserTask{
		UserID: stranger.ID, TaskID: task.ID, Status: models.CompletionCompleted, CompletionDay: &day, PointsAwarded: 10,
	}).Error)

	stats, err := service.Stats(context.Background(), IdentityOf(admin), "week")
	require.NoError(t, err)
	assert.Len(t, stats.Members, 1)
	assert.Zero(t, stats.Totals.TasksCompleted)
}
