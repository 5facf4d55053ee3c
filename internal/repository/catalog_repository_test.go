package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/family-chores-api/internal/models"
	"github.com/yukikurage/family-chores-api/internal/testutil"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestReorder_RollsBackOnUnknownID(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	familyID := uint64(1)
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `tasks`").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectRollback()

	err = NewTaskRepository(db).Reorder(context.Background(), &familyID, []uint64{2, 99, 3})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReorder_UnchangedPositionsSucceed(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	// MySQL reports zero affected rows when sort_order already matches
	familyID := uint64(1)
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `tasks`").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectExec("UPDATE `tasks` SET `sort_order`").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("UPDATE `tasks` SET `sort_order`").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err = NewTaskRepository(db).Reorder(context.Background(), &familyID, []uint64{2, 3})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogRepository_CreateAppendsPerFamily(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewGiftRepository(db)
	ctx := context.Background()

	family, _ := testutil.CreateFamily(t, db, "Smith")
	other, _ := testutil.CreateFamily(t, db, "Jones")
	testutil.CreateGift(t, db, other, "Bike", 100)
	testutil.CreateGift(t, db, other, "Kite", 20)

	first := &models.Gift{CatalogItem: models.CatalogItem{Title: "Toy", Points: 5, IsActive: true, FamilyID: &family.ID}}
	second := &models.Gift{CatalogItem: models.CatalogItem{Title: "Book", Points: 8, IsActive: true, FamilyID: &family.ID}}
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))

	assert.Equal(t, 0, first.SortOrder)
	assert.Equal(t, 1, second.SortOrder)
}

func TestCatalogRepository_Visibility(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewTaskRepository(db)
	ctx := context.Background()

	family, _ := testutil.CreateFamily(t, db, "Smith")
	other, _ := testutil.CreateFamily(t, db, "Jones")
	own := testutil.CreateTask(t, db, family, "Dishes", 10)
	shared := testutil.CreateTask(t, db, nil, "Brush teeth", 5)
	foreign := testutil.CreateTask(t, db, other, "Walk the dog", 15)

	_, err := repo.FindVisible(ctx, own.ID, &family.ID)
	assert.NoError(t, err)
	_, err = repo.FindVisible(ctx, shared.ID, &family.ID)
	assert.NoError(t, err)
	_, err = repo.FindVisible(ctx, foreign.ID, &family.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	// Without a family only shared rows are visible
	_, err = repo.FindVisible(ctx, own.ID, nil)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	items, err := repo.ListActive(ctx, nil)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, shared.ID, items[0].ID)

	found, err := repo.FindByID(ctx, foreign.ID)
	require.NoError(t, err)
	assert.Equal(t, other.ID, *found.FamilyID)
}
