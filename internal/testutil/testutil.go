// Package testutil builds in-memory databases and fixtures for tests.
package testutil

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yukikurage/family-chores-api/internal/database"
	"github.com/yukikurage/family-chores-api/internal/logging"
	"github.com/yukikurage/family-chores-api/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Password is the plain password of every fixture person.
const Password = "password123"

// NewDB opens a migrated in-memory SQLite database and installs it as the
// default database. It is closed when the test ends.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), database.Options(logger.Silent))
	require.NoError(t, err)

	// Every connection to :memory: is a separate database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db, logging.Discard()))
	database.SetDB(db)

	t.Cleanup(func() {
		sqlDB.Close()
	})
	return db
}

// CreateFamily creates a family with an admin named "<name>-admin".
func CreateFamily(t *testing.T, db *gorm.DB, name string) (*models.Family, *models.User) {
	t.Helper()

	family := &models.Family{Name: name, InviteCode: fmt.Sprintf("CODE-%s", name)}
	require.NoError(t, db.Create(family).Error)

	admin := CreateMember(t, db, family, name+"-admin", models.RoleAdmin)
	require.NoError(t, db.Model(family).Update("admin_id", admin.ID).Error)
	family.AdminID = &admin.ID

	return family, admin
}

// CreateMember adds a person with the fixture password to family. A nil
// family creates a person without one.
func CreateMember(t *testing.T, db *gorm.DB, family *models.Family, name string, role models.Role) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{
		Name:         name,
		PasswordHash: string(hash),
		Role:         role,
	}
	if family != nil {
		user.FamilyID = &family.ID
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateTask adds an active task to family at the end of its order.
func CreateTask(t *testing.T, db *gorm.DB, family *models.Family, title string, points int) *models.Task {
	t.Helper()

	task := &models.Task{CatalogItem: catalogItem(t, db, "tasks", family, title, points)}
	require.NoError(t, db.Create(task).Error)
	return task
}

// CreateGift adds an active gift to family at the end of its order.
func CreateGift(t *testing.T, db *gorm.DB, family *models.Family, title string, cost int) *models.Gift {
	t.Helper()

	gift := &models.Gift{CatalogItem: catalogItem(t, db, "gifts", family, title, cost)}
	require.NoError(t, db.Create(gift).Error)
	return gift
}

func catalogItem(t *testing.T, db *gorm.DB, table string, family *models.Family, title string, points int) models.CatalogItem {
	t.Helper()

	item := models.CatalogItem{Title: title, Points: points, IsActive: true}
	query := db.Table(table)
	if family != nil {
		item.FamilyID = &family.ID
		query = query.Where("family_id = ?", family.ID)
	} else {
		query = query.Where("family_id IS NULL")
	}

	var count int64
	require.NoError(t, query.Count(&count).Error)
	item.SortOrder = int(count)
	return item
}

// SetPoints overwrites a balance directly, for arranging test state.
func SetPoints(t *testing.T, db *gorm.DB, userID uint64, points int) {
	t.Helper()
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", userID).
		UpdateColumn("points", points).Error)
}

// Points reads a balance straight from the database.
func Points(t *testing.T, db *gorm.DB, userID uint64) int {
	t.Helper()

	var user models.User
	require.NoError(t, db.Select("points").First(&user, userID).Error)
	return user.Points
}
