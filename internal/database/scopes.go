package database

import (
	"gorm.io/gorm"

	"github.com/yukikurage/family-chores-api/internal/utils"
)

// Paginate applies pagination to a GORM query
func Paginate(params utils.PaginationParams) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(params.Offset).Limit(params.Limit)
	}
}

// VisibleToFamily restricts table rows to the given family plus the shared
// rows whose family_id is NULL (data created before families existed). A
// caller without a family only sees the shared rows.
func VisibleToFamily(table string, familyID *uint64) func(db *gorm.DB) *gorm.DB {
	column := table + ".family_id"
	return func(db *gorm.DB) *gorm.DB {
		if familyID == nil {
			return db.Where(column + " IS NULL")
		}
		return db.Where("("+column+" = ? OR "+column+" IS NULL)", *familyID)
	}
}

// InFamily restricts table rows to exactly one family.
func InFamily(table string, familyID uint64) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(table+".family_id = ?", familyID)
	}
}
