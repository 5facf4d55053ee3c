package repository

import (
	"context"

	"github.com/yukikurage/family-chores-api/internal/database"
	"github.com/yukikurage/family-chores-api/internal/models"
	"gorm.io/gorm"
)

// GormCatalogRepository is a GORM implementation of CatalogRepository for
// tasks and gifts. P is the pointer type of T and exposes the shared columns.
type GormCatalogRepository[T any, P models.Cataloged[T]] struct {
	db    *gorm.DB
	table string
}

// NewCatalogRepository creates a CatalogRepository backed by table
func NewCatalogRepository[T any, P models.Cataloged[T]](db *gorm.DB, table string) CatalogRepository[T] {
	return &GormCatalogRepository[T, P]{db: db, table: table}
}

// NewTaskRepository creates the catalog repository for tasks
func NewTaskRepository(db *gorm.DB) CatalogRepository[models.Task] {
	return NewCatalogRepository[models.Task](db, "tasks")
}

// NewGiftRepository creates the catalog repository for gifts
func NewGiftRepository(db *gorm.DB) CatalogRepository[models.Gift] {
	return NewCatalogRepository[models.Gift](db, "gifts")
}

// Create appends the item after the last one visible to its family
func (r *GormCatalogRepository[T, P]) Create(ctx context.Context, item *T) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		fields := P(item).Item()

		var maxOrder int
		if err := tx.Model(new(T)).
			Scopes(database.VisibleToFamily(r.table, fields.FamilyID)).
			Select("COALESCE(MAX(sort_order), -1)").
			Scan(&maxOrder).Error; err != nil {
			return err
		}

		fields.SortOrder = maxOrder + 1
		return tx.Create(item).Error
	})
}

// FindByID finds an item by ID regardless of family
func (r *GormCatalogRepository[T, P]) FindByID(ctx context.Context, id uint64) (*T, error) {
	item := new(T)
	if err := r.db.WithContext(ctx).First(item, id).Error; err != nil {
		return nil, err
	}
	return item, nil
}

// FindVisible finds an item by ID within the family scope
func (r *GormCatalogRepository[T, P]) FindVisible(ctx context.Context, id uint64, familyID *uint64) (*T, error) {
	item := new(T)
	if err := r.db.WithContext(ctx).
		Scopes(database.VisibleToFamily(r.table, familyID)).
		First(item, id).Error; err != nil {
		return nil, err
	}
	return item, nil
}

// ListActive lists active items within the family scope
func (r *GormCatalogRepository[T, P]) ListActive(ctx context.Context, familyID *uint64) ([]T, error) {
	var items []T
	if err := r.db.WithContext(ctx).
		Scopes(database.VisibleToFamily(r.table, familyID)).
		Where(r.table+".is_active = ?", true).
		Order(r.table + ".sort_order ASC").
		Order(r.table + ".id ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Update updates an item
func (r *GormCatalogRepository[T, P]) Update(ctx context.Context, item *T) error {
	return r.db.WithContext(ctx).Save(item).Error
}

// Delete deletes an item
func (r *GormCatalogRepository[T, P]) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Delete(new(T), id).Error
}

// Reorder rewrites sort_order to each ID's position. An ID outside the family
// scope aborts the whole transaction with gorm.ErrRecordNotFound. The IDs are
// counted up front since MySQL reports only changed rows as affected.
func (r *GormCatalogRepository[T, P]) Reorder(ctx context.Context, familyID *uint64, ids []uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var visible int64
		if err := tx.Model(new(T)).
			Scopes(database.VisibleToFamily(r.table, familyID)).
			Where(r.table+".id IN ?", ids).
			Count(&visible).Error; err != nil {
			return err
		}
		if visible != int64(len(ids)) {
			return gorm.ErrRecordNotFound
		}
		for position, id := range ids {
			if err := tx.Model(new(T)).
				Scopes(database.VisibleToFamily(r.table, familyID)).
				Where(r.table+".id = ?", id).
				Update("sort_order", position).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
