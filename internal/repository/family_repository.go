package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yukikurage/family-chores-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrCreateFamily is returned when creating the family row fails inside the registration transaction.
	ErrCreateFamily = errors.New("family repository: create family failed")
	// ErrCreateAdmin is returned when creating the admin person fails inside the registration transaction.
	ErrCreateAdmin = errors.New("family repository: create admin failed")
	// ErrSeedCatalog is returned when copying the default catalog fails.
	ErrSeedCatalog = errors.New("family repository: seed catalog failed")
)

// GormFamilyRepository is a GORM implementation of FamilyRepository
type GormFamilyRepository struct {
	db *gorm.DB
}

// NewFamilyRepository creates a new FamilyRepository
func NewFamilyRepository(db *gorm.DB) FamilyRepository {
	return &GormFamilyRepository{db: db}
}

// CreateWithAdmin creates the family, its admin and the starter catalog atomically.
// The admin link is written last because the admin row needs the family ID first.
func (r *GormFamilyRepository) CreateWithAdmin(ctx context.Context, family *models.Family, admin *models.User, tasks []models.Task, gifts []models.Gift) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(family).Error; err != nil {
			return fmt.Errorf("%w: %w", ErrCreateFamily, err)
		}

		admin.FamilyID = &family.ID
		admin.Role = models.RoleAdmin
		if err := tx.Omit("Points").Create(admin).Error; err != nil {
			return fmt.Errorf("%w: %w", ErrCreateAdmin, err)
		}

		if err := tx.Model(family).Update("admin_id", admin.ID).Error; err != nil {
			return fmt.Errorf("%w: %w", ErrCreateFamily, err)
		}
		family.AdminID = &admin.ID

		return seedCatalog(tx, family.ID, tasks, gifts)
	})
}

// SeedCatalog copies catalog items into an existing family, after the items
// it already has
func (r *GormFamilyRepository) SeedCatalog(ctx context.Context, familyID uint64, tasks []models.Task, gifts []models.Gift) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var taskOffset, giftOffset int
		if err := tx.Model(&models.Task{}).Where("family_id = ?", familyID).
			Select("COALESCE(MAX(sort_order), -1) + 1").Scan(&taskOffset).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Gift{}).Where("family_id = ?", familyID).
			Select("COALESCE(MAX(sort_order), -1) + 1").Scan(&giftOffset).Error; err != nil {
			return err
		}
		for i := range tasks {
			tasks[i].SortOrder += taskOffset
		}
		for i := range gifts {
			gifts[i].SortOrder += giftOffset
		}
		return seedCatalog(tx, familyID, tasks, gifts)
	})
}

func seedCatalog(tx *gorm.DB, familyID uint64, tasks []models.Task, gifts []models.Gift) error {
	for i := range tasks {
		tasks[i].FamilyID = &familyID
	}
	for i := range gifts {
		gifts[i].FamilyID = &familyID
	}

	if len(tasks) > 0 {
		if err := tx.Create(&tasks).Error; err != nil {
			return fmt.Errorf("%w: %w", ErrSeedCatalog, err)
		}
	}
	if len(gifts) > 0 {
		if err := tx.Create(&gifts).Error; err != nil {
			return fmt.Errorf("%w: %w", ErrSeedCatalog, err)
		}
	}
	return nil
}

// FindByID finds a family by ID
func (r *GormFamilyRepository) FindByID(ctx context.Context, id uint64) (*models.Family, error) {
	var family models.Family
	if err := r.db.WithContext(ctx).First(&family, id).Error; err != nil {
		return nil, err
	}
	return &family, nil
}

// FindByInviteCode finds a family by invite code
func (r *GormFamilyRepository) FindByInviteCode(ctx context.Context, code string) (*models.Family, error) {
	var family models.Family
	if err := r.db.WithContext(ctx).Where("invite_code = ?", code).First(&family).Error; err != nil {
		return nil, err
	}
	return &family, nil
}

// Update writes the name and invite code only. premium_until belongs to
// ExtendPremium.
func (r *GormFamilyRepository) Update(ctx context.Context, family *models.Family) error {
	return r.db.WithContext(ctx).Model(family).Select("name", "invite_code", "updated_at").Updates(family).Error
}

// ExtendPremium reads and writes premium_until under a row lock so concurrent
// extensions add up
func (r *GormFamilyRepository) ExtendPremium(ctx context.Context, id uint64, now time.Time, days int) (*models.Family, error) {
	var family models.Family

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&family, id).Error; err != nil {
			return err
		}

		start := now
		if family.PremiumUntil != nil && family.PremiumUntil.After(start) {
			start = *family.PremiumUntil
		}
		until := start.AddDate(0, 0, days)

		if err := tx.Model(&models.Family{}).Where("id = ?", id).Update("premium_until", until).Error; err != nil {
			return err
		}
		family.PremiumUntil = &until
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &family, nil
}

// Delete wipes a family: ledger rows of its members and catalog, then the
// catalog, the members and the family itself.
func (r *GormFamilyRepository) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		members := tx.Model(&models.User{}).Select("id").Where("family_id = ?", id)
		tasks := tx.Model(&models.Task{}).Select("id").Where("family_id = ?", id)
		gifts := tx.Model(&models.Gift{}).Select("id").Where("family_id = ?", id)

		if err := tx.Where("user_id IN (?) OR task_id IN (?)", members, tasks).Delete(&models.UserTask{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id IN (?) OR gift_id IN (?)", members, gifts).Delete(&models.UserGift{}).Error; err != nil {
			return err
		}
		if err := tx.Where("family_id = ?", id).Delete(&models.Task{}).Error; err != nil {
			return err
		}
		if err := tx.Where("family_id = ?", id).Delete(&models.Gift{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Family{}).Where("id = ?", id).Update("admin_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Where("family_id = ?", id).Delete(&models.User{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Family{}, id).Error
	})
}
