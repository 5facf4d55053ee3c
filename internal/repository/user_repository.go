package repository

import (
	"context"

	"github.com/yukikurage/family-chores-api/internal/database"
	"github.com/yukikurage/family-chores-api/internal/models"
	"gorm.io/gorm"
)

// GormUserRepository is a GORM implementation of UserRepository
type GormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

// Create creates a new person; the balance always starts at zero
func (r *GormUserRepository) Create(ctx context.Context, user *models.User) error {
	user.Points = 0
	return r.db.WithContext(ctx).Omit("Points").Create(user).Error
}

// FindByID finds a person by ID
func (r *GormUserRepository) FindByID(ctx context.Context, id uint64) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindVisible finds a person by ID within the family scope
func (r *GormUserRepository) FindVisible(ctx context.Context, id uint64, familyID *uint64) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).
		Scopes(database.VisibleToFamily("users", familyID)).
		First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByName finds a person by login name
func (r *GormUserRepository) FindByName(ctx context.Context, name string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail finds a person by email
func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByInviteToken finds a person by name and invite token who has not set a password yet
func (r *GormUserRepository) FindByInviteToken(ctx context.Context, name, token string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).
		Where("name = ? AND temp_token = ? AND must_change_password = ?", name, token, true).
		First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByResetToken finds a person by a reset token. Invite tokens share the
// column and are only redeemable with the person's name, so they never match.
func (r *GormUserRepository) FindByResetToken(ctx context.Context, token string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).
		Where("temp_token = ? AND must_change_password = ?", token, false).
		First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// RedeemTempToken swaps the token for a password in one conditional update.
// A token already redeemed by a concurrent request matches no row.
func (r *GormUserRepository) RedeemTempToken(ctx context.Context, id uint64, token, passwordHash string) error {
	result := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND temp_token = ?", id, token).
		Updates(map[string]interface{}{
			"password_hash":         passwordHash,
			"temp_token":            nil,
			"temp_token_expires_at": nil,
			"must_change_password":  false,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListByFamily lists the members of a family, admins first
func (r *GormUserRepository) ListByFamily(ctx context.Context, familyID uint64) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).
		Scopes(database.InFamily("users", familyID)).
		Order("CASE role WHEN 'ADMIN' THEN 0 WHEN 'PARENT' THEN 1 ELSE 2 END, name ASC").
		Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// Update writes every column except the balance
func (r *GormUserRepository) Update(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Omit("Points").Save(user).Error
}

// Delete removes a person and their ledger rows in a transaction
func (r *GormUserRepository) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&models.UserTask{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.UserGift{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.User{}, id).Error
	})
}
