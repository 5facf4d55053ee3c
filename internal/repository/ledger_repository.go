package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yukikurage/family-chores-api/internal/database"
	"github.com/yukikurage/family-chores-api/internal/models"
	"github.com/yukikurage/family-chores-api/internal/utils"
	"gorm.io/gorm"
)

var (
	// ErrInsufficientPoints is returned when a balance change would go below zero.
	ErrInsufficientPoints = errors.New("ledger repository: insufficient points")
	// ErrAlreadyCompleted is returned when the person already has a COMPLETED row for the task and day.
	ErrAlreadyCompleted = errors.New("ledger repository: already completed for day")
	// ErrStaleState is returned when a row changed status between read and write.
	ErrStaleState = errors.New("ledger repository: status changed concurrently")
)

// GormLedgerRepository is a GORM implementation of LedgerRepository
type GormLedgerRepository struct {
	db *gorm.DB
}

// NewLedgerRepository creates a new LedgerRepository
func NewLedgerRepository(db *gorm.DB) LedgerRepository {
	return &GormLedgerRepository{db: db}
}

// adjustPoints is the only write to users.points. The guard in the WHERE
// clause makes the check and the update one statement, so concurrent
// transactions on the same person serialize on the row and cannot overdraw.
func adjustPoints(tx *gorm.DB, userID uint64, delta int) error {
	if delta == 0 {
		return nil
	}

	result := tx.Model(&models.User{}).
		Where("id = ? AND points + ? >= 0", userID, delta).
		UpdateColumn("points", gorm.Expr("points + ?", delta))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrInsufficientPoints
	}
	return nil
}

// RecordCompletion stores a COMPLETED row for day and awards the task's points
func (r *GormLedgerRepository) RecordCompletion(ctx context.Context, userID uint64, task *models.Task, day string) (*models.UserTask, error) {
	completion := &models.UserTask{
		UserID:        userID,
		TaskID:        task.ID,
		Status:        models.CompletionCompleted,
		CompletionDay: &day,
		PointsAwarded: task.Points,
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&models.UserTask{}).
			Where("user_id = ? AND task_id = ? AND completion_day = ? AND status = ?",
				userID, task.ID, day, models.CompletionCompleted).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return ErrAlreadyCompleted
		}

		if err := tx.Create(completion).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyCompleted
			}
			return fmt.Errorf("failed to create completion: %w", err)
		}

		return adjustPoints(tx, userID, task.Points)
	})
	if err != nil {
		return nil, err
	}

	return completion, nil
}

// TransitionCompletion loads the completion with its owner and task, lets
// decide pick the next state, then applies status and balance together.
func (r *GormLedgerRepository) TransitionCompletion(ctx context.Context, id uint64, decide CompletionDecider) (*models.UserTask, error) {
	var completion models.UserTask

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("User").Preload("Task").First(&completion, id).Error; err != nil {
			return err
		}

		next, day, delta, err := decide(&completion)
		if err != nil {
			return err
		}

		result := tx.Model(&models.UserTask{}).
			Where("id = ? AND status = ?", completion.ID, completion.Status).
			Updates(map[string]interface{}{
				"status":         next,
				"completion_day": day,
			})
		if result.Error != nil {
			if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
				return ErrAlreadyCompleted
			}
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrStaleState
		}

		if err := adjustPoints(tx, completion.UserID, delta); err != nil {
			return err
		}

		completion.Status = next
		completion.CompletionDay = day
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &completion, nil
}

// CreateRedemption reserves the gift's cost and stores a REQUESTED row
func (r *GormLedgerRepository) CreateRedemption(ctx context.Context, userID uint64, gift *models.Gift) (*models.UserGift, error) {
	redemption := &models.UserGift{
		UserID:      userID,
		GiftID:      gift.ID,
		Status:      models.RedemptionRequested,
		PointsSpent: gift.Points,
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := adjustPoints(tx, userID, -gift.Points); err != nil {
			return err
		}

		if err := tx.Create(redemption).Error; err != nil {
			return fmt.Errorf("failed to create redemption: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return redemption, nil
}

// TransitionRedemption loads the redemption with its owner and gift, lets
// decide pick the next state, then applies status and balance together. The
// status write is a compare-and-set on the observed status.
func (r *GormLedgerRepository) TransitionRedemption(ctx context.Context, id uint64, decide RedemptionDecider) (*models.UserGift, error) {
	var redemption models.UserGift

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("User").Preload("Gift").First(&redemption, id).Error; err != nil {
			return err
		}

		next, delta, err := decide(&redemption)
		if err != nil {
			return err
		}

		result := tx.Model(&models.UserGift{}).
			Where("id = ? AND status = ?", redemption.ID, redemption.Status).
			Update("status", next)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrStaleState
		}

		if err := adjustPoints(tx, redemption.UserID, delta); err != nil {
			return err
		}

		redemption.Status = next
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &redemption, nil
}

// ListCompletions lists completions, newest first
func (r *GormLedgerRepository) ListCompletions(ctx context.Context, filter LedgerFilter) ([]models.UserTask, int64, error) {
	var completions []models.UserTask

	query := r.db.WithContext(ctx).Model(&models.UserTask{}).
		Joins("JOIN users ON users.id = user_tasks.user_id")
	query = applyLedgerFilter(query, "user_tasks", filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Order("user_tasks.created_at DESC").Order("user_tasks.id DESC")
	listQuery = paginate(listQuery, filter)

	if err := listQuery.Preload("User").Preload("Task").Find(&completions).Error; err != nil {
		return nil, 0, err
	}

	return completions, total, nil
}

// ListRedemptions lists redemptions, newest first
func (r *GormLedgerRepository) ListRedemptions(ctx context.Context, filter LedgerFilter) ([]models.UserGift, int64, error) {
	var redemptions []models.UserGift

	query := r.db.WithContext(ctx).Model(&models.UserGift{}).
		Joins("JOIN users ON users.id = user_gifts.user_id")
	query = applyLedgerFilter(query, "user_gifts", filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Order("user_gifts.created_at DESC").Order("user_gifts.id DESC")
	listQuery = paginate(listQuery, filter)

	if err := listQuery.Preload("User").Preload("Gift").Find(&redemptions).Error; err != nil {
		return nil, 0, err
	}

	return redemptions, total, nil
}

// CompletionActivity sums COMPLETED rows per family member since a point in time
func (r *GormLedgerRepository) CompletionActivity(ctx context.Context, familyID uint64, since time.Time) ([]MemberActivity, error) {
	var rows []MemberActivity
	err := r.db.WithContext(ctx).Model(&models.UserTask{}).
		Select("user_tasks.user_id AS user_id, COUNT(*) AS count, COALESCE(SUM(user_tasks.points_awarded), 0) AS points").
		Joins("JOIN users ON users.id = user_tasks.user_id").
		Where("users.family_id = ? AND user_tasks.status = ? AND user_tasks.created_at >= ?",
			familyID, models.CompletionCompleted, since.UTC()).
		Group("user_tasks.user_id").
		Scan(&rows).Error
	return rows, err
}

// RedemptionActivity sums non-rejected redemptions per family member since a point in time
func (r *GormLedgerRepository) RedemptionActivity(ctx context.Context, familyID uint64, since time.Time) ([]MemberActivity, error) {
	var rows []MemberActivity
	err := r.db.WithContext(ctx).Model(&models.UserGift{}).
		Select("user_gifts.user_id AS user_id, COUNT(*) AS count, COALESCE(SUM(user_gifts.points_spent), 0) AS points").
		Joins("JOIN users ON users.id = user_gifts.user_id").
		Where("users.family_id = ? AND user_gifts.status <> ? AND user_gifts.created_at >= ?",
			familyID, models.RedemptionRejected, since.UTC()).
		Group("user_gifts.user_id").
		Scan(&rows).Error
	return rows, err
}

func applyLedgerFilter(query *gorm.DB, table string, filter LedgerFilter) *gorm.DB {
	if filter.FamilyID != nil {
		query = query.Where("users.family_id = ?", *filter.FamilyID)
	}
	if filter.UserID != nil {
		query = query.Where(table+".user_id = ?", *filter.UserID)
	}
	if filter.Status != nil {
		query = query.Where(table+".status = ?", *filter.Status)
	}
	return query
}

func paginate(query *gorm.DB, filter LedgerFilter) *gorm.DB {
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Scopes(database.Paginate(utils.PaginationParams{
			Page:   filter.Page,
			Limit:  filter.PageSize,
			Offset: (filter.Page - 1) * filter.PageSize,
		}))
	}
	return query
}
