package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yukikurage/family-chores-api/internal/models"
	"github.com/yukikurage/family-chores-api/internal/repository"
	"github.com/yukikurage/family-chores-api/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound = errors.New("task not found")
	ErrGiftNotFound = errors.New("gift not found")

	ErrTitleRequired  = utils.ValidationError{Field: "title", Message: "title is required"}
	ErrNegativePoints = utils.ValidationError{Field: "points", Message: "points must not be negative"}
	ErrDuplicateIDs   = utils.ValidationError{Field: "ids", Message: "ids must not repeat"}
)

// CatalogService holds the rules shared by tasks and gifts. P is the pointer
// type of T and exposes the shared columns.
type CatalogService[T any, P models.Cataloged[T]] struct {
	repo        repository.CatalogRepository[T]
	errNotFound error
}

// TaskService manages the chores a family can complete.
type TaskService = CatalogService[models.Task, *models.Task]

// GiftService manages the rewards a family can redeem.
type GiftService = CatalogService[models.Gift, *models.Gift]

// NewTaskService creates a new TaskService
func NewTaskService(repo repository.CatalogRepository[models.Task]) *TaskService {
	return &TaskService{repo: repo, errNotFound: ErrTaskNotFound}
}

// NewGiftService creates a new GiftService
func NewGiftService(repo repository.CatalogRepository[models.Gift]) *GiftService {
	return &GiftService{repo: repo, errNotFound: ErrGiftNotFound}
}

// CreateCatalogItemInput represents input for creating a task or gift
type CreateCatalogItemInput struct {
	Title       string
	Description string
	Points      int
	Emoji       string
}

// UpdateCatalogItemInput represents a partial update of a task or gift
type UpdateCatalogItemInput struct {
	Title       *string
	Description *string
	Points      *int
	Emoji       *string
	IsActive    *bool
}

// List returns the active items visible to the caller in display order
func (s *CatalogService[T, P]) List(ctx context.Context, identity Identity) ([]T, error) {
	items, err := s.repo.ListActive(ctx, identity.FamilyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list catalog: %w", err)
	}
	return items, nil
}

// Get returns one item visible to the caller
func (s *CatalogService[T, P]) Get(ctx context.Context, identity Identity, id uint64) (*T, error) {
	item, err := s.repo.FindVisible(ctx, id, identity.FamilyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, s.errNotFound
		}
		return nil, fmt.Errorf("failed to find catalog item: %w", err)
	}
	return item, nil
}

// Create adds an item to the caller's family at the end of the list
func (s *CatalogService[T, P]) Create(ctx context.Context, identity Identity, input CreateCatalogItemInput) (*T, error) {
	if err := identity.requireGuardian(); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	if input.Points < 0 {
		return nil, ErrNegativePoints
	}

	item := new(T)
	fields := P(item).Item()
	fields.Title = title
	fields.Description = input.Description
	fields.Points = input.Points
	fields.Emoji = input.Emoji
	fields.IsActive = true
	fields.FamilyID = identity.FamilyID

	if err := s.repo.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to create catalog item: %w", err)
	}
	return item, nil
}

// Update applies a partial update to an item the caller may modify
func (s *CatalogService[T, P]) Update(ctx context.Context, identity Identity, id uint64, input UpdateCatalogItemInput) (*T, error) {
	item, err := s.findModifiable(ctx, identity, id)
	if err != nil {
		return nil, err
	}
	fields := P(item).Item()

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, ErrTitleRequired
		}
		fields.Title = title
	}
	if input.Description != nil {
		fields.Description = *input.Description
	}
	if input.Points != nil {
		if *input.Points < 0 {
			return nil, ErrNegativePoints
		}
		fields.Points = *input.Points
	}
	if input.Emoji != nil {
		fields.Emoji = *input.Emoji
	}
	if input.IsActive != nil {
		fields.IsActive = *input.IsActive
	}

	if err := s.repo.Update(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to update catalog item: %w", err)
	}
	return item, nil
}

// Delete removes an item. Completions and redemptions that reference it are kept.
func (s *CatalogService[T, P]) Delete(ctx context.Context, identity Identity, id uint64) error {
	if _, err := s.findModifiable(ctx, identity, id); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete catalog item: %w", err)
	}
	return nil
}

// Reorder sets the display order to the order of ids. Either every position
// is written or none is.
func (s *CatalogService[T, P]) Reorder(ctx context.Context, identity Identity, ids []uint64) error {
	if err := identity.requireGuardian(); err != nil {
		return err
	}

	seen := make(map[uint64]struct{}, len(ids))
	for _, id := range ids {
		if _, exists := seen[id]; exists {
			return ErrDuplicateIDs
		}
		seen[id] = struct{}{}
	}

	if err := s.repo.Reorder(ctx, identity.FamilyID, ids); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return s.errNotFound
		}
		return fmt.Errorf("failed to reorder catalog: %w", err)
	}
	return nil
}

// findModifiable loads an item for a write. A missing item is not found; an
// item of another family is forbidden.
func (s *CatalogService[T, P]) findModifiable(ctx context.Context, identity Identity, id uint64) (*T, error) {
	if err := identity.requireGuardian(); err != nil {
		return nil, err
	}

	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, s.errNotFound
		}
		return nil, fmt.Errorf("failed to find catalog item: %w", err)
	}

	if !identity.CanModify(P(item).Item().FamilyID) {
		return nil, ErrForbidden
	}
	return item, nil
}
