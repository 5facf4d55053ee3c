package repository

import (
	"context"
	"time"

	"github.com/yukikurage/family-chores-api/internal/models"
)

// FamilyRepository defines the interface for family data access
type FamilyRepository interface {
	// CreateWithAdmin creates a family, its admin and the seeded catalog in one transaction
	CreateWithAdmin(ctx context.Context, family *models.Family, admin *models.User, tasks []models.Task, gifts []models.Gift) error

	// FindByID finds a family by ID
	FindByID(ctx context.Context, id uint64) (*models.Family, error)

	// FindByInviteCode finds a family by invite code
	FindByInviteCode(ctx context.Context, code string) (*models.Family, error)

	// Update writes the family's name and invite code
	Update(ctx context.Context, family *models.Family) error

	// ExtendPremium moves premium_until forward by days, starting from now or
	// the current end, whichever is later
	ExtendPremium(ctx context.Context, id uint64, now time.Time, days int) (*models.Family, error)

	// Delete removes a family and every row that belongs to it
	Delete(ctx context.Context, id uint64) error

	// SeedCatalog adds catalog items to an existing family
	SeedCatalog(ctx context.Context, familyID uint64, tasks []models.Task, gifts []models.Gift) error
}

// UserRepository defines the interface for person data access.
// None of its writes touch the points column; balances belong to LedgerRepository.
type UserRepository interface {
	// Create creates a new person
	Create(ctx context.Context, user *models.User) error

	// FindByID finds a person by ID
	FindByID(ctx context.Context, id uint64) (*models.User, error)

	// FindVisible finds a person by ID within the family scope
	FindVisible(ctx context.Context, id uint64, familyID *uint64) (*models.User, error)

	// FindByName finds a person by login name
	FindByName(ctx context.Context, name string) (*models.User, error)

	// FindByEmail finds a person by email
	FindByEmail(ctx context.Context, email string) (*models.User, error)

	// FindByInviteToken finds a person waiting to accept an invite
	FindByInviteToken(ctx context.Context, name, token string) (*models.User, error)

	// FindByResetToken finds a person by an outstanding password reset token
	FindByResetToken(ctx context.Context, token string) (*models.User, error)

	// RedeemTempToken sets the password hash and clears the temp token, only
	// while the person still holds token
	RedeemTempToken(ctx context.Context, id uint64, token, passwordHash string) error

	// ListByFamily lists the members of a family
	ListByFamily(ctx context.Context, familyID uint64) ([]models.User, error)

	// Update updates profile and credential columns
	Update(ctx context.Context, user *models.User) error

	// Delete removes a person with their completions and redemptions
	Delete(ctx context.Context, id uint64) error
}

// CatalogRepository defines data access shared by tasks and gifts
type CatalogRepository[T any] interface {
	// Create appends a new item at the end of its family's order
	Create(ctx context.Context, item *T) error

	// FindByID finds an item by ID regardless of family
	FindByID(ctx context.Context, id uint64) (*T, error)

	// FindVisible finds an item by ID within the family scope
	FindVisible(ctx context.Context, id uint64, familyID *uint64) (*T, error)

	// ListActive lists active items within the family scope ordered by sort order
	ListActive(ctx context.Context, familyID *uint64) ([]T, error)

	// Update updates an item
	Update(ctx context.Context, item *T) error

	// Delete deletes an item
	Delete(ctx context.Context, id uint64) error

	// Reorder sets each item's sort order to its position in ids, atomically
	Reorder(ctx context.Context, familyID *uint64, ids []uint64) error
}

// CompletionDecider inspects a loaded completion inside the transaction and
// returns the next status, its completion day and the balance delta.
type CompletionDecider func(completion *models.UserTask) (models.CompletionStatus, *string, int, error)

// RedemptionDecider inspects a loaded redemption inside the transaction and
// returns the next status and the balance delta.
type RedemptionDecider func(redemption *models.UserGift) (models.RedemptionStatus, int, error)

// LedgerRepository owns every write to a person's point balance
type LedgerRepository interface {
	// RecordCompletion stores a COMPLETED row for day and awards the task's points
	RecordCompletion(ctx context.Context, userID uint64, task *models.Task, day string) (*models.UserTask, error)

	// TransitionCompletion changes a completion's status as decided by decide
	TransitionCompletion(ctx context.Context, id uint64, decide CompletionDecider) (*models.UserTask, error)

	// CreateRedemption reserves the gift's cost and stores a REQUESTED row
	CreateRedemption(ctx context.Context, userID uint64, gift *models.Gift) (*models.UserGift, error)

	// TransitionRedemption changes a redemption's status as decided by decide
	TransitionRedemption(ctx context.Context, id uint64, decide RedemptionDecider) (*models.UserGift, error)

	// ListCompletions lists completions with filtering and pagination
	ListCompletions(ctx context.Context, filter LedgerFilter) ([]models.UserTask, int64, error)

	// ListRedemptions lists redemptions with filtering and pagination
	ListRedemptions(ctx context.Context, filter LedgerFilter) ([]models.UserGift, int64, error)

	// CompletionActivity sums COMPLETED rows per family member since a point in time
	CompletionActivity(ctx context.Context, familyID uint64, since time.Time) ([]MemberActivity, error)

	// RedemptionActivity sums non-rejected redemptions per family member since a point in time
	RedemptionActivity(ctx context.Context, familyID uint64, since time.Time) ([]MemberActivity, error)
}

// LedgerFilter holds filtering options for listing ledger rows
type LedgerFilter struct {
	FamilyID *uint64
	UserID   *uint64
	Status   *string
	Page     int
	PageSize int
}

// MemberActivity is one aggregated row per person
type MemberActivity struct {
	UserID uint64
	Count  int64
	Points int64
}
