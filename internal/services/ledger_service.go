package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yukikurage/family-chores-api/internal/logging"
	"github.com/yukikurage/family-chores-api/internal/metrics"
	"github.com/yukikurage/family-chores-api/internal/models"
	"github.com/yukikurage/family-chores-api/internal/repository"
	"github.com/yukikurage/family-chores-api/internal/utils"
	"gorm.io/gorm"
)

const dayLayout = "2006-01-02"

var (
	ErrAlreadyCompletedToday = errors.New("task already completed today")
	ErrInsufficientPoints    = errors.New("not enough points")
	ErrInvalidTransition     = errors.New("status transition not allowed")
	ErrCompletionNotFound    = errors.New("completion not found")
	ErrRedemptionNotFound    = errors.New("redemption not found")

	ErrInvalidStatus = utils.ValidationError{Field: "status", Message: "unknown status"}
)

// LedgerService applies the completion and redemption rules. Every balance
// change goes through LedgerRepository inside the same transaction as the
// status change that causes it.
type LedgerService struct {
	ledgerRepo repository.LedgerRepository
	taskRepo   repository.CatalogRepository[models.Task]
	giftRepo   repository.CatalogRepository[models.Gift]
	loc        *time.Location
	now        func() time.Time
	log        *logrus.Logger
}

// NewLedgerService creates a new LedgerService. loc decides where a day starts
// for the once-per-day completion rule.
func NewLedgerService(
	ledgerRepo repository.LedgerRepository,
	taskRepo repository.CatalogRepository[models.Task],
	giftRepo repository.CatalogRepository[models.Gift],
	loc *time.Location,
	log *logrus.Logger,
) *LedgerService {
	if loc == nil {
		loc = time.Local
	}
	if log == nil {
		log = logging.Discard()
	}
	return &LedgerService{
		ledgerRepo: ledgerRepo,
		taskRepo:   taskRepo,
		giftRepo:   giftRepo,
		loc:        loc,
		now:        time.Now,
		log:        log,
	}
}

// ListLedgerInput represents filters for listing completions or redemptions
type ListLedgerInput struct {
	PersonID *uint64
	Status   *string
	Page     int
	PageSize int
}

// CompleteTask records that the caller did a task today and awards its points
func (s *LedgerService) CompleteTask(ctx context.Context, identity Identity, taskID uint64) (*models.UserTask, error) {
	task, err := s.taskRepo.FindVisible(ctx, taskID, identity.FamilyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	if !task.IsActive {
		return nil, ErrTaskNotFound
	}

	day := s.today()
	completion, err := s.ledgerRepo.RecordCompletion(ctx, identity.PersonID, task, day)
	if err != nil {
		return nil, mapLedgerError(err, ErrCompletionNotFound)
	}

	completion.Task = *task
	metrics.RecordLedgerTransition("completion", string(completion.Status), completion.PointsAwarded)
	s.log.WithFields(logrus.Fields{
		"person_id": identity.PersonID,
		"task_id":   task.ID,
		"day":       day,
		"points":    completion.PointsAwarded,
	}).Info("task completed")

	return completion, nil
}

// SetCompletionStatus lets a guardian dispute or restore a completion. Leaving
// COMPLETED takes the awarded points back; entering it awards them again and
// reclaims the completion's original day.
func (s *LedgerService) SetCompletionStatus(ctx context.Context, identity Identity, completionID uint64, status models.CompletionStatus) (*models.UserTask, error) {
	if err := identity.requireGuardian(); err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	var delta int
	completion, err := s.ledgerRepo.TransitionCompletion(ctx, completionID, func(current *models.UserTask) (models.CompletionStatus, *string, int, error) {
		if !identity.SameFamily(current.User.FamilyID) {
			return "", nil, 0, ErrCompletionNotFound
		}
		if current.Status == status {
			return "", nil, 0, ErrInvalidTransition
		}

		switch {
		case status == models.CompletionCompleted:
			day := current.CreatedAt.In(s.loc).Format(dayLayout)
			delta = current.PointsAwarded
			return status, &day, delta, nil
		case current.Status == models.CompletionCompleted:
			delta = -current.PointsAwarded
			return status, nil, delta, nil
		default:
			delta = 0
			return status, nil, 0, nil
		}
	})
	if err != nil {
		return nil, mapLedgerError(err, ErrCompletionNotFound)
	}

	metrics.RecordLedgerTransition("completion", string(completion.Status), delta)
	s.log.WithFields(logrus.Fields{
		"actor_id":      identity.PersonID,
		"completion_id": completion.ID,
		"person_id":     completion.UserID,
		"status":        completion.Status,
		"delta":         delta,
	}).Info("completion status changed")

	return completion, nil
}

// RequestGift reserves a gift's cost from the caller's balance and opens a
// REQUESTED redemption. Only children request gifts.
func (s *LedgerService) RequestGift(ctx context.Context, identity Identity, giftID uint64) (*models.UserGift, error) {
	if identity.Role != models.RoleChild {
		return nil, ErrForbidden
	}

	gift, err := s.giftRepo.FindVisible(ctx, giftID, identity.FamilyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGiftNotFound
		}
		return nil, fmt.Errorf("failed to find gift: %w", err)
	}
	if !gift.IsActive {
		return nil, ErrGiftNotFound
	}

	redemption, err := s.ledgerRepo.CreateRedemption(ctx, identity.PersonID, gift)
	if err != nil {
		return nil, mapLedgerError(err, ErrRedemptionNotFound)
	}

	redemption.Gift = *gift
	metrics.RecordLedgerTransition("redemption", string(redemption.Status), -redemption.PointsSpent)
	s.log.WithFields(logrus.Fields{
		"person_id": identity.PersonID,
		"gift_id":   gift.ID,
		"points":    redemption.PointsSpent,
	}).Info("gift requested")

	return redemption, nil
}

// SetRedemptionStatus moves a redemption through its state machine:
//
//	REQUESTED -> APPROVED   (child's redemption only)
//	REQUESTED -> REJECTED   refund
//	APPROVED  -> REJECTED   refund
//	APPROVED  -> REDEEMED
//
// Every other pair is an invalid transition.
func (s *LedgerService) SetRedemptionStatus(ctx context.Context, identity Identity, redemptionID uint64, status models.RedemptionStatus) (*models.UserGift, error) {
	if err := identity.requireGuardian(); err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	var delta int
	redemption, err := s.ledgerRepo.TransitionRedemption(ctx, redemptionID, func(current *models.UserGift) (models.RedemptionStatus, int, error) {
		if !identity.SameFamily(current.User.FamilyID) {
			return "", 0, ErrRedemptionNotFound
		}

		switch {
		case current.Status == models.RedemptionRequested && status == models.RedemptionApproved:
			if current.User.Role != models.RoleChild {
				return "", 0, ErrForbidden
			}
			delta = 0
		case status == models.RedemptionRejected &&
			(current.Status == models.RedemptionRequested || current.Status == models.RedemptionApproved):
			delta = current.PointsSpent
		case current.Status == models.RedemptionApproved && status == models.RedemptionRedeemed:
			delta = 0
		default:
			return "", 0, ErrInvalidTransition
		}
		return status, delta, nil
	})
	if err != nil {
		return nil, mapLedgerError(err, ErrRedemptionNotFound)
	}

	metrics.RecordLedgerTransition("redemption", string(redemption.Status), delta)
	s.log.WithFields(logrus.Fields{
		"actor_id":      identity.PersonID,
		"redemption_id": redemption.ID,
		"person_id":     redemption.UserID,
		"status":        redemption.Status,
		"refund":        delta,
	}).Info("redemption status changed")

	return redemption, nil
}

// ListCompletions lists completions visible to the caller, newest first
func (s *LedgerService) ListCompletions(ctx context.Context, identity Identity, input ListLedgerInput) ([]models.UserTask, int64, error) {
	if input.Status != nil && !models.CompletionStatus(*input.Status).Valid() {
		return nil, 0, ErrInvalidStatus
	}

	filter, err := ledgerFilterFor(identity, input)
	if err != nil {
		return nil, 0, err
	}

	completions, total, err := s.ledgerRepo.ListCompletions(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list completions: %w", err)
	}
	return completions, total, nil
}

// ListRedemptions lists redemptions visible to the caller, newest first
func (s *LedgerService) ListRedemptions(ctx context.Context, identity Identity, input ListLedgerInput) ([]models.UserGift, int64, error) {
	if input.Status != nil && !models.RedemptionStatus(*input.Status).Valid() {
		return nil, 0, ErrInvalidStatus
	}

	filter, err := ledgerFilterFor(identity, input)
	if err != nil {
		return nil, 0, err
	}

	redemptions, total, err := s.ledgerRepo.ListRedemptions(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list redemptions: %w", err)
	}
	return redemptions, total, nil
}

func (s *LedgerService) today() string {
	return s.now().In(s.loc).Format(dayLayout)
}

// ledgerFilterFor narrows a listing to what the caller may read: children
// and family-less persons see their own rows, guardians their family's.
func ledgerFilterFor(identity Identity, input ListLedgerInput) (repository.LedgerFilter, error) {
	filter := repository.LedgerFilter{
		Status:   input.Status,
		Page:     input.Page,
		PageSize: input.PageSize,
	}

	if !identity.IsGuardian() || identity.FamilyID == nil {
		if input.PersonID != nil && *input.PersonID != identity.PersonID {
			return filter, ErrForbidden
		}
		self := identity.PersonID
		filter.UserID = &self
		return filter, nil
	}

	filter.FamilyID = identity.FamilyID
	filter.UserID = input.PersonID
	return filter, nil
}

func mapLedgerError(err error, notFound error) error {
	switch {
	case errors.Is(err, repository.ErrAlreadyCompleted):
		return ErrAlreadyCompletedToday
	case errors.Is(err, repository.ErrInsufficientPoints):
		return ErrInsufficientPoints
	case errors.Is(err, repository.ErrStaleState):
		return ErrInvalidTransition
	case errors.Is(err, gorm.ErrRecordNotFound):
		return notFound
	case errors.Is(err, ErrForbidden),
		errors.Is(err, ErrInvalidTransition),
		errors.Is(err, ErrCompletionNotFound),
		errors.Is(err, ErrRedemptionNotFound):
		return err
	default:
		return fmt.Errorf("ledger operation failed: %w", err)
	}
}
