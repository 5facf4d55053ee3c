package services

import (
	"context"
	"fmt"
	"time"

	"github.com/yukikurage/family-chores-api/internal/constants"
	"github.com/yukikurage/family-chores-api/internal/models"
	"github.com/yukikurage/family-chores-api/internal/repository"
	"github.com/yukikurage/family-chores-api/internal/utils"
)

var ErrInvalidWindow = utils.ValidationError{Field: "window", Message: "window must be week or month"}

// StatsService aggregates ledger activity over a rolling window
type StatsService struct {
	ledgerRepo repository.LedgerRepository
	userRepo   repository.UserRepository
	now        func() time.Time
}

// NewStatsService creates a new StatsService
func NewStatsService(ledgerRepo repository.LedgerRepository, userRepo repository.UserRepository) *StatsService {
	return &StatsService{
		ledgerRepo: ledgerRepo,
		userRepo:   userRepo,
		now:        time.Now,
	}
}

// MemberStats is one person's activity in the window
type MemberStats struct {
	UserID         uint64
	Name           string
	Role           models.Role
	Balance        int
	TasksCompleted int64
	PointsEarned   int64
	GiftsRedeemed  int64
	PointsSpent    int64
}

// FamilyStats is the activity of a whole family in the window
type FamilyStats struct {
	Window  string
	Since   time.Time
	Until   time.Time
	Members []MemberStats
	Totals  MemberStats
}

// WindowDuration maps a window name to its length
func WindowDuration(window string) (time.Duration, error) {
	switch window {
	case constants.StatsWindowWeek:
		return 7 * 24 * time.Hour, nil
	case constants.StatsWindowMonth:
		return 30 * 24 * time.Hour, nil
	default:
		return 0, ErrInvalidWindow
	}
}

// Stats returns per-member completions and redemptions over the last week or month
func (s *StatsService) Stats(ctx context.Context, identity Identity, window string) (*FamilyStats, error) {
	if err := identity.requireGuardian(); err != nil {
		return nil, err
	}
	familyID, err := identity.requireFamily()
	if err != nil {
		return nil, err
	}

	length, err := WindowDuration(window)
	if err != nil {
		return nil, err
	}
	until := s.now().UTC()
	since := until.Add(-length)

	members, err := s.userRepo.ListByFamily(ctx, familyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	completions, err := s.ledgerRepo.CompletionActivity(ctx, familyID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate completions: %w", err)
	}
	redemptions, err := s.ledgerRepo.RedemptionActivity(ctx, familyID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate redemptions: %w", err)
	}

	earned := indexActivity(completions)
	spent := indexActivity(redemptions)

	stats := &FamilyStats{
		Window:  window,
		Since:   since,
		Until:   until,
		Members: make([]MemberStats, 0, len(members)),
	}
	for _, member := range members {
		row := MemberStats{
			UserID:         member.ID,
			Name:           member.Name,
			Role:           member.Role,
			Balance:        member.Points,
			TasksCompleted: earned[member.ID].Count,
			PointsEarned:   earned[member.ID].Points,
			GiftsRedeemed:  spent[member.ID].Count,
			PointsSpent:    spent[member.ID].Points,
		}
		stats.Members = append(stats.Members, row)

		stats.Totals.Balance += row.Balance
		stats.Totals.TasksCompleted += row.TasksCompleted
		stats.Totals.PointsEarned += row.PointsEarned
		stats.Totals.GiftsRedeemed += row.GiftsRedeemed
		stats.Totals.PointsSpent += row.PointsSpent
	}

	return stats, nil
}

func indexActivity(rows []repository.MemberActivity) map[uint64]repository.MemberActivity {
	index := make(map[uint64]repository.MemberActivity, len(rows))
	for _, row := range rows {
		index[row.UserID] = row
	}
	return index
}
