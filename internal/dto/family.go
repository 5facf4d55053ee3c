package dto

import (
	"time"

	"github.com/yukikurage/family-chores-api/internal/models"
	"github.com/yukikurage/family-chores-api/internal/services"
)

// FamilyDTO represents a family in API responses
type FamilyDTO struct {
	ID           uint64     `json:"id"`
	Name         string     `json:"name"`
	InviteCode   string     `json:"invite_code,omitempty"`
	AdminID      *uint64    `json:"admin_id"`
	PremiumUntil *time.Time `json:"premium_until"`
	CreatedAt    time.Time  `json:"created_at"`
}

// SessionResponse is returned whenever a session starts. Token is the bearer
// token for clients that do not keep cookies.
type SessionResponse struct {
	User  UserDTO `json:"user"`
	Token string  `json:"token"`
}

// RegisterResponse is returned after family registration
type RegisterResponse struct {
	Family FamilyDTO `json:"family"`
	User   UserDTO   `json:"user"`
	Token  string    `json:"token"`
}

// InviteResponse carries the new member and the token to share with them
type InviteResponse struct {
	Member      UserDTO `json:"member"`
	InviteToken string  `json:"invite_token"`
}

// MemberStatsDTO represents one person's activity
type MemberStatsDTO struct {
	UserID         uint64      `json:"user_id,omitempty"`
	Name           string      `json:"name,omitempty"`
	Role           models.Role `json:"role,omitempty"`
	Balance        int         `json:"balance"`
	TasksCompleted int64       `json:"tasks_completed"`
	PointsEarned   int64       `json:"points_earned"`
	GiftsRedeemed  int64       `json:"gifts_redeemed"`
	PointsSpent    int64       `json:"points_spent"`
}

// StatsDTO represents family activity over a window
type StatsDTO struct {
	Window  string           `json:"window"`
	Since   time.Time        `json:"since"`
	Until   time.Time        `json:"until"`
	Members []MemberStatsDTO `json:"members"`
	Totals  MemberStatsDTO   `json:"totals"`
}

// SubscriptionDTO represents the premium state of a family
type SubscriptionDTO struct {
	Premium      bool       `json:"premium"`
	PremiumUntil *time.Time `json:"premium_until"`
	ShowAds      bool       `json:"show_ads"`
}

// ToFamilyDTO converts a Family model to FamilyDTO
func ToFamilyDTO(family models.Family, includeInviteCode bool) FamilyDTO {
	dto := FamilyDTO{
		ID:           family.ID,
		Name:         family.Name,
		AdminID:      family.AdminID,
		PremiumUntil: family.PremiumUntil,
		CreatedAt:    family.CreatedAt,
	}
	if includeInviteCode {
		dto.InviteCode = family.InviteCode
	}
	return dto
}

// ToStatsDTO converts aggregated stats
func ToStatsDTO(stats services.FamilyStats) StatsDTO {
	members := make([]MemberStatsDTO, len(stats.Members))
	for i, member := range stats.Members {
		members[i] = toMemberStatsDTO(member)
	}

	return StatsDTO{
		Window:  stats.Window,
		Since:   stats.Since,
		Until:   stats.Until,
		Members: members,
		Totals:  toMemberStatsDTO(stats.Totals),
	}
}

func toMemberStatsDTO(member services.MemberStats) MemberStatsDTO {
	return MemberStatsDTO{
		UserID:         member.UserID,
		Name:           member.Name,
		Role:           member.Role,
		Balance:        member.Balance,
		TasksCompleted: member.TasksCompleted,
		PointsEarned:   member.PointsEarned,
		GiftsRedeemed:  member.GiftsRedeemed,
		PointsSpent:    member.PointsSpent,
	}
}

// ToSubscriptionDTO converts subscription state
func ToSubscriptionDTO(subscription services.Subscription) SubscriptionDTO {
	return SubscriptionDTO{
		Premium:      subscription.Premium,
		PremiumUntil: subscription.PremiumUntil,
		ShowAds:      subscription.ShowAds,
	}
}
