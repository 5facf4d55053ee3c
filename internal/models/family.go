package models

import (
	"time"
)

type Family struct {
	ID           uint64     `gorm:"primarykey" json:"id"`
	Name         string     `gorm:"type:varchar(255);not null" json:"name"`
	InviteCode   string     `gorm:"type:varchar(50);uniqueIndex;not null" json:"invite_code"`
	AdminID      *uint64    `gorm:"uniqueIndex" json:"admin_id"`
	PremiumUntil *time.Time `json:"premium_until"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	// Relations
	Members []User `gorm:"foreignKey:FamilyID" json:"members,omitempty"`
	Tasks   []Task `gorm:"foreignKey:FamilyID" json:"tasks,omitempty"`
	Gifts   []Gift `gorm:"foreignKey:FamilyID" json:"gifts,omitempty"`
}

// IsPremium reports whether the ad-free subscription is active at now.
func (f Family) IsPremium(now time.Time) bool {
	return f.PremiumUntil != nil && f.PremiumUntil.After(now)
}
