package models

import (
	"time"
)

type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleParent Role = "PARENT"
	RoleChild  Role = "CHILD"
)

// IsGuardian reports whether the role may manage the family catalog and ledger.
func (r Role) IsGuardian() bool {
	return r == RoleAdmin || r == RoleParent
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleParent, RoleChild:
		return true
	}
	return false
}

// User is a person account. Admins, parents and children share the table and
// differ only by Role.
type User struct {
	ID                 uint64     `gorm:"primarykey" json:"id"`
	Name               string     `gorm:"type:varchar(50);uniqueIndex;not null" json:"name"`
	PasswordHash       string     `gorm:"type:varchar(255);not null" json:"-"`
	Role               Role       `gorm:"type:varchar(20);not null;default:'CHILD'" json:"role"`
	Gender             string     `gorm:"type:varchar(20)" json:"gender,omitempty"`
	Points             int        `gorm:"not null;default:0" json:"points"`
	FamilyID           *uint64    `gorm:"index" json:"family_id"`
	Email              *string    `gorm:"type:varchar(255);uniqueIndex" json:"email,omitempty"`
	TempToken          *string    `gorm:"type:varchar(128);index" json:"-"`
	TempTokenExpiresAt *time.Time `json:"-"`
	MustChangePassword bool       `gorm:"not null;default:false" json:"must_change_password"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`

	// Relations
	Completions []UserTask `gorm:"foreignKey:UserID" json:"-"`
	Redemptions []UserGift `gorm:"foreignKey:UserID" json:"-"`
}
