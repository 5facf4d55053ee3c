package services

import (
	"errors"

	"github.com/yukikurage/family-chores-api/internal/models"
)

var (
	ErrForbidden = errors.New("insufficient role for this action")
	ErrNoFamily  = errors.New("person does not belong to a family")
)

// Identity is the caller of a service operation. It is built once per
// request from the authenticated person and passed into every call.
type Identity struct {
	PersonID uint64
	Role     models.Role
	FamilyID *uint64
}

// IdentityOf builds the identity of an authenticated person.
func IdentityOf(user *models.User) Identity {
	return Identity{
		PersonID: user.ID,
		Role:     user.Role,
		FamilyID: user.FamilyID,
	}
}

func (i Identity) IsGuardian() bool {
	return i.Role.IsGuardian()
}

func (i Identity) IsAdmin() bool {
	return i.Role == models.RoleAdmin
}

// SameFamily reports whether familyID is the caller's family. Persons
// without a family share nothing.
func (i Identity) SameFamily(familyID *uint64) bool {
	return i.FamilyID != nil && familyID != nil && *i.FamilyID == *familyID
}

// CanModify reports whether the caller may change a row owned by familyID.
// Rows without a family predate families and stay editable by any guardian.
func (i Identity) CanModify(familyID *uint64) bool {
	return familyID == nil || i.SameFamily(familyID)
}

func (i Identity) requireGuardian() error {
	if !i.IsGuardian() {
		return ErrForbidden
	}
	return nil
}

func (i Identity) requireAdmin() error {
	if !i.IsAdmin() {
		return ErrForbidden
	}
	return nil
}

func (i Identity) requireFamily() (uint64, error) {
	if i.FamilyID == nil {
		return 0, ErrNoFamily
	}
	return *i.FamilyID, nil
}
