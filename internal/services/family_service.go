package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yukikurage/family-chores-api/internal/constants"
	"github.com/yukikurage/family-chores-api/internal/logging"
	"github.com/yukikurage/family-chores-api/internal/models"
	"github.com/yukikurage/family-chores-api/internal/repository"
	"github.com/yukikurage/family-chores-api/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrNameTaken             = errors.New("name already in use")
	ErrEmailTaken            = errors.New("email already in use")
	ErrAccountConflict       = errors.New("name or email already in use")
	ErrFamilyNotFound        = errors.New("family not found")
	ErrMemberNotFound        = errors.New("member not found")
	ErrInvalidInviteCode     = errors.New("invalid invite code")
	ErrAlreadyInFamily       = errors.New("person already belongs to a family")
	ErrInvalidOrExpiredToken = errors.New("invalid or expired token")
	ErrTokenExpired          = errors.New("token has expired")
	ErrCannotRemoveSelf      = errors.New("cannot remove yourself")
	ErrCannotRemoveAdmin     = errors.New("cannot remove the family admin")
	ErrCannotChangeAdminRole = errors.New("cannot change the family admin's role")
	ErrFailedToCreateFamily  = errors.New("failed to create family")

	ErrInvalidMemberRole = utils.ValidationError{Field: "role", Message: "role must be PARENT or CHILD"}
)

// FamilyService handles family registration, membership and the token flows
// (invites and password resets).
type FamilyService struct {
	familyRepo repository.FamilyRepository
	userRepo   repository.UserRepository
	mailer     Mailer
	now        func() time.Time
	log        *logrus.Logger
}

// NewFamilyService creates a new FamilyService
func NewFamilyService(familyRepo repository.FamilyRepository, userRepo repository.UserRepository, mailer Mailer, log *logrus.Logger) *FamilyService {
	if log == nil {
		log = logging.Discard()
	}
	return &FamilyService{
		familyRepo: familyRepo,
		userRepo:   userRepo,
		mailer:     mailer,
		now:        time.Now,
		log:        log,
	}
}

// RegisterFamilyInput represents a parent creating a new family
type RegisterFamilyInput struct {
	FamilyName string
	PersonName string
	Password   string
	Email      string
	Gender     string
	Locale     string
}

// InviteMemberInput represents an admin adding a parent or child
type InviteMemberInput struct {
	Name   string
	Role   models.Role
	Gender string
	Email  string
}

// AcceptInviteInput is the first login of an invited member
type AcceptInviteInput struct {
	Token       string
	Name        string
	NewPassword string
}

// ResetPasswordInput redeems a password reset token
type ResetPasswordInput struct {
	Token       string
	NewPassword string
}

// UpdateMemberInput represents a partial profile update
type UpdateMemberInput struct {
	Name   *string
	Gender *string
	Email  *string
	Role   *models.Role
}

// Register creates a family with the registering person as its admin and
// seeds the starter catalog for the locale, all in one transaction.
func (s *FamilyService) Register(ctx context.Context, input RegisterFamilyInput) (*models.Family, *models.User, error) {
	familyName := strings.TrimSpace(input.FamilyName)
	personName := strings.TrimSpace(input.PersonName)
	if err := utils.ValidateName("family_name", familyName); err != nil {
		return nil, nil, err
	}
	if err := utils.ValidateName("name", personName); err != nil {
		return nil, nil, err
	}
	if err := utils.ValidatePassword(input.Password); err != nil {
		return nil, nil, err
	}
	if err := utils.ValidateEmail(input.Email); err != nil {
		return nil, nil, err
	}

	email := utils.NormalizeEmail(input.Email)
	if err := s.ensureAvailable(ctx, personName, email); err != nil {
		return nil, nil, err
	}

	hash, err := hashPassword(input.Password)
	if err != nil {
		return nil, nil, err
	}

	inviteCode, err := utils.GenerateInviteCode()
	if err != nil {
		return nil, nil, ErrFailedToCreateFamily
	}

	family := &models.Family{
		Name:       familyName,
		InviteCode: inviteCode,
	}
	admin := &models.User{
		Name:         personName,
		PasswordHash: hash,
		Gender:       input.Gender,
		Email:        email,
	}
	tasks, gifts := DefaultCatalog(input.Locale)

	if err := s.familyRepo.CreateWithAdmin(ctx, family, admin, tasks, gifts); err != nil {
		switch {
		case errors.Is(err, gorm.ErrDuplicatedKey):
			return nil, nil, ErrAccountConflict
		case errors.Is(err, repository.ErrCreateFamily),
			errors.Is(err, repository.ErrCreateAdmin),
			errors.Is(err, repository.ErrSeedCatalog):
			return nil, nil, fmt.Errorf("%w: %w", ErrFailedToCreateFamily, err)
		default:
			return nil, nil, fmt.Errorf("failed to register family: %w", err)
		}
	}

	s.log.WithFields(logrus.Fields{
		"family_id": family.ID,
		"admin_id":  admin.ID,
		"tasks":     len(tasks),
		"gifts":     len(gifts),
	}).Info("family registered")

	return family, admin, nil
}

// InviteMember creates a parent or child who must set a password through the
// returned single-use token. The invite email is best-effort.
func (s *FamilyService) InviteMember(ctx context.Context, identity Identity, input InviteMemberInput) (*models.User, string, error) {
	if err := identity.requireAdmin(); err != nil {
		return nil, "", err
	}
	familyID, err := identity.requireFamily()
	if err != nil {
		return nil, "", err
	}

	name := strings.TrimSpace(input.Name)
	if err := utils.ValidateName("name", name); err != nil {
		return nil, "", err
	}
	if input.Role != models.RoleParent && input.Role != models.RoleChild {
		return nil, "", ErrInvalidMemberRole
	}
	if err := utils.ValidateEmail(input.Email); err != nil {
		return nil, "", err
	}

	email := utils.NormalizeEmail(input.Email)
	if err := s.ensureAvailable(ctx, name, email); err != nil {
		return nil, "", err
	}

	// Nobody knows this password; the member sets a real one on first login.
	unusable, err := utils.GenerateSecureToken(constants.SecureTokenBytes)
	if err != nil {
		return nil, "", err
	}
	hash, err := hashPassword(unusable)
	if err != nil {
		return nil, "", err
	}

	token, err := utils.GenerateSecureToken(constants.SecureTokenBytes)
	if err != nil {
		return nil, "", err
	}
	expiresAt := s.now().Add(constants.InviteTokenTTL)

	member := &models.User{
		Name:               name,
		PasswordHash:       hash,
		Role:               input.Role,
		Gender:             input.Gender,
		FamilyID:           &familyID,
		Email:              email,
		TempToken:          &token,
		TempTokenExpiresAt: &expiresAt,
		MustChangePassword: true,
	}

	if err := s.userRepo.Create(ctx, member); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, "", ErrAccountConflict
		}
		return nil, "", fmt.Errorf("failed to create member: %w", err)
	}

	if member.Email != nil {
		familyName := ""
		if family, err := s.familyRepo.FindByID(ctx, familyID); err == nil {
			familyName = family.Name
		}
		if err := s.mailer.SendInviteEmail(ctx, *member.Email, member.Name, familyName, token); err != nil {
			s.log.WithError(err).WithField("member_id", member.ID).Warn("failed to send invite email")
		}
	}

	s.log.WithFields(logrus.Fields{
		"family_id": familyID,
		"member_id": member.ID,
		"role":      member.Role,
	}).Info("member invited")

	return member, token, nil
}

// AcceptInvite sets the first password of an invited member
func (s *FamilyService) AcceptInvite(ctx context.Context, input AcceptInviteInput) (*models.User, error) {
	if err := utils.ValidatePassword(input.NewPassword); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByInviteToken(ctx, strings.TrimSpace(input.Name), strings.TrimSpace(input.Token))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidOrExpiredToken
		}
		return nil, fmt.Errorf("failed to find invite: %w", err)
	}

	if err := s.redeemToken(ctx, user, input.NewPassword); err != nil {
		return nil, err
	}
	return user, nil
}

// RequestPasswordReset emails a reset link when the address belongs to a
// person. The outcome is the same whether it does or not.
func (s *FamilyService) RequestPasswordReset(ctx context.Context, email string) error {
	normalized := utils.NormalizeEmail(email)
	if normalized == nil {
		return nil
	}

	user, err := s.userRepo.FindByEmail(ctx, *normalized)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return fmt.Errorf("failed to find user: %w", err)
	}

	token, err := utils.GenerateSecureToken(constants.SecureTokenBytes)
	if err != nil {
		return err
	}
	expiresAt := s.now().Add(constants.PasswordResetTokenTTL)
	user.TempToken = &token
	user.TempTokenExpiresAt = &expiresAt
	// The reset replaces any pending invite; the person finishes with this link.
	user.MustChangePassword = false

	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}

	if err := s.mailer.SendPasswordResetEmail(ctx, *user.Email, user.Name, token); err != nil {
		s.log.WithError(err).WithField("user_id", user.ID).Warn("failed to send password reset email")
	}
	return nil
}

// ResetPassword sets a new password using a reset token
func (s *FamilyService) ResetPassword(ctx context.Context, input ResetPasswordInput) (*models.User, error) {
	if err := utils.ValidatePassword(input.NewPassword); err != nil {
		return nil, err
	}

	token := strings.TrimSpace(input.Token)
	if token == "" {
		return nil, ErrInvalidOrExpiredToken
	}

	user, err := s.userRepo.FindByResetToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidOrExpiredToken
		}
		return nil, fmt.Errorf("failed to find reset token: %w", err)
	}

	if err := s.redeemToken(ctx, user, input.NewPassword); err != nil {
		return nil, err
	}
	return user, nil
}

// redeemToken checks the token expiry, then sets the password and clears the
// token. Only one of several concurrent redemptions of a token succeeds.
func (s *FamilyService) redeemToken(ctx context.Context, user *models.User, password string) error {
	if user.TempToken == nil || user.TempTokenExpiresAt == nil || !s.now().Before(*user.TempTokenExpiresAt) {
		return ErrTokenExpired
	}

	hash, err := hashPassword(password)
	if err != nil {
		return err
	}

	if err := s.userRepo.RedeemTempToken(ctx, user.ID, *user.TempToken, hash); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidOrExpiredToken
		}
		return fmt.Errorf("failed to update password: %w", err)
	}

	user.PasswordHash = hash
	user.TempToken = nil
	user.TempTokenExpiresAt = nil
	user.MustChangePassword = false
	return nil
}

// GetFamily returns the caller's family
func (s *FamilyService) GetFamily(ctx context.Context, identity Identity) (*models.Family, error) {
	familyID, err := identity.requireFamily()
	if err != nil {
		return nil, err
	}
	return s.findFamily(ctx, familyID)
}

// RenameFamily changes the caller's family name
func (s *FamilyService) RenameFamily(ctx context.Context, identity Identity, name string) (*models.Family, error) {
	if err := identity.requireAdmin(); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if err := utils.ValidateName("name", name); err != nil {
		return nil, err
	}

	family, err := s.GetFamily(ctx, identity)
	if err != nil {
		return nil, err
	}

	family.Name = name
	if err := s.familyRepo.Update(ctx, family); err != nil {
		return nil, fmt.Errorf("failed to update family: %w", err)
	}
	return family, nil
}

// RegenerateInviteCode replaces the family's join code
func (s *FamilyService) RegenerateInviteCode(ctx context.Context, identity Identity) (*models.Family, error) {
	if err := identity.requireAdmin(); err != nil {
		return nil, err
	}

	family, err := s.GetFamily(ctx, identity)
	if err != nil {
		return nil, err
	}

	code, err := utils.GenerateInviteCode()
	if err != nil {
		return nil, err
	}

	family.InviteCode = code
	if err := s.familyRepo.Update(ctx, family); err != nil {
		return nil, fmt.Errorf("failed to update invite code: %w", err)
	}
	return family, nil
}

// JoinFamily adds a person without a family to the family owning code, as a parent
func (s *FamilyService) JoinFamily(ctx context.Context, identity Identity, code string) (*models.User, error) {
	if identity.FamilyID != nil {
		return nil, ErrAlreadyInFamily
	}

	family, err := s.familyRepo.FindByInviteCode(ctx, utils.NormalizeInviteCode(code))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidInviteCode
		}
		return nil, fmt.Errorf("failed to find family: %w", err)
	}

	user, err := s.userRepo.FindByID(ctx, identity.PersonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	user.FamilyID = &family.ID
	user.Role = models.RoleParent
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to join family: %w", err)
	}

	s.log.WithFields(logrus.Fields{"family_id": family.ID, "user_id": user.ID}).Info("person joined family")
	return user, nil
}

// ListMembers lists the caller's family, admin first
func (s *FamilyService) ListMembers(ctx context.Context, identity Identity) ([]models.User, error) {
	if err := identity.requireGuardian(); err != nil {
		return nil, err
	}
	familyID, err := identity.requireFamily()
	if err != nil {
		return nil, err
	}

	members, err := s.userRepo.ListByFamily(ctx, familyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	return members, nil
}

// GetMember returns one person visible to the caller. Children may only read themselves.
func (s *FamilyService) GetMember(ctx context.Context, identity Identity, id uint64) (*models.User, error) {
	if !identity.IsGuardian() && id != identity.PersonID {
		return nil, ErrForbidden
	}

	member, err := s.userRepo.FindVisible(ctx, id, identity.FamilyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("failed to find member: %w", err)
	}
	return member, nil
}

// UpdateMember changes a profile. Anyone may edit themselves, guardians may
// edit their family, and only the admin changes roles.
func (s *FamilyService) UpdateMember(ctx context.Context, identity Identity, id uint64, input UpdateMemberInput) (*models.User, error) {
	member, err := s.GetMember(ctx, identity, id)
	if err != nil {
		return nil, err
	}
	if member.ID != identity.PersonID && !identity.SameFamily(member.FamilyID) {
		return nil, ErrForbidden
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if err := utils.ValidateName("name", name); err != nil {
			return nil, err
		}
		if name != member.Name {
			if err := s.ensureAvailable(ctx, name, nil); err != nil {
				return nil, err
			}
			member.Name = name
		}
	}
	if input.Gender != nil {
		member.Gender = strings.TrimSpace(*input.Gender)
	}
	if input.Email != nil {
		if err := utils.ValidateEmail(*input.Email); err != nil {
			return nil, err
		}
		email := utils.NormalizeEmail(*input.Email)
		if email != nil && (member.Email == nil || *member.Email != *email) {
			if err := s.ensureAvailable(ctx, "", email); err != nil {
				return nil, err
			}
		}
		member.Email = email
	}
	if input.Role != nil && *input.Role != member.Role {
		if err := identity.requireAdmin(); err != nil {
			return nil, err
		}
		if member.Role == models.RoleAdmin {
			return nil, ErrCannotChangeAdminRole
		}
		if *input.Role != models.RoleParent && *input.Role != models.RoleChild {
			return nil, ErrInvalidMemberRole
		}
		member.Role = *input.Role
	}

	if err := s.userRepo.Update(ctx, member); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAccountConflict
		}
		return nil, fmt.Errorf("failed to update member: %w", err)
	}
	return member, nil
}

// DeleteMember removes a member of the admin's family with their ledger history
func (s *FamilyService) DeleteMember(ctx context.Context, identity Identity, id uint64) error {
	if err := identity.requireAdmin(); err != nil {
		return err
	}
	if id == identity.PersonID {
		return ErrCannotRemoveSelf
	}

	member, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMemberNotFound
		}
		return fmt.Errorf("failed to find member: %w", err)
	}
	if !identity.SameFamily(member.FamilyID) {
		return ErrMemberNotFound
	}
	if member.Role == models.RoleAdmin {
		return ErrCannotRemoveAdmin
	}

	if err := s.userRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete member: %w", err)
	}

	s.log.WithFields(logrus.Fields{"family_id": *identity.FamilyID, "member_id": id}).Info("member removed")
	return nil
}

// DeleteFamily wipes a family and everything in it. Administrative use only.
func (s *FamilyService) DeleteFamily(ctx context.Context, familyID uint64) error {
	if _, err := s.findFamily(ctx, familyID); err != nil {
		return err
	}
	if err := s.familyRepo.Delete(ctx, familyID); err != nil {
		return fmt.Errorf("failed to delete family: %w", err)
	}
	s.log.WithField("family_id", familyID).Warn("family wiped")
	return nil
}

// SeedDefaults appends the locale's starter catalog to an existing family
func (s *FamilyService) SeedDefaults(ctx context.Context, familyID uint64, locale string) (int, int, error) {
	if _, err := s.findFamily(ctx, familyID); err != nil {
		return 0, 0, err
	}

	tasks, gifts := DefaultCatalog(locale)
	if err := s.familyRepo.SeedCatalog(ctx, familyID, tasks, gifts); err != nil {
		return 0, 0, fmt.Errorf("failed to seed catalog: %w", err)
	}
	return len(tasks), len(gifts), nil
}

func (s *FamilyService) findFamily(ctx context.Context, familyID uint64) (*models.Family, error) {
	family, err := s.familyRepo.FindByID(ctx, familyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFamilyNotFound
		}
		return nil, fmt.Errorf("failed to find family: %w", err)
	}
	return family, nil
}

// ensureAvailable checks that a login name and email are unused. Empty values are skipped.
func (s *FamilyService) ensureAvailable(ctx context.Context, name string, email *string) error {
	if name != "" {
		if _, err := s.userRepo.FindByName(ctx, name); err == nil {
			return ErrNameTaken
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to check name: %w", err)
		}
	}
	if email != nil {
		if _, err := s.userRepo.FindByEmail(ctx, *email); err == nil {
			return ErrEmailTaken
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to check email: %w", err)
		}
	}
	return nil
}
