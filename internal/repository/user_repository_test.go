package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/family-chores-api/internal/models"
	"github.com/yukikurage/family-chores-api/internal/testutil"
	"gorm.io/gorm"
)

func setTempToken(t *testing.T, db *gorm.DB, user *models.User, token string, invite bool) {
	t.Helper()
	expires := time.Now().Add(time.Hour)
	require.NoError(t, db.Model(user).Updates(map[string]interface{}{
		"temp_token":            token,
		"temp_token_expires_at": expires,
		"must_change_password":  invite,
	}).Error)
}

func TestFindByResetToken_IgnoresInviteTokens(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()
	family, admin := testutil.CreateFamily(t, db, "Smith")
	invitee := testutil.CreateMember(t, db, family, "grandma", models.RoleParent)

	setTempToken(t, db, admin, "reset-token", false)
	setTempToken(t, db, invitee, "invite-token", true)

	found, err := repo.FindByResetToken(ctx, "reset-token")
	require.NoError(t, err)
	assert.Equal(t, admin.ID, found.ID)

	_, err = repo.FindByResetToken(ctx, "invite-token")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRedeemTempToken_SingleUse(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()
	_, admin := testutil.CreateFamily(t, db, "Smith")
	setTempToken(t, db, admin, "reset-token", false)

	require.NoError(t, repo.RedeemTempToken(ctx, admin.ID, "reset-token", "first-hash"))
	err := repo.RedeemTempToken(ctx, admin.ID, "reset-token", "second-hash")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	var stored models.User
	require.NoError(t, db.First(&stored, admin.ID).Error)
	assert.Equal(t, "first-hash", stored.PasswordHash)
	assert.Nil(t, stored.TempToken)
	assert.Nil(t, stored.TempTokenExpiresAt)
	assert.False(t, stored.MustChangePassword)
}
