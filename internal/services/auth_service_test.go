package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/family-chores-api/internal/models"
	"github.com/yukikurage/family-chores-api/internal/repository"
	"github.com/yukikurage/family-chores-api/internal/testutil"
	"github.com/yukikurage/family-chores-api/internal/utils"
)

func TestLogin(t *testing.T) {
	db := testutil.NewDB(t)
	service := NewAuthService(repository.NewUserRepository(db))
	family, _ := testutil.CreateFamily(t, db, "Smith")
	child := testutil.CreateMember(t, db, family, "leo", models.RoleChild)

	tests := []struct {
		name     string
		input    LoginInput
		wantErr  error
		wantUser uint64
	}{
		{"valid", LoginInput{Name: " leo ", Password: testutil.Password}, nil, child.ID},
		{"wrong password", LoginInput{Name: "leo", Password: "nope"}, ErrInvalidCredentials, 0},
		{"unknown name", LoginInput{Name: "nobody", Password: testutil.Password}, ErrInvalidCredentials, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := service.Login(context.Background(), tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantUser, user.ID)
		})
	}
}

func TestChangePassword(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	service := NewAuthService(repository.NewUserRepository(db))
	family, _ := testutil.CreateFamily(t, db, "Smith")
	child := testutil.CreateMember(t, db, family, "leo", models.RoleChild)
	require.NoError(t, db.Model(child).Update("must_change_password", true).Error)
	testutil.SetPoints(t, db, child.ID, 12)

	err := service.ChangePassword(ctx, IdentityOf(child), ChangePasswordInput{CurrentPassword: "wrong", NewPassword: "another1"})
	assert.ErrorIs(t, err, ErrWrongPassword)

	err = service.ChangePassword(ctx, IdentityOf(child), ChangePasswordInput{CurrentPassword: testutil.Password, NewPassword: "short"})
	assert.True(t, utils.IsValidationError(err))

	require.NoError(t, service.ChangePassword(ctx, IdentityOf(child), ChangePasswordInput{CurrentPassword: testutil.Password, NewPassword: "another1"}))

	user, err := service.Login(ctx, LoginInput{Name: "leo", Password: "another1"})
	require.NoError(t, err)
	assert.False(t, user.MustChangePassword)
	assert.Equal(t, 12, user.Points)
}

func TestGetUser_NotFound(t *testing.T) {
	db := testutil.NewDB(t)
	service := NewAuthService(repository.NewUserRepository(db))

	_, err := service.GetUser(context.Background(), 42)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
