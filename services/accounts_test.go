package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "risehub/errors"
	"risehub/models"
)

func signup(username string) RegisterInput {
	return RegisterInput{
		Username:        username,
		FirstName:       "Ama",
		LastName:        "Mensah",
		Email:           username + "@example.com",
		PhoneNumber:     "0244123456",
		Password:        "s3cret-pass",
		PasswordConfirm: "s3cret-pass",
	}
}

func TestRegisterAndAuthenticate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user, err := f.accounts.Register(ctx, signup("ama"))
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.False(t, user.IsStaff)
	assert.NotEqual(t, "s3cret-pass", user.PasswordHash)

	profile, err := f.store.GetStudentProfile(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "0244123456", profile.PhoneNumber)
	assert.True(t, profile.Complete())

	got, err := f.accounts.Authenticate(ctx, "ama", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = f.accounts.Authenticate(ctx, "ama", "wrong-password")
	assert.Equal(t, apperrors.Unauthorized, apperrors.KindOf(err))
	_, err = f.accounts.Authenticate(ctx, "nobody", "s3cret-pass")
	assert.Equal(t, apperrors.Unauthorized, apperrors.KindOf(err))
}

func TestRegisterValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	short := signup("ama")
	short.Password, short.PasswordConfirm = "short", "short"
	_, err := f.accounts.Register(ctx, short)
	require.Equal(t, apperrors.Invalid, apperrors.KindOf(err))
	assert.Contains(t, err.Error(), "password")

	mismatch := signup("ama")
	mismatch.PasswordConfirm = "different-pass"
	_, err = f.accounts.Register(ctx, mismatch)
	require.Equal(t, apperrors.Invalid, apperrors.KindOf(err))
	assert.Contains(t, err.Error(), "password_confirm")

	noPhone := signup("ama")
	noPhone.PhoneNumber = ""
	_, err = f.accounts.Register(ctx, noPhone)
	assert.Equal(t, apperrors.Invalid, apperrors.KindOf(err))
}

func TestRegisterDuplicateUsernameOrEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.accounts.Register(ctx, signup("ama"))
	require.NoError(t, err)

	_, err = f.accounts.Register(ctx, signup("ama"))
	assert.Equal(t, apperrors.Conflict, apperrors.KindOf(err))

	sameEmail := signup("ama2")
	sameEmail.Email = "AMA@example.com"
	_, err = f.accounts.Register(ctx, sameEmail)
	assert.Equal(t, apperrors.Conflict, apperrors.KindOf(err))
}

func TestProfileIsCreatedOnFirstRead(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	staff, err := f.accounts.CreateStaff(ctx, "admin", "admin@risehub.test", "admin-pass")
	require.NoError(t, err)
	assert.True(t, staff.IsStaff)

	p, err := f.accounts.Profile(ctx, staff.ID)
	require.NoError(t, err)
	assert.Equal(t, staff.ID, p.UserID)
	assert.Empty(t, p.PhoneNumber)
	assert.False(t, p.Complete())
	assert.Equal(t, models.SkillBeginner, p.TechSkillLevel)
	assert.Equal(t, models.ContactPhone, p.PreferredContact)

	_, err = f.accounts.Profile(ctx, 4040)
	assert.Equal(t, apperrors.NotFound, apperrors.KindOf(err))
}

func TestUpdateProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user, err := f.accounts.Register(ctx, signup("ama"))
	require.NoError(t, err)

	p, err := f.accounts.UpdateProfile(ctx, user.ID, ProfileInput{
		PhoneNumber:      "+233 20 111 2222",
		Address:          "<b>12</b> Ring Road",
		TechSkillLevel:   models.SkillBasic,
		OwnsSmartphone:   true,
		PreferredContact: models.ContactWhatsApp,
	})
	require.NoError(t, err)
	assert.Equal(t, "+233 20 111 2222", p.PhoneNumber)
	assert.Equal(t, "12 Ring Road", p.Address)
	assert.Equal(t, models.SkillBasic, p.TechSkillLevel)
	assert.True(t, p.OwnsSmartphone)
	assert.Equal(t, models.ContactWhatsApp, p.PreferredContact)

	_, err = f.accounts.UpdateProfile(ctx, user.ID, ProfileInput{PhoneNumber: "call me"})
	assert.Equal(t, apperrors.Invalid, apperrors.KindOf(err))

	_, err = f.accounts.UpdateProfile(ctx, user.ID, ProfileInput{PhoneNumber: "0244123456", TechSkillLevel: "expert"})
	assert.Equal(t, apperrors.Invalid, apperrors.KindOf(err))
}
