package user_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	userdom "storefront/internal/domain/user"
)

func ptr(s string) *string { return &s }

func TestApply_PhoneOnlyKeepsOtherFields(t *testing.T) {
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	p, err := userdom.NewProfile("u1", "Ana", "ana@example.com", created)
	require.NoError(t, err)
	p.ProfilePic = "https://cdn/ana.png"

	later := created.Add(time.Hour)
	require.NoError(t, p.Apply(userdom.Patch{Phone: ptr(" 123 ")}, later))

	assert.Equal(t, "123", p.Phone)
	assert.Equal(t, "Ana", p.Name)
	assert.Equal(t, "https://cdn/ana.png", p.ProfilePic)
	assert.Equal(t, later, p.UpdatedAt)
	assert.Equal(t, created, p.CreatedAt)
}

func TestNewProfile_Validation(t *testing.T) {
	_, err := userdom.NewProfile(" ", "x", "x@y", time.Now())
	assert.ErrorIs(t, err, userdom.ErrInvalidUID)

	_, err = userdom.NewProfile("u", strings.Repeat("n", userdom.MaxNameLength+1), "", time.Now())
	assert.ErrorIs(t, err, userdom.ErrInvalidName)

	_, err = userdom.NewProfile("u", "n", "not-an-email", time.Now())
	assert.ErrorIs(t, err, userdom.ErrInvalidEmail)
}

func TestPatch_Validate(t *testing.T) {
	assert.ErrorIs(t, userdom.Patch{}.Validate(), userdom.ErrEmptyPatch)
	assert.ErrorIs(t, userdom.Patch{Phone: ptr(strings.Repeat("1", 40))}.Validate(), userdom.ErrInvalidPhone)
	assert.NoError(t, userdom.Patch{Name: ptr("")}.Validate())
}

func TestPatchFromProfile(t *testing.T) {
	p := userdom.Profile{UID: "u", Name: "n", Phone: "1"}
	patch := userdom.PatchFromProfile(p)
	require.NotNil(t, patch.Name)
	assert.Equal(t, "n", *patch.Name)
	require.NotNil(t, patch.Email)
	assert.Equal(t, "", *patch.Email)
}

func TestValidatePicture(t *testing.T) {
	assert.NoError(t, userdom.ValidatePicture("image/png", 10))
	assert.NoError(t, userdom.ValidatePicture(" IMAGE/JPEG ", userdom.MaxPictureBytes))
	assert.ErrorIs(t, userdom.ValidatePicture("text/plain", 10), userdom.ErrInvalidPicture)
	assert.ErrorIs(t, userdom.ValidatePicture("image/png", 0), userdom.ErrInvalidPicture)
	assert.ErrorIs(t, userdom.ValidatePicture("image/png", userdom.MaxPictureBytes+1), userdom.ErrInvalidPicture)
}
