// internal/domain/user/entity.go
package user

import (
	"errors"
	"strings"
	"time"
)

// Profile is the account metadata kept beside the identity record.
// The document id is the identity uid.
type Profile struct {
	UID        string    `json:"uid"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone"`
	ProfilePic string    `json:"profilePic"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Patch is a partial profile write. Nil fields are left untouched.
type Patch struct {
	Name       *string `json:"name,omitempty"`
	Email      *string `json:"email,omitempty"`
	Phone      *string `json:"phone,omitempty"`
	ProfilePic *string `json:"profilePic,omitempty"`
}

var (
	ErrInvalidUID   = errors.New("user: invalid uid")
	ErrInvalidName  = errors.New("user: invalid name")
	ErrInvalidEmail = errors.New("user: invalid email")
	ErrInvalidPhone = errors.New("user: invalid phone")
	ErrEmptyPatch   = errors.New("user: empty patch")
)

// Policy
var (
	MaxNameLength  = 100
	MaxPhoneLength = 32
)

// NewProfile builds the record written right after signup.
func NewProfile(uid, name, email string, now time.Time) (Profile, error) {
	now = now.UTC()
	p := Profile{
		UID:       strings.TrimSpace(uid),
		Name:      strings.TrimSpace(name),
		Email:     strings.TrimSpace(email),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := p.validate(); err != nil {
		return Profile{}, err
	}
	return p, nil
}

// Apply merges the non-nil patch fields into p.
func (p *Profile) Apply(in Patch, now time.Time) error {
	in = in.Normalize()
	if in.Name != nil {
		p.Name = *in.Name
	}
	if in.Email != nil {
		p.Email = *in.Email
	}
	if in.Phone != nil {
		p.Phone = *in.Phone
	}
	if in.ProfilePic != nil {
		p.ProfilePic = *in.ProfilePic
	}
	if !now.IsZero() {
		p.UpdatedAt = now.UTC()
	}
	return p.validate()
}

// Normalize trims every present field. An explicitly empty string stays
// present so a caller can blank out a field.
func (in Patch) Normalize() Patch {
	return Patch{
		Name:       trimPtr(in.Name),
		Email:      trimPtr(in.Email),
		Phone:      trimPtr(in.Phone),
		ProfilePic: trimPtr(in.ProfilePic),
	}
}

// IsEmpty reports whether the patch changes nothing.
func (in Patch) IsEmpty() bool {
	return in.Name == nil && in.Email == nil && in.Phone == nil && in.ProfilePic == nil
}

// Validate checks field bounds of a patch.
func (in Patch) Validate() error {
	if in.IsEmpty() {
		return ErrEmptyPatch
	}
	if in.Name != nil && len([]rune(*in.Name)) > MaxNameLength {
		return ErrInvalidName
	}
	if in.Email != nil && *in.Email != "" && !strings.Contains(*in.Email, "@") {
		return ErrInvalidEmail
	}
	if in.Phone != nil && len(*in.Phone) > MaxPhoneLength {
		return ErrInvalidPhone
	}
	return nil
}

// PatchFromProfile turns a full record into a patch that sets every field.
func PatchFromProfile(p Profile) Patch {
	return Patch{
		Name:       strPtr(p.Name),
		Email:      strPtr(p.Email),
		Phone:      strPtr(p.Phone),
		ProfilePic: strPtr(p.ProfilePic),
	}
}

func (p Profile) validate() error {
	if p.UID == "" {
		return ErrInvalidUID
	}
	if len([]rune(p.Name)) > MaxNameLength {
		return ErrInvalidName
	}
	if p.Email != "" && !strings.Contains(p.Email, "@") {
		return ErrInvalidEmail
	}
	if len(p.Phone) > MaxPhoneLength {
		return ErrInvalidPhone
	}
	return nil
}

func trimPtr(p *string) *string {
	if p == nil {
		return nil
	}
	s := strings.TrimSpace(*p)
	return &s
}

func strPtr(s string) *string { return &s }

// MaxPictureBytes bounds an uploaded profile picture.
var MaxPictureBytes = 5 << 20

var ErrInvalidPicture = errors.New("user: invalid picture")

// ValidatePicture accepts non-empty image uploads up to MaxPictureBytes.
func ValidatePicture(contentType string, size int) error {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if !strings.HasPrefix(ct, "image/") || size <= 0 || size > MaxPictureBytes {
		return ErrInvalidPicture
	}
	return nil
}
