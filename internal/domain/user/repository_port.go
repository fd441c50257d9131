package user

import (
	"context"
	"errors"
)

// ProfileEvent is one delivery of a profile watch. Missing is true when
// no record exists for the uid.
type ProfileEvent struct {
	Profile Profile
	Missing bool
	Err     error
}

// Repository stores profiles keyed by uid. Writes stamp updatedAt on the
// server side; Watch delivers the current record and every later change.
type Repository interface {
	Get(ctx context.Context, uid string) (Profile, error)

	// Create fails with ErrConflict if a record already exists.
	Create(ctx context.Context, p Profile) error

	// Merge applies patch on top of the stored record, creating it if absent.
	Merge(ctx context.Context, uid string, patch Patch) error

	// Watch calls fn until stop is called or ctx ends.
	Watch(ctx context.Context, uid string, fn func(ProfileEvent)) (stop func(), err error)
}

// Identity is what an identity provider returns after sign-in.
type Identity struct {
	UID          string `json:"uid"`
	Email        string `json:"email"`
	DisplayName  string `json:"displayName"`
	IDToken      string `json:"-"`
	RefreshToken string `json:"-"`
}

// IdentityProvider performs email/password authentication.
type IdentityProvider interface {
	SignIn(ctx context.Context, email, password string) (Identity, error)
	SignUp(ctx context.Context, email, password, displayName string) (Identity, error)
	SignOut(ctx context.Context, uid string) error
	Verify(ctx context.Context, idToken string) (Identity, error)
}

// PictureStore uploads profile pictures and returns their public URL.
type PictureStore interface {
	Put(ctx context.Context, uid, contentType string, data []byte) (string, error)
}

var (
	ErrNotFound           = errors.New("user: not found")
	ErrConflict           = errors.New("user: conflict")
	ErrInvalidCredentials = errors.New("user: invalid credentials")
	ErrEmailInUse         = errors.New("user: email already in use")
	ErrWeakPassword       = errors.New("user: weak password")
	ErrInvalidToken       = errors.New("user: invalid token")
)
