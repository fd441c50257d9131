// internal/application/usecase/errors.go
package usecase

import (
	"errors"
	"fmt"
)

var (
	ErrOrderSubmission = errors.New("checkout: order submission failed")
	ErrNothingToOrder  = errors.New("checkout: nothing to order")
	ErrAuthInProgress  = errors.New("auth: another sign-in is in progress")
	ErrAuthCanceled    = errors.New("auth: sign-in canceled by logout")
)

// AuthError reports a failed sign-in, sign-up, sign-out or token resume.
type AuthError struct {
	Op  string
	Err error
}

func (e *AuthError) Error() string { return fmt.Sprintf("auth: %s: %v", e.Op, e.Err) }
func (e *AuthError) Unwrap() error { return e.Err }

// ProfileWriteError reports a failed profile create or merge.
type ProfileWriteError struct {
	UID string
	Err error
}

func (e *ProfileWriteError) Error() string {
	return fmt.Sprintf("profile: write uid=%s: %v", e.UID, e.Err)
}
func (e *ProfileWriteError) Unwrap() error { return e.Err }

// ProfileReadError reports a failed profile or address read (including a
// broken live watch).
type ProfileReadError struct {
	UID string
	Err error
}

func (e *ProfileReadError) Error() string {
	return fmt.Sprintf("profile: read uid=%s: %v", e.UID, e.Err)
}
func (e *ProfileReadError) Unwrap() error { return e.Err }

// AddressWriteError reports a failed address create, update or delete.
type AddressWriteError struct {
	Op  string
	ID  string
	Err error
}

func (e *AddressWriteError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("address: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("address: %s id=%s: %v", e.Op, e.ID, e.Err)
}
func (e *AddressWriteError) Unwrap() error { return e.Err }

// AuthRequiredError is returned when an account operation runs without a
// signed-in user.
type AuthRequiredError struct {
	Op string
}

func (e *AuthRequiredError) Error() string {
	return fmt.Sprintf("auth: %s requires a signed-in user", e.Op)
}

// IsAuthRequired reports whether err is (or wraps) an AuthRequiredError.
func IsAuthRequired(err error) bool {
	var target *AuthRequiredError
	return errors.As(err, &target)
}
