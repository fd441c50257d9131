package address

import (
	"context"
	"errors"
)

// ListEvent is one delivery of an address watch. Items is never nil.
type ListEvent struct {
	Items []Address
	Err   error
}

// Repository stores the address sub-collection of one user.
type Repository interface {
	// Create assigns a new id and returns it.
	Create(ctx context.Context, userID string, in Input) (string, error)
	Update(ctx context.Context, userID, id string, in Input) error
	Delete(ctx context.Context, userID, id string) error
	List(ctx context.Context, userID string) ([]Address, error)

	// Watch delivers the full list now and after every change until stop
	// is called or ctx ends.
	Watch(ctx context.Context, userID string, fn func(ListEvent)) (stop func(), err error)
}

var (
	ErrNotFound = errors.New("address: not found")
	ErrConflict = errors.New("address: conflict")
)
