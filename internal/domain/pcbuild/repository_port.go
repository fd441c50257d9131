package pcbuild

import (
	"context"
	"errors"
)

// KV is the flat key-value store the selection persists to.
type KV interface {
	// Get returns ErrKeyNotFound when nothing is stored under key.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

var ErrKeyNotFound = errors.New("pcbuild: key not found")
