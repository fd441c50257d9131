package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	addressdom "storefront/internal/domain/address"
	"storefront/internal/platform/live"
)

// AddressRepository is an in-process address.Repository.
type AddressRepository struct {
	mu    sync.Mutex
	now   func() time.Time
	docs  map[string]map[string]addressdom.Address
	feeds map[string]*live.Feed[addressdom.ListEvent]
}

func NewAddressRepository() *AddressRepository {
	return &AddressRepository{
		now:   time.Now,
		docs:  map[string]map[string]addressdom.Address{},
		feeds: map[string]*live.Feed[addressdom.ListEvent]{},
	}
}

func (r *AddressRepository) Create(_ context.Context, userID string, in addressdom.Input) (string, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", addressdom.ErrInvalidUserID
	}
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	a, err := addressdom.New(id.String(), in, r.now())
	if err != nil {
		return "", err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	col, ok := r.docs[userID]
	if !ok {
		col = map[string]addressdom.Address{}
		r.docs[userID] = col
	}
	col[a.ID] = a
	r.publishLocked(userID)
	return a.ID, nil
}

func (r *AddressRepository) Update(_ context.Context, userID, id string, in addressdom.Input) error {
	userID, id = strings.TrimSpace(userID), strings.TrimSpace(id)
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.docs[userID][id]
	if !ok {
		return addressdom.ErrNotFound
	}
	next, err := addressdom.New(id, in, r.now())
	if err != nil {
		return err
	}
	next.CreatedAt = cur.CreatedAt
	r.docs[userID][id] = next
	r.publishLocked(userID)
	return nil
}

func (r *AddressRepository) Delete(_ context.Context, userID, id string) error {
	userID, id = strings.TrimSpace(userID), strings.TrimSpace(id)
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.docs[userID][id]; !ok {
		return addressdom.ErrNotFound
	}
	delete(r.docs[userID], id)
	r.publishLocked(userID)
	return nil
}

func (r *AddressRepository) List(_ context.Context, userID string) ([]addressdom.Address, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.listLocked(strings.TrimSpace(userID)), nil
}

func (r *AddressRepository) Watch(ctx context.Context, userID string, fn func(addressdom.ListEvent)) (func(), error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, addressdom.ErrInvalidUserID
	}
	r.mu.Lock()
	f, ok := r.feeds[userID]
	if !ok {
		f = live.NewFeed(addressdom.ListEvent{Items: r.listLocked(userID)})
		r.feeds[userID] = f
	}
	r.mu.Unlock()

	return watchFeed(ctx, f, fn), nil
}

// listLocked orders by creation time, then id.
func (r *AddressRepository) listLocked(userID string) []addressdom.Address {
	out := make([]addressdom.Address, 0, len(r.docs[userID]))
	for _, a := range r.docs[userID] {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (r *AddressRepository) publishLocked(userID string) {
	if f, ok := r.feeds[userID]; ok {
		f.Publish(addressdom.ListEvent{Items: r.listLocked(userID)})
	}
}
