// internal/adapters/out/memory/profile_repository.go
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	userdom "storefront/internal/domain/user"
	"storefront/internal/platform/live"
)

// ProfileRepository is an in-process user.Repository.
type ProfileRepository struct {
	mu    sync.Mutex
	now   func() time.Time
	docs  map[string]userdom.Profile
	feeds map[string]*live.Feed[userdom.ProfileEvent]
}

func NewProfileRepository() *ProfileRepository {
	return &ProfileRepository{
		now:   time.Now,
		docs:  map[string]userdom.Profile{},
		feeds: map[string]*live.Feed[userdom.ProfileEvent]{},
	}
}

// NewProfileRepositoryWithClock is useful for tests.
func NewProfileRepositoryWithClock(now func() time.Time) *ProfileRepository {
	r := NewProfileRepository()
	if now != nil {
		r.now = now
	}
	return r
}

func (r *ProfileRepository) Get(_ context.Context, uid string) (userdom.Profile, error) {
	uid = strings.TrimSpace(uid)
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.docs[uid]
	if !ok {
		return userdom.Profile{}, userdom.ErrNotFound
	}
	return p, nil
}

func (r *ProfileRepository) Create(_ context.Context, p userdom.Profile) error {
	uid := strings.TrimSpace(p.UID)
	if uid == "" {
		return userdom.ErrInvalidUID
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.docs[uid]; ok {
		return userdom.ErrConflict
	}
	now := r.now().UTC()
	p.UID = uid
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	r.docs[uid] = p
	r.publishLocked(uid)
	return nil
}

func (r *ProfileRepository) Merge(_ context.Context, uid string, patch userdom.Patch) error {
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return userdom.ErrInvalidUID
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now().UTC()
	p, ok := r.docs[uid]
	if !ok {
		p = userdom.Profile{UID: uid, CreatedAt: now}
	}
	if err := p.Apply(patch, now); err != nil {
		return err
	}
	r.docs[uid] = p
	r.publishLocked(uid)
	return nil
}

func (r *ProfileRepository) Watch(ctx context.Context, uid string, fn func(userdom.ProfileEvent)) (func(), error) {
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return nil, userdom.ErrInvalidUID
	}
	r.mu.Lock()
	f, ok := r.feeds[uid]
	if !ok {
		f = live.NewFeed(r.eventLocked(uid))
		r.feeds[uid] = f
	}
	r.mu.Unlock()

	return watchFeed(ctx, f, fn), nil
}

func (r *ProfileRepository) eventLocked(uid string) userdom.ProfileEvent {
	p, ok := r.docs[uid]
	if !ok {
		return userdom.ProfileEvent{Missing: true}
	}
	return userdom.ProfileEvent{Profile: p}
}

func (r *ProfileRepository) publishLocked(uid string) {
	if f, ok := r.feeds[uid]; ok {
		f.Publish(r.eventLocked(uid))
	}
}

// watchFeed subscribes fn to f until stop is called or ctx ends.
func watchFeed[T any](ctx context.Context, f *live.Feed[T], fn func(T)) func() {
	sub := f.Subscribe(fn)
	cancel := context.AfterFunc(ctx, sub.Unsubscribe)
	return func() {
		cancel()
		sub.Unsubscribe()
	}
}
