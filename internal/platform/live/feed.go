// Package live provides the observable used for everything a session watches
// (cart contents, profile, addresses, alerts).
//
// Contract:
//   - a new subscriber immediately receives the most recent value, if any
//   - later values are delivered in publish order
//   - Unsubscribe is idempotent; no delivery starts after it returns
//     (a delivery already running may finish)
//
// Callbacks run on the publishing goroutine and must not Publish to or
// Subscribe on the same feed.
package live

import (
	"sync"
	"sync/atomic"
)

// Subscription is the handle returned by Feed.Subscribe.
type Subscription interface {
	Unsubscribe()
}

// Feed holds the latest value of T and fans it out to subscribers.
// The zero value is ready to use and has no latest value.
type Feed[T any] struct {
	mu     sync.Mutex
	latest T
	has    bool
	nextID uint64
	subs   map[uint64]*subscriber[T]

	// serializes deliveries so subscribers see values in publish order
	deliver sync.Mutex
}

// NewFeed returns a feed that already holds initial.
func NewFeed[T any](initial T) *Feed[T] {
	f := &Feed[T]{}
	f.latest = initial
	f.has = true
	return f
}

type subscriber[T any] struct {
	fn     func(T)
	active atomic.Bool
	feed   *Feed[T]
	id     uint64
}

func (s *subscriber[T]) Unsubscribe() {
	if !s.active.CompareAndSwap(true, false) {
		return
	}
	s.feed.mu.Lock()
	delete(s.feed.subs, s.id)
	s.feed.mu.Unlock()
}

// Subscribe registers fn. If the feed has a value, fn receives it before
// Subscribe returns.
func (f *Feed[T]) Subscribe(fn func(T)) Subscription {
	s := &subscriber[T]{fn: fn, feed: f}
	s.active.Store(true)

	f.deliver.Lock()
	defer f.deliver.Unlock()

	f.mu.Lock()
	if f.subs == nil {
		f.subs = map[uint64]*subscriber[T]{}
	}
	f.nextID++
	s.id = f.nextID
	f.subs[s.id] = s
	v, has := f.latest, f.has
	f.mu.Unlock()

	if has && fn != nil {
		fn(v)
	}
	return s
}

// Publish stores v as the latest value and delivers it to every active subscriber.
func (f *Feed[T]) Publish(v T) {
	f.deliver.Lock()
	defer f.deliver.Unlock()

	f.mu.Lock()
	f.latest = v
	f.has = true
	targets := make([]*subscriber[T], 0, len(f.subs))
	for _, s := range f.subs {
		targets = append(targets, s)
	}
	f.mu.Unlock()

	for _, s := range targets {
		if s.fn == nil || !s.active.Load() {
			continue
		}
		s.fn(v)
	}
}

// Latest returns the most recent value and whether one was ever published.
func (f *Feed[T]) Latest() (T, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.latest, f.has
}

// Len reports the number of active subscribers.
func (f *Feed[T]) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}
