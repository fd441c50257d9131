package usecase

import (
	"sync"
	"time"

	"storefront/internal/platform/live"
)

// Alert is a user-facing notification raised by a failed store operation.
type Alert struct {
	Title   string    `json:"title"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// DefaultAlertLimit bounds the alert backlog of one session.
const DefaultAlertLimit = 50

// Alerts keeps the recent alerts of a session, newest first, and fans each
// new one out to subscribers.
type Alerts struct {
	mu    sync.Mutex
	items []Alert
	limit int
	clock Clock
	feed  live.Feed[Alert]
}

func NewAlerts(limit int, clock Clock) *Alerts {
	if limit <= 0 {
		limit = DefaultAlertLimit
	}
	if clock == nil {
		clock = systemClock{}
	}
	return &Alerts{limit: limit, clock: clock}
}

// Push records an alert built from err.
func (a *Alerts) Push(title string, err error) {
	if a == nil || err == nil {
		return
	}
	al := Alert{Title: title, Message: err.Error(), At: a.clock.Now().UTC()}

	a.mu.Lock()
	a.items = append([]Alert{al}, a.items...)
	if len(a.items) > a.limit {
		a.items = a.items[:a.limit]
	}
	a.feed.Publish(al)
	a.mu.Unlock()
}

// List returns a copy of the backlog.
func (a *Alerts) List() []Alert {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]Alert{}, a.items...)
}

// Drain returns the backlog and empties it.
func (a *Alerts) Drain() []Alert {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := a.items
	a.items = nil
	if out == nil {
		out = []Alert{}
	}
	return out
}

// Subscribe delivers the most recent alert (if any) and every later one.
func (a *Alerts) Subscribe(fn func(Alert)) live.Subscription {
	return a.feed.Subscribe(fn)
}
