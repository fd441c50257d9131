package db

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

// Notifier fans LISTEN/NOTIFY payloads out to per-key subscribers. The
// payload of every notification is the key (a uid).
type Notifier struct {
	listener *pq.Listener
	log      *zap.Logger

	mu   sync.Mutex
	subs map[string]map[string]map[int]func()
	next int

	done chan struct{}
	once sync.Once
}

// NewNotifier opens a dedicated listener connection and listens on every
// channel.
func NewNotifier(dsn string, log *zap.Logger, channels ...string) (*Notifier, error) {
	if log == nil {
		log = zap.NewNop()
	}
	n := newNotifier(log)

	n.listener = pq.NewListener(dsn, time.Second, time.Minute, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			n.log.Warn("[db.notify] listener event", zap.Int("event", int(ev)), zap.Error(err))
		}
	})
	for _, ch := range channels {
		if err := n.listener.Listen(ch); err != nil {
			_ = n.listener.Close()
			return nil, fmt.Errorf("db: listen %s: %w", ch, err)
		}
	}

	go n.run()
	return n, nil
}

func newNotifier(log *zap.Logger) *Notifier {
	return &Notifier{
		log:  log,
		subs: map[string]map[string]map[int]func(){},
		done: make(chan struct{}),
	}
}

func (n *Notifier) run() {
	for {
		select {
		case <-n.done:
			return
		case ev, ok := <-n.listener.Notify:
			if !ok {
				return
			}
			n.dispatch(ev)
		case <-time.After(90 * time.Second):
			go func() {
				if err := n.listener.Ping(); err != nil {
					n.log.Warn("[db.notify] ping failed", zap.Error(err))
				}
			}()
		}
	}
}

// dispatch wakes the subscribers of one notification. A nil notification
// follows a reconnect, when any change may have been missed, so every
// subscriber is woken.
func (n *Notifier) dispatch(ev *pq.Notification) {
	n.mu.Lock()
	var fns []func()
	if ev == nil {
		for _, byKey := range n.subs {
			for _, byID := range byKey {
				for _, fn := range byID {
					fns = append(fns, fn)
				}
			}
		}
	} else {
		for _, fn := range n.subs[ev.Channel][ev.Extra] {
			fns = append(fns, fn)
		}
	}
	n.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// Subscribe registers fn for notifications on channel carrying key.
func (n *Notifier) Subscribe(channel, key string, fn func()) (unsubscribe func()) {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.next
	n.next++
	byKey, ok := n.subs[channel]
	if !ok {
		byKey = map[string]map[int]func(){}
		n.subs[channel] = byKey
	}
	byID, ok := byKey[key]
	if !ok {
		byID = map[int]func(){}
		byKey[key] = byID
	}
	byID[id] = fn

	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		delete(n.subs[channel][key], id)
		if len(n.subs[channel][key]) == 0 {
			delete(n.subs[channel], key)
		}
	}
}

func (n *Notifier) Close() error {
	if n == nil {
		return nil
	}
	var err error
	n.once.Do(func() {
		close(n.done)
		if n.listener != nil {
			err = n.listener.Close()
		}
	})
	return err
}

// watch runs load on start and after each notification for key until stop
// or ctx ends. Bursts of notifications collapse into a single reload.
func watch(ctx context.Context, n *Notifier, channel, key string, load func(context.Context)) (func(), error) {
	if n == nil {
		return nil, errors.New("db: notifier is nil")
	}
	ctx, cancel := context.WithCancel(ctx)

	wake := make(chan struct{}, 1)
	signal := func() {
		select {
		case wake <- struct{}{}:
		default:
		}
	}
	unsubscribe := n.Subscribe(channel, key, signal)
	signal()

	go func() {
		defer unsubscribe()
		for {
			select {
			case <-ctx.Done():
				return
			case <-wake:
				load(ctx)
			}
		}
	}()
	return cancel, nil
}
