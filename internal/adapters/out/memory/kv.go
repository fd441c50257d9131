package memory

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"sync"
	"time"

	pcbuilddom "storefront/internal/domain/pcbuild"
)

// KV is a map-backed pcbuild.KV.
type KV struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewKV() *KV {
	return &KV{data: map[string][]byte{}}
}

func (kv *KV) Get(_ context.Context, key string) ([]byte, error) {
	kv.mu.RLock()
	defer kv.mu.RUnlock()
	v, ok := kv.data[key]
	if !ok {
		return nil, pcbuilddom.ErrKeyNotFound
	}
	return append([]byte{}, v...), nil
}

func (kv *KV) Set(_ context.Context, key string, value []byte) error {
	kv.mu.Lock()
	kv.data[key] = append([]byte{}, value...)
	kv.mu.Unlock()
	return nil
}

func (kv *KV) Delete(_ context.Context, key string) error {
	kv.mu.Lock()
	delete(kv.data, key)
	kv.mu.Unlock()
	return nil
}

// Namespaces hands out one KV per session id. A namespace nobody touched
// for ttl is dropped, like a Redis key past its expiry; ttl <= 0 keeps
// namespaces for the life of the process.
type Namespaces struct {
	mu  sync.Mutex
	ttl time.Duration
	now func() time.Time
	kvs map[string]*namespace
}

type namespace struct {
	*KV
	owner *Namespaces
	used  time.Time
}

func NewNamespaces(ttl time.Duration) *Namespaces {
	return &Namespaces{ttl: ttl, now: time.Now, kvs: map[string]*namespace{}}
}

// Namespace returns the KV of sessionID, creating it when absent or
// expired. Expired namespaces of other sessions are dropped on the way.
func (n *Namespaces) Namespace(sessionID string) pcbuilddom.KV {
	now := n.now()
	n.sweep(now)

	n.mu.Lock()
	defer n.mu.Unlock()
	ns, ok := n.kvs[sessionID]
	if !ok {
		ns = &namespace{KV: NewKV(), owner: n}
		n.kvs[sessionID] = ns
	}
	ns.used = now
	return ns
}

// Sweep drops every namespace idle since before now-ttl and returns how
// many it dropped.
func (n *Namespaces) Sweep(now time.Time) int {
	return n.sweep(now)
}

// Len is the number of live namespaces.
func (n *Namespaces) Len() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.kvs)
}

func (n *Namespaces) sweep(now time.Time) int {
	if n.ttl <= 0 {
		return 0
	}
	cutoff := now.Add(-n.ttl)
	n.mu.Lock()
	defer n.mu.Unlock()
	dropped := 0
	for id, ns := range n.kvs {
		if ns.used.Before(cutoff) {
			delete(n.kvs, id)
			dropped++
		}
	}
	return dropped
}

func (ns *namespace) touch() {
	now := ns.owner.now()
	ns.owner.mu.Lock()
	ns.used = now
	ns.owner.mu.Unlock()
}

func (ns *namespace) Get(ctx context.Context, key string) ([]byte, error) {
	ns.touch()
	return ns.KV.Get(ctx, key)
}

func (ns *namespace) Set(ctx context.Context, key string, value []byte) error {
	ns.touch()
	return ns.KV.Set(ctx, key, value)
}

func (ns *namespace) Delete(ctx context.Context, key string) error {
	ns.touch()
	return ns.KV.Delete(ctx, key)
}

// Pictures keeps uploads inline as data URLs.
type Pictures struct{}

func (Pictures) Put(_ context.Context, uid, contentType string, data []byte) (string, error) {
	if strings.TrimSpace(uid) == "" {
		return "", fmt.Errorf("memory: empty uid")
	}
	ct := strings.TrimSpace(contentType)
	if ct == "" {
		ct = "application/octet-stream"
	}
	return "data:" + ct + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}
