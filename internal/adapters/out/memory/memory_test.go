package memory_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/adapters/out/memory"
	addressdom "storefront/internal/domain/address"
	pcbuilddom "storefront/internal/domain/pcbuild"
	userdom "storefront/internal/domain/user"
)

func TestNamespaces_IsolatesSessions(t *testing.T) {
	ns := memory.NewNamespaces(0)
	ctx := context.Background()

	require.NoError(t, ns.Namespace("a").Set(ctx, "k", []byte("1")))
	_, err := ns.Namespace("b").Get(ctx, "k")
	assert.ErrorIs(t, err, pcbuilddom.ErrKeyNotFound)

	v, err := ns.Namespace("a").Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "1", string(v))
}

func TestNamespaces_DropsIdleSessions(t *testing.T) {
	ns := memory.NewNamespaces(time.Hour)
	ctx := context.Background()

	require.NoError(t, ns.Namespace("old").Set(ctx, "k", []byte("1")))
	require.NoError(t, ns.Namespace("fresh").Set(ctx, "k", []byte("2")))
	assert.Equal(t, 2, ns.Len())

	assert.Equal(t, 0, ns.Sweep(time.Now().Add(30*time.Minute)))
	assert.Equal(t, 2, ns.Sweep(time.Now().Add(2*time.Hour)))
	assert.Equal(t, 0, ns.Len())

	_, err := ns.Namespace("old").Get(ctx, "k")
	assert.ErrorIs(t, err, pcbuilddom.ErrKeyNotFound)
	assert.Equal(t, 1, ns.Len())
}

func TestNamespaces_ZeroTTLKeepsEverything(t *testing.T) {
	ns := memory.NewNamespaces(0)
	require.NoError(t, ns.Namespace("a").Set(context.Background(), "k", []byte("1")))
	assert.Equal(t, 0, ns.Sweep(time.Now().Add(365*24*time.Hour)))
	assert.Equal(t, 1, ns.Len())
}

func TestIdentity_SignUpSignIn(t *testing.T) {
	idp := memory.NewIdentity()
	ctx := context.Background()

	_, err := idp.SignUp(ctx, "nope", "secret12", "X")
	assert.ErrorIs(t, err, userdom.ErrInvalidEmail)
	_, err = idp.SignUp(ctx, "a@example.com", "123", "X")
	assert.ErrorIs(t, err, userdom.ErrWeakPassword)

	id, err := idp.SignUp(ctx, "a@example.com", "secret12", "Ann")
	require.NoError(t, err)
	_, err = idp.SignUp(ctx, "A@example.com", "secret12", "Ann")
	assert.ErrorIs(t, err, userdom.ErrEmailInUse)

	_, err = idp.SignIn(ctx, "a@example.com", "wrong")
	assert.ErrorIs(t, err, userdom.ErrInvalidCredentials)
	got, err := idp.SignIn(ctx, " a@example.com ", "secret12")
	require.NoError(t, err)
	assert.Equal(t, id.UID, got.UID)

	v, err := idp.Verify(ctx, got.IDToken)
	require.NoError(t, err)
	assert.Equal(t, id.UID, v.UID)
}

func TestAddressRepository_WatchSeesWrites(t *testing.T) {
	repo := memory.NewAddressRepository()
	ctx := context.Background()

	var (
		mu   sync.Mutex
		seen [][]addressdom.Address
	)
	stop, err := repo.Watch(ctx, "u1", func(ev addressdom.ListEvent) {
		mu.Lock()
		seen = append(seen, ev.Items)
		mu.Unlock()
	})
	require.NoError(t, err)
	defer stop()

	id, err := repo.Create(ctx, "u1", addressdom.Input{AddressLine1: "1 Main", City: "Quezon", Country: "PH", Type: addressdom.TypeHome})
	require.NoError(t, err)
	assert.ErrorIs(t, repo.Update(ctx, "u1", "missing", addressdom.Input{AddressLine1: "x", City: "y", Country: "z", Type: addressdom.TypeWork}), addressdom.ErrNotFound)
	require.NoError(t, repo.Delete(ctx, "u1", id))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, seen, 3)
	assert.Empty(t, seen[0])
	assert.Len(t, seen[1], 1)
	assert.Empty(t, seen[2])
}

func TestProfileRepository_MergeCreatesAndPatches(t *testing.T) {
	repo := memory.NewProfileRepository()
	ctx := context.Background()

	name := "Mika"
	require.NoError(t, repo.Merge(ctx, "u1", userdom.Patch{Name: &name}))
	p, err := repo.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Mika", p.Name)
	assert.False(t, p.UpdatedAt.IsZero())

	assert.ErrorIs(t, repo.Create(ctx, p), userdom.ErrConflict)
}

func TestPictures_DataURL(t *testing.T) {
	url, err := memory.Pictures{}.Put(context.Background(), "u1", "image/png", []byte{1, 2})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "data:image/png;base64,"))
}
