package db_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"storefront/internal/adapters/out/db"
	addressdom "storefront/internal/domain/address"
	userdom "storefront/internal/domain/user"
	"storefront/internal/infra/database"
)

// Runs against a real server when STOREFRONT_TEST_DSN is set.
func openTestDB(t *testing.T) (*database.DB, *db.Notifier) {
	t.Helper()
	dsn := os.Getenv("STOREFRONT_TEST_DSN")
	if dsn == "" {
		t.Skip("STOREFRONT_TEST_DSN not set")
	}
	ctx := context.Background()
	conn, err := database.NewConnection(ctx, dsn, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, conn.EnsureSchema(ctx))

	n, err := db.NewNotifier(dsn, zap.NewNop(), database.ProfilesChannel, database.AddressesChannel)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = n.Close()
		_ = conn.Close()
	})
	return conn, n
}

func TestProfileRepositoryPG_CreateMergeWatch(t *testing.T) {
	conn, n := openTestDB(t)
	repo := db.NewProfileRepositoryPG(conn.Client, n)
	ctx := context.Background()
	uid := "u-" + uuid.NewString()

	events := make(chan userdom.ProfileEvent, 8)
	stop, err := repo.Watch(ctx, uid, func(ev userdom.ProfileEvent) { events <- ev })
	require.NoError(t, err)
	defer stop()

	first := <-events
	assert.True(t, first.Missing)

	require.NoError(t, repo.Create(ctx, userdom.Profile{UID: uid, Name: "Ada", Email: "ada@example.com"}))
	assert.ErrorIs(t, repo.Create(ctx, userdom.Profile{UID: uid}), userdom.ErrConflict)

	phone := "555"
	require.NoError(t, repo.Merge(ctx, uid, userdom.Patch{Phone: &phone}))

	got, err := repo.Get(ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, "Ada", got.Name)
	assert.Equal(t, "555", got.Phone)

	require.Eventually(t, func() bool {
		for {
			select {
			case ev := <-events:
				if ev.Profile.Phone == "555" {
					return true
				}
			default:
				return false
			}
		}
	}, 5*time.Second, 20*time.Millisecond)
}

func TestAddressRepositoryPG_CRUD(t *testing.T) {
	conn, n := openTestDB(t)
	repo := db.NewAddressRepositoryPG(conn.Client, n)
	ctx := context.Background()
	uid := "u-" + uuid.NewString()

	id, err := repo.Create(ctx, uid, addressdom.Input{AddressLine1: "1 Main", City: "Oslo", Country: "NO"})
	require.NoError(t, err)

	require.NoError(t, repo.Update(ctx, uid, id, addressdom.Input{AddressLine1: "2 Main", City: "Oslo", Country: "NO", Type: "work"}))
	list, err := repo.List(ctx, uid)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "2 Main", list[0].AddressLine1)
	assert.Equal(t, addressdom.TypeWork, list[0].Type)

	require.NoError(t, repo.Delete(ctx, uid, id))
	assert.ErrorIs(t, repo.Delete(ctx, uid, id), addressdom.ErrNotFound)
	assert.ErrorIs(t, repo.Update(ctx, uid, id, addressdom.Input{AddressLine1: "x", City: "y", Country: "z"}), addressdom.ErrNotFound)
}
