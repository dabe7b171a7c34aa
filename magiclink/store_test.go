package magiclink_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	apperrors "github.com/jrsteele09/tenant-auth-server/internal/errors"
	"github.com/jrsteele09/tenant-auth-server/magiclink"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

const ttl = 900 * time.Second

type storeFixture struct {
	store   magiclink.Store
	advance func(time.Duration)
}

func newRedisFixture(t *testing.T) *storeFixture {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = rdb.Close()
		mr.Close()
	})
	return &storeFixture{
		store:   magiclink.NewRedisStore(rdb),
		advance: mr.FastForward,
	}
}

func newMemoryFixture(t *testing.T) *storeFixture {
	t.Helper()
	now := time.Now()
	return &storeFixture{
		store:   magiclink.NewMemoryStore(func() time.Time { return now }),
		advance: func(d time.Duration) { now = now.Add(d) },
	}
}

func TestStores(t *testing.T) {
	fixtures := map[string]func(*testing.T) *storeFixture{
		"redis":  newRedisFixture,
		"memory": newMemoryFixture,
	}

	for name, newFixture := range fixtures {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			t.Run("single use", func(t *testing.T) {
				f := newFixture(t)
				require.NoError(t, f.store.Put(ctx, "tok", magiclink.Entry{UserID: "user-1"}, ttl))

				entry, err := f.store.Take(ctx, "tok")
				require.NoError(t, err)
				require.Equal(t, "user-1", entry.UserID)

				_, err = f.store.Take(ctx, "tok")
				require.ErrorIs(t, err, apperrors.ErrNotFound)
			})

			t.Run("expires after ttl", func(t *testing.T) {
				f := newFixture(t)
				require.NoError(t, f.store.Put(ctx, "tok", magiclink.Entry{UserID: "user-1"}, ttl))

				f.advance(ttl + time.Second)
				_, err := f.store.Take(ctx, "tok")
				require.ErrorIs(t, err, apperrors.ErrNotFound)
			})

			t.Run("live before ttl", func(t *testing.T) {
				f := newFixture(t)
				require.NoError(t, f.store.Put(ctx, "tok", magiclink.Entry{UserID: "user-1"}, ttl))

				f.advance(ttl - time.Second)
				_, err := f.store.Take(ctx, "tok")
				require.NoError(t, err)
			})

			t.Run("duplicate token", func(t *testing.T) {
				f := newFixture(t)
				require.NoError(t, f.store.Put(ctx, "tok", magiclink.Entry{UserID: "user-1"}, ttl))
				err := f.store.Put(ctx, "tok", magiclink.Entry{UserID: "user-2"}, ttl)
				require.ErrorIs(t, err, apperrors.ErrDuplicate)
			})

			t.Run("unknown token", func(t *testing.T) {
				f := newFixture(t)
				_, err := f.store.Take(ctx, "missing")
				require.ErrorIs(t, err, apperrors.ErrNotFound)
			})
		})
	}
}

func TestRedisKeyLayout(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	store := magiclink.NewRedisStore(rdb)
	require.NoError(t, store.Put(context.Background(), "abc", magiclink.Entry{UserID: "user-1"}, ttl))

	value, err := mr.Get("magic_link:abc")
	require.NoError(t, err)
	require.JSONEq(t, `{"userId":"user-1"}`, value)
	require.Equal(t, ttl, mr.TTL("magic_link:abc"))
}
