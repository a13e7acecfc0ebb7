package tenantctx_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/tenantkit/pkg/policy"
	"github.com/dmitrymomot/tenantkit/pkg/tenantctx"
)

func testContext(tenantID string) tenantctx.Context {
	return tenantctx.Context{
		TenantID:   tenantID,
		TenantName: "Tenant " + tenantID,
		Role:       policy.RoleViewer,
		ResolvedAt: time.Now(),
		Source:     tenantctx.SourceFresh,
	}
}

func TestMemoryStore(t *testing.T) {
	t.Parallel()

	t.Run("stores and retrieves contexts", func(t *testing.T) {
		t.Parallel()

		store := tenantctx.NewMemoryStore()
		defer store.Close()

		want := testContext("t1")
		store.Set(context.Background(), "t1", want, time.Hour)

		got, ok := store.Get(context.Background(), "t1")
		require.True(t, ok)
		assert.Equal(t, want, got)
	})

	t.Run("misses unknown ids", func(t *testing.T) {
		t.Parallel()

		store := tenantctx.NewMemoryStore()
		defer store.Close()

		_, ok := store.Get(context.Background(), "missing")
		assert.False(t, ok)
	})

	t.Run("expires entries after TTL", func(t *testing.T) {
		t.Parallel()

		store := tenantctx.NewMemoryStore()
		defer store.Close()

		store.Set(context.Background(), "t1", testContext("t1"), 10*time.Millisecond)

		_, ok := store.Get(context.Background(), "t1")
		require.True(t, ok)

		time.Sleep(20 * time.Millisecond)

		_, ok = store.Get(context.Background(), "t1")
		assert.False(t, ok)
	})

	t.Run("deletes entries", func(t *testing.T) {
		t.Parallel()

		store := tenantctx.NewMemoryStore()
		defer store.Close()

		store.Set(context.Background(), "t1", testContext("t1"), time.Hour)
		store.Delete(context.Background(), "t1")

		_, ok := store.Get(context.Background(), "t1")
		assert.False(t, ok)
	})

	t.Run("evicts least recently used at capacity", func(t *testing.T) {
		t.Parallel()

		store := tenantctx.NewMemoryStoreWithSize(3)
		defer store.Close()

		for i := 1; i <= 3; i++ {
			id := fmt.Sprintf("t%d", i)
			store.Set(context.Background(), id, testContext(id), time.Hour)
		}

		// Touch t1 so t2 becomes the eviction candidate.
		_, ok := store.Get(context.Background(), "t1")
		require.True(t, ok)

		store.Set(context.Background(), "t4", testContext("t4"), time.Hour)

		_, ok = store.Get(context.Background(), "t2")
		assert.False(t, ok, "least recently used entry should be evicted")

		for _, id := range []string{"t1", "t3", "t4"} {
			_, ok := store.Get(context.Background(), id)
			assert.True(t, ok, "entry %s should survive", id)
		}
	})

	t.Run("close is idempotent", func(t *testing.T) {
		t.Parallel()

		store := tenantctx.NewMemoryStore()
		require.NoError(t, store.Close())
		require.NoError(t, store.Close())
	})
}
