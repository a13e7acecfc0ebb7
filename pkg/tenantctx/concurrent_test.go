package tenantctx_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/tenantkit/pkg/tenantctx"
)

func TestCache_SingleFlight(t *testing.T) {
	t.Parallel()

	t.Run("concurrent SetTenant calls share one resolution", func(t *testing.T) {
		t.Parallel()

		resolver := newFakeResolver()
		resolver.block = make(chan struct{})
		cache := tenantctx.New(resolver)
		defer cache.Close()

		const numCallers = 50

		var wg sync.WaitGroup
		results := make([]tenantctx.Context, numCallers)
		errs := make([]error, numCallers)

		wg.Add(numCallers)
		for i := 0; i < numCallers; i++ {
			go func(i int) {
				defer wg.Done()
				results[i], errs[i] = cache.SetTenant(context.Background(), "t1")
			}(i)
		}

		// Let callers pile up behind the in-flight resolution, then
		// release it.
		close(resolver.block)
		wg.Wait()

		assert.Equal(t, int64(1), resolver.calls.Load())
		for i := 0; i < numCallers; i++ {
			require.NoError(t, errs[i])
			assert.Equal(t, "t1", results[i].TenantID)
		}
		assert.Equal(t, "t1", cache.Current().TenantID)
	})

	t.Run("distinct tenants resolve independently", func(t *testing.T) {
		t.Parallel()

		resolver := newFakeResolver()
		cache := tenantctx.New(resolver)
		defer cache.Close()

		const numCallers = 20

		var wg sync.WaitGroup
		wg.Add(numCallers * 2)
		for j := 0; j < numCallers; j++ {
			go func() {
				defer wg.Done()
				_, err := cache.SetTenant(context.Background(), "t1")
				assert.NoError(t, err)
			}()
			go func() {
				defer wg.Done()
				_, err := cache.SetTenant(context.Background(), "t2")
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		// One resolution per tenant id at most; callers arriving after the
		// flight completes are served from the store.
		assert.LessOrEqual(t, resolver.calls.Load(), int64(2))

		current := cache.Current().TenantID
		assert.Contains(t, []string{"t1", "t2"}, current)
	})

	t.Run("subscribers observe the update before any caller returns", func(t *testing.T) {
		t.Parallel()

		resolver := newFakeResolver()
		resolver.block = make(chan struct{})
		cache := tenantctx.New(resolver)
		defer cache.Close()

		notified := make(chan tenantctx.Context, 1)
		defer cache.Subscribe(func(tc tenantctx.Context) {
			select {
			case notified <- tc:
			default:
			}
		})()

		done := make(chan struct{})
		go func() {
			defer close(done)
			_, err := cache.SetTenant(context.Background(), "t1")
			assert.NoError(t, err)

			// By the time SetTenant returns, the notification has been
			// delivered.
			select {
			case tc := <-notified:
				assert.Equal(t, "t1", tc.TenantID)
			default:
				t.Error("subscriber not notified before SetTenant returned")
			}
		}()

		close(resolver.block)
		<-done
	})

	t.Run("concurrent subscribe and unsubscribe is safe", func(t *testing.T) {
		t.Parallel()

		cache := tenantctx.New(newFakeResolver())
		defer cache.Close()

		const numGoroutines = 50

		var wg sync.WaitGroup
		wg.Add(numGoroutines * 2)
		for j := 0; j < numGoroutines; j++ {
			go func() {
				defer wg.Done()
				unsub := cache.Subscribe(func(tenantctx.Context) {})
				unsub()
			}()
			go func() {
				defer wg.Done()
				_, _ = cache.SetTenant(context.Background(), "t1")
			}()
		}
		wg.Wait()

		assert.Equal(t, "t1", cache.Current().TenantID)
	})
}
