package querykey_test

import (
	"bytes"
	"log/slog"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/tenantkit/pkg/querykey"
)

func staticIdentity(id uuid.UUID) querykey.IdentityProviderFunc {
	return func() (uuid.UUID, bool) { return id, true }
}

func noIdentity() querykey.IdentityProviderFunc {
	return func() (uuid.UUID, bool) { return uuid.UUID{}, false }
}

func TestTenantKey(t *testing.T) {
	t.Parallel()

	t.Run("scopes key by authenticated identity", func(t *testing.T) {
		t.Parallel()

		id := uuid.New()
		factory := querykey.New(staticIdentity(id))

		key := factory.TenantKey("projects:list")
		assert.Equal(t, "tenant:"+id.String()+":projects:list", key)
	})

	t.Run("distinct identities never collide", func(t *testing.T) {
		t.Parallel()

		a := querykey.New(staticIdentity(uuid.New()))
		b := querykey.New(staticIdentity(uuid.New()))

		// Attacker-controlled base keys, including ones crafted to look
		// like partition boundaries.
		baseKeys := []string{
			"projects:list",
			"",
			"tenant:00000000-0000-0000-0000-000000000000:x",
			"anon:projects",
			strings.Repeat(":", 10),
		}

		for _, k := range baseKeys {
			assert.NotEqual(t, a.TenantKey(k), b.TenantKey(k), "base key %q", k)
		}
	})

	t.Run("same identity produces stable keys", func(t *testing.T) {
		t.Parallel()

		factory := querykey.New(staticIdentity(uuid.New()))
		assert.Equal(t, factory.TenantKey("k"), factory.TenantKey("k"))
	})
}

func TestTenantKey_NoIdentity(t *testing.T) {
	t.Parallel()

	t.Run("falls back to anon partition", func(t *testing.T) {
		t.Parallel()

		factory := querykey.New(noIdentity())
		assert.Equal(t, "anon:projects:list", factory.TenantKey("projects:list"))
	})

	t.Run("anon partition cannot collide with identity partition", func(t *testing.T) {
		t.Parallel()

		id := uuid.New()
		authed := querykey.New(staticIdentity(id))
		anon := querykey.New(noIdentity())

		// Even when the anonymous caller supplies the full authenticated
		// key as its base key, the partitions stay disjoint.
		forged := "tenant:" + id.String() + ":projects:list"
		assert.NotEqual(t, authed.TenantKey("projects:list"), anon.TenantKey(forged))
	})

	t.Run("reports a policy violation", func(t *testing.T) {
		t.Parallel()

		var reported atomic.Int64
		var lastBase string
		var buf bytes.Buffer

		factory := querykey.New(noIdentity(),
			querykey.WithLogger(slog.New(slog.NewTextHandler(&buf, nil))),
			querykey.WithViolationReporter(func(baseKey string) {
				reported.Add(1)
				lastBase = baseKey
			}),
		)

		key := factory.TenantKey("projects:list")

		// The call degrades, it does not fail.
		require.Equal(t, "anon:projects:list", key)
		assert.Equal(t, int64(1), reported.Load())
		assert.Equal(t, "projects:list", lastBase)
		assert.Contains(t, buf.String(), "without authenticated identity")
	})

	t.Run("authenticated calls are not reported", func(t *testing.T) {
		t.Parallel()

		var reported atomic.Int64
		factory := querykey.New(staticIdentity(uuid.New()),
			querykey.WithViolationReporter(func(string) { reported.Add(1) }),
		)

		factory.TenantKey("projects:list")
		assert.Zero(t, reported.Load())
	})
}

func TestNew_NilProvider(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() {
		querykey.New(nil)
	})
}
