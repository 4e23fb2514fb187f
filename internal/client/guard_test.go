package client

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouteGuard_Check(t *testing.T) {
	t.Run("live session is allowed through", func(t *testing.T) {
		store := newTestStore(t)
		require.NoError(t, store.Save("signed.jwt.token", "a@b.com", time.Now().Add(time.Hour)))

		decision := NewRouteGuard(store).Check()
		assert.True(t, decision.Allowed)
		assert.Empty(t, decision.RedirectTo)
	})

	t.Run("no session redirects to login", func(t *testing.T) {
		decision := NewRouteGuard(newTestStore(t)).Check()
		assert.False(t, decision.Allowed)
		assert.Equal(t, LoginRoute, decision.RedirectTo)
	})

	t.Run("expired session redirects to login", func(t *testing.T) {
		store := newTestStore(t)
		require.NoError(t, store.Save("signed.jwt.token", "a@b.com", time.Now().Add(-time.Minute)))

		decision := NewRouteGuard(store).Check()
		assert.False(t, decision.Allowed)
		assert.Equal(t, LoginRoute, decision.RedirectTo)
	})
}
