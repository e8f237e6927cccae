package memory

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	ctx := context.Background()

	t.Run("take clears the value", func(t *testing.T) {
		s := NewStore(time.Minute)

		require.NoError(t, s.Put(ctx, "sess", "ad_session:abc123", "token"))

		v, ok, err := s.Take(ctx, "sess", "ad_session:abc123")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "token", v)

		_, ok, err = s.Take(ctx, "sess", "ad_session:abc123")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Zero(t, s.Len())
	})

	t.Run("sessions are isolated", func(t *testing.T) {
		s := NewStore(time.Minute)

		require.NoError(t, s.Put(ctx, "a", "k", "v"))

		_, ok, err := s.Take(ctx, "b", "k")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("expired values are not returned", func(t *testing.T) {
		s := NewStore(time.Minute)
		now := time.Now()
		s.now = func() time.Time { return now }

		require.NoError(t, s.Put(ctx, "sess", "k", "v"))
		require.NoError(t, s.Put(ctx, "other", "k", "v"))

		now = now.Add(2 * time.Minute)

		_, ok, err := s.Take(ctx, "sess", "k")
		require.NoError(t, err)
		assert.False(t, ok)

		removed, err := s.Sweep(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, removed)
		assert.Zero(t, s.Len())
	})

	t.Run("concurrent take succeeds once", func(t *testing.T) {
		s := NewStore(time.Minute)
		require.NoError(t, s.Put(ctx, "sess", "k", "v"))

		var (
			wg   sync.WaitGroup
			hits atomic.Int32
		)

		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, ok, _ := s.Take(ctx, "sess", "k"); ok {
					hits.Add(1)
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, int32(1), hits.Load())
	})
}
