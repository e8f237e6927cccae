package usecase

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vadimbarashkov/linksplit/internal/entity"
	"github.com/vadimbarashkov/linksplit/mocks/usecase"
)

func sequence(values ...uint64) func(uint64) (uint64, error) {
	i := 0
	return func(uint64) (uint64, error) {
		v := values[i%len(values)]
		i++
		return v, nil
	}
}

func TestShortCodeGenerator_Generate(t *testing.T) {
	ctx := context.Background()

	t.Run("invalid length", func(t *testing.T) {
		g := NewShortCodeGenerator(0, usecase.NewMockLinkRepository(t))

		code, err := g.Generate(ctx)

		assert.Error(t, err)
		assert.Empty(t, code)
	})

	t.Run("pads small values", func(t *testing.T) {
		repo := usecase.NewMockLinkRepository(t)
		repo.On("ShortCodeExists", ctx, "00000z").Once().Return(false, nil)

		g := NewShortCodeGenerator(6, repo)
		g.random = sequence(61)

		code, err := g.Generate(ctx)

		require.NoError(t, err)
		assert.Equal(t, "00000z", code)
	})

	t.Run("draws below the keyspace", func(t *testing.T) {
		repo := usecase.NewMockLinkRepository(t)
		repo.On("ShortCodeExists", ctx, "zzzzzz").Once().Return(false, nil)

		var limit uint64

		g := NewShortCodeGenerator(6, repo)
		g.random = func(l uint64) (uint64, error) {
			limit = l
			return l - 1, nil
		}

		code, err := g.Generate(ctx)

		require.NoError(t, err)
		assert.Equal(t, "zzzzzz", code)
		assert.Equal(t, uint64(56800235584), limit)
	})

	t.Run("value wider than the code", func(t *testing.T) {
		g := NewShortCodeGenerator(6, usecase.NewMockLinkRepository(t))
		g.random = sequence(56800235584)

		code, err := g.Generate(ctx)

		assert.Error(t, err)
		assert.Empty(t, code)
	})

	t.Run("retries on collision", func(t *testing.T) {
		repo := usecase.NewMockLinkRepository(t)
		repo.On("ShortCodeExists", ctx, "000001").Once().Return(true, nil)
		repo.On("ShortCodeExists", ctx, "000002").Once().Return(false, nil)

		g := NewShortCodeGenerator(6, repo)
		g.random = sequence(1, 2)

		code, err := g.Generate(ctx)

		require.NoError(t, err)
		assert.Equal(t, "000002", code)
	})

	t.Run("exhausted", func(t *testing.T) {
		repo := usecase.NewMockLinkRepository(t)
		repo.On("ShortCodeExists", ctx, mock.Anything).Times(DefaultMaxShortCodeAttempts).Return(true, nil)

		g := NewShortCodeGenerator(6, repo)

		code, err := g.Generate(ctx)

		assert.ErrorIs(t, err, entity.ErrExhaustedRetries)
		assert.Empty(t, code)
	})

	t.Run("checker error", func(t *testing.T) {
		errUnknown := errors.New("unknown error")

		repo := usecase.NewMockLinkRepository(t)
		repo.On("ShortCodeExists", ctx, mock.Anything).Once().Return(false, errUnknown)

		g := NewShortCodeGenerator(6, repo)

		_, err := g.Generate(ctx)

		assert.ErrorIs(t, err, errUnknown)
	})

	t.Run("random source error", func(t *testing.T) {
		errRandom := errors.New("entropy")

		g := NewShortCodeGenerator(6, usecase.NewMockLinkRepository(t))
		g.random = func(uint64) (uint64, error) { return 0, errRandom }

		_, err := g.Generate(ctx)

		assert.ErrorIs(t, err, errRandom)
	})
}

func TestKeyspace(t *testing.T) {
	assert.Equal(t, uint64(62), keyspace(1))
	assert.Equal(t, uint64(839299365868340224), keyspace(10))
	assert.Equal(t, uint64(math.MaxInt64), keyspace(11))
	assert.Equal(t, uint64(math.MaxInt64), keyspace(16))
}
