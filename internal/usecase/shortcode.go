package usecase

import (
	"context"
	"crypto/rand"
	"fmt"
	"math"
	"math/big"

	"github.com/vadimbarashkov/linksplit/internal/entity"
	"github.com/vadimbarashkov/linksplit/pkg/base62"
)

// DefaultMaxShortCodeAttempts bounds how many candidate codes are tried before giving up.
const DefaultMaxShortCodeAttempts = 10

type shortCodeChecker interface {
	ShortCodeExists(ctx context.Context, shortCode string) (bool, error)
}

// ShortCodeGenerator produces fixed-length base62 codes that are not yet taken.
//
// Values are drawn uniformly below 62^length and left-padded, so every code of
// the configured length is equally likely. Lengths above 10 are capped by the
// int63 range and the keyspace stays at 2^63.
type ShortCodeGenerator struct {
	length      int
	maxAttempts int
	checker     shortCodeChecker
	random      func(limit uint64) (uint64, error)
}

// NewShortCodeGenerator creates a generator producing codes of the given length.
func NewShortCodeGenerator(length int, checker shortCodeChecker) *ShortCodeGenerator {
	return &ShortCodeGenerator{
		length:      length,
		maxAttempts: DefaultMaxShortCodeAttempts,
		checker:     checker,
		random:      randomBelow,
	}
}

// Generate returns an unused short code or entity.ErrExhaustedRetries once all attempts collided.
func (g *ShortCodeGenerator) Generate(ctx context.Context) (string, error) {
	const op = "usecase.ShortCodeGenerator.Generate"

	if g.length <= 0 {
		return "", fmt.Errorf("%s: invalid short code length %d", op, g.length)
	}

	limit := keyspace(g.length)

	for i := 0; i < g.maxAttempts; i++ {
		n, err := g.random(limit)
		if err != nil {
			return "", fmt.Errorf("%s: failed to read random number: %w", op, err)
		}

		code, truncated := base62.Fit(base62.Encode(n), g.length)
		if truncated {
			return "", fmt.Errorf("%s: value %d does not fit %d symbols", op, n, g.length)
		}

		exists, err := g.checker.ShortCodeExists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("%s: failed to check short code: %w", op, err)
		}
		if !exists {
			return code, nil
		}
	}

	return "", fmt.Errorf("%s: %d attempts: %w", op, g.maxAttempts, entity.ErrExhaustedRetries)
}

// keyspace returns 62^length, capped at math.MaxInt64.
func keyspace(length int) uint64 {
	limit := uint64(1)
	for i := 0; i < length; i++ {
		if limit > math.MaxInt64/uint64(len(base62.Alphabet)) {
			return math.MaxInt64
		}
		limit *= uint64(len(base62.Alphabet))
	}
	return limit
}

func randomBelow(limit uint64) (uint64, error) {
	n, err := rand.Int(rand.Reader, new(big.Int).SetUint64(limit))
	if err != nil {
		return 0, err
	}
	return n.Uint64(), nil
}
