package base62

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	tests := []struct {
		name string
		n    uint64
		want string
	}{
		{"zero", 0, "0"},
		{"one", 1, "1"},
		{"nine", 9, "9"},
		{"first uppercase", 10, "A"},
		{"last uppercase", 35, "Z"},
		{"first lowercase", 36, "a"},
		{"last symbol", 61, "z"},
		{"base", 62, "10"},
		{"base squared", 3844, "100"},
		{"max uint64", math.MaxUint64, "LygHa16AHYF"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Encode(tt.n))
		})
	}
}

func TestDecode(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		values := []uint64{0, 1, 10, 61, 62, 100, 1000, 123456789, math.MaxInt64 / 2, math.MaxInt64, math.MaxUint64}

		for _, v := range values {
			got, err := Decode(Encode(v))

			require.NoError(t, err)
			assert.Equal(t, v, got, "value %d", v)
		}
	})

	t.Run("padded input", func(t *testing.T) {
		got, err := Decode("000Z")

		require.NoError(t, err)
		assert.Equal(t, uint64(35), got)
	})

	t.Run("invalid character", func(t *testing.T) {
		_, err := Decode("ab-c")

		assert.ErrorIs(t, err, ErrInvalidCharacter)
	})

	t.Run("empty input", func(t *testing.T) {
		_, err := Decode("")

		assert.ErrorIs(t, err, ErrInvalidCharacter)
	})

	t.Run("overflow", func(t *testing.T) {
		_, err := Decode("zzzzzzzzzzzz")

		assert.ErrorIs(t, err, ErrOverflow)
	})
}

func TestFit(t *testing.T) {
	t.Run("pads short codes", func(t *testing.T) {
		code, truncated := Fit("Z", 6)

		assert.Equal(t, "00000Z", code)
		assert.False(t, truncated)

		n, err := Decode(code)
		require.NoError(t, err)
		assert.Equal(t, uint64(35), n)
	})

	t.Run("keeps exact length", func(t *testing.T) {
		code, truncated := Fit("abcdef", 6)

		assert.Equal(t, "abcdef", code)
		assert.False(t, truncated)
	})

	t.Run("truncates long codes", func(t *testing.T) {
		full := Encode(math.MaxInt64)
		code, truncated := Fit(full, 6)

		assert.True(t, truncated)
		assert.Len(t, code, 6)
		assert.Equal(t, full[:6], code)

		n, err := Decode(code)
		require.NoError(t, err)
		assert.NotEqual(t, uint64(math.MaxInt64), n)
	})

	t.Run("largest value that survives the cap", func(t *testing.T) {
		// 62^6 - 1 is the last value whose natural encoding fits six symbols.
		const limit = 56800235583
		code, truncated := Fit(Encode(limit), 6)

		assert.False(t, truncated)
		assert.Equal(t, "zzzzzz", code)

		_, truncated = Fit(Encode(limit+1), 6)
		assert.True(t, truncated)
	})

	t.Run("non-positive length", func(t *testing.T) {
		code, truncated := Fit("abc", 0)

		assert.Empty(t, code)
		assert.True(t, truncated)
	})
}
