package shortlink

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	tests := []struct {
		id   int64
		want string
	}{
		{0, "a"},
		{1, "b"},
		{22, "w"},
		{23, "ba"},
		{24, "bb"},
		{529, "baa"},
		{23*23 + 2*23 + 5, "bcf"},
	}
	for _, tt := range tests {
		got, err := Encode(tt.id)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "id %d", tt.id)
	}
}

func TestEncodeNegative(t *testing.T) {
	_, err := Encode(-1)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestRoundTrip(t *testing.T) {
	for n := int64(0); n <= 10000; n++ {
		token, err := Encode(n)
		require.NoError(t, err)
		got, err := Decode(token)
		require.NoError(t, err)
		require.Equal(t, n, got)
	}

	token, err := Encode(math.MaxInt64)
	require.NoError(t, err)
	got, err := Decode(token)
	require.NoError(t, err)
	assert.Equal(t, int64(math.MaxInt64), got)
}

func TestDecodeInvalid(t *testing.T) {
	for _, token := range []string{"", "z", "x", "bA", "b1", "ё"} {
		_, err := Decode(token)
		assert.ErrorIs(t, err, ErrInvalidArgument, "token %q", token)
	}
}

func TestDecodeOverflow(t *testing.T) {
	_, err := Decode("wwwwwwwwwwwwwwwwwwww")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestDecodeLeadingZeros(t *testing.T) {
	got, err := Decode("aab")
	require.NoError(t, err)
	assert.Equal(t, int64(1), got)
}
