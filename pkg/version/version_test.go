package version

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"401", "401", 0},
		{"401", "402", -1},
		{"474", "401", 1},
		{"401", "401.0", 0},
		{"401.1", "401", 1},
		{"99", "100", -1},
	}
	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, Compare(tt.a, tt.b))
		})
	}
}

func TestNormalize(t *testing.T) {
	from, to, swapped := Normalize("410", "401")
	assert.Equal(t, "401", from)
	assert.Equal(t, "410", to)
	assert.True(t, swapped)

	from, to, swapped = Normalize("401", "410")
	assert.Equal(t, "401", from)
	assert.Equal(t, "410", to)
	assert.False(t, swapped)
}

func TestRange(t *testing.T) {
	got, err := Range("400", "403")
	require.NoError(t, err)
	assert.Equal(t, []string{"401", "402", "403"}, got)

	got, err = Range("403", "400")
	require.NoError(t, err)
	assert.Equal(t, []string{"401", "402", "403"}, got)

	got, err = Range("401", "401")
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = Range("4.1", "402")
	assert.ErrorIs(t, err, ErrInvalidVersion)
}

func TestRangeLimits(t *testing.T) {
	tests := []struct {
		name     string
		from, to string
		want     error
	}{
		{name: "too wide", from: "1", to: "200001", want: ErrSpanTooLarge},
		{name: "too wide reversed", from: "200001", to: "1", want: ErrSpanTooLarge},
		{name: "negative", from: "-5", to: "3", want: ErrInvalidVersion},
		{name: "extremes", from: "-9000000000000000000", to: "9000000000000000000", want: ErrInvalidVersion},
		{name: "non-negative extremes", from: "0", to: "9223372036854775807", want: ErrSpanTooLarge},
		{name: "out of range", from: "1", to: "99999999999999999999", want: ErrInvalidVersion},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			var err error
			require.NotPanics(t, func() { got, err = Range(tt.from, tt.to) })
			assert.ErrorIs(t, err, tt.want)
			assert.Nil(t, got)
		})
	}

	got, err := Range("0", fmt.Sprint(MaxSpan))
	require.NoError(t, err)
	assert.Len(t, got, MaxSpan)
}

func TestSortDescending(t *testing.T) {
	v := []string{"99", "474", "401", "100"}
	SortDescending(v)
	assert.Equal(t, []string{"474", "401", "100", "99"}, v)
}
