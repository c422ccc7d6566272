package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePlatforms(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{
			name: "drops channel variants",
			in:   []string{"Netflix", "Paramount Plus Apple TV Channel", "Hulu"},
			want: []string{"Netflix", "Hulu"},
		},
		{
			name: "trailing Plus becomes sign",
			in:   []string{"Paramount Plus", "Disney Plus"},
			want: []string{"Paramount+", "Disney+"},
		},
		{
			name: "collapses whitespace",
			in:   []string{"  Apple   TV  "},
			want: []string{"Apple TV"},
		},
		{
			name: "dedupes case-insensitively keeping first casing",
			in:   []string{"Netflix", "netflix", "NETFLIX"},
			want: []string{"Netflix"},
		},
		{
			name: "plus and spelled-out plus collapse to one entry",
			in:   []string{"Paramount+", "Paramount Plus"},
			want: []string{"Paramount+"},
		},
		{
			name: "skips empty entries",
			in:   []string{"", "   ", "Max"},
			want: []string{"Max"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizePlatforms(tt.in))
		})
	}
}

func TestApplyAllowlist(t *testing.T) {
	platforms := []string{"Netflix", "Paramount+", "Hulu"}

	t.Run("empty allowlist passes everything", func(t *testing.T) {
		assert.Equal(t, platforms, ApplyAllowlist(platforms, nil))
	})

	t.Run("intersects case-insensitively", func(t *testing.T) {
		got := ApplyAllowlist(platforms, []string{"netflix", "PARAMOUNT+"})
		assert.Equal(t, []string{"Netflix", "Paramount+"}, got)
	})

	t.Run("no overlap yields empty", func(t *testing.T) {
		assert.Empty(t, ApplyAllowlist(platforms, []string{"Max"}))
	})
}

func TestNormalizeThenFilter(t *testing.T) {
	// Raw provider names must be normalized before the allowlist intersects,
	// otherwise "Paramount Plus" never matches a stored "Paramount+".
	raw := []string{"Paramount Plus", "Netflix", "Starz Channel"}
	allowlist := []string{"paramount+", "netflix"}

	got := ApplyAllowlist(NormalizePlatforms(raw), allowlist)
	assert.Equal(t, []string{"Paramount+", "Netflix"}, got)
}
