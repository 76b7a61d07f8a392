package styles

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTruncateString(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		width    int
		expected string
	}{
		{"fits", "Ada", 5, "Ada"},
		{"exact", "Grace", 5, "Grace"},
		{"truncated", "Grace Hopper", 8, "Grace..."},
		{"tiny width", "Grace", 2, ".."},
		{"zero width", "Grace", 0, ""},
		{"wide runes", "日本語テキスト", 7, "日本..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, TruncateString(tt.in, tt.width))
		})
	}
}
