package stringutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEllipsis(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		maxLength int
		expected  string
	}{
		{"no truncation", "00_0-01_0", 20, "00_0-01_0"},
		{"truncate with ellipsis", "00_0-01_0, 02_0-03_0, 04_0-05_0", 16, "00_0-01_0, 02..."},
		{"short limit has no ellipsis", "abcdefg", 3, "abc"},
		{"surrounding spaces", "   padded string   ", 10, "padded ..."},
		{"line breaks", "foo\nbar\r\nbaz", 10, "foo bar..."},
		{"runes are not split", "äöüäöü", 5, "äö..."},
		{"empty", "", 5, ""},
		{"zero", "something", 0, ""},
		{"negative", "something", -1, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Ellipsis(tt.input, tt.maxLength))
		})
	}
}

func TestJoinLimited(t *testing.T) {
	items := []string{"a", "b", "c", "d"}
	assert.Equal(t, "a, b, c, d", JoinLimited(items, ", ", 0))
	assert.Equal(t, "a, b, c, d", JoinLimited(items, ", ", 4))
	assert.Equal(t, "a, b (+2 more)", JoinLimited(items, ", ", 2))
	assert.Equal(t, "", JoinLimited(nil, ", ", 2))
}
