package util

import (
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeFilename(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		in   string
		want string
	}{
		{"example.com", "example.com"},
		{"*.example.com", "_.example.com"},
		{"../etc/passwd", "_._etc_passwd"},
		{".hidden", "_hidden"},
		{"a:b|c?d", "a_b_c_d"},
		{"tab\there", "tab_here"},
		{"  spaced name ", "spaced_name"},
		{"", "_"},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.want, SanitizeFilename(tc.in), tc.in)
	}

	assert.Len(t, SanitizeFilename(strings.Repeat("a", 300)), maxFilenameLength)
}

func TestOutputPath(t *testing.T) {
	t.Parallel()

	assert.Equal(t, filepath.Join("out", "example.com.txt"), OutputPath("out", "example.com", "txt"))
	assert.Equal(t, filepath.Join("out", "_.example.com.json"), OutputPath("out", "*.example.com", "json"))
}

func TestSanitizeFilenameKeepsRunesWhole(t *testing.T) {
	t.Parallel()

	// Two-byte runes starting at odd offsets put a continuation byte at the limit.
	got := SanitizeFilename("a" + strings.Repeat("é", 100))
	assert.True(t, utf8.ValidString(got))
	assert.Len(t, got, maxFilenameLength-1)
	assert.Equal(t, "a"+strings.Repeat("é", 49), got)

	got = SanitizeFilename(strings.Repeat("日本", 40) + ".example.jp")
	assert.True(t, utf8.ValidString(got))
	assert.LessOrEqual(t, len(got), maxFilenameLength)
}
