package middleware

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseID(t *testing.T) {
	id, err := ParseID("17")
	require.NoError(t, err)
	assert.Equal(t, int64(17), id)

	for _, bad := range []string{"", "0", "-3", "abc", "1.5", "99999999999999999999"} {
		_, err := ParseID(bad)
		assert.ErrorIs(t, err, ErrInvalid, bad)
	}
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "hello\tworld\nok", SanitizeString("  hello\tworld\x00\nok\x07 "))
}

func TestRequireText(t *testing.T) {
	v, err := RequireText("question", "  What is the notice period? ", 100)
	require.NoError(t, err)
	assert.Equal(t, "What is the notice period?", v)

	_, err = RequireText("question", " \x00 ", 100)
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = RequireText("question", strings.Repeat("é", 11), 10)
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = RequireText("question", strings.Repeat("a", 5000), 0)
	assert.NoError(t, err)
}

func TestCleanFilename(t *testing.T) {
	cases := map[string]string{
		"contract.pdf":          "contract.pdf",
		"../../etc/passwd":      "passwd",
		`C:\Users\me\lease.pdf`: "lease.pdf",
		"dir/sub/nda final.pdf": "nda final.pdf",
	}
	for in, want := range cases {
		got, err := CleanFilename(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	for _, bad := range []string{"", "  ", "..", "/"} {
		_, err := CleanFilename(bad)
		assert.ErrorIs(t, err, ErrInvalid, bad)
	}
}
