package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestUsersAddAndList(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("DATABASE_URL", "sqlite://"+filepath.Join(dir, "cli.db"))

	out, err := run(t, "", "--config", filepath.Join(dir, "missing.yaml"), "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "schema at version 1")

	out, err = run(t, "hunter2-secret\n", "users", "add", "--email", "admin@example.com")
	require.NoError(t, err, out)
	assert.Contains(t, out, "created user 1 (admin@example.com)")

	_, err = run(t, "other\n", "users", "add", "--email", "admin@example.com")
	assert.Error(t, err)

	out, err = run(t, "", "users", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "EMAIL")
	assert.Contains(t, out, "admin@example.com")
	assert.Equal(t, 1, strings.Count(out, "admin@example.com"))
}

func TestPromptPassword_Pipe(t *testing.T) {
	pw, err := promptPassword(strings.NewReader("s3cret\r\nignored\n"), &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, "s3cret", pw)

	pw, err = promptPassword(strings.NewReader("no-newline"), &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, "no-newline", pw)

	_, err = promptPassword(strings.NewReader(""), &bytes.Buffer{})
	assert.Error(t, err)
}
