package app

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer

	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)

	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()

	return out.String(), err
}

func TestConfigCommand(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://app:db-secret@db:5432/app")
	t.Setenv("SECRET_KEY", "super-secret")
	t.Setenv("APP_NAME", "Command Test")

	out, err := execute(t, "config", "--env-file", filepath.Join(t.TempDir(), ".env"))
	require.NoError(t, err)

	assert.NotContains(t, out, "db-secret")
	assert.NotContains(t, out, "super-secret")

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "Command Test", got["APP_NAME"])
}

func TestMigrateCreateCommand(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "sql")

	out, err := execute(t, "migrate", "create", "--dir", dir, "add", "users")
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	for _, e := range entries {
		assert.True(t, strings.HasSuffix(e.Name(), "_add_users.up.sql") ||
			strings.HasSuffix(e.Name(), "_add_users.down.sql"), e.Name())
		assert.Contains(t, out, e.Name())
	}
}

func TestMigrateCreateRequiresMessage(t *testing.T) {
	_, err := execute(t, "migrate", "create", "--dir", t.TempDir())
	assert.Error(t, err)
}
