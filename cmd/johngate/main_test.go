package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/johngate/internal/security/password"
)

func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	bl := filepath.Join(dir, "blacklist.txt")
	require.NoError(t, os.WriteFile(bl, []byte("# comunes\npassword123\n"), 0o600))

	cfg := "storage:\n  driver: sqlite\n  dsn: " + filepath.Join(dir, "cli.db") +
		"\nsecurity:\n  password_blacklist_path: " + bl + "\n"
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o600))
	return path
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	c := &cli{stdin: strings.NewReader(stdin), stdout: &out}
	root := c.root()
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestUsersCreateShowSetPassword(t *testing.T) {
	cfg := writeConfig(t)

	_, err := run(t, "", "--config", cfg, "migrate")
	require.NoError(t, err)

	_, err = run(t, "s3cretpass\n", "--config", cfg, "users", "create",
		"--username", "jona", "--first-name", "Jona", "--email", "jona@example.com")
	require.NoError(t, err)

	out, err := run(t, "", "--config", cfg, "--out", "json", "users", "show", "--username", "jona")
	require.NoError(t, err)
	var view map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	assert.Equal(t, "jona", view["username"])
	assert.Equal(t, "Jona", view["first_name"])
	assert.Equal(t, true, view["local_password"])
	assert.NotContains(t, out, "argon2id")

	_, err = run(t, "otherpass1\n", "--config", cfg, "users", "create", "--username", "jona")
	assert.ErrorContains(t, err, "ya existe")

	_, err = run(t, "newpass99\n", "--config", cfg, "users", "set-password", "--username", "jona")
	require.NoError(t, err)

	_, err = run(t, "newpass99\n", "--config", cfg, "users", "set-password", "--username", "ghost")
	assert.ErrorContains(t, err, "no existe")
}

func TestUsersCreate_PolicyAndBlacklist(t *testing.T) {
	cfg := writeConfig(t)

	_, err := run(t, "short\n", "--config", cfg, "users", "create", "--username", "ana")
	require.Error(t, err)
	assert.True(t, password.IsPolicyError(err))

	_, err = run(t, "password123\n", "--config", cfg, "users", "create", "--username", "ana")
	require.Error(t, err)
	assert.True(t, password.IsPolicyError(err))

	_, err = run(t, "", "--config", cfg, "users", "create", "--username", "ana")
	assert.ErrorContains(t, err, "stdin")
}

func TestUsersCreate_NoPassword(t *testing.T) {
	cfg := writeConfig(t)

	_, err := run(t, "", "--config", cfg, "users", "create", "--username", "idp-only", "--no-password")
	require.NoError(t, err)

	out, err := run(t, "", "--config", cfg, "--out", "json", "users", "show", "--username", "idp-only")
	require.NoError(t, err)
	assert.Contains(t, out, `"local_password": false`)
}
