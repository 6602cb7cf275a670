package stack

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmr-tortoise/stackup/internal/model"
)

// TestListServices verifies the declared services are returned sorted,
// regardless of their order in the YAML.
func TestListServices(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docker-compose.yml")
	content := `
services:
  web:
    image: app:latest
    ports:
      - "${PORT}:8000"
  db:
    image: postgres:16
  cache:
    image: redis:7
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	services, err := ListServices(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"cache", "db", "web"}, services)
}

// TestListServices_NoServices verifies that a stack declaring nothing
// is rejected as a ConfigError before any launch step runs.
func TestListServices_NoServices(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docker-compose.yml")
	require.NoError(t, os.WriteFile(path, []byte("services: {}\n"), 0o644))

	_, err := ListServices(path)
	require.Error(t, err)

	var cliErr *model.CLIError
	require.ErrorAs(t, err, &cliErr)
	assert.Equal(t, model.ExitConfigError, cliErr.Code)
}

// TestListServices_MissingFile verifies a missing stack definition is a
// ConfigError.
func TestListServices_MissingFile(t *testing.T) {
	_, err := ListServices(filepath.Join(t.TempDir(), "docker-compose.yml"))
	require.Error(t, err)

	var cliErr *model.CLIError
	require.ErrorAs(t, err, &cliErr)
	assert.Equal(t, model.ExitConfigError, cliErr.Code)
}

// TestListServices_MalformedYAML verifies unparseable YAML is a
// ConfigError, not a panic or an empty result.
func TestListServices_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docker-compose.yml")
	require.NoError(t, os.WriteFile(path, []byte("services: [not: a: map\n"), 0o644))

	_, err := ListServices(path)
	require.Error(t, err)

	var cliErr *model.CLIError
	require.ErrorAs(t, err, &cliErr)
	assert.Equal(t, model.ExitConfigError, cliErr.Code)
}

// TestEnsureDirs verifies directory provisioning creates nested paths
// and is idempotent across runs.
func TestEnsureDirs(t *testing.T) {
	root := t.TempDir()
	dirs := []string{"logs", "data", filepath.Join("output", "exports")}

	require.NoError(t, EnsureDirs(root, dirs))
	// Second run must be a no-op, not an error.
	require.NoError(t, EnsureDirs(root, dirs))

	for _, dir := range dirs {
		info, err := os.Stat(filepath.Join(root, dir))
		require.NoError(t, err, "directory %s should exist", dir)
		assert.True(t, info.IsDir())
	}
}
