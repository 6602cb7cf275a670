package stack

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmr-tortoise/stackup/internal/model"
)

// TestLoad_MissingFileUsesDefaults verifies the settings file is
// optional: a missing file yields the built-in defaults, with the
// compose project named after the project directory.
func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()

	s, err := Load(filepath.Join(dir, DefaultSettingsFile), dir)
	require.NoError(t, err)

	assert.Equal(t, "app", s.ImageName)
	assert.Equal(t, "latest", s.ImageTag)
	assert.Equal(t, "app:latest", s.ImageRef())
	assert.Equal(t, "docker-compose.yml", s.ComposeFile)
	assert.Equal(t, filepath.Base(dir), s.ProjectName)
	assert.Equal(t, "0.0.0.0", s.Host)
	assert.Equal(t, 8000, s.DefaultPort)
	assert.Equal(t, ".env", s.EnvFile)
	assert.Equal(t, ".env.example", s.EnvTemplate)
	assert.Equal(t, []string{"logs", "data", "output"}, s.Dirs)
}

// TestLoad_JSONCWithComments verifies the settings file may contain
// comments and trailing commas, and that file values layer over the
// defaults without wiping unspecified fields.
func TestLoad_JSONCWithComments(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultSettingsFile)
	content := `{
  // which image to build
  "imageName": "acme-api",
  "imageTag": "dev",
  "defaultPort": 9000,
  "dirs": ["logs", "uploads"], // trailing comma next
}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	s, err := Load(path, dir)
	require.NoError(t, err)

	assert.Equal(t, "acme-api:dev", s.ImageRef())
	assert.Equal(t, 9000, s.DefaultPort)
	assert.Equal(t, []string{"logs", "uploads"}, s.Dirs)
	// Unspecified fields keep their defaults.
	assert.Equal(t, "docker-compose.yml", s.ComposeFile)
	assert.Equal(t, "0.0.0.0", s.Host)
}

// TestLoad_MalformedFile verifies a present-but-broken settings file is
// a ConfigError rather than silently falling back to defaults.
func TestLoad_MalformedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultSettingsFile)
	require.NoError(t, os.WriteFile(path, []byte(`{"imageName": }`), 0o644))

	_, err := Load(path, dir)
	require.Error(t, err)

	var cliErr *model.CLIError
	require.ErrorAs(t, err, &cliErr)
	assert.Equal(t, model.ExitConfigError, cliErr.Code)
}

// TestLoad_InvalidPort verifies out-of-range defaultPort values are
// rejected at load time, before any step of the launch runs.
func TestLoad_InvalidPort(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultSettingsFile)
	require.NoError(t, os.WriteFile(path, []byte(`{"defaultPort": 70000}`), 0o644))

	_, err := Load(path, dir)
	require.Error(t, err)

	var cliErr *model.CLIError
	require.ErrorAs(t, err, &cliErr)
	assert.Equal(t, model.ExitConfigError, cliErr.Code)
}

// TestApplyEnvOverrides verifies environment variables win over file
// values, and that unset/empty variables leave settings alone.
func TestApplyEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	s := DefaultSettings(dir)

	t.Setenv("IMAGE_NAME", "override-img")
	t.Setenv("IMAGE_TAG", "v2")
	t.Setenv("COMPOSE_FILE", "stack.yml")
	t.Setenv("COMPOSE_PROJECT", "override-proj")
	t.Setenv("HOST", "127.0.0.1")
	t.Setenv("ENV_FILE", "conf/.env")
	t.Setenv("ENV_TEMPLATE", "")

	s.ApplyEnvOverrides()

	assert.Equal(t, "override-img:v2", s.ImageRef())
	assert.Equal(t, "stack.yml", s.ComposeFile)
	assert.Equal(t, "override-proj", s.ProjectName)
	assert.Equal(t, "127.0.0.1", s.Host)
	assert.Equal(t, "conf/.env", s.EnvFile)
	// Empty variable does not blank out the default.
	assert.Equal(t, ".env.example", s.EnvTemplate)
}
