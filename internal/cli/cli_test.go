package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmr-tortoise/stackup/internal/envfile"
	"github.com/mmr-tortoise/stackup/internal/model"
	"github.com/mmr-tortoise/stackup/internal/port"
	"github.com/mmr-tortoise/stackup/internal/stack"
)

// chdir changes the working directory for the duration of the test,
// restoring the original directory on cleanup. Equivalent to t.Chdir,
// which requires Go 1.24.
func chdir(t *testing.T, dir string) {
	t.Helper()
	orig, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		if err := os.Chdir(orig); err != nil {
			t.Errorf("restoring working directory: %v", err)
		}
	})
}

// TestUpSummary verifies the pre-launch summary distinguishes a reused
// port from a freshly recorded one.
func TestUpSummary(t *testing.T) {
	sel := model.PortSelection{Host: "0.0.0.0", Port: 8000, Changed: false}
	summary := upSummary(sel, []string{"db", "web"}, "acme")
	assert.Equal(t, `Starting "acme" (2 services) on 0.0.0.0:8000 (reusing recorded port)`, summary)

	sel.Changed = true
	summary = upSummary(sel, []string{"db", "web"}, "acme")
	assert.Contains(t, summary, "port recorded in env file")
}

// TestDoctorReport verifies the plain-text report renders one line per
// check with the ok/FAIL marker.
func TestDoctorReport(t *testing.T) {
	report := doctorReport([]checkResult{
		{Name: "docker daemon", OK: true, Detail: "unix:///var/run/docker.sock"},
		{Name: "compose command", OK: false, Detail: "no compose command found"},
	})

	assert.Equal(t,
		"docker daemon    ok   unix:///var/run/docker.sock\n"+
			"compose command  FAIL no compose command found\n",
		report)
}

// TestPrepareSequence runs the launch steps that precede the engine
// shell-outs against a fresh project directory: with no env file, a
// template present, and a free default port, the sequence must produce
// an env file matching the template plus the negotiated PORT, and all
// directory set entries must exist.
func TestPrepareSequence(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env.example"),
		[]byte("# defaults\nHOST=127.0.0.1\nDB_URL=postgres://localhost/app\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "stackup.jsonc"),
		[]byte(`{"host": "127.0.0.1"}`), 0o644))

	projectDir, settings, err := loadProject()
	require.NoError(t, err)

	envPath := filepath.Join(projectDir, settings.EnvFile)
	seeded, err := envfile.EnsureFromTemplate(envPath, filepath.Join(projectDir, settings.EnvTemplate))
	require.NoError(t, err)
	assert.True(t, seeded)

	scanner := port.NewScanner(settings.Host)
	negotiator := port.NewNegotiator(scanner, settings.Host)
	// Root the scan in a quiet band so the test cannot collide with a
	// real service on the default port.
	base, err := scanner.FindAvailablePort(context.Background(), 58000, 59000)
	require.NoError(t, err)
	negotiator.SetDefaultPort(base)

	sel, err := negotiator.Negotiate(context.Background(), envPath)
	require.NoError(t, err)
	assert.True(t, sel.Changed, "first run must record the port")
	assert.Equal(t, base, sel.Port)

	require.NoError(t, stack.EnsureDirs(projectDir, settings.Dirs))

	// The env file is the template plus the appended PORT entry.
	data, err := os.ReadFile(envPath)
	require.NoError(t, err)
	assert.Equal(t,
		fmt.Sprintf("# defaults\nHOST=127.0.0.1\nDB_URL=postgres://localhost/app\nPORT=%d\n", sel.Port),
		string(data))

	for _, d := range settings.Dirs {
		info, statErr := os.Stat(filepath.Join(projectDir, d))
		require.NoError(t, statErr, "directory %s should exist", d)
		assert.True(t, info.IsDir())
	}

	// A second negotiation reuses the recorded port and leaves the file
	// alone.
	sel2, err := negotiator.Negotiate(context.Background(), envPath)
	require.NoError(t, err)
	assert.False(t, sel2.Changed)
	assert.Equal(t, sel.Port, sel2.Port)
}

// TestLoadProject_Defaults verifies project resolution from a bare
// working directory: defaults apply and the project name tracks the
// directory.
func TestLoadProject_Defaults(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	projectDir, settings, err := loadProject()
	require.NoError(t, err)

	// t.TempDir may return a path containing symlinks (macOS /var →
	// /private/var); compare resolved paths.
	wantDir, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	gotDir, err := filepath.EvalSymlinks(projectDir)
	require.NoError(t, err)
	assert.Equal(t, wantDir, gotDir)

	assert.Equal(t, "app:latest", settings.ImageRef())
	assert.Equal(t, "docker-compose.yml", settings.ComposeFile)
}

// TestLoadProject_ConfigFlag verifies the --config global flag points
// project loading at an explicit settings file.
func TestLoadProject_ConfigFlag(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	custom := filepath.Join(dir, "custom.jsonc")
	require.NoError(t, os.WriteFile(custom, []byte(`{"imageName": "special"}`), 0o644))

	configPath = custom
	t.Cleanup(func() { configPath = "" })

	_, settings, err := loadProject()
	require.NoError(t, err)
	assert.Equal(t, "special:latest", settings.ImageRef())
}
