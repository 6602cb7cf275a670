package stack

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tidwall/jsonc"

	"github.com/mmr-tortoise/stackup/internal/model"
)

// DefaultSettingsFile is the settings file name looked up in the project
// directory when --config is not given.
const DefaultSettingsFile = "stackup.jsonc"

// Settings describes everything a launch needs to know about the
// project. Every field has a default, the settings file overrides the
// defaults, and environment variables override the file (see
// ApplyEnvOverrides). The zero value is not usable — construct via
// DefaultSettings or Load.
type Settings struct {
	// ImageName is the image repository name to build. Override: IMAGE_NAME.
	ImageName string `json:"imageName"`

	// ImageTag is the tag applied to the built image. Override: IMAGE_TAG.
	ImageTag string `json:"imageTag"`

	// Dockerfile is the Dockerfile path, relative to the project directory.
	Dockerfile string `json:"dockerfile"`

	// BuildContext is the build context path, relative to the project
	// directory.
	BuildContext string `json:"buildContext"`

	// ComposeFile is the stack definition path, relative to the project
	// directory. Override: COMPOSE_FILE.
	ComposeFile string `json:"composeFile"`

	// ProjectName is the compose project name. Defaults to the project
	// directory's base name. Override: COMPOSE_PROJECT.
	ProjectName string `json:"projectName"`

	// Host is the bind address the stack publishes on and the negotiator
	// probes against. Override: HOST.
	Host string `json:"host"`

	// DefaultPort roots the negotiator's primary scan range.
	DefaultPort int `json:"defaultPort"`

	// EnvFile is the env file path, relative to the project directory.
	// Override: ENV_FILE.
	EnvFile string `json:"envFile"`

	// EnvTemplate is the template the env file is seeded from on first
	// run. Override: ENV_TEMPLATE.
	EnvTemplate string `json:"envTemplate"`

	// Dirs is the set of relative paths created before launch so the
	// container runtime does not create them root-owned.
	Dirs []string `json:"dirs"`
}

// DefaultSettings returns the built-in defaults for a project rooted at
// projectDir. The compose project name defaults to the directory's base
// name, mirroring what docker compose itself would pick.
func DefaultSettings(projectDir string) Settings {
	return Settings{
		ImageName:    "app",
		ImageTag:     "latest",
		Dockerfile:   "Dockerfile",
		BuildContext: ".",
		ComposeFile:  "docker-compose.yml",
		ProjectName:  filepath.Base(projectDir),
		Host:         "0.0.0.0",
		DefaultPort:  8000,
		EnvFile:      ".env",
		EnvTemplate:  ".env.example",
		Dirs:         []string{"logs", "data", "output"},
	}
}

// Load reads the settings file at path, layered over the defaults for
// projectDir. A missing settings file is fine — the file is optional and
// the defaults stand. A present-but-malformed file is a ConfigError.
//
// Environment variable overrides are NOT applied here; callers apply
// them explicitly via ApplyEnvOverrides so tests can exercise the file
// layer in isolation.
func Load(path, projectDir string) (Settings, error) {
	settings := DefaultSettings(projectDir)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return settings, nil
		}
		return settings, model.WrapCLIError(
			model.ExitConfigError,
			fmt.Sprintf("failed to read settings file %s", path),
			err,
		)
	}

	// Strip JSONC comments and trailing commas before the standard JSON
	// pass. Settings files are hand-edited, so comments are expected.
	clean := jsonc.ToJSON(data)
	if err := json.Unmarshal(clean, &settings); err != nil {
		return settings, model.WrapCLIError(
			model.ExitConfigError,
			fmt.Sprintf("failed to parse settings file %s", path),
			err,
		)
	}

	if err := settings.validate(); err != nil {
		return settings, model.WrapCLIError(
			model.ExitConfigError,
			fmt.Sprintf("invalid settings in %s", path),
			err,
		)
	}
	return settings, nil
}

// ApplyEnvOverrides layers environment variables over the settings.
// Each variable wins only when set and non-empty. PORT is deliberately
// not read here: it is an output of this tool, produced by the
// negotiator and exported to the compose child, never an input.
func (s *Settings) ApplyEnvOverrides() {
	overrides := []struct {
		env    string
		target *string
	}{
		{"IMAGE_NAME", &s.ImageName},
		{"IMAGE_TAG", &s.ImageTag},
		{"COMPOSE_FILE", &s.ComposeFile},
		{"COMPOSE_PROJECT", &s.ProjectName},
		{"HOST", &s.Host},
		{"ENV_FILE", &s.EnvFile},
		{"ENV_TEMPLATE", &s.EnvTemplate},
	}
	for _, o := range overrides {
		if v := os.Getenv(o.env); v != "" {
			*o.target = v
		}
	}
}

// ImageRef returns the full image reference to build, "name:tag".
func (s Settings) ImageRef() string {
	return s.ImageName + ":" + s.ImageTag
}

// validate rejects settings that would make the launch sequence
// misbehave in confusing ways further down.
func (s Settings) validate() error {
	if s.ImageName == "" {
		return fmt.Errorf("imageName must not be empty")
	}
	if s.ComposeFile == "" {
		return fmt.Errorf("composeFile must not be empty")
	}
	if s.DefaultPort < 1 || s.DefaultPort > 65535 {
		return fmt.Errorf("defaultPort %d out of range (1-65535)", s.DefaultPort)
	}
	return nil
}
