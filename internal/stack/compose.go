package stack

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/mmr-tortoise/stackup/internal/model"
)

// composeFile is the minimal slice of a compose stack definition that
// stackup cares about. Everything else in the YAML is ignored — the
// file is inspected, never rewritten.
type composeFile struct {
	// Services maps service names to their (unparsed) definitions.
	// Only the keys are used.
	Services map[string]yaml.Node `yaml:"services"`
}

// ListServices parses the compose file at path and returns the declared
// service names, sorted for deterministic output.
//
// A missing file, unparseable YAML, or a stack with no services is a
// ConfigError: launching a stack that declares nothing is always a
// misconfiguration, and catching it before the image build saves the
// slowest step of the sequence.
func ListServices(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, model.WrapCLIError(
			model.ExitConfigError,
			fmt.Sprintf("failed to read compose file %s", path),
			err,
		)
	}

	var cf composeFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, model.WrapCLIError(
			model.ExitConfigError,
			fmt.Sprintf("failed to parse compose file %s", path),
			err,
		)
	}

	if len(cf.Services) == 0 {
		return nil, model.NewCLIError(
			model.ExitConfigError,
			fmt.Sprintf("compose file %s declares no services", path),
		)
	}

	services := make([]string, 0, len(cf.Services))
	for name := range cf.Services {
		services = append(services, name)
	}
	sort.Strings(services)
	return services, nil
}
