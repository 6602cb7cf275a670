// Package cli — up.go implements the "stackup up" command, the
// top-level launch sequence.
//
// The sequence is linear and fail-fast; each step's failure aborts the
// remaining steps and exits with that step's code:
//
//  1. Verify the Docker daemon is reachable
//  2. Ensure the env file exists (seed from template on first run)
//  3. Negotiate the host port and sync it into the env file
//  4. Create the output directories
//  5. Preflight the compose file (it must declare services)
//  6. Build the application image
//  7. Detect the compose command (plugin, then standalone)
//  8. Run compose up with the negotiated port exported, and exit with
//     the child's exact exit code
//
// There are no retries anywhere: a failed step is reported immediately
// so configuration problems surface instead of being masked.
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/stackup/internal/docker"
	"github.com/mmr-tortoise/stackup/internal/envfile"
	"github.com/mmr-tortoise/stackup/internal/model"
	"github.com/mmr-tortoise/stackup/internal/port"
	"github.com/mmr-tortoise/stackup/internal/stack"
)

// negotiateTimeout bounds the port negotiation step. Scanning is
// normally instant; the deadline exists so a pathological host state
// cannot hang the whole launch.
const negotiateTimeout = 5 * time.Second

// NewUpCommand creates the "up" cobra command.
// It is called from NewRootCommand to register as a subcommand.
func NewUpCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "up [-- compose-args...]",
		Short: "Build the image and start the stack",
		Long: `Run the full launch sequence: check Docker, seed the env file, negotiate
a free host port, create output directories, build the image, and start
the compose stack.

Arguments after "--" are forwarded verbatim to the compose invocation:

  stackup up
  stackup up -- --force-recreate
  stackup up -- web db`,

		// Everything after "--" belongs to compose, so arbitrary args
		// are accepted and passed through untouched.
		Args: cobra.ArbitraryArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runUp(cmd.Context(), args)
		},
	}

	return cmd
}

// runUp is the launch coordinator. Each step maps to one numbered entry
// in the package comment above.
func runUp(ctx context.Context, extraArgs []string) error {
	projectDir, settings, err := loadProject()
	if err != nil {
		return err
	}
	VerboseLog("Project: %s (compose project %q)", projectDir, settings.ProjectName)

	// Step 1: Docker present and daemon responding.
	cli, err := docker.NewClient()
	if err != nil {
		return err
	}
	defer func() { _ = cli.Close() }()

	if err := cli.Ping(ctx); err != nil {
		return err
	}
	VerboseLog("Docker daemon reachable at %s", cli.Host())

	// Step 2: Ensure the env file exists.
	envPath := filepath.Join(projectDir, settings.EnvFile)
	templatePath := filepath.Join(projectDir, settings.EnvTemplate)
	seeded, err := envfile.EnsureFromTemplate(envPath, templatePath)
	if err != nil {
		return err
	}
	if seeded {
		VerboseLog("Seeded %s from %s", envPath, templatePath)
	}

	// Step 3: Negotiate the port, under a deadline.
	scanner := port.NewScanner(settings.Host)
	negotiator := port.NewNegotiator(scanner, settings.Host)
	negotiator.SetDefaultPort(settings.DefaultPort)

	negotiateCtx, cancel := context.WithTimeout(ctx, negotiateTimeout)
	sel, err := negotiator.Negotiate(negotiateCtx, envPath)
	cancel()
	if err != nil {
		return err
	}
	VerboseLog("Negotiated port: %s", sel)

	// Step 4: Provision the directory set.
	if err := stack.EnsureDirs(projectDir, settings.Dirs); err != nil {
		return err
	}
	VerboseLog("Ensured directories: %v", settings.Dirs)

	// Step 5: Compose preflight — catch an empty or broken stack file
	// before spending time on the image build.
	composePath := filepath.Join(projectDir, settings.ComposeFile)
	services, err := stack.ListServices(composePath)
	if err != nil {
		return err
	}
	VerboseLog("Stack declares %d service(s): %v", len(services), services)

	// Step 6: Build the image.
	VerboseLog("Building image %s...", settings.ImageRef())
	if err := docker.BuildImage(ctx, projectDir, settings.ImageRef(), settings.Dockerfile, settings.BuildContext); err != nil {
		return err
	}

	// Step 7: Resolve the compose invocation.
	composeCmd, err := docker.DetectComposeCommand()
	if err != nil {
		return err
	}
	VerboseLog("Using compose command: %s", composeCmd)

	// Step 8: Launch. The negotiated port reaches the stack through the
	// child's environment only — exported at this process boundary, not
	// into stackup's own environment.
	fmt.Println(upSummary(sel, services, settings.ProjectName))

	code, err := docker.ComposeUp(ctx, composeCmd, projectDir, settings.ComposeFile, settings.ProjectName, extraArgs, map[string]string{
		"PORT": fmt.Sprintf("%d", sel.Port),
		"HOST": sel.Host,
	})
	if err != nil {
		return err
	}
	if code != 0 {
		// The child already printed its own diagnostics; this error
		// exists only to carry its exit code out verbatim.
		return model.NewCLIError(model.ExitCode(code), fmt.Sprintf("compose exited with status %d", code))
	}
	return nil
}

// upSummary renders the one-line launch summary printed before handing
// the terminal over to compose.
func upSummary(sel model.PortSelection, services []string, project string) string {
	portNote := "reusing recorded port"
	if sel.Changed {
		portNote = "port recorded in env file"
	}
	return fmt.Sprintf("Starting %q (%d services) on %s:%d (%s)",
		project, len(services), sel.Host, sel.Port, portNote)
}

// loadProject resolves the project directory (the working directory)
// and its settings: defaults, then the settings file, then environment
// variable overrides.
func loadProject() (string, stack.Settings, error) {
	projectDir, err := os.Getwd()
	if err != nil {
		return "", stack.Settings{}, model.WrapCLIError(model.ExitGeneralError, "failed to get working directory", err)
	}

	path := configPath
	if path == "" {
		path = filepath.Join(projectDir, stack.DefaultSettingsFile)
	}

	settings, err := stack.Load(path, projectDir)
	if err != nil {
		return "", stack.Settings{}, err
	}
	settings.ApplyEnvOverrides()
	return projectDir, settings, nil
}
