// Package cli — doctor.go implements the "stackup doctor" command.
//
// Doctor runs every launch prerequisite check read-only and reports the
// results: Docker socket and daemon, compose command availability, env
// file and template presence, and the services the compose file
// declares. Nothing is built, created, or rewritten. The command exits
// non-zero when any check fails, so it works as a CI gate.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/stackup/internal/docker"
	"github.com/mmr-tortoise/stackup/internal/model"
	"github.com/mmr-tortoise/stackup/internal/stack"
)

// checkResult is one prerequisite check's outcome.
type checkResult struct {
	// Name identifies the check (e.g., "docker daemon").
	Name string `json:"name"`

	// OK reports whether the check passed.
	OK bool `json:"ok"`

	// Detail is a short human-readable note: the socket path, the
	// compose command, the failure reason.
	Detail string `json:"detail,omitempty"`
}

// NewDoctorCommand creates the "doctor" cobra command.
// It is called from NewRootCommand to register as a subcommand.
func NewDoctorCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check launch prerequisites without changing anything",
		Long: `Check every prerequisite of a launch read-only: Docker socket and
daemon reachability, compose command availability, env file and template
presence, and the services declared in the compose file.

Exits non-zero if any check fails.`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runDoctor(cmd.Context())
		},
	}

	return cmd
}

// runDoctor executes all checks, prints the report, and fails when any
// check failed. Checks keep going after a failure so the operator sees
// the full picture in one run.
func runDoctor(ctx context.Context) error {
	projectDir, settings, err := loadProject()
	if err != nil {
		return err
	}

	var results []checkResult

	// Docker socket + daemon.
	cli, err := docker.NewClient()
	if err != nil {
		results = append(results, checkResult{Name: "docker daemon", Detail: err.Error()})
	} else {
		defer func() { _ = cli.Close() }()
		if pingErr := cli.Ping(ctx); pingErr != nil {
			results = append(results, checkResult{Name: "docker daemon", Detail: pingErr.Error()})
		} else {
			results = append(results, checkResult{Name: "docker daemon", OK: true, Detail: cli.Host()})
		}
	}

	// Compose command.
	if composeCmd, detectErr := docker.DetectComposeCommand(); detectErr != nil {
		results = append(results, checkResult{Name: "compose command", Detail: detectErr.Error()})
	} else {
		results = append(results, checkResult{Name: "compose command", OK: true, Detail: composeCmd.String()})
	}

	// Env file / template. The env file itself being absent is fine as
	// long as the template exists to seed it from.
	envPath := filepath.Join(projectDir, settings.EnvFile)
	templatePath := filepath.Join(projectDir, settings.EnvTemplate)
	if _, statErr := os.Stat(envPath); statErr == nil {
		results = append(results, checkResult{Name: "env file", OK: true, Detail: envPath})
	} else if _, tmplErr := os.Stat(templatePath); tmplErr == nil {
		results = append(results, checkResult{Name: "env file", OK: true, Detail: fmt.Sprintf("absent, will seed from %s", templatePath)})
	} else {
		results = append(results, checkResult{Name: "env file", Detail: fmt.Sprintf("neither %s nor template %s exists", envPath, templatePath)})
	}

	// Compose file and declared services.
	composePath := filepath.Join(projectDir, settings.ComposeFile)
	if services, listErr := stack.ListServices(composePath); listErr != nil {
		results = append(results, checkResult{Name: "compose file", Detail: listErr.Error()})
	} else {
		results = append(results, checkResult{Name: "compose file", OK: true, Detail: fmt.Sprintf("%d service(s): %s", len(services), strings.Join(services, ", "))})
	}

	if jsonOutput {
		data, marshalErr := json.MarshalIndent(results, "", "  ")
		if marshalErr != nil {
			return marshalErr
		}
		fmt.Fprintln(os.Stdout, string(data))
	} else {
		fmt.Fprint(os.Stdout, doctorReport(results))
	}

	for _, r := range results {
		if !r.OK {
			return model.NewCLIError(model.ExitGeneralError, "one or more prerequisite checks failed")
		}
	}
	return nil
}

// doctorReport renders the check results as a plain-text report, one
// line per check.
func doctorReport(results []checkResult) string {
	var b strings.Builder
	for _, r := range results {
		mark := "FAIL"
		if r.OK {
			mark = "ok"
		}
		fmt.Fprintf(&b, "%-16s %-4s %s\n", r.Name, mark, r.Detail)
	}
	return b.String()
}
