// Package cli — port.go implements the "stackup port" command.
//
// The port command runs the negotiator standalone and emits the result
// in the three-line script protocol on stdout:
//
//	line 1: bind host
//	line 2: decimal port number
//	line 3: "1" if the env file was updated, "0" otherwise
//
// This is the contract wrapper scripts consume — they read three lines,
// no structured parsing. A non-zero exit signals that no port could be
// negotiated and the caller must abort. The up command does NOT go
// through this protocol; it uses the typed in-process result directly.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/stackup/internal/port"
)

// NewPortCommand creates the "port" cobra command.
// It is called from NewRootCommand to register as a subcommand.
func NewPortCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "port",
		Short: "Negotiate the host port and print it for scripts",
		Long: `Negotiate the host port the stack will bind to, persisting the decision
into the env file, and print three lines on stdout: the bind host, the
port number, and "1" if the env file changed ("0" if not).

Example:
  { read host; read port; read changed; } < <(stackup port)`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runPort(cmd.Context())
		},
	}

	return cmd
}

// runPort negotiates the port exactly as the up command would, then
// prints the result instead of launching anything.
func runPort(ctx context.Context) error {
	projectDir, settings, err := loadProject()
	if err != nil {
		return err
	}

	scanner := port.NewScanner(settings.Host)
	negotiator := port.NewNegotiator(scanner, settings.Host)
	negotiator.SetDefaultPort(settings.DefaultPort)

	negotiateCtx, cancel := context.WithTimeout(ctx, negotiateTimeout)
	defer cancel()

	sel, err := negotiator.Negotiate(negotiateCtx, filepath.Join(projectDir, settings.EnvFile))
	if err != nil {
		return err
	}

	if jsonOutput {
		data, marshalErr := json.MarshalIndent(sel, "", "  ")
		if marshalErr != nil {
			return marshalErr
		}
		fmt.Fprintln(os.Stdout, string(data))
		return nil
	}

	// The protocol is the whole point of this command: exactly three
	// newline-terminated fields, nothing else on stdout.
	fmt.Fprint(os.Stdout, sel.ScriptOutput())
	return nil
}
