// Package main is the entry point for the stackup CLI.
//
// This binary bootstraps a local containerized application stack: it
// verifies the Docker daemon is reachable, negotiates a free host port,
// persists that port into the project's env file, provisions output
// directories, builds the application image, and launches the compose
// stack. All functionality lives in the internal/cli package, which
// defines cobra commands.
//
// Build-time variables (version, commit, date) are injected via ldflags
// by GoReleaser during the release process. During development, they
// default to "dev", "none", and "unknown" respectively.
package main

import (
	"github.com/mmr-tortoise/stackup/internal/cli"
)

// version, commit, and date are set by GoReleaser at build time
// via ldflags. They provide binary identification for the --version
// flag output.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	// Inject build-time version info into the CLI package. This keeps
	// main.go free of any cobra knowledge and the CLI package free of
	// any build-system knowledge.
	cli.Version = version
	cli.Commit = commit
	cli.Date = date

	rootCmd := cli.NewRootCommand()
	cli.Execute(rootCmd)
}
