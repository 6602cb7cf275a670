// engine.go holds the docker CLI shell-outs: image build, compose
// command detection, and the final compose launch. These run as child
// processes with inherited standard streams — the operator sees build
// and compose output exactly as docker produces it, and the compose
// child's exit code is extracted so the caller can propagate it
// verbatim.
package docker

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/mmr-tortoise/stackup/internal/model"
)

// ComposeCommand is a resolved orchestration command: the argv prefix
// that invokes compose, either ["docker", "compose"] for the plugin or
// ["docker-compose"] for the standalone binary.
type ComposeCommand struct {
	argv []string
}

// String returns the command as the operator would type it.
func (c ComposeCommand) String() string {
	return strings.Join(c.argv, " ")
}

// pluginCompose and standaloneCompose are the two known invocation forms.
var (
	pluginCompose     = ComposeCommand{argv: []string{"docker", "compose"}}
	standaloneCompose = ComposeCommand{argv: []string{"docker-compose"}}
)

// DetectComposeCommand resolves which compose invocation is available.
//
// The plugin form is preferred: modern Docker ships compose as a plugin
// subcommand, and it is the form the daemon vendor keeps current. The
// check runs `docker compose version` because LookPath alone cannot see
// plugins — the docker binary may exist without the compose plugin
// installed. The legacy standalone docker-compose binary is the
// fallback. Neither present is ExitComposeMissing.
func DetectComposeCommand() (ComposeCommand, error) {
	if _, err := exec.LookPath("docker"); err == nil {
		if exec.Command("docker", "compose", "version").Run() == nil {
			return pluginCompose, nil
		}
	}

	if _, err := exec.LookPath("docker-compose"); err == nil {
		return standaloneCompose, nil
	}

	return ComposeCommand{}, model.NewCLIError(
		model.ExitComposeMissing,
		"no compose command found: need the docker compose plugin or a docker-compose binary",
	)
}

// BuildImage builds the application image by shelling out to
// `docker build -t <ref> -f <dockerfile> <buildContext>` in projectDir.
//
// Build output streams to the caller's stdout/stderr — image builds are
// slow and the operator needs the progress output. A non-zero build is
// ExitBuildFailure and aborts the launch.
func BuildImage(ctx context.Context, projectDir, imageRef, dockerfile, buildContext string) error {
	args := buildImageArgs(imageRef, dockerfile, buildContext)

	// #nosec G204 — args come from the project settings, not remote input
	cmd := exec.CommandContext(ctx, "docker", args...)
	cmd.Dir = projectDir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return model.WrapCLIError(
			model.ExitBuildFailure,
			fmt.Sprintf("image build failed for %s", imageRef),
			err,
		)
	}
	return nil
}

// buildImageArgs assembles the docker build argument list. Split out of
// BuildImage so the construction is testable without a docker binary.
func buildImageArgs(imageRef, dockerfile, buildContext string) []string {
	return []string{"build", "-t", imageRef, "-f", dockerfile, buildContext}
}

// ComposeUp launches the stack: `<compose> -f <composeFile> -p <project>
// up -d --build [extraArgs...]` in projectDir, with extraEnv appended to
// the inherited environment. The negotiated PORT travels to the compose
// child exclusively through extraEnv — it is never set in stackup's own
// environment.
//
// The child inherits stdin/stdout/stderr, so compose output and prompts
// pass straight through. The return value is the child's exit code; a
// non-nil error means the child could not be run at all (which is
// distinct from the child running and failing).
func ComposeUp(ctx context.Context, cc ComposeCommand, projectDir, composeFile, project string, extraArgs []string, extraEnv map[string]string) (int, error) {
	argv := composeUpArgs(cc, composeFile, project, extraArgs)

	// #nosec G204 — argv is assembled from settings plus pass-through args
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = projectDir
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	cmd.Env = os.Environ()
	for k, v := range extraEnv {
		cmd.Env = append(cmd.Env, k+"="+v)
	}

	err := cmd.Run()
	if err == nil {
		return 0, nil
	}

	// A child that ran and exited non-zero is the orchestration tool's
	// own failure; its exit code must propagate verbatim.
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() >= 0 {
		return exitErr.ExitCode(), nil
	}

	return 0, model.WrapCLIError(
		model.ExitGeneralError,
		fmt.Sprintf("failed to run %s", cc),
		err,
	)
}

// composeUpArgs assembles the full compose argv: the detected command
// prefix, the stack file and project name, "up -d --build", then the
// caller's pass-through arguments verbatim and last, so they can
// override anything stackup set.
func composeUpArgs(cc ComposeCommand, composeFile, project string, extraArgs []string) []string {
	argv := make([]string, 0, len(cc.argv)+7+len(extraArgs))
	argv = append(argv, cc.argv...)
	argv = append(argv, "-f", composeFile, "-p", project, "up", "-d", "--build")
	argv = append(argv, extraArgs...)
	return argv
}
