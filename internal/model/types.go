package model

import (
	"fmt"
)

// PortSelection is the outcome of one port negotiation. It is produced
// once per invocation by the negotiator and consumed immediately by the
// launch sequence; only the Port field is persisted (inside the env file),
// never the struct itself.
type PortSelection struct {
	// Host is the bind address the stack will listen on, taken from the
	// project settings (e.g., "0.0.0.0" or "127.0.0.1").
	Host string `json:"host"`

	// Port is the negotiated host port (1-65535). After a successful
	// negotiation the env file's PORT entry always equals this value.
	Port int `json:"port"`

	// Changed reports whether the env file had to be rewritten to record
	// Port. It is false on the common, stable path where the previously
	// configured port is still free and gets reused.
	Changed bool `json:"changed"`
}

// Validate checks that the selection holds a usable port number.
func (s PortSelection) Validate() error {
	if s.Port < 1 || s.Port > 65535 {
		return fmt.Errorf("port %d out of range (1-65535)", s.Port)
	}
	return nil
}

// String returns a human-readable representation of the selection.
// Format: "host:port (changed)" or "host:port (reused)".
func (s PortSelection) String() string {
	state := "reused"
	if s.Changed {
		state = "changed"
	}
	return fmt.Sprintf("%s:%d (%s)", s.Host, s.Port, state)
}

// ScriptOutput renders the selection in the three-line format consumed by
// shell scripts: bind host, decimal port, then "1" if the env file was
// updated or "0" if not. Each field is newline-terminated so callers can
// read it with three plain line reads, no structured parsing required.
func (s PortSelection) ScriptOutput() string {
	flag := "0"
	if s.Changed {
		flag = "1"
	}
	return fmt.Sprintf("%s\n%d\n%s\n", s.Host, s.Port, flag)
}

// ValidPort reports whether the string is a decimal port number in the
// valid range. Used to decide whether a configured PORT value can be
// trusted; anything else is treated as unset rather than fatal.
func ValidPort(value string) (int, bool) {
	// Reject empty strings and anything with non-digit characters up front.
	// strconv.Atoi would accept leading "+" and similar forms that we do
	// not want to treat as a configured port.
	if value == "" {
		return 0, false
	}
	port := 0
	for _, r := range value {
		if r < '0' || r > '9' {
			return 0, false
		}
		port = port*10 + int(r-'0')
		if port > 65535 {
			return 0, false
		}
	}
	if port < 1 {
		return 0, false
	}
	return port, true
}

// ExitCode defines the stackup process exit codes. These let wrapper
// scripts and CI systems distinguish which launch step failed. The final
// compose child is the one exception: its exit code is propagated
// verbatim, whatever it is.
type ExitCode int

const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess ExitCode = 0

	// ExitGeneralError indicates an unspecified error occurred.
	ExitGeneralError ExitCode = 1

	// ExitPrerequisiteMissing indicates the Docker binary or daemon
	// is absent or unreachable.
	ExitPrerequisiteMissing ExitCode = 2

	// ExitConfigError indicates the env file, its template, or the
	// project settings file is missing, unreadable, or malformed.
	ExitConfigError ExitCode = 3

	// ExitPortUnavailable indicates no free port could be found in
	// either the primary scan range or the dynamic fallback range.
	ExitPortUnavailable ExitCode = 4

	// ExitBuildFailure indicates the image build exited non-zero.
	ExitBuildFailure ExitCode = 5

	// ExitComposeMissing indicates neither the docker compose plugin
	// nor a standalone docker-compose binary was found.
	ExitComposeMissing ExitCode = 6
)

// CLIError is a custom error type that carries an exit code.
// This allows the CLI layer to translate domain errors into
// appropriate process exit codes.
type CLIError struct {
	// Code is the exit code to return to the OS.
	Code ExitCode

	// Message is the human-readable error description.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error satisfies the error interface. It returns the human-readable
// error message, optionally including the underlying error.
func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a new CLIError with the given exit code and message.
func NewCLIError(code ExitCode, message string) *CLIError {
	return &CLIError{Code: code, Message: message}
}

// WrapCLIError creates a new CLIError that wraps an existing error.
func WrapCLIError(code ExitCode, message string, err error) *CLIError {
	return &CLIError{Code: code, Message: message, Err: err}
}
