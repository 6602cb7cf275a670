// Package model defines the domain types for the stackup CLI.
//
// The central type is PortSelection, the result of one port negotiation:
// the bind host, the chosen port, and whether the persisted env file had
// to change to record it. The package also defines the CLI exit code
// taxonomy and the CLIError type that carries an exit code from wherever
// a failure is detected up to the process boundary.
package model
