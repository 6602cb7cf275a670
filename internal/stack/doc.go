// Package stack holds the project-level configuration for a launch:
// the stackup.jsonc settings file (with env-var overrides), read-only
// inspection of the compose stack definition, and provisioning of the
// output directories the stack expects to exist.
//
// The settings file supports JSONC (JSON with Comments), parsed with
// github.com/tidwall/jsonc before the standard encoding/json pass. The
// compose file is parsed with gopkg.in/yaml.v3 — only far enough to list
// the declared services; stackup never modifies it.
package stack
