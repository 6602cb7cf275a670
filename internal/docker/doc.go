// Package docker is the container engine boundary for stackup.
//
// It splits into two halves that mirror how the tool talks to Docker:
//
//   - Client wraps the Docker Engine SDK for the prerequisite check:
//     socket autodetection and a bounded daemon ping. This is the only
//     API-level interaction — stackup never drives containers through
//     the SDK.
//   - The engine shell-outs (BuildImage, DetectComposeCommand,
//     ComposeUp) run the docker CLI as child processes, inheriting the
//     caller's standard streams so build and compose output reach the
//     operator unfiltered.
package docker
