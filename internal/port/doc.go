// Package port implements port availability scanning and the port
// negotiation that decides which host port the stack binds to.
//
// Negotiation policy, in order:
//
//  1. Reuse the port configured in the env file when it is valid and
//     currently free. This is the common, stable path — repeated runs
//     keep the same port and never touch the file.
//  2. Otherwise scan the primary range (8000-8099 by default) from the
//     deterministic default upward and take the first free port.
//  3. If the primary range is exhausted, fall back to the IANA dynamic
//     range (49152-65535).
//
// A port chosen by scanning is persisted back into the env file with an
// atomic replace, so the next run lands on the reuse path. If both
// ranges are exhausted, negotiation fails and the env file is left
// unmodified.
//
// The Scanner verifies OS-level availability via net.Listen, binding on
// the configured host (or all interfaces for wildcard hosts) so that the
// check covers the same address space the stack will publish on.
package port
