// Package envfile reads and rewrites plain-text KEY=VALUE env files.
//
// The env file is shared state: the application stack reads it through
// docker compose, and concurrent stackup invocations may touch it at the
// same time. Two properties follow from that:
//
//   - Rewrites preserve every unrelated line verbatim — comments, blank
//     lines, ordering, and formatting all survive a PORT update.
//   - Saves are atomic with respect to a concurrent reader: the content
//     is written to a temp file in the same directory and renamed over
//     the target, so a reader sees either the old or the new complete
//     file, never a torn write.
//
// There is deliberately no map-based representation. Parsing into a map
// and re-serializing would destroy comments and ordering, so the file is
// kept as a slice of raw lines and edited in place.
package envfile
