package port

import (
	"context"
	"fmt"
	"strconv"

	"github.com/mmr-tortoise/stackup/internal/envfile"
	"github.com/mmr-tortoise/stackup/internal/model"
)

const (
	// DefaultPort is the deterministic starting point of the primary
	// scan. First runs with a free default land here, so the stack's
	// address is predictable without consulting any state.
	DefaultPort = 8000

	// primaryRangeWidth is the number of ports scanned upward from the
	// default before falling back to the dynamic range. 100 ports covers
	// typical local collisions (a second stack, a stray dev server)
	// while keeping exhaustion detectable in bounded time.
	primaryRangeWidth = 100

	// dynamicRangeStart is the start of the IANA dynamic/private port
	// range (49152-65535), used as the fallback when the entire primary
	// range is occupied.
	dynamicRangeStart = 49152

	// dynamicRangeEnd is the end of the dynamic port range.
	dynamicRangeEnd = 65535
)

// Range is an inclusive port interval scanned by the negotiator.
type Range struct {
	Start int
	End   int
}

// Negotiator decides which host port the stack binds to and keeps the
// env file's PORT entry in sync with that decision.
//
// It holds a Scanner for OS-level availability checks and two scan
// ranges: the primary range rooted at the deterministic default, and the
// dynamic-range fallback. Both are configurable so callers (and tests)
// can narrow them.
type Negotiator struct {
	// scanner probes the OS for actual port availability.
	scanner *Scanner

	// host is the bind address reported in the PortSelection. It is the
	// same host the scanner probes on.
	host string

	// primary is scanned first, from Start upward.
	primary Range

	// fallback is scanned when the primary range is exhausted.
	fallback Range
}

// NewNegotiator creates a Negotiator for the given bind host, scanning
// the default primary range (8000-8099) with the IANA dynamic range as
// fallback. The scanner must not be nil.
func NewNegotiator(scanner *Scanner, host string) *Negotiator {
	return &Negotiator{
		scanner:  scanner,
		host:     host,
		primary:  Range{Start: DefaultPort, End: DefaultPort + primaryRangeWidth - 1},
		fallback: Range{Start: dynamicRangeStart, End: dynamicRangeEnd},
	}
}

// SetRanges overrides the primary and fallback scan ranges. Tests use
// this to make exhaustion reachable with a handful of listeners.
func (n *Negotiator) SetRanges(primary, fallback Range) {
	n.primary = primary
	n.fallback = fallback
}

// SetDefaultPort re-roots the primary scan range at the given port,
// keeping the standard width. The project settings use this to honor a
// configured default port. The range is clamped to the valid port space.
func (n *Negotiator) SetDefaultPort(port int) {
	end := port + primaryRangeWidth - 1
	if end > dynamicRangeEnd {
		end = dynamicRangeEnd
	}
	n.primary = Range{Start: port, End: end}
}

// Negotiate determines the port the stack will bind to and synchronizes
// the env file at configPath with the decision.
//
// Algorithm:
//  1. Read PORT from the env file. A missing or syntactically invalid
//     value (non-numeric, out of range) is treated as unset, not fatal.
//  2. If a configured port exists and is currently free, reuse it. The
//     file is not touched and Changed is false.
//  3. Otherwise scan the primary range, then the fallback range, taking
//     the first free port. Exhaustion of both is a PortUnavailable
//     error and leaves the file unmodified.
//  4. Persist the newly selected port into the env file's PORT entry,
//     preserving every other line, via an atomic replace.
//
// The context bounds the scan; callers should apply a deadline so a
// hang here cannot block the whole launch.
func (n *Negotiator) Negotiate(ctx context.Context, configPath string) (model.PortSelection, error) {
	var none model.PortSelection

	f, err := envfile.Load(configPath)
	if err != nil {
		return none, err
	}

	configured := 0
	haveConfigured := false
	if raw, found := f.Get("PORT"); found {
		configured, haveConfigured = model.ValidPort(raw)
	}

	// Stable path: a valid configured port that is still free gets
	// reused, so repeated runs keep the same port and the file's mtime
	// never moves.
	if haveConfigured && n.scanner.IsPortAvailable(configured) {
		return model.PortSelection{Host: n.host, Port: configured, Changed: false}, nil
	}

	selected, err := n.scan(ctx)
	if err != nil {
		return none, err
	}

	selection := model.PortSelection{
		Host:    n.host,
		Port:    selected,
		Changed: !haveConfigured || selected != configured,
	}

	if selection.Changed {
		if f.Set("PORT", strconv.Itoa(selected)) {
			if err := f.Save(); err != nil {
				return none, err
			}
		}
	}

	return selection, nil
}

// scan searches the primary range, then the fallback range, and returns
// the first free port. Both ranges exhausted is a PortUnavailable error.
func (n *Negotiator) scan(ctx context.Context) (int, error) {
	if port, err := n.scanner.FindAvailablePort(ctx, n.primary.Start, n.primary.End); err == nil {
		return port, nil
	} else if ctx.Err() != nil {
		// Distinguish cancellation from a genuinely exhausted range:
		// a deadline hit mid-scan must not be reported as "no port free".
		return 0, model.WrapCLIError(model.ExitGeneralError, "port negotiation timed out", err)
	}

	port, err := n.scanner.FindAvailablePort(ctx, n.fallback.Start, n.fallback.End)
	if err != nil {
		if ctx.Err() != nil {
			return 0, model.WrapCLIError(model.ExitGeneralError, "port negotiation timed out", err)
		}
		return 0, model.WrapCLIError(
			model.ExitPortUnavailable,
			fmt.Sprintf("no free port in %d-%d or %d-%d",
				n.primary.Start, n.primary.End, n.fallback.Start, n.fallback.End),
			err,
		)
	}
	return port, nil
}
