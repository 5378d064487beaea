// Package format implements the canonical one-line-per-record text form
// shared by the file sink and every other line-oriented sink (stdout,
// Kafka, S3, Slack): sinklog §4.4's
//
//	[<timestamp>] [<severity_name>] <component_repr>: <message> (<file>:<line>)
package format

import (
	"fmt"
	"strconv"
	"time"

	"github.com/user/sinklog"
)

// ComponentNamer resolves a Component to a human-readable name for log
// lines. It is optional; when nil, the component's integer value is used.
// Per sinklog §9's design notes, this is the embedder's job (the core has
// no closed Component set), so it is a plain function value, not a
// registry.
type ComponentNamer func(sinklog.Component) string

// Line renders r in the canonical form. namer may be nil.
func Line(r sinklog.Record, namer ComponentNamer) string {
	componentRepr := strconv.Itoa(int(r.Component))
	if namer != nil {
		if name := namer(r.Component); name != "" {
			componentRepr = name
		}
	}
	return fmt.Sprintf("[%s] [%s] %s: %s (%s:%d)",
		r.Timestamp.Format(time.RFC3339Nano),
		r.Severity.String(),
		componentRepr,
		r.Message,
		r.File,
		r.Line,
	)
}
