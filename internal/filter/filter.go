// Package filter implements the Filter sum type described in sinklog's
// registration contract and the disambiguation ladder that turns a
// heterogeneous registration argument into one of its four variants.
package filter

import (
	"fmt"

	"github.com/user/sinklog"
)

// acceptAll matches every record.
type acceptAll struct{}

func (acceptAll) Matches(sinklog.Record) bool { return true }

// AcceptAll is the Filter that matches every record. It is the result of
// resolving an absent/nil filter_spec.
var AcceptAll sinklog.Filter = acceptAll{}

// minSeverity matches when record.Severity >= threshold.
type minSeverity struct {
	threshold sinklog.Severity
}

func (f minSeverity) Matches(r sinklog.Record) bool { return r.Severity >= f.threshold }

// MinSeverity builds a Filter matching records at or above s.
func MinSeverity(s sinklog.Severity) sinklog.Filter { return minSeverity{threshold: s} }

// componentSet matches when record.Component is a member of the set.
// Severity is unrestricted. An empty set matches nothing.
type componentSet struct {
	set map[sinklog.Component]struct{}
}

func (f componentSet) Matches(r sinklog.Record) bool {
	_, ok := f.set[r.Component]
	return ok
}

// ComponentSet builds a Filter matching records whose Component is in cs.
func ComponentSet(cs []sinklog.Component) sinklog.Filter {
	set := make(map[sinklog.Component]struct{}, len(cs))
	for _, c := range cs {
		set[c] = struct{}{}
	}
	return componentSet{set: set}
}

// perComponent matches when record.Component is a key of the mapping and
// record.Severity >= mapping[record.Component]. An empty mapping matches
// nothing.
type perComponent struct {
	thresholds map[sinklog.Component]sinklog.Severity
}

func (f perComponent) Matches(r sinklog.Record) bool {
	threshold, ok := f.thresholds[r.Component]
	if !ok {
		return false
	}
	return r.Severity >= threshold
}

// PerComponent builds a Filter matching a record whose Component is a key
// of thresholds and whose Severity meets that component's threshold.
func PerComponent(thresholds map[sinklog.Component]sinklog.Severity) sinklog.Filter {
	cp := make(map[sinklog.Component]sinklog.Severity, len(thresholds))
	for k, v := range thresholds {
		cp[k] = v
	}
	return perComponent{thresholds: cp}
}

// Resolve implements the §4.2 disambiguation ladder: it classifies a
// caller-supplied filter_spec (any of the forms documented on
// sinklog.Logger's register methods) into one of the four Filter variants.
// Implementations MUST follow exactly this ladder, in this order, so that
// user-visible filtering matches the test suite this spec was distilled
// from.
func Resolve(spec any) (sinklog.Filter, error) {
	if spec == nil {
		return AcceptAll, nil
	}

	switch v := spec.(type) {
	case sinklog.Severity:
		return MinSeverity(v), nil
	case sinklog.Component:
		return ComponentSet([]sinklog.Component{v}), nil
	case []sinklog.Component:
		return ComponentSet(v), nil
	case map[sinklog.Component]sinklog.Severity:
		return PerComponent(v), nil
	}

	return nil, fmt.Errorf("%w: unrecognized filter_spec of type %T", sinklog.ErrInvalidArgument, spec)
}
