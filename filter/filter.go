package filter

import (
	"errors"
	"time"

	"CloudSentry/core"
	"CloudSentry/rules"
)

// Common errors
var (
	ErrInvalidDateRange = errors.New("start date is after end date")
)

// Criteria holds the optional predicates applied to an event collection.
// A zero-value field disables its predicate entirely: an empty Criteria
// passes every record through unchanged.
type Criteria struct {
	// Start and End are calendar dates bounding the range. The range keeps
	// records with EventTime >= Start and EventTime < End + 24h, so the
	// selected end date is inclusive of its whole calendar day. A zero
	// time on either side leaves that side unbounded.
	Start time.Time
	End   time.Time

	// EventNames keeps only records whose event name is in the set.
	EventNames []string

	// Users keeps only records whose user name is in the set.
	Users []string

	// SensitiveOnly keeps only records whose event name is classified
	// sensitive by the rule set.
	SensitiveOnly bool
}

// Validate checks the criteria for malformed selections before any
// filtering runs. A start date after the end date is rejected rather
// than producing an empty or undefined comparison.
func (c Criteria) Validate() error {
	if !c.Start.IsZero() && !c.End.IsZero() && c.Start.After(c.End) {
		return ErrInvalidDateRange
	}
	return nil
}

// IsZero reports whether no predicate is active.
func (c Criteria) IsZero() bool {
	return c.Start.IsZero() && c.End.IsZero() &&
		len(c.EventNames) == 0 && len(c.Users) == 0 && !c.SensitiveOnly
}

// Apply runs the filter chain over the collection and returns the reduced
// view. The input is never mutated. Each predicate depends only on the
// original record, so the order of application does not affect the result.
// An empty input yields an empty output.
func Apply(events core.Events, c Criteria, rs *rules.RuleSet) core.Events {
	if len(events) == 0 {
		return core.Events{}
	}

	eventNames := toSet(c.EventNames)
	users := toSet(c.Users)

	// End is exclusive at the start of the following calendar day.
	var endExclusive time.Time
	if !c.End.IsZero() {
		endExclusive = c.End.AddDate(0, 0, 1)
	}

	filtered := make(core.Events, 0, len(events))
	for _, rec := range events {
		if !c.Start.IsZero() && rec.EventTime.Before(c.Start) {
			continue
		}
		if !endExclusive.IsZero() && !rec.EventTime.Before(endExclusive) {
			continue
		}
		if len(eventNames) > 0 {
			if _, ok := eventNames[rec.EventName]; !ok {
				continue
			}
		}
		if len(users) > 0 {
			if _, ok := users[rec.UserName]; !ok {
				continue
			}
		}
		if c.SensitiveOnly && !rs.IsSensitive(rec.EventName) {
			continue
		}
		filtered = append(filtered, rec)
	}

	return filtered
}

// SensitiveFlags returns, for each record in the collection, whether its
// event name is classified sensitive. Consumed by the presentation layer
// for row highlighting.
func SensitiveFlags(events core.Events, rs *rules.RuleSet) []bool {
	flags := make([]bool, len(events))
	for i, rec := range events {
		flags[i] = rs.IsSensitive(rec.EventName)
	}
	return flags
}

func toSet(names []string) map[string]struct{} {
	if len(names) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(names))
	for _, name := range names {
		set[name] = struct{}{}
	}
	return set
}
