package rules

import (
	"errors"
)

// Common errors
var (
	ErrInvalidThreshold = errors.New("alert threshold must be at least 1")
)

// DefaultSensitiveEvents lists the event names flagged for highlighting
// and sensitivity filtering when no custom rule set is supplied.
var DefaultSensitiveEvents = []string{
	"DeleteBucket",
	"PutBucketAcl",
	"ModifyIAMPolicy",
	"DeleteTrail",
	"StopLogging",
}

// DefaultCriticalEvents lists the event names that contribute to
// suspicious-activity scoring when no custom rule set is supplied.
// By convention this is a subset of the sensitive list, but membership
// is always tested independently.
var DefaultCriticalEvents = []string{
	"DeleteBucket",
	"ModifyIAMPolicy",
	"StopLogging",
}

// DefaultAlertThreshold is the minimum count of critical events by one
// user, within the current filtered view, to be flagged as suspicious.
const DefaultAlertThreshold = 3

// RuleSet classifies event names as sensitive or critical and carries the
// alert threshold for suspicious-activity detection. Rule sets are
// configuration data: build one with New and pass it to the components
// that need it rather than relying on package-level state.
type RuleSet struct {
	sensitive map[string]struct{}
	critical  map[string]struct{}
	threshold int
}

// New creates a RuleSet from the given event-name lists and threshold.
func New(sensitiveEvents, criticalEvents []string, alertThreshold int) (*RuleSet, error) {
	if alertThreshold < 1 {
		return nil, ErrInvalidThreshold
	}

	rs := &RuleSet{
		sensitive: make(map[string]struct{}, len(sensitiveEvents)),
		critical:  make(map[string]struct{}, len(criticalEvents)),
		threshold: alertThreshold,
	}
	for _, name := range sensitiveEvents {
		rs.sensitive[name] = struct{}{}
	}
	for _, name := range criticalEvents {
		rs.critical[name] = struct{}{}
	}
	return rs, nil
}

// Default returns a RuleSet with the stock sensitive/critical lists and
// alert threshold.
func Default() *RuleSet {
	rs, _ := New(DefaultSensitiveEvents, DefaultCriticalEvents, DefaultAlertThreshold)
	return rs
}

// IsSensitive reports whether the event name is in the sensitive set.
// Unclassified names are not sensitive.
func (rs *RuleSet) IsSensitive(eventName string) bool {
	_, ok := rs.sensitive[eventName]
	return ok
}

// IsCritical reports whether the event name is in the critical set.
func (rs *RuleSet) IsCritical(eventName string) bool {
	_, ok := rs.critical[eventName]
	return ok
}

// AlertThreshold returns the configured suspicious-activity threshold.
func (rs *RuleSet) AlertThreshold() int {
	return rs.threshold
}

// SensitiveEvents returns the configured sensitive event names.
func (rs *RuleSet) SensitiveEvents() []string {
	names := make([]string, 0, len(rs.sensitive))
	for name := range rs.sensitive {
		names = append(names, name)
	}
	return names
}

// CriticalEvents returns the configured critical event names.
func (rs *RuleSet) CriticalEvents() []string {
	names := make([]string, 0, len(rs.critical))
	for name := range rs.critical {
		names = append(names, name)
	}
	return names
}
