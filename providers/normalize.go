package providers

import (
	"errors"
	"fmt"
	"time"

	"CloudSentry/core"
)

// Default user names substituted when a raw record carries no actor
// identity. Records from a live cloud fetch with an empty identity block
// get DefaultUserUnknown; records loaded from a synthetic/demo source get
// DefaultUserDemo.
const (
	DefaultUserUnknown = "Unknown"
	DefaultUserDemo    = "DemoUser"
)

// ErrUnparseableTime is returned when a raw record's timestamp cannot be
// normalized. The record is skipped and counted, never silently coerced.
var ErrUnparseableTime = errors.New("unparseable event time")

// eventTimeLayouts are tried in order when normalizing raw timestamps.
// CloudTrail emits RFC 3339; CSV archives sometimes drop the zone or the
// T separator.
var eventTimeLayouts = []string{
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseEventTime parses a raw timestamp string and normalizes it to UTC.
// Layouts without zone information are interpreted as UTC so that every
// record in a collection shares one consistent representation.
func ParseEventTime(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("%w: empty value", ErrUnparseableTime)
	}

	for _, layout := range eventTimeLayouts {
		if t, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}

	return time.Time{}, fmt.Errorf("%w: %q", ErrUnparseableTime, value)
}

// NormalizeCloudTrailRecord converts one raw CloudTrail record mapping
// into an EventRecord. The actor is taken from the userIdentity block,
// falling back to defaultUser when the block is absent or carries no
// user name. Fields the record does not supply stay unset.
func NormalizeCloudTrailRecord(raw map[string]interface{}, defaultUser string) (*core.EventRecord, error) {
	eventTime, err := ParseEventTime(getStringField(raw, "eventTime"))
	if err != nil {
		return nil, err
	}

	userName := defaultUser
	if userIdentity, ok := raw["userIdentity"].(map[string]interface{}); ok {
		if name := getStringField(userIdentity, "userName"); name != "" {
			userName = name
		}
	}

	return core.NewEventRecord(
		eventTime,
		getStringField(raw, "eventName"),
		userName,
		getStringField(raw, "sourceIPAddress"),
		getStringField(raw, "eventSource"),
		getStringField(raw, "userAgent"),
	), nil
}

// getStringField extracts a string field from a raw record mapping,
// returning an empty string if the field is absent or not a string
func getStringField(raw map[string]interface{}, key string) string {
	if value, ok := raw[key].(string); ok {
		return value
	}
	return ""
}
