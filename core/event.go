package core

import (
	"time"
)

// EventRecord represents a normalized cloud audit-log record
type EventRecord struct {
	EventTime       time.Time `json:"eventTime"`
	EventName       string    `json:"eventName"`
	UserName        string    `json:"userName"`
	SourceIPAddress string    `json:"sourceIPAddress,omitempty"`
	EventSource     string    `json:"eventSource,omitempty"`
	UserAgent       string    `json:"userAgent,omitempty"`
}

// NewEventRecord creates a new audit event record with the given parameters.
// The timestamp is normalized to UTC so that every record in a collection
// shares a single time representation.
func NewEventRecord(
	eventTime time.Time,
	eventName string,
	userName string,
	sourceIPAddress string,
	eventSource string,
	userAgent string,
) *EventRecord {
	return &EventRecord{
		EventTime:       eventTime.UTC(),
		EventName:       eventName,
		UserName:        userName,
		SourceIPAddress: sourceIPAddress,
		EventSource:     eventSource,
		UserAgent:       userAgent,
	}
}

// Events is a slice of EventRecord pointers that can be sorted by timestamp
type Events []*EventRecord

// Implement sort.Interface for Events
func (e Events) Len() int           { return len(e) }
func (e Events) Less(i, j int) bool { return e[i].EventTime.Before(e[j].EventTime) }
func (e Events) Swap(i, j int)      { e[i], e[j] = e[j], e[i] }

// UserNames returns the distinct user names present in the collection,
// in first-seen order. Used by consumers to build filter choices.
func (e Events) UserNames() []string {
	seen := make(map[string]struct{}, len(e))
	names := make([]string, 0)
	for _, rec := range e {
		if _, ok := seen[rec.UserName]; ok {
			continue
		}
		seen[rec.UserName] = struct{}{}
		names = append(names, rec.UserName)
	}
	return names
}

// EventNames returns the distinct event names present in the collection,
// in first-seen order.
func (e Events) EventNames() []string {
	seen := make(map[string]struct{}, len(e))
	names := make([]string, 0)
	for _, rec := range e {
		if _, ok := seen[rec.EventName]; ok {
			continue
		}
		seen[rec.EventName] = struct{}{}
		names = append(names, rec.EventName)
	}
	return names
}
