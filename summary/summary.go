package summary

import (
	"sort"

	"CloudSentry/core"
)

// SourceCount is the number of filtered records attributed to one event
// source (service endpoint).
type SourceCount struct {
	Source string `json:"source"`
	Count  int    `json:"count"`
}

// DayCount is the number of filtered records on one calendar day.
type DayCount struct {
	Date  string `json:"date"` // YYYY-MM-DD
	Count int    `json:"count"`
}

// EventTypeCount is the number of filtered records with one event name,
// used for proportion/share display.
type EventTypeCount struct {
	EventName string `json:"eventName"`
	Count     int    `json:"count"`
}

// BySource groups the collection by event source and counts occurrences,
// ordered by descending count with ties broken by source name so the
// output is deterministic. Records whose provider supplied no event
// source are grouped under the empty string.
func BySource(events core.Events) []SourceCount {
	counts := make(map[string]int)
	for _, rec := range events {
		counts[rec.EventSource]++
	}

	result := make([]SourceCount, 0, len(counts))
	for source, count := range counts {
		result = append(result, SourceCount{Source: source, Count: count})
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Source < result[j].Source
	})

	return result
}

// ByDay groups the collection by the calendar date portion of the event
// time and counts occurrences, ordered by ascending date (a time series).
func ByDay(events core.Events) []DayCount {
	counts := make(map[string]int)
	for _, rec := range events {
		counts[rec.EventTime.Format("2006-01-02")]++
	}

	result := make([]DayCount, 0, len(counts))
	for date, count := range counts {
		result = append(result, DayCount{Date: date, Count: count})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Date < result[j].Date
	})

	return result
}

// ByEventType groups the collection by event name and counts occurrences,
// ordered by descending count with ties broken by event name.
func ByEventType(events core.Events) []EventTypeCount {
	counts := make(map[string]int)
	for _, rec := range events {
		counts[rec.EventName]++
	}

	result := make([]EventTypeCount, 0, len(counts))
	for name, count := range counts {
		result = append(result, EventTypeCount{EventName: name, Count: count})
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].EventName < result[j].EventName
	})

	return result
}
