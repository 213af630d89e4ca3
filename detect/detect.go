package detect

import (
	"sort"

	"CloudSentry/core"
	"CloudSentry/rules"
)

// SuspiciousUser is a user whose critical-event count in the current
// filtered view met or exceeded the alert threshold. It is derived data,
// recomputed on every filter change and never persisted.
type SuspiciousUser struct {
	UserName           string `json:"userName"`
	CriticalEventCount int    `json:"criticalEventCount"`
}

// SuspiciousUsers selects the critical-event subset of the given
// collection, groups it by user, and returns every user whose count met
// or exceeded the rule set's alert threshold. The collection is expected
// to already be filtered: detection is deliberately scoped to whatever
// view the caller is looking at, so narrowing the date range or event
// selection changes which activity counts as suspicious.
//
// The result is sorted by descending count, ties broken by user name,
// for stable presentation. An empty result means no suspicious activity
// and is not an error.
func SuspiciousUsers(events core.Events, rs *rules.RuleSet) []SuspiciousUser {
	counts := make(map[string]int)
	for _, rec := range events {
		if rs.IsCritical(rec.EventName) {
			counts[rec.UserName]++
		}
	}

	suspicious := make([]SuspiciousUser, 0)
	for userName, count := range counts {
		if count >= rs.AlertThreshold() {
			suspicious = append(suspicious, SuspiciousUser{
				UserName:           userName,
				CriticalEventCount: count,
			})
		}
	}

	sort.Slice(suspicious, func(i, j int) bool {
		if suspicious[i].CriticalEventCount != suspicious[j].CriticalEventCount {
			return suspicious[i].CriticalEventCount > suspicious[j].CriticalEventCount
		}
		return suspicious[i].UserName < suspicious[j].UserName
	})

	return suspicious
}
