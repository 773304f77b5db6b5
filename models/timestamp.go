package models

import (
	"time"

	"github.com/tidwall/gjson"
)

// Layouts accepted for ISO-8601 timestamps. Fractional seconds are optional
// in every layout since time.Parse accepts them after a seconds field.
var (
	zonedLayouts = []string{
		"2006-01-02T15:04:05Z07:00",
		"2006-01-02 15:04:05Z07:00",
		"2006-01-02T15:04:05Z0700",
		"2006-01-02 15:04:05Z0700",
		"2006-01-02T15:04Z07:00",
		"2006-01-02 15:04Z07:00",
	}
	naiveLayouts = []string{
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04",
		"2006-01-02 15:04",
		"2006-01-02",
	}
)

// ParseTimestamp parses an ISO-8601 timestamp that carries a UTC offset.
// A well-formed timestamp without an offset is rejected with
// RuleMissingTZ; anything else unparsable with RuleInvalidTime.
func ParseTimestamp(s string) (time.Time, error) {
	t, rule := parseTimestamp(s)
	if rule != "" {
		return time.Time{}, fieldError("Timestamp", rule, "%s", timestampMsg(rule))
	}
	return t, nil
}

func parseTimestamp(s string) (time.Time, Rule) {
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, ""
		}
	}
	for _, layout := range naiveLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return time.Time{}, RuleMissingTZ
		}
	}
	return time.Time{}, RuleInvalidTime
}

func timestampMsg(rule Rule) string {
	if rule == RuleMissingTZ {
		return "timestamp must carry a timezone offset"
	}
	return "invalid datetime format"
}

// readTimestamp is the field-level rule shared by every timestamp-bearing
// field in the model.
func readTimestamp(v gjson.Result, loc []string, errs *errorList) (time.Time, bool) {
	s, ok := readString(v, loc, errs)
	if !ok {
		return time.Time{}, false
	}
	t, rule := parseTimestamp(s)
	if rule != "" {
		errs.add(loc, rule, "%s", timestampMsg(rule))
		return time.Time{}, false
	}
	return t, true
}

// checkTimestamp validates an already typed timestamp. Go times always
// carry a location, so only the zero value is refused.
func checkTimestamp(t time.Time, loc []string, errs *errorList) bool {
	if t.IsZero() {
		errs.add(loc, RuleMissing, "field required")
		return false
	}
	return true
}
