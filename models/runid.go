package models

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

// RunID names one run of one racer: either one of the two canonical runs
// (assigned number 1 or 2) or an extra run under a free-form id.
// The zero value names no run.
type RunID struct {
	assigned int
	other    string
}

// AssignedRun returns the id of canonical run n, which must be 1 or 2.
func AssignedRun(n int) (RunID, error) {
	if n != 1 && n != 2 {
		return RunID{}, fieldError("RunID", RuleInvalidEnum, "assigned number must be 1 or 2, got %d", n)
	}
	return RunID{assigned: n}, nil
}

// OtherRun returns the id of an extra run.
func OtherRun(id string) (RunID, error) {
	if id == "" {
		return RunID{}, fieldError("RunID", RuleEmpty, "other id must not be empty")
	}
	return RunID{other: id}, nil
}

// AssignedNumber returns 1 or 2 for a canonical run; ok is false otherwise.
func (r RunID) AssignedNumber() (int, bool) { return r.assigned, r.assigned != 0 }

// OtherID returns the id of an extra run; ok is false for canonical runs.
func (r RunID) OtherID() (string, bool) { return r.other, r.other != "" }

// IsZero reports whether r names no run.
func (r RunID) IsZero() bool { return r == RunID{} }

func (r RunID) String() string {
	switch {
	case r.assigned != 0:
		return fmt.Sprintf("run#%d", r.assigned)
	case r.other != "":
		return "run:" + r.other
	}
	return "run:<none>"
}

type runIDWire struct {
	AssignedNumber *int    `json:"assigned_number,omitempty"`
	OtherID        *string `json:"other_id,omitempty"`
}

func (r RunID) MarshalJSON() ([]byte, error) {
	var w runIDWire
	if n, ok := r.AssignedNumber(); ok {
		w.AssignedNumber = &n
	}
	if s, ok := r.OtherID(); ok {
		w.OtherID = &s
	}
	return json.Marshal(w)
}

func (r *RunID) UnmarshalJSON(data []byte) error {
	var errs errorList
	root, ok := parseRoot(data, &errs)
	if ok {
		if v, ok := readRunID(root, nil, &errs); ok {
			*r = v
		}
	}
	return errs.err("RunID")
}

func readRunID(v gjson.Result, loc []string, errs *errorList) (RunID, bool) {
	o, ok := asObject(v, loc, errs)
	if !ok {
		return RunID{}, false
	}
	before := errs.len()
	var id RunID
	populated := 0

	if raw, ok := o.optional("assigned_number"); ok {
		n, ok := readInt(raw, o.at("assigned_number"), errs)
		if ok && n != 1 && n != 2 {
			errs.add(o.at("assigned_number"), RuleInvalidEnum, "unexpected value; permitted: 1, 2")
			ok = false
		}
		if ok {
			id.assigned = int(n)
			populated++
		}
	}
	if raw, ok := o.optional("other_id"); ok {
		s, ok := readString(raw, o.at("other_id"), errs)
		if ok && s == "" {
			errs.add(o.at("other_id"), RuleEmpty, "other id must not be empty")
			ok = false
		}
		if ok {
			id.other = s
			populated++
		}
	}
	o.close()

	// A variant that failed its own check counts as not populated, so
	// {"assigned_number": 0} also fails the exclusivity check.
	if populated != 1 {
		errs.add(loc, RuleExactlyOneOf, "exactly one of assigned_number, other_id must be specified")
	}
	return id, errs.len() == before
}
