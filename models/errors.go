package models

import (
	"fmt"
	"strconv"
	"strings"
)

// Rule identifies which check a field failed.
type Rule string

const (
	RuleMissing        Rule = "missing"
	RuleUnknownField   Rule = "unknown_field"
	RuleNullNotAllowed Rule = "null_not_allowed"
	RuleInvalidType    Rule = "invalid_type"
	RuleInvalidJSON    Rule = "invalid_json"
	RuleNotPositive    Rule = "not_positive"
	RuleEmpty          Rule = "empty"
	RuleInvalidEnum    Rule = "invalid_enum"
	RuleInvalidLength  Rule = "invalid_length"
	RuleInvalidTime    Rule = "invalid_datetime"
	RuleMissingTZ      Rule = "missing_timezone"
	RuleExactlyOneOf   Rule = "exactly_one_of"
	RuleMissReason     Rule = "miss_reason_mismatch"
)

// FieldError is a single failed check. An empty Loc means the check covered
// the whole record rather than one field.
type FieldError struct {
	Loc  []string
	Rule Rule
	Msg  string
}

// Path joins Loc with dots, e.g. "runs.0.penalisations.3".
func (e FieldError) Path() string {
	return strings.Join(e.Loc, ".")
}

func (e FieldError) Error() string {
	p := e.Path()
	if p == "" {
		p = "<record>"
	}
	return fmt.Sprintf("%s: %s (%s)", p, e.Msg, e.Rule)
}

// ValidationError is returned whenever input fails to satisfy a model's
// invariants. It carries every failure found, not just the first.
type ValidationError struct {
	Model  string
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	n := len(e.Errors)
	if n == 1 {
		fmt.Fprintf(&b, "1 validation error for %s", e.Model)
	} else {
		fmt.Fprintf(&b, "%d validation errors for %s", n, e.Model)
	}
	for _, fe := range e.Errors {
		b.WriteString("\n  ")
		b.WriteString(fe.Error())
	}
	return b.String()
}

// Has reports whether a failure with the given path and rule was recorded.
func (e *ValidationError) Has(path string, rule Rule) bool {
	for _, fe := range e.Errors {
		if fe.Path() == path && fe.Rule == rule {
			return true
		}
	}
	return false
}

// errorList accumulates failures during one validation pass.
type errorList struct {
	errs []FieldError
}

func (l *errorList) add(loc []string, rule Rule, format string, args ...any) {
	l.errs = append(l.errs, FieldError{
		Loc:  append([]string(nil), loc...),
		Rule: rule,
		Msg:  fmt.Sprintf(format, args...),
	})
}

func (l *errorList) len() int { return len(l.errs) }

func (l *errorList) err(model string) error {
	if len(l.errs) == 0 {
		return nil
	}
	return &ValidationError{Model: model, Errors: l.errs}
}

func join(prefix []string, rest ...string) []string {
	out := make([]string, 0, len(prefix)+len(rest))
	out = append(out, prefix...)
	return append(out, rest...)
}

func idx(i int) string { return strconv.Itoa(i) }

// fieldError builds a single-failure ValidationError, used by the small
// constructors that check one value.
func fieldError(model string, rule Rule, format string, args ...any) error {
	var l errorList
	l.add(nil, rule, format, args...)
	return l.err(model)
}
