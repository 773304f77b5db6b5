package models

import (
	"sort"
	"strconv"

	"github.com/tidwall/gjson"
)

// Payload decoding works on gjson results rather than encoding/json structs:
// it needs to tell an absent key from an explicit null, see the JSON type of
// every value before converting it, and find keys no model declares.

func parseRoot(data []byte, errs *errorList) (gjson.Result, bool) {
	if !gjson.ValidBytes(data) {
		errs.add(nil, RuleInvalidJSON, "payload is not valid JSON")
		return gjson.Result{}, false
	}
	return gjson.ParseBytes(data), true
}

// object is a JSON object being read field by field.
type object struct {
	loc    []string
	errs   *errorList
	fields map[string]gjson.Result
	read   map[string]bool
}

func asObject(v gjson.Result, loc []string, errs *errorList) (*object, bool) {
	if !v.IsObject() {
		errs.add(loc, RuleInvalidType, "value is not a valid object")
		return nil, false
	}
	o := &object{
		loc:    loc,
		errs:   errs,
		fields: map[string]gjson.Result{},
		read:   map[string]bool{},
	}
	v.ForEach(func(k, val gjson.Result) bool {
		o.fields[k.String()] = val
		return true
	})
	return o, true
}

func (o *object) at(name string) []string { return join(o.loc, name) }

// required returns the value under name, recording a failure when the key
// is absent or null.
func (o *object) required(name string) (gjson.Result, bool) {
	o.read[name] = true
	v, ok := o.fields[name]
	if !ok {
		o.errs.add(o.at(name), RuleMissing, "field required")
		return v, false
	}
	if v.Type == gjson.Null {
		o.errs.add(o.at(name), RuleNullNotAllowed, "null is not an allowed value")
		return v, false
	}
	return v, true
}

// optional returns the value under name; an explicit null reads as absent.
func (o *object) optional(name string) (gjson.Result, bool) {
	o.read[name] = true
	v, ok := o.fields[name]
	if !ok || v.Type == gjson.Null {
		return v, false
	}
	return v, true
}

// close rejects every key that no reader asked for.
func (o *object) close() {
	var extra []string
	for k := range o.fields {
		if !o.read[k] {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	for _, k := range extra {
		o.errs.add(o.at(k), RuleUnknownField, "extra fields not permitted")
	}
}

func readInt(v gjson.Result, loc []string, errs *errorList) (int64, bool) {
	if v.Type != gjson.Number {
		errs.add(loc, RuleInvalidType, "value is not a valid integer")
		return 0, false
	}
	n, err := strconv.ParseInt(v.Raw, 10, 64)
	if err != nil {
		errs.add(loc, RuleInvalidType, "value is not a valid integer")
		return 0, false
	}
	return n, true
}

func readPositive(v gjson.Result, loc []string, errs *errorList) (int64, bool) {
	n, ok := readInt(v, loc, errs)
	if !ok {
		return 0, false
	}
	if n <= 0 {
		errs.add(loc, RuleNotPositive, "ensure this value is greater than 0")
		return 0, false
	}
	return n, true
}

func readString(v gjson.Result, loc []string, errs *errorList) (string, bool) {
	if v.Type != gjson.String {
		errs.add(loc, RuleInvalidType, "str type expected")
		return "", false
	}
	return v.Str, true
}

func readBool(v gjson.Result, loc []string, errs *errorList) (bool, bool) {
	switch v.Type {
	case gjson.True:
		return true, true
	case gjson.False:
		return false, true
	}
	errs.add(loc, RuleInvalidType, "value could not be parsed to a boolean")
	return false, false
}

func readArray(v gjson.Result, loc []string, errs *errorList) ([]gjson.Result, bool) {
	if !v.IsArray() {
		errs.add(loc, RuleInvalidType, "value is not a valid list")
		return nil, false
	}
	return v.Array(), true
}
