package models

import (
	"encoding/json"
	"strings"

	"github.com/tidwall/gjson"
)

// RacerID identifies a racer (a boat crew) within a race.
type RacerID int64

// GateID numbers a gate on the course, starting at 1.
type GateID int64

// RefereePostID identifies a referee post along the course.
type RefereePostID int64

// NewRacerID checks that n is a valid racer id.
func NewRacerID(n int64) (RacerID, error) {
	if n <= 0 {
		return 0, fieldError("RacerID", RuleNotPositive, "ensure this value is greater than 0")
	}
	return RacerID(n), nil
}

// NewGateID checks that n is a valid gate number.
func NewGateID(n int64) (GateID, error) {
	if n <= 0 {
		return 0, fieldError("GateID", RuleNotPositive, "ensure this value is greater than 0")
	}
	return GateID(n), nil
}

// NewRefereePostID checks that n is a valid referee post id.
func NewRefereePostID(n int64) (RefereePostID, error) {
	if n <= 0 {
		return 0, fieldError("RefereePostID", RuleNotPositive, "ensure this value is greater than 0")
	}
	return RefereePostID(n), nil
}

// RegistrationNumber is a paddler's federation registration. Domestic numbers
// are digits, foreign ones may contain letters, so it stays a string.
type RegistrationNumber string

// NewRegistrationNumber rejects blank registrations.
func NewRegistrationNumber(s string) (RegistrationNumber, error) {
	if strings.TrimSpace(s) == "" {
		return "", fieldError("RegistrationNumber", RuleEmpty, "registration number must not be empty")
	}
	return RegistrationNumber(s), nil
}

// RegNumbers holds the registrations of a boat's crew: one for single-seat
// boats, two for C2. The zero value holds none and is not valid.
type RegNumbers struct {
	first, second RegistrationNumber
	n             int
}

// SingleSeat holds the registration of a one-paddler boat.
func SingleSeat(a RegistrationNumber) (RegNumbers, error) {
	var errs errorList
	checkSeat(a, []string{"0"}, &errs)
	if err := errs.err("RegNumbers"); err != nil {
		return RegNumbers{}, err
	}
	return RegNumbers{first: a, n: 1}, nil
}

// DoubleSeat holds the registrations of a C2 crew in seat order.
func DoubleSeat(a, b RegistrationNumber) (RegNumbers, error) {
	var errs errorList
	checkSeat(a, []string{"0"}, &errs)
	checkSeat(b, []string{"1"}, &errs)
	if err := errs.err("RegNumbers"); err != nil {
		return RegNumbers{}, err
	}
	return RegNumbers{first: a, second: b, n: 2}, nil
}

func checkSeat(r RegistrationNumber, loc []string, errs *errorList) bool {
	if strings.TrimSpace(string(r)) == "" {
		errs.add(loc, RuleEmpty, "registration number must not be empty")
		return false
	}
	return true
}

// Len returns the crew size, 0 for the zero value.
func (r RegNumbers) Len() int { return r.n }

// Numbers returns the registrations in seat order.
func (r RegNumbers) Numbers() []RegistrationNumber {
	switch r.n {
	case 1:
		return []RegistrationNumber{r.first}
	case 2:
		return []RegistrationNumber{r.first, r.second}
	}
	return nil
}

func (r RegNumbers) MarshalJSON() ([]byte, error) {
	nums := r.Numbers()
	if nums == nil {
		nums = []RegistrationNumber{}
	}
	return json.Marshal(nums)
}

func (r *RegNumbers) UnmarshalJSON(data []byte) error {
	var errs errorList
	root, ok := parseRoot(data, &errs)
	if ok {
		if v, ok := readRegNumbers(root, nil, &errs); ok {
			*r = v
		}
	}
	return errs.err("RegNumbers")
}

func readRegNumbers(v gjson.Result, loc []string, errs *errorList) (RegNumbers, bool) {
	items, ok := readArray(v, loc, errs)
	if !ok {
		return RegNumbers{}, false
	}
	before := errs.len()
	nums := make([]RegistrationNumber, 0, len(items))
	for i, item := range items {
		s, ok := readString(item, join(loc, idx(i)), errs)
		if !ok {
			continue
		}
		if !checkSeat(RegistrationNumber(s), join(loc, idx(i)), errs) {
			continue
		}
		nums = append(nums, RegistrationNumber(s))
	}
	if errs.len() > before {
		return RegNumbers{}, false
	}
	switch len(nums) {
	case 1:
		return RegNumbers{first: nums[0], n: 1}, true
	case 2:
		return RegNumbers{first: nums[0], second: nums[1], n: 2}, true
	}
	errs.add(loc, RuleInvalidLength, "wrong tuple length %d, expected 1 or 2", len(nums))
	return RegNumbers{}, false
}
