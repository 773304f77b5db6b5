package models

import (
	"fmt"
	"slices"
	"strings"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// AgeCategory is the age bracket a racer starts in.
type AgeCategory string

const (
	AgePZ  AgeCategory = "PZ" // pre-juniors
	AgeZM  AgeCategory = "ZM" // younger juniors
	AgeZS  AgeCategory = "ZS" // older juniors
	AgeDM  AgeCategory = "DM" // younger cadets
	AgeDS  AgeCategory = "DS" // older cadets
	AgeU23 AgeCategory = "U23"
	AgeD   AgeCategory = "D" // adults
	AgeVM  AgeCategory = "VM" // younger veterans
	AgeV   AgeCategory = "V"
	AgeVS  AgeCategory = "VS" // older veterans
)

var ageCategories = []AgeCategory{AgePZ, AgeZM, AgeZS, AgeDM, AgeDS, AgeU23, AgeD, AgeVM, AgeV, AgeVS}

// GenderCategory is the gender class of a boat crew.
type GenderCategory string

const (
	GenderMen   GenderCategory = "M"
	GenderWomen GenderCategory = "Z"
	GenderMixed GenderCategory = "X" // mixed C2 crews
	GenderOther GenderCategory = "OTHER"
)

var genderCategories = []GenderCategory{GenderMen, GenderWomen, GenderMixed, GenderOther}

// BoatCategory is the boat class. C2 is the only two-seat class.
type BoatCategory string

const (
	BoatK1    BoatCategory = "K1"
	BoatC1    BoatCategory = "C1"
	BoatC2    BoatCategory = "C2"
	BoatOther BoatCategory = "OTHER"
)

var boatCategories = []BoatCategory{BoatK1, BoatC1, BoatC2, BoatOther}

// Seats returns how many paddlers, and so how many registration numbers,
// the boat class carries.
func (b BoatCategory) Seats() int {
	switch b {
	case BoatK1, BoatC1, BoatOther:
		return 1
	case BoatC2:
		return 2
	default:
		assertNever(b)
		return 0
	}
}

// PerformanceRating is the racer's performance class.
type PerformanceRating string

const (
	PerfMaster    PerformanceRating = "M"
	PerfOne       PerformanceRating = "1"
	PerfTwoPlus   PerformanceRating = "2+"
	PerfTwo       PerformanceRating = "2"
	PerfThreePlus PerformanceRating = "3+"
	PerfThree     PerformanceRating = "3"
	PerfNone      PerformanceRating = "-"
)

var performanceRatings = []PerformanceRating{PerfMaster, PerfOne, PerfTwoPlus, PerfTwo, PerfThreePlus, PerfThree, PerfNone}

// Penalisation is the judged outcome of a gate. Its value is the penalty in
// seconds.
type Penalisation int

const (
	PenaltyGood  Penalisation = 0
	PenaltyTouch Penalisation = 2
	PenaltyMiss  Penalisation = 50
)

var penalisations = []Penalisation{PenaltyGood, PenaltyTouch, PenaltyMiss}

// Seconds returns the time penalty the outcome adds to a run.
func (p Penalisation) Seconds() int { return int(p) }

func (p Penalisation) String() string {
	switch p {
	case PenaltyGood:
		return "GOOD"
	case PenaltyTouch:
		return "TOUCH"
	case PenaltyMiss:
		return "MISS"
	}
	return fmt.Sprintf("Penalisation(%d)", int(p))
}

// MissReason says why a gate was scored as missed.
type MissReason string

const (
	MissTouchedNotPassed MissReason = "A"
	MissPushedGate       MissReason = "B"
	MissCapsized         MissReason = "C"
	MissWrongSide        MissReason = "D"
	MissSkipped          MissReason = "E"
	MissOneOfCrew        MissReason = "F" // only one C2 paddler passed
)

var missReasons = []MissReason{MissTouchedNotPassed, MissPushedGate, MissCapsized, MissWrongSide, MissSkipped, MissOneOfCrew}

// TimerPosition is where a timing station sits on the course.
type TimerPosition int

const (
	TimerStart  TimerPosition = 0
	TimerFinish TimerPosition = 1
)

var timerPositions = []TimerPosition{TimerStart, TimerFinish}

func (t TimerPosition) String() string {
	switch t {
	case TimerStart:
		return "START"
	case TimerFinish:
		return "FINISH"
	}
	return fmt.Sprintf("TimerPosition(%d)", int(t))
}

func (a AgeCategory) Valid() bool       { return slices.Contains(ageCategories, a) }
func (g GenderCategory) Valid() bool    { return slices.Contains(genderCategories, g) }
func (b BoatCategory) Valid() bool      { return slices.Contains(boatCategories, b) }
func (p PerformanceRating) Valid() bool { return slices.Contains(performanceRatings, p) }
func (p Penalisation) Valid() bool      { return slices.Contains(penalisations, p) }
func (m MissReason) Valid() bool        { return slices.Contains(missReasons, m) }
func (t TimerPosition) Valid() bool     { return slices.Contains(timerPositions, t) }

// ParseBoatCategory, and its siblings below, convert a wire code into an
// enum member.
func ParseBoatCategory(s string) (BoatCategory, error) {
	return parseStringEnum("BoatCategory", s, boatCategories)
}

func ParseAgeCategory(s string) (AgeCategory, error) {
	return parseStringEnum("AgeCategory", s, ageCategories)
}

func ParseGenderCategory(s string) (GenderCategory, error) {
	return parseStringEnum("GenderCategory", s, genderCategories)
}

func ParsePerformanceRating(s string) (PerformanceRating, error) {
	return parseStringEnum("PerformanceRating", s, performanceRatings)
}

func ParseMissReason(s string) (MissReason, error) {
	return parseStringEnum("MissReason", s, missReasons)
}

func ParsePenalisation(n int) (Penalisation, error) {
	return parseIntEnum("Penalisation", n, penalisations)
}

func ParseTimerPosition(n int) (TimerPosition, error) {
	return parseIntEnum("TimerPosition", n, timerPositions)
}

func parseStringEnum[T ~string](model, s string, members []T) (T, error) {
	if slices.Contains(members, T(s)) {
		return T(s), nil
	}
	return "", fieldError(model, RuleInvalidEnum, "value is not a valid enumeration member; permitted: %s", permitted(members))
}

func parseIntEnum[T ~int](model string, n int, members []T) (T, error) {
	if slices.Contains(members, T(n)) {
		return T(n), nil
	}
	return 0, fieldError(model, RuleInvalidEnum, "value is not a valid enumeration member; permitted: %s", permitted(members))
}

// readStringEnum decodes a string-coded enum member.
func readStringEnum[T ~string](v gjson.Result, loc []string, errs *errorList, members []T) (T, bool) {
	s, ok := readString(v, loc, errs)
	if !ok {
		return "", false
	}
	if !slices.Contains(members, T(s)) {
		errs.add(loc, RuleInvalidEnum, "value is not a valid enumeration member; permitted: %s", permitted(members))
		return "", false
	}
	return T(s), true
}

// readIntEnum decodes an integer-coded enum member.
func readIntEnum[T ~int](v gjson.Result, loc []string, errs *errorList, members []T) (T, bool) {
	n, ok := readInt(v, loc, errs)
	if !ok {
		return 0, false
	}
	if !slices.Contains(members, T(n)) {
		errs.add(loc, RuleInvalidEnum, "value is not a valid enumeration member; permitted: %s", permitted(members))
		return 0, false
	}
	return T(n), true
}

func permitted[T any](members []T) string {
	parts := make([]string, len(members))
	for i, m := range members {
		switch v := any(m).(type) {
		case Penalisation:
			parts[i] = fmt.Sprint(int(v))
		case TimerPosition:
			parts[i] = fmt.Sprint(int(v))
		default:
			parts[i] = fmt.Sprintf("'%v'", v)
		}
	}
	return strings.Join(parts, ", ")
}

// assertNever marks a switch branch that an exhaustive switch over a closed
// enum cannot reach. Reaching it means a new member was added without
// updating the switch.
func assertNever(v any) {
	zap.L().Error("unhandled enum value",
		zap.String("type", fmt.Sprintf("%T", v)),
		zap.Any("value", v),
	)
}
