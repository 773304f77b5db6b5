package models

import (
	"sort"
	"time"

	"github.com/tidwall/gjson"
)

// Racer is a boat crew entered in the race, with its two canonical runs and
// any extra runs (reruns, training runs) keyed by name.
type Racer struct {
	ID             RacerID             `json:"id"`
	PerfClass      PerformanceRating   `json:"perf_class"`
	GenderCategory GenderCategory      `json:"gender_category"`
	BoatCategory   BoatCategory        `json:"boat_category"`
	AgeCategory    AgeCategory         `json:"age_category"`
	RegNumbers     RegNumbers          `json:"reg_numbers"`
	Runs           [2]RacerRun         `json:"runs"`
	OtherRuns      map[string]RacerRun `json:"other_runs"`
}

// FinalTime is the better full time of the two canonical runs. Extra runs
// never count towards it. ok is false while neither run has a full time.
func (r Racer) FinalTime() (best time.Duration, ok bool) {
	for _, run := range r.Runs {
		t, has := run.FullTime()
		if has && (!ok || t < best) {
			best, ok = t, true
		}
	}
	return best, ok
}

// Run looks up a run by id.
func (r Racer) Run(id RunID) (RacerRun, bool) {
	if n, ok := id.AssignedNumber(); ok {
		return r.Runs[n-1], true
	}
	if name, ok := id.OtherID(); ok {
		run, found := r.OtherRuns[name]
		return run, found
	}
	return RacerRun{}, false
}

// Validate checks a racer built in code against a course of gateCount gates.
func (r Racer) Validate(gateCount int) error {
	var errs errorList

	idOK := r.ID > 0
	if !idOK {
		errs.add([]string{"id"}, RuleNotPositive, "ensure this value is greater than 0")
	}
	if !r.PerfClass.Valid() {
		errs.add([]string{"perf_class"}, RuleInvalidEnum, "value is not a valid enumeration member; permitted: %s", permitted(performanceRatings))
	}
	if !r.GenderCategory.Valid() {
		errs.add([]string{"gender_category"}, RuleInvalidEnum, "value is not a valid enumeration member; permitted: %s", permitted(genderCategories))
	}
	boatOK := r.BoatCategory.Valid()
	if !boatOK {
		errs.add([]string{"boat_category"}, RuleInvalidEnum, "value is not a valid enumeration member; permitted: %s", permitted(boatCategories))
	}
	if !r.AgeCategory.Valid() {
		errs.add([]string{"age_category"}, RuleInvalidEnum, "value is not a valid enumeration member; permitted: %s", permitted(ageCategories))
	}
	regsOK := r.RegNumbers.Len() > 0
	if !regsOK {
		errs.add([]string{"reg_numbers"}, RuleMissing, "field required")
	}
	for i, run := range r.Runs {
		run.check(gateCount, []string{"runs", idx(i)}, &errs)
	}
	for _, name := range sortedRunNames(r.OtherRuns) {
		r.OtherRuns[name].check(gateCount, []string{"other_runs", name}, &errs)
	}

	if boatOK && regsOK {
		checkRegNumbers(r.BoatCategory, r.RegNumbers, nil, &errs)
	}
	return errs.err("Racer")
}

func checkRegNumbers(boat BoatCategory, regs RegNumbers, loc []string, errs *errorList) {
	if want := boat.Seats(); regs.Len() != want {
		errs.add(join(loc, "reg_numbers"), RuleInvalidLength,
			"wrong tuple length %d, expected %d for %s", regs.Len(), want, boat)
	}
}

func sortedRunNames(runs map[string]RacerRun) []string {
	names := make([]string, 0, len(runs))
	for name := range runs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func readRacer(v gjson.Result, loc []string, errs *errorList, gateCount int) (Racer, bool) {
	o, ok := asObject(v, loc, errs)
	if !ok {
		return Racer{}, false
	}
	before := errs.len()
	var r Racer

	if raw, ok := o.required("id"); ok {
		n, _ := readPositive(raw, o.at("id"), errs)
		r.ID = RacerID(n)
	}
	if raw, ok := o.required("perf_class"); ok {
		r.PerfClass, _ = readStringEnum(raw, o.at("perf_class"), errs, performanceRatings)
	}
	if raw, ok := o.required("gender_category"); ok {
		r.GenderCategory, _ = readStringEnum(raw, o.at("gender_category"), errs, genderCategories)
	}
	var boatOK bool
	if raw, ok := o.required("boat_category"); ok {
		r.BoatCategory, boatOK = readStringEnum(raw, o.at("boat_category"), errs, boatCategories)
	}
	if raw, ok := o.required("age_category"); ok {
		r.AgeCategory, _ = readStringEnum(raw, o.at("age_category"), errs, ageCategories)
	}
	var regsOK bool
	if raw, ok := o.required("reg_numbers"); ok {
		r.RegNumbers, regsOK = readRegNumbers(raw, o.at("reg_numbers"), errs)
	}

	if raw, ok := o.optional("runs"); ok {
		if items, ok := readArray(raw, o.at("runs"), errs); ok {
			if len(items) != len(r.Runs) {
				errs.add(o.at("runs"), RuleInvalidLength, "wrong tuple length %d, expected %d", len(items), len(r.Runs))
			} else {
				for i, item := range items {
					r.Runs[i], _ = readRacerRun(item, join(o.at("runs"), idx(i)), errs, gateCount)
				}
			}
		}
	} else {
		for i := range r.Runs {
			r.Runs[i] = RacerRun{Penalisations: make([]*GateResult, gateCount)}
		}
	}

	r.OtherRuns = map[string]RacerRun{}
	if raw, ok := o.optional("other_runs"); ok {
		if other, ok := asObject(raw, o.at("other_runs"), errs); ok {
			names := make([]string, 0, len(other.fields))
			for name := range other.fields {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				if run, ok := readRacerRun(other.fields[name], other.at(name), errs, gateCount); ok {
					r.OtherRuns[name] = run
				}
			}
		}
	}
	o.close()

	if boatOK && regsOK {
		checkRegNumbers(r.BoatCategory, r.RegNumbers, loc, errs)
	}
	return r, errs.len() == before
}
