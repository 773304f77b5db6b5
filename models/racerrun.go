package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/tidwall/gjson"
)

var (
	// ErrUnknownGate is returned when a gate number falls outside the course.
	ErrUnknownGate = errors.New("gate is not on the course")
	// ErrUnknownTimer is returned for a timer position that is neither start
	// nor finish.
	ErrUnknownTimer = errors.New("unknown timer position")
)

// RacerRun is a single run down the course: its start and finish times and
// the verdict on every gate. Slot i of Penalisations holds gate i+1; a nil
// slot has no verdict yet.
type RacerRun struct {
	StartTime     *time.Time    `json:"start_time"`
	FinishTime    *time.Time    `json:"finish_time"`
	Penalisations []*GateResult `json:"penalisations"`
	Comment       *string       `json:"comment"`
}

// CleanTime is the elapsed time between start and finish, without
// penalties. ok is false until both times are known. A finish before the
// start yields a negative duration.
func (r RacerRun) CleanTime() (d time.Duration, ok bool) {
	if r.StartTime == nil || r.FinishTime == nil {
		return 0, false
	}
	return r.FinishTime.Sub(*r.StartTime), true
}

// TotalPenalisations sums the penalty seconds over all judged gates.
func (r RacerRun) TotalPenalisations() int {
	t := 0
	for _, g := range r.Penalisations {
		if g != nil {
			t += g.Penalisation().Seconds()
		}
	}
	return t
}

// FullTime is the clean time plus penalties.
func (r RacerRun) FullTime() (time.Duration, bool) {
	ct, ok := r.CleanTime()
	if !ok {
		return 0, false
	}
	return ct + time.Duration(r.TotalPenalisations())*time.Second, true
}

// SetGateResult records the verdict for a gate; nil clears it.
func (r *RacerRun) SetGateResult(gate GateID, result *GateResult) error {
	if gate < 1 || int(gate) > len(r.Penalisations) {
		return fmt.Errorf("gate %d of %d: %w", gate, len(r.Penalisations), ErrUnknownGate)
	}
	if result != nil {
		g := *result
		result = &g
	}
	r.Penalisations[gate-1] = result
	return nil
}

// SetTime records the start or finish time.
func (r *RacerRun) SetTime(pos TimerPosition, t time.Time) error {
	switch pos {
	case TimerStart:
		r.StartTime = &t
	case TimerFinish:
		r.FinishTime = &t
	default:
		assertNever(pos)
		return fmt.Errorf("timer %d: %w", int(pos), ErrUnknownTimer)
	}
	return nil
}

// Validate checks a run built in code against a course of gateCount gates.
func (r RacerRun) Validate(gateCount int) error {
	var errs errorList
	r.check(gateCount, nil, &errs)
	return errs.err("RacerRun")
}

func (r RacerRun) check(gateCount int, loc []string, errs *errorList) {
	if r.StartTime != nil {
		checkTimestamp(*r.StartTime, join(loc, "start_time"), errs)
	}
	if r.FinishTime != nil {
		checkTimestamp(*r.FinishTime, join(loc, "finish_time"), errs)
	}
	if len(r.Penalisations) != gateCount {
		errs.add(join(loc, "penalisations"), RuleInvalidLength,
			"ensure this value has exactly %d items, got %d", gateCount, len(r.Penalisations))
	}
}

func readRacerRun(v gjson.Result, loc []string, errs *errorList, gateCount int) (RacerRun, bool) {
	o, ok := asObject(v, loc, errs)
	if !ok {
		return RacerRun{}, false
	}
	before := errs.len()
	var r RacerRun

	if raw, ok := o.optional("start_time"); ok {
		if t, ok := readTimestamp(raw, o.at("start_time"), errs); ok {
			r.StartTime = &t
		}
	}
	if raw, ok := o.optional("finish_time"); ok {
		if t, ok := readTimestamp(raw, o.at("finish_time"), errs); ok {
			r.FinishTime = &t
		}
	}
	if raw, ok := o.optional("penalisations"); ok {
		r.Penalisations = readPenalisations(raw, o.at("penalisations"), errs, gateCount)
	} else {
		r.Penalisations = make([]*GateResult, gateCount)
	}
	if raw, ok := o.optional("comment"); ok {
		if s, ok := readString(raw, o.at("comment"), errs); ok {
			r.Comment = &s
		}
	}
	o.close()
	return r, errs.len() == before
}

func readPenalisations(v gjson.Result, loc []string, errs *errorList, gateCount int) []*GateResult {
	items, ok := readArray(v, loc, errs)
	if !ok {
		return nil
	}
	if len(items) != gateCount {
		errs.add(loc, RuleInvalidLength, "ensure this value has exactly %d items, got %d", gateCount, len(items))
		return nil
	}
	out := make([]*GateResult, len(items))
	for i, item := range items {
		if item.Type == gjson.Null {
			continue
		}
		if g, ok := readGateResult(item, join(loc, idx(i)), errs); ok {
			out[i] = &g
		}
	}
	return out
}
