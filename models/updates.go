package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// ErrNoRun is returned when an update names no run.
var ErrNoRun = errors.New("update names no run")

// Update is a status update sent by a timing station or referee post.
// Updates are created once and never modified.
type Update interface {
	RunID() RunID
	CreationTimestamp() time.Time
	apply(run *RacerRun) error
}

// StatusUpdate holds what every update carries.
type StatusUpdate struct {
	runID     RunID
	createdAt time.Time
}

func (u StatusUpdate) RunID() RunID                  { return u.runID }
func (u StatusUpdate) CreationTimestamp() time.Time { return u.createdAt }

func (u StatusUpdate) check(errs *errorList) {
	if u.runID.IsZero() {
		errs.add([]string{"run_id"}, RuleMissing, "field required")
	}
	checkTimestamp(u.createdAt, []string{"creation_timestamp"}, errs)
}

func (u *StatusUpdate) read(o *object) {
	if raw, ok := o.required("run_id"); ok {
		u.runID, _ = readRunID(raw, o.at("run_id"), o.errs)
	}
	if raw, ok := o.required("creation_timestamp"); ok {
		u.createdAt, _ = readTimestamp(raw, o.at("creation_timestamp"), o.errs)
	}
}

// GateStatusUpdate sets or clears the verdict on one gate of one run.
type GateStatusUpdate struct {
	StatusUpdate
	gate   GateID
	result *GateResult
}

// GateKey identifies what a gate update overwrites.
type GateKey struct {
	Run  RunID
	Gate GateID
}

// NewGateStatusUpdate builds a gate update. A nil result clears the verdict
// previously recorded for the gate.
func NewGateStatusUpdate(run RunID, created time.Time, gate GateID, result *GateResult) (GateStatusUpdate, error) {
	u := GateStatusUpdate{StatusUpdate: StatusUpdate{runID: run, createdAt: created}, gate: gate}
	var errs errorList
	u.check(&errs)
	if gate <= 0 {
		errs.add([]string{"gate"}, RuleNotPositive, "ensure this value is greater than 0")
	}
	if err := errs.err("GateStatusUpdate"); err != nil {
		return GateStatusUpdate{}, err
	}
	if result != nil {
		g := *result
		u.result = &g
	}
	return u, nil
}

func (u GateStatusUpdate) Gate() GateID { return u.gate }

// Result returns the new verdict; ok is false when the update clears it.
func (u GateStatusUpdate) Result() (GateResult, bool) {
	if u.result == nil {
		return GateResult{}, false
	}
	return *u.result, true
}

// Clears reports whether the update removes the gate's verdict.
func (u GateStatusUpdate) Clears() bool { return u.result == nil }

func (u GateStatusUpdate) Key() GateKey { return GateKey{Run: u.runID, Gate: u.gate} }

func (u GateStatusUpdate) apply(run *RacerRun) error {
	return run.SetGateResult(u.gate, u.result)
}

type gateStatusUpdateWire struct {
	RunID             RunID       `json:"run_id"`
	CreationTimestamp time.Time   `json:"creation_timestamp"`
	Gate              GateID      `json:"gate"`
	Result            *GateResult `json:"result"`
}

func (u GateStatusUpdate) MarshalJSON() ([]byte, error) {
	return json.Marshal(gateStatusUpdateWire{
		RunID:             u.runID,
		CreationTimestamp: u.createdAt,
		Gate:              u.gate,
		Result:            u.result,
	})
}

func (u *GateStatusUpdate) UnmarshalJSON(data []byte) error {
	var errs errorList
	root, ok := parseRoot(data, &errs)
	if ok {
		if v, ok := readGateStatusUpdate(root, &errs); ok {
			*u = v
		}
	}
	return errs.err("GateStatusUpdate")
}

func readGateStatusUpdate(v gjson.Result, errs *errorList) (GateStatusUpdate, bool) {
	o, ok := asObject(v, nil, errs)
	if !ok {
		return GateStatusUpdate{}, false
	}
	before := errs.len()
	var u GateStatusUpdate
	u.StatusUpdate.read(o)
	if raw, ok := o.required("gate"); ok {
		n, _ := readPositive(raw, o.at("gate"), errs)
		u.gate = GateID(n)
	}
	if raw, ok := o.optional("result"); ok {
		if g, ok := readGateResult(raw, o.at("result"), errs); ok {
			u.result = &g
		}
	}
	o.close()
	return u, errs.len() == before
}

// TimingUpdate records the start or the finish time of one run.
type TimingUpdate struct {
	StatusUpdate
	timer TimerPosition
	time  time.Time
}

// TimingKey identifies what a timing update overwrites. Applying updates
// with the same key more than once leaves the run as the last one set it.
type TimingKey struct {
	Run   RunID
	Timer TimerPosition
}

func NewTimingUpdate(run RunID, created time.Time, timer TimerPosition, at time.Time) (TimingUpdate, error) {
	u := TimingUpdate{StatusUpdate: StatusUpdate{runID: run, createdAt: created}, timer: timer, time: at}
	var errs errorList
	u.check(&errs)
	if !timer.Valid() {
		errs.add([]string{"timer"}, RuleInvalidEnum, "value is not a valid enumeration member; permitted: %s", permitted(timerPositions))
	}
	checkTimestamp(at, []string{"time"}, &errs)
	if err := errs.err("TimingUpdate"); err != nil {
		return TimingUpdate{}, err
	}
	return u, nil
}

func (u TimingUpdate) Timer() TimerPosition { return u.timer }
func (u TimingUpdate) Time() time.Time      { return u.time }
func (u TimingUpdate) Key() TimingKey       { return TimingKey{Run: u.runID, Timer: u.timer} }

func (u TimingUpdate) apply(run *RacerRun) error {
	return run.SetTime(u.timer, u.time)
}

type timingUpdateWire struct {
	RunID             RunID         `json:"run_id"`
	CreationTimestamp time.Time     `json:"creation_timestamp"`
	Timer             TimerPosition `json:"timer"`
	Time              time.Time     `json:"time"`
}

func (u TimingUpdate) MarshalJSON() ([]byte, error) {
	return json.Marshal(timingUpdateWire{
		RunID:             u.runID,
		CreationTimestamp: u.createdAt,
		Timer:             u.timer,
		Time:              u.time,
	})
}

func (u *TimingUpdate) UnmarshalJSON(data []byte) error {
	var errs errorList
	root, ok := parseRoot(data, &errs)
	if ok {
		if v, ok := readTimingUpdate(root, &errs); ok {
			*u = v
		}
	}
	return errs.err("TimingUpdate")
}

func readTimingUpdate(v gjson.Result, errs *errorList) (TimingUpdate, bool) {
	o, ok := asObject(v, nil, errs)
	if !ok {
		return TimingUpdate{}, false
	}
	before := errs.len()
	var u TimingUpdate
	u.StatusUpdate.read(o)
	if raw, ok := o.required("timer"); ok {
		u.timer, _ = readIntEnum(raw, o.at("timer"), errs, timerPositions)
	}
	if raw, ok := o.required("time"); ok {
		u.time, _ = readTimestamp(raw, o.at("time"), errs)
	}
	o.close()
	return u, errs.len() == before
}

// DecodeStatusUpdate decodes either kind of update, telling them apart by
// the "gate" and "timer" keys.
func DecodeStatusUpdate(data []byte) (Update, error) {
	var errs errorList
	root, ok := parseRoot(data, &errs)
	if !ok {
		return nil, errs.err("StatusUpdate")
	}
	if !root.IsObject() {
		errs.add(nil, RuleInvalidType, "value is not a valid object")
		return nil, errs.err("StatusUpdate")
	}
	isGate, isTiming := root.Get("gate").Exists(), root.Get("timer").Exists()
	switch {
	case isGate && !isTiming:
		u, _ := readGateStatusUpdate(root, &errs)
		if err := errs.err("GateStatusUpdate"); err != nil {
			return nil, err
		}
		return u, nil
	case isTiming && !isGate:
		u, _ := readTimingUpdate(root, &errs)
		if err := errs.err("TimingUpdate"); err != nil {
			return nil, err
		}
		return u, nil
	}
	errs.add(nil, RuleExactlyOneOf, "exactly one of gate, timer must be specified")
	return nil, errs.err("StatusUpdate")
}

// Apply folds an update into the racer's run it names. An extra run seen
// for the first time starts empty. The touched run and the extra-run map
// are copied before writing, so earlier copies of r never change.
func (c RaceConfig) Apply(r *Racer, u Update) error {
	id := u.RunID()
	if n, ok := id.AssignedNumber(); ok {
		run := r.Runs[n-1]
		run.Penalisations = slices.Clone(run.Penalisations)
		if err := u.apply(&run); err != nil {
			return fmt.Errorf("racer %d %s: %w", r.ID, id, err)
		}
		r.Runs[n-1] = run
	} else if name, ok := id.OtherID(); ok {
		run, found := r.OtherRuns[name]
		if !found {
			run = c.NewRacerRun()
		} else {
			run.Penalisations = slices.Clone(run.Penalisations)
		}
		if err := u.apply(&run); err != nil {
			return fmt.Errorf("racer %d %s: %w", r.ID, id, err)
		}
		others := maps.Clone(r.OtherRuns)
		if others == nil {
			others = map[string]RacerRun{}
		}
		others[name] = run
		r.OtherRuns = others
	} else {
		return ErrNoRun
	}
	zap.L().Debug("applied status update",
		zap.Int64("racer", int64(r.ID)),
		zap.Stringer("run", id),
		zap.Time("created", u.CreationTimestamp()),
	)
	return nil
}
