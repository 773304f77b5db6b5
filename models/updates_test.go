package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

var created = time.Date(2024, 6, 1, 10, 15, 0, 0, time.UTC)

func mustRun(t *testing.T, n int) RunID {
	t.Helper()
	id, err := AssignedRun(n)
	if err != nil {
		t.Fatalf("assigned run %d: %v", n, err)
	}
	return id
}

func TestGateStatusUpdateTimestamp(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    []failure
	}{
		{
			name:    "utc offset",
			payload: `{"run_id": {"assigned_number": 1}, "creation_timestamp": "1970-01-01T00:00:00+00:00", "gate": 1}`,
		},
		{
			name:    "zulu",
			payload: `{"run_id": {"other_id": "training"}, "creation_timestamp": "1970-01-01T00:00:00Z", "gate": 3, "result": {"penalisation": 2}}`,
		},
		{
			name:    "no timezone",
			payload: `{"run_id": {"assigned_number": 1}, "creation_timestamp": "1970-01-01T00:00:00", "gate": 1}`,
			want:    []failure{{"creation_timestamp", RuleMissingTZ}},
		},
		{
			name:    "not a timestamp",
			payload: `{"run_id": {"assigned_number": 1}, "creation_timestamp": 0, "gate": 1}`,
			want:    []failure{{"creation_timestamp", RuleInvalidType}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var u GateStatusUpdate
			err := json.Unmarshal([]byte(tt.payload), &u)
			if tt.want != nil {
				assertFailures(t, err, tt.want...)
				return
			}
			if err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if !u.CreationTimestamp().Equal(time.Unix(0, 0)) {
				t.Fatalf("creation timestamp = %v", u.CreationTimestamp())
			}
		})
	}
}

func TestGateStatusUpdateInvalid(t *testing.T) {
	var u GateStatusUpdate
	err := json.Unmarshal([]byte(`{
		"run_id": {"assigned_number": 1, "other_id": "x"},
		"gate": 0,
		"result": {"penalisation": 50},
		"timer": 0
	}`), &u)
	assertFailures(t, err,
		failure{"run_id", RuleExactlyOneOf},
		failure{"creation_timestamp", RuleMissing},
		failure{"gate", RuleNotPositive},
		failure{"result.miss_reason", RuleMissReason},
		failure{"timer", RuleUnknownField},
	)
}

func TestTimingUpdateJSON(t *testing.T) {
	var u TimingUpdate
	err := json.Unmarshal([]byte(`{
		"run_id": {"assigned_number": 2},
		"creation_timestamp": "2024-06-01T12:15:00+02:00",
		"timer": 1,
		"time": "2024-06-01T12:14:58.31+02:00"
	}`), &u)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if u.Timer() != TimerFinish || u.RunID() != mustRun(t, 2) {
		t.Fatalf("unexpected update %+v", u)
	}
	if !u.CreationTimestamp().Equal(created) {
		t.Fatalf("creation timestamp = %v", u.CreationTimestamp())
	}

	err = json.Unmarshal([]byte(`{
		"run_id": {"assigned_number": 2},
		"creation_timestamp": "2024-06-01T12:15:00+02:00",
		"timer": 2,
		"time": "2024-06-01 12:14"
	}`), &u)
	assertFailures(t, err,
		failure{"timer", RuleInvalidEnum},
		failure{"time", RuleMissingTZ},
	)
}

func TestNewUpdatesValidate(t *testing.T) {
	run := mustRun(t, 1)
	if _, err := NewGateStatusUpdate(run, created, 4, nil); err != nil {
		t.Fatalf("new gate update: %v", err)
	}
	_, err := NewGateStatusUpdate(RunID{}, time.Time{}, 0, nil)
	assertFailures(t, err,
		failure{"run_id", RuleMissing},
		failure{"creation_timestamp", RuleMissing},
		failure{"gate", RuleNotPositive},
	)

	if _, err := NewTimingUpdate(run, created, TimerStart, created); err != nil {
		t.Fatalf("new timing update: %v", err)
	}
	_, err = NewTimingUpdate(run, created, TimerPosition(3), time.Time{})
	assertFailures(t, err,
		failure{"timer", RuleInvalidEnum},
		failure{"time", RuleMissing},
	)
}

func TestDecodeStatusUpdate(t *testing.T) {
	gate, err := DecodeStatusUpdate([]byte(`{"run_id": {"assigned_number": 1}, "creation_timestamp": "2024-06-01T10:15:00Z", "gate": 2, "result": null}`))
	if err != nil {
		t.Fatalf("decode gate update: %v", err)
	}
	gu, ok := gate.(GateStatusUpdate)
	if !ok || gu.Gate() != 2 || !gu.Clears() {
		t.Fatalf("unexpected gate update %#v", gate)
	}

	timing, err := DecodeStatusUpdate([]byte(`{"run_id": {"other_id": "r"}, "creation_timestamp": "2024-06-01T10:15:00Z", "timer": 0, "time": "2024-06-01T10:14:00Z"}`))
	if err != nil {
		t.Fatalf("decode timing update: %v", err)
	}
	if tu, ok := timing.(TimingUpdate); !ok || tu.Timer() != TimerStart {
		t.Fatalf("unexpected timing update %#v", timing)
	}

	for _, payload := range []string{
		`{"run_id": {"assigned_number": 1}, "creation_timestamp": "2024-06-01T10:15:00Z"}`,
		`{"run_id": {"assigned_number": 1}, "creation_timestamp": "2024-06-01T10:15:00Z", "gate": 1, "timer": 0}`,
	} {
		_, err := DecodeStatusUpdate([]byte(payload))
		assertFailures(t, err, failure{"", RuleExactlyOneOf})
	}

	_, err = DecodeStatusUpdate([]byte(`[1, 2]`))
	assertFailures(t, err, failure{"", RuleInvalidType})

	_, err = DecodeStatusUpdate([]byte(`{"gate": 1`))
	assertFailures(t, err, failure{"", RuleInvalidJSON})

	_, err = DecodeStatusUpdate([]byte(`{"run_id": {"assigned_number": 1}, "creation_timestamp": "2024-06-01T10:15:00Z", "gate": "1"}`))
	assertFailures(t, err, failure{"gate", RuleInvalidType})
}

func TestApplyCanonicalRun(t *testing.T) {
	rc := testRace(t)
	r := Racer{ID: 5, Runs: [2]RacerRun{rc.NewRacerRun(), rc.NewRacerRun()}}
	run := mustRun(t, 2)
	start := created
	finish := created.Add(80 * time.Second)

	miss := mustMiss(MissPushedGate)
	updates := []Update{
		mustTiming(t, run, TimerStart, start),
		mustTiming(t, run, TimerFinish, finish),
		mustGate(t, run, 3, &miss),
		mustGate(t, run, 4, ptr(Touched())),
		mustGate(t, run, 3, nil),
	}
	for _, u := range updates {
		if err := rc.Apply(&r, u); err != nil {
			t.Fatalf("apply: %v", err)
		}
	}

	if _, ok := r.Runs[0].CleanTime(); ok {
		t.Fatal("run 1 must be untouched")
	}
	full, ok := r.Runs[1].FullTime()
	if !ok || full != 82*time.Second {
		t.Fatalf("full time = %v, %v; want 82s", full, ok)
	}
	if final, _ := r.FinalTime(); final != full {
		t.Fatalf("final time = %v, want %v", final, full)
	}
}

func TestApplyOtherRun(t *testing.T) {
	rc := testRace(t)
	r := Racer{ID: 5, Runs: [2]RacerRun{rc.NewRacerRun(), rc.NewRacerRun()}}
	rerun, _ := OtherRun("rerun")

	if err := rc.Apply(&r, mustGate(t, rerun, 1, ptr(Touched()))); err != nil {
		t.Fatalf("apply: %v", err)
	}
	snapshot := r.OtherRuns["rerun"]
	if err := rc.Apply(&r, mustGate(t, rerun, 2, ptr(Touched()))); err != nil {
		t.Fatalf("apply: %v", err)
	}

	if got := r.OtherRuns["rerun"].TotalPenalisations(); got != 4 {
		t.Fatalf("rerun penalisations = %d, want 4", got)
	}
	if got := snapshot.TotalPenalisations(); got != 2 {
		t.Fatalf("earlier copy changed: penalisations = %d, want 2", got)
	}
	if len(r.OtherRuns["rerun"].Penalisations) != testGates {
		t.Fatal("extra run must cover the whole course")
	}
	if r.Runs[0].TotalPenalisations() != 0 || r.Runs[1].TotalPenalisations() != 0 {
		t.Fatal("canonical runs must be untouched")
	}
}

func TestApplyLeavesEarlierCopiesAlone(t *testing.T) {
	rc := testRace(t)
	r := Racer{ID: 5, Runs: [2]RacerRun{rc.NewRacerRun(), rc.NewRacerRun()}}
	rerun, _ := OtherRun("rerun")
	if err := rc.Apply(&r, mustGate(t, rerun, 1, ptr(Touched()))); err != nil {
		t.Fatalf("apply: %v", err)
	}

	snapshot := r
	updates := []Update{
		mustGate(t, mustRun(t, 1), 1, ptr(Touched())),
		mustTiming(t, mustRun(t, 2), TimerStart, created),
		mustGate(t, rerun, 2, ptr(Touched())),
		mustGate(t, mustRun(t, 1), 3, ptr(Touched())),
	}
	for _, u := range updates {
		if err := rc.Apply(&r, u); err != nil {
			t.Fatalf("apply: %v", err)
		}
	}
	second, _ := OtherRun("second")
	if err := rc.Apply(&r, mustGate(t, second, 1, nil)); err != nil {
		t.Fatalf("apply: %v", err)
	}

	if snapshot.Runs[0].Penalisations[0] != nil || snapshot.Runs[0].TotalPenalisations() != 0 {
		t.Fatal("earlier copy saw a canonical gate update")
	}
	if snapshot.Runs[1].StartTime != nil {
		t.Fatal("earlier copy saw a timing update")
	}
	if got := snapshot.OtherRuns["rerun"].TotalPenalisations(); got != 2 {
		t.Fatalf("earlier copy rerun penalisations = %d, want 2", got)
	}
	if _, ok := snapshot.OtherRuns["second"]; ok {
		t.Fatal("earlier copy saw a new extra run")
	}
	if r.Runs[0].TotalPenalisations() != 4 || r.OtherRuns["rerun"].TotalPenalisations() != 4 {
		t.Fatal("updates were not applied to the racer")
	}
}

func TestApplyFailureLeavesRunUnchanged(t *testing.T) {
	rc := testRace(t)
	r := Racer{ID: 5, Runs: [2]RacerRun{rc.NewRacerRun(), rc.NewRacerRun()}}
	r.Runs[0].Penalisations = r.Runs[0].Penalisations[:3]
	if err := rc.Apply(&r, mustGate(t, mustRun(t, 1), 5, ptr(Touched()))); err == nil {
		t.Fatal("expected error for a gate past the end of the run")
	}
	if len(r.Runs[0].Penalisations) != 3 || r.Runs[0].TotalPenalisations() != 0 {
		t.Fatal("failed update changed the run")
	}
}

func TestApplyErrors(t *testing.T) {
	rc := testRace(t)
	r := Racer{ID: 5, Runs: [2]RacerRun{rc.NewRacerRun(), rc.NewRacerRun()}}

	err := rc.Apply(&r, mustGate(t, mustRun(t, 1), GateID(testGates+1), nil))
	if !errors.Is(err, ErrUnknownGate) {
		t.Fatalf("expected ErrUnknownGate, got %v", err)
	}

	err = rc.Apply(&r, GateStatusUpdate{gate: 1})
	if !errors.Is(err, ErrNoRun) {
		t.Fatalf("expected ErrNoRun, got %v", err)
	}
}

func TestUpdateKeys(t *testing.T) {
	run := mustRun(t, 1)
	a := mustGate(t, run, 7, ptr(Touched()))
	b := mustGate(t, run, 7, nil)
	if a.Key() != b.Key() {
		t.Fatal("updates to the same gate must share a key")
	}
	if a.Key() == mustGate(t, mustRun(t, 2), 7, nil).Key() {
		t.Fatal("updates to different runs must not share a key")
	}

	start := mustTiming(t, run, TimerStart, created)
	if start.Key() == mustTiming(t, run, TimerFinish, created).Key() {
		t.Fatal("start and finish must not share a key")
	}
	if start.Key() != mustTiming(t, run, TimerStart, created.Add(time.Second)).Key() {
		t.Fatal("repeated start times must share a key")
	}
}

func TestUpdateRoundTrip(t *testing.T) {
	rerun, _ := OtherRun("rerun")
	miss := mustMiss(MissOneOfCrew)
	for _, u := range []any{
		mustGate(t, rerun, 9, &miss),
		mustGate(t, mustRun(t, 1), 1, nil),
		mustTiming(t, mustRun(t, 2), TimerFinish, created.Add(time.Minute+250*time.Millisecond)),
	} {
		encoded, err := json.Marshal(u)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		decoded, err := DecodeStatusUpdate(encoded)
		if err != nil {
			t.Fatalf("decode %s: %v", encoded, err)
		}
		reencoded, err := json.Marshal(decoded)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		if !bytes.Equal(encoded, reencoded) {
			t.Fatalf("round trip changed update:\n%s\n%s", encoded, reencoded)
		}
	}
}

func mustGate(t *testing.T, run RunID, gate GateID, result *GateResult) GateStatusUpdate {
	t.Helper()
	u, err := NewGateStatusUpdate(run, created, gate, result)
	if err != nil {
		t.Fatalf("new gate update: %v", err)
	}
	return u
}

func mustTiming(t *testing.T, run RunID, timer TimerPosition, at time.Time) TimingUpdate {
	t.Helper()
	u, err := NewTimingUpdate(run, created, timer, at)
	if err != nil {
		t.Fatalf("new timing update: %v", err)
	}
	return u
}
