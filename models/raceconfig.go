package models

import (
	"encoding/json"
	"slices"

	"github.com/tidwall/gjson"
)

// RaceConfig carries the course layout every run is measured against.
// Runs and racers are built and decoded through it so the gate count is
// always explicit.
type RaceConfig struct {
	GateCount int
}

func NewRaceConfig(gateCount int) (RaceConfig, error) {
	if gateCount <= 0 {
		return RaceConfig{}, fieldError("RaceConfig", RuleNotPositive, "gate count must be greater than 0, got %d", gateCount)
	}
	return RaceConfig{GateCount: gateCount}, nil
}

// NewRacerRun returns a run with no times and no gate verdicts.
func (c RaceConfig) NewRacerRun() RacerRun {
	return RacerRun{Penalisations: make([]*GateResult, c.GateCount)}
}

// NewRacer validates r, first giving any run without a penalisation list
// an empty one and an absent OtherRuns an empty map.
func (c RaceConfig) NewRacer(r Racer) (Racer, error) {
	for i := range r.Runs {
		if r.Runs[i].Penalisations == nil {
			r.Runs[i].Penalisations = make([]*GateResult, c.GateCount)
		}
	}
	if r.OtherRuns == nil {
		r.OtherRuns = map[string]RacerRun{}
	}
	if err := r.Validate(c.GateCount); err != nil {
		return Racer{}, err
	}
	return r, nil
}

// DecodeRacerRun validates a run payload.
func (c RaceConfig) DecodeRacerRun(data []byte) (RacerRun, error) {
	var errs errorList
	var run RacerRun
	if root, ok := parseRoot(data, &errs); ok {
		run, _ = readRacerRun(root, nil, &errs, c.GateCount)
	}
	if err := errs.err("RacerRun"); err != nil {
		return RacerRun{}, err
	}
	return run, nil
}

// DecodeRacer validates a racer payload, including every run it carries.
func (c RaceConfig) DecodeRacer(data []byte) (Racer, error) {
	var errs errorList
	var r Racer
	if root, ok := parseRoot(data, &errs); ok {
		r, _ = readRacer(root, nil, &errs, c.GateCount)
	}
	if err := errs.err("Racer"); err != nil {
		return Racer{}, err
	}
	return r, nil
}

// RefereePost is a referee station and the gates it judges.
type RefereePost struct {
	id      RefereePostID
	gateIDs []GateID
}

func NewRefereePost(id RefereePostID, gates ...GateID) (RefereePost, error) {
	var errs errorList
	if id <= 0 {
		errs.add([]string{"id"}, RuleNotPositive, "ensure this value is greater than 0")
	}
	for i, g := range gates {
		if g <= 0 {
			errs.add([]string{"gate_ids", idx(i)}, RuleNotPositive, "ensure this value is greater than 0")
		}
	}
	if err := errs.err("RefereePost"); err != nil {
		return RefereePost{}, err
	}
	return RefereePost{id: id, gateIDs: slices.Clone(gates)}, nil
}

func (p RefereePost) ID() RefereePostID { return p.id }

// GateIDs returns the judged gates in course order.
func (p RefereePost) GateIDs() []GateID { return slices.Clone(p.gateIDs) }

// Judges reports whether the post is responsible for gate.
func (p RefereePost) Judges(gate GateID) bool { return slices.Contains(p.gateIDs, gate) }

type refereePostWire struct {
	ID      RefereePostID `json:"id"`
	GateIDs []GateID      `json:"gate_ids"`
}

func (p RefereePost) MarshalJSON() ([]byte, error) {
	gates := p.gateIDs
	if gates == nil {
		gates = []GateID{}
	}
	return json.Marshal(refereePostWire{ID: p.id, GateIDs: gates})
}

func (p *RefereePost) UnmarshalJSON(data []byte) error {
	var errs errorList
	root, ok := parseRoot(data, &errs)
	if ok {
		if v, ok := readRefereePost(root, nil, &errs); ok {
			*p = v
		}
	}
	return errs.err("RefereePost")
}

func readRefereePost(v gjson.Result, loc []string, errs *errorList) (RefereePost, bool) {
	o, ok := asObject(v, loc, errs)
	if !ok {
		return RefereePost{}, false
	}
	before := errs.len()
	var p RefereePost
	if raw, ok := o.required("id"); ok {
		n, _ := readPositive(raw, o.at("id"), errs)
		p.id = RefereePostID(n)
	}
	if raw, ok := o.required("gate_ids"); ok {
		if items, ok := readArray(raw, o.at("gate_ids"), errs); ok {
			p.gateIDs = make([]GateID, 0, len(items))
			for i, item := range items {
				if n, ok := readPositive(item, join(o.at("gate_ids"), idx(i)), errs); ok {
					p.gateIDs = append(p.gateIDs, GateID(n))
				}
			}
		}
	}
	o.close()
	return p, errs.len() == before
}
