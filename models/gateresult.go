package models

import (
	"encoding/json"

	"github.com/tidwall/gjson"
)

// GateResult is the referee's verdict on one gate. A miss always carries a
// reason; a clean pass or a touch never does. The zero value is a clean pass.
type GateResult struct {
	penalisation Penalisation
	missReason   MissReason
}

// CleanPass is a gate passed without contact.
func CleanPass() GateResult { return GateResult{penalisation: PenaltyGood} }

// Touched is a gate passed with contact.
func Touched() GateResult { return GateResult{penalisation: PenaltyTouch} }

// Missed is a missed gate with its reason.
func Missed(reason MissReason) (GateResult, error) {
	return NewGateResult(PenaltyMiss, &reason)
}

// NewGateResult validates a penalisation and an optional miss reason.
func NewGateResult(p Penalisation, reason *MissReason) (GateResult, error) {
	var errs errorList
	pOK := p.Valid()
	if !pOK {
		errs.add([]string{"penalisation"}, RuleInvalidEnum, "value is not a valid enumeration member; permitted: %s", permitted(penalisations))
	}
	rOK := reason == nil || reason.Valid()
	if !rOK {
		errs.add([]string{"miss_reason"}, RuleInvalidEnum, "value is not a valid enumeration member; permitted: %s", permitted(missReasons))
	}
	if pOK && rOK {
		checkMissReason(p, reason != nil, nil, &errs)
	}
	if err := errs.err("GateResult"); err != nil {
		return GateResult{}, err
	}
	g := GateResult{penalisation: p}
	if reason != nil {
		g.missReason = *reason
	}
	return g, nil
}

func checkMissReason(p Penalisation, hasReason bool, loc []string, errs *errorList) {
	if hasReason != (p == PenaltyMiss) {
		errs.add(join(loc, "miss_reason"), RuleMissReason, "miss reason must be set when, and only when, the gate was missed")
	}
}

// Penalisation returns the judged outcome.
func (g GateResult) Penalisation() Penalisation { return g.penalisation }

// MissReason returns the reason for a missed gate; ok is false otherwise.
func (g GateResult) MissReason() (reason MissReason, ok bool) {
	return g.missReason, g.missReason != ""
}

type gateResultWire struct {
	Penalisation Penalisation `json:"penalisation"`
	MissReason   *MissReason  `json:"miss_reason"`
}

func (g GateResult) MarshalJSON() ([]byte, error) {
	w := gateResultWire{Penalisation: g.penalisation}
	if r, ok := g.MissReason(); ok {
		w.MissReason = &r
	}
	return json.Marshal(w)
}

func (g *GateResult) UnmarshalJSON(data []byte) error {
	var errs errorList
	root, ok := parseRoot(data, &errs)
	if ok {
		if v, ok := readGateResult(root, nil, &errs); ok {
			*g = v
		}
	}
	return errs.err("GateResult")
}

func readGateResult(v gjson.Result, loc []string, errs *errorList) (GateResult, bool) {
	o, ok := asObject(v, loc, errs)
	if !ok {
		return GateResult{}, false
	}
	before := errs.len()
	var g GateResult

	var pOK bool
	if raw, ok := o.required("penalisation"); ok {
		g.penalisation, pOK = readIntEnum(raw, o.at("penalisation"), errs, penalisations)
	}
	hasReason, rOK := false, true
	if raw, ok := o.optional("miss_reason"); ok {
		hasReason = true
		g.missReason, rOK = readStringEnum(raw, o.at("miss_reason"), errs, missReasons)
	}
	o.close()

	if pOK && rOK {
		checkMissReason(g.penalisation, hasReason, loc, errs)
	}
	return g, errs.len() == before
}
