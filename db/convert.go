package db

import (
	"encoding/json"
	"fmt"

	"github.com/padraicbc/kayaclock/models"
)

// Rows hold JSON in the wire shape, so reading one back goes through the
// same validating decoders as any other payload.

func NewPersonRow(p models.Person) *PersonRow {
	return &PersonRow{
		RegNo:     p.RegNo,
		FirstName: p.FirstName,
		Surname:   p.Surname,
		Male:      p.Male,
		BirthYear: p.BirthYear,
		Club:      p.Club,
	}
}

func (row *PersonRow) Person() models.Person {
	return models.Person{
		RegNo:     row.RegNo,
		FirstName: row.FirstName,
		Surname:   row.Surname,
		Male:      row.Male,
		BirthYear: row.BirthYear,
		Club:      row.Club,
	}
}

func NewRacerRow(r models.Racer) (*RacerRow, error) {
	regs, err := json.Marshal(r.RegNumbers)
	if err != nil {
		return nil, fmt.Errorf("encoding reg numbers of racer %d: %w", r.ID, err)
	}
	runs, err := json.Marshal(r.Runs)
	if err != nil {
		return nil, fmt.Errorf("encoding runs of racer %d: %w", r.ID, err)
	}
	other := r.OtherRuns
	if other == nil {
		other = map[string]models.RacerRun{}
	}
	otherRuns, err := json.Marshal(other)
	if err != nil {
		return nil, fmt.Errorf("encoding other runs of racer %d: %w", r.ID, err)
	}
	return &RacerRow{
		ID:             int64(r.ID),
		PerfClass:      string(r.PerfClass),
		GenderCategory: string(r.GenderCategory),
		BoatCategory:   string(r.BoatCategory),
		AgeCategory:    string(r.AgeCategory),
		RegNumbers:     regs,
		Runs:           runs,
		OtherRuns:      otherRuns,
	}, nil
}

// Racer rebuilds and validates the stored racer against rc.
func (row *RacerRow) Racer(rc models.RaceConfig) (models.Racer, error) {
	payload, err := json.Marshal(map[string]any{
		"id":              row.ID,
		"perf_class":      row.PerfClass,
		"gender_category": row.GenderCategory,
		"boat_category":   row.BoatCategory,
		"age_category":    row.AgeCategory,
		"reg_numbers":     row.RegNumbers,
		"runs":            row.Runs,
		"other_runs":      row.OtherRuns,
	})
	if err != nil {
		return models.Racer{}, fmt.Errorf("assembling racer %d: %w", row.ID, err)
	}
	return rc.DecodeRacer(payload)
}

func NewRefereePostRow(p models.RefereePost) (*RefereePostRow, error) {
	gates, err := json.Marshal(p.GateIDs())
	if err != nil {
		return nil, fmt.Errorf("encoding gates of post %d: %w", p.ID(), err)
	}
	return &RefereePostRow{ID: int64(p.ID()), GateIDs: gates}, nil
}

func (row *RefereePostRow) RefereePost() (models.RefereePost, error) {
	payload, err := json.Marshal(map[string]any{
		"id":       row.ID,
		"gate_ids": row.GateIDs,
	})
	if err != nil {
		return models.RefereePost{}, fmt.Errorf("assembling post %d: %w", row.ID, err)
	}
	var p models.RefereePost
	if err := json.Unmarshal(payload, &p); err != nil {
		return models.RefereePost{}, err
	}
	return p, nil
}

func NewGateStatusUpdateRow(racer models.RacerID, u models.GateStatusUpdate) (*GateStatusUpdateRow, error) {
	runID, err := json.Marshal(u.RunID())
	if err != nil {
		return nil, fmt.Errorf("encoding run id: %w", err)
	}
	row := &GateStatusUpdateRow{
		RacerID:           int64(racer),
		RunKey:            u.RunID().String(),
		RunID:             runID,
		CreationTimestamp: u.CreationTimestamp(),
		Gate:              int64(u.Gate()),
	}
	if res, ok := u.Result(); ok {
		if row.Result, err = json.Marshal(res); err != nil {
			return nil, fmt.Errorf("encoding gate result: %w", err)
		}
	}
	return row, nil
}

func (row *GateStatusUpdateRow) Update() (models.GateStatusUpdate, error) {
	payload, err := json.Marshal(map[string]any{
		"run_id":             row.RunID,
		"creation_timestamp": row.CreationTimestamp,
		"gate":               row.Gate,
		"result":             row.Result,
	})
	if err != nil {
		return models.GateStatusUpdate{}, fmt.Errorf("assembling gate update %d: %w", row.ID, err)
	}
	var u models.GateStatusUpdate
	if err := json.Unmarshal(payload, &u); err != nil {
		return models.GateStatusUpdate{}, err
	}
	return u, nil
}

func NewTimingUpdateRow(racer models.RacerID, u models.TimingUpdate) (*TimingUpdateRow, error) {
	runID, err := json.Marshal(u.RunID())
	if err != nil {
		return nil, fmt.Errorf("encoding run id: %w", err)
	}
	return &TimingUpdateRow{
		RacerID:           int64(racer),
		RunKey:            u.RunID().String(),
		RunID:             runID,
		CreationTimestamp: u.CreationTimestamp(),
		Timer:             int(u.Timer()),
		Time:              u.Time(),
	}, nil
}

func (row *TimingUpdateRow) Update() (models.TimingUpdate, error) {
	payload, err := json.Marshal(map[string]any{
		"run_id":             row.RunID,
		"creation_timestamp": row.CreationTimestamp,
		"timer":              row.Timer,
		"time":               row.Time,
	})
	if err != nil {
		return models.TimingUpdate{}, fmt.Errorf("assembling timing update %d: %w", row.ID, err)
	}
	var u models.TimingUpdate
	if err := json.Unmarshal(payload, &u); err != nil {
		return models.TimingUpdate{}, err
	}
	return u, nil
}
