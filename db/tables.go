package db

import (
	"encoding/json"
	"time"

	"github.com/uptrace/bun"
)

// PersonRow stores a registered paddler.
type PersonRow struct {
	bun.BaseModel `bun:"table:people,alias:p"`

	RegNo     string `bun:"reg_no,pk"`
	FirstName string `bun:"first_name,notnull"`
	Surname   string `bun:"surname,notnull"`
	Male      bool   `bun:"male,notnull"`
	BirthYear int    `bun:"birth_year,notnull"`
	Club      string `bun:"club,notnull"`
}

// RacerRow stores a racer with its runs as JSON documents, in the same
// shape the timing stations exchange them.
type RacerRow struct {
	bun.BaseModel `bun:"table:racers,alias:r"`

	ID             int64           `bun:"id,pk"`
	PerfClass      string          `bun:"perf_class,notnull"`
	GenderCategory string          `bun:"gender_category,notnull"`
	BoatCategory   string          `bun:"boat_category,notnull"`
	AgeCategory    string          `bun:"age_category,notnull"`
	RegNumbers     json.RawMessage `bun:"reg_numbers,notnull,type:jsonb"`
	Runs           json.RawMessage `bun:"runs,notnull,type:jsonb"`
	OtherRuns      json.RawMessage `bun:"other_runs,notnull,type:jsonb"`
}

// RefereePostRow stores a referee post and the gates it judges.
type RefereePostRow struct {
	bun.BaseModel `bun:"table:referee_posts,alias:rp"`

	ID      int64           `bun:"id,pk"`
	GateIDs json.RawMessage `bun:"gate_ids,notnull,type:jsonb"`
}

// GateStatusUpdateRow is a gate update as received for one racer. Rows are
// only ever inserted.
type GateStatusUpdateRow struct {
	bun.BaseModel `bun:"table:gate_status_updates,alias:gu"`

	ID                int64           `bun:"id,pk,autoincrement"`
	RacerID           int64           `bun:"racer_id,notnull"`
	RunKey            string          `bun:"run_key,notnull"`
	RunID             json.RawMessage `bun:"run_id,notnull,type:jsonb"`
	CreationTimestamp time.Time       `bun:"creation_timestamp,notnull,type:timestamptz"`
	Gate              int64           `bun:"gate,notnull"`
	Result            json.RawMessage `bun:"result,type:jsonb"`
}

// TimingUpdateRow is a timing update as received for one racer. Rows are
// only ever inserted.
type TimingUpdateRow struct {
	bun.BaseModel `bun:"table:timing_updates,alias:tu"`

	ID                int64           `bun:"id,pk,autoincrement"`
	RacerID           int64           `bun:"racer_id,notnull"`
	RunKey            string          `bun:"run_key,notnull"`
	RunID             json.RawMessage `bun:"run_id,notnull,type:jsonb"`
	CreationTimestamp time.Time       `bun:"creation_timestamp,notnull,type:timestamptz"`
	Timer             int             `bun:"timer,notnull"`
	Time              time.Time       `bun:"time,notnull,type:timestamptz"`
}
