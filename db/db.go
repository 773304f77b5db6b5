package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"
	"go.uber.org/zap"

	"github.com/padraicbc/kayaclock/config"
)

// tables lists the stored models in dependency order.
var tables = []interface{}{
	(*PersonRow)(nil),
	(*RacerRow)(nil),
	(*RefereePostRow)(nil),
	(*GateStatusUpdateRow)(nil),
	(*TimingUpdateRow)(nil),
}

// Open returns a PostgreSQL handle for cfg without connecting.
func Open(cfg *config.Config) *bun.DB {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.PostgresDSN())))
	db := bun.NewDB(sqldb, pgdialect.New())

	if cfg.Debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}
	return db
}

// Setup opens a PostgreSQL connection and checks it is reachable.
func Setup(ctx context.Context, cfg *config.Config) (*bun.DB, error) {
	db := Open(cfg)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	zap.L().Info("database connected",
		zap.String("host", cfg.DBHost),
		zap.String("name", cfg.DBName),
	)
	return db, nil
}

// Schema renders the DDL for every table and index, in the order
// CreateTables applies it. It panics if a row model is malformed.
func Schema(db *bun.DB) []string {
	var stmts []string
	for _, model := range tables {
		stmts = append(stmts, db.NewCreateTable().Model(model).IfNotExists().String())
	}

	indexes := []*bun.CreateIndexQuery{
		db.NewCreateIndex().Model((*GateStatusUpdateRow)(nil)).
			Index("gate_status_updates_run_gate_idx").IfNotExists().
			Column("racer_id", "run_key", "gate", "creation_timestamp"),
		db.NewCreateIndex().Model((*TimingUpdateRow)(nil)).
			Index("timing_updates_run_timer_idx").IfNotExists().
			Column("racer_id", "run_key", "timer", "creation_timestamp"),
	}
	for _, q := range indexes {
		stmts = append(stmts, q.String())
	}
	return stmts
}

// CreateTables creates all tables and indexes that do not exist yet.
func CreateTables(ctx context.Context, db *bun.DB) error {
	stmts := Schema(db)
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("applying schema: %w", err)
		}
	}
	zap.L().Info("schema applied", zap.Int("statements", len(stmts)))
	return nil
}
