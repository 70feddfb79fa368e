package main

import (
	"log"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"caselens/internal/config"
)

const schema = `
CREATE TABLE IF NOT EXISTS historical_cases (
	id                   UUID PRIMARY KEY,
	title                TEXT,
	summary              TEXT,
	case_type            TEXT,
	subtypes             JSONB,
	jurisdiction         TEXT,
	injury_type          TEXT,
	economic_damages     NUMERIC,
	non_economic_damages NUMERIC,
	settlement_value     NUMERIC,
	verdict_outcome      TEXT,
	decided_at           TIMESTAMPTZ,
	snapshot_ref         TEXT NOT NULL DEFAULT '',
	inserted_at          TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_historical_cases_snapshot
	ON historical_cases (snapshot_ref, inserted_at);

CREATE TABLE IF NOT EXISTS analyses (
	id         UUID PRIMARY KEY,
	created_at TIMESTAMPTZ NOT NULL,
	result     JSONB NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_analyses_created_at
	ON analyses (created_at DESC);
`

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}

	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer db.Close()

	if _, err := db.Exec(schema); err != nil {
		log.Fatalf("migration failed: %v", err)
	}
	log.Println("schema is up to date")
}
