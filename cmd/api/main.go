package main

import (
	"log"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"caselens/adapters/narrative/heuristic"
	"caselens/adapters/postgres"
	"caselens/adapters/similarity"
	"caselens/app"
	"caselens/internal"
	"caselens/internal/config"
	"caselens/internal/confidence"
	"caselens/internal/estimator"
	"caselens/ui"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}

	logger := internal.NewDefaultLogger()

	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer db.Close()

	retrieverCfg := similarity.DefaultConfig()
	retrieverCfg.TimeDecayHalfLife = cfg.Valuation.TimeDecayHalfLife

	estimatorCfg := estimator.DefaultConfig()
	estimatorCfg.ClampMultiple = cfg.Valuation.ClampMultiple

	scorerCfg := confidence.DefaultConfig()
	scorerCfg.TargetPrecedentCount = cfg.Valuation.TargetPrecedentCount
	if cfg.Valuation.ConfidenceWeights != nil {
		scorerCfg.Weights = cfg.Valuation.ConfidenceWeights
	}

	service := app.NewAnalysisService(
		postgres.NewCorpusRepository(db),
		postgres.NewAnalysisRepository(db),
		heuristic.NewNarrator(),
		similarity.NewEngine(retrieverCfg),
		estimator.NewEstimator(estimatorCfg),
		confidence.NewScorer(scorerCfg),
		logger,
		app.Options{
			DefaultK:         cfg.Valuation.DefaultTopK,
			BatchParallelism: cfg.Valuation.BatchParallelism,
		},
	)

	api := ui.NewApp(service, logger)
	if err := api.Start(ui.Config{Port: cfg.Server.Port}); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
