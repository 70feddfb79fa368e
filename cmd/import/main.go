package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"caselens/adapters/excel"
	"caselens/adapters/postgres"
	"caselens/internal/config"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}

	filePath := flag.String("file", cfg.Paths.CorpusFile, "path to the corpus xlsx workbook")
	flag.Parse()
	if *filePath == "" {
		log.Fatal("no corpus file given: pass -file or set CORPUS_FILE")
	}

	cases, err := excel.NewCorpusReader(*filePath).ReadCases()
	if err != nil {
		log.Fatalf("corpus read failed: %v", err)
	}
	if len(cases) == 0 {
		log.Fatalf("no usable cases found in %s", *filePath)
	}

	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := postgres.NewCorpusRepository(db).InsertCases(ctx, cases); err != nil {
		log.Fatalf("corpus insert failed: %v", err)
	}
	log.Printf("imported %d cases from %s", len(cases), *filePath)
}
