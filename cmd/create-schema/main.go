package main

import (
	"context"
	"log"

	"contract-analyzer-backend/config"
	"contract-analyzer-backend/repository"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	config.LoadDotEnv()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if !cfg.HistoryEnabled() {
		log.Fatal("DATABASE_URL is required to create the schema")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	if err := repository.CreateSchema(ctx, pool, log.Printf); err != nil {
		log.Fatalf("Failed to create schema: %v", err)
	}

	log.Println("✓ Schema ready")
}
