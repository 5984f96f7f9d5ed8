package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"vixmon/internal/config"
	"vixmon/internal/database"
	"vixmon/internal/feed"
	"vixmon/internal/monitor"
	"vixmon/internal/report"
)

func main() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("cannot load config: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	ctx := context.Background()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("cannot connect to database: %v", err)
	}
	defer pool.Close()

	repo := database.NewPostgresRepository(pool)
	if err := repo.Init(ctx); err != nil {
		log.Fatalf("cannot initialize schema: %v", err)
	}

	quoteFeed, err := feed.NewFeed(logger, cfg.Feed)
	if err != nil {
		log.Fatalf("cannot create feed: %v", err)
	}

	snapshot, err := quoteFeed.Fetch(ctx)
	if err != nil {
		log.Fatalf("cannot fetch quotes: %v", err)
	}

	m := monitor.New(logger, repo, &cfg)
	comparison, err := m.RunOnce(ctx, snapshot)
	if err != nil {
		log.Fatalf("analysis run failed: %v", err)
	}

	fmt.Print(report.Render(comparison))
}
