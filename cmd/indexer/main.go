package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/nagoyameshi/backend/internal/adapters/database"
	"github.com/nagoyameshi/backend/internal/adapters/search"
	"github.com/nagoyameshi/backend/internal/infrastructure/clients/postgres"
	"github.com/nagoyameshi/backend/internal/infrastructure/clients/typesense"
	"github.com/nagoyameshi/backend/internal/infrastructure/observability"
	"github.com/nagoyameshi/backend/pkg/config"
)

var errNonPositiveInterval = errors.New("interval must be greater than zero")

func main() {
	var reset bool
	var intervalFlag string
	flag.BoolVar(&reset, "reset", false, "delete existing Typesense collection before reindexing")
	flag.StringVar(&intervalFlag, "interval", "", "repeat interval for reindexing (e.g. 6h, 30m)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	observability.InitLogger("nagoyameshi-indexer", cfg.Server.Env)

	interval, err := parseInterval(intervalFlag, os.Getenv("REINDEX_INTERVAL"))
	if err != nil {
		log.Fatal().Err(err).Msg("invalid reindex interval")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	for {
		if err := indexOnce(ctx, cfg, reset || os.Getenv("RESET_TYPESENSE") == "true"); err != nil {
			log.Error().Err(err).Msg("reindex failed")
		}

		if interval <= 0 {
			break
		}

		reset = false
		log.Info().Dur("next_run_in", interval).Msg("reindex complete")

		select {
		case <-ctx.Done():
			log.Info().Msg("reindexer shutting down")
			return
		case <-time.After(interval):
		}
	}
}

// parseInterval prefers the flag over the environment; an empty value means run once
func parseInterval(flagValue, envValue string) (time.Duration, error) {
	value := strings.TrimSpace(flagValue)
	if value == "" {
		value = strings.TrimSpace(envValue)
	}
	if value == "" {
		return 0, nil
	}
	interval, err := time.ParseDuration(value)
	if err != nil {
		return 0, err
	}
	if interval <= 0 {
		return 0, errNonPositiveInterval
	}
	return interval, nil
}

func indexOnce(ctx context.Context, cfg *config.Config, reset bool) error {
	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		return err
	}
	defer pgClient.Close()

	tsClient, err := typesense.NewClient(&cfg.Typesense)
	if err != nil {
		return err
	}
	index := search.NewTypesenseAdapter(tsClient)

	if reset {
		log.Warn().Str("collection", search.CollectionName).Msg("dropping collection before reindex")
		if err := index.DropCollection(ctx); err != nil {
			log.Warn().Err(err).Msg("failed to drop collection")
		}
	}
	if err := index.InitSchema(ctx); err != nil {
		return err
	}

	restaurants, err := database.NewRestaurantAdapter(pgClient).ListAll(ctx)
	if err != nil {
		return err
	}

	log.Info().Int("restaurants", len(restaurants)).Msg("indexing restaurants")
	indexed := 0
	for _, r := range restaurants {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := index.Index(ctx, r); err != nil {
			log.Error().Err(err).Str("restaurant_id", r.ID).Msg("failed to index restaurant")
			continue
		}
		indexed++
	}
	log.Info().Int("indexed", indexed).Int("failed", len(restaurants)-indexed).Msg("indexing complete")
	return nil
}
