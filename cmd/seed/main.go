package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/rs/zerolog/log"

	"github.com/nagoyameshi/backend/internal/adapters/cache"
	"github.com/nagoyameshi/backend/internal/application/services"
	"github.com/nagoyameshi/backend/internal/infrastructure/clients/postgres"
	"github.com/nagoyameshi/backend/internal/infrastructure/clients/redis"
	"github.com/nagoyameshi/backend/internal/infrastructure/observability"
	"github.com/nagoyameshi/backend/migrations"
	"github.com/nagoyameshi/backend/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	observability.InitLogger("nagoyameshi-seed", cfg.Server.Env)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to PostgreSQL")
	}
	defer pgClient.Close()

	if err := migrate(ctx, pgClient); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}

	if os.Getenv("RESET_DB") == "true" {
		log.Warn().Msg("RESET_DB=true detected, truncating tables before seeding")
		_, err := pgClient.DB().ExecContext(ctx, `
			TRUNCATE TABLE
				favorites,
				reservations,
				reviews,
				restaurant_photos,
				restaurant_closing_days,
				restaurants,
				categories,
				days,
				users
			RESTART IDENTITY CASCADE
		`)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to reset tables")
		}
	}

	db := goqu.New("postgres", pgClient.DB())

	dayIDs, err := seedDayRows(ctx, db)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to seed days")
	}
	categoryIDs, err := seedCategoryRows(ctx, db)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to seed categories")
	}

	seeded := 0
	for _, r := range seedRestaurants {
		if err := seedRestaurantRow(ctx, db, r, categoryIDs, dayIDs); err != nil {
			log.Error().Err(err).Str("restaurant", r.Name).Msg("failed to seed restaurant")
			continue
		}
		seeded++
	}
	log.Info().Int("restaurants", seeded).Int("categories", len(categoryIDs)).Msg("seed complete")

	// cached aggregates predate the new rows
	if cfg.Redis.Enabled {
		redisClient, err := redis.NewClient(&cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("Redis unavailable, cached summaries left as is")
			return
		}
		defer redisClient.Close()
		invalidation := services.NewCacheInvalidationService(cache.NewRedisAdapter(redisClient), nil)
		if err := invalidation.InvalidateAllSummaries(ctx); err != nil {
			log.Warn().Err(err).Msg("failed to invalidate cached review summaries")
		}
	}
}

func migrate(ctx context.Context, client *postgres.Client) error {
	steps, err := migrations.Up()
	if err != nil {
		return err
	}
	for _, m := range steps {
		if _, err := client.DB().ExecContext(ctx, m.SQL); err != nil {
			return fmt.Errorf("apply %s: %w", m.Name, err)
		}
		log.Info().Str("migration", m.Name).Msg("applied migration")
	}
	return nil
}

// upsertReturningID inserts a row keyed by a unique column and returns its id either way
func upsertReturningID(ctx context.Context, db *goqu.Database, table, key string, row goqu.Record) (int64, error) {
	var id int64
	_, err := db.Insert(table).
		Rows(row).
		OnConflict(goqu.DoUpdate(key, goqu.Record{key: goqu.L("EXCLUDED." + key)})).
		Returning("id").
		Executor().
		ScanValContext(ctx, &id)
	return id, err
}

func seedDayRows(ctx context.Context, db *goqu.Database) (map[int]int64, error) {
	ids := make(map[int]int64, len(seedDays))
	for _, d := range seedDays {
		id, err := upsertReturningID(ctx, db, "days", "day_of_week", goqu.Record{"name": d.Name, "day_of_week": d.DayOfWeek})
		if err != nil {
			return nil, fmt.Errorf("day %s: %w", d.Name, err)
		}
		ids[d.DayOfWeek] = id
	}
	return ids, nil
}

func seedCategoryRows(ctx context.Context, db *goqu.Database) (map[string]int64, error) {
	ids := make(map[string]int64, len(seedCategories))
	for _, name := range seedCategories {
		id, err := upsertReturningID(ctx, db, "categories", "name", goqu.Record{"name": name})
		if err != nil {
			return nil, fmt.Errorf("category %s: %w", name, err)
		}
		ids[name] = id
	}
	return ids, nil
}

func seedRestaurantRow(ctx context.Context, db *goqu.Database, r seedRestaurant, categories map[string]int64, days map[int]int64) error {
	categoryID, ok := categories[r.Category]
	if !ok {
		return fmt.Errorf("unknown category %q", r.Category)
	}

	return db.WithTx(func(tx *goqu.TxDatabase) error {
		id := r.id()
		result, err := tx.Insert("restaurants").Rows(goqu.Record{
			"id":             id,
			"name":           r.Name,
			"category_id":    categoryID,
			"description":    r.Description,
			"image_url":      "",
			"floor_price":    r.FloorPrice,
			"maximum_price":  r.MaximumPrice,
			"opening_time":   r.Opening,
			"closing_time":   r.Closing,
			"postal_code":    r.PostalCode,
			"city":           r.City,
			"street_address": r.StreetAddress,
			"phone_number":   r.PhoneNumber,
		}).OnConflict(goqu.DoNothing()).Executor().ExecContext(ctx)
		if err != nil {
			return err
		}
		if n, _ := result.RowsAffected(); n == 0 {
			log.Debug().Str("restaurant", r.Name).Msg("already seeded")
			return nil
		}

		for _, weekday := range r.ClosedOn {
			if _, err := tx.Insert("restaurant_closing_days").
				Rows(goqu.Record{"restaurant_id": id, "day_id": days[weekday]}).
				Executor().ExecContext(ctx); err != nil {
				return err
			}
		}
		for i, image := range r.Photos {
			if _, err := tx.Insert("restaurant_photos").
				Rows(goqu.Record{"restaurant_id": id, "image_url": image, "caption": r.Name, "sort_order": i}).
				Executor().ExecContext(ctx); err != nil {
				return err
			}
		}
		return nil
	})
}
