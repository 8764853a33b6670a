package main

import (
	"context"
	"flag"
	"time"

	"github.com/evyataryagoni/geopage/internal/config"
	"github.com/evyataryagoni/geopage/internal/logger"
	"github.com/evyataryagoni/geopage/internal/lookup"
)

// This tool seeds Redis with the CSV dataset so the server can run with
// LOOKUP_PROVIDER=redis.
// Usage: go run ./cmd/load-redis [-force]
func main() {
	force := flag.Bool("force", false, "load even if Redis already holds country keys")
	flag.Parse()

	appConfig := config.Load()
	log := logger.New(logger.Config{Level: appConfig.LogLevel, Pretty: true})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	log.Info().Str("addr", appConfig.RedisAddr).Msg("Connecting to Redis")
	redisLookup, err := lookup.NewRedisLookup(ctx, appConfig.RedisAddr, appConfig.RedisPassword, appConfig.RedisDB)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer redisLookup.Close()

	if !*force {
		empty, err := redisLookup.IsEmpty(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to inspect Redis")
		}
		if !empty {
			log.Info().Msg("Redis already has country data, use -force to reload")
			return
		}
	}

	log.Info().Str("path", appConfig.DatasetPath).Msg("Loading dataset")
	count, err := redisLookup.LoadFromCSV(ctx, appConfig.DatasetPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load CSV data")
	}

	log.Info().Int("records", count).Msg("Data loaded, start the server with LOOKUP_PROVIDER=redis")
}
