package main

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/matchcontrol/go/internal/dbconfig"
	"github.com/mcdev12/matchcontrol/go/internal/kvstore"
)

// setupStore opens the configured key-value backend.
func setupStore(ctx context.Context, cfg StoreConfig) (kvstore.Store, error) {
	switch cfg.Backend {
	case "memory", "":
		log.Warn().Msg("using in-memory store, state will not survive a restart")
		return kvstore.NewMemory(), nil

	case "postgres":
		database, err := setupDatabase(ctx, cfg.DBDriver)
		if err != nil {
			return nil, err
		}
		store, err := kvstore.NewPostgres(ctx, database)
		if err != nil {
			database.Close()
			return nil, fmt.Errorf("failed to prepare postgres store: %w", err)
		}
		return store, nil

	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to ping redis: %w", err)
		}
		log.Info().Str("addr", cfg.RedisAddr).Int("db", cfg.RedisDB).Msg("connected to redis")
		return kvstore.NewRedis(client, cfg.RedisPrefix), nil

	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}

// setupDatabase connects with lib/pq ("postgres") or pgx ("pgx").
func setupDatabase(ctx context.Context, driver string) (*sql.DB, error) {
	dbCfg := dbconfig.NewConfigFromEnv()

	database, err := sql.Open(driver, dbCfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to create database connection: %w", err)
	}

	database.SetMaxOpenConns(dbCfg.MaxOpenConns)
	database.SetMaxIdleConns(dbCfg.MaxIdleConns)

	if err := database.PingContext(ctx); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info().
		Str("driver", driver).
		Str("dsn", dbCfg.Redacted()).
		Int("max_open_conns", dbCfg.MaxOpenConns).
		Msg("connected to database")
	return database, nil
}
