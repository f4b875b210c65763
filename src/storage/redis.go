package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"venue-collections/src/helpers"
	"venue-collections/src/logger"
	"venue-collections/src/models"

	"github.com/redis/go-redis/v9"
)

const redisTimeout = 5 * time.Second

// RedisStore keeps the latest snapshot in three hashes:
// <prefix>:collections (symbol -> JSON venue array),
// <prefix>:singular (symbol -> venue) and <prefix>:run (metadata).
type RedisStore struct {
	rdb    *redis.Client
	prefix string
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewRedisStore(cfg *models.MConfig, log *logger.Logger) *RedisStore {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Storage.RedisAddr,
		Password: cfg.Storage.RedisPassword,
		DB:       cfg.Storage.RedisDB,
	})
	return &RedisStore{
		rdb:    rdb,
		prefix: SchemaName(cfg.Name),
		Logger: log,
	}
}

// Helper key generation functions
func (r *RedisStore) collectionsKey() string { return r.prefix + ":collections" }
func (r *RedisStore) singularKey() string    { return r.prefix + ":singular" }
func (r *RedisStore) runKey() string         { return r.prefix + ":run" }

// -----------------------------------------------------------------------------

// Initialize checks that Redis is reachable.
func (r *RedisStore) Initialize() error {
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	if err := r.rdb.Ping(ctx).Err(); err != nil {
		return helpers.NewDatabaseError("redis ping", err)
	}
	return nil
}

// -----------------------------------------------------------------------------

// SaveCollections replaces the stored snapshot atomically (MULTI/EXEC).
func (r *RedisStore) SaveCollections(result *models.MCollections) error {
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	shared := make(map[string]interface{}, len(result.Collections))
	for symbol, venues := range result.Collections {
		b, err := json.Marshal(venues)
		if err != nil {
			return err
		}
		shared[symbol] = string(b)
	}

	singular := make(map[string]interface{}, len(result.SinglyAvailable))
	for symbol, venue := range result.SinglyAvailable {
		singular[symbol] = venue
	}

	failures, err := json.Marshal(result.Failures)
	if err != nil {
		return err
	}

	_, err = r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, r.collectionsKey(), r.singularKey(), r.runKey())
		if len(shared) > 0 {
			pipe.HSet(ctx, r.collectionsKey(), shared)
		}
		if len(singular) > 0 {
			pipe.HSet(ctx, r.singularKey(), singular)
		}
		pipe.HSet(ctx, r.runKey(),
			"built_at", result.BuiltAt,
			"venue_count", result.VenueCount,
			"failures", string(failures),
		)
		return nil
	})
	if err != nil {
		return helpers.NewDatabaseError("redis save snapshot", err)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (r *RedisStore) LoadCollections() (*models.MCollections, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	result := models.NewMCollections()

	shared, err := r.rdb.HGetAll(ctx, r.collectionsKey()).Result()
	if err != nil {
		return nil, helpers.NewDatabaseError("redis load collections", err)
	}
	for symbol, raw := range shared {
		var venues []string
		if err := json.Unmarshal([]byte(raw), &venues); err != nil {
			return nil, helpers.NewDatabaseError(fmt.Sprintf("redis collection %s", symbol), err)
		}
		result.Collections[symbol] = venues
	}

	singular, err := r.rdb.HGetAll(ctx, r.singularKey()).Result()
	if err != nil {
		return nil, helpers.NewDatabaseError("redis load singular markets", err)
	}
	for symbol, venue := range singular {
		result.SinglyAvailable[symbol] = venue
	}

	run, err := r.rdb.HGetAll(ctx, r.runKey()).Result()
	if err != nil {
		return nil, helpers.NewDatabaseError("redis load run metadata", err)
	}
	result.BuiltAt, _ = strconv.ParseInt(run["built_at"], 10, 64)
	result.VenueCount, _ = strconv.Atoi(run["venue_count"])
	if raw := run["failures"]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &result.Failures); err != nil {
			return nil, helpers.NewDatabaseError("redis venue failures", err)
		}
	}

	return result, nil
}

// -----------------------------------------------------------------------------

func (r *RedisStore) Close() error {
	return r.rdb.Close()
}
