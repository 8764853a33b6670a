package lookup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/evyataryagoni/geopage/internal/models"
	"github.com/redis/go-redis/v9"
)

// keyPrefix namespaces dataset keys: country:<ip> -> {"country":"IR"}
const keyPrefix = "country:"

// RedisLookup reads exact-address entries from Redis.
// The service never writes here; Set and LoadFromCSV exist for
// cmd/load-redis and tests.
type RedisLookup struct {
	client *redis.Client
}

// NewRedisLookup connects to Redis and pings it
//
// Parameters:
//   - addr: Redis server address (e.g., "localhost:6379")
//   - password: Redis password (empty string if no password)
//   - db: Redis database number (0-15, default is 0)
func NewRedisLookup(ctx context.Context, addr, password string, db int) (*RedisLookup, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisLookup{client: client}, nil
}

func (l *RedisLookup) Name() string { return "redis" }

// LookupCountry implements Lookup
func (l *RedisLookup) LookupCountry(ctx context.Context, ip string) (string, error) {
	val, err := l.client.Get(ctx, keyPrefix+ip).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("Redis query failed: %w", err)
	}

	var record models.IPCountry
	if err := json.Unmarshal([]byte(val), &record); err != nil {
		return "", fmt.Errorf("failed to decode country record: %w", err)
	}
	if record.Country == "" {
		return "", fmt.Errorf("%w for %s", ErrNoCountry, ip)
	}

	return record.Country, nil
}

// Set stores one entry with no expiration
func (l *RedisLookup) Set(ctx context.Context, ip, country string) error {
	data, err := json.Marshal(models.IPCountry{IP: ip, Country: country})
	if err != nil {
		return fmt.Errorf("failed to encode country record: %w", err)
	}

	if err := l.client.Set(ctx, keyPrefix+ip, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to store in Redis: %w", err)
	}

	return nil
}

// LoadFromCSV copies the exact-address rows of a CSV dataset into Redis.
// CIDR rows are skipped since Redis lookups are by exact key.
func (l *RedisLookup) LoadFromCSV(ctx context.Context, csvPath string) (int, error) {
	records, err := readCSV(csvPath)
	if err != nil {
		return 0, fmt.Errorf("failed to load CSV: %w", err)
	}

	pipe := l.client.Pipeline()
	count := 0
	for _, record := range records {
		if strings.Contains(record.IP, "/") {
			continue
		}
		data, err := json.Marshal(record)
		if err != nil {
			return 0, fmt.Errorf("failed to encode record for %s: %w", record.IP, err)
		}
		pipe.Set(ctx, keyPrefix+record.IP, data, 0)
		count++
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("failed to store records: %w", err)
	}

	return count, nil
}

// IsEmpty reports whether no dataset keys exist
func (l *RedisLookup) IsEmpty(ctx context.Context) (bool, error) {
	keys, err := l.client.Keys(ctx, keyPrefix+"*").Result()
	if err != nil {
		return false, fmt.Errorf("failed to check Redis keys: %w", err)
	}
	return len(keys) == 0, nil
}

// Close closes the Redis connection
func (l *RedisLookup) Close() error {
	if l.client != nil {
		return l.client.Close()
	}
	return nil
}
