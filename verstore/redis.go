package verstore

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis shares per-entry versions across processes and survives restarts.
// Optionally, a TTL can be applied to version keys to prevent unbounded
// growth. If a version key expires, readers observe version=0 and cache
// entries self-heal.
type Redis struct {
	rdb redis.UniversalClient
	ns  string        // logical namespace; should match the store's namespace
	ttl time.Duration // optional TTL for version keys; 0 disables expiry
}

var _ VersionStore = (*Redis)(nil)

// NewRedis creates a Redis-backed version store without TTL.
func NewRedis(client redis.UniversalClient, namespace string) *Redis {
	return &Redis{rdb: client, ns: namespace}
}

// NewRedisWithTTL creates a Redis-backed version store with TTL.
// If ttl <= 0, keys do not expire.
func NewRedisWithTTL(client redis.UniversalClient, namespace string, ttl time.Duration) *Redis {
	return &Redis{rdb: client, ns: namespace, ttl: ttl}
}

func (s *Redis) key(k string) string { return "ver:" + s.ns + ":" + k }

// Snapshot returns the current version. Missing keys are treated as 0.
func (s *Redis) Snapshot(ctx context.Context, storageKey string) (uint64, error) {
	res, err := s.rdb.Get(ctx, s.key(storageKey)).Result()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	u, err := strconv.ParseUint(res, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("redis version parse: %w", err)
	}
	return u, nil
}

// SnapshotMany returns versions for multiple keys. Missing keys map to 0.
func (s *Redis) SnapshotMany(ctx context.Context, storageKeys []string) (map[string]uint64, error) {
	if len(storageKeys) == 0 {
		return map[string]uint64{}, nil
	}
	keys := make([]string, len(storageKeys))
	for i, k := range storageKeys {
		keys[i] = s.key(k)
	}
	vals, err := s.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	out := make(map[string]uint64, len(storageKeys))
	for i, v := range vals {
		switch vv := v.(type) {
		case nil:
			out[storageKeys[i]] = 0
		case string:
			u, err := strconv.ParseUint(vv, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("redis version parse at %s: %w", storageKeys[i], err)
			}
			out[storageKeys[i]] = u
		case []byte:
			u, err := strconv.ParseUint(string(vv), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("redis version parse at %s: %w", storageKeys[i], err)
			}
			out[storageKeys[i]] = u
		default:
			u, err := strconv.ParseUint(fmt.Sprint(vv), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("redis version parse at %s: %w", storageKeys[i], err)
			}
			out[storageKeys[i]] = u
		}
	}
	return out, nil
}

// Bump atomically increments the version and (optionally) refreshes TTL.
// When ttl > 0, INCR + EXPIRE are pipelined in a single round-trip and the
// INCR result is captured from the pipeline (no extra INCR).
func (s *Redis) Bump(ctx context.Context, storageKey string) (uint64, error) {
	k := s.key(storageKey)

	if s.ttl <= 0 {
		v, err := s.rdb.Incr(ctx, k).Result()
		if err != nil {
			return 0, err
		}
		return uint64(v), nil
	}

	var incr *redis.IntCmd
	_, err := s.rdb.Pipelined(ctx, func(p redis.Pipeliner) error {
		incr = p.Incr(ctx, k)
		p.Expire(ctx, k, s.ttl)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return uint64(incr.Val()), nil
}

// Cleanup is not applicable for Redis (expiry is handled by TTL if set).
func (s *Redis) Cleanup(time.Duration) {}

// Close closes the underlying Redis client.
func (s *Redis) Close(context.Context) error { return s.rdb.Close() }
