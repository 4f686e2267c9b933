package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

var Rdb *redis.Client

func InitRedis(reddisAddress string, redisUsername string, redisPassword string) {
	Rdb = redis.NewClient(&redis.Options{
		Addr:     reddisAddress,
		Username: redisUsername,
		Password: redisPassword,
		DB:       0,
	})
}

const etagTTL = 24 * time.Hour

var errStaleVersion = errors.New("etag version changed")

// ETagCache remembers the last ETag served to each display user so an
// unchanged poll can be answered without a store read. A nil *ETagCache is
// valid and caches nothing.
type ETagCache struct {
	rc  *redis.Client
	ttl time.Duration
}

func NewETagCache(rc *redis.Client) *ETagCache {
	return &ETagCache{rc: rc, ttl: etagTTL}
}

func etagKey(userID string) string {
	return fmt.Sprintf("user:%s:etag", userID)
}

func versionKey(userID string) string {
	return fmt.Sprintf("user:%s:version", userID)
}

// Get returns the cached tag, if any. Redis errors count as a miss.
func (c *ETagCache) Get(ctx context.Context, userID string) (string, bool) {
	if c == nil || c.rc == nil {
		return "", false
	}
	tag, err := c.rc.Get(ctx, etagKey(userID)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Warn().Err(err).Str("user_id", userID).Msg("[redis] failed to read ETag")
		}
		return "", false
	}
	return tag, true
}

// Version returns the user's invalidation counter. It must be read before
// the record is loaded and handed back to Set.
func (c *ETagCache) Version(ctx context.Context, userID string) int64 {
	if c == nil || c.rc == nil {
		return 0
	}
	v, err := c.rc.Get(ctx, versionKey(userID)).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		log.Warn().Err(err).Str("user_id", userID).Msg("[redis] failed to read ETag version")
		return -1
	}
	return v
}

// Set caches tag only if no invalidation happened since version was read,
// so a tag computed from a record that has since changed is never stored.
func (c *ETagCache) Set(ctx context.Context, userID, tag string, version int64) bool {
	if c == nil || c.rc == nil || version < 0 {
		return false
	}
	vkey := versionKey(userID)
	err := c.rc.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, vkey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if cur != version {
			return errStaleVersion
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, etagKey(userID), tag, c.ttl)
			return nil
		})
		return err
	}, vkey)
	switch {
	case err == nil:
		return true
	case errors.Is(err, errStaleVersion), errors.Is(err, redis.TxFailedErr):
		log.Debug().Str("user_id", userID).Msg("[redis] record changed during read, ETag not cached")
	default:
		log.Warn().Err(err).Str("user_id", userID).Msg("[redis] failed to cache ETag")
	}
	return false
}

// Invalidate drops the cached tag after the user's record changed and bumps
// the version so reads already in flight cannot cache their stale tag.
func (c *ETagCache) Invalidate(ctx context.Context, userID string) {
	if c == nil || c.rc == nil {
		return
	}
	key := etagKey(userID)
	_, err := c.rc.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, versionKey(userID))
		pipe.Del(ctx, key)
		return nil
	})
	if err != nil {
		log.Warn().Err(err).Str("user_id", userID).Str("etag_key", key).
			Msg("failed to invalidate user ETag cache")
		return
	}
	log.Debug().Str("user_id", userID).Str("etag_key", key).Msg("invalidated user ETag cache")
}
