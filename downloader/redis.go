package downloader

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const DefaultRedisKeyPrefix = "mybus:response:"

// Caches downloaded files in Redis, letting several processes share
// one cache. Entries expire through Redis' own TTL.
type Redis struct {
	Client    *redis.Client
	KeyPrefix string
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{
		Client:    client,
		KeyPrefix: DefaultRedisKeyPrefix,
	}
}

func (r *Redis) Get(
	ctx context.Context,
	url string,
	headers map[string]string,
	options GetOptions,
) ([]byte, error) {
	key := r.KeyPrefix + options.key(url)

	if options.Cache && !options.Refresh {
		body, err := r.Client.Get(ctx, key).Bytes()
		if err == nil {
			log.Debug().Str("key", key).Msg("Redis cache hit")
			return body, nil
		}
		if !errors.Is(err, redis.Nil) {
			log.Warn().Err(err).Str("key", key).Msg("Redis cache lookup failed")
		}
	}

	body, err := fetch(ctx, url, headers, options)
	if err != nil {
		return nil, err
	}

	if options.Cache && options.CacheTTL > 0 {
		err = r.Client.Set(ctx, key, body, options.CacheTTL).Err()
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("Redis cache store failed")
		}
	}

	return body, nil
}
