package downloader

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Caches downloaded files in memory
type MemoryDownloader struct {
	mutex sync.Mutex
	cache map[string]downloaderCacheEntry

	TimeNow func() time.Time
}

func NewMemoryDownloader() *MemoryDownloader {
	return &MemoryDownloader{
		cache:   make(map[string]downloaderCacheEntry),
		TimeNow: time.Now,
	}
}

type downloaderCacheEntry struct {
	data       []byte
	expiration time.Time
}

func (d *MemoryDownloader) Get(
	ctx context.Context,
	url string,
	headers map[string]string,
	options GetOptions,
) ([]byte, error) {
	key := options.key(url)

	if options.Cache && !options.Refresh {
		d.mutex.Lock()
		entry, ok := d.cache[key]
		d.mutex.Unlock()

		if ok && entry.expiration.After(d.TimeNow()) {
			log.Debug().Str("key", key).Msg("Memory cache hit")
			return entry.data, nil
		}
	}

	body, err := fetch(ctx, url, headers, options)
	if err != nil {
		return nil, err
	}

	if options.Cache {
		d.mutex.Lock()
		d.cache[key] = downloaderCacheEntry{
			data:       body,
			expiration: d.TimeNow().Add(options.CacheTTL),
		}
		d.evictExpired()
		d.mutex.Unlock()
	}

	return body, nil
}

// Drops expired entries. Caller must hold the mutex.
func (d *MemoryDownloader) evictExpired() {
	now := d.TimeNow()
	for key, entry := range d.cache {
		if !entry.expiration.After(now) {
			delete(d.cache, key)
		}
	}
}
