package config

import (
	"fmt"

	"github.com/redis/go-redis/v9"

	"mybus.dev/livetimes"
	"mybus.dev/livetimes/downloader"
	"mybus.dev/livetimes/storage"
)

func (c Config) NewDownloader() (downloader.Downloader, error) {
	switch c.Cache.Backend {
	case "memory":
		return downloader.NewMemoryDownloader(), nil
	case "filesystem":
		d, err := downloader.NewFilesystem(c.Cache.Path)
		if err != nil {
			return nil, fmt.Errorf("creating filesystem cache: %w", err)
		}
		return d, nil
	case "redis":
		return downloader.NewRedis(redis.NewClient(&redis.Options{
			Addr: c.Cache.RedisAddr,
		})), nil
	}
	return nil, fmt.Errorf("unknown cache backend %q", c.Cache.Backend)
}

func (c Config) NewStorage() (storage.Storage, error) {
	switch c.Storage.Backend {
	case "memory":
		return storage.NewMemoryStorage(), nil
	case "sqlite":
		s, err := storage.NewSQLiteStorage(storage.SQLiteConfig{
			OnDisk:    c.Storage.Directory != "",
			Directory: c.Storage.Directory,
		})
		if err != nil {
			return nil, fmt.Errorf("creating sqlite storage: %w", err)
		}
		return s, nil
	case "postgres":
		s, err := storage.NewPSQLStorage(c.Storage.PostgresURL, false)
		if err != nil {
			return nil, fmt.Errorf("creating postgres storage: %w", err)
		}
		return s, nil
	}
	return nil, fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
}

// NewManager builds a manager on top of s, caching with the
// configured backend.
func (c Config) NewManager(s storage.Storage) (*livetimes.Manager, error) {
	d, err := c.NewDownloader()
	if err != nil {
		return nil, err
	}

	m := livetimes.NewManager(s, c.API.Key)
	m.BaseURL = c.API.BaseURL
	m.LiveTimesTimeout = c.API.Timeout
	m.NumDepartures = c.API.Departures
	m.LiveTimesTTL = c.Cache.TTL
	m.RefreshInterval = c.Refresh.Interval
	m.RefreshConcurrency = c.Refresh.Concurrency
	m.Downloader = d

	return m, nil
}
