package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mybus.dev/livetimes"
	"mybus.dev/livetimes/config"
	"mybus.dev/livetimes/downloader"
	"mybus.dev/livetimes/storage"
)

func writeConfig(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	assert.NoError(t, config.Default().Validate())
}

func TestLoadWithoutFile(t *testing.T) {
	t.Setenv(config.APIKeyEnv, "")

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestLoadOverridesDefaults(t *testing.T) {
	t.Setenv(config.APIKeyEnv, "")

	path := writeConfig(t, `
api:
  key: abc123
  timeout: 5s
cache:
  backend: filesystem
  path: /tmp/mybus-cache.json
  ttl: 1m
storage:
  backend: sqlite
  directory: /var/lib/mybus
refresh:
  concurrency: 2
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, livetimes.DefaultBaseURL, cfg.API.BaseURL)
	assert.Equal(t, "abc123", cfg.API.Key)
	assert.Equal(t, 5*time.Second, cfg.API.Timeout)
	assert.Equal(t, livetimes.DefaultNumDepartures, cfg.API.Departures)
	assert.Equal(t, config.CacheConfig{
		Backend: "filesystem",
		TTL:     time.Minute,
		Path:    "/tmp/mybus-cache.json",
	}, cfg.Cache)
	assert.Equal(t, "sqlite", cfg.Storage.Backend)
	assert.Equal(t, "/var/lib/mybus", cfg.Storage.Directory)
	assert.Equal(t, livetimes.DefaultRefreshInterval, cfg.Refresh.Interval)
	assert.Equal(t, 2, cfg.Refresh.Concurrency)
	assert.Equal(t, ":8080", cfg.Server.Listen)
}

func TestLoadAPIKeyFromEnvironment(t *testing.T) {
	t.Setenv(config.APIKeyEnv, "from-env")

	cfg, err := config.Load(writeConfig(t, "api:\n  key: from-file\n"))
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.API.Key)
}

func TestLoadInvalid(t *testing.T) {
	t.Setenv(config.APIKeyEnv, "")

	for _, tc := range []struct {
		name    string
		content string
	}{
		{"not yaml", "api: [\n"},
		{"bad duration", "api:\n  timeout: soon\n"},
		{"bad base url", "api:\n  base_url: not a url\n"},
		{"no departures", "api:\n  departures: 0\n"},
		{"unknown cache", "cache:\n  backend: disk\n"},
		{"filesystem cache without path", "cache:\n  backend: filesystem\n"},
		{"redis cache without address", "cache:\n  backend: redis\n"},
		{"unknown storage", "storage:\n  backend: mongo\n"},
		{"postgres without url", "storage:\n  backend: postgres\n"},
		{"zero refresh interval", "refresh:\n  interval: 0s\n"},
		{"no listen address", "server:\n  listen: \"\"\n"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := config.Load(writeConfig(t, tc.content))
			assert.Error(t, err)
		})
	}

	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}

func TestNewManager(t *testing.T) {
	cfg := config.Default()
	cfg.API.Key = "secret"
	cfg.API.BaseURL = "http://localhost:1234/"
	cfg.API.Departures = 6
	cfg.Cache.TTL = 45 * time.Second
	cfg.Refresh.Interval = 2 * time.Minute
	cfg.Refresh.Concurrency = 8

	m, err := cfg.NewManager(storage.NewMemoryStorage())
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:1234/", m.BaseURL)
	assert.Equal(t, 6, m.NumDepartures)
	assert.Equal(t, 45*time.Second, m.LiveTimesTTL)
	assert.Equal(t, livetimes.DefaultLiveTimesTimeout, m.LiveTimesTimeout)
	assert.Equal(t, 2*time.Minute, m.RefreshInterval)
	assert.Equal(t, 8, m.RefreshConcurrency)
	assert.IsType(t, &downloader.MemoryDownloader{}, m.Downloader)
}

func TestNewDownloader(t *testing.T) {
	cfg := config.Default()
	cfg.Cache.Backend = "filesystem"
	cfg.Cache.Path = filepath.Join(t.TempDir(), "cache.json")
	d, err := cfg.NewDownloader()
	require.NoError(t, err)
	assert.IsType(t, &downloader.Filesystem{}, d)

	mr := miniredis.RunT(t)
	cfg.Cache.Backend = "redis"
	cfg.Cache.RedisAddr = mr.Addr()
	d, err = cfg.NewDownloader()
	require.NoError(t, err)
	require.IsType(t, &downloader.Redis{}, d)
	assert.Equal(t, downloader.DefaultRedisKeyPrefix, d.(*downloader.Redis).KeyPrefix)

	cfg.Cache.Backend = "carrier pigeon"
	_, err = cfg.NewDownloader()
	assert.Error(t, err)
}

func TestNewStorage(t *testing.T) {
	cfg := config.Default()
	s, err := cfg.NewStorage()
	require.NoError(t, err)
	assert.IsType(t, &storage.MemoryStorage{}, s)

	cfg.Storage.Backend = "sqlite"
	cfg.Storage.Directory = t.TempDir()
	s, err = cfg.NewStorage()
	require.NoError(t, err)
	defer s.Close()
	assert.IsType(t, &storage.SQLiteStorage{}, s)
	require.NoError(t, s.WriteStopRequest(storage.StopRequest{StopCodes: []string{"a"}}))
	_, err = os.Stat(filepath.Join(cfg.Storage.Directory, "mybus.db"))
	assert.NoError(t, err)

	cfg.Storage.Backend = "tape"
	_, err = cfg.NewStorage()
	assert.Error(t, err)
}
