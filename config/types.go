package config

import "time"

// APIConfig describes how to reach the Bus Tracker API
type APIConfig struct {
	BaseURL    string        `yaml:"base_url" validate:"required,url"`
	Key        string        `yaml:"key"`
	Timeout    time.Duration `yaml:"timeout" validate:"gt=0"`
	Departures int           `yaml:"departures" validate:"gte=1"`
}

// CacheConfig selects where bus times responses are cached
type CacheConfig struct {
	Backend   string        `yaml:"backend" validate:"oneof=memory filesystem redis"`
	TTL       time.Duration `yaml:"ttl" validate:"gt=0"`
	Path      string        `yaml:"path" validate:"required_if=Backend filesystem"`
	RedisAddr string        `yaml:"redis_addr" validate:"required_if=Backend redis"`
}

// StorageConfig selects where stop requests are kept. A sqlite
// backend without directory lives in memory.
type StorageConfig struct {
	Backend     string `yaml:"backend" validate:"oneof=memory sqlite postgres"`
	Directory   string `yaml:"directory"`
	PostgresURL string `yaml:"postgres_url" validate:"required_if=Backend postgres"`
}

// RefreshConfig controls the background refresh of watched stops
type RefreshConfig struct {
	Interval    time.Duration `yaml:"interval" validate:"gt=0"`
	Concurrency int           `yaml:"concurrency" validate:"gte=1"`
}

// ServerConfig contains HTTP API configuration
type ServerConfig struct {
	Listen string `yaml:"listen" validate:"required"`
}

// Config is the root configuration structure
type Config struct {
	API     APIConfig     `yaml:"api"`
	Cache   CacheConfig   `yaml:"cache"`
	Storage StorageConfig `yaml:"storage"`
	Refresh RefreshConfig `yaml:"refresh"`
	Server  ServerConfig  `yaml:"server"`
}
