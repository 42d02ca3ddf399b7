package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"mybus.dev/livetimes"
)

// Overrides api.key when set.
const APIKeyEnv = "MYBUS_API_KEY"

// Default returns the configuration used for anything a config file
// leaves out.
func Default() Config {
	return Config{
		API: APIConfig{
			BaseURL:    livetimes.DefaultBaseURL,
			Timeout:    livetimes.DefaultLiveTimesTimeout,
			Departures: livetimes.DefaultNumDepartures,
		},
		Cache: CacheConfig{
			Backend: "memory",
			TTL:     livetimes.DefaultLiveTimesTTL,
		},
		Storage: StorageConfig{
			Backend: "memory",
		},
		Refresh: RefreshConfig{
			Interval:    livetimes.DefaultRefreshInterval,
			Concurrency: livetimes.DefaultRefreshConcurrency,
		},
		Server: ServerConfig{
			Listen: ":8080",
		},
	}
}

// Load reads the configuration at path on top of the defaults. A
// blank path yields the defaults. The API key environment variable
// takes precedence over the file.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config: %w", err)
		}
	}

	if key := os.Getenv(APIKeyEnv); key != "" {
		cfg.API.Key = key
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks the configuration is usable.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
