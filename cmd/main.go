package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"mybus.dev/livetimes"
	"mybus.dev/livetimes/config"
	"mybus.dev/livetimes/storage"
)

// Consumer name for stops requested from the command line.
const cliConsumer = "cli"

var rootCmd = &cobra.Command{
	Use:               "mybus",
	Short:             "Edinburgh live bus times",
	Long:              "Fetches live bus and tram times from the Edinburgh Bus Tracker",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

var (
	configPath   string
	apiKey       string
	baseURL      string
	cacheBackend string
	debug        bool

	cfg config.Config
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to YAML config")
	rootCmd.PersistentFlags().StringVarP(&apiKey, "api-key", "", "", "Bus Tracker API key (overrides config and "+config.APIKeyEnv+")")
	rootCmd.PersistentFlags().StringVarP(&baseURL, "base-url", "", "", "Bus Tracker API base URL")
	rootCmd.PersistentFlags().StringVarP(&cacheBackend, "cache", "", "", "Response cache: memory, filesystem or redis")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "", false, "Enable debug logging")
	rootCmd.AddCommand(busTimesCmd)
	rootCmd.AddCommand(journeyCmd)
	rootCmd.AddCommand(refreshCmd)
	rootCmd.AddCommand(serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Sets up logging and loads the configuration, with flags taking
// precedence over the file.
func setup(cmd *cobra.Command, args []string) error {
	if os.Getenv("MYBUS_LOG_FORMAT") != "JSON" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	if debug {
		log.Logger = log.Logger.Level(zerolog.DebugLevel)
	} else {
		log.Logger = log.Logger.Level(zerolog.InfoLevel)
	}

	var err error
	cfg, err = config.Load(configPath)
	if err != nil {
		return err
	}

	if apiKey != "" {
		cfg.API.Key = apiKey
	}
	if baseURL != "" {
		cfg.API.BaseURL = baseURL
	}
	if cacheBackend != "" {
		cfg.Cache.Backend = cacheBackend
		if cacheBackend == "filesystem" && cfg.Cache.Path == "" {
			cfg.Cache.Path = "./mybus-cache.json"
		}
	}

	return cfg.Validate()
}

// Builds a manager from the loaded configuration. The returned
// storage must be closed by the caller.
func loadManager() (*livetimes.Manager, storage.Storage, error) {
	if cfg.API.Key == "" {
		log.Warn().Msg("No API key configured, requests will likely be rejected")
	}

	s, err := cfg.NewStorage()
	if err != nil {
		return nil, nil, err
	}

	m, err := cfg.NewManager(s)
	if err != nil {
		s.Close()
		return nil, nil, err
	}

	return m, s, nil
}
