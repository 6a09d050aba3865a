// Package config provides configuration management for the key-value store.
// It loads settings from an optional YAML file and environment variables,
// with thread-safe singleton access. cmd/kvsd-server takes its data
// directory and worker-pool size from it, and uses Addr as the default for
// its --addr flag; it does not read Engine, and cmd/kvsd does not load the
// configuration at all.
package config

import (
	"log/slog"
	"os"
	"sync"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

// Engine names accepted by --engine and by persisted-state detection.
const (
	EngineKVS  = "kvs"
	EngineSled = "sled"
)

// Config holds all application configuration values.
type Config struct {
	DataDir    string `yaml:"DATA_DIR"`  // directory holding the log file / db subdirectory
	Addr       string `yaml:"ADDR"`      // bind/connect address, IP:PORT
	Engine     string `yaml:"ENGINE"`    // "kvs" or "sled"
	PoolSize   int    `yaml:"POOL_SIZE"` // number of workers in the server's worker pool
	ConfigPath string `yaml:"-"`         // path the config was loaded from, for diagnostics
}

// Defaults returns the built-in configuration used when no config file is
// present and no flags override it.
func Defaults() *Config {
	return &Config{
		DataDir:  ".",
		Addr:     "127.0.0.1:4000",
		Engine:   EngineKVS,
		PoolSize: 10,
	}
}

var (
	appConfig *Config
	once      sync.Once
	initErr   error
)

// LoadConfig reads configuration values from the YAML file at path, if
// present, layered over the built-in defaults, and optionally from a .env
// file. It uses a sync.Once so concurrent callers observe one load. A
// missing config file is not an error — Defaults() apply; a malformed one is.
func LoadConfig(path string) (*Config, error) {
	once.Do(func() {
		if err := godotenv.Load(); err != nil {
			slog.Debug("config: no .env file found or error loading it", "error", err)
		} else {
			slog.Debug("config: .env file loaded successfully")
		}

		cfg := Defaults()

		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			slog.Debug("config: no config file found, using defaults", "path", path)
		case err != nil:
			initErr = err
			return
		default:
			if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), cfg); err != nil {
				initErr = err
				return
			}
			cfg.ConfigPath = path
		}

		appConfig = cfg
	})
	if initErr != nil {
		return nil, initErr
	}
	return appConfig, nil
}

// GetConfig returns the singleton configuration instance.
// Panics if configuration has not been loaded yet.
func GetConfig() *Config {
	if appConfig == nil {
		panic("config not loaded - call LoadConfig() first")
	}
	return appConfig
}
