package config

import (
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"tablepoker-server/internal/util"
	"tablepoker-server/pkg/room"
)

// Ledger backends
const (
	LedgerMemory   = "memory"
	LedgerPostgres = "postgres"
	LedgerRedis    = "redis"
)

// Config provides configuration for the poker server
type Config struct {
	loaded         bool
	PGDSN          string `yaml:"pgDsn" envconfig:"pg_dsn"`
	MigrationsPath string `yaml:"migrationsPath" envconfig:"migrations_path"`
	Log            struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	JWT struct {
		PublicKey  string `yaml:"publicKey" envconfig:"public_key"`
		PrivateKey string `yaml:"privateKey" envconfig:"private_key"`
	} `yaml:"jwt"`
	Ledger struct {
		// Backend is one of memory, postgres, or redis
		Backend string `yaml:"backend"`
		// StarterBalance is granted by the memory ledger to unknown players
		StarterBalance int `yaml:"starterBalance" envconfig:"starter_balance"`
	} `yaml:"ledger"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Discord struct {
		Token   string `yaml:"token"`
		AppID   string `yaml:"appId" envconfig:"app_id"`
		GuildID string `yaml:"guildId" envconfig:"guild_id"`
	} `yaml:"discord"`
	Table room.Options `yaml:"table"`
}

var config Config

// DefaultConfig returns the configuration used when no file or environment overrides a value
func DefaultConfig() Config {
	c := Config{
		PGDSN:          "postgres://postgres@localhost:5432/postgres?sslmode=disable",
		MigrationsPath: "./sql",
		Table:          room.DefaultOptions(),
	}

	c.Log.Level = "info"
	c.Log.Format = "text"
	c.JWT.PublicKey = "public.pem"
	c.JWT.PrivateKey = "private.key"
	c.Ledger.Backend = LedgerPostgres
	c.Redis.Addr = "localhost:6379"

	return c
}

// Instance returns a singleton instance
// If the config hasn't been loaded, it will be loaded
func Instance() Config {
	if !config.loaded {
		if err := Load(); err != nil {
			panic(err)
		}
	}

	return config
}

// Load will load the configuration
// The yaml file named by POKER_CONFIG_FILE is optional. Environment variables prefixed with POKER_ win.
func Load() error {
	cfg := DefaultConfig()

	configFile := util.Getenv("POKER_CONFIG_FILE", "config.yaml")
	file, err := os.Open(configFile)
	if err == nil {
		defer file.Close()
		if err := yaml.NewDecoder(file).Decode(&cfg); err != nil {
			return err
		}
	} else if !os.IsNotExist(err) {
		return err
	}

	if err := envconfig.Process("poker", &cfg); err != nil {
		return err
	}

	if err := cfg.Table.Validate(); err != nil {
		return err
	}

	cfg.loaded = true
	config = cfg
	return nil
}
