package bootstrap

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

const (
	StorageRedis  = "redis"
	StorageMemory = "memory"

	maxBoardSize = 25
)

type Config struct {
	ServerPort       string `mapstructure:"SERVER_PORT"`
	RedisUrl         string `mapstructure:"REDIS_URL"`
	MongoUri         string `mapstructure:"MONGO_URI"`
	MongoDatabase    string `mapstructure:"MONGO_DATABASE"`
	IsLocalCors      bool   `mapstructure:"LOCAL_CORS"`
	BoardSize        int    `mapstructure:"BOARD_SIZE"`
	FullKo           bool   `mapstructure:"FULL_KO"`
	Storage          string `mapstructure:"STORAGE"`
	GameTTLHours     int    `mapstructure:"GAME_TTL_HOURS"`
	// SessionCacheSize bounds how many rebuilt game ledgers stay in memory.
	SessionCacheSize int    `mapstructure:"SESSION_CACHE_SIZE"`
}

var configKeys = []string{
	"SERVER_PORT", "REDIS_URL", "MONGO_URI", "MONGO_DATABASE", "LOCAL_CORS",
	"BOARD_SIZE", "FULL_KO", "STORAGE", "GAME_TTL_HOURS", "SESSION_CACHE_SIZE",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("MONGO_DATABASE", "go_rules")
	v.SetDefault("BOARD_SIZE", 19)
	v.SetDefault("FULL_KO", true)
	v.SetDefault("STORAGE", StorageMemory)
	v.SetDefault("GAME_TTL_HOURS", 24)
	v.SetDefault("SESSION_CACHE_SIZE", 1024)
}

// Setup reads cfgPath when it exists and lets environment variables
// override every key.
func Setup(cfgPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()
	for _, key := range configKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, err
		}
	}

	if cfgPath != "" {
		if _, err := os.Stat(cfgPath); err == nil {
			v.SetConfigFile(cfgPath)
			v.SetConfigType("env")
			if err := v.ReadInConfig(); err != nil {
				return nil, err
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if !ValidBoardSize(c.BoardSize) {
		return fmt.Errorf("BOARD_SIZE must be between 1 and %d, got %d", maxBoardSize, c.BoardSize)
	}
	if c.SessionCacheSize < 1 {
		return fmt.Errorf("SESSION_CACHE_SIZE must be positive, got %d", c.SessionCacheSize)
	}
	switch c.Storage {
	case StorageMemory:
	case StorageRedis:
		if c.RedisUrl == "" {
			return fmt.Errorf("REDIS_URL is required for %s storage", StorageRedis)
		}
	default:
		return fmt.Errorf("unknown STORAGE %q", c.Storage)
	}
	return nil
}

func ValidBoardSize(size int) bool {
	return size >= 1 && size <= maxBoardSize
}
