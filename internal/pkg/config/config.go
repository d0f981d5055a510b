package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/ougirez/cbmreport/internal/pkg/constants"
	"github.com/spf13/viper"
)

type DB struct {
	DSN            string `mapstructure:"dsn"`
	MaxConns       int32  `mapstructure:"max_conns"`
	Automigrate    bool   `mapstructure:"automigrate"`
	ConnectRetries uint64 `mapstructure:"connect_retries"`
}

type HTTP struct {
	Addr         string   `mapstructure:"addr"`
	AllowOrigins []string `mapstructure:"allow_origins"`
}

type Chunking struct {
	ChunkSize int `mapstructure:"chunk_size"`
}

type Cache struct {
	Backend string `mapstructure:"backend"`
}

type Redis struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

type Logger struct {
	Level string `mapstructure:"level"`
}

type Config struct {
	DB      DB       `mapstructure:"db"`
	HTTP    HTTP     `mapstructure:"http"`
	Ingest  Chunking `mapstructure:"ingest"`
	Catalog Chunking `mapstructure:"catalog"`
	Cache   Cache    `mapstructure:"cache"`
	Redis   Redis    `mapstructure:"redis"`
	Logger  Logger   `mapstructure:"logger"`
}

func setDefaults() {
	viper.SetDefault(constants.ViperDBMaxConnsKey, 10)
	viper.SetDefault(constants.ViperDBAutomigrateKey, true)
	viper.SetDefault(constants.ViperDBConnectRetriesKey, 5)
	viper.SetDefault(constants.ViperHTTPAddrKey, ":8080")
	viper.SetDefault(constants.ViperHTTPAllowOriginsKey, []string{"http://localhost:3000"})
	viper.SetDefault(constants.ViperIngestChunkSizeKey, constants.DefaultChunkSize)
	viper.SetDefault(constants.ViperCatalogChunkSizeKey, constants.DefaultChunkSize)
	viper.SetDefault(constants.ViperCacheBackendKey, "memory")
	viper.SetDefault(constants.ViperRedisPrefixKey, "cbmreport")
	viper.SetDefault(constants.ViperLoggerLevelKey, "info")
}

// Load reads .env (if present), the optional config file and the environment.
// Env vars use upper case with underscores, e.g. DB_DSN for db.dsn.
func Load(cfgFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("godotenv.Load: %w", err)
	}

	setDefaults()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		viper.SetConfigName("config")
		viper.AddConfigPath("./config")
		viper.AddConfigPath("/etc/cbmreport")
		if err := viper.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	// AutomaticEnv only applies to keys viper already knows about.
	for _, key := range []string{constants.ViperDBDSNKey, constants.ViperRedisAddrKey, constants.ViperRedisPassKey, constants.ViperRedisDBKey} {
		_ = viper.BindEnv(key)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.DB.DSN == "" {
		return nil, fmt.Errorf("%s is required", constants.ViperDBDSNKey)
	}
	if cfg.Ingest.ChunkSize <= 0 {
		cfg.Ingest.ChunkSize = constants.DefaultChunkSize
	}
	if cfg.Catalog.ChunkSize <= 0 {
		cfg.Catalog.ChunkSize = constants.DefaultChunkSize
	}

	return &cfg, nil
}
