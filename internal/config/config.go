package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Cache     CacheConfig
	Log       LogConfig
	Generator GeneratorConfig
	Ingest    IngestConfig
	Worker    WorkerConfig
}

type ServerConfig struct {
	Host string
	Port int
	Env  string
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxConns        int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type CacheConfig struct {
	QueryCacheTTL time.Duration
}

type LogConfig struct {
	Level string
}

// GeneratorConfig controls catalog loading and the sampling retry ladder.
type GeneratorConfig struct {
	BoundaryPath string
	WeightsPath  string
	// PointAttempts is the number of bounding-box draws per region pick.
	PointAttempts int
	// MaxRegionDraws bounds the outer region re-draw loop; exhaustion is an
	// error, never an endless retry.
	MaxRegionDraws int
	// ChunkSize is the progress-reporting granularity during generation.
	ChunkSize int
}

type IngestConfig struct {
	BatchSize int
}

type WorkerConfig struct {
	Enabled           bool
	ConsumerGroup     string
	StreamReadTimeout time.Duration
	MaxRetries        int
}

func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: viper.GetString("API_HOST"),
			Port: viper.GetInt("API_PORT"),
			Env:  viper.GetString("API_ENV"),
		},
		Database: DatabaseConfig{
			Host:            viper.GetString("DB_HOST"),
			Port:            viper.GetInt("DB_PORT"),
			User:            viper.GetString("DB_USER"),
			Password:        viper.GetString("DB_PASSWORD"),
			DBName:          viper.GetString("DB_NAME"),
			SSLMode:         viper.GetString("DB_SSLMODE"),
			MaxConns:        viper.GetInt("DB_MAX_CONNS"),
			MaxIdleConns:    viper.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: time.Duration(viper.GetInt("DB_CONN_MAX_LIFETIME")) * time.Second,
			ConnMaxIdleTime: time.Duration(viper.GetInt("DB_CONN_MAX_IDLE_TIME")) * time.Second,
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetInt("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		Cache: CacheConfig{
			QueryCacheTTL: time.Duration(viper.GetInt("QUERY_CACHE_TTL")) * time.Second,
		},
		Log: LogConfig{
			Level: viper.GetString("LOG_LEVEL"),
		},
		Generator: GeneratorConfig{
			BoundaryPath:   viper.GetString("GENERATOR_BOUNDARY_PATH"),
			WeightsPath:    viper.GetString("GENERATOR_WEIGHTS_PATH"),
			PointAttempts:  viper.GetInt("GENERATOR_POINT_ATTEMPTS"),
			MaxRegionDraws: viper.GetInt("GENERATOR_MAX_REGION_DRAWS"),
			ChunkSize:      viper.GetInt("GENERATOR_CHUNK_SIZE"),
		},
		Ingest: IngestConfig{
			BatchSize: viper.GetInt("INGEST_BATCH_SIZE"),
		},
		Worker: WorkerConfig{
			Enabled:           viper.GetBool("WORKER_ENABLED"),
			ConsumerGroup:     viper.GetString("WORKER_CONSUMER_GROUP"),
			StreamReadTimeout: time.Duration(viper.GetInt("WORKER_STREAM_READ_TIMEOUT")) * time.Millisecond,
			MaxRetries:        viper.GetInt("WORKER_MAX_RETRIES"),
		},
	}

	// Set default values if not provided
	if cfg.Cache.QueryCacheTTL == 0 {
		cfg.Cache.QueryCacheTTL = 5 * time.Minute
	}
	if cfg.Generator.PointAttempts == 0 {
		cfg.Generator.PointAttempts = 10
	}
	if cfg.Generator.MaxRegionDraws == 0 {
		cfg.Generator.MaxRegionDraws = 100
	}
	if cfg.Generator.ChunkSize == 0 {
		cfg.Generator.ChunkSize = 1000
	}
	if cfg.Ingest.BatchSize == 0 {
		cfg.Ingest.BatchSize = 500
	}
	if cfg.Worker.ConsumerGroup == "" {
		cfg.Worker.ConsumerGroup = "geometry-backfill-workers"
	}
	if cfg.Worker.StreamReadTimeout == 0 {
		cfg.Worker.StreamReadTimeout = 5000 * time.Millisecond
	}
	if cfg.Worker.MaxRetries == 0 {
		cfg.Worker.MaxRetries = 3
	}

	return cfg, nil
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}
