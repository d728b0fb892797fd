package config

import (
	"bytes"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type AppCfg struct {
	Name string
	Env  string
	Host string
	Port int
	// Origins allowed to call the API from a browser (the editing surface).
	CorsOrigins []string
}

type RootCfg struct {
	// Bearer token the identity gateway presents on every /api request.
	ApiBearerToken string
	// Header carrying the opaque caller principal.
	PrincipalHeader string
}

type LogCfg struct {
	Level string
}

type DBCfg struct {
	DSN         string
	MaxOpen     int
	MaxIdle     int
	AutoMigrate bool
}

type RedisCfg struct {
	Addr     string
	Password string
	DB       int
	PoolSize int
}

type MQCfg struct {
	URL        string
	Exchange   string
	SweepQueue string
	Prefetch   int
}

type S3Cfg struct {
	Endpoint     string
	Region       string
	AccessKey    string
	SecretKey    string
	Bucket       string
	UsePathStyle bool
	SSE          string
}

type StorageCfg struct {
	// "db" keeps chunk bodies in postgres, "s3" in the object store.
	Backend       string
	ChunkSize     int
	SweepAfterSec int
	// Largest declared asset size accepted by storeAssetMetadata.
	MaxAssetSize int64
	// How load picks one asset per editor kind when a version holds several.
	SelectStrategy string
}

type CacheCfg struct {
	PublicTTLSec int
}

type TelemetryCfg struct {
	Enabled      bool
	OtlpEndpoint string
	SampleRatio  float64
}

type Config struct {
	App       AppCfg
	Root      RootCfg
	Log       LogCfg
	Database  DBCfg
	Redis     RedisCfg
	RabbitMQ  MQCfg
	S3        S3Cfg
	Storage   StorageCfg
	Cache     CacheCfg
	Telemetry TelemetryCfg
}

const (
	StorageBackendDB = "db"
	StorageBackendS3 = "s3"

	DefaultChunkSize    = 1 << 20
	DefaultMaxAssetSize = 64 << 20
)

// ChunkSize returns the fixed chunk size, falling back to DefaultChunkSize.
func (c *Config) ChunkSize() int {
	if c.Storage.ChunkSize <= 0 {
		return DefaultChunkSize
	}
	return c.Storage.ChunkSize
}

func (c *Config) MaxAssetSize() int64 {
	if c.Storage.MaxAssetSize <= 0 {
		return DefaultMaxAssetSize
	}
	return c.Storage.MaxAssetSize
}

func (c *Config) SweepAfter() time.Duration {
	if c.Storage.SweepAfterSec <= 0 {
		return time.Hour
	}
	return time.Duration(c.Storage.SweepAfterSec) * time.Second
}

func (c *Config) PublicCacheTTL() time.Duration {
	if c.Cache.PublicTTLSec <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(c.Cache.PublicTTLSec) * time.Second
}

func Load() (*Config, error) {
	base := viper.New()
	base.SetConfigName("config")
	base.SetConfigType("yaml")
	base.AddConfigPath("./configs")
	base.AddConfigPath(".")
	base.AutomaticEnv()
	base.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	base.SetEnvPrefix("APP") // e.g. APP_APP_PORT -> app.port

	// Defaults apply whether or not a file exists
	setDefaults(base)

	if err := base.ReadInConfig(); err == nil {
		// Expand ${ENV} once before parsing the file
		path := base.ConfigFileUsed()
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return parse(string(raw))
	}

	// No file: env + defaults only
	cfg := new(Config)
	if err := base.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// parse expands ${ENV} in a yaml document and reads it on top of env and defaults.
func parse(raw string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewBufferString(os.ExpandEnv(raw))); err != nil {
		return nil, err
	}
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix("APP")
	setDefaults(v)

	cfg := new(Config)
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "sitestore")
	v.SetDefault("app.env", "debug")
	v.SetDefault("app.host", "0.0.0.0")
	v.SetDefault("app.port", 8080)
	v.SetDefault("app.corsOrigins", []string{"*"})
	v.SetDefault("root.apiBearerToken", "sitestore")
	v.SetDefault("root.principalHeader", "X-Principal-Id")
	v.SetDefault("log.level", "info")
	v.SetDefault("database.maxOpen", 20)
	v.SetDefault("database.maxIdle", 5)
	v.SetDefault("redis.poolSize", 10)
	v.SetDefault("rabbitmq.exchange", "sitestore.events")
	v.SetDefault("rabbitmq.sweepQueue", "sitestore.sweep")
	v.SetDefault("rabbitmq.prefetch", 10)
	v.SetDefault("s3.region", "auto")
	v.SetDefault("s3.usePathStyle", true)
	v.SetDefault("storage.backend", StorageBackendDB)
	v.SetDefault("storage.chunkSize", DefaultChunkSize)
	v.SetDefault("storage.sweepAfterSec", 3600)
	v.SetDefault("storage.maxAssetSize", DefaultMaxAssetSize)
	v.SetDefault("storage.selectStrategy", "canonical_first")
	v.SetDefault("cache.publicTTLSec", 300)
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.sampleRatio", 1.0)
}
