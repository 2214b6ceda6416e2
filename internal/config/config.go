package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Store drivers.
const (
	DriverMemory   = "memory"
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

// Lock modes.
const (
	LockNone  = "none"
	LockLocal = "local"
	LockRedis = "redis"
)

// Config is the complete runtime configuration of the bot.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Line     LineConfig     `yaml:"line"`
	Store    StoreConfig    `yaml:"store"`
	Mongo    MongoConfig    `yaml:"mongo"`
	Postgres PostgresConfig `yaml:"postgres"`
	Redis    RedisConfig    `yaml:"redis"`
	Lock     LockConfig     `yaml:"lock"`
	Log      LogConfig      `yaml:"log"`
}

type ServerConfig struct {
	Port            string        `yaml:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type LineConfig struct {
	ChannelSecret      string `yaml:"channel_secret"`
	ChannelAccessToken string `yaml:"channel_access_token"`
}

// StoreConfig selects the backends. Flow overrides where EventLog documents live;
// empty means "same as Driver".
type StoreConfig struct {
	Driver string `yaml:"driver"`
	Flow   string `yaml:"flow"`

	// EncryptionKey is a base64 AES-256 key. When set, record content is
	// encrypted at rest. FallbackKeys decrypt content written under older keys.
	EncryptionKey string   `yaml:"encryption_key"`
	FallbackKeys  []string `yaml:"fallback_keys"`
}

type MongoConfig struct {
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`
}

type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

// LockConfig controls per-group serialization. The default "none" keeps the
// unguarded read-decide-write behaviour.
type LockConfig struct {
	Mode string        `yaml:"mode"`
	TTL  time.Duration `yaml:"ttl"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used when nothing else is supplied.
func Default() Config {
	return Config{
		Server: ServerConfig{Port: "8080", ShutdownTimeout: 5 * time.Second},
		Store:  StoreConfig{Driver: DriverMongo},
		Mongo:  MongoConfig{URI: "mongodb://localhost:27017", Database: "GroupLogBot"},
		Redis:  RedisConfig{Addr: "localhost:6379", Prefix: "grouplog:"},
		Lock:   LockConfig{Mode: LockNone, TTL: 30 * time.Second},
		Log:    LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads the YAML file at path (optional when empty or missing), then applies
// environment overrides on top of it.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			// No file: defaults plus environment.
		case err != nil:
			return cfg, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
			}
		}
	}

	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return cfg, err
	}
	cfg.Normalize()
	return cfg, nil
}

// Normalize lowercases and trims the enumerated settings (drivers, lock mode,
// log level and format) so every comparison downstream is exact.
func (c *Config) Normalize() {
	for _, v := range []*string{
		&c.Store.Driver,
		&c.Store.Flow,
		&c.Lock.Mode,
		&c.Log.Level,
		&c.Log.Format,
	} {
		*v = strings.ToLower(strings.TrimSpace(*v))
	}
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	str("PORT", &cfg.Server.Port)
	str("CHANNEL_SECRET", &cfg.Line.ChannelSecret)
	str("CHANNEL_ACCESS_TOKEN", &cfg.Line.ChannelAccessToken)
	str("GROUPLOG_STORE", &cfg.Store.Driver)
	str("GROUPLOG_FLOW_STORE", &cfg.Store.Flow)
	str("MONGODB_URI", &cfg.Mongo.URI)
	str("MONGODB_DATABASE", &cfg.Mongo.Database)
	str("DATABASE_URL", &cfg.Postgres.DSN)
	str("REDIS_ADDR", &cfg.Redis.Addr)
	str("REDIS_PASSWORD", &cfg.Redis.Password)
	str("GROUPLOG_LOCK", &cfg.Lock.Mode)
	str("GROUPLOG_LOG_LEVEL", &cfg.Log.Level)
	str("GROUPLOG_LOG_FORMAT", &cfg.Log.Format)
	str("GROUPLOG_ENCRYPTION_KEY", &cfg.Store.EncryptionKey)

	if v, ok := lookup("GROUPLOG_ENCRYPTION_FALLBACK_KEYS"); ok && v != "" {
		cfg.Store.FallbackKeys = nil
		for _, key := range strings.Split(v, ",") {
			if key = strings.TrimSpace(key); key != "" {
				cfg.Store.FallbackKeys = append(cfg.Store.FallbackKeys, key)
			}
		}
	}

	if v, ok := lookup("REDIS_DB"); ok && v != "" {
		db, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid REDIS_DB %q: %w", v, err)
		}
		cfg.Redis.DB = db
	}
	return nil
}

// FlowDriver returns the backend holding EventLog documents.
func (c Config) FlowDriver() string {
	if c.Store.Flow == "" {
		return c.Store.Driver
	}
	return c.Store.Flow
}

// UsesRedis reports whether any component needs a Redis client.
func (c Config) UsesRedis() bool {
	return strings.EqualFold(c.FlowDriver(), DriverRedis) || strings.EqualFold(c.Lock.Mode, LockRedis)
}

// EncryptionKeys decodes the active and fallback keys. It returns nil keys when
// encryption is disabled.
func (c Config) EncryptionKeys() (active []byte, fallback [][]byte, err error) {
	if c.Store.EncryptionKey == "" {
		return nil, nil, nil
	}
	decode := func(name, v string) ([]byte, error) {
		key, err := base64.StdEncoding.DecodeString(v)
		if err != nil {
			return nil, fmt.Errorf("%s is not valid base64: %w", name, err)
		}
		if len(key) != 32 {
			return nil, fmt.Errorf("%s must decode to 32 bytes, got %d", name, len(key))
		}
		return key, nil
	}

	active, err = decode("store.encryption_key", c.Store.EncryptionKey)
	if err != nil {
		return nil, nil, err
	}
	for i, v := range c.Store.FallbackKeys {
		key, err := decode(fmt.Sprintf("store.fallback_keys[%d]", i), v)
		if err != nil {
			return nil, nil, err
		}
		fallback = append(fallback, key)
	}
	return active, fallback, nil
}

// Validate checks the configuration is complete for serving webhooks.
func (c Config) Validate() error {
	var errs []error

	if c.Line.ChannelSecret == "" {
		errs = append(errs, errors.New("line.channel_secret (CHANNEL_SECRET) is required"))
	}
	if c.Line.ChannelAccessToken == "" {
		errs = append(errs, errors.New("line.channel_access_token (CHANNEL_ACCESS_TOKEN) is required"))
	}

	switch c.Store.Driver {
	case DriverMemory:
	case DriverMongo:
		if c.Mongo.URI == "" {
			errs = append(errs, errors.New("mongo.uri (MONGODB_URI) is required for the mongo store"))
		}
	case DriverPostgres:
		if c.Postgres.DSN == "" {
			errs = append(errs, errors.New("postgres.dsn (DATABASE_URL) is required for the postgres store"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store driver %q", c.Store.Driver))
	}

	if c.Store.Flow != "" && c.Store.Flow != c.Store.Driver && c.Store.Flow != DriverRedis {
		errs = append(errs, fmt.Errorf("store.flow must be empty, %q or %q", c.Store.Driver, DriverRedis))
	}

	switch strings.ToLower(c.Lock.Mode) {
	case "", LockNone, LockLocal, LockRedis:
	default:
		errs = append(errs, fmt.Errorf("unknown lock mode %q", c.Lock.Mode))
	}

	if c.Store.EncryptionKey != "" {
		if _, _, err := c.EncryptionKeys(); err != nil {
			errs = append(errs, err)
		}
	}

	if c.UsesRedis() && c.Redis.Addr == "" {
		errs = append(errs, errors.New("redis.addr (REDIS_ADDR) is required"))
	}

	return errors.Join(errs...)
}
