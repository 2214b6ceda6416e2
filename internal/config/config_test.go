package config

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, DriverMongo, cfg.Store.Driver)
	assert.Equal(t, "GroupLogBot", cfg.Mongo.Database)
	assert.Equal(t, LockNone, cfg.Lock.Mode)
	assert.Equal(t, DriverMongo, cfg.FlowDriver())
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grouplog.yaml")
	content := `
server:
  port: "9000"
  shutdown_timeout: 10s
line:
  channel_secret: file-secret
  channel_access_token: file-token
store:
  driver: postgres
  flow: redis
postgres:
  dsn: postgres://localhost/grouplog
lock:
  mode: redis
  ttl: 15s
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("CHANNEL_SECRET", "env-secret")
	t.Setenv("REDIS_DB", "3")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "env-secret", cfg.Line.ChannelSecret, "environment wins over file")
	assert.Equal(t, "file-token", cfg.Line.ChannelAccessToken)
	assert.Equal(t, DriverPostgres, cfg.Store.Driver)
	assert.Equal(t, DriverRedis, cfg.FlowDriver())
	assert.Equal(t, 15*time.Second, cfg.Lock.TTL)
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.True(t, cfg.UsesRedis())
	assert.NoError(t, cfg.Validate())
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestApplyEnv_InvalidRedisDB(t *testing.T) {
	cfg := Default()
	err := applyEnv(&cfg, func(key string) (string, bool) {
		if key == "REDIS_DB" {
			return "zero", true
		}
		return "", false
	})
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := Default()
	valid.Line = LineConfig{ChannelSecret: "s", ChannelAccessToken: "t"}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing secret", func(c *Config) { c.Line.ChannelSecret = "" }},
		{"missing token", func(c *Config) { c.Line.ChannelAccessToken = "" }},
		{"unknown driver", func(c *Config) { c.Store.Driver = "sqlite" }},
		{"postgres without dsn", func(c *Config) { c.Store.Driver = DriverPostgres }},
		{"flow on foreign driver", func(c *Config) { c.Store.Flow = DriverPostgres }},
		{"unknown lock", func(c *Config) { c.Lock.Mode = "zookeeper" }},
		{"short encryption key", func(c *Config) { c.Store.EncryptionKey = base64.StdEncoding.EncodeToString([]byte("short")) }},
		{"encryption key not base64", func(c *Config) { c.Store.EncryptionKey = "%%%" }},
		{"redis lock without addr", func(c *Config) { c.Lock.Mode = LockRedis; c.Redis.Addr = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestEncryptionKeys(t *testing.T) {
	active := base64.StdEncoding.EncodeToString(make([]byte, 32))
	old := base64.StdEncoding.EncodeToString([]byte("0123456789abcdef0123456789abcdef"))

	cfg := Default()
	require.NoError(t, applyEnv(&cfg, func(key string) (string, bool) {
		switch key {
		case "GROUPLOG_ENCRYPTION_KEY":
			return active, true
		case "GROUPLOG_ENCRYPTION_FALLBACK_KEYS":
			return " " + old + " ,", true
		}
		return "", false
	}))

	key, fallback, err := cfg.EncryptionKeys()
	require.NoError(t, err)
	assert.Len(t, key, 32)
	require.Len(t, fallback, 1)
	assert.Equal(t, []byte("0123456789abcdef0123456789abcdef"), fallback[0])

	key, fallback, err = Default().EncryptionKeys()
	require.NoError(t, err)
	assert.Nil(t, key)
	assert.Nil(t, fallback)
}

func TestLoad_NormalizesModes(t *testing.T) {
	t.Setenv("GROUPLOG_LOCK", "Redis")
	t.Setenv("GROUPLOG_STORE", " Memory ")
	t.Setenv("GROUPLOG_FLOW_STORE", "REDIS")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, LockRedis, cfg.Lock.Mode)
	assert.Equal(t, DriverMemory, cfg.Store.Driver)
	assert.Equal(t, DriverRedis, cfg.FlowDriver())
	assert.True(t, cfg.UsesRedis())
}

func TestUsesRedis_MixedCase(t *testing.T) {
	cfg := Default()
	cfg.Lock.Mode = "Redis"
	assert.True(t, cfg.UsesRedis(), "a mixed-case redis lock still needs a client")

	cfg = Default()
	cfg.Store.Flow = "ReDiS"
	assert.True(t, cfg.UsesRedis())

	cfg = Default()
	cfg.Lock.Mode = "Local"
	assert.False(t, cfg.UsesRedis())
}
