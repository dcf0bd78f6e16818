package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, `{
		"feeds": [
			{"name": "stories", "url": "http://localhost:8080/api/feeds/stories", "kind": "feed"},
			{"name": "topics", "url": "http://localhost:8080/api/topics", "kind": "topic", "cache_first": true, "total": 0}
		]
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 9*time.Second, cfg.Engine.Timeout())
	assert.Equal(t, DefaultPageSize, cfg.Engine.PageSize)
	assert.Equal(t, DefaultLookahead, cfg.Engine.Lookahead)
	assert.Equal(t, CacheMemory, cfg.Cache.Backend)
	require.Len(t, cfg.Feeds, 2)

	topics, ok := cfg.Feed("topics")
	require.True(t, ok)
	assert.True(t, topics.CacheFirst)
	require.NotNil(t, topics.Total)
	assert.Equal(t, 0, *topics.Total)

	stories, ok := cfg.Feed("stories")
	require.True(t, ok)
	assert.Nil(t, stories.Total)

	_, ok = cfg.Feed("missing")
	assert.False(t, ok)
}

func TestLoad_MissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoad_InvalidJSON(t *testing.T) {
	cfg, err := Load(writeConfig(t, `{"engine": `))
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse JSON")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(c *Config) {},
		},
		{
			name:    "bad timeout",
			mutate:  func(c *Config) { c.Engine.FetchTimeout = "soon" },
			wantErr: "invalid engine.fetch_timeout",
		},
		{
			name:    "zero page size",
			mutate:  func(c *Config) { c.Engine.PageSize = 0 },
			wantErr: "engine.page_size",
		},
		{
			name:    "zero lookahead",
			mutate:  func(c *Config) { c.Engine.Lookahead = 0 },
			wantErr: "engine.lookahead must be a positive number",
		},
		{
			name:    "unknown backend",
			mutate:  func(c *Config) { c.Cache.Backend = "memcached" },
			wantErr: "unknown cache.backend",
		},
		{
			name: "postgres backend needs database",
			mutate: func(c *Config) {
				c.Cache.Backend = CachePostgres
			},
			wantErr: "database username is not set",
		},
		{
			name: "bad redis ttl",
			mutate: func(c *Config) {
				c.Cache.Backend = CacheRedis
				c.Cache.Redis.TTL = "forever"
			},
			wantErr: "invalid cache.redis.ttl",
		},
		{
			name: "duplicate feed",
			mutate: func(c *Config) {
				c.Feeds = []FeedConfig{
					{Name: "a", URL: "http://example.com/a"},
					{Name: "a", URL: "http://example.com/b"},
				}
			},
			wantErr: "duplicate feed name",
		},
		{
			name: "invalid feed url",
			mutate: func(c *Config) {
				c.Feeds = []FeedConfig{{Name: "a", URL: "not a url"}}
			},
			wantErr: "invalid url in feeds",
		},
		{
			name: "negative total",
			mutate: func(c *Config) {
				total := -1
				c.Feeds = []FeedConfig{{Name: "a", URL: "http://example.com/a", Total: &total}}
			},
			wantErr: "total must not be negative",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateServer_RequiresDatabase(t *testing.T) {
	cfg := New()
	err := cfg.ValidateServer()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database username is not set")

	cfg.Database.Username = "feed"
	cfg.Database.Password = "secret"
	assert.NoError(t, cfg.ValidateServer())
}

func TestRedisConfig_TTLDuration(t *testing.T) {
	assert.Equal(t, time.Duration(0), RedisConfig{}.TTLDuration())
	assert.Equal(t, time.Hour, RedisConfig{TTL: "1h"}.TTLDuration())
}

func TestDatabaseConfig_DSN(t *testing.T) {
	db := DatabaseConfig{Host: "db", Port: 5433, Username: "u", Password: "p", DBName: "feeds", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@db:5433/feeds?sslmode=disable", db.DSN())
}
