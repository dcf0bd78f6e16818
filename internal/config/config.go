package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"time"
)

// Config представляет основную конфигурацию feedloader.
// Содержит настройки сервера, логгера, движка ленты, кэша, базы данных и список лент.
type Config struct {
	Server   ServerConfig   `json:"server"`
	Logger   LoggerConfig   `json:"logger"`
	Engine   EngineConfig   `json:"engine"`
	Cache    CacheConfig    `json:"cache"`
	Database DatabaseConfig `json:"database"`
	Feeds    []FeedConfig   `json:"feeds"`
}

// ServerConfig содержит настройки эталонного HTTP-сервера страниц.
type ServerConfig struct {
	Address string `json:"address"`
}

// LoggerConfig содержит настройки системы логирования.
// Output и ErrorOutput принимают "stderr", "stdout" или путь к файлу.
type LoggerConfig struct {
	Level       string `json:"level"`
	Output      string `json:"output"`
	ErrorOutput string `json:"error_output"`
}

// EngineConfig содержит параметры движка подгрузки ленты.
type EngineConfig struct {
	FetchTimeout string `json:"fetch_timeout"`
	PageSize     int    `json:"page_size"`
	Lookahead    int    `json:"lookahead"`
}

// Timeout возвращает распарсенный таймаут запроса. Validate гарантирует корректность.
func (c EngineConfig) Timeout() time.Duration {
	d, err := time.ParseDuration(c.FetchTimeout)
	if err != nil {
		return DefaultFetchTimeout
	}
	return d
}

// Поддерживаемые бэкенды кэша.
const (
	CacheNone     = "none"
	CacheMemory   = "memory"
	CacheRedis    = "redis"
	CachePostgres = "postgres"
)

// CacheConfig описывает хранилище для режима cache-first.
type CacheConfig struct {
	Backend    string      `json:"backend"`
	MemorySize int         `json:"memory_size"`
	Redis      RedisConfig `json:"redis"`
}

// RedisConfig содержит параметры подключения к Redis.
// TTL "0" или пустая строка означают хранение без срока.
type RedisConfig struct {
	Addr     string `json:"addr"`
	Password string `json:"password"`
	DB       int    `json:"db"`
	Prefix   string `json:"prefix"`
	TTL      string `json:"ttl"`
}

// TTLDuration возвращает срок жизни записей в Redis.
func (c RedisConfig) TTLDuration() time.Duration {
	if c.TTL == "" {
		return 0
	}
	d, err := time.ParseDuration(c.TTL)
	if err != nil {
		return 0
	}
	return d
}

// FeedConfig описывает отдельную ленту, которую может смонтировать движок.
type FeedConfig struct {
	Name       string `json:"name"`
	URL        string `json:"url"`
	Kind       string `json:"kind"`
	StartPage  int    `json:"start_page"`
	Total      *int   `json:"total,omitempty"`
	CacheFirst bool   `json:"cache_first"`
	CountField string `json:"count_field"`
	// ItemsField - имя массива элементов в плоском ответе; по умолчанию "items".
	ItemsField string `json:"items_field"`
}

// DatabaseConfig содержит параметры подключения к PostgreSQL.
type DatabaseConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
	DBName   string `json:"dbname"`
	SSLMode  string `json:"sslmode"`
}

// DSN возвращает строку подключения к PostgreSQL в формате URI.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Username,
		c.Password,
		c.Host,
		c.Port,
		c.DBName,
		c.SSLMode)
}

const (
	DefaultFetchTimeout = 9 * time.Second
	DefaultPageSize     = 10
	DefaultLookahead    = 150
)

// Load загружает конфигурацию из JSON-файла поверх значений по умолчанию.
func Load(configPath string) (*Config, error) {
	cfg := New()
	fileData, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}
	if err := json.Unmarshal(fileData, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse JSON from file %s: %w", configPath, err)
	}
	return cfg, nil
}

// New создает новый экземпляр Config с значениями по умолчанию.
func New() *Config {
	return &Config{
		Server: ServerConfig{
			Address: ":8080",
		},
		Logger: LoggerConfig{
			Level:       "info",
			Output:      "stderr",
			ErrorOutput: "stderr",
		},
		Engine: EngineConfig{
			FetchTimeout: DefaultFetchTimeout.String(),
			PageSize:     DefaultPageSize,
			Lookahead:    DefaultLookahead,
		},
		Cache: CacheConfig{
			Backend:    CacheMemory,
			MemorySize: 512,
			Redis: RedisConfig{
				Addr:   "localhost:6379",
				Prefix: "feedloader:page:",
			},
		},
		Database: DatabaseConfig{
			Host:    "localhost",
			Port:    5432,
			SSLMode: "disable",
		},
		Feeds: []FeedConfig{},
	}
}

// Feed возвращает конфигурацию ленты по имени.
func (c *Config) Feed(name string) (FeedConfig, bool) {
	for _, f := range c.Feeds {
		if f.Name == name {
			return f, true
		}
	}
	return FeedConfig{}, false
}

// Validate проверяет корректность конфигурации.
// Возвращает ошибку с описанием первой найденной проблемы.
func (c *Config) Validate() error {
	d, err := time.ParseDuration(c.Engine.FetchTimeout)
	if err != nil {
		return fmt.Errorf("invalid engine.fetch_timeout: %w", err)
	}
	if d <= 0 {
		return fmt.Errorf("engine.fetch_timeout must be positive")
	}
	if c.Engine.PageSize <= 0 {
		return fmt.Errorf("engine.page_size must be a positive number")
	}
	if c.Engine.Lookahead <= 0 {
		return fmt.Errorf("engine.lookahead must be a positive number")
	}
	switch c.Cache.Backend {
	case CacheNone, CacheMemory:
	case CacheRedis:
		if c.Cache.Redis.Addr == "" {
			return fmt.Errorf("cache.redis.addr is not set")
		}
		if c.Cache.Redis.TTL != "" {
			if _, err := time.ParseDuration(c.Cache.Redis.TTL); err != nil {
				return fmt.Errorf("invalid cache.redis.ttl: %w", err)
			}
		}
	case CachePostgres:
		if err := c.Database.validate(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown cache.backend: %q", c.Cache.Backend)
	}
	if c.Cache.Backend == CacheMemory && c.Cache.MemorySize <= 0 {
		return fmt.Errorf("cache.memory_size must be a positive number")
	}
	seen := make(map[string]bool, len(c.Feeds))
	for _, feed := range c.Feeds {
		if feed.Name == "" {
			return fmt.Errorf("feed name cannot be empty for url: %s", feed.URL)
		}
		if seen[feed.Name] {
			return fmt.Errorf("duplicate feed name: %s", feed.Name)
		}
		seen[feed.Name] = true
		if _, err := url.ParseRequestURI(feed.URL); err != nil {
			return fmt.Errorf("invalid url in feeds: %s", feed.URL)
		}
		if feed.StartPage < 0 {
			return fmt.Errorf("feed %s: start_page must not be negative", feed.Name)
		}
		if feed.Total != nil && *feed.Total < 0 {
			return fmt.Errorf("feed %s: total must not be negative", feed.Name)
		}
	}
	return nil
}

// ValidateServer проверяет параметры, нужные эталонному серверу страниц.
func (c *Config) ValidateServer() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Server.Address == "" {
		return fmt.Errorf("server address is not set")
	}
	return c.Database.validate()
}

func (c *DatabaseConfig) validate() error {
	if c.Host == "" {
		return fmt.Errorf("database host is not set")
	}
	if c.Username == "" {
		return fmt.Errorf("database username is not set")
	}
	if c.Password == "" {
		return fmt.Errorf("database password is not set")
	}
	return nil
}
