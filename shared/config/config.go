package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// envPrefix is used for environment overrides, e.g. FORO_STORAGE_DRIVER=redis
// or FORO_STORAGE_PG_HOST=db.
const envPrefix = "FORO"

type Config struct {
	Storage Storage `yaml:"storage"`
	Keys    Keys    `yaml:"keys"`
	Auth    Auth    `yaml:"auth"`
	Forum   Forum   `yaml:"forum"`
	HTTP    HTTP    `yaml:"http"`
	Log     Log     `yaml:"log"`
}

type Storage struct {
	Driver    string        `yaml:"driver" split_words:"true"` // memory, fs, postgres, redis, sqlite
	KeyPrefix string        `yaml:"key_prefix" split_words:"true"`
	OpTimeout time.Duration `yaml:"op_timeout" split_words:"true"`
	Dir       string        `yaml:"dir" split_words:"true"` // fs driver
	Pg        Pg            `yaml:"pg"`
	Redis     Redis         `yaml:"redis"`
	Sqlite    Sqlite        `yaml:"sqlite"`
}

type Pg struct {
	Host     string `yaml:"host" split_words:"true"`
	Port     int    `yaml:"port" split_words:"true"`
	User     string `yaml:"user" split_words:"true"`
	Password string `yaml:"password" split_words:"true"`
	Dbname   string `yaml:"dbname" split_words:"true"`
	SSLMode  string `yaml:"sslmode" split_words:"true"`
}

func (p Pg) DSN() string {
	sslMode := p.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Dbname, sslMode)
}

type Redis struct {
	Addr     string `yaml:"addr" split_words:"true"` // host:port or redis:// URL
	Password string `yaml:"password" split_words:"true"`
	DB       int    `yaml:"db" split_words:"true"`
}

type Sqlite struct {
	Path string `yaml:"path" split_words:"true"`
}

// Keys are the three storage keys the forum state lives under.
type Keys struct {
	Users       string `yaml:"users" split_words:"true"`
	Topics      string `yaml:"topics" split_words:"true"`
	CurrentUser string `yaml:"current_user" split_words:"true"`
}

type Auth struct {
	PasswordMinLen int `yaml:"password_min_len" split_words:"true"`
	BcryptCost     int `yaml:"bcrypt_cost" split_words:"true"`
}

type Forum struct {
	TitleMaxLen   int `yaml:"title_max_len" split_words:"true"`
	ContentMaxLen int `yaml:"content_max_len" split_words:"true"`
}

type HTTP struct {
	Port           int           `yaml:"port" split_words:"true"`
	ReadTimeout    time.Duration `yaml:"read_timeout" split_words:"true"`
	WriteTimeout   time.Duration `yaml:"write_timeout" split_words:"true"`
	AllowedOrigins []string      `yaml:"allowed_origins" split_words:"true"`
	SecureCookies  bool          `yaml:"secure_cookies" split_words:"true"`

	// Login and register attempts per client IP. Zero rate disables the limit.
	AuthRatePerMinute float64 `yaml:"auth_rate_per_minute" split_words:"true"`
	AuthBurst         int     `yaml:"auth_burst" split_words:"true"`
}

type Log struct {
	Level string `yaml:"level" split_words:"true"`
	JSON  bool   `yaml:"json" split_words:"true"`
}

// Default returns a configuration that works without any file: in-memory storage,
// the forum_* storage keys and the stock form limits.
func Default() *Config {
	return &Config{
		Storage: Storage{
			Driver:    "memory",
			OpTimeout: 2 * time.Second,
			Dir:       "data",
			Sqlite:    Sqlite{Path: "foro.db"},
		},
		Keys: Keys{
			Users:       "forum_users",
			Topics:      "forum_topics",
			CurrentUser: "forum_currentUser",
		},
		Auth: Auth{
			PasswordMinLen: 6,
			BcryptCost:     10,
		},
		Forum: Forum{
			TitleMaxLen:   200,
			ContentMaxLen: 10_000,
		},
		HTTP: HTTP{
			Port:         8080,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,

			AuthRatePerMinute: 12,
			AuthBurst:         10,
		},
		Log: Log{Level: "info"},
	}
}

// Validate checks fields that have no usable zero value.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "memory":
	case "fs":
		if c.Storage.Dir == "" {
			return fmt.Errorf("storage.dir is required for fs driver")
		}
	case "postgres":
		if c.Storage.Pg.Host == "" || c.Storage.Pg.Dbname == "" {
			return fmt.Errorf("storage.pg.host and storage.pg.dbname are required for postgres driver")
		}
	case "redis":
		if c.Storage.Redis.Addr == "" {
			return fmt.Errorf("storage.redis.addr is required for redis driver")
		}
	case "sqlite":
		if c.Storage.Sqlite.Path == "" {
			return fmt.Errorf("storage.sqlite.path is required for sqlite driver")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.Keys.Users == "" || c.Keys.Topics == "" || c.Keys.CurrentUser == "" {
		return fmt.Errorf("keys.users, keys.topics and keys.current_user are required")
	}
	if c.Keys.Users == c.Keys.Topics || c.Keys.Users == c.Keys.CurrentUser || c.Keys.Topics == c.Keys.CurrentUser {
		return fmt.Errorf("storage keys must be distinct")
	}
	if c.Auth.PasswordMinLen < 1 {
		return fmt.Errorf("auth.password_min_len must be positive")
	}
	if c.HTTP.AuthRatePerMinute > 0 && c.HTTP.AuthBurst < 1 {
		return fmt.Errorf("http.auth_burst must be positive when rate limiting is enabled")
	}
	if c.Storage.OpTimeout <= 0 {
		return fmt.Errorf("storage.op_timeout must be positive")
	}
	return nil
}

// Load reads configPath on top of Default and applies FORO_* environment overrides.
// An empty configPath skips the file.
func Load(configPath string) (*Config, error) {
	cfg := Default()
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("can't read config file %s: %w", configPath, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("can't unmarshal config file %s: %w", configPath, err)
		}
	}
	if err := envconfig.Process(envPrefix, cfg); err != nil {
		return nil, fmt.Errorf("can't apply environment overrides: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic(err.Error())
	}
	return cfg
}
