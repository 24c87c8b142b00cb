package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

type HTTP struct {
	Host              string   `mapstructure:"host"`
	Port              int      `mapstructure:"port"`
	ReadTimeoutSec    int      `mapstructure:"read_timeout_sec"`
	WriteTimeoutSec   int      `mapstructure:"write_timeout_sec"`
	IdleTimeoutSec    int      `mapstructure:"idle_timeout_sec"`
	RequestTimeoutSec int      `mapstructure:"request_timeout_sec"`
	MaxInFlight       int64    `mapstructure:"max_in_flight"`
	MaxBodyBytes      int64    `mapstructure:"max_body_bytes"`
	CORSOrigins       []string `mapstructure:"cors_origins"`
}

type App struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
	HTTP HTTP   `mapstructure:"http"`
}

type LogFile struct {
	Enable     bool   `mapstructure:"enable"`
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

type Log struct {
	Level string  `mapstructure:"level"`
	JSON  bool    `mapstructure:"json"`
	File  LogFile `mapstructure:"file"`
}

type DB struct {
	Driver             string `mapstructure:"driver"`
	DSN                string `mapstructure:"dsn"`
	Host               string `mapstructure:"host"`
	Port               int    `mapstructure:"port"`
	User               string `mapstructure:"user"`
	Password           string `mapstructure:"password"`
	Name               string `mapstructure:"name"`
	SSL                bool   `mapstructure:"ssl"`
	MaxOpenConns       int    `mapstructure:"max_open_conns"`
	MaxIdleConns       int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeMin int    `mapstructure:"conn_max_lifetime_min"`
	AutoMigrate        bool   `mapstructure:"auto_migrate"`
	LogLevel           string `mapstructure:"log_level"`
}

// Catalog configures the upstream movie catalog (TMDB).
type Catalog struct {
	BaseURL    string `mapstructure:"base_url"`
	APIKey     string `mapstructure:"api_key"`
	Language   string `mapstructure:"language"`
	TimeoutSec int    `mapstructure:"timeout_sec"`
}

type Auth struct {
	BcryptCost  int    `mapstructure:"bcrypt_cost"`
	RedirectURL string `mapstructure:"redirect_url"`
}

type Config struct {
	App     App     `mapstructure:"app"`
	Log     Log     `mapstructure:"log"`
	DB      DB      `mapstructure:"db"`
	Catalog Catalog `mapstructure:"catalog"`
	Auth    Auth    `mapstructure:"auth"`
}

const defaultConfigPath = "./configs/config.yaml"

// plain environment names used by the hosting platform, on top of APP_* overrides
var envAliases = map[string]string{
	"app.http.port":   "PORT",
	"catalog.api_key": "TMDB_API_KEY",
	"db.driver":       "DB_DRIVER",
	"db.host":         "DB_HOST",
	"db.port":         "DB_PORT",
	"db.user":         "DB_USER",
	"db.password":     "DB_PASSWORD",
	"db.name":         "DB_NAME",
	"db.ssl":          "DB_SSL",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "flickhub")
	v.SetDefault("app.env", "local")
	v.SetDefault("app.http.host", "0.0.0.0")
	v.SetDefault("app.http.port", 3000)
	v.SetDefault("app.http.read_timeout_sec", 10)
	v.SetDefault("app.http.write_timeout_sec", 30)
	v.SetDefault("app.http.idle_timeout_sec", 60)
	v.SetDefault("app.http.request_timeout_sec", 20)
	v.SetDefault("app.http.max_in_flight", 300)
	v.SetDefault("app.http.max_body_bytes", 1<<20)
	v.SetDefault("app.http.cors_origins", []string{})

	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)
	v.SetDefault("log.file.enable", false)
	v.SetDefault("log.file.filename", "logs/flickhub.log")
	v.SetDefault("log.file.max_size_mb", 100)
	v.SetDefault("log.file.max_backups", 7)
	v.SetDefault("log.file.max_age_days", 30)
	v.SetDefault("log.file.compress", true)

	v.SetDefault("db.driver", "mysql")
	v.SetDefault("db.dsn", "")
	v.SetDefault("db.host", "127.0.0.1")
	v.SetDefault("db.port", 0)
	v.SetDefault("db.user", "")
	v.SetDefault("db.password", "")
	v.SetDefault("db.name", "flickhub")
	v.SetDefault("db.ssl", false)
	v.SetDefault("db.max_open_conns", 10)
	v.SetDefault("db.max_idle_conns", 5)
	v.SetDefault("db.conn_max_lifetime_min", 30)
	v.SetDefault("db.auto_migrate", true)
	v.SetDefault("db.log_level", "warn")

	v.SetDefault("catalog.base_url", "https://api.themoviedb.org/3")
	v.SetDefault("catalog.api_key", "")
	v.SetDefault("catalog.language", "en-US")
	v.SetDefault("catalog.timeout_sec", 10)

	v.SetDefault("auth.bcrypt_cost", 12)
	v.SetDefault("auth.redirect_url", "/home")
}

// Load reads the optional YAML file at path (or CONFIG_PATH, or ./configs/config.yaml when it
// exists) and layers the environment on top. It is called once at process start.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		if _, err := os.Stat(defaultConfigPath); err == nil {
			path = defaultConfigPath
		}
	}
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range envAliases {
		// APP_* still wins: BindEnv checks names in order
		if err := v.BindEnv(key, "APP_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", env, err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	c.applyDerived()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) applyDerived() {
	c.DB.Driver = strings.ToLower(strings.TrimSpace(c.DB.Driver))
	if c.DB.Port == 0 {
		switch c.DB.Driver {
		case "postgres":
			c.DB.Port = 5432
		default:
			c.DB.Port = 3306
		}
	}
	c.Catalog.BaseURL = strings.TrimRight(c.Catalog.BaseURL, "/")
}

var (
	ErrMissingAPIKey     = errors.New("config: catalog api key (TMDB_API_KEY) is required")
	ErrUnsupportedDriver = errors.New("config: db.driver must be mysql or postgres")
)

func (c *Config) Validate() error {
	switch c.DB.Driver {
	case "mysql", "postgres":
	default:
		return ErrUnsupportedDriver
	}
	return nil
}

// RequireCatalog is checked by binaries that serve the catalog proxy.
func (c *Config) RequireCatalog() error {
	if c.Catalog.APIKey == "" {
		return ErrMissingAPIKey
	}
	return nil
}
