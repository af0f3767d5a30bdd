package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

type HTTP struct {
	Host            string
	Port            int
	ReadTimeoutSec  int
	WriteTimeoutSec int
	IdleTimeoutSec  int
	// HandlerTimeoutMS bounds a single request; 0 disables the middleware.
	HandlerTimeoutMS int
	MaxBodyBytes     int64
	MaxInFlight      int
}

type AdminHTTP struct {
	Host string
	Port int
}

type App struct {
	Name  string
	Env   string
	HTTP  HTTP
	Admin AdminHTTP
}

type Rotate struct {
	Enable     bool
	Filename   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

type Log struct {
	Level  string
	JSON   bool
	Rotate Rotate
}

type JWT struct {
	Secret            string
	Issuer            string
	AccessTokenTTLMin int
}

type Security struct {
	BcryptCost int
	// RateLimit is requests per second per client IP; 0 disables it.
	RateLimit float64
	RateBurst int
	// GlobalRateLimit caps requests per second across all clients; 0 disables it.
	GlobalRateLimit float64
	GlobalRateBurst int
}

type Cors struct {
	AllowOrigins []string
}

type Redis struct {
	Addr          string `mapstructure:"addr"`
	Password      string `mapstructure:"password"`
	DB            int    `mapstructure:"db"`
	ProfileTTLSec int    `mapstructure:"profilettlsec"`
}

// Enabled reports whether a Redis address is configured.
func (r Redis) Enabled() bool { return r.Addr != "" }

type DB struct {
	Driver             string
	DSN                string
	Username           string
	Password           string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	AutoMigrate        bool
	LogLevel           string
	SlowThresholdMS    int
}

type Config struct {
	App      App
	Log      Log
	JWT      JWT
	Security Security
	Cors     Cors
	DB       DB
	Redis    Redis `mapstructure:"redis"`
}

var ErrMissingSecret = errors.New("jwt.secret must be set outside the local env")

const devSecret = "dev-only-change-me"

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "microblog")
	v.SetDefault("app.env", "local")
	v.SetDefault("app.http.host", "0.0.0.0")
	v.SetDefault("app.http.port", 8080)
	v.SetDefault("app.http.readtimeoutsec", 10)
	v.SetDefault("app.http.writetimeoutsec", 15)
	v.SetDefault("app.http.idletimeoutsec", 60)
	v.SetDefault("app.http.handlertimeoutms", 5000)
	v.SetDefault("app.http.maxbodybytes", 1<<20)
	v.SetDefault("app.http.maxinflight", 256)
	v.SetDefault("app.admin.host", "127.0.0.1")
	v.SetDefault("app.admin.port", 8081)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)
	v.SetDefault("log.rotate.filename", "logs/microblog.log")
	v.SetDefault("log.rotate.maxsizemb", 100)
	v.SetDefault("log.rotate.maxbackups", 7)
	v.SetDefault("log.rotate.maxagedays", 14)

	v.SetDefault("jwt.secret", devSecret)
	v.SetDefault("jwt.issuer", "microblog")
	v.SetDefault("jwt.accesstokenttlmin", 60)

	v.SetDefault("security.bcryptcost", 10)
	v.SetDefault("security.ratelimit", 20)
	v.SetDefault("security.rateburst", 40)
	v.SetDefault("security.globalratelimit", 500)
	v.SetDefault("security.globalrateburst", 1000)

	v.SetDefault("cors.alloworigins", []string{"*"})

	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.dsn", "file:microblog.db?_pragma=foreign_keys(1)&_time_format=sqlite")
	v.SetDefault("db.maxopenconns", 20)
	v.SetDefault("db.maxidleconns", 10)
	v.SetDefault("db.connmaxlifetimemin", 30)
	v.SetDefault("db.automigrate", true)
	v.SetDefault("db.loglevel", "warn")
	v.SetDefault("db.slowthresholdms", 200)

	v.SetDefault("redis.profilettlsec", 300)
}

// Load reads path (or $CONFIG_PATH, or ./configs/config.local.yaml) and
// overlays APP_* environment variables, e.g. APP_DB_DSN. A missing file
// is not an error; defaults and env still apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
		if path == "" {
			path = "./configs/config.local.yaml"
		}
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil && !errors.Is(err, os.ErrNotExist) {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.App.Env != "local" && c.App.Env != "test" && (c.JWT.Secret == "" || c.JWT.Secret == devSecret) {
		return nil, ErrMissingSecret
	}
	return &c, nil
}
