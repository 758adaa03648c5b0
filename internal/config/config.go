package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/joho/godotenv"
)

// Config aggregates all runtime settings. It is loaded once at process start
// and treated as read-only afterwards.
type Config struct {
	AppName     string `env:"APP_NAME" envDefault:"identityd"`
	Environment string `env:"APP_ENV" envDefault:"development"`
	HTTP        HTTPConfig
	Mongo       MongoConfig
	Context     ContextConfig
	Logger      LoggerConfig
	Monitor     MonitorConfig
}

type HTTPConfig struct {
	Host         string        `env:"SERVER_HOST" envDefault:"0.0.0.0"`
	Port         string        `env:"SERVER_PORT" envDefault:"8080"`
	ReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"10s"`
	IdleTimeout  time.Duration `env:"SERVER_IDLE_TIMEOUT" envDefault:"120s"`
}

// MongoConfig names the backing store: endpoint, database and the two collections.
type MongoConfig struct {
	URI              string        `env:"MONGO_URI" envDefault:"mongodb://localhost:27017"`
	Database         string        `env:"MONGO_DATABASE" envDefault:"identity"`
	UserCollection   string        `env:"MONGO_USER_COLLECTION" envDefault:"users"`
	RoleCollection   string        `env:"MONGO_ROLE_COLLECTION" envDefault:"roles"`
	ConnectTimeout   time.Duration `env:"MONGO_CONNECT_TIMEOUT" envDefault:"10s"`
	BootstrapTimeout time.Duration `env:"MONGO_BOOTSTRAP_TIMEOUT" envDefault:"30s"`
	MaxPoolSize      uint64        `env:"MONGO_MAX_POOL_SIZE" envDefault:"100"`
}

type ContextConfig struct {
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT" envDefault:"5s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"`
}

type LoggerConfig struct {
	Level    string `env:"LOG_LEVEL" envDefault:"info"`
	Encoding string `env:"LOG_ENCODING" envDefault:"json"`
}

type MonitorConfig struct {
	Interval time.Duration `env:"MONITOR_INTERVAL" envDefault:"10s"`
}

// Load reads configuration from environment variables (optionally .env),
// applies defaults and validates the result.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")
	return parse(env.Options{})
}

// LoadFrom parses configuration from an explicit variable set instead of the process environment.
func LoadFrom(vars map[string]string) (*Config, error) {
	return parse(env.Options{Environment: vars})
}

func parse(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate checks the settings the stores cannot run without.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(&c.Mongo,
		validation.Field(&c.Mongo.URI, validation.Required),
		validation.Field(&c.Mongo.Database, validation.Required, validation.Length(1, 63)),
		validation.Field(&c.Mongo.UserCollection, validation.Required),
		validation.Field(&c.Mongo.RoleCollection, validation.Required, validation.NotIn(c.Mongo.UserCollection)),
		validation.Field(&c.Mongo.ConnectTimeout, validation.Min(time.Millisecond)),
		validation.Field(&c.Mongo.BootstrapTimeout, validation.Min(time.Millisecond)),
	); err != nil {
		return fmt.Errorf("mongo: %w", err)
	}
	return validation.ValidateStruct(&c.Logger,
		validation.Field(&c.Logger.Encoding, validation.In("json", "console")),
	)
}

// Address returns the HTTP listen address for the fasthttp server.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%s", c.HTTP.Host, c.HTTP.Port)
}
