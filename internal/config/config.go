package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Server    ServerConfig    `envconfig:"SERVER"`
	Mongo     MongoConfig     `envconfig:"MONGO"`
	Redis     RedisConfig     `envconfig:"REDIS"`
	JWT       JWTConfig       `envconfig:"JWT"`
	Auth      AuthConfig      `envconfig:"AUTH"`
	Logging   LoggingConfig   `envconfig:"LOG"`
	CORS      CORSConfig      `envconfig:"CORS"`
	RateLimit RateLimitConfig `envconfig:"RATE_LIMIT"`
	Sidebar   SidebarConfig   `envconfig:"SIDEBAR"`
}

type ServerConfig struct {
	Port            string        `envconfig:"PORT" default:"8080"`
	ReadTimeout     time.Duration `envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"WRITE_TIMEOUT" default:"15s"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
	Production      bool          `envconfig:"PRODUCTION" default:"false"`
	// runs the sidebar projection worker inside the API process
	EmbeddedWorker bool `envconfig:"EMBEDDED_WORKER" default:"true"`
}

type MongoConfig struct {
	URI            string        `envconfig:"URI" default:"mongodb://localhost:27017"`
	Database       string        `envconfig:"DATABASE" default:"janseva"`
	ConnectTimeout time.Duration `envconfig:"CONNECT_TIMEOUT" default:"10s"`
}

type RedisConfig struct {
	Addr     string `envconfig:"ADDR" default:"localhost:6379"`
	Password string `envconfig:"PASSWORD"`
	DB       int    `envconfig:"DB" default:"0"`
}

type JWTConfig struct {
	SigningKey string        `envconfig:"SIGNING_KEY" default:"default-signing-key-change-in-production"`
	Issuer     string        `envconfig:"ISSUER" default:"janseva-admin"`
	Expiry     time.Duration `envconfig:"EXPIRY" default:"24h"`
}

type AuthConfig struct {
	RefreshExpiry time.Duration `envconfig:"REFRESH_EXPIRY" default:"168h"`
}

type LoggingConfig struct {
	Level      string `envconfig:"LEVEL" default:"info"`
	Format     string `envconfig:"FORMAT" default:"text"`
	Filename   string `envconfig:"FILENAME" default:"logs/app.log"`
	MaxSize    int    `envconfig:"MAX_SIZE" default:"100"`
	MaxBackups int    `envconfig:"MAX_BACKUPS" default:"5"`
	MaxAge     int    `envconfig:"MAX_AGE" default:"30"`
	Compress   bool   `envconfig:"COMPRESS" default:"true"`
}

type CORSConfig struct {
	AllowedOrigins   []string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:5173"`
	AllowedMethods   []string `envconfig:"ALLOWED_METHODS" default:"GET,POST,PUT,PATCH,DELETE,OPTIONS"`
	AllowedHeaders   []string `envconfig:"ALLOWED_HEADERS" default:"Accept,Authorization,Content-Type,X-Request-ID"`
	ExposedHeaders   []string `envconfig:"EXPOSED_HEADERS" default:"X-Request-ID,X-Total-Count"`
	AllowCredentials bool     `envconfig:"ALLOW_CREDENTIALS" default:"true"`
	MaxAge           int      `envconfig:"MAX_AGE" default:"300"`
}

type RateLimitConfig struct {
	LoginRequests int           `envconfig:"LOGIN_REQUESTS" default:"10"`
	LoginWindow   time.Duration `envconfig:"LOGIN_WINDOW" default:"1m"`
}

type SidebarConfig struct {
	CacheTTL time.Duration `envconfig:"CACHE_TTL" default:"10m"`
	// cron spec for the periodic full rebuild, empty disables it
	RebuildSchedule string `envconfig:"REBUILD_SCHEDULE" default:"@every 1h"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.JWT.SigningKey == "" {
		return errors.New("JWT_SIGNING_KEY must not be empty")
	}
	if c.Server.Production && c.JWT.SigningKey == "default-signing-key-change-in-production" {
		return errors.New("JWT_SIGNING_KEY must be set in production")
	}
	if c.Mongo.Database == "" {
		return errors.New("MONGO_DATABASE must not be empty")
	}
	return nil
}

func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("0.0.0.0:%s", c.Port)
}
