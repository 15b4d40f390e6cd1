package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string        `env:"PORT,      default=8080"`
	Env       string        `env:"ENV,       default=development"`
	JWTSecret string        `env:"JWT_SECRET"`
	JWTTTL    time.Duration `env:"JWT_TTL,   default=24h"`
	LogLevel  string        `env:"LOG_LEVEL, default=info"`

	// MaxUploadBytes caps the multipart body accepted for profile pictures.
	MaxUploadBytes int64 `env:"MAX_UPLOAD_BYTES, default=5242880"`

	Mongo        MongoConfig
	Redis        RedisConfig
	S3           S3Config
	Verification VerificationConfig
	Notify       NotifyConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=accounts"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

type S3Config struct {
	Bucket    string        `env:"S3_BUCKET,     default=profile-pictures"`
	Region    string        `env:"S3_REGION,     default=us-east-1"`
	Endpoint  string        `env:"S3_ENDPOINT"`
	AccessKey string        `env:"S3_ACCESS_KEY"`
	SecretKey string        `env:"S3_SECRET_KEY"`
	Timeout   time.Duration `env:"S3_TIMEOUT,    default=10s"`
}

type VerificationConfig struct {
	Window         time.Duration `env:"VERIFICATION_WINDOW,          default=2m"`
	Topic          string        `env:"VERIFICATION_TOPIC,           default=user-verification"`
	BaseURL        string        `env:"VERIFICATION_BASE_URL,        default=http://localhost:8080/v1/user/verify"`
	ResendCooldown time.Duration `env:"VERIFICATION_RESEND_COOLDOWN, default=30s"`
}

type NotifyConfig struct {
	Workers int `env:"NOTIFY_WORKERS, default=4"`
	Buffer  int `env:"NOTIFY_BUFFER,  default=256"`
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return LoadFrom(ctx, envconfig.OsLookuper())
}

// LoadFrom reads configuration through the given lookuper.
func LoadFrom(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("config: failed to load configuration: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.JWTSecret == "" && !c.IsDevelopment() {
		return fmt.Errorf("config: JWT_SECRET is required outside development")
	}
	if c.Notify.Workers <= 0 {
		return fmt.Errorf("config: NOTIFY_WORKERS must be positive, got %d", c.Notify.Workers)
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("config: MAX_UPLOAD_BYTES must be positive, got %d", c.MaxUploadBytes)
	}
	return nil
}
