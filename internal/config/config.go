// Package config loads process-wide settings once at startup.
package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// ErrMissingJWTSecret is returned when JWT_SECRET is not configured.
var ErrMissingJWTSecret = errors.New("JWT_SECRET must be set")

type R2Config struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	Region          string
	PublicBaseURL   string
}

type OTPConfig struct {
	TTL          time.Duration
	Cooldown     time.Duration
	Window       time.Duration
	MaxPerWindow int
	Expose       bool
}

type Config struct {
	AppPort        string
	Environment    string
	LogLevel       string
	DBDriver       string
	DatabaseDSN    string
	JWTSecret      string
	TokenTTL       time.Duration
	BcryptCost     int
	PhotoStore     string
	UploadDir      string
	UploadMaxBytes int64
	R2             R2Config
	RedisURL       string
	RabbitMQURL    string
	CORSOrigins    []string
	SeedDemoData   bool
	OTP            OTPConfig
}

// Load reads an optional .env file, then the environment. It fails when a mandatory
// setting is absent.
func Load() (*Config, error) {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil {
		log.Debug().Str("file", envFile).Msg("no env file found")
	}

	v := viper.New()
	SetDefaults(v)
	v.AutomaticEnv()
	return FromViper(v)
}

// SetDefaults registers the default value of every key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":3001")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DATABASE_DSN", "file:data/resume_builder.db?_foreign_keys=on")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("TOKEN_TTL", "168h")
	v.SetDefault("BCRYPT_COST", 12)
	v.SetDefault("PHOTO_STORE", "local")
	v.SetDefault("UPLOAD_DIR", "uploads")
	v.SetDefault("UPLOAD_MAX_BYTES", 5*1024*1024)
	v.SetDefault("R2_ACCOUNT_ID", "")
	v.SetDefault("R2_ACCESS_KEY_ID", "")
	v.SetDefault("R2_SECRET_ACCESS_KEY", "")
	v.SetDefault("R2_BUCKET_NAME", "")
	v.SetDefault("R2_REGION", "auto")
	v.SetDefault("R2_PUBLIC_BASE_URL", "")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000")
	v.SetDefault("SEED_DEMO_DATA", false)
	v.SetDefault("OTP_TTL", "10m")
	v.SetDefault("OTP_COOLDOWN", "30s")
	v.SetDefault("OTP_WINDOW", "15m")
	v.SetDefault("OTP_MAX_PER_WINDOW", 5)
	v.SetDefault("EXPOSE_OTP", false)
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		AppPort:        v.GetString("APP_PORT"),
		Environment:    v.GetString("APP_ENV"),
		LogLevel:       v.GetString("LOG_LEVEL"),
		DBDriver:       v.GetString("DB_DRIVER"),
		DatabaseDSN:    v.GetString("DATABASE_DSN"),
		JWTSecret:      v.GetString("JWT_SECRET"),
		TokenTTL:       v.GetDuration("TOKEN_TTL"),
		BcryptCost:     v.GetInt("BCRYPT_COST"),
		PhotoStore:     v.GetString("PHOTO_STORE"),
		UploadDir:      v.GetString("UPLOAD_DIR"),
		UploadMaxBytes: v.GetInt64("UPLOAD_MAX_BYTES"),
		R2: R2Config{
			AccountID:       v.GetString("R2_ACCOUNT_ID"),
			AccessKeyID:     v.GetString("R2_ACCESS_KEY_ID"),
			SecretAccessKey: v.GetString("R2_SECRET_ACCESS_KEY"),
			BucketName:      v.GetString("R2_BUCKET_NAME"),
			Region:          v.GetString("R2_REGION"),
			PublicBaseURL:   v.GetString("R2_PUBLIC_BASE_URL"),
		},
		RedisURL:     v.GetString("REDIS_URL"),
		RabbitMQURL:  v.GetString("RABBITMQ_URL"),
		CORSOrigins:  splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		SeedDemoData: v.GetBool("SEED_DEMO_DATA"),
		OTP: OTPConfig{
			TTL:          v.GetDuration("OTP_TTL"),
			Cooldown:     v.GetDuration("OTP_COOLDOWN"),
			Window:       v.GetDuration("OTP_WINDOW"),
			MaxPerWindow: v.GetInt("OTP_MAX_PER_WINDOW"),
			Expose:       v.GetBool("EXPOSE_OTP"),
		},
	}

	if strings.TrimSpace(cfg.JWTSecret) == "" {
		return nil, ErrMissingJWTSecret
	}
	return cfg, nil
}

// IsDevelopment reports whether the app runs in the development environment.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
