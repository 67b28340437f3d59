package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// EnvFile is loaded (when present) before PLANNER_* variables are read.
const EnvFile = ".env"

type envOverrides struct {
	Port           *int           `env:"PLANNER_PORT"`
	Env            string         `env:"PLANNER_ENV"`
	JWTSecret      string         `env:"PLANNER_JWT_SECRET"`
	RequestTimeout *time.Duration `env:"PLANNER_REQUEST_TIMEOUT"`
	AllowedOrigins []string       `env:"PLANNER_ALLOWED_ORIGINS" envSeparator:","`

	DBDriver   string `env:"PLANNER_DB_DRIVER"`
	DBURL      string `env:"DATABASE_URL"`
	DBDSN      string `env:"PLANNER_DB_DSN"`
	DBHost     string `env:"PLANNER_DB_HOST"`
	DBPort     *int   `env:"PLANNER_DB_PORT"`
	DBUser     string `env:"PLANNER_DB_USER"`
	DBPassword string `env:"PLANNER_DB_PASSWORD"`
	DBName     string `env:"PLANNER_DB_NAME"`
	DBSSLMode  string `env:"PLANNER_DB_SSLMODE"`
	DBPath     string `env:"PLANNER_DB_PATH"`

	RedisEnable *bool  `env:"PLANNER_REDIS_ENABLE"`
	RedisURL    string `env:"REDIS_URL"`

	S3Bucket    string `env:"PLANNER_S3_BUCKET"`
	S3Region    string `env:"PLANNER_S3_REGION"`
	S3Endpoint  string `env:"PLANNER_S3_ENDPOINT"`
	S3AccessKey string `env:"PLANNER_S3_ACCESS_KEY_ID"`
	S3SecretKey string `env:"PLANNER_S3_SECRET_ACCESS_KEY"`
}

func applyEnv(cfg *AppConfig) error {
	if err := godotenv.Load(EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", EnvFile, err)
	}

	var o envOverrides
	if err := env.Parse(&o); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}

	if o.Port != nil {
		cfg.Port = *o.Port
	}
	setString(&cfg.Env, o.Env)
	setString(&cfg.JWTSecret, o.JWTSecret)
	if o.RequestTimeout != nil {
		cfg.RequestTimeout = *o.RequestTimeout
	}
	if len(o.AllowedOrigins) > 0 {
		cfg.AllowedOrigins = o.AllowedOrigins
	}

	setString(&cfg.Database.Driver, o.DBDriver)
	setString(&cfg.Database.DSN, o.DBURL)
	setString(&cfg.Database.DSN, o.DBDSN)
	setString(&cfg.Database.Host, o.DBHost)
	if o.DBPort != nil {
		cfg.Database.Port = *o.DBPort
	}
	setString(&cfg.Database.User, o.DBUser)
	setString(&cfg.Database.Password, o.DBPassword)
	setString(&cfg.Database.Name, o.DBName)
	setString(&cfg.Database.SSLMode, o.DBSSLMode)
	setString(&cfg.Database.Path, o.DBPath)

	if o.RedisEnable != nil {
		cfg.Redis.Enable = *o.RedisEnable
	}
	if o.RedisURL != "" {
		cfg.Redis.URL = o.RedisURL
		if o.RedisEnable == nil {
			cfg.Redis.Enable = true
		}
	}

	setString(&cfg.Backup.S3.Bucket, o.S3Bucket)
	setString(&cfg.Backup.S3.Region, o.S3Region)
	setString(&cfg.Backup.S3.Endpoint, o.S3Endpoint)
	setString(&cfg.Backup.S3.AccessKeyID, o.S3AccessKey)
	setString(&cfg.Backup.S3.SecretAccessKey, o.S3SecretKey)
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
