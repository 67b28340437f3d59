package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigPath is used when --config is not provided.
	DefaultConfigPath = "config.yml"

	defaultPort           = 3000
	defaultEnv            = "development"
	defaultDBDriver       = DriverPostgres
	defaultDBHost         = "127.0.0.1"
	defaultPostgresPort   = 5432
	defaultMySQLPort      = 3306
	defaultDBUser         = "postgres"
	defaultDBPassword     = "postgres"
	defaultDBName         = "planner"
	defaultDBSSLMode      = "disable"
	defaultSQLitePath     = "planner.db"
	defaultMaxOpenConns   = 20
	defaultMaxIdleConns   = 5
	defaultConnLifetime   = 30 * time.Minute
	defaultRedisHost      = "localhost"
	defaultRedisPort      = 6379
	defaultRequestTimeout = 10 * time.Second
	defaultSessionTTL     = 30 * 24 * time.Hour
)

// Supported database drivers.
const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"
)

// AppConfig holds runtime startup configuration loaded from YAML and the environment.
type AppConfig struct {
	Port           int                   `yaml:"port"`
	Env            string                `yaml:"env"` // "development" | "production"
	DSN            string                `yaml:"-"`
	RedisURL       string                `yaml:"-"`
	Database       DatabaseRuntimeConfig `yaml:"database"`
	Redis          RedisRuntimeConfig    `yaml:"redis"`
	AllowedOrigins []string              `yaml:"allowed_origins"`
	JWTSecret      string                `yaml:"jwt_secret"`
	SessionTTL     time.Duration         `yaml:"session_ttl"`
	RequestTimeout time.Duration         `yaml:"request_timeout"`
	Paths          RuntimePathsConfig    `yaml:"paths"`
	Backup         BackupConfig          `yaml:"backup"`

	baseDir string
}

type DatabaseRuntimeConfig struct {
	Driver          string            `yaml:"driver"`
	DSN             string            `yaml:"dsn"`
	Host            string            `yaml:"host"`
	Port            int               `yaml:"port"`
	User            string            `yaml:"user"`
	Password        string            `yaml:"password"`
	Name            string            `yaml:"name"`
	SSLMode         string            `yaml:"sslmode"`
	Path            string            `yaml:"path"` // sqlite only
	Params          map[string]string `yaml:"params"`
	MaxOpenConns    int               `yaml:"max_open_conns"`
	MaxIdleConns    int               `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration     `yaml:"conn_max_lifetime"`
}

type RedisRuntimeConfig struct {
	Enable   bool   `yaml:"enable"`
	URL      string `yaml:"url"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	TLS      bool   `yaml:"tls"`
}

type RuntimePathsConfig struct {
	Logs    string `yaml:"logs"`
	Backups string `yaml:"backups"`
}

// BackupConfig controls JSON snapshots of the planner tables.
type BackupConfig struct {
	Nightly bool     `yaml:"nightly"`
	S3      S3Config `yaml:"s3"`
}

type S3Config struct {
	Bucket          string `yaml:"bucket"`
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	Prefix          string `yaml:"prefix"`
	PathStyle       bool   `yaml:"path_style"`
}

// Enabled reports whether enough S3 settings are present to upload.
func (c S3Config) Enabled() bool {
	return c.Bucket != "" && c.Region != "" && c.AccessKeyID != "" && c.SecretAccessKey != ""
}

// Load reads the YAML file at configPath (a missing file yields defaults), then applies
// .env and PLANNER_* environment overrides.
func Load(configPath string) (*AppConfig, error) {
	path := strings.TrimSpace(configPath)
	if path == "" {
		path = DefaultConfigPath
	}

	cfg := defaultAppConfig()
	cfg.baseDir = configDir(path)
	content, err := os.ReadFile(path)
	switch {
	case err == nil:
		decoder := yaml.NewDecoder(bytes.NewReader(content))
		decoder.KnownFields(true)
		if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parse config file %q: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, fmt.Errorf("read config file %q: %w", path, err)
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	if err := finalize(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config %q: %w", path, err)
	}
	return &cfg, nil
}

func defaultAppConfig() AppConfig {
	return AppConfig{
		Port:           defaultPort,
		Env:            defaultEnv,
		SessionTTL:     defaultSessionTTL,
		RequestTimeout: defaultRequestTimeout,
		Database: DatabaseRuntimeConfig{
			Driver:          defaultDBDriver,
			Host:            defaultDBHost,
			User:            defaultDBUser,
			Password:        defaultDBPassword,
			Name:            defaultDBName,
			SSLMode:         defaultDBSSLMode,
			MaxOpenConns:    defaultMaxOpenConns,
			MaxIdleConns:    defaultMaxIdleConns,
			ConnMaxLifetime: defaultConnLifetime,
		},
		Redis: RedisRuntimeConfig{
			Host: defaultRedisHost,
			Port: defaultRedisPort,
		},
	}
}

// finalize normalizes every section, validates ranges, and derives DSN/RedisURL.
func finalize(cfg *AppConfig) error {
	cfg.Env = normalizeEnv(cfg.Env)
	cfg.Database = normalizeDatabaseConfig(cfg.Database)
	cfg.Redis = normalizeRedisConfig(cfg.Redis)
	cfg.AllowedOrigins = normalizeOrigins(cfg.AllowedOrigins)
	cfg.Paths = normalizeRuntimePaths(cfg.Paths)
	cfg.JWTSecret = strings.TrimSpace(cfg.JWTSecret)

	if cfg.Port < 1 || cfg.Port > 65535 {
		return fmt.Errorf("invalid port %d, expected 1-65535", cfg.Port)
	}
	switch cfg.Database.Driver {
	case DriverPostgres, DriverMySQL, DriverSQLite:
	default:
		return fmt.Errorf("unsupported database.driver %q", cfg.Database.Driver)
	}
	if cfg.Database.Driver != DriverSQLite && (cfg.Database.Port < 1 || cfg.Database.Port > 65535) {
		return fmt.Errorf("invalid database.port %d, expected 1-65535", cfg.Database.Port)
	}
	if cfg.Redis.Port < 1 || cfg.Redis.Port > 65535 {
		return fmt.Errorf("invalid redis.port %d, expected 1-65535", cfg.Redis.Port)
	}
	if cfg.Redis.DB < 0 {
		return fmt.Errorf("invalid redis.db %d, expected >= 0", cfg.Redis.DB)
	}
	if cfg.RequestTimeout < 0 {
		return fmt.Errorf("invalid request_timeout %s", cfg.RequestTimeout)
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = defaultSessionTTL
	}

	cfg.DSN = cfg.Database.DSNValue()
	cfg.RedisURL = cfg.Redis.URLValue()
	return nil
}

func (c *AppConfig) IsDev() bool {
	return c.Env == "development"
}

// Addr returns the listen address.
func (c *AppConfig) Addr() string { return fmt.Sprintf(":%d", c.Port) }

// LogDir and BackupDir resolve relative paths against the config file's directory.
func (c *AppConfig) LogDir() string {
	return resolveDir(c.baseDir, c.Paths.Logs, "logs")
}

func (c *AppConfig) BackupDir() string {
	return resolveDir(c.baseDir, c.Paths.Backups, "backups")
}
