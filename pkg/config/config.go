package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "zenmart"

	AppEnvDev  = "development"
	AppEnvProd = "production"

	EnvAppEnv = "ZENMART_APP_ENV"
	EnvDBDSN  = "ZENMART_DB_DSN"
	EnvDBHost = "ZENMART_DB_HOST"
	EnvDBUser = "ZENMART_DB_USER"
	EnvDBName = "ZENMART_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Cron         CronConfig
	Payouts      PayoutsConfig
	FeatureFlags FeatureFlagsConfig
	Metrics      MetricsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"ZENMART_APP_ENV" required:"true"`
	Port         string `envconfig:"ZENMART_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"ZENMART_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"ZENMART_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"ZENMART_DB_DSN"`
	Driver string `envconfig:"ZENMART_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"ZENMART_DB_HOST"`
	LegacyPort     int    `envconfig:"ZENMART_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"ZENMART_DB_USER"`
	LegacyPassword string `envconfig:"ZENMART_DB_PASSWORD"`
	LegacyName     string `envconfig:"ZENMART_DB_NAME"`
	LegacySSLMode  string `envconfig:"ZENMART_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"ZENMART_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"ZENMART_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"ZENMART_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ZENMART_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"ZENMART_REDIS_URL"`
	Address      string        `envconfig:"ZENMART_REDIS_ADDR"`
	Password     string        `envconfig:"ZENMART_REDIS_PASSWORD"`
	DB           int           `envconfig:"ZENMART_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ZENMART_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ZENMART_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ZENMART_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ZENMART_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ZENMART_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type CronConfig struct {
	Interval              time.Duration `envconfig:"ZENMART_CRON_INTERVAL" default:"1h"`
	LockTTL               time.Duration `envconfig:"ZENMART_CRON_LOCK_TTL" default:"55m"`
	NotificationRetention int           `envconfig:"ZENMART_CRON_NOTIFICATION_RETENTION_DAYS" default:"30"`
}

type PayoutsConfig struct {
	StatsCacheTTL time.Duration `envconfig:"ZENMART_PAYOUT_STATS_CACHE_TTL" default:"1m"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"ZENMART_AUTO_MIGRATE" default:"false"`
}

type MetricsConfig struct {
	Port string `envconfig:"ZENMART_METRICS_PORT" default:"9091"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
