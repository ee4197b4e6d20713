package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	FeatureFlags FeatureFlagsConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
	Cron         CronConfig
	Stats        StatsConfig
	RateLimit    RateLimitConfig
	Password     PasswordConfig
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
	Env          string `envconfig:"CLINICDESK_APP_ENV" required:"true"`
	Port         string `envconfig:"CLINICDESK_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"CLINICDESK_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"CLINICDESK_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"CLINICDESK_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"CLINICDESK_DB_DSN"`
	Driver string `envconfig:"CLINICDESK_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"CLINICDESK_DB_HOST"`
	LegacyPort     int    `envconfig:"CLINICDESK_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"CLINICDESK_DB_USER"`
	LegacyPassword string `envconfig:"CLINICDESK_DB_PASSWORD"`
	LegacyName     string `envconfig:"CLINICDESK_DB_NAME"`
	LegacySSLMode  string `envconfig:"CLINICDESK_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"CLINICDESK_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CLINICDESK_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CLINICDESK_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CLINICDESK_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"CLINICDESK_REDIS_URL" required:"true"`
	Address      string        `envconfig:"CLINICDESK_REDIS_ADDR"`
	Password     string        `envconfig:"CLINICDESK_REDIS_PASSWORD"`
	DB           int           `envconfig:"CLINICDESK_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CLINICDESK_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CLINICDESK_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CLINICDESK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CLINICDESK_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CLINICDESK_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"CLINICDESK_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"CLINICDESK_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"CLINICDESK_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"CLINICDESK_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"CLINICDESK_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"CLINICDESK_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"CLINICDESK_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"CLINICDESK_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"CLINICDESK_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	NotificationsTopic           string `envconfig:"CLINICDESK_PUBSUB_NOTIFICATIONS_TOPIC" default:"cd-notification-events"`
	NotificationsSubscription    string `envconfig:"CLINICDESK_PUBSUB_NOTIFICATIONS_SUBSCRIPTION"`
	DeliveryReceiptsSubscription string `envconfig:"CLINICDESK_PUBSUB_DELIVERY_RECEIPTS_SUBSCRIPTION"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"CLINICDESK_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"CLINICDESK_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"CLINICDESK_OUTBOX_MAX_ATTEMPTS" default:"10"`
	RetentionDays  int `envconfig:"CLINICDESK_OUTBOX_RETENTION_DAYS" default:"14"`
}

type CronConfig struct {
	Interval                  time.Duration `envconfig:"CLINICDESK_CRON_INTERVAL" default:"24h"`
	NotificationRetentionDays int           `envconfig:"CLINICDESK_CRON_NOTIFICATION_RETENTION_DAYS" default:"90"`
}

type StatsConfig struct {
	UpcomingWindowDays int `envconfig:"CLINICDESK_STATS_UPCOMING_WINDOW_DAYS" default:"7"`
}

type RateLimitConfig struct {
	WriteWindow      time.Duration `envconfig:"CLINICDESK_RATE_LIMIT_WRITE_WINDOW" default:"1m"`
	WriteIPLimit     int           `envconfig:"CLINICDESK_RATE_LIMIT_WRITE_IP_LIMIT" default:"120"`
	WriteClinicLimit int           `envconfig:"CLINICDESK_RATE_LIMIT_WRITE_CLINIC_LIMIT" default:"300"`
	LoginWindow      time.Duration `envconfig:"CLINICDESK_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginIPLimit     int           `envconfig:"CLINICDESK_RATE_LIMIT_LOGIN_IP_LIMIT" default:"10"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"CLINICDESK_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"CLINICDESK_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"CLINICDESK_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"CLINICDESK_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"CLINICDESK_ARGON_KEY_LEN" default:"32"`
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
