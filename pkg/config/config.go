package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Pricing      PricingConfig
	Mailer       MailerConfig
	FeatureFlags FeatureFlagsConfig
	Cron         CronConfig
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
	Env          string `envconfig:"AGRILINK_APP_ENV" required:"true"`
	Port         string `envconfig:"AGRILINK_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"AGRILINK_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"AGRILINK_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"AGRILINK_DB_DSN"`
	Driver string `envconfig:"AGRILINK_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"AGRILINK_DB_HOST"`
	LegacyPort     int    `envconfig:"AGRILINK_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"AGRILINK_DB_USER"`
	LegacyPassword string `envconfig:"AGRILINK_DB_PASSWORD"`
	LegacyName     string `envconfig:"AGRILINK_DB_NAME"`
	LegacySSLMode  string `envconfig:"AGRILINK_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"AGRILINK_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"AGRILINK_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"AGRILINK_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"AGRILINK_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"AGRILINK_REDIS_URL" required:"true"`
	Address      string        `envconfig:"AGRILINK_REDIS_ADDR"`
	Password     string        `envconfig:"AGRILINK_REDIS_PASSWORD"`
	DB           int           `envconfig:"AGRILINK_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"AGRILINK_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"AGRILINK_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"AGRILINK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"AGRILINK_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"AGRILINK_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// JWTConfig covers token verification only. Token issuance belongs to the
// external identity provider.
type JWTConfig struct {
	Secret string `envconfig:"AGRILINK_JWT_SECRET" required:"true"`
	Issuer string `envconfig:"AGRILINK_JWT_ISSUER" required:"true"`
}

// PricingConfig carries the externally configured commission rate and flat
// delivery fee. The rate is kept as a raw string so malformed values degrade
// to zero instead of failing startup.
type PricingConfig struct {
	CommissionRate   string `envconfig:"AGRILINK_COMMISSION_RATE" default:"0"`
	DeliveryFeeCents int    `envconfig:"AGRILINK_DELIVERY_FEE_CENTS" default:"50000"`
}

// Rate returns the commission rate as a decimal, defaulting to zero when the
// configured value is unset or not a number.
func (p PricingConfig) Rate() decimal.Decimal {
	raw := strings.TrimSpace(p.CommissionRate)
	if raw == "" {
		return decimal.Zero
	}
	rate, err := decimal.NewFromString(raw)
	if err != nil || rate.IsNegative() {
		return decimal.Zero
	}
	return rate
}

type MailerConfig struct {
	APIKey      string `envconfig:"AGRILINK_SENDGRID_API_KEY"`
	FromEmail   string `envconfig:"AGRILINK_SENDGRID_FROM_EMAIL"`
	FromName    string `envconfig:"AGRILINK_SENDGRID_FROM_NAME" default:"AgriLink"`
	MaxAttempts int    `envconfig:"AGRILINK_MAIL_MAX_ATTEMPTS" default:"3"`
}

// Enabled reports whether outbound mail is configured at all.
func (m MailerConfig) Enabled() bool {
	return strings.TrimSpace(m.APIKey) != "" && strings.TrimSpace(m.FromEmail) != ""
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"AGRILINK_AUTO_MIGRATE" default:"false"`
}

type CronConfig struct {
	Interval time.Duration `envconfig:"AGRILINK_CRON_INTERVAL" default:"24h"`
	LockTTL  time.Duration `envconfig:"AGRILINK_CRON_LOCK_TTL" default:"25h"`
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
