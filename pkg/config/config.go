package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"golang.org/x/text/currency"
)

type Config struct {
	App              AppConfig
	DB               DBConfig
	Redis            RedisConfig
	Cart             CartConfig
	Storefront       StorefrontConfig
	MercadoPago      MercadoPagoConfig
	ContactRateLimit ContactRateLimitConfig
	FeatureFlags     FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.FeatureFlags.UseSQLite {
		cfg.DB.Driver = DriverSQLite
	}
	if err := cfg.DB.ensureDSN(cfg.FeatureFlags.UseSQLite); err != nil {
		return nil, err
	}
	if _, err := cfg.MercadoPago.CurrencyUnit(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"STOREFRONT_APP_ENV" required:"true"`
	Port         string `envconfig:"STOREFRONT_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"STOREFRONT_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"STOREFRONT_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"STOREFRONT_DB_DSN"`
	Driver string `envconfig:"STOREFRONT_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"STOREFRONT_DB_HOST"`
	Port     int    `envconfig:"STOREFRONT_DB_PORT" default:"5432"`
	User     string `envconfig:"STOREFRONT_DB_USER"`
	Password string `envconfig:"STOREFRONT_DB_PASSWORD"`
	Name     string `envconfig:"STOREFRONT_DB_NAME"`
	SSLMode  string `envconfig:"STOREFRONT_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"STOREFRONT_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"STOREFRONT_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"STOREFRONT_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"STOREFRONT_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the relational store is a local SQLite file.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(strings.TrimSpace(db.Driver), DriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"STOREFRONT_REDIS_URL"`
	Address      string        `envconfig:"STOREFRONT_REDIS_ADDR"`
	Password     string        `envconfig:"STOREFRONT_REDIS_PASSWORD"`
	DB           int           `envconfig:"STOREFRONT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"STOREFRONT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"STOREFRONT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"STOREFRONT_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// CartConfig controls where carts live and how the browsing session is identified.
type CartConfig struct {
	Storage      string        `envconfig:"STOREFRONT_CART_STORAGE" default:"redis"`
	TTL          time.Duration `envconfig:"STOREFRONT_CART_TTL" default:"720h"`
	CookieName   string        `envconfig:"STOREFRONT_CART_COOKIE" default:"sf_cart"`
	CookieSecure bool          `envconfig:"STOREFRONT_CART_COOKIE_SECURE" default:"true"`
	TokenSecret  string        `envconfig:"STOREFRONT_CART_TOKEN_SECRET" required:"true"`
	TokenIssuer  string        `envconfig:"STOREFRONT_CART_TOKEN_ISSUER" default:"storefront"`
	TokenTTL     time.Duration `envconfig:"STOREFRONT_CART_TOKEN_TTL" default:"720h"`
}

// UsesMemory reports whether carts are kept in process memory instead of Redis.
func (c CartConfig) UsesMemory() bool {
	return strings.EqualFold(strings.TrimSpace(c.Storage), CartStorageMemory)
}

type StorefrontConfig struct {
	BaseURL      string   `envconfig:"STOREFRONT_BASE_URL" required:"true"`
	PublicAPIURL string   `envconfig:"STOREFRONT_PUBLIC_API_URL"`
	CORSOrigins  []string `envconfig:"STOREFRONT_CORS_ORIGINS" default:"http://localhost:3000"`
}

// CheckoutURL joins the storefront base URL with a checkout outcome path.
func (s StorefrontConfig) CheckoutURL(outcome string) string {
	return strings.TrimRight(s.BaseURL, "/") + "/checkout/" + outcome
}

// WebhookURL returns the notification URL handed to the processor, or "" when the API
// is not publicly reachable.
func (s StorefrontConfig) WebhookURL() string {
	base := strings.TrimRight(strings.TrimSpace(s.PublicAPIURL), "/")
	if base == "" {
		return ""
	}
	return base + "/api/v1/webhooks/mercadopago"
}

type MercadoPagoConfig struct {
	AccessToken    string        `envconfig:"STOREFRONT_MERCADOPAGO_ACCESS_TOKEN"`
	WebhookSecret  string        `envconfig:"STOREFRONT_MERCADOPAGO_WEBHOOK_SECRET"`
	Currency       string        `envconfig:"STOREFRONT_MERCADOPAGO_CURRENCY" default:"ARS"`
	IdempotencyTTL time.Duration `envconfig:"STOREFRONT_MERCADOPAGO_IDEMPOTENCY_TTL" default:"72h"`
}

// Configured reports whether a processor credential is present.
func (m MercadoPagoConfig) Configured() bool {
	return strings.TrimSpace(m.AccessToken) != ""
}

// CurrencyUnit parses the configured ISO 4217 currency code.
func (m MercadoPagoConfig) CurrencyUnit() (currency.Unit, error) {
	unit, err := currency.ParseISO(strings.ToUpper(strings.TrimSpace(m.Currency)))
	if err != nil {
		return currency.Unit{}, fmt.Errorf("invalid %s %q: %w", EnvMercadoPagoCurrency, m.Currency, err)
	}
	return unit, nil
}

type ContactRateLimitConfig struct {
	Window     time.Duration `envconfig:"STOREFRONT_CONTACT_RATE_LIMIT_WINDOW" default:"10m"`
	IPLimit    int           `envconfig:"STOREFRONT_CONTACT_RATE_LIMIT_IP_LIMIT" default:"10"`
	EmailLimit int           `envconfig:"STOREFRONT_CONTACT_RATE_LIMIT_EMAIL_LIMIT" default:"3"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"STOREFRONT_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"STOREFRONT_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN(useSQLite bool) error {
	if db.DSN != "" {
		return nil
	}
	if useSQLite {
		db.DSN = defaultSQLiteDSN
		return nil
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range hostDBEnvVars {
		if values[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
