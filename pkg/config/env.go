package config

const EnvPrefix = "STOREFRONT"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	CartStorageRedis  = "redis"
	CartStorageMemory = "memory"

	defaultSQLiteDSN = "file:storefront.db?cache=shared"
)

const (
	EnvAppEnv   = "STOREFRONT_APP_ENV"
	EnvPort     = "STOREFRONT_APP_PORT"
	EnvLogLevel = "STOREFRONT_LOG_LEVEL"

	EnvDBDSN  = "STOREFRONT_DB_DSN"
	EnvDBHost = "STOREFRONT_DB_HOST"
	EnvDBUser = "STOREFRONT_DB_USER"
	EnvDBName = "STOREFRONT_DB_NAME"

	EnvRedisURL = "STOREFRONT_REDIS_URL"

	EnvCartStorage     = "STOREFRONT_CART_STORAGE"
	EnvCartTokenSecret = "STOREFRONT_CART_TOKEN_SECRET"

	EnvBaseURL      = "STOREFRONT_BASE_URL"
	EnvPublicAPIURL = "STOREFRONT_PUBLIC_API_URL"

	EnvMercadoPagoAccessToken   = "STOREFRONT_MERCADOPAGO_ACCESS_TOKEN"
	EnvMercadoPagoWebhookSecret = "STOREFRONT_MERCADOPAGO_WEBHOOK_SECRET"
	EnvMercadoPagoCurrency      = "STOREFRONT_MERCADOPAGO_CURRENCY"

	EnvUseSQLite = "STOREFRONT_USE_SQLITE"
)

var hostDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
