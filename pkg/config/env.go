package config

const (
	EnvPrefix = "STOREFRONT"

	EnvAppEnv   = "STOREFRONT_APP_ENV"
	EnvPort     = "STOREFRONT_APP_PORT"
	EnvLogLevel = "STOREFRONT_LOG_LEVEL"

	EnvDBDSN    = "STOREFRONT_DB_DSN"
	EnvDBDriver = "STOREFRONT_DB_DRIVER"
	EnvDBHost   = "STOREFRONT_DB_HOST"
	EnvDBUser   = "STOREFRONT_DB_USER"
	EnvDBName   = "STOREFRONT_DB_NAME"

	EnvRedisURL  = "STOREFRONT_REDIS_URL"
	EnvRedisAddr = "STOREFRONT_REDIS_ADDR"

	EnvCatalogSource = "STOREFRONT_CATALOG_SOURCE"
	EnvPricingTiers  = "STOREFRONT_PRICING_TIERS"

	EnvCartStore    = "STOREFRONT_CART_STORE"
	EnvCartBoltPath = "STOREFRONT_CART_BOLT_PATH"
)

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"
	DefaultSQLiteDSN = "file:storefront.db?cache=shared"

	CatalogSourceFile = "file"
	CatalogSourceDB   = "db"

	CartStoreMemory = "memory"
	CartStoreBolt   = "bolt"
	CartStoreRedis  = "redis"
)

var discreteDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
