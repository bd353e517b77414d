package config

// EnvPrefix namespaces every environment variable consumed by the platform.
const EnvPrefix = "AGRILINK"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "production"
)

// Environment variable names referenced outside struct tags.
const (
	EnvAppEnv    = "AGRILINK_APP_ENV"
	EnvPort      = "AGRILINK_APP_PORT"
	EnvDBDSN     = "AGRILINK_DB_DSN"
	EnvDBHost    = "AGRILINK_DB_HOST"
	EnvDBUser    = "AGRILINK_DB_USER"
	EnvDBName    = "AGRILINK_DB_NAME"
	EnvRedisURL  = "AGRILINK_REDIS_URL"
	EnvJWTSecret = "AGRILINK_JWT_SECRET"
	EnvJWTIssuer = "AGRILINK_JWT_ISSUER"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
