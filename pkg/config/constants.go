package config

// EnvPrefix is the envconfig prefix shared by every service binary.
const EnvPrefix = "CLINICDESK"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

// Environment variable names referenced outside envconfig tags (tests, error
// messages).
const (
	EnvAppEnv   = "CLINICDESK_APP_ENV"
	EnvPort     = "CLINICDESK_APP_PORT"
	EnvDBDSN    = "CLINICDESK_DB_DSN"
	EnvDBHost   = "CLINICDESK_DB_HOST"
	EnvDBUser   = "CLINICDESK_DB_USER"
	EnvDBName   = "CLINICDESK_DB_NAME"
	EnvRedisURL = "CLINICDESK_REDIS_URL"

	EnvJWTSecret              = "CLINICDESK_JWT_SECRET"
	EnvJWTIssuer              = "CLINICDESK_JWT_ISSUER"
	EnvJWTExpMins             = "CLINICDESK_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "CLINICDESK_REFRESH_TOKEN_TTL_MINUTES"

	EnvGCPProjectID             = "CLINICDESK_GCP_PROJECT_ID"
	EnvPubSubNotificationsTopic = "CLINICDESK_PUBSUB_NOTIFICATIONS_TOPIC"
	EnvPubSubNotificationsSub   = "CLINICDESK_PUBSUB_NOTIFICATIONS_SUBSCRIPTION"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
