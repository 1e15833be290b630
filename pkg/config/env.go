package config

const (
	EnvPrefix = "PANTRY"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv       = "PANTRY_APP_ENV"
	EnvPort         = "PANTRY_APP_PORT"
	EnvLogLevel     = "PANTRY_LOG_LEVEL"
	EnvLogWarnStack = "PANTRY_LOG_WARN_STACK"

	EnvDocStoreDriver       = "PANTRY_DOCSTORE_DRIVER"
	EnvFirestoreProjectID   = "PANTRY_FIRESTORE_PROJECT_ID"
	EnvFirestoreDatabase    = "PANTRY_FIRESTORE_DATABASE"
	EnvFirestoreCredentials = "PANTRY_FIRESTORE_CREDENTIALS_FILE"
	EnvMongoURI             = "PANTRY_MONGO_URI"
	EnvMongoDatabase        = "PANTRY_MONGO_DATABASE"
	EnvMongoTimeout         = "PANTRY_MONGO_TIMEOUT"

	EnvRedisURL      = "PANTRY_REDIS_URL"
	EnvRedisAddr     = "PANTRY_REDIS_ADDR"
	EnvRedisPassword = "PANTRY_REDIS_PASSWORD"
	EnvRedisDB       = "PANTRY_REDIS_DB"

	EnvJWTSecret  = "PANTRY_JWT_SECRET"
	EnvJWTIssuer  = "PANTRY_JWT_ISSUER"
	EnvJWTExpMins = "PANTRY_JWT_EXPIRATION_MINUTES"

	EnvRateLimitWindow = "PANTRY_RATE_LIMIT_WINDOW"
	EnvRateLimitLimit  = "PANTRY_RATE_LIMIT_LIMIT"

	EnvRecipeAPIBaseURL = "PANTRY_RECIPE_API_BASE_URL"
	EnvRecipeAPIKey     = "PANTRY_RECIPE_API_KEY"
	EnvRecipeAPITimeout = "PANTRY_RECIPE_API_TIMEOUT"
	EnvRecipeAPIRPS     = "PANTRY_RECIPE_API_RPS"
	EnvRecipeAPIBurst   = "PANTRY_RECIPE_API_BURST"

	EnvReminderTaskList = "PANTRY_REMINDERS_TASK_LIST"
	EnvReminderCalendar = "PANTRY_REMINDERS_CALENDAR"
	EnvReminderTimeout  = "PANTRY_REMINDERS_TIMEOUT"

	EnvLedgerDuplicatePolicy = "PANTRY_LEDGER_DUPLICATE_POLICY"

	EnvGroupsFanout = "PANTRY_GROUPS_FANOUT"
)
