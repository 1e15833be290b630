package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/angelmondragon/pantryshare-backend/pkg/enums"
)

type Config struct {
	App       AppConfig
	DocStore  DocStoreConfig
	Redis     RedisConfig
	JWT       JWTConfig
	RateLimit RateLimitConfig
	RecipeAPI RecipeAPIConfig
	Reminders RemindersConfig
	Ledger    LedgerConfig
	Groups    GroupsConfig

	Maintenance MaintenanceConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DocStore.validate(); err != nil {
		return nil, err
	}
	if !cfg.Ledger.DuplicatePolicy.IsValid() {
		return nil, fmt.Errorf("%s must be one of reject, overwrite; got %q", EnvLedgerDuplicatePolicy, cfg.Ledger.DuplicatePolicy)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"PANTRY_APP_ENV" required:"true"`
	Port         string `envconfig:"PANTRY_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"PANTRY_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"PANTRY_LOG_WARN_STACK" default:"false"`

	CORSOrigins []string `envconfig:"PANTRY_CORS_ORIGINS"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DocStoreConfig struct {
	Driver enums.DocStoreDriver `envconfig:"PANTRY_DOCSTORE_DRIVER" default:"memory"`

	FirestoreProjectID       string `envconfig:"PANTRY_FIRESTORE_PROJECT_ID"`
	FirestoreDatabase        string `envconfig:"PANTRY_FIRESTORE_DATABASE" default:"(default)"`
	FirestoreCredentialsFile string `envconfig:"PANTRY_FIRESTORE_CREDENTIALS_FILE"`

	MongoURI      string        `envconfig:"PANTRY_MONGO_URI"`
	MongoDatabase string        `envconfig:"PANTRY_MONGO_DATABASE" default:"pantryshare"`
	MongoTimeout  time.Duration `envconfig:"PANTRY_MONGO_TIMEOUT" default:"10s"`
}

func (d DocStoreConfig) validate() error {
	if !d.Driver.IsValid() {
		return fmt.Errorf("%s must be one of memory, firestore, mongo; got %q", EnvDocStoreDriver, d.Driver)
	}
	switch d.Driver {
	case enums.DocStoreDriverFirestore:
		if strings.TrimSpace(d.FirestoreProjectID) == "" {
			return fmt.Errorf("%s is required for the firestore driver", EnvFirestoreProjectID)
		}
	case enums.DocStoreDriverMongo:
		if strings.TrimSpace(d.MongoURI) == "" {
			return fmt.Errorf("%s is required for the mongo driver", EnvMongoURI)
		}
	}
	return nil
}

// RedisConfig is optional; an empty URL and address disables idempotency
// and rate limiting.
type RedisConfig struct {
	URL          string        `envconfig:"PANTRY_REDIS_URL"`
	Address      string        `envconfig:"PANTRY_REDIS_ADDR"`
	Password     string        `envconfig:"PANTRY_REDIS_PASSWORD"`
	DB           int           `envconfig:"PANTRY_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"PANTRY_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"PANTRY_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"PANTRY_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"PANTRY_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"PANTRY_REDIS_WRITE_TIMEOUT" default:"5s"`
}

func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type JWTConfig struct {
	Secret            string `envconfig:"PANTRY_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"PANTRY_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"PANTRY_JWT_EXPIRATION_MINUTES" default:"60"`
}

type RateLimitConfig struct {
	Window time.Duration `envconfig:"PANTRY_RATE_LIMIT_WINDOW" default:"1m"`
	Limit  int           `envconfig:"PANTRY_RATE_LIMIT_LIMIT" default:"120"`
}

type RecipeAPIConfig struct {
	BaseURL           string        `envconfig:"PANTRY_RECIPE_API_BASE_URL" default:"https://api.spoonacular.com"`
	APIKey            string        `envconfig:"PANTRY_RECIPE_API_KEY"`
	Timeout           time.Duration `envconfig:"PANTRY_RECIPE_API_TIMEOUT" default:"10s"`
	RequestsPerSecond float64       `envconfig:"PANTRY_RECIPE_API_RPS" default:"5"`
	Burst             int           `envconfig:"PANTRY_RECIPE_API_BURST" default:"10"`
}

type RemindersConfig struct {
	TaskList string        `envconfig:"PANTRY_REMINDERS_TASK_LIST" default:"@default"`
	Calendar string        `envconfig:"PANTRY_REMINDERS_CALENDAR" default:"primary"`
	Timeout  time.Duration `envconfig:"PANTRY_REMINDERS_TIMEOUT" default:"5s"`
}

type LedgerConfig struct {
	DuplicatePolicy enums.DuplicatePolicy `envconfig:"PANTRY_LEDGER_DUPLICATE_POLICY" default:"reject"`
}

type GroupsConfig struct {
	Fanout int `envconfig:"PANTRY_GROUPS_FANOUT" default:"8"`
}

type MaintenanceConfig struct {
	Interval  time.Duration `envconfig:"PANTRY_MAINTENANCE_INTERVAL" default:"6h"`
	LockTTL   time.Duration `envconfig:"PANTRY_MAINTENANCE_LOCK_TTL" default:"1h"`
	BatchSize int           `envconfig:"PANTRY_MAINTENANCE_BATCH_SIZE" default:"100"`
}
