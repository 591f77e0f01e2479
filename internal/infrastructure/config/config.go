package config

import (
	"errors"
	"fmt"
	"strings"

	"dealership/internal/domain/valueobjects"

	"github.com/spf13/viper"
)

const (
	StorageDynamoDB = "dynamodb"
	StoragePostgres = "postgres"
	StorageMemory   = "memory"

	AuthModeALB = "alb"
	AuthModeJWT = "jwt"
	AuthModeDev = "dev"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds all application configuration
type Config struct {
	App      AppConfig
	Log      LogConfig
	Storage  StorageConfig
	DynamoDB DynamoDBConfig
	Postgres PostgresConfig
	Auth     AuthConfig
	Sales    SalesConfig
	Metrics  MetricsConfig
	Swagger  SwaggerConfig
}

type AppConfig struct {
	Name string
	Env  string
	Port string
}

type LogConfig struct {
	Level  string
	Format string
}

// StorageConfig selects the persistence adapter: dynamodb, postgres or memory.
type StorageConfig struct {
	Driver string
}

// DynamoDBConfig keeps the local-friendly defaults of the DynamoDB client:
// static credentials are accepted by DynamoDB Local and ignored by nothing else.
type DynamoDBConfig struct {
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	VehiclesTable   string
	SalesTable      string
}

type PostgresConfig struct {
	DSN          string
	Migrate      bool
	MaxOpenConns int
}

// AuthConfig controls how the customer identity is extracted from requests.
//
//   - alb: the JWT in x-amzn-oidc-data was verified by the load balancer; claims are read as-is
//   - jwt: Authorization Bearer token verified with an HMAC secret
//   - dev: every request acts as DevName / DevCPF
type AuthConfig struct {
	Mode      string
	JWTSecret string
	DevName   string
	DevCPF    string
}

type SalesConfig struct {
	// EnforceMinPrice rejects sales whose price is lower than the vehicle list price.
	EnforceMinPrice bool
}

type MetricsConfig struct {
	Enabled bool
}

type SwaggerConfig struct {
	Enabled bool
}

// bindings maps config keys to the environment variables they are read from.
var bindings = map[string][]string{
	"app.name":                   {"APP_NAME"},
	"app.env":                    {"APP_ENV"},
	"app.port":                   {"PORT", "APP_PORT"},
	"log.level":                  {"LOG_LEVEL"},
	"log.format":                 {"LOG_FORMAT"},
	"storage.driver":             {"STORAGE_DRIVER"},
	"dynamodb.region":            {"AWS_REGION"},
	"dynamodb.endpoint":          {"DYNAMODB_ENDPOINT"},
	"dynamodb.access_key_id":     {"AWS_ACCESS_KEY_ID"},
	"dynamodb.secret_access_key": {"AWS_SECRET_ACCESS_KEY"},
	"dynamodb.vehicles_table":    {"VEHICLES_TABLE"},
	"dynamodb.sales_table":       {"SALES_TABLE"},
	"postgres.dsn":               {"DATABASE_URL"},
	"postgres.migrate":           {"POSTGRES_MIGRATE"},
	"postgres.max_open_conns":    {"POSTGRES_MAX_OPEN_CONNS"},
	"auth.mode":                  {"AUTH_MODE"},
	"auth.jwt_secret":            {"AUTH_JWT_SECRET"},
	"auth.dev_name":              {"AUTH_DEV_NAME"},
	"auth.dev_cpf":               {"AUTH_DEV_CPF"},
	"sales.enforce_min_price":    {"SALES_ENFORCE_MIN_PRICE"},
	"metrics.enabled":            {"METRICS_ENABLED"},
	"swagger.enabled":            {"SWAGGER_ENABLED"},
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "dealership-api")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("storage.driver", StorageDynamoDB)
	v.SetDefault("dynamodb.region", "us-east-1")
	v.SetDefault("dynamodb.access_key_id", "local")
	v.SetDefault("dynamodb.secret_access_key", "local")
	v.SetDefault("dynamodb.vehicles_table", "vehicles")
	v.SetDefault("dynamodb.sales_table", "sales")
	v.SetDefault("postgres.migrate", true)
	v.SetDefault("postgres.max_open_conns", 10)
	v.SetDefault("auth.mode", AuthModeALB)
	v.SetDefault("auth.dev_name", "Dev Customer")
	v.SetDefault("auth.dev_cpf", "12345678909")
	v.SetDefault("sales.enforce_min_price", true)
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("swagger.enabled", true)
}

// Load reads configuration from environment variables (a .env file is loaded
// beforehand by godotenv/autoload in main) on top of built-in defaults.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)
	for key, envs := range bindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return nil, fmt.Errorf("binding %s: %w", key, err)
		}
	}

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
		Storage: StorageConfig{
			Driver: strings.ToLower(strings.TrimSpace(v.GetString("storage.driver"))),
		},
		DynamoDB: DynamoDBConfig{
			Region:          v.GetString("dynamodb.region"),
			Endpoint:        v.GetString("dynamodb.endpoint"),
			AccessKeyID:     v.GetString("dynamodb.access_key_id"),
			SecretAccessKey: v.GetString("dynamodb.secret_access_key"),
			VehiclesTable:   v.GetString("dynamodb.vehicles_table"),
			SalesTable:      v.GetString("dynamodb.sales_table"),
		},
		Postgres: PostgresConfig{
			DSN:          v.GetString("postgres.dsn"),
			Migrate:      v.GetBool("postgres.migrate"),
			MaxOpenConns: v.GetInt("postgres.max_open_conns"),
		},
		Auth: AuthConfig{
			Mode:      strings.ToLower(strings.TrimSpace(v.GetString("auth.mode"))),
			JWTSecret: v.GetString("auth.jwt_secret"),
			DevName:   v.GetString("auth.dev_name"),
			DevCPF:    v.GetString("auth.dev_cpf"),
		},
		Sales: SalesConfig{
			EnforceMinPrice: v.GetBool("sales.enforce_min_price"),
		},
		Metrics: MetricsConfig{
			Enabled: v.GetBool("metrics.enabled"),
		},
		Swagger: SwaggerConfig{
			Enabled: v.GetBool("swagger.enabled"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Storage.Driver {
	case StorageDynamoDB, StorageMemory:
	case StoragePostgres:
		if strings.TrimSpace(c.Postgres.DSN) == "" {
			return fmt.Errorf("%w: DATABASE_URL is required for the postgres storage driver", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown storage driver %q", ErrInvalidConfig, c.Storage.Driver)
	}

	switch c.Auth.Mode {
	case AuthModeALB:
	case AuthModeJWT:
		if c.Auth.JWTSecret == "" {
			return fmt.Errorf("%w: AUTH_JWT_SECRET is required for the jwt auth mode", ErrInvalidConfig)
		}
	case AuthModeDev:
		if strings.TrimSpace(c.Auth.DevName) == "" || !valueobjects.IsValidCPF(c.Auth.DevCPF) {
			return fmt.Errorf("%w: dev auth mode needs AUTH_DEV_NAME and a valid AUTH_DEV_CPF", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown auth mode %q", ErrInvalidConfig, c.Auth.Mode)
	}

	if c.App.Port == "" {
		return fmt.Errorf("%w: port cannot be empty", ErrInvalidConfig)
	}
	return nil
}
