package config

import (
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/spf13/viper"
)

// AppConfig holds the configuration for the application.
// Tags used:
// - mapstructure: used by viper to unmarshal
// - default: default value to set if missing
// - required: if "true", error if missing
type AppConfig struct {
	// Environment specifies the runtime environment (e.g., development, production).
	Environment string `mapstructure:"APP_ENV" default:"development"`
	// LogLevel defines the logging verbosity (e.g., debug, info, error).
	LogLevel string `mapstructure:"LOG_LEVEL" default:"info"`
	// ServerPort is the port where the server will listen.
	ServerPort int `mapstructure:"SERVER_PORT" default:"8080"`

	// Redis holds the snapshot cache connection details.
	Redis RedisConfig `mapstructure:",squash"`

	// Sync holds the order synchronization engine tunables.
	Sync SyncConfig `mapstructure:",squash"`

	// Credentials holds the provider credential sources.
	Credentials CredentialsConfig `mapstructure:",squash"`
}

// RedisConfig holds the connection details for the snapshot cache.
type RedisConfig struct {
	// URL is the Redis connection string, e.g. redis://localhost:6379/0.
	URL string `mapstructure:"REDIS_URL" required:"true"`
}

// SyncConfig holds the tunables of the sync engine.
type SyncConfig struct {
	// PollInterval is the background poll cadence.
	PollInterval time.Duration `mapstructure:"POLL_INTERVAL" default:"30s"`
	// CacheMaxAge is the freshness window; a snapshot older than this
	// triggers a full sync on cold start.
	CacheMaxAge time.Duration `mapstructure:"CACHE_MAX_AGE" default:"5m"`
	// PageSize is the number of orders requested per provider page.
	PageSize int `mapstructure:"PAGE_SIZE" default:"100"`
	// MaxPages is the hard safety bound on pagination for one shop.
	MaxPages int `mapstructure:"MAX_PAGES" default:"1000"`
	// HTTPTimeout is the per-request timeout against provider endpoints.
	HTTPTimeout time.Duration `mapstructure:"HTTP_TIMEOUT" default:"10s"`
}

// CredentialsConfig points at the provider credential records. Credentials are
// owned by an external settings collaborator; this engine only reads them.
type CredentialsConfig struct {
	// File is the path to a JSON array of credential records.
	File string `mapstructure:"CREDENTIALS_FILE"`
	// BaseURL and APIKey are a single-credential fallback for deployments
	// that do not manage a credentials file.
	BaseURL string `mapstructure:"API_BASE_URL"`
	// APIKey is the bearer token paired with BaseURL.
	APIKey string `mapstructure:"API_KEY"`
}

// Load loads configuration from .env files and environment variables.
func Load(path string) (*AppConfig, error) {
	v := viper.New()

	v.AutomaticEnv()

	v.AddConfigPath(path)
	v.SetConfigName(".env")
	v.SetConfigType("env")

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config AppConfig

	if err := processTags(v, &config); err != nil {
		return nil, err
	}

	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if err := validateRequired(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// processTags iterates over the struct fields and sets default values in Viper.
func processTags(v *viper.Viper, config interface{}) error {
	val := reflect.ValueOf(config)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	t := val.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if field.Type.Kind() == reflect.Struct {
			if err := processTags(v, val.Field(i).Addr().Interface()); err != nil {
				return err
			}
			continue
		}

		key := field.Tag.Get("mapstructure")
		defaultValue := field.Tag.Get("default")

		if key != "" {
			v.BindEnv(key)
		}

		if key != "" && defaultValue != "" {
			v.SetDefault(key, defaultValue)
		}
	}
	return nil
}

// validateRequired checks if fields marked as required have non-zero values.
func validateRequired(config interface{}) error {
	val := reflect.ValueOf(config)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	t := val.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if field.Type.Kind() == reflect.Struct {
			if err := validateRequired(val.Field(i).Addr().Interface()); err != nil {
				return err
			}
			continue
		}

		required := field.Tag.Get("required")
		if required == "true" {
			value := val.Field(i)
			if isZero(value) {
				key := field.Tag.Get("mapstructure")
				return fmt.Errorf("missing required configuration: %s", key)
			}
		}
	}
	return nil
}

// isZero checks if a reflect.Value is the zero value for its type.
func isZero(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.String:
		return v.String() == ""
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Bool:
		return !v.Bool()
	case reflect.Slice, reflect.Map:
		return v.Len() == 0
	default:
		return v.IsZero()
	}
}
