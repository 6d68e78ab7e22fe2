package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const envPrefix = "SPLIT"

var configKeys = []string{
	"server.port",
	"server.log_level",
	"server.shutdown_timeout",
	"store.driver",
	"store.dsn",
	"store.memory_capacity",
	"auth.jwt_secret",
	"auth.token_ttl",
	"auth.operator_email",
	"auth.operator_name",
	"auth.operator_password_hash",
	"smtp.addr",
	"smtp.from",
	"smtp.username",
	"smtp.password",
	"smtp.timeout",
}

// Load reads configuration from an optional YAML file and SPLIT_* environment
// variables, which take precedence. An empty path skips the file.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("store.driver", "memory")
	v.SetDefault("store.memory_capacity", 1000)
	v.SetDefault("auth.token_ttl", "1h")
	v.SetDefault("auth.operator_name", "Operator")
	v.SetDefault("smtp.timeout", "10s")

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// AutomaticEnv only resolves keys viper already knows about; binding
	// each one lets Unmarshal see values that have no default or file entry.
	for _, key := range configKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind env for %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(&cfg); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			msgs := make([]string, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				msgs = append(msgs, fmt.Sprintf("%s failed on %q", fe.Namespace(), fe.Tag()))
			}
			return nil, fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}
