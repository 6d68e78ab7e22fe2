package config

import "time"

// Config holds all application configuration.
type Config struct {
	Server ServerConfig `mapstructure:"server" validate:"required"`
	Store  StoreConfig  `mapstructure:"store" validate:"required"`
	Auth   AuthConfig   `mapstructure:"auth" validate:"required"`
	SMTP   SMTPConfig   `mapstructure:"smtp"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel        string        `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

// StoreConfig selects where split history is kept. DSN is required for
// every driver except memory. The memory driver keeps only the most recent
// MemoryCapacity splits.
type StoreConfig struct {
	Driver         string `mapstructure:"driver" validate:"required,oneof=memory sqlite mysql postgres"`
	DSN            string `mapstructure:"dsn" validate:"required_unless=Driver memory"`
	MemoryCapacity int    `mapstructure:"memory_capacity" validate:"gt=0"`
}

type AuthConfig struct {
	JWTSecret            string        `mapstructure:"jwt_secret" validate:"required,min=32"`
	TokenTTL             time.Duration `mapstructure:"token_ttl" validate:"gt=0"`
	OperatorEmail        string        `mapstructure:"operator_email" validate:"omitempty,email"`
	OperatorName         string        `mapstructure:"operator_name"`
	OperatorPasswordHash string        `mapstructure:"operator_password_hash" validate:"required_with=OperatorEmail"`
}

// SMTPConfig leaves notifications disabled when Addr is empty.
type SMTPConfig struct {
	Addr     string        `mapstructure:"addr" validate:"omitempty,hostname_port"`
	From     string        `mapstructure:"from" validate:"required_with=Addr,omitempty,email"`
	Username string        `mapstructure:"username"`
	Password string        `mapstructure:"password"`
	Timeout  time.Duration `mapstructure:"timeout" validate:"gt=0"`
}
