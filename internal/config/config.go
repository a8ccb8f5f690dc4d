package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// AuthConfig contains all authentication settings.
//
// BaseURL is the identity provider's public base URL. It serves three roles:
// the JWKS endpoint is derived from it ({base_url}/api/auth/jwks), and both
// the audience and issuer claims of every accepted token must equal it.
type AuthConfig struct {
	BaseURL           string `mapstructure:"base_url"            validate:"required,url"`
	KeyRefreshMinutes int    `mapstructure:"key_refresh_minutes" validate:"required,gt=0"`
}
