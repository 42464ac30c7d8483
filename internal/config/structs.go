package config

import (
	"net"
	"strconv"
	"time"
)

// Settings overall data structure.
// Built once by Load and passed around read-only.
type Settings struct {
	// Application
	AppName                  string `mapstructure:"app_name" json:"APP_NAME" validate:"required"`
	Version                  string `mapstructure:"version" json:"VERSION" validate:"required"`
	Debug                    bool   `mapstructure:"debug" json:"DEBUG"`
	Environment              string `mapstructure:"environment" json:"ENVIRONMENT"`
	APIV1Str                 string `mapstructure:"api_v1_str" json:"API_V1_STR" validate:"required,startswith=/"`
	SecretKey                string `mapstructure:"secret_key" json:"SECRET_KEY" validate:"required"`
	Algorithm                string `mapstructure:"algorithm" json:"ALGORITHM" validate:"required"`
	AccessTokenExpireMinutes int    `mapstructure:"access_token_expire_minutes" json:"ACCESS_TOKEN_EXPIRE_MINUTES" validate:"gt=0"` //nolint:lll

	// Webserver
	Host            string        `mapstructure:"host" json:"HOST"`
	Port            int           `mapstructure:"port" json:"PORT" validate:"min=1,max=65535"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" json:"SHUTDOWN_TIMEOUT" validate:"gte=0"`
	AllowedHosts    StringList    `mapstructure:"allowed_hosts" json:"ALLOWED_HOSTS"`
	StaticDir       string        `mapstructure:"static_dir" json:"STATIC_DIR" validate:"required"`

	// Database
	DatabaseURL string `mapstructure:"database_url" json:"DATABASE_URL" validate:"required"`

	// Redis
	RedisURL string `mapstructure:"redis_url" json:"REDIS_URL"`

	// CORS
	BackendCORSOrigins StringList `mapstructure:"backend_cors_origins" json:"BACKEND_CORS_ORIGINS"`

	// Email
	SMTPTLS      bool   `mapstructure:"smtp_tls" json:"SMTP_TLS"`
	SMTPPort     int    `mapstructure:"smtp_port" json:"SMTP_PORT" validate:"gte=0,lte=65535"` // 0 = unset
	SMTPHost     string `mapstructure:"smtp_host" json:"SMTP_HOST"`
	SMTPUser     string `mapstructure:"smtp_user" json:"SMTP_USER"`
	SMTPPassword string `mapstructure:"smtp_password" json:"SMTP_PASSWORD"`

	// File upload
	UploadDir   string `mapstructure:"upload_dir" json:"UPLOAD_DIR" validate:"required"`
	MaxFileSize int    `mapstructure:"max_file_size" json:"MAX_FILE_SIZE" validate:"gt=0"`

	// Security
	BcryptRounds       int    `mapstructure:"bcrypt_rounds" json:"BCRYPT_ROUNDS" validate:"min=4,max=31"`
	RateLimitPerMinute int    `mapstructure:"rate_limit_per_minute" json:"RATE_LIMIT_PER_MINUTE" validate:"gte=0"`
	RateLimitStorage   string `mapstructure:"rate_limit_storage" json:"RATE_LIMIT_STORAGE" validate:"oneof=memory database"` //nolint:lll

	// Logging
	LogLevel string `mapstructure:"log_level" json:"LOG_LEVEL" validate:"required"`
	LogFile  string `mapstructure:"log_file" json:"LOG_FILE"`

	// Third-party
	SentryDSN string `mapstructure:"sentry_dsn" json:"SENTRY_DSN"`
}

// ListenAddr returns host:port for the webserver.
func (s *Settings) ListenAddr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// AccessTokenExpire returns the access token lifetime.
func (s *Settings) AccessTokenExpire() time.Duration {
	return time.Duration(s.AccessTokenExpireMinutes) * time.Minute
}
