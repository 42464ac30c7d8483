// Package config loads the application settings from the process environment
// and an optional .env file.
package config

import (
	"bytes"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"io/fs"
	"net/url"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/skeletonhq/backend/internal/logger"
)

const (
	// DefaultEnvFile is read when no env file path is given.
	DefaultEnvFile = ".env"

	// LogFileMaxSizeMB is the size in megabytes at which the log file is rotated.
	LogFileMaxSizeMB = 10

	// LogFileMaxBackups is the number of rotated log files kept.
	LogFileMaxBackups = 5

	// DefaultShutdownTimeout bounds the graceful shutdown.
	DefaultShutdownTimeout = 10 * time.Second

	secretKeyBytes = 32
	redacted       = "**********"
)

// defaults for every key. A key must be listed here to be picked up from the environment.
var defaults = map[string]any{ //nolint:gochecknoglobals
	"app_name":                    "API Backend",
	"version":                     "1.0.0",
	"debug":                       false,
	"environment":                 "development",
	"api_v1_str":                  "/api/v1",
	"secret_key":                  "",
	"algorithm":                   "HS256",
	"access_token_expire_minutes": 30,
	"host":                        "0.0.0.0",
	"port":                        8000,
	"shutdown_timeout":            DefaultShutdownTimeout,
	"allowed_hosts":               []string{"yourdomain.com", "*.yourdomain.com"},
	"static_dir":                  "./static",
	"database_url":                "",
	"redis_url":                   "redis://localhost:6379/0",
	"backend_cors_origins":        []string{},
	"smtp_tls":                    true,
	"smtp_port":                   0,
	"smtp_host":                   "",
	"smtp_user":                   "",
	"smtp_password":               "",
	"upload_dir":                  "./uploads",
	"max_file_size":               10 * 1024 * 1024,
	"bcrypt_rounds":               12,
	"rate_limit_per_minute":       60,
	"rate_limit_storage":          "memory",
	"log_level":                   "INFO",
	"log_file":                    "./logs/app.log",
	"sentry_dsn":                  "",
}

// Load reads the settings.
// Values are taken from the process environment first, then from envFile
// (DefaultEnvFile if empty, ignored when missing), then from the defaults.
func Load(envFile string) (*Settings, error) {
	var (
		v   = viper.New()
		s   Settings
		err error
	)

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err = mergeEnvFile(v, envFile); err != nil {
		return nil, err
	}

	v.AllowEmptyEnv(true)
	v.AutomaticEnv()

	err = v.Unmarshal(&s, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		stringListHook(),
		mapstructure.StringToTimeDurationHookFunc(),
	)))
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode settings")
	}

	if s.SecretKey == "" {
		if s.SecretKey, err = newSecretKey(); err != nil {
			return nil, err
		}
	}

	if err = validate(&s); err != nil {
		return nil, err
	}

	return &s, nil
}

// mergeEnvFile adds the upper case keys of a dotenv file as a config layer.
// Config layers rank below the environment in viper, so real env vars win.
func mergeEnvFile(v *viper.Viper, path string) error {
	if path == "" {
		path = DefaultEnvFile
	}

	values, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}

		return errors.Wrapf(err, "failed to read env file %s", path)
	}

	layer := make(map[string]any, len(values))

	for key, value := range values {
		// names are case sensitive, like the environment itself
		if key != strings.ToUpper(key) {
			continue
		}

		layer[strings.ToLower(key)] = value
	}

	return errors.Wrap(v.MergeConfigMap(layer), "failed to merge env file")
}

// newSecretKey returns 32 random bytes, URL-safe base64 encoded.
func newSecretKey() (string, error) {
	b := make([]byte, secretKeyBytes)
	if _, err := rand.Read(b); err != nil {
		return "", errors.Wrap(err, "failed to generate secret key")
	}

	return base64.RawURLEncoding.EncodeToString(b), nil
}

// validate the decoded settings, naming failed fields by their env variable.
func validate(s *Settings) error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return fld.Tag.Get("json")
	})

	if err := validate.Struct(s); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return errors.Wrap(err, ErrInvalidSettings.Error())
		}

		msgs := make([]string, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			msgs = append(msgs, fe.Field()+" failed on '"+fe.Tag()+"'")
		}

		return errors.Wrap(ErrInvalidSettings, strings.Join(msgs, ", "))
	}

	if _, err := logger.ParseLevel(s.LogLevel); err != nil {
		return errors.Wrap(ErrInvalidSettings, "LOG_LEVEL "+s.LogLevel+" is not supported")
	}

	return nil
}

// Log returns the logger configuration derived from the settings.
func (s *Settings) Log() logger.Log {
	return logger.Log{
		LogLevel:    s.LogLevel,
		AppName:     s.AppName,
		ServiceName: strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s.AppName)), " ", "-"),
		Console: logger.Console{
			Enabled:          true,
			UseConsoleWriter: s.Debug,
		},
		File: logger.LogFile{
			Enabled:    s.LogFile != "",
			Filename:   s.LogFile,
			MaxSize:    LogFileMaxSizeMB,
			MaxBackups: LogFileMaxBackups,
		},
		Quiet: logger.DefaultQuiet(),
	}
}

// DumpJSON settings as indented JSON string with secrets redacted.
func DumpJSON(s *Settings) (string, error) {
	var buffer bytes.Buffer

	c := *s
	c.SecretKey = redact(c.SecretKey)
	c.SMTPPassword = redact(c.SMTPPassword)
	c.SentryDSN = redact(c.SentryDSN)
	c.DatabaseURL = redactURL(c.DatabaseURL)
	c.RedisURL = redactURL(c.RedisURL)

	j := json.NewEncoder(&buffer)
	j.SetIndent("", "  ")

	if err := j.Encode(c); err != nil {
		return "", err //nolint: wrapcheck
	}

	return buffer.String(), nil
}

func redact(v string) string {
	if v == "" {
		return ""
	}

	return redacted
}

func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return redact(raw)
	}

	return u.Redacted()
}
