// Package config provides configuration loading and management for the registration server.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/stacklok/event-registration-server/internal/telemetry"
)

const (
	// StorageTypeFile keeps registrations in a single JSON file
	StorageTypeFile = "file"

	// StorageTypeMemory keeps registrations in process memory
	StorageTypeMemory = "memory"

	// StorageTypeDatabase keeps registrations in PostgreSQL
	StorageTypeDatabase = "database"
)

// EnvPrefix is the prefix of the environment variables read by the server
const EnvPrefix = "REG"

// Environment variables holding secrets
const (
	EnvAdminPassword    = "REG_ADMIN_PASSWORD"
	EnvSessionSecret    = "REG_SESSION_SECRET"
	EnvDatabasePassword = "REG_DATABASE_PASSWORD"
)

const (
	// DefaultAddress is the address the server listens on
	DefaultAddress = ":5000"

	// DefaultFilePath is the registrations file used when none is configured
	DefaultFilePath = "registrations.json"

	// DefaultAdminEmail is the admin login used when none is configured
	DefaultAdminEmail = "Admin@gdg"

	// DefaultCookieName is the name of the admin session cookie
	DefaultCookieName = "session"

	// DefaultSessionTTL is how long an admin session stays valid
	DefaultSessionTTL = 12 * time.Hour
)

// ErrNoSecret is returned by the secret getters when nothing is configured
var ErrNoSecret = errors.New("secret not configured")

// Option defines the interface for configuration options
type Option func(*loaderConfig) error

type loaderConfig struct {
	path string
}

// WithConfigPath loads configuration from a YAML file
func WithConfigPath(path string) Option {
	return func(cfg *loaderConfig) error {
		if path == "" {
			return fmt.Errorf("path is required")
		}

		// EvalSymlinks also cleans the path.
		realPath, err := filepath.EvalSymlinks(path)
		if err != nil {
			return fmt.Errorf("failed to evaluate symlinks: %w", err)
		}

		if !filepath.IsAbs(realPath) && !filepath.IsLocal(realPath) {
			return fmt.Errorf("path is not local or contains invalid traversal: %s", path)
		}

		cfg.path = realPath
		return nil
	}
}

// Config represents the root configuration structure
type Config struct {
	Server     ServerConfig      `yaml:"server"`
	Storage    StorageConfig     `yaml:"storage"`
	Database   *DatabaseConfig   `yaml:"database,omitempty"`
	Admin      AdminConfig       `yaml:"admin"`
	Session    SessionConfig     `yaml:"session"`
	Validation ValidationConfig  `yaml:"validation"`
	Telemetry  *telemetry.Config `yaml:"telemetry,omitempty"`
}

// ServerConfig defines HTTP listener settings
type ServerConfig struct {
	// Address is the listen address, e.g. ":5000"
	Address string `yaml:"address,omitempty"`
}

// StorageConfig selects and configures the registration store
type StorageConfig struct {
	// Type is one of file, memory or database. Defaults to file.
	Type string      `yaml:"type,omitempty"`
	File *FileConfig `yaml:"file,omitempty"`
}

// FileConfig defines the JSON file store settings
type FileConfig struct {
	// Path is the registrations file, relative to the working directory or absolute
	Path string `yaml:"path"`
}

// AdminConfig holds the single admin credential pair
type AdminConfig struct {
	Email string `yaml:"email,omitempty"`

	// PasswordFile is a file containing the admin password.
	// REG_ADMIN_PASSWORD is used when unset.
	PasswordFile string `yaml:"passwordFile,omitempty"`
}

// SessionConfig defines admin session cookie settings
type SessionConfig struct {
	CookieName string `yaml:"cookieName,omitempty"`

	// TTL is a duration string such as "12h"
	TTL string `yaml:"ttl,omitempty"`

	// Secure marks the cookie as HTTPS-only
	Secure bool `yaml:"secure,omitempty"`

	// SecretFile is a file containing the session signing key.
	// REG_SESSION_SECRET is used when unset.
	SecretFile string `yaml:"secretFile,omitempty"`
}

// ValidationConfig toggles optional intake checks
type ValidationConfig struct {
	// Strict enables email, phone and name format checks
	Strict bool `yaml:"strict,omitempty"`
}

// DatabaseConfig defines database connection settings
type DatabaseConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	User string `yaml:"user"`

	// PasswordFile is a file containing only the password.
	// REG_DATABASE_PASSWORD is used when unset.
	PasswordFile string `yaml:"passwordFile,omitempty"`

	Database string `yaml:"database"`

	// SSLMode is one of disable, require, verify-ca, verify-full. Defaults to require.
	SSLMode string `yaml:"sslMode,omitempty"`

	MaxOpenConns int32 `yaml:"maxOpenConns,omitempty"`
	MaxIdleConns int32 `yaml:"maxIdleConns,omitempty"`

	// ConnMaxLifetime is a duration string such as "1h"
	ConnMaxLifetime string `yaml:"connMaxLifetime,omitempty"`
}

// Default returns the configuration used when no file is given
func Default() *Config {
	return &Config{
		Server:  ServerConfig{Address: DefaultAddress},
		Storage: StorageConfig{Type: StorageTypeFile, File: &FileConfig{Path: DefaultFilePath}},
		Admin:   AdminConfig{Email: DefaultAdminEmail},
		Session: SessionConfig{CookieName: DefaultCookieName, TTL: DefaultSessionTTL.String()},
	}
}

// LoadConfig loads configuration from a YAML file, or returns the defaults
// when no path option is given.
func LoadConfig(opts ...Option) (*Config, error) {
	loaderCfg := &loaderConfig{}
	for _, opt := range opts {
		if err := opt(loaderCfg); err != nil {
			return nil, err
		}
	}

	config := Default()
	if loaderCfg.path != "" {
		data, err := os.ReadFile(loaderCfg.path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	}

	config.applyDefaults()

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// applyDefaults fills values a YAML file may have blanked
func (c *Config) applyDefaults() {
	if c.Server.Address == "" {
		c.Server.Address = DefaultAddress
	}
	if c.Storage.Type == "" {
		c.Storage.Type = StorageTypeFile
	}
	if c.Storage.Type == StorageTypeFile && (c.Storage.File == nil || c.Storage.File.Path == "") {
		c.Storage.File = &FileConfig{Path: DefaultFilePath}
	}
	if c.Admin.Email == "" {
		c.Admin.Email = DefaultAdminEmail
	}
	if c.Session.CookieName == "" {
		c.Session.CookieName = DefaultCookieName
	}
	if c.Session.TTL == "" {
		c.Session.TTL = DefaultSessionTTL.String()
	}
}

func (c *Config) validate() error {
	if c == nil {
		return fmt.Errorf("config cannot be nil")
	}

	var errs []error

	switch c.Storage.Type {
	case StorageTypeFile, StorageTypeMemory:
	case StorageTypeDatabase:
		if c.Database == nil {
			errs = append(errs, fmt.Errorf("storage.type %q requires a database section", StorageTypeDatabase))
		} else if err := c.Database.validate(); err != nil {
			errs = append(errs, fmt.Errorf("database: %w", err))
		}
	default:
		errs = append(errs, fmt.Errorf("storage.type must be one of %s, %s or %s, got %q",
			StorageTypeFile, StorageTypeMemory, StorageTypeDatabase, c.Storage.Type))
	}

	if _, err := c.Session.GetTTL(); err != nil {
		errs = append(errs, err)
	}

	if err := c.Telemetry.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("telemetry: %w", err))
	}

	return errors.Join(errs...)
}

// GetTTL parses the session TTL
func (s *SessionConfig) GetTTL() (time.Duration, error) {
	if s.TTL == "" {
		return DefaultSessionTTL, nil
	}
	ttl, err := time.ParseDuration(s.TTL)
	if err != nil {
		return 0, fmt.Errorf("session.ttl must be a valid duration (e.g., '12h'): %w", err)
	}
	if ttl <= 0 {
		return 0, fmt.Errorf("session.ttl must be positive, got %s", s.TTL)
	}
	return ttl, nil
}

// GetPassword returns the admin password from PasswordFile, then REG_ADMIN_PASSWORD.
func (a *AdminConfig) GetPassword() (string, error) {
	return readSecret(a.PasswordFile, EnvAdminPassword)
}

// GetSecret returns the session signing key from SecretFile, then
// REG_SESSION_SECRET. ErrNoSecret means the caller should generate one.
func (s *SessionConfig) GetSecret() ([]byte, error) {
	secret, err := readSecret(s.SecretFile, EnvSessionSecret)
	if err != nil {
		return nil, err
	}
	return []byte(secret), nil
}

// GetPassword returns the database password from PasswordFile, then REG_DATABASE_PASSWORD.
func (d *DatabaseConfig) GetPassword() (string, error) {
	return readSecret(d.PasswordFile, EnvDatabasePassword)
}

// GetConnectionString builds a PostgreSQL URL. The password is URL-escaped.
func (d *DatabaseConfig) GetConnectionString() (string, error) {
	password, err := d.GetPassword()
	if err != nil {
		return "", fmt.Errorf("failed to get database password: %w", err)
	}

	sslMode := d.SSLMode
	if sslMode == "" {
		sslMode = "require"
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, password),
		Host:     fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:     "/" + d.Database,
		RawQuery: url.Values{"sslmode": []string{sslMode}}.Encode(),
	}
	return u.String(), nil
}

func (d *DatabaseConfig) validate() error {
	var errs []error
	if d.Host == "" {
		errs = append(errs, fmt.Errorf("host is required"))
	}
	if d.Port <= 0 {
		errs = append(errs, fmt.Errorf("port is required"))
	}
	if d.User == "" {
		errs = append(errs, fmt.Errorf("user is required"))
	}
	if d.Database == "" {
		errs = append(errs, fmt.Errorf("database name is required"))
	}
	if d.ConnMaxLifetime != "" {
		if _, err := time.ParseDuration(d.ConnMaxLifetime); err != nil {
			errs = append(errs, fmt.Errorf("invalid connMaxLifetime: %w", err))
		}
	}
	return errors.Join(errs...)
}

// readSecret reads a trimmed secret from file, falling back to the environment
func readSecret(file, envVar string) (string, error) {
	if file != "" {
		data, err := os.ReadFile(filepath.Clean(file))
		if err != nil {
			return "", fmt.Errorf("failed to read secret from file %s: %w", file, err)
		}
		secret := strings.TrimSpace(string(data))
		if secret == "" {
			return "", fmt.Errorf("secret file %s is empty", file)
		}
		return secret, nil
	}

	if v := os.Getenv(envVar); v != "" {
		return v, nil
	}

	return "", fmt.Errorf("%w: set a file or the %s environment variable", ErrNoSecret, envVar)
}
