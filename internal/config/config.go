package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/mmcdole/letterplex/internal/domain"
)

// AuthMethod selects how the Plex server is reached
type AuthMethod string

const (
	AuthDirect  AuthMethod = "direct"  // base URL + token
	AuthAccount AuthMethod = "account" // plex.tv username/password + server name
)

const (
	// FileName is the config file looked up when no explicit path is given
	FileName = "config.yaml"
	appName  = "letterplex"
)

// Config holds all application configuration
type Config struct {
	Plex    PlexConfig    `mapstructure:"plex"`
	Export  ExportConfig  `mapstructure:"export"`
	Logging LoggingConfig `mapstructure:"logging"`

	path string // file the config was read from
}

// PlexConfig holds media server configuration
type PlexConfig struct {
	AuthMethod        AuthMethod    `mapstructure:"auth_method" validate:"oneof=direct account"`
	BaseURL           string        `mapstructure:"baseurl" validate:"omitempty,url"`
	Token             string        `mapstructure:"token" validate:"required_if=AuthMethod direct"`
	Username          string        `mapstructure:"username" validate:"required_if=AuthMethod account"`
	Password          string        `mapstructure:"password"`
	ServerName        string        `mapstructure:"servername" validate:"required_if=AuthMethod account"`
	Library           string        `mapstructure:"library" validate:"required"`
	IncludeUnwatched  bool          `mapstructure:"include_unwatched"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second" validate:"gte=0"`
	Timeout           time.Duration `mapstructure:"timeout" validate:"gte=0"`
}

// ExportConfig holds output file locations
type ExportConfig struct {
	Dir              string `mapstructure:"dir"`
	MasterFile       string `mapstructure:"master_file" validate:"required"`
	OutputFile       string `mapstructure:"output_file" validate:"required"`
	JournalFile      string `mapstructure:"journal_file"` // empty disables the run journal
	JournalRetention int    `mapstructure:"journal_retention" validate:"gte=0"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File         string `mapstructure:"file"` // empty disables the log file
	Level        string `mapstructure:"level" validate:"oneof=debug info warn error"`
	ConsoleLevel string `mapstructure:"console_level" validate:"oneof=debug info warn error"`
	MaxSizeMB    int    `mapstructure:"max_size_mb" validate:"gte=1"`
	MaxBackups   int    `mapstructure:"max_backups" validate:"gte=0"`
	ArchiveDir   string `mapstructure:"archive_dir"`
}

// Path returns the file the configuration was loaded from
func (c *Config) Path() string {
	return c.path
}

// MasterPath returns the master file location
func (c *Config) MasterPath() string {
	return c.resolve(c.Export.MasterFile)
}

// JournalPath returns the run journal location, or "" when disabled
func (c *Config) JournalPath() string {
	if c.Export.JournalFile == "" {
		return ""
	}
	return c.resolve(c.Export.JournalFile)
}

// resolve anchors relative file names in the export directory
func (c *Config) resolve(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.Export.Dir, name)
}

// setDefaults sets default values in viper
func setDefaults(v *viper.Viper) {
	// Plex defaults
	v.SetDefault("plex.auth_method", string(AuthDirect))
	v.SetDefault("plex.baseurl", "http://localhost:32400")
	v.SetDefault("plex.token", "")
	v.SetDefault("plex.username", "")
	v.SetDefault("plex.password", "")
	v.SetDefault("plex.servername", "")
	v.SetDefault("plex.library", "Movies")
	v.SetDefault("plex.include_unwatched", false)
	v.SetDefault("plex.requests_per_second", 0)
	v.SetDefault("plex.timeout", "30s")

	// Export defaults
	v.SetDefault("export.dir", ".")
	v.SetDefault("export.master_file", "letterboxd_master.csv")
	v.SetDefault("export.output_file", "letterboxd_import.csv")
	v.SetDefault("export.journal_file", "letterplex.db")
	v.SetDefault("export.journal_retention", 100)

	// Logging defaults
	v.SetDefault("logging.file", "output.log")
	v.SetDefault("logging.level", "debug")
	v.SetDefault("logging.console_level", "info")
	v.SetDefault("logging.max_size_mb", 1)
	v.SetDefault("logging.max_backups", 5)
	v.SetDefault("logging.archive_dir", "old_logs")
}

// defaultConfigDir returns the per-user config directory for the current OS
func defaultConfigDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, appName)
}

// Load reads configuration from file and environment variables.
// Priority: environment variables > config file > defaults.
//
// When no config file exists, a default one is written (to path, or to
// ./config.yaml) and domain.ErrConfigCreated is returned.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(strings.TrimSuffix(FileName, filepath.Ext(FileName)))
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir := defaultConfigDir(); dir != "" {
			v.AddConfigPath(dir)
		}
	}

	// Environment variable overrides, e.g. LETTERPLEX_PLEX_TOKEN
	v.SetEnvPrefix(strings.ToUpper(appName))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: failed to read config file: %v", domain.ErrConfig, err)
		}

		target := path
		if target == "" {
			target = FileName
		}
		if err := writeDefault(target); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s", domain.ErrConfigCreated, target)
	}

	cfg := &Config{path: v.ConfigFileUsed()}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", domain.ErrConfig, err)
	}

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Defaults returns the configuration used when no file or environment
// overrides apply.
func Defaults() *Config {
	v := viper.New()
	setDefaults(v)

	cfg := &Config{}
	// Defaults are plain scalars; decoding them cannot fail
	_ = v.Unmarshal(cfg)
	cfg.normalize()
	return cfg
}

// writeDefault writes a config file with placeholder credentials
func writeDefault(path string) error {
	v := viper.New()
	setDefaults(v)
	v.Set("plex.baseurl", "http://replace_me:32400")
	v.Set("plex.servername", "replace_me")

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	v.SetConfigType("yaml")
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func (c *Config) normalize() {
	c.Plex.AuthMethod = AuthMethod(strings.ToLower(strings.TrimSpace(string(c.Plex.AuthMethod))))
	c.Plex.BaseURL = strings.TrimRight(strings.TrimSpace(c.Plex.BaseURL), "/")
	c.Logging.Level = strings.ToLower(c.Logging.Level)
	c.Logging.ConsoleLevel = strings.ToLower(c.Logging.ConsoleLevel)
	if c.Export.Dir == "" {
		c.Export.Dir = "."
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the configuration; failures wrap domain.ErrConfig
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return fmt.Errorf("%w: %v", domain.ErrConfig, err)
	}

	messages := make([]string, 0, len(validationErrs))
	for _, fe := range validationErrs {
		messages = append(messages, translateError(fe))
	}
	return fmt.Errorf("%w: %s", domain.ErrConfig, strings.Join(messages, "; "))
}

// translateError converts a validator.FieldError to a readable message
func translateError(fe validator.FieldError) string {
	field := fe.Namespace()
	switch fe.Tag() {
	case "required", "required_if":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}

// EnsurePassword prompts for the account password when it is not configured.
// Prompting requires in to be a terminal; otherwise a missing password is a
// configuration error.
func (c *Config) EnsurePassword(in *os.File, out io.Writer) error {
	if c.Plex.AuthMethod != AuthAccount || c.Plex.Password != "" {
		return nil
	}

	fd := int(in.Fd())
	if !term.IsTerminal(fd) {
		return fmt.Errorf("%w: plex.password is required for account authentication", domain.ErrConfig)
	}

	fmt.Fprintf(out, "Plex password for %s: ", c.Plex.Username)
	password, err := term.ReadPassword(fd)
	fmt.Fprintln(out)
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}

	c.Plex.Password = strings.TrimSpace(string(password))
	if c.Plex.Password == "" {
		return fmt.Errorf("%w: plex.password is required for account authentication", domain.ErrConfig)
	}
	return nil
}
