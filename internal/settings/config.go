// Package settings manages LuCLI's user-wide preferences file
// (~/.config/lucli/settings.json), as distinct from a project's
// per-instance lucee.json manifest (see internal/manifest).
package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// Default configuration values.
const (
	DefaultConfigDir  = ".config/lucli"
	DefaultConfigFile = "settings.json"
	DefaultHomeDir    = ".local/share/lucli"
)

// defaultRuntimeType is the runtime variant used when a manifest omits runtime.type.
const defaultRuntimeType = "embedded"

// Sentinel errors for configuration operations.
var (
	ErrInvalidKey     = errors.New("invalid configuration key")
	ErrInvalidRuntime = errors.New("invalid runtime type")
	ErrNoEditor       = errors.New("$EDITOR environment variable not set")
)

// validRuntimes contains the allowed default runtime.type values.
var validRuntimes = map[string]bool{
	"embedded":           true,
	"external-container": true,
	"container":          true,
}

// validKeys is built once from Settings struct reflection.
var validKeys = buildValidKeys()

// validate is the shared validator instance.
var validate = validator.New()

// Settings represents LuCLI's user-wide configuration.
type Settings struct {
	Default DefaultSettings `mapstructure:"default" validate:"required"`
	Storage StorageSettings `mapstructure:"storage" validate:"required"`
	Runtime RuntimeSettings `mapstructure:"runtime"`
}

// DefaultSettings holds defaults applied when a project manifest omits them.
type DefaultSettings struct {
	RuntimeType string `mapstructure:"runtime_type" validate:"omitempty,oneof=embedded external-container container"`
	EngineImage string `mapstructure:"engine_image"`
}

// StorageSettings holds filesystem locations used across all instances.
type StorageSettings struct {
	Home    string `mapstructure:"home" validate:"required"`    // servers/, logs/, secrets/
	Engines string `mapstructure:"engines" validate:"required"` // downloaded embedded engine distributions
	Logs    string `mapstructure:"logs" validate:"required"`
}

// RuntimeSettings holds container-runtime-specific configuration.
type RuntimeSettings struct {
	Name       string   `mapstructure:"name" validate:"omitempty,oneof=docker podman"`
	Privileged bool     `mapstructure:"privileged"`
	Flags      []string `mapstructure:"flags"`
}

// Validate checks the configuration for errors using struct tags.
func (s *Settings) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("settings validation failed: %w", err)
	}
	return nil
}

// IsValidRuntimeType returns true if name is a valid runtime.type value.
func IsValidRuntimeType(name string) bool {
	return validRuntimes[name]
}

// ValidRuntimeTypeNames returns the list of valid runtime.type values.
func ValidRuntimeTypeNames() []string {
	return []string{"embedded", "external-container", "container"}
}

// Loader provides settings loading and saving.
type Loader struct {
	v       *viper.Viper
	path    string
	homeDir string
}

// NewLoader creates a new settings loader rooted at ~/.config/lucli/settings.json.
func NewLoader() (*Loader, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("get home directory: %w", err)
	}

	configPath := filepath.Join(home, DefaultConfigDir, DefaultConfigFile)

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("json")

	v.SetEnvPrefix("LUCLI")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	//nolint:errcheck // BindEnv only fails with zero arguments
	v.BindEnv("default.runtime_type", "LUCLI_RUNTIME_TYPE")
	//nolint:errcheck // BindEnv only fails with zero arguments
	v.BindEnv("default.engine_image", "LUCLI_ENGINE_IMAGE")
	//nolint:errcheck // BindEnv only fails with zero arguments
	v.BindEnv("storage.home", "LUCLI_HOME")
	//nolint:errcheck // BindEnv only fails with zero arguments
	v.BindEnv("runtime.name", "LUCLI_CONTAINER_RUNTIME")

	l := &Loader{
		v:       v,
		path:    configPath,
		homeDir: home,
	}

	l.setDefaults()

	return l, nil
}

// setDefaults sets all default configuration values using Viper.
func (l *Loader) setDefaults() {
	l.v.SetDefault("default.runtime_type", defaultRuntimeType)
	l.v.SetDefault("default.engine_image", "")
	l.v.SetDefault("storage.home", "~/.local/share/lucli")
	l.v.SetDefault("storage.engines", "~/.local/share/lucli/engines")
	l.v.SetDefault("storage.logs", "~/.local/share/lucli/logs")
	l.v.SetDefault("runtime.name", "docker")
	l.v.SetDefault("runtime.privileged", false)
	l.v.SetDefault("runtime.flags", []string{})
}

// Load reads the configuration file, creating defaults if it doesn't exist.
func (l *Loader) Load() (*Settings, error) {
	if _, err := os.Stat(l.path); os.IsNotExist(err) {
		if err := l.createDefault(); err != nil {
			return nil, fmt.Errorf("create default settings: %w", err)
		}
	}

	if err := l.v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var s Settings
	if err := l.v.Unmarshal(&s, func(dc *mapstructure.DecoderConfig) {
		dc.WeaklyTypedInput = true
	}); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	s.Storage.Home = l.expandPath(s.Storage.Home)
	s.Storage.Engines = l.expandPath(s.Storage.Engines)
	s.Storage.Logs = l.expandPath(s.Storage.Logs)

	return &s, nil
}

// Path returns the configuration file path.
func (l *Loader) Path() string {
	return l.path
}

// Get returns a configuration value by dot-notation key.
func (l *Loader) Get(key string) (any, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}
	return l.v.Get(key), nil
}

// Set sets a configuration value by dot-notation key and persists it.
func (l *Loader) Set(key, value string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}

	if key == "default.runtime_type" && value != "" && !validRuntimes[value] {
		return fmt.Errorf("%w: %s (valid: embedded, external-container, container)", ErrInvalidRuntime, value)
	}

	l.v.Set(key, value)
	return l.v.WriteConfig()
}

// createDefault writes the default configuration file using Viper.
func (l *Loader) createDefault() error {
	dir := filepath.Dir(l.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create settings directory: %w", err)
	}

	return l.v.SafeWriteConfigAs(l.path)
}

// expandPath replaces a leading ~ with the home directory.
func (l *Loader) expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(l.homeDir, path[2:])
	}
	if path == "~" {
		return l.homeDir
	}
	return path
}

// ValidateKey checks if a key is a valid configuration key.
func ValidateKey(key string) error {
	if key == "" {
		return fmt.Errorf("%w: empty key", ErrInvalidKey)
	}
	if validKeys[key] {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrInvalidKey, key)
}

// buildValidKeys builds the set of valid keys from the Settings struct using reflection.
func buildValidKeys() map[string]bool {
	keys := make(map[string]bool)
	addKeysFromType(reflect.TypeOf(Settings{}), "", keys)
	return keys
}

// addKeysFromType recursively adds keys from a struct type.
func addKeysFromType(t reflect.Type, prefix string, keys map[string]bool) {
	for i := range t.NumField() {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")
		if tag == "" {
			continue
		}

		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}
		keys[key] = true

		if field.Type.Kind() == reflect.Struct {
			addKeysFromType(field.Type, key, keys)
		}
	}
}
