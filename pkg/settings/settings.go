// Package settings loads shelfwright settings.
//
// Precedence: defaults, then a YAML file, then SHELFWRIGHT_* environment
// variables. A missing file is not an error.
//
//	s, err := settings.NewLoader().
//	    WithConfigPath("shelfwright.yaml").
//	    Load()
package settings

import (
	"encoding"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/chazu/shelfwright/pkg/kernel/sdfx"
	"github.com/chazu/shelfwright/pkg/shelf"
	"gopkg.in/yaml.v3"
)

// DefaultEnvPrefix prefixes every environment override.
const DefaultEnvPrefix = "SHELFWRIGHT"

// Settings is the complete settings tree.
type Settings struct {
	// Shelf is the configuration the preview opens with.
	Shelf shelf.Configuration `yaml:"shelf" env:"SHELF"`
	// Materials overrides entries of the built-in material table.
	Materials shelf.MaterialTable `yaml:"materials"`
	Mesh      MeshSettings        `yaml:"mesh" env:"MESH"`
	Engine    EngineSettings      `yaml:"engine" env:"ENGINE"`
	Log       LogSettings         `yaml:"log" env:"LOG"`
}

// MeshSettings tunes tessellation.
type MeshSettings struct {
	Kernel  string  `yaml:"kernel" env:"KERNEL"` // sdfx or manifold
	Detail  float64 `yaml:"detail" env:"DETAIL"`
	Workers int     `yaml:"workers" env:"WORKERS"` // 0 means GOMAXPROCS
}

// EngineSettings tunes .shelf evaluation.
type EngineSettings struct {
	Timeout time.Duration `yaml:"timeout" env:"TIMEOUT"`
}

// LogSettings selects the zap logger.
type LogSettings struct {
	Level  string `yaml:"level" env:"LEVEL"`   // debug, info, warn, error
	Format string `yaml:"format" env:"FORMAT"` // json or console
}

// Default returns the built-in settings.
func Default() *Settings {
	return &Settings{
		Shelf: shelf.DefaultConfiguration(),
		Mesh:  MeshSettings{Kernel: "sdfx", Detail: sdfx.DefaultDetail},
		Engine: EngineSettings{
			Timeout: 5 * time.Second,
		},
		Log: LogSettings{Level: "info", Format: "console"},
	}
}

// MaterialTable returns the built-in table with the configured overrides applied.
func (s *Settings) MaterialTable() shelf.MaterialTable {
	return shelf.DefaultMaterials().Merge(s.Materials)
}

// Validate checks the loaded settings.
func (s *Settings) Validate() error {
	var errs []string
	if _, err := shelf.NormalizeWith(s.Shelf, s.MaterialTable()); err != nil {
		errs = append(errs, err.Error())
	}
	switch s.Mesh.Kernel {
	case "sdfx", "manifold":
	default:
		errs = append(errs, fmt.Sprintf("mesh.kernel %q must be sdfx or manifold", s.Mesh.Kernel))
	}
	if s.Mesh.Detail < 0 {
		errs = append(errs, "mesh.detail must not be negative")
	}
	if s.Mesh.Workers < 0 {
		errs = append(errs, "mesh.workers must not be negative")
	}
	if s.Engine.Timeout <= 0 {
		errs = append(errs, "engine.timeout must be positive")
	}
	if _, err := parseLevel(s.Log.Level); err != nil {
		errs = append(errs, err.Error())
	}
	switch s.Log.Format {
	case "json", "console":
	default:
		errs = append(errs, fmt.Sprintf("log.format %q must be json or console", s.Log.Format))
	}
	if len(errs) > 0 {
		return fmt.Errorf("settings validation errors: %s", strings.Join(errs, "; "))
	}
	return nil
}

// Loader builds Settings from defaults, a file and the environment.
type Loader struct {
	configPath string
	envPrefix  string
	lookupEnv  func(string) (string, bool)
}

// NewLoader creates a loader reading the process environment.
func NewLoader() *Loader {
	return &Loader{
		envPrefix: DefaultEnvPrefix,
		lookupEnv: os.LookupEnv,
	}
}

// WithConfigPath sets the YAML file to read.
func (l *Loader) WithConfigPath(path string) *Loader {
	l.configPath = path
	return l
}

// WithEnvPrefix sets the environment variable prefix.
func (l *Loader) WithEnvPrefix(prefix string) *Loader {
	l.envPrefix = prefix
	return l
}

// WithEnv replaces the environment lookup, for tests.
func (l *Loader) WithEnv(lookup func(string) (string, bool)) *Loader {
	l.lookupEnv = lookup
	return l
}

// Load applies defaults, the file and the environment in that order, then
// validates the result.
func (l *Loader) Load() (*Settings, error) {
	s := Default()

	if l.configPath != "" {
		if err := l.loadFromFile(s); err != nil {
			return nil, fmt.Errorf("failed to load settings from file: %w", err)
		}
	}
	if err := setFieldsFromEnv(reflect.ValueOf(s).Elem(), l.envPrefix, l.lookupEnv); err != nil {
		return nil, fmt.Errorf("failed to load settings from env: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (l *Loader) loadFromFile(s *Settings) error {
	data, err := os.ReadFile(l.configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read settings file: %w", err)
	}
	if err := yaml.Unmarshal(data, s); err != nil {
		return fmt.Errorf("failed to parse settings file: %w", err)
	}
	return nil
}

// setFieldsFromEnv walks v and sets every field with an env tag from
// PREFIX_TAG, recursing into nested structs.
func setFieldsFromEnv(v reflect.Value, prefix string, lookup func(string) (string, bool)) error {
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		envTag := t.Field(i).Tag.Get("env")
		if envTag == "" || envTag == "-" {
			continue
		}
		key := prefix + "_" + envTag

		if field.Kind() == reflect.Struct && !isTextUnmarshaler(field) {
			if err := setFieldsFromEnv(field, key, lookup); err != nil {
				return err
			}
			continue
		}

		value, ok := lookup(key)
		if !ok || value == "" {
			continue
		}
		if err := setFieldValue(field, value); err != nil {
			return fmt.Errorf("failed to set %s: %w", key, err)
		}
	}
	return nil
}

func isTextUnmarshaler(field reflect.Value) bool {
	if !field.CanAddr() {
		return false
	}
	_, ok := field.Addr().Interface().(encoding.TextUnmarshaler)
	return ok
}

func setFieldValue(field reflect.Value, value string) error {
	if !field.CanSet() {
		return nil
	}
	if isTextUnmarshaler(field) {
		return field.Addr().Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(value))
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			d, err := time.ParseDuration(value)
			if err != nil {
				return err
			}
			field.SetInt(int64(d))
			return nil
		}
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return err
		}
		field.SetInt(n)

	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		field.SetFloat(f)

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		field.SetBool(b)

	default:
		return fmt.Errorf("unsupported field kind %s", field.Kind())
	}
	return nil
}
