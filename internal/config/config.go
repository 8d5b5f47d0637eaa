package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"class-remapper/internal/table"
)

// EnvPrefix prefixes every environment variable the loader reads.
const EnvPrefix = "REMAPPER"

// FileName is the config file looked up in the working directory.
const FileName = "remapper"

// Config is the fully resolved run configuration.
type Config struct {
	Input       string    `mapstructure:"input"`
	Output      string    `mapstructure:"output"`
	Mappings    []string  `mapstructure:"mappings"`
	Libs        string    `mapstructure:"libs"`
	Reverse     bool      `mapstructure:"reverse"`
	KeepSource  bool      `mapstructure:"keep_source"`
	Jobs        int       `mapstructure:"jobs"`
	OnCollision string    `mapstructure:"on_collision"`
	CacheDir    string    `mapstructure:"cache_dir"`
	NoCache     bool      `mapstructure:"no_cache"`
	Log         LogConfig `mapstructure:"log"`
}

// LogConfig configures the logger.
type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		Jobs:        runtime.NumCPU(),
		OnCollision: table.RejectCollisions.String(),
		Log:         LogConfig{Level: "info"},
	}
}

// flagKeys maps command-line flag names onto config keys.
var flagKeys = map[string]string{
	"input":        "input",
	"output":       "output",
	"mapping":      "mappings",
	"libs":         "libs",
	"reverse":      "reverse",
	"keep-source":  "keep_source",
	"jobs":         "jobs",
	"on-collision": "on_collision",
	"cache-dir":    "cache_dir",
	"no-cache":     "no_cache",
	"log-level":    "log.level",
	"log-dev":      "log.development",
}

// LoadOptions tells Load where to look besides the defaults.
type LoadOptions struct {
	// File is an explicit config file. It must exist when set.
	File string
	// Dir is searched for remapper.yaml when File is empty. Defaults to ".".
	Dir string
	// Flags are bound by name; only flags the user changed take effect.
	Flags *pflag.FlagSet
}

// Load resolves the layered configuration.
func Load(opts LoadOptions) (*Config, error) {
	v := viper.New()

	def := Default()
	v.SetDefault("input", def.Input)
	v.SetDefault("output", def.Output)
	v.SetDefault("mappings", def.Mappings)
	v.SetDefault("libs", def.Libs)
	v.SetDefault("reverse", def.Reverse)
	v.SetDefault("keep_source", def.KeepSource)
	v.SetDefault("jobs", def.Jobs)
	v.SetDefault("on_collision", def.OnCollision)
	v.SetDefault("cache_dir", def.CacheDir)
	v.SetDefault("no_cache", def.NoCache)
	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("log.development", def.Log.Development)

	if opts.File != "" {
		v.SetConfigFile(opts.File)
	} else {
		dir := opts.Dir
		if dir == "" {
			dir = "."
		}

		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(dir)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if opts.File != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if opts.Flags != nil {
		if err := bindFlags(v, opts.Flags); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	var err error

	flags.VisitAll(func(f *pflag.Flag) {
		key, ok := flagKeys[f.Name]
		if !ok || err != nil {
			return
		}

		if bindErr := v.BindPFlag(key, f); bindErr != nil {
			err = fmt.Errorf("failed to bind flag --%s: %w", f.Name, bindErr)
		}
	})

	return err
}

// Validate checks the settings a remap run needs.
func (c *Config) Validate() error {
	var errs []error

	if c.Input == "" {
		errs = append(errs, errors.New("input container is required"))
	}

	if c.Output == "" {
		errs = append(errs, errors.New("output container is required"))
	}

	if c.Input != "" && c.Output != "" && filepath.Clean(c.Input) == filepath.Clean(c.Output) {
		errs = append(errs, fmt.Errorf("output %s must differ from input", c.Output))
	}

	if len(c.Mappings) == 0 {
		errs = append(errs, errors.New("at least one mapping document is required"))
	}

	if c.Jobs < 0 {
		errs = append(errs, fmt.Errorf("jobs must not be negative, got %d", c.Jobs))
	}

	if _, err := c.CollisionPolicy(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// CollisionPolicy parses OnCollision.
func (c *Config) CollisionPolicy() (table.CollisionPolicy, error) {
	p, err := table.ParseCollisionPolicy(c.OnCollision)
	if err != nil {
		return p, fmt.Errorf("on_collision: %w", err)
	}

	return p, nil
}
