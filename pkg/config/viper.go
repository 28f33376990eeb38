package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type loadOptions struct {
	envFiles []string
	defaults map[string]any
	env      map[string]string
}

// Option tunes Load.
type Option func(*loadOptions)

// WithEnvFiles overrides the dotenv files read before anything else.
// Missing files are skipped. The default is ".env".
func WithEnvFiles(files ...string) Option {
	return func(o *loadOptions) { o.envFiles = files }
}

// WithDefaults sets the value used for each key no other source sets.
func WithDefaults(defaults map[string]any) Option {
	return func(o *loadOptions) { o.defaults = defaults }
}

// WithEnv binds config keys to explicit environment variable names, on top
// of the automatic SECTION_KEY mapping.
func WithEnv(env map[string]string) Option {
	return func(o *loadOptions) { o.env = env }
}

// Load builds a viper instance from, lowest precedence first: defaults,
// <configPath>/<configName>.yaml, dotenv files and the process environment.
// A missing yaml file is not an error.
func Load(configPath, configName string, opts ...Option) (*viper.Viper, error) {
	o := loadOptions{envFiles: []string{".env"}}
	for _, opt := range opts {
		opt(&o)
	}

	if err := loadEnvFiles(o.envFiles); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigName(configName)
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AddConfigPath(".")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	for key, value := range o.defaults {
		v.SetDefault(key, value)
	}
	if err := bindEnv(v, o.env); err != nil {
		return nil, err
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}
	return v, nil
}

func loadEnvFiles(files []string) error {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// bindEnv binds in key order so a failure always names the same key.
func bindEnv(v *viper.Viper, env map[string]string) error {
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if err := v.BindEnv(k, env[k]); err != nil {
			return fmt.Errorf("failed to bind %s to %s: %w", k, env[k], err)
		}
	}
	return nil
}
