// Package config defines the data structures related to configuration and
// includes functions for loading and checking the config.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/iwvelando/project-appraisal/internal/cache"
	"github.com/iwvelando/project-appraisal/internal/project"
	"github.com/iwvelando/project-appraisal/internal/report"
	"github.com/iwvelando/project-appraisal/pkg/constants"
	"github.com/iwvelando/project-appraisal/pkg/format"
	"github.com/iwvelando/project-appraisal/pkg/validation"
	"github.com/spf13/viper"
)

// Configuration holds all configuration for project-appraisal.
type Configuration struct {
	Logging LoggingConfig  `yaml:"logging,omitempty" mapstructure:"logging"`
	Output  OutputConfig   `yaml:"output,omitempty" mapstructure:"output"`
	AI      AIConfig       `yaml:"ai,omitempty" mapstructure:"ai"`
	Cache   CacheConfig    `yaml:"cache,omitempty" mapstructure:"cache"`
	Project *project.Input `yaml:"project,omitempty" mapstructure:"project"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty" mapstructure:"level"`           // debug, info, warn, error
	Format     string `yaml:"format,omitempty" mapstructure:"format"`         // json, console
	OutputFile string `yaml:"outputFile,omitempty" mapstructure:"outputFile"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format   string `yaml:"format,omitempty" mapstructure:"format"` // pretty, csv, json
	Currency string `yaml:"currency,omitempty" mapstructure:"currency"`
	Locale   string `yaml:"locale,omitempty" mapstructure:"locale"` // en, vi
	Decimals int32  `yaml:"decimals,omitempty" mapstructure:"decimals"`
}

// AIConfig selects the extraction model.
type AIConfig struct {
	Provider  string        `yaml:"provider,omitempty" mapstructure:"provider"`
	Model     string        `yaml:"model,omitempty" mapstructure:"model"`
	Timeout   time.Duration `yaml:"timeout,omitempty" mapstructure:"timeout"`
	APIKeyEnv string        `yaml:"apiKeyEnv,omitempty" mapstructure:"apiKeyEnv"`
}

// CacheConfig selects where appraisals and extractions are memoized.
type CacheConfig struct {
	Backend  string        `yaml:"backend,omitempty" mapstructure:"backend"` // memory, redis, none
	Address  string        `yaml:"address,omitempty" mapstructure:"address"`
	Password string        `yaml:"password,omitempty" mapstructure:"password"`
	DB       int           `yaml:"db,omitempty" mapstructure:"db"`
	TTL      time.Duration `yaml:"ttl,omitempty" mapstructure:"ttl"`
}

// Default returns the configuration used when no file is present.
func Default() *Configuration {
	return &Configuration{
		Logging: LoggingConfig{Level: "info", Format: "json"},
		Output: OutputConfig{
			Format:   constants.OutputFormatPretty,
			Currency: constants.DefaultCurrency,
			Locale:   constants.DefaultLocale,
		},
		AI: AIConfig{
			Provider:  constants.DefaultAIProvider,
			Model:     constants.DefaultAIModel,
			Timeout:   constants.DefaultAITimeout,
			APIKeyEnv: constants.DefaultAPIKeyEnv,
		},
		Cache: CacheConfig{
			Backend: constants.CacheBackendMemory,
			TTL:     constants.DefaultCacheTTL,
		},
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.outputFile", "")
	v.SetDefault("output.format", d.Output.Format)
	v.SetDefault("output.currency", d.Output.Currency)
	v.SetDefault("output.locale", d.Output.Locale)
	v.SetDefault("output.decimals", 0)
	v.SetDefault("ai.provider", d.AI.Provider)
	v.SetDefault("ai.model", d.AI.Model)
	v.SetDefault("ai.timeout", d.AI.Timeout)
	v.SetDefault("ai.apiKeyEnv", d.AI.APIKeyEnv)
	v.SetDefault("cache.backend", d.Cache.Backend)
	v.SetDefault("cache.address", "")
	v.SetDefault("cache.password", "")
	v.SetDefault("cache.db", 0)
	v.SetDefault("cache.ttl", d.Cache.TTL)
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there. Environment variables prefixed with APPRAISAL_ override
// file values (APPRAISAL_OUTPUT_FORMAT for output.format). A missing file
// yields the defaults.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yml")

		if err := v.ReadInConfig(); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("error reading config file, %w", err)
			}
		}
	}

	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}

	return &configuration, nil
}

// Validate returns an error for settings the application cannot run with.
func (c *Configuration) Validate() error {
	if err := validation.ValidateOutputFormat(c.Output.Format); err != nil {
		return err
	}
	switch c.Cache.Backend {
	case "", constants.CacheBackendMemory, constants.CacheBackendRedis, constants.CacheBackendNone:
	default:
		return fmt.Errorf("unknown cache backend %q", c.Cache.Backend)
	}
	if c.AI.Provider != "" && c.AI.Provider != constants.DefaultAIProvider {
		return fmt.Errorf("unsupported ai provider %q, expected %s", c.AI.Provider, constants.DefaultAIProvider)
	}
	if c.Project != nil {
		if err := project.Validate(*c.Project); err != nil {
			return fmt.Errorf("project section: %w", err)
		}
	}
	return nil
}

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (c *Configuration) ValidateConfiguration() []string {
	var warnings []string

	if c.Output.Locale != "" && !format.SupportedLocale(c.Output.Locale) {
		warnings = append(warnings, fmt.Sprintf("locale %q has no labels, falling back to en", c.Output.Locale))
	}
	if c.Output.Decimals < 0 {
		warnings = append(warnings, "output.decimals is negative, using 0")
	}
	if c.Cache.Backend == constants.CacheBackendRedis && c.Cache.Address == "" {
		warnings = append(warnings, "cache.backend is redis but cache.address is empty")
	}
	if c.Cache.TTL < 0 {
		warnings = append(warnings, "cache.ttl is negative, entries will not expire")
	}
	if c.AI.Timeout <= 0 {
		warnings = append(warnings, fmt.Sprintf("ai.timeout is not positive, using %s", constants.DefaultAITimeout))
	}
	if c.AI.APIKeyEnv != "" && os.Getenv(c.AI.APIKeyEnv) == "" {
		warnings = append(warnings, fmt.Sprintf("environment variable %s is not set, ai extraction is disabled", c.AI.APIKeyEnv))
	}

	return warnings
}

// APIKey returns the AI key from the configured environment variable.
func (c *Configuration) APIKey() string {
	name := c.AI.APIKeyEnv
	if name == "" {
		name = constants.DefaultAPIKeyEnv
	}
	return strings.TrimSpace(os.Getenv(name))
}

// ReportOptions converts the output section into report options.
func (c *Configuration) ReportOptions() report.Options {
	opts := report.DefaultOptions()
	if c.Output.Currency != "" {
		opts.Currency = c.Output.Currency
	}
	if c.Output.Locale != "" {
		opts.Locale = c.Output.Locale
	}
	if c.Output.Decimals > 0 {
		opts.Decimals = c.Output.Decimals
	}
	return opts
}

// CacheOptions converts the cache section into store options.
func (c *Configuration) CacheOptions() cache.Options {
	return c.Cache.Options()
}

// Options converts the section into store options.
func (c CacheConfig) Options() cache.Options {
	return cache.Options{
		Backend:  c.Backend,
		Address:  c.Address,
		Password: c.Password,
		DB:       c.DB,
	}
}
