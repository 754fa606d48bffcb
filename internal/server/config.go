package server

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"unicode"

	"github.com/iwvelando/project-appraisal/internal/config"
	"github.com/iwvelando/project-appraisal/pkg/constants"
	"gopkg.in/yaml.v3"
)

// Config defines runtime parameters for the HTTP server. The output, ai and
// cache sections share their shape with the command line configuration.
type Config struct {
	Address       string               `yaml:"address"`
	MaxUploadSize string               `yaml:"maxUploadSize"`
	Logging       config.LoggingConfig `yaml:"logging"`
	Output        config.OutputConfig  `yaml:"output"`
	AI            config.AIConfig      `yaml:"ai"`
	Cache         config.CacheConfig   `yaml:"cache"`

	uploadSizeBytes int64
}

var sizeUnits = map[string]int64{
	"":   1,
	"B":  1,
	"K":  1 << 10,
	"KB": 1 << 10,
	"M":  1 << 20,
	"MB": 1 << 20,
	"G":  1 << 30,
	"GB": 1 << 30,
}

// LoadConfig loads the server configuration from YAML. Unknown keys are
// rejected. If the file does not exist, defaults are returned without error.
func LoadConfig(path string) (*Config, error) {
	defaults := config.Default()
	cfg := &Config{
		Address: constants.DefaultServerAddress,
		Output:  defaults.Output,
		AI:      defaults.AI,
		Cache:   defaults.Cache,
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read server config: %w", err)
		default:
			dec := yaml.NewDecoder(bytes.NewReader(data))
			dec.KnownFields(true)
			if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("failed to parse server config: %w", err)
			}
		}
	}

	if err := cfg.normalize(defaults); err != nil {
		return nil, err
	}
	return cfg, nil
}

// UploadSizeBytes returns the configured upload size in bytes.
func (c *Config) UploadSizeBytes() int64 {
	return c.uploadSizeBytes
}

// SetUploadSizeBytes overrides the configured upload size.
func (c *Config) SetUploadSizeBytes(size int64) {
	if size <= 0 {
		return
	}
	c.uploadSizeBytes = size
	c.MaxUploadSize = strconv.FormatInt(size, 10)
}

// Application returns the shared sections as an application configuration.
func (c *Config) Application() *config.Configuration {
	return &config.Configuration{
		Logging: c.Logging,
		Output:  c.Output,
		AI:      c.AI,
		Cache:   c.Cache,
	}
}

// normalize refills sections a file blanked out and resolves the upload size.
func (c *Config) normalize(defaults *config.Configuration) error {
	fill := func(dst *string, def string) {
		if *dst == "" {
			*dst = def
		}
	}
	fill(&c.Address, constants.DefaultServerAddress)
	fill(&c.Output.Format, defaults.Output.Format)
	fill(&c.Output.Currency, defaults.Output.Currency)
	fill(&c.Output.Locale, defaults.Output.Locale)
	fill(&c.AI.Provider, defaults.AI.Provider)
	fill(&c.AI.Model, defaults.AI.Model)
	fill(&c.AI.APIKeyEnv, defaults.AI.APIKeyEnv)
	fill(&c.Cache.Backend, defaults.Cache.Backend)
	if c.AI.Timeout <= 0 {
		c.AI.Timeout = defaults.AI.Timeout
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = defaults.Cache.TTL
	}

	size, err := ParseSize(c.MaxUploadSize)
	if err != nil {
		return err
	}
	if size <= 0 {
		size = constants.DefaultMaxUploadSizeBytes
	}
	c.uploadSizeBytes = size
	c.MaxUploadSize = strings.TrimSpace(c.MaxUploadSize)
	if c.MaxUploadSize == "" {
		c.MaxUploadSize = strconv.FormatInt(size, 10)
	}
	return nil
}

// ParseSize converts a human-friendly byte string (e.g., "256K", "10M") into
// bytes. An empty string yields the default upload size.
func ParseSize(value string) (int64, error) {
	trimmed := strings.ToUpper(strings.TrimSpace(value))
	if trimmed == "" {
		return constants.DefaultMaxUploadSizeBytes, nil
	}

	digits := strings.TrimRightFunc(trimmed, func(r rune) bool { return !unicode.IsDigit(r) })
	if digits == "" {
		return 0, fmt.Errorf("invalid size: %s", value)
	}
	unit := strings.TrimSpace(trimmed[len(digits):])

	multiplier, ok := sizeUnits[unit]
	if !ok {
		return 0, fmt.Errorf("unsupported size unit %q", unit)
	}

	n, err := strconv.ParseInt(strings.TrimSpace(digits), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size value %q: %w", value, err)
	}
	if n > (1<<63-1)/multiplier {
		return 0, fmt.Errorf("size overflow for value %s", value)
	}
	return n * multiplier, nil
}
