package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"converty/internal/imageio"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds run defaults. Presets are deliberately absent: they are fixed in the
// format package. Precedence is defaults < YAML file < environment < flags.
type Config struct {
	OutputDirName string   `yaml:"output_dir_name"` // subdirectory created next to the input
	Extensions    []string `yaml:"extensions"`      // raw dump extensions, matched case-insensitively
	Recursive     bool     `yaml:"recursive"`
	MatchSize     bool     `yaml:"match_size"` // also pick files whose size equals one frame
	Workers       int      `yaml:"workers"`
	Encoder       string   `yaml:"encoder"` // png, tiff
	Debug         bool     `yaml:"debug"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		OutputDirName: "png",
		Extensions:    []string{".raw", ".yuv", ".bin"},
		Recursive:     true,
		Workers:       runtime.GOMAXPROCS(0),
		Encoder:       "png",
	}
}

// Load reads a YAML file over the defaults and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("%w: failed to parse %s: %w", ErrInvalidConfig, path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from CONVERTY_* environment variables.
func (c *Config) ApplyEnv() {
	c.OutputDirName = getEnv("CONVERTY_OUTPUT_DIR_NAME", c.OutputDirName)
	c.Workers = getEnvInt("CONVERTY_WORKERS", c.Workers)
	c.Encoder = getEnv("CONVERTY_ENCODER", c.Encoder)
	c.Debug = getEnvBool("CONVERTY_DEBUG", c.Debug)
	if v := os.Getenv("CONVERTY_EXTENSIONS"); v != "" {
		c.Extensions = strings.Split(v, ",")
	}
}

// Validate normalises extensions and checks the remaining fields.
func (c *Config) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("%w: workers must be >= 1, got %d", ErrInvalidConfig, c.Workers)
	}
	if _, err := imageio.NewEncoder(c.Encoder); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if c.OutputDirName == "" || strings.ContainsAny(c.OutputDirName, `/\`) {
		return fmt.Errorf("%w: output_dir_name must be a plain directory name, got %q", ErrInvalidConfig, c.OutputDirName)
	}
	if len(c.Extensions) == 0 {
		return fmt.Errorf("%w: at least one extension is required", ErrInvalidConfig)
	}
	for i, ext := range c.Extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			return fmt.Errorf("%w: empty extension", ErrInvalidConfig)
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		c.Extensions[i] = ext
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if x, err := strconv.Atoi(v); err == nil {
			return x
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}
