package scd

import (
	"os"
	"runtime"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// Config manages detector configuration using Viper
type Config struct {
	v *viper.Viper
}

// NewConfig creates a new configuration with defaults
func NewConfig() *Config {
	v := viper.New()

	// Algorithm parameters
	v.SetDefault("algorithm.strategy", StrategyPageRankNibble)
	v.SetDefault("algorithm.alpha", 0.1)
	v.SetDefault("algorithm.epsilon", 1e-5)

	// GCE parameters
	v.SetDefault("gce.objective", ObjectiveM)
	v.SetDefault("gce.max_community_size", 0)

	// Performance parameters
	v.SetDefault("performance.parallel", true)
	v.SetDefault("performance.num_workers", runtime.NumCPU())

	// Logging parameters
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.enable_progress", true)
	v.SetDefault("logging.output", "stdout")

	return &Config{v: v}
}

// LoadFromFile loads configuration from file
func (c *Config) LoadFromFile(path string) error {
	c.v.SetConfigFile(path)
	return c.v.ReadInConfig()
}

// Viper exposes the underlying instance so callers can bind flags
func (c *Config) Viper() *viper.Viper { return c.v }

// Getters for algorithm parameters
func (c *Config) Strategy() string  { return c.v.GetString("algorithm.strategy") }
func (c *Config) Alpha() float64    { return c.v.GetFloat64("algorithm.alpha") }
func (c *Config) Epsilon() float64  { return c.v.GetFloat64("algorithm.epsilon") }
func (c *Config) Objective() string { return c.v.GetString("gce.objective") }
func (c *Config) MaxCommunitySize() int {
	return c.v.GetInt("gce.max_community_size")
}

func (c *Config) Parallel() bool  { return c.v.GetBool("performance.parallel") }
func (c *Config) NumWorkers() int { return c.v.GetInt("performance.num_workers") }

func (c *Config) LogLevel() string     { return c.v.GetString("logging.level") }
func (c *Config) EnableProgress() bool { return c.v.GetBool("logging.enable_progress") }
func (c *Config) LogOutput() string    { return c.v.GetString("logging.output") }

// Set allows dynamic configuration changes
func (c *Config) Set(key string, value interface{}) {
	c.v.Set(key, value)
}

// CreateLogger creates a zerolog logger based on config
func (c *Config) CreateLogger() zerolog.Logger {
	level, err := zerolog.ParseLevel(c.LogLevel())
	if err != nil {
		level = zerolog.InfoLevel
	}

	out := os.Stdout
	if c.LogOutput() == "stderr" {
		out = os.Stderr
	}

	return zerolog.New(zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: "15:04:05",
	}).Level(level).With().Timestamp().Str("service", "scd").Logger()
}
