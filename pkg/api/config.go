package api

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config manages server configuration using Viper. Every key can be
// overridden by an SCD_ environment variable, e.g. SCD_SERVER_ADDRESS.
type Config struct {
	v *viper.Viper
}

// NewConfig creates a new configuration with defaults
func NewConfig() *Config {
	v := viper.New()

	// Server parameters
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 5*time.Minute)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)
	v.SetDefault("server.max_upload_bytes", int64(100<<20))

	// Detection defaults for requests that leave them out
	v.SetDefault("detection.num_workers", 0)

	// Logging parameters
	v.SetDefault("logging.level", "info")

	v.SetEnvPrefix("SCD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return &Config{v: v}
}

// LoadFromFile loads configuration from file
func (c *Config) LoadFromFile(path string) error {
	c.v.SetConfigFile(path)
	return c.v.ReadInConfig()
}

// Viper exposes the underlying instance so callers can bind flags
func (c *Config) Viper() *viper.Viper { return c.v }

func (c *Config) Address() string                { return c.v.GetString("server.address") }
func (c *Config) ReadTimeout() time.Duration     { return c.v.GetDuration("server.read_timeout") }
func (c *Config) WriteTimeout() time.Duration    { return c.v.GetDuration("server.write_timeout") }
func (c *Config) ShutdownTimeout() time.Duration { return c.v.GetDuration("server.shutdown_timeout") }
func (c *Config) MaxUploadBytes() int64          { return c.v.GetInt64("server.max_upload_bytes") }
func (c *Config) NumWorkers() int                { return c.v.GetInt("detection.num_workers") }
func (c *Config) LogLevel() string               { return c.v.GetString("logging.level") }

// Set allows dynamic configuration changes
func (c *Config) Set(key string, value interface{}) {
	c.v.Set(key, value)
}
