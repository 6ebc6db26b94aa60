// Package config provides YAML-based configuration loading for spplink.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/viper"
	"go.uber.org/multierr"

	"github.com/Gajda90/AndroidMouse/pkg/command"
	"github.com/Gajda90/AndroidMouse/pkg/transport"
	"github.com/Gajda90/AndroidMouse/pkg/transports"
)

// Config is the root application configuration.
type Config struct {
	// AppName optional logical name of the process
	AppName string `mapstructure:"app_name"`

	// Log holds logging configuration
	Log LogConfig `mapstructure:"log"`

	// Link configures the outbound connection manager.
	Link LinkConfig `mapstructure:"link"`

	// Peers is the list of known remote devices.
	Peers []PeerConfig `mapstructure:"peers"`

	// Receiver configures the listening side.
	Receiver ReceiverConfig `mapstructure:"receiver"`

	// Command selects the pointer command wire format.
	Command CommandConfig `mapstructure:"command"`
}

// LogConfig defines logger settings.
type LogConfig struct {
	// Level: debug, info, warn, error
	Level string `mapstructure:"level"`
	// Format: console or json
	Format string `mapstructure:"format"`
	// Outputs: list of outputs: stdout, stderr, or file paths
	Outputs []string `mapstructure:"outputs"`

	// Rotation controls file rotation when writing to files
	Rotation RotationConfig `mapstructure:"rotation"`
	// Development toggles development-friendly logging options
	Development bool `mapstructure:"development"`
}

// RotationConfig controls log file rotation for file outputs.
type RotationConfig struct {
	Enable     bool   `mapstructure:"enable"`
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// ReceiverConfig describes where the receiving side listens.
type ReceiverConfig struct {
	Listen string `mapstructure:"listen"`
}

// CommandConfig selects the command codec: text, json, cbor or proto.
type CommandConfig struct {
	Format string `mapstructure:"format"`
}

// Default returns a Config populated with sensible defaults.
func Default() *Config {
	return &Config{
		AppName: "spplink",
		Log: LogConfig{
			Level:       "info",
			Format:      "console",
			Outputs:     []string{"stderr"},
			Development: true,
			Rotation: RotationConfig{
				Enable:     false,
				Filename:   "logs/spplink.log",
				MaxSizeMB:  50,
				MaxBackups: 3,
				MaxAgeDays: 28,
				Compress:   true,
			},
		},
		Link: LinkConfig{
			Transport:    "tcp",
			Service:      transport.SerialPortService.String(),
			MonitorReads: true,
		},
		Receiver: ReceiverConfig{Listen: ":7700"},
		Command:  CommandConfig{Format: "text"},
	}
}

// Load reads configuration from the provided path (if non-empty),
// otherwise it searches common locations and supports environment overrides.
// Environment variables use the prefix SPPLINK and `.`/`-` are replaced with `_`.
// Example: SPPLINK_LINK_TRANSPORT=quic
func Load(path string) (*Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("SPPLINK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	// seed defaults for viper so env-only configs work
	v.SetDefault("app_name", cfg.AppName)
	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.format", cfg.Log.Format)
	v.SetDefault("log.outputs", cfg.Log.Outputs)
	v.SetDefault("log.development", cfg.Log.Development)
	v.SetDefault("log.rotation.enable", cfg.Log.Rotation.Enable)
	v.SetDefault("log.rotation.filename", cfg.Log.Rotation.Filename)
	v.SetDefault("log.rotation.max_size_mb", cfg.Log.Rotation.MaxSizeMB)
	v.SetDefault("log.rotation.max_backups", cfg.Log.Rotation.MaxBackups)
	v.SetDefault("log.rotation.max_age_days", cfg.Log.Rotation.MaxAgeDays)
	v.SetDefault("log.rotation.compress", cfg.Log.Rotation.Compress)
	v.SetDefault("link.transport", cfg.Link.Transport)
	v.SetDefault("link.service", cfg.Link.Service)
	v.SetDefault("link.allowed_peers", cfg.Link.AllowedPeers)
	v.SetDefault("link.monitor_reads", cfg.Link.MonitorReads)
	v.SetDefault("link.reset_on_write_failure", cfg.Link.ResetOnWriteFailure)
	v.SetDefault("peers", cfg.Peers)
	v.SetDefault("receiver.listen", cfg.Receiver.Listen)
	v.SetDefault("command.format", cfg.Command.Format)

	if path == "" {
		if envPath := os.Getenv("SPPLINK_CONFIG"); envPath != "" {
			path = envPath
		}
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("spplink")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".spplink"))
		}
	}

	// Read config file if present; if not found, continue with defaults/env
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate normalizes fields in place and reports every problem at once.
func (c *Config) validate() error {
	var errs error

	lvl := strings.ToLower(strings.TrimSpace(c.Log.Level))
	switch lvl {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = multierr.Append(errs, fmt.Errorf("invalid log.level: %q", c.Log.Level))
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
	if len(c.Log.Outputs) == 0 {
		c.Log.Outputs = []string{"stderr"}
	}

	c.Link.Transport = strings.ToLower(strings.TrimSpace(c.Link.Transport))
	if !transports.Known(c.Link.Transport) {
		errs = multierr.Append(errs, fmt.Errorf("invalid link.transport: %q", c.Link.Transport))
	}
	if strings.TrimSpace(c.Link.Service) == "" {
		c.Link.Service = transport.SerialPortService.String()
	}
	if _, err := uuid.Parse(c.Link.Service); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("invalid link.service: %w", err))
	}

	for i, p := range c.Peers {
		if strings.TrimSpace(p.Addr) == "" {
			errs = multierr.Append(errs, fmt.Errorf("peers[%d]: addr is required", i))
		}
	}

	c.Command.Format = strings.ToLower(strings.TrimSpace(c.Command.Format))
	if c.Command.Format == "" {
		c.Command.Format = "text"
	}
	if reg, err := command.DefaultRegistry(); err != nil {
		errs = multierr.Append(errs, err)
	} else if _, err := reg.Get(c.Command.Format); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("invalid command.format: %w", err))
	}
	return errs
}

// MustLoad is a convenience that panics on error.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}
	return cfg
}
