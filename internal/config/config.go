// Package config loads daemon configuration from a TOML file, with
// command line flags taking precedence over file values.
package config

import (
	"flag"
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// Defaults applied when neither the config file nor flags set a value.
const (
	DefaultPollMs      = 1
	DefaultHeartbeatMs = 900000
	DefaultBroker      = "tcp://localhost:1883"
	DefaultHTTPAddr    = ":8080"
	DefaultTelemetryDB = "/var/lib/metronome/telemetry.db"
)

type Config struct {
	PollMs      int64  `mapstructure:"poll_ms"`
	HeartbeatMs int64  `mapstructure:"heartbeat_ms"`
	Broker      string `mapstructure:"broker"`
	HTTPAddr    string `mapstructure:"http_addr"`
	Telemetry   bool   `mapstructure:"telemetry"`
	TelemetryDB string `mapstructure:"database"`
	Debug       bool   `mapstructure:"debug"`
	Verbose     bool   `mapstructure:"verbose"`

	// PrintDefaults is flag-only: print the default state and exit.
	PrintDefaults bool `mapstructure:"print_defaults"`

	PinIncrease int `mapstructure:"pin_increase"`
	PinDecrease int `mapstructure:"pin_decrease"`
	PinMode     int `mapstructure:"pin_mode"`
	PinOption   int `mapstructure:"pin_option"`
	PinPulse    int `mapstructure:"pin_pulse"`
}

// Load reads configuration from /etc/metronome.toml (or the file named
// by METRONOME_CONFIG), then applies the given command line arguments
// on top. A fresh flag set is used so Load is safe to call repeatedly
// in tests.
func Load(args []string) (*Config, error) {
	v := viper.New()

	v.SetDefault("poll_ms", DefaultPollMs)
	v.SetDefault("heartbeat_ms", DefaultHeartbeatMs)
	v.SetDefault("broker", DefaultBroker)
	v.SetDefault("http_addr", DefaultHTTPAddr)
	v.SetDefault("telemetry", false)
	v.SetDefault("database", DefaultTelemetryDB)
	v.SetDefault("pin_increase", 5)
	v.SetDefault("pin_decrease", 6)
	v.SetDefault("pin_mode", 13)
	v.SetDefault("pin_option", 19)
	v.SetDefault("pin_pulse", 12)

	if path := os.Getenv("METRONOME_CONFIG"); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	} else {
		v.SetConfigName("metronome")
		v.SetConfigType("toml")
		v.AddConfigPath("/etc")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	fs := flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	pollMs := fs.Int64("poll", 0, "Tick interval in milliseconds")
	heartbeatMs := fs.Int64("heartbeat", 0, "Heartbeat interval in milliseconds (0 = disabled)")
	broker := fs.String("broker", "", "MQTT broker URL")
	httpAddr := fs.String("http", "", "HTTP status server address")
	telemetry := fs.Bool("telemetry", false, "Enable local telemetry database")
	database := fs.String("database", "", "Telemetry database path")
	debug := fs.Bool("debug", false, "Enable debug logging")
	verbose := fs.Bool("verbose", false, "Enable verbose logging")
	printDefaults := fs.Bool("print-defaults", false, "Print the default state and exit")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	// Only flags the user actually set override the file
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "poll":
			v.Set("poll_ms", *pollMs)
		case "heartbeat":
			v.Set("heartbeat_ms", *heartbeatMs)
		case "broker":
			v.Set("broker", *broker)
		case "http":
			v.Set("http_addr", *httpAddr)
		case "telemetry":
			v.Set("telemetry", *telemetry)
		case "database":
			v.Set("database", *database)
		case "debug":
			v.Set("debug", *debug)
		case "verbose":
			v.Set("verbose", *verbose)
		case "print-defaults":
			v.Set("print_defaults", *printDefaults)
		}
	})

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if config.PollMs <= 0 {
		return nil, fmt.Errorf("poll_ms must be positive, got %d", config.PollMs)
	}
	if config.HeartbeatMs < 0 {
		return nil, fmt.Errorf("heartbeat_ms must not be negative, got %d", config.HeartbeatMs)
	}

	return config, nil
}

// TickRate returns the engine tick frequency in Hz implied by the poll
// interval.
func (c *Config) TickRate() int64 {
	return 1000 / c.PollMs
}
