// Package config loads runtime configuration from the environment via viper.
// Every process reads the same config; each uses the subset it needs.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	envPrefix = "ANTRIAN"

	defaultHTTPAddress    = "0.0.0.0:8080"
	defaultServerURL      = "http://localhost:8080"
	defaultLogLevel       = "info"
	defaultCounterFile    = "counter.txt"
	defaultReconnectDelay = 3 * time.Second
	defaultRefetchEvery   = 5 * time.Second
	defaultChimeDuration  = 800 * time.Millisecond
	defaultRatePerMinute  = 120
	defaultRateBurst      = 30
)

// AppConfig captures runtime configuration for every process.
type AppConfig struct {
	// serve
	HTTPAddress   string
	DatabaseDSN   string // empty selects the in-memory store
	RatePerMinute int
	RateBurst     int
	OTLPEndpoint  string // empty disables trace export

	// surfaces
	ServerURL      string
	CounterFile    string
	ReconnectDelay time.Duration
	RefetchEvery   time.Duration
	ChimeDuration  time.Duration

	LogLevel string
}

// NewViper returns a viper instance with defaults and env bindings configured.
func NewViper() *viper.Viper {
	configViper := viper.New()
	ApplyDefaults(configViper)
	return configViper
}

// ApplyDefaults configures defaults and env bindings on the provided viper
// instance. Keys map to environment variables as ANTRIAN_SECTION_KEY, e.g.
// ANTRIAN_DATABASE_DSN.
func ApplyDefaults(configViper *viper.Viper) {
	configViper.SetEnvPrefix(envPrefix)
	configViper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	configViper.AutomaticEnv()

	configViper.SetDefault("http.address", defaultHTTPAddress)
	configViper.SetDefault("database.dsn", "")
	configViper.SetDefault("server.url", defaultServerURL)
	configViper.SetDefault("counter.file", defaultCounterFile)
	configViper.SetDefault("channel.reconnect_delay", defaultReconnectDelay)
	configViper.SetDefault("surface.refetch_every", defaultRefetchEvery)
	configViper.SetDefault("announce.chime_duration", defaultChimeDuration)
	configViper.SetDefault("rate.per_minute", defaultRatePerMinute)
	configViper.SetDefault("rate.burst", defaultRateBurst)
	configViper.SetDefault("otlp.endpoint", "")
	configViper.SetDefault("log.level", defaultLogLevel)
}

// Load parses runtime configuration from viper.
func Load(configViper *viper.Viper) (AppConfig, error) {
	cfg := AppConfig{
		HTTPAddress:    configViper.GetString("http.address"),
		DatabaseDSN:    configViper.GetString("database.dsn"),
		RatePerMinute:  configViper.GetInt("rate.per_minute"),
		RateBurst:      configViper.GetInt("rate.burst"),
		OTLPEndpoint:   configViper.GetString("otlp.endpoint"),
		ServerURL:      configViper.GetString("server.url"),
		CounterFile:    configViper.GetString("counter.file"),
		ReconnectDelay: configViper.GetDuration("channel.reconnect_delay"),
		RefetchEvery:   configViper.GetDuration("surface.refetch_every"),
		ChimeDuration:  configViper.GetDuration("announce.chime_duration"),
		LogLevel:       configViper.GetString("log.level"),
	}

	if err := cfg.validate(); err != nil {
		return AppConfig{}, err
	}

	return cfg, nil
}

func (c AppConfig) validate() error {
	if strings.TrimSpace(c.HTTPAddress) == "" {
		return fmt.Errorf("http.address is required")
	}
	if strings.TrimSpace(c.ServerURL) == "" {
		return fmt.Errorf("server.url is required")
	}
	if c.ReconnectDelay <= 0 {
		return fmt.Errorf("channel.reconnect_delay must be positive")
	}
	if c.RefetchEvery <= 0 {
		return fmt.Errorf("surface.refetch_every must be positive")
	}
	return nil
}
