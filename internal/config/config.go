// Package config loads and validates service configuration via Viper.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/JakeFAU/site-swot/internal/analysis"
)

// Authentication modes accepted by AuthConfig.Mode.
const (
	AuthModeNone   = "none"
	AuthModeJWT    = "jwt"
	AuthModeRemote = "remote"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	CORS      CORSConfig      `mapstructure:"cors"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Fetch     FetchConfig     `mapstructure:"fetch"`
	Analysis  AnalysisConfig  `mapstructure:"analysis"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port              int           `mapstructure:"port"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	RequestTimeout    time.Duration `mapstructure:"request_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout"`
	// StaticDir, when set, is served at "/" for the bundled front end.
	StaticDir string `mapstructure:"static_dir"`
}

// CORSConfig lists browser origins allowed to call the API. Empty disables CORS headers.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// AuthConfig selects how bearer tokens are verified.
type AuthConfig struct {
	Mode        string        `mapstructure:"mode"`
	JWTSecret   string        `mapstructure:"jwt_secret"`
	Issuer      string        `mapstructure:"issuer"`
	Audience    string        `mapstructure:"audience"`
	UserinfoURL string        `mapstructure:"userinfo_url"`
	APIKey      string        `mapstructure:"api_key"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// FetchConfig governs outbound document retrieval.
type FetchConfig struct {
	Timeout      time.Duration `mapstructure:"timeout"`
	UserAgent    string        `mapstructure:"user_agent"`
	MaxBodyBytes int           `mapstructure:"max_body_bytes"`
	RatePerHost  float64       `mapstructure:"rate_per_host"`
	BurstPerHost int           `mapstructure:"burst_per_host"`
	// BlockedHosts are exact hosts or "*.suffix" patterns never fetched.
	BlockedHosts []string `mapstructure:"blocked_hosts"`
}

// AnalysisConfig picks the rule catalog and its thresholds. Zero thresholds
// fall back to the catalog defaults.
type AnalysisConfig struct {
	Catalog    string              `mapstructure:"catalog"`
	Parallel   bool                `mapstructure:"parallel"`
	Thresholds analysis.Thresholds `mapstructure:"thresholds"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool   `mapstructure:"development"`
	Level       string `mapstructure:"level"`
}

// TelemetryConfig controls span export.
type TelemetryConfig struct {
	TracingEnabled bool   `mapstructure:"tracing_enabled"`
	Exporter       string `mapstructure:"exporter"`
	ServiceName    string `mapstructure:"service_name"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SWOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("server.port", "SWOT_SERVER_PORT", "PORT"); err != nil {
		return Config{}, fmt.Errorf("bind env: %w", err)
	}

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_header_timeout", "5s")
	v.SetDefault("server.request_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.static_dir", "")
	v.SetDefault("cors.allowed_origins", []string{})
	v.SetDefault("auth.mode", AuthModeJWT)
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.issuer", "")
	v.SetDefault("auth.audience", "")
	v.SetDefault("auth.userinfo_url", "")
	v.SetDefault("auth.api_key", "")
	v.SetDefault("auth.timeout", "5s")
	v.SetDefault("fetch.timeout", "10s")
	v.SetDefault("fetch.user_agent", "")
	v.SetDefault("fetch.max_body_bytes", 5*1024*1024)
	v.SetDefault("fetch.rate_per_host", 1.0)
	v.SetDefault("fetch.burst_per_host", 2)
	v.SetDefault("fetch.blocked_hosts", []string{"localhost", "metadata.google.internal"})
	v.SetDefault("analysis.catalog", analysis.CatalogStandard)
	v.SetDefault("analysis.parallel", false)
	v.SetDefault("analysis.thresholds.meta_description_min", 0)
	v.SetDefault("analysis.thresholds.script_max", 0)
	v.SetDefault("analysis.thresholds.external_link_max", 0)
	v.SetDefault("analysis.thresholds.title_max", 0)
	v.SetDefault("logging.development", true)
	v.SetDefault("logging.level", "info")
	v.SetDefault("telemetry.tracing_enabled", false)
	v.SetDefault("telemetry.exporter", "stdout")
	v.SetDefault("telemetry.service_name", "swotd")
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}
	if c.Server.RequestTimeout < 0 {
		return fmt.Errorf("server.request_timeout must be >= 0")
	}
	if c.Fetch.Timeout <= 0 {
		return fmt.Errorf("fetch.timeout must be > 0")
	}
	if c.Fetch.MaxBodyBytes < 0 {
		return fmt.Errorf("fetch.max_body_bytes must be >= 0")
	}
	if c.Fetch.RatePerHost < 0 || c.Fetch.BurstPerHost < 0 {
		return fmt.Errorf("fetch.rate_per_host and fetch.burst_per_host must be >= 0")
	}
	if _, err := analysis.Lookup(c.Analysis.Catalog); err != nil {
		return fmt.Errorf("analysis.catalog: %w", err)
	}
	if err := c.Analysis.Thresholds.Validate(); err != nil {
		return fmt.Errorf("analysis.thresholds: %w", err)
	}
	switch c.Telemetry.Exporter {
	case "", "none", "stdout":
	default:
		return fmt.Errorf("telemetry.exporter must be one of none, stdout")
	}
	return nil
}

// Validate checks the settings required by the selected mode. It is not part
// of Config.Validate because only the HTTP server authenticates callers.
func (a AuthConfig) Validate() error {
	switch a.Mode {
	case AuthModeNone:
		return nil
	case AuthModeJWT:
		if a.JWTSecret == "" {
			return errors.New("auth.jwt_secret must be set when auth.mode is jwt")
		}
		return nil
	case AuthModeRemote:
		u, err := url.Parse(a.UserinfoURL)
		if a.UserinfoURL == "" || err != nil || u.Host == "" {
			return errors.New("auth.userinfo_url must be an absolute URL when auth.mode is remote")
		}
		return nil
	default:
		return fmt.Errorf("auth.mode must be one of none, jwt, remote (got %q)", a.Mode)
	}
}
