/*
Package config loads digmap configuration from defaults, an optional config file,
a .env file and DIGMAP_* environment variables.
*/
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Session   SessionConfig   `mapstructure:"session"`
	Valkey    ValkeyConfig    `mapstructure:"valkey"`
	Geocoder  GeocoderConfig  `mapstructure:"geocoder"`
	Weather   WeatherConfig   `mapstructure:"weather"`
	AI        AIConfig        `mapstructure:"ai"`
	Scrape    ScrapeConfig    `mapstructure:"scrape"`
	Pipeline  PipelineConfig  `mapstructure:"pipeline"`
	Map       MapConfig       `mapstructure:"map"`
	SMTP      SMTPConfig      `mapstructure:"smtp"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	RateLimit    int           `mapstructure:"rate_limit"`
	// PublicURL is the externally reachable address used for links in emails.
	PublicURL string `mapstructure:"public_url"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type SessionConfig struct {
	CookieName string        `mapstructure:"cookie_name"`
	Expiration time.Duration `mapstructure:"expiration"`
}

type ValkeyConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

type GeocoderConfig struct {
	Provider     string        `mapstructure:"provider"`
	BaseURL      string        `mapstructure:"base_url"`
	UserAgent    string        `mapstructure:"user_agent"`
	CountryCodes string        `mapstructure:"country_codes"`
	Language     string        `mapstructure:"language"`
	FallbackName string        `mapstructure:"fallback_name"`
	CacheSize    int           `mapstructure:"cache_size"`
	Timeout      time.Duration `mapstructure:"timeout"`
	GoogleAPIKey string        `mapstructure:"google_api_key"`
}

type WeatherConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type AIConfig struct {
	Backend         string        `mapstructure:"backend"`
	BaseURL         string        `mapstructure:"base_url"`
	APIKey          string        `mapstructure:"api_key"`
	Model           string        `mapstructure:"model"`
	AnalysisTimeout time.Duration `mapstructure:"analysis_timeout"`
	ChatTimeout     time.Duration `mapstructure:"chat_timeout"`
	// GeminiBaseURL overrides the Gemini endpoint; BaseURL applies to the chat backend only.
	GeminiBaseURL string `mapstructure:"gemini_base_url"`
}

type ScrapeConfig struct {
	Timeout         time.Duration `mapstructure:"timeout"`
	Concurrency     int           `mapstructure:"concurrency"`
	PolitenessDelay time.Duration `mapstructure:"politeness_delay"`
	UserAgent       string        `mapstructure:"user_agent"`
}

type PipelineConfig struct {
	RadiusKM int `mapstructure:"radius_km"`
}

type MapConfig struct {
	DefaultLayer string `mapstructure:"default_layer"`
	// OldMapTiles is a tile URL template for the historical overlay; empty disables it.
	OldMapTiles string `mapstructure:"old_map_tiles"`
}

type SMTPConfig struct {
	Server    string `mapstructure:"server"`
	Port      int    `mapstructure:"port"`
	User      string `mapstructure:"user"`
	Pass      string `mapstructure:"pass"`
	FromEmail string `mapstructure:"from_email"`
	ToEmail   string `mapstructure:"to_email"`
}

// Enabled reports whether enough SMTP settings are present to send mail.
func (s SMTPConfig) Enabled() bool {
	return s.Server != "" && s.User != "" && s.Pass != "" && s.ToEmail != ""
}

type TelemetryConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	ServiceName string `mapstructure:"service_name"`
	OTLPAddr    string `mapstructure:"otlp_addr"`
}

func setDefaults(v *viper.Viper, service string) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 90*time.Second)
	v.SetDefault("server.rate_limit", 60)
	v.SetDefault("server.public_url", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("session.cookie_name", "digmap_session")
	v.SetDefault("session.expiration", 24*time.Hour)
	v.SetDefault("valkey.enabled", false)
	v.SetDefault("valkey.addr", "localhost:6379")
	v.SetDefault("geocoder.provider", "nominatim")
	v.SetDefault("geocoder.base_url", "https://nominatim.openstreetmap.org")
	v.SetDefault("geocoder.user_agent", "map_application")
	v.SetDefault("geocoder.country_codes", "ru")
	v.SetDefault("geocoder.language", "ru")
	v.SetDefault("geocoder.fallback_name", "этом районе")
	v.SetDefault("geocoder.cache_size", 100)
	v.SetDefault("geocoder.timeout", 10*time.Second)
	v.SetDefault("geocoder.google_api_key", "")
	v.SetDefault("weather.base_url", "https://api.open-meteo.com/v1/forecast")
	v.SetDefault("weather.timeout", 10*time.Second)
	v.SetDefault("ai.backend", "chat")
	v.SetDefault("ai.base_url", "https://openrouter.ai/api/v1")
	v.SetDefault("ai.api_key", "")
	v.SetDefault("ai.model", "deepseek/deepseek-r1:free")
	v.SetDefault("ai.analysis_timeout", 30*time.Second)
	v.SetDefault("ai.chat_timeout", 20*time.Second)
	v.SetDefault("ai.gemini_base_url", "")
	v.SetDefault("scrape.timeout", 15*time.Second)
	v.SetDefault("scrape.concurrency", 4)
	v.SetDefault("scrape.politeness_delay", time.Second)
	v.SetDefault("scrape.user_agent", "Mozilla/5.0 (compatible; digmap/1.0)")
	v.SetDefault("pipeline.radius_km", 5)
	v.SetDefault("map.default_layer", "satellite")
	v.SetDefault("map.old_map_tiles", "")
	v.SetDefault("smtp.server", "smtp.gmail.com")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.user", "")
	v.SetDefault("smtp.pass", "")
	v.SetDefault("smtp.from_email", "")
	v.SetDefault("smtp.to_email", "")
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.otlp_addr", "localhost:4317")
}

// Load reads configuration from file and environment variables.
func Load(service string) (*Config, error) {
	// A missing .env is fine; real environment variables take precedence.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v, service)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	// DIGMAP_AI_API_KEY → ai.api_key
	v.SetEnvPrefix("DIGMAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.SMTP.FromEmail == "" {
		cfg.SMTP.FromEmail = cfg.SMTP.User
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.RateLimit <= 0 {
		errs = append(errs, "server.rate_limit must be positive")
	}
	if c.Session.Expiration <= 0 {
		errs = append(errs, "session.expiration must be positive")
	}
	if c.Valkey.Enabled && c.Valkey.Addr == "" {
		errs = append(errs, "valkey.addr is required when valkey is enabled")
	}

	switch c.Geocoder.Provider {
	case "nominatim":
		if c.Geocoder.BaseURL == "" {
			errs = append(errs, "geocoder.base_url is required for nominatim")
		}
	case "google":
		if c.Geocoder.GoogleAPIKey == "" {
			errs = append(errs, "geocoder.google_api_key is required for google")
		}
	default:
		errs = append(errs, fmt.Sprintf("geocoder.provider must be nominatim or google, got %q", c.Geocoder.Provider))
	}
	if c.Geocoder.CacheSize <= 0 {
		errs = append(errs, "geocoder.cache_size must be positive")
	}

	switch c.AI.Backend {
	case "chat":
	case "gemini":
		if c.AI.APIKey == "" {
			errs = append(errs, "ai.api_key is required for gemini")
		}
	default:
		errs = append(errs, fmt.Sprintf("ai.backend must be chat or gemini, got %q", c.AI.Backend))
	}
	if c.AI.Model == "" {
		errs = append(errs, "ai.model is required")
	}

	switch c.Map.DefaultLayer {
	case "satellite", "osm", "topo":
	default:
		errs = append(errs, fmt.Sprintf("map.default_layer must be satellite, osm or topo, got %q", c.Map.DefaultLayer))
	}

	if c.Scrape.Concurrency <= 0 {
		errs = append(errs, "scrape.concurrency must be positive")
	}
	for name, d := range map[string]time.Duration{
		"geocoder.timeout":    c.Geocoder.Timeout,
		"weather.timeout":     c.Weather.Timeout,
		"ai.analysis_timeout": c.AI.AnalysisTimeout,
		"ai.chat_timeout":     c.AI.ChatTimeout,
		"scrape.timeout":      c.Scrape.Timeout,
	} {
		if d <= 0 {
			errs = append(errs, name+" must be positive")
		}
	}
	if c.Telemetry.Enabled && c.Telemetry.OTLPAddr == "" {
		errs = append(errs, "telemetry.otlp_addr is required when telemetry is enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
