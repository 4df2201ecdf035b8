// Package config loads service configuration from environment variables,
// an optional YAML file, and built-in defaults, following the same
// viper-based shape as the teacher platform's shared config loader.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the root configuration object for the solar-placement service.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Providers  ProvidersConfig  `mapstructure:"providers"`
	Calibrator CalibratorConfig `mapstructure:"calibrator"`
	Financial  FinancialConfig  `mapstructure:"financial"`
	Summarizer SummarizerConfig `mapstructure:"summarizer"`
}

type ServerConfig struct {
	Port                    int           `mapstructure:"port"`
	MetricsPort             int           `mapstructure:"metrics_port"`
	GracefulShutdownTimeout int           `mapstructure:"graceful_shutdown_timeout"`
	Environment             string        `mapstructure:"environment"`
	SoftDeadline            time.Duration `mapstructure:"soft_deadline"`
	HardDeadline            time.Duration `mapstructure:"hard_deadline"`
}

type DatabaseConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	SSLMode        string `mapstructure:"ssl_mode"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdleConns   int    `mapstructure:"max_idle_conns"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		d.Host, d.Port, d.Database, d.User, d.Password, d.SSLMode)
}

type RedisConfig struct {
	Host    string        `mapstructure:"host"`
	Port    int           `mapstructure:"port"`
	DB      int           `mapstructure:"db"`
	Enabled bool          `mapstructure:"enabled"`
	TTL     time.Duration `mapstructure:"ttl"`
}

func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// ProvidersConfig configures the data-acquisition external endpoints and
// timeouts (spec.md §4.1/§6).
type ProvidersConfig struct {
	SolarDailyURL        string        `mapstructure:"solar_daily_url"`
	SolarClimatologyURL  string        `mapstructure:"solar_climatology_url"`
	WeatherURL           string        `mapstructure:"weather_url"`
	ElevationURL         string        `mapstructure:"elevation_url"`
	ElevationFallbackURL string        `mapstructure:"elevation_fallback_url"`
	Timeout              time.Duration `mapstructure:"timeout"`
}

// CalibratorConfig configures the regional calibrator (spec.md §4.3).
type CalibratorConfig struct {
	Alpha         float64 `mapstructure:"alpha"`
	MinSamples    int     `mapstructure:"min_samples"`
	MinDelta      float64 `mapstructure:"min_delta"`
	MaxAdjustment float64 `mapstructure:"max_adjustment"`
	WarmupDays    int     `mapstructure:"warmup_days"`
}

// FinancialConfig configures the financial engine's benchmark constants
// (spec.md §4.4).
type FinancialConfig struct {
	CostPerKW        float64 `mapstructure:"cost_per_kw"`
	LandAreaPerKW    float64 `mapstructure:"land_area_per_kw"`
	PerformanceRatio float64 `mapstructure:"performance_ratio"`
	DegradationRate  float64 `mapstructure:"degradation_rate"`
	LifetimeYears    int     `mapstructure:"lifetime_years"`
}

// SummarizerConfig selects and configures the narrative-summary collaborator.
type SummarizerConfig struct {
	Provider       string        `mapstructure:"provider"` // "openai", "bedrock", "template"
	OpenAIAPIKey   string        `mapstructure:"openai_api_key"`
	OpenAIModel    string        `mapstructure:"openai_model"`
	BedrockRegion  string        `mapstructure:"bedrock_region"`
	BedrockModelID string        `mapstructure:"bedrock_model_id"`
	Timeout        time.Duration `mapstructure:"timeout"`
}

// Load reads configuration from environment variables (prefixed by
// serviceName), an optional YAML config file, and falls back to the
// defaults below, mirroring packages/shared/config.Load in the teacher
// platform.
func Load(serviceName string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.metrics_port", 9090)
	v.SetDefault("server.graceful_shutdown_timeout", 15)
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.soft_deadline", 30*time.Second)
	v.SetDefault("server.hard_deadline", 60*time.Second)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.database", "solar_placement")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_connections", 20)
	v.SetDefault("database.max_idle_conns", 5)

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.ttl", 15*time.Minute)

	v.SetDefault("providers.solar_daily_url", "https://power.larc.nasa.gov/api/temporal/daily/point")
	v.SetDefault("providers.solar_climatology_url", "https://power.larc.nasa.gov/api/temporal/climatology/point")
	v.SetDefault("providers.weather_url", "https://api.open-meteo.com/v1/forecast")
	v.SetDefault("providers.elevation_url", "https://api.open-meteo.com/v1/elevation")
	v.SetDefault("providers.elevation_fallback_url", "https://api.opentopodata.org/v1/srtm90m")
	v.SetDefault("providers.timeout", 8*time.Second)

	v.SetDefault("calibrator.alpha", 0.12)
	v.SetDefault("calibrator.min_samples", 5)
	v.SetDefault("calibrator.min_delta", 1.0)
	v.SetDefault("calibrator.max_adjustment", 10.0)
	v.SetDefault("calibrator.warmup_days", 180)

	v.SetDefault("financial.cost_per_kw", 50000.0)
	v.SetDefault("financial.land_area_per_kw", 8.0)
	v.SetDefault("financial.performance_ratio", 0.80)
	v.SetDefault("financial.degradation_rate", 0.005)
	v.SetDefault("financial.lifetime_years", 25)

	v.SetDefault("summarizer.provider", "template")
	v.SetDefault("summarizer.openai_model", "gpt-4o-mini")
	v.SetDefault("summarizer.bedrock_model_id", "anthropic.claude-v2")
	v.SetDefault("summarizer.timeout", 5*time.Second)

	v.SetEnvPrefix(strings.ToUpper(strings.ReplaceAll(serviceName, "-", "_")))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "/etc/solar-placement"
	}
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		cfg.Summarizer.OpenAIAPIKey = apiKey
	}
	if region := os.Getenv("AWS_BEDROCK_REGION"); region != "" {
		cfg.Summarizer.BedrockRegion = region
	}
	if host := os.Getenv("POSTGRES_HOST"); host != "" {
		cfg.Database.Host = host
	}
	if pw := os.Getenv("POSTGRES_PASSWORD"); pw != "" {
		cfg.Database.Password = pw
	}

	return &cfg, nil
}
