package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/bakeops/backend/internal/domain/costing"
	"github.com/bakeops/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override (e.g. BAKERY_APP_PORT)
const EnvPrefix = "BAKERY"

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Log       LogConfig
	HTTP      HTTPConfig
	Telemetry TelemetryConfig
	Catalog   CatalogConfig
	Costing   CostingConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name    string
	Env     string
	Port    string
	Version string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	RequestTimeout  time.Duration // bounds a single costing request
	MaxHeaderBytes  int
	MaxBodySize     int64
	TrustedProxies  []string
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool
	CollectorEndpoint string  // e.g. "localhost:4317"
	SamplingRatio     float64 // 0.0-1.0
	ServiceName       string
	MetricsInterval   time.Duration
	Insecure          bool // plaintext gRPC, development only
}

// CatalogConfig points at the inventory snapshot the costing reads from
type CatalogConfig struct {
	SnapshotPath string
}

// SizeMultiplierConfig is one row of a size table. Numbers are kept as
// decimal strings so 1.35 stays 1.35.
type SizeMultiplierConfig struct {
	Size       string `mapstructure:"size"`
	Multiplier string `mapstructure:"multiplier"`
}

// ProfileConfig is a named pricing regime. Unset fields inherit from the
// root costing section.
type ProfileConfig struct {
	Description              string                 `mapstructure:"description"`
	Currency                 string                 `mapstructure:"currency"`
	GasRatePerMinute         *string                `mapstructure:"gas_rate_per_minute"`
	ElectricityRatePerMinute *string                `mapstructure:"electricity_rate_per_minute"`
	SizeMultipliers          []SizeMultiplierConfig `mapstructure:"size_multipliers"`
}

// CostingConfig holds the default pricing regime and any named profiles.
// The root fields form the profile called costing.DefaultProfileName.
// Rates are decimal strings; an empty rate means the built-in default.
type CostingConfig struct {
	Currency                 string
	Description              string
	DefaultProfile           string
	GasRatePerMinute         string
	ElectricityRatePerMinute string
	SizeMultipliers          []SizeMultiplierConfig
	Profiles                 map[string]ProfileConfig
}

// Load loads configuration from config.toml and environment variables.
// Priority (highest to lowest):
// 1. Environment variables with BAKERY_ prefix (e.g., BAKERY_LOG_LEVEL)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/bakeops")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	return load(v)
}

// LoadFile loads configuration from an explicit TOML file plus environment
// overrides. A missing file is an error.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}
	return load(v)
}

func load(v *viper.Viper) (*Config, error) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("costing.gas_rate_per_minute", costing.DefaultGasRatePerMinute.String())
	v.SetDefault("costing.electricity_rate_per_minute", costing.DefaultElectricityRatePerMinute.String())

	cfg := &Config{
		App: AppConfig{
			Name:    v.GetString("app.name"),
			Env:     v.GetString("app.env"),
			Port:    v.GetString("app.port"),
			Version: v.GetString("app.version"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:     v.GetDuration("http.read_timeout"),
			WriteTimeout:    v.GetDuration("http.write_timeout"),
			IdleTimeout:     v.GetDuration("http.idle_timeout"),
			ShutdownTimeout: v.GetDuration("http.shutdown_timeout"),
			RequestTimeout:  v.GetDuration("http.request_timeout"),
			MaxHeaderBytes:  v.GetInt("http.max_header_bytes"),
			MaxBodySize:     v.GetInt64("http.max_body_size"),
			TrustedProxies:  v.GetStringSlice("http.trusted_proxies"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			MetricsInterval:   v.GetDuration("telemetry.metrics_interval"),
			Insecure:          v.GetBool("telemetry.insecure"),
		},
		Catalog: CatalogConfig{
			SnapshotPath: v.GetString("catalog.snapshot_path"),
		},
		Costing: CostingConfig{
			Currency:                 v.GetString("costing.currency"),
			Description:              v.GetString("costing.description"),
			DefaultProfile:           v.GetString("costing.default_profile"),
			GasRatePerMinute:         v.GetString("costing.gas_rate_per_minute"),
			ElectricityRatePerMinute: v.GetString("costing.electricity_rate_per_minute"),
		},
	}

	if err := v.UnmarshalKey("costing.size_multipliers", &cfg.Costing.SizeMultipliers); err != nil {
		return nil, fmt.Errorf("costing.size_multipliers: %w", err)
	}
	if err := v.UnmarshalKey("costing.profiles", &cfg.Costing.Profiles); err != nil {
		return nil, fmt.Errorf("costing.profiles: %w", err)
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "bakeops-backend"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.App.Version == "" {
		cfg.App.Version = "dev"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 15 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.ShutdownTimeout == 0 {
		cfg.HTTP.ShutdownTimeout = 10 * time.Second
	}
	if cfg.HTTP.RequestTimeout == 0 {
		cfg.HTTP.RequestTimeout = 10 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 1 << 20 // 1MB
	}
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = cfg.App.Name
	}
	if cfg.Telemetry.MetricsInterval == 0 {
		cfg.Telemetry.MetricsInterval = 60 * time.Second
	}
	if cfg.Catalog.SnapshotPath == "" {
		cfg.Catalog.SnapshotPath = "catalog.yaml"
	}
	if cfg.Costing.Currency == "" {
		cfg.Costing.Currency = string(valueobject.DefaultCurrency)
	}
	cfg.Costing.Currency = strings.ToUpper(cfg.Costing.Currency)
	if cfg.Costing.DefaultProfile == "" {
		cfg.Costing.DefaultProfile = costing.DefaultProfileName
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}
	if c.HTTP.MaxBodySize < 0 {
		return fmt.Errorf("http.max_body_size cannot be negative")
	}

	if c.App.Env == "production" {
		if c.Log.Level == "debug" {
			return fmt.Errorf("log.level cannot be 'debug' in production")
		}
		if c.Telemetry.Enabled && c.Telemetry.Insecure {
			return fmt.Errorf("telemetry.insecure must be false in production")
		}
	}

	profiles, err := c.Costing.BuildProfiles()
	if err != nil {
		return err
	}
	for _, p := range profiles {
		if p.Name == c.Costing.DefaultProfile {
			return nil
		}
	}
	return fmt.Errorf("costing.default_profile %q is not defined", c.Costing.DefaultProfile)
}

// Build converts the root costing section into the default pricing regime
func (c CostingConfig) Build() (costing.Config, error) {
	return buildConfig("costing", c.Currency, c.GasRatePerMinute, c.ElectricityRatePerMinute, c.SizeMultipliers)
}

// BuildProfiles returns every pricing regime: the root section under
// costing.DefaultProfileName followed by the named profiles sorted by name.
func (c CostingConfig) BuildProfiles() ([]costing.Profile, error) {
	base, err := c.Build()
	if err != nil {
		return nil, err
	}

	profiles := []costing.Profile{{
		Name:        costing.DefaultProfileName,
		Description: c.Description,
		Config:      base,
	}}

	names := make([]string, 0, len(c.Profiles))
	for name := range c.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if name == costing.DefaultProfileName {
			return nil, fmt.Errorf("costing.profiles.%s: name is reserved for the root costing section", name)
		}
		pc := c.Profiles[name]

		currency := c.Currency
		if pc.Currency != "" {
			currency = strings.ToUpper(pc.Currency)
		}
		gas := c.GasRatePerMinute
		if pc.GasRatePerMinute != nil {
			gas = *pc.GasRatePerMinute
		}
		electricity := c.ElectricityRatePerMinute
		if pc.ElectricityRatePerMinute != nil {
			electricity = *pc.ElectricityRatePerMinute
		}
		sizes := c.SizeMultipliers
		if len(pc.SizeMultipliers) > 0 {
			sizes = pc.SizeMultipliers
		}

		cfg, err := buildConfig("costing.profiles."+name, currency, gas, electricity, sizes)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, costing.Profile{
			Name:        name,
			Description: pc.Description,
			Config:      cfg,
		})
	}

	return profiles, nil
}

func buildConfig(key, currency, gas, electricity string, sizes []SizeMultiplierConfig) (costing.Config, error) {
	code, err := valueobject.ParseCurrency(currency)
	if err != nil {
		return costing.Config{}, fmt.Errorf("%s.currency: %w", key, err)
	}

	gasRate, err := parseRate(key+".gas_rate_per_minute", gas, costing.DefaultGasRatePerMinute)
	if err != nil {
		return costing.Config{}, err
	}
	electricityRate, err := parseRate(key+".electricity_rate_per_minute", electricity, costing.DefaultElectricityRatePerMinute)
	if err != nil {
		return costing.Config{}, err
	}

	table := costing.DefaultSizeMultipliers()
	if len(sizes) > 0 {
		entries := make([]costing.SizeMultiplier, len(sizes))
		for i, s := range sizes {
			size, err := parseDecimal(fmt.Sprintf("%s.size_multipliers[%d].size", key, i), s.Size)
			if err != nil {
				return costing.Config{}, err
			}
			multiplier, err := parseDecimal(fmt.Sprintf("%s.size_multipliers[%d].multiplier", key, i), s.Multiplier)
			if err != nil {
				return costing.Config{}, err
			}
			entries[i] = costing.SizeMultiplier{Size: size, Multiplier: multiplier}
		}
		table, err = costing.NewSizeMultiplierTable(entries)
		if err != nil {
			return costing.Config{}, fmt.Errorf("%s.size_multipliers: %w", key, err)
		}
	}

	cfg := costing.Config{
		Sizes: table,
		Overhead: costing.OverheadRates{
			Gas:         gasRate,
			Electricity: electricityRate,
		},
		Currency: code,
	}
	if err := cfg.Validate(); err != nil {
		return costing.Config{}, fmt.Errorf("%s: %w", key, err)
	}
	return cfg, nil
}

func parseRate(key, value string, fallback decimal.Decimal) (decimal.Decimal, error) {
	if strings.TrimSpace(value) == "" {
		return fallback, nil
	}
	return parseDecimal(key, value)
}

func parseDecimal(key, value string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: invalid decimal %q", key, value)
	}
	return d, nil
}
