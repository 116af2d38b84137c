package config

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"terralink/internal/detection"
	"terralink/internal/logging"
)

// Config materialises application configuration.
type Config struct {
	App        AppConfig            `mapstructure:"app"`
	Logging    logging.Config       `mapstructure:"logging"`
	Dataset    DatasetConfig        `mapstructure:"dataset"`
	Detection  detection.Thresholds `mapstructure:"detection"`
	Alerting   AlertingConfig       `mapstructure:"alerting"`
	Simulation SimulationConfig     `mapstructure:"simulation"`
	Metrics    MetricsConfig        `mapstructure:"metrics"`
	Export     ExportConfig         `mapstructure:"export"`
}

// AppConfig general metadata.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

// DatasetConfig points at the static readings fixture.
type DatasetConfig struct {
	Path   string `mapstructure:"path"`
	Format string `mapstructure:"format"`
}

// AlertingConfig defines notification routing.
type AlertingConfig struct {
	Enabled  bool           `mapstructure:"enabled"`
	Channels []string       `mapstructure:"channels"`
	Telegram TelegramConfig `mapstructure:"telegram"`
}

// TelegramConfig describes the Telegram channel.
type TelegramConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	BotToken   string        `mapstructure:"bot_token"`
	ChatID     string        `mapstructure:"chat_id"`
	APIBase    string        `mapstructure:"api_base"`
	Timeout    time.Duration `mapstructure:"timeout"`
	MaxRetries int           `mapstructure:"max_retries"`
}

// SimulationConfig drives the live demo farm.
type SimulationConfig struct {
	Interval    time.Duration    `mapstructure:"interval"`
	FarmID      string           `mapstructure:"farm_id"`
	Region      detection.Region `mapstructure:"region"`
	Crop        detection.Crop   `mapstructure:"crop"`
	Seed        int64            `mapstructure:"seed"`
	InitialSoil float64          `mapstructure:"initial_soil_moisture"`
	InitialTemp float64          `mapstructure:"initial_temperature"`
	MaxSteps    int              `mapstructure:"max_steps"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	ListenAddr string `mapstructure:"listen_addr"`
}

// ExportConfig sets CLI export behaviour.
type ExportConfig struct {
	ChartWidth  int `mapstructure:"chart_width"`
	ChartHeight int `mapstructure:"chart_height"`
}

// Load builds configuration from file, environment, and defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("TERRALINK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, decodeHook()); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	defaults := detection.DefaultThresholds()

	v.SetDefault("app.name", "terralink")
	v.SetDefault("app.environment", "development")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("dataset.path", "data/sample-data.json")
	v.SetDefault("dataset.format", "")

	v.SetDefault("detection.drought_soil_pct", defaults.DroughtSoilPct)
	v.SetDefault("detection.high_temp_c", defaults.HighTempC)
	v.SetDefault("detection.flood_rain_mm_day", defaults.FloodRainMmDay)

	v.SetDefault("alerting.enabled", true)
	v.SetDefault("alerting.channels", []string{"log"})
	v.SetDefault("alerting.telegram.enabled", false)
	v.SetDefault("alerting.telegram.api_base", "https://api.telegram.org")
	v.SetDefault("alerting.telegram.timeout", "10s")
	v.SetDefault("alerting.telegram.max_retries", 3)

	v.SetDefault("simulation.interval", "2s")
	v.SetDefault("simulation.farm_id", "f-sim-01")
	v.SetDefault("simulation.region", string(detection.RegionCenter))
	v.SetDefault("simulation.crop", string(detection.CropOlives))
	v.SetDefault("simulation.seed", int64(0))
	v.SetDefault("simulation.initial_soil_moisture", 22.0)
	v.SetDefault("simulation.initial_temperature", 28.0)
	v.SetDefault("simulation.max_steps", 0)

	v.SetDefault("metrics.listen_addr", "")

	v.SetDefault("export.chart_width", 1280)
	v.SetDefault("export.chart_height", 720)
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}

// Validate performs basic sanity checks on the configuration values.
func (c *Config) Validate() error {
	if c.Dataset.Path == "" {
		return fmt.Errorf("dataset.path must be set")
	}
	thresholds := []struct {
		key   string
		value float64
	}{
		{"detection.drought_soil_pct", c.Detection.DroughtSoilPct},
		{"detection.high_temp_c", c.Detection.HighTempC},
		{"detection.flood_rain_mm_day", c.Detection.FloodRainMmDay},
	}
	for _, th := range thresholds {
		if math.IsNaN(th.value) || math.IsInf(th.value, 0) {
			return fmt.Errorf("%s must be a finite number", th.key)
		}
		if th.value < 0 {
			return fmt.Errorf("%s cannot be negative", th.key)
		}
	}
	if c.Simulation.Interval <= 0 {
		return fmt.Errorf("simulation.interval must be greater than zero")
	}
	if c.Simulation.FarmID == "" {
		return fmt.Errorf("simulation.farm_id must be set")
	}
	if !c.Simulation.Region.Valid() {
		return fmt.Errorf("simulation.region %q is not a known region", c.Simulation.Region)
	}
	if !c.Simulation.Crop.Valid() {
		return fmt.Errorf("simulation.crop %q is not a known crop", c.Simulation.Crop)
	}
	if c.Simulation.MaxSteps < 0 {
		return fmt.Errorf("simulation.max_steps cannot be negative")
	}
	if c.Export.ChartWidth <= 0 || c.Export.ChartHeight <= 0 {
		return fmt.Errorf("export.chart_width and export.chart_height must be greater than zero")
	}
	if c.Alerting.Telegram.Enabled {
		if c.Alerting.Telegram.BotToken == "" {
			return fmt.Errorf("alerting.telegram.bot_token must be set")
		}
		if c.Alerting.Telegram.ChatID == "" {
			return fmt.Errorf("alerting.telegram.chat_id must be set")
		}
	}
	return nil
}
