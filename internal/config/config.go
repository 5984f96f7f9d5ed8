package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config stores all configuration for the application.
// The values are read by viper from a config file or environment variables.
type Config struct {
	Analysis AnalysisConfig
	Alerts   AlertConfig
	Database DatabaseConfig
	Feed     FeedConfig
}

// AnalysisConfig holds the classification and comparison thresholds. They are
// passed explicitly into the calculator and change engine; nothing consults
// package-level defaults at computation time.
type AnalysisConfig struct {
	SteepThreshold        float64 `mapstructure:"steep_threshold"`
	StrongSignalThreshold float64 `mapstructure:"strong_signal_threshold"`
	InversionEpsilon      float64 `mapstructure:"inversion_epsilon"`
	ChangeEpsilon         float64 `mapstructure:"change_epsilon"`
}

// AlertConfig defines the thresholds for post-analysis alert checks.
type AlertConfig struct {
	InversionAlert       bool    `mapstructure:"inversion_alert"`
	ExtremeContango      float64 `mapstructure:"extreme_contango"`
	ExtremeBackwardation float64 `mapstructure:"extreme_backwardation"`
	HighRollCarryPct     float64 `mapstructure:"high_roll_carry_pct"`
	VIXSpikeLevel        float64 `mapstructure:"vix_spike_level"`
}

// DatabaseConfig defines the snapshot store connection settings.
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string `mapstructure:"dbname"`
}

// FeedConfig selects and parameterizes the quote feed.
type FeedConfig struct {
	Name string
	URL  string
}

// DSN builds the postgres connection string for the snapshot store.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s", d.User, d.Password, d.Host, d.Port, d.DBName)
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetDefault("analysis.steep_threshold", 3.0)
	viper.SetDefault("analysis.strong_signal_threshold", 5.0)
	viper.SetDefault("analysis.inversion_epsilon", 0.0)
	viper.SetDefault("analysis.change_epsilon", 0.0)
	viper.SetDefault("alerts.inversion_alert", true)
	viper.SetDefault("alerts.extreme_contango", 3.0)
	viper.SetDefault("alerts.extreme_backwardation", -3.0)
	viper.SetDefault("alerts.high_roll_carry_pct", 30.0)
	viper.SetDefault("alerts.vix_spike_level", 30.0)
	viper.SetDefault("feed.name", "fake")

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	err = viper.ReadInConfig()
	if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	return
}
