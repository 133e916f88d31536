package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Paths    PathsConfig    `yaml:"paths" mapstructure:"paths"`
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Analyzer AnalyzerConfig `yaml:"analyzer" mapstructure:"analyzer"`
	Batch    BatchConfig    `yaml:"batch" mapstructure:"batch"`
	Fetcher  FetcherConfig  `yaml:"fetcher" mapstructure:"fetcher"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// PathsConfig holds the working directories and report location.
type PathsConfig struct {
	DataDir    string `yaml:"data_dir" mapstructure:"data_dir"`
	OutDir     string `yaml:"out_dir" mapstructure:"out_dir"`
	ListDir    string `yaml:"list_dir" mapstructure:"list_dir"`
	ReportPath string `yaml:"report_path" mapstructure:"report_path"`
}

// StoreConfig configures the run-history database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// AnalyzerConfig configures the external per-event analysis command.
type AnalyzerConfig struct {
	Command        string   `yaml:"command" mapstructure:"command"`
	ExtraArgs      []string `yaml:"extra_args" mapstructure:"extra_args"`
	TimeoutSecs    int      `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	ThresholdsFile string   `yaml:"thresholds_file" mapstructure:"thresholds_file"`
}

// BatchConfig configures batch processing.
type BatchConfig struct {
	Concurrency int `yaml:"concurrency" mapstructure:"concurrency"`
}

// FetcherConfig configures the flux archive downloader.
type FetcherConfig struct {
	BaseURL     string  `yaml:"base_url" mapstructure:"base_url"`
	RatePerSec  float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
	Burst       int     `yaml:"burst" mapstructure:"burst"`
	MaxRetries  int     `yaml:"max_retries" mapstructure:"max_retries"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	UserAgent   string  `yaml:"user_agent" mapstructure:"user_agent"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("SEPBATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("paths.data_dir", "data")
	v.SetDefault("paths.out_dir", "output/opsep")
	v.SetDefault("paths.list_dir", "lists/opsep")
	v.SetDefault("paths.report_path", "batch_run_results.csv")
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "sepbatch.db")
	v.SetDefault("analyzer.timeout_secs", 900)
	v.SetDefault("batch.concurrency", 1)
	v.SetDefault("fetcher.rate_per_sec", 2.0)
	v.SetDefault("fetcher.burst", 1)
	v.SetDefault("fetcher.max_retries", 3)
	v.SetDefault("fetcher.timeout_secs", 120)
	v.SetDefault("fetcher.user_agent", "sepbatch")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
