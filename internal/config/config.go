package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Pipeline  PipelineConfig  `yaml:"pipeline" mapstructure:"pipeline"`
	Policy    PolicyConfig    `yaml:"policy" mapstructure:"policy"`
	Ingest    IngestConfig    `yaml:"ingest" mapstructure:"ingest"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port      int `yaml:"port" mapstructure:"port"`
	SampleDir string `yaml:"sample_dir" mapstructure:"sample_dir"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// AnthropicConfig holds pricing-collaborator settings. An empty key disables
// the external estimation tier.
type AnthropicConfig struct {
	Key       string  `yaml:"key" mapstructure:"key"`
	Model     string  `yaml:"model" mapstructure:"model"`
	MaxTokens int64   `yaml:"max_tokens" mapstructure:"max_tokens"`
	RPS       float64 `yaml:"rps" mapstructure:"rps"`
}

// PipelineConfig configures the classification/pricing pipeline.
type PipelineConfig struct {
	// SimulationDate anchors all urgency arithmetic so output is reproducible
	// regardless of wall-clock invocation time. Format 2006-01-02.
	SimulationDate string `yaml:"simulation_date" mapstructure:"simulation_date"`

	UrgentDays int `yaml:"urgent_days" mapstructure:"urgent_days"`
	NormalDays int `yaml:"normal_days" mapstructure:"normal_days"`

	LLMCallBudget     int     `yaml:"llm_call_budget" mapstructure:"llm_call_budget"`
	DefaultTotalPrice float64 `yaml:"default_total_price" mapstructure:"default_total_price"`

	DumpingRatio       float64 `yaml:"dumping_ratio" mapstructure:"dumping_ratio"`
	PrivateChangeLimit float64 `yaml:"private_change_limit_pct" mapstructure:"private_change_limit_pct"`
}

// SimDate parses the configured simulation date. Falls back to the default
// when the value is malformed.
func (p PipelineConfig) SimDate() time.Time {
	t, err := time.Parse("2006-01-02", p.SimulationDate)
	if err != nil {
		return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	return t
}

// PolicyConfig points at the optional policy YAML file.
type PolicyConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// IngestConfig configures file ingestion.
type IngestConfig struct {
	MaxUploadMB int `yaml:"max_upload_mb" mapstructure:"max_upload_mb"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("PRPO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.sample_dir", "data")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("anthropic.model", "claude-sonnet-4-20250514")
	v.SetDefault("anthropic.max_tokens", 1024)
	v.SetDefault("anthropic.rps", 1.0)
	v.SetDefault("pipeline.simulation_date", "2026-01-01")
	v.SetDefault("pipeline.urgent_days", 2)
	v.SetDefault("pipeline.normal_days", 5)
	v.SetDefault("pipeline.llm_call_budget", 10)
	v.SetDefault("pipeline.default_total_price", 1_000_000)
	v.SetDefault("pipeline.dumping_ratio", 0.7)
	v.SetDefault("pipeline.private_change_limit_pct", 15)
	v.SetDefault("ingest.max_upload_mb", 50)

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
