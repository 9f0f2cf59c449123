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
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Provider  ProviderConfig  `yaml:"provider" mapstructure:"provider"`
	OpenAI    OpenAIConfig    `yaml:"openai" mapstructure:"openai"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Catalog   CatalogConfig   `yaml:"catalog" mapstructure:"catalog"`
	Backfill  BackfillConfig  `yaml:"backfill" mapstructure:"backfill"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the catalog database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// ProviderConfig selects the active backend for each operation axis.
// Embedding and Detection are independent: a run may embed with one backend
// and extract detections with another.
type ProviderConfig struct {
	Embedding string `yaml:"embedding" mapstructure:"embedding"`
	Detection string `yaml:"detection" mapstructure:"detection"`
}

// OpenAIConfig holds OpenAI API settings.
type OpenAIConfig struct {
	Key         string `yaml:"key" mapstructure:"key"`
	EmbedModel  string `yaml:"embed_model" mapstructure:"embed_model"`
	VisionModel string `yaml:"vision_model" mapstructure:"vision_model"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key         string `yaml:"key" mapstructure:"key"`
	VisionModel string `yaml:"vision_model" mapstructure:"vision_model"`
}

// CatalogConfig configures snapshot fetching.
type CatalogConfig struct {
	// PageSize is the page size used when draining the catalog past the
	// store's maximum-rows-per-request limit.
	PageSize int `yaml:"page_size" mapstructure:"page_size"`
	// MaxPromptItems caps how many catalog items are rendered into the
	// vision prompt.
	MaxPromptItems int `yaml:"max_prompt_items" mapstructure:"max_prompt_items"`
}

// BackfillConfig configures the embedding backfill scheduler.
type BackfillConfig struct {
	MaxProcess int `yaml:"max_process" mapstructure:"max_process"`
	BatchSize  int `yaml:"batch_size" mapstructure:"batch_size"`
	PaceMillis int `yaml:"pace_millis" mapstructure:"pace_millis"`
}

// ServerConfig configures the webhook server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
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
	v.SetEnvPrefix("ENRICH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults. Credentials and the database URL default to empty but must
	// still be registered: viper only unmarshals env-provided values for keys
	// it already knows about.
	v.SetDefault("store.driver", "postgres")
	v.SetDefault("store.database_url", "")
	v.SetDefault("provider.embedding", "openai")
	v.SetDefault("provider.detection", "openai")
	v.SetDefault("openai.key", "")
	v.SetDefault("openai.embed_model", "text-embedding-3-small")
	v.SetDefault("openai.vision_model", "gpt-4o-mini")
	v.SetDefault("anthropic.key", "")
	v.SetDefault("anthropic.vision_model", "claude-haiku-4-5-20251001")
	v.SetDefault("catalog.page_size", 1000)
	v.SetDefault("catalog.max_prompt_items", 3000)
	v.SetDefault("backfill.max_process", 100)
	v.SetDefault("backfill.batch_size", 10)
	v.SetDefault("backfill.pace_millis", 100)
	v.SetDefault("server.port", 8080)
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
