package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cardninja/cardsync/pkg/llm"
)

// Config holds the full application configuration.
type Config struct {
	LLM    LLMConfig    `yaml:"llm" mapstructure:"llm"`
	Scrape ScrapeConfig `yaml:"scrape" mapstructure:"scrape"`
	Data   DataConfig   `yaml:"data" mapstructure:"data"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// LLMConfig selects the completion provider and its credential pool.
type LLMConfig struct {
	Provider    string   `yaml:"provider" mapstructure:"provider"`
	Model       string   `yaml:"model" mapstructure:"model"`
	BaseURL     string   `yaml:"base_url" mapstructure:"base_url"`
	Key         string   `yaml:"key" mapstructure:"key"`
	Keys        []string `yaml:"keys" mapstructure:"keys"`
	TimeoutSecs int      `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// ScrapeConfig configures page fetching and pacing.
type ScrapeConfig struct {
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	DelaySecs   int    `yaml:"delay_secs" mapstructure:"delay_secs"`
	UserAgent   string `yaml:"user_agent" mapstructure:"user_agent"`
}

// DataConfig locates the catalog, dataset and run log on disk.
type DataConfig struct {
	Dir         string `yaml:"dir" mapstructure:"dir"`
	SourcesFile string `yaml:"sources_file" mapstructure:"sources_file"`
	CardsFile   string `yaml:"cards_file" mapstructure:"cards_file"`
	LogFile     string `yaml:"log_file" mapstructure:"log_file"`
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
	v.SetEnvPrefix("CARDSYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("llm.provider", "gemini")
	v.SetDefault("llm.model", "gemini-2.0-flash-exp")
	v.SetDefault("llm.base_url", "http://localhost:11434")
	// Registered empty so env-only values are seen by Unmarshal.
	v.SetDefault("llm.key", "")
	v.SetDefault("llm.keys", []string{})
	v.SetDefault("llm.timeout_secs", 120)
	v.SetDefault("scrape.timeout_secs", 30)
	v.SetDefault("scrape.delay_secs", 120)
	v.SetDefault("scrape.user_agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36")
	v.SetDefault("data.dir", "data")
	v.SetDefault("data.sources_file", "card_sources.json")
	v.SetDefault("data.cards_file", "cards.json")
	v.SetDefault("data.log_file", "update_log.txt")
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

// CredentialPool returns the ordered credential pool for the provider. A
// keys list takes precedence over the single key; local providers get one
// empty credential so the rotation loop runs exactly once.
func (c *Config) CredentialPool() []string {
	if !llm.IsCloudProvider(c.LLM.Provider) {
		return []string{""}
	}
	if len(c.LLM.Keys) > 0 {
		pool := make([]string, 0, len(c.LLM.Keys))
		for _, k := range c.LLM.Keys {
			if k = strings.TrimSpace(k); k != "" {
				pool = append(pool, k)
			}
		}
		return pool
	}
	if c.LLM.Key != "" {
		return []string{c.LLM.Key}
	}
	return nil
}

// Validate returns an error for configurations the pipeline refuses to
// start with: a cloud provider without credentials, or a missing data
// directory.
func (c *Config) Validate() error {
	if llm.IsCloudProvider(c.LLM.Provider) && len(c.CredentialPool()) == 0 {
		return eris.Errorf("config: no API keys configured for provider %q (set CARDSYNC_LLM_KEY or llm.keys)", c.LLM.Provider)
	}
	if info, err := os.Stat(c.Data.Dir); err != nil || !info.IsDir() {
		return eris.Errorf("config: data directory not found: %s", c.Data.Dir)
	}
	return nil
}

// SourcesPath returns the catalog path under the data directory.
func (c *Config) SourcesPath() string { return filepath.Join(c.Data.Dir, c.Data.SourcesFile) }

// CardsPath returns the dataset path under the data directory.
func (c *Config) CardsPath() string { return filepath.Join(c.Data.Dir, c.Data.CardsFile) }

// RunLogPath returns the run log path under the data directory.
func (c *Config) RunLogPath() string { return filepath.Join(c.Data.Dir, c.Data.LogFile) }

// ScrapeTimeout returns the page-fetch timeout as a duration.
func (c *Config) ScrapeTimeout() time.Duration {
	return time.Duration(c.Scrape.TimeoutSecs) * time.Second
}

// LLMTimeout returns the completion-call timeout as a duration.
func (c *Config) LLMTimeout() time.Duration {
	return time.Duration(c.LLM.TimeoutSecs) * time.Second
}

// CardDelay returns the inter-card delay. With more than one credential the
// delay is capped at one minute, since rotation already absorbs rate limits.
func (c *Config) CardDelay() time.Duration {
	delay := time.Duration(c.Scrape.DelaySecs) * time.Second
	if len(c.CredentialPool()) > 1 && delay > time.Minute {
		delay = time.Minute
	}
	return delay
}

// MaskKey renders a credential safe for logs.
func MaskKey(key string) string {
	if len(key) <= 10 {
		return "****"
	}
	return key[:6] + "..." + key[len(key)-4:]
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
