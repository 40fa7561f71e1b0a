package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port string `mapstructure:"port"`

	// LLM
	LLMProvider   string `mapstructure:"llm_provider"` // "gpt" | "gemini"
	OpenAIAPIKey  string `mapstructure:"openai_api_key"`
	OpenAIModel   string `mapstructure:"openai_model"`
	OpenAIBaseURL string `mapstructure:"openai_base_url"`
	GeminiAPIKey  string `mapstructure:"gemini_api_key"`
	GeminiModel   string `mapstructure:"gemini_model"`
	PersonasFile  string `mapstructure:"personas_file"`

	// OCR
	OCRProvider  string   `mapstructure:"ocr_provider"` // "yandex" | "gemini"
	OCRLangs     []string `mapstructure:"ocr_langs"`
	YCOAuthToken string   `mapstructure:"yc_oauth_token"`
	YCFolderID   string   `mapstructure:"yc_folder_id"`

	DatabaseURL string `mapstructure:"database_url"`

	// Telegram
	TelegramBotToken string `mapstructure:"telegram_bot_token"`
	WebhookURL       string `mapstructure:"webhook_url"`

	// AssistantEndpoint is the base URL (".../api") of a running chat endpoint used by the bot and the CLI.
	AssistantEndpoint string        `mapstructure:"assistant_endpoint"`
	FallbackDelay     time.Duration `mapstructure:"fallback_delay"`
	RequestTimeout    time.Duration `mapstructure:"request_timeout"`
}

func defaults(v *viper.Viper) {
	v.SetDefault("port", "5000")

	v.SetDefault("llm_provider", "gpt")
	v.SetDefault("openai_api_key", "")
	v.SetDefault("openai_model", "gpt-3.5-turbo")
	v.SetDefault("openai_base_url", "https://api.openai.com/v1")
	v.SetDefault("gemini_api_key", "")
	v.SetDefault("gemini_model", "gemini-2.5-flash")
	v.SetDefault("personas_file", "")

	v.SetDefault("ocr_provider", "yandex")
	v.SetDefault("ocr_langs", []string{"en", "hi"})
	v.SetDefault("yc_oauth_token", "")
	v.SetDefault("yc_folder_id", "")

	v.SetDefault("database_url", "")

	v.SetDefault("telegram_bot_token", "")
	v.SetDefault("webhook_url", "")

	v.SetDefault("assistant_endpoint", "")
	v.SetDefault("fallback_delay", "1s")
	v.SetDefault("request_timeout", "70s")
}

// Load reads defaults, then the optional YAML file, then environment variables
// (PORT, OPENAI_API_KEY, GEMINI_MODEL, ...), later sources winning.
func Load(file string) (*Config, error) {
	v := viper.New()
	defaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	cfg.LLMProvider = strings.ToLower(strings.TrimSpace(cfg.LLMProvider))
	cfg.OCRProvider = strings.ToLower(strings.TrimSpace(cfg.OCRProvider))
	cfg.OCRLangs = splitLangs(cfg.OCRLangs)
	return &cfg, nil
}

// splitLangs accepts both YAML lists and the comma separated env form (OCR_LANGS=en,hi).
func splitLangs(in []string) []string {
	var out []string
	for _, s := range in {
		for _, p := range strings.Split(s, ",") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

// RequireTelegram checks the settings the bot cannot start without.
func (c *Config) RequireTelegram() error {
	if strings.TrimSpace(c.TelegramBotToken) == "" {
		return errors.New("missing required env TELEGRAM_BOT_TOKEN")
	}
	return nil
}

// HasLLM reports whether the configured provider has credentials.
func (c *Config) HasLLM() bool {
	switch c.LLMProvider {
	case "gemini":
		return c.GeminiAPIKey != ""
	default:
		return c.OpenAIAPIKey != ""
	}
}
