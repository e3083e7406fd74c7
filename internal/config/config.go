package config

import (
	"errors"
	"os"
	"strconv"
	"time"
)

var (
	ErrInvalidPort      = errors.New("invalid HTTP_PORT")
	ErrInvalidCacheType = errors.New("invalid cache type")
)

type Config struct {
	Server    ServerConfig
	Providers ProvidersConfig
	LLM       LLMConfig
	TTS       TTSConfig
	Enrich    EnrichConfig
	Log       LogConfig
	Timeouts  TimeoutConfig
	Cache     CacheConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Port            int
	ShutdownTimeout time.Duration
}

// ProvidersConfig - ключи поисковых провайдеров. Все опциональны:
// без ключа провайдер просто не участвует в цепочке.
type ProvidersConfig struct {
	Tavily  KeyedProvider
	Serper  KeyedProvider
	SerpAPI KeyedProvider
	Bing    KeyedProvider
	Reddit  RedditConfig
}

type KeyedProvider struct {
	APIKey  string
	BaseURL string
}

type RedditConfig struct {
	ClientID     string
	ClientSecret string
	Username     string
	Password     string
}

type LLMConfig struct {
	OpenRouter OpenRouterConfig
	OpenAI     OpenAIConfig
	Anthropic  AnthropicConfig
	Ollama     OllamaConfig
}

type OpenRouterConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

type AnthropicConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

type OllamaConfig struct {
	BaseURL string
	Model   string
}

type TTSConfig struct {
	ElevenLabs ElevenLabsConfig
	PlayHT     PlayHTConfig
}

type ElevenLabsConfig struct {
	APIKey  string
	VoiceID string
}

type PlayHTConfig struct {
	APIKey string
	UserID string
}

type EnrichConfig struct {
	MaxItems    int
	Timeout     time.Duration
	ProxyBase   string
	Placeholder string
}

type LogConfig struct {
	Level string
}

type TimeoutConfig struct {
	Provider time.Duration
	Total    time.Duration
}

type CacheConfig struct {
	Type string
	TTL  time.Duration
}

type RateLimitConfig struct {
	RequestsPerMinute int
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnvIntOrDefault("HTTP_PORT", 8080),
			ShutdownTimeout: time.Duration(getEnvIntOrDefault("SHUTDOWN_TIMEOUT_SEC", 10)) * time.Second,
		},
		Providers: ProvidersConfig{
			Tavily: KeyedProvider{
				APIKey:  os.Getenv("TAVILY_API_KEY"),
				BaseURL: getEnvOrDefault("TAVILY_BASE_URL", "https://api.tavily.com"),
			},
			Serper: KeyedProvider{
				APIKey:  os.Getenv("SERPER_API_KEY"),
				BaseURL: getEnvOrDefault("SERPER_BASE_URL", "https://google.serper.dev"),
			},
			SerpAPI: KeyedProvider{
				APIKey:  os.Getenv("SERPAPI_API_KEY"),
				BaseURL: getEnvOrDefault("SERPAPI_BASE_URL", "https://serpapi.com"),
			},
			Bing: KeyedProvider{
				APIKey:  os.Getenv("BING_API_KEY"),
				BaseURL: getEnvOrDefault("BING_BASE_URL", "https://api.bing.microsoft.com"),
			},
			Reddit: RedditConfig{
				ClientID:     os.Getenv("REDDIT_CLIENT_ID"),
				ClientSecret: os.Getenv("REDDIT_CLIENT_SECRET"),
				Username:     os.Getenv("REDDIT_USERNAME"),
				Password:     os.Getenv("REDDIT_PASSWORD"),
			},
		},
		LLM: LLMConfig{
			OpenRouter: OpenRouterConfig{
				APIKey:  os.Getenv("OPENROUTER_API_KEY"),
				Model:   getEnvOrDefault("OPENROUTER_MODEL", "deepseek/deepseek-chat"),
				BaseURL: getEnvOrDefault("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"),
			},
			OpenAI: OpenAIConfig{
				APIKey:  os.Getenv("OPENAI_API_KEY"),
				Model:   getEnvOrDefault("OPENAI_MODEL", "gpt-4o-mini"),
				BaseURL: getEnvOrDefault("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			},
			Anthropic: AnthropicConfig{
				APIKey:  os.Getenv("ANTHROPIC_API_KEY"),
				Model:   getEnvOrDefault("ANTHROPIC_MODEL", "claude-3-5-haiku-latest"),
				BaseURL: getEnvOrDefault("ANTHROPIC_BASE_URL", "https://api.anthropic.com/v1"),
			},
			Ollama: OllamaConfig{
				BaseURL: os.Getenv("OLLAMA_BASE_URL"),
				Model:   getEnvOrDefault("OLLAMA_MODEL", "llama3.2"),
			},
		},
		TTS: TTSConfig{
			ElevenLabs: ElevenLabsConfig{
				APIKey:  os.Getenv("ELEVENLABS_API_KEY"),
				VoiceID: os.Getenv("ELEVENLABS_VOICE_ID"),
			},
			PlayHT: PlayHTConfig{
				APIKey: os.Getenv("PLAYHT_API_KEY"),
				UserID: os.Getenv("PLAYHT_USER_ID"),
			},
		},
		Enrich: EnrichConfig{
			MaxItems:    getEnvIntOrDefault("ENRICH_MAX_ITEMS", 6),
			Timeout:     time.Duration(getEnvIntOrDefault("ENRICH_TIMEOUT_SEC", 5)) * time.Second,
			ProxyBase:   os.Getenv("ENRICH_PROXY_BASE"),
			Placeholder: os.Getenv("ENRICH_PLACEHOLDER"),
		},
		Log: LogConfig{
			Level: getEnvOrDefault("LOG_LEVEL", "info"),
		},
		Timeouts: TimeoutConfig{
			Provider: time.Duration(getEnvIntOrDefault("PROVIDER_TIMEOUT_SEC", 8)) * time.Second,
			Total:    time.Duration(getEnvIntOrDefault("TOTAL_TIMEOUT_SEC", 30)) * time.Second,
		},
		Cache: CacheConfig{
			Type: getEnvOrDefault("CACHE_TYPE", "memory"),
			TTL:  time.Duration(getEnvIntOrDefault("CACHE_TTL_SEC", 300)) * time.Second,
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: getEnvIntOrDefault("RATE_LIMIT_PER_MINUTE", 60),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return ErrInvalidPort
	}
	if c.Cache.Type != "memory" && c.Cache.Type != "none" {
		return ErrInvalidCacheType
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
