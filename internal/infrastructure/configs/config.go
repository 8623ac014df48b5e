package configs

import (
	"fmt"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/mewisme/private-chats/internal/infrastructure/env"
)

type Config struct {
	HTTP        HTTPConfig        `koanf:"http"`
	RateLimiter RateLimiterConfig `koanf:"rateLimiter"`
	Cleanup     CleanupConfig     `koanf:"cleanup"`
	Presence    PresenceConfig    `koanf:"presence"`
	Session     SessionConfig     `koanf:"session"`
	Identity    IdentityConfig    `koanf:"identity"`
	AI          AIConfig          `koanf:"ai"`
}

type HTTPConfig struct {
	Host           string        `koanf:"host"`
	Port           uint16        `koanf:"port"`
	AllowedOrigins []string      `koanf:"allowed_origins"`
	AllowedHeaders []string      `koanf:"allowed_headers"`
	ReadTimeout    time.Duration `koanf:"read_timeout"`
	WriteTimeout   time.Duration `koanf:"write_timeout"`
}

type RateLimiterConfig struct {
	MaxRatePerSecond int           `koanf:"maxRatePerSecond"`
	MaxBurst         int           `koanf:"maxBurst"`
	CacheTTL         time.Duration `koanf:"cacheTTL"`
	SourceHeaderKey  string        `koanf:"sourceHeaderKey"`
	RedisAddr        string        `koanf:"redisAddr"`
}

// CleanupConfig bounds one reaper invocation. The defaults mirror the
// production deployment: small fetch caps and a wall-clock budget that keeps
// a run under the hosting platform's hard execution limit.
type CleanupConfig struct {
	CronSecret   string        `koanf:"cronSecret"`
	StaleAfter   time.Duration `koanf:"staleAfter"`
	RoomFetchCap int64         `koanf:"roomFetchCap"`
	TypingCap    int64         `koanf:"typingCap"`
	BatchSize    int           `koanf:"batchSize"`
	MaxExecution time.Duration `koanf:"maxExecution"`
}

type PresenceConfig struct {
	IdleTimeout time.Duration `koanf:"idleTimeout"`
}

type SessionConfig struct {
	// ManualLeaveWindow suppresses "chat ended" handling for room-gone
	// events observed right after a self-initiated leave.
	ManualLeaveWindow time.Duration `koanf:"manualLeaveWindow"`
}

type IdentityConfig struct {
	JWTSecret string        `koanf:"jwtSecret"`
	CookieTTL time.Duration `koanf:"cookieTTL"`
}

type AIConfig struct {
	BaseURL           string        `koanf:"baseURL"`
	Model             string        `koanf:"model"`
	APIKey            string        `koanf:"apiKey"`
	RequestTimeout    time.Duration `koanf:"requestTimeout"`
	MaxRequestsPerMin int           `koanf:"maxRequestsPerMin"`
}

func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Load from YAML file if it exists
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			// Only return error if file was explicitly provided but failed to load
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	// Apply defaults and environment variable overrides
	applyDefaults(k)
	applyEnvOverrides(k)

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func applyDefaults(k *koanf.Koanf) {
	// HTTP defaults
	setDefault(k, "http.host", "0.0.0.0")
	setDefault(k, "http.port", 8080)
	setDefault(k, "http.read_timeout", 10*time.Second)
	setDefault(k, "http.write_timeout", 30*time.Second)
	setDefault(k, "http.allowed_origins", []string{"*"})
	setDefault(k, "http.allowed_headers", []string{"Content-Type", "Authorization", "X-Client-Token"})

	// Rate limiter defaults
	setDefault(k, "rateLimiter.maxRatePerSecond", 10)
	setDefault(k, "rateLimiter.maxBurst", 20)
	setDefault(k, "rateLimiter.cacheTTL", 5*time.Minute)
	setDefault(k, "rateLimiter.sourceHeaderKey", "X-Forwarded-For")
	setDefault(k, "rateLimiter.redisAddr", "")

	// Cleanup defaults
	setDefault(k, "cleanup.staleAfter", 10*time.Minute)
	setDefault(k, "cleanup.roomFetchCap", 100)
	setDefault(k, "cleanup.typingCap", 50)
	setDefault(k, "cleanup.batchSize", 10)
	setDefault(k, "cleanup.maxExecution", 45*time.Second)

	// Presence / session defaults
	setDefault(k, "presence.idleTimeout", 2*time.Second)
	setDefault(k, "session.manualLeaveWindow", 300*time.Millisecond)

	// Identity defaults
	setDefault(k, "identity.cookieTTL", 30*24*time.Hour)

	// AI defaults
	setDefault(k, "ai.baseURL", "https://generativelanguage.googleapis.com/v1beta/openai")
	setDefault(k, "ai.model", "gemini-2.5-flash")
	setDefault(k, "ai.requestTimeout", 30*time.Second)
	setDefault(k, "ai.maxRequestsPerMin", 15)
}

func applyEnvOverrides(k *koanf.Koanf) {
	// HTTP config from env
	if host := env.GetString("HTTP_HOST", ""); host != "" {
		k.Set("http.host", host)
	}
	if port := env.GetInt("HTTP_PORT", 0); port > 0 {
		k.Set("http.port", port)
	}
	if readTimeout := env.GetInt("HTTP_READ_TIMEOUT_SECONDS", 0); readTimeout > 0 {
		k.Set("http.read_timeout", time.Duration(readTimeout)*time.Second)
	}
	if writeTimeout := env.GetInt("HTTP_WRITE_TIMEOUT_SECONDS", 0); writeTimeout > 0 {
		k.Set("http.write_timeout", time.Duration(writeTimeout)*time.Second)
	}

	// Rate limiter config from env
	if maxRate := env.GetInt("RATE_LIMIT_MAX_RATE_PER_SECOND", 0); maxRate > 0 {
		k.Set("rateLimiter.maxRatePerSecond", maxRate)
	}
	if maxBurst := env.GetInt("RATE_LIMIT_MAX_BURST", 0); maxBurst > 0 {
		k.Set("rateLimiter.maxBurst", maxBurst)
	}
	if redisAddr := env.GetString("RATE_LIMIT_REDIS_ADDR", ""); redisAddr != "" {
		k.Set("rateLimiter.redisAddr", redisAddr)
	}

	// Secrets always come from the environment
	if secret := env.GetString("SERVER_CRON_SECRET", ""); secret != "" {
		k.Set("cleanup.cronSecret", secret)
	}
	if secret := env.GetString("IDENTITY_JWT_SECRET", ""); secret != "" {
		k.Set("identity.jwtSecret", secret)
	}
	if key := env.GetString("SERVER_GEMINI_API_KEY", ""); key != "" {
		k.Set("ai.apiKey", key)
	}

	// AI config from env
	if baseURL := env.GetString("AI_BASE_URL", ""); baseURL != "" {
		k.Set("ai.baseURL", baseURL)
	}
	if model := env.GetString("AI_MODEL", ""); model != "" {
		k.Set("ai.model", model)
	}
}

// setDefault only sets the value if the key doesn't already exist
func setDefault(k *koanf.Koanf, key string, value interface{}) {
	if !k.Exists(key) {
		k.Set(key, value)
	}
}
