package config

import (
	"log"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	Env               string `mapstructure:"ENV"`
	DatabaseURL       string `mapstructure:"DATABASE_URL"`
	DatabaseName      string `mapstructure:"DATABASE_NAME"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Redis configuration.
	RedisAddr       string `mapstructure:"REDIS_ADDR"`
	RedisPassword   string `mapstructure:"REDIS_PASSWORD"`
	RedisCatalogDB  int    `mapstructure:"REDIS_CATALOG_DB"`
	RedisPrefsDB    int    `mapstructure:"REDIS_PREFS_DB"`
	RedisReminderDB int    `mapstructure:"REDIS_REMINDER_DB"`

	// Gemini configuration. GEMINI_API_KEYS is a comma-separated list tried
	// in order when a call fails with a retryable error.
	GeminiAPIKeys       string `mapstructure:"GEMINI_API_KEYS"`
	GeminiPrimaryModel  string `mapstructure:"GEMINI_PRIMARY_MODEL"`
	GeminiFallbackModel string `mapstructure:"GEMINI_FALLBACK_MODEL"`
	GeminiTimeoutSecs   int    `mapstructure:"GEMINI_TIMEOUT_SECS"`

	// Outbound messaging gateway.
	GatewayURL   string `mapstructure:"GATEWAY_URL"`
	GatewayToken string `mapstructure:"GATEWAY_TOKEN"`

	// Conversation settings.
	AdminNumber        string `mapstructure:"ADMIN_NUMBER"`
	CoalesceDelaySecs  int    `mapstructure:"COALESCE_DELAY_SECS"`
	AgentMaxIterations int    `mapstructure:"AGENT_MAX_ITERATIONS"`
	HistoryFetchLimit  int    `mapstructure:"HISTORY_FETCH_LIMIT"`

	// Capacity rules.
	RepaintConcurrentLimit int `mapstructure:"REPAINT_CONCURRENT_LIMIT"`
	RepaintWindowDays      int `mapstructure:"REPAINT_WINDOW_DAYS"`
	DetailingDailyLimit    int `mapstructure:"DETAILING_DAILY_LIMIT"`
	ClosingHour            int `mapstructure:"CLOSING_HOUR"`
	ScanHorizonDays        int `mapstructure:"SCAN_HORIZON_DAYS"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("DATABASE_NAME", "bengkelbot")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CATALOG_DB", 0)
	viper.SetDefault("REDIS_PREFS_DB", 1)
	viper.SetDefault("REDIS_REMINDER_DB", 2)
	viper.SetDefault("GEMINI_API_KEYS", "")
	viper.SetDefault("GEMINI_PRIMARY_MODEL", "gemini-1.5-pro")
	viper.SetDefault("GEMINI_FALLBACK_MODEL", "gemini-1.5-flash")
	viper.SetDefault("GEMINI_TIMEOUT_SECS", 30)
	viper.SetDefault("GATEWAY_URL", "http://localhost:3000")
	viper.SetDefault("GATEWAY_TOKEN", "")
	viper.SetDefault("ADMIN_NUMBER", "")
	viper.SetDefault("COALESCE_DELAY_SECS", 10)
	viper.SetDefault("AGENT_MAX_ITERATIONS", 8)
	viper.SetDefault("HISTORY_FETCH_LIMIT", 30)
	viper.SetDefault("REPAINT_CONCURRENT_LIMIT", 2)
	viper.SetDefault("REPAINT_WINDOW_DAYS", 5)
	viper.SetDefault("DETAILING_DAILY_LIMIT", 2)
	viper.SetDefault("CLOSING_HOUR", 17)
	viper.SetDefault("SCAN_HORIZON_DAYS", 30)

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

// GeminiKeys returns the configured API keys in fallback order.
func GeminiKeys() []string {
	parts := strings.Split(AppConfig.GeminiAPIKeys, ",")
	keys := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			keys = append(keys, p)
		}
	}
	return keys
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
