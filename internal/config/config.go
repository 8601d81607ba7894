package config

import "os"

type Config struct {
	DBHost         string
	DBPort         string
	DBUser         string
	DBPassword     string
	DBName         string
	BotToken       string
	ChannelID      string
	BotAPIKey      string
	ServerPort     string
	WebhookBaseURL string
	WebhookSecret  string
}

func Load() *Config {
	return &Config{
		DBHost:         getEnv("DB_HOST", "localhost"),
		DBPort:         getEnv("DB_PORT", "5432"),
		DBUser:         getEnv("DB_USER", "postgres"),
		DBPassword:     getEnv("DB_PASSWORD", "postgres"),
		DBName:         getEnv("DB_NAME", "chessbot"),
		BotToken:       getEnv("BOT_TOKEN", ""),
		ChannelID:      getEnv("CHANNEL_ID", ""),
		BotAPIKey:      getEnv("BOT_API_KEY", "bot-api-key-change-me"),
		ServerPort:     getEnv("SERVER_PORT", "8080"),
		WebhookBaseURL: getEnv("WEBHOOK_BASE_URL", ""),
		WebhookSecret:  getEnv("WEBHOOK_SECRET", ""),
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
