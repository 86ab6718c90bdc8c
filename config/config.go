package config

import "os"

type Config struct {
	AnthropicAPIKey string
	AnthropicModel  string
	RatesURL        string
}

func Load() *Config {
	return &Config{
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		AnthropicModel:  getEnv("ANTHROPIC_MODEL", "claude-sonnet-4-20250514"),
		RatesURL:        getEnv("RATES_URL", ""),
	}
}

func getEnv(key, defaultVal string) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	return defaultVal
}
