// Package config содержит логику чтения конфигурации бота.
package config

import (
	"flag"
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config содержит параметры конфигурации бота.
type Config struct {
	TelegramBotToken string  `env:"TELEGRAM_BOT_TOKEN"`
	CryptoBotToken   string  `env:"CRYPTO_BOT_TOKEN"`
	CryptoBotAPIURL  string  `env:"CRYPTO_BOT_API_URL"`
	AdminIDs         []int64 `env:"ADMIN_IDS"`
	StateFile        string  `env:"STATE_FILE"`
	RunAddress       string  `env:"RUN_ADDRESS"`
	PaidButtonURL    string  `env:"PAID_BUTTON_URL"`
}

// Parse считывает конфигурацию из .env-файла, переменных окружения и флагов
// командной строки. Переменные окружения имеют приоритет над флагами.
func Parse() (*Config, error) {
	// .env необязателен: при его отсутствии работаем с окружением процесса.
	_ = godotenv.Load()

	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	envAPIURL := cfg.CryptoBotAPIURL
	envStateFile := cfg.StateFile
	envRunAddress := cfg.RunAddress

	flag.StringVar(&cfg.CryptoBotAPIURL, "c", "https://pay.crypt.bot/api", "Crypto Pay API base URL")
	flag.StringVar(&cfg.StateFile, "f", "database.json", "path to the state file")
	flag.StringVar(&cfg.RunAddress, "a", ":8080", "address and port for the keep-alive HTTP server")

	flag.Parse()

	if envAPIURL != "" {
		cfg.CryptoBotAPIURL = envAPIURL
	}
	if envStateFile != "" {
		cfg.StateFile = envStateFile
	}
	if envRunAddress != "" {
		cfg.RunAddress = envRunAddress
	}

	if cfg.TelegramBotToken == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}
	if cfg.CryptoBotToken == "" {
		return nil, fmt.Errorf("CRYPTO_BOT_TOKEN is required")
	}
	if cfg.PaidButtonURL == "" {
		cfg.PaidButtonURL = "https://t.me/your_bot"
	}

	return cfg, nil
}
