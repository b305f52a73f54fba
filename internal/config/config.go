package config

import (
	"fmt"
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, falling back to system environment variables")
	}
}

type Config struct {
	DiscordToken string `env:"DISCORD_TOKEN,required"`

	// AI chat relay
	AIProvider   string `env:"AI_PROVIDER" envDefault:"gemini"`
	AIModel      string `env:"AI_MODEL" envDefault:"gemma-3-27b-it"`
	GeminiAPIKey string `env:"GEMINI_API_KEY"`
	SystemPrompt string `env:"SYSTEM_PROMPT_PATH" envDefault:"system_prompt.md"`

	// Music
	IdleTimeout time.Duration `env:"MUSIC_IDLE_TIMEOUT" envDefault:"60s"`

	// Speech
	TTSLang string `env:"TTS_LANG" envDefault:"en"`

	StoragePath string `env:"STORAGE_PATH" envDefault:"datastore.json"`
	LogFile     string `env:"LOG_FILE"`
}

func New() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}
