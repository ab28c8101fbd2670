package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Env holds credentials and endpoints read from the environment.
type Env struct {
	OpenAIAPIKey   string `envconfig:"OPENAI_API_KEY"`
	DeepseekAPIKey string `envconfig:"DEEPSEEK_API_KEY"`
	ArkAPIKey      string `envconfig:"ARK_API_KEY"`
	GeminiAPIKey   string `envconfig:"GEMINI_API_KEY"`
	OllamaBaseURL  string `envconfig:"OLLAMA_BASE_URL" default:"http://localhost:11434"`
	RedisURL       string `envconfig:"REDIS_URL"`
}

// LoadEnv processes environment variables into an Env.
func LoadEnv() (*Env, error) {
	var env Env
	if err := envconfig.Process("", &env); err != nil {
		return nil, fmt.Errorf("error processing environment configuration: %w", err)
	}
	return &env, nil
}

// ChatAPIKey returns the credential for the configured chat provider.
func (e *Env) ChatAPIKey(provider string) string {
	switch provider {
	case "deepseek":
		return e.DeepseekAPIKey
	case "ark":
		return e.ArkAPIKey
	case "ollama":
		return "" // local provider, no key
	default:
		return e.OpenAIAPIKey
	}
}
