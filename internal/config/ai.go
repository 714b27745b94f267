package config

import "os"

// AIProvider selects which analyzer backend to use
type AIProvider string

const (
	ProviderGemini AIProvider = "gemini"
	ProviderOpenAI AIProvider = "openai"
)

// AIConfig holds all AI-related configuration
type AIConfig struct {
	Provider  AIProvider `json:"provider"`
	APIKey    string     `json:"-"` // Never serialize
	BaseURL   string     `json:"baseUrl"`
	Model     string     `json:"model"`
	TimeoutMS int        `json:"timeoutMs"`
}

// DefaultAIConfig returns the AI configuration from the environment
func DefaultAIConfig() *AIConfig {
	provider := AIProvider(getEnvOrDefault("AI_PROVIDER", string(ProviderGemini)))
	cfg := &AIConfig{
		Provider:  provider,
		TimeoutMS: 15000,
	}
	switch provider {
	case ProviderOpenAI:
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")
		cfg.Model = getEnvOrDefault("OPENAI_MODEL", "gpt-4o-mini")
	default:
		cfg.APIKey = os.Getenv("GEMINI_API_KEY")
		cfg.BaseURL = "https://generativelanguage.googleapis.com/v1beta/models"
		cfg.Model = getEnvOrDefault("GEMINI_MODEL", "gemini-2.0-flash")
	}
	return cfg
}

// IsEnabled returns true if the AI API is configured
func (c *AIConfig) IsEnabled() bool {
	return c.APIKey != ""
}

// ModelEndpoint returns the full Gemini endpoint for the configured model
func (c *AIConfig) ModelEndpoint() string {
	return c.BaseURL + "/" + c.Model + ":generateContent"
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}
