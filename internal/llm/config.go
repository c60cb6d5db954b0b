package llm

import (
	"os"
	"strconv"
	"strings"
)

// OpenAIConfig configures the primary hosted backend.
type OpenAIConfig struct {
	APIKey    string   `yaml:"api_key"`
	BaseURL   string   `yaml:"base_url"`
	Models    []string `yaml:"models"`
	TimeoutMs int      `yaml:"timeout_ms"`
}

// GeminiConfig configures the secondary hosted backend.
type GeminiConfig struct {
	APIKey    string `yaml:"api_key"`
	BaseURL   string `yaml:"base_url"`
	Model     string `yaml:"model"`
	TimeoutMs int    `yaml:"timeout_ms"`
}

// OllamaConfig configures the local daemon backend.
type OllamaConfig struct {
	Enabled   bool     `yaml:"enabled"`
	Endpoint  string   `yaml:"endpoint"`
	Models    []string `yaml:"models"`
	TimeoutMs int      `yaml:"timeout_ms"`
}

// ProvidersConfig holds the configuration of every generation backend.
type ProvidersConfig struct {
	OpenAI   OpenAIConfig `yaml:"openai"`
	Gemini   GeminiConfig `yaml:"gemini"`
	Ollama   OllamaConfig `yaml:"ollama"`
	LogCalls bool         `yaml:"log_calls"`
}

// openAIKeyPrefix is the prefix every well-formed OpenAI secret key carries.
const openAIKeyPrefix = "sk-"

// DefaultConfig returns a ProvidersConfig with sensible defaults. Hosted
// backends stay disabled until a key is supplied.
func DefaultConfig() ProvidersConfig {
	return ProvidersConfig{
		OpenAI: OpenAIConfig{
			BaseURL:   "https://api.openai.com",
			Models:    []string{"gpt-4o-mini", "gpt-4.1-mini", "gpt-3.5-turbo"},
			TimeoutMs: 30000,
		},
		Gemini: GeminiConfig{
			BaseURL:   "https://generativelanguage.googleapis.com",
			Model:     "gemini-1.5-flash",
			TimeoutMs: 30000,
		},
		Ollama: OllamaConfig{
			Enabled:   true,
			Endpoint:  "http://localhost:11434",
			Models:    []string{"llama3.2"},
			TimeoutMs: 120000,
		},
		LogCalls: true,
	}
}

// ApplyEnv overlays environment variables onto cfg. It returns the names of
// variables whose values could not be parsed; those are left at their
// previous values.
func ApplyEnv(cfg *ProvidersConfig) []string {
	var invalid []string

	if v := strings.TrimSpace(os.Getenv("OPENAI_API_KEY")); v != "" {
		cfg.OpenAI.APIKey = v
	}
	if v := strings.TrimSpace(os.Getenv("OPENAI_BASE_URL")); v != "" {
		cfg.OpenAI.BaseURL = strings.TrimRight(v, "/")
	}
	if v := os.Getenv("DAYPLAN_OPENAI_MODELS"); v != "" {
		cfg.OpenAI.Models = splitList(v)
	}
	if !applyTimeoutEnv(&cfg.OpenAI.TimeoutMs, "DAYPLAN_OPENAI_TIMEOUT_MS") {
		invalid = append(invalid, "DAYPLAN_OPENAI_TIMEOUT_MS")
	}

	if v := strings.TrimSpace(os.Getenv("GEMINI_API_KEY")); v != "" {
		cfg.Gemini.APIKey = v
	}
	if v := strings.TrimSpace(os.Getenv("GEMINI_BASE_URL")); v != "" {
		cfg.Gemini.BaseURL = strings.TrimRight(v, "/")
	}
	if v := strings.TrimSpace(os.Getenv("DAYPLAN_GEMINI_MODEL")); v != "" {
		cfg.Gemini.Model = v
	}
	if !applyTimeoutEnv(&cfg.Gemini.TimeoutMs, "DAYPLAN_GEMINI_TIMEOUT_MS") {
		invalid = append(invalid, "DAYPLAN_GEMINI_TIMEOUT_MS")
	}

	if v := os.Getenv("DAYPLAN_OLLAMA_ENABLED"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			invalid = append(invalid, "DAYPLAN_OLLAMA_ENABLED")
		} else {
			cfg.Ollama.Enabled = b
		}
	}
	if v := strings.TrimSpace(os.Getenv("OLLAMA_BASE_URL")); v != "" {
		cfg.Ollama.Endpoint = strings.TrimRight(v, "/")
	}
	if v := os.Getenv("DAYPLAN_OLLAMA_MODELS"); v != "" {
		cfg.Ollama.Models = splitList(v)
	}
	if !applyTimeoutEnv(&cfg.Ollama.TimeoutMs, "DAYPLAN_OLLAMA_TIMEOUT_MS") {
		invalid = append(invalid, "DAYPLAN_OLLAMA_TIMEOUT_MS")
	}

	if v := os.Getenv("DAYPLAN_LLM_LOG_CALLS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			invalid = append(invalid, "DAYPLAN_LLM_LOG_CALLS")
		} else {
			cfg.LogCalls = b
		}
	}

	return invalid
}

// OpenAIEligible reports whether the OpenAI key is present and well formed.
func (c ProvidersConfig) OpenAIEligible() bool {
	return strings.HasPrefix(c.OpenAI.APIKey, openAIKeyPrefix) && len(c.OpenAI.Models) > 0
}

// GeminiEligible reports whether a Gemini key is configured.
func (c ProvidersConfig) GeminiEligible() bool {
	return c.Gemini.APIKey != "" && c.Gemini.Model != ""
}

// OllamaEligible reports whether the local daemon should be attempted.
func (c ProvidersConfig) OllamaEligible() bool {
	return c.Ollama.Enabled && c.Ollama.Endpoint != "" && len(c.Ollama.Models) > 0
}

func applyTimeoutEnv(dst *int, envName string) bool {
	v := os.Getenv(envName)
	if v == "" {
		return true
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return false
	}
	*dst = n
	return true
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
