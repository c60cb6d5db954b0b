package domain

// GenerationSource identifies which path of the pipeline produced a result.
type GenerationSource string

const (
	SourceOpenAI   GenerationSource = "openai"
	SourceGemini   GenerationSource = "gemini"
	SourceOllama   GenerationSource = "ollama"
	SourceFallback GenerationSource = "fallback"
)

// DisplayName returns the human-readable backend name used in summaries.
func (s GenerationSource) DisplayName() string {
	switch s {
	case SourceOpenAI:
		return "OpenAI"
	case SourceGemini:
		return "Gemini"
	case SourceOllama:
		return "Ollama"
	case SourceFallback:
		return "fallback mode"
	default:
		return string(s)
	}
}
