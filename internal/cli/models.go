package cli

import "strings"

var validGeminiModels = map[string]bool{
	"gemini-3-pro-preview":   true,
	"gemini-3-flash-preview": true,
	"gemini-2.5-pro":         true,
	"gemini-2.5-flash":       true,
	"gemini-2.5-flash-lite":  true,
}

var validOpenAIChatModels = map[string]bool{
	"o1":          true,
	"o3-mini":     true,
	"o1-pro":      true,
	"o3":          true,
	"gpt-5":       true,
	"gpt-5-nano":  true,
	"gpt-5-mini":  true,
	"gpt-5-pro":   true,
	"gpt-5.1":     true,
	"gpt-5.2":     true,
	"gpt-5.2-pro": true,
}

func isValidGeminiModel(model string) bool {
	return validGeminiModels[model]
}

func isValidOpenAIModel(model string) bool {
	return validOpenAIChatModels[model]
}

// isValidOpenAITranscriptLanguage reports whether the requested
// transcript language works with the OpenAI audio endpoints, which can
// only emit the native language or English.
func isValidOpenAITranscriptLanguage(lang string) bool {
	lang = strings.ToLower(strings.TrimSpace(lang))
	switch lang {
	case "", "native", "english", "en":
		return true
	}
	return false
}
