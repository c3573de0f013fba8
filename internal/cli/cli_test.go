package cli

import "testing"

func TestIsValidOpenAITranscriptLanguage(t *testing.T) {
	tests := []struct {
		lang string
		want bool
	}{
		{"", true},
		{"native", true},
		{"Native", true},
		{"NATIVE", true},
		{" native ", true},
		{"english", true},
		{"English", true},
		{"en", true},
		{"EN", true},
		{" en ", true},

		{"spanish", false},
		{"french", false},
		{"german", false},
		{"japanese", false},
		{"es", false},
		{"ja", false},
	}

	for _, tt := range tests {
		t.Run(tt.lang, func(t *testing.T) {
			if got := isValidOpenAITranscriptLanguage(tt.lang); got != tt.want {
				t.Errorf(
					"isValidOpenAITranscriptLanguage(%q) = %v, want %v",
					tt.lang, got, tt.want,
				)
			}
		})
	}
}

func TestMaskSecret(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
		want  string
	}{
		{"api key masked", "gemini_api_key", "sk-1234567890", "****7890"},
		{"short api key", "openai_api_key", "abc", "****"},
		{"non-secret untouched", "theme", "dark", "dark"},
		{"empty value", "anthropic_api_key", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := maskSecret(tt.key, tt.value); got != tt.want {
				t.Errorf("maskSecret(%q, %q) = %q, want %q",
					tt.key, tt.value, got, tt.want)
			}
		})
	}
}

func TestPreviewClock(t *testing.T) {
	clock := &previewClock{}

	clock.Seek(42.5)
	if got := clock.Position(); got != 42.5 {
		t.Errorf("paused clock should hold seek position, got %v", got)
	}

	clock.Play()
	if got := clock.Position(); got < 42.5 {
		t.Errorf("playing clock should advance from seek position, got %v", got)
	}
}
