package transcribe

import (
	"context"
	"fmt"
	"time"

	"github.com/mgpai22/katha/internal/audio"
	"github.com/mgpai22/katha/internal/subtitle"
)

// Result of a transcription run. Segments satisfy the subtitle contract:
// canonical text timestamps, Text == OriginalText (translation happens
// downstream, if at all).
type Result struct {
	Segments []subtitle.Segment
	Language string
	Duration time.Duration
}

// Transcriber converts an audio file into timed subtitle segments.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (*Result, error)
}

// ChunkTranscriber additionally transcribes pre-split audio chunks in
// parallel, shifting each chunk's timestamps by its offset.
type ChunkTranscriber interface {
	Transcriber
	TranscribeChunks(
		ctx context.Context,
		chunks []audio.Chunk,
		concurrency int,
	) (*Result, error)
}

type Provider string

const (
	ProviderGemini Provider = "gemini"
	ProviderOpenAI Provider = "openai"
)

type Options struct {
	Language           string // source language of the audio
	TranscriptLanguage string // output language ("native" = original)
	Model              string
	Prompt             string
}

// Factory creates a transcriber for the given provider.
func Factory(
	ctx context.Context,
	provider Provider,
	apiKey string,
	opts Options,
) (Transcriber, error) {
	switch provider {
	case ProviderGemini:
		return NewGeminiTranscriber(ctx, apiKey, opts)
	case ProviderOpenAI:
		return NewOpenAITranscriber(ctx, apiKey, opts)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}
