package transcribe

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/mgpai22/katha/internal/audio"
	"github.com/mgpai22/katha/internal/subtitle"
)

// OpenAITranscriber implements Transcriber using the Whisper audio API.
type OpenAITranscriber struct {
	client  openai.Client
	model   string
	options Options
}

// whisper verbose_json wire shapes
type whisperVerboseResponse struct {
	Text     string       `json:"text"`
	Segments []rawSegment `json:"segments"`
	Language string       `json:"language"`
	Duration float64      `json:"duration"`
}

func NewOpenAITranscriber(ctx context.Context, apiKey string, opts Options) (*OpenAITranscriber, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client := openai.NewClient(option.WithAPIKey(apiKey))

	model := opts.Model
	if model == "" {
		model = "whisper-1"
	}

	return &OpenAITranscriber{
		client:  client,
		model:   model,
		options: opts,
	}, nil
}

// Transcribe sends one audio file through Whisper. When an English
// transcript is requested for non-English audio, the translation
// endpoint is used instead of plain transcription.
func (t *OpenAITranscriber) Transcribe(ctx context.Context, audioPath string) (*Result, error) {
	if _, err := os.Stat(audioPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("audio file not found: %s", audioPath)
	}

	file, err := os.Open(audioPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio file: %w", err)
	}
	defer file.Close()

	duration, _ := audio.Duration(audioPath)

	if t.wantsEnglishOutput() {
		return t.translateAudio(ctx, file, duration)
	}
	return t.transcribeAudio(ctx, file, duration)
}

func (t *OpenAITranscriber) wantsEnglishOutput() bool {
	lang := strings.ToLower(strings.TrimSpace(t.options.TranscriptLanguage))
	return lang == "english" || lang == "en"
}

func (t *OpenAITranscriber) transcribeAudio(
	ctx context.Context,
	file *os.File,
	duration time.Duration,
) (*Result, error) {
	params := openai.AudioTranscriptionNewParams{
		File:                   file,
		Model:                  openai.AudioModel(t.model),
		ResponseFormat:         openai.AudioResponseFormatVerboseJSON,
		TimestampGranularities: []string{"segment"},
	}
	if t.options.Language != "" {
		params.Language = openai.String(t.options.Language)
	}
	if t.options.Prompt != "" {
		params.Prompt = openai.String(t.options.Prompt)
	}

	resp, err := t.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("transcription failed: %w", err)
	}

	segments, err := parseVerboseJSON(resp.RawJSON(), duration)
	if err != nil {
		// timestamped segments unavailable: fall back to one segment
		// spanning the whole file
		segments = wholeFileSegment(resp.Text, duration)
	}

	return &Result{
		Segments: segments,
		Language: t.options.Language,
		Duration: duration,
	}, nil
}

func (t *OpenAITranscriber) translateAudio(
	ctx context.Context,
	file *os.File,
	duration time.Duration,
) (*Result, error) {
	params := openai.AudioTranslationNewParams{
		File:           file,
		Model:          openai.AudioModel(t.model),
		ResponseFormat: openai.AudioTranslationNewParamsResponseFormatVerboseJSON,
	}
	if t.options.Prompt != "" {
		params.Prompt = openai.String(t.options.Prompt)
	}

	resp, err := t.client.Audio.Translations.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("translation failed: %w", err)
	}

	segments, err := parseVerboseJSON(resp.RawJSON(), duration)
	if err != nil {
		segments = wholeFileSegment(resp.Text, duration)
	}

	return &Result{
		Segments: segments,
		Language: "en",
		Duration: duration,
	}, nil
}

// parseVerboseJSON validates a whisper verbose_json payload into
// subtitle segments.
func parseVerboseJSON(rawJSON string, fallbackDuration time.Duration) ([]subtitle.Segment, error) {
	if rawJSON == "" {
		return nil, fmt.Errorf("empty response")
	}

	var verbose whisperVerboseResponse
	if err := json.Unmarshal([]byte(rawJSON), &verbose); err != nil {
		return nil, fmt.Errorf("failed to parse verbose_json response: %w", err)
	}

	if len(verbose.Segments) == 0 {
		if strings.TrimSpace(verbose.Text) == "" {
			return nil, fmt.Errorf("no segments or text in response")
		}
		dur := fallbackDuration
		if verbose.Duration > 0 {
			dur = time.Duration(verbose.Duration * float64(time.Second))
		}
		return wholeFileSegment(verbose.Text, dur), nil
	}

	return ingestSegments(verbose.Segments, 0), nil
}

func wholeFileSegment(text string, duration time.Duration) []subtitle.Segment {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	return []subtitle.Segment{{
		StartTime:    subtitle.FormatTimestamp(0),
		EndTime:      subtitle.FormatTimestamp(duration.Seconds()),
		Text:         text,
		OriginalText: text,
	}}
}

// TranscribeChunks transcribes pre-split chunks in parallel, cancelling
// outstanding work on the first failure.
func (t *OpenAITranscriber) TranscribeChunks(
	ctx context.Context,
	chunks []audio.Chunk,
	concurrency int,
) (*Result, error) {
	if len(chunks) == 0 {
		return &Result{}, nil
	}
	if concurrency <= 0 {
		concurrency = 3
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	work := make(chan audio.Chunk)
	outcomes := make(chan chunkOutcome, len(chunks))

	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Go(func() {
			for {
				select {
				case <-ctx.Done():
					return
				case chunk, ok := <-work:
					if !ok {
						return
					}
					segments, err := t.transcribeChunk(ctx, chunk)
					if err != nil {
						cancel()
					}
					outcomes <- chunkOutcome{
						index:    chunk.Index,
						segments: segments,
						err:      err,
					}
				}
			}
		})
	}

	go func() {
		defer close(work)
		for _, chunk := range chunks {
			select {
			case <-ctx.Done():
				return
			case work <- chunk:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	collected := make([]chunkOutcome, 0, len(chunks))
	var firstErr error
	for outcome := range outcomes {
		if outcome.err != nil && firstErr == nil {
			firstErr = fmt.Errorf("chunk %d failed: %w", outcome.index, outcome.err)
		}
		if outcome.err == nil {
			collected = append(collected, outcome)
		}
	}
	if firstErr != nil {
		return nil, firstErr
	}

	sort.Slice(collected, func(i, j int) bool {
		return collected[i].index < collected[j].index
	})

	var merged []subtitle.Segment
	for _, outcome := range collected {
		merged = append(merged, outcome.segments...)
	}

	return &Result{
		Segments: merged,
		Language: t.options.Language,
		Duration: chunks[len(chunks)-1].End,
	}, nil
}

// transcribeChunk transcribes one chunk and shifts its timestamps by
// the chunk's offset into the original recording.
func (t *OpenAITranscriber) transcribeChunk(ctx context.Context, chunk audio.Chunk) ([]subtitle.Segment, error) {
	result, err := t.Transcribe(ctx, chunk.Path)
	if err != nil {
		return nil, err
	}

	offset := chunk.Start.Seconds()
	shifted := make([]subtitle.Segment, len(result.Segments))
	for i, seg := range result.Segments {
		shifted[i] = subtitle.Segment{
			StartTime:    subtitle.FormatTimestamp(subtitle.ParseTimestamp(seg.StartTime) + offset),
			EndTime:      subtitle.FormatTimestamp(subtitle.ParseTimestamp(seg.EndTime) + offset),
			Text:         seg.Text,
			OriginalText: seg.OriginalText,
		}
	}

	return shifted, nil
}
