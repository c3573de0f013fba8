package transcribe

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
	"sync"

	"google.golang.org/genai"

	"github.com/mgpai22/katha/internal/audio"
	"github.com/mgpai22/katha/internal/subtitle"
)

// GeminiTranscriber implements Transcriber using Google Gemini's
// multimodal file API.
type GeminiTranscriber struct {
	client  *genai.Client
	model   string
	options Options
}

func NewGeminiTranscriber(ctx context.Context, apiKey string, opts Options) (*GeminiTranscriber, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := opts.Model
	if model == "" {
		model = "gemini-2.5-flash"
	}

	return &GeminiTranscriber{
		client:  client,
		model:   model,
		options: opts,
	}, nil
}

// Transcribe uploads one audio file and asks the model for a timed
// transcript as a JSON array.
func (t *GeminiTranscriber) Transcribe(ctx context.Context, audioPath string) (*Result, error) {
	if _, err := os.Stat(audioPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("audio file not found: %s", audioPath)
	}

	uploaded, err := t.client.Files.UploadFromPath(ctx, audioPath, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to upload audio file: %w", err)
	}
	defer func() {
		_, _ = t.client.Files.Delete(ctx, uploaded.Name, nil)
	}()

	parts := []*genai.Part{
		genai.NewPartFromText(t.buildPrompt()),
		genai.NewPartFromURI(uploaded.URI, uploaded.MIMEType),
	}
	contents := []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}

	response, err := t.client.Models.GenerateContent(ctx, t.model, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("transcription failed: %w", err)
	}

	segments, err := t.parseResponse(response, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to parse transcription: %w", err)
	}

	duration, _ := audio.Duration(audioPath)

	return &Result{
		Segments: segments,
		Language: t.options.Language,
		Duration: duration,
	}, nil
}

type chunkOutcome struct {
	index    int
	segments []subtitle.Segment
	err      error
}

// TranscribeChunks runs up to concurrency chunk transcriptions in
// parallel and merges the results in chronological order. Each chunk's
// timestamps are shifted by its offset into the original recording.
func (t *GeminiTranscriber) TranscribeChunks(
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

	work := make(chan audio.Chunk, len(chunks))
	outcomes := make(chan chunkOutcome, len(chunks))

	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Go(func() {
			for chunk := range work {
				segments, err := t.transcribeChunk(ctx, chunk)
				outcomes <- chunkOutcome{
					index:    chunk.Index,
					segments: segments,
					err:      err,
				}
			}
		})
	}

	for _, chunk := range chunks {
		work <- chunk
	}
	close(work)

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	collected := make([]chunkOutcome, 0, len(chunks))
	for outcome := range outcomes {
		if outcome.err != nil {
			return nil, fmt.Errorf("chunk %d failed: %w", outcome.index, outcome.err)
		}
		collected = append(collected, outcome)
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

func (t *GeminiTranscriber) transcribeChunk(ctx context.Context, chunk audio.Chunk) ([]subtitle.Segment, error) {
	if _, err := os.Stat(chunk.Path); os.IsNotExist(err) {
		return nil, fmt.Errorf("chunk file not found: %s", chunk.Path)
	}

	uploaded, err := t.client.Files.UploadFromPath(ctx, chunk.Path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to upload chunk: %w", err)
	}
	defer func() {
		_, _ = t.client.Files.Delete(ctx, uploaded.Name, nil)
	}()

	parts := []*genai.Part{
		genai.NewPartFromText(t.buildPrompt()),
		genai.NewPartFromURI(uploaded.URI, uploaded.MIMEType),
	}
	contents := []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}

	response, err := t.client.Models.GenerateContent(ctx, t.model, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("transcription failed: %w", err)
	}

	return t.parseResponse(response, chunk.Start.Seconds())
}

func (t *GeminiTranscriber) buildPrompt() string {
	var sb strings.Builder

	sb.WriteString("Generate a detailed transcript of this audio. ")
	sb.WriteString("For each sentence or phrase, provide the start timestamp, end timestamp, and the exact text spoken. ")
	sb.WriteString("Format your response as a JSON array with objects containing 'start', 'end', and 'text' fields, ")
	sb.WriteString("where 'start' and 'end' are timestamps in seconds (as numbers). ")

	if t.options.Language != "" {
		sb.WriteString(fmt.Sprintf("The audio is in %s. ", t.options.Language))
	}
	if t.options.TranscriptLanguage != "" && t.options.TranscriptLanguage != "native" {
		sb.WriteString(fmt.Sprintf("Output the transcript in %s. ", t.options.TranscriptLanguage))
	}
	if t.options.Prompt != "" {
		sb.WriteString(t.options.Prompt)
		sb.WriteString(" ")
	}

	sb.WriteString("Return ONLY the JSON array, no other text or markdown formatting.")

	return sb.String()
}

// parseResponse extracts the JSON transcript and validates it into
// subtitle segments shifted by the given offset.
func (t *GeminiTranscriber) parseResponse(response *genai.GenerateContentResponse, offset float64) ([]subtitle.Segment, error) {
	if response == nil || len(response.Candidates) == 0 {
		return nil, fmt.Errorf("empty response from Gemini")
	}

	var text string
	for _, candidate := range response.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part.Text != "" {
				text += part.Text
			}
		}
	}

	if text == "" {
		return nil, fmt.Errorf("no text in Gemini response")
	}

	text = cleanJSONResponse(text)

	var raw []rawSegment
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w (response: %s)",
			err, truncateString(text, 200))
	}

	return ingestSegments(raw, offset), nil
}

var jsonFenceRegex = regexp.MustCompile("```(?:json)?\\s*")

// cleanJSONResponse strips markdown code fences the model sometimes
// wraps around its output.
func cleanJSONResponse(s string) string {
	s = strings.TrimSpace(s)
	s = jsonFenceRegex.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
