package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/mgpai22/katha/internal/subtitle"
)

const DefaultBatchSize = 50

// Item is one subtitle text to translate, keyed by its position in the
// track so results can be merged back regardless of response order.
type Item struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

// Result is one translated text.
type Result struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

// Translator translates a set of subtitle texts.
type Translator interface {
	Translate(ctx context.Context, items []Item) ([]Result, error)
}

// ConcurrentTranslator additionally processes batches in parallel.
type ConcurrentTranslator interface {
	Translator
	TranslateConcurrently(ctx context.Context, items []Item, concurrency int) ([]Result, error)
}

type Provider string

const (
	ProviderGemini    Provider = "gemini"
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
)

type Options struct {
	InputLanguage  string
	TargetLanguage string
	Model          string
	Prompt         string
	BatchSize      int // items per API request (default 50)
}

func (o Options) batchSize() int {
	if o.BatchSize > 0 {
		return o.BatchSize
	}
	return DefaultBatchSize
}

// Factory creates a Translator for the given provider.
func Factory(
	ctx context.Context,
	provider Provider,
	apiKey string,
	opts Options,
) (Translator, error) {
	if opts.TargetLanguage == "" {
		return nil, fmt.Errorf("target language is required")
	}

	switch provider {
	case ProviderGemini:
		return NewGeminiTranslator(ctx, apiKey, opts)
	case ProviderOpenAI:
		return NewOpenAITranslator(ctx, apiKey, opts)
	case ProviderAnthropic:
		return NewAnthropicTranslator(ctx, apiKey, opts)
	default:
		return nil, fmt.Errorf("unsupported translation provider: %s", provider)
	}
}

// TrackItems extracts translation items from a track, one per segment.
func TrackItems(track *subtitle.Track) []Item {
	if track.IsEmpty() {
		return nil
	}
	items := make([]Item, len(track.Segments))
	for i, seg := range track.Segments {
		items[i] = Item{Index: i, Text: seg.Text}
	}
	return items
}

// Apply builds a new track with translated display text while keeping
// the untranslated transcription in OriginalText. The input track is
// never mutated; results with out-of-range indices are ignored.
func Apply(track *subtitle.Track, results []Result, targetLanguage string) *subtitle.Track {
	if track.IsEmpty() {
		return track
	}

	segments := make([]subtitle.Segment, len(track.Segments))
	copy(segments, track.Segments)

	for _, result := range results {
		if result.Index < 0 || result.Index >= len(segments) {
			continue
		}
		text := strings.TrimSpace(result.Text)
		if text == "" {
			continue
		}
		segments[result.Index].Text = text
	}

	return &subtitle.Track{Segments: segments, Language: targetLanguage}
}

// BuildPrompt renders the translation request sent to every provider:
// instructions plus the items as indexed JSON.
func BuildPrompt(opts Options, items []Item) string {
	var sb strings.Builder

	if opts.InputLanguage != "" {
		fmt.Fprintf(&sb, "Translate the following %s subtitle texts to %s.\n\n",
			opts.InputLanguage, opts.TargetLanguage)
	} else {
		fmt.Fprintf(&sb, "Translate the following subtitle texts to %s.\n\n",
			opts.TargetLanguage)
	}

	sb.WriteString("IMPORTANT INSTRUCTIONS:\n")
	sb.WriteString("1. Translate ONLY the text content, preserving the meaning.\n")
	sb.WriteString("2. Preserve line breaks in the same positions.\n")
	sb.WriteString("3. Return ONLY a JSON array with the same structure.\n")
	sb.WriteString("4. Each object must have 'index' and 'text' fields.\n")
	sb.WriteString("5. The 'index' values must match the input indices exactly.\n")
	sb.WriteString("6. Do not add any explanation or markdown formatting.\n\n")

	if opts.Prompt != "" {
		fmt.Fprintf(&sb, "Additional instructions: %s\n\n", opts.Prompt)
	}

	sb.WriteString("Input JSON:\n")
	inputJSON, _ := json.MarshalIndent(items, "", "  ")
	sb.Write(inputJSON)
	sb.WriteString("\n\nOutput the translated JSON array only:")

	return sb.String()
}

// splitBatches divides items into request-sized batches.
func splitBatches(items []Item, batchSize int) [][]Item {
	var batches [][]Item
	for i := 0; i < len(items); i += batchSize {
		end := i + batchSize
		if end > len(items) {
			end = len(items)
		}
		batches = append(batches, items[i:end])
	}
	return batches
}

// batchFunc issues one translation request for one batch.
type batchFunc func(ctx context.Context, items []Item) ([]Result, error)

// runSequential translates batches one after another.
func runSequential(ctx context.Context, items []Item, batchSize int, fn batchFunc) ([]Result, error) {
	if len(items) == 0 {
		return []Result{}, nil
	}
	if len(items) <= batchSize {
		return fn(ctx, items)
	}

	var all []Result
	for i, batch := range splitBatches(items, batchSize) {
		results, err := fn(ctx, batch)
		if err != nil {
			return nil, fmt.Errorf("batch %d failed: %w", i, err)
		}
		all = append(all, results...)
	}

	sortResults(all)
	return all, nil
}

// runConcurrent translates batches with up to concurrency workers
// pulling from a shared queue, cancelling the rest on first failure.
func runConcurrent(ctx context.Context, items []Item, batchSize, concurrency int, fn batchFunc) ([]Result, error) {
	if len(items) == 0 {
		return []Result{}, nil
	}
	if concurrency <= 0 {
		concurrency = 3
	}

	batches := splitBatches(items, batchSize)
	if len(batches) == 1 {
		return fn(ctx, batches[0])
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type batchOutcome struct {
		index   int
		results []Result
		err     error
	}

	work := make(chan int)
	outcomes := make(chan batchOutcome, len(batches))

	var wg sync.WaitGroup
	for i := 0; i < concurrency && i < len(batches); i++ {
		wg.Go(func() {
			for {
				select {
				case <-ctx.Done():
					return
				case batchIdx, ok := <-work:
					if !ok {
						return
					}
					results, err := fn(ctx, batches[batchIdx])
					if err != nil {
						cancel()
					}
					outcomes <- batchOutcome{index: batchIdx, results: results, err: err}
				}
			}
		})
	}

	go func() {
		defer close(work)
		for i := range batches {
			select {
			case <-ctx.Done():
				return
			case work <- i:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	var all []Result
	var firstErr error
	for outcome := range outcomes {
		if outcome.err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("batch %d failed: %w", outcome.index, outcome.err)
			}
			continue
		}
		all = append(all, outcome.results...)
	}

	if firstErr != nil {
		return nil, firstErr
	}

	sortResults(all)
	return all, nil
}

func sortResults(results []Result) {
	sort.Slice(results, func(i, j int) bool {
		return results[i].Index < results[j].Index
	})
}
