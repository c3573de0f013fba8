package translate

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/mgpai22/katha/internal/subtitle"
)

func TestFactoryReturnsGeminiTranslator(t *testing.T) {
	ctx := context.Background()
	opts := Options{TargetLanguage: "Japanese"}
	translator, err := Factory(ctx, ProviderGemini, "fake-key", opts)
	if err != nil {
		t.Fatalf("Factory(ProviderGemini) returned error: %v", err)
	}
	if _, ok := translator.(*GeminiTranslator); !ok {
		t.Errorf("expected *GeminiTranslator, got %T", translator)
	}
}

func TestFactoryReturnsOpenAITranslator(t *testing.T) {
	ctx := context.Background()
	opts := Options{TargetLanguage: "Spanish"}
	translator, err := Factory(ctx, ProviderOpenAI, "fake-key", opts)
	if err != nil {
		t.Fatalf("Factory(ProviderOpenAI) returned error: %v", err)
	}
	if _, ok := translator.(*OpenAITranslator); !ok {
		t.Errorf("expected *OpenAITranslator, got %T", translator)
	}
}

func TestFactoryReturnsAnthropicTranslator(t *testing.T) {
	ctx := context.Background()
	opts := Options{TargetLanguage: "Korean"}
	translator, err := Factory(ctx, ProviderAnthropic, "fake-key", opts)
	if err != nil {
		t.Fatalf("Factory(ProviderAnthropic) returned error: %v", err)
	}
	if _, ok := translator.(*AnthropicTranslator); !ok {
		t.Errorf("expected *AnthropicTranslator, got %T", translator)
	}
}

func TestFactoryRequiresTargetLanguage(t *testing.T) {
	ctx := context.Background()
	_, err := Factory(ctx, ProviderGemini, "fake-key", Options{})
	if err == nil {
		t.Error("expected error for missing target language")
	}
}

func TestFactoryRejectsUnknownProvider(t *testing.T) {
	ctx := context.Background()
	opts := Options{TargetLanguage: "French"}
	_, err := Factory(ctx, Provider("unknown"), "fake-key", opts)
	if err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestTranslatorsImplementConcurrentTranslator(t *testing.T) {
	ctx := context.Background()
	opts := Options{TargetLanguage: "German"}

	for _, provider := range []Provider{ProviderGemini, ProviderOpenAI, ProviderAnthropic} {
		t.Run(string(provider), func(t *testing.T) {
			translator, err := Factory(ctx, provider, "fake-key", opts)
			if err != nil {
				t.Fatalf("Factory error: %v", err)
			}
			if _, ok := translator.(ConcurrentTranslator); !ok {
				t.Errorf("%s translator should implement ConcurrentTranslator", provider)
			}
		})
	}
}

func TestBuildPrompt(t *testing.T) {
	opts := Options{
		InputLanguage:  "English",
		TargetLanguage: "Japanese",
	}

	items := []Item{
		{Index: 0, Text: "Hello world"},
		{Index: 1, Text: "Goodbye"},
	}

	prompt := BuildPrompt(opts, items)

	if !strings.Contains(prompt, "English subtitle texts") {
		t.Error("prompt should contain input language")
	}
	if !strings.Contains(prompt, "to Japanese") {
		t.Error("prompt should contain target language")
	}
	if !strings.Contains(prompt, "Hello world") {
		t.Error("prompt should contain input text")
	}
	if !strings.Contains(prompt, `"index": 0`) {
		t.Error("prompt should contain index")
	}
}

func TestBuildPromptWithoutInputLanguage(t *testing.T) {
	opts := Options{TargetLanguage: "Spanish"}
	items := []Item{{Index: 0, Text: "Hello"}}

	prompt := BuildPrompt(opts, items)

	if strings.Contains(prompt, "English") {
		t.Error("prompt should not contain input language when not specified")
	}
	if !strings.Contains(prompt, "to Spanish") {
		t.Error("prompt should contain target language")
	}
}

func TestTrackItems(t *testing.T) {
	track := &subtitle.Track{
		Segments: []subtitle.Segment{
			{StartTime: "00:00:01,000", EndTime: "00:00:02,000", Text: "one"},
			{StartTime: "00:00:03,000", EndTime: "00:00:04,000", Text: "two"},
		},
	}

	items := TrackItems(track)
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].Index != 0 || items[0].Text != "one" {
		t.Errorf("unexpected first item: %+v", items[0])
	}
	if items[1].Index != 1 || items[1].Text != "two" {
		t.Errorf("unexpected second item: %+v", items[1])
	}

	if got := TrackItems(nil); got != nil {
		t.Errorf("nil track should yield no items, got %+v", got)
	}
}

func TestApply(t *testing.T) {
	track := &subtitle.Track{
		Segments: []subtitle.Segment{
			{StartTime: "00:00:01,000", EndTime: "00:00:02,000", Text: "Hello", OriginalText: "Hello"},
			{StartTime: "00:00:03,000", EndTime: "00:00:04,000", Text: "Goodbye", OriginalText: "Goodbye"},
		},
		Language: "english",
	}

	results := []Result{
		{Index: 0, Text: "  Hola  "},
		{Index: 1, Text: "Adiós"},
		{Index: 5, Text: "out of range"},
		{Index: -1, Text: "negative"},
	}

	translated := Apply(track, results, "spanish")

	if translated.Language != "spanish" {
		t.Errorf("expected language spanish, got %s", translated.Language)
	}
	if translated.Segments[0].Text != "Hola" {
		t.Errorf("expected trimmed translation, got %q", translated.Segments[0].Text)
	}
	if translated.Segments[0].OriginalText != "Hello" {
		t.Errorf("OriginalText should be preserved, got %q", translated.Segments[0].OriginalText)
	}
	if translated.Segments[1].Text != "Adiós" {
		t.Errorf("expected Adiós, got %q", translated.Segments[1].Text)
	}

	// input track untouched
	if track.Segments[0].Text != "Hello" {
		t.Errorf("input track was mutated: %q", track.Segments[0].Text)
	}
}

func TestApplySkipsEmptyTranslations(t *testing.T) {
	track := &subtitle.Track{
		Segments: []subtitle.Segment{
			{Text: "keep me", OriginalText: "keep me"},
		},
	}

	translated := Apply(track, []Result{{Index: 0, Text: "   "}}, "french")
	if translated.Segments[0].Text != "keep me" {
		t.Errorf("blank translation should not overwrite text, got %q", translated.Segments[0].Text)
	}
}

func TestSplitBatches(t *testing.T) {
	items := make([]Item, 7)
	for i := range items {
		items[i] = Item{Index: i, Text: fmt.Sprintf("item %d", i)}
	}

	batches := splitBatches(items, 3)
	if len(batches) != 3 {
		t.Fatalf("expected 3 batches, got %d", len(batches))
	}
	if len(batches[0]) != 3 || len(batches[1]) != 3 || len(batches[2]) != 1 {
		t.Errorf("unexpected batch sizes: %d, %d, %d",
			len(batches[0]), len(batches[1]), len(batches[2]))
	}
}

func echoBatch(ctx context.Context, items []Item) ([]Result, error) {
	results := make([]Result, len(items))
	for i, item := range items {
		results[i] = Result{Index: item.Index, Text: "echo: " + item.Text}
	}
	return results, nil
}

func TestRunSequential(t *testing.T) {
	items := make([]Item, 5)
	for i := range items {
		items[i] = Item{Index: i, Text: fmt.Sprintf("item %d", i)}
	}

	results, err := runSequential(context.Background(), items, 2, echoBatch)
	if err != nil {
		t.Fatalf("runSequential error: %v", err)
	}
	if len(results) != 5 {
		t.Fatalf("expected 5 results, got %d", len(results))
	}
	for i, r := range results {
		if r.Index != i {
			t.Errorf("results not ordered: position %d has index %d", i, r.Index)
		}
	}
}

func TestRunSequentialStopsOnError(t *testing.T) {
	var calls atomic.Int32
	failing := func(ctx context.Context, items []Item) ([]Result, error) {
		calls.Add(1)
		return nil, fmt.Errorf("boom")
	}

	items := make([]Item, 6)
	for i := range items {
		items[i] = Item{Index: i}
	}

	_, err := runSequential(context.Background(), items, 2, failing)
	if err == nil {
		t.Fatal("expected error")
	}
	if calls.Load() != 1 {
		t.Errorf("expected 1 call before stopping, got %d", calls.Load())
	}
}

func TestRunConcurrent(t *testing.T) {
	items := make([]Item, 10)
	for i := range items {
		items[i] = Item{Index: i, Text: fmt.Sprintf("item %d", i)}
	}

	results, err := runConcurrent(context.Background(), items, 2, 3, echoBatch)
	if err != nil {
		t.Fatalf("runConcurrent error: %v", err)
	}
	if len(results) != 10 {
		t.Fatalf("expected 10 results, got %d", len(results))
	}
	for i, r := range results {
		if r.Index != i {
			t.Errorf("results not ordered: position %d has index %d", i, r.Index)
		}
		if r.Text != fmt.Sprintf("echo: item %d", i) {
			t.Errorf("unexpected text: %q", r.Text)
		}
	}
}

func TestRunConcurrentPropagatesError(t *testing.T) {
	failing := func(ctx context.Context, items []Item) ([]Result, error) {
		if items[0].Index == 2 {
			return nil, fmt.Errorf("boom")
		}
		return echoBatch(ctx, items)
	}

	items := make([]Item, 8)
	for i := range items {
		items[i] = Item{Index: i}
	}

	_, err := runConcurrent(context.Background(), items, 2, 2, failing)
	if err == nil {
		t.Fatal("expected error from failing batch")
	}
	if !strings.Contains(err.Error(), "boom") {
		t.Errorf("error should wrap the batch failure, got %v", err)
	}
}

func TestRunConcurrentEmptyInput(t *testing.T) {
	results, err := runConcurrent(context.Background(), nil, 2, 3, echoBatch)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
}
