package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mgpai22/katha/internal/settings"
	"github.com/mgpai22/katha/internal/subtitle"
	"github.com/mgpai22/katha/internal/translate"
	"github.com/spf13/cobra"
)

var translateCmd = &cobra.Command{
	Use:   "translate [subtitle_file]",
	Short: "Translate an SRT file to another language using AI",
	Long: `Translate an existing SRT subtitle file to another language using AI.

The --bilingual flag keeps the original text below the translation on
the next line.

Malformed blocks in the input are skipped; a warning reports how many.

Examples:
  katha translate video.srt --target-language japanese
  katha translate video.srt -t ja --bilingual
  katha translate video.srt -l english -t spanish -o translated.srt`,
	Args: cobra.ExactArgs(1),
	RunE: runTranslate,
}

func init() {
	rootCmd.AddCommand(translateCmd)

	translateCmd.Flags().
		StringP("target-language", "t", "", "Target language for translation (required)")
	translateCmd.Flags().
		Bool("bilingual", false, "Keep the original text under the translation")
	translateCmd.Flags().
		StringP("api-key", "k", "", "API key (or env var, or katha config set)")
	translateCmd.Flags().
		String("model", "", "Model to use for translation (provider default when empty)")
	translateCmd.Flags().
		Bool("model-override", false, "Allow any custom model, bypassing provider model validation")
	translateCmd.Flags().
		String("provider", "gemini", "Translation provider (gemini, openai, anthropic)")
	translateCmd.Flags().
		Int("concurrency", 3, "Number of parallel translation workers")
	translateCmd.Flags().
		Int("batch-size", 50, "Number of subtitle entries per API request")

	_ = translateCmd.MarkFlagRequired("target-language")
}

func runTranslate(cmd *cobra.Command, args []string) error {
	subtitlePath := args[0]
	ctx := context.Background()

	targetLang, _ := cmd.Flags().GetString("target-language")
	bilingual, _ := cmd.Flags().GetBool("bilingual")
	apiKeyFlag, _ := cmd.Flags().GetString("api-key")
	model, _ := cmd.Flags().GetString("model")
	modelOverride, _ := cmd.Flags().GetBool("model-override")
	providerStr, _ := cmd.Flags().GetString("provider")
	concurrency, _ := cmd.Flags().GetInt("concurrency")
	batchSize, _ := cmd.Flags().GetInt("batch-size")
	outputPath, _ := cmd.Flags().GetString("output")
	inputLang, _ := cmd.Flags().GetString("language")

	if _, err := os.Stat(subtitlePath); os.IsNotExist(err) {
		return fmt.Errorf("subtitle file not found: %s", subtitlePath)
	}

	if ext := strings.ToLower(filepath.Ext(subtitlePath)); ext != ".srt" {
		return fmt.Errorf("unsupported subtitle format %q: only .srt is supported", ext)
	}

	if targetLang == "" {
		return fmt.Errorf("target language is required")
	}

	if inputLang != "" &&
		strings.EqualFold(
			strings.TrimSpace(inputLang),
			strings.TrimSpace(targetLang),
		) {
		return fmt.Errorf(
			"input language %q and target language %q cannot be the same",
			inputLang,
			targetLang,
		)
	}

	provider := translate.Provider(providerStr)

	var apiKey, envVar string
	switch provider {
	case translate.ProviderGemini:
		envVar = "GEMINI_API_KEY"
		apiKey = resolveAPIKey(apiKeyFlag, envVar, settings.KeyGeminiAPIKey)
	case translate.ProviderOpenAI:
		envVar = "OPENAI_API_KEY"
		apiKey = resolveAPIKey(apiKeyFlag, envVar, settings.KeyOpenAIAPIKey)
	case translate.ProviderAnthropic:
		envVar = "ANTHROPIC_API_KEY"
		apiKey = resolveAPIKey(apiKeyFlag, envVar, settings.KeyAnthropicAPIKey)
	default:
		return fmt.Errorf(
			"unsupported translation provider %q: use gemini, openai, or anthropic",
			providerStr,
		)
	}
	if apiKey == "" {
		return fmt.Errorf(
			"API key is required: use --api-key, set %s, or run 'katha config set'",
			envVar,
		)
	}

	if model != "" && !modelOverride {
		switch provider {
		case translate.ProviderGemini:
			if !isValidGeminiModel(model) {
				return fmt.Errorf(
					"unsupported Gemini model %q (use --model-override to bypass)",
					model,
				)
			}
		case translate.ProviderOpenAI:
			if !isValidOpenAIModel(model) {
				return fmt.Errorf(
					"unsupported OpenAI model %q (use --model-override to bypass)",
					model,
				)
			}
		}
	}

	if concurrency <= 0 {
		return fmt.Errorf("concurrency must be positive, got %d", concurrency)
	}
	if batchSize <= 0 {
		return fmt.Errorf("batch-size must be positive, got %d", batchSize)
	}

	if outputPath == "" {
		baseName := strings.TrimSuffix(subtitlePath, filepath.Ext(subtitlePath))
		if bilingual {
			outputPath = fmt.Sprintf("%s.%s.bilingual.srt", baseName, targetLang)
		} else {
			outputPath = fmt.Sprintf("%s.%s.srt", baseName, targetLang)
		}
	}

	logger.Infow("Starting subtitle translation",
		"input", subtitlePath,
		"output", outputPath,
		"target_language", targetLang,
		"input_language", inputLang,
		"bilingual", bilingual,
		"model", model,
	)

	data, err := os.ReadFile(subtitlePath)
	if err != nil {
		return fmt.Errorf("failed to read subtitle file: %w", err)
	}

	track, skipped := subtitle.Parse(string(data))
	if track.IsEmpty() {
		return fmt.Errorf("subtitle file contains no valid entries: %w", subtitle.ErrNoSegments)
	}
	if skipped > 0 {
		logger.Warnw("Skipped malformed subtitle blocks",
			"count", skipped,
		)
	}

	logger.Infow("Parsed subtitle file",
		"entries", len(track.Segments),
	)

	opts := translate.Options{
		InputLanguage:  inputLang,
		TargetLanguage: targetLang,
		Model:          model,
		BatchSize:      batchSize,
	}

	translator, err := translate.Factory(ctx, provider, apiKey, opts)
	if err != nil {
		return fmt.Errorf("failed to create translator: %w", err)
	}

	items := translate.TrackItems(track)

	logger.Infow("Translating subtitles",
		"items", len(items),
		"concurrency", concurrency,
	)

	var results []translate.Result
	if concurrentTranslator, ok := translator.(translate.ConcurrentTranslator); ok {
		results, err = concurrentTranslator.TranslateConcurrently(ctx, items, concurrency)
	} else {
		results, err = translator.Translate(ctx, items)
	}
	if err != nil {
		return fmt.Errorf("translation failed: %w", err)
	}

	logger.Infow("Translation complete",
		"results", len(results),
	)

	translated := translate.Apply(track, results, targetLang)

	if bilingual {
		segments := translated.Segments
		for i := range segments {
			if segments[i].OriginalText != "" && segments[i].OriginalText != segments[i].Text {
				segments[i].Text = segments[i].Text + "\n" + segments[i].OriginalText
			}
		}
	}

	if err := subtitle.Write(translated, outputPath); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	absOutput, _ := filepath.Abs(outputPath)
	fmt.Printf("Subtitles translated successfully: %s\n", absOutput)
	fmt.Printf("  Entries: %d\n", len(translated.Segments))
	fmt.Printf("  Target language: %s\n", targetLang)
	if bilingual {
		fmt.Printf("  Mode: bilingual\n")
	}

	return nil
}
