package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mgpai22/katha/internal/audio"
	"github.com/mgpai22/katha/internal/settings"
	"github.com/mgpai22/katha/internal/subtitle"
	"github.com/mgpai22/katha/internal/transcribe"
	"github.com/mgpai22/katha/internal/video"
	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate [media_file]",
	Short: "Generate SRT subtitles for an audio or video file",
	Long: `Generate subtitles for the specified audio or video file using AI transcription.

The command accepts both audio files (mp3, wav, aac, etc.) and video files (mp4, mkv, etc.).
For video files, audio is automatically extracted before transcription.

The audio is split into chunks (default 1 minute) and transcribed in parallel.

Examples:
  katha generate video.mp4
  katha generate audio.mp3 --provider openai
  katha generate video.mp4 --api-key YOUR_KEY --chunk-duration 2
  katha generate podcast.mp3 -d 1 --concurrency 5`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().
		String("provider", "gemini", "Transcription provider (gemini, openai)")
	generateCmd.Flags().
		StringP("api-key", "k", "", "API key (or set GEMINI_API_KEY/OPENAI_API_KEY, or katha config set)")
	generateCmd.Flags().
		IntP("chunk-duration", "d", 1, "Chunk duration in minutes for splitting audio")
	generateCmd.Flags().
		Int("concurrency", 3, "Number of parallel transcription workers")
	generateCmd.Flags().
		String("model", "", "Model to use for transcription (provider default when empty)")
	generateCmd.Flags().
		String("transcript-language", "native", "Output language for transcript (e.g., 'english', or 'native' for original language)")
	generateCmd.Flags().
		String("prompt", "", "Extra instructions passed to the transcription model")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	mediaPath := args[0]
	ctx := context.Background()

	if _, err := os.Stat(mediaPath); os.IsNotExist(err) {
		return fmt.Errorf("file not found: %s", mediaPath)
	}
	if !audio.IsMediaFile(mediaPath) {
		return fmt.Errorf("unsupported file type: %s (expected audio or video file)", filepath.Ext(mediaPath))
	}

	providerStr, _ := cmd.Flags().GetString("provider")
	apiKeyFlag, _ := cmd.Flags().GetString("api-key")
	chunkDuration, _ := cmd.Flags().GetInt("chunk-duration")
	concurrency, _ := cmd.Flags().GetInt("concurrency")
	model, _ := cmd.Flags().GetString("model")
	prompt, _ := cmd.Flags().GetString("prompt")
	outputPath, _ := cmd.Flags().GetString("output")
	language, _ := cmd.Flags().GetString("language")
	transcriptLang, _ := cmd.Flags().GetString("transcript-language")

	provider := transcribe.Provider(providerStr)

	var apiKey string
	switch provider {
	case transcribe.ProviderGemini:
		apiKey = resolveAPIKey(apiKeyFlag, "GEMINI_API_KEY", settings.KeyGeminiAPIKey)
	case transcribe.ProviderOpenAI:
		apiKey = resolveAPIKey(apiKeyFlag, "OPENAI_API_KEY", settings.KeyOpenAIAPIKey)
		if !isValidOpenAITranscriptLanguage(transcriptLang) {
			return fmt.Errorf(
				"OpenAI transcription only supports 'native' or 'english' output, got %q",
				transcriptLang,
			)
		}
	default:
		return fmt.Errorf("unsupported transcription provider %q: use gemini or openai", providerStr)
	}
	if apiKey == "" {
		return fmt.Errorf(
			"API key is required: use --api-key, set the provider's environment variable, or run 'katha config set'",
		)
	}

	if chunkDuration <= 0 {
		return fmt.Errorf("chunk-duration must be positive, got %d", chunkDuration)
	}

	if outputPath == "" {
		baseName := strings.TrimSuffix(mediaPath, filepath.Ext(mediaPath))
		outputPath = baseName + ".srt"
	}

	logger.Infow("Starting subtitle generation",
		"input", mediaPath,
		"output", outputPath,
		"provider", providerStr,
		"chunk_duration", chunkDuration,
		"concurrency", concurrency,
	)

	tempDir, err := os.MkdirTemp("", "katha-*")
	if err != nil {
		return fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer os.RemoveAll(tempDir)

	audioPath := filepath.Join(tempDir, "audio.mp3")
	compressionOpts := audio.DefaultCompressionOptions()

	if audio.IsVideoFile(mediaPath) {
		logger.Infow("Extracting audio from video")

		processor := video.NewProcessor(tempDir)
		extractOpts := video.ExtractAudioOptions{
			Format:     compressionOpts.Format,
			SampleRate: compressionOpts.SampleRate,
			Channels:   compressionOpts.Channels,
			Bitrate:    compressionOpts.Bitrate,
		}

		if err := processor.ExtractAudio(ctx, mediaPath, audioPath, extractOpts); err != nil {
			return fmt.Errorf("failed to extract audio: %w", err)
		}
	} else {
		logger.Infow("Compressing audio for transcription")

		if err := audio.Compress(ctx, mediaPath, audioPath, compressionOpts); err != nil {
			return fmt.Errorf("failed to compress audio: %w", err)
		}
	}

	duration, err := audio.Duration(audioPath)
	if err != nil {
		return fmt.Errorf("failed to get audio duration: %w", err)
	}

	logger.Infow("Audio prepared",
		"duration", duration.String(),
	)

	chunkDir := filepath.Join(tempDir, "chunks")
	chunkDur := time.Duration(chunkDuration) * time.Minute

	chunks, err := audio.Split(ctx, audioPath, chunkDur, chunkDir, concurrency)
	if err != nil {
		return fmt.Errorf("failed to split audio: %w", err)
	}

	logger.Infow("Created audio chunks",
		"count", len(chunks),
	)

	transcribeOpts := transcribe.Options{
		Language:           language,
		TranscriptLanguage: transcriptLang,
		Model:              model,
		Prompt:             prompt,
	}

	transcriber, err := transcribe.Factory(ctx, provider, apiKey, transcribeOpts)
	if err != nil {
		return fmt.Errorf("failed to create transcriber: %w", err)
	}

	chunkTranscriber, ok := transcriber.(transcribe.ChunkTranscriber)
	if !ok {
		return fmt.Errorf("provider %s does not support chunked transcription", providerStr)
	}

	logger.Infow("Transcribing audio",
		"concurrency", concurrency,
	)

	result, err := chunkTranscriber.TranscribeChunks(ctx, chunks, concurrency)
	if err != nil {
		return fmt.Errorf("transcription failed: %w", err)
	}

	logger.Infow("Transcription complete",
		"segments", len(result.Segments),
	)

	shaper := subtitle.NewShaper()
	segments := shaper.Shape(result.Segments)
	if len(segments) == 0 {
		return fmt.Errorf("transcription produced no usable segments")
	}

	track := subtitle.NewTrack(segments)
	track.Language = language

	if err := subtitle.Write(track, outputPath); err != nil {
		return fmt.Errorf("failed to write subtitles: %w", err)
	}

	absOutput, _ := filepath.Abs(outputPath)
	fmt.Printf("Subtitles generated successfully: %s\n", absOutput)
	fmt.Printf("  Entries: %d\n", len(track.Segments))
	fmt.Printf("  Duration: %s\n", duration.String())

	return nil
}
