package cli

import (
	"os"

	"github.com/mgpai22/katha/internal/logging"
	"github.com/mgpai22/katha/internal/settings"
	"github.com/spf13/cobra"
)

var (
	verbose bool
	logger  *logging.Logger
)

var rootCmd = &cobra.Command{
	Use:   "katha",
	Short: "AI-powered subtitle generator, translator, and player",
	Long: `Katha generates, translates, and previews SRT subtitles for
audio and video files.

Transcription and translation run through AI providers (Gemini, OpenAI,
Anthropic); the preview command plays a subtitle track against a clock
without any media.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger = logging.NewLogger(verbose)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().
		BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Output file path")
	rootCmd.PersistentFlags().
		StringP("language", "l", "", "Language code (e.g., en, es, fr)")
}

// resolveAPIKey checks the flag value, then the environment, then the
// settings store.
func resolveAPIKey(flagValue, envVar, settingsKey string) string {
	if flagValue != "" {
		return flagValue
	}
	if key := os.Getenv(envVar); key != "" {
		return key
	}

	path, err := settings.DefaultPath()
	if err != nil {
		return ""
	}
	store, err := settings.Open(path)
	if err != nil {
		return ""
	}
	if key, ok := store.Get(settingsKey); ok {
		return key
	}
	return ""
}
