package cli

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/mgpai22/katha/internal/playback"
	"github.com/mgpai22/katha/internal/session"
	"github.com/mgpai22/katha/internal/subtitle"
	"github.com/spf13/cobra"
)

var previewCmd = &cobra.Command{
	Use:   "preview [subtitle_file]",
	Short: "Play a subtitle track against a clock, without media",
	Long: `Preview an SRT file by playing its cues against a wall clock,
printing each cue to the terminal as it becomes active.

With --at, the command instead prints the cue active at the given
timestamp and exits.

Examples:
  katha preview video.srt
  katha preview video.srt --at 00:01:02,500
  katha preview video.srt --segment 12`,
	Args: cobra.ExactArgs(1),
	RunE: runPreview,
}

func init() {
	rootCmd.AddCommand(previewCmd)

	previewCmd.Flags().
		String("at", "", "Print the cue active at this timestamp (HH:MM:SS,mmm) and exit")
	previewCmd.Flags().
		Int("segment", 0, "Start playback at this segment (1-based)")
	previewCmd.Flags().
		Int("interval", 100, "Clock tick interval in milliseconds")
}

// previewClock is a wall-clock playback source. Position advances in
// real time once Play is called; Seek rebases it.
type previewClock struct {
	mu      sync.Mutex
	base    time.Time
	offset  float64
	playing bool
}

func (c *previewClock) Seek(seconds float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.offset = seconds
	c.base = time.Now()
}

func (c *previewClock) Play() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.playing {
		c.playing = true
		c.base = time.Now()
	}
}

func (c *previewClock) Position() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.playing {
		return c.offset
	}
	return c.offset + time.Since(c.base).Seconds()
}

// terminalRenderer prints each cue change with the playback position.
type terminalRenderer struct {
	clock *previewClock
}

func (r *terminalRenderer) Display(text string) {
	position := subtitle.FormatTimestamp(r.clock.Position())
	if text == "" {
		fmt.Printf("[%s]\n", position)
		return
	}
	fmt.Printf("[%s] %s\n", position, text)
}

func runPreview(cmd *cobra.Command, args []string) error {
	subtitlePath := args[0]

	at, _ := cmd.Flags().GetString("at")
	segment, _ := cmd.Flags().GetInt("segment")
	interval, _ := cmd.Flags().GetInt("interval")

	data, err := os.ReadFile(subtitlePath)
	if err != nil {
		return fmt.Errorf("failed to read subtitle file: %w", err)
	}

	clock := &previewClock{}
	renderer := &terminalRenderer{clock: clock}
	sess := session.New(clock, renderer)

	skipped, err := sess.LoadSRT(string(data))
	if err != nil {
		return fmt.Errorf("failed to load subtitles: %w", err)
	}
	if skipped > 0 {
		logger.Warnw("Skipped malformed subtitle blocks",
			"count", skipped,
		)
	}

	track := sess.Track()
	logger.Infow("Loaded subtitle track",
		"entries", len(track.Segments),
	)

	if at != "" {
		text := sess.ActiveText(subtitle.ParseTimestamp(at))
		if text == "" {
			fmt.Println("(no cue active)")
			return nil
		}
		fmt.Println(text)
		return nil
	}

	if interval <= 0 {
		interval = 100
	}

	if segment > 0 {
		if err := sess.SeekToSegment(segment - 1); err != nil {
			return err
		}
		logger.Infow("Starting at segment",
			"index", segment,
			"range", playback.Describe(track.Segments[segment-1]),
		)
	} else {
		clock.Play()
	}

	last := track.Segments[len(track.Segments)-1]
	endAt := subtitle.ParseTimestamp(last.EndTime) + 1

	ticker := time.NewTicker(time.Duration(interval) * time.Millisecond)
	defer ticker.Stop()

	for range ticker.C {
		position := clock.Position()
		sess.HandleTimeUpdate(position)
		if position >= endAt {
			break
		}
	}

	fmt.Println("Preview finished.")
	return nil
}
