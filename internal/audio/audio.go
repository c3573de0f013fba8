package audio

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	ffmpegbin "github.com/mgpai22/katha/internal/ffmpeg"
)

// Chunk is one piece of a split audio file. Start and End are offsets
// into the original recording; transcription results for a chunk are
// shifted by Start before entering the subtitle track.
type Chunk struct {
	Path  string
	Index int
	Start time.Duration
	End   time.Duration
}

// CompressionOptions control re-encoding before upload to a
// transcription provider.
type CompressionOptions struct {
	Format     string // mp3, aac
	SampleRate int    // Hz
	Channels   int    // 1=mono, 2=stereo
	Bitrate    string // e.g. "64k"
}

// DefaultCompressionOptions are tuned for speech transcription: mono,
// 16kHz, low bitrate mp3 keeps uploads small without hurting accuracy.
func DefaultCompressionOptions() CompressionOptions {
	return CompressionOptions{
		Format:     "mp3",
		SampleRate: 16000,
		Channels:   1,
		Bitrate:    "64k",
	}
}

type probeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// Duration probes a media file's length via ffprobe.
func Duration(path string) (time.Duration, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return 0, fmt.Errorf("file not found: %s", path)
	}

	ffprobePath, err := ffmpegbin.FFprobePath()
	if err != nil {
		return 0, err
	}

	cmd := exec.Command(ffprobePath,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		path,
	)

	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return 0, fmt.Errorf("ffprobe failed: %w", err)
	}

	var probe probeOutput
	if err := json.Unmarshal(out.Bytes(), &probe); err != nil {
		return 0, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	seconds, err := strconv.ParseFloat(probe.Format.Duration, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse duration %q: %w",
			probe.Format.Duration, err)
	}

	return time.Duration(seconds * float64(time.Second)), nil
}

// Compress re-encodes an audio file for transcription upload.
func Compress(ctx context.Context, inputPath, outputPath string, opts CompressionOptions) error {
	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		return fmt.Errorf("input file not found: %s", inputPath)
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	kwargs := ffmpeg.KwArgs{
		"vn": "",
		"ar": opts.SampleRate,
		"ac": opts.Channels,
		"y":  "",
	}

	switch opts.Format {
	case "aac":
		kwargs["acodec"] = "aac"
	default:
		kwargs["acodec"] = "libmp3lame"
	}
	if opts.Bitrate != "" {
		kwargs["b:a"] = opts.Bitrate
	}

	ffmpegPath, err := ffmpegbin.FFmpegPath()
	if err != nil {
		return err
	}

	if err := ffmpeg.Input(inputPath).
		Output(outputPath, kwargs).
		OverWriteOutput().
		SetFfmpegPath(ffmpegPath).
		Run(); err != nil {
		return fmt.Errorf("compression failed: %w", err)
	}

	return nil
}

// Split cuts an audio file into fixed-length chunks with up to
// concurrency ffmpeg invocations in flight. Chunks are copied without
// re-encoding and returned in chronological order.
func Split(
	ctx context.Context,
	audioPath string,
	chunkDuration time.Duration,
	outputDir string,
	concurrency int,
) ([]Chunk, error) {
	if chunkDuration <= 0 {
		return nil, fmt.Errorf("chunk duration must be positive, got %v", chunkDuration)
	}
	if concurrency <= 0 {
		concurrency = 10
	}

	total, err := Duration(audioPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get audio duration: %w", err)
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	ffmpegPath, err := ffmpegbin.FFmpegPath()
	if err != nil {
		return nil, err
	}

	baseName := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	ext := filepath.Ext(audioPath)

	var pending []Chunk
	for i := 0; ; i++ {
		start := time.Duration(i) * chunkDuration
		if start >= total {
			break
		}
		end := start + chunkDuration
		if end > total {
			end = total
		}
		pending = append(pending, Chunk{
			Path:  filepath.Join(outputDir, fmt.Sprintf("%s_chunk_%03d%s", baseName, i, ext)),
			Index: i,
			Start: start,
			End:   end,
		})
	}

	jobs := make(chan Chunk)
	errChan := make(chan error, len(pending))

	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for chunk := range jobs {
				if ctx.Err() != nil {
					return
				}
				errChan <- cutChunk(ffmpegPath, audioPath, chunk)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, chunk := range pending {
			select {
			case <-ctx.Done():
				return
			case jobs <- chunk:
			}
		}
	}()

	wg.Wait()
	close(errChan)

	for err := range errChan {
		if err != nil {
			return nil, err
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sort.Slice(pending, func(i, j int) bool {
		return pending[i].Index < pending[j].Index
	})

	return pending, nil
}

func cutChunk(ffmpegPath, audioPath string, chunk Chunk) error {
	kwargs := ffmpeg.KwArgs{
		"ss": chunk.Start.Seconds(),
		"t":  (chunk.End - chunk.Start).Seconds(),
		"y":  "",
		"c":  "copy",
	}

	if err := ffmpeg.Input(audioPath).
		Output(chunk.Path, kwargs).
		OverWriteOutput().
		SetFfmpegPath(ffmpegPath).
		Run(); err != nil {
		return fmt.Errorf("failed to create chunk %d: %w", chunk.Index, err)
	}
	return nil
}

// Cleanup removes chunk files, ignoring ones already gone.
func Cleanup(chunks []Chunk) error {
	var lastErr error
	for _, chunk := range chunks {
		if err := os.Remove(chunk.Path); err != nil && !os.IsNotExist(err) {
			lastErr = err
		}
	}
	return lastErr
}

var videoExtensions = map[string]bool{
	".mp4": true, ".mkv": true, ".avi": true, ".mov": true,
	".wmv": true, ".flv": true, ".webm": true, ".m4v": true,
	".mpeg": true, ".mpg": true, ".3gp": true,
}

var audioExtensions = map[string]bool{
	".mp3": true, ".wav": true, ".aac": true, ".flac": true,
	".ogg": true, ".m4a": true, ".wma": true, ".aiff": true,
}

func IsVideoFile(path string) bool {
	return videoExtensions[strings.ToLower(filepath.Ext(path))]
}

func IsAudioFile(path string) bool {
	return audioExtensions[strings.ToLower(filepath.Ext(path))]
}

func IsMediaFile(path string) bool {
	return IsAudioFile(path) || IsVideoFile(path)
}
