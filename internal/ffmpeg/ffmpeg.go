package ffmpeg

import (
	"fmt"
	"os"
	"os/exec"
	"sync"
)

// Binary locations are resolved once per process: explicit env overrides
// first, then PATH lookup.
const (
	envFFmpegPath  = "KATHA_FFMPEG_PATH"
	envFFprobePath = "KATHA_FFPROBE_PATH"
)

type BinaryPaths struct {
	FFmpeg  string
	FFprobe string
}

var (
	resolveOnce  sync.Once
	resolveErr   error
	resolvePaths BinaryPaths
)

// Resolve locates the ffmpeg and ffprobe binaries.
func Resolve() (BinaryPaths, error) {
	resolveOnce.Do(func() {
		resolvePaths, resolveErr = resolve()
	})
	return resolvePaths, resolveErr
}

func FFmpegPath() (string, error) {
	paths, err := Resolve()
	if err != nil {
		return "", err
	}
	return paths.FFmpeg, nil
}

func FFprobePath() (string, error) {
	paths, err := Resolve()
	if err != nil {
		return "", err
	}
	return paths.FFprobe, nil
}

func resolve() (BinaryPaths, error) {
	ffmpegPath := os.Getenv(envFFmpegPath)
	ffprobePath := os.Getenv(envFFprobePath)

	if ffmpegPath == "" {
		if found, err := exec.LookPath("ffmpeg"); err == nil {
			ffmpegPath = found
		}
	}
	if ffprobePath == "" {
		if found, err := exec.LookPath("ffprobe"); err == nil {
			ffprobePath = found
		}
	}

	if ffmpegPath == "" || ffprobePath == "" {
		return BinaryPaths{}, fmt.Errorf(
			"ffmpeg/ffprobe not found: install them or set %s and %s",
			envFFmpegPath, envFFprobePath,
		)
	}

	return BinaryPaths{FFmpeg: ffmpegPath, FFprobe: ffprobePath}, nil
}
