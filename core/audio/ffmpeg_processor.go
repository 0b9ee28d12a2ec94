package audio

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"TempoFM/logger"
)

// FFmpegProcessor implements the Transformer interface using ffmpeg.
type FFmpegProcessor struct {
	ffmpegPath string
	bitrate    string
	sampleRate int
	coverSize  int
}

// NewFFmpegProcessor creates a new FFmpegProcessor.
func NewFFmpegProcessor(ffmpegPath, bitrate string, sampleRate, coverSize int) *FFmpegProcessor {
	return &FFmpegProcessor{
		ffmpegPath: ffmpegPath,
		bitrate:    bitrate,
		sampleRate: sampleRate,
		coverSize:  coverSize,
	}
}

// ConvertToMP3 transcodes an audio file to MP3 at the configured bitrate
// and sample rate, dropping any embedded video/art streams.
func (p *FFmpegProcessor) ConvertToMP3(ctx context.Context, inputFile, outputFile string) error {
	if err := os.MkdirAll(filepath.Dir(outputFile), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	args := []string{
		"-i", inputFile,
		"-vn",
		"-c:a", "libmp3lame",
		"-b:a", p.bitrate,
		"-ar", strconv.Itoa(p.sampleRate),
		"-y",
		outputFile,
	}

	logger.Debug("执行FFmpeg转码",
		logger.String("input", inputFile),
		logger.String("output", outputFile))

	cmd := exec.CommandContext(ctx, p.ffmpegPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg execution failed for %s: %w\nFFmpeg error: %s", inputFile, err, stderr.String())
	}

	return nil
}

// ResizeCover scales embedded cover art to a square JPEG. The raw image
// bytes are piped in on stdin so no intermediate file is needed.
func (p *FFmpegProcessor) ResizeCover(ctx context.Context, coverData []byte, outputFile string) error {
	if err := os.MkdirAll(filepath.Dir(outputFile), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	size := fmt.Sprintf("%d:%d", p.coverSize, p.coverSize)
	args := []string{
		"-i", "pipe:0",
		"-vf", "scale=" + size,
		"-frames:v", "1",
		"-q:v", "4",
		"-y",
		outputFile,
	}

	cmd := exec.CommandContext(ctx, p.ffmpegPath, args...)
	cmd.Stdin = bytes.NewReader(coverData)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg cover resize failed: %w\nFFmpeg error: %s", err, stderr.String())
	}

	return nil
}
