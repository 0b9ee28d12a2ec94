package audio

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"

	"TempoFM/logger"
)

// AubioAnalyzer measures tempo by shelling out to the aubio binary.
type AubioAnalyzer struct {
	binPath string
}

// NewAubioAnalyzer returns a tempo analyzer, or nil when the binary is not
// on PATH. A nil analyzer degrades the ingest pipeline to always skipping
// tempo-less assets.
func NewAubioAnalyzer(binPath string) *AubioAnalyzer {
	if binPath == "" {
		return nil
	}
	if _, err := exec.LookPath(binPath); err != nil {
		logger.Warn("aubio 不可用，自动测速已禁用", logger.String("bin", binPath))
		return nil
	}
	return &AubioAnalyzer{binPath: binPath}
}

// MeasureTempo runs `aubio tempo` and returns the rounded BPM.
func (a *AubioAnalyzer) MeasureTempo(ctx context.Context, inputFile string) (int, error) {
	args := []string{"tempo", "-i", inputFile}

	cmd := exec.CommandContext(ctx, a.binPath, args...)
	var out bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return 0, fmt.Errorf("aubio execution failed for %s: %w\naubio error: %s", inputFile, err, stderr.String())
	}

	// aubio prints "NNN.NNN bpm" on the last non-empty line.
	lines := strings.Fields(strings.TrimSpace(out.String()))
	if len(lines) == 0 {
		return 0, fmt.Errorf("aubio produced no output for %s", inputFile)
	}

	bpm, err := strconv.ParseFloat(lines[0], 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse aubio output %q: %w", out.String(), err)
	}

	tempo := int(math.Round(bpm))
	if tempo <= 0 {
		return 0, fmt.Errorf("aubio measured a non-positive tempo (%f) for %s", bpm, inputFile)
	}

	logger.Info("测得曲速", logger.String("path", inputFile), logger.Int("bpm", tempo))
	return tempo, nil
}
