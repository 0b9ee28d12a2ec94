package fingerprint

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
)

// Chromaprint computes acoustic fingerprints by shelling out to the
// Chromaprint fpcalc binary. The fingerprint is deterministic for an
// unaltered file.
type Chromaprint struct {
	binPath string
}

// NewChromaprint 创建 fpcalc 指纹服务
func NewChromaprint(binPath string) *Chromaprint {
	return &Chromaprint{binPath: binPath}
}

// Fingerprint runs fpcalc and returns the compressed fingerprint string.
func (c *Chromaprint) Fingerprint(ctx context.Context, path string) (string, error) {
	args := []string{"-json", path}

	cmd := exec.CommandContext(ctx, c.binPath, args...)
	var out bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("fpcalc execution failed for %s: %w\nfpcalc error: %s", path, err, stderr.String())
	}

	var result struct {
		Duration    float64 `json:"duration"`
		Fingerprint string  `json:"fingerprint"`
	}
	if err := json.Unmarshal(out.Bytes(), &result); err != nil {
		return "", fmt.Errorf("failed to unmarshal fpcalc output: %w", err)
	}

	if result.Fingerprint == "" {
		return "", fmt.Errorf("fpcalc produced no fingerprint for %s", path)
	}

	return result.Fingerprint, nil
}
