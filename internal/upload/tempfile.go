package upload

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// SaveTemp writes an uploaded clip to dir under a unique name built from a
// timestamp and a random suffix, keeping the original extension. Unique
// naming is what lets concurrent requests share the directory without
// coordination.
func SaveTemp(dir, originalName string, r io.Reader) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	ext := filepath.Ext(originalName)
	name := fmt.Sprintf("audio-%d-%s%s", time.Now().UnixNano(), uuid.NewString()[:8], ext)
	dst := filepath.Join(dir, name)

	out, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("failed to save file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, r); err != nil {
		os.Remove(dst)
		return "", fmt.Errorf("failed to save file: %w", err)
	}
	return dst, nil
}
