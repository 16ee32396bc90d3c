package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/xhsauto/xhsauto/internal/ai"
	"github.com/xhsauto/xhsauto/internal/note"
)

// createRunDir creates a unique, timestamped directory for one run's
// assets and returns its absolute path.
func createRunDir(base, topic string, now time.Time) (string, error) {
	name := fmt.Sprintf("%s_%s", now.Format("20060102_150405"), note.SanitizeTopic(topic))
	dir := filepath.Join(base, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create run directory: %w", err)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve run directory: %w", err)
	}
	return abs, nil
}

// saveContent archives the generated text as content.json in the run
// directory.
func saveContent(dir string, content note.TextContent) error {
	data, err := json.MarshalIndent(content, "", "    ")
	if err != nil {
		return fmt.Errorf("encode content: %w", err)
	}
	path := filepath.Join(dir, "content.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// saveImages writes generated images into the run directory and returns
// their absolute paths in generation order.
func saveImages(dir, provider string, images []ai.Image, now time.Time) ([]string, error) {
	stamp := now.Format("20060102_150405")
	paths := make([]string, 0, len(images))
	for i, img := range images {
		name := fmt.Sprintf("%s_image_%s_%d%s", provider, stamp, i+1, extensionFor(img.MIMEType))
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, img.Data, 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func extensionFor(mime string) string {
	switch mime {
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return ".png"
	}
}
