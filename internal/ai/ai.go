package ai

import (
	"context"

	"github.com/xhsauto/xhsauto/internal/note"
)

// Image is one generated image, returned as raw bytes. Persistence is the
// caller's concern.
type Image struct {
	Data     []byte
	MIMEType string
}

// Generator abstracts an AI vendor that can produce note text and images.
// Exactly one Generator is active per process.
type Generator interface {
	Name() string
	GenerateText(ctx context.Context, topic string) (note.TextContent, error)
	GenerateImages(ctx context.Context, prompt string, n int) ([]Image, error)
}
