package google

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/xhsauto/xhsauto/internal/ai"
	"github.com/xhsauto/xhsauto/internal/config"
	"github.com/xhsauto/xhsauto/internal/logutil"
	"github.com/xhsauto/xhsauto/internal/note"
)

const (
	envGeminiKey = "GEMINI_API_KEY"
	envImagenKey = "IMAGEN_API_KEY"

	providerName = "google"
)

// Client implements the ai.Generator interface with Gemini for text and
// Imagen for images. The two APIs carry separate keys.
type Client struct {
	cfg    config.Google
	gemini *genai.Client
	imagen *genai.Client
}

// New constructs a Google generator.
func New(ctx context.Context, cfg config.Google) (ai.Generator, error) {
	var missing []string
	if cfg.GeminiAPIKey == "" {
		missing = append(missing, envGeminiKey)
	}
	if cfg.ImagenAPIKey == "" {
		missing = append(missing, envImagenKey)
	}
	if len(missing) > 0 {
		return nil, ai.MissingEnvError{Provider: providerName, Variables: missing}
	}

	gemini, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	imagen := gemini
	if cfg.ImagenAPIKey != cfg.GeminiAPIKey {
		imagen, err = genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  cfg.ImagenAPIKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return nil, fmt.Errorf("create imagen client: %w", err)
		}
	}

	return &Client{cfg: cfg, gemini: gemini, imagen: imagen}, nil
}

// Name identifies the provider.
func (c *Client) Name() string { return providerName }

// GenerateText produces note text with Gemini.
func (c *Client) GenerateText(ctx context.Context, topic string) (note.TextContent, error) {
	prompt := ai.SystemPrompt + "\n\n" + ai.UserPrompt(topic)

	logutil.Debugf("gemini request: model=%s", c.cfg.GeminiModel)
	resp, err := c.gemini.Models.GenerateContent(ctx, c.cfg.GeminiModel, genai.Text(prompt), nil)
	if err != nil {
		return note.TextContent{}, ai.GenerationError{Provider: providerName, Stage: ai.StageText, Err: err}
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return note.TextContent{}, ai.GenerationError{Provider: providerName, Stage: ai.StageText, Err: errors.New("empty completion")}
	}

	return ai.ParseTextContent(text), nil
}

// GenerateImages produces images with Imagen, first asking Gemini to turn
// the raw prompt into an optimized art prompt.
func (c *Client) GenerateImages(ctx context.Context, prompt string, n int) ([]ai.Image, error) {
	optimized := c.optimizePrompt(ctx, prompt)

	logutil.Debugf("imagen request: model=%s count=%d", c.cfg.ImagenModel, n)
	resp, err := c.imagen.Models.GenerateImages(ctx, c.cfg.ImagenModel, optimized, &genai.GenerateImagesConfig{
		NumberOfImages: int32(n),
	})
	if err != nil {
		return nil, ai.GenerationError{Provider: providerName, Stage: ai.StageImage, Err: err}
	}

	images := make([]ai.Image, 0, len(resp.GeneratedImages))
	for _, gi := range resp.GeneratedImages {
		if gi.Image == nil || len(gi.Image.ImageBytes) == 0 {
			continue
		}
		mime := gi.Image.MIMEType
		if mime == "" {
			mime = "image/png"
		}
		images = append(images, ai.Image{Data: gi.Image.ImageBytes, MIMEType: mime})
	}

	if len(images) == 0 {
		return nil, ai.GenerationError{Provider: providerName, Stage: ai.StageImage, Err: errors.New("no images in response")}
	}

	return images, nil
}

// optimizePrompt asks Gemini to rewrite the raw prompt into a single
// descriptive English sentence for Imagen. The raw prompt is used as-is
// when the call fails.
func (c *Client) optimizePrompt(ctx context.Context, prompt string) string {
	instruction := fmt.Sprintf("You are an expert in visual art. Based on the text, create a concise, highly descriptive, and artistic prompt in English for an AI image model. Focus on visual details, style, and lighting. The prompt should be a single, fluent sentence. Text: %q", prompt)

	resp, err := c.gemini.Models.GenerateContent(ctx, c.cfg.GeminiModel, genai.Text(instruction), nil)
	if err != nil {
		logutil.Debugf("image prompt optimization failed: %v", err)
		return prompt
	}
	if text := strings.TrimSpace(resp.Text()); text != "" {
		return text
	}
	return prompt
}
