package modelscope

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/xhsauto/xhsauto/internal/ai"
	"github.com/xhsauto/xhsauto/internal/config"
	"github.com/xhsauto/xhsauto/internal/logutil"
	"github.com/xhsauto/xhsauto/internal/note"
)

const (
	envAPIKey = "MODELSCOPE_API_KEY"

	providerName = "modelscope"
	chatTimeout  = 120 * time.Second
	imageTimeout = 60 * time.Second
)

// Client implements the ai.Generator interface for ModelScope
// API-Inference: Qwen chat completions through the OpenAI-compatible
// endpoint and the model inference endpoint for images.
type Client struct {
	cfg        config.ModelScope
	chat       openai.Client
	httpClient *http.Client
}

// New constructs a ModelScope generator.
func New(cfg config.ModelScope) (ai.Generator, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ai.MissingEnvError{Provider: providerName, Variables: []string{envAPIKey}}
	}

	chat := openai.NewClient(
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(cfg.BaseURL),
		option.WithRequestTimeout(chatTimeout),
	)

	return &Client{
		cfg:        cfg,
		chat:       chat,
		httpClient: &http.Client{Timeout: imageTimeout},
	}, nil
}

// Name identifies the provider.
func (c *Client) Name() string { return providerName }

// GenerateText produces note text through the chat completions endpoint.
func (c *Client) GenerateText(ctx context.Context, topic string) (note.TextContent, error) {
	logutil.Debugf("modelscope chat request: model=%s", c.cfg.TextModel)
	resp, err := c.chat.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.cfg.TextModel),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(ai.SystemPrompt),
			openai.UserMessage(ai.UserPrompt(topic)),
		},
		Temperature: openai.Float(0.7),
		MaxTokens:   openai.Int(2000),
	})
	if err != nil {
		return note.TextContent{}, ai.GenerationError{Provider: providerName, Stage: ai.StageText, Err: err}
	}
	if len(resp.Choices) == 0 {
		return note.TextContent{}, ai.GenerationError{Provider: providerName, Stage: ai.StageText, Err: errors.New("empty choices")}
	}

	return ai.ParseTextContent(resp.Choices[0].Message.Content), nil
}

type imageRequest struct {
	Model string     `json:"model"`
	Input imageInput `json:"input"`
}

type imageInput struct {
	Prompt string `json:"prompt"`
	N      int    `json:"n"`
	Size   string `json:"size"`
}

// imageResponse covers both shapes the endpoint returns: inline
// base64-encoded images and a list of result URLs.
type imageResponse struct {
	Images []string `json:"images"`
	Output struct {
		Images []string `json:"images"`
	} `json:"output"`
}

// GenerateImages produces images through the model inference endpoint.
func (c *Client) GenerateImages(ctx context.Context, prompt string, n int) ([]ai.Image, error) {
	payload, err := json.Marshal(imageRequest{
		Model: c.cfg.ImageModel,
		Input: imageInput{Prompt: prompt, N: n, Size: "1024x1024"},
	})
	if err != nil {
		return nil, ai.GenerationError{Provider: providerName, Stage: ai.StageImage, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.imageEndpoint(), bytes.NewReader(payload))
	if err != nil {
		return nil, ai.GenerationError{Provider: providerName, Stage: ai.StageImage, Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	logutil.Debugf("modelscope image request: model=%s count=%d", c.cfg.ImageModel, n)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, ai.GenerationError{Provider: providerName, Stage: ai.StageImage, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, ai.GenerationError{Provider: providerName, Stage: ai.StageImage, Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, ai.GenerationError{
			Provider: providerName,
			Stage:    ai.StageImage,
			Err:      fmt.Errorf("status %d: %s", resp.StatusCode, truncateBody(body)),
		}
	}

	var decoded imageResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, ai.GenerationError{Provider: providerName, Stage: ai.StageImage, Err: fmt.Errorf("decode response: %w", err)}
	}

	images, err := c.collectImages(ctx, decoded)
	if err != nil {
		return nil, ai.GenerationError{Provider: providerName, Stage: ai.StageImage, Err: err}
	}
	return images, nil
}

func (c *Client) collectImages(ctx context.Context, decoded imageResponse) ([]ai.Image, error) {
	var images []ai.Image

	for _, encoded := range decoded.Images {
		data, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, fmt.Errorf("decode inline image: %w", err)
		}
		images = append(images, ai.Image{Data: data, MIMEType: "image/png"})
	}

	for _, url := range decoded.Output.Images {
		img, err := c.downloadImage(ctx, url)
		if err != nil {
			return nil, err
		}
		images = append(images, img)
	}

	if len(images) == 0 {
		return nil, errors.New("no images in response")
	}
	return images, nil
}

func (c *Client) downloadImage(ctx context.Context, url string) (ai.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return ai.Image{}, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ai.Image{}, fmt.Errorf("download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ai.Image{}, fmt.Errorf("download image: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return ai.Image{}, fmt.Errorf("download image: %w", err)
	}

	mime := resp.Header.Get("Content-Type")
	if mime == "" || mime == "application/octet-stream" {
		mime = http.DetectContentType(data)
	}
	return ai.Image{Data: data, MIMEType: mime}, nil
}

// imageEndpoint derives the inference endpoint from the OpenAI-compatible
// base URL; the two share a host but not a path root.
func (c *Client) imageEndpoint() string {
	root := strings.TrimSuffix(strings.TrimSuffix(c.cfg.BaseURL, "/"), "/v1")
	return fmt.Sprintf("%s/api/v1/models/%s/generate", root, c.cfg.ImageModel)
}

func truncateBody(body []byte) string {
	const limit = 500
	if len(body) <= limit {
		return string(body)
	}
	return string(body[:limit])
}
