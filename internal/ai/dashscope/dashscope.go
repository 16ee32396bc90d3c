package dashscope

import (
	"bytes"
	"context"
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
	envAPIKey = "DASHSCOPE_API_KEY"

	providerName = "dashscope"
	chatTimeout  = 120 * time.Second
	imageTimeout = 60 * time.Second

	taskSucceeded = "SUCCEEDED"
	taskFailed    = "FAILED"
)

// Client implements the ai.Generator interface for Alibaba Cloud Model
// Studio: Qwen chat completions through compatible-mode and Wanxiang image
// synthesis through the async task API.
type Client struct {
	cfg        config.DashScope
	chat       openai.Client
	httpClient *http.Client

	pollInterval time.Duration
	pollAttempts int
}

// New constructs a DashScope generator.
func New(cfg config.DashScope) (ai.Generator, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ai.MissingEnvError{Provider: providerName, Variables: []string{envAPIKey}}
	}

	chat := openai.NewClient(
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")+"/compatible-mode/v1"),
		option.WithRequestTimeout(chatTimeout),
	)

	return &Client{
		cfg:          cfg,
		chat:         chat,
		httpClient:   &http.Client{Timeout: imageTimeout},
		pollInterval: 2 * time.Second,
		pollAttempts: 30,
	}, nil
}

// Name identifies the provider.
func (c *Client) Name() string { return providerName }

// GenerateText produces note text with a Qwen model.
func (c *Client) GenerateText(ctx context.Context, topic string) (note.TextContent, error) {
	logutil.Debugf("dashscope chat request: model=%s", c.cfg.TextModel)
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

type synthesisRequest struct {
	Model      string              `json:"model"`
	Input      synthesisInput      `json:"input"`
	Parameters synthesisParameters `json:"parameters"`
}

type synthesisInput struct {
	Prompt string `json:"prompt"`
}

type synthesisParameters struct {
	N    int    `json:"n"`
	Size string `json:"size"`
}

type taskResponse struct {
	Output struct {
		TaskID     string `json:"task_id"`
		TaskStatus string `json:"task_status"`
		Results    []struct {
			URL string `json:"url"`
		} `json:"results"`
		Message string `json:"message"`
	} `json:"output"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// GenerateImages submits a Wanxiang synthesis task and polls it until the
// images are ready, then downloads them.
func (c *Client) GenerateImages(ctx context.Context, prompt string, n int) ([]ai.Image, error) {
	task, err := c.submitTask(ctx, prompt, n)
	if err != nil {
		return nil, ai.GenerationError{Provider: providerName, Stage: ai.StageImage, Err: err}
	}
	logutil.Debugf("dashscope task submitted: task_id=%s", task)

	urls, err := c.awaitTask(ctx, task)
	if err != nil {
		return nil, ai.GenerationError{Provider: providerName, Stage: ai.StageImage, Err: err}
	}

	images := make([]ai.Image, 0, len(urls))
	for _, url := range urls {
		img, err := c.downloadImage(ctx, url)
		if err != nil {
			return nil, ai.GenerationError{Provider: providerName, Stage: ai.StageImage, Err: err}
		}
		images = append(images, img)
	}
	if len(images) == 0 {
		return nil, ai.GenerationError{Provider: providerName, Stage: ai.StageImage, Err: errors.New("task finished with no images")}
	}

	return images, nil
}

func (c *Client) submitTask(ctx context.Context, prompt string, n int) (string, error) {
	payload, err := json.Marshal(synthesisRequest{
		Model:      c.cfg.ImageModel,
		Input:      synthesisInput{Prompt: prompt},
		Parameters: synthesisParameters{N: n, Size: "1024*1024"},
	})
	if err != nil {
		return "", err
	}

	url := strings.TrimSuffix(c.cfg.BaseURL, "/") + "/api/v1/services/aigc/text2image/image-synthesis"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-DashScope-Async", "enable")

	decoded, err := c.doTaskRequest(req)
	if err != nil {
		return "", fmt.Errorf("submit task: %w", err)
	}
	if decoded.Output.TaskID == "" {
		return "", fmt.Errorf("submit task: %s %s", decoded.Code, decoded.Message)
	}
	return decoded.Output.TaskID, nil
}

// awaitTask polls the task endpoint until the task succeeds, fails, or the
// attempt budget runs out.
func (c *Client) awaitTask(ctx context.Context, taskID string) ([]string, error) {
	url := strings.TrimSuffix(c.cfg.BaseURL, "/") + "/api/v1/tasks/" + taskID

	for attempt := 1; attempt <= c.pollAttempts; attempt++ {
		timer := time.NewTimer(c.pollInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

		decoded, err := c.doTaskRequest(req)
		if err != nil {
			return nil, fmt.Errorf("fetch task: %w", err)
		}

		switch decoded.Output.TaskStatus {
		case taskSucceeded:
			urls := make([]string, 0, len(decoded.Output.Results))
			for _, r := range decoded.Output.Results {
				if r.URL != "" {
					urls = append(urls, r.URL)
				}
			}
			return urls, nil
		case taskFailed:
			msg := decoded.Output.Message
			if msg == "" {
				msg = decoded.Message
			}
			return nil, fmt.Errorf("task %s failed: %s", taskID, msg)
		}
		logutil.Debugf("dashscope task pending: task_id=%s attempt=%d status=%s", taskID, attempt, decoded.Output.TaskStatus)
	}

	return nil, fmt.Errorf("task %s did not finish after %d attempts", taskID, c.pollAttempts)
}

func (c *Client) doTaskRequest(req *http.Request) (taskResponse, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return taskResponse{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return taskResponse{}, err
	}
	if resp.StatusCode != http.StatusOK {
		return taskResponse{}, fmt.Errorf("status %d: %s", resp.StatusCode, truncateBody(body))
	}

	var decoded taskResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return taskResponse{}, fmt.Errorf("decode response: %w", err)
	}
	return decoded, nil
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

func truncateBody(body []byte) string {
	const limit = 500
	if len(body) <= limit {
		return string(body)
	}
	return string(body[:limit])
}
