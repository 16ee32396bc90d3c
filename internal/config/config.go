// Package config loads all runtime settings from the environment once at
// startup. Nothing else in the program reads environment variables for
// provider selection or service endpoints.
package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

const (
	envProvider = "AI_PROVIDER"

	envGeminiAPIKey = "GEMINI_API_KEY"
	envGeminiModel  = "GEMINI_MODEL_NAME"
	envImagenAPIKey = "IMAGEN_API_KEY"
	envImagenModel  = "IMAGEN_MODEL_NAME"

	envModelScopeAPIKey  = "MODELSCOPE_API_KEY"
	envModelScopeText    = "MS_TEXT_MODEL"
	envModelScopeImage   = "MS_IMAGE_MODEL"
	envModelScopeBaseURL = "MS_BASE_URL"

	envDashScopeAPIKey  = "DASHSCOPE_API_KEY"
	envQianwenModel     = "QIANWEN_MODEL_NAME"
	envWanxiangModel    = "WANXIANG_MODEL_NAME"
	envDashScopeBaseURL = "DASHSCOPE_BASE_URL"

	envMCPBaseURL = "XHS_MCP_BASE_URL"
	envDataDir    = "XHS_DATA_DIR"
)

// Google holds Gemini (text) and Imagen (image) settings. The two APIs are
// keyed independently, matching how the upstream quotas are issued.
type Google struct {
	GeminiAPIKey string
	GeminiModel  string
	ImagenAPIKey string
	ImagenModel  string
}

// ModelScope holds settings for the ModelScope API-Inference endpoints.
type ModelScope struct {
	APIKey     string
	TextModel  string
	ImageModel string
	BaseURL    string
}

// DashScope holds settings for Alibaba Cloud Model Studio.
type DashScope struct {
	APIKey     string
	TextModel  string
	ImageModel string
	BaseURL    string
}

// Config is the complete runtime configuration, built once and passed by
// value to the provider factory and the publish client.
type Config struct {
	Provider   string
	Google     Google
	ModelScope ModelScope
	DashScope  DashScope
	MCPBaseURL string
	DataDir    string
}

// Load reads .env (if present) and the environment into a Config with
// defaults applied. It never fails on missing vendor credentials; the
// selected provider validates its own keys at construction time.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Provider: getenv(envProvider, "google"),
		Google: Google{
			GeminiAPIKey: getenv(envGeminiAPIKey, ""),
			GeminiModel:  getenv(envGeminiModel, "gemini-1.5-flash"),
			ImagenAPIKey: getenv(envImagenAPIKey, ""),
			ImagenModel:  getenv(envImagenModel, "imagen-3.0-generate-002"),
		},
		ModelScope: ModelScope{
			APIKey:     getenv(envModelScopeAPIKey, ""),
			TextModel:  getenv(envModelScopeText, "Qwen/Qwen2.5-72B-Instruct"),
			ImageModel: getenv(envModelScopeImage, "Qwen/Qwen-Image"),
			BaseURL:    getenv(envModelScopeBaseURL, "https://api-inference.modelscope.cn/v1"),
		},
		DashScope: DashScope{
			APIKey:     getenv(envDashScopeAPIKey, ""),
			TextModel:  getenv(envQianwenModel, "qwen-plus"),
			ImageModel: getenv(envWanxiangModel, "wanx2.1-t2i-turbo"),
			BaseURL:    getenv(envDashScopeBaseURL, "https://dashscope.aliyuncs.com"),
		},
		MCPBaseURL: getenv(envMCPBaseURL, "http://localhost:18060"),
		DataDir:    getenv(envDataDir, "data"),
	}
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
