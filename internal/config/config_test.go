package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"AI_PROVIDER", "GEMINI_MODEL_NAME", "IMAGEN_MODEL_NAME",
		"MS_TEXT_MODEL", "QIANWEN_MODEL_NAME", "XHS_MCP_BASE_URL", "XHS_DATA_DIR",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "google", cfg.Provider)
	assert.Equal(t, "gemini-1.5-flash", cfg.Google.GeminiModel)
	assert.Equal(t, "imagen-3.0-generate-002", cfg.Google.ImagenModel)
	assert.Equal(t, "Qwen/Qwen2.5-72B-Instruct", cfg.ModelScope.TextModel)
	assert.Equal(t, "https://api-inference.modelscope.cn/v1", cfg.ModelScope.BaseURL)
	assert.Equal(t, "qwen-plus", cfg.DashScope.TextModel)
	assert.Equal(t, "http://localhost:18060", cfg.MCPBaseURL)
	assert.Equal(t, "data", cfg.DataDir)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("AI_PROVIDER", " dashscope ")
	t.Setenv("DASHSCOPE_API_KEY", "sk-test")
	t.Setenv("WANXIANG_MODEL_NAME", "wanx2.1-t2i-plus")
	t.Setenv("XHS_MCP_BASE_URL", "http://127.0.0.1:9000")

	cfg := Load()

	assert.Equal(t, "dashscope", cfg.Provider)
	assert.Equal(t, "sk-test", cfg.DashScope.APIKey)
	assert.Equal(t, "wanx2.1-t2i-plus", cfg.DashScope.ImageModel)
	assert.Equal(t, "http://127.0.0.1:9000", cfg.MCPBaseURL)
}
