package ai

import (
	"fmt"
	"strings"
)

// SystemPrompt instructs the model to answer with a single JSON object
// shaped for a Xiaohongshu note.
const SystemPrompt = `你是一个专业的小红书内容创作助手。
你需要根据用户提供的主题，生成符合小红书风格的内容。
输出必须是一个有效的JSON对象，且不包含任何其他文字，包含以下三个键：
1. "title": 标题（最多20个字，吸引眼球）
2. "content": 正文内容（300-500字，包含emoji，分段清晰，实用性强）
3. "tags": 标签列表（3-5个相关标签）

示例输出：
{
  "title": "周末宅家也能瘦！懒人减脂秘籍✨",
  "content": "姐妹们！谁说减肥一定要去健身房？今天分享我的懒人减脂法～",
  "tags": ["减脂", "懒人瘦身", "宅家运动", "健康生活"]
}`

// UserPrompt builds the per-topic user message.
func UserPrompt(topic string) string {
	return fmt.Sprintf("请为以下主题创作小红书内容：%s", topic)
}

// ImagePrompt builds a text-to-image prompt from generated note content.
// Vendors that can afford a second model call may replace this with a
// model-optimized prompt.
func ImagePrompt(body string) string {
	runes := []rune(body)
	if len(runes) > 200 {
		body = string(runes[:200])
	}
	var b strings.Builder
	b.WriteString("Create a beautiful, high-quality image for a social media post about: ")
	b.WriteString(body)
	b.WriteString(" Style: modern, clean, vibrant colors, professional photography, trending on social media")
	return b.String()
}
