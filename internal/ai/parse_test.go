package ai

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseTextContentJSON(t *testing.T) {
	raw := `{"title":"秋日穿搭分享","content":"姐妹们！秋天来了🍂","tags":["穿搭","秋季"]}`

	content := ParseTextContent(raw)

	assert.Equal(t, "秋日穿搭分享", content.Title)
	assert.Equal(t, "姐妹们！秋天来了🍂", content.Body)
	assert.Equal(t, []string{"穿搭", "秋季"}, content.Tags)
}

func TestParseTextContentFencedJSON(t *testing.T) {
	raw := "Here is your note:\n```json\n" +
		`{"title":"早餐灵感","content":"五分钟搞定✨","tags":["早餐"]}` +
		"\n```\nHope you like it!"

	content := ParseTextContent(raw)

	assert.Equal(t, "早餐灵感", content.Title)
	assert.Equal(t, "五分钟搞定✨", content.Body)
	assert.Equal(t, []string{"早餐"}, content.Tags)
}

func TestParseTextContentTruncatesTitle(t *testing.T) {
	raw := `{"title":"` + strings.Repeat("长", 30) + `","content":"正文","tags":["t"]}`

	content := ParseTextContent(raw)

	assert.Len(t, []rune(content.Title), 20)
}

func TestParseTextContentImagePrompt(t *testing.T) {
	raw := `{"title":"t","content":"c","tags":[],"image_prompt":"a cozy autumn flatlay"}`

	content := ParseTextContent(raw)

	assert.Equal(t, "a cozy autumn flatlay", content.ImagePrompt)
}

func TestParseTextContentFallback(t *testing.T) {
	raw := "秋日穿搭合集来啦\n今天分享三套通勤look，照着穿就很好看。"

	content := ParseTextContent(raw)

	assert.Equal(t, "秋日穿搭合集来啦", content.Title)
	assert.Equal(t, "今天分享三套通勤look，照着穿就很好看。", content.Body)
	assert.NotEmpty(t, content.Tags)
}

func TestParseTextContentMissingKeysFallsBack(t *testing.T) {
	raw := `{"headline":"not the right shape"}`

	content := ParseTextContent(raw)

	// The brace span parses but lacks required keys, so the raw text is
	// salvaged instead.
	assert.NotEmpty(t, content.Title)
	assert.NotEmpty(t, content.Tags)
}

func TestImagePromptCapsContext(t *testing.T) {
	body := strings.Repeat("内容", 300)

	prompt := ImagePrompt(body)

	assert.Contains(t, prompt, "social media")
	assert.Less(t, len([]rune(prompt)), 400)
}
