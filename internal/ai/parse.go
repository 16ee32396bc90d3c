package ai

import (
	"strings"

	"github.com/tidwall/gjson"

	"github.com/xhsauto/xhsauto/internal/note"
)

// ParseTextContent extracts a note from raw model output. Models are asked
// for a bare JSON object but routinely wrap it in prose or code fences, so
// the widest {...} span is parsed with gjson. When no usable JSON is found
// the output is salvaged as first-line title plus body.
func ParseTextContent(raw string) note.TextContent {
	if obj := extractObject(raw); obj != "" {
		title := gjson.Get(obj, "title")
		body := gjson.Get(obj, "content")
		tags := gjson.Get(obj, "tags")
		if title.Exists() && body.Exists() && tags.Exists() {
			content := note.TextContent{
				Title: note.TruncateTitle(title.String()),
				Body:  body.String(),
			}
			for _, t := range tags.Array() {
				content.Tags = append(content.Tags, t.String())
			}
			if p := gjson.Get(obj, "image_prompt"); p.Exists() {
				content.ImagePrompt = p.String()
			}
			return content
		}
	}
	return fallbackContent(raw)
}

// extractObject returns the widest brace-delimited span of s, or "" when
// s contains no object.
func extractObject(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return ""
	}
	obj := s[start : end+1]
	if !gjson.Valid(obj) {
		return ""
	}
	return obj
}

// fallbackContent builds a usable note when the model ignored the JSON
// instruction: first non-empty line becomes the title, the rest the body.
func fallbackContent(raw string) note.TextContent {
	lines := strings.Split(strings.TrimSpace(raw), "\n")
	title := "小红书笔记"
	body := raw
	if len(lines) > 0 && strings.TrimSpace(lines[0]) != "" {
		title = strings.TrimSpace(lines[0])
	}
	if len(lines) > 1 {
		body = strings.TrimSpace(strings.Join(lines[1:], "\n"))
	}
	if runes := []rune(body); len(runes) > 500 {
		body = string(runes[:500])
	}
	return note.TextContent{
		Title: note.TruncateTitle(title),
		Body:  body,
		Tags:  []string{"生活分享", "日常"},
	}
}
