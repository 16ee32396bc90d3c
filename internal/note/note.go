package note

import (
	"strings"
	"unicode"
)

// MaxTitleRunes is the title length limit enforced by Xiaohongshu.
const MaxTitleRunes = 20

// TextContent is the text portion of a note as returned by a generator.
type TextContent struct {
	Title string   `json:"title"`
	Body  string   `json:"content"`
	Tags  []string `json:"tags"`
	// ImagePrompt is an optional model-suggested prompt for image generation.
	ImagePrompt string `json:"image_prompt,omitempty"`
}

// Content is a fully assembled note ready to publish.
type Content struct {
	Title      string
	Body       string
	Tags       []string
	ImagePaths []string
}

// TruncateTitle caps a title at MaxTitleRunes runes.
func TruncateTitle(title string) string {
	runes := []rune(title)
	if len(runes) <= MaxTitleRunes {
		return title
	}
	return string(runes[:MaxTitleRunes])
}

// SanitizeTopic turns a topic into a filesystem-safe folder fragment,
// replacing anything that is not a letter or digit and capping at 50 runes.
func SanitizeTopic(topic string) string {
	var b strings.Builder
	count := 0
	for _, r := range topic {
		if count >= 50 {
			break
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
		count++
	}
	return b.String()
}
