package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xhsauto/xhsauto/internal/ai"
	"github.com/xhsauto/xhsauto/internal/mcp"
	"github.com/xhsauto/xhsauto/internal/note"
)

type fakeGenerator struct {
	text      note.TextContent
	textErr   error
	images    []ai.Image
	imagesErr error

	gotTopic  string
	gotPrompt string
	gotCount  int
}

func (f *fakeGenerator) Name() string { return "fake" }

func (f *fakeGenerator) GenerateText(_ context.Context, topic string) (note.TextContent, error) {
	f.gotTopic = topic
	return f.text, f.textErr
}

func (f *fakeGenerator) GenerateImages(_ context.Context, prompt string, n int) ([]ai.Image, error) {
	f.gotPrompt = prompt
	f.gotCount = n
	return f.images, f.imagesErr
}

type fakePublisher struct {
	calls  int
	got    note.Content
	result mcp.Result
	err    error
}

func (f *fakePublisher) Publish(_ context.Context, content note.Content) (mcp.Result, error) {
	f.calls++
	f.got = content
	return f.result, f.err
}

func TestRunEndToEnd(t *testing.T) {
	gen := &fakeGenerator{
		text: note.TextContent{
			Title: "秋日穿搭分享今天给大家带来超实用灵感合集",
			Body:  "姐妹们！秋天来了🍂",
			Tags:  []string{"穿搭", "秋季"},
		},
		images: []ai.Image{
			{Data: []byte("img-one"), MIMEType: "image/png"},
			{Data: []byte("img-two"), MIMEType: "image/png"},
		},
	}
	pub := &fakePublisher{result: mcp.Result{Outcome: mcp.OutcomeSuccess}}

	p := New(gen, pub, Options{DataDir: t.TempDir(), Images: 2})
	result, err := p.Run(context.Background(), "秋季穿搭")

	require.NoError(t, err)
	assert.Equal(t, "秋季穿搭", gen.gotTopic)
	assert.Equal(t, 2, gen.gotCount)
	assert.NotEmpty(t, gen.gotPrompt)

	// Title is capped before publishing.
	assert.Len(t, []rune(result.Content.Title), note.MaxTitleRunes)
	assert.Equal(t, []string{"穿搭", "秋季"}, result.Content.Tags)

	// Both images persisted at absolute paths.
	require.Len(t, result.Content.ImagePaths, 2)
	for _, path := range result.Content.ImagePaths {
		assert.True(t, filepath.IsAbs(path))
		_, statErr := os.Stat(path)
		assert.NoError(t, statErr)
	}

	// Text content archived alongside the images.
	data, err := os.ReadFile(filepath.Join(result.Dir, "content.json"))
	require.NoError(t, err)
	var archived note.TextContent
	require.NoError(t, json.Unmarshal(data, &archived))
	assert.Equal(t, gen.text.Body, archived.Body)

	assert.Equal(t, 1, pub.calls)
	assert.Equal(t, result.Content, pub.got)
	assert.True(t, result.Publish.Succeeded())
}

func TestRunUsesModelSuggestedImagePrompt(t *testing.T) {
	gen := &fakeGenerator{
		text: note.TextContent{
			Title:       "t",
			Body:        "正文",
			Tags:        []string{"tag"},
			ImagePrompt: "a cozy autumn flatlay, soft light",
		},
		images: []ai.Image{{Data: []byte("img"), MIMEType: "image/png"}},
	}
	pub := &fakePublisher{result: mcp.Result{Outcome: mcp.OutcomeSuccess}}

	_, err := New(gen, pub, Options{DataDir: t.TempDir()}).Run(context.Background(), "topic")

	require.NoError(t, err)
	assert.Equal(t, "a cozy autumn flatlay, soft light", gen.gotPrompt)
}

func TestRunTextFailureAborts(t *testing.T) {
	gen := &fakeGenerator{
		textErr: ai.GenerationError{Provider: "fake", Stage: ai.StageText, Err: errors.New("quota exceeded")},
	}
	pub := &fakePublisher{}

	_, err := New(gen, pub, Options{DataDir: t.TempDir()}).Run(context.Background(), "topic")

	var genErr ai.GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, ai.StageText, genErr.Stage)
	assert.Zero(t, pub.calls)
}

func TestRunImageFailureAbortsBeforePublish(t *testing.T) {
	gen := &fakeGenerator{
		text:      note.TextContent{Title: "t", Body: "b", Tags: []string{"x"}},
		imagesErr: ai.GenerationError{Provider: "fake", Stage: ai.StageImage, Err: errors.New("model overloaded")},
	}
	pub := &fakePublisher{}

	_, err := New(gen, pub, Options{DataDir: t.TempDir()}).Run(context.Background(), "topic")

	var genErr ai.GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, ai.StageImage, genErr.Stage)
	assert.Zero(t, pub.calls, "no publish request may be sent after image failure")
}

func TestRunNoImagesAborts(t *testing.T) {
	gen := &fakeGenerator{
		text:   note.TextContent{Title: "t", Body: "b"},
		images: nil,
	}
	pub := &fakePublisher{}

	_, err := New(gen, pub, Options{DataDir: t.TempDir()}).Run(context.Background(), "topic")

	require.Error(t, err)
	assert.Zero(t, pub.calls)
}

func TestRunDryRunSkipsPublish(t *testing.T) {
	gen := &fakeGenerator{
		text:   note.TextContent{Title: "t", Body: "b", Tags: []string{"x"}},
		images: []ai.Image{{Data: []byte("img"), MIMEType: "image/png"}},
	}
	pub := &fakePublisher{}

	result, err := New(gen, pub, Options{DataDir: t.TempDir(), DryRun: true}).Run(context.Background(), "topic")

	require.NoError(t, err)
	assert.Zero(t, pub.calls)
	assert.Len(t, result.Content.ImagePaths, 1)
}

func TestRunPublishErrorPropagates(t *testing.T) {
	gen := &fakeGenerator{
		text:   note.TextContent{Title: "t", Body: "b"},
		images: []ai.Image{{Data: []byte("img"), MIMEType: "image/png"}},
	}
	pub := &fakePublisher{err: mcp.UnreachableError{URL: "http://localhost:18060/mcp", Err: errors.New("connection refused")}}

	_, err := New(gen, pub, Options{DataDir: t.TempDir()}).Run(context.Background(), "topic")

	var unreachable mcp.UnreachableError
	require.ErrorAs(t, err, &unreachable)
}

func TestRunEmptyTopic(t *testing.T) {
	gen := &fakeGenerator{}
	pub := &fakePublisher{}

	_, err := New(gen, pub, Options{DataDir: t.TempDir()}).Run(context.Background(), "   ")

	require.Error(t, err)
	assert.Zero(t, pub.calls)
}
