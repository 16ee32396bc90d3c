// Package pipeline drives one run end to end: storage directory, text
// generation, asset archival, image generation, publish. Every step is
// sequential and the first failure aborts the run.
package pipeline

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/xhsauto/xhsauto/internal/ai"
	"github.com/xhsauto/xhsauto/internal/logutil"
	"github.com/xhsauto/xhsauto/internal/mcp"
	"github.com/xhsauto/xhsauto/internal/note"
)

// Publisher is the outbound side of the pipeline; satisfied by
// *mcp.Client.
type Publisher interface {
	Publish(ctx context.Context, content note.Content) (mcp.Result, error)
}

// Options tune one pipeline instance.
type Options struct {
	DataDir string
	Images  int
	DryRun  bool
}

// Pipeline assembles and publishes one note per Run call.
type Pipeline struct {
	gen  ai.Generator
	pub  Publisher
	opts Options
	now  func() time.Time
}

// RunResult reports what one run produced.
type RunResult struct {
	Dir     string
	Content note.Content
	Publish mcp.Result
}

// New builds a pipeline around a generator and a publisher.
func New(gen ai.Generator, pub Publisher, opts Options) *Pipeline {
	if opts.Images <= 0 {
		opts.Images = 1
	}
	if opts.DataDir == "" {
		opts.DataDir = "data"
	}
	return &Pipeline{gen: gen, pub: pub, opts: opts, now: time.Now}
}

// Run executes the full sequence for one topic.
func (p *Pipeline) Run(ctx context.Context, topic string) (RunResult, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return RunResult{}, errors.New("topic is empty")
	}

	dir, err := createRunDir(p.opts.DataDir, topic, p.now())
	if err != nil {
		return RunResult{}, err
	}
	logutil.Infof("run directory: %s", dir)

	text, err := p.gen.GenerateText(ctx, topic)
	if err != nil {
		return RunResult{}, err
	}
	logutil.Infof("text generated: title=%q tags=%d", text.Title, len(text.Tags))

	if err := saveContent(dir, text); err != nil {
		return RunResult{}, err
	}

	prompt := text.ImagePrompt
	if prompt == "" {
		prompt = ai.ImagePrompt(text.Body)
	}

	images, err := p.gen.GenerateImages(ctx, prompt, p.opts.Images)
	if err != nil {
		return RunResult{}, err
	}
	if len(images) == 0 {
		return RunResult{}, ai.GenerationError{Provider: p.gen.Name(), Stage: ai.StageImage, Err: errors.New("generator returned no images")}
	}

	paths, err := saveImages(dir, p.gen.Name(), images, p.now())
	if err != nil {
		return RunResult{}, err
	}
	logutil.Infof("images saved: count=%d", len(paths))

	result := RunResult{
		Dir: dir,
		Content: note.Content{
			Title:      note.TruncateTitle(text.Title),
			Body:       text.Body,
			Tags:       text.Tags,
			ImagePaths: paths,
		},
	}

	if p.opts.DryRun {
		logutil.Infof("dry run: skipping publish")
		return result, nil
	}

	pub, err := p.pub.Publish(ctx, result.Content)
	if err != nil {
		return RunResult{}, err
	}
	result.Publish = pub
	logutil.Infof("note published: outcome=%s", pub.Outcome)

	return result, nil
}
