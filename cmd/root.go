/*
Copyright © 2025 xhsauto authors

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/xhsauto/xhsauto/internal/config"
	"github.com/xhsauto/xhsauto/internal/logutil"
	"github.com/xhsauto/xhsauto/internal/mcp"
	"github.com/xhsauto/xhsauto/internal/pipeline"
)

var (
	topicFlag    string
	providerFlag string
	imageCount   int
	dataDirFlag  string
	dryRun       bool
	verboseFlag  bool
)

// Execute runs the root command.
func Execute() error {
	return newRootCommand().Execute()
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "xhsauto [topic]",
		Short: "Generate and publish Xiaohongshu notes with AI",
		Long: "xhsauto generates a Xiaohongshu note (title, body, tags, images) for a topic " +
			"using the configured AI provider and publishes it through a locally running " +
			"xiaohongshu-mcp service. Provide your topic as an argument or with --topic.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runRoot,
		Example: `  xhsauto "秋季穿搭"
  xhsauto --topic "周末早午餐" --images 2
  echo "露营装备清单" | xhsauto --provider dashscope --dry-run`,
	}

	cmd.Flags().StringVarP(&topicFlag, "topic", "t", "", "Topic to generate a note for")
	cmd.Flags().StringVar(&providerFlag, "provider", "", "AI provider to use (google, modelscope, dashscope)")
	cmd.Flags().IntVar(&imageCount, "images", 1, "Number of images to generate")
	cmd.Flags().StringVar(&dataDirFlag, "data-dir", "", "Directory for generated assets")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Generate and archive content without publishing")
	cmd.Flags().BoolVarP(&verboseFlag, "verbose", "V", false, "Enable debug logging")
	cmd.Flags().SortFlags = false

	cmd.AddCommand(newCompletionCommand())

	return cmd
}

func runRoot(cmd *cobra.Command, args []string) error {
	logutil.SetVerbose(verboseFlag)

	cfg := config.Load()
	if providerFlag != "" {
		cfg.Provider = providerFlag
	}
	if dataDirFlag != "" {
		cfg.DataDir = dataDirFlag
	}

	topic, err := resolveTopic(cmd, args)
	if err != nil {
		return err
	}

	gen, err := newGenerator(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	logutil.Infof("using AI provider: %s", gen.Name())

	runner := pipeline.New(gen, mcp.New(cfg.MCPBaseURL), pipeline.Options{
		DataDir: cfg.DataDir,
		Images:  imageCount,
		DryRun:  dryRun,
	})

	result, err := runner.Run(cmd.Context(), topic)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "assets: %s\n", result.Dir)
	if dryRun {
		fmt.Fprintf(out, "[dry-run] skipped publish of %q with %d image(s)\n", result.Content.Title, len(result.Content.ImagePaths))
		return nil
	}
	fmt.Fprintf(out, "published %q (%d image(s))\n", result.Content.Title, len(result.Content.ImagePaths))
	if result.Publish.Message != "" {
		fmt.Fprintf(out, "service: %s\n", result.Publish.Message)
	}

	return nil
}

func resolveTopic(cmd *cobra.Command, args []string) (string, error) {
	var topic string

	if topicFlag != "" {
		topic = topicFlag
	}

	if len(args) > 0 {
		if topic != "" {
			return "", errors.New("provide the topic either as an argument or with --topic, not both")
		}
		topic = strings.Join(args, " ")
	}

	if topic != "" {
		return strings.TrimSpace(topic), nil
	}

	stdin := cmd.InOrStdin()
	if file, ok := stdin.(*os.File); ok && term.IsTerminal(int(file.Fd())) {
		return promptTopic(cmd.OutOrStdout(), file)
	}
	if stdin != nil {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		topic = strings.TrimSpace(string(data))
	}

	if topic == "" {
		return "", errors.New("topic is required")
	}

	return topic, nil
}

func promptTopic(out io.Writer, in io.Reader) (string, error) {
	fmt.Fprint(out, "Please enter the topic for your note: ")
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read topic: %w", err)
	}
	topic := strings.TrimSpace(line)
	if topic == "" {
		return "", errors.New("topic is required")
	}
	return topic, nil
}
