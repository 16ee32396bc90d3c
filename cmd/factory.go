package cmd

import (
	"context"
	"strings"

	"github.com/xhsauto/xhsauto/internal/ai"
	"github.com/xhsauto/xhsauto/internal/ai/dashscope"
	"github.com/xhsauto/xhsauto/internal/ai/google"
	"github.com/xhsauto/xhsauto/internal/ai/modelscope"
	"github.com/xhsauto/xhsauto/internal/config"
)

// newGenerator selects the provider adapter named by the configuration.
// Selection happens once at startup; there is no fallback between vendors.
func newGenerator(ctx context.Context, cfg config.Config) (ai.Generator, error) {
	constructors := map[string]func() (ai.Generator, error){
		"google": func() (ai.Generator, error) {
			return google.New(ctx, cfg.Google)
		},
		"modelscope": func() (ai.Generator, error) {
			return modelscope.New(cfg.ModelScope)
		},
		"dashscope": func() (ai.Generator, error) {
			return dashscope.New(cfg.DashScope)
		},
	}

	name := strings.ToLower(strings.TrimSpace(cfg.Provider))
	constructor, ok := constructors[name]
	if !ok {
		return nil, ai.UnknownProviderError{Name: cfg.Provider}
	}
	return constructor()
}
