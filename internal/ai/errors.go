package ai

import (
	"fmt"
	"strings"
)

// Stage names the generation step that failed.
type Stage string

const (
	StageText  Stage = "text"
	StageImage Stage = "image"
)

// UnknownProviderError is returned when the configured provider name does
// not match any adapter.
type UnknownProviderError struct {
	Name string
}

func (e UnknownProviderError) Error() string {
	return fmt.Sprintf("unknown AI provider %q (supported: google, modelscope, dashscope)", e.Name)
}

// GenerationError wraps a vendor failure during text or image generation.
type GenerationError struct {
	Provider string
	Stage    Stage
	Err      error
}

func (e GenerationError) Error() string {
	return fmt.Sprintf("%s %s generation failed: %v", e.Provider, e.Stage, e.Err)
}

func (e GenerationError) Unwrap() error { return e.Err }

// MissingEnvError is returned when required configuration is missing.
type MissingEnvError struct {
	Provider  string
	Variables []string
}

func (e MissingEnvError) Error() string {
	if len(e.Variables) == 0 {
		return fmt.Sprintf("%s credentials not configured", e.Provider)
	}
	return fmt.Sprintf("%s credentials not configured (missing %s)", e.Provider, strings.Join(e.Variables, ", "))
}
