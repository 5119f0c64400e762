// Package llm provides the OpenAI-compatible text generator used for
// natural-language to SQL conversion. It works against any endpoint that
// speaks the OpenAI chat API, including a local Ollama instance.
package llm

import "context"

// Completion is one generator response with token accounting.
type Completion struct {
	Text             string
	Model            string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Generator produces completions for prompts. Implementations must honor the
// caller-supplied context deadline and classify failures via apperrors so
// callers can distinguish connection failures from timeouts from empty
// completions.
type Generator interface {
	Generate(ctx context.Context, prompt string) (*Completion, error)
	// Ping reports whether the generator endpoint is reachable.
	Ping(ctx context.Context) error
	// Model returns the configured model name, for diagnostics.
	Model() string
}
