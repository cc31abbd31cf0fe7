package ports

import (
	"context"
)

// LLMClient defines the interface for interacting with LLM services
type LLMClient interface {
	// Complete sends prompt to the model and returns its raw text answer
	Complete(ctx context.Context, prompt string) (string, error)

	// ModelName identifies the model answering the prompts
	ModelName() string
}
