package client

import (
	"context"
)

// TextClient generates a completion for a single user prompt
type TextClient interface {
	Generate(ctx context.Context, model, prompt string) (string, error)
}
