package llm

import (
	"context"
)

// TextClient is the minimal text-in/text-out capability used by report
// generation. Any configured provider can serve it; multimodal and
// grounded calls go through the gateway instead.
type TextClient interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
