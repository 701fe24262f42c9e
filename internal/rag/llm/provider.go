package llm

import "context"

// Provider is a completion service. Implementations bound every call with an
// explicit timeout; failures come back as errors for the caller's degrade
// path, never as a hang.
type Provider interface {
	Complete(ctx context.Context, prompt string) (string, error)
}
