// Package ai defines the provider-neutral generation capability the
// evaluation pipeline is built on. Concrete providers live in subpackages.
package ai

import "context"

// Options tune a single generation call.
type Options struct {
	Temperature     float32
	MaxOutputTokens int32
}

// Request is a fully composed generation call.
type Request struct {
	Prompt  string
	Options Options
}

// Generator is the capability for producing text from a prompt. Stream
// implementations must forward fragments in arrival order and must not merge
// or split them.
type Generator interface {
	GenerateContent(ctx context.Context, prompt string, opts Options) (string, error)
	StreamContent(ctx context.Context, prompt string, opts Options, emit func(fragment string) error) error
}
