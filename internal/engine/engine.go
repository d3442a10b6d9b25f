// Package engine wraps local model inference behind a small interface.
// The production implementation manages a llama-server subprocess and talks
// to it over its OpenAI-compatible HTTP API; the execution host and tests
// only ever see the Engine interface.
package engine

import (
	"context"

	"github.com/kiddoHope/steadysocial-sub000/pkg/api"
)

// StreamEvent is one parsed event from a streaming generation.
type StreamEvent struct {
	// Delta is the incremental text fragment.
	Delta string
	// Done marks the end of the stream.
	Done bool
	// Err terminates the stream with a failure.
	Err error
}

// Engine is a loaded language model: role-tagged messages in, text out.
type Engine interface {
	// Load starts the engine with the given model. Progress strings are
	// reported through the callback while the model warms up.
	Load(ctx context.Context, model string, progress func(string)) error

	// Complete performs a single-shot generation and returns the full text.
	Complete(ctx context.Context, messages []api.Message) (string, error)

	// Stream performs a streaming generation. The returned channel is closed
	// after a Done or Err event.
	Stream(ctx context.Context, messages []api.Message) (<-chan StreamEvent, error)

	// Embed produces an embedding vector for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// ModelName returns the name of the loaded model.
	ModelName() string

	// Exited is closed if the engine dies out from under us. A nil channel
	// means the engine has no out-of-band failure mode.
	Exited() <-chan struct{}

	// Close shuts the engine down and releases its resources.
	Close() error
}
