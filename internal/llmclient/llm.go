// Package llmclient wraps the text/vision generation oracle behind a small
// interface so the pipeline can run against deterministic fakes in tests.
package llmclient

import (
	"context"
	"errors"
)

// ErrEmptyResponse is returned when the model produced no usable candidate.
var ErrEmptyResponse = errors.New("empty response from model")

// Request is one generation call. ImageB64 may be a raw base64 string or a
// data URL; the client strips the header.
type Request struct {
	Prompt            string
	ImageB64          string
	SystemInstruction string
	Temperature       float32
	MaxTokens         int32
}

// Reasoner is the generation oracle consumed by the classifier and the
// synthesizer. Implementations may fail or return malformed text; callers
// must degrade locally, never propagate.
type Reasoner interface {
	Generate(ctx context.Context, req Request) (string, error)
}
