// Package llm streams chat completions from hosted models.
package llm

import (
	"context"

	"github.com/itchan-dev/parley/shared/domain"
)

// Request is a single user turn, optionally preceded by earlier messages.
type Request struct {
	History []domain.Message
	Payload domain.Payload
}

// Stream yields text deltas in arrival order. Err is valid after Next
// returns false. Close must always be called.
type Stream interface {
	Next() bool
	Text() string
	Err() error
	Close() error
}

type Provider interface {
	Name() string
	Stream(ctx context.Context, req Request) (Stream, error)
}
