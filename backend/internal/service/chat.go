package service

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/itchan-dev/parley/backend/internal/compose"
	"github.com/itchan-dev/parley/backend/internal/llm"
	"github.com/itchan-dev/parley/shared/domain"
	internal_errors "github.com/itchan-dev/parley/shared/errors"
	"github.com/itchan-dev/parley/shared/logger"
)

type ChatService interface {
	Stream(ctx context.Context, in ChatInput) (llm.Stream, error)
}

type Composer interface {
	Compose(ctx context.Context, prompt string, files []*domain.PendingFile) (domain.Payload, error)
}

type ChatInput struct {
	Prompt  string
	Files   []*domain.PendingFile
	History []domain.Message
}

type ChatOptions struct {
	IncludeHistory bool
	Timeout        time.Duration // whole model call, streaming included. 0 disables
}

type Chat struct {
	composer Composer
	provider llm.Provider
	opts     ChatOptions
}

var errProviderUnavailable = &internal_errors.ErrorWithStatusCode{Message: "Model provider unavailable", StatusCode: http.StatusBadGateway}

func NewChat(composer Composer, provider llm.Provider, opts ChatOptions) *Chat {
	return &Chat{composer: composer, provider: provider, opts: opts}
}

// Stream composes the payload and opens the model stream. The returned
// stream owns the call's deadline and releases it on Close.
func (c *Chat) Stream(ctx context.Context, in ChatInput) (llm.Stream, error) {
	payload, err := c.composer.Compose(ctx, in.Prompt, in.Files)
	if errors.Is(err, compose.ErrEmptyPayload) {
		chatRequestsTotal.WithLabelValues(c.provider.Name(), outcomeEmpty).Inc()
		return nil, internal_errors.ErrMissingInput
	}
	if err != nil {
		return nil, err
	}
	observePayload(payload)

	req := llm.Request{Payload: payload}
	if c.opts.IncludeHistory {
		req.History = in.History
	}

	cancel := context.CancelFunc(func() {})
	if c.opts.Timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, c.opts.Timeout)
	}

	stream, err := c.provider.Stream(ctx, req)
	if err != nil {
		cancel()
		logger.Log.Error("open model stream", "provider", c.provider.Name(), "error", err)
		chatRequestsTotal.WithLabelValues(c.provider.Name(), outcomeError).Inc()
		return nil, errProviderUnavailable
	}

	logger.Log.Debug("model stream opened", "provider", c.provider.Name(), "parts", len(payload), "history", len(req.History))
	return &meteredStream{Stream: stream, cancel: cancel, provider: c.provider.Name(), start: time.Now()}, nil
}

// ProviderFailed maps an error reported by a stream before its first chunk
// to the response the client sees.
func ProviderFailed(err error) error {
	logger.Log.Error("model stream failed before first chunk", "error", err)
	return errProviderUnavailable
}

type meteredStream struct {
	llm.Stream
	cancel   context.CancelFunc
	provider string
	start    time.Time
	chunks   int
	closed   bool
}

func (s *meteredStream) Next() bool {
	if !s.Stream.Next() {
		return false
	}
	s.chunks++
	chatStreamChunksTotal.WithLabelValues(s.provider).Inc()
	return true
}

func (s *meteredStream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	defer s.cancel()

	outcome := outcomeOK
	if s.Stream.Err() != nil {
		outcome = outcomeError
	}
	chatRequestsTotal.WithLabelValues(s.provider, outcome).Inc()
	chatStreamDuration.WithLabelValues(s.provider).Observe(time.Since(s.start).Seconds())
	return s.Stream.Close()
}
