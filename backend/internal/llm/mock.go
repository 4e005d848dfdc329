package llm

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Mock answers without any network call by describing what it received.
// Used for local development and tests.
type Mock struct {
	Delay time.Duration // pause between chunks
	Err   error         // returned from Stream when set
}

var _ Provider = (*Mock)(nil)

func (m *Mock) Name() string { return "mock" }

func (m *Mock) Stream(ctx context.Context, req Request) (Stream, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return &mockStream{ctx: ctx, chunks: splitIntoChunks(mockAnswer(req), 3), delay: m.Delay}, nil
}

func mockAnswer(req Request) string {
	var text, files int
	var prompt string
	for i, p := range req.Payload {
		if p.IsText() {
			text++
			if i == 0 {
				prompt = p.Text
			}
			continue
		}
		files++
	}
	return fmt.Sprintf("(mock) You said: %q. Received %d text part(s) and %d file(s) with %d earlier message(s).",
		prompt, text, files, len(req.History))
}

// splitIntoChunks groups words, keeping the separators so chunks join back
// to the original text.
func splitIntoChunks(s string, wordsPerChunk int) []string {
	words := strings.SplitAfter(s, " ")
	var chunks []string
	for i := 0; i < len(words); i += wordsPerChunk {
		end := min(i+wordsPerChunk, len(words))
		chunks = append(chunks, strings.Join(words[i:end], ""))
	}
	return chunks
}

type mockStream struct {
	ctx    context.Context
	chunks []string
	delay  time.Duration
	pos    int
	err    error
}

func (s *mockStream) Next() bool {
	if s.err != nil || s.pos >= len(s.chunks) {
		return false
	}
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-s.ctx.Done():
			s.err = s.ctx.Err()
			return false
		}
	} else if err := s.ctx.Err(); err != nil {
		s.err = err
		return false
	}
	s.pos++
	return true
}

func (s *mockStream) Text() string { return s.chunks[s.pos-1] }
func (s *mockStream) Err() error   { return s.err }
func (s *mockStream) Close() error { return nil }

// SliceStream replays fixed chunks and then fails with err when it is set.
// Handy for tests of everything above the provider.
type SliceStream struct {
	Chunks []string
	Fail   error
	pos    int
	closed bool
}

func (s *SliceStream) Next() bool {
	if s.pos >= len(s.Chunks) {
		return false
	}
	s.pos++
	return true
}

func (s *SliceStream) Text() string { return s.Chunks[s.pos-1] }

func (s *SliceStream) Err() error {
	if s.pos >= len(s.Chunks) {
		return s.Fail
	}
	return nil
}

func (s *SliceStream) Close() error {
	s.closed = true
	return nil
}

func (s *SliceStream) Closed() bool { return s.closed }

var (
	_ Stream = (*SliceStream)(nil)
	_ Stream = (*mockStream)(nil)
)
