package llm

import (
	"context"
	"fmt"
	"iter"
	"net/http"

	"github.com/itchan-dev/parley/shared/domain"
	"google.golang.org/genai"
)

type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini uses the Gemini API backend. baseURL overrides the endpoint,
// mostly for tests.
func NewGemini(ctx context.Context, apiKey, baseURL, model string, httpClient *http.Client) (*Gemini, error) {
	cfg := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	}
	if baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Gemini{client: client, model: model}, nil
}

func (g *Gemini) Name() string { return "gemini" }

func (g *Gemini) Stream(ctx context.Context, req Request) (Stream, error) {
	seq := g.client.Models.GenerateContentStream(ctx, g.model, geminiContents(req), nil)
	next, stop := iter.Pull2(seq)
	return &geminiStream{next: next, stop: stop}, nil
}

func geminiContents(req Request) []*genai.Content {
	contents := make([]*genai.Content, 0, len(req.History)+1)
	for _, m := range req.History {
		role := genai.Role(genai.RoleUser)
		if m.Role == domain.RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(m.Content, role))
	}

	parts := make([]*genai.Part, 0, len(req.Payload))
	for _, p := range req.Payload {
		if p.IsText() {
			parts = append(parts, genai.NewPartFromText(p.Text))
			continue
		}
		parts = append(parts, genai.NewPartFromBytes(p.Data, p.MediaType))
	}
	return append(contents, genai.NewContentFromParts(parts, genai.RoleUser))
}

type geminiStream struct {
	next func() (*genai.GenerateContentResponse, error, bool)
	stop func()
	text string
	err  error
}

func (s *geminiStream) Next() bool {
	if s.err != nil {
		return false
	}
	for {
		resp, err, ok := s.next()
		if !ok {
			return false
		}
		if err != nil {
			s.err = err
			return false
		}
		if text := resp.Text(); text != "" {
			s.text = text
			return true
		}
	}
}

func (s *geminiStream) Text() string { return s.text }
func (s *geminiStream) Err() error   { return s.err }

func (s *geminiStream) Close() error {
	s.stop()
	return nil
}
