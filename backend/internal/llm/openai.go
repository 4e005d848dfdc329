package llm

import (
	"context"
	"encoding/base64"
	"net/http"

	"github.com/itchan-dev/parley/shared/domain"
	openai "github.com/openai/openai-go"
	openaiopt "github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/ssestream"
	"github.com/openai/openai-go/shared"
)

type OpenAI struct {
	client openai.Client
	model  string
}

// NewOpenAI talks to api.openai.com or any compatible endpoint at baseURL.
// Retries are disabled: a failed call surfaces to the user as is.
func NewOpenAI(apiKey, baseURL, model string, httpClient *http.Client) *OpenAI {
	opts := []openaiopt.RequestOption{openaiopt.WithMaxRetries(0)}
	if apiKey != "" {
		opts = append(opts, openaiopt.WithAPIKey(apiKey))
	}
	if baseURL != "" {
		opts = append(opts, openaiopt.WithBaseURL(baseURL))
	}
	if httpClient != nil {
		opts = append(opts, openaiopt.WithHTTPClient(httpClient))
	}
	return &OpenAI{client: openai.NewClient(opts...), model: model}
}

func (o *OpenAI) Name() string { return "openai" }

func (o *OpenAI) Stream(ctx context.Context, req Request) (Stream, error) {
	params := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(o.model),
		Messages: openAIMessages(req),
	}
	return &openAIStream{stream: o.client.Chat.Completions.NewStreaming(ctx, params)}, nil
}

func openAIMessages(req Request) []openai.ChatCompletionMessageParamUnion {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.History)+1)
	for _, m := range req.History {
		switch m.Role {
		case domain.RoleAssistant:
			messages = append(messages, openai.ChatCompletionMessageParamUnion{
				OfAssistant: &openai.ChatCompletionAssistantMessageParam{
					Content: openai.ChatCompletionAssistantMessageParamContentUnion{OfString: openai.String(m.Content)},
				},
			})
		default:
			messages = append(messages, openai.ChatCompletionMessageParamUnion{
				OfUser: &openai.ChatCompletionUserMessageParam{
					Content: openai.ChatCompletionUserMessageParamContentUnion{OfString: openai.String(m.Content)},
				},
			})
		}
	}

	parts := make([]openai.ChatCompletionContentPartUnionParam, 0, len(req.Payload))
	for _, p := range req.Payload {
		parts = append(parts, openAIPart(p))
	}
	messages = append(messages, openai.ChatCompletionMessageParamUnion{
		OfUser: &openai.ChatCompletionUserMessageParam{
			Content: openai.ChatCompletionUserMessageParamContentUnion{OfArrayOfContentParts: parts},
		},
	})
	return messages
}

func openAIPart(p domain.ContentPart) openai.ChatCompletionContentPartUnionParam {
	if p.IsText() {
		return openai.ChatCompletionContentPartUnionParam{
			OfText: &openai.ChatCompletionContentPartTextParam{Text: p.Text},
		}
	}
	return openai.ChatCompletionContentPartUnionParam{
		OfImageURL: &openai.ChatCompletionContentPartImageParam{
			ImageURL: openai.ChatCompletionContentPartImageImageURLParam{URL: dataURL(p)},
		},
	}
}

func dataURL(p domain.ContentPart) string {
	return "data:" + p.MediaType + ";base64," + base64.StdEncoding.EncodeToString(p.Data)
}

type openAIStream struct {
	stream *ssestream.Stream[openai.ChatCompletionChunk]
	text   string
}

func (s *openAIStream) Next() bool {
	for s.stream.Next() {
		chunk := s.stream.Current()
		if len(chunk.Choices) == 0 || chunk.Choices[0].Delta.Content == "" {
			continue
		}
		s.text = chunk.Choices[0].Delta.Content
		return true
	}
	return false
}

func (s *openAIStream) Text() string { return s.text }
func (s *openAIStream) Err() error   { return s.stream.Err() }
func (s *openAIStream) Close() error { return s.stream.Close() }
