package handler

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/itchan-dev/parley/backend/internal/llm"
	"github.com/itchan-dev/parley/backend/internal/service"
	"github.com/itchan-dev/parley/shared/api"
	"github.com/itchan-dev/parley/shared/config"
	"github.com/itchan-dev/parley/shared/domain"
	"github.com/itchan-dev/parley/shared/middleware"
	"github.com/stretchr/testify/require"
)

type MockAuthService struct {
	MockLogin func(creds domain.Credentials) (string, error)
}

func (m *MockAuthService) Login(creds domain.Credentials) (string, error) {
	return m.MockLogin(creds)
}

type MockChatService struct {
	MockStream func(ctx context.Context, in service.ChatInput) (llm.Stream, error)
}

func (m *MockChatService) Stream(ctx context.Context, in service.ChatInput) (llm.Stream, error) {
	return m.MockStream(ctx, in)
}

type MockHealthChecker struct {
	MockPing func(ctx context.Context) error
}

func (m *MockHealthChecker) Ping(ctx context.Context) error {
	return m.MockPing(ctx)
}

func testConfig() *config.Config {
	return &config.Config{
		Public: config.Public{
			SessionTTL: time.Hour,
			Uploads:    config.DefaultUploads(),
			Chat:       config.Chat{DefaultPrompt: config.DefaultPrompt},
		},
	}
}

func newTestHandler(auth service.AuthService, chat service.ChatService, health HealthChecker, cfg *config.Config) *Handler {
	if cfg == nil {
		cfg = testConfig()
	}
	return New(auth, chat, middleware.NewAuth(nil, false), health, cfg)
}

type formFile struct {
	name        string
	contentType string
	data        []byte
}

// newChatRequest builds the multipart body the clients send to /api/chat.
func newChatRequest(t *testing.T, prompt string, history string, files ...formFile) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	if prompt != "" {
		require.NoError(t, mw.WriteField(api.ChatFieldPrompt, prompt))
	}
	if history != "" {
		require.NoError(t, mw.WriteField(api.ChatFieldHistory, history))
	}
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="`+api.ChatFieldFiles+`"; filename="`+f.name+`"`)
		if f.contentType != "" {
			h.Set("Content-Type", f.contentType)
		}
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/chat", body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}
