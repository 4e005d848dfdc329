package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"github.com/itchan-dev/parley/frontend/internal/chat"
	"github.com/itchan-dev/parley/shared/api"
	"github.com/itchan-dev/parley/shared/domain"
	"github.com/itchan-dev/parley/shared/logger"
)

var _ chat.Transport = (*APIClient)(nil)

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// Send posts a chat submission as multipart and returns the response
// unread. Files are streamed from disk, nothing is buffered whole.
func (c *APIClient) Send(ctx context.Context, prompt string, files []chat.File, history []domain.Message) (*http.Response, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		pw.CloseWithError(c.writeChatForm(mw, prompt, files, history))
	}()

	resp, err := c.do(ctx, http.MethodPost, "/api/chat", mw.FormDataContentType(), pr)
	if err != nil {
		pr.CloseWithError(err)
		return nil, err
	}
	return resp, nil
}

func (c *APIClient) writeChatForm(mw *multipart.Writer, prompt string, files []chat.File, history []domain.Message) error {
	if prompt != "" {
		if err := mw.WriteField(api.ChatFieldPrompt, prompt); err != nil {
			return err
		}
	}
	if c.SendHistory && len(history) > 0 {
		data, err := json.Marshal(history)
		if err != nil {
			return err
		}
		if err := mw.WriteField(api.ChatFieldHistory, string(data)); err != nil {
			return err
		}
	}
	for _, f := range files {
		if err := writeFilePart(mw, f); err != nil {
			logger.Log.Warn("attach file", "file", f.Name(), "error", err)
			return fmt.Errorf("attach %s: %w", f.Name(), err)
		}
	}
	return mw.Close()
}

func writeFilePart(mw *multipart.Writer, f chat.File) error {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		api.ChatFieldFiles, quoteEscaper.Replace(f.Name())))
	mimeType := f.MimeType()
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	h.Set("Content-Type", mimeType)

	part, err := mw.CreatePart(h)
	if err != nil {
		return err
	}
	src, err := f.Open()
	if err != nil {
		return err
	}
	defer src.Close()
	_, err = io.Copy(part, src)
	return err
}
