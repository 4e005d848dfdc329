package compose

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/go-pdf/fpdf"
	"github.com/itchan-dev/parley/shared/config"
	"github.com/itchan-dev/parley/shared/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newComposer(t *testing.T) *Composer {
	t.Helper()
	uploads := config.DefaultUploads()
	uploads.ExtractWorkers = 2
	c, err := New(uploads, "")
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

func pending(name, mimeType string, data []byte) *domain.PendingFile {
	return &domain.PendingFile{
		FileCommonMetadata: domain.FileCommonMetadata{Filename: name, SizeBytes: int64(len(data)), MimeType: mimeType},
		Data:               bytes.NewReader(data),
	}
}

func blankPDF(t *testing.T) []byte {
	t.Helper()
	doc := fpdf.New("P", "mm", "A4", "")
	doc.AddPage()
	var buf bytes.Buffer
	require.NoError(t, doc.Output(&buf))
	return buf.Bytes()
}

type errReader struct{}

func (errReader) Read([]byte) (int, error) { return 0, errors.New("disk on fire") }

func TestCompose_ImageWithoutPrompt(t *testing.T) {
	c := newComposer(t)
	img := bytes.Repeat([]byte{0xAB}, 1234)

	payload, err := c.Compose(context.Background(), "", []*domain.PendingFile{pending("cat.png", "image/png", img)})
	require.NoError(t, err)

	require.Len(t, payload, 2)
	assert.Equal(t, domain.TextPart(config.DefaultPrompt), payload[0])
	assert.Equal(t, domain.PartFile, payload[1].Type)
	assert.Len(t, payload[1].Data, len(img))
	assert.Equal(t, "image/png", payload[1].MediaType)
}

func TestCompose_Ordering(t *testing.T) {
	c := newComposer(t)

	files := []*domain.PendingFile{
		pending("a.txt", "text/plain", []byte("first")),
		pending("b.zip", "application/zip", []byte("zip")),
		pending("c.png", "image/png", []byte("png")),
		pending("scan.pdf", "application/pdf", blankPDF(t)),
		pending("d.csv", "text/csv", []byte("x,y")),
		pending("e.bin", "", []byte{0}),
	}

	payload, err := c.Compose(context.Background(), "  summarize  ", files)
	require.NoError(t, err)

	require.Len(t, payload, 6)
	assert.Equal(t, "summarize", payload[0].Text)
	assert.Equal(t, "Attached file \"a.txt\" (text/plain):\n\nfirst", payload[1].Text)
	assert.Equal(t, domain.PartFile, payload[2].Type)
	assert.Equal(t, "Attached file \"d.csv\" (text/csv):\n\nx,y", payload[3].Text)
	assert.Equal(t, "⚠️ Note: The following files were ignored because they are not supported: b.zip (application/zip), e.bin (unknown).", payload[4].Text)
	assert.Equal(t, "Note: PDF \"scan.pdf\" contained no extractable text.", payload[5].Text)
}

func TestCompose_Empty(t *testing.T) {
	c := newComposer(t)

	tests := []struct {
		name   string
		prompt string
		files  []*domain.PendingFile
	}{
		{name: "nothing at all"},
		{name: "whitespace prompt", prompt: " \n\t"},
		{name: "only unsupported files", files: []*domain.PendingFile{pending("a.zip", "application/zip", []byte("z"))}},
		{name: "only notes", files: []*domain.PendingFile{pending("scan.pdf", "application/pdf", blankPDF(t))}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, err := c.Compose(context.Background(), tt.prompt, tt.files)
			assert.ErrorIs(t, err, ErrEmptyPayload)
			assert.Nil(t, payload)
		})
	}
}

func TestCompose_PromptOnly(t *testing.T) {
	c := newComposer(t)
	payload, err := c.Compose(context.Background(), "hello", nil)
	require.NoError(t, err)
	assert.Equal(t, domain.Payload{domain.TextPart("hello")}, payload)
}

func TestCompose_FailureIsolation(t *testing.T) {
	c := newComposer(t)

	files := []*domain.PendingFile{
		{FileCommonMetadata: domain.FileCommonMetadata{Filename: "gone.txt", MimeType: "text/plain"}, Data: errReader{}},
		pending("broken.pdf", "application/pdf", []byte("not a pdf")),
		pending("ok.md", "text/markdown", []byte("# hi")),
	}

	payload, err := c.Compose(context.Background(), "go", files)
	require.NoError(t, err)

	require.Len(t, payload, 4)
	assert.Contains(t, payload[1].Text, "(Error extracting text)")
	assert.Equal(t, "Attached file \"ok.md\" (text/markdown):\n\n# hi", payload[2].Text)
	assert.Equal(t, "Note: File \"gone.txt\" could not be read.", payload[3].Text)
}

func TestCompose_ManyFilesKeepSelectionOrder(t *testing.T) {
	c := newComposer(t)

	var files []*domain.PendingFile
	for i := 0; i < 40; i++ {
		files = append(files, pending(fmt.Sprintf("f%02d.txt", i), "text/plain", []byte(strings.Repeat("x", i))))
	}

	payload, err := c.Compose(context.Background(), "p", files)
	require.NoError(t, err)
	require.Len(t, payload, 41)
	for i := 0; i < 40; i++ {
		assert.True(t, strings.HasPrefix(payload[i+1].Text, fmt.Sprintf("Attached file \"f%02d.txt\"", i)))
	}
}

func TestCompose_Cancelled(t *testing.T) {
	c := newComposer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Compose(ctx, "p", []*domain.PendingFile{pending("a.txt", "text/plain", []byte("a"))})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPing(t *testing.T) {
	uploads := config.DefaultUploads()
	c, err := New(uploads, "custom")
	require.NoError(t, err)

	require.NoError(t, c.Ping(context.Background()))
	c.Close()
	assert.Error(t, c.Ping(context.Background()))
}

func TestCompose_CustomDefaultPrompt(t *testing.T) {
	uploads := config.DefaultUploads()
	c, err := New(uploads, "custom")
	require.NoError(t, err)
	defer c.Close()

	payload, err := c.Compose(context.Background(), "", []*domain.PendingFile{pending("a.png", "image/png", []byte{1})})
	require.NoError(t, err)
	assert.Equal(t, "custom", payload[0].Text)
}
