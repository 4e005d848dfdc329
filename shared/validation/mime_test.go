package validation

import (
	"bytes"
	"io"
	"testing"

	"github.com/itchan-dev/parley/shared/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectMimeType(t *testing.T) {
	pdf := []byte("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n1 0 obj\n<<>>\nendobj\n")
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

	tests := []struct {
		name     string
		declared string
		filename string
		content  []byte
		want     string
	}{
		{name: "declared wins", declared: "text/csv", filename: "data.bin", want: "text/csv"},
		{name: "declared parameters dropped", declared: "text/plain; charset=utf-8", filename: "a", want: "text/plain"},
		{name: "markdown by extension", filename: "README.md", want: "text/markdown"},
		{name: "docx by extension", filename: "Report.DOCX", want: config.DocxMimeType},
		{name: "octet-stream falls through to extension", declared: "application/octet-stream", filename: "x.csv", want: "text/csv"},
		{name: "sniffed pdf", filename: "noext", content: pdf, want: "application/pdf"},
		{name: "sniffed png", declared: "application/octet-stream", filename: "blob", content: png, want: "image/png"},
		{name: "nothing known", filename: "noext", want: ""},
		{name: "binary garbage", filename: "noext", content: []byte{0x00, 0x01, 0x02, 0xff}, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var content io.ReadSeeker
			if tt.content != nil {
				content = bytes.NewReader(tt.content)
			}
			assert.Equal(t, tt.want, DetectMimeType(tt.declared, tt.filename, content))
		})
	}
}

func TestDetectMimeType_RewindsContent(t *testing.T) {
	content := bytes.NewReader([]byte("%PDF-1.4\nrest"))
	require.Equal(t, "application/pdf", DetectMimeType("", "file", content))

	all, err := io.ReadAll(content)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4\nrest", string(all))
}

func TestNormalizeMime(t *testing.T) {
	assert.Equal(t, "text/plain", NormalizeMime(" Text/Plain ; charset=UTF-8"))
	assert.Equal(t, "", NormalizeMime(""))
	assert.Equal(t, "image/png", NormalizeMime("image/png"))
}
