package extract

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/go-pdf/fpdf"
	"github.com/gomutex/godocx"
	"github.com/itchan-dev/parley/shared/config"
	"github.com/itchan-dev/parley/shared/domain"
	"github.com/itchan-dev/parley/shared/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPDF(t *testing.T, lines ...string) []byte {
	t.Helper()

	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetFont("Helvetica", "", 12)
	doc.AddPage()
	for _, line := range lines {
		doc.Cell(40, 10, line)
		doc.Ln(10)
	}

	var buf bytes.Buffer
	require.NoError(t, doc.Output(&buf))
	return buf.Bytes()
}

func newTestDocx(t *testing.T, paragraphs ...string) []byte {
	t.Helper()

	doc, err := godocx.NewDocument()
	require.NoError(t, err)
	for _, p := range paragraphs {
		doc.AddParagraph(p)
	}

	var buf bytes.Buffer
	_, err = doc.WriteTo(&buf)
	require.NoError(t, err)
	return buf.Bytes()
}

func TestImage(t *testing.T) {
	data := []byte{0x89, 'P', 'N', 'G', 1, 2, 3}
	res := Image{}.Extract(context.Background(), Input{Name: "a.png", MimeType: "image/png", Data: data})

	require.NotNil(t, res.Part)
	assert.Equal(t, domain.PartFile, res.Part.Type)
	assert.Equal(t, data, res.Part.Data)
	assert.Equal(t, "image/png", res.Part.MediaType)
	assert.Empty(t, res.Notes)
}

func TestText(t *testing.T) {
	tests := []struct {
		name string
		in   Input
		want string
	}{
		{
			name: "plain",
			in:   Input{Name: "notes.txt", MimeType: "text/plain", Data: []byte("hello")},
			want: "Attached file \"notes.txt\" (text/plain):\n\nhello",
		},
		{
			name: "utf8 bom stripped",
			in:   Input{Name: "a.csv", MimeType: "text/csv", Data: []byte("\xef\xbb\xbfa,b")},
			want: "Attached file \"a.csv\" (text/csv):\n\na,b",
		},
		{
			name: "utf16 with bom",
			in:   Input{Name: "w.txt", MimeType: "text/plain", Data: []byte{0xff, 0xfe, 'h', 0, 'i', 0}},
			want: "Attached file \"w.txt\" (text/plain):\n\nhi",
		},
		{
			name: "invalid bytes replaced",
			in:   Input{Name: "bad.md", MimeType: "text/markdown", Data: []byte("ok\xffok")},
			want: "Attached file \"bad.md\" (text/markdown):\n\nok�ok",
		},
		{
			name: "missing type",
			in:   Input{Name: "x", Data: []byte("{}")},
			want: "Attached file \"x\" (text):\n\n{}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Text{}.Extract(context.Background(), tt.in)
			require.NotNil(t, res.Part)
			assert.Equal(t, domain.PartText, res.Part.Type)
			assert.Equal(t, tt.want, res.Part.Text)
		})
	}
}

func TestPDF(t *testing.T) {
	t.Run("extracts text", func(t *testing.T) {
		data := newTestPDF(t, "Hello World")
		res := PDF{CharLimit: 20000}.Extract(context.Background(), Input{Name: "doc.pdf", MimeType: "application/pdf", Data: data})

		require.NotNil(t, res.Part)
		assert.True(t, strings.HasPrefix(res.Part.Text, "Attached PDF \"doc.pdf\" (application/pdf) extracted:\n\n"))
		assert.Contains(t, res.Part.Text, "Hello World")
		assert.False(t, res.Truncated)
		assert.Empty(t, res.Notes)
	})

	t.Run("no text layer yields a note", func(t *testing.T) {
		data := newTestPDF(t)
		res := PDF{CharLimit: 20000}.Extract(context.Background(), Input{Name: "scan.pdf", MimeType: "application/pdf", Data: data})

		assert.Nil(t, res.Part)
		assert.Equal(t, []string{"PDF \"scan.pdf\" contained no extractable text."}, res.Notes)
	})

	t.Run("long text truncated", func(t *testing.T) {
		data := newTestPDF(t, "Hello World")
		res := PDF{CharLimit: 5}.Extract(context.Background(), Input{Name: "long.pdf", MimeType: "application/pdf", Data: data})

		require.NotNil(t, res.Part)
		assert.True(t, res.Truncated)
		body, found := strings.CutPrefix(res.Part.Text, "Attached PDF \"long.pdf\" (application/pdf) extracted:\n\n")
		require.True(t, found)
		assert.Len(t, []rune(body), 5)
		assert.Equal(t, []string{"PDF \"long.pdf\" was truncated to keep the prompt compact."}, res.Notes)
	})

	t.Run("garbage is reported not returned", func(t *testing.T) {
		res := PDF{CharLimit: 10}.Extract(context.Background(), Input{Name: "broken.pdf", MimeType: "application/pdf", Data: []byte("not a pdf")})

		require.NotNil(t, res.Part)
		assert.Contains(t, res.Part.Text, "(Error extracting text)")
		assert.Contains(t, res.Part.Text, "broken.pdf")
	})
}

func TestDOCX(t *testing.T) {
	t.Run("extracts paragraphs", func(t *testing.T) {
		data := newTestDocx(t, "Hello Docx", "Second line")
		res := DOCX{}.Extract(context.Background(), Input{Name: "r.docx", MimeType: config.DocxMimeType, Data: data})

		require.NotNil(t, res.Part)
		assert.True(t, strings.HasPrefix(res.Part.Text, "FILE: r.docx\nTYPE: docx\n\n"))
		assert.Contains(t, res.Part.Text, "Hello Docx")
		assert.Contains(t, res.Part.Text, "Second line")
	})

	t.Run("empty document", func(t *testing.T) {
		data := newTestDocx(t)
		res := DOCX{}.Extract(context.Background(), Input{Name: "e.docx", Data: data})

		require.NotNil(t, res.Part)
		assert.Equal(t, "FILE: e.docx\nTYPE: docx\n\n(Empty document)", res.Part.Text)
	})

	t.Run("broken archive", func(t *testing.T) {
		res := DOCX{}.Extract(context.Background(), Input{Name: "b.docx", Data: []byte("PK nope")})

		require.NotNil(t, res.Part)
		assert.True(t, strings.HasPrefix(res.Part.Text, "FILE: b.docx\nTYPE: docx\n\n(Error extracting text): "))
	})
}

func TestSet(t *testing.T) {
	s := NewSet(config.DefaultUploads())
	for _, kind := range []validation.Kind{validation.KindImage, validation.KindTextLike, validation.KindPDF, validation.KindDOCX} {
		_, ok := s.For(kind)
		assert.True(t, ok, kind.String())
	}
	_, ok := s.For(validation.KindUnsupported)
	assert.False(t, ok)

	e, _ := s.For(validation.KindPDF)
	assert.Equal(t, PDF{CharLimit: 20000}, e)
}
