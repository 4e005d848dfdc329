package extract

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/gonfva/docxlib"
	"github.com/itchan-dev/parley/shared/logger"
)

// DOCX collects the raw paragraph text: runs and hyperlink runs, one
// paragraph per line.
type DOCX struct{}

func (DOCX) Extract(_ context.Context, in Input) Result {
	text, err := readDocx(in.Data)
	if err != nil {
		logger.Log.Warn("docx extraction failed", "file", in.Name, "error", err)
		return textResult(fmt.Sprintf("FILE: %s\nTYPE: docx\n\n(Error extracting text): %v", in.Name, err))
	}
	if text == "" {
		text = "(Empty document)"
	}
	return textResult(fmt.Sprintf("FILE: %s\nTYPE: docx\n\n%s", in.Name, text))
}

// readDocx goes through a temp file since docxlib wants a sized file handle.
func readDocx(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed docx: %v", r)
		}
	}()

	tmp, err := os.CreateTemp("", "parley-*.docx")
	if err != nil {
		return "", fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	if _, err := tmp.Write(data); err != nil {
		return "", fmt.Errorf("failed to write temporary file: %w", err)
	}

	doc, err := docxlib.Parse(tmp, int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to parse DOCX: %w", err)
	}

	var lines []string
	for _, paragraph := range doc.Paragraphs() {
		var line strings.Builder
		for _, child := range paragraph.Children() {
			if child.Run != nil && child.Run.Text != nil {
				line.WriteString(child.Run.Text.Text)
			}
			if child.Link != nil && child.Link.Run.Text != nil {
				line.WriteString(child.Link.Run.Text.Text)
			}
		}
		if s := strings.TrimSpace(line.String()); s != "" {
			lines = append(lines, s)
		}
	}
	return strings.Join(lines, "\n"), nil
}
