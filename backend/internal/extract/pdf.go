package extract

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/itchan-dev/parley/shared/logger"
	"github.com/ledongthuc/pdf"
)

// PDF extracts the text layer of every page. Text longer than CharLimit
// runes is cut.
type PDF struct {
	CharLimit int
}

func (p PDF) Extract(ctx context.Context, in Input) Result {
	mimeType := orDefault(in.MimeType, "application/pdf")

	text, err := p.readText(ctx, in.Data)
	if err != nil {
		logger.Log.Warn("pdf extraction failed", "file", in.Name, "error", err)
		return textResult(fmt.Sprintf("Attached PDF \"%s\" (%s) extracted:\n\n(Error extracting text): %v", in.Name, mimeType, err))
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return Result{Notes: []string{fmt.Sprintf("PDF \"%s\" contained no extractable text.", in.Name)}}
	}

	res := Result{}
	if runes := []rune(text); p.CharLimit > 0 && len(runes) > p.CharLimit {
		text = string(runes[:p.CharLimit])
		res.Truncated = true
		res.Notes = append(res.Notes, fmt.Sprintf("PDF \"%s\" was truncated to keep the prompt compact.", in.Name))
	}
	res.Part = textResult(fmt.Sprintf("Attached PDF \"%s\" (%s) extracted:\n\n%s", in.Name, mimeType, text)).Part
	return res
}

// readText recovers from parser panics on malformed documents.
func (p PDF) readText(ctx context.Context, data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	var all strings.Builder
	total := reader.NumPage()
	for pageIndex := 1; pageIndex <= total; pageIndex++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		page := reader.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			logger.Log.Debug("skip unreadable pdf page", "page", pageIndex, "error", err)
			continue
		}
		all.WriteString(pageText)
		all.WriteString("\n")
	}
	return all.String(), nil
}
