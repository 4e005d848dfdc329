// Package extract turns uploaded files into model content parts.
package extract

import (
	"context"

	"github.com/itchan-dev/parley/shared/config"
	"github.com/itchan-dev/parley/shared/domain"
	"github.com/itchan-dev/parley/shared/validation"
)

type Input struct {
	Name     string
	MimeType domain.MimeType
	Data     []byte
}

// Result holds at most one part. A nil Part with notes is a normal outcome,
// e.g. a PDF without a text layer.
type Result struct {
	Part      *domain.ContentPart
	Notes     []domain.Note
	Truncated bool
}

// Extractor never returns an error: failures are reported inside the
// result so one bad file does not sink the others.
type Extractor interface {
	Extract(ctx context.Context, in Input) Result
}

// Set routes each supported kind to its extractor.
type Set struct {
	byKind map[validation.Kind]Extractor
}

func NewSet(cfg config.Uploads) *Set {
	return &Set{byKind: map[validation.Kind]Extractor{
		validation.KindImage:    Image{},
		validation.KindTextLike: Text{},
		validation.KindPDF:      PDF{CharLimit: cfg.PDFCharLimit},
		validation.KindDOCX:     DOCX{},
	}}
}

func (s *Set) For(kind validation.Kind) (Extractor, bool) {
	e, ok := s.byKind[kind]
	return e, ok
}

func textResult(text string) Result {
	part := domain.TextPart(text)
	return Result{Part: &part}
}

func orDefault(mimeType, fallback string) string {
	if mimeType == "" {
		return fallback
	}
	return mimeType
}
