package validation

import (
	"mime"
	"strings"

	"github.com/itchan-dev/parley/shared/config"
)

// Kind is the processing category of a file.
type Kind int

const (
	KindUnsupported Kind = iota
	KindImage
	KindTextLike
	KindPDF
	KindDOCX
)

func (k Kind) String() string {
	switch k {
	case KindImage:
		return "image"
	case KindTextLike:
		return "text"
	case KindPDF:
		return "pdf"
	case KindDOCX:
		return "docx"
	default:
		return "unsupported"
	}
}

// Classifier maps MIME types to kinds using the configured lists.
type Classifier struct {
	kinds map[string]Kind
}

func NewClassifier(cfg config.Uploads) *Classifier {
	c := &Classifier{kinds: make(map[string]Kind)}
	c.add(KindImage, cfg.ImageMimeTypes)
	c.add(KindTextLike, cfg.TextMimeTypes)
	c.add(KindPDF, cfg.PDFMimeTypes)
	c.add(KindDOCX, cfg.DOCXMimeTypes)
	return c
}

func (c *Classifier) add(kind Kind, types []string) {
	for _, t := range types {
		if n := NormalizeMime(t); n != "" {
			c.kinds[n] = kind
		}
	}
}

// Classify never fails: empty or unknown types are KindUnsupported.
func (c *Classifier) Classify(mimeType string) Kind {
	return c.kinds[NormalizeMime(mimeType)]
}

// NormalizeMime lowercases and drops parameters: "Text/Plain; charset=utf-8" -> "text/plain".
func NormalizeMime(mimeType string) string {
	mimeType = strings.TrimSpace(mimeType)
	if mimeType == "" {
		return ""
	}
	if mediaType, _, err := mime.ParseMediaType(mimeType); err == nil {
		return mediaType
	}
	base, _, _ := strings.Cut(mimeType, ";")
	return strings.ToLower(strings.TrimSpace(base))
}
