package domain

const (
	PartText PartType = "text"
	PartFile PartType = "file"
)

// ContentPart is one unit of model input. Text parts carry Text, file parts
// carry the raw bytes and their media type.
type ContentPart struct {
	Type      PartType
	Text      string
	Data      []byte
	MediaType MimeType
}

func TextPart(text string) ContentPart {
	return ContentPart{Type: PartText, Text: text}
}

func FilePart(data []byte, mediaType MimeType) ContentPart {
	return ContentPart{Type: PartFile, Data: data, MediaType: mediaType}
}

func (p ContentPart) IsText() bool { return p.Type == PartText }

// Payload is the ordered model input for a single turn.
type Payload []ContentPart
