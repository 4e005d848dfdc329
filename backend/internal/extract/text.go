package extract

import (
	"context"
	"fmt"

	"github.com/itchan-dev/parley/shared/logger"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Text decodes plain text, markdown, CSV and JSON as UTF-8. A BOM selects
// UTF-16 when present and invalid bytes become U+FFFD.
type Text struct{}

func (Text) Extract(_ context.Context, in Input) Result {
	return textResult(fmt.Sprintf("Attached file \"%s\" (%s):\n\n%s", in.Name, orDefault(in.MimeType, "text"), DecodeText(in.Data, in.Name)))
}

// DecodeText is best effort and always returns something printable.
func DecodeText(data []byte, name string) string {
	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	decoded, _, err := transform.Bytes(decoder, data)
	if err != nil {
		logger.Log.Warn("decode text attachment", "file", name, "error", err)
		return string(data)
	}
	return string(decoded)
}
