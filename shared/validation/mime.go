package validation

import (
	"io"
	"mime"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/itchan-dev/parley/shared/config"
	"github.com/itchan-dev/parley/shared/logger"
)

const octetStream = "application/octet-stream"

// extensions the standard table misses or maps differently across systems
var knownExtensions = map[string]string{
	".md":       "text/markdown",
	".markdown": "text/markdown",
	".csv":      "text/csv",
	".txt":      "text/plain",
	".json":     "application/json",
	".svg":      "image/svg+xml",
	".webp":     "image/webp",
	".pdf":      "application/pdf",
	".docx":     config.DocxMimeType,
}

// DetectMimeType resolves the type of a file: the declared type when it is
// specific, then the extension, then a sniff of the content. content may be
// nil and is rewound after sniffing. Returns "" when nothing matched.
func DetectMimeType(declared, filename string, content io.ReadSeeker) string {
	if t := NormalizeMime(declared); t != "" && t != octetStream {
		return t
	}
	if t := mimeFromExtension(filename); t != "" {
		return t
	}
	if content == nil {
		return ""
	}

	detected, err := mimetype.DetectReader(content)
	if _, seekErr := content.Seek(0, io.SeekStart); seekErr != nil {
		logger.Log.Warn("rewind after sniffing", "file", filename, "error", seekErr)
	}
	if err != nil {
		logger.Log.Debug("sniff mime type", "file", filename, "error", err)
		return ""
	}
	if t := NormalizeMime(detected.String()); t != octetStream {
		return t
	}
	return ""
}

// DetectFileHeaderMimeType is DetectMimeType for an uploaded multipart file.
func DetectFileHeaderMimeType(fileHeader *multipart.FileHeader) string {
	declared := fileHeader.Header.Get("Content-Type")
	if t := NormalizeMime(declared); t != "" && t != octetStream {
		return t
	}
	file, err := fileHeader.Open()
	if err != nil {
		return DetectMimeType(declared, fileHeader.Filename, nil)
	}
	defer file.Close()
	return DetectMimeType(declared, fileHeader.Filename, file)
}

func mimeFromExtension(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		return ""
	}
	if t, ok := knownExtensions[ext]; ok {
		return t
	}
	return NormalizeMime(mime.TypeByExtension(ext))
}
