package validation

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
)

// multipartOverhead covers form fields and part headers on top of the files.
const multipartOverhead = 1 << 20

// ValidateAndParseMultipart caps the body at maxSize and parses the form.
// Hitting the cap makes the server stop reading, clients that ignore the
// error see the connection reset.
func ValidateAndParseMultipart(r *http.Request, w http.ResponseWriter, maxSize int64) error {
	tooLarge := r.ContentLength > maxSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	// files above 32 MiB worth of memory go to temp files
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var maxErr *http.MaxBytesError
		if tooLarge || errors.As(err, &maxErr) {
			return fmt.Errorf("%w: body exceeds %s", ErrPayloadTooLarge, FormatSizeMB(maxSize))
		}
		return fmt.Errorf("failed to parse multipart form: %w", err)
	}
	return nil
}

// CalculateMaxRequestSize returns the body limit for totalFiles bytes of files.
func CalculateMaxRequestSize(totalFiles int64) int64 {
	return totalFiles + multipartOverhead
}

// FormatSizeMB renders bytes as whole MiB the way limits are shown to users ("5MB").
func FormatSizeMB(bytes int64) string {
	mb := float64(bytes) / (1024 * 1024)
	return strconv.FormatFloat(mb, 'f', -1, 64) + "MB"
}
