package chat

import (
	"bytes"
	"io"
)

type memFile struct {
	name     string
	mimeType string
	data     []byte
	size     int64 // overrides len(data) when set
}

func (f *memFile) Name() string     { return f.name }
func (f *memFile) MimeType() string { return f.mimeType }

func (f *memFile) Size() int64 {
	if f.size > 0 {
		return f.size
	}
	return int64(len(f.data))
}

func (f *memFile) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(f.data)), nil
}

const mib = 1024 * 1024
