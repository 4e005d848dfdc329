package chat

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/itchan-dev/parley/shared/validation"
)

// File is a user-selected file. Open may be called more than once.
type File interface {
	Name() string
	Size() int64
	MimeType() string // "" when unknown
	Open() (io.ReadCloser, error)
}

// LocalFile is a file on disk picked by the terminal client.
type LocalFile struct {
	path     string
	size     int64
	mimeType string
}

// OpenLocalFile stats path and detects its type from the extension or,
// failing that, the content.
func OpenLocalFile(path string) (*LocalFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}

	return &LocalFile{
		path:     path,
		size:     info.Size(),
		mimeType: validation.DetectMimeType("", filepath.Base(path), f),
	}, nil
}

func (f *LocalFile) Name() string                 { return filepath.Base(f.path) }
func (f *LocalFile) Size() int64                  { return f.size }
func (f *LocalFile) MimeType() string             { return f.mimeType }
func (f *LocalFile) Open() (io.ReadCloser, error) { return os.Open(f.path) }
