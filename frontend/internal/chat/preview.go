package chat

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/itchan-dev/parley/shared/logger"
)

// ThumbnailSize is the longest side of a generated preview, in pixels.
const ThumbnailSize = 64

// PreviewRef is a thumbnail on disk. It must be released once the
// attachment is removed or sent, releasing twice is a no-op.
type PreviewRef struct {
	Path    string
	Encoded bool // false when Path is a raw copy of an undecodable image (svg)

	once    sync.Once
	onClose func(*PreviewRef)
}

func (p *PreviewRef) Release() {
	if p == nil {
		return
	}
	p.once.Do(func() {
		if err := os.Remove(p.Path); err != nil && !os.IsNotExist(err) {
			logger.Log.Warn("remove preview", "path", p.Path, "error", err)
		}
		if p.onClose != nil {
			p.onClose(p)
		}
	})
}

// Previews owns the directory preview files are written to.
type Previews struct {
	dir string

	mu   sync.Mutex
	refs map[*PreviewRef]struct{}
}

// NewPreviews creates a private temp dir for thumbnails.
func NewPreviews() (*Previews, error) {
	dir, err := os.MkdirTemp("", "parley-previews-")
	if err != nil {
		return nil, fmt.Errorf("create preview dir: %w", err)
	}
	return &Previews{dir: dir, refs: make(map[*PreviewRef]struct{})}, nil
}

func (p *Previews) Dir() string { return p.dir }

// Live returns how many previews are not yet released.
func (p *Previews) Live() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.refs)
}

// Acquire writes a thumbnail of f. Images that cannot be decoded are copied
// as they are.
func (p *Previews) Acquire(f File) (*PreviewRef, error) {
	src, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, err
	}

	ref := &PreviewRef{onClose: p.forget}
	img, _, decodeErr := image.Decode(bytes.NewReader(data))
	if decodeErr == nil {
		ref.Path = filepath.Join(p.dir, uuid.NewString()+".png")
		ref.Encoded = true
		err = writeThumbnail(ref.Path, img)
	} else {
		ref.Path = filepath.Join(p.dir, uuid.NewString()+filepath.Ext(f.Name()))
		err = os.WriteFile(ref.Path, data, 0o600)
	}
	if err != nil {
		os.Remove(ref.Path)
		return nil, err
	}

	p.mu.Lock()
	p.refs[ref] = struct{}{}
	p.mu.Unlock()
	return ref, nil
}

func (p *Previews) forget(ref *PreviewRef) {
	p.mu.Lock()
	delete(p.refs, ref)
	p.mu.Unlock()
}

// Close releases every outstanding preview and removes the directory.
func (p *Previews) Close() error {
	p.mu.Lock()
	refs := make([]*PreviewRef, 0, len(p.refs))
	for ref := range p.refs {
		refs = append(refs, ref)
	}
	p.mu.Unlock()

	for _, ref := range refs {
		ref.Release()
	}
	return os.RemoveAll(p.dir)
}

func writeThumbnail(path string, src image.Image) error {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w > ThumbnailSize || h > ThumbnailSize {
		if w >= h {
			h = max(1, h*ThumbnailSize/w)
			w = ThumbnailSize
		} else {
			w = max(1, w*ThumbnailSize/h)
			h = ThumbnailSize
		}
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)

	out, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	if err := png.Encode(out, dst); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
