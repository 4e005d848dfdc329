package chat

import "sync"

// Batch holds the attachments selected for the next message.
type Batch struct {
	mu    sync.Mutex
	items []*Attachment
}

func (b *Batch) Add(attachments ...*Attachment) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.items = append(b.items, attachments...)
}

// Pending returns the attachments in selection order.
func (b *Batch) Pending() []*Attachment {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]*Attachment(nil), b.items...)
}

func (b *Batch) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items)
}

// TotalSize is the byte size of all pending files.
func (b *Batch) TotalSize() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	var total int64
	for _, a := range b.items {
		total += a.File.Size()
	}
	return total
}

// Remove drops one attachment and releases its preview.
func (b *Batch) Remove(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, a := range b.items {
		if a.ID == id {
			a.Preview.Release()
			b.items = append(b.items[:i], b.items[i+1:]...)
			return true
		}
	}
	return false
}

// Take hands the files over to a submission and empties the batch.
func (b *Batch) Take() []File {
	b.mu.Lock()
	defer b.mu.Unlock()
	files := make([]File, len(b.items))
	for i, a := range b.items {
		files[i] = a.File
		a.Preview.Release()
	}
	b.items = nil
	return files
}

// Close releases all previews without sending anything.
func (b *Batch) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, a := range b.items {
		a.Preview.Release()
	}
	b.items = nil
}
