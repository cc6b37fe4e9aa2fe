package acquisition

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/kdimtricp/damagecheck/internal/metrics"
	"github.com/kdimtricp/damagecheck/internal/storage"
)

var ErrUnknownPreview = errors.New("unknown preview handle")

// PreviewHandle is a revocable reference used to show a not yet submitted image.
type PreviewHandle struct {
	ID string
}

type PreviewStore interface {
	Create(p Payload) (PreviewHandle, error)
	Open(h PreviewHandle) (io.ReadSeekCloser, string, error)
	Release(h PreviewHandle) error
	Outstanding() int
}

// BlobPreviews keeps preview bytes in a Storage and tracks which handles are live.
type BlobPreviews struct {
	store storage.Storage

	mu   sync.Mutex
	live map[string]string
}

func NewBlobPreviews(store storage.Storage) *BlobPreviews {
	return &BlobPreviews{
		store: store,
		live:  make(map[string]string),
	}
}

func (b *BlobPreviews) Create(p Payload) (PreviewHandle, error) {
	name, err := b.store.SaveFile(bytes.NewReader(p.Data), storage.FileInfo{
		Filename:    p.Filename,
		ContentType: p.ContentType,
		Size:        int64(len(p.Data)),
	})
	if err != nil {
		return PreviewHandle{}, fmt.Errorf("creating preview for %s: %w", p.Filename, err)
	}

	b.mu.Lock()
	b.live[name] = p.ContentType
	b.mu.Unlock()
	metrics.AddPreviewHandles(1)

	return PreviewHandle{ID: name}, nil
}

func (b *BlobPreviews) Open(h PreviewHandle) (io.ReadSeekCloser, string, error) {
	b.mu.Lock()
	contentType, ok := b.live[h.ID]
	b.mu.Unlock()
	if !ok {
		return nil, "", ErrUnknownPreview
	}

	f, err := b.store.OpenFile(h.ID)
	if err != nil {
		return nil, "", err
	}
	return f, contentType, nil
}

// Release is idempotent; releasing an unknown handle is a no-op.
func (b *BlobPreviews) Release(h PreviewHandle) error {
	b.mu.Lock()
	_, ok := b.live[h.ID]
	delete(b.live, h.ID)
	b.mu.Unlock()
	if !ok {
		return nil
	}
	metrics.AddPreviewHandles(-1)

	if err := b.store.DeleteFile(h.ID); err != nil {
		return fmt.Errorf("releasing preview %s: %w", h.ID, err)
	}
	return nil
}

func (b *BlobPreviews) Outstanding() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.live)
}
