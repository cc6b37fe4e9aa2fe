package acquisition

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

type Mode string

const (
	ModeUpload  Mode = "upload"
	ModeCapture Mode = "capture"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeUpload, ModeCapture:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown acquisition mode %q", s)
}

type Facing string

const (
	FacingEnvironment Facing = "environment" // back camera
	FacingUser        Facing = "user"        // front camera
)

func (f Facing) Toggle() Facing {
	if f == FacingUser {
		return FacingEnvironment
	}
	return FacingUser
}

const (
	CaptureFilename    = "camera-capture.jpg"
	CaptureContentType = "image/jpeg"
)

// Payload is one image as it will be sent to the analysis backend.
type Payload struct {
	Filename    string
	ContentType string
	Data        []byte
}

type AcquiredImage struct {
	Payload
	Preview PreviewHandle
	Source  Mode
}

// Submitter settles one submission of the ordered payloads.
type Submitter func(ctx context.Context, images []Payload) error

// Component is the two-mode photo acquisition panel of one session.
type Component struct {
	previews PreviewStore
	frames   FrameSource
	log      *zap.Logger

	mu         sync.Mutex
	mode       Mode
	facing     Facing
	images     []AcquiredImage
	submitting bool
	// attempt identifies the pending submission; Abandon moves it on.
	attempt uint64
}

func NewComponent(previews PreviewStore, frames FrameSource, log *zap.Logger) *Component {
	return &Component{
		previews: previews,
		frames:   frames,
		log:      log.Named("acquisition"),
		mode:     ModeUpload,
		facing:   FacingEnvironment,
	}
}

func (c *Component) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

func (c *Component) Facing() Facing {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.facing
}

func (c *Component) Submitting() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.submitting
}

// Images returns the working set in selection order.
func (c *Component) Images() []AcquiredImage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]AcquiredImage(nil), c.images...)
}

// HasPreview reports whether the handle belongs to the current working set.
func (c *Component) HasPreview(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, img := range c.images {
		if img.Preview.ID == id {
			return true
		}
	}
	return false
}

// SetMode switches panels. Entering capture drops any pending upload selection;
// going back to upload keeps whatever is selected.
func (c *Component) SetMode(m Mode) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if m == c.mode {
		return
	}
	if m == ModeCapture {
		c.clearLocked()
	}
	c.mode = m
}

// SelectFiles replaces the working set with the given files. An empty call changes nothing.
func (c *Component) SelectFiles(files []Payload) error {
	if len(files) == 0 {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	return c.replaceLocked(files, ModeUpload)
}

// CaptureFrame takes one still from the live feed and makes it the whole selection.
// It returns false when there is nothing to capture yet.
func (c *Component) CaptureFrame(ctx context.Context) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.mode != ModeCapture {
		return false, nil
	}

	frame, err := c.frames.Frame(ctx, c.facing)
	if errors.Is(err, ErrNoFrame) || (err == nil && len(frame) == 0) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading camera frame: %w", err)
	}

	captured := Payload{
		Filename:    CaptureFilename,
		ContentType: CaptureContentType,
		Data:        frame,
	}
	if err := c.replaceLocked([]Payload{captured}, ModeCapture); err != nil {
		return false, err
	}
	c.mode = ModeUpload
	return true, nil
}

func (c *Component) SwitchFacing() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.mode != ModeCapture {
		return
	}
	c.facing = c.facing.Toggle()
}

func (c *Component) ClearSelection() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clearLocked()
}

// Submit hands the working set to submit unless it is empty or a submission is pending.
// The working set is released after a successful submission and kept for a retry otherwise.
// A submission abandoned meanwhile changes nothing when it returns.
func (c *Component) Submit(ctx context.Context, submit Submitter) (bool, error) {
	c.mu.Lock()
	if len(c.images) == 0 || c.submitting {
		c.mu.Unlock()
		return false, nil
	}
	c.submitting = true
	c.attempt++
	attempt := c.attempt
	payloads := make([]Payload, len(c.images))
	for i, img := range c.images {
		payloads[i] = img.Payload
	}
	submitted := c.images
	c.mu.Unlock()

	err := submit(ctx, payloads)

	c.mu.Lock()
	defer c.mu.Unlock()
	if attempt != c.attempt {
		return true, err
	}
	c.submitting = false

	if err == nil && sameSet(c.images, submitted) {
		c.clearLocked()
	}
	return true, err
}

// Abandon stops waiting on the pending submission so a new one can start right away.
func (c *Component) Abandon() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.attempt++
	c.submitting = false
}

// Close releases every preview handle still held.
func (c *Component) Close() {
	c.ClearSelection()
}

func (c *Component) replaceLocked(files []Payload, source Mode) error {
	next := make([]AcquiredImage, 0, len(files))
	for _, f := range files {
		h, err := c.previews.Create(f)
		if err != nil {
			for _, img := range next {
				c.release(img.Preview)
			}
			return err
		}
		next = append(next, AcquiredImage{Payload: f, Preview: h, Source: source})
	}

	c.clearLocked()
	c.images = next
	return nil
}

func (c *Component) clearLocked() {
	for _, img := range c.images {
		c.release(img.Preview)
	}
	c.images = nil
}

func (c *Component) release(h PreviewHandle) {
	if err := c.previews.Release(h); err != nil {
		c.log.Warn("failed to release preview", zap.String("preview", h.ID), zap.Error(err))
	}
}

func sameSet(a, b []AcquiredImage) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Preview != b[i].Preview {
			return false
		}
	}
	return true
}
