package acquisition

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// ErrNoFrame means the camera feed has not produced a still yet.
var ErrNoFrame = errors.New("camera feed has no frame yet")

type FrameSource interface {
	Frame(ctx context.Context, facing Facing) ([]byte, error)
}

// FeedBuffer keeps the latest frame the browser pushed from its live camera feed.
type FeedBuffer struct {
	mu     sync.Mutex
	frame  []byte
	facing Facing
}

func NewFeedBuffer() *FeedBuffer {
	return &FeedBuffer{}
}

func (f *FeedBuffer) Push(facing Facing, frame []byte) {
	f.mu.Lock()
	f.frame = append([]byte(nil), frame...)
	f.facing = facing
	f.mu.Unlock()
}

// Frame returns the buffered still. A frame from the other camera does not count.
func (f *FeedBuffer) Frame(ctx context.Context, facing Facing) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.frame) == 0 || f.facing != facing {
		return nil, ErrNoFrame
	}
	return append([]byte(nil), f.frame...), nil
}

func (f *FeedBuffer) Reset() {
	f.mu.Lock()
	f.frame = nil
	f.mu.Unlock()
}

// DecodeDataURL decodes a base64 data url such as "data:image/jpeg;base64,...".
func DecodeDataURL(s string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(s), "data:")
	if !ok {
		return "", nil, fmt.Errorf("not a data url")
	}

	meta, encoded, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, fmt.Errorf("malformed data url")
	}

	mediaType, isBase64 := strings.CutSuffix(meta, ";base64")
	if !isBase64 {
		return "", nil, fmt.Errorf("data url is not base64 encoded")
	}
	if mediaType == "" {
		mediaType = "text/plain"
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", nil, fmt.Errorf("decoding data url: %w", err)
	}
	return mediaType, data, nil
}
