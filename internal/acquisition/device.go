//go:build gocv
// +build gocv

package acquisition

import (
	"context"
	"fmt"
	"sync"

	"gocv.io/x/gocv"
)

// DeviceSource reads stills from cameras attached to the host running the console.
type DeviceSource struct {
	devices map[Facing]int

	mu      sync.Mutex
	open    map[Facing]*gocv.VideoCapture
	quality int
}

// NewDeviceSource maps each facing to a local video device index.
func NewDeviceSource(backDevice, frontDevice int) (*DeviceSource, error) {
	return &DeviceSource{
		devices: map[Facing]int{
			FacingEnvironment: backDevice,
			FacingUser:        frontDevice,
		},
		open:    make(map[Facing]*gocv.VideoCapture),
		quality: 90,
	}, nil
}

func (d *DeviceSource) Frame(ctx context.Context, facing Facing) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	capture, err := d.capture(facing)
	if err != nil {
		return nil, err
	}

	mat := gocv.NewMat()
	defer mat.Close()

	if ok := capture.Read(&mat); !ok || mat.Empty() {
		return nil, ErrNoFrame
	}

	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, mat, []int{gocv.IMWriteJpegQuality, d.quality})
	if err != nil {
		return nil, fmt.Errorf("encoding frame: %w", err)
	}
	defer buf.Close()

	return append([]byte(nil), buf.GetBytes()...), nil
}

func (d *DeviceSource) capture(facing Facing) (*gocv.VideoCapture, error) {
	if c, ok := d.open[facing]; ok {
		return c, nil
	}

	id, ok := d.devices[facing]
	if !ok {
		return nil, fmt.Errorf("no device configured for %s camera", facing)
	}

	c, err := gocv.OpenVideoCapture(id)
	if err != nil {
		return nil, fmt.Errorf("opening video device %d: %w", id, err)
	}
	d.open[facing] = c
	return c, nil
}

func (d *DeviceSource) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	var firstErr error
	for facing, c := range d.open {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(d.open, facing)
	}
	return firstErr
}
