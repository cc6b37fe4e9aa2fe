//go:build !gocv
// +build !gocv

package acquisition

import (
	"context"
	"errors"
)

var errNoGocv = errors.New("gocv build tag is not enabled")

type DeviceSource struct{}

// NewDeviceSource fails when the binary is built without the gocv tag.
func NewDeviceSource(_, _ int) (*DeviceSource, error) {
	return nil, errNoGocv
}

func (d *DeviceSource) Frame(context.Context, Facing) ([]byte, error) {
	return nil, errNoGocv
}

func (d *DeviceSource) Close() error {
	return nil
}
