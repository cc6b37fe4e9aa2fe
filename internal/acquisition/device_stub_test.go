//go:build !gocv
// +build !gocv

package acquisition

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDeviceSource_DisabledWithoutTag(t *testing.T) {
	src, err := NewDeviceSource(0, 1)
	require.ErrorIs(t, err, errNoGocv)
	require.Nil(t, src)

	var d DeviceSource
	_, err = d.Frame(context.Background(), FacingEnvironment)
	require.ErrorIs(t, err, errNoGocv)
	require.NoError(t, d.Close())
}
