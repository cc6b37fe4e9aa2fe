package acquisition

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeDataURL(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		mediaType string
		data      []byte
		wantErr   bool
	}{
		{
			name:      "jpeg",
			input:     "data:image/jpeg;base64,aGVsbG8=",
			mediaType: "image/jpeg",
			data:      []byte("hello"),
		},
		{
			name:      "no media type",
			input:     "data:;base64,aGVsbG8=",
			mediaType: "text/plain",
			data:      []byte("hello"),
		},
		{name: "missing scheme", input: "image/jpeg;base64,aGVsbG8=", wantErr: true},
		{name: "missing comma", input: "data:image/jpeg;base64", wantErr: true},
		{name: "not base64", input: "data:image/jpeg,hello", wantErr: true},
		{name: "bad payload", input: "data:image/jpeg;base64,!!!", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mediaType, data, err := DecodeDataURL(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.mediaType, mediaType)
			require.Equal(t, tt.data, data)
		})
	}
}

func TestFeedBuffer(t *testing.T) {
	ctx := context.Background()
	buf := NewFeedBuffer()

	_, err := buf.Frame(ctx, FacingEnvironment)
	require.ErrorIs(t, err, ErrNoFrame)

	frame := []byte("frame-1")
	buf.Push(FacingEnvironment, frame)
	frame[0] = 'X'

	got, err := buf.Frame(ctx, FacingEnvironment)
	require.NoError(t, err)
	require.Equal(t, []byte("frame-1"), got)

	_, err = buf.Frame(ctx, FacingUser)
	require.ErrorIs(t, err, ErrNoFrame)

	buf.Reset()
	_, err = buf.Frame(ctx, FacingEnvironment)
	require.ErrorIs(t, err, ErrNoFrame)
}

func TestFeedBuffer_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	buf := NewFeedBuffer()
	buf.Push(FacingUser, []byte("frame"))

	_, err := buf.Frame(ctx, FacingUser)
	require.ErrorIs(t, err, context.Canceled)
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("capture")
	require.NoError(t, err)
	require.Equal(t, ModeCapture, m)

	_, err = ParseMode("video")
	require.Error(t, err)
}
