package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv()
	require.NoError(t, err)

	require.Equal(t, ":8080", cfg.Server.Address)
	require.Equal(t, 30*time.Minute, cfg.Session.IdleTTL)
	require.Equal(t, "http://localhost:5000/api", cfg.Backend.URL)
	require.Equal(t, "sqlite", cfg.Database.Type)
	require.Equal(t, CameraBrowser, cfg.Camera.Source)

	base, err := cfg.MediaBase()
	require.NoError(t, err)
	require.Equal(t, "localhost:5000", base.Host)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("BACKEND_URL", "https://assess.example.com/api")
	t.Setenv("BACKEND_TIMEOUT", "45s")
	t.Setenv("DB_TYPE", "postgres")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("CAMERA_SOURCE", "device")
	t.Setenv("MEDIA_BASE_URL", "")

	cfg, err := FromEnv()
	require.NoError(t, err)
	require.Equal(t, 45*time.Second, cfg.Backend.Timeout)
	require.Equal(t, 6543, cfg.DB().Port)
	require.Equal(t, "postgres", cfg.DB().Type)
	require.Equal(t, CameraDevice, cfg.Camera.Source)

	base, err := cfg.MediaBase()
	require.NoError(t, err)
	require.Nil(t, base)
}

func TestFromEnv_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{name: "db type", key: "DB_TYPE", val: "mongo"},
		{name: "camera", key: "CAMERA_SOURCE", val: "webcam"},
		{name: "upload size", key: "MAX_UPLOAD_SIZE", val: "0"},
		{name: "backend url", key: "BACKEND_URL", val: "not a url"},
		{name: "duration", key: "SESSION_IDLE_TTL", val: "soon"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			_, err := FromEnv()
			require.Error(t, err)
		})
	}
}
