package pipeline

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iftodebogdan/gitechdemo/engine/core"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 128, cfg.RSMKernelSize())
}

func TestShippedConfigMatchesDefaults(t *testing.T) {
	cfg, err := LoadConfig("../../assets/config/gitechdemo.toml")
	require.NoError(t, err)

	expected := DefaultConfig()
	for i := range expected.Scene.CameraRotation {
		assert.InDelta(t, expected.Scene.CameraRotation[i].X, cfg.Scene.CameraRotation[i].X, 1e-6)
		assert.InDelta(t, expected.Scene.CameraRotation[i].Y, cfg.Scene.CameraRotation[i].Y, 1e-6)
		assert.InDelta(t, expected.Scene.CameraRotation[i].Z, cfg.Scene.CameraRotation[i].Z, 1e-6)
	}
	cfg.Scene.CameraRotation = expected.Scene.CameraRotation
	assert.Equal(t, expected, cfg)
}

func TestParseConfigOverlaysDefaults(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
post_processing = false

[shadows]
num_cascades = 2

[bloom]
blur_kernel = [1, 2]

[scene]
camera_position = { X = 1.0, Y = 2.0, Z = 3.0 }
`))
	require.NoError(t, err)

	assert.False(t, cfg.PostProcessing)
	assert.Equal(t, 2, cfg.Shadows.NumCascades)
	assert.Equal(t, []int32{1, 2}, cfg.Bloom.BlurKernel)
	assert.Equal(t, float32(2), cfg.Scene.CameraPosition.Y)
	// Untouched values keep their defaults.
	assert.Equal(t, DefaultConfig().Shadows.MapSize, cfg.Shadows.MapSize)
	assert.Equal(t, DefaultConfig().SSAO.BlurKernel, cfg.SSAO.BlurKernel)
}

func TestParseConfigErrors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		contains string
	}{
		{"too many cascades", "[shadows]\nnum_cascades = 10\n", "num_cascades"},
		{"no cascades", "[shadows]\nnum_cascades = 0\n", "num_cascades"},
		{"empty blur kernel", "[ssao]\nblur_kernel = []\n", "blur kernels"},
		{"clip range", "[scene]\nz_near = 10.0\nz_far = 5.0\n", "clip range"},
		{"adapt speed", "[hdr]\nluma_adapt_speed = 0.0\n", "luma_adapt_speed"},
		{"window size", "[app]\nwidth = 0\n", "window size"},
		{"malformed", "[shadows\n", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tt.input))
			require.Error(t, err)
			if tt.contains != "" {
				assert.Contains(t, err.Error(), tt.contains)
			}
		})
	}
}

func TestParseConfigRejectsUnknownKeys(t *testing.T) {
	_, err := ParseConfig([]byte("[app]\nbogus = 1\n"))
	var strict *toml.StrictMissingError
	require.True(t, errors.As(err, &strict))
	assert.Contains(t, strict.String(), "bogus")
}

func TestLoadConfigErrors(t *testing.T) {
	var loadErr *core.ResourceLoadError

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, core.LoadStageOpen, loadErr.Stage)

	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("[rsm]\nsize = 0\n"), 0o644))
	_, err = LoadConfig(path)
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, core.LoadStageDecode, loadErr.Stage)
	assert.Equal(t, path, loadErr.Path)
}
