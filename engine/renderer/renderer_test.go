package renderer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iftodebogdan/gitechdemo/engine/core"
	"github.com/iftodebogdan/gitechdemo/engine/math"
	"github.com/iftodebogdan/gitechdemo/engine/renderer/backend"
	"github.com/iftodebogdan/gitechdemo/engine/renderer/metadata"
	"github.com/iftodebogdan/gitechdemo/engine/renderer/resources"
)

func TestNewBackend(t *testing.T) {
	b, err := NewBackend(backend.KIND_NULL)
	require.NoError(t, err)
	assert.Equal(t, backend.KIND_NULL, b.Kind())

	b, err = NewBackend(backend.KIND_RECORDER)
	require.NoError(t, err)
	assert.Equal(t, backend.KIND_RECORDER, b.Kind())

	_, err = NewBackend(backend.Kind(42))
	assert.Error(t, err)
}

func newTestRenderer(t *testing.T) (*Renderer, *backend.Recorder) {
	t.Helper()
	core.SetLogLevel(core.LogLevelError)
	rec := backend.NewRecorder()
	r := New(rec)
	require.NoError(t, r.Initialize(math.Vec2i{X: 800, Y: 600}))
	return r, rec
}

func TestFrameBracketing(t *testing.T) {
	r, rec := newTestRenderer(t)
	rec.Reset()

	require.True(t, r.BeginFrame())
	assert.False(t, r.BeginFrame(), "frames do not nest")
	r.EndFrame()
	r.SwapBuffers()
	assert.Equal(t, 2, rec.Count(backend.OP_BEGIN_FRAME))
	assert.Equal(t, 1, rec.Count(backend.OP_END_FRAME))
	assert.Equal(t, 1, rec.Count(backend.OP_SWAP_BUFFERS))

	rec.FailBeginFrame = true
	assert.False(t, r.BeginFrame())
}

func TestSetBackBufferSizeResizesDynamicTargets(t *testing.T) {
	r, rec := newTestRenderer(t)
	m := r.Resources()

	half, err := m.CreateRenderTarget(resources.RenderTargetDesc{
		Label:        "Half",
		ColorFormats: []metadata.PixelFormat{metadata.PIXEL_FORMAT_A8R8G8B8},
		WidthRatio:   0.5,
		HeightRatio:  0.5,
	})
	require.NoError(t, err)
	fixed, err := m.CreateRenderTarget(resources.RenderTargetDesc{
		Label:        "Fixed",
		ColorFormats: []metadata.PixelFormat{metadata.PIXEL_FORMAT_A8R8G8B8},
		Width:        256,
		Height:       256,
	})
	require.NoError(t, err)
	rec.Reset()

	r.SetBackBufferSize(math.Vec2i{X: 1024, Y: 512})
	assert.Equal(t, math.Vec2i{X: 1024, Y: 512}, r.BackBufferSize())
	require.Len(t, rec.Ops(backend.OP_RESIZE), 1)

	halfRT, err := m.RenderTarget(half)
	require.NoError(t, err)
	assert.Equal(t, math.Vec2i{X: 512, Y: 256}, halfRT.Size())
	fixedRT, err := m.RenderTarget(fixed)
	require.NoError(t, err)
	assert.Equal(t, math.Vec2i{X: 256, Y: 256}, fixedRT.Size())

	// Same size is a no-op.
	r.SetBackBufferSize(math.Vec2i{X: 1024, Y: 512})
	assert.Len(t, rec.Ops(backend.OP_RESIZE), 1)
}

func TestDrawVertexBufferSkipsEmpty(t *testing.T) {
	r, rec := newTestRenderer(t)
	rec.Reset()

	r.DrawVertexBuffer(nil)
	assert.Zero(t, rec.Count(backend.OP_DRAW_VERTEX_BUFFER))
}

func TestShutdownReleasesResources(t *testing.T) {
	r, _ := newTestRenderer(t)
	m := r.Resources()
	_, err := m.CreateRenderTarget(resources.RenderTargetDesc{
		Label:        "Target",
		ColorFormats: []metadata.PixelFormat{metadata.PIXEL_FORMAT_A8R8G8B8},
		DepthFormat:  metadata.PIXEL_FORMAT_D24S8,
		WidthRatio:   1,
		HeightRatio:  1,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, m.RenderTargetCount())
	assert.Equal(t, 2, m.TextureCount())

	require.NoError(t, r.Shutdown())
	assert.Zero(t, m.RenderTargetCount())
	assert.Zero(t, m.TextureCount())
	assert.False(t, r.BeginFrame(), "device is down")
}

func TestStateManagersAreReset(t *testing.T) {
	r, _ := newTestRenderer(t)
	before := r.RenderState().Snapshot()

	r.RenderState().SetColorBlendEnabled(true)
	require.NoError(t, r.Initialize(math.Vec2i{X: 800, Y: 600}))
	assert.Equal(t, before, r.RenderState().Snapshot())
}
