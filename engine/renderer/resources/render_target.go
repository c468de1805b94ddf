package resources

import (
	"fmt"

	"github.com/iftodebogdan/gitechdemo/engine/core"
	"github.com/iftodebogdan/gitechdemo/engine/math"
	"github.com/iftodebogdan/gitechdemo/engine/renderer/metadata"
)

const MAX_COLOR_BUFFERS = 4

/**
 * @brief Creation parameters of a render target. A target with a non-zero
 * WidthRatio/HeightRatio is dynamic: its size follows the back buffer.
 */
type RenderTargetDesc struct {
	Label        string
	ColorFormats []metadata.PixelFormat
	/** @brief PIXEL_FORMAT_NONE for a target without depth buffer. */
	DepthFormat metadata.PixelFormat
	Width       uint32
	Height      uint32
	WidthRatio  float32
	HeightRatio float32
}

func (d RenderTargetDesc) IsDynamic() bool {
	return d.WidthRatio > 0 && d.HeightRatio > 0
}

type RenderTarget struct {
	manager      *Manager
	desc         RenderTargetDesc
	width        uint32
	height       uint32
	colorHandles []Handle[Texture]
	colors       []*Texture
	depthHandle  Handle[Texture]
	depth        *Texture
}

func (rt *RenderTarget) Label() string {
	return rt.desc.Label
}

func (rt *RenderTarget) IsDynamic() bool {
	return rt.desc.IsDynamic()
}

func (rt *RenderTarget) Width() uint32 {
	return rt.width
}

func (rt *RenderTarget) Height() uint32 {
	return rt.height
}

func (rt *RenderTarget) Size() math.Vec2i {
	return math.Vec2i{X: int32(rt.width), Y: int32(rt.height)}
}

func (rt *RenderTarget) ColorBufferCount() int {
	return len(rt.colors)
}

// ColorBuffer returns the handle of color surface i, or None when out of range.
func (rt *RenderTarget) ColorBuffer(i int) Handle[Texture] {
	if i < 0 || i >= len(rt.colorHandles) {
		return None[Texture]()
	}
	return rt.colorHandles[i]
}

func (rt *RenderTarget) ColorTexture(i int) *Texture {
	if i < 0 || i >= len(rt.colors) {
		return nil
	}
	return rt.colors[i]
}

func (rt *RenderTarget) DepthBuffer() Handle[Texture] {
	return rt.depthHandle
}

func (rt *RenderTarget) DepthTexture() *Texture {
	return rt.depth
}

func (rt *RenderTarget) HasDepthBuffer() bool {
	return rt.depth != nil
}

// IsActive reports whether rt is the target currently bound for drawing.
func (rt *RenderTarget) IsActive() bool {
	return rt.manager.ActiveRenderTarget() == rt
}

/**
 * @brief Makes rt the active render target and sets the viewport to its full
 * size. Any other active target is unbound first.
 */
func (rt *RenderTarget) Enable() {
	m := rt.manager
	m.activeMutex.Lock()
	defer m.activeMutex.Unlock()
	if m.activeTarget == rt {
		return
	}
	if m.activeTarget != nil {
		m.backend.UnbindRenderTarget(m.activeTarget.Label())
	}
	m.backend.BindRenderTarget(rt.Label(), len(rt.colors), rt.Size())
	m.backend.SetViewport(rt.Size(), math.Vec2i{})
	m.activeTarget = rt
}

/**
 * @brief Unbinds rt and returns drawing to the back buffer. Disabling a target
 * that is not active is an error.
 */
func (rt *RenderTarget) Disable() error {
	m := rt.manager
	m.activeMutex.Lock()
	defer m.activeMutex.Unlock()
	if m.activeTarget != rt {
		return fmt.Errorf("render target %s: %w", rt.Label(), core.ErrRenderTargetNotActive)
	}
	m.backend.UnbindRenderTarget(rt.Label())
	m.backend.SetViewport(m.backend.BackBufferSize(), math.Vec2i{})
	m.activeTarget = nil
	return nil
}

func (rt *RenderTarget) computeSize(backBuffer math.Vec2i) (uint32, uint32) {
	if !rt.desc.IsDynamic() {
		return rt.desc.Width, rt.desc.Height
	}
	w := uint32(float32(backBuffer.X) * rt.desc.WidthRatio)
	h := uint32(float32(backBuffer.Y) * rt.desc.HeightRatio)
	return max(w, 1), max(h, 1)
}

// resize reallocates the surfaces of a dynamic target. Fixed targets ignore it.
func (rt *RenderTarget) resize(backBuffer math.Vec2i) bool {
	if !rt.desc.IsDynamic() {
		return false
	}
	w, h := rt.computeSize(backBuffer)
	if w == rt.width && h == rt.height {
		return false
	}
	rt.width, rt.height = w, h
	for _, tex := range rt.colors {
		tex.allocate(w, h, 1, 1, tex.Usage())
	}
	if rt.depth != nil {
		rt.depth.allocate(w, h, 1, 1, rt.depth.Usage())
	}
	return true
}
