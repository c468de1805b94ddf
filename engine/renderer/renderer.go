package renderer

import (
	"fmt"

	"github.com/iftodebogdan/gitechdemo/engine/core"
	"github.com/iftodebogdan/gitechdemo/engine/math"
	"github.com/iftodebogdan/gitechdemo/engine/renderer/backend"
	"github.com/iftodebogdan/gitechdemo/engine/renderer/metadata"
	"github.com/iftodebogdan/gitechdemo/engine/renderer/resources"
	"github.com/iftodebogdan/gitechdemo/engine/renderer/state"
)

/**
 * @brief Ties a device backend to the state managers and the resource
 * registry. Everything the frame pipeline needs goes through here.
 */
type Renderer struct {
	backend      backend.Backend
	renderState  *state.RenderState
	samplerState *state.SamplerState
	resources    *resources.Manager
}

// NewBackend builds the backend of the requested kind.
func NewBackend(kind backend.Kind) (backend.Backend, error) {
	switch kind {
	case backend.KIND_NULL:
		return backend.NewNull(), nil
	case backend.KIND_RECORDER:
		return backend.NewRecorder(), nil
	}
	return nil, fmt.Errorf("unsupported backend kind %s", kind)
}

func New(b backend.Backend, opts ...resources.Option) *Renderer {
	r := &Renderer{backend: b}
	r.renderState = state.NewRenderState(b)
	r.samplerState = state.NewSamplerState(b)
	opts = append([]resources.Option{resources.WithSamplerState(r.samplerState)}, opts...)
	r.resources = resources.NewManager(b, opts...)
	return r
}

func (r *Renderer) Initialize(backBufferSize math.Vec2i) error {
	if err := r.backend.Initialize(backBufferSize); err != nil {
		return err
	}
	r.renderState.Reset()
	r.samplerState.Reset()
	core.LogInfo("renderer initialized (%s backend, %dx%d)", r.backend.Kind(), backBufferSize.X, backBufferSize.Y)
	return nil
}

// Shutdown releases every resource before shutting the device down.
func (r *Renderer) Shutdown() error {
	r.resources.ReleaseAll()
	return r.backend.Shutdown()
}

func (r *Renderer) Backend() backend.Backend {
	return r.backend
}

func (r *Renderer) RenderState() *state.RenderState {
	return r.renderState
}

func (r *Renderer) SamplerState() *state.SamplerState {
	return r.samplerState
}

func (r *Renderer) Resources() *resources.Manager {
	return r.resources
}

func (r *Renderer) BeginFrame() bool {
	return r.backend.BeginFrame()
}

func (r *Renderer) EndFrame() {
	r.backend.EndFrame()
}

func (r *Renderer) SwapBuffers() {
	r.backend.SwapBuffers()
}

func (r *Renderer) Clear(color math.Vec4, depth float32, stencil uint32) {
	r.backend.Clear(color, depth, stencil)
}

func (r *Renderer) SetViewport(size, offset math.Vec2i) {
	r.backend.SetViewport(size, offset)
}

func (r *Renderer) BackBufferSize() math.Vec2i {
	return r.backend.BackBufferSize()
}

// SetBackBufferSize resizes the device and every ratio sized render target.
func (r *Renderer) SetBackBufferSize(size math.Vec2i) {
	if size == r.backend.BackBufferSize() {
		return
	}
	r.backend.Resize(size)
	r.resources.Resize(uint32(size.X), uint32(size.Y))
}

// DrawVertexBuffer draws vb as a triangle list with the enabled shaders.
func (r *Renderer) DrawVertexBuffer(vb *resources.VertexBuffer) {
	if vb == nil || vb.ElementCount() == 0 {
		return
	}
	r.backend.DrawVertexBuffer(vb.Label(), metadata.PRIMITIVE_TRIANGLE_LIST, vb.ElementCount(), vb.PrimitiveCount())
}
