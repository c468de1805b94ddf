package backend

import (
	"sync"

	"github.com/iftodebogdan/gitechdemo/engine/math"
	"github.com/iftodebogdan/gitechdemo/engine/renderer/metadata"
)

// Null is a backend with no device. Shader sources are still reflected so
// the binding layer behaves as it would on a real device.
type Null struct {
	mutex          sync.Mutex
	backBufferSize math.Vec2i
	initialized    bool
	inFrame        bool
}

func NewNull() *Null {
	return &Null{}
}

func (n *Null) Kind() Kind {
	return KIND_NULL
}

func (n *Null) Initialize(backBufferSize math.Vec2i) error {
	n.mutex.Lock()
	defer n.mutex.Unlock()
	n.backBufferSize = backBufferSize
	n.initialized = true
	return nil
}

func (n *Null) Shutdown() error {
	n.mutex.Lock()
	defer n.mutex.Unlock()
	n.initialized = false
	return nil
}

func (n *Null) Resize(backBufferSize math.Vec2i) {
	n.mutex.Lock()
	defer n.mutex.Unlock()
	n.backBufferSize = backBufferSize
}

func (n *Null) BackBufferSize() math.Vec2i {
	n.mutex.Lock()
	defer n.mutex.Unlock()
	return n.backBufferSize
}

func (n *Null) BeginFrame() bool {
	if !n.initialized || n.inFrame {
		return false
	}
	n.inFrame = true
	return true
}

func (n *Null) EndFrame() {
	n.inFrame = false
}

func (n *Null) SwapBuffers() {}

func (n *Null) Clear(color math.Vec4, depth float32, stencil uint32) {}

func (n *Null) SetViewport(size math.Vec2i, offset math.Vec2i) {}

func (n *Null) SetScissor(size math.Vec2i, offset math.Vec2i) {}

func (n *Null) SetRenderState(kind metadata.RenderStateKind, value uint32) bool {
	return true
}

func (n *Null) SetSamplerState(slot uint32, kind metadata.SamplerStateKind, value uint32) bool {
	return slot < metadata.MAX_NUM_PSAMPLERS
}

func (n *Null) CompileShader(kind metadata.ShaderProgramType, label, source, entryPoint, profile string) ([]metadata.ShaderConstant, error) {
	return ReflectConstants(source)
}

func (n *Null) EnableShader(kind metadata.ShaderProgramType, label string) {}

func (n *Null) DisableShader(kind metadata.ShaderProgramType) {}

func (n *Null) SetShaderConstant(kind metadata.ShaderProgramType, register metadata.RegisterType, registerIndex uint32, data []byte, registerCount uint32) bool {
	return true
}

func (n *Null) BindTexture(slot uint32, label string) {}

func (n *Null) UnbindTexture(slot uint32) {}

func (n *Null) BindRenderTarget(label string, colorBufferCount int, size math.Vec2i) {}

func (n *Null) UnbindRenderTarget(label string) {}

func (n *Null) DrawVertexBuffer(label string, primitive metadata.PrimitiveType, vertexCount, primitiveCount uint32) {
}
