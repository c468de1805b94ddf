package backend

import (
	"github.com/iftodebogdan/gitechdemo/engine/math"
	"github.com/iftodebogdan/gitechdemo/engine/renderer/metadata"
)

type Kind uint8

const (
	// Draws nothing, used for headless runs and tooling.
	KIND_NULL Kind = iota
	// Draws nothing and records every call, used by tests.
	KIND_RECORDER
)

func (k Kind) String() string {
	switch k {
	case KIND_NULL:
		return "NULL"
	case KIND_RECORDER:
		return "RECORDER"
	}
	return "UNKNOWN"
}

/**
 * @brief The device layer every renderer package talks to. Device objects are
 * identified by the debug label of the resource that owns them. Everything
 * except CompileShader must be called from the render thread.
 */
type Backend interface {
	Kind() Kind
	Initialize(backBufferSize math.Vec2i) error
	Shutdown() error
	Resize(backBufferSize math.Vec2i)
	BackBufferSize() math.Vec2i

	/** @brief Returns false when the device cannot render this frame (e.g. device lost). */
	BeginFrame() bool
	EndFrame()
	SwapBuffers()
	Clear(color math.Vec4, depth float32, stencil uint32)
	SetViewport(size math.Vec2i, offset math.Vec2i)
	SetScissor(size math.Vec2i, offset math.Vec2i)

	SetRenderState(kind metadata.RenderStateKind, value uint32) bool
	SetSamplerState(slot uint32, kind metadata.SamplerStateKind, value uint32) bool

	/** @brief Compiles a program and reflects its constant table in declaration order. */
	CompileShader(kind metadata.ShaderProgramType, label, source, entryPoint, profile string) ([]metadata.ShaderConstant, error)
	EnableShader(kind metadata.ShaderProgramType, label string)
	DisableShader(kind metadata.ShaderProgramType)
	SetShaderConstant(kind metadata.ShaderProgramType, register metadata.RegisterType, registerIndex uint32, data []byte, registerCount uint32) bool

	BindTexture(slot uint32, label string)
	UnbindTexture(slot uint32)
	BindRenderTarget(label string, colorBufferCount int, size math.Vec2i)
	UnbindRenderTarget(label string)
	DrawVertexBuffer(label string, primitive metadata.PrimitiveType, vertexCount, primitiveCount uint32)
}
