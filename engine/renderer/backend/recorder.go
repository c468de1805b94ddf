package backend

import (
	"fmt"
	"math"
	"sync"

	gmath "github.com/iftodebogdan/gitechdemo/engine/math"
	"github.com/iftodebogdan/gitechdemo/engine/renderer/metadata"
)

// Operation names recorded by the Recorder.
const (
	OP_BEGIN_FRAME          = "BeginFrame"
	OP_END_FRAME            = "EndFrame"
	OP_SWAP_BUFFERS         = "SwapBuffers"
	OP_CLEAR                = "Clear"
	OP_SET_VIEWPORT         = "SetViewport"
	OP_SET_SCISSOR          = "SetScissor"
	OP_SET_RENDER_STATE     = "SetRenderState"
	OP_SET_SAMPLER_STATE    = "SetSamplerState"
	OP_COMPILE_SHADER       = "CompileShader"
	OP_ENABLE_SHADER        = "EnableShader"
	OP_DISABLE_SHADER       = "DisableShader"
	OP_SET_SHADER_CONSTANT  = "SetShaderConstant"
	OP_BIND_TEXTURE         = "BindTexture"
	OP_UNBIND_TEXTURE       = "UnbindTexture"
	OP_BIND_RENDER_TARGET   = "BindRenderTarget"
	OP_UNBIND_RENDER_TARGET = "UnbindRenderTarget"
	OP_DRAW_VERTEX_BUFFER   = "DrawVertexBuffer"
	OP_RESIZE               = "Resize"
)

// Call is one recorded backend invocation.
type Call struct {
	Op     string
	Label  string
	Detail string
}

func (c Call) String() string {
	if c.Detail == "" {
		return fmt.Sprintf("%s(%s)", c.Op, c.Label)
	}
	return fmt.Sprintf("%s(%s; %s)", c.Op, c.Label, c.Detail)
}

/**
 * @brief A Null backend that records every call in order. Tests use it to
 * assert call sequences of the frame pipeline. Setting FailBeginFrame makes
 * BeginFrame report a lost device.
 */
type Recorder struct {
	*Null

	FailBeginFrame bool

	mutex sync.Mutex
	calls []Call
}

func NewRecorder() *Recorder {
	return &Recorder{Null: NewNull()}
}

func (r *Recorder) record(op, label, detail string) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.calls = append(r.calls, Call{Op: op, Label: label, Detail: detail})
}

func (r *Recorder) Kind() Kind {
	return KIND_RECORDER
}

// Calls returns a copy of everything recorded since the last Reset.
func (r *Recorder) Calls() []Call {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	out := make([]Call, len(r.calls))
	copy(out, r.calls)
	return out
}

// Ops returns the recorded calls matching any of the given operations, or
// every call when none is given.
func (r *Recorder) Ops(ops ...string) []Call {
	all := r.Calls()
	if len(ops) == 0 {
		return all
	}
	filter := make(map[string]struct{}, len(ops))
	for _, op := range ops {
		filter[op] = struct{}{}
	}
	out := make([]Call, 0, len(all))
	for _, c := range all {
		if _, ok := filter[c.Op]; ok {
			out = append(out, c)
		}
	}
	return out
}

func (r *Recorder) Count(op string) int {
	return len(r.Ops(op))
}

func (r *Recorder) Reset() {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.calls = r.calls[:0]
}

func (r *Recorder) Resize(backBufferSize gmath.Vec2i) {
	r.record(OP_RESIZE, "", fmt.Sprintf("%dx%d", backBufferSize.X, backBufferSize.Y))
	r.Null.Resize(backBufferSize)
}

func (r *Recorder) BeginFrame() bool {
	r.record(OP_BEGIN_FRAME, "", "")
	if r.FailBeginFrame {
		return false
	}
	return r.Null.BeginFrame()
}

func (r *Recorder) EndFrame() {
	r.record(OP_END_FRAME, "", "")
	r.Null.EndFrame()
}

func (r *Recorder) SwapBuffers() {
	r.record(OP_SWAP_BUFFERS, "", "")
}

func (r *Recorder) Clear(color gmath.Vec4, depth float32, stencil uint32) {
	r.record(OP_CLEAR, "", fmt.Sprintf("depth=%g stencil=%d", depth, stencil))
}

func (r *Recorder) SetViewport(size gmath.Vec2i, offset gmath.Vec2i) {
	r.record(OP_SET_VIEWPORT, "", fmt.Sprintf("%dx%d+%d+%d", size.X, size.Y, offset.X, offset.Y))
}

func (r *Recorder) SetScissor(size gmath.Vec2i, offset gmath.Vec2i) {
	r.record(OP_SET_SCISSOR, "", fmt.Sprintf("%dx%d+%d+%d", size.X, size.Y, offset.X, offset.Y))
}

func (r *Recorder) SetRenderState(kind metadata.RenderStateKind, value uint32) bool {
	r.record(OP_SET_RENDER_STATE, kind.String(), fmt.Sprint(value))
	return r.Null.SetRenderState(kind, value)
}

func (r *Recorder) SetSamplerState(slot uint32, kind metadata.SamplerStateKind, value uint32) bool {
	r.record(OP_SET_SAMPLER_STATE, fmt.Sprintf("s%d", slot), fmt.Sprintf("%d=%d", kind, value))
	return r.Null.SetSamplerState(slot, kind, value)
}

func (r *Recorder) CompileShader(kind metadata.ShaderProgramType, label, source, entryPoint, profile string) ([]metadata.ShaderConstant, error) {
	r.record(OP_COMPILE_SHADER, label, kind.String())
	return r.Null.CompileShader(kind, label, source, entryPoint, profile)
}

func (r *Recorder) EnableShader(kind metadata.ShaderProgramType, label string) {
	r.record(OP_ENABLE_SHADER, label, kind.String())
}

func (r *Recorder) DisableShader(kind metadata.ShaderProgramType) {
	r.record(OP_DISABLE_SHADER, "", kind.String())
}

func (r *Recorder) SetShaderConstant(kind metadata.ShaderProgramType, register metadata.RegisterType, registerIndex uint32, data []byte, registerCount uint32) bool {
	r.record(OP_SET_SHADER_CONSTANT, kind.String(), fmt.Sprintf("r%d:%d+%d", register, registerIndex, registerCount))
	return r.Null.SetShaderConstant(kind, register, registerIndex, data, registerCount)
}

func (r *Recorder) BindTexture(slot uint32, label string) {
	r.record(OP_BIND_TEXTURE, label, fmt.Sprintf("s%d", slot))
}

func (r *Recorder) UnbindTexture(slot uint32) {
	r.record(OP_UNBIND_TEXTURE, "", fmt.Sprintf("s%d", slot))
}

func (r *Recorder) BindRenderTarget(label string, colorBufferCount int, size gmath.Vec2i) {
	r.record(OP_BIND_RENDER_TARGET, label, fmt.Sprintf("%d %dx%d", colorBufferCount, size.X, size.Y))
}

func (r *Recorder) UnbindRenderTarget(label string) {
	r.record(OP_UNBIND_RENDER_TARGET, label, "")
}

func (r *Recorder) DrawVertexBuffer(label string, primitive metadata.PrimitiveType, vertexCount, primitiveCount uint32) {
	r.record(OP_DRAW_VERTEX_BUFFER, label, fmt.Sprintf("%d prims", primitiveCount))
}

// Float32Bits reverses the encoding used for float render states.
func Float32Bits(value uint32) float32 {
	return math.Float32frombits(value)
}
