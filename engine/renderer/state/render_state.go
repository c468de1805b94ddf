package state

import (
	gomath "math"

	"github.com/iftodebogdan/gitechdemo/engine/math"
	"github.com/iftodebogdan/gitechdemo/engine/renderer/backend"
	"github.com/iftodebogdan/gitechdemo/engine/renderer/metadata"
)

type renderValues struct {
	alphaTestEnabled bool
	alphaTestFunc    metadata.Cmp
	alphaTestRef     float32

	colorBlendEnabled bool
	colorSrcBlend     metadata.Blend
	colorDstBlend     metadata.Blend
	blendFactor       math.Vec4

	cullMode metadata.Cull

	zEnabled      metadata.ZBuffer
	zFunc         metadata.Cmp
	zWriteEnabled bool

	colorWrite uint32

	slopeScaledDepthBias float32
	depthBias            float32

	stencilEnabled   bool
	stencilFunc      metadata.Cmp
	stencilRef       uint32
	stencilMask      uint32
	stencilWriteMask uint32
	stencilFail      metadata.StencilOp
	stencilZFail     metadata.StencilOp
	stencilPass      metadata.StencilOp

	fillMode metadata.Fill

	scissorEnabled bool
	scissorSize    math.Vec2i
	scissorOffset  math.Vec2i

	sRGBWriteEnabled bool
}

// Snapshot is a comparable copy of every render state value.
type Snapshot struct {
	values renderValues
}

/**
 * @brief Caches the fixed-function state of the device. Every setter pushes
 * the value to the backend and only updates the cache when the backend
 * accepts it. Only the render thread touches it.
 */
type RenderState struct {
	backend backend.Backend
	values  renderValues
}

func NewRenderState(b backend.Backend) *RenderState {
	rs := &RenderState{backend: b}
	rs.Reset()
	return rs
}

func boolValue(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

func floatValue(f float32) uint32 {
	return gomath.Float32bits(f)
}

// colorValue packs a normalized RGBA color into a D3D style ARGB dword.
func colorValue(c math.Vec4) uint32 {
	channel := func(v float32) uint32 {
		return uint32(math.Clamp(v, 0, 1)*255 + 0.5)
	}
	return channel(c.W)<<24 | channel(c.X)<<16 | channel(c.Y)<<8 | channel(c.Z)
}

func (rs *RenderState) push(kind metadata.RenderStateKind, value uint32) bool {
	return rs.backend.SetRenderState(kind, value)
}

/**
 * @brief Restores the defaults established after device creation: blending
 * off, z-test on with less-equal and writes on, counter-clockwise culling,
 * stencil off, solid fill, scissor off.
 */
func (rs *RenderState) Reset() {
	rs.SetColorBlendEnabled(false)
	rs.SetColorSrcBlend(metadata.BLEND_ONE)
	rs.SetColorDstBlend(metadata.BLEND_ZERO)
	rs.SetColorBlendFactor(math.Vec4{X: 1, Y: 1, Z: 1, W: 1})

	rs.SetAlphaTestEnabled(false)
	rs.SetAlphaTestFunc(metadata.CMP_ALWAYS)
	rs.SetAlphaTestRef(0)

	rs.SetCullMode(metadata.CULL_CCW)

	rs.SetZEnabled(metadata.ZB_ENABLED)
	rs.SetZFunc(metadata.CMP_LESSEQUAL)
	rs.SetZWriteEnabled(true)

	rs.SetColorWriteEnabled(true, true, true, true)

	rs.SetSlopeScaledDepthBias(0)
	rs.SetDepthBias(0)

	rs.SetStencilEnabled(false)
	rs.SetStencilFunc(metadata.CMP_ALWAYS)
	rs.SetStencilRef(0)
	rs.SetStencilMask(^uint32(0))
	rs.SetStencilWriteMask(^uint32(0))
	rs.SetStencilFail(metadata.STENCIL_OP_KEEP)
	rs.SetStencilZFail(metadata.STENCIL_OP_KEEP)
	rs.SetStencilPass(metadata.STENCIL_OP_KEEP)

	rs.SetFillMode(metadata.FILL_SOLID)

	rs.SetScissorEnabled(false)
	rs.SetSRGBWriteEnabled(false)
}

func (rs *RenderState) Snapshot() Snapshot {
	return Snapshot{values: rs.values}
}

// Alpha test

func (rs *RenderState) SetAlphaTestEnabled(enabled bool) bool {
	if !rs.push(metadata.RS_ALPHA_TEST_ENABLED, boolValue(enabled)) {
		return false
	}
	rs.values.alphaTestEnabled = enabled
	return true
}

func (rs *RenderState) AlphaTestEnabled() bool {
	return rs.values.alphaTestEnabled
}

func (rs *RenderState) SetAlphaTestFunc(fn metadata.Cmp) bool {
	if !rs.push(metadata.RS_ALPHA_TEST_FUNC, uint32(fn)) {
		return false
	}
	rs.values.alphaTestFunc = fn
	return true
}

func (rs *RenderState) AlphaTestFunc() metadata.Cmp {
	return rs.values.alphaTestFunc
}

// SetAlphaTestRef takes a reference value in [0, 1].
func (rs *RenderState) SetAlphaTestRef(ref float32) bool {
	if !rs.push(metadata.RS_ALPHA_TEST_REF, uint32(math.Clamp(ref, 0, 1)*255)) {
		return false
	}
	rs.values.alphaTestRef = ref
	return true
}

func (rs *RenderState) AlphaTestRef() float32 {
	return rs.values.alphaTestRef
}

// Color blending

func (rs *RenderState) SetColorBlendEnabled(enabled bool) bool {
	if !rs.push(metadata.RS_COLOR_BLEND_ENABLED, boolValue(enabled)) {
		return false
	}
	rs.values.colorBlendEnabled = enabled
	return true
}

func (rs *RenderState) ColorBlendEnabled() bool {
	return rs.values.colorBlendEnabled
}

func (rs *RenderState) SetColorSrcBlend(blend metadata.Blend) bool {
	if !rs.push(metadata.RS_COLOR_SRC_BLEND, uint32(blend)) {
		return false
	}
	rs.values.colorSrcBlend = blend
	return true
}

func (rs *RenderState) ColorSrcBlend() metadata.Blend {
	return rs.values.colorSrcBlend
}

func (rs *RenderState) SetColorDstBlend(blend metadata.Blend) bool {
	if !rs.push(metadata.RS_COLOR_DST_BLEND, uint32(blend)) {
		return false
	}
	rs.values.colorDstBlend = blend
	return true
}

func (rs *RenderState) ColorDstBlend() metadata.Blend {
	return rs.values.colorDstBlend
}

func (rs *RenderState) SetColorBlendFactor(factor math.Vec4) bool {
	if !rs.push(metadata.RS_BLEND_FACTOR, colorValue(factor)) {
		return false
	}
	rs.values.blendFactor = factor
	return true
}

func (rs *RenderState) ColorBlendFactor() math.Vec4 {
	return rs.values.blendFactor
}

// Culling

func (rs *RenderState) SetCullMode(mode metadata.Cull) bool {
	if !rs.push(metadata.RS_CULL_MODE, uint32(mode)) {
		return false
	}
	rs.values.cullMode = mode
	return true
}

func (rs *RenderState) CullMode() metadata.Cull {
	return rs.values.cullMode
}

// Depth buffer

func (rs *RenderState) SetZEnabled(mode metadata.ZBuffer) bool {
	if !rs.push(metadata.RS_Z_ENABLED, uint32(mode)) {
		return false
	}
	rs.values.zEnabled = mode
	return true
}

func (rs *RenderState) ZEnabled() metadata.ZBuffer {
	return rs.values.zEnabled
}

func (rs *RenderState) SetZFunc(fn metadata.Cmp) bool {
	if !rs.push(metadata.RS_Z_FUNC, uint32(fn)) {
		return false
	}
	rs.values.zFunc = fn
	return true
}

func (rs *RenderState) ZFunc() metadata.Cmp {
	return rs.values.zFunc
}

func (rs *RenderState) SetZWriteEnabled(enabled bool) bool {
	if !rs.push(metadata.RS_Z_WRITE_ENABLED, boolValue(enabled)) {
		return false
	}
	rs.values.zWriteEnabled = enabled
	return true
}

func (rs *RenderState) ZWriteEnabled() bool {
	return rs.values.zWriteEnabled
}

// Color writes

func (rs *RenderState) SetColorWriteEnabled(red, green, blue, alpha bool) bool {
	var mask uint32
	if red {
		mask |= metadata.COLOR_WRITE_RED
	}
	if green {
		mask |= metadata.COLOR_WRITE_GREEN
	}
	if blue {
		mask |= metadata.COLOR_WRITE_BLUE
	}
	if alpha {
		mask |= metadata.COLOR_WRITE_ALPHA
	}
	return rs.SetColorWriteMask(mask)
}

func (rs *RenderState) SetColorWriteMask(mask uint32) bool {
	mask &= metadata.COLOR_WRITE_ALL
	if !rs.push(metadata.RS_COLOR_WRITE, mask) {
		return false
	}
	rs.values.colorWrite = mask
	return true
}

func (rs *RenderState) ColorWriteMask() uint32 {
	return rs.values.colorWrite
}

func (rs *RenderState) ColorWriteEnabled() (red, green, blue, alpha bool) {
	m := rs.values.colorWrite
	return m&metadata.COLOR_WRITE_RED != 0, m&metadata.COLOR_WRITE_GREEN != 0,
		m&metadata.COLOR_WRITE_BLUE != 0, m&metadata.COLOR_WRITE_ALPHA != 0
}

// Depth bias

func (rs *RenderState) SetSlopeScaledDepthBias(bias float32) bool {
	if !rs.push(metadata.RS_SLOPE_SCALED_DEPTH_BIAS, floatValue(bias)) {
		return false
	}
	rs.values.slopeScaledDepthBias = bias
	return true
}

func (rs *RenderState) SlopeScaledDepthBias() float32 {
	return rs.values.slopeScaledDepthBias
}

func (rs *RenderState) SetDepthBias(bias float32) bool {
	if !rs.push(metadata.RS_DEPTH_BIAS, floatValue(bias)) {
		return false
	}
	rs.values.depthBias = bias
	return true
}

func (rs *RenderState) DepthBias() float32 {
	return rs.values.depthBias
}

// Stencil

func (rs *RenderState) SetStencilEnabled(enabled bool) bool {
	if !rs.push(metadata.RS_STENCIL_ENABLED, boolValue(enabled)) {
		return false
	}
	rs.values.stencilEnabled = enabled
	return true
}

func (rs *RenderState) StencilEnabled() bool {
	return rs.values.stencilEnabled
}

func (rs *RenderState) SetStencilFunc(fn metadata.Cmp) bool {
	if !rs.push(metadata.RS_STENCIL_FUNC, uint32(fn)) {
		return false
	}
	rs.values.stencilFunc = fn
	return true
}

func (rs *RenderState) StencilFunc() metadata.Cmp {
	return rs.values.stencilFunc
}

func (rs *RenderState) SetStencilRef(ref uint32) bool {
	if !rs.push(metadata.RS_STENCIL_REF, ref) {
		return false
	}
	rs.values.stencilRef = ref
	return true
}

func (rs *RenderState) StencilRef() uint32 {
	return rs.values.stencilRef
}

func (rs *RenderState) SetStencilMask(mask uint32) bool {
	if !rs.push(metadata.RS_STENCIL_MASK, mask) {
		return false
	}
	rs.values.stencilMask = mask
	return true
}

func (rs *RenderState) StencilMask() uint32 {
	return rs.values.stencilMask
}

func (rs *RenderState) SetStencilWriteMask(mask uint32) bool {
	if !rs.push(metadata.RS_STENCIL_WRITE_MASK, mask) {
		return false
	}
	rs.values.stencilWriteMask = mask
	return true
}

func (rs *RenderState) StencilWriteMask() uint32 {
	return rs.values.stencilWriteMask
}

func (rs *RenderState) SetStencilFail(op metadata.StencilOp) bool {
	if !rs.push(metadata.RS_STENCIL_FAIL, uint32(op)) {
		return false
	}
	rs.values.stencilFail = op
	return true
}

func (rs *RenderState) StencilFail() metadata.StencilOp {
	return rs.values.stencilFail
}

func (rs *RenderState) SetStencilZFail(op metadata.StencilOp) bool {
	if !rs.push(metadata.RS_STENCIL_ZFAIL, uint32(op)) {
		return false
	}
	rs.values.stencilZFail = op
	return true
}

func (rs *RenderState) StencilZFail() metadata.StencilOp {
	return rs.values.stencilZFail
}

func (rs *RenderState) SetStencilPass(op metadata.StencilOp) bool {
	if !rs.push(metadata.RS_STENCIL_PASS, uint32(op)) {
		return false
	}
	rs.values.stencilPass = op
	return true
}

func (rs *RenderState) StencilPass() metadata.StencilOp {
	return rs.values.stencilPass
}

// Fill mode

func (rs *RenderState) SetFillMode(mode metadata.Fill) bool {
	if !rs.push(metadata.RS_FILL_MODE, uint32(mode)) {
		return false
	}
	rs.values.fillMode = mode
	return true
}

func (rs *RenderState) FillMode() metadata.Fill {
	return rs.values.fillMode
}

// Scissor test

func (rs *RenderState) SetScissorEnabled(enabled bool) bool {
	if !rs.push(metadata.RS_SCISSOR_ENABLED, boolValue(enabled)) {
		return false
	}
	rs.values.scissorEnabled = enabled
	return true
}

func (rs *RenderState) ScissorEnabled() bool {
	return rs.values.scissorEnabled
}

// SetScissor sets the scissor rectangle; it only has an effect while the
// scissor test is enabled.
func (rs *RenderState) SetScissor(size, offset math.Vec2i) bool {
	if size.X < 0 || size.Y < 0 {
		return false
	}
	rs.backend.SetScissor(size, offset)
	rs.values.scissorSize = size
	rs.values.scissorOffset = offset
	return true
}

func (rs *RenderState) Scissor() (size, offset math.Vec2i) {
	return rs.values.scissorSize, rs.values.scissorOffset
}

// sRGB

func (rs *RenderState) SetSRGBWriteEnabled(enabled bool) bool {
	if !rs.push(metadata.RS_SRGB_WRITE_ENABLED, boolValue(enabled)) {
		return false
	}
	rs.values.sRGBWriteEnabled = enabled
	return true
}

func (rs *RenderState) SRGBWriteEnabled() bool {
	return rs.values.sRGBWriteEnabled
}
