package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iftodebogdan/gitechdemo/engine/math"
	"github.com/iftodebogdan/gitechdemo/engine/renderer/backend"
	"github.com/iftodebogdan/gitechdemo/engine/renderer/metadata"
)

func newRenderState(t *testing.T) (*RenderState, *backend.Recorder) {
	t.Helper()
	rec := backend.NewRecorder()
	require.NoError(t, rec.Initialize(math.Vec2i{X: 64, Y: 64}))
	return NewRenderState(rec), rec
}

func TestRenderStateDefaults(t *testing.T) {
	rs, _ := newRenderState(t)

	assert.False(t, rs.ColorBlendEnabled())
	assert.Equal(t, metadata.BLEND_ONE, rs.ColorSrcBlend())
	assert.Equal(t, metadata.BLEND_ZERO, rs.ColorDstBlend())
	assert.Equal(t, metadata.ZB_ENABLED, rs.ZEnabled())
	assert.Equal(t, metadata.CMP_LESSEQUAL, rs.ZFunc())
	assert.True(t, rs.ZWriteEnabled())
	assert.Equal(t, metadata.CULL_CCW, rs.CullMode())
	assert.False(t, rs.StencilEnabled())
	assert.Equal(t, ^uint32(0), rs.StencilMask())
	assert.Equal(t, metadata.FILL_SOLID, rs.FillMode())
	assert.False(t, rs.ScissorEnabled())
	assert.False(t, rs.SRGBWriteEnabled())
	assert.Equal(t, metadata.COLOR_WRITE_ALL, rs.ColorWriteMask())
}

func TestRenderStateSettersPushToBackend(t *testing.T) {
	rs, rec := newRenderState(t)
	rec.Reset()

	require.True(t, rs.SetZFunc(metadata.CMP_ALWAYS))
	require.True(t, rs.SetColorWriteEnabled(false, false, false, false))

	calls := rec.Ops(backend.OP_SET_RENDER_STATE)
	require.Len(t, calls, 2)
	assert.Equal(t, metadata.RS_Z_FUNC.String(), calls[0].Label)
	assert.Equal(t, metadata.RS_COLOR_WRITE.String(), calls[1].Label)

	r, g, b, a := rs.ColorWriteEnabled()
	assert.False(t, r || g || b || a)
	assert.Equal(t, metadata.CMP_ALWAYS, rs.ZFunc())
}

func TestScopeRestoresOnEveryExitPath(t *testing.T) {
	rs, _ := newRenderState(t)
	before := rs.Snapshot()

	pass := func(early bool) {
		defer Save(rs).ColorBlend().ZWrite().ZFunc().ColorWrite().Scissor().SRGBWrite().Restore()

		rs.SetColorBlendEnabled(true)
		rs.SetColorSrcBlend(metadata.BLEND_SRCALPHA)
		rs.SetColorDstBlend(metadata.BLEND_INVSRCALPHA)
		rs.SetZWriteEnabled(false)
		if early {
			return
		}
		rs.SetZFunc(metadata.CMP_ALWAYS)
		rs.SetColorWriteEnabled(true, false, false, false)
		rs.SetScissorEnabled(true)
		rs.SetScissor(math.Vec2i{X: 16, Y: 16}, math.Vec2i{X: 16, Y: 0})
		rs.SetSRGBWriteEnabled(true)
	}

	pass(false)
	assert.Equal(t, before, rs.Snapshot())

	pass(true)
	assert.Equal(t, before, rs.Snapshot())
}

func TestScopeNests(t *testing.T) {
	rs, _ := newRenderState(t)

	outer := Save(rs).ColorBlend()
	rs.SetColorBlendEnabled(true)
	rs.SetColorDstBlend(metadata.BLEND_ONE)

	inner := Save(rs).ColorBlendEnabled()
	rs.SetColorBlendEnabled(false)
	inner.Restore()

	assert.True(t, rs.ColorBlendEnabled())
	assert.Equal(t, metadata.BLEND_ONE, rs.ColorDstBlend())

	outer.Restore()
	assert.False(t, rs.ColorBlendEnabled())
	assert.Equal(t, metadata.BLEND_ZERO, rs.ColorDstBlend())
}

func TestScopeAll(t *testing.T) {
	rs, _ := newRenderState(t)
	before := rs.Snapshot()

	scope := Save(rs).All()
	rs.SetCullMode(metadata.CULL_NONE)
	rs.SetStencilEnabled(true)
	rs.SetStencilPass(metadata.STENCIL_OP_REPLACE)
	rs.SetDepthBias(0.5)
	scope.Restore()

	assert.Equal(t, before, rs.Snapshot())
}

func TestSamplerState(t *testing.T) {
	rec := backend.NewRecorder()
	ss := NewSamplerState(rec)

	desc := metadata.SamplerDesc{
		Anisotropy:  8,
		MipLodBias:  -0.5,
		Filter:      metadata.SF_MIN_MAG_LINEAR_MIP_LINEAR,
		BorderColor: [4]float32{1, 1, 1, 1},
		AddressingU: metadata.SAM_BORDER,
		AddressingV: metadata.SAM_CLAMP,
		AddressingW: metadata.SAM_MIRROR,
		SRGBEnabled: true,
	}
	require.True(t, ss.SetFromDesc(3, desc))

	got, ok := ss.Desc(3)
	require.True(t, ok)
	assert.Equal(t, desc, got)
	assert.Equal(t, metadata.SF_MIN_MAG_LINEAR_MIP_LINEAR, ss.Filter(3))
	assert.True(t, ss.SRGBEnabled(3))

	require.True(t, ss.SetAddressingModeUVW(3, metadata.SAM_WRAP))
	u, v, w := ss.AddressingMode(3)
	assert.Equal(t, []metadata.SamplerAddressingMode{metadata.SAM_WRAP, metadata.SAM_WRAP, metadata.SAM_WRAP},
		[]metadata.SamplerAddressingMode{u, v, w})

	assert.False(t, ss.SetFilter(metadata.MAX_NUM_PSAMPLERS, metadata.SF_MIN_MAG_POINT_MIP_NONE))
	_, ok = ss.Desc(metadata.MAX_NUM_PSAMPLERS)
	assert.False(t, ok)

	ss.Reset()
	got, _ = ss.Desc(3)
	assert.Equal(t, metadata.DefaultSamplerDesc(), got)
}
