package pipeline

import (
	"github.com/iftodebogdan/gitechdemo/engine/math"
	"github.com/iftodebogdan/gitechdemo/engine/renderer/resources"
	"github.com/iftodebogdan/gitechdemo/engine/renderer/state"
)

// CascadeViewport returns the region of the shadow map atlas cascade c is
// rendered to. Cascades are tiled row by row in a perRow x perRow grid.
func CascadeViewport(c, perRow int, mapSize uint32) (size, offset math.Vec2i) {
	side := int32(mapSize) / int32(perRow)
	size = math.Vec2i{X: side, Y: side}
	offset = math.Vec2i{X: side * int32(c%perRow), Y: side * int32(c/perRow)}
	return size, offset
}

/**
 * @brief Renders the scene depth from the light once per cascade into its
 * tile of the shadow map atlas. Color writes are off; the scissor keeps
 * each cascade inside its tile.
 */
func (p *Pipeline) generateDirectionalShadowMap(_ []Pass) {
	rs := p.renderer.RenderState()
	scope := state.Save(rs).ColorWrite().Scissor()
	defer scope.Restore()

	rs.SetColorWriteEnabled(false, false, false, false)
	rs.SetScissorEnabled(true)

	rt := p.targets.ShadowMap
	rt.Enable()
	p.clear()

	for c := range p.ctx.CascadeLightWorldViewProj {
		size, offset := CascadeViewport(c, p.ctx.CascadesPerRow, p.config.Shadows.MapSize)
		p.renderer.SetViewport(size, offset)
		rs.SetScissor(size, offset)

		p.vs(SHADER_DEPTH_PASS).Matrix("f44WorldViewProjMat", p.ctx.CascadeLightWorldViewProj[c])
		p.enable(SHADER_DEPTH_PASS)
		p.drawScene()
		p.disable(SHADER_DEPTH_PASS)
	}

	p.disableTarget(rt)
}

// generateRSM captures flux, normals and depth of the scene as seen from the
// light, for the indirect lighting pass.
func (p *Pipeline) generateRSM(_ []Pass) {
	rt := p.targets.RSM
	rt.Enable()
	p.clear()

	vs := p.vs(SHADER_RSM_CAPTURE).
		Matrix("f44LightWorldViewProjMat", p.ctx.RSMWorldViewProj).
		Matrix("f44LightWorldViewMat", p.ctx.LightWorldView)
	vs.Enable()

	ps := p.ps(SHADER_RSM_CAPTURE)
	p.drawSceneStage(ps, func(material int) {
		ps.Texture("texDiffuse", p.materialTexture(resources.TEXTURE_KIND_DIFFUSE, material))
	})

	vs.Disable()
	p.disableTarget(rt)
}
