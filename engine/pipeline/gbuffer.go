package pipeline

import (
	"github.com/iftodebogdan/gitechdemo/engine/renderer/metadata"
	"github.com/iftodebogdan/gitechdemo/engine/renderer/resources"
	"github.com/iftodebogdan/gitechdemo/engine/renderer/state"
)

/**
 * @brief Fills the geometry buffer with albedo, specular power, normals and
 * depth. With the Z prepass enabled, depth is laid down first and the
 * material pass only shades the visible fragments.
 */
func (p *Pipeline) generateGBuffer(_ []Pass) {
	rs := p.renderer.RenderState()
	rt := p.targets.GBuffer
	rt.Enable()
	p.clear()

	scope := state.Save(rs).ZWrite().ZFunc()
	defer scope.Restore()

	if p.config.Scene.ZPrepass {
		colorWrite := state.Save(rs).ColorWrite()
		rs.SetColorWriteEnabled(false, false, false, false)

		p.vs(SHADER_DEPTH_PASS).Matrix("f44WorldViewProjMat", p.ctx.WorldViewProj)
		p.enable(SHADER_DEPTH_PASS)
		p.drawScene()
		p.disable(SHADER_DEPTH_PASS)

		colorWrite.Restore()
		rs.SetZWriteEnabled(false)
		rs.SetZFunc(metadata.CMP_EQUAL)
	}

	vs := p.vs(SHADER_GBUFFER_GENERATION).
		Matrix("f44WorldViewMat", p.ctx.WorldView).
		Matrix("f44WorldViewProjMat", p.ctx.WorldViewProj)
	vs.Enable()

	ps := p.ps(SHADER_GBUFFER_GENERATION)
	p.drawSceneStage(ps, func(material int) {
		normal := p.materialTexture(resources.TEXTURE_KIND_NORMAL, material)
		spec := p.materialTexture(resources.TEXTURE_KIND_SPECULAR, material)
		var shininess float32
		if m := p.model.Material(material); m != nil {
			shininess = m.ShininessStrength
		}
		ps.Texture("texDiffuse", p.materialTexture(resources.TEXTURE_KIND_DIFFUSE, material)).
			Texture("texNormal", normal).
			Bool("bHasNormalMap", normal.Valid()).
			Texture("texSpec", spec).
			Bool("bHasSpecMap", spec.Valid()).
			Float("fSpecIntensity", shininess)
	})

	vs.Disable()
	p.disableTarget(rt)
}

// copyDepthBuffer resolves the GBuffer depth into the depth surface of the
// light accumulation buffer, which must be active.
func (p *Pipeline) copyDepthBuffer() {
	rs := p.renderer.RenderState()
	scope := state.Save(rs).ColorWrite().ZWrite().ZFunc()
	defer scope.Restore()

	rs.SetColorWriteEnabled(false, false, false, false)
	rs.SetZWriteEnabled(true)
	rs.SetZFunc(metadata.CMP_ALWAYS)

	p.vs(SHADER_DEPTH_COPY).HalfTexel(p.targets.GBuffer)
	p.ps(SHADER_DEPTH_COPY).Texture("texDepthBuffer", p.targets.GBuffer.DepthBuffer())
	p.drawFullscreen(SHADER_DEPTH_COPY)
}

// drawSky draws the camera centered cube behind everything already in the
// depth buffer, with the sun disk in the light direction.
func (p *Pipeline) drawSky() {
	rs := p.renderer.RenderState()
	scope := state.Save(rs).ColorBlend().ZWrite().ZFunc()
	defer scope.Restore()

	rs.SetColorBlendEnabled(true)
	rs.SetColorSrcBlend(metadata.BLEND_ONE)
	rs.SetColorDstBlend(metadata.BLEND_ZERO)
	rs.SetZWriteEnabled(false)
	rs.SetZFunc(metadata.CMP_LESSEQUAL)

	p.vs(SHADER_SKYBOX).Matrix("f44SkyViewProjMat", p.ctx.SkyViewProj)
	p.ps(SHADER_SKYBOX).
		Texture("texSkyTex", p.skyTexture).
		Float3("f3LightDir", p.ctx.Light.Direction).
		Float("fSunRadius", p.config.Lighting.SunRadius).
		Float("fSunBrightness", p.config.Lighting.SunBrightness)

	p.enable(SHADER_SKYBOX)
	p.renderer.DrawVertexBuffer(p.skyCube)
	p.disable(SHADER_SKYBOX)
}
