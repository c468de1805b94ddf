package pipeline

import (
	"github.com/iftodebogdan/gitechdemo/engine/math"
	"github.com/iftodebogdan/gitechdemo/engine/renderer/metadata"
	"github.com/iftodebogdan/gitechdemo/engine/renderer/state"
)

/**
 * @brief Accumulates every light source additively into the light
 * accumulation buffer. The GBuffer depth is copied in first so the sky,
 * drawn last, only covers empty pixels.
 */
func (p *Pipeline) accumulateLight(children []Pass) {
	rs := p.renderer.RenderState()
	rt := p.targets.LightAccumulation
	rt.Enable()
	p.clear()
	p.copyDepthBuffer()

	scope := state.Save(rs).ColorBlend().ZWrite().ZFunc()
	rs.SetZWriteEnabled(false)
	rs.SetZFunc(metadata.CMP_ALWAYS)
	rs.SetColorBlendEnabled(true)
	rs.SetColorSrcBlend(metadata.BLEND_ONE)
	rs.SetColorDstBlend(metadata.BLEND_ONE)

	p.runPasses(children)

	scope.Restore()

	p.drawSky()
	p.disableTarget(rt)
}

func (p *Pipeline) accumulateAmbientLight(children []Pass) {
	gbuffer := p.targets.GBuffer
	p.vs(SHADER_DEFERRED_LIGHT_AMB).HalfTexel(gbuffer)
	p.ps(SHADER_DEFERRED_LIGHT_AMB).
		Texture("texDiffuseBuffer", gbuffer.ColorBuffer(0)).
		Float("fAmbientFactor", p.config.Lighting.AmbientFactor)
	p.drawFullscreen(SHADER_DEFERRED_LIGHT_AMB)

	p.runPasses(children)
}

/**
 * @brief Computes screen space ambient occlusion, blurs it and darkens the
 * ambient term already accumulated. The light accumulation buffer is
 * unbound meanwhile and rebound before returning.
 */
func (p *Pipeline) accumulateAmbientOcclusion(_ []Pass) {
	rs := p.renderer.RenderState()
	scope := state.Save(rs).ColorBlendEnabled()
	rs.SetColorBlendEnabled(false)

	active := p.renderer.Resources().ActiveRenderTarget()
	if active != nil {
		p.disableTarget(active)
	}

	p.calculateAmbientOcclusion()
	p.blurAmbientOcclusion()

	scope.Restore()
	if active != nil {
		active.Enable()
	}
	p.applyAmbientOcclusion()
}

func (p *Pipeline) calculateAmbientOcclusion() {
	rt := p.targets.AmbientOcclusion[0]
	gbuffer := p.targets.GBuffer
	cfg := p.config.SSAO
	rt.Enable()

	p.vs(SHADER_SSAO).HalfTexel(gbuffer)
	p.ps(SHADER_SSAO).
		Texture("texNormalBuffer", gbuffer.ColorBuffer(1)).
		Texture("texDepthBuffer", gbuffer.DepthBuffer()).
		Matrix("f44InvProjMat", p.ctx.InvProj).
		Float("fSSAOSampleRadius", cfg.SampleRadius).
		Float("fSSAOIntensity", cfg.Intensity).
		Float("fSSAOScale", cfg.Scale).
		Float("fSSAOBias", cfg.Bias).
		Bool("bBlurPass", false)
	p.drawFullscreen(SHADER_SSAO)

	p.disableTarget(rt)
}

// blurAmbientOcclusion ping-pongs between the two occlusion buffers once per
// blur kernel; the result ends up in buffer len(kernel) % 2.
func (p *Pipeline) blurAmbientOcclusion() {
	buffers := p.targets.AmbientOcclusion
	for i, kernel := range p.config.SSAO.BlurKernel {
		src, dst := buffers[i%2], buffers[(i+1)%2]
		dst.Enable()

		src.ColorTexture(0).SetFilter(metadata.SF_MIN_MAG_POINT_MIP_NONE)
		p.vs(SHADER_SSAO).HalfTexel(src)
		p.ps(SHADER_SSAO).
			Bool("bBlurPass", true).
			Texture("texSource", src.ColorBuffer(0)).
			Float2("f2TexelSize", texelSize(src)).
			Int("nKernel", kernel)
		p.drawFullscreen(SHADER_SSAO)

		p.disableTarget(dst)
	}
}

// applyAmbientOcclusion multiplies the active target by the occlusion term.
func (p *Pipeline) applyAmbientOcclusion() {
	rs := p.renderer.RenderState()
	defer state.Save(rs).ColorBlend().Restore()

	rs.SetColorBlendEnabled(true)
	rs.SetColorDstBlend(metadata.BLEND_INVSRCCOLOR)
	rs.SetColorSrcBlend(metadata.BLEND_ZERO)

	src := p.targets.AmbientOcclusion[len(p.config.SSAO.BlurKernel)%2]
	src.ColorTexture(0).SetFilter(metadata.SF_MIN_MAG_LINEAR_MIP_NONE)
	p.vs(SHADER_COLOR_COPY).HalfTexel(src)
	p.ps(SHADER_COLOR_COPY).Texture("texSource", src.ColorBuffer(0))
	p.drawFullscreen(SHADER_COLOR_COPY)
}

// accumulateDirectionalLight shades the sun with cascaded, PCF filtered shadows.
func (p *Pipeline) accumulateDirectionalLight(_ []Pass) {
	ctx := p.ctx
	cfg := p.config
	gbuffer := p.targets.GBuffer
	shadowMapSize := float32(cfg.Shadows.MapSize)

	p.vs(SHADER_DEFERRED_LIGHT_DIR).
		Matrix("f44InvProjMat", ctx.InvProj).
		HalfTexel(gbuffer)
	p.ps(SHADER_DEFERRED_LIGHT_DIR).
		Texture("texDiffuseBuffer", gbuffer.ColorBuffer(0)).
		Texture("texNormalBuffer", gbuffer.ColorBuffer(1)).
		Texture("texDepthBuffer", gbuffer.DepthBuffer()).
		Texture("texShadowMap", p.targets.ShadowMap.DepthBuffer()).
		Float("fShadowDepthBias", cfg.Shadows.DepthBias).
		Float2("f2OneOverShadowMapSize", math.NewVec2(1/shadowMapSize, 1/shadowMapSize)).
		Matrix("f44ViewMat", ctx.View).
		Matrix("f44ScreenToLightViewMat", ctx.ScreenToLightView).
		Float3("f3LightDir", ctx.Light.Direction).
		Float("fDiffuseFactor", cfg.Lighting.DiffuseFactor).
		Float("fSpecFactor", cfg.Lighting.SpecFactor).
		Bool("bDebugCascades", cfg.Shadows.DebugCascades).
		Int("nCascadeCount", int32(cfg.Shadows.NumCascades)).
		Int("nCascadesPerRow", int32(ctx.CascadesPerRow)).
		Float("fCascadeNormSize", ctx.CascadeNormSize).
		Float2Array("f2CascadeBoundsMin", ctx.CascadeBoundsMin).
		Float2Array("f2CascadeBoundsMax", ctx.CascadeBoundsMax).
		MatrixArray("f44CascadeProjMat", ctx.CascadeProj).
		Float("fCascadeBlendSize", cfg.Shadows.CascadeBlendSize).
		Float2Array("poissonDisk", ctx.PoissonDisk)
	p.drawFullscreen(SHADER_DEFERRED_LIGHT_DIR)
}

/**
 * @brief Gathers one bounce of indirect light from the reflective shadow
 * map. The kernel is split over several additive passes; in quarter
 * resolution mode they render into a half size buffer that a final pass
 * upscales into the active target.
 */
func (p *Pipeline) accumulateIndirectLight(_ []Pass) {
	ctx := p.ctx
	cfg := p.config
	gbuffer := p.targets.GBuffer
	rsm := p.targets.RSM
	indirect := p.targets.IndirectLightAccumulation

	active := p.renderer.Resources().ActiveRenderTarget()
	if cfg.RSM.QuarterRes {
		if active != nil {
			p.disableTarget(active)
		}
		indirect.Enable()
		p.clear()
	}

	p.vs(SHADER_RSM_APPLY).HalfTexel(gbuffer)
	ps := p.ps(SHADER_RSM_APPLY).
		HalfTexel(gbuffer).
		Texture("texRSMFluxBuffer", rsm.ColorBuffer(0)).
		Texture("texRSMNormalBuffer", rsm.ColorBuffer(1)).
		Texture("texRSMDepthBuffer", rsm.DepthBuffer()).
		Texture("texNormalBuffer", gbuffer.ColorBuffer(1)).
		Texture("texDepthBuffer", gbuffer.DepthBuffer()).
		Texture("texIndirectLightAccumulationBuffer", indirect.ColorBuffer(0)).
		Matrix("f44ScreenToLightViewMat", ctx.ScreenToLightView).
		Matrix("f44RSMProjMat", ctx.RSMProj).
		Matrix("f44RSMInvProjMat", ctx.RSMInvProj).
		Matrix("f44ViewToRSMViewMat", ctx.ViewToRSMView).
		Float("fRSMIntensity", cfg.RSM.Intensity).
		Float("fRSMKernelScale", cfg.RSM.KernelScale).
		Bool("bIsUpscalePass", false)

	spp := cfg.RSM.SamplesPerPass
	for pass := 0; pass < cfg.RSM.NumPasses; pass++ {
		ps.Float3Array("f3RSMKernel", ctx.RSMKernel[pass*spp:(pass+1)*spp])
		p.drawFullscreen(SHADER_RSM_APPLY)
	}

	if cfg.RSM.QuarterRes {
		p.disableTarget(indirect)
		if active != nil {
			active.Enable()
		}
		ps.Float3Array("f3RSMKernel", ctx.RSMKernel).
			Bool("bIsUpscalePass", true)
		p.drawFullscreen(SHADER_RSM_APPLY)
	}
}
