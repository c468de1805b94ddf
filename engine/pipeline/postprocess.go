package pipeline

import (
	"github.com/iftodebogdan/gitechdemo/engine/math"
	"github.com/iftodebogdan/gitechdemo/engine/renderer/metadata"
	"github.com/iftodebogdan/gitechdemo/engine/renderer/resources"
	"github.com/iftodebogdan/gitechdemo/engine/renderer/state"
)

func (p *Pipeline) applyPostProcessing(children []Pass) {
	p.runPasses(children)
}

// hdrDownsample shrinks the HDR image by HDR_DOWNSAMPLE_FACTOR for the
// luminance measurement and bloom.
func (p *Pipeline) hdrDownsample(_ []Pass) {
	rt := p.targets.HDRDownsample
	src := p.targets.LightAccumulation
	rt.Enable()

	p.vs(SHADER_DOWNSAMPLE).HalfTexel(rt)
	p.ps(SHADER_DOWNSAMPLE).
		Float2("f2TexelSize", texelSize(src)).
		Texture("texSource", src.ColorBuffer(0)).
		Int("nDownsampleFactor", HDR_DOWNSAMPLE_FACTOR).
		Bool("bApplyBrightnessFilter", false)
	p.drawFullscreen(SHADER_DOWNSAMPLE)

	p.disableTarget(rt)
}

/* Depth of field */

func (p *Pipeline) depthOfField(_ []Pass) {
	p.calculateDoF()
	p.applyDoF()
}

func (p *Pipeline) dofTarget() *resources.RenderTarget {
	if p.config.DoF.QuarterRes {
		return p.targets.DoFQuarter
	}
	return p.targets.DoFFull
}

/**
 * @brief Renders the bokeh blurred image into the DoF buffer. The circle of
 * confusion comes from the GBuffer depth and the lens parameters, or from
 * the manual near/far ranges.
 */
func (p *Pipeline) calculateDoF() {
	rs := p.renderer.RenderState()
	cfg := p.config.DoF
	src := p.targets.LightAccumulation
	rt := p.dofTarget()
	rt.Enable()

	scope := state.Save(rs).ColorBlendEnabled()
	rs.SetColorBlendEnabled(false)

	p.vs(SHADER_BOKEH_DOF).HalfTexel(src)
	p.ps(SHADER_BOKEH_DOF).
		Texture("texSource", src.ColorBuffer(0)).
		Texture("texDepthBuffer", p.targets.GBuffer.DepthBuffer()).
		Float2("f2TexSourceSize", math.NewVec2(float32(src.Width()), float32(src.Height()))).
		Float2("f2TexelSize", texelSize(src)).
		Float("fZNear", p.config.Scene.ZNear).
		Float("fZFar", p.config.Scene.ZFar).
		Float("fFocalDepth", cfg.FocalDepth).
		Float("fFocalLength", cfg.FocalLength).
		Float("fFStop", cfg.FStop).
		Float("fCoC", cfg.CoC).
		Float("fNearDofStart", cfg.NearStart).
		Float("fNearDofFalloff", cfg.NearFalloff).
		Float("fFarDofStart", cfg.FarStart).
		Float("fFarDofFalloff", cfg.FarFalloff).
		Bool("bManualDof", cfg.ManualDoF).
		Bool("bDebugFocus", cfg.DebugFocus).
		Bool("bAutofocus", cfg.Autofocus).
		Float2("f2FocusPoint", cfg.FocusPoint).
		Float("fMaxBlur", cfg.MaxBlur).
		Float("fHighlightThreshold", cfg.HighlightThreshold).
		Float("fHighlightGain", cfg.HighlightGain).
		Float("fBokehBias", cfg.BokehBias).
		Float("fBokehFringe", cfg.BokehFringe).
		Bool("bPentagonBokeh", cfg.PentagonBokeh).
		Float("fPentagonFeather", cfg.PentagonFeather).
		Bool("bUseNoise", cfg.UseNoise).
		Float("fNoiseAmount", cfg.NoiseAmount).
		Bool("bBlurDepth", cfg.BlurDepth).
		Float("fDepthBlurSize", cfg.DepthBlurSize).
		Bool("bVignetting", cfg.Vignetting).
		Float("fVignOut", cfg.VignetteOut).
		Float("fVignIn", cfg.VignetteIn).
		Float("fVignFade", cfg.VignetteFade)
	p.drawFullscreen(SHADER_BOKEH_DOF)

	scope.Restore()
	p.disableTarget(rt)
}

// applyDoF copies the blurred image back over the HDR image. The quarter
// resolution result is alpha blended.
func (p *Pipeline) applyDoF() {
	rs := p.renderer.RenderState()
	dst := p.targets.LightAccumulation
	dst.Enable()

	scope := state.Save(rs).ColorBlend().ZWrite().ZFunc()
	if p.config.DoF.QuarterRes {
		rs.SetColorBlendEnabled(true)
		rs.SetColorDstBlend(metadata.BLEND_INVSRCALPHA)
		rs.SetColorSrcBlend(metadata.BLEND_SRCALPHA)
	}
	rs.SetZWriteEnabled(false)
	rs.SetZFunc(metadata.CMP_ALWAYS)

	p.vs(SHADER_COLOR_COPY).HalfTexel(dst)
	p.ps(SHADER_COLOR_COPY).Texture("texSource", p.dofTarget().ColorBuffer(0))
	p.drawFullscreen(SHADER_COLOR_COPY)

	scope.Restore()
	p.disableTarget(dst)
}

/* Bloom */

func (p *Pipeline) bloom(_ []Pass) {
	p.bloomDownsample()
	p.bloomBlur()
	p.bloomApply()
}

// bloomDownsample keeps the pixels above the brightness threshold.
func (p *Pipeline) bloomDownsample() {
	rt := p.targets.Bloom[0]
	src := p.targets.HDRDownsample
	rt.Enable()

	p.vs(SHADER_DOWNSAMPLE).HalfTexel(rt)
	p.ps(SHADER_DOWNSAMPLE).
		Float2("f2TexelSize", texelSize(src)).
		Texture("texSource", src.ColorBuffer(0)).
		Int("nDownsampleFactor", 1).
		Bool("bApplyBrightnessFilter", true).
		Float("fBrightnessThreshold", p.config.Bloom.BrightnessThreshold)
	p.drawFullscreen(SHADER_DOWNSAMPLE)

	p.disableTarget(rt)
}

func (p *Pipeline) bloomBlur() {
	buffers := p.targets.Bloom
	cfg := p.config.Bloom
	for i, kernel := range cfg.BlurKernel {
		src, dst := buffers[i%2], buffers[(i+1)%2]
		dst.Enable()

		src.ColorTexture(0).SetFilter(metadata.SF_MIN_MAG_POINT_MIP_NONE)
		p.vs(SHADER_BLOOM).HalfTexel(src)
		p.ps(SHADER_BLOOM).
			Texture("texSource", src.ColorBuffer(0)).
			Float2("f2TexelSize", texelSize(src)).
			Int("nKernel", kernel).
			Float("fBloomPower", cfg.Power).
			Float("fBloomStrength", cfg.Strength).
			FloatArray("fGaussianKernel", p.ctx.GaussianKernel)
		p.drawFullscreen(SHADER_BLOOM)

		p.disableTarget(dst)
	}
}

// bloomApply adds the blurred highlights onto the HDR image.
func (p *Pipeline) bloomApply() {
	rs := p.renderer.RenderState()
	dst := p.targets.LightAccumulation
	dst.Enable()

	scope := state.Save(rs).ColorBlend().ZWrite().ZFunc()
	rs.SetColorBlendEnabled(true)
	rs.SetColorDstBlend(metadata.BLEND_ONE)
	rs.SetColorSrcBlend(metadata.BLEND_ONE)
	rs.SetZWriteEnabled(false)
	rs.SetZFunc(metadata.CMP_ALWAYS)

	src := p.targets.Bloom[len(p.config.Bloom.BlurKernel)%2]
	src.ColorTexture(0).SetFilter(metadata.SF_MIN_MAG_LINEAR_MIP_NONE)
	p.vs(SHADER_COLOR_COPY).HalfTexel(src)
	p.ps(SHADER_COLOR_COPY).Texture("texSource", src.ColorBuffer(0))
	p.drawFullscreen(SHADER_COLOR_COPY)

	scope.Restore()
	p.disableTarget(dst)
}

/* Tone mapping */

func (p *Pipeline) toneMapping(_ []Pass) {
	p.luminanceMeasurement()

	rs := p.renderer.RenderState()
	cfg := p.config.HDR
	rt := p.targets.LDRToneMapped
	src := p.targets.LightAccumulation
	rt.Enable()

	scope := state.Save(rs).SRGBWrite()
	rs.SetSRGBWriteEnabled(true)

	p.vs(SHADER_HDR_TONE_MAPPING).HalfTexel(src)
	p.ps(SHADER_HDR_TONE_MAPPING).
		Texture("texLightAccumulationBuffer", src.ColorBuffer(0)).
		Texture("texAvgLuma", p.targets.AdaptedLuminance[p.ctx.AdaptedLumaCurrent].ColorBuffer(0)).
		Float("fExposureBias", cfg.ExposureBias).
		Float2("f2AvgLumaClamp", cfg.AvgLumaClamp).
		Float("fShoulderStrength", cfg.ShoulderStrength).
		Float("fLinearStrength", cfg.LinearStrength).
		Float("fLinearAngle", cfg.LinearAngle).
		Float("fToeStrength", cfg.ToeStrength).
		Float("fToeNumerator", cfg.ToeNumerator).
		Float("fToeDenominator", cfg.ToeDenominator).
		Float("fLinearWhite", cfg.LinearWhite)
	p.drawFullscreen(SHADER_HDR_TONE_MAPPING)

	scope.Restore()
	p.disableTarget(rt)
}

/**
 * @brief Reduces the downsampled HDR image to its average luminance through
 * the 64x64, 16x16, 4x4 and 1x1 targets, then eases the adapted luminance
 * towards it. The adapted targets swap every frame so the previous value is
 * always available as input.
 */
func (p *Pipeline) luminanceMeasurement() {
	avg := p.targets.AverageLuminance
	for i, rt := range avg {
		rt.Enable()

		src := p.targets.HDRDownsample
		if i > 0 {
			src = avg[i-1]
		}
		p.vs(SHADER_LUMA_CALC).HalfTexel(rt)
		p.ps(SHADER_LUMA_CALC).
			Float2("f2TexelSize", texelSize(src)).
			Texture("texLumaCalcInput", src.ColorBuffer(0)).
			Bool("bInitialLumaPass", i == 0).
			Bool("bFinalLumaPass", i == len(avg)-1).
			Bool("bLumaAdaptationPass", false)
		p.drawFullscreen(SHADER_LUMA_CALC)

		p.disableTarget(rt)
	}

	// Luminance adaptation
	adaptSpeed := p.config.HDR.LumaAdaptSpeed
	frameTime := math.Clamp(p.ctx.FrameTime, 0, 1/adaptSpeed)

	p.ctx.AdaptedLumaCurrent = p.ctx.AdaptedLumaPrevious()
	current := p.targets.AdaptedLuminance[p.ctx.AdaptedLumaCurrent]
	previous := p.targets.AdaptedLuminance[p.ctx.AdaptedLumaPrevious()]
	current.Enable()

	p.vs(SHADER_LUMA_CALC).HalfTexel(previous)
	p.ps(SHADER_LUMA_CALC).
		Texture("texLumaCalcInput", previous.ColorBuffer(0)).
		Texture("texLumaTarget", avg[len(avg)-1].ColorBuffer(0)).
		Bool("bInitialLumaPass", false).
		Bool("bFinalLumaPass", false).
		Bool("bLumaAdaptationPass", true).
		Float("fLumaAdaptSpeed", adaptSpeed).
		Float("fFrameTime", frameTime)
	p.drawFullscreen(SHADER_LUMA_CALC)

	p.disableTarget(current)
}

/* Anti-aliasing */

func (p *Pipeline) fxaa(_ []Pass) {
	rs := p.renderer.RenderState()
	cfg := p.config.FXAA
	rt := p.targets.LDRFxaa
	rt.Enable()

	scope := state.Save(rs).SRGBWrite()
	rs.SetSRGBWriteEnabled(true)

	src := p.targets.LightAccumulation
	if p.config.HDR.ToneMapping {
		src = p.targets.LDRToneMapped
	}
	p.vs(SHADER_FXAA).HalfTexel(src)
	p.ps(SHADER_FXAA).
		Texture("texSource", src.ColorBuffer(0)).
		Float2("f2TexelSize", texelSize(src)).
		Float("fFxaaSubpix", cfg.Subpix).
		Float("fFxaaEdgeThreshold", cfg.EdgeThreshold).
		Float("fFxaaEdgeThresholdMin", cfg.EdgeThresholdMin)
	p.drawFullscreen(SHADER_FXAA)

	scope.Restore()
	p.disableTarget(rt)
}

// copyResultToBackBuffer presents the final image with sRGB conversion.
func (p *Pipeline) copyResultToBackBuffer(_ []Pass) {
	rs := p.renderer.RenderState()
	defer state.Save(rs).SRGBWrite().ZWrite().ZFunc().Restore()

	rs.SetSRGBWriteEnabled(true)
	rs.SetZWriteEnabled(false)
	rs.SetZFunc(metadata.CMP_ALWAYS)

	src := p.finalImage()
	p.vs(SHADER_COLOR_COPY).HalfTexel(src)
	p.ps(SHADER_COLOR_COPY).Texture("texSource", src.ColorBuffer(0))
	p.drawFullscreen(SHADER_COLOR_COPY)
}
