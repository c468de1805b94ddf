package pipeline

import (
	"github.com/iftodebogdan/gitechdemo/engine/renderer/metadata"
	"github.com/iftodebogdan/gitechdemo/engine/renderer/resources"
)

// Every constant name any of the demo shaders may declare.
var shaderInputNames = []string{
	"f44WorldViewProjMat", "f44WorldViewMat", "texDiffuse", "texNormal", "bHasNormalMap",
	"texSpec", "bHasSpecMap", "fSpecIntensity", "f2HalfTexelOffset", "texDepthBuffer",
	"f44SkyViewProjMat", "texSkyTex", "texDiffuseBuffer", "fAmbientFactor", "f44InvProjMat",
	"texNormalBuffer", "texShadowMap", "fShadowDepthBias", "f2OneOverShadowMapSize", "f44ViewMat",
	"f44ScreenToLightViewMat", "f3LightDir", "fDiffuseFactor", "fSpecFactor",
	"bDebugCascades", "nCascadeCount", "nCascadesPerRow", "fCascadeNormSize", "f2CascadeBoundsMin",
	"f2CascadeBoundsMax", "f44CascadeProjMat", "fCascadeBlendSize", "texLightAccumulationBuffer", "poissonDisk",
	"f44LightWorldViewProjMat", "f44LightWorldViewMat", "texRSMFluxBuffer", "texRSMNormalBuffer", "texRSMDepthBuffer",
	"f3RSMKernel", "f44RSMProjMat", "f44RSMInvProjMat", "f44ViewToRSMViewMat", "fRSMIntensity",
	"fRSMKernelScale", "fSunRadius", "fSunBrightness", "texIndirectLightAccumulationBuffer", "bIsUpscalePass",
	"texLumaCalcInput", "bInitialLumaPass", "bFinalLumaPass", "texAvgLuma", "fExposureBias",
	"f2AvgLumaClamp", "texSource", "f2TexelSize", "fShoulderStrength", "fLinearStrength",
	"fLinearAngle", "fToeStrength", "fToeNumerator", "fToeDenominator", "fLinearWhite",
	"bLumaAdaptationPass", "fLumaAdaptSpeed", "fFrameTime", "texLumaTarget", "fBrightnessThreshold",
	"bApplyBrightnessFilter", "fBloomPower", "nKernel", "nDownsampleFactor", "fBloomStrength",
	"fGaussianKernel", "fFxaaSubpix", "fFxaaEdgeThreshold", "fFxaaEdgeThresholdMin",
	"fSSAOSampleRadius", "fSSAOIntensity", "fSSAOScale", "fSSAOBias", "bBlurPass",
	"f2TexSourceSize", "fFocalDepth", "fFocalLength", "fFStop", "fCoC",
	"fNearDofStart", "fNearDofFalloff", "fFarDofStart", "fFarDofFalloff", "bManualDof",
	"bDebugFocus", "bAutofocus", "f2FocusPoint", "fMaxBlur", "fHighlightThreshold",
	"fHighlightGain", "fBokehBias", "fBokehFringe", "bPentagonBokeh", "fPentagonFeather",
	"bUseNoise", "fNoiseAmount", "bBlurDepth", "fDepthBlurSize", "bVignetting",
	"fVignOut", "fVignIn", "fVignFade", "fZNear", "fZFar",
}

type lutKey struct {
	shader ShaderID
	stage  metadata.ShaderProgramType
	name   string
}

/**
 * @brief Precomputed input handles for every shader stage and every known
 * input name. Names a stage does not declare have no entry.
 */
type InputLUT struct {
	handles map[lutKey]resources.Handle[resources.InputDesc]
}

func NewInputLUT() *InputLUT {
	return &InputLUT{handles: make(map[lutKey]resources.Handle[resources.InputDesc])}
}

// Build (re)populates the entries of the given shaders.
func (l *InputLUT) Build(shaders ...*Shader) {
	for _, s := range shaders {
		for _, kind := range shaderStages {
			for _, name := range shaderInputNames {
				key := lutKey{shader: s.ID, stage: kind, name: name}
				delete(l.handles, key)
				if h, ok := s.Inputs[kind].InputHandle(name); ok {
					l.handles[key] = h
				}
			}
		}
	}
}

func (l *InputLUT) Lookup(shader ShaderID, stage metadata.ShaderProgramType, name string) (resources.Handle[resources.InputDesc], bool) {
	h, ok := l.handles[lutKey{shader: shader, stage: stage, name: name}]
	if !ok {
		return resources.None[resources.InputDesc](), false
	}
	return h, true
}

func (l *InputLUT) Len() int {
	return len(l.handles)
}
