package pipeline

import (
	"fmt"
	"path"

	"github.com/iftodebogdan/gitechdemo/engine/core"
	"github.com/iftodebogdan/gitechdemo/engine/math"
	"github.com/iftodebogdan/gitechdemo/engine/renderer/metadata"
	"github.com/iftodebogdan/gitechdemo/engine/renderer/resources"
)

const (
	GAUSSIAN_KERNEL_SIZE      = 16
	HDR_DOWNSAMPLE_FACTOR     = 16
	AVG_LUMA_TARGET_COUNT     = 4
	FULLSCREEN_TRIANGLE_LABEL = "FullscreenTriangle"
	SKY_CUBE_LABEL            = "SkyCube"
)

var averageLuminanceSizes = [AVG_LUMA_TARGET_COUNT]uint32{64, 16, 4, 1}

/**
 * @brief Creates everything the frame needs, in order: the scene model and
 * its textures, the sky, the shaders and their input lookup table, the
 * sampling kernels, the render targets and the fullscreen geometry. Each
 * step is logged as a load event. Any failure aborts loading.
 */
func (p *Pipeline) AllocateRenderResources() error {
	steps := []struct {
		name string
		run  func() error
	}{
		{"Loading scene", p.loadScene},
		{"Loading textures", p.loadTextures},
		{"Loading shaders", p.loadShaders},
		{"Building shader input lookup table", p.buildInputLUT},
		{"Generating Poisson and Gaussian kernels", p.generateKernels},
		{"Allocating render targets", p.allocateRenderTargets},
		{"Creating fullscreen geometry", p.createGeometry},
	}
	for _, step := range steps {
		p.loadEvents.Push(step.name)
		if err := step.run(); err != nil {
			core.LogError("%s failed: %s", step.name, err)
			return err
		}
		elapsed := p.loadEvents.Pop()
		core.LogDebug("%s done in %s", step.name, elapsed)
	}
	p.allocated = true
	return nil
}

func (p *Pipeline) loadScene() error {
	m := p.renderer.Resources()
	h, err := m.CreateModel(p.config.Scene.Model)
	if err != nil {
		return err
	}
	if p.model, err = m.Model(h); err != nil {
		return err
	}
	p.ctx.SceneAABB = p.model.Bounds()
	return nil
}

// texturePreset is the sampler a material texture of the given kind starts with.
func texturePreset(kind resources.TextureKind) metadata.SamplerDesc {
	desc := metadata.DefaultSamplerDesc()
	desc.Anisotropy = 1
	desc.Filter = metadata.SF_MIN_MAG_LINEAR_MIP_LINEAR
	if kind == resources.TEXTURE_KIND_DIFFUSE {
		desc.SRGBEnabled = true
	}
	return desc
}

// loadTextures loads every texture the model materials reference, building
// a table from material index to texture per kind.
func (p *Pipeline) loadTextures() error {
	m := p.renderer.Resources()
	dir := path.Dir(p.config.Scene.Model)
	for kind := range p.materialTextures {
		p.materialTextures[kind] = make([]resources.Handle[resources.Texture], p.model.MaterialCount())
		for i := range p.materialTextures[kind] {
			p.materialTextures[kind][i] = resources.None[resources.Texture]()
		}
	}
	for i := 0; i < p.model.MaterialCount(); i++ {
		material := p.model.Material(i)
		for kind, file := range material.Textures {
			if file == "" {
				continue
			}
			h, err := m.CreateTextureFromFile(path.Join(dir, file), texturePreset(resources.TextureKind(kind)))
			if err != nil {
				return err
			}
			p.materialTextures[kind][i] = h
		}
	}

	sky := metadata.DefaultSamplerDesc()
	sky.Filter = metadata.SF_MIN_MAG_LINEAR_MIP_LINEAR
	h, err := m.CreateTextureFromFile(p.config.Scene.SkyTexture, sky)
	if err != nil {
		return err
	}
	p.skyTexture = h
	return nil
}

func (p *Pipeline) loadShaders() error {
	m := p.renderer.Resources()
	for id := ShaderID(0); id < SHADER_COUNT; id++ {
		s, err := loadShader(m, p.assets, id)
		if err != nil {
			return err
		}
		p.shaders[id] = s
	}
	return nil
}

func (p *Pipeline) buildInputLUT() error {
	p.lut.Build(p.shaders[:]...)
	core.LogDebug("shader input lookup table: %d entries", p.lut.Len())
	return nil
}

func (p *Pipeline) generateKernels() error {
	disk, err := math.PCFPoissonDisk(p.rng, p.config.Shadows.PCFKernelSize)
	if err != nil {
		return fmt.Errorf("pcf kernel: %w", err)
	}
	kernel, err := math.RSMKernel(p.rng, p.config.RSMKernelSize())
	if err != nil {
		return fmt.Errorf("rsm kernel: %w", err)
	}
	p.ctx.PoissonDisk = disk
	p.ctx.RSMKernel = kernel
	p.ctx.GaussianKernel = math.CreateGaussianFilter(GAUSSIAN_KERNEL_SIZE, math.DefaultGaussianStdDev)
	return nil
}

func (p *Pipeline) createTarget(desc resources.RenderTargetDesc) (*resources.RenderTarget, error) {
	m := p.renderer.Resources()
	h, err := m.CreateRenderTarget(desc)
	if err != nil {
		return nil, core.NewResourceLoadError(desc.Label, core.LoadStageCreate, err)
	}
	return m.RenderTarget(h)
}

func ratioTarget(label string, ratio float32, depth metadata.PixelFormat, colors ...metadata.PixelFormat) resources.RenderTargetDesc {
	return resources.RenderTargetDesc{Label: label, ColorFormats: colors, DepthFormat: depth, WidthRatio: ratio, HeightRatio: ratio}
}

func fixedTarget(label string, size uint32, depth metadata.PixelFormat, colors ...metadata.PixelFormat) resources.RenderTargetDesc {
	return resources.RenderTargetDesc{Label: label, ColorFormats: colors, DepthFormat: depth, Width: size, Height: size}
}

func (p *Pipeline) allocateRenderTargets() error {
	t := &p.targets
	cfg := p.config
	var err error
	create := func(dst **resources.RenderTarget, desc resources.RenderTargetDesc) {
		if err == nil {
			*dst, err = p.createTarget(desc)
		}
	}

	// GBuffer: albedo and specular power, compressed normals, sampleable depth.
	create(&t.GBuffer, ratioTarget("GBuffer", 1, metadata.PIXEL_FORMAT_INTZ, metadata.PIXEL_FORMAT_A8R8G8B8, metadata.PIXEL_FORMAT_G16R16F))
	// The color buffer of the shadow map is a dummy, only depth is sampled.
	create(&t.ShadowMap, fixedTarget("ShadowMapDir", cfg.Shadows.MapSize, metadata.PIXEL_FORMAT_INTZ, metadata.PIXEL_FORMAT_A8))
	create(&t.LightAccumulation, ratioTarget("LightAccumulationBuffer", 1, metadata.PIXEL_FORMAT_D24S8, metadata.PIXEL_FORMAT_A16B16G16R16F))
	create(&t.RSM, fixedTarget("RSMBuffer", cfg.RSM.Size, metadata.PIXEL_FORMAT_INTZ, metadata.PIXEL_FORMAT_A8R8G8B8, metadata.PIXEL_FORMAT_G16R16F))
	create(&t.IndirectLightAccumulation, ratioTarget("IndirectLightAccumulationBuffer", 0.5, metadata.PIXEL_FORMAT_NONE, metadata.PIXEL_FORMAT_A16B16G16R16F))
	create(&t.HDRDownsample, ratioTarget("HDRDownsampleBuffer", 0.25, metadata.PIXEL_FORMAT_NONE, metadata.PIXEL_FORMAT_A16B16G16R16F))
	for i, size := range averageLuminanceSizes {
		create(&t.AverageLuminance[i], fixedTarget(fmt.Sprintf("AverageLuminanceBuffer%d", i), size, metadata.PIXEL_FORMAT_NONE, metadata.PIXEL_FORMAT_R16F))
	}
	for i := range t.AdaptedLuminance {
		create(&t.AdaptedLuminance[i], fixedTarget(fmt.Sprintf("AdaptedLuminance%d", i), 1, metadata.PIXEL_FORMAT_NONE, metadata.PIXEL_FORMAT_R16F))
	}
	for i := range t.Bloom {
		create(&t.Bloom[i], ratioTarget(fmt.Sprintf("HDRBloomBuffer%d", i), 0.25, metadata.PIXEL_FORMAT_NONE, metadata.PIXEL_FORMAT_A16B16G16R16F))
	}
	create(&t.LDRToneMapped, ratioTarget("LDRToneMappedImageBuffer", 1, metadata.PIXEL_FORMAT_NONE, metadata.PIXEL_FORMAT_A8R8G8B8))
	create(&t.LDRFxaa, ratioTarget("LDRFxaaImageBuffer", 1, metadata.PIXEL_FORMAT_NONE, metadata.PIXEL_FORMAT_A8R8G8B8))
	for i := range t.AmbientOcclusion {
		create(&t.AmbientOcclusion[i], ratioTarget(fmt.Sprintf("AmbientOcclusionBuffer%d", i), 1, metadata.PIXEL_FORMAT_NONE, metadata.PIXEL_FORMAT_L8))
	}
	create(&t.DoFFull, ratioTarget("DepthOfFieldFullBuffer", 1, metadata.PIXEL_FORMAT_NONE, metadata.PIXEL_FORMAT_A16B16G16R16F))
	create(&t.DoFQuarter, ratioTarget("DepthOfFieldQuarterBuffer", 0.5, metadata.PIXEL_FORMAT_NONE, metadata.PIXEL_FORMAT_A16B16G16R16F))
	if err != nil {
		return err
	}

	t.GBuffer.ColorTexture(0).SetAddressingMode(metadata.SAM_CLAMP)
	t.GBuffer.ColorTexture(1).SetAddressingMode(metadata.SAM_CLAMP)
	t.GBuffer.DepthTexture().SetAddressingMode(metadata.SAM_CLAMP)

	t.ShadowMap.DepthTexture().SetAddressingMode(metadata.SAM_BORDER)
	t.ShadowMap.DepthTexture().SetBorderColor([4]float32{1, 1, 1, 1})

	t.LightAccumulation.ColorTexture(0).SetFilter(metadata.SF_MIN_MAG_POINT_MIP_NONE)
	t.LightAccumulation.ColorTexture(0).SetAddressingMode(metadata.SAM_CLAMP)

	t.RSM.ColorTexture(0).SetFilter(metadata.SF_MIN_MAG_LINEAR_MIP_NONE)
	t.RSM.ColorTexture(0).SetAddressingMode(metadata.SAM_BORDER)
	t.RSM.ColorTexture(0).SetBorderColor([4]float32{})
	t.RSM.ColorTexture(1).SetFilter(metadata.SF_MIN_MAG_LINEAR_MIP_NONE)
	t.RSM.DepthTexture().SetAddressingMode(metadata.SAM_BORDER)
	t.RSM.DepthTexture().SetBorderColor([4]float32{})

	t.IndirectLightAccumulation.ColorTexture(0).SetFilter(metadata.SF_MIN_MAG_LINEAR_MIP_NONE)
	t.HDRDownsample.ColorTexture(0).SetFilter(metadata.SF_MIN_MAG_POINT_MIP_NONE)
	for _, rt := range t.AverageLuminance {
		rt.ColorTexture(0).SetFilter(metadata.SF_MIN_MAG_POINT_MIP_NONE)
	}
	for _, rt := range t.AdaptedLuminance {
		rt.ColorTexture(0).SetFilter(metadata.SF_MIN_MAG_POINT_MIP_NONE)
	}
	for _, rt := range t.Bloom {
		rt.ColorTexture(0).SetFilter(metadata.SF_MIN_MAG_POINT_MIP_NONE)
		rt.ColorTexture(0).SetAddressingMode(metadata.SAM_CLAMP)
	}
	t.LDRToneMapped.ColorTexture(0).SetFilter(metadata.SF_MIN_MAG_LINEAR_MIP_NONE)
	t.LDRToneMapped.ColorTexture(0).SetSRGBEnabled(true)
	t.LDRFxaa.ColorTexture(0).SetFilter(metadata.SF_MIN_MAG_POINT_MIP_NONE)
	t.LDRFxaa.ColorTexture(0).SetSRGBEnabled(true)
	for _, rt := range t.AmbientOcclusion {
		rt.ColorTexture(0).SetFilter(metadata.SF_MIN_MAG_POINT_MIP_NONE)
	}
	for _, rt := range []*resources.RenderTarget{t.DoFFull, t.DoFQuarter} {
		rt.ColorTexture(0).SetFilter(metadata.SF_MIN_MAG_LINEAR_MIP_NONE)
		rt.ColorTexture(0).SetAddressingMode(metadata.SAM_CLAMP)
	}
	return nil
}

var positionOnly = metadata.VertexAttribute{
	Usage: metadata.VERTEX_ATTRIBUTE_USAGE_POSITION,
	Type:  metadata.VERTEX_ATTRIBUTE_TYPE_FLOAT4,
}

func (p *Pipeline) createIndexedPositions(label string, positions []math.Vec4, indices []uint32) (*resources.VertexBuffer, error) {
	m := p.renderer.Resources()
	format := m.CreateVertexFormat(positionOnly)
	ibh := m.CreateIndexBuffer(uint32(len(indices)), metadata.INDEX_FORMAT_16BIT, metadata.BUFFER_USAGE_STATIC)
	ib, err := m.IndexBuffer(ibh)
	if err != nil {
		return nil, err
	}
	if err := ib.SetIndices(indices); err != nil {
		return nil, err
	}
	vbh, err := m.CreateVertexBuffer(label, format, uint32(len(positions)), ibh, metadata.BUFFER_USAGE_STATIC)
	if err != nil {
		return nil, err
	}
	vb, err := m.VertexBuffer(vbh)
	if err != nil {
		return nil, err
	}
	for i, pos := range positions {
		if err := vb.SetAttribute(uint32(i), metadata.VERTEX_ATTRIBUTE_USAGE_POSITION, 0, pos.X, pos.Y, pos.Z, pos.W); err != nil {
			return nil, err
		}
	}
	return vb, nil
}

/**
 * @brief Creates the oversized triangle covering the screen, used by every
 * fullscreen pass, and the camera centered sky cube.
 */
func (p *Pipeline) createGeometry() error {
	var err error
	p.fullscreenTri, err = p.createIndexedPositions(FULLSCREEN_TRIANGLE_LABEL,
		[]math.Vec4{
			{X: -1, Y: 1, Z: 1, W: 1},
			{X: 3, Y: 1, Z: 1, W: 1},
			{X: -1, Y: -3, Z: 1, W: 1},
		},
		[]uint32{0, 1, 2},
	)
	if err != nil {
		return core.NewResourceLoadError(FULLSCREEN_TRIANGLE_LABEL, core.LoadStageCreate, err)
	}

	p.skyCube, err = p.createIndexedPositions(SKY_CUBE_LABEL,
		[]math.Vec4{
			{X: -1, Y: 1, Z: 1, W: 1},
			{X: 1, Y: 1, Z: 1, W: 1},
			{X: -1, Y: -1, Z: 1, W: 1},
			{X: 1, Y: -1, Z: 1, W: 1},
			{X: -1, Y: 1, Z: -1, W: 1},
			{X: 1, Y: 1, Z: -1, W: 1},
			{X: -1, Y: -1, Z: -1, W: 1},
			{X: 1, Y: -1, Z: -1, W: 1},
		},
		[]uint32{
			0, 1, 2, 2, 1, 3, // front
			5, 4, 7, 7, 4, 6, // back
			4, 0, 6, 6, 0, 2, // left
			1, 5, 3, 3, 5, 7, // right
			4, 5, 0, 0, 5, 1, // top
			2, 3, 6, 6, 3, 7, // bottom
		},
	)
	if err != nil {
		return core.NewResourceLoadError(SKY_CUBE_LABEL, core.LoadStageCreate, err)
	}
	return nil
}
