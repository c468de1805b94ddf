package pipeline

import (
	"errors"
	"io/fs"

	"golang.org/x/exp/rand"

	"github.com/iftodebogdan/gitechdemo/engine/core"
	"github.com/iftodebogdan/gitechdemo/engine/math"
	"github.com/iftodebogdan/gitechdemo/engine/renderer"
	"github.com/iftodebogdan/gitechdemo/engine/renderer/metadata"
	"github.com/iftodebogdan/gitechdemo/engine/renderer/resources"
)

var ErrNotAllocated = errors.New("render resources are not allocated")

/**
 * @brief A named step of the frame. Enabled is evaluated against the current
 * configuration every frame; a nil Enabled means the pass always runs. Run
 * receives the pass children and decides where they are nested.
 */
type Pass struct {
	Name     string
	Enabled  func(cfg *Config) bool
	Run      func(p *Pipeline, children []Pass)
	Children []Pass
}

func (pass *Pass) isEnabled(cfg *Config) bool {
	return pass.Enabled == nil || pass.Enabled(cfg)
}

// Render targets used by the frame. Fields of the same kind that ping-pong
// are stored as arrays.
type renderTargets struct {
	GBuffer                   *resources.RenderTarget
	ShadowMap                 *resources.RenderTarget
	LightAccumulation         *resources.RenderTarget
	RSM                       *resources.RenderTarget
	IndirectLightAccumulation *resources.RenderTarget
	HDRDownsample             *resources.RenderTarget
	AverageLuminance          [4]*resources.RenderTarget
	AdaptedLuminance          [2]*resources.RenderTarget
	Bloom                     [2]*resources.RenderTarget
	LDRToneMapped             *resources.RenderTarget
	LDRFxaa                   *resources.RenderTarget
	AmbientOcclusion          [2]*resources.RenderTarget
	DoFFull                   *resources.RenderTarget
	DoFQuarter                *resources.RenderTarget
}

type inputState struct {
	rotateCamera bool
	rollCamera   bool
	rotateLight  bool
}

/**
 * @brief The deferred frame: owns the render context, the shaders and their
 * input lookup table, every render target and the scene model, and issues
 * the passes into the renderer once per frame.
 */
type Pipeline struct {
	config   *Config
	renderer *renderer.Renderer
	assets   fs.FS

	ctx     *RenderContext
	lut     *InputLUT
	shaders [SHADER_COUNT]*Shader
	targets renderTargets

	model            *resources.Model
	materialTextures [resources.TEXTURE_KIND_MAX][]resources.Handle[resources.Texture]
	skyTexture       resources.Handle[resources.Texture]
	fullscreenTri    *resources.VertexBuffer
	skyCube          *resources.VertexBuffer

	perlin     *math.Perlin
	rng        *rand.Rand
	loadEvents *core.LoadEventLog
	passes     []Pass
	input      inputState

	allocated bool
	err       error
}

/**
 * @brief Creates a pipeline drawing through r. Shader sources are read from
 * assets; textures and models go through the loaders configured on r.
 */
func New(cfg *Config, r *renderer.Renderer, assets fs.FS) *Pipeline {
	p := &Pipeline{
		config:     cfg,
		renderer:   r,
		assets:     assets,
		ctx:        NewRenderContext(),
		lut:        NewInputLUT(),
		perlin:     math.NewPerlin(1, 65535, 1, cfg.Scene.NoiseSeed),
		rng:        rand.New(rand.NewSource(cfg.Scene.NoiseSeed)),
		loadEvents: core.NewLoadEventLog(),
	}
	p.passes = defaultPasses()
	p.resetCamera()
	return p
}

func defaultPasses() []Pass {
	return []Pass{
		{
			Name:    "GenerateDirectionalShadowMap",
			Enabled: func(cfg *Config) bool { return cfg.Lighting.Directional },
			Run:     (*Pipeline).generateDirectionalShadowMap,
		},
		{
			Name:    "GenerateRSM",
			Enabled: func(cfg *Config) bool { return cfg.Lighting.Indirect },
			Run:     (*Pipeline).generateRSM,
		},
		{Name: "GenerateGBuffer", Run: (*Pipeline).generateGBuffer},
		{
			Name: "AccumulateLight",
			Run:  (*Pipeline).accumulateLight,
			Children: []Pass{
				{
					Name:    "AccumulateAmbientLight",
					Enabled: func(cfg *Config) bool { return cfg.Lighting.Ambient },
					Run:     (*Pipeline).accumulateAmbientLight,
					Children: []Pass{
						{
							Name:    "AccumulateAmbientOcclusion",
							Enabled: func(cfg *Config) bool { return cfg.Lighting.AmbientOcclusion },
							Run:     (*Pipeline).accumulateAmbientOcclusion,
						},
					},
				},
				{
					Name:    "AccumulateDirectionalLight",
					Enabled: func(cfg *Config) bool { return cfg.Lighting.Directional },
					Run:     (*Pipeline).accumulateDirectionalLight,
				},
				{
					Name:    "AccumulateIndirectLight",
					Enabled: func(cfg *Config) bool { return cfg.Lighting.Indirect },
					Run:     (*Pipeline).accumulateIndirectLight,
				},
			},
		},
		{
			Name:    "ApplyPostProcessing",
			Enabled: func(cfg *Config) bool { return cfg.PostProcessing },
			Run:     (*Pipeline).applyPostProcessing,
			Children: []Pass{
				{
					Name:    "HDRDownsample",
					Enabled: func(cfg *Config) bool { return cfg.HDR.ToneMapping || cfg.Bloom.Enabled },
					Run:     (*Pipeline).hdrDownsample,
				},
				{
					Name:    "DepthOfField",
					Enabled: func(cfg *Config) bool { return cfg.DoF.Enabled },
					Run:     (*Pipeline).depthOfField,
				},
				{
					Name:    "Bloom",
					Enabled: func(cfg *Config) bool { return cfg.Bloom.Enabled },
					Run:     (*Pipeline).bloom,
				},
				{
					Name:    "ToneMapping",
					Enabled: func(cfg *Config) bool { return cfg.HDR.ToneMapping },
					Run:     (*Pipeline).toneMapping,
				},
				{
					Name:    "FXAA",
					Enabled: func(cfg *Config) bool { return cfg.FXAA.Enabled },
					Run:     (*Pipeline).fxaa,
				},
			},
		},
		{Name: "CopyResultToBackBuffer", Run: (*Pipeline).copyResultToBackBuffer},
	}
}

func (p *Pipeline) Config() *Config {
	return p.config
}

func (p *Pipeline) Context() *RenderContext {
	return p.ctx
}

func (p *Pipeline) Renderer() *renderer.Renderer {
	return p.renderer
}

// LoadEvents is the progress log written while resources are allocated.
func (p *Pipeline) LoadEvents() *core.LoadEventLog {
	return p.loadEvents
}

func (p *Pipeline) Passes() []Pass {
	return p.passes
}

// ActivePasses lists, depth first, the names of the passes the current
// configuration enables.
func (p *Pipeline) ActivePasses() []string {
	var names []string
	var walk func(passes []Pass)
	walk = func(passes []Pass) {
		for i := range passes {
			if !passes[i].isEnabled(p.config) {
				continue
			}
			names = append(names, passes[i].Name)
			walk(passes[i].Children)
		}
	}
	walk(p.passes)
	return names
}

/**
 * @brief Renders one frame. Nothing is touched when the device cannot begin
 * a frame, in which case false is returned. Contract violations raised by
 * the binding layer during the frame are returned as an error; the frame is
 * still presented.
 */
func (p *Pipeline) RenderScene(dt float32) (bool, error) {
	if !p.allocated {
		return false, ErrNotAllocated
	}
	if !p.renderer.BeginFrame() {
		return false, nil
	}
	p.err = nil
	p.ctx.FrameTime = dt
	p.ctx.ElapsedTime += float64(dt)
	p.ctx.FrameCount++

	p.UpdateMatrices()
	p.runPasses(p.passes)

	p.renderer.EndFrame()
	p.renderer.SwapBuffers()
	return true, p.err
}

func (p *Pipeline) runPasses(passes []Pass) {
	for i := range passes {
		if passes[i].isEnabled(p.config) {
			passes[i].Run(p, passes[i].Children)
		}
	}
}

// check keeps the first error of the frame.
func (p *Pipeline) check(err error) {
	if err != nil && p.err == nil {
		p.err = err
		core.LogError("frame %d: %s", p.ctx.FrameCount, err)
	}
}

/* Shader binding helpers */

// binder sets inputs of one shader stage by name through the lookup table.
// Names the stage does not declare are skipped.
type binder struct {
	p      *Pipeline
	shader *Shader
	stage  metadata.ShaderProgramType
	input  *resources.ShaderInput
}

func (p *Pipeline) stage(id ShaderID, kind metadata.ShaderProgramType) binder {
	s := p.shaders[id]
	return binder{p: p, shader: s, stage: kind, input: s.Inputs[kind]}
}

func (p *Pipeline) vs(id ShaderID) binder {
	return p.stage(id, metadata.SHADER_PROGRAM_TYPE_VERTEX)
}

func (p *Pipeline) ps(id ShaderID) binder {
	return p.stage(id, metadata.SHADER_PROGRAM_TYPE_PIXEL)
}

func (b binder) lookup(name string) (resources.Handle[resources.InputDesc], bool) {
	return b.p.lut.Lookup(b.shader.ID, b.stage, name)
}

// elements is the declared array length of an input, at least 1.
func (b binder) elements(h resources.Handle[resources.InputDesc]) int {
	d, err := b.input.InputDesc(h)
	if err != nil {
		return 0
	}
	return int(max(d.ArrayElements, 1))
}

func (b binder) Bool(name string, v bool) binder {
	if h, ok := b.lookup(name); ok {
		b.p.check(b.input.SetBool(h, v))
	}
	return b
}

func (b binder) Int(name string, v int32) binder {
	if h, ok := b.lookup(name); ok {
		b.p.check(b.input.SetInt(h, v))
	}
	return b
}

func (b binder) Float(name string, v float32) binder {
	if h, ok := b.lookup(name); ok {
		b.p.check(b.input.SetFloat(h, v))
	}
	return b
}

func (b binder) Float2(name string, v math.Vec2) binder {
	if h, ok := b.lookup(name); ok {
		b.p.check(b.input.SetFloat2(h, v))
	}
	return b
}

func (b binder) Float3(name string, v math.Vec3) binder {
	if h, ok := b.lookup(name); ok {
		b.p.check(b.input.SetFloat3(h, v))
	}
	return b
}

func (b binder) FloatArray(name string, v []float32) binder {
	if h, ok := b.lookup(name); ok {
		b.p.check(b.input.SetFloatArray(h, v))
	}
	return b
}

// Float2Array and Float3Array write at most the declared number of elements.
func (b binder) Float2Array(name string, v []math.Vec2) binder {
	if h, ok := b.lookup(name); ok {
		b.p.check(b.input.SetFloat2Array(h, v[:min(len(v), b.elements(h))]))
	}
	return b
}

func (b binder) Float3Array(name string, v []math.Vec3) binder {
	if h, ok := b.lookup(name); ok {
		b.p.check(b.input.SetFloat3Array(h, v[:min(len(v), b.elements(h))]))
	}
	return b
}

func (b binder) Matrix(name string, v math.Mat4) binder {
	if h, ok := b.lookup(name); ok {
		b.p.check(b.input.SetMatrix4x4(h, v))
	}
	return b
}

func (b binder) MatrixArray(name string, v []math.Mat4) binder {
	if h, ok := b.lookup(name); ok {
		b.p.check(b.input.SetMatrixArray(h, v[:min(len(v), b.elements(h))]))
	}
	return b
}

func (b binder) Texture(name string, tex resources.Handle[resources.Texture]) binder {
	if h, ok := b.lookup(name); ok {
		b.p.check(b.input.SetTexture(h, tex))
	}
	return b
}

// HalfTexel sets f2HalfTexelOffset for a target of the given size.
func (b binder) HalfTexel(rt *resources.RenderTarget) binder {
	return b.Float2("f2HalfTexelOffset", halfTexel(rt))
}

func (b binder) Enable() {
	b.p.check(b.shader.Templates[b.stage].Enable(b.input))
}

func (b binder) Disable() {
	b.p.check(b.shader.Templates[b.stage].Disable())
}

// enable turns on both stages of a shader with their current inputs.
func (p *Pipeline) enable(id ShaderID) {
	p.vs(id).Enable()
	p.ps(id).Enable()
}

func (p *Pipeline) disable(id ShaderID) {
	p.vs(id).Disable()
	p.ps(id).Disable()
}

// drawFullscreen draws the oversized triangle with id enabled.
func (p *Pipeline) drawFullscreen(id ShaderID) {
	p.enable(id)
	p.renderer.DrawVertexBuffer(p.fullscreenTri)
	p.disable(id)
}

// drawScene draws every mesh of the model with the enabled shaders.
func (p *Pipeline) drawScene() {
	if p.model == nil {
		return
	}
	for i := 0; i < p.model.MeshCount(); i++ {
		p.renderer.DrawVertexBuffer(p.model.Mesh(i).VertexBuffer())
	}
}

// drawSceneStage draws every mesh, enabling and disabling stage around each
// draw after bind has set the mesh's material inputs.
func (p *Pipeline) drawSceneStage(stage binder, bind func(material int)) {
	if p.model == nil {
		return
	}
	for i := 0; i < p.model.MeshCount(); i++ {
		mesh := p.model.Mesh(i)
		bind(mesh.MaterialIndex)
		stage.Enable()
		p.renderer.DrawVertexBuffer(mesh.VertexBuffer())
		stage.Disable()
	}
}

// materialTexture returns the texture of the given kind of a material, or
// None when the material has none.
func (p *Pipeline) materialTexture(kind resources.TextureKind, material int) resources.Handle[resources.Texture] {
	lut := p.materialTextures[kind]
	if material < 0 || material >= len(lut) {
		return resources.None[resources.Texture]()
	}
	return lut[material]
}

func (p *Pipeline) disableTarget(rt *resources.RenderTarget) {
	p.check(rt.Disable())
}

func (p *Pipeline) clear() {
	p.renderer.Clear(math.Vec4{}, 1, 0)
}

func halfTexel(rt *resources.RenderTarget) math.Vec2 {
	return math.NewVec2(0.5/float32(rt.Width()), 0.5/float32(rt.Height()))
}

func texelSize(rt *resources.RenderTarget) math.Vec2 {
	return math.NewVec2(1/float32(rt.Width()), 1/float32(rt.Height()))
}

// finalImage is the target holding the composed frame before presentation.
func (p *Pipeline) finalImage() *resources.RenderTarget {
	cfg := p.config
	if !cfg.PostProcessing {
		return p.targets.LightAccumulation
	}
	switch {
	case cfg.FXAA.Enabled:
		return p.targets.LDRFxaa
	case cfg.HDR.ToneMapping:
		return p.targets.LDRToneMapped
	}
	return p.targets.LightAccumulation
}
