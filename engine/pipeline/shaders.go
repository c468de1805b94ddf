package pipeline

import (
	"io/fs"

	"github.com/iftodebogdan/gitechdemo/engine/core"
	"github.com/iftodebogdan/gitechdemo/engine/renderer/metadata"
	"github.com/iftodebogdan/gitechdemo/engine/renderer/resources"
)

type ShaderID uint8

const (
	SHADER_GBUFFER_GENERATION ShaderID = iota
	SHADER_DEFERRED_LIGHT_AMB
	SHADER_DEFERRED_LIGHT_DIR
	SHADER_DEPTH_PASS
	SHADER_DEPTH_COPY
	SHADER_COLOR_COPY
	SHADER_SKYBOX
	SHADER_RSM_CAPTURE
	SHADER_RSM_APPLY
	SHADER_DOWNSAMPLE
	SHADER_LUMA_CALC
	SHADER_HDR_TONE_MAPPING
	SHADER_BLOOM
	SHADER_FXAA
	SHADER_SSAO
	SHADER_BOKEH_DOF
	SHADER_COUNT
)

var shaderNames = [SHADER_COUNT]string{
	"GBufferGeneration",
	"DeferredLightAmb",
	"DeferredLightDir",
	"DepthPass",
	"DepthCopy",
	"ColorCopy",
	"Skybox",
	"RSMCapture",
	"RSMApply",
	"Downsample",
	"LumaCalc",
	"HDRToneMapping",
	"Bloom",
	"FXAA",
	"SSAO",
	"BokehDoF",
}

func (id ShaderID) String() string {
	if id < SHADER_COUNT {
		return shaderNames[id]
	}
	return "unknown"
}

// Path is the source file of both stages, relative to the asset root.
func (id ShaderID) Path() string {
	return "shaders/" + id.String() + ".hlsl"
}

var shaderStages = [2]metadata.ShaderProgramType{metadata.SHADER_PROGRAM_TYPE_VERTEX, metadata.SHADER_PROGRAM_TYPE_PIXEL}

/**
 * @brief A vertex/pixel program pair compiled from the same file, each stage
 * with its template and its single input.
 */
type Shader struct {
	ID        ShaderID
	Programs  [2]*resources.ShaderProgram
	Templates [2]*resources.ShaderTemplate
	Inputs    [2]*resources.ShaderInput
}

func (s *Shader) Stage(kind metadata.ShaderProgramType) (*resources.ShaderTemplate, *resources.ShaderInput) {
	return s.Templates[kind], s.Inputs[kind]
}

// loadShader creates and compiles both stages of id and their inputs.
func loadShader(m *resources.Manager, fsys fs.FS, id ShaderID) (*Shader, error) {
	s := &Shader{ID: id}
	for _, kind := range shaderStages {
		ph := m.CreateShaderProgram(id.Path(), kind)
		program, err := m.ShaderProgram(ph)
		if err != nil {
			return nil, err
		}
		if err := program.CompileFromFile(fsys); err != nil {
			return nil, err
		}
		th, err := m.CreateShaderTemplate(ph)
		if err != nil {
			return nil, err
		}
		ih, err := m.CreateShaderInput(th)
		if err != nil {
			return nil, err
		}
		s.Programs[kind] = program
		s.Templates[kind], _ = m.ShaderTemplate(th)
		s.Inputs[kind], _ = m.ShaderInput(ih)
	}
	return s, nil
}

/**
 * @brief Recompiles both stages from fsys. On success the templates are
 * re-described and the inputs rebuilt, keeping the values that still fit.
 * A failed compile leaves the previous programs in place.
 */
func (s *Shader) Reload(fsys fs.FS) error {
	for _, kind := range shaderStages {
		if s.Templates[kind].ActiveInput() != nil {
			if err := s.Templates[kind].Disable(); err != nil {
				return err
			}
		}
		if err := s.Programs[kind].CompileFromFile(fsys); err != nil {
			return err
		}
		s.Templates[kind].DescribeShaderInputs()
		s.Inputs[kind].Rebuild()
	}
	return nil
}

// shaderByPath maps a changed asset path back to the shader compiled from it.
func shaderByPath(rel string) (ShaderID, bool) {
	for id := ShaderID(0); id < SHADER_COUNT; id++ {
		if id.Path() == rel {
			return id, true
		}
	}
	return SHADER_COUNT, false
}

/**
 * @brief Recompiles the shaders whose source files changed and refreshes
 * their lookup table entries. Paths that belong to no shader are ignored.
 * A shader that fails to compile keeps running its previous programs.
 * @returns the number of shaders reloaded.
 */
func (p *Pipeline) ReloadShaders(paths ...string) int {
	if !p.allocated {
		return 0
	}
	reloaded := 0
	for _, rel := range paths {
		id, ok := shaderByPath(rel)
		if !ok {
			continue
		}
		s := p.shaders[id]
		if err := s.Reload(p.assets); err != nil {
			core.LogError("reloading %s: %s", id, err)
			continue
		}
		p.lut.Build(s)
		core.LogInfo("reloaded %s", id)
		reloaded++
	}
	return reloaded
}
