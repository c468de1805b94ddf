package resources

import (
	"io/fs"

	"github.com/iftodebogdan/gitechdemo/engine/core"
	"github.com/iftodebogdan/gitechdemo/engine/renderer/backend"
	"github.com/iftodebogdan/gitechdemo/engine/renderer/metadata"
)

const (
	VERTEX_SHADER_ENTRY_POINT = "vsmain"
	PIXEL_SHADER_ENTRY_POINT  = "psmain"
	VERTEX_SHADER_PROFILE     = "vs_3_0"
	PIXEL_SHADER_PROFILE      = "ps_3_0"
)

/**
 * @brief A single compiled stage. The constant table is filled in by Compile
 * and stays empty until then.
 */
type ShaderProgram struct {
	manager    *Manager
	kind       metadata.ShaderProgramType
	path       string
	entryPoint string
	profile    string
	constants  []metadata.ShaderConstant
	compiled   bool
}

func newShaderProgram(m *Manager, kind metadata.ShaderProgramType, path string) *ShaderProgram {
	p := &ShaderProgram{
		manager:    m,
		kind:       kind,
		path:       path,
		entryPoint: VERTEX_SHADER_ENTRY_POINT,
		profile:    VERTEX_SHADER_PROFILE,
	}
	if kind == metadata.SHADER_PROGRAM_TYPE_PIXEL {
		p.entryPoint = PIXEL_SHADER_ENTRY_POINT
		p.profile = PIXEL_SHADER_PROFILE
	}
	return p
}

func (p *ShaderProgram) Kind() metadata.ShaderProgramType {
	return p.kind
}

func (p *ShaderProgram) Path() string {
	return p.path
}

// Label identifies the program on the device. Both stages of a file share
// the path, so the stage is part of the label.
func (p *ShaderProgram) Label() string {
	return p.path + ":" + p.kind.String()
}

func (p *ShaderProgram) IsCompiled() bool {
	return p.compiled
}

func (p *ShaderProgram) Constants() []metadata.ShaderConstant {
	return p.constants
}

// Compile compiles source and replaces the constant table. On failure the
// previous table is kept.
func (p *ShaderProgram) Compile(source string) error {
	constants, err := p.manager.backend.CompileShader(p.kind, p.Label(), source, p.entryPoint, p.profile)
	if err != nil {
		return core.NewResourceLoadError(p.path, core.LoadStageCompile, err)
	}
	p.constants = constants
	p.compiled = true
	core.LogDebug("compiled %s shader %s\n%s", p.kind, p.path, backend.Describe(constants))
	return nil
}

// CompileFromFile reads the program's path from fsys and compiles it.
func (p *ShaderProgram) CompileFromFile(fsys fs.FS) error {
	source, err := fs.ReadFile(fsys, p.path)
	if err != nil {
		return core.NewResourceLoadError(p.path, core.LoadStageOpen, err)
	}
	return p.Compile(string(source))
}
