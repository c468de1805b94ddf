package resources

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iftodebogdan/gitechdemo/engine/core"
	"github.com/iftodebogdan/gitechdemo/engine/math"
	"github.com/iftodebogdan/gitechdemo/engine/renderer/backend"
	"github.com/iftodebogdan/gitechdemo/engine/renderer/metadata"
	"github.com/iftodebogdan/gitechdemo/engine/renderer/state"
)

const bindingSource = `
const float4x4 f44WorldViewProjMat;
const float2 f2HalfTexelOffset;
const float2 poissonDisk[4];
const bool bHasNormalMap;
const int nKernel;
const int nExplicit : register(i0);
const bool bExplicit : register(b0);
const float3x3 f33Rot;
const float4x4 f44CascadeProjMat[2];
const sampler2D texDiffuse;
const samplerCUBE texSkyTex;
const float fSpecIntensity;

float4 psmain(float2 uv : TEXCOORD0) : COLOR
{
	return tex2D(texDiffuse, uv) * fSpecIntensity;
}
`

type shaderFixture struct {
	manager  *Manager
	rec      *backend.Recorder
	sampler  *state.SamplerState
	template *ShaderTemplate
	input    *ShaderInput
}

func newShaderFixture(t *testing.T) *shaderFixture {
	t.Helper()
	core.SetLogLevel(core.LogLevelError)
	rec := backend.NewRecorder()
	require.NoError(t, rec.Initialize(math.Vec2i{X: 640, Y: 480}))
	ss := state.NewSamplerState(rec)
	m := NewManager(rec, WithSamplerState(ss))

	ph := m.CreateShaderProgram("shaders/Binding.hlsl", metadata.SHADER_PROGRAM_TYPE_PIXEL)
	program, err := m.ShaderProgram(ph)
	require.NoError(t, err)
	require.NoError(t, program.Compile(bindingSource))

	th, err := m.CreateShaderTemplate(ph)
	require.NoError(t, err)
	ih, err := m.CreateShaderInput(th)
	require.NoError(t, err)

	tmpl, _ := m.ShaderTemplate(th)
	input, _ := m.ShaderInput(ih)
	return &shaderFixture{manager: m, rec: rec, sampler: ss, template: tmpl, input: input}
}

func (f *shaderFixture) handle(t *testing.T, name string) Handle[InputDesc] {
	t.Helper()
	h, ok := f.input.InputHandle(name)
	require.True(t, ok, name)
	return h
}

func TestShaderCompileFailure(t *testing.T) {
	m, _ := newManager(t)
	ph := m.CreateShaderProgram("shaders/Broken.hlsl", metadata.SHADER_PROGRAM_TYPE_VERTEX)
	program, _ := m.ShaderProgram(ph)

	err := program.Compile("")
	var loadErr *core.ResourceLoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, core.LoadStageCompile, loadErr.Stage)
	assert.Equal(t, "shaders/Broken.hlsl", loadErr.Path)
	assert.False(t, program.IsCompiled())

	_, err = m.CreateShaderTemplate(ph)
	assert.Error(t, err)
}

func TestShaderTemplateDescribesInputs(t *testing.T) {
	f := newShaderFixture(t)

	inputs := f.template.Inputs()
	require.Len(t, inputs, 12)
	expected := []struct {
		name   string
		offset uint32
	}{
		{"f44WorldViewProjMat", 0},
		{"f2HalfTexelOffset", 64},
		{"poissonDisk", 80},
		{"bHasNormalMap", 144},
		{"nKernel", 160},
		{"nExplicit", 176},
		{"bExplicit", 192},
		{"f33Rot", 208},
		{"f44CascadeProjMat", 256},
		{"texDiffuse", 384},
		{"texSkyTex", 400},
		{"fSpecIntensity", 416},
	}
	for i, e := range expected {
		assert.Equal(t, e.name, inputs[i].Name)
		assert.Equal(t, e.offset, inputs[i].Offset, e.name)
	}
	assert.Equal(t, uint32(432), f.template.InputSize())
	assert.Len(t, f.input.Data(), 432)
	assert.Equal(t, 12, f.input.InputCount())
}

func TestShaderInputRoundTrip(t *testing.T) {
	f := newShaderFixture(t)

	wvp := math.NewMat4PerspectiveLH(math.DegToRad(60), 4.0/3.0, 10, 5000)
	require.NoError(t, f.input.SetMatrix4x4(f.handle(t, "f44WorldViewProjMat"), wvp))
	got, err := f.input.Matrix4x4(f.handle(t, "f44WorldViewProjMat"), 0)
	require.NoError(t, err)
	assert.Equal(t, wvp, got)

	require.NoError(t, f.input.SetFloat2(f.handle(t, "f2HalfTexelOffset"), math.NewVec2(0.5/640, 0.5/480)))
	half, err := f.input.Float2(f.handle(t, "f2HalfTexelOffset"), 0)
	require.NoError(t, err)
	assert.Equal(t, math.NewVec2(0.5/640, 0.5/480), half)

	disk := []float32{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8}
	require.NoError(t, f.input.SetFloatArray(f.handle(t, "poissonDisk"), disk))
	p3, err := f.input.Float2(f.handle(t, "poissonDisk"), 3)
	require.NoError(t, err)
	assert.Equal(t, math.NewVec2(0.7, 0.8), p3)
	// element stride is one register
	d, err := f.input.InputDesc(f.handle(t, "poissonDisk"))
	require.NoError(t, err)
	assert.Equal(t, uint32(4), d.RegisterCount)

	require.NoError(t, f.input.SetBool(f.handle(t, "bHasNormalMap"), true))
	b, err := f.input.Bool(f.handle(t, "bHasNormalMap"), 0)
	require.NoError(t, err)
	assert.True(t, b)

	require.NoError(t, f.input.SetInt(f.handle(t, "nKernel"), -3))
	n, err := f.input.Int(f.handle(t, "nKernel"), 0)
	require.NoError(t, err)
	assert.Equal(t, int32(-3), n)

	require.NoError(t, f.input.SetInt(f.handle(t, "nExplicit"), 7))
	n, err = f.input.Int(f.handle(t, "nExplicit"), 0)
	require.NoError(t, err)
	assert.Equal(t, int32(7), n)

	require.NoError(t, f.input.SetBool(f.handle(t, "bExplicit"), true))
	b, err = f.input.Bool(f.handle(t, "bExplicit"), 0)
	require.NoError(t, err)
	assert.True(t, b)

	rot := math.NewMat4EulerXYZ(0.1, 0.2, 0.3).Mat3()
	require.NoError(t, f.input.SetMatrix3x3(f.handle(t, "f33Rot"), rot))
	gotRot, err := f.input.Matrix3x3(f.handle(t, "f33Rot"), 0)
	require.NoError(t, err)
	assert.Equal(t, rot, gotRot)

	cascades := []math.Mat4{math.NewMat4Translation(math.NewVec3(1, 2, 3)), math.NewMat4Scale(math.NewVec3(2, 2, 2))}
	require.NoError(t, f.input.SetMatrixArray(f.handle(t, "f44CascadeProjMat"), cascades))
	c1, err := f.input.Matrix4x4(f.handle(t, "f44CascadeProjMat"), 1)
	require.NoError(t, err)
	assert.Equal(t, cascades[1], c1)

	require.NoError(t, f.input.SetFloat(f.handle(t, "fSpecIntensity"), 0.25))
	s, err := f.input.Float(f.handle(t, "fSpecIntensity"), 0)
	require.NoError(t, err)
	assert.Equal(t, float32(0.25), s)
}

func TestShaderInputContractViolations(t *testing.T) {
	f := newShaderFixture(t)

	_, ok := f.input.InputHandle("fNotDeclared")
	assert.False(t, ok)

	assert.ErrorIs(t, f.input.SetFloat(None[InputDesc](), 1), core.ErrInvalidHandle)
	assert.ErrorIs(t, f.input.SetFloat(f.handle(t, "bHasNormalMap"), 1), core.ErrWrongInputType)
	assert.ErrorIs(t, f.input.SetBool(f.handle(t, "fSpecIntensity"), true), core.ErrWrongInputType)
	assert.ErrorIs(t, f.input.SetMatrix4x4(f.handle(t, "f2HalfTexelOffset"), math.NewMat4Identity()), core.ErrWrongInputType)
	assert.ErrorIs(t, f.input.SetTexture(f.handle(t, "fSpecIntensity"), None[Texture]()), core.ErrWrongInputType)

	_, err := f.input.Float2(f.handle(t, "poissonDisk"), 4)
	assert.Error(t, err)

	tex, err := f.input.Texture(f.handle(t, "texDiffuse"))
	require.NoError(t, err)
	assert.False(t, tex.Valid())
}

func TestShaderTemplateEnableBindsEverything(t *testing.T) {
	f := newShaderFixture(t)

	desc := TextureDesc{Path: "brick.png", Format: metadata.PIXEL_FORMAT_A8R8G8B8, Width: 4, Height: 4}
	desc.Sampler = metadata.DefaultSamplerDesc()
	desc.Sampler.Filter = metadata.SF_MIN_MAG_LINEAR_MIP_LINEAR
	desc.Sampler.SRGBEnabled = true
	diffuse := f.manager.CreateTexture(desc)
	require.NoError(t, f.input.SetTexture(f.handle(t, "texDiffuse"), diffuse))

	f.rec.Reset()
	require.NoError(t, f.template.Enable(f.input))
	assert.Same(t, f.input, f.template.ActiveInput())

	// 10 constants pushed, samplerCUBE left unbound
	assert.Equal(t, 10, f.rec.Count(backend.OP_SET_SHADER_CONSTANT))
	binds := f.rec.Ops(backend.OP_BIND_TEXTURE)
	require.Len(t, binds, 1)
	assert.Equal(t, "brick.png", binds[0].Label)
	assert.Equal(t, "s0", binds[0].Detail)

	sd, ok := f.sampler.Desc(0)
	require.True(t, ok)
	assert.Equal(t, metadata.SF_MIN_MAG_LINEAR_MIP_LINEAR, sd.Filter)
	assert.True(t, sd.SRGBEnabled)

	assert.ErrorIs(t, f.template.Enable(f.input), core.ErrShaderInputActive)

	require.NoError(t, f.template.Disable())
	assert.Equal(t, 1, f.rec.Count(backend.OP_UNBIND_TEXTURE))
	assert.Equal(t, 1, f.rec.Count(backend.OP_DISABLE_SHADER))
	assert.ErrorIs(t, f.template.Disable(), core.ErrNoShaderInputActive)
}

func TestShaderTemplateRejectsMismatchedTexture(t *testing.T) {
	f := newShaderFixture(t)

	flat := f.manager.CreateTexture(TextureDesc{Format: metadata.PIXEL_FORMAT_A8R8G8B8, Width: 4, Height: 4})
	require.NoError(t, f.input.SetTexture(f.handle(t, "texSkyTex"), flat))

	f.rec.Reset()
	assert.ErrorIs(t, f.template.Enable(f.input), core.ErrTextureSamplerMismatch)
	assert.Nil(t, f.template.ActiveInput())
	assert.Empty(t, f.rec.Calls())

	cube := f.manager.CreateTexture(TextureDesc{Type: metadata.TEXTURE_TYPE_CUBE, Format: metadata.PIXEL_FORMAT_A8R8G8B8, Width: 4, Height: 4})
	require.NoError(t, f.input.SetTexture(f.handle(t, "texSkyTex"), cube))
	require.NoError(t, f.template.Enable(f.input))
	require.NoError(t, f.template.Disable())
}

func TestShaderInputRebuildKeepsValues(t *testing.T) {
	f := newShaderFixture(t)
	require.NoError(t, f.input.SetFloat(f.handle(t, "fSpecIntensity"), 2))
	require.NoError(t, f.input.SetFloat2(f.handle(t, "f2HalfTexelOffset"), math.NewVec2(1, 2)))

	program := f.template.Program()
	require.NoError(t, program.Compile(`
const float fSpecIntensity;
const float3 f2HalfTexelOffset;
`))
	f.template.DescribeShaderInputs()
	assert.ErrorIs(t, f.template.Enable(f.input), core.ErrWrongInputType)

	f.input.Rebuild()
	assert.Equal(t, 2, f.input.InputCount())
	v, err := f.input.Float(f.handle(t, "fSpecIntensity"), 0)
	require.NoError(t, err)
	assert.Equal(t, float32(2), v)

	// same name, different shape: reset to zero
	h := f.handle(t, "f2HalfTexelOffset")
	v3, err := f.input.Float3(h, 0)
	require.NoError(t, err)
	assert.Equal(t, math.Vec3{}, v3)

	require.NoError(t, f.template.Enable(f.input))
	require.NoError(t, f.template.Disable())
}
