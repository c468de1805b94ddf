package backend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iftodebogdan/gitechdemo/engine/math"
	"github.com/iftodebogdan/gitechdemo/engine/renderer/metadata"
)

const reflectSource = `
// comment float4 ignored;
/* block
   float4 alsoIgnored;
*/
#define KERNEL_SIZE 16

const float4x4 f44WorldViewProjMat;
const float2 f2HalfTexelOffset;
const float2 poissonDisk[16];
const bool bDebugCascades;
const int nKernel;
const sampler2D texDiffuse;
const sampler2D texNormal : register(s5);
const samplerCUBE texSkyTex;
const float3x3 f33Rot[2];
static const float PI = 3.14159f;
float4 fExplicit : register(c100);

struct VSOut
{
	float4 Position : POSITION;
	float2 TexCoord : TEXCOORD0;
};

void vsmain(float4 f4Position : POSITION, out VSOut output)
{
	float4 local = f4Position;
	output.Position = mul(f44WorldViewProjMat, local);
}
`

func findConstant(t *testing.T, constants []metadata.ShaderConstant, name string) metadata.ShaderConstant {
	t.Helper()
	for _, c := range constants {
		if c.Name == name {
			return c
		}
	}
	require.Failf(t, "constant not found", "%s", name)
	return metadata.ShaderConstant{}
}

func TestReflectConstants(t *testing.T) {
	constants, err := ReflectConstants(reflectSource)
	require.NoError(t, err)

	names := make([]string, len(constants))
	for i, c := range constants {
		names[i] = c.Name
	}
	assert.Equal(t, []string{
		"f44WorldViewProjMat", "f2HalfTexelOffset", "poissonDisk", "bDebugCascades", "nKernel",
		"texDiffuse", "texNormal", "texSkyTex", "f33Rot", "fExplicit",
	}, names)

	mat := findConstant(t, constants, "f44WorldViewProjMat")
	assert.Equal(t, metadata.INPUT_TYPE_FLOAT, mat.Type)
	assert.Equal(t, metadata.REGISTER_TYPE_FLOAT4, mat.RegisterType)
	assert.Equal(t, uint32(0), mat.RegisterIndex)
	assert.Equal(t, uint32(4), mat.RegisterCount)
	assert.Equal(t, uint32(4), mat.Rows)
	assert.Equal(t, uint32(4), mat.Columns)
	assert.Equal(t, uint32(64), mat.SizeBytes)

	offset := findConstant(t, constants, "f2HalfTexelOffset")
	assert.Equal(t, uint32(4), offset.RegisterIndex)
	assert.Equal(t, uint32(2), offset.Columns)

	disk := findConstant(t, constants, "poissonDisk")
	assert.Equal(t, uint32(5), disk.RegisterIndex)
	assert.Equal(t, uint32(16), disk.ArrayElements)
	assert.Equal(t, uint32(16), disk.RegisterCount)
	assert.Equal(t, uint32(256), disk.SizeBytes)

	debug := findConstant(t, constants, "bDebugCascades")
	assert.Equal(t, metadata.INPUT_TYPE_BOOL, debug.Type)
	assert.Equal(t, metadata.REGISTER_TYPE_FLOAT4, debug.RegisterType)
	assert.Equal(t, uint32(21), debug.RegisterIndex)

	kernel := findConstant(t, constants, "nKernel")
	assert.Equal(t, metadata.INPUT_TYPE_INT, kernel.Type)
	assert.Equal(t, uint32(22), kernel.RegisterIndex)

	diffuse := findConstant(t, constants, "texDiffuse")
	assert.Equal(t, metadata.INPUT_TYPE_SAMPLER2D, diffuse.Type)
	assert.Equal(t, metadata.REGISTER_TYPE_SAMPLER, diffuse.RegisterType)
	assert.Equal(t, uint32(0), diffuse.RegisterIndex)

	normal := findConstant(t, constants, "texNormal")
	assert.Equal(t, uint32(5), normal.RegisterIndex)

	sky := findConstant(t, constants, "texSkyTex")
	assert.Equal(t, metadata.INPUT_TYPE_SAMPLERCUBE, sky.Type)
	assert.Equal(t, uint32(1), sky.RegisterIndex)

	rot := findConstant(t, constants, "f33Rot")
	assert.Equal(t, uint32(23), rot.RegisterIndex)
	assert.Equal(t, uint32(6), rot.RegisterCount)

	explicit := findConstant(t, constants, "fExplicit")
	assert.Equal(t, uint32(100), explicit.RegisterIndex)
}

func TestReflectConstantsSkipsExplicitRanges(t *testing.T) {
	constants, err := ReflectConstants(`
const float4 fFirst;
const float4x4 f44Fixed : register(c1);
const float4 fSecond;
`)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), findConstant(t, constants, "fFirst").RegisterIndex)
	assert.Equal(t, uint32(1), findConstant(t, constants, "f44Fixed").RegisterIndex)
	assert.Equal(t, uint32(5), findConstant(t, constants, "fSecond").RegisterIndex)
}

func TestReflectConstantsErrors(t *testing.T) {
	_, err := ReflectConstants("   ")
	assert.ErrorIs(t, err, ErrEmptySource)

	_, err = ReflectConstants("void main() { if (true) { }")
	assert.ErrorIs(t, err, ErrUnbalancedBlock)
}

func TestNullFrameGating(t *testing.T) {
	n := NewNull()
	assert.False(t, n.BeginFrame(), "an uninitialized device cannot begin a frame")

	require.NoError(t, n.Initialize(math.Vec2i{X: 800, Y: 600}))
	assert.True(t, n.BeginFrame())
	assert.False(t, n.BeginFrame(), "frames do not nest")
	n.EndFrame()
	assert.True(t, n.BeginFrame())
	n.EndFrame()

	n.Resize(math.Vec2i{X: 1024, Y: 768})
	assert.Equal(t, math.Vec2i{X: 1024, Y: 768}, n.BackBufferSize())

	assert.True(t, n.SetSamplerState(15, metadata.SS_FILTER, 0))
	assert.False(t, n.SetSamplerState(16, metadata.SS_FILTER, 0))
}

func TestRecorder(t *testing.T) {
	r := NewRecorder()
	require.NoError(t, r.Initialize(math.Vec2i{X: 640, Y: 480}))
	assert.Equal(t, KIND_RECORDER, r.Kind())

	require.True(t, r.BeginFrame())
	r.BindRenderTarget("GBuffer", 2, math.Vec2i{X: 640, Y: 480})
	r.EnableShader(metadata.SHADER_PROGRAM_TYPE_VERTEX, "shaders/DepthPass.hlsl")
	r.DrawVertexBuffer("FullScreenTriangle", metadata.PRIMITIVE_TRIANGLE_LIST, 3, 1)
	r.DisableShader(metadata.SHADER_PROGRAM_TYPE_VERTEX)
	r.UnbindRenderTarget("GBuffer")
	r.EndFrame()
	r.SwapBuffers()

	assert.Equal(t, 8, len(r.Calls()))
	assert.Equal(t, 1, r.Count(OP_DRAW_VERTEX_BUFFER))
	draws := r.Ops(OP_DRAW_VERTEX_BUFFER, OP_ENABLE_SHADER)
	require.Len(t, draws, 2)
	assert.Equal(t, "shaders/DepthPass.hlsl", draws[0].Label)
	assert.Equal(t, "FullScreenTriangle", draws[1].Label)

	r.Reset()
	assert.Empty(t, r.Calls())

	r.FailBeginFrame = true
	assert.False(t, r.BeginFrame())
	assert.Equal(t, []Call{{Op: OP_BEGIN_FRAME}}, r.Calls())
}
