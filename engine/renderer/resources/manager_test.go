package resources

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iftodebogdan/gitechdemo/engine/core"
	"github.com/iftodebogdan/gitechdemo/engine/math"
	"github.com/iftodebogdan/gitechdemo/engine/renderer/backend"
	"github.com/iftodebogdan/gitechdemo/engine/renderer/metadata"
)

type fakeTextureLoader struct {
	loads int
}

func (l *fakeTextureLoader) LoadTexture(path string) (*TextureData, error) {
	l.loads++
	if path == "missing.png" {
		return nil, errors.New("file not found")
	}
	return &TextureData{
		Type:   metadata.TEXTURE_TYPE_2D,
		Format: metadata.PIXEL_FORMAT_A8R8G8B8,
		Width:  2,
		Height: 2,
		Mips:   [][]byte{make([]byte, 16), make([]byte, 4)},
	}, nil
}

type fakeModelLoader struct {
	data *ModelData
}

func (l *fakeModelLoader) LoadModel(path string) (*ModelData, error) {
	return l.data, nil
}

func triangleModel() *ModelData {
	return &ModelData{
		Meshes: []MeshData{{
			Name:      "tri",
			Positions: []math.Vec3{{X: -1}, {X: 1, Y: 2}, {Z: 3}},
			Normals:   []math.Vec3{{Y: 1}, {Y: 1}, {Y: 1}},
			TexCoords: []math.Vec2{{}, {X: 1}, {Y: 1}},
			Indices:   []uint32{0, 1, 2},
		}},
		Materials: []Material{{Name: "default", ShininessStrength: 0.5}},
	}
}

func newManager(t *testing.T, opts ...Option) (*Manager, *backend.Recorder) {
	t.Helper()
	core.SetLogLevel(core.LogLevelError)
	rec := backend.NewRecorder()
	require.NoError(t, rec.Initialize(math.Vec2i{X: 1280, Y: 720}))
	return NewManager(rec, opts...), rec
}

func TestHandleNone(t *testing.T) {
	h := None[Texture]()
	assert.False(t, h.Valid())
	assert.Equal(t, invalidIndex, h.Index())
	assert.False(t, HandleFromIndex[Texture](invalidIndex).Valid())

	h = HandleFromIndex[Texture](3)
	assert.True(t, h.Valid())
	assert.Equal(t, uint32(3), h.Index())

	var zero Handle[Texture]
	assert.False(t, zero.Valid())
}

func TestManagerCreateAndGet(t *testing.T) {
	m, _ := newManager(t)

	vf := m.CreateVertexFormat(
		metadata.VertexAttribute{Usage: metadata.VERTEX_ATTRIBUTE_USAGE_POSITION, Type: metadata.VERTEX_ATTRIBUTE_TYPE_FLOAT4},
	)
	ib := m.CreateIndexBuffer(3, metadata.INDEX_FORMAT_16BIT, metadata.BUFFER_USAGE_STATIC)
	vbh, err := m.CreateVertexBuffer("triangle", vf, 3, ib, metadata.BUFFER_USAGE_STATIC)
	require.NoError(t, err)

	vb, err := m.VertexBuffer(vbh)
	require.NoError(t, err)
	assert.Equal(t, uint32(16), vb.ElementSize())
	assert.Equal(t, uint32(48), vb.SizeBytes())
	assert.Len(t, vb.Data(), 48)
	assert.Equal(t, uint32(1), vb.PrimitiveCount())

	require.NoError(t, vb.SetAttribute(1, metadata.VERTEX_ATTRIBUTE_USAGE_POSITION, 0, 3, 1, 1, 1))
	assert.Equal(t, math.NewVec3(3, 1, 1), vb.Position(1))

	ibuf, err := m.IndexBuffer(ib)
	require.NoError(t, err)
	require.NoError(t, ibuf.SetIndices([]uint32{0, 1, 2}))
	assert.Equal(t, uint32(2), ibuf.Index(2))
	assert.Error(t, ibuf.SetIndex(0, 70000))

	assert.Equal(t, 1, m.VertexFormatCount())
	assert.Equal(t, 1, m.IndexBufferCount())
	assert.Equal(t, 1, m.VertexBufferCount())
}

func TestManagerInvalidHandles(t *testing.T) {
	m, _ := newManager(t)

	_, err := m.Texture(None[Texture]())
	assert.ErrorIs(t, err, core.ErrInvalidHandle)

	_, err = m.Texture(HandleFromIndex[Texture](42))
	assert.ErrorIs(t, err, core.ErrInvalidHandle)

	h := m.CreateTexture(TextureDesc{Format: metadata.PIXEL_FORMAT_A8, Width: 4, Height: 4})
	require.NoError(t, m.ReleaseTexture(h))
	_, err = m.Texture(h)
	assert.ErrorIs(t, err, core.ErrInvalidHandle)
	assert.ErrorIs(t, m.ReleaseTexture(h), core.ErrInvalidHandle)

	// released slots are never reused
	h2 := m.CreateTexture(TextureDesc{Format: metadata.PIXEL_FORMAT_A8, Width: 4, Height: 4})
	assert.NotEqual(t, h.Index(), h2.Index())
	assert.Equal(t, 1, m.TextureCount())

	_, err = m.CreateVertexBuffer("orphan", None[VertexFormat](), 3, None[IndexBuffer](), metadata.BUFFER_USAGE_STATIC)
	assert.ErrorIs(t, err, core.ErrInvalidHandle)
}

func TestTextureMipChain(t *testing.T) {
	m, _ := newManager(t)
	h := m.CreateTexture(TextureDesc{Format: metadata.PIXEL_FORMAT_A8R8G8B8, Width: 8, Height: 2})
	tex, err := m.Texture(h)
	require.NoError(t, err)

	assert.Equal(t, uint32(4), tex.MipCount())
	w, hgt := tex.MipSize(3)
	assert.Equal(t, uint32(1), w)
	assert.Equal(t, uint32(1), hgt)
	assert.Len(t, tex.MipData(0), 8*2*4)
	assert.Len(t, tex.MipData(1), 4*1*4)
	assert.Nil(t, tex.MipData(4))
	assert.Error(t, tex.SetMipData(0, []byte{1}))

	tex.SetAnisotropy(0)
	assert.Equal(t, uint32(1), tex.SamplerDesc().Anisotropy)
	tex.SetAddressingMode(metadata.SAM_CLAMP)
	assert.Equal(t, metadata.SAM_CLAMP, tex.SamplerDesc().AddressingW)
	assert.True(t, tex.IsCompatible(metadata.INPUT_TYPE_SAMPLER2D))
	assert.False(t, tex.IsCompatible(metadata.INPUT_TYPE_SAMPLERCUBE))
}

func TestCreateTextureFromFile(t *testing.T) {
	loader := &fakeTextureLoader{}
	m, _ := newManager(t, WithTextureLoader(loader))

	sampler := metadata.DefaultSamplerDesc()
	sampler.SRGBEnabled = true
	h, err := m.CreateTextureFromFile("textures/brick.png", sampler)
	require.NoError(t, err)
	tex, err := m.Texture(h)
	require.NoError(t, err)
	assert.Equal(t, "textures/brick.png", tex.Path())
	assert.Equal(t, uint32(2), tex.MipCount())
	assert.True(t, tex.SamplerDesc().SRGBEnabled)

	again, err := m.CreateTextureFromFile("textures/brick.png", sampler)
	require.NoError(t, err)
	assert.Equal(t, h, again)
	assert.Equal(t, 1, loader.loads)

	_, err = m.CreateTextureFromFile("missing.png", sampler)
	var loadErr *core.ResourceLoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, "missing.png", loadErr.Path)
	assert.Equal(t, core.LoadStageDecode, loadErr.Stage)
}

func TestFindByPath(t *testing.T) {
	m, _ := newManager(t)
	m.CreateTexture(TextureDesc{Path: "sponza/textures/lion.png", Format: metadata.PIXEL_FORMAT_A8, Width: 1, Height: 1})
	h := m.CreateTexture(TextureDesc{Path: "lion.png", Format: metadata.PIXEL_FORMAT_A8, Width: 1, Height: 1})

	found, ok := m.FindTexture("lion.png", true)
	require.True(t, ok)
	assert.Equal(t, h, found)

	_, ok = m.FindTexture("textures/lion", true)
	assert.False(t, ok)

	found, ok = m.FindTexture("textures/lion", false)
	require.True(t, ok)
	assert.Equal(t, uint32(0), found.Index())

	_, ok = m.FindModel("nothing", false)
	assert.False(t, ok)
}

func TestCreateModel(t *testing.T) {
	m, _ := newManager(t, WithModelLoader(&fakeModelLoader{data: triangleModel()}))

	h, err := m.CreateModel("models/tri.obj")
	require.NoError(t, err)
	model, err := m.Model(h)
	require.NoError(t, err)

	require.Equal(t, 1, model.MeshCount())
	vb := model.Mesh(0).VertexBuffer()
	require.NotNil(t, vb)
	assert.Equal(t, uint32(3), vb.ElementCount())
	assert.Equal(t, uint32(1), vb.PrimitiveCount())
	assert.Equal(t, math.NewVec3(1, 2, 0), vb.Position(1))

	uv, err := vb.Attribute(1, metadata.VERTEX_ATTRIBUTE_USAGE_TEXCOORD, 0)
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 0}, uv)

	bounds := model.Bounds()
	assert.Equal(t, math.NewVec3(-1, 0, 0), bounds.Min)
	assert.Equal(t, math.NewVec3(1, 2, 3), bounds.Max)
	assert.Equal(t, "default", model.Material(0).Name)
	assert.Nil(t, model.Material(1))

	found, ok := m.FindModel("tri.obj", false)
	require.True(t, ok)
	assert.Equal(t, h, found)

	require.NoError(t, m.ReleaseModel(h))
	assert.Equal(t, 0, m.VertexBufferCount())
	assert.Equal(t, 0, m.IndexBufferCount())
}

func TestCreateModelWithoutMeshes(t *testing.T) {
	m, _ := newManager(t, WithModelLoader(&fakeModelLoader{data: &ModelData{}}))

	h, err := m.CreateModel("empty.obj")
	require.NoError(t, err)
	model, err := m.Model(h)
	require.NoError(t, err)
	assert.Equal(t, 0, model.MeshCount())
	assert.True(t, model.Bounds().IsEmpty())
}

func TestRenderTargetEnableDisable(t *testing.T) {
	m, rec := newManager(t)

	gbuffer, err := m.CreateRenderTarget(RenderTargetDesc{
		Label:        "GBuffer",
		ColorFormats: []metadata.PixelFormat{metadata.PIXEL_FORMAT_A8R8G8B8, metadata.PIXEL_FORMAT_G16R16F},
		DepthFormat:  metadata.PIXEL_FORMAT_INTZ,
		WidthRatio:   1,
		HeightRatio:  1,
	})
	require.NoError(t, err)
	shadow, err := m.CreateRenderTarget(RenderTargetDesc{
		Label:        "ShadowMap",
		ColorFormats: []metadata.PixelFormat{metadata.PIXEL_FORMAT_A8},
		DepthFormat:  metadata.PIXEL_FORMAT_INTZ,
		Width:        4096,
		Height:       4096,
	})
	require.NoError(t, err)
	assert.Equal(t, 3+2, m.TextureCount())

	gb, _ := m.RenderTarget(gbuffer)
	sm, _ := m.RenderTarget(shadow)
	assert.Equal(t, math.Vec2i{X: 1280, Y: 720}, gb.Size())
	assert.True(t, gb.ColorBuffer(1).Valid())
	assert.False(t, gb.ColorBuffer(2).Valid())
	assert.Nil(t, m.ActiveRenderTarget())

	rec.Reset()
	gb.Enable()
	assert.Same(t, gb, m.ActiveRenderTarget())
	sm.Enable()
	assert.Same(t, sm, m.ActiveRenderTarget())
	assert.ErrorIs(t, gb.Disable(), core.ErrRenderTargetNotActive)
	require.NoError(t, sm.Disable())
	assert.Nil(t, m.ActiveRenderTarget())

	ops := rec.Ops(backend.OP_BIND_RENDER_TARGET, backend.OP_UNBIND_RENDER_TARGET, backend.OP_SET_VIEWPORT)
	require.Len(t, ops, 7)
	assert.Equal(t, "BindRenderTarget(GBuffer; 2 1280x720)", ops[0].String())
	assert.Equal(t, "UnbindRenderTarget(GBuffer)", ops[2].String())
	assert.Equal(t, "BindRenderTarget(ShadowMap; 1 4096x4096)", ops[3].String())
	assert.Equal(t, "1280x720+0+0", ops[6].Detail)
}

func TestRenderTargetValidationAndResize(t *testing.T) {
	m, _ := newManager(t)

	_, err := m.CreateRenderTarget(RenderTargetDesc{Label: "none", Width: 4, Height: 4})
	assert.Error(t, err)
	_, err = m.CreateRenderTarget(RenderTargetDesc{
		Label:        "bad depth",
		ColorFormats: []metadata.PixelFormat{metadata.PIXEL_FORMAT_A8},
		DepthFormat:  metadata.PIXEL_FORMAT_A8,
		Width:        4,
		Height:       4,
	})
	assert.Error(t, err)

	h, err := m.CreateRenderTarget(RenderTargetDesc{
		Label:        "Quarter",
		ColorFormats: []metadata.PixelFormat{metadata.PIXEL_FORMAT_A16B16G16R16F},
		WidthRatio:   0.25,
		HeightRatio:  0.25,
	})
	require.NoError(t, err)
	rt, _ := m.RenderTarget(h)
	assert.Equal(t, math.Vec2i{X: 320, Y: 180}, rt.Size())

	m.Resize(800, 600)
	assert.Equal(t, math.Vec2i{X: 200, Y: 150}, rt.Size())
	assert.Equal(t, uint32(200), rt.ColorTexture(0).Width())
	assert.Nil(t, rt.ColorTexture(0).MipData(0))
}

func TestReleaseAll(t *testing.T) {
	m, _ := newManager(t, WithModelLoader(&fakeModelLoader{data: triangleModel()}))

	_, err := m.CreateModel("models/tri.obj")
	require.NoError(t, err)
	rt, err := m.CreateRenderTarget(RenderTargetDesc{
		Label:        "LightAccumulationBuffer",
		ColorFormats: []metadata.PixelFormat{metadata.PIXEL_FORMAT_A16B16G16R16F},
		DepthFormat:  metadata.PIXEL_FORMAT_D24S8,
		WidthRatio:   1,
		HeightRatio:  1,
	})
	require.NoError(t, err)
	target, _ := m.RenderTarget(rt)
	target.Enable()

	prog := m.CreateShaderProgram("shaders/test.hlsl", metadata.SHADER_PROGRAM_TYPE_PIXEL)
	p, _ := m.ShaderProgram(prog)
	require.NoError(t, p.Compile("const float fValue;"))
	tmpl, err := m.CreateShaderTemplate(prog)
	require.NoError(t, err)
	_, err = m.CreateShaderInput(tmpl)
	require.NoError(t, err)
	m.CreateTexture(TextureDesc{Format: metadata.PIXEL_FORMAT_A8, Width: 1, Height: 1})

	m.ReleaseAll()

	assert.Equal(t, 0, m.ModelCount())
	assert.Equal(t, 0, m.VertexFormatCount())
	assert.Equal(t, 0, m.IndexBufferCount())
	assert.Equal(t, 0, m.VertexBufferCount())
	assert.Equal(t, 0, m.ShaderInputCount())
	assert.Equal(t, 0, m.ShaderTemplateCount())
	assert.Equal(t, 0, m.ShaderProgramCount())
	assert.Equal(t, 0, m.RenderTargetCount())
	assert.Equal(t, 0, m.TextureCount())
	assert.Nil(t, m.ActiveRenderTarget())
}
