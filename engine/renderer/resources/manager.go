package resources

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/iftodebogdan/gitechdemo/engine/core"
	"github.com/iftodebogdan/gitechdemo/engine/math"
	"github.com/iftodebogdan/gitechdemo/engine/renderer/backend"
	"github.com/iftodebogdan/gitechdemo/engine/renderer/metadata"
	"github.com/iftodebogdan/gitechdemo/engine/renderer/state"
)

type Option func(*Manager)

func WithTextureLoader(l TextureLoader) Option {
	return func(m *Manager) { m.textureLoader = l }
}

func WithModelLoader(l ModelLoader) Option {
	return func(m *Manager) { m.modelLoader = l }
}

// WithSamplerState lets shader templates push texture sampler settings when
// binding textures.
func WithSamplerState(ss *state.SamplerState) Option {
	return func(m *Manager) { m.samplerState = ss }
}

/**
 * @brief Owns every GPU resource of the renderer. Each resource kind lives in
 * its own pool guarded by its own mutex, so the loading goroutine can create
 * resources while the render thread reads others.
 */
type Manager struct {
	backend       backend.Backend
	samplerState  *state.SamplerState
	textureLoader TextureLoader
	modelLoader   ModelLoader

	vertexFormats   *pool[VertexFormat]
	indexBuffers    *pool[IndexBuffer]
	vertexBuffers   *pool[VertexBuffer]
	textures        *pool[Texture]
	renderTargets   *pool[RenderTarget]
	shaderPrograms  *pool[ShaderProgram]
	shaderTemplates *pool[ShaderTemplate]
	shaderInputs    *pool[ShaderInput]
	models          *pool[Model]

	activeMutex  sync.Mutex
	activeTarget *RenderTarget
}

func NewManager(b backend.Backend, opts ...Option) *Manager {
	m := &Manager{
		backend:         b,
		vertexFormats:   newPool[VertexFormat]("vertex format"),
		indexBuffers:    newPool[IndexBuffer]("index buffer"),
		vertexBuffers:   newPool[VertexBuffer]("vertex buffer"),
		textures:        newPool[Texture]("texture"),
		renderTargets:   newPool[RenderTarget]("render target"),
		shaderPrograms:  newPool[ShaderProgram]("shader program"),
		shaderTemplates: newPool[ShaderTemplate]("shader template"),
		shaderInputs:    newPool[ShaderInput]("shader input"),
		models:          newPool[Model]("model"),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) Backend() backend.Backend {
	return m.backend
}

/* Creation */

func (m *Manager) CreateVertexFormat(attributes ...metadata.VertexAttribute) Handle[VertexFormat] {
	return m.vertexFormats.add(newVertexFormat(attributes))
}

func (m *Manager) CreateIndexBuffer(count uint32, format metadata.IndexFormat, usage metadata.BufferUsage) Handle[IndexBuffer] {
	return m.indexBuffers.add(newIndexBuffer(count, format, usage))
}

// CreateVertexBuffer allocates count vertices of the given format. ib may be
// None for non-indexed buffers.
func (m *Manager) CreateVertexBuffer(label string, format Handle[VertexFormat], count uint32, ib Handle[IndexBuffer], usage metadata.BufferUsage) (Handle[VertexBuffer], error) {
	vf, err := m.vertexFormats.get(format)
	if err != nil {
		return None[VertexBuffer](), err
	}
	vb := &VertexBuffer{
		Buffer:            newBuffer(count, vf.Stride(), usage),
		label:             label,
		formatHandle:      format,
		format:            vf,
		indexBufferHandle: ib,
	}
	if ib.Valid() {
		if vb.indexBuffer, err = m.indexBuffers.get(ib); err != nil {
			return None[VertexBuffer](), err
		}
	}
	return m.vertexBuffers.add(vb), nil
}

func (m *Manager) CreateTexture(desc TextureDesc) Handle[Texture] {
	if desc.Usage == metadata.BUFFER_USAGE_NONE {
		desc.Usage = metadata.BUFFER_USAGE_TEXTURE
	}
	return m.textures.add(newTexture(desc))
}

/**
 * @brief Loads a texture through the configured TextureLoader. A texture
 * already loaded from the same path is returned as is.
 */
func (m *Manager) CreateTextureFromFile(path string, sampler metadata.SamplerDesc) (Handle[Texture], error) {
	if h, ok := m.FindTexture(path, true); ok {
		return h, nil
	}
	if m.textureLoader == nil {
		return None[Texture](), core.NewResourceLoadError(path, core.LoadStageOpen, errors.New("no texture loader configured"))
	}
	data, err := m.textureLoader.LoadTexture(path)
	if err != nil {
		var loadErr *core.ResourceLoadError
		if errors.As(err, &loadErr) {
			return None[Texture](), err
		}
		return None[Texture](), core.NewResourceLoadError(path, core.LoadStageDecode, err)
	}
	tex := newTexture(TextureDesc{
		Path:     path,
		Type:     data.Type,
		Format:   data.Format,
		Width:    data.Width,
		Height:   data.Height,
		Depth:    data.Depth,
		MipCount: uint32(len(data.Mips)),
		Usage:    metadata.BUFFER_USAGE_TEXTURE,
		Sampler:  sampler,
	})
	for level, mip := range data.Mips {
		if err := tex.SetMipData(uint32(level), mip); err != nil {
			return None[Texture](), core.NewResourceLoadError(path, core.LoadStageCreate, err)
		}
	}
	return m.textures.add(tex), nil
}

func (m *Manager) CreateRenderTarget(desc RenderTargetDesc) (Handle[RenderTarget], error) {
	if len(desc.ColorFormats) < 1 || len(desc.ColorFormats) > MAX_COLOR_BUFFERS {
		return None[RenderTarget](), fmt.Errorf("render target %s: %d color buffers, expected 1 to %d", desc.Label, len(desc.ColorFormats), MAX_COLOR_BUFFERS)
	}
	if !desc.IsDynamic() && (desc.Width == 0 || desc.Height == 0) {
		return None[RenderTarget](), fmt.Errorf("render target %s: fixed size targets need a non-zero size", desc.Label)
	}
	if desc.DepthFormat != metadata.PIXEL_FORMAT_NONE && !desc.DepthFormat.IsDepth() {
		return None[RenderTarget](), fmt.Errorf("render target %s: %s is not a depth format", desc.Label, desc.DepthFormat)
	}
	rt := &RenderTarget{manager: m, desc: desc, depthHandle: None[Texture]()}
	rt.width, rt.height = rt.computeSize(m.backend.BackBufferSize())
	for i, format := range desc.ColorFormats {
		h := m.CreateTexture(TextureDesc{
			Label:    fmt.Sprintf("%s/color%d", desc.Label, i),
			Format:   format,
			Width:    rt.width,
			Height:   rt.height,
			MipCount: 1,
			Usage:    metadata.BUFFER_USAGE_RENDERTARGET,
			Sampler:  metadata.DefaultSamplerDesc(),
		})
		tex, _ := m.textures.get(h)
		rt.colorHandles = append(rt.colorHandles, h)
		rt.colors = append(rt.colors, tex)
	}
	if desc.DepthFormat != metadata.PIXEL_FORMAT_NONE {
		rt.depthHandle = m.CreateTexture(TextureDesc{
			Label:    desc.Label + "/depth",
			Format:   desc.DepthFormat,
			Width:    rt.width,
			Height:   rt.height,
			MipCount: 1,
			Usage:    metadata.BUFFER_USAGE_DEPTHSTENCIL,
			Sampler:  metadata.DefaultSamplerDesc(),
		})
		rt.depth, _ = m.textures.get(rt.depthHandle)
	}
	return m.renderTargets.add(rt), nil
}

// CreateShaderProgram registers an uncompiled program for the given file.
func (m *Manager) CreateShaderProgram(path string, kind metadata.ShaderProgramType) Handle[ShaderProgram] {
	return m.shaderPrograms.add(newShaderProgram(m, kind, path))
}

func (m *Manager) CreateShaderTemplate(program Handle[ShaderProgram]) (Handle[ShaderTemplate], error) {
	p, err := m.shaderPrograms.get(program)
	if err != nil {
		return None[ShaderTemplate](), err
	}
	if !p.IsCompiled() {
		return None[ShaderTemplate](), fmt.Errorf("shader program %s is not compiled", p.Path())
	}
	return m.shaderTemplates.add(newShaderTemplate(m, program, p)), nil
}

func (m *Manager) CreateShaderInput(template Handle[ShaderTemplate]) (Handle[ShaderInput], error) {
	t, err := m.shaderTemplates.get(template)
	if err != nil {
		return None[ShaderInput](), err
	}
	return m.shaderInputs.add(newShaderInput(t)), nil
}

var modelVertexFormat = []metadata.VertexAttribute{
	{Usage: metadata.VERTEX_ATTRIBUTE_USAGE_POSITION, Type: metadata.VERTEX_ATTRIBUTE_TYPE_FLOAT3},
	{Usage: metadata.VERTEX_ATTRIBUTE_USAGE_TEXCOORD, Type: metadata.VERTEX_ATTRIBUTE_TYPE_FLOAT2},
	{Usage: metadata.VERTEX_ATTRIBUTE_USAGE_NORMAL, Type: metadata.VERTEX_ATTRIBUTE_TYPE_FLOAT3},
	{Usage: metadata.VERTEX_ATTRIBUTE_USAGE_TANGENT, Type: metadata.VERTEX_ATTRIBUTE_TYPE_FLOAT3},
	{Usage: metadata.VERTEX_ATTRIBUTE_USAGE_BINORMAL, Type: metadata.VERTEX_ATTRIBUTE_TYPE_FLOAT3},
}

/**
 * @brief Loads a model through the configured ModelLoader and uploads every
 * mesh into its own vertex and index buffer.
 */
func (m *Manager) CreateModel(path string) (Handle[Model], error) {
	if m.modelLoader == nil {
		return None[Model](), core.NewResourceLoadError(path, core.LoadStageOpen, errors.New("no model loader configured"))
	}
	data, err := m.modelLoader.LoadModel(path)
	if err != nil {
		var loadErr *core.ResourceLoadError
		if errors.As(err, &loadErr) {
			return None[Model](), err
		}
		return None[Model](), core.NewResourceLoadError(path, core.LoadStageDecode, err)
	}

	model := &Model{
		id:        uuid.New(),
		path:      path,
		materials: data.Materials,
		bounds:    math.NewEmptyAABB(),
	}
	format := m.CreateVertexFormat(modelVertexFormat...)
	for i := range data.Meshes {
		mesh, err := m.uploadMesh(path, i, &data.Meshes[i], format)
		if err != nil {
			return None[Model](), core.NewResourceLoadError(path, core.LoadStageCreate, err)
		}
		model.bounds = model.bounds.Union(mesh.vb.Bounds())
		model.meshes = append(model.meshes, mesh)
	}
	core.LogDebug("loaded model %s: %d meshes, %d materials", path, len(model.meshes), len(model.materials))
	return m.models.add(model), nil
}

func (m *Manager) uploadMesh(path string, index int, md *MeshData, format Handle[VertexFormat]) (Mesh, error) {
	indexFormat := metadata.INDEX_FORMAT_16BIT
	if len(md.Positions) > 0xFFFF {
		indexFormat = metadata.INDEX_FORMAT_32BIT
	}
	ib := None[IndexBuffer]()
	if len(md.Indices) > 0 {
		ib = m.CreateIndexBuffer(uint32(len(md.Indices)), indexFormat, metadata.BUFFER_USAGE_STATIC)
		ibuf, _ := m.indexBuffers.get(ib)
		if err := ibuf.SetIndices(md.Indices); err != nil {
			return Mesh{}, err
		}
	}
	label := fmt.Sprintf("%s/%d", path, index)
	if md.Name != "" {
		label = path + "/" + md.Name
	}
	vbh, err := m.CreateVertexBuffer(label, format, uint32(len(md.Positions)), ib, metadata.BUFFER_USAGE_STATIC)
	if err != nil {
		return Mesh{}, err
	}
	vb, _ := m.vertexBuffers.get(vbh)
	for v, p := range md.Positions {
		vertex := uint32(v)
		if err := vb.SetAttribute(vertex, metadata.VERTEX_ATTRIBUTE_USAGE_POSITION, 0, p.X, p.Y, p.Z); err != nil {
			return Mesh{}, err
		}
		if v < len(md.TexCoords) {
			vb.SetAttribute(vertex, metadata.VERTEX_ATTRIBUTE_USAGE_TEXCOORD, 0, md.TexCoords[v].X, md.TexCoords[v].Y)
		}
		if v < len(md.Normals) {
			vb.SetAttribute(vertex, metadata.VERTEX_ATTRIBUTE_USAGE_NORMAL, 0, md.Normals[v].X, md.Normals[v].Y, md.Normals[v].Z)
		}
		if v < len(md.Tangents) {
			vb.SetAttribute(vertex, metadata.VERTEX_ATTRIBUTE_USAGE_TANGENT, 0, md.Tangents[v].X, md.Tangents[v].Y, md.Tangents[v].Z)
		}
		if v < len(md.Binormals) {
			vb.SetAttribute(vertex, metadata.VERTEX_ATTRIBUTE_USAGE_BINORMAL, 0, md.Binormals[v].X, md.Binormals[v].Y, md.Binormals[v].Z)
		}
	}
	return Mesh{Name: md.Name, MaterialIndex: md.MaterialIndex, vertexBuffer: vbh, vb: vb}, nil
}

/* Lookup */

func (m *Manager) VertexFormat(h Handle[VertexFormat]) (*VertexFormat, error) {
	return m.vertexFormats.get(h)
}

func (m *Manager) IndexBuffer(h Handle[IndexBuffer]) (*IndexBuffer, error) {
	return m.indexBuffers.get(h)
}

func (m *Manager) VertexBuffer(h Handle[VertexBuffer]) (*VertexBuffer, error) {
	return m.vertexBuffers.get(h)
}

func (m *Manager) Texture(h Handle[Texture]) (*Texture, error) {
	return m.textures.get(h)
}

func (m *Manager) RenderTarget(h Handle[RenderTarget]) (*RenderTarget, error) {
	return m.renderTargets.get(h)
}

func (m *Manager) ShaderProgram(h Handle[ShaderProgram]) (*ShaderProgram, error) {
	return m.shaderPrograms.get(h)
}

func (m *Manager) ShaderTemplate(h Handle[ShaderTemplate]) (*ShaderTemplate, error) {
	return m.shaderTemplates.get(h)
}

func (m *Manager) ShaderInput(h Handle[ShaderInput]) (*ShaderInput, error) {
	return m.shaderInputs.get(h)
}

func (m *Manager) Model(h Handle[Model]) (*Model, error) {
	return m.models.get(h)
}

// findByPath matches the exact path first and, unless strict, falls back to
// the first path containing it.
func findByPath[T any](p *pool[T], path string, strict bool, pathOf func(*T) string) (Handle[T], bool) {
	if h, ok := p.find(func(item *T) bool { return pathOf(item) == path }); ok {
		return h, true
	}
	if strict || path == "" {
		return None[T](), false
	}
	return p.find(func(item *T) bool { return strings.Contains(pathOf(item), path) })
}

func (m *Manager) FindTexture(path string, strict bool) (Handle[Texture], bool) {
	return findByPath(m.textures, path, strict, func(t *Texture) string { return t.path })
}

func (m *Manager) FindModel(path string, strict bool) (Handle[Model], bool) {
	return findByPath(m.models, path, strict, func(mdl *Model) string { return mdl.path })
}

func (m *Manager) FindShaderProgram(path string, kind metadata.ShaderProgramType) (Handle[ShaderProgram], bool) {
	return m.shaderPrograms.find(func(p *ShaderProgram) bool { return p.path == path && p.kind == kind })
}

func (m *Manager) FindRenderTarget(label string) (Handle[RenderTarget], bool) {
	return m.renderTargets.find(func(rt *RenderTarget) bool { return rt.Label() == label })
}

// ShaderPrograms returns the handles of every live program.
func (m *Manager) ShaderPrograms() []Handle[ShaderProgram] {
	return m.shaderPrograms.handles()
}

func (m *Manager) ShaderTemplates() []Handle[ShaderTemplate] {
	return m.shaderTemplates.handles()
}

func (m *Manager) ShaderInputs() []Handle[ShaderInput] {
	return m.shaderInputs.handles()
}

/* Counts */

func (m *Manager) VertexFormatCount() int   { return m.vertexFormats.count() }
func (m *Manager) IndexBufferCount() int    { return m.indexBuffers.count() }
func (m *Manager) VertexBufferCount() int   { return m.vertexBuffers.count() }
func (m *Manager) TextureCount() int        { return m.textures.count() }
func (m *Manager) RenderTargetCount() int   { return m.renderTargets.count() }
func (m *Manager) ShaderProgramCount() int  { return m.shaderPrograms.count() }
func (m *Manager) ShaderTemplateCount() int { return m.shaderTemplates.count() }
func (m *Manager) ShaderInputCount() int    { return m.shaderInputs.count() }
func (m *Manager) ModelCount() int          { return m.models.count() }

/* Active render target */

func (m *Manager) ActiveRenderTarget() *RenderTarget {
	m.activeMutex.Lock()
	defer m.activeMutex.Unlock()
	return m.activeTarget
}

// Resize resizes every dynamic render target to follow the new back buffer
// size. The active target is bound again with its new size.
func (m *Manager) Resize(width, height uint32) {
	size := math.Vec2i{X: int32(width), Y: int32(height)}
	active := m.ActiveRenderTarget()
	for _, h := range m.renderTargets.handles() {
		rt, err := m.renderTargets.get(h)
		if err != nil {
			continue
		}
		if rt.resize(size) {
			core.LogDebug("resized render target %s to %dx%d", rt.Label(), rt.width, rt.height)
			if rt == active {
				m.backend.BindRenderTarget(rt.Label(), len(rt.colors), rt.Size())
				m.backend.SetViewport(rt.Size(), math.Vec2i{})
			}
		}
	}
}

/* Release */

func (m *Manager) ReleaseVertexFormat(h Handle[VertexFormat]) error {
	_, err := m.vertexFormats.remove(h)
	return err
}

func (m *Manager) ReleaseIndexBuffer(h Handle[IndexBuffer]) error {
	_, err := m.indexBuffers.remove(h)
	return err
}

func (m *Manager) ReleaseVertexBuffer(h Handle[VertexBuffer]) error {
	_, err := m.vertexBuffers.remove(h)
	return err
}

func (m *Manager) ReleaseTexture(h Handle[Texture]) error {
	_, err := m.textures.remove(h)
	return err
}

// ReleaseRenderTarget unbinds the target if active and releases its surfaces.
func (m *Manager) ReleaseRenderTarget(h Handle[RenderTarget]) error {
	rt, err := m.renderTargets.remove(h)
	if err != nil {
		return err
	}
	if rt.IsActive() {
		rt.Disable()
	}
	for _, c := range rt.colorHandles {
		m.textures.remove(c)
	}
	if rt.depthHandle.Valid() {
		m.textures.remove(rt.depthHandle)
	}
	return nil
}

func (m *Manager) ReleaseShaderProgram(h Handle[ShaderProgram]) error {
	_, err := m.shaderPrograms.remove(h)
	return err
}

func (m *Manager) ReleaseShaderTemplate(h Handle[ShaderTemplate]) error {
	t, err := m.shaderTemplates.remove(h)
	if err != nil {
		return err
	}
	if t.activeInput != nil {
		t.Disable()
	}
	return nil
}

func (m *Manager) ReleaseShaderInput(h Handle[ShaderInput]) error {
	_, err := m.shaderInputs.remove(h)
	return err
}

// ReleaseModel releases the model together with the buffers of its meshes.
func (m *Manager) ReleaseModel(h Handle[Model]) error {
	model, err := m.models.remove(h)
	if err != nil {
		return err
	}
	for _, mesh := range model.meshes {
		m.vertexBuffers.remove(mesh.vertexBuffer)
		if mesh.vb != nil && mesh.vb.indexBufferHandle.Valid() {
			m.indexBuffers.remove(mesh.vb.indexBufferHandle)
		}
	}
	return nil
}

/**
 * @brief Releases everything, dependents first: models, vertex formats,
 * index and vertex buffers, shader inputs, templates and programs, render
 * targets and finally textures.
 */
func (m *Manager) ReleaseAll() {
	for _, h := range m.models.handles() {
		m.ReleaseModel(h)
	}
	for _, h := range m.vertexFormats.handles() {
		m.ReleaseVertexFormat(h)
	}
	for _, h := range m.indexBuffers.handles() {
		m.ReleaseIndexBuffer(h)
	}
	for _, h := range m.vertexBuffers.handles() {
		m.ReleaseVertexBuffer(h)
	}
	for _, h := range m.shaderInputs.handles() {
		m.ReleaseShaderInput(h)
	}
	for _, h := range m.shaderTemplates.handles() {
		m.ReleaseShaderTemplate(h)
	}
	for _, h := range m.shaderPrograms.handles() {
		m.ReleaseShaderProgram(h)
	}
	for _, h := range m.renderTargets.handles() {
		m.ReleaseRenderTarget(h)
	}
	for _, h := range m.textures.handles() {
		m.ReleaseTexture(h)
	}
}
