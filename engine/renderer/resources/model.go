package resources

import (
	"github.com/google/uuid"

	"github.com/iftodebogdan/gitechdemo/engine/math"
)

// TextureKind is the role a texture plays in a material.
type TextureKind uint8

const (
	TEXTURE_KIND_DIFFUSE TextureKind = iota
	TEXTURE_KIND_SPECULAR
	/** @brief Tangent space normal map. OBJ files reference it as a bump/height map. */
	TEXTURE_KIND_NORMAL
	TEXTURE_KIND_MAX
)

func (k TextureKind) String() string {
	switch k {
	case TEXTURE_KIND_DIFFUSE:
		return "diffuse"
	case TEXTURE_KIND_SPECULAR:
		return "specular"
	case TEXTURE_KIND_NORMAL:
		return "normal"
	}
	return "unknown"
}

type Material struct {
	Name string
	/** @brief Texture paths per kind, relative to the model file. Empty when unused. */
	Textures          [TEXTURE_KIND_MAX]string
	ShininessStrength float32
}

// MeshData is one mesh of a decoded model. Attribute slices are either empty
// or as long as Positions.
type MeshData struct {
	Name          string
	Positions     []math.Vec3
	Normals       []math.Vec3
	Tangents      []math.Vec3
	Binormals     []math.Vec3
	TexCoords     []math.Vec2
	Indices       []uint32
	MaterialIndex int
}

type ModelData struct {
	Meshes    []MeshData
	Materials []Material
}

// ModelLoader decodes a model file. It is implemented by the asset package.
type ModelLoader interface {
	LoadModel(path string) (*ModelData, error)
}

type Mesh struct {
	Name          string
	MaterialIndex int
	vertexBuffer  Handle[VertexBuffer]
	vb            *VertexBuffer
}

func (m *Mesh) VertexBufferHandle() Handle[VertexBuffer] {
	return m.vertexBuffer
}

func (m *Mesh) VertexBuffer() *VertexBuffer {
	return m.vb
}

type Model struct {
	id        uuid.UUID
	path      string
	meshes    []Mesh
	materials []Material
	bounds    math.AABB
}

func (m *Model) ID() uuid.UUID {
	return m.id
}

func (m *Model) Path() string {
	return m.path
}

func (m *Model) MeshCount() int {
	return len(m.meshes)
}

func (m *Model) Mesh(i int) *Mesh {
	return &m.meshes[i]
}

func (m *Model) Meshes() []Mesh {
	return m.meshes
}

func (m *Model) MaterialCount() int {
	return len(m.materials)
}

// Material returns the material of index i, or nil when i is out of range.
func (m *Model) Material(i int) *Material {
	if i < 0 || i >= len(m.materials) {
		return nil
	}
	return &m.materials[i]
}

// Bounds is the object space AABB of every vertex of every mesh.
func (m *Model) Bounds() math.AABB {
	return m.bounds
}
