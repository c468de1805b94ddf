package resources

import (
	"encoding/binary"
	"fmt"
	"math"

	gmath "github.com/iftodebogdan/gitechdemo/engine/math"
	"github.com/iftodebogdan/gitechdemo/engine/renderer/metadata"
)

/**
 * @brief Vertex data laid out according to a VertexFormat, optionally drawn
 * through an index buffer. The handles are authoritative; the pointers are
 * cached for the draw path.
 */
type VertexBuffer struct {
	Buffer
	label             string
	formatHandle      Handle[VertexFormat]
	format            *VertexFormat
	indexBufferHandle Handle[IndexBuffer]
	indexBuffer       *IndexBuffer
}

func (vb *VertexBuffer) Label() string {
	return vb.label
}

func (vb *VertexBuffer) Format() *VertexFormat {
	return vb.format
}

func (vb *VertexBuffer) FormatHandle() Handle[VertexFormat] {
	return vb.formatHandle
}

func (vb *VertexBuffer) IndexBuffer() *IndexBuffer {
	return vb.indexBuffer
}

func (vb *VertexBuffer) IndexBufferHandle() Handle[IndexBuffer] {
	return vb.indexBufferHandle
}

// PrimitiveCount is the number of triangles the buffer draws as a list.
func (vb *VertexBuffer) PrimitiveCount() uint32 {
	if vb.indexBuffer != nil {
		return vb.indexBuffer.ElementCount() / 3
	}
	return vb.elementCount / 3
}

func (vb *VertexBuffer) attributeOffset(vertex uint32, usage metadata.VertexAttributeUsage, usageIndex uint8) (uint32, metadata.VertexAttribute, error) {
	if vertex >= vb.elementCount {
		return 0, metadata.VertexAttribute{}, fmt.Errorf("vertex %d out of range [0, %d)", vertex, vb.elementCount)
	}
	i, ok := vb.format.Find(usage, usageIndex)
	if !ok {
		return 0, metadata.VertexAttribute{}, fmt.Errorf("vertex format has no attribute with usage %d/%d", usage, usageIndex)
	}
	return vertex*vb.elementSize + vb.format.Offset(i), vb.format.Attribute(i), nil
}

func componentCount(t metadata.VertexAttributeType) int {
	if t == metadata.VERTEX_ATTRIBUTE_TYPE_UBYTE4 {
		return 4
	}
	return int(t.Size() / 4)
}

// SetAttribute writes up to the attribute's component count of values.
func (vb *VertexBuffer) SetAttribute(vertex uint32, usage metadata.VertexAttributeUsage, usageIndex uint8, values ...float32) error {
	off, attr, err := vb.attributeOffset(vertex, usage, usageIndex)
	if err != nil {
		return err
	}
	n := min(componentCount(attr.Type), len(values))
	for c := 0; c < n; c++ {
		if attr.Type == metadata.VERTEX_ATTRIBUTE_TYPE_UBYTE4 {
			vb.data[off+uint32(c)] = uint8(gmath.Clamp(values[c], 0, 1) * 255)
			continue
		}
		binary.LittleEndian.PutUint32(vb.data[off+uint32(c)*4:], math.Float32bits(values[c]))
	}
	return nil
}

func (vb *VertexBuffer) Attribute(vertex uint32, usage metadata.VertexAttributeUsage, usageIndex uint8) ([]float32, error) {
	off, attr, err := vb.attributeOffset(vertex, usage, usageIndex)
	if err != nil {
		return nil, err
	}
	out := make([]float32, componentCount(attr.Type))
	for c := range out {
		if attr.Type == metadata.VERTEX_ATTRIBUTE_TYPE_UBYTE4 {
			out[c] = float32(vb.data[off+uint32(c)]) / 255
			continue
		}
		out[c] = math.Float32frombits(binary.LittleEndian.Uint32(vb.data[off+uint32(c)*4:]))
	}
	return out, nil
}

// Position returns the POSITION attribute of a vertex, or the origin when
// the format carries none.
func (vb *VertexBuffer) Position(vertex uint32) gmath.Vec3 {
	p, err := vb.Attribute(vertex, metadata.VERTEX_ATTRIBUTE_USAGE_POSITION, 0)
	if err != nil || len(p) < 3 {
		return gmath.NewVec3Zero()
	}
	return gmath.NewVec3(p[0], p[1], p[2])
}

// Bounds is the AABB of every vertex position in the buffer.
func (vb *VertexBuffer) Bounds() gmath.AABB {
	box := gmath.NewEmptyAABB()
	for v := uint32(0); v < vb.elementCount; v++ {
		box = box.Extend(vb.Position(v))
	}
	return box
}
