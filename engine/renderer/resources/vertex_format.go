package resources

import (
	"github.com/iftodebogdan/gitechdemo/engine/renderer/metadata"
)

// VertexFormat is an ordered list of attributes with packed offsets.
type VertexFormat struct {
	attributes []metadata.VertexAttribute
	offsets    []uint32
	stride     uint32
}

func newVertexFormat(attributes []metadata.VertexAttribute) *VertexFormat {
	vf := &VertexFormat{
		attributes: append([]metadata.VertexAttribute(nil), attributes...),
		offsets:    make([]uint32, len(attributes)),
	}
	for i, a := range attributes {
		vf.offsets[i] = vf.stride
		vf.stride += a.Type.Size()
	}
	return vf
}

func (vf *VertexFormat) Stride() uint32 {
	return vf.stride
}

func (vf *VertexFormat) AttributeCount() int {
	return len(vf.attributes)
}

func (vf *VertexFormat) Attribute(i int) metadata.VertexAttribute {
	return vf.attributes[i]
}

func (vf *VertexFormat) Offset(i int) uint32 {
	return vf.offsets[i]
}

// Find returns the position of the attribute with the given semantic.
func (vf *VertexFormat) Find(usage metadata.VertexAttributeUsage, usageIndex uint8) (int, bool) {
	for i, a := range vf.attributes {
		if a.Usage == usage && a.UsageIndex == usageIndex {
			return i, true
		}
	}
	return -1, false
}
