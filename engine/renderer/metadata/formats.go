package metadata

// PixelFormat lists the surface formats used by the renderer.
type PixelFormat uint8

const (
	PIXEL_FORMAT_NONE PixelFormat = iota
	PIXEL_FORMAT_R8G8B8
	PIXEL_FORMAT_A8R8G8B8
	PIXEL_FORMAT_X8R8G8B8
	PIXEL_FORMAT_A8
	PIXEL_FORMAT_L8
	PIXEL_FORMAT_R16F
	PIXEL_FORMAT_G16R16F
	PIXEL_FORMAT_A16B16G16R16F
	PIXEL_FORMAT_R32F
	PIXEL_FORMAT_G32R32F
	PIXEL_FORMAT_A32B32G32R32F
	PIXEL_FORMAT_DXT1
	PIXEL_FORMAT_DXT3
	PIXEL_FORMAT_DXT5
	/** @brief Depth formats. INTZ can be sampled as a texture after rendering. */
	PIXEL_FORMAT_D16
	PIXEL_FORMAT_D24S8
	PIXEL_FORMAT_D32F
	PIXEL_FORMAT_INTZ
)

var pixelFormatNames = map[PixelFormat]string{
	PIXEL_FORMAT_NONE:          "NONE",
	PIXEL_FORMAT_R8G8B8:        "R8G8B8",
	PIXEL_FORMAT_A8R8G8B8:      "A8R8G8B8",
	PIXEL_FORMAT_X8R8G8B8:      "X8R8G8B8",
	PIXEL_FORMAT_A8:            "A8",
	PIXEL_FORMAT_L8:            "L8",
	PIXEL_FORMAT_R16F:          "R16F",
	PIXEL_FORMAT_G16R16F:       "G16R16F",
	PIXEL_FORMAT_A16B16G16R16F: "A16B16G16R16F",
	PIXEL_FORMAT_R32F:          "R32F",
	PIXEL_FORMAT_G32R32F:       "G32R32F",
	PIXEL_FORMAT_A32B32G32R32F: "A32B32G32R32F",
	PIXEL_FORMAT_DXT1:          "DXT1",
	PIXEL_FORMAT_DXT3:          "DXT3",
	PIXEL_FORMAT_DXT5:          "DXT5",
	PIXEL_FORMAT_D16:           "D16",
	PIXEL_FORMAT_D24S8:         "D24S8",
	PIXEL_FORMAT_D32F:          "D32F",
	PIXEL_FORMAT_INTZ:          "INTZ",
}

func (f PixelFormat) String() string {
	if n, ok := pixelFormatNames[f]; ok {
		return n
	}
	return "UNKNOWN"
}

// BytesPerPixel returns the size of one texel. Block compressed formats report 0.
func (f PixelFormat) BytesPerPixel() uint32 {
	switch f {
	case PIXEL_FORMAT_A8, PIXEL_FORMAT_L8:
		return 1
	case PIXEL_FORMAT_R16F, PIXEL_FORMAT_D16:
		return 2
	case PIXEL_FORMAT_R8G8B8:
		return 3
	case PIXEL_FORMAT_A8R8G8B8, PIXEL_FORMAT_X8R8G8B8, PIXEL_FORMAT_G16R16F, PIXEL_FORMAT_R32F,
		PIXEL_FORMAT_D24S8, PIXEL_FORMAT_D32F, PIXEL_FORMAT_INTZ:
		return 4
	case PIXEL_FORMAT_A16B16G16R16F, PIXEL_FORMAT_G32R32F:
		return 8
	case PIXEL_FORMAT_A32B32G32R32F:
		return 16
	}
	return 0
}

func (f PixelFormat) IsDepth() bool {
	return f >= PIXEL_FORMAT_D16 && f <= PIXEL_FORMAT_INTZ
}

/**
 * @brief Describes how a buffer is going to be used by the device.
 */
type BufferUsage uint8

const (
	BUFFER_USAGE_NONE BufferUsage = iota
	BUFFER_USAGE_STATIC
	BUFFER_USAGE_DYNAMIC
	BUFFER_USAGE_RENDERTARGET
	BUFFER_USAGE_DEPTHSTENCIL
	BUFFER_USAGE_TEXTURE
)

type TextureType uint8

const (
	TEXTURE_TYPE_2D TextureType = iota
	TEXTURE_TYPE_3D
	TEXTURE_TYPE_CUBE
)

type IndexFormat uint8

const (
	INDEX_FORMAT_16BIT IndexFormat = iota
	INDEX_FORMAT_32BIT
)

func (f IndexFormat) Size() uint32 {
	if f == INDEX_FORMAT_32BIT {
		return 4
	}
	return 2
}

type PrimitiveType uint8

const (
	PRIMITIVE_TRIANGLE_LIST PrimitiveType = iota
	PRIMITIVE_TRIANGLE_STRIP
	PRIMITIVE_LINE_LIST
	PRIMITIVE_POINT_LIST
)

// VertexAttributeUsage is the semantic of a vertex attribute.
type VertexAttributeUsage uint8

const (
	VERTEX_ATTRIBUTE_USAGE_POSITION VertexAttributeUsage = iota
	VERTEX_ATTRIBUTE_USAGE_NORMAL
	VERTEX_ATTRIBUTE_USAGE_TANGENT
	VERTEX_ATTRIBUTE_USAGE_BINORMAL
	VERTEX_ATTRIBUTE_USAGE_TEXCOORD
	VERTEX_ATTRIBUTE_USAGE_COLOR
)

type VertexAttributeType uint8

const (
	VERTEX_ATTRIBUTE_TYPE_FLOAT1 VertexAttributeType = iota
	VERTEX_ATTRIBUTE_TYPE_FLOAT2
	VERTEX_ATTRIBUTE_TYPE_FLOAT3
	VERTEX_ATTRIBUTE_TYPE_FLOAT4
	VERTEX_ATTRIBUTE_TYPE_UBYTE4
)

func (t VertexAttributeType) Size() uint32 {
	switch t {
	case VERTEX_ATTRIBUTE_TYPE_FLOAT1, VERTEX_ATTRIBUTE_TYPE_UBYTE4:
		return 4
	case VERTEX_ATTRIBUTE_TYPE_FLOAT2:
		return 8
	case VERTEX_ATTRIBUTE_TYPE_FLOAT3:
		return 12
	case VERTEX_ATTRIBUTE_TYPE_FLOAT4:
		return 16
	}
	return 0
}

// VertexAttribute is one element of a vertex format.
type VertexAttribute struct {
	Usage      VertexAttributeUsage
	Type       VertexAttributeType
	UsageIndex uint8
}
