package metadata

type Cmp uint8

const (
	CMP_NEVER Cmp = iota
	CMP_LESS
	CMP_EQUAL
	CMP_LESSEQUAL
	CMP_GREATER
	CMP_NOTEQUAL
	CMP_GREATEREQUAL
	CMP_ALWAYS
)

type Blend uint8

const (
	BLEND_ZERO Blend = iota
	BLEND_ONE
	BLEND_SRCCOLOR
	BLEND_INVSRCCOLOR
	BLEND_SRCALPHA
	BLEND_INVSRCALPHA
	BLEND_DSTALPHA
	BLEND_INVDSTALPHA
	BLEND_DSTCOLOR
	BLEND_INVDSTCOLOR
	BLEND_SRCALPHASAT
	BLEND_BLENDFACTOR
	BLEND_INVBLENDFACTOR
)

type Cull uint8

const (
	CULL_NONE Cull = iota
	CULL_CW
	CULL_CCW
)

type ZBuffer uint8

const (
	ZB_DISABLED ZBuffer = iota
	ZB_ENABLED
	ZB_USEW
)

type StencilOp uint8

const (
	STENCIL_OP_KEEP StencilOp = iota
	STENCIL_OP_ZERO
	STENCIL_OP_REPLACE
	STENCIL_OP_INCRSAT
	STENCIL_OP_DECRSAT
	STENCIL_OP_INVERT
	STENCIL_OP_INCR
	STENCIL_OP_DECR
)

type Fill uint8

const (
	FILL_POINT Fill = iota
	FILL_WIREFRAME
	FILL_SOLID
)

/**
 * @brief Identifies a single fixed-function state pushed to the device.
 * Values are encoded as uint32: booleans as 0/1, enums by value and
 * floats by their IEEE-754 bits.
 */
type RenderStateKind uint8

const (
	RS_ALPHA_TEST_ENABLED RenderStateKind = iota
	RS_ALPHA_TEST_FUNC
	RS_ALPHA_TEST_REF
	RS_COLOR_BLEND_ENABLED
	RS_COLOR_SRC_BLEND
	RS_COLOR_DST_BLEND
	RS_BLEND_FACTOR
	RS_CULL_MODE
	RS_Z_ENABLED
	RS_Z_FUNC
	RS_Z_WRITE_ENABLED
	RS_COLOR_WRITE
	RS_SLOPE_SCALED_DEPTH_BIAS
	RS_DEPTH_BIAS
	RS_STENCIL_ENABLED
	RS_STENCIL_FUNC
	RS_STENCIL_REF
	RS_STENCIL_MASK
	RS_STENCIL_WRITE_MASK
	RS_STENCIL_FAIL
	RS_STENCIL_ZFAIL
	RS_STENCIL_PASS
	RS_FILL_MODE
	RS_SCISSOR_ENABLED
	RS_SRGB_WRITE_ENABLED
)

var renderStateNames = [...]string{
	"ALPHA_TEST_ENABLED", "ALPHA_TEST_FUNC", "ALPHA_TEST_REF", "COLOR_BLEND_ENABLED",
	"COLOR_SRC_BLEND", "COLOR_DST_BLEND", "BLEND_FACTOR", "CULL_MODE", "Z_ENABLED",
	"Z_FUNC", "Z_WRITE_ENABLED", "COLOR_WRITE", "SLOPE_SCALED_DEPTH_BIAS", "DEPTH_BIAS",
	"STENCIL_ENABLED", "STENCIL_FUNC", "STENCIL_REF", "STENCIL_MASK", "STENCIL_WRITE_MASK",
	"STENCIL_FAIL", "STENCIL_ZFAIL", "STENCIL_PASS", "FILL_MODE", "SCISSOR_ENABLED",
	"SRGB_WRITE_ENABLED",
}

func (k RenderStateKind) String() string {
	if int(k) < len(renderStateNames) {
		return renderStateNames[k]
	}
	return "UNKNOWN"
}

// Color write channel bits, combined into the RS_COLOR_WRITE value.
const (
	COLOR_WRITE_RED   uint32 = 1 << 0
	COLOR_WRITE_GREEN uint32 = 1 << 1
	COLOR_WRITE_BLUE  uint32 = 1 << 2
	COLOR_WRITE_ALPHA uint32 = 1 << 3
	COLOR_WRITE_ALL          = COLOR_WRITE_RED | COLOR_WRITE_GREEN | COLOR_WRITE_BLUE | COLOR_WRITE_ALPHA
)

type SamplerFilter uint8

const (
	SF_MIN_MAG_POINT_MIP_NONE SamplerFilter = iota
	SF_MIN_MAG_LINEAR_MIP_NONE
	SF_MIN_MAG_POINT_MIP_POINT
	SF_MIN_MAG_POINT_MIP_LINEAR
	SF_MIN_MAG_LINEAR_MIP_POINT
	SF_MIN_MAG_LINEAR_MIP_LINEAR
)

type SamplerAddressingMode uint8

const (
	SAM_WRAP SamplerAddressingMode = iota
	SAM_MIRROR
	SAM_CLAMP
	SAM_BORDER
)

type SamplerStateKind uint8

const (
	SS_ANISOTROPY SamplerStateKind = iota
	SS_MIP_LOD_BIAS
	SS_FILTER
	SS_BORDER_COLOR
	SS_ADDRESS_U
	SS_ADDRESS_V
	SS_ADDRESS_W
	SS_SRGB
)

// MAX_NUM_PSAMPLERS is the number of pixel shader sampler slots.
const MAX_NUM_PSAMPLERS = 16

/**
 * @brief The sampler configuration a texture carries with it. It is pushed
 * into the sampler state manager whenever the texture is bound to a sampler.
 */
type SamplerDesc struct {
	Anisotropy  uint32
	MipLodBias  float32
	Filter      SamplerFilter
	BorderColor [4]float32
	AddressingU SamplerAddressingMode
	AddressingV SamplerAddressingMode
	AddressingW SamplerAddressingMode
	SRGBEnabled bool
}

// DefaultSamplerDesc is the state of a freshly reset sampler slot.
func DefaultSamplerDesc() SamplerDesc {
	return SamplerDesc{
		Anisotropy:  1,
		Filter:      SF_MIN_MAG_POINT_MIP_NONE,
		AddressingU: SAM_WRAP,
		AddressingV: SAM_WRAP,
		AddressingW: SAM_WRAP,
	}
}
