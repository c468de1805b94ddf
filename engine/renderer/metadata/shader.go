package metadata

type ShaderProgramType uint8

const (
	SHADER_PROGRAM_TYPE_VERTEX ShaderProgramType = iota
	SHADER_PROGRAM_TYPE_PIXEL
)

func (t ShaderProgramType) String() string {
	if t == SHADER_PROGRAM_TYPE_VERTEX {
		return "vertex"
	}
	return "pixel"
}

/**
 * @brief The data type of a reflected shader constant.
 */
type InputType uint8

const (
	INPUT_TYPE_NONE InputType = iota
	INPUT_TYPE_BOOL
	INPUT_TYPE_INT
	INPUT_TYPE_FLOAT
	INPUT_TYPE_SAMPLER
	INPUT_TYPE_SAMPLER1D
	INPUT_TYPE_SAMPLER2D
	INPUT_TYPE_SAMPLER3D
	INPUT_TYPE_SAMPLERCUBE
)

var inputTypeNames = [...]string{"none", "bool", "int", "float", "sampler", "sampler1D", "sampler2D", "sampler3D", "samplerCUBE"}

func (t InputType) String() string {
	if int(t) < len(inputTypeNames) {
		return inputTypeNames[t]
	}
	return "unknown"
}

func (t InputType) IsSampler() bool {
	return t >= INPUT_TYPE_SAMPLER && t <= INPUT_TYPE_SAMPLERCUBE
}

/**
 * @brief The register file a constant lives in. Every register is 16 bytes
 * wide (four 32-bit components).
 */
type RegisterType uint8

const (
	REGISTER_TYPE_NONE RegisterType = iota
	REGISTER_TYPE_BOOL
	REGISTER_TYPE_INT4
	REGISTER_TYPE_FLOAT4
	REGISTER_TYPE_SAMPLER
)

// REGISTER_SIZE_BYTES is the stride between array elements in the input buffer.
const REGISTER_SIZE_BYTES = 16

/**
 * @brief A constant reflected from a compiled shader program.
 */
type ShaderConstant struct {
	Name          string
	Type          InputType
	RegisterType  RegisterType
	RegisterIndex uint32
	RegisterCount uint32
	Rows          uint32
	Columns       uint32
	ArrayElements uint32
	StructMembers uint32
	SizeBytes     uint32
}
