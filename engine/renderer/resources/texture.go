package resources

import (
	"fmt"
	"math/bits"

	"github.com/google/uuid"

	"github.com/iftodebogdan/gitechdemo/engine/renderer/metadata"
)

/**
 * @brief Creation parameters for a texture.
 */
type TextureDesc struct {
	Label  string
	Path   string
	Type   metadata.TextureType
	Format metadata.PixelFormat
	Width  uint32
	Height uint32
	/** @brief Depth of a 3D texture. Treated as 1 for other types. */
	Depth uint32
	/** @brief Number of mip levels. 0 requests the full chain down to 1x1. */
	MipCount uint32
	Usage    metadata.BufferUsage
	Sampler  metadata.SamplerDesc
}

/**
 * @brief Decoded image data as produced by a TextureLoader. Mips[0] is the
 * top level; each level is tightly packed.
 */
type TextureData struct {
	Type   metadata.TextureType
	Format metadata.PixelFormat
	Width  uint32
	Height uint32
	Depth  uint32
	Mips   [][]byte
}

// TextureLoader decodes a texture file. It is implemented by the asset package.
type TextureLoader interface {
	LoadTexture(path string) (*TextureData, error)
}

// FullMipCount returns the length of the mip chain for the given size.
func FullMipCount(width, height uint32) uint32 {
	return uint32(bits.Len32(max(width, height, 1)))
}

func mipDimension(size, level uint32) uint32 {
	return max(size>>level, 1)
}

type Texture struct {
	Buffer
	id         uuid.UUID
	label      string
	path       string
	texType    metadata.TextureType
	format     metadata.PixelFormat
	width      uint32
	height     uint32
	depth      uint32
	mipCount   uint32
	mipOffsets []uint32
	sampler    metadata.SamplerDesc
}

func newTexture(desc TextureDesc) *Texture {
	t := &Texture{
		id:      uuid.New(),
		label:   desc.Label,
		path:    desc.Path,
		texType: desc.Type,
		format:  desc.Format,
		sampler: desc.Sampler,
	}
	if t.label == "" {
		t.label = desc.Path
	}
	if t.label == "" {
		t.label = "texture-" + t.id.String()[:8]
	}
	if t.sampler.Anisotropy == 0 {
		t.sampler.Anisotropy = 1
	}
	t.allocate(desc.Width, desc.Height, desc.Depth, desc.MipCount, desc.Usage)
	return t
}

// allocate sizes the mip chain. Render target surfaces have no CPU copy.
func (t *Texture) allocate(width, height, depth, mipCount uint32, usage metadata.BufferUsage) {
	t.width = max(width, 1)
	t.height = max(height, 1)
	t.depth = 1
	if t.texType == metadata.TEXTURE_TYPE_3D {
		t.depth = max(depth, 1)
	}
	faces := uint32(1)
	if t.texType == metadata.TEXTURE_TYPE_CUBE {
		faces = 6
	}
	if mipCount == 0 {
		mipCount = FullMipCount(t.width, t.height)
	}
	t.mipCount = min(mipCount, FullMipCount(t.width, t.height))
	t.mipOffsets = make([]uint32, t.mipCount+1)
	texels := uint32(0)
	for level := uint32(0); level < t.mipCount; level++ {
		t.mipOffsets[level] = texels * t.format.BytesPerPixel()
		texels += mipDimension(t.width, level) * mipDimension(t.height, level) * mipDimension(t.depth, level) * faces
	}
	t.mipOffsets[t.mipCount] = texels * t.format.BytesPerPixel()

	t.Buffer = Buffer{
		elementCount: texels,
		elementSize:  t.format.BytesPerPixel(),
		usage:        usage,
	}
	if usage != metadata.BUFFER_USAGE_RENDERTARGET && usage != metadata.BUFFER_USAGE_DEPTHSTENCIL {
		t.data = make([]byte, texels*t.format.BytesPerPixel())
	}
}

func (t *Texture) ID() uuid.UUID {
	return t.id
}

func (t *Texture) Label() string {
	return t.label
}

func (t *Texture) Path() string {
	return t.path
}

func (t *Texture) Type() metadata.TextureType {
	return t.texType
}

func (t *Texture) Format() metadata.PixelFormat {
	return t.format
}

func (t *Texture) Width() uint32 {
	return t.width
}

func (t *Texture) Height() uint32 {
	return t.height
}

func (t *Texture) Depth() uint32 {
	return t.depth
}

func (t *Texture) MipCount() uint32 {
	return t.mipCount
}

// MipSize returns the width and height of a mip level.
func (t *Texture) MipSize(level uint32) (uint32, uint32) {
	return mipDimension(t.width, level), mipDimension(t.height, level)
}

// MipData returns the bytes of one level, or nil for render target surfaces.
func (t *Texture) MipData(level uint32) []byte {
	if t.data == nil || level >= t.mipCount {
		return nil
	}
	return t.data[t.mipOffsets[level]:t.mipOffsets[level+1]]
}

func (t *Texture) SetMipData(level uint32, data []byte) error {
	dst := t.MipData(level)
	if dst == nil {
		return fmt.Errorf("texture %s has no level %d", t.label, level)
	}
	if len(data) != len(dst) {
		return fmt.Errorf("texture %s level %d expects %d bytes, got %d", t.label, level, len(dst), len(data))
	}
	copy(dst, data)
	return nil
}

// IsCompatible reports whether the texture can be bound to a sampler of the
// given input type.
func (t *Texture) IsCompatible(sampler metadata.InputType) bool {
	switch sampler {
	case metadata.INPUT_TYPE_SAMPLER:
		return true
	case metadata.INPUT_TYPE_SAMPLER1D, metadata.INPUT_TYPE_SAMPLER2D:
		return t.texType == metadata.TEXTURE_TYPE_2D
	case metadata.INPUT_TYPE_SAMPLER3D:
		return t.texType == metadata.TEXTURE_TYPE_3D
	case metadata.INPUT_TYPE_SAMPLERCUBE:
		return t.texType == metadata.TEXTURE_TYPE_CUBE
	}
	return false
}

func (t *Texture) SamplerDesc() metadata.SamplerDesc {
	return t.sampler
}

func (t *Texture) SetSamplerDesc(desc metadata.SamplerDesc) {
	t.sampler = desc
	if t.sampler.Anisotropy == 0 {
		t.sampler.Anisotropy = 1
	}
}

func (t *Texture) SetFilter(filter metadata.SamplerFilter) {
	t.sampler.Filter = filter
}

func (t *Texture) SetAnisotropy(anisotropy uint32) {
	t.sampler.Anisotropy = max(anisotropy, 1)
}

func (t *Texture) SetMipLodBias(bias float32) {
	t.sampler.MipLodBias = bias
}

func (t *Texture) SetBorderColor(color [4]float32) {
	t.sampler.BorderColor = color
}

func (t *Texture) SetAddressingMode(mode metadata.SamplerAddressingMode) {
	t.sampler.AddressingU = mode
	t.sampler.AddressingV = mode
	t.sampler.AddressingW = mode
}

func (t *Texture) SetSRGBEnabled(enabled bool) {
	t.sampler.SRGBEnabled = enabled
}
