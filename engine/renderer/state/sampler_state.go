package state

import (
	"github.com/iftodebogdan/gitechdemo/engine/math"
	"github.com/iftodebogdan/gitechdemo/engine/renderer/backend"
	"github.com/iftodebogdan/gitechdemo/engine/renderer/metadata"
)

/**
 * @brief Caches the per-slot sampler configuration of the pixel stage. Setters
 * fail for slots outside [0, MAX_NUM_PSAMPLERS) or when the backend refuses
 * the value.
 */
type SamplerState struct {
	backend backend.Backend
	slots   [metadata.MAX_NUM_PSAMPLERS]metadata.SamplerDesc
}

func NewSamplerState(b backend.Backend) *SamplerState {
	ss := &SamplerState{backend: b}
	ss.Reset()
	return ss
}

func (ss *SamplerState) Reset() {
	for slot := uint32(0); slot < metadata.MAX_NUM_PSAMPLERS; slot++ {
		ss.SetFromDesc(slot, metadata.DefaultSamplerDesc())
	}
}

func (ss *SamplerState) push(slot uint32, kind metadata.SamplerStateKind, value uint32) bool {
	if slot >= metadata.MAX_NUM_PSAMPLERS {
		return false
	}
	return ss.backend.SetSamplerState(slot, kind, value)
}

// SetFromDesc applies every field of desc to the slot. It reports false if
// any of them was rejected.
func (ss *SamplerState) SetFromDesc(slot uint32, desc metadata.SamplerDesc) bool {
	ok := ss.SetAnisotropy(slot, desc.Anisotropy)
	ok = ss.SetMipLodBias(slot, desc.MipLodBias) && ok
	ok = ss.SetFilter(slot, desc.Filter) && ok
	ok = ss.SetBorderColor(slot, desc.BorderColor) && ok
	ok = ss.SetAddressingModeU(slot, desc.AddressingU) && ok
	ok = ss.SetAddressingModeV(slot, desc.AddressingV) && ok
	ok = ss.SetAddressingModeW(slot, desc.AddressingW) && ok
	ok = ss.SetSRGBEnabled(slot, desc.SRGBEnabled) && ok
	return ok
}

// Desc returns the cached configuration of a slot.
func (ss *SamplerState) Desc(slot uint32) (metadata.SamplerDesc, bool) {
	if slot >= metadata.MAX_NUM_PSAMPLERS {
		return metadata.SamplerDesc{}, false
	}
	return ss.slots[slot], true
}

func (ss *SamplerState) SetAnisotropy(slot uint32, anisotropy uint32) bool {
	if anisotropy == 0 {
		anisotropy = 1
	}
	if !ss.push(slot, metadata.SS_ANISOTROPY, anisotropy) {
		return false
	}
	ss.slots[slot].Anisotropy = anisotropy
	return true
}

func (ss *SamplerState) SetMipLodBias(slot uint32, bias float32) bool {
	if !ss.push(slot, metadata.SS_MIP_LOD_BIAS, floatValue(bias)) {
		return false
	}
	ss.slots[slot].MipLodBias = bias
	return true
}

func (ss *SamplerState) SetFilter(slot uint32, filter metadata.SamplerFilter) bool {
	if !ss.push(slot, metadata.SS_FILTER, uint32(filter)) {
		return false
	}
	ss.slots[slot].Filter = filter
	return true
}

func (ss *SamplerState) SetBorderColor(slot uint32, rgba [4]float32) bool {
	color := math.Vec4{X: rgba[0], Y: rgba[1], Z: rgba[2], W: rgba[3]}
	if !ss.push(slot, metadata.SS_BORDER_COLOR, colorValue(color)) {
		return false
	}
	ss.slots[slot].BorderColor = rgba
	return true
}

func (ss *SamplerState) SetAddressingModeU(slot uint32, mode metadata.SamplerAddressingMode) bool {
	if !ss.push(slot, metadata.SS_ADDRESS_U, uint32(mode)) {
		return false
	}
	ss.slots[slot].AddressingU = mode
	return true
}

func (ss *SamplerState) SetAddressingModeV(slot uint32, mode metadata.SamplerAddressingMode) bool {
	if !ss.push(slot, metadata.SS_ADDRESS_V, uint32(mode)) {
		return false
	}
	ss.slots[slot].AddressingV = mode
	return true
}

func (ss *SamplerState) SetAddressingModeW(slot uint32, mode metadata.SamplerAddressingMode) bool {
	if !ss.push(slot, metadata.SS_ADDRESS_W, uint32(mode)) {
		return false
	}
	ss.slots[slot].AddressingW = mode
	return true
}

// SetAddressingModeUVW sets the same mode on all three axes.
func (ss *SamplerState) SetAddressingModeUVW(slot uint32, mode metadata.SamplerAddressingMode) bool {
	ok := ss.SetAddressingModeU(slot, mode)
	ok = ss.SetAddressingModeV(slot, mode) && ok
	return ss.SetAddressingModeW(slot, mode) && ok
}

func (ss *SamplerState) SetSRGBEnabled(slot uint32, enabled bool) bool {
	if !ss.push(slot, metadata.SS_SRGB, boolValue(enabled)) {
		return false
	}
	ss.slots[slot].SRGBEnabled = enabled
	return true
}

func (ss *SamplerState) Anisotropy(slot uint32) uint32 {
	d, _ := ss.Desc(slot)
	return d.Anisotropy
}

func (ss *SamplerState) MipLodBias(slot uint32) float32 {
	d, _ := ss.Desc(slot)
	return d.MipLodBias
}

func (ss *SamplerState) Filter(slot uint32) metadata.SamplerFilter {
	d, _ := ss.Desc(slot)
	return d.Filter
}

func (ss *SamplerState) BorderColor(slot uint32) [4]float32 {
	d, _ := ss.Desc(slot)
	return d.BorderColor
}

func (ss *SamplerState) AddressingMode(slot uint32) (u, v, w metadata.SamplerAddressingMode) {
	d, _ := ss.Desc(slot)
	return d.AddressingU, d.AddressingV, d.AddressingW
}

func (ss *SamplerState) SRGBEnabled(slot uint32) bool {
	d, _ := ss.Desc(slot)
	return d.SRGBEnabled
}
