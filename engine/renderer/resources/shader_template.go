package resources

import (
	"encoding/binary"
	"fmt"

	"github.com/iftodebogdan/gitechdemo/engine/core"
	"github.com/iftodebogdan/gitechdemo/engine/renderer/metadata"
)

/**
 * @brief A reflected constant together with its byte offset in the shader
 * input buffer. Element e of an array starts at Offset + e*16*Rows.
 */
type InputDesc struct {
	metadata.ShaderConstant
	Offset uint32
}

func (d *InputDesc) elements() uint32 {
	return max(d.ArrayElements, 1)
}

/**
 * @brief Binds a compiled program to the device. A template owns the input
 * layout derived from the program's constant table and accepts at most one
 * enabled ShaderInput at a time.
 */
type ShaderTemplate struct {
	manager       *Manager
	programHandle Handle[ShaderProgram]
	program       *ShaderProgram
	inputs        []InputDesc
	inputSize     uint32
	generation    uint32
	activeInput   *ShaderInput
	boundSlots    []uint32
}

func newShaderTemplate(m *Manager, h Handle[ShaderProgram], program *ShaderProgram) *ShaderTemplate {
	t := &ShaderTemplate{
		manager:       m,
		programHandle: h,
		program:       program,
	}
	t.DescribeShaderInputs()
	return t
}

func (t *ShaderTemplate) Program() *ShaderProgram {
	return t.program
}

func (t *ShaderTemplate) ProgramHandle() Handle[ShaderProgram] {
	return t.programHandle
}

func (t *ShaderTemplate) Inputs() []InputDesc {
	return t.inputs
}

// InputSize is the byte size of a ShaderInput buffer for this template.
func (t *ShaderTemplate) InputSize() uint32 {
	return t.inputSize
}

func (t *ShaderTemplate) ActiveInput() *ShaderInput {
	return t.activeInput
}

/**
 * @brief Rebuilds the input layout from the program's constant table.
 * Called on creation and after the program is recompiled.
 */
func (t *ShaderTemplate) DescribeShaderInputs() {
	t.inputs = make([]InputDesc, 0, len(t.program.Constants()))
	t.inputSize = 0
	t.generation++
	for _, c := range t.program.Constants() {
		t.inputs = append(t.inputs, InputDesc{ShaderConstant: c, Offset: t.inputSize})
		t.inputSize += c.SizeBytes
	}
}

func (t *ShaderTemplate) textureAt(input *ShaderInput, d *InputDesc, element uint32) (*Texture, error) {
	h := HandleFromIndex[Texture](binary.LittleEndian.Uint32(input.data[d.Offset+element*metadata.REGISTER_SIZE_BYTES:]))
	if !h.Valid() {
		return nil, nil
	}
	tex, err := t.manager.Texture(h)
	if err != nil {
		return nil, fmt.Errorf("sampler %s: %w", d.Name, err)
	}
	if !tex.IsCompatible(d.Type) {
		return nil, fmt.Errorf("sampler %s (%s) with texture %s: %w", d.Name, d.Type, tex.Label(), core.ErrTextureSamplerMismatch)
	}
	return tex, nil
}

/**
 * @brief Enables the program and uploads every value of input: constants are
 * pushed to their registers, textures are bound to their sampler slots and
 * the texture's sampler settings are applied to the slot.
 */
func (t *ShaderTemplate) Enable(input *ShaderInput) error {
	if t.activeInput != nil {
		return fmt.Errorf("template %s: %w", t.program.Path(), core.ErrShaderInputActive)
	}
	if input == nil || input.template != t {
		return fmt.Errorf("template %s: shader input was created for another template: %w", t.program.Path(), core.ErrWrongInputType)
	}
	if input.generation != t.generation {
		return fmt.Errorf("template %s: shader input predates the last recompile, call Rebuild: %w", t.program.Path(), core.ErrWrongInputType)
	}

	// Check every texture before touching the device so a failure leaves
	// nothing half bound.
	for i := range t.inputs {
		d := &t.inputs[i]
		if !d.Type.IsSampler() {
			continue
		}
		for e := uint32(0); e < d.elements(); e++ {
			if _, err := t.textureAt(input, d, e); err != nil {
				return err
			}
		}
	}

	kind := t.program.Kind()
	b := t.manager.backend
	b.EnableShader(kind, t.program.Label())
	t.boundSlots = t.boundSlots[:0]
	for i := range t.inputs {
		d := &t.inputs[i]
		if !d.Type.IsSampler() {
			b.SetShaderConstant(kind, d.RegisterType, d.RegisterIndex, input.data[d.Offset:d.Offset+d.SizeBytes], d.RegisterCount)
			continue
		}
		for e := uint32(0); e < d.elements(); e++ {
			tex, _ := t.textureAt(input, d, e)
			if tex == nil {
				continue
			}
			slot := d.RegisterIndex + e
			b.BindTexture(slot, tex.Label())
			if kind == metadata.SHADER_PROGRAM_TYPE_PIXEL && t.manager.samplerState != nil {
				t.manager.samplerState.SetFromDesc(slot, tex.SamplerDesc())
			}
			t.boundSlots = append(t.boundSlots, slot)
		}
	}
	t.activeInput = input
	return nil
}

// Disable unbinds the textures bound by Enable and disables the program.
func (t *ShaderTemplate) Disable() error {
	if t.activeInput == nil {
		return fmt.Errorf("template %s: %w", t.program.Path(), core.ErrNoShaderInputActive)
	}
	b := t.manager.backend
	for _, slot := range t.boundSlots {
		b.UnbindTexture(slot)
	}
	t.boundSlots = t.boundSlots[:0]
	b.DisableShader(t.program.Kind())
	t.activeInput = nil
	return nil
}
