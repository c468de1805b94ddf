package resources

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/iftodebogdan/gitechdemo/engine/core"
	gmath "github.com/iftodebogdan/gitechdemo/engine/math"
	"github.com/iftodebogdan/gitechdemo/engine/renderer/backend"
	"github.com/iftodebogdan/gitechdemo/engine/renderer/metadata"
)

/**
 * @brief The values for every constant of a ShaderTemplate. Values live in a
 * byte buffer laid out as the template's InputDescs, one 16 byte register per
 * row of every array element:
 *   - numbers are written in the encoding of their register file (float32
 *     for FLOAT4 registers, int32 for INT4, 0/1 for BOOL),
 *   - matrices are stored one row per register,
 *   - textures are stored as the raw handle index of the bound texture.
 */
type ShaderInput struct {
	Buffer
	template   *ShaderTemplate
	descs      []InputDesc
	generation uint32
	names      map[string]int
}

func newShaderInput(t *ShaderTemplate) *ShaderInput {
	si := &ShaderInput{template: t}
	si.layout()
	return si
}

func (si *ShaderInput) layout() {
	t := si.template
	si.Buffer = newBuffer(t.inputSize, 1, metadata.BUFFER_USAGE_DYNAMIC)
	si.descs = t.inputs
	si.generation = t.generation
	si.names = make(map[string]int, len(si.descs))
	for i := range si.descs {
		d := &si.descs[i]
		si.names[d.Name] = i
		if d.Type.IsSampler() {
			for e := uint32(0); e < d.elements(); e++ {
				binary.LittleEndian.PutUint32(si.data[d.Offset+e*metadata.REGISTER_SIZE_BYTES:], invalidIndex)
			}
		}
	}
}

/**
 * @brief Re-lays the buffer out after the template was re-described. Values
 * of constants that kept their name, type and shape survive.
 */
func (si *ShaderInput) Rebuild() {
	oldData, oldDescs, oldNames := si.data, si.descs, si.names
	si.layout()
	for name, i := range si.names {
		j, ok := oldNames[name]
		if !ok {
			continue
		}
		nd, od := &si.descs[i], &oldDescs[j]
		if nd.Type != od.Type || nd.RegisterType != od.RegisterType || nd.SizeBytes != od.SizeBytes ||
			nd.Rows != od.Rows || nd.Columns != od.Columns {
			continue
		}
		copy(si.data[nd.Offset:nd.Offset+nd.SizeBytes], oldData[od.Offset:od.Offset+od.SizeBytes])
	}
}

func (si *ShaderInput) Template() *ShaderTemplate {
	return si.template
}

func (si *ShaderInput) InputCount() int {
	return len(si.descs)
}

/**
 * @brief Looks up a constant by name. A miss is not an error: shaders are
 * free to drop unused constants, so callers skip the value.
 */
func (si *ShaderInput) InputHandle(name string) (Handle[InputDesc], bool) {
	if i, ok := si.names[name]; ok {
		return Handle[InputDesc]{index: uint32(i), valid: true}, true
	}
	if si.template.manager.backend.Kind() != backend.KIND_NULL {
		core.LogDebug("shader %s has no input named %s", si.template.program.Path(), name)
	}
	return None[InputDesc](), false
}

// InputDesc returns the layout entry a handle refers to.
func (si *ShaderInput) InputDesc(h Handle[InputDesc]) (InputDesc, error) {
	d, err := si.desc(h)
	if err != nil {
		return InputDesc{}, err
	}
	return *d, nil
}

func (si *ShaderInput) desc(h Handle[InputDesc]) (*InputDesc, error) {
	if !h.Valid() || int(h.index) >= len(si.descs) {
		return nil, fmt.Errorf("shader input %s: %w", h, core.ErrInvalidHandle)
	}
	return &si.descs[h.index], nil
}

func (si *ShaderInput) typed(h Handle[InputDesc], want metadata.InputType) (*InputDesc, error) {
	d, err := si.desc(h)
	if err != nil {
		return nil, err
	}
	if d.Type != want {
		return nil, fmt.Errorf("input %s is %s, not %s: %w", d.Name, d.Type, want, core.ErrWrongInputType)
	}
	return d, nil
}

// offset of component (row, col) of an array element, or false if out of range.
func (d *InputDesc) offset(element, row, col uint32) (uint32, bool) {
	if element >= d.elements() || row >= d.Rows || col >= d.Columns {
		return 0, false
	}
	return d.Offset + element*metadata.REGISTER_SIZE_BYTES*d.Rows + row*metadata.REGISTER_SIZE_BYTES + col*4, true
}

func (si *ShaderInput) put(d *InputDesc, off uint32, v float64) {
	var raw uint32
	switch d.RegisterType {
	case metadata.REGISTER_TYPE_INT4:
		raw = uint32(int32(v))
	case metadata.REGISTER_TYPE_BOOL:
		if v != 0 {
			raw = 1
		}
	default:
		raw = math.Float32bits(float32(v))
	}
	binary.LittleEndian.PutUint32(si.data[off:], raw)
}

func (si *ShaderInput) fetch(d *InputDesc, off uint32) float64 {
	raw := binary.LittleEndian.Uint32(si.data[off:])
	switch d.RegisterType {
	case metadata.REGISTER_TYPE_INT4:
		return float64(int32(raw))
	case metadata.REGISTER_TYPE_BOOL:
		return float64(raw)
	}
	return float64(math.Float32frombits(raw))
}

// write stores values component by component, in element, row, column order.
// Values past the end of the constant are ignored.
func (si *ShaderInput) write(d *InputDesc, element uint32, values ...float64) error {
	perElement := d.Rows * d.Columns
	for i, v := range values {
		e := element + uint32(i)/perElement
		rem := uint32(i) % perElement
		off, ok := d.offset(e, rem/d.Columns, rem%d.Columns)
		if !ok {
			if i == 0 {
				return fmt.Errorf("input %s has no element %d", d.Name, element)
			}
			break
		}
		si.put(d, off, v)
	}
	return nil
}

func (si *ShaderInput) read(d *InputDesc, element, count uint32) ([]float64, error) {
	out := make([]float64, count)
	for i := uint32(0); i < count; i++ {
		off, ok := d.offset(element, i/d.Columns, i%d.Columns)
		if !ok {
			return nil, fmt.Errorf("input %s (%dx%d[%d]) cannot be read as %d components at element %d",
				d.Name, d.Rows, d.Columns, d.elements(), count, element)
		}
		out[i] = si.fetch(d, off)
	}
	return out, nil
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func (si *ShaderInput) SetBool(h Handle[InputDesc], value bool) error {
	d, err := si.typed(h, metadata.INPUT_TYPE_BOOL)
	if err != nil {
		return err
	}
	return si.write(d, 0, boolToFloat(value))
}

func (si *ShaderInput) SetBoolArray(h Handle[InputDesc], values []bool) error {
	d, err := si.typed(h, metadata.INPUT_TYPE_BOOL)
	if err != nil {
		return err
	}
	for e, v := range values {
		if err := si.write(d, uint32(e), boolToFloat(v)); err != nil {
			return err
		}
	}
	return nil
}

func (si *ShaderInput) SetInt(h Handle[InputDesc], value int32) error {
	d, err := si.typed(h, metadata.INPUT_TYPE_INT)
	if err != nil {
		return err
	}
	return si.write(d, 0, float64(value))
}

func (si *ShaderInput) SetIntArray(h Handle[InputDesc], values []int32) error {
	d, err := si.typed(h, metadata.INPUT_TYPE_INT)
	if err != nil {
		return err
	}
	for e, v := range values {
		if err := si.write(d, uint32(e), float64(v)); err != nil {
			return err
		}
	}
	return nil
}

func (si *ShaderInput) setFloats(h Handle[InputDesc], element uint32, values ...float32) error {
	d, err := si.typed(h, metadata.INPUT_TYPE_FLOAT)
	if err != nil {
		return err
	}
	wide := make([]float64, len(values))
	for i, v := range values {
		wide[i] = float64(v)
	}
	return si.write(d, element, wide...)
}

func (si *ShaderInput) SetFloat(h Handle[InputDesc], value float32) error {
	return si.setFloats(h, 0, value)
}

func (si *ShaderInput) SetFloat2(h Handle[InputDesc], value gmath.Vec2) error {
	return si.setFloats(h, 0, value.X, value.Y)
}

func (si *ShaderInput) SetFloat3(h Handle[InputDesc], value gmath.Vec3) error {
	return si.setFloats(h, 0, value.X, value.Y, value.Z)
}

func (si *ShaderInput) SetFloat4(h Handle[InputDesc], value gmath.Vec4) error {
	return si.setFloats(h, 0, value.X, value.Y, value.Z, value.W)
}

/**
 * @brief Writes a flat run of floats starting at element 0. Each element
 * consumes Rows*Columns values, so a float2[16] takes 32 floats.
 */
func (si *ShaderInput) SetFloatArray(h Handle[InputDesc], values []float32) error {
	return si.setFloats(h, 0, values...)
}

func (si *ShaderInput) SetFloat2Array(h Handle[InputDesc], values []gmath.Vec2) error {
	for e, v := range values {
		if err := si.setFloats(h, uint32(e), v.X, v.Y); err != nil {
			return err
		}
	}
	return nil
}

func (si *ShaderInput) SetFloat3Array(h Handle[InputDesc], values []gmath.Vec3) error {
	for e, v := range values {
		if err := si.setFloats(h, uint32(e), v.X, v.Y, v.Z); err != nil {
			return err
		}
	}
	return nil
}

func (si *ShaderInput) matrix(h Handle[InputDesc]) (*InputDesc, error) {
	d, err := si.typed(h, metadata.INPUT_TYPE_FLOAT)
	if err != nil {
		return nil, err
	}
	if d.Rows < 2 {
		return nil, fmt.Errorf("input %s is not a matrix: %w", d.Name, core.ErrWrongInputType)
	}
	return d, nil
}

// writeMatrix stores the top-left Rows x Columns block of an n x n matrix.
func (si *ShaderInput) writeMatrix(d *InputDesc, element uint32, n uint32, data []float32) error {
	for r := uint32(0); r < min(d.Rows, n); r++ {
		for c := uint32(0); c < min(d.Columns, n); c++ {
			off, ok := d.offset(element, r, c)
			if !ok {
				return fmt.Errorf("input %s has no element %d", d.Name, element)
			}
			si.put(d, off, float64(data[r*n+c]))
		}
	}
	return nil
}

func (si *ShaderInput) SetMatrix3x3(h Handle[InputDesc], value gmath.Mat3) error {
	d, err := si.matrix(h)
	if err != nil {
		return err
	}
	return si.writeMatrix(d, 0, 3, value.Data[:])
}

func (si *ShaderInput) SetMatrix4x4(h Handle[InputDesc], value gmath.Mat4) error {
	d, err := si.matrix(h)
	if err != nil {
		return err
	}
	return si.writeMatrix(d, 0, 4, value.Data[:])
}

func (si *ShaderInput) SetMatrixArray(h Handle[InputDesc], values []gmath.Mat4) error {
	d, err := si.matrix(h)
	if err != nil {
		return err
	}
	for e := range values {
		if err := si.writeMatrix(d, uint32(e), 4, values[e].Data[:]); err != nil {
			return err
		}
	}
	return nil
}

// SetTexture binds a texture to sampler element 0. None clears the slot.
func (si *ShaderInput) SetTexture(h Handle[InputDesc], texture Handle[Texture]) error {
	d, err := si.desc(h)
	if err != nil {
		return err
	}
	if !d.Type.IsSampler() {
		return fmt.Errorf("input %s is %s, not a sampler: %w", d.Name, d.Type, core.ErrWrongInputType)
	}
	binary.LittleEndian.PutUint32(si.data[d.Offset:], texture.Index())
	return nil
}

func (si *ShaderInput) Bool(h Handle[InputDesc], element uint32) (bool, error) {
	d, err := si.typed(h, metadata.INPUT_TYPE_BOOL)
	if err != nil {
		return false, err
	}
	v, err := si.read(d, element, 1)
	if err != nil {
		return false, err
	}
	return v[0] != 0, nil
}

func (si *ShaderInput) Int(h Handle[InputDesc], element uint32) (int32, error) {
	d, err := si.typed(h, metadata.INPUT_TYPE_INT)
	if err != nil {
		return 0, err
	}
	v, err := si.read(d, element, 1)
	if err != nil {
		return 0, err
	}
	return int32(v[0]), nil
}

func (si *ShaderInput) floats(h Handle[InputDesc], element, count uint32) ([]float32, error) {
	d, err := si.typed(h, metadata.INPUT_TYPE_FLOAT)
	if err != nil {
		return nil, err
	}
	v, err := si.read(d, element, count)
	if err != nil {
		return nil, err
	}
	out := make([]float32, count)
	for i := range v {
		out[i] = float32(v[i])
	}
	return out, nil
}

func (si *ShaderInput) Float(h Handle[InputDesc], element uint32) (float32, error) {
	v, err := si.floats(h, element, 1)
	if err != nil {
		return 0, err
	}
	return v[0], nil
}

func (si *ShaderInput) Float2(h Handle[InputDesc], element uint32) (gmath.Vec2, error) {
	v, err := si.floats(h, element, 2)
	if err != nil {
		return gmath.Vec2{}, err
	}
	return gmath.NewVec2(v[0], v[1]), nil
}

func (si *ShaderInput) Float3(h Handle[InputDesc], element uint32) (gmath.Vec3, error) {
	v, err := si.floats(h, element, 3)
	if err != nil {
		return gmath.Vec3{}, err
	}
	return gmath.NewVec3(v[0], v[1], v[2]), nil
}

func (si *ShaderInput) Float4(h Handle[InputDesc], element uint32) (gmath.Vec4, error) {
	v, err := si.floats(h, element, 4)
	if err != nil {
		return gmath.Vec4{}, err
	}
	return gmath.NewVec4(v[0], v[1], v[2], v[3]), nil
}

func (si *ShaderInput) readMatrix(h Handle[InputDesc], element, n uint32, dst []float32) error {
	d, err := si.matrix(h)
	if err != nil {
		return err
	}
	for r := uint32(0); r < min(d.Rows, n); r++ {
		for c := uint32(0); c < min(d.Columns, n); c++ {
			off, ok := d.offset(element, r, c)
			if !ok {
				return fmt.Errorf("input %s has no element %d", d.Name, element)
			}
			dst[r*n+c] = float32(si.fetch(d, off))
		}
	}
	return nil
}

func (si *ShaderInput) Matrix3x3(h Handle[InputDesc], element uint32) (gmath.Mat3, error) {
	var m gmath.Mat3
	err := si.readMatrix(h, element, 3, m.Data[:])
	return m, err
}

// Matrix4x4 reads a matrix back. Components the constant does not store are zero.
func (si *ShaderInput) Matrix4x4(h Handle[InputDesc], element uint32) (gmath.Mat4, error) {
	var m gmath.Mat4
	err := si.readMatrix(h, element, 4, m.Data[:])
	return m, err
}

func (si *ShaderInput) Texture(h Handle[InputDesc]) (Handle[Texture], error) {
	d, err := si.desc(h)
	if err != nil {
		return None[Texture](), err
	}
	if !d.Type.IsSampler() {
		return None[Texture](), fmt.Errorf("input %s is %s, not a sampler: %w", d.Name, d.Type, core.ErrWrongInputType)
	}
	return HandleFromIndex[Texture](binary.LittleEndian.Uint32(si.data[d.Offset:])), nil
}
