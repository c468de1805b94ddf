package resources

import (
	"encoding/binary"
	"fmt"

	"github.com/iftodebogdan/gitechdemo/engine/renderer/metadata"
)

type IndexBuffer struct {
	Buffer
	format metadata.IndexFormat
}

func newIndexBuffer(count uint32, format metadata.IndexFormat, usage metadata.BufferUsage) *IndexBuffer {
	return &IndexBuffer{
		Buffer: newBuffer(count, format.Size(), usage),
		format: format,
	}
}

func (ib *IndexBuffer) Format() metadata.IndexFormat {
	return ib.format
}

// SetIndices copies indices starting at element 0. Values that do not fit a
// 16 bit buffer are rejected.
func (ib *IndexBuffer) SetIndices(indices []uint32) error {
	if uint32(len(indices)) > ib.elementCount {
		return fmt.Errorf("index buffer holds %d indices, got %d", ib.elementCount, len(indices))
	}
	for i, idx := range indices {
		if err := ib.SetIndex(uint32(i), idx); err != nil {
			return err
		}
	}
	return nil
}

func (ib *IndexBuffer) SetIndex(i, value uint32) error {
	if i >= ib.elementCount {
		return fmt.Errorf("index %d out of range [0, %d)", i, ib.elementCount)
	}
	off := i * ib.elementSize
	if ib.format == metadata.INDEX_FORMAT_16BIT {
		if value > 0xFFFF {
			return fmt.Errorf("index value %d does not fit a 16 bit index buffer", value)
		}
		binary.LittleEndian.PutUint16(ib.data[off:], uint16(value))
		return nil
	}
	binary.LittleEndian.PutUint32(ib.data[off:], value)
	return nil
}

func (ib *IndexBuffer) Index(i uint32) uint32 {
	off := i * ib.elementSize
	if ib.format == metadata.INDEX_FORMAT_16BIT {
		return uint32(binary.LittleEndian.Uint16(ib.data[off:]))
	}
	return binary.LittleEndian.Uint32(ib.data[off:])
}
